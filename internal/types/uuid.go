package types

import (
	"fmt"

	"github.com/oklog/ulid/v2"
)

// GenerateUUID returns a k-sortable unique identifier
func GenerateUUID() string {
	return ulid.Make().String()
}

// GenerateUUIDWithPrefix returns a k-sortable unique identifier
// with a prefix ex inv_0ujsswThIGTUYm2K8FjOOfXtY1K
func GenerateUUIDWithPrefix(prefix string) string {
	if prefix == "" {
		return GenerateUUID()
	}
	return fmt.Sprintf("%s_%s", prefix, GenerateUUID())
}

const (
	// Prefixes for all domain entities
	UUIDPrefixCustomer       = "cust"
	UUIDPrefixMetric         = "metric"
	UUIDPrefixPlan           = "plan"
	UUIDPrefixPriceComponent = "price"
	UUIDPrefixSubscription   = "sub"
	UUIDPrefixSubscriptionLineItem = "subitem"
	UUIDPrefixSubscriptionPause    = "subpause"
	UUIDPrefixBillingPeriod  = "bp"
	UUIDPrefixEvent          = "event"
	UUIDPrefixInvoice        = "inv"
	UUIDPrefixInvoiceItem    = "invitem"
	UUIDPrefixCommitmentTier = "commit"
	UUIDPrefixCreditBalance  = "credit"
	UUIDPrefixCreditTxn      = "credittxn"
)
