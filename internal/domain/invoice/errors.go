package invoice

import "errors"

var (
	ErrInvoiceNotFound         = errors.New("invoice not found")
	ErrInvoiceLineItemNotFound = errors.New("invoice line item not found")
	ErrInvoiceAlreadyFinalized = errors.New("invoice already finalized")
	ErrInvoiceAlreadyVoided    = errors.New("invoice already voided")
	ErrInvoiceNotFinalized     = errors.New("invoice not finalized")
	ErrInvoiceExistsForPeriod  = errors.New("an invoice already exists for this subscription's billing period")
)

func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrInvoiceNotFound) || errors.Is(err, ErrInvoiceLineItemNotFound)
}
