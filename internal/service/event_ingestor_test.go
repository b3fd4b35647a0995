package service

import (
	"context"
	"testing"
	"time"

	"github.com/flexprice/flexprice/internal/domain/customer"
	"github.com/flexprice/flexprice/internal/domain/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEventStore is a stateful events.Repository fake that records
// inserted events; invoice_assembler_test.go's fakeEventsRepository only
// stubs GetUsage and no-ops Insert/BulkInsert.
type fakeEventStore struct {
	inserted []*events.Event
}

func (f *fakeEventStore) InsertEvent(_ context.Context, event *events.Event) error {
	f.inserted = append(f.inserted, event)
	return nil
}
func (f *fakeEventStore) BulkInsertEvents(_ context.Context, evs []*events.Event) error {
	f.inserted = append(f.inserted, evs...)
	return nil
}
func (f *fakeEventStore) GetUsage(_ context.Context, params *events.UsageParams) (*events.AggregationResult, error) {
	return &events.AggregationResult{EventName: params.EventName}, nil
}
func (f *fakeEventStore) GetUsageWithFilters(_ context.Context, params *events.UsageWithFiltersParams) ([]*events.AggregationResult, error) {
	return nil, nil
}
func (f *fakeEventStore) GetEvents(_ context.Context, params *events.GetEventsParams) ([]*events.Event, uint64, error) {
	return nil, 0, nil
}

func newTestEventIngestor() (*EventIngestor, *fakeEventStore, *fakeCustomerRepository) {
	evStore := &fakeEventStore{}
	custs := &fakeCustomerRepository{customers: map[string]*customer.Customer{}}
	periods := &fakeBillingPeriodRepository{}
	return NewEventIngestor(evStore, custs, periods, nopLogger()), evStore, custs
}

func TestEventIngestor_TrackResolvesExternalCustomerID(t *testing.T) {
	ingestor, store, custs := newTestEventIngestor()
	custs.customers["cust_1"] = &customer.Customer{ID: "cust_1", ExternalID: "ext_1"}

	ev := &events.Event{ExternalCustomerID: "ext_1", EventName: "api.request"}
	got, err := ingestor.Track(context.Background(), ev)
	require.NoError(t, err)
	assert.Equal(t, "cust_1", got.CustomerID)
	assert.False(t, got.Timestamp.IsZero())
	require.Len(t, store.inserted, 1)
}

func TestEventIngestor_TrackRejectsUnresolvableCustomer(t *testing.T) {
	ingestor, _, _ := newTestEventIngestor()
	_, err := ingestor.Track(context.Background(), &events.Event{ExternalCustomerID: "missing", EventName: "api.request"})
	assert.Error(t, err)
}

func TestEventIngestor_TrackRejectsEventWithNoCustomerIdentifier(t *testing.T) {
	ingestor, _, _ := newTestEventIngestor()
	_, err := ingestor.Track(context.Background(), &events.Event{EventName: "api.request"})
	assert.Error(t, err)
}

func TestEventIngestor_BatchTrackDropsInvalidKeepsValid(t *testing.T) {
	ingestor, store, custs := newTestEventIngestor()
	custs.customers["cust_1"] = &customer.Customer{ID: "cust_1", ExternalID: "ext_1"}

	evs := []*events.Event{
		{ExternalCustomerID: "ext_1", EventName: "api.request"},
		{EventName: "api.request"}, // no customer identifier at all: invalid
	}
	valid, errs := ingestor.BatchTrack(context.Background(), evs)
	require.Len(t, errs, 2)
	assert.NoError(t, errs[0])
	assert.Error(t, errs[1])
	assert.Len(t, valid, 1)
	assert.Len(t, store.inserted, 1)
}

func TestEventIngestor_BillingPeriodForDelegatesToRepository(t *testing.T) {
	ingestor, _, _ := newTestEventIngestor()
	period, err := ingestor.BillingPeriodFor(context.Background(), "sub_1", time.Now())
	require.NoError(t, err)
	assert.Nil(t, period)
}
