package v1

import (
	"net/http"
	"time"

	"github.com/flexprice/flexprice/internal/api/dto"
	"github.com/flexprice/flexprice/internal/domain/events"
	"github.com/flexprice/flexprice/internal/domain/metric"
	ierr "github.com/flexprice/flexprice/internal/errors"
	"github.com/flexprice/flexprice/internal/logger"
	"github.com/flexprice/flexprice/internal/service"
	"github.com/flexprice/flexprice/internal/validator"
	"github.com/gin-gonic/gin"
)

// EventHandler exposes event ingestion (spec.md §4.3 Event Ingestion) and
// metric usage resolution (spec.md §4.1/§4.2).
type EventHandler struct {
	ingestor *service.EventIngestor
	metrics  metric.Repository
	registry *service.MetricRegistry
	events   events.Repository
	logger   *logger.Logger
}

func NewEventHandler(ingestor *service.EventIngestor, metrics metric.Repository, registry *service.MetricRegistry, eventsRepo events.Repository, logger *logger.Logger) *EventHandler {
	return &EventHandler{ingestor: ingestor, metrics: metrics, registry: registry, events: eventsRepo, logger: logger}
}

func (h *EventHandler) TrackEvent(c *gin.Context) {
	var req dto.TrackEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).WithHint("invalid request body").Mark(ierr.ErrValidation))
		return
	}
	if err := validator.ValidateRequest(&req); err != nil {
		c.Error(err)
		return
	}

	ev, err := h.ingestor.Track(c.Request.Context(), req.ToEvent(tenantID(c)))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, ev)
}

func (h *EventHandler) BatchTrackEvents(c *gin.Context) {
	var req dto.BatchTrackEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).WithHint("invalid request body").Mark(ierr.ErrValidation))
		return
	}
	if err := validator.ValidateRequest(&req); err != nil {
		c.Error(err)
		return
	}

	tid := tenantID(c)
	evs := make([]*events.Event, 0, len(req.Events))
	for _, item := range req.Events {
		evs = append(evs, item.ToEvent(tid))
	}

	tracked, errs := h.ingestor.BatchTrack(c.Request.Context(), evs)

	failed := 0
	for _, err := range errs {
		if err != nil {
			failed++
		}
	}
	c.JSON(http.StatusCreated, gin.H{
		"events": tracked,
		"failed": failed,
		"total":  len(req.Events),
	})
}

// GetCustomerEvents lists raw events for a customer (GET
// /events/customers/{id}), optionally narrowed to a single event name.
func (h *EventHandler) GetCustomerEvents(c *gin.Context) {
	start, end, err := parseWindow(c)
	if err != nil {
		c.Error(err)
		return
	}
	limit, offset := pageParams(c)

	evs, total, err := h.events.GetEvents(c.Request.Context(), &events.GetEventsParams{
		ExternalCustomerID: c.Param("id"),
		EventName:          c.Query("event_name"),
		StartTime:          start,
		EndTime:            end,
		PageSize:           limit,
		Offset:             offset,
		CountTotal:         true,
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": evs, "total": total})
}

// GetCustomerUsage resolves a named metric's usage value for a customer
// over [start_date, end_date] (GET /events/customers/{id}/usage and its
// spec.md §6.1 /usage/customer/{id} alias).
func (h *EventHandler) GetCustomerUsage(c *gin.Context) {
	var req dto.UsageRequest
	req.MetricName = c.Query("metric_name")
	start, end, err := parseWindow(c)
	if err != nil {
		c.Error(err)
		return
	}
	req.StartDate, req.EndDate = start, end
	if err := validator.ValidateRequest(&req); err != nil {
		c.Error(err)
		return
	}

	m, err := h.metrics.GetByName(c.Request.Context(), req.MetricName)
	if err != nil {
		c.Error(err)
		return
	}

	value, err := h.registry.Resolve(c.Request.Context(), m.ID, c.Param("id"), req.StartDate, req.EndDate)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"metric": m.Name, "value": value, "unit": m.Unit})
}

func parseWindow(c *gin.Context) (start, end time.Time, err error) {
	startStr, endStr := c.Query("start_date"), c.Query("end_date")
	if startStr == "" || endStr == "" {
		return start, end, ierr.NewError("start_date and end_date are required").Mark(ierr.ErrValidation)
	}
	start, err = time.Parse(time.RFC3339, startStr)
	if err != nil {
		return start, end, ierr.WithError(err).WithHint("start_date must be RFC3339").Mark(ierr.ErrValidation)
	}
	end, err = time.Parse(time.RFC3339, endStr)
	if err != nil {
		return start, end, ierr.WithError(err).WithHint("end_date must be RFC3339").Mark(ierr.ErrValidation)
	}
	return start, end, nil
}
