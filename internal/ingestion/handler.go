package ingestion

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tailorworks-lab/tailorworks/internal/aggregation"
	v1 "github.com/tailorworks-lab/tailorworks/internal/api/v1"
	"github.com/tailorworks-lab/tailorworks/internal/core/analytics"
	httperr "github.com/tailorworks-lab/tailorworks/internal/core/errors"
)

const (
	msgInvalidJSON   = "Invalid JSON body"
	msgInvalidEvent  = "Invalid bill event"
	msgApplyFailed   = "Failed to apply bill event"
	msgAsyncDisabled = "Async ingestion is not enabled"
	msgQueueFull     = "Bill event queue is full, event dropped"
)

// IngestHandler handles POST /v1/bill-events.
//
// Default mode applies the event synchronously and returns the updated
// yearly record. With ?async=1 the event is enqueued to the dispatcher
// and 202 is returned immediately, matching the fire-and-forget way the
// bill handlers invoke aggregation.
func (s *Service) IngestHandler(c *gin.Context) {
	var wire v1.BillEvent
	if err := c.ShouldBindJSON(&wire); err != nil {
		slog.Warn("Invalid JSON body received", "error", err)
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpInvalidJsonError,
			Message:   msgInvalidJSON,
			Details:   err.Error(),
		})
		return
	}

	ev, err := wire.ToDomain()
	if err != nil {
		slog.Warn("Bill event validation failed", "error", err, "action", wire.Action)
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpInvalidEventError,
			Message:   msgInvalidEvent,
			Details:   err.Error(),
		})
		return
	}

	slog.Info("Received bill event",
		"action", ev.Action,
		"bill_type", ev.BillType,
		"customer_type", ev.CustomerType,
		"year", ev.Year,
		"async", c.Query("async") != "")

	if c.Query("async") != "" {
		s.handleAsync(c, ev)
		return
	}

	rec, err := s.aggregator.ApplyBillEvent(c.Request.Context(), ev)
	if err != nil {
		slog.Error("Failed to apply bill event", "error", err, "year", ev.Year)
		c.JSON(http.StatusInternalServerError, httperr.ErrorResponse{
			ErrorType: httperr.HttpInternalError,
			Message:   msgApplyFailed,
			Details:   err.Error(),
		})
		return
	}

	if rec == nil {
		// UPDATE/DELETE for a year with no record: accepted, nothing to mutate.
		c.JSON(http.StatusAccepted, gin.H{"status": "dropped", "reason": "no analytics record for year"})
		return
	}

	c.JSON(http.StatusOK, rec)
}

func (s *Service) handleAsync(c *gin.Context, ev analytics.BillEvent) {
	if s.dispatcher == nil {
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpInvalidEventError,
			Message:   msgAsyncDisabled,
		})
		return
	}

	if err := s.dispatcher.Enqueue(ev); err != nil {
		if errors.Is(err, aggregation.ErrQueueFull) {
			slog.Warn("Bill event queue full, dropping event", "year", ev.Year, "action", ev.Action)
			c.JSON(http.StatusServiceUnavailable, httperr.ErrorResponse{
				ErrorType: httperr.HttpQueueFullError,
				Message:   msgQueueFull,
			})
			return
		}
		c.JSON(http.StatusInternalServerError, httperr.ErrorResponse{
			ErrorType: httperr.HttpInternalError,
			Message:   msgApplyFailed,
			Details:   err.Error(),
		})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"status": "accepted"})
}
