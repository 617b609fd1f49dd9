package ingestion

import (
	"github.com/gin-gonic/gin"

	"github.com/tailorworks-lab/tailorworks/internal/aggregation"
)

// Service accepts bill events over HTTP and hands them to the
// aggregation layer, synchronously or through the dispatcher.
type Service struct {
	aggregator *aggregation.Service
	dispatcher *aggregation.Dispatcher
}

// NewService creates the ingestion service. dispatcher may be nil, in
// which case async requests are rejected.
func NewService(aggregator *aggregation.Service, dispatcher *aggregation.Dispatcher) *Service {
	if aggregator == nil {
		panic("ingestion: aggregator must not be nil")
	}
	return &Service{
		aggregator: aggregator,
		dispatcher: dispatcher,
	}
}

// RegisterRoutes registers the ingestion service routes.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	r.POST("/v1/bill-events", s.IngestHandler)
}
