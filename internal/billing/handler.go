package billing

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tailorworks-lab/tailorworks/internal/core/analytics"
	httperr "github.com/tailorworks-lab/tailorworks/internal/core/errors"
)

// RegisterRoutes registers the bill ledger routes.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	r.POST("/v1/bills", s.HandleCreateBill)
	r.GET("/v1/bills/:id", s.HandleGetBill)
	r.PATCH("/v1/bills/:id", s.HandleAmendBill)
	r.DELETE("/v1/bills/:id", s.HandleDeleteBill)
}

type createBillRequest struct {
	CustomerName string          `json:"customer_name" binding:"required"`
	BillType     string          `json:"bill_type" binding:"required"`
	CustomerType string          `json:"customer_type" binding:"required"`
	Amount       decimal.Decimal `json:"amount"`
}

type amendBillRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// HandleCreateBill handles POST /v1/bills.
func (s *Service) HandleCreateBill(c *gin.Context) {
	var req createBillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBadRequest(c, "Invalid bill payload", err)
		return
	}
	if req.Amount.IsNegative() {
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpInvalidEventError,
			Message:   "Amount must not be negative",
		})
		return
	}

	bill := &Bill{
		CustomerName: req.CustomerName,
		BillType:     req.BillType,
		CustomerType: req.CustomerType,
		AmountMinor:  analytics.MinorUnits(req.Amount),
	}

	created, err := s.CreateBill(c.Request.Context(), bill)
	if err != nil {
		if errors.Is(err, analytics.ErrUnknownBillType) || errors.Is(err, analytics.ErrUnknownCustomerType) {
			writeBadRequest(c, "Invalid bill classification", err)
			return
		}
		writeInternal(c, "Failed to create bill", err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

// HandleGetBill handles GET /v1/bills/:id.
func (s *Service) HandleGetBill(c *gin.Context) {
	id, ok := bindBillID(c)
	if !ok {
		return
	}

	bill, err := s.GetBill(c.Request.Context(), id)
	if err != nil {
		writeBillError(c, "Failed to load bill", err)
		return
	}
	c.JSON(http.StatusOK, bill)
}

// HandleAmendBill handles PATCH /v1/bills/:id. Only the amount moves.
func (s *Service) HandleAmendBill(c *gin.Context) {
	id, ok := bindBillID(c)
	if !ok {
		return
	}

	var req amendBillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBadRequest(c, "Invalid amendment payload", err)
		return
	}
	if req.Amount.IsNegative() {
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpInvalidEventError,
			Message:   "Amount must not be negative",
		})
		return
	}

	bill, err := s.AmendBillAmount(c.Request.Context(), id, analytics.MinorUnits(req.Amount))
	if err != nil {
		writeBillError(c, "Failed to amend bill", err)
		return
	}
	c.JSON(http.StatusOK, bill)
}

// HandleDeleteBill handles DELETE /v1/bills/:id.
func (s *Service) HandleDeleteBill(c *gin.Context) {
	id, ok := bindBillID(c)
	if !ok {
		return
	}

	if err := s.DeleteBill(c.Request.Context(), id); err != nil {
		writeBillError(c, "Failed to delete bill", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func bindBillID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		writeBadRequest(c, "Invalid bill id", err)
		return uuid.Nil, false
	}
	return id, true
}

func writeBillError(c *gin.Context, msg string, err error) {
	if errors.Is(err, ErrBillNotFound) {
		c.JSON(http.StatusNotFound, httperr.ErrorResponse{
			ErrorType: httperr.HttpNotFoundError,
			Message:   "Bill not found",
		})
		return
	}
	writeInternal(c, msg, err)
}

func writeBadRequest(c *gin.Context, msg string, err error) {
	c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
		ErrorType: httperr.HttpInvalidJsonError,
		Message:   msg,
		Details:   err.Error(),
	})
}

func writeInternal(c *gin.Context, msg string, err error) {
	slog.Error(msg, "error", err)
	c.JSON(http.StatusInternalServerError, httperr.ErrorResponse{
		ErrorType: httperr.HttpInternalError,
		Message:   msg,
		Details:   err.Error(),
	})
}
