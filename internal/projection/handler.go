package projection

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	httperr "github.com/tailorworks-lab/tailorworks/internal/core/errors"
	"github.com/tailorworks-lab/tailorworks/internal/core/storage"
)

// RegisterRoutes registers all projection API routes on the given router.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	r.GET("/v1/analytics", s.HandleListYears)
	r.GET("/v1/analytics/:year", s.HandleQueryYear)
}

// HandleQueryYear handles GET /v1/analytics/:year
// Query parameters: month (3-letter key or full name), day (substring match)
func (s *Service) HandleQueryYear(c *gin.Context) {
	var uri struct {
		Year int `uri:"year" binding:"required"`
	}
	var query struct {
		Month string `form:"month"`
		Day   string `form:"day"`
	}

	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpInvalidJsonError,
			Message:   "Invalid path parameters",
			Details:   err.Error(),
		})
		return
	}

	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpInvalidJsonError,
			Message:   "Invalid query parameters",
			Details:   err.Error(),
		})
		return
	}

	rec, err := s.FetchYear(c.Request.Context(), YearQuery{
		Year:  uri.Year,
		Month: query.Month,
		Day:   query.Day,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidQuery):
			c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
				ErrorType: httperr.HttpInvalidJsonError,
				Message:   "Invalid analytics query",
				Details:   err.Error(),
			})
		case errors.Is(err, storage.ErrNotFound):
			c.JSON(http.StatusNotFound, httperr.ErrorResponse{
				ErrorType: httperr.HttpNotFoundError,
				Message:   "No analytics for year",
			})
		default:
			slog.Error("Failed to query analytics", "error", err, "year", uri.Year)
			c.JSON(http.StatusInternalServerError, httperr.ErrorResponse{
				ErrorType: httperr.HttpInternalError,
				Message:   "Failed to query analytics",
				Details:   err.Error(),
			})
		}
		return
	}

	c.JSON(http.StatusOK, rec)
}

// HandleListYears handles GET /v1/analytics
func (s *Service) HandleListYears(c *gin.Context) {
	years, err := s.Years(c.Request.Context())
	if err != nil {
		slog.Error("Failed to list analytics years", "error", err)
		c.JSON(http.StatusInternalServerError, httperr.ErrorResponse{
			ErrorType: httperr.HttpInternalError,
			Message:   "Failed to list analytics years",
			Details:   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"years": years})
}
