package http

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/teamboard/schedule-engine/internal/core/calendar"
	"github.com/teamboard/schedule-engine/internal/core/domain"
)

// respondError maps domain errors to HTTP statuses. Unknown errors are
// logged and hidden behind a generic 500.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrScheduleConflict):
		c.JSON(http.StatusConflict, gin.H{
			"error":   "version conflict",
			"message": "Data has been modified elsewhere. Please sync.",
		})
	case errors.Is(err, domain.ErrScheduleNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "schedule not found"})
	case domain.IsValidationError(err), errors.Is(err, calendar.ErrInvalidMonth):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrScheduleDeleted):
		c.JSON(http.StatusGone, gin.H{"error": err.Error()})
	case errors.Is(err, calendar.ErrInvalidEvent):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		log.Printf("[HTTP] %s %s failed: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// monthQuery parses the year and month query parameters.
func monthQuery(c *gin.Context) (calendar.YearMonth, bool) {
	var q struct {
		Year  int `form:"year" binding:"required"`
		Month int `form:"month" binding:"required"`
	}
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "year and month query parameters are required"})
		return calendar.YearMonth{}, false
	}

	ym, err := calendar.NewYearMonth(q.Year, q.Month)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return calendar.YearMonth{}, false
	}
	return ym, true
}
