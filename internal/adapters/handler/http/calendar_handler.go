package http

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/teamboard/schedule-engine/internal/adapters/handler/http/middleware"
	"github.com/teamboard/schedule-engine/internal/adapters/ics"
	"github.com/teamboard/schedule-engine/internal/core/services"
)

type CalendarHandler struct {
	layouts   *services.LayoutService
	schedules *services.ScheduleService
}

func NewCalendarHandler(layouts *services.LayoutService, schedules *services.ScheduleService) *CalendarHandler {
	return &CalendarHandler{
		layouts:   layouts,
		schedules: schedules,
	}
}

func (h *CalendarHandler) RegisterRoutes(router *gin.RouterGroup) {
	cal := router.Group("/calendar")
	{
		cal.GET("/month", h.Month)
		cal.GET("/ics", h.ICS)
	}
}

func (h *CalendarHandler) Month(c *gin.Context) {
	teamID, ok := middleware.GetTeamID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "team context missing"})
		return
	}

	ym, ok := monthQuery(c)
	if !ok {
		return
	}

	layout, err := h.layouts.MonthLayout(c.Request.Context(), teamID, ym)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, layout)
}

func (h *CalendarHandler) ICS(c *gin.Context) {
	teamID, ok := middleware.GetTeamID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "team context missing"})
		return
	}

	ym, ok := monthQuery(c)
	if !ok {
		return
	}

	list, err := h.schedules.ListByMonth(c.Request.Context(), teamID, ym)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, ics.Filename(teamID, ym)))
	c.Data(http.StatusOK, ics.ContentType, []byte(ics.ExportMonth(teamID, ym, list)))
}
