package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/teamboard/schedule-engine/internal/adapters/handler/http/middleware"
	"github.com/teamboard/schedule-engine/internal/core/services"
)

type ScheduleHandler struct {
	svc *services.ScheduleService
}

func NewScheduleHandler(svc *services.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{
		svc: svc,
	}
}

type createScheduleRequest struct {
	Title          string    `json:"title" binding:"required"`
	Description    string    `json:"description"`
	Color          string    `json:"color"`
	StartTime      time.Time `json:"start_time" binding:"required"`
	EndTime        time.Time `json:"end_time" binding:"required"`
	CompletedTasks int       `json:"completed_tasks"`
	TotalTasks     int       `json:"total_tasks"`
}

type updateScheduleRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Color       string    `json:"color"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	Version     int       `json:"version"`
}

type progressRequest struct {
	CompletedTasks *int `json:"completed_tasks" binding:"required"`
	TotalTasks     *int `json:"total_tasks" binding:"required"`
	Version        int  `json:"version"`
}

func (h *ScheduleHandler) RegisterRoutes(router *gin.RouterGroup) {
	schedules := router.Group("/schedules")
	{
		schedules.POST("", h.Create)
		schedules.GET("/month", h.ListMonth)
		schedules.GET("/sync", h.Sync)
		schedules.PUT("/:id", h.Update)
		schedules.PATCH("/:id/progress", h.UpdateProgress)
		schedules.DELETE("/:id", h.Delete)
	}
}

func (h *ScheduleHandler) Create(c *gin.Context) {
	teamID, ok := middleware.GetTeamID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "team context missing"})
		return
	}

	var req createScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	schedule, err := h.svc.Create(c.Request.Context(), services.CreateScheduleInput{
		TeamID:         teamID,
		Title:          req.Title,
		Description:    req.Description,
		Color:          req.Color,
		StartTime:      req.StartTime,
		EndTime:        req.EndTime,
		CompletedTasks: req.CompletedTasks,
		TotalTasks:     req.TotalTasks,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, schedule)
}

func (h *ScheduleHandler) ListMonth(c *gin.Context) {
	teamID, ok := middleware.GetTeamID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "team context missing"})
		return
	}

	ym, ok := monthQuery(c)
	if !ok {
		return
	}

	list, err := h.svc.ListByMonth(c.Request.Context(), teamID, ym)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

func (h *ScheduleHandler) Sync(c *gin.Context) {
	teamID, ok := middleware.GetTeamID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "team context missing"})
		return
	}

	var lastSync time.Time
	if raw := c.Query("last_sync"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid last_sync format, use RFC3339"})
			return
		}
		lastSync = parsed
	}

	// Taken before the read so nothing written meanwhile is missed next time.
	timestamp := time.Now().UTC()

	deltas, err := h.svc.GetDelta(c.Request.Context(), teamID, lastSync)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"changes":   deltas,
		"timestamp": timestamp,
	})
}

func (h *ScheduleHandler) Update(c *gin.Context) {
	teamID, ok := middleware.GetTeamID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "team context missing"})
		return
	}

	var req updateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	schedule, err := h.svc.Update(c.Request.Context(), services.UpdateScheduleInput{
		ID:          c.Param("id"),
		TeamID:      teamID,
		Title:       req.Title,
		Description: req.Description,
		Color:       req.Color,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Version:     req.Version,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, schedule)
}

func (h *ScheduleHandler) UpdateProgress(c *gin.Context) {
	teamID, ok := middleware.GetTeamID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "team context missing"})
		return
	}

	var req progressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	schedule, err := h.svc.UpdateProgress(c.Request.Context(), services.UpdateProgressInput{
		ID:             c.Param("id"),
		TeamID:         teamID,
		CompletedTasks: *req.CompletedTasks,
		TotalTasks:     *req.TotalTasks,
		Version:        req.Version,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, schedule)
}

func (h *ScheduleHandler) Delete(c *gin.Context) {
	teamID, ok := middleware.GetTeamID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "team context missing"})
		return
	}

	if err := h.svc.Delete(c.Request.Context(), c.Param("id"), teamID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
