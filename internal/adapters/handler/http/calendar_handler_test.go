package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teamboard/schedule-engine/internal/core/calendar"
	"github.com/teamboard/schedule-engine/internal/core/domain"
)

func TestCalendarMonth(t *testing.T) {
	t.Run("Success: layout with slots and fill", func(t *testing.T) {
		router, _ := setupRouter()
		long := createSchedule(t, router, "team-1", "Long", "2024-06-03T00:00:00Z", "2024-06-12T00:00:00Z")
		createSchedule(t, router, "team-1", "Short", "2024-06-04T09:00:00Z", "2024-06-04T10:00:00Z")

		w := doRequest(router, "GET", "/api/v1/calendar/month?year=2024&month=6", "team-1", "")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var layout calendar.MonthLayout
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &layout))
		assert.Equal(t, 2024, layout.Year)
		assert.Equal(t, 6, layout.Month)
		assert.Equal(t, "sunday", layout.WeekStart)
		require.Len(t, layout.Weeks, 6)

		week := layout.Weeks[1]
		assert.Equal(t, "2024-06-02", week.StartDate)
		require.Len(t, week.Events, 2)
		assert.Equal(t, 2, week.TotalSlots)

		first := week.Events[0]
		assert.Equal(t, long.ID, first.ID)
		assert.Equal(t, 1, first.StartIdx)
		assert.Equal(t, 6, first.EndIdx)
		assert.True(t, first.ContinuesRight)
		assert.Equal(t, 0, first.SlotIndex)
		assert.Equal(t, 1, week.Events[1].SlotIndex)

		next := layout.Weeks[2]
		require.Len(t, next.Events, 1)
		assert.True(t, next.Events[0].ContinuesLeft)
		assert.True(t, next.Events[0].ShowLabel, "a continuation starting at column 0 keeps its label")
	})

	t.Run("Cached layout reflects later edits", func(t *testing.T) {
		router, _ := setupRouter()
		s := createSchedule(t, router, "team-1", "Kickoff", "2024-06-03T09:00:00Z", "2024-06-05T17:00:00Z")

		first := doRequest(router, "GET", "/api/v1/calendar/month?year=2024&month=6", "team-1", "")
		require.Equal(t, http.StatusOK, first.Code)
		assert.Contains(t, first.Body.String(), `"title":"Kickoff"`)

		require.Equal(t, http.StatusOK, doRequest(router, "PUT", "/api/v1/schedules/"+s.ID, "team-1", `{"title": "Renamed"}`).Code)

		second := doRequest(router, "GET", "/api/v1/calendar/month?year=2024&month=6", "team-1", "")
		require.Equal(t, http.StatusOK, second.Code)
		assert.Contains(t, second.Body.String(), `"title":"Renamed"`)
	})

	t.Run("Fail: 422 Corrupted stored event", func(t *testing.T) {
		router, repo := setupRouter()
		require.NoError(t, repo.Create(context.Background(), &domain.Schedule{
			ID:        "bad",
			TeamID:    "team-1",
			Title:     "Backwards",
			StartTime: time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC),
			EndTime:   time.Date(2024, 6, 8, 0, 0, 0, 0, time.UTC),
		}))

		w := doRequest(router, "GET", "/api/v1/calendar/month?year=2024&month=6", "team-1", "")
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("Fail: 400 Bad query", func(t *testing.T) {
		router, _ := setupRouter()
		w := doRequest(router, "GET", "/api/v1/calendar/month?year=abc&month=6", "team-1", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestCalendarICS(t *testing.T) {
	router, _ := setupRouter()
	createSchedule(t, router, "team-1", "Kickoff", "2024-06-03T09:00:00Z", "2024-06-05T17:00:00Z")

	w := doRequest(router, "GET", "/api/v1/calendar/ics?year=2024&month=6", "team-1", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "text/calendar"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "schedules-team-1-2024-06.ics")
	assert.Contains(t, w.Body.String(), "BEGIN:VEVENT")
	assert.Contains(t, w.Body.String(), "SUMMARY:Kickoff")
}

func TestHealthAndCORS(t *testing.T) {
	router, _ := setupRouter()

	w := doRequest(router, "GET", "/health", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"database":"memory"`)
	assert.Contains(t, w.Body.String(), `"cache":"memory"`)

	w = doRequest(router, "OPTIONS", "/api/v1/schedules", "", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "X-Team-ID")
}
