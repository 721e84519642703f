package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teamboard/schedule-engine/internal/adapters/cache"
	adapterHTTP "github.com/teamboard/schedule-engine/internal/adapters/handler/http"
	"github.com/teamboard/schedule-engine/internal/adapters/repository"
	"github.com/teamboard/schedule-engine/internal/core/calendar"
	"github.com/teamboard/schedule-engine/internal/core/domain"
	"github.com/teamboard/schedule-engine/internal/core/services"
)

func setupRouter() (*gin.Engine, *repository.InMemoryScheduleRepository) {
	gin.SetMode(gin.TestMode)

	opts := calendar.Options{}
	repo := repository.NewInMemoryScheduleRepository()
	schedules := services.NewScheduleService(repo, nil, opts)
	layouts := services.NewLayoutService(repo, cache.NewMemoryLayoutCache(opts), opts)

	router := adapterHTTP.NewRouter(adapterHTTP.RouterDependencies{
		ScheduleHandler: adapterHTTP.NewScheduleHandler(schedules),
		CalendarHandler: adapterHTTP.NewCalendarHandler(layouts, schedules),
		StartTime:       time.Now(),
	})
	return router, repo
}

func doRequest(router *gin.Engine, method, path, teamID, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req, _ = http.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req, _ = http.NewRequest(method, path, nil)
	}
	if teamID != "" {
		req.Header.Set("X-Team-ID", teamID)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func createSchedule(t *testing.T, router *gin.Engine, teamID, title, start, end string) *domain.Schedule {
	t.Helper()
	body := fmt.Sprintf(`{"title": %q, "start_time": %q, "end_time": %q}`, title, start, end)
	w := doRequest(router, "POST", "/api/v1/schedules", teamID, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var s domain.Schedule
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &s))
	return &s
}

func TestCreateSchedule(t *testing.T) {
	t.Run("Success: 201 Created", func(t *testing.T) {
		router, _ := setupRouter()

		body := `{"title": "Kickoff", "color": "#ff0000", "start_time": "2024-06-03T09:00:00Z", "end_time": "2024-06-05T17:00:00Z", "completed_tasks": 1, "total_tasks": 3}`
		w := doRequest(router, "POST", "/api/v1/schedules", "team-1", body)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), `"title":"Kickoff"`)
		assert.Contains(t, w.Body.String(), `"color":"#FF0000"`)
		assert.Contains(t, w.Body.String(), `"team_id":"team-1"`)
		assert.Contains(t, w.Body.String(), `"version":1`)
	})

	t.Run("Fail: 400 Missing team header", func(t *testing.T) {
		router, _ := setupRouter()
		w := doRequest(router, "POST", "/api/v1/schedules", "", `{"title": "Kickoff"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "X-Team-ID")
	})

	t.Run("Fail: 400 Missing required fields", func(t *testing.T) {
		router, _ := setupRouter()
		w := doRequest(router, "POST", "/api/v1/schedules", "team-1", `{"title": "Kickoff"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Fail: 400 End before start", func(t *testing.T) {
		router, repo := setupRouter()
		body := `{"title": "Backwards", "start_time": "2024-06-05T09:00:00Z", "end_time": "2024-06-03T09:00:00Z"}`
		w := doRequest(router, "POST", "/api/v1/schedules", "team-1", body)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), domain.ErrInvalidTimeRange.Error())

		list, _ := repo.ListByRange(context.Background(), "team-1", time.Time{}, time.Now().AddDate(10, 0, 0))
		assert.Empty(t, list)
	})

	t.Run("Fail: 400 Progress over total", func(t *testing.T) {
		router, _ := setupRouter()
		body := `{"title": "Over", "start_time": "2024-06-03T09:00:00Z", "end_time": "2024-06-03T10:00:00Z", "completed_tasks": 4, "total_tasks": 3}`
		w := doRequest(router, "POST", "/api/v1/schedules", "team-1", body)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestListMonth(t *testing.T) {
	router, _ := setupRouter()
	createSchedule(t, router, "team-1", "June", "2024-06-03T09:00:00Z", "2024-06-05T17:00:00Z")
	createSchedule(t, router, "team-1", "July", "2024-07-03T09:00:00Z", "2024-07-05T17:00:00Z")
	createSchedule(t, router, "team-2", "Other team", "2024-06-03T09:00:00Z", "2024-06-05T17:00:00Z")

	t.Run("Success: only the team's month", func(t *testing.T) {
		w := doRequest(router, "GET", "/api/v1/schedules/month?year=2024&month=6", "team-1", "")
		require.Equal(t, http.StatusOK, w.Code)

		var list []domain.Schedule
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
		require.Len(t, list, 1)
		assert.Equal(t, "June", list[0].Title)
	})

	t.Run("Fail: 400 Missing month", func(t *testing.T) {
		w := doRequest(router, "GET", "/api/v1/schedules/month?year=2024", "team-1", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Fail: 400 Month out of range", func(t *testing.T) {
		w := doRequest(router, "GET", "/api/v1/schedules/month?year=2024&month=13", "team-1", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "invalid year/month")
	})
}

func TestSyncSchedules(t *testing.T) {
	router, _ := setupRouter()
	s := createSchedule(t, router, "team-1", "Kickoff", "2024-06-03T09:00:00Z", "2024-06-05T17:00:00Z")

	t.Run("Full sync includes everything", func(t *testing.T) {
		w := doRequest(router, "GET", "/api/v1/schedules/sync", "team-1", "")
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Changes   []domain.Schedule `json:"changes"`
			Timestamp time.Time         `json:"timestamp"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Len(t, resp.Changes, 1)
		assert.Equal(t, s.ID, resp.Changes[0].ID)
		assert.False(t, resp.Timestamp.IsZero())
	})

	t.Run("Deletions show up in the delta", func(t *testing.T) {
		checkpoint := time.Now().UTC().Add(-time.Second).Format(time.RFC3339)
		require.Equal(t, http.StatusNoContent, doRequest(router, "DELETE", "/api/v1/schedules/"+s.ID, "team-1", "").Code)

		w := doRequest(router, "GET", "/api/v1/schedules/sync?last_sync="+checkpoint, "team-1", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"deleted_at"`)
	})

	t.Run("Fail: 400 Bad last_sync", func(t *testing.T) {
		w := doRequest(router, "GET", "/api/v1/schedules/sync?last_sync=yesterday", "team-1", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestUpdateSchedule(t *testing.T) {
	t.Run("Success: 200 partial update", func(t *testing.T) {
		router, _ := setupRouter()
		s := createSchedule(t, router, "team-1", "Kickoff", "2024-06-03T09:00:00Z", "2024-06-05T17:00:00Z")

		w := doRequest(router, "PUT", "/api/v1/schedules/"+s.ID, "team-1", `{"title": "Retro", "version": 1}`)

		require.Equal(t, http.StatusOK, w.Code)
		var updated domain.Schedule
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
		assert.Equal(t, "Retro", updated.Title)
		assert.Equal(t, 2, updated.Version)
		assert.True(t, updated.StartTime.Equal(s.StartTime))
	})

	t.Run("Fail: 409 Version conflict", func(t *testing.T) {
		router, _ := setupRouter()
		s := createSchedule(t, router, "team-1", "Kickoff", "2024-06-03T09:00:00Z", "2024-06-05T17:00:00Z")
		require.Equal(t, http.StatusOK, doRequest(router, "PUT", "/api/v1/schedules/"+s.ID, "team-1", `{"title": "A", "version": 1}`).Code)

		w := doRequest(router, "PUT", "/api/v1/schedules/"+s.ID, "team-1", `{"title": "B", "version": 1}`)
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, w.Body.String(), "version conflict")
	})

	t.Run("Fail: 404 Other team", func(t *testing.T) {
		router, _ := setupRouter()
		s := createSchedule(t, router, "team-1", "Kickoff", "2024-06-03T09:00:00Z", "2024-06-05T17:00:00Z")

		w := doRequest(router, "PUT", "/api/v1/schedules/"+s.ID, "team-2", `{"title": "Hijack"}`)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Fail: 400 Bad color", func(t *testing.T) {
		router, _ := setupRouter()
		s := createSchedule(t, router, "team-1", "Kickoff", "2024-06-03T09:00:00Z", "2024-06-05T17:00:00Z")

		w := doRequest(router, "PUT", "/api/v1/schedules/"+s.ID, "team-1", `{"color": "blue"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestUpdateProgress(t *testing.T) {
	router, _ := setupRouter()
	s := createSchedule(t, router, "team-1", "Kickoff", "2024-06-03T09:00:00Z", "2024-06-05T17:00:00Z")
	path := "/api/v1/schedules/" + s.ID + "/progress"

	w := doRequest(router, "PATCH", path, "team-1", `{"completed_tasks": 0, "total_tasks": 4}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"total_tasks":4`)

	w = doRequest(router, "PATCH", path, "team-1", `{"completed_tasks": 5, "total_tasks": 4}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(router, "PATCH", path, "team-1", `{"total_tasks": 4}`)
	assert.Equal(t, http.StatusBadRequest, w.Code, "completed_tasks is required")

	w = doRequest(router, "PATCH", "/api/v1/schedules/missing/progress", "team-1", `{"completed_tasks": 1, "total_tasks": 4}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteSchedule(t *testing.T) {
	router, _ := setupRouter()
	s := createSchedule(t, router, "team-1", "Kickoff", "2024-06-03T09:00:00Z", "2024-06-05T17:00:00Z")

	assert.Equal(t, http.StatusNotFound, doRequest(router, "DELETE", "/api/v1/schedules/"+s.ID, "team-2", "").Code)
	assert.Equal(t, http.StatusNoContent, doRequest(router, "DELETE", "/api/v1/schedules/"+s.ID, "team-1", "").Code)
	assert.Equal(t, http.StatusNotFound, doRequest(router, "DELETE", "/api/v1/schedules/"+s.ID, "team-1", "").Code)
}
