package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wikical/wikical/app/calendar"
	"github.com/wikical/wikical/app/database"
	"github.com/wikical/wikical/app/tasks"
)

// MockCalendarStore implements a simple mock for testing
type MockCalendarStore struct {
	calendars map[string]*database.Calendar
	err       error
}

var _ CalendarStore = (*MockCalendarStore)(nil)

func (m *MockCalendarStore) GetCalendar(name string) (*database.Calendar, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.calendars[name], nil
}

func (m *MockCalendarStore) GetCalendarCount() (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	return len(m.calendars), nil
}

// MockEventStore implements a simple mock for testing
type MockEventStore struct {
	events map[string][]database.Event
	err    error
}

var _ EventStore = (*MockEventStore)(nil)

func (m *MockEventStore) GetEvents(calendarName string) ([]database.Event, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.events[calendarName], nil
}

func (m *MockEventStore) GetEventCount(calendarName string) (int, error) {
	return len(m.events[calendarName]), nil
}

func (m *MockEventStore) GetTotalEventCount() (int, error) {
	total := 0
	for _, events := range m.events {
		total += len(events)
	}
	return total, nil
}

// MockScheduler implements a simple mock for testing
type MockScheduler struct {
	enqueued []string
	err      error
}

var _ tasks.TaskSchedulerInterface = (*MockScheduler)(nil)

func (m *MockScheduler) Start() {}
func (m *MockScheduler) Stop()  {}

func (m *MockScheduler) EnqueueTask(task tasks.TaskInterface) error {
	return m.err
}

func (m *MockScheduler) EnqueueProcessCalendar(calendarName string) error {
	if m.err != nil {
		return m.err
	}
	m.enqueued = append(m.enqueued, calendarName)
	return nil
}

func testConfigCache(t *testing.T) *calendar.ConfigCache {
	t.Helper()

	dir := t.TempDir()
	content := `wiki: "https://wiki.example.org/w/api.php"
suffix: "_(events)"
settings:
  enabled: true
`
	if err := os.WriteFile(filepath.Join(dir, "history.yml"), []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write calendar file: %v", err)
	}

	cache := calendar.NewConfigCache(dir)
	if err := cache.Run(); err != nil {
		t.Fatalf("Failed to load configs: %v", err)
	}
	return cache
}

func testHandlerSetup(t *testing.T) (*Handler, *MockCalendarStore, *MockEventStore, *MockScheduler) {
	t.Helper()

	gin.SetMode(gin.TestMode)

	refreshedAt := time.Date(2022, 6, 1, 12, 0, 0, 0, time.UTC)
	calendarStore := &MockCalendarStore{
		calendars: map[string]*database.Calendar{
			"history": {
				Name:            "history",
				WikiURL:         "https://wiki.example.org/w/api.php",
				LastRefreshedAt: &refreshedAt,
			},
		},
	}
	eventStore := &MockEventStore{
		events: map[string][]database.Event{
			"history": {
				{
					CalendarName: "history",
					Position:     0,
					Title:        "25 December (events)",
					Start:        time.Date(2022, 12, 25, 0, 0, 0, 0, time.UTC),
					End:          time.Date(2022, 12, 26, 0, 0, 0, 0, time.UTC),
					URL:          "https://wiki.example.org/wiki/25_December_(events)",
					Color:        "red",
					CreatedAt:    refreshedAt,
				},
			},
		},
	}
	scheduler := &MockScheduler{}

	handler := NewHandler(testConfigCache(t), calendarStore, eventStore, scheduler)
	return handler, calendarStore, eventStore, scheduler
}

func performRequest(handler gin.HandlerFunc, method, path string) *httptest.ResponseRecorder {
	router := gin.New()
	router.Handle(method, "/calendars/:name", handler)
	router.Handle(method, "/probe", handler)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	router.ServeHTTP(w, req)
	return w
}

func TestGetCalendar(t *testing.T) {
	handler, _, _, _ := testHandlerSetup(t)

	w := performRequest(handler.GetCalendar, "GET", "/calendars/history")

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if got := w.Header().Get("X-Calendar-Events"); got != "1" {
		t.Errorf("Unexpected X-Calendar-Events header: %q", got)
	}
	if got := w.Header().Get("X-Last-Refreshed"); got == "" {
		t.Error("Expected X-Last-Refreshed header")
	}

	var output []EventOutput
	if err := json.Unmarshal(w.Body.Bytes(), &output); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(output) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(output))
	}
	if output[0].Title != "25 December (events)" {
		t.Errorf("Unexpected title: %q", output[0].Title)
	}
	if output[0].Start != "2022-12-25" || output[0].End != "2022-12-26" {
		t.Errorf("Unexpected dates: %q..%q", output[0].Start, output[0].End)
	}
	if output[0].Color != "red" {
		t.Errorf("Unexpected color: %q", output[0].Color)
	}
}

func TestGetCalendar_UnknownConfig(t *testing.T) {
	handler, _, _, _ := testHandlerSetup(t)

	w := performRequest(handler.GetCalendar, "GET", "/calendars/nope")

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", w.Code)
	}
}

func TestGetCalendar_NotYetSynced(t *testing.T) {
	handler, calendarStore, _, _ := testHandlerSetup(t)
	delete(calendarStore.calendars, "history")

	w := performRequest(handler.GetCalendar, "GET", "/calendars/history")

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 before the first sync, got %d", w.Code)
	}
}

func TestGetCalendar_DatabaseError(t *testing.T) {
	handler, calendarStore, _, _ := testHandlerSetup(t)
	calendarStore.err = errors.New("database unavailable")

	w := performRequest(handler.GetCalendar, "GET", "/calendars/history")

	if w.Code != http.StatusInternalServerError {
		t.Errorf("Expected 500, got %d", w.Code)
	}
}

func TestGetCalendarICS(t *testing.T) {
	handler, _, _, _ := testHandlerSetup(t)

	w := performRequest(handler.GetCalendarICS, "GET", "/calendars/history")

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if got := w.Header().Get("Content-Type"); !strings.HasPrefix(got, "text/calendar") {
		t.Errorf("Unexpected content type: %q", got)
	}
	body := w.Body.String()
	if !strings.HasPrefix(body, "BEGIN:VCALENDAR") {
		t.Error("Expected an iCalendar body")
	}
	if !strings.Contains(body, "SUMMARY:25 December (events)") {
		t.Errorf("Expected the event in the output, got:\n%s", body)
	}
}

func TestGetHealth(t *testing.T) {
	handler, _, _, _ := testHandlerSetup(t)

	w := performRequest(handler.GetHealth, "GET", "/probe")

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	var health map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &health); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if health["loaded_configurations"] != float64(1) {
		t.Errorf("Unexpected loaded_configurations: %v", health["loaded_configurations"])
	}
	if health["calendars"] != float64(1) {
		t.Errorf("Unexpected calendars: %v", health["calendars"])
	}
}

func TestAPIListCalendars(t *testing.T) {
	handler, _, _, _ := testHandlerSetup(t)

	w := performRequest(handler.APIListCalendars, "GET", "/probe")

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	var response struct {
		Calendars []map[string]interface{} `json:"calendars"`
		Total     int                      `json:"total"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if response.Total != 1 {
		t.Fatalf("Expected 1 calendar, got %d", response.Total)
	}
	if response.Calendars[0]["name"] != "history" {
		t.Errorf("Unexpected calendar name: %v", response.Calendars[0]["name"])
	}
	if response.Calendars[0]["event_count"] != float64(1) {
		t.Errorf("Unexpected event count: %v", response.Calendars[0]["event_count"])
	}
}

func TestAPIGetCalendarDetails(t *testing.T) {
	handler, _, _, _ := testHandlerSetup(t)

	w := performRequest(handler.APIGetCalendarDetails, "GET", "/calendars/history")

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	var details map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &details); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if details["suffix"] != "_(events)" {
		t.Errorf("Unexpected suffix: %v", details["suffix"])
	}
	if details["enabled"] != true {
		t.Errorf("Expected the calendar enabled, got %v", details["enabled"])
	}
}

func TestAPIRefreshCalendar(t *testing.T) {
	handler, _, _, scheduler := testHandlerSetup(t)

	w := performRequest(handler.APIRefreshCalendar, "POST", "/calendars/history")

	if w.Code != http.StatusAccepted {
		t.Fatalf("Expected 202, got %d", w.Code)
	}
	if len(scheduler.enqueued) != 1 || scheduler.enqueued[0] != "history" {
		t.Errorf("Expected the refresh enqueued, got %v", scheduler.enqueued)
	}
}

func TestAPIRefreshCalendar_SchedulerError(t *testing.T) {
	handler, _, _, scheduler := testHandlerSetup(t)
	scheduler.err = errors.New("queue full")

	w := performRequest(handler.APIRefreshCalendar, "POST", "/calendars/history")

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", w.Code)
	}
}
