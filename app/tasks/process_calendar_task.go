package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/wikical/wikical/app/calendar"
	"github.com/wikical/wikical/app/database"
	"github.com/wikical/wikical/app/wiki"
)

// ProcessCalendarTask recomputes one calendar's event list from its
// source wiki and replaces the stored events with the result.
type ProcessCalendarTask struct {
	Task
	Config        *calendar.Config
	httpClient    *http.Client
	snippetCache  calendar.SnippetCache
	calendarRepo  CalendarStore
	eventRepo     EventStore
	userAgent     string
	referenceYear int
}

func NewProcessCalendarTask(calendarName string, config *calendar.Config, httpClient *http.Client,
	snippetCache calendar.SnippetCache, calendarRepo CalendarStore, eventRepo EventStore,
	userAgent string, referenceYear int) *ProcessCalendarTask {
	return &ProcessCalendarTask{
		Task:          NewTask(TaskTypeProcessCalendar, calendarName),
		Config:        config,
		httpClient:    httpClient,
		snippetCache:  snippetCache,
		calendarRepo:  calendarRepo,
		eventRepo:     eventRepo,
		userAgent:     userAgent,
		referenceYear: referenceYear,
	}
}

func (t *ProcessCalendarTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if !t.Config.Settings.Enabled {
		slog.Debug("Calendar disabled, skipping", "calendar", t.CalendarName)
		return nil
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, time.Duration(t.Config.Settings.Timeout)*time.Second)
	defer cancel()

	client := wiki.NewClient(t.Config.WikiURL, t.httpClient, t.userAgent)
	engine := calendar.NewEngine(client, client, t.snippetCache)

	events, err := engine.Run(timeoutCtx, t.Config, t.referenceYear)
	if err != nil {
		return fmt.Errorf("failed to extract events: %w", err)
	}

	stored := make([]database.CalendarEvent, 0, len(events))
	for _, event := range events {
		stored = append(stored, database.CalendarEvent{
			Title: event.Title,
			Start: event.Start,
			End:   event.End,
			URL:   event.URL,
			Color: event.Color,
		})
	}

	if err := t.eventRepo.ReplaceEvents(t.CalendarName, stored); err != nil {
		return fmt.Errorf("failed to store events: %w", err)
	}

	now := time.Now().UTC()
	nextRefresh := now.Add(time.Duration(t.Config.Settings.RefreshInterval) * time.Second)
	if err := t.calendarRepo.UpdateRefreshStatus(t.CalendarName, now, nextRefresh); err != nil {
		return fmt.Errorf("failed to update refresh status: %w", err)
	}

	slog.Info("Task completed",
		"type", "ProcessCalendar",
		"calendar", t.CalendarName,
		"duration", t.GetDuration(),
		"events", len(events))

	return nil
}
