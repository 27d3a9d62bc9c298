package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/wikical/wikical/app/calendar"
)

// SyncCalendarTask registers a configured calendar in the database so
// the scheduler and the API can track it.
type SyncCalendarTask struct {
	Task
	Config       *calendar.Config
	calendarRepo CalendarStore
}

func NewSyncCalendarTask(calendarName string, config *calendar.Config, calendarRepo CalendarStore) *SyncCalendarTask {
	return &SyncCalendarTask{
		Task:         NewTask(TaskTypeSyncCalendar, calendarName),
		Config:       config,
		calendarRepo: calendarRepo,
	}
}

func (t *SyncCalendarTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	err := t.calendarRepo.UpsertCalendar(t.Config.Name, t.Config.WikiURL)
	if err != nil {
		slog.Error("Task failed", "type", "SyncCalendar", "calendar", t.CalendarName, "error", err)
		return fmt.Errorf("failed to sync calendar config to database: %w", err)
	}

	slog.Info("Task completed",
		"type", "SyncCalendar",
		"calendar", t.CalendarName,
		"duration", t.GetDuration())

	return nil
}
