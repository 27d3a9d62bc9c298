package tasks

import (
	"time"

	"github.com/wikical/wikical/app/database"
)

// TaskSchedulerInterface defines the interface for task scheduling
// operations. Used by the main application and the API layer to manage
// background calendar processing.
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
	EnqueueProcessCalendar(calendarName string) error
}

// CalendarStore is the slice of calendar persistence the tasks need.
type CalendarStore interface {
	UpsertCalendar(name, wikiURL string) error
	GetCalendar(name string) (*database.Calendar, error)
	UpdateRefreshStatus(name string, refreshedAt, nextRefreshAt time.Time) error
}

// EventStore is the slice of event persistence the tasks need.
type EventStore interface {
	ReplaceEvents(calendarName string, events []database.CalendarEvent) error
}
