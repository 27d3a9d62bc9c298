package api

import (
	"github.com/wikical/wikical/app/calendar"
	"github.com/wikical/wikical/app/database"
	"github.com/wikical/wikical/app/tasks"
)

type ICSGeneratorInterface interface {
	Run(cal database.Calendar, events []database.Event) (string, error)
}

var _ ICSGeneratorInterface = (*calendar.ICSGenerator)(nil)

// CalendarStore is the slice of calendar persistence the handlers need.
type CalendarStore interface {
	GetCalendar(name string) (*database.Calendar, error)
	GetCalendarCount() (int, error)
}

// EventStore is the slice of event persistence the handlers need.
type EventStore interface {
	GetEvents(calendarName string) ([]database.Event, error)
	GetEventCount(calendarName string) (int, error)
	GetTotalEventCount() (int, error)
}

type Handler struct {
	configCache  *calendar.ConfigCache
	calendarRepo CalendarStore
	eventRepo    EventStore
	icsGenerator ICSGeneratorInterface
	scheduler    tasks.TaskSchedulerInterface
}

// EventOutput is the wire format consumed by the calendar widget. Dates
// are YYYY-MM-DD; end is exclusive.
type EventOutput struct {
	Title string `json:"title"`
	Start string `json:"start"`
	End   string `json:"end"`
	URL   string `json:"url"`
	Color string `json:"color,omitempty"`
}
