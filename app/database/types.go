package database

import (
	"time"
)

type Calendar struct {
	Name            string // Configuration identifier derived from filename
	WikiURL         string // api.php endpoint of the source wiki
	LastRefreshedAt *time.Time
	NextRefreshAt   *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type Event struct {
	ID           int64
	CalendarName string
	Position     int // order within the computed event list
	Title        string
	Start        time.Time // inclusive
	End          time.Time // exclusive
	URL          string
	Color        string
	CreatedAt    time.Time
}

// CalendarEvent is the input record for event storage, produced by the
// extraction engine.
type CalendarEvent struct {
	Title string
	Start time.Time
	End   time.Time
	URL   string
	Color string
}
