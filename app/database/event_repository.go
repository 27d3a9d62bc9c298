package database

import (
	"fmt"
	"time"
)

// EventRepository handles database operations for computed events
type EventRepository struct {
	db *DB
}

func NewEventRepository(db *DB) *EventRepository {
	return &EventRepository{db: db}
}

// ReplaceEvents atomically swaps a calendar's stored event list for a
// freshly computed one. Position preserves the engine's output order.
func (r *EventRepository) ReplaceEvents(calendarName string, events []CalendarEvent) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM events WHERE calendar_name = ?`, calendarName); err != nil {
		return fmt.Errorf("failed to delete stale events: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO events (calendar_name, position, title, start_date, end_date, url, color)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for position, event := range events {
		_, err := stmt.Exec(calendarName, position, event.Title,
			event.Start.Format(dateLayout), event.End.Format(dateLayout),
			event.URL, event.Color)
		if err != nil {
			return fmt.Errorf("failed to insert event: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit events: %w", err)
	}
	return nil
}

// GetEvents returns a calendar's stored events in their computed order.
func (r *EventRepository) GetEvents(calendarName string) ([]Event, error) {
	rows, err := r.db.Query(`
		SELECT id, calendar_name, position, title, start_date, end_date, url, color, created_at
		FROM events
		WHERE calendar_name = ?
		ORDER BY position
	`, calendarName)
	if err != nil {
		return nil, fmt.Errorf("failed to get events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var event Event
		var start, end string
		err := rows.Scan(&event.ID, &event.CalendarName, &event.Position, &event.Title,
			&start, &end, &event.URL, &event.Color, &event.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event row: %w", err)
		}

		if event.Start, err = time.Parse(dateLayout, start); err != nil {
			return nil, fmt.Errorf("failed to parse start date %q: %w", start, err)
		}
		if event.End, err = time.Parse(dateLayout, end); err != nil {
			return nil, fmt.Errorf("failed to parse end date %q: %w", end, err)
		}

		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating event rows: %w", err)
	}

	return events, nil
}

// GetEventCount returns the number of stored events for one calendar.
func (r *EventRepository) GetEventCount(calendarName string) (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM events WHERE calendar_name = ?`, calendarName).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count events: %w", err)
	}
	return count, nil
}

// GetTotalEventCount returns the number of stored events across all calendars.
func (r *EventRepository) GetTotalEventCount() (int, error) {
	var count int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM events`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count events: %w", err)
	}
	return count, nil
}
