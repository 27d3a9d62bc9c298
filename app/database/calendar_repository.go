package database

import (
	"database/sql"
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// CalendarRepository handles database operations for calendars
type CalendarRepository struct {
	db *DB
}

func NewCalendarRepository(db *DB) *CalendarRepository {
	return &CalendarRepository{db: db}
}

// UpsertCalendar registers a calendar or updates its wiki URL.
func (r *CalendarRepository) UpsertCalendar(name, wikiURL string) error {
	_, err := r.db.Exec(`
		INSERT INTO calendars (name, wiki_url)
		VALUES (?, ?)
		ON CONFLICT (name) DO UPDATE SET
			wiki_url = excluded.wiki_url,
			updated_at = CURRENT_TIMESTAMP
	`, name, wikiURL)
	if err != nil {
		return fmt.Errorf("failed to upsert calendar: %w", err)
	}
	return nil
}

// GetCalendar returns a calendar by name, or nil if it is not registered.
func (r *CalendarRepository) GetCalendar(name string) (*Calendar, error) {
	var cal Calendar
	err := r.db.QueryRow(`
		SELECT name, wiki_url, last_refreshed_at, next_refresh_at, created_at, updated_at
		FROM calendars
		WHERE name = ?
	`, name).Scan(&cal.Name, &cal.WikiURL, &cal.LastRefreshedAt, &cal.NextRefreshAt,
		&cal.CreatedAt, &cal.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get calendar: %w", err)
	}
	return &cal, nil
}

// UpdateRefreshStatus records a completed refresh and schedules the next one.
func (r *CalendarRepository) UpdateRefreshStatus(name string, refreshedAt, nextRefreshAt time.Time) error {
	_, err := r.db.Exec(`
		UPDATE calendars
		SET last_refreshed_at = ?, next_refresh_at = ?, updated_at = CURRENT_TIMESTAMP
		WHERE name = ?
	`, refreshedAt, nextRefreshAt, name)
	if err != nil {
		return fmt.Errorf("failed to update refresh status: %w", err)
	}
	return nil
}

// GetCalendarCount returns the number of registered calendars.
func (r *CalendarRepository) GetCalendarCount() (int, error) {
	var count int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM calendars`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count calendars: %w", err)
	}
	return count, nil
}
