package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wikical/wikical/app/calendar"
	"github.com/wikical/wikical/app/cfg"
	"github.com/wikical/wikical/app/tasks"
)

const dateLayout = "2006-01-02"

func NewHandler(configCache *calendar.ConfigCache, calendarRepo CalendarStore,
	eventRepo EventStore, scheduler tasks.TaskSchedulerInterface) *Handler {
	return &Handler{
		configCache:  configCache,
		calendarRepo: calendarRepo,
		eventRepo:    eventRepo,
		icsGenerator: calendar.NewICSGenerator(),
		scheduler:    scheduler,
	}
}

func (h *Handler) GetCalendar(c *gin.Context) {
	name := c.Param("name")
	if name == "" {
		c.Status(http.StatusBadRequest)
		return
	}

	if _, err := h.configCache.GetConfig(name); err != nil {
		slog.Error("Calendar configuration not found", "calendar", name, "error", err)
		c.Status(http.StatusNotFound)
		return
	}

	cal, err := h.calendarRepo.GetCalendar(name)
	if err != nil {
		slog.Error("Database error", "operation", "get_calendar", "calendar", name, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}
	if cal == nil {
		slog.Error("Calendar not found in database", "calendar", name)
		c.Status(http.StatusNotFound)
		return
	}

	events, err := h.eventRepo.GetEvents(name)
	if err != nil {
		slog.Error("Database error", "operation", "get_events", "calendar", name, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	output := make([]EventOutput, 0, len(events))
	for _, event := range events {
		output = append(output, EventOutput{
			Title: event.Title,
			Start: event.Start.Format(dateLayout),
			End:   event.End.Format(dateLayout),
			URL:   event.URL,
			Color: event.Color,
		})
	}

	c.Header("X-Calendar-Events", strconv.Itoa(len(output)))
	c.Header("X-Calendar-Name", name)
	if cal.LastRefreshedAt != nil {
		c.Header("X-Last-Refreshed", cal.LastRefreshedAt.Format(time.RFC3339))
	}

	c.JSON(http.StatusOK, output)
}

func (h *Handler) GetCalendarICS(c *gin.Context) {
	name := c.Param("name")
	if name == "" {
		c.Status(http.StatusBadRequest)
		return
	}

	if _, err := h.configCache.GetConfig(name); err != nil {
		slog.Error("Calendar configuration not found", "calendar", name, "error", err)
		c.Status(http.StatusNotFound)
		return
	}

	cal, err := h.calendarRepo.GetCalendar(name)
	if err != nil || cal == nil {
		slog.Error("Calendar not found in database", "calendar", name, "error", err)
		c.Status(http.StatusNotFound)
		return
	}

	events, err := h.eventRepo.GetEvents(name)
	if err != nil {
		slog.Error("Database error", "operation", "get_events", "calendar", name, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	serialized, err := h.icsGenerator.Run(*cal, events)
	if err != nil {
		slog.Error("ICS generation error", "calendar", name, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.Header("Content-Type", "text/calendar; charset=utf-8")
	c.String(http.StatusOK, serialized)
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	if calendarCount, err := h.calendarRepo.GetCalendarCount(); err == nil {
		health["calendars"] = calendarCount
	}

	health["loaded_configurations"] = h.configCache.GetConfigCount()

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetStats(c *gin.Context) {
	stats := map[string]interface{}{
		"service":               "wikical",
		"version":               cfg.Get().Version,
		"loaded_configurations": h.configCache.GetConfigCount(),
	}

	if calendarCount, err := h.calendarRepo.GetCalendarCount(); err == nil {
		stats["calendars"] = calendarCount
	}
	if eventCount, err := h.eventRepo.GetTotalEventCount(); err == nil {
		stats["events"] = eventCount
	}

	c.JSON(http.StatusOK, stats)
}

func (h *Handler) APIListCalendars(c *gin.Context) {
	configs := h.configCache.GetConfigs()

	calendars := make([]map[string]interface{}, 0, len(configs))

	for _, config := range configs {
		info := map[string]interface{}{
			"name":             config.Name,
			"wiki":             config.WikiURL,
			"namespace":        config.Namespace,
			"enabled":          config.Settings.Enabled,
			"refresh_interval": (time.Duration(config.Settings.RefreshInterval) * time.Second).String(),
			"limit":            config.Limit,
			"symbols":          config.Symbols,
		}

		if cal, err := h.calendarRepo.GetCalendar(config.Name); err == nil && cal != nil {
			info["last_refreshed_at"] = cal.LastRefreshedAt
			info["next_refresh_at"] = cal.NextRefreshAt
			info["updated_at"] = cal.UpdatedAt
		}

		if eventCount, err := h.eventRepo.GetEventCount(config.Name); err == nil {
			info["event_count"] = eventCount
		}

		calendars = append(calendars, info)
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"calendars": calendars,
		"total":     len(calendars),
	})
}

func (h *Handler) APIGetCalendarDetails(c *gin.Context) {
	name := c.Param("name")
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing calendar name parameter"})
		return
	}

	config, err := h.configCache.GetConfig(name)
	if err != nil {
		slog.Error("Calendar configuration not found", "calendar", name, "error", err)
		c.JSON(http.StatusNotFound, gin.H{"error": "Calendar configuration not found"})
		return
	}

	details := map[string]interface{}{
		"name":            config.Name,
		"wiki":            config.WikiURL,
		"namespace":       config.Namespace,
		"prefix":          config.Prefix,
		"suffix":          config.Suffix,
		"titleregex":      config.TitleRegex,
		"dateformat":      config.DateFormat,
		"symbols":         config.Symbols,
		"limit":           config.Limit,
		"category_colors": len(config.Categories),
		"keyword_colors":  len(config.Keywords),
		"enabled":         config.Settings.Enabled,
	}

	if cal, err := h.calendarRepo.GetCalendar(name); err == nil && cal != nil {
		details["last_refreshed_at"] = cal.LastRefreshedAt
		details["next_refresh_at"] = cal.NextRefreshAt
	}

	if eventCount, err := h.eventRepo.GetEventCount(name); err == nil {
		details["event_count"] = eventCount
	}

	c.JSON(http.StatusOK, details)
}

func (h *Handler) APIRefreshCalendar(c *gin.Context) {
	name := c.Param("name")
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing calendar name parameter"})
		return
	}

	if err := h.scheduler.EnqueueProcessCalendar(name); err != nil {
		slog.Error("Failed to enqueue refresh", "calendar", name, "error", err)
		c.JSON(http.StatusNotFound, gin.H{"error": "Failed to schedule refresh: " + err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"message":  "Refresh scheduled",
		"calendar": name,
	})
}
