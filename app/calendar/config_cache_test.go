package calendar

import (
	"os"
	"path/filepath"
	"testing"
)

func writeCalendarFile(t *testing.T, dir string, name string, content string) {
	t.Helper()

	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write calendar file: %v", err)
	}
}

func TestConfigCache_LoadsCalendars(t *testing.T) {
	dir := t.TempDir()
	writeCalendarFile(t, dir, "history.yml", `wiki: "https://wiki.example.org/w/api.php"
namespace: "Template"
prefix: "Today_in_History/"
dateformat: "F,_j"
settings:
  enabled: true
  refresh_interval: 1800
`)
	writeCalendarFile(t, dir, "holidays.yml", `wiki: "https://wiki.example.org/w/api.php"
suffix: "_(events)"
settings:
  enabled: false
`)

	cache := NewConfigCache(dir)
	if err := cache.Run(); err != nil {
		t.Fatalf("Failed to load configs: %v", err)
	}

	if cache.GetConfigCount() != 2 {
		t.Fatalf("Expected 2 configs, got %d", cache.GetConfigCount())
	}

	config, err := cache.GetConfig("history")
	if err != nil {
		t.Fatalf("Failed to get config: %v", err)
	}
	if config.Name != "history" {
		t.Errorf("Expected name from filename, got %q", config.Name)
	}
	if config.Namespace != "Template" {
		t.Errorf("Unexpected namespace: %q", config.Namespace)
	}
	if config.Settings.RefreshInterval != 1800 {
		t.Errorf("Unexpected refresh interval: %d", config.Settings.RefreshInterval)
	}
}

func TestConfigCache_Defaults(t *testing.T) {
	dir := t.TempDir()
	writeCalendarFile(t, dir, "minimal.yml", `wiki: "https://wiki.example.org/w/api.php"
`)

	cache := NewConfigCache(dir)
	if err := cache.Run(); err != nil {
		t.Fatalf("Failed to load configs: %v", err)
	}

	config, err := cache.GetConfig("minimal")
	if err != nil {
		t.Fatalf("Failed to get config: %v", err)
	}
	if config.DateFormat != "j F" {
		t.Errorf("Expected default dateformat 'j F', got %q", config.DateFormat)
	}
	if config.Settings.RefreshInterval != 3600 {
		t.Errorf("Expected default refresh interval 3600, got %d", config.Settings.RefreshInterval)
	}
	if config.Settings.Timeout != 60 {
		t.Errorf("Expected default timeout 60, got %d", config.Settings.Timeout)
	}
	if config.Symbols != 0 {
		t.Errorf("Expected snippets disabled by default, got symbols %d", config.Symbols)
	}
}

func TestConfigCache_MissingWikiURL(t *testing.T) {
	dir := t.TempDir()
	writeCalendarFile(t, dir, "broken.yml", `prefix: "Calendar/"
`)

	cache := NewConfigCache(dir)
	if err := cache.Run(); err == nil {
		t.Error("Expected error for config without a wiki URL")
	}
}

func TestConfigCache_InvalidRegex(t *testing.T) {
	dir := t.TempDir()
	writeCalendarFile(t, dir, "broken.yml", `wiki: "https://wiki.example.org/w/api.php"
titleregex: "(["
`)

	cache := NewConfigCache(dir)
	if err := cache.Run(); err == nil {
		t.Error("Expected error for invalid titleregex")
	}
}

func TestConfigCache_InvalidDateFormat(t *testing.T) {
	dir := t.TempDir()
	writeCalendarFile(t, dir, "broken.yml", `wiki: "https://wiki.example.org/w/api.php"
dateformat: "Y-m-d"
`)

	cache := NewConfigCache(dir)
	if err := cache.Run(); err == nil {
		t.Error("Expected error for unsupported dateformat directive")
	}
}

func TestConfigCache_NegativeLimit(t *testing.T) {
	dir := t.TempDir()
	writeCalendarFile(t, dir, "broken.yml", `wiki: "https://wiki.example.org/w/api.php"
limit: -1
`)

	cache := NewConfigCache(dir)
	if err := cache.Run(); err == nil {
		t.Error("Expected error for negative limit")
	}
}

func TestConfigCache_IncompleteColorRule(t *testing.T) {
	dir := t.TempDir()
	writeCalendarFile(t, dir, "broken.yml", `wiki: "https://wiki.example.org/w/api.php"
categorycolors:
  - category: "Holidays"
`)

	cache := NewConfigCache(dir)
	if err := cache.Run(); err == nil {
		t.Error("Expected error for a color rule without a color")
	}
}

func TestConfigCache_GetEnabledConfigs(t *testing.T) {
	dir := t.TempDir()
	writeCalendarFile(t, dir, "on.yml", `wiki: "https://wiki.example.org/w/api.php"
settings:
  enabled: true
`)
	writeCalendarFile(t, dir, "off.yml", `wiki: "https://wiki.example.org/w/api.php"
settings:
  enabled: false
`)

	cache := NewConfigCache(dir)
	if err := cache.Run(); err != nil {
		t.Fatalf("Failed to load configs: %v", err)
	}

	enabled := cache.GetEnabledConfigs()
	if len(enabled) != 1 {
		t.Fatalf("Expected 1 enabled config, got %d", len(enabled))
	}
	if _, ok := enabled["on"]; !ok {
		t.Error("Expected the enabled calendar in the result")
	}
}

func TestConfigCache_MissingDirectory(t *testing.T) {
	cache := NewConfigCache(filepath.Join(t.TempDir(), "does-not-exist"))
	if err := cache.Run(); err != nil {
		t.Fatalf("A missing calendars directory must not be fatal: %v", err)
	}
	if cache.GetConfigCount() != 0 {
		t.Errorf("Expected no configs, got %d", cache.GetConfigCount())
	}
}

func TestConfigCache_UnknownCalendar(t *testing.T) {
	cache := NewConfigCache(t.TempDir())
	if _, err := cache.GetConfig("nope"); err == nil {
		t.Error("Expected error for unknown calendar name")
	}
}
