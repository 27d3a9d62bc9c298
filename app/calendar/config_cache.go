package calendar

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sync"

	"gopkg.in/yaml.v3"
)

// ConfigCache loads and holds per-calendar configuration files. One
// .yml file in the calendars directory defines one calendar.
type ConfigCache struct {
	calendarsDir string
	cache        map[string]*Config
	mu           sync.RWMutex
}

func NewConfigCache(calendarsDir string) *ConfigCache {
	return &ConfigCache{
		calendarsDir: calendarsDir,
		cache:        make(map[string]*Config),
	}
}

func (cc *ConfigCache) Run() error {
	if _, err := os.Stat(cc.calendarsDir); os.IsNotExist(err) {
		return nil
	}

	files, err := filepath.Glob(filepath.Join(cc.calendarsDir, "*.yml"))
	if err != nil {
		return fmt.Errorf("failed to find YML files: %w", err)
	}

	for _, file := range files {
		fileName := filepath.Base(file)
		calendarName := fileName[:len(fileName)-4] // Remove .yml extension

		config, err := cc.LoadConfig(calendarName)
		if err != nil {
			return fmt.Errorf("error loading %s: %w", file, err)
		}

		slog.Debug("Configuration loaded", "calendar", calendarName, "enabled", config.Settings.Enabled, "refresh_interval", config.Settings.RefreshInterval)
	}

	return nil
}

func (cc *ConfigCache) LoadConfig(calendarName string) (*Config, error) {
	configFile := cc.getConfigFilePath(calendarName)
	config, err := cc.parseConfig(configFile)
	if err != nil {
		return nil, err
	}

	config.Name = calendarName

	if err := config.compile(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", configFile, err)
	}

	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.cache[config.Name] = config

	return config, nil
}

func (cc *ConfigCache) GetConfig(calendarName string) (*Config, error) {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	config, ok := cc.cache[calendarName]
	if !ok {
		return nil, fmt.Errorf("calendar config with name '%s' not found", calendarName)
	}
	return config, nil
}

func (cc *ConfigCache) GetConfigs() map[string]*Config {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	configsCopy := make(map[string]*Config, len(cc.cache))
	for k, v := range cc.cache {
		configsCopy[k] = v
	}
	return configsCopy
}

func (cc *ConfigCache) GetEnabledConfigs() map[string]*Config {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	enabledConfigs := make(map[string]*Config)
	for k, v := range cc.cache {
		if v.Settings.Enabled {
			enabledConfigs[k] = v
		}
	}
	return enabledConfigs
}

func (cc *ConfigCache) GetConfigCount() int {
	cc.mu.RLock()
	defer cc.mu.RUnlock()
	return len(cc.cache)
}

func (cc *ConfigCache) parseConfig(configFile string) (*Config, error) {
	data, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if config.DateFormat == "" {
		config.DateFormat = "j F"
	}
	if config.Settings.RefreshInterval == 0 {
		config.Settings.RefreshInterval = 3600
	}
	if config.Settings.Timeout == 0 {
		config.Settings.Timeout = 60
	}

	return &config, nil
}

func (cc *ConfigCache) getConfigFilePath(calendarName string) string {
	return filepath.Join(cc.calendarsDir, calendarName+".yml")
}

// compile validates a configuration and builds its derived state (the
// compiled title regexp and the date parser). Any problem here aborts
// the whole calendar; bad config never degrades silently.
func (c *Config) compile() error {
	if c.Name == "" {
		return fmt.Errorf("calendar name is required")
	}
	if c.WikiURL == "" {
		return fmt.Errorf("wiki API URL is required")
	}

	nonNegativeFields := map[string]int{
		"symbols":          c.Symbols,
		"limit":            c.Limit,
		"refresh interval": c.Settings.RefreshInterval,
		"timeout":          c.Settings.Timeout,
	}
	for fieldName, fieldValue := range nonNegativeFields {
		if fieldValue < 0 {
			return fmt.Errorf("%s must be non-negative", fieldName)
		}
	}

	// titleregex takes precedence over prefix/suffix when both appear.
	if c.TitleRegex != "" {
		re, err := regexp.Compile(c.TitleRegex)
		if err != nil {
			return fmt.Errorf("invalid titleregex: %w", err)
		}
		c.titleRe = re
	}

	parser, err := NewDateParser(c.DateFormat)
	if err != nil {
		return fmt.Errorf("invalid dateformat: %w", err)
	}
	c.dateParser = parser

	for i, rule := range c.Categories {
		if rule.Category == "" || rule.Color == "" {
			return fmt.Errorf("categorycolors entry at index %d must set both category and color", i)
		}
	}
	for i, rule := range c.Keywords {
		if rule.Keyword == "" || rule.Color == "" {
			return fmt.Errorf("keywordcolors entry at index %d must set both keyword and color", i)
		}
	}

	return nil
}
