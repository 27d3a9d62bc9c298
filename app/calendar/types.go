package calendar

import (
	"regexp"
	"time"
)

// Candidate is one matched wiki page with a successfully parsed date,
// prior to merging into an Event.
type Candidate struct {
	PageTitle    string // full page title as known to the wiki, e.g. "Template:Today in History/April, 12"
	DisplayTitle string // page name without namespace, underscores converted to spaces
	SortKey      string // underscored form of DisplayTitle, used for ordering
	Date         time.Time
	URL          string
	Color        string
	Snippet      string
}

// Event is a final, possibly multi-day output record. End is exclusive:
// a single-day event has End == Start + 1 day.
type Event struct {
	Title string
	Start time.Time
	End   time.Time
	URL   string
	Color string

	sortKey string
}

// Configuration types

type Config struct {
	Name       string          // Derived from filename (without .yml extension)
	WikiURL    string          `yaml:"wiki"`
	Namespace  string          `yaml:"namespace"`
	Prefix     string          `yaml:"prefix"`
	Suffix     string          `yaml:"suffix"`
	TitleRegex string          `yaml:"titleregex"`
	DateFormat string          `yaml:"dateformat"`
	Symbols    int             `yaml:"symbols"` // snippet length in characters, 0 = snippets disabled
	Limit      int             `yaml:"limit"`   // max events, 0 = unbounded
	Categories []CategoryColor `yaml:"categorycolors"`
	Keywords   []KeywordColor  `yaml:"keywordcolors"`
	Settings   ConfigSettings  `yaml:"settings"`

	titleRe    *regexp.Regexp
	dateParser *DateParser
}

type CategoryColor struct {
	Category string `yaml:"category"`
	Color    string `yaml:"color"`
}

type KeywordColor struct {
	Keyword string `yaml:"keyword"`
	Color   string `yaml:"color"`
}

type ConfigSettings struct {
	Enabled         bool `yaml:"enabled"`
	RefreshInterval int  `yaml:"refresh_interval"` // seconds
	Timeout         int  `yaml:"timeout"`          // seconds
}

// Collaborator data types

// PageRef identifies a page returned by a namespace listing.
type PageRef struct {
	Title  string
	PageID int64
}

// PageInfo is everything the engine needs to know about one candidate page.
type PageInfo struct {
	Title      string
	PageID     int64
	RevID      int64 // latest revision id, used as the snippet cache key
	URL        string
	Categories []string
	Text       string // raw page source, scanned by the keyword color rule
}
