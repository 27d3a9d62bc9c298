package calendar

import (
	"strings"
)

// Match is one page title accepted by the selection rule, before its
// date token has been parsed.
type Match struct {
	PageTitle    string
	DateToken    string // underscores already converted to spaces
	DisplayTitle string
	SortKey      string
}

// Matcher applies the configured title selection rule (prefix/suffix or
// regular expression) to page titles. Titles that do not match are
// skipped silently.
type Matcher struct {
	cfg *Config
}

func NewMatcher(cfg *Config) *Matcher {
	return &Matcher{cfg: cfg}
}

func (m *Matcher) Run(pages []PageRef) []Match {
	matches := make([]Match, 0, len(pages))
	for _, page := range pages {
		if match, ok := m.matchTitle(page.Title); ok {
			matches = append(matches, match)
		}
	}
	return matches
}

func (m *Matcher) matchTitle(title string) (Match, bool) {
	// Wiki page names use underscores instead of spaces; prefix, suffix
	// and titleregex options are written against the underscored form.
	pageName := strings.ReplaceAll(m.stripNamespace(title), " ", "_")

	if m.cfg.titleRe != nil {
		return m.matchRegex(title, pageName)
	}
	return m.matchPrefixSuffix(title, pageName)
}

// matchPrefixSuffix extracts the date token between the configured
// prefix and suffix. The display title is the full page name: pages
// selected this way each carry their own date, so there is nothing to
// merge across titles.
func (m *Matcher) matchPrefixSuffix(title, pageName string) (Match, bool) {
	token, found := strings.CutPrefix(pageName, m.cfg.Prefix)
	if !found {
		return Match{}, false
	}
	token, found = strings.CutSuffix(token, m.cfg.Suffix)
	if !found {
		return Match{}, false
	}

	return Match{
		PageTitle:    title,
		DateToken:    strings.ReplaceAll(token, "_", " "),
		DisplayTitle: strings.ReplaceAll(pageName, "_", " "),
		SortKey:      pageName,
	}, true
}

// matchRegex extracts the date token from capture group 1 (or the whole
// match when the expression has no groups). The display title is the
// rest of the page name with the matched region removed, so same-named
// pages dated one day apart can later merge into a range.
func (m *Matcher) matchRegex(title, pageName string) (Match, bool) {
	loc := m.cfg.titleRe.FindStringSubmatchIndex(pageName)
	if loc == nil {
		return Match{}, false
	}

	token := pageName[loc[0]:loc[1]]
	if len(loc) >= 4 && loc[2] >= 0 {
		token = pageName[loc[2]:loc[3]]
	}

	remainder := pageName[:loc[0]] + pageName[loc[1]:]
	remainder = strings.Trim(remainder, "_")

	return Match{
		PageTitle:    title,
		DateToken:    strings.ReplaceAll(token, "_", " "),
		DisplayTitle: strings.ReplaceAll(remainder, "_", " "),
		SortKey:      remainder,
	}, true
}

// stripNamespace removes the configured namespace prefix from a full
// page title. Pages outside the namespace never reach the matcher, so a
// missing prefix just means the main namespace.
func (m *Matcher) stripNamespace(title string) string {
	if m.cfg.Namespace == "" {
		return title
	}
	if rest, found := strings.CutPrefix(title, m.cfg.Namespace+":"); found {
		return rest
	}
	return title
}
