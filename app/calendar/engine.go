package calendar

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Engine runs one calendar extraction end to end: list candidate pages,
// match titles, parse dates, enrich with colors and snippets, then
// merge into the final event list. One run is a pure, single-pass batch
// computation; per-page problems degrade that page only.
type Engine struct {
	source     PageSource
	snippets   *SnippetProvider
	aggregator *Aggregator
}

func NewEngine(source PageSource, renderer Renderer, cache SnippetCache) *Engine {
	return &Engine{
		source:     source,
		snippets:   NewSnippetProvider(cache, renderer),
		aggregator: NewAggregator(),
	}
}

// Run computes the event list for one calendar. Dates extracted from
// titles are placed in referenceYear.
func (e *Engine) Run(ctx context.Context, config *Config, referenceYear int) ([]Event, error) {
	if config.dateParser == nil {
		return nil, fmt.Errorf("calendar config '%s' was not validated", config.Name)
	}
	if referenceYear == 0 {
		referenceYear = time.Now().Year()
	}

	pages, err := e.source.ListPages(ctx, config.Namespace)
	if err != nil {
		return nil, fmt.Errorf("failed to list pages: %w", err)
	}

	matches := NewMatcher(config).Run(pages)

	// Unparseable or invalid dates are selection mismatches, filtered
	// silently just like titles that never matched.
	dated := make([]Match, 0, len(matches))
	dates := make([]time.Time, 0, len(matches))
	for _, match := range matches {
		date, ok := config.dateParser.Parse(match.DateToken, referenceYear)
		if !ok {
			slog.Debug("Skipping page with unparseable date", "calendar", config.Name, "page", match.PageTitle, "token", match.DateToken)
			continue
		}
		dated = append(dated, match)
		dates = append(dates, date)
	}

	if len(dated) == 0 {
		return []Event{}, nil
	}

	titles := make([]string, len(dated))
	for i, match := range dated {
		titles[i] = match.PageTitle
	}

	infos, err := e.source.GetPages(ctx, titles)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pages: %w", err)
	}

	resolver := NewColorResolver(config)

	candidates := make([]Candidate, 0, len(dated))
	for i, match := range dated {
		info, ok := infos[match.PageTitle]
		if !ok {
			slog.Debug("Page vanished between listing and fetch", "calendar", config.Name, "page", match.PageTitle)
			continue
		}

		candidate := Candidate{
			PageTitle:    match.PageTitle,
			DisplayTitle: match.DisplayTitle,
			SortKey:      match.SortKey,
			Date:         dates[i],
			URL:          info.URL,
		}

		if len(config.Categories) > 0 || len(config.Keywords) > 0 {
			candidate.Color = resolver.Run(match.DisplayTitle, info.Categories, info.Text)
		}

		if config.Symbols > 0 {
			snippet, err := e.snippets.Run(ctx, match.PageTitle, info.RevID, config.Symbols)
			if err != nil {
				// Rendering failure must not abort the batch; the event
				// keeps its page-derived title.
				slog.Warn("Snippet rendering failed", "calendar", config.Name, "page", match.PageTitle, "error", err)
			} else {
				candidate.Snippet = snippet
			}
		}

		candidates = append(candidates, candidate)
	}

	return e.aggregator.Run(candidates, config.Limit), nil
}
