package calendar

import (
	"cmp"
	"slices"
)

// Aggregator turns enriched candidates into the final event list:
// same-named candidates on consecutive days merge into date ranges, an
// optional cap is applied, and the result is ordered by title.
type Aggregator struct{}

func NewAggregator() *Aggregator {
	return &Aggregator{}
}

func (a *Aggregator) Run(candidates []Candidate, limit int) []Event {
	slices.SortFunc(candidates, func(x, y Candidate) int {
		if c := cmp.Compare(x.SortKey, y.SortKey); c != 0 {
			return c
		}
		return x.Date.Compare(y.Date)
	})

	events := a.merge(candidates)

	// The cap keeps the earliest N events in (start date, title) order;
	// the survivors are then re-sorted by title for presentation.
	if limit > 0 && len(events) > limit {
		slices.SortFunc(events, func(x, y Event) int {
			if c := x.Start.Compare(y.Start); c != 0 {
				return c
			}
			return cmp.Compare(x.sortKey, y.sortKey)
		})
		events = events[:limit]
	}

	slices.SortFunc(events, func(x, y Event) int {
		if c := cmp.Compare(x.sortKey, y.sortKey); c != 0 {
			return c
		}
		return x.Start.Compare(y.Start)
	})

	return events
}

// merge walks date-sorted candidates and folds runs of identically
// titled candidates on consecutive days into single events. The first
// (earliest-dated) candidate of a run contributes the event's URL,
// color and snippet.
func (a *Aggregator) merge(candidates []Candidate) []Event {
	events := make([]Event, 0, len(candidates))

	for _, c := range candidates {
		if len(events) > 0 {
			last := &events[len(events)-1]
			if last.sortKey == c.SortKey && last.End.Equal(c.Date) {
				last.End = c.Date.AddDate(0, 0, 1)
				continue
			}
		}

		events = append(events, Event{
			Title:   a.eventTitle(c),
			Start:   c.Date,
			End:     c.Date.AddDate(0, 0, 1),
			URL:     c.URL,
			Color:   c.Color,
			sortKey: c.SortKey,
		})
	}

	return events
}

// eventTitle picks the text shown on the calendar: the rendered snippet
// when available, the page-derived name otherwise.
func (a *Aggregator) eventTitle(c Candidate) string {
	if c.Snippet != "" {
		return c.Snippet
	}
	return c.DisplayTitle
}
