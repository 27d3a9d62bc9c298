package calendar

import (
	"fmt"
	"strings"

	ics "github.com/arran4/golang-ical"
	"golang.org/x/net/html"

	"github.com/wikical/wikical/app/database"
)

// ICSGenerator serializes a calendar's stored events into iCalendar
// format. Events are all-day; DTEND stays exclusive, matching the
// stored end date.
type ICSGenerator struct{}

func NewICSGenerator() *ICSGenerator {
	return &ICSGenerator{}
}

func (g *ICSGenerator) Run(cal database.Calendar, events []database.Event) (string, error) {
	c := ics.NewCalendar()
	c.SetMethod(ics.MethodPublish)
	c.SetProductId("-//wikical//EN")

	for _, event := range events {
		e := c.AddEvent(fmt.Sprintf("%s-%d@wikical", cal.Name, event.Position))
		e.SetDtStampTime(event.CreatedAt.UTC())
		e.SetAllDayStartAt(event.Start)
		e.SetAllDayEndAt(event.End)
		e.SetProperty(ics.ComponentPropertySummary, htmlToText(event.Title))
		if event.URL != "" {
			e.SetProperty(ics.ComponentProperty("URL"), event.URL)
		}
		if event.Color != "" {
			e.SetProperty(ics.ComponentProperty("COLOR"), event.Color)
		}
	}

	return c.Serialize(), nil
}

// htmlToText flattens snippet HTML into plain text for the SUMMARY
// property. Titles without markup pass through unchanged.
func htmlToText(src string) string {
	if !strings.ContainsRune(src, '<') {
		return src
	}

	tokenizer := html.NewTokenizer(strings.NewReader(src))
	var out strings.Builder
	for {
		tokenType := tokenizer.Next()
		if tokenType == html.ErrorToken {
			break
		}
		if tokenType == html.TextToken {
			out.Write(tokenizer.Text())
		}
	}
	return strings.TrimSpace(out.String())
}
