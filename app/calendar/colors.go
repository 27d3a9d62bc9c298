package calendar

import (
	"strings"
)

// ColorResolver assigns an optional display color to a page from the
// two configured rule lists. Category rules always win over keyword
// rules, regardless of how the lists are ordered in the configuration.
type ColorResolver struct {
	cfg *Config
}

func NewColorResolver(cfg *Config) *ColorResolver {
	return &ColorResolver{cfg: cfg}
}

// Run returns the resolved color, or "" when no rule applies.
func (r *ColorResolver) Run(displayTitle string, categories []string, text string) string {
	// Category match is exact and case-sensitive, checked in rule order.
	for _, rule := range r.cfg.Categories {
		for _, category := range categories {
			if category == rule.Category {
				return rule.Color
			}
		}
	}

	// Keyword match is a case-insensitive substring scan, title first,
	// then page text, in rule order.
	title := strings.ToLower(displayTitle)
	body := strings.ToLower(text)
	for _, rule := range r.cfg.Keywords {
		keyword := strings.ToLower(rule.Keyword)
		if keyword == "" {
			continue
		}
		if strings.Contains(title, keyword) || strings.Contains(body, keyword) {
			return rule.Color
		}
	}

	return ""
}
