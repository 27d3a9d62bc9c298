package calendar

import (
	"context"
	"time"
)

// PageSource provides access to the wiki's document store.
type PageSource interface {
	ListPages(ctx context.Context, namespace string) ([]PageRef, error)
	GetPages(ctx context.Context, titles []string) (map[string]PageInfo, error)
}

// Renderer turns a page's source markup into HTML.
type Renderer interface {
	RenderPage(ctx context.Context, title string) (string, error)
}

// SnippetCache is the persistent key/value store used for rendered snippets.
type SnippetCache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
}
