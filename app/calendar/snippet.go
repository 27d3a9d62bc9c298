package calendar

import (
	"context"
	"log/slog"
	"strconv"
	"time"
)

const (
	snippetCacheKeyPrefix = "wikical:snippet:"
	snippetCacheTTL       = 24 * time.Hour
)

// SnippetProvider produces a short HTML excerpt of a page's rendered
// content. Snippets are cached per revision id: once written, the
// cached value is authoritative and is returned verbatim even if
// re-rendering would produce something else. A nil or unreachable cache
// degrades to always-render, never-cache.
type SnippetProvider struct {
	cache    SnippetCache
	renderer Renderer
}

func NewSnippetProvider(cache SnippetCache, renderer Renderer) *SnippetProvider {
	return &SnippetProvider{
		cache:    cache,
		renderer: renderer,
	}
}

func (p *SnippetProvider) Run(ctx context.Context, title string, revID int64, maxChars int) (string, error) {
	key := snippetCacheKeyPrefix + strconv.FormatInt(revID, 10)

	if p.cache != nil {
		value, ok, err := p.cache.Get(ctx, key)
		if err != nil {
			slog.Warn("Snippet cache read failed, falling back to rendering", "key", key, "error", err)
		} else if ok {
			return value, nil
		}
	}

	rendered, err := p.renderer.RenderPage(ctx, title)
	if err != nil {
		return "", err
	}

	snippet := TruncateHTML(rendered, maxChars)

	if p.cache != nil {
		// Concurrent writers race benignly here: the entry is idempotent
		// per revision id.
		if err := p.cache.Set(ctx, key, snippet, snippetCacheTTL); err != nil {
			slog.Warn("Snippet cache write failed", "key", key, "error", err)
		}
	}

	return snippet, nil
}
