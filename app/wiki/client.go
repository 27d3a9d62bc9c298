package wiki

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/wikical/wikical/app/calendar"
)

const pageBatchSize = 50

var _ calendar.PageSource = (*Client)(nil)
var _ calendar.Renderer = (*Client)(nil)

// Client implements the document store and renderer collaborators
// against a MediaWiki Action API endpoint (api.php).
type Client struct {
	apiURL     string
	httpClient *http.Client
	userAgent  string

	mu           sync.Mutex
	namespaceIDs map[string]int
}

func NewClient(apiURL string, httpClient *http.Client, userAgent string) *Client {
	return &Client{
		apiURL:       apiURL,
		httpClient:   httpClient,
		userAgent:    userAgent,
		namespaceIDs: make(map[string]int),
	}
}

// ListPages returns every page in the given namespace. The namespace is
// the human name ("Template", "" for the main namespace); it is
// resolved to a numeric id through the wiki's siteinfo.
func (c *Client) ListPages(ctx context.Context, namespace string) ([]calendar.PageRef, error) {
	nsID, err := c.resolveNamespaceID(ctx, namespace)
	if err != nil {
		return nil, err
	}

	var pages []calendar.PageRef
	apcontinue := ""

	for {
		params := url.Values{}
		params.Set("action", "query")
		params.Set("list", "allpages")
		params.Set("apnamespace", strconv.Itoa(nsID))
		params.Set("aplimit", "500")
		if apcontinue != "" {
			params.Set("apcontinue", apcontinue)
		}

		data, err := c.get(ctx, params)
		if err != nil {
			return nil, err
		}

		var resp allPagesResponse
		if err := json.Unmarshal(data, &resp); err != nil {
			return nil, fmt.Errorf("failed to decode allpages response: %w", err)
		}
		if resp.Error != nil {
			return nil, fmt.Errorf("wiki API error: %s: %s", resp.Error.Code, resp.Error.Info)
		}

		for _, page := range resp.Query.AllPages {
			pages = append(pages, calendar.PageRef{Title: page.Title, PageID: page.PageID})
		}

		if resp.Continue.APContinue == "" {
			break
		}
		apcontinue = resp.Continue.APContinue
	}

	return pages, nil
}

// GetPages fetches revision id, raw text, categories and canonical URL
// for the given titles, batched per the API's title limit. Missing
// pages are simply absent from the result.
func (c *Client) GetPages(ctx context.Context, titles []string) (map[string]calendar.PageInfo, error) {
	infos := make(map[string]calendar.PageInfo, len(titles))

	for start := 0; start < len(titles); start += pageBatchSize {
		end := min(start+pageBatchSize, len(titles))
		if err := c.fetchPageBatch(ctx, titles[start:end], infos); err != nil {
			return nil, err
		}
	}

	// A page whose revision never arrived has no content to extract from.
	for title, info := range infos {
		if info.RevID == 0 {
			delete(infos, title)
		}
	}

	return infos, nil
}

// fetchPageBatch queries one batch of titles, re-issuing the request
// with the returned continuation parameters until the response is
// complete. The API withholds revisions and category entries from
// oversized responses; each continuation response fills in more of the
// same pages, so per-page data is merged across responses. The title
// list goes in the request body: 50 page names can overrun GET URL
// length limits.
func (c *Client) fetchPageBatch(ctx context.Context, titles []string, infos map[string]calendar.PageInfo) error {
	cont := map[string]interface{}{}

	for {
		params := url.Values{}
		params.Set("action", "query")
		params.Set("prop", "revisions|categories|info")
		params.Set("rvprop", "ids|content")
		params.Set("rvslots", "main")
		params.Set("cllimit", "max")
		params.Set("inprop", "url")
		params.Set("titles", strings.Join(titles, "|"))
		for key, value := range cont {
			params.Set(key, fmt.Sprint(value))
		}

		data, err := c.postForm(ctx, params)
		if err != nil {
			return err
		}

		var resp pagesResponse
		if err := json.Unmarshal(data, &resp); err != nil {
			return fmt.Errorf("failed to decode pages response: %w", err)
		}
		if resp.Error != nil {
			return fmt.Errorf("wiki API error: %s: %s", resp.Error.Code, resp.Error.Info)
		}

		for _, page := range resp.Query.Pages {
			if page.Missing {
				continue
			}

			info := infos[page.Title]
			info.Title = page.Title
			if page.PageID != 0 {
				info.PageID = page.PageID
			}
			if page.CanonicalURL != "" {
				info.URL = page.CanonicalURL
			}
			if len(page.Revisions) > 0 {
				info.RevID = page.Revisions[0].RevID
				info.Text = page.Revisions[0].Slots.Main.Content
			}
			for _, category := range page.Categories {
				info.Categories = append(info.Categories, stripNamespacePrefix(category.Title))
			}
			infos[page.Title] = info
		}

		if len(resp.Continue) == 0 {
			return nil
		}
		cont = resp.Continue
	}
}

// RenderPage asks the wiki to render a page's markup into HTML
// (action=parse). The output is well-formed paragraph-level HTML.
func (c *Client) RenderPage(ctx context.Context, title string) (string, error) {
	params := url.Values{}
	params.Set("action", "parse")
	params.Set("page", title)
	params.Set("prop", "text")
	params.Set("disablelimitreport", "true")

	data, err := c.get(ctx, params)
	if err != nil {
		return "", err
	}

	var resp parseResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return "", fmt.Errorf("failed to decode parse response: %w", err)
	}
	if resp.Error != nil {
		return "", fmt.Errorf("wiki API error: %s: %s", resp.Error.Code, resp.Error.Info)
	}

	return resp.Parse.Text, nil
}

func (c *Client) resolveNamespaceID(ctx context.Context, namespace string) (int, error) {
	c.mu.Lock()
	if id, ok := c.namespaceIDs[namespace]; ok {
		c.mu.Unlock()
		return id, nil
	}
	c.mu.Unlock()

	params := url.Values{}
	params.Set("action", "query")
	params.Set("meta", "siteinfo")
	params.Set("siprop", "namespaces")

	data, err := c.get(ctx, params)
	if err != nil {
		return 0, err
	}

	var resp siteInfoResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return 0, fmt.Errorf("failed to decode siteinfo response: %w", err)
	}
	if resp.Error != nil {
		return 0, fmt.Errorf("wiki API error: %s: %s", resp.Error.Code, resp.Error.Info)
	}

	for _, ns := range resp.Query.Namespaces {
		if strings.EqualFold(ns.Name, namespace) || strings.EqualFold(ns.Canonical, namespace) {
			c.mu.Lock()
			c.namespaceIDs[namespace] = ns.ID
			c.mu.Unlock()
			return ns.ID, nil
		}
	}

	return 0, fmt.Errorf("namespace '%s' does not exist on the wiki", namespace)
}

func (c *Client) get(ctx context.Context, params url.Values) ([]byte, error) {
	params.Set("format", "json")
	params.Set("formatversion", "2")

	req, err := http.NewRequestWithContext(ctx, "GET", c.apiURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	return c.do(req)
}

func (c *Client) postForm(ctx context.Context, params url.Values) ([]byte, error) {
	params.Set("format", "json")
	params.Set("formatversion", "2")

	req, err := http.NewRequestWithContext(ctx, "POST", c.apiURL, strings.NewReader(params.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return c.do(req)
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to query wiki API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}

// stripNamespacePrefix turns "Category:Music" into "Music".
func stripNamespacePrefix(title string) string {
	if _, rest, found := strings.Cut(title, ":"); found {
		return rest
	}
	return title
}
