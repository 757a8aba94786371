package enrich

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// WikipediaClient reads page summaries from the Wikipedia REST API.
type WikipediaClient struct {
	opts   ClientOptions
	client *http.Client
}

// NewWikipediaClient creates a client for opts.BaseURL, e.g.
// https://en.wikipedia.org/api/rest_v1.
func NewWikipediaClient(opts ClientOptions) *WikipediaClient {
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	return &WikipediaClient{opts: opts, client: newHTTPClient(opts.Timeout)}
}

type pageSummary struct {
	Type    string `json:"type"`
	Title   string `json:"title"`
	Extract string `json:"extract"`
}

// Summary returns the plain-text extract of the page titled title.
// Missing pages, disambiguation pages and empty extracts are ErrNotFound.
func (c *WikipediaClient) Summary(ctx context.Context, title string) (string, error) {
	u := fmt.Sprintf("%s/page/summary/%s", c.opts.BaseURL, url.PathEscape(title))

	var s pageSummary
	if err := getJSON(ctx, c.client, "wikipedia", u, c.opts.UserAgent, "application/json", &s); err != nil {
		return "", err
	}
	if s.Type == "disambiguation" || strings.TrimSpace(s.Extract) == "" {
		return "", ErrNotFound
	}
	return s.Extract, nil
}
