package enrich

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// Leaders holds the head of state and head of government labels.
type Leaders struct {
	HeadOfState      string `json:"headOfState,omitempty"`
	HeadOfGovernment string `json:"headOfGovernment,omitempty"`
}

// WikidataClient runs SPARQL queries against a Wikidata endpoint.
type WikidataClient struct {
	opts   ClientOptions
	client *http.Client
}

// NewWikidataClient creates a client for opts.BaseURL, the SPARQL endpoint.
func NewWikidataClient(opts ClientOptions) *WikidataClient {
	return &WikidataClient{opts: opts, client: newHTTPClient(opts.Timeout)}
}

// leadersQuery finds a country by ISO alpha-2 code (P297) and reads its
// head of state (P35) and head of government (P6).
const leadersQuery = `SELECT ?hosLabel ?hogLabel WHERE {
  ?country wdt:P297 "%s" .
  OPTIONAL { ?country wdt:P35 ?hos . }
  OPTIONAL { ?country wdt:P6 ?hog . }
  SERVICE wikibase:label { bd:serviceParam wikibase:language "en". }
} LIMIT 1`

type sparqlResponse struct {
	Results struct {
		Bindings []map[string]struct {
			Value string `json:"value"`
		} `json:"bindings"`
	} `json:"results"`
}

// Leaders looks up the current leaders of the country with ISO alpha-2 code iso2.
func (c *WikidataClient) Leaders(ctx context.Context, iso2 string) (Leaders, error) {
	iso2 = strings.ToUpper(strings.TrimSpace(iso2))
	if len(iso2) != 2 || !isAlphaCode(iso2) {
		return Leaders{}, fmt.Errorf("invalid ISO alpha-2 code %q", iso2)
	}

	q := url.Values{}
	q.Set("query", fmt.Sprintf(leadersQuery, iso2))
	q.Set("format", "json")
	u := c.opts.BaseURL + "?" + q.Encode()

	var resp sparqlResponse
	if err := getJSON(ctx, c.client, "wikidata", u, c.opts.UserAgent, "application/sparql-results+json", &resp); err != nil {
		return Leaders{}, err
	}
	if len(resp.Results.Bindings) == 0 {
		return Leaders{}, ErrNotFound
	}

	b := resp.Results.Bindings[0]
	l := Leaders{HeadOfState: b["hosLabel"].Value, HeadOfGovernment: b["hogLabel"].Value}
	if l.HeadOfState == "" && l.HeadOfGovernment == "" {
		return Leaders{}, ErrNotFound
	}
	return l, nil
}
