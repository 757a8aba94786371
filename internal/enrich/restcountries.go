package enrich

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
)

// Country is merged country metadata.
type Country struct {
	Name             string   `json:"name"`
	OfficialName     string   `json:"officialName,omitempty"`
	ISO2             string   `json:"iso2,omitempty"`
	ISO3             string   `json:"iso3,omitempty"`
	Capital          string   `json:"capital,omitempty"`
	FlagURL          string   `json:"flagUrl,omitempty"`
	Population       int64    `json:"population,omitempty"`
	Area             float64  `json:"area,omitempty"`
	Region           string   `json:"region,omitempty"`
	Subregion        string   `json:"subregion,omitempty"`
	Currencies       []string `json:"currencies,omitempty"`
	CallingCode      string   `json:"callingCode,omitempty"`
	HeadOfState      string   `json:"headOfState,omitempty"`
	HeadOfGovernment string   `json:"headOfGovernment,omitempty"`
}

// RESTCountriesClient queries the REST Countries v3.1 API.
type RESTCountriesClient struct {
	opts   ClientOptions
	client *http.Client
}

// NewRESTCountriesClient creates a client for opts.BaseURL.
func NewRESTCountriesClient(opts ClientOptions) *RESTCountriesClient {
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	return &RESTCountriesClient{opts: opts, client: newHTTPClient(opts.Timeout)}
}

type restCountry struct {
	Name struct {
		Common   string `json:"common"`
		Official string `json:"official"`
	} `json:"name"`
	CCA2       string   `json:"cca2"`
	CCA3       string   `json:"cca3"`
	Capital    []string `json:"capital"`
	Region     string   `json:"region"`
	Subregion  string   `json:"subregion"`
	Population int64    `json:"population"`
	Area       float64  `json:"area"`
	Currencies map[string]struct {
		Name   string `json:"name"`
		Symbol string `json:"symbol"`
	} `json:"currencies"`
	IDD struct {
		Root     string   `json:"root"`
		Suffixes []string `json:"suffixes"`
	} `json:"idd"`
	Flags struct {
		PNG string `json:"png"`
		SVG string `json:"svg"`
	} `json:"flags"`
}

// Lookup fetches a country by ISO alpha-2/alpha-3 code or by full name.
func (c *RESTCountriesClient) Lookup(ctx context.Context, key string) (Country, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return Country{}, ErrNotFound
	}

	var u string
	if isAlphaCode(key) {
		u = fmt.Sprintf("%s/alpha/%s", c.opts.BaseURL, url.PathEscape(strings.ToLower(key)))
	} else {
		u = fmt.Sprintf("%s/name/%s?fullText=true", c.opts.BaseURL, url.PathEscape(key))
	}

	var raw json.RawMessage
	if err := getJSON(ctx, c.client, "restcountries", u, c.opts.UserAgent, "application/json", &raw); err != nil {
		return Country{}, err
	}

	var list []restCountry
	if trimmed := bytes.TrimSpace(raw); len(trimmed) > 0 && trimmed[0] == '{' {
		var one restCountry
		if err := json.Unmarshal(trimmed, &one); err != nil {
			return Country{}, fmt.Errorf("decoding country: %w", err)
		}
		list = append(list, one)
	} else if err := json.Unmarshal(raw, &list); err != nil {
		return Country{}, fmt.Errorf("decoding countries: %w", err)
	}
	if len(list) == 0 || list[0].Name.Common == "" {
		return Country{}, ErrNotFound
	}
	return list[0].toCountry(), nil
}

func (r restCountry) toCountry() Country {
	out := Country{
		Name:         r.Name.Common,
		OfficialName: r.Name.Official,
		ISO2:         r.CCA2,
		ISO3:         r.CCA3,
		Population:   r.Population,
		Area:         r.Area,
		Region:       r.Region,
		Subregion:    r.Subregion,
		FlagURL:      r.Flags.PNG,
	}
	if out.FlagURL == "" {
		out.FlagURL = r.Flags.SVG
	}
	if len(r.Capital) > 0 {
		out.Capital = strings.Join(r.Capital, ", ")
	}

	codes := make([]string, 0, len(r.Currencies))
	for code := range r.Currencies {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	for _, code := range codes {
		cur := r.Currencies[code]
		label := cur.Name
		if cur.Symbol != "" {
			label += " (" + cur.Symbol + ")"
		}
		if label == "" {
			label = code
		}
		out.Currencies = append(out.Currencies, label)
	}

	if r.IDD.Root != "" {
		out.CallingCode = r.IDD.Root
		if len(r.IDD.Suffixes) == 1 {
			out.CallingCode += r.IDD.Suffixes[0]
		}
	}
	return out
}

// isAlphaCode reports whether s looks like an ISO 3166-1 alpha-2 or alpha-3 code.
func isAlphaCode(s string) bool {
	if len(s) != 2 && len(s) != 3 {
		return false
	}
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return true
}
