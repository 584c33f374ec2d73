// Package fontapi talks to the remote font service: the autocomplete search
// endpoint, the archive download endpoint, and an optional Redis cache of
// search responses.
//
// Every call is a single attempt bounded by the client timeout; callers
// decide what a failure means.
package fontapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/tbourn/go-font-catalogue/internal/domain"
	"github.com/tbourn/go-font-catalogue/internal/sysutil"
)

// DefaultSearchURL is the autocomplete endpoint of the public font service.
const DefaultSearchURL = "https://font.download/ajax/autocomplete"

// DefaultTimeout bounds one remote call.
const DefaultTimeout = 10 * time.Second

// maxBody caps a search response body.
const maxBody = 4 << 20

// StatusError is returned for non-200 responses.
type StatusError struct {
	Status int
	URL    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("font api: %s returned status %d", e.URL, e.Status)
}

// searchResponse is the autocomplete payload.
type searchResponse struct {
	Suggestions []struct {
		Value string                    `json:"value"`
		Data  domain.ExternalFontRecord `json:"data"`
	} `json:"suggestions"`
}

// Client queries the remote search endpoint.
type Client struct {
	SearchURL  string
	httpClient *http.Client
}

// NewHTTPClient returns a traced http.Client with the given timeout
// (DefaultTimeout when <= 0).
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
}

// NewClient returns a Client for searchURL (DefaultSearchURL when empty).
// A nil hc gets NewHTTPClient(DefaultTimeout).
func NewClient(searchURL string, hc *http.Client) *Client {
	if searchURL == "" {
		searchURL = DefaultSearchURL
	}
	if hc == nil {
		hc = NewHTTPClient(DefaultTimeout)
	}
	return &Client{SearchURL: searchURL, httpClient: hc}
}

// Search returns the records suggested for query, in the order the service
// returned them. Records are passed through unvalidated; ingestion decides
// what to keep.
func (c *Client) Search(ctx context.Context, query string) ([]domain.ExternalFontRecord, error) {
	endpoint, err := url.Parse(c.SearchURL)
	if err != nil {
		return nil, fmt.Errorf("font api: parse url: %w", err)
	}
	q := endpoint.Query()
	q.Set("query", query)
	endpoint.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("font api: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	sysutil.Logger(ctx).Debug().Str("url", endpoint.String()).Msg("font api search")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("font api: search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBody))
		return nil, &StatusError{Status: resp.StatusCode, URL: c.SearchURL}
	}

	var payload searchResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBody)).Decode(&payload); err != nil {
		if errors.Is(err, io.EOF) {
			return []domain.ExternalFontRecord{}, nil
		}
		return nil, fmt.Errorf("font api: decode: %w", err)
	}

	out := make([]domain.ExternalFontRecord, 0, len(payload.Suggestions))
	for _, s := range payload.Suggestions {
		r := s.Data
		if r.FontName == "" {
			r.FontName = s.Value
		}
		out = append(out, r)
	}
	return out, nil
}
