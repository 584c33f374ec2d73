package fontapi

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/tbourn/go-font-catalogue/internal/domain"
	"github.com/tbourn/go-font-catalogue/internal/sysutil"
)

// FileSaver persists a downloaded archive and returns its path.
type FileSaver interface {
	Save(ctx context.Context, name string, r io.Reader) (string, error)
}

// Fetcher downloads font archives into local storage.
type Fetcher struct {
	// URLTemplate expands "{slug}" into the archive URL.
	URLTemplate string
	Files       FileSaver
	httpClient  *http.Client
}

// NewFetcher returns a Fetcher saving into files. A nil hc gets
// NewHTTPClient(DefaultTimeout).
func NewFetcher(urlTemplate string, files FileSaver, hc *http.Client) *Fetcher {
	if hc == nil {
		hc = NewHTTPClient(DefaultTimeout)
	}
	return &Fetcher{URLTemplate: urlTemplate, Files: files, httpClient: hc}
}

// Fetch downloads the archive for slug and returns the stored path. A
// non-200 response, a transport error or an empty body is an error and
// leaves nothing on disk.
func (f *Fetcher) Fetch(ctx context.Context, slug string) (string, error) {
	u := domain.DownloadURL(f.URLTemplate, slug)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", fmt.Errorf("font api: build request: %w", err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("font api: download %s: %w", slug, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBody))
		return "", &StatusError{Status: resp.StatusCode, URL: u}
	}

	path, err := f.Files.Save(ctx, slug+".zip", resp.Body)
	if err != nil {
		return "", fmt.Errorf("font api: store %s: %w", slug, err)
	}
	sysutil.Logger(ctx).Info().Str("slug", slug).Str("path", path).Msg("font archive downloaded")
	return path, nil
}
