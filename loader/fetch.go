package loader

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/erraggy/ramltools/internal/fileutil"
	"github.com/erraggy/ramltools/ramlerrors"
)

// isURL determines if the given path is a URL (http:// or https://)
func isURL(p string) bool {
	return hasScheme(p, "http") || hasScheme(p, "https")
}

// fetcher retrieves remote content over HTTP.
type fetcher struct {
	client    *http.Client
	userAgent string
	maxSize   int64
	log       Logger
}

func newFetcher(cfg *config, log Logger) *fetcher {
	var client *http.Client
	switch {
	case cfg.HTTPClient != nil:
		client = cfg.HTTPClient
		if cfg.InsecureSkipVerify {
			log.Warn("InsecureSkipVerify ignored when HTTPClient provided; configure TLS on your client's transport")
		}
	case cfg.InsecureSkipVerify:
		client = &http.Client{
			Timeout: cfg.HTTPTimeout,
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{
					InsecureSkipVerify: true, //nolint:gosec // User explicitly requested insecure mode
					MinVersion:         tls.VersionTLS12,
				},
			},
		}
	default:
		client = &http.Client{Timeout: cfg.HTTPTimeout}
	}
	return &fetcher{client: client, userAgent: cfg.UserAgent, maxSize: cfg.MaxFileSize, log: log}
}

// fetch returns the body and Content-Type header of a GET on rawURL.
// Failures are MissingFile errors unless the context ended first.
func (f *fetcher) fetch(ctx context.Context, rawURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", ramlerrors.Newf(ramlerrors.MissingFile, "failed to create request for %s: %w", rawURL, err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	f.log.Debug("fetching remote content", "url", rawURL)
	resp, err := f.client.Do(req) //nolint:gosec // URL comes from the document being loaded
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, "", ramlerrors.New(ramlerrors.Canceled, "load canceled during fetch").WithFile(rawURL).WithCause(ctxErr)
		}
		return nil, "", ramlerrors.Newf(ramlerrors.MissingFile, "failed to fetch %s: %w", rawURL, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, "", ramlerrors.Newf(ramlerrors.MissingFile, "failed to fetch %s: HTTP %s", rawURL, strings.TrimSpace(resp.Status))
	}

	data, err := fileutil.ReadLimited(resp.Body, f.maxSize)
	if err != nil {
		if errors.Is(err, fileutil.ErrTooLarge) {
			return nil, "", ramlerrors.New(ramlerrors.ResourceLimit, fmt.Sprintf("%s exceeds the maximum size of %d bytes", rawURL, f.maxSize)).WithCause(err)
		}
		return nil, "", ramlerrors.Newf(ramlerrors.MissingFile, "failed to read response body of %s: %w", rawURL, err)
	}
	return data, resp.Header.Get("Content-Type"), nil
}
