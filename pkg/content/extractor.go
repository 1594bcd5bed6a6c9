package content

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/markusmobius/go-trafilatura"

	"github.com/personascope/personascope/pkg/config"
)

// HTTPExtractor pulls readable text from external pages linked by posts that
// carry no body of their own. Results shorter than the configured minimum are
// rejected, a near-empty extraction is worse than no extraction.
type HTTPExtractor struct {
	cfg    config.ExtractionConfig
	client *http.Client
}

// NewHTTPExtractor creates a new content extractor
func NewHTTPExtractor(cfg config.ExtractionConfig) *HTTPExtractor {
	return &HTTPExtractor{cfg: cfg, client: &http.Client{Timeout: cfg.Timeout}}
}

// Extract fetches the page and returns its main text content
func (e *HTTPExtractor) Extract(ctx context.Context, pageURL string) (string, error) {
	target, err := checkTarget(pageURL)
	if err != nil {
		return "", err
	}

	body, err := e.fetch(ctx, pageURL)
	if err != nil {
		return "", err
	}
	defer body.Close()

	result, err := trafilatura.Extract(body, trafilatura.Options{
		EnableFallback:  true,
		ExcludeComments: true,
		Deduplicate:     true,
		OriginalURL:     target,
	})
	if err != nil {
		return "", fmt.Errorf("extract content from %s: %w", pageURL, err)
	}
	if result == nil {
		return "", fmt.Errorf("no content extracted from %s", pageURL)
	}

	text := strings.TrimSpace(result.ContentText)
	if len(text) < e.cfg.MinTextLength {
		return "", fmt.Errorf("extracted text too short (%d chars) from %s", len(text), pageURL)
	}
	return text, nil
}

func (e *HTTPExtractor) fetch(ctx context.Context, pageURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", e.cfg.UserAgent)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch URL %s: %w", pageURL, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status code %d for URL %s", resp.StatusCode, pageURL)
	}
	return resp.Body, nil
}

// checkTarget rejects malformed URLs and links pointing back into reddit,
// those resolve to the same profile content we already have
func checkTarget(pageURL string) (*url.URL, error) {
	target, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("parse URL: %w", err)
	}
	if target.Scheme == "" || target.Host == "" {
		return nil, fmt.Errorf("invalid URL: %s", pageURL)
	}
	if strings.HasSuffix(target.Host, "reddit.com") {
		return nil, fmt.Errorf("skip reddit-internal URL: %s", pageURL)
	}
	return target, nil
}
