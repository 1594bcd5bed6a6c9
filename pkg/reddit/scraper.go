package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-pkgz/repeater/v2"
	"golang.org/x/sync/errgroup"

	"github.com/personascope/personascope/pkg/config"
	"github.com/personascope/personascope/pkg/domain"
)

// Scraper fetches a user's posts and comments via reddit's public JSON API.
// The http client is shared between the two category fetches of a profile.
type Scraper struct {
	client    *http.Client
	userAgent string
	delay     time.Duration
	extractor Extractor
}

// Extractor pulls readable text out of an external page, used to fill in
// link posts that have no body of their own
type Extractor interface {
	Extract(ctx context.Context, pageURL string) (string, error)
}

// listing is the regular shape of a reddit listing endpoint response
type listing struct {
	Data struct {
		Children []struct {
			Data rawItem `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

// rawItem carries the fields we use from one post or comment. Posts keep
// body text in selftext, comments in body.
type rawItem struct {
	Title      string  `json:"title"`
	LinkTitle  string  `json:"link_title"`
	Selftext   string  `json:"selftext"`
	Body       string  `json:"body"`
	Subreddit  string  `json:"subreddit"`
	Permalink  string  `json:"permalink"`
	URL        string  `json:"url"`
	CreatedUTC float64 `json:"created_utc"`
	Score      int     `json:"score"`
}

// NewScraper creates a scraper with a shared http client
func NewScraper(cfg config.RedditConfig) *Scraper {
	return &Scraper{
		client: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		userAgent: cfg.UserAgent,
		delay:     cfg.Delay,
	}
}

// WithExtractor enables link-post text extraction
func (s *Scraper) WithExtractor(e Extractor) *Scraper {
	s.extractor = e
	return s
}

// ValidateProfileURL checks the URL is a reddit user profile
func ValidateProfileURL(profileURL string) error {
	parsed, err := url.Parse(profileURL)
	if err != nil {
		return fmt.Errorf("%w: %s", domain.ErrInvalidProfileURL, profileURL)
	}

	validHosts := map[string]bool{"www.reddit.com": true, "reddit.com": true, "old.reddit.com": true}
	if !validHosts[parsed.Host] || !strings.Contains(parsed.Path, "/user/") {
		return fmt.Errorf("%w: %s", domain.ErrInvalidProfileURL, profileURL)
	}
	return nil
}

// Username extracts the account name from a profile URL
func Username(profileURL string) string {
	parts := strings.SplitN(profileURL, "/user/", 2)
	if len(parts) != 2 {
		return ""
	}
	return strings.TrimSuffix(parts[1], "/")
}

// ScrapeProfile retrieves up to maxPosts items from a profile, half from the
// submitted listing and half from the comments listing. A failed category is
// logged and yields nothing, the other category still proceeds. Posts come
// before comments in the result, API order preserved within each category.
func (s *Scraper) ScrapeProfile(ctx context.Context, profileURL string, maxPosts int) ([]domain.ContentItem, error) {
	log.Printf("[INFO] scraping profile %s", profileURL)

	if err := ValidateProfileURL(profileURL); err != nil {
		return nil, err
	}

	base := strings.TrimSuffix(profileURL, "/")
	items := s.fetchCategory(ctx, base+"/submitted", domain.KindPost, maxPosts/2)

	// pause between category fetches to respect informal rate limits
	select {
	case <-time.After(s.delay):
	case <-ctx.Done():
		return items, ctx.Err()
	}

	items = append(items, s.fetchCategory(ctx, base+"/comments", domain.KindComment, maxPosts/2)...)

	log.Printf("[INFO] scraped %d items from %s", len(items), profileURL)
	return items, nil
}

// fetchCategory pulls one listing category. Errors are recovered here so one
// category's failure never blocks the other.
func (s *Scraper) fetchCategory(ctx context.Context, categoryURL string, kind domain.ItemKind, maxItems int) []domain.ContentItem {
	raw, err := s.fetchListing(ctx, categoryURL+".json")
	if err != nil {
		log.Printf("[WARN] fetch %s failed: %v, trying rss fallback", categoryURL, err)
		items, rssErr := s.fetchRSS(ctx, categoryURL+".rss", kind, maxItems)
		if rssErr != nil {
			log.Printf("[ERROR] %s category unavailable: %v", kind, rssErr)
			return []domain.ContentItem{}
		}
		return items
	}

	if len(raw) > maxItems {
		raw = raw[:maxItems]
	}

	// link posts carry no body, optionally borrow text from the linked pages
	if s.extractor != nil && kind == domain.KindPost {
		s.extractLinkPosts(ctx, raw)
	}

	items := make([]domain.ContentItem, 0, len(raw))
	for _, r := range raw {
		item, ok := normalize(r, kind)
		if !ok {
			continue
		}
		items = append(items, item)
	}
	return items
}

// extractLinkPosts fills empty link-post bodies with text pulled from the
// linked pages. Extractions run concurrently with a small worker cap, results
// land back in place so listing order is preserved. Failures leave the item
// untouched.
func (s *Scraper) extractLinkPosts(ctx context.Context, raw []rawItem) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)

	for i := range raw {
		if raw[i].Selftext != "" || raw[i].URL == "" {
			continue
		}
		g.Go(func() error {
			text, err := s.extractor.Extract(ctx, raw[i].URL)
			if err != nil {
				log.Printf("[DEBUG] link extraction failed for %s: %v", raw[i].URL, err)
				return nil
			}
			raw[i].Selftext = text
			return nil
		})
	}
	_ = g.Wait() // workers never return errors
}

// fetchListing retrieves and decodes a listing endpoint, retrying transient
// failures with backoff
func (s *Scraper) fetchListing(ctx context.Context, listingURL string) ([]rawItem, error) {
	var body []byte
	retrier := repeater.NewBackoff(3, 250*time.Millisecond, repeater.WithMaxDelay(2*time.Second))
	err := retrier.Do(ctx, func() error {
		var e error
		body, e = s.get(ctx, listingURL)
		return e
	})
	if err != nil {
		return nil, err
	}

	return decodeListing(body)
}

// acceptLanguages is rotated per request so listing traffic does not look
// uniform. Non-cryptographic randomness is fine here.
var acceptLanguages = []string{
	"en-US,en;q=0.9",
	"en-GB,en;q=0.9",
	"en-US,en;q=0.9,es;q=0.8",
	"en-US,en;q=0.9,fr;q=0.8",
	"en-US,en;q=0.9,de;q=0.8",
}

// get performs a single GET with the fixed user agent and browser-like headers
func (s *Scraper) get(ctx context.Context, reqURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "application/json,text/html;q=0.8,*/*;q=0.5")
	req.Header.Set("Accept-Language", acceptLanguages[rand.Intn(len(acceptLanguages))]) //nolint:gosec // header variation only
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Connection", "keep-alive")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", reqURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code %d for %s", resp.StatusCode, reqURL)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}

// decodeListing handles both shapes the API returns: a single listing object
// or a json array of listing objects. Anything else is a decode error.
func decodeListing(body []byte) ([]rawItem, error) {
	trimmed := strings.TrimSpace(string(body))
	switch {
	case strings.HasPrefix(trimmed, "{"):
		var l listing
		if err := json.Unmarshal(body, &l); err != nil {
			return nil, fmt.Errorf("decode listing object: %w", err)
		}
		return childItems(l), nil
	case strings.HasPrefix(trimmed, "["):
		var ls []listing
		if err := json.Unmarshal(body, &ls); err != nil {
			return nil, fmt.Errorf("decode listing array: %w", err)
		}
		var items []rawItem
		for _, l := range ls {
			items = append(items, childItems(l)...)
		}
		return items, nil
	default:
		return nil, fmt.Errorf("response is neither listing object nor array")
	}
}

func childItems(l listing) []rawItem {
	items := make([]rawItem, 0, len(l.Data.Children))
	for _, c := range l.Data.Children {
		items = append(items, c.Data)
	}
	return items
}

// normalize converts one raw API item into a ContentItem, cleaning the body
// text and rejecting contentless stubs (empty or under 10 chars after cleanup)
func normalize(r rawItem, kind domain.ItemKind) (domain.ContentItem, bool) {
	title := r.Title
	if title == "" {
		title = r.LinkTitle
	}
	if title == "" {
		title = "No Title"
	}

	body := r.Selftext
	if body == "" {
		body = r.Body
	}
	content := CleanContent(body)
	if len(content) <= 10 {
		return domain.ContentItem{}, false
	}

	subreddit := r.Subreddit
	if subreddit == "" {
		subreddit = "Unknown"
	}

	return domain.ContentItem{
		Title:     title,
		Content:   content,
		Subreddit: subreddit,
		URL:       "https://reddit.com" + r.Permalink,
		Created:   time.Unix(int64(r.CreatedUTC), 0).UTC(),
		Score:     r.Score,
		Kind:      kind,
	}, true
}
