package reddit

import (
	"bytes"
	"context"
	"fmt"
	"log"

	"github.com/mmcdole/gofeed"

	"github.com/personascope/personascope/pkg/domain"
)

// fetchRSS is the degraded path for a category whose JSON endpoint failed:
// reddit also publishes user listings as RSS. The feed carries no score, so
// items come back with score 0.
func (s *Scraper) fetchRSS(ctx context.Context, rssURL string, kind domain.ItemKind, maxItems int) ([]domain.ContentItem, error) {
	body, err := s.get(ctx, rssURL)
	if err != nil {
		return nil, fmt.Errorf("fetch rss: %w", err)
	}

	feed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse rss: %w", err)
	}

	entries := feed.Items
	if len(entries) > maxItems {
		entries = entries[:maxItems]
	}

	items := make([]domain.ContentItem, 0, len(entries))
	for _, e := range entries {
		body := e.Content
		if body == "" {
			body = e.Description
		}

		raw := rawItem{Title: e.Title, Selftext: body}
		if kind == domain.KindComment {
			raw.Selftext, raw.Body = "", body
		}

		item, ok := normalize(raw, kind)
		if !ok {
			continue
		}
		if e.Link != "" {
			item.URL = e.Link
		}
		if e.PublishedParsed != nil {
			item.Created = e.PublishedParsed.UTC()
		}
		items = append(items, item)
	}

	log.Printf("[INFO] rss fallback recovered %d %s items", len(items), kind)
	return items, nil
}
