package reddit

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/personascope/personascope/pkg/config"
	"github.com/personascope/personascope/pkg/domain"
)

func testScraper(timeout time.Duration) *Scraper {
	return NewScraper(config.RedditConfig{
		UserAgent: "test-agent",
		Timeout:   timeout,
		Delay:     10 * time.Millisecond,
		MaxPosts:  50,
	})
}

func TestValidateProfileURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
		ok   bool
	}{
		{"www host", "https://www.reddit.com/user/example/", true},
		{"bare host", "https://reddit.com/user/example", true},
		{"old host", "https://old.reddit.com/user/example/", true},
		{"missing user segment", "https://www.reddit.com/example/", false},
		{"subreddit path", "https://www.reddit.com/r/golang/", false},
		{"wrong host", "https://example.com/user/example/", false},
		{"not a url", "://broken", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateProfileURL(tt.url)
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrInvalidProfileURL)
		})
	}
}

func TestScraper_ScrapeProfile_InvalidURL(t *testing.T) {
	s := testScraper(time.Second)
	items, err := s.ScrapeProfile(context.Background(), "https://www.reddit.com/example/", 50)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidProfileURL)
	assert.Nil(t, items)
}

func TestUsername(t *testing.T) {
	assert.Equal(t, "kojied", Username("https://www.reddit.com/user/kojied/"))
	assert.Equal(t, "kojied", Username("https://www.reddit.com/user/kojied"))
	assert.Empty(t, Username("https://www.reddit.com/r/golang/"))
}

func TestScraper_fetchCategory(t *testing.T) {
	t.Run("filters short content", func(t *testing.T) {
		listing := `{"data": {"children": [
			{"data": {"title": "short", "selftext": "ok", "subreddit": "test", "permalink": "/p/1", "created_utc": 1700000000, "score": 5}},
			{"data": {"title": "long", "selftext": "this is a long enough comment", "subreddit": "test", "permalink": "/p/2", "created_utc": 1700000100, "score": 7}}
		]}}`
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(listing))
		}))
		defer server.Close()

		s := testScraper(time.Second)
		items := s.fetchCategory(context.Background(), server.URL+"/user/x/submitted", domain.KindPost, 25)
		require.Len(t, items, 1)

		assert.Equal(t, "long", items[0].Title)
		assert.Equal(t, "this is a long enough comment", items[0].Content)
		assert.Equal(t, "test", items[0].Subreddit)
		assert.Equal(t, "https://reddit.com/p/2", items[0].URL)
		assert.Equal(t, 7, items[0].Score)
		assert.Equal(t, domain.KindPost, items[0].Kind)
		assert.Equal(t, time.Unix(1700000100, 0).UTC(), items[0].Created)
	})

	t.Run("caps at max items", func(t *testing.T) {
		var children string
		for i := 0; i < 10; i++ {
			if i > 0 {
				children += ","
			}
			children += fmt.Sprintf(`{"data": {"title": "t%d", "selftext": "content long enough %d", "subreddit": "s", "permalink": "/p/%d"}}`, i, i, i)
		}
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprintf(w, `{"data": {"children": [%s]}}`, children)
		}))
		defer server.Close()

		s := testScraper(time.Second)
		items := s.fetchCategory(context.Background(), server.URL+"/user/x/submitted", domain.KindPost, 3)
		assert.Len(t, items, 3)
		assert.Equal(t, "t0", items[0].Title) // api order preserved
	})

	t.Run("category failure yields empty list", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		s := testScraper(time.Second)
		items := s.fetchCategory(context.Background(), server.URL+"/user/x/comments", domain.KindComment, 25)
		assert.Empty(t, items)
	})

	t.Run("rss fallback on json failure", func(t *testing.T) {
		rss := `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
	<channel>
		<title>comments by u/x</title>
		<item>
			<title>comment on something</title>
			<link>https://reddit.com/p/42</link>
			<description>a comment body long enough to pass the filter</description>
			<pubDate>Mon, 02 Jan 2023 15:04:05 -0700</pubDate>
		</item>
	</channel>
</rss>`
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/user/x/comments.json" {
				w.WriteHeader(http.StatusTooManyRequests)
				return
			}
			w.Header().Set("Content-Type", "application/rss+xml")
			w.Write([]byte(rss))
		}))
		defer server.Close()

		s := testScraper(time.Second)
		items := s.fetchCategory(context.Background(), server.URL+"/user/x/comments", domain.KindComment, 25)
		require.Len(t, items, 1)
		assert.Equal(t, "comment on something", items[0].Title)
		assert.Equal(t, "a comment body long enough to pass the filter", items[0].Content)
		assert.Equal(t, "https://reddit.com/p/42", items[0].URL)
		assert.Equal(t, 0, items[0].Score) // rss carries no score
		assert.Equal(t, domain.KindComment, items[0].Kind)
	})
}

func TestDecodeListing(t *testing.T) {
	t.Run("listing object", func(t *testing.T) {
		items, err := decodeListing([]byte(`{"data": {"children": [{"data": {"title": "a"}}, {"data": {"title": "b"}}]}}`))
		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, "a", items[0].Title)
	})

	t.Run("array of listings", func(t *testing.T) {
		items, err := decodeListing([]byte(`[{"data": {"children": [{"data": {"title": "a"}}]}}, {"data": {"children": [{"data": {"title": "b"}}]}}]`))
		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, "b", items[1].Title)
	})

	t.Run("neither shape", func(t *testing.T) {
		_, err := decodeListing([]byte(`"just a string"`))
		require.Error(t, err)
	})

	t.Run("malformed json", func(t *testing.T) {
		_, err := decodeListing([]byte(`{"data": {`))
		require.Error(t, err)
	})
}

func TestNormalize(t *testing.T) {
	t.Run("comment body fallback", func(t *testing.T) {
		item, ok := normalize(rawItem{LinkTitle: "parent post", Body: "a comment long enough to keep", Subreddit: "golang"}, domain.KindComment)
		require.True(t, ok)
		assert.Equal(t, "parent post", item.Title) // link_title fallback
		assert.Equal(t, "a comment long enough to keep", item.Content)
	})

	t.Run("missing title and subreddit defaults", func(t *testing.T) {
		item, ok := normalize(rawItem{Selftext: "a post body long enough to keep"}, domain.KindPost)
		require.True(t, ok)
		assert.Equal(t, "No Title", item.Title)
		assert.Equal(t, "Unknown", item.Subreddit)
	})

	t.Run("rejects stub content", func(t *testing.T) {
		_, ok := normalize(rawItem{Title: "t", Selftext: "ok"}, domain.KindPost)
		assert.False(t, ok)

		_, ok = normalize(rawItem{Title: "t"}, domain.KindPost)
		assert.False(t, ok)
	})
}

func TestScraper_WithExtractor(t *testing.T) {
	extracted := "extracted text from the linked page, long enough to keep"
	listing := `{"data": {"children": [
		{"data": {"title": "link post", "selftext": "", "url": "https://example.com/article", "subreddit": "news", "permalink": "/p/1"}}
	]}}`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(listing))
	}))
	defer server.Close()

	s := testScraper(time.Second).WithExtractor(extractorFunc(func(ctx context.Context, pageURL string) (string, error) {
		assert.Equal(t, "https://example.com/article", pageURL)
		return extracted, nil
	}))

	items := s.fetchCategory(context.Background(), server.URL+"/user/x/submitted", domain.KindPost, 25)
	require.Len(t, items, 1)
	assert.Equal(t, extracted, items[0].Content)
}

func TestScraper_extractLinkPosts(t *testing.T) {
	s := testScraper(time.Second).WithExtractor(extractorFunc(func(_ context.Context, pageURL string) (string, error) {
		if pageURL == "https://example.com/bad" {
			return "", fmt.Errorf("fetch failed")
		}
		return "extracted from " + pageURL, nil
	}))

	raw := []rawItem{
		{Selftext: "already has a body", URL: "https://example.com/1"},
		{Selftext: "", URL: "https://example.com/2"},
		{Selftext: "", URL: ""}, // nothing to extract from
		{Selftext: "", URL: "https://example.com/bad"},
		{Selftext: "", URL: "https://example.com/5"},
	}
	s.extractLinkPosts(context.Background(), raw)

	assert.Equal(t, "already has a body", raw[0].Selftext)
	assert.Equal(t, "extracted from https://example.com/2", raw[1].Selftext)
	assert.Empty(t, raw[2].Selftext)
	assert.Empty(t, raw[3].Selftext) // failed extraction leaves the item alone
	assert.Equal(t, "extracted from https://example.com/5", raw[4].Selftext)
}

type extractorFunc func(ctx context.Context, pageURL string) (string, error)

func (f extractorFunc) Extract(ctx context.Context, pageURL string) (string, error) {
	return f(ctx, pageURL)
}
