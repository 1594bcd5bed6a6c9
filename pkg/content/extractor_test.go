package content

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/personascope/personascope/pkg/config"
)

func testExtractor(minLength int) *HTTPExtractor {
	return NewHTTPExtractor(config.ExtractionConfig{
		Enabled:       true,
		Timeout:       5 * time.Second,
		UserAgent:     "test-agent",
		MinTextLength: minLength,
	})
}

func articleHTML() string {
	para := "This is a paragraph of article text with enough substance to be kept by the extractor. "
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><title>Test Article</title></head>
<body>
<article>
<h1>Test Article</h1>
<p>%s</p>
<p>%s</p>
<p>%s</p>
</article>
</body>
</html>`, para+para, para+para, para+para)
}

func TestHTTPExtractor_Extract(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, articleHTML())
	}))
	defer server.Close()

	text, err := testExtractor(50).Extract(context.Background(), server.URL+"/article")
	require.NoError(t, err)
	assert.Contains(t, text, "paragraph of article text")
	assert.NotContains(t, text, "<p>")
}

func TestHTTPExtractor_Extract_Errors(t *testing.T) {
	e := testExtractor(100)

	t.Run("invalid url", func(t *testing.T) {
		_, err := e.Extract(context.Background(), "not-a-url")
		assert.Error(t, err)
	})

	t.Run("reddit internal url skipped", func(t *testing.T) {
		_, err := e.Extract(context.Background(), "https://www.reddit.com/r/golang/comments/abc/")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "reddit-internal")

		_, err = e.Extract(context.Background(), "https://old.reddit.com/r/golang/")
		assert.Error(t, err)
	})

	t.Run("non-200 response", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}))
		defer server.Close()

		_, err := e.Extract(context.Background(), server.URL)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unexpected status code 403")
	})

	t.Run("text below minimum length", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			fmt.Fprint(w, articleHTML())
		}))
		defer server.Close()

		short := testExtractor(100000)
		_, err := short.Extract(context.Background(), server.URL)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "too short")
	})

	t.Run("unreachable host", func(t *testing.T) {
		short := testExtractor(10)
		_, err := short.Extract(context.Background(), "http://127.0.0.1:1/nothing")
		require.Error(t, err)
		assert.True(t, strings.Contains(err.Error(), "fetch URL"))
	})
}
