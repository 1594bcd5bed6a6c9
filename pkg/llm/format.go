package llm

import (
	"fmt"
	"log"
	"strings"

	"github.com/personascope/personascope/pkg/domain"
)

// maxItemChars caps how much of a single item's content goes into the prompt
const maxItemChars = 800

// FormatContent renders content items into the text block substituted into
// the user prompt. Each item gets a numbered section header, items are
// joined in input order. Per-item content over 800 chars is truncated with a
// trailing ellipsis, and the whole block is bounded by maxTotal chars, items
// past the bound are dropped.
func FormatContent(items []domain.ContentItem, maxTotal int) string {
	var sb strings.Builder

	for i, item := range items {
		content := item.Content
		if len(content) > maxItemChars {
			content = content[:maxItemChars] + "..."
		}

		section := fmt.Sprintf("=== %s %d ===\n", strings.ToUpper(string(item.Kind)), i+1) +
			fmt.Sprintf("Title: %s\n", item.Title) +
			fmt.Sprintf("Subreddit: r/%s\n", item.Subreddit) +
			fmt.Sprintf("Content: %s\n", content) +
			fmt.Sprintf("Timestamp: %s\n", item.Created.Format("2006-01-02 15:04:05")) +
			fmt.Sprintf("Upvotes: %d\n", item.Score) +
			fmt.Sprintf("URL: %s\n", item.URL)

		if maxTotal > 0 && sb.Len()+len(section)+1 > maxTotal {
			log.Printf("[WARN] content block reached %d chars cap, dropping %d of %d items", maxTotal, len(items)-i, len(items))
			break
		}

		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(section)
	}

	return sb.String()
}
