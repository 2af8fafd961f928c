package topics

import (
	"context"
	"fmt"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"
	"github.com/mmcdole/gofeed"

	"shortsbot/config"
	"shortsbot/logger"
)

// Item is a feed entry that may become a short's topic.
type Item struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	Summary     string    `json:"summary,omitempty"`
	PublishedAt time.Time `json:"publishedAt"`
	Categories  []string  `json:"categories,omitempty"`
}

// FetchFeed retrieves and parses an RSS/Atom feed, returning at most
// maxCount items in feed order.
func FetchFeed(ctx context.Context, feedURL string, maxCount int) ([]*Item, error) {
	parser := gofeed.NewParser()
	feed, err := parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}

	count := len(feed.Items)
	if maxCount > 0 {
		count = min(count, maxCount)
	}
	items := make([]*Item, 0, count)
	for _, entry := range feed.Items[:count] {
		id := entry.GUID
		if id == "" && entry.Link != "" {
			id = Hash(entry.Link, "")[:16]
		}

		var published time.Time
		if entry.PublishedParsed != nil {
			published = *entry.PublishedParsed
		} else if entry.UpdatedParsed != nil {
			published = *entry.UpdatedParsed
		}

		summary := entry.Description
		if summary == "" {
			summary = entry.Content
		}

		items = append(items, &Item{
			ID:          id,
			Title:       strings.TrimSpace(entry.Title),
			URL:         entry.Link,
			Summary:     summary,
			PublishedAt: published,
			Categories:  append([]string(nil), entry.Categories...),
		})
	}
	return items, nil
}

// ExtractText returns the readable text of the article at url.
func ExtractText(url string) (string, error) {
	if url == "" {
		return "", fmt.Errorf("article URL is empty")
	}
	article, err := readability.FromURL(url, config.ArticleTimeout)
	if err != nil {
		return "", fmt.Errorf("readability extraction failed: %w", err)
	}
	text := strings.TrimSpace(article.TextContent)
	logger.Sugar().Infof("✓ Extracted: %s (%d chars)", article.Title, len([]rune(text)))
	return text, nil
}
