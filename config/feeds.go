package config

const DefaultFeedPreset = "yna"

// FeedPresets maps friendly names to Korean news RSS feeds
var FeedPresets = map[string]string{
	"yna":   "https://www.yna.co.kr/rss/news.xml",
	"hani":  "https://www.hani.co.kr/rss/",
	"khan":  "https://www.khan.co.kr/rss/rssdata/total_news.xml",
	"donga": "https://rss.donga.com/total.xml",
	"hn":    "https://hnrss.org/newest",
}

// ResolveFeedURL resolves a feed identifier to a URL.
// If the input is a preset name, returns the corresponding URL
// Otherwise, returns the input as-is (assuming it's a direct URL)
func ResolveFeedURL(feedInput string) string {
	if url, exists := FeedPresets[feedInput]; exists {
		return url
	}
	return feedInput
}
