package topics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shortsbot/config"
)

const sampleFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
  <title>건강 뉴스</title>
  <link>https://news.example.com</link>
  <description>test</description>
  <item>
    <title> 간헐적 단식의 효과 </title>
    <link>https://news.example.com/a?utm_source=rss</link>
    <guid>a-1</guid>
    <description>16시간 공복이 주는 변화</description>
    <pubDate>Mon, 06 Jan 2025 09:00:00 +0900</pubDate>
    <category>건강</category>
  </item>
  <item>
    <title>탈모 예방 샴푸 고르는 법</title>
    <link>https://news.example.com/b</link>
    <description>두피 타입별 정리</description>
  </item>
  <item>
    <title>세 번째 기사</title>
    <link>https://news.example.com/c</link>
  </item>
</channel>
</rss>`

func TestFetchFeed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(sampleFeed))
	}))
	defer srv.Close()

	items, err := FetchFeed(context.Background(), srv.URL, 2)
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "a-1", items[0].ID)
	assert.Equal(t, "간헐적 단식의 효과", items[0].Title)
	assert.Equal(t, "16시간 공복이 주는 변화", items[0].Summary)
	assert.Equal(t, []string{"건강"}, items[0].Categories)
	assert.False(t, items[0].PublishedAt.IsZero())

	assert.Len(t, items[1].ID, 16)

	all, err := FetchFeed(context.Background(), srv.URL, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestFetchFeedError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := FetchFeed(context.Background(), srv.URL, 5)
	assert.Error(t, err)
}

func TestExtractText(t *testing.T) {
	body := strings.Repeat("간헐적 단식은 일정 시간 동안 음식을 먹지 않는 식사 방법입니다. 많은 연구에서 체중 감량과 대사 건강 개선 효과가 보고되었습니다. ", 8)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(`<html><head><title>간헐적 단식</title></head><body>
<nav>메뉴 | 로그인</nav>
<article><h1>간헐적 단식</h1><p>` + body + `</p><p>` + body + `</p></article>
</body></html>`))
	}))
	defer srv.Close()

	text, err := ExtractText(srv.URL + "/article")
	require.NoError(t, err)
	assert.Contains(t, text, "체중 감량")

	_, err = ExtractText("")
	assert.Error(t, err)
}

func TestNormalize(t *testing.T) {
	cases := []struct {
		name      string
		url       string
		title     string
		wantURL   string
		wantTitle string
	}{
		{"simple", "https://example.com/path", "Hello World", "https://example.com/path", "hello world"},
		{"utm and fragment", "https://example.com/path?utm_source=feed#section", "  Hello   World  ", "https://example.com/path", "hello world"},
		{"uppercase host", "HTTP://Example.COM/", "TiTle", "http://example.com", "title"},
		{"tracking params", "https://example.com/?fbclid=XYZ&gclid=ABC&utm_medium=1", "T", "https://example.com", "t"},
		{"korean title", "https://news.example.com/a", " 간헐적   단식 ", "https://news.example.com/a", "간헐적 단식"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.wantURL, NormalizeURL(c.url))
			assert.Equal(t, c.wantTitle, NormalizeTitle(c.title))
		})
	}

	assert.Equal(t, Hash("https://example.com/path?utm_source=x", "Hello  World"), Hash("https://EXAMPLE.com/path/", "hello world"))
	assert.NotEqual(t, Hash("https://example.com/a", "x"), Hash("https://example.com/b", "x"))
	assert.Len(t, Hash("", ""), 64)
}

func TestPick(t *testing.T) {
	ctx := context.Background()
	items := []*Item{
		{Title: "", URL: "https://e.com/empty"},
		{Title: "첫 번째", URL: "https://e.com/1"},
		{Title: "두 번째", URL: "https://e.com/2"},
	}
	seen := NewMemorySeen()

	got, err := Pick(ctx, items, seen, nil)
	require.NoError(t, err)
	assert.Equal(t, "첫 번째", got.Title)

	got, err = Pick(ctx, items, seen, nil)
	require.NoError(t, err)
	assert.Equal(t, "두 번째", got.Title)

	_, err = Pick(ctx, items, seen, nil)
	assert.ErrorIs(t, err, ErrNoFreshTopic)
}

func TestRedisSeen(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: config.RedisAddr(), DB: 15})
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("redis not available: %v", err)
	}
	key := "shortsbot-test-seen-" + time.Now().Format("150405.000000")
	t.Cleanup(func() {
		client.Del(context.Background(), key)
		client.Close()
	})

	s := NewRedisSeenWithClient(client, key, time.Minute)
	h := Hash("https://e.com/1", "첫 번째")
	ok, err := s.Seen(ctx, h)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Mark(ctx, h))
	ok, err = s.Seen(ctx, h)
	require.NoError(t, err)
	assert.True(t, ok)

	ttl, err := client.TTL(ctx, key).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
}
