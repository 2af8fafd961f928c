package topics

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"shortsbot/logger"
)

// ErrNoFreshTopic means every candidate has been used before.
var ErrNoFreshTopic = errors.New("no unseen topic")

// Hash is the hex SHA-256 of the normalized URL and title.
func Hash(rawURL, title string) string {
	h := sha256.Sum256([]byte(NormalizeURL(rawURL) + "|" + NormalizeTitle(title)))
	return hex.EncodeToString(h[:])
}

// NormalizeTitle lowercases and collapses whitespace.
func NormalizeTitle(t string) string {
	return strings.Join(strings.Fields(strings.ToLower(t)), " ")
}

// NormalizeURL lowercases scheme and host and drops the fragment,
// tracking parameters and trailing slashes.
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return strings.ToLower(raw)
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""

	q := u.Query()
	for k := range q {
		lk := strings.ToLower(k)
		if strings.HasPrefix(lk, "utm_") || lk == "fbclid" || lk == "gclid" {
			q.Del(k)
		}
	}
	u.RawQuery = q.Encode()
	return strings.TrimRight(u.String(), "/")
}

// Seen remembers which topics already became shorts.
type Seen interface {
	Seen(ctx context.Context, hash string) (bool, error)
	Mark(ctx context.Context, hash string) error
}

// Pick returns the first unseen item and marks it seen. When similar is
// set, items whose titles read as an already picked story are marked seen
// and skipped. Embedding failures fall back to the exact check.
func Pick(ctx context.Context, items []*Item, seen Seen, similar *Similar) (*Item, error) {
	for _, item := range items {
		if item == nil || item.Title == "" {
			continue
		}
		h := Hash(item.URL, item.Title)
		ok, err := seen.Seen(ctx, h)
		if err != nil {
			return nil, err
		}
		if ok {
			continue
		}
		var vec []float32
		if similar != nil {
			dup, v, err := similar.Check(ctx, item.Title)
			switch {
			case err != nil:
				logger.Sugar().Warnf("⚠️ Title embedding failed, using exact match only: %v", err)
			case dup:
				logger.Sugar().Infof("Skipping near-duplicate topic %q", item.Title)
				if err := seen.Mark(ctx, h); err != nil {
					return nil, err
				}
				continue
			default:
				vec = v
			}
		}
		if err := seen.Mark(ctx, h); err != nil {
			return nil, err
		}
		if similar != nil {
			similar.Remember(vec)
		}
		return item, nil
	}
	return nil, ErrNoFreshTopic
}

// MemorySeen is a process-local Seen.
type MemorySeen struct {
	mu     sync.Mutex
	hashes map[string]struct{}
}

func NewMemorySeen() *MemorySeen {
	return &MemorySeen{hashes: make(map[string]struct{})}
}

func (m *MemorySeen) Seen(_ context.Context, hash string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.hashes[hash]
	return ok, nil
}

func (m *MemorySeen) Mark(_ context.Context, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hashes[hash] = struct{}{}
	return nil
}

// SeenConfig configures the Redis set of used topics.
type SeenConfig struct {
	Addr     string
	Password string
	DB       int
	Key      string        // defaults to "shortsbot:topics:seen"
	TTL      time.Duration // sliding expiry, reset on every Mark
}

// RedisSeen keeps topic hashes in a Redis set.
type RedisSeen struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewRedisSeen connects and verifies connectivity.
func NewRedisSeen(cfg SeenConfig) (*RedisSeen, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}
	return NewRedisSeenWithClient(client, cfg.Key, cfg.TTL), nil
}

func NewRedisSeenWithClient(client *redis.Client, key string, ttl time.Duration) *RedisSeen {
	if key == "" {
		key = "shortsbot:topics:seen"
	}
	return &RedisSeen{client: client, key: key, ttl: ttl}
}

func (r *RedisSeen) Close() error {
	return r.client.Close()
}

func (r *RedisSeen) Seen(ctx context.Context, hash string) (bool, error) {
	return r.client.SIsMember(ctx, r.key, hash).Result()
}

func (r *RedisSeen) Mark(ctx context.Context, hash string) error {
	if err := r.client.SAdd(ctx, r.key, hash).Err(); err != nil {
		return err
	}
	if r.ttl > 0 {
		return r.client.Expire(ctx, r.key, r.ttl).Err()
	}
	return nil
}
