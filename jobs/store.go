package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNotFound is returned when a job ID is unknown.
var ErrNotFound = errors.New("job not found")

// Store persists jobs.
type Store interface {
	Save(ctx context.Context, job *Job) error
	Get(ctx context.Context, id string) (*Job, error)
	// List returns up to limit jobs, newest first. limit <= 0 means all.
	List(ctx context.Context, limit int) ([]*Job, error)
}

// MemoryStore keeps jobs in process memory.
type MemoryStore struct {
	mu   sync.RWMutex
	jobs map[string]*Job
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{jobs: make(map[string]*Job)}
}

func (s *MemoryStore) Save(_ context.Context, job *Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *job
	s.jobs[job.ID] = &cp
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	j, ok := s.jobs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	cp := *j
	return &cp, nil
}

func (s *MemoryStore) List(_ context.Context, limit int) ([]*Job, error) {
	s.mu.RLock()
	out := make([]*Job, 0, len(s.jobs))
	for _, j := range s.jobs {
		cp := *j
		out = append(out, &cp)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, k int) bool { return out[i].CreatedAt.After(out[k].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// RedisConfig configures the Redis connection for job records.
type RedisConfig struct {
	Addr     string // e.g. localhost:6379
	Password string
	DB       int
	// Prefix namespaces keys; defaults to "shortsbot".
	Prefix string
	// TTL expires job records; zero keeps them forever.
	TTL time.Duration
}

// RedisStore keeps each job as JSON under {prefix}:job:{id} and indexes
// IDs in a sorted set scored by creation time.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStore connects and verifies connectivity.
func NewRedisStore(cfg RedisConfig) (*RedisStore, error) {
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
	return NewRedisStoreWithClient(client, cfg.Prefix, cfg.TTL), nil
}

func NewRedisStoreWithClient(client *redis.Client, prefix string, ttl time.Duration) *RedisStore {
	if prefix == "" {
		prefix = "shortsbot"
	}
	return &RedisStore{client: client, prefix: prefix, ttl: ttl}
}

func (r *RedisStore) key(id string) string { return r.prefix + ":job:" + id }
func (r *RedisStore) index() string        { return r.prefix + ":jobs" }

// Close closes the underlying Redis client
func (r *RedisStore) Close() error {
	return r.client.Close()
}

func (r *RedisStore) Save(ctx context.Context, job *Job) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to encode job: %w", err)
	}
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, r.key(job.ID), data, r.ttl)
		pipe.ZAdd(ctx, r.index(), redis.Z{Score: float64(job.CreatedAt.UnixNano()), Member: job.ID})
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save job %s: %w", job.ID, err)
	}
	return nil
}

func (r *RedisStore) Get(ctx context.Context, id string) (*Job, error) {
	data, err := r.client.Get(ctx, r.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	var j Job
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, fmt.Errorf("failed to decode job %s: %w", id, err)
	}
	return &j, nil
}

func (r *RedisStore) List(ctx context.Context, limit int) ([]*Job, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit - 1)
	}
	ids, err := r.client.ZRevRange(ctx, r.index(), 0, stop).Result()
	if err != nil {
		return nil, err
	}
	out := make([]*Job, 0, len(ids))
	for _, id := range ids {
		j, err := r.Get(ctx, id)
		if errors.Is(err, ErrNotFound) {
			// Expired record; drop it from the index.
			r.client.ZRem(ctx, r.index(), id)
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	return out, nil
}
