package service

import (
	"context"
	"sync"
	"time"

	"github.com/nvoisard/bilingo/internal/client"
	"github.com/nvoisard/bilingo/internal/lang"
)

const (
	// Redis key prefix for the per-session exercise context
	exerciseKeyPrefix = "lesson:exercise:"
	// TTL so abandoned sessions expire on their own
	defaultExerciseTTL = 30 * time.Minute
)

// Exercise is the target-language sentence the learner was last asked
// to repeat. The next utterance is scored against it.
type Exercise struct {
	Text string    `json:"text"`
	Lang lang.Code `json:"lang"`
}

// ExerciseStore remembers the last exercise per session.
type ExerciseStore interface {
	Save(ctx context.Context, sessionID string, ex Exercise) error
	Get(ctx context.Context, sessionID string) (Exercise, bool, error)
}

// MemoryExerciseStore is the in-process fallback used when Redis is not
// configured. Entries live until the gateway restarts.
type MemoryExerciseStore struct {
	mu        sync.RWMutex
	exercises map[string]Exercise
}

// NewMemoryExerciseStore creates an empty in-memory store.
func NewMemoryExerciseStore() *MemoryExerciseStore {
	return &MemoryExerciseStore{exercises: make(map[string]Exercise)}
}

func (s *MemoryExerciseStore) Save(ctx context.Context, sessionID string, ex Exercise) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.exercises[sessionID] = ex
	return nil
}

func (s *MemoryExerciseStore) Get(ctx context.Context, sessionID string) (Exercise, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ex, ok := s.exercises[sessionID]
	return ex, ok, nil
}

// RedisExerciseStore keeps exercises in Redis under session-scoped keys
// with a TTL.
type RedisExerciseStore struct {
	redis *client.RedisClient
	ttl   time.Duration
}

// NewRedisExerciseStore wraps a Redis client as an exercise store. A
// zero ttl falls back to the default.
func NewRedisExerciseStore(r *client.RedisClient, ttl time.Duration) *RedisExerciseStore {
	if ttl == 0 {
		ttl = defaultExerciseTTL
	}
	return &RedisExerciseStore{redis: r, ttl: ttl}
}

func (s *RedisExerciseStore) Save(ctx context.Context, sessionID string, ex Exercise) error {
	return s.redis.SetJSON(ctx, exerciseKeyPrefix+sessionID, ex, s.ttl)
}

func (s *RedisExerciseStore) Get(ctx context.Context, sessionID string) (Exercise, bool, error) {
	var ex Exercise
	ok, err := s.redis.GetJSON(ctx, exerciseKeyPrefix+sessionID, &ex)
	if err != nil || !ok {
		return Exercise{}, false, err
	}
	return ex, true, nil
}
