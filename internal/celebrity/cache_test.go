package celebrity

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/necrobingo/api/internal/bingo"
)

type stubResolver struct {
	calls  int
	people []bingo.Person
	err    error
}

func (s *stubResolver) Resolve(_ context.Context, _ string, _ int) ([]bingo.Person, error) {
	s.calls++
	return s.people, s.err
}

// Redis being unreachable must cost only the cache, never the lookup.
func TestCachedResolverFallsThroughWithoutRedis(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:0",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer rdb.Close()

	inner := &stubResolver{people: []bingo.Person{{ID: "Q1", Name: "Alpha", QID: "Q1"}}}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	c := NewCachedResolver(inner, rdb, time.Hour, logger)

	people, err := c.Resolve(context.Background(), "alpha", 8)
	if err != nil {
		t.Fatalf("expected cache miss to fall through, got %v", err)
	}
	if inner.calls != 1 {
		t.Errorf("expected 1 inner call, got %d", inner.calls)
	}
	if len(people) != 1 || people[0].QID != "Q1" {
		t.Errorf("unexpected results: %+v", people)
	}
}

func TestCachedResolverEmptyQueryShortCircuits(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0", MaxRetries: -1})
	defer rdb.Close()

	inner := &stubResolver{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	c := NewCachedResolver(inner, rdb, time.Hour, logger)

	people, err := c.Resolve(context.Background(), "   ", 8)
	if err != nil || people != nil {
		t.Fatalf("expected empty no-op, got %v / %v", people, err)
	}
	if inner.calls != 0 {
		t.Errorf("expected no inner calls, got %d", inner.calls)
	}
}
