// Package search implements per-connection live-search sessions: keystrokes
// in, debounced and supersession-safe result updates out.
package search

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/necrobingo/api/internal/bingo"
	"github.com/necrobingo/api/internal/celebrity"
)

// DefaultDebounce is how long a query must sit unchanged before a lookup fires.
const DefaultDebounce = 350 * time.Millisecond

// Update is one state push to the session's sink. Searching marks the busy
// indicator; Err carries the single generic user-facing failure message.
type Update struct {
	Query     string         `json:"query"`
	Results   []bingo.Person `json:"results"`
	Searching bool           `json:"searching"`
	Err       string         `json:"error,omitempty"`
}

// Session debounces query changes and guarantees that only the most recent
// lookup's outcome is ever delivered. Supersession is enforced by a
// monotonic token compared after each lookup completes; cancelling the
// in-flight request context is best effort on top of that.
type Session struct {
	resolver celebrity.PersonResolver
	debounce time.Duration
	limit    int
	sink     func(Update)

	mu     sync.Mutex
	timer  *time.Timer
	cancel context.CancelFunc
	token  uint64
	closed bool

	// deliverMu serializes outcome delivery: the staleness re-check and
	// the sink call happen as one step. A lookup that bumped the token
	// always delivers after (or instead of) any lookup it superseded.
	deliverMu sync.Mutex
}

func NewSession(resolver celebrity.PersonResolver, debounce time.Duration, limit int, sink func(Update)) *Session {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if limit <= 0 {
		limit = celebrity.DefaultLimit
	}
	return &Session{
		resolver: resolver,
		debounce: debounce,
		limit:    limit,
		sink:     sink,
	}
}

// SetQuery registers the latest keystroke state. Any pending debounce timer
// is dropped. An empty (after trimming) query resets the session to idle
// immediately: results and errors clear, the in-flight lookup is aborted,
// and no network activity happens.
func (s *Session) SetQuery(query string) {
	q := strings.TrimSpace(query)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}

	if q == "" {
		// Bump the token so a lookup already in flight lands stale.
		s.token++
		if s.cancel != nil {
			s.cancel()
			s.cancel = nil
		}
		s.mu.Unlock()

		// Wait out any delivery already past its re-check so the idle
		// reset is the last word.
		s.deliverMu.Lock()
		s.sink(Update{})
		s.deliverMu.Unlock()
		return
	}

	s.timer = time.AfterFunc(s.debounce, func() { s.lookup(q) })
	s.mu.Unlock()

	s.sink(Update{Query: q, Searching: true})
}

func (s *Session) lookup(q string) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	// Abort the previous in-flight lookup; the token check below is the
	// authoritative guard, cancellation just saves bandwidth.
	if s.cancel != nil {
		s.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.token++
	token := s.token
	s.mu.Unlock()

	results, err := s.resolver.Resolve(ctx, q, s.limit)

	// The token is bumped before a lookup resolves, so holding deliverMu
	// from the re-check through the sink call closes the window where a
	// superseded completion could slip its update in after a newer one.
	s.deliverMu.Lock()
	defer s.deliverMu.Unlock()

	s.mu.Lock()
	stale := s.closed || token != s.token
	s.mu.Unlock()
	if stale {
		return
	}

	switch {
	case err == nil:
		s.sink(Update{Query: q, Results: results})
	case errors.Is(err, context.Canceled):
		// Superseded mid-flight; never user-visible.
	default:
		s.sink(Update{Query: q, Err: "search failed"})
	}
}

// Close tears the session down: the pending timer is dropped and any
// in-flight lookup is aborted; its late completion is discarded.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}
