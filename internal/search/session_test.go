package search

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/necrobingo/api/internal/bingo"
)

// gatedResolver records queries and can hold selected calls open until
// the test releases them.
type gatedResolver struct {
	mu      sync.Mutex
	calls   []string
	gates   map[string]chan struct{}
	started chan string
	err     error
}

func newGatedResolver() *gatedResolver {
	return &gatedResolver{
		gates:   make(map[string]chan struct{}),
		started: make(chan string, 10),
	}
}

func (g *gatedResolver) Resolve(_ context.Context, query string, _ int) ([]bingo.Person, error) {
	g.mu.Lock()
	g.calls = append(g.calls, query)
	gate := g.gates[query]
	g.mu.Unlock()

	g.started <- query
	if gate != nil {
		<-gate
	}
	if g.err != nil {
		return nil, g.err
	}
	return []bingo.Person{{ID: "Q-" + query, Name: query}}, nil
}

func (g *gatedResolver) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.calls)
}

// recorder collects sink updates for later assertions.
type recorder struct {
	mu      sync.Mutex
	updates []Update
}

func (r *recorder) sink(u Update) {
	r.mu.Lock()
	r.updates = append(r.updates, u)
	r.mu.Unlock()
}

func (r *recorder) snapshot() []Update {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Update(nil), r.updates...)
}

// waitFor polls until pred sees a satisfying update or the deadline passes.
func (r *recorder) waitFor(t *testing.T, pred func(Update) bool) Update {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		for _, u := range r.snapshot() {
			if pred(u) {
				return u
			}
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("no matching update; got %+v", r.snapshot())
	return Update{}
}

func TestDebounceCollapsesRapidKeystrokes(t *testing.T) {
	resolver := newGatedResolver()
	rec := &recorder{}
	s := NewSession(resolver, 60*time.Millisecond, 8, rec.sink)
	defer s.Close()

	s.SetQuery("a")
	time.Sleep(10 * time.Millisecond)
	s.SetQuery("ab")

	rec.waitFor(t, func(u Update) bool { return len(u.Results) > 0 })

	if got := resolver.callCount(); got != 1 {
		t.Fatalf("expected exactly 1 lookup, got %d", got)
	}
	resolver.mu.Lock()
	query := resolver.calls[0]
	resolver.mu.Unlock()
	if query != "ab" {
		t.Errorf("expected lookup for %q, got %q", "ab", query)
	}
}

func TestStaleResultNeverOverwritesNewer(t *testing.T) {
	resolver := newGatedResolver()
	firstGate := make(chan struct{})
	resolver.gates["first"] = firstGate

	rec := &recorder{}
	s := NewSession(resolver, 10*time.Millisecond, 8, rec.sink)
	defer s.Close()

	s.SetQuery("first")
	if q := <-resolver.started; q != "first" {
		t.Fatalf("expected first lookup, got %q", q)
	}

	// Supersede while the first lookup is still in flight.
	s.SetQuery("second")
	rec.waitFor(t, func(u Update) bool {
		return len(u.Results) == 1 && u.Results[0].Name == "second"
	})

	// Now let the stale lookup complete; its result must be discarded.
	close(firstGate)
	time.Sleep(50 * time.Millisecond)

	for _, u := range rec.snapshot() {
		if len(u.Results) > 0 && u.Results[0].Name == "first" {
			t.Fatal("stale result was delivered")
		}
	}

	updates := rec.snapshot()
	var lastResults Update
	for _, u := range updates {
		if len(u.Results) > 0 {
			lastResults = u
		}
	}
	if lastResults.Results[0].Name != "second" {
		t.Errorf("expected newest results to win, got %+v", lastResults)
	}
}

func TestSupersededDeliveryWaitsForNewer(t *testing.T) {
	resolver := newGatedResolver()
	rec := &recorder{}

	// The sink stalls while the first lookup's results are mid-delivery,
	// past the staleness check. A newer lookup completing in that window
	// must queue behind it, not slip its results in first.
	entered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	sink := func(u Update) {
		if len(u.Results) == 1 && u.Results[0].Name == "slow" {
			once.Do(func() {
				entered <- struct{}{}
				<-release
			})
		}
		rec.sink(u)
	}

	s := NewSession(resolver, 5*time.Millisecond, 8, sink)
	defer s.Close()

	s.SetQuery("slow")
	<-entered

	s.SetQuery("fast")
	time.Sleep(50 * time.Millisecond)

	for _, u := range rec.snapshot() {
		if len(u.Results) > 0 && u.Results[0].Name == "fast" {
			t.Fatal("newer results delivered while an older delivery was still in flight")
		}
	}

	close(release)
	rec.waitFor(t, func(u Update) bool {
		return len(u.Results) == 1 && u.Results[0].Name == "fast"
	})

	var names []string
	for _, u := range rec.snapshot() {
		if len(u.Results) > 0 {
			names = append(names, u.Results[0].Name)
		}
	}
	if len(names) != 2 || names[0] != "slow" || names[1] != "fast" {
		t.Fatalf("delivery order = %v, want [slow fast]", names)
	}
}

func TestEmptyQueryResetsWithoutLookup(t *testing.T) {
	resolver := newGatedResolver()
	rec := &recorder{}
	s := NewSession(resolver, 10*time.Millisecond, 8, rec.sink)
	defer s.Close()

	// A keystroke followed by a full deletion before the debounce elapses.
	s.SetQuery("a")
	s.SetQuery("   ")

	time.Sleep(60 * time.Millisecond)

	if got := resolver.callCount(); got != 0 {
		t.Fatalf("expected no lookups, got %d", got)
	}

	updates := rec.snapshot()
	if len(updates) == 0 {
		t.Fatal("expected an idle reset update")
	}
	last := updates[len(updates)-1]
	if last.Searching || last.Err != "" || len(last.Results) != 0 {
		t.Errorf("expected idle update, got %+v", last)
	}
}

func TestLookupFailureSurfacesGenericError(t *testing.T) {
	resolver := newGatedResolver()
	resolver.err = &timeoutErr{}
	rec := &recorder{}
	s := NewSession(resolver, 10*time.Millisecond, 8, rec.sink)
	defer s.Close()

	s.SetQuery("someone")

	u := rec.waitFor(t, func(u Update) bool { return u.Err != "" })
	if u.Err != "search failed" {
		t.Errorf("expected generic message, got %q", u.Err)
	}
	if len(u.Results) != 0 {
		t.Errorf("expected cleared results on failure, got %+v", u.Results)
	}
}

func TestCancellationIsSilent(t *testing.T) {
	resolver := newGatedResolver()
	resolver.err = context.Canceled
	rec := &recorder{}
	s := NewSession(resolver, 10*time.Millisecond, 8, rec.sink)
	defer s.Close()

	s.SetQuery("someone")

	<-resolver.started
	time.Sleep(50 * time.Millisecond)

	for _, u := range rec.snapshot() {
		if u.Err != "" {
			t.Fatalf("cancellation surfaced as error: %+v", u)
		}
	}
}

func TestCloseDropsPendingLookup(t *testing.T) {
	resolver := newGatedResolver()
	rec := &recorder{}
	s := NewSession(resolver, 30*time.Millisecond, 8, rec.sink)

	s.SetQuery("someone")
	s.Close()

	time.Sleep(80 * time.Millisecond)

	if got := resolver.callCount(); got != 0 {
		t.Fatalf("expected no lookups after close, got %d", got)
	}
}

type timeoutErr struct{}

func (*timeoutErr) Error() string { return "upstream timeout" }
