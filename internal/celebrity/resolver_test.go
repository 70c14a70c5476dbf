package celebrity

import (
	"context"
	"errors"
	"testing"
	"time"
)

// fakeProvider serves canned data and records how it was called.
type fakeProvider struct {
	hits     []SearchHit
	pages    map[int64]PageMeta
	entities map[string]Entity

	searchErr error
	metaErr   error
	entErr    error

	searchCalls  int
	searchLimit  int
	entityCalls  int
	lastQIDBatch []string
}

func (f *fakeProvider) Search(_ context.Context, _ string, limit int) ([]SearchHit, error) {
	f.searchCalls++
	f.searchLimit = limit
	return f.hits, f.searchErr
}

func (f *fakeProvider) PageMeta(_ context.Context, _ []int64) (map[int64]PageMeta, error) {
	return f.pages, f.metaErr
}

func (f *fakeProvider) Entities(_ context.Context, qids []string) (map[string]Entity, error) {
	f.entityCalls++
	f.lastQIDBatch = qids
	return f.entities, f.entErr
}

func newTestResolver(p Provider) *Resolver {
	r := NewResolver(p)
	r.now = func() time.Time { return time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC) }
	return r
}

func page(id int64, title, qid string) PageMeta {
	return PageMeta{PageID: id, Title: title, QID: qid}
}

func TestResolveEmptyQuery(t *testing.T) {
	p := &fakeProvider{}
	r := newTestResolver(p)

	for _, q := range []string{"", "   ", "\t\n"} {
		people, err := r.Resolve(context.Background(), q, 8)
		if err != nil {
			t.Fatalf("query %q: %v", q, err)
		}
		if len(people) != 0 {
			t.Errorf("query %q: expected no results, got %d", q, len(people))
		}
	}
	if p.searchCalls != 0 {
		t.Errorf("expected no provider calls for empty queries, got %d", p.searchCalls)
	}
}

func TestResolveOverfetchesSearch(t *testing.T) {
	p := &fakeProvider{}
	r := newTestResolver(p)

	if _, err := r.Resolve(context.Background(), "prince", 8); err != nil {
		t.Fatal(err)
	}
	if p.searchLimit != 16 {
		t.Errorf("expected search limit 16, got %d", p.searchLimit)
	}
}

func TestResolvePipeline(t *testing.T) {
	p := &fakeProvider{
		hits: []SearchHit{
			{PageID: 1, Title: "Alpha"},
			{PageID: 2, Title: "Beta (homonymie)"},
			{PageID: 3, Title: "Gamma"},
			{PageID: 4, Title: "Delta"},
			{PageID: 5, Title: "Epsilon"},
		},
		pages: map[int64]PageMeta{
			1: {PageID: 1, Title: "Alpha", QID: "Q1", ThumbnailURL: "https://img/alpha.jpg"},
			2: {PageID: 2, Title: "Beta (homonymie)", QID: "Q2", Disambiguation: true},
			3: {PageID: 3, Title: "Gamma"}, // no QID
			4: {PageID: 4, Title: "Delta", QID: "Q4"},
			5: {PageID: 5, Title: "Epsilon", QID: "Q5x"},
		},
		entities: map[string]Entity{
			"Q1":  {Human: true, BirthTime: "+1970-06-15T00:00:00Z", Label: "Alpha Label"},
			"Q4":  {Human: false}, // a band, not a person
			"Q5x": {Human: true, Dead: true, BirthTime: "+1950-01-01T00:00:00Z"},
		},
	}
	r := newTestResolver(p)

	people, err := r.Resolve(context.Background(), "test", 8)
	if err != nil {
		t.Fatal(err)
	}

	if len(people) != 2 {
		t.Fatalf("expected 2 people, got %d: %+v", len(people), people)
	}

	// Original search-rank order: Alpha before Epsilon.
	alpha, epsilon := people[0], people[1]

	if alpha.QID != "Q1" || epsilon.QID != "Q5x" {
		t.Fatalf("expected order [Q1 Q5x], got [%s %s]", alpha.QID, epsilon.QID)
	}

	if alpha.Name != "Alpha Label" {
		t.Errorf("expected structured label, got %q", alpha.Name)
	}
	if alpha.Age == nil || *alpha.Age != 54 {
		t.Errorf("expected age 54, got %v", alpha.Age)
	}
	if alpha.ImageURL != "https://img/alpha.jpg" {
		t.Errorf("expected thumbnail url, got %q", alpha.ImageURL)
	}

	// Deceased: isDead set, age withheld despite a birth claim.
	if !epsilon.IsDead {
		t.Error("expected Epsilon deceased")
	}
	if epsilon.Age != nil {
		t.Errorf("expected unknown age for deceased, got %d", *epsilon.Age)
	}
	// Label missing: falls back to the page title.
	if epsilon.Name != "Epsilon" {
		t.Errorf("expected title fallback, got %q", epsilon.Name)
	}
	// No thumbnail: falls back to the placeholder.
	if epsilon.ImageURL != DefaultAvatarURL {
		t.Errorf("expected placeholder portrait, got %q", epsilon.ImageURL)
	}

	// Facts are fetched in one batch covering only filtered-in pages.
	if p.entityCalls != 1 {
		t.Errorf("expected 1 entity batch, got %d", p.entityCalls)
	}
	wantBatch := []string{"Q1", "Q4", "Q5x"}
	if len(p.lastQIDBatch) != len(wantBatch) {
		t.Fatalf("expected batch %v, got %v", wantBatch, p.lastQIDBatch)
	}
	for i, qid := range wantBatch {
		if p.lastQIDBatch[i] != qid {
			t.Errorf("batch[%d] = %s, want %s", i, p.lastQIDBatch[i], qid)
		}
	}
}

func TestResolveUnknownBirthDateStillIncluded(t *testing.T) {
	p := &fakeProvider{
		hits:  []SearchHit{{PageID: 1, Title: "Alpha"}},
		pages: map[int64]PageMeta{1: page(1, "Alpha", "Q1")},
		entities: map[string]Entity{
			"Q1": {Human: true, Label: "Alpha", BirthTime: "unparseable"},
		},
	}
	r := newTestResolver(p)

	people, err := r.Resolve(context.Background(), "alpha", 8)
	if err != nil {
		t.Fatal(err)
	}
	if len(people) != 1 {
		t.Fatalf("expected 1 person, got %d", len(people))
	}
	if people[0].Age != nil {
		t.Errorf("expected unknown age, got %d", *people[0].Age)
	}
}

func TestResolveRespectsLimit(t *testing.T) {
	hits := make([]SearchHit, 6)
	pages := make(map[int64]PageMeta, 6)
	entities := make(map[string]Entity, 6)
	qids := []string{"Q1", "Q2", "Q3", "Q4", "Q5", "Q6"}
	for i, qid := range qids {
		id := int64(i + 1)
		hits[i] = SearchHit{PageID: id, Title: qid}
		pages[id] = page(id, qid, qid)
		entities[qid] = Entity{Human: true, Label: qid}
	}
	r := newTestResolver(&fakeProvider{hits: hits, pages: pages, entities: entities})

	people, err := r.Resolve(context.Background(), "common name", 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(people) != 3 {
		t.Fatalf("expected 3 people, got %d", len(people))
	}
	for i, want := range qids[:3] {
		if people[i].QID != want {
			t.Errorf("people[%d] = %s, want %s", i, people[i].QID, want)
		}
	}
}

func TestResolveNoHits(t *testing.T) {
	r := newTestResolver(&fakeProvider{})

	people, err := r.Resolve(context.Background(), "zzzz", 8)
	if err != nil {
		t.Fatal(err)
	}
	if people != nil {
		t.Errorf("expected nil results, got %v", people)
	}
}

func TestResolveAllFilteredOut(t *testing.T) {
	p := &fakeProvider{
		hits: []SearchHit{{PageID: 1, Title: "Alpha"}},
		pages: map[int64]PageMeta{
			1: {PageID: 1, Title: "Alpha", QID: "Q1", Disambiguation: true},
		},
	}
	r := newTestResolver(p)

	people, err := r.Resolve(context.Background(), "alpha", 8)
	if err != nil {
		t.Fatal(err)
	}
	if len(people) != 0 {
		t.Errorf("expected no results, got %d", len(people))
	}
	if p.entityCalls != 0 {
		t.Errorf("expected no entity fetch when everything filtered, got %d", p.entityCalls)
	}
}

func TestResolveTransportError(t *testing.T) {
	wantErr := &TransportError{URL: "https://example/w/api.php", StatusCode: 503}
	r := newTestResolver(&fakeProvider{searchErr: wantErr})

	_, err := r.Resolve(context.Background(), "alpha", 8)

	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected TransportError, got %v", err)
	}
	if te.StatusCode != 503 {
		t.Errorf("expected status 503, got %d", te.StatusCode)
	}
}
