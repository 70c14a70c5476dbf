// Package celebrity resolves free-text queries into public figures via a
// two-stage Wikipedia search followed by a batched Wikidata fact lookup.
package celebrity

import (
	"context"
	"fmt"
)

// SearchHit is one free-text search result, in relevance order.
type SearchHit struct {
	PageID int64
	Title  string
}

// PageMeta is per-page metadata used to disambiguate and illustrate a hit.
// QID is empty when the page has no linked structured-data entity.
type PageMeta struct {
	PageID         int64
	Title          string
	Disambiguation bool
	QID            string
	ThumbnailURL   string
}

// Entity carries the structured facts needed to derive humanity, death
// status, and age. BirthTime is the raw Wikidata time string ("+YYYY-MM-DD...")
// and may be empty.
type Entity struct {
	Human     bool
	Dead      bool
	BirthTime string
	Label     string
}

// Provider abstracts the biographical knowledge source. All calls honor
// context cancellation and report non-success responses as *TransportError.
type Provider interface {
	Search(ctx context.Context, text string, limit int) ([]SearchHit, error)
	PageMeta(ctx context.Context, pageIDs []int64) (map[int64]PageMeta, error)
	Entities(ctx context.Context, qids []string) (map[string]Entity, error)
}

// TransportError is the uniform failure for any provider round trip:
// network errors and non-2xx responses alike.
type TransportError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("provider request %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("provider request %s: HTTP %d", e.URL, e.StatusCode)
}

func (e *TransportError) Unwrap() error { return e.Err }
