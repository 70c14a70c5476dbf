package celebrity

import (
	"context"
	"strings"
	"time"

	"github.com/necrobingo/api/internal/bingo"
)

// DefaultLimit is the result cap used when the caller passes limit <= 0.
const DefaultLimit = 8

// DefaultAvatarURL is the portrait placeholder for pages without a thumbnail.
const DefaultAvatarURL = "/defaultAvatar.webp"

// PersonResolver is the narrow surface consumers depend on; it is
// satisfied by *Resolver and by the redis-backed CachedResolver.
type PersonResolver interface {
	Resolve(ctx context.Context, query string, limit int) ([]bingo.Person, error)
}

// Resolver turns a free-text query into a ranked, capped list of living
// (or recently deceased) humans via three sequential provider stages.
type Resolver struct {
	provider  Provider
	avatarURL string
	now       func() time.Time
}

func NewResolver(p Provider) *Resolver {
	return &Resolver{
		provider:  p,
		avatarURL: DefaultAvatarURL,
		now:       time.Now,
	}
}

// Resolve runs the pipeline: text search (overfetched 2×limit), metadata
// filtering (disambiguation pages and pages without a structured-data id
// are dropped, original rank order kept), then one batched fact fetch.
// Results stop accumulating at limit and are never re-sorted.
func (r *Resolver) Resolve(ctx context.Context, query string, limit int) ([]bingo.Person, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	// Overfetch: later filters narrow the set.
	hits, err := r.provider.Search(ctx, q, 2*limit)
	if err != nil {
		return nil, err
	}
	if len(hits) == 0 {
		return nil, nil
	}

	pageIDs := make([]int64, len(hits))
	for i, h := range hits {
		pageIDs[i] = h.PageID
	}

	pages, err := r.provider.PageMeta(ctx, pageIDs)
	if err != nil {
		return nil, err
	}

	kept := make([]PageMeta, 0, len(hits))
	for _, h := range hits {
		p, ok := pages[h.PageID]
		if !ok || p.Disambiguation || p.QID == "" {
			continue
		}
		kept = append(kept, p)
	}
	if len(kept) == 0 {
		return nil, nil
	}

	qids := make([]string, len(kept))
	for i, p := range kept {
		qids[i] = p.QID
	}

	entities, err := r.provider.Entities(ctx, qids)
	if err != nil {
		return nil, err
	}

	today := r.now()
	people := make([]bingo.Person, 0, limit)
	for _, p := range kept {
		ent, ok := entities[p.QID]
		if !ok || !ent.Human {
			continue
		}

		// Age is withheld once a death is recorded.
		var age *int
		if !ent.Dead {
			if a, ok := ageAt(ent.BirthTime, today); ok {
				age = &a
			}
		}

		name := ent.Label
		if name == "" {
			name = p.Title
		}
		imageURL := p.ThumbnailURL
		if imageURL == "" {
			imageURL = r.avatarURL
		}

		people = append(people, bingo.Person{
			ID:        p.QID,
			Name:      name,
			Age:       age,
			IsDead:    ent.Dead,
			ImageURL:  imageURL,
			WikiTitle: p.Title,
			QID:       p.QID,
		})
		if len(people) >= limit {
			break
		}
	}
	return people, nil
}
