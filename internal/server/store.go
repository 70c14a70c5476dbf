package server

import (
	"context"

	"github.com/necrobingo/api/internal/bingo"
)

// GridStore owns grid persistence. Load never fails the caller on a
// missing or malformed document — it falls back to a fresh empty grid.
// Mutations are atomic read-modify-write operations; each successful one
// persists the grid with a refreshed anchor timestamp.
type GridStore interface {
	Create(ctx context.Context) (string, bingo.Grid, error)
	Load(ctx context.Context, gridID string) (bingo.Grid, error)
	Assign(ctx context.Context, gridID string, cellID int, p bingo.Person) (bingo.Grid, error)
	Clear(ctx context.Context, gridID string, cellID int) (bingo.Grid, error)
	Reset(ctx context.Context, gridID string) (bingo.Grid, error)
}
