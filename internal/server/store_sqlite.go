package server

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/necrobingo/api/internal/bingo"
)

// SQLiteGridStore persists each grid as a JSONB document in the grids
// table, one row per grid id.
type SQLiteGridStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewGridStore(db *sql.DB) *SQLiteGridStore {
	return &SQLiteGridStore{db: db, now: time.Now}
}

func (s *SQLiteGridStore) Create(ctx context.Context) (string, bingo.Grid, error) {
	id, err := randomID()
	if err != nil {
		return "", bingo.Grid{}, err
	}

	now := s.now().UTC()
	g := bingo.NewGrid(now)
	if err := s.put(ctx, s.db, id, g); err != nil {
		return "", bingo.Grid{}, err
	}
	return id, g, nil
}

func (s *SQLiteGridStore) Load(ctx context.Context, gridID string) (bingo.Grid, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT json(data) FROM grids WHERE id = ?`, gridID,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return bingo.NewGrid(s.now().UTC()), nil
	}
	if err != nil {
		return bingo.Grid{}, err
	}
	return decodeGrid([]byte(data), s.now().UTC()), nil
}

func (s *SQLiteGridStore) Assign(ctx context.Context, gridID string, cellID int, p bingo.Person) (bingo.Grid, error) {
	return s.mutate(ctx, gridID, func(g *bingo.Grid) error {
		return g.Assign(cellID, p)
	})
}

func (s *SQLiteGridStore) Clear(ctx context.Context, gridID string, cellID int) (bingo.Grid, error) {
	return s.mutate(ctx, gridID, func(g *bingo.Grid) error {
		return g.Clear(cellID)
	})
}

func (s *SQLiteGridStore) Reset(ctx context.Context, gridID string) (bingo.Grid, error) {
	return s.mutate(ctx, gridID, func(g *bingo.Grid) error {
		g.Reset()
		return nil
	})
}

// mutate runs fn against the stored grid inside a transaction, then
// persists the result with the anchor timestamp refreshed to now. The
// whole read-modify-write is atomic from the caller's perspective.
func (s *SQLiteGridStore) mutate(ctx context.Context, gridID string, fn func(*bingo.Grid) error) (bingo.Grid, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return bingo.Grid{}, err
	}
	defer tx.Rollback()

	now := s.now().UTC()
	g := bingo.NewGrid(now)

	var data string
	err = tx.QueryRowContext(ctx,
		`SELECT json(data) FROM grids WHERE id = ?`, gridID,
	).Scan(&data)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		// First mutation of an unseen grid starts from empty.
	case err != nil:
		return bingo.Grid{}, err
	default:
		g = decodeGrid([]byte(data), now)
	}

	if err := fn(&g); err != nil {
		return bingo.Grid{}, err
	}

	g.LastUpdatedAt = now
	if err := s.put(ctx, tx, gridID, g); err != nil {
		return bingo.Grid{}, err
	}
	return g, tx.Commit()
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *SQLiteGridStore) put(ctx context.Context, db execer, gridID string, g bingo.Grid) error {
	doc, err := json.Marshal(g)
	if err != nil {
		return fmt.Errorf("encoding grid: %w", err)
	}
	_, err = db.ExecContext(ctx,
		`INSERT INTO grids (id, data, updated_at) VALUES (?, jsonb(?), ?)
		 ON CONFLICT(id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		gridID, string(doc), g.LastUpdatedAt.Format(time.RFC3339Nano),
	)
	return err
}

// decodeGrid accepts the current document shape and the legacy bare-array
// shape (25 cells, no wrapping metadata — migrated one way with a
// synthesized timestamp). Anything else yields a fresh empty grid.
func decodeGrid(data []byte, now time.Time) bingo.Grid {
	var g bingo.Grid
	if err := json.Unmarshal(data, &g); err == nil && len(g.Cells) == bingo.GridSize {
		if g.LastUpdatedAt.IsZero() {
			g.LastUpdatedAt = now
		}
		return g
	}

	var cells []bingo.Cell
	if err := json.Unmarshal(data, &cells); err == nil && len(cells) == bingo.GridSize {
		return bingo.Grid{LastUpdatedAt: now, Cells: cells}
	}

	return bingo.NewGrid(now)
}

func randomID() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating grid id: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
