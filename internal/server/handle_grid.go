package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/necrobingo/api/internal/bingo"
)

// CellView is a cell plus its recomputed risk tier. Tiers are display
// advice derived on every read, never persisted.
type CellView struct {
	ID        int           `json:"id"`
	Celebrity *bingo.Person `json:"celebrity"`
	bingo.Tier
}

type GridResponse struct {
	ID            string     `json:"id"`
	LastUpdatedAt time.Time  `json:"lastUpdatedAt"`
	Cells         []CellView `json:"cells"`
}

// ExportResponse is the render snapshot consumed by the client-side image
// exporter: the full grid plus the visible anchor stamp that makes
// exported images tamper-evident.
type ExportResponse struct {
	Stamp         string     `json:"stamp"`
	LastUpdatedAt time.Time  `json:"lastUpdatedAt"`
	Cells         []CellView `json:"cells"`
}

func gridResponse(id string, g bingo.Grid) GridResponse {
	return GridResponse{
		ID:            id,
		LastUpdatedAt: g.LastUpdatedAt,
		Cells:         cellViews(g),
	}
}

func cellViews(g bingo.Grid) []CellView {
	views := make([]CellView, len(g.Cells))
	for i, c := range g.Cells {
		views[i] = CellView{ID: c.ID, Celebrity: c.Celebrity}
		if c.Celebrity != nil {
			views[i].Tier = bingo.Classify(*c.Celebrity)
		}
	}
	return views
}

func cellIDParam(r *http.Request) (int, error) {
	return strconv.Atoi(chi.URLParam(r, "cellID"))
}

func handleCreateGrid(store GridStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, g, err := store.Create(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusCreated, gridResponse(id, g))
	}
}

func handleGetGrid(store GridStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gridID := chi.URLParam(r, "gridID")

		g, err := store.Load(r.Context(), gridID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, gridResponse(gridID, g))
	}
}

func handleAssignCell(store GridStore, broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gridID := chi.URLParam(r, "gridID")

		cellID, err := cellIDParam(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid cell id")
			return
		}

		var p bingo.Person
		if err := readJSON(r, &p); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		p.Name = strings.TrimSpace(p.Name)
		if p.Name == "" || p.QID == "" {
			writeError(w, http.StatusBadRequest, "a resolved person with qid and name is required")
			return
		}

		g, err := store.Assign(r.Context(), gridID, cellID, p)
		switch {
		case errors.Is(err, bingo.ErrNoSuchCell):
			writeError(w, http.StatusBadRequest, "invalid cell id")
			return
		case errors.Is(err, bingo.ErrCellOccupied):
			writeError(w, http.StatusConflict, "cell already occupied")
			return
		case err != nil:
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		broker.Publish(gridID, GridEvent{
			Type:       "cell_assigned",
			CellID:     &cellID,
			PersonName: p.Name,
		})

		writeJSON(w, http.StatusOK, gridResponse(gridID, g))
	}
}

func handleClearCell(store GridStore, broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gridID := chi.URLParam(r, "gridID")

		cellID, err := cellIDParam(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid cell id")
			return
		}

		g, err := store.Clear(r.Context(), gridID, cellID)
		switch {
		case errors.Is(err, bingo.ErrNoSuchCell):
			writeError(w, http.StatusBadRequest, "invalid cell id")
			return
		case err != nil:
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		broker.Publish(gridID, GridEvent{Type: "cell_cleared", CellID: &cellID})

		writeJSON(w, http.StatusOK, gridResponse(gridID, g))
	}
}

func handleResetGrid(store GridStore, broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gridID := chi.URLParam(r, "gridID")

		g, err := store.Reset(r.Context(), gridID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		broker.Publish(gridID, GridEvent{Type: "grid_reset"})

		writeJSON(w, http.StatusOK, gridResponse(gridID, g))
	}
}

func handleExportGrid(store GridStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gridID := chi.URLParam(r, "gridID")

		g, err := store.Load(r.Context(), gridID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		writeJSON(w, http.StatusOK, ExportResponse{
			Stamp:         "NecroBingo • " + g.LastUpdatedAt.Format("02/01/2006"),
			LastUpdatedAt: g.LastUpdatedAt,
			Cells:         cellViews(g),
		})
	}
}
