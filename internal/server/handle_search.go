package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/necrobingo/api/internal/bingo"
	"github.com/necrobingo/api/internal/celebrity"
)

type SearchResponse struct {
	Results []bingo.Person `json:"results"`
}

// handleSearch is the one-shot resolution endpoint. Debounced live search
// goes through /ws/search instead; this exists for simple clients.
func handleSearch(logger *slog.Logger, resolver celebrity.PersonResolver, maxLimit int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("q")

		limit := maxLimit
		if raw := r.URL.Query().Get("limit"); raw != "" {
			if n, err := strconv.Atoi(raw); err == nil && n > 0 && n < maxLimit {
				limit = n
			}
		}

		people, err := resolver.Resolve(r.Context(), q, limit)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			logger.Error("celebrity search failed", "query", q, "error", err)
			writeError(w, http.StatusBadGateway, "search failed")
			return
		}

		if people == nil {
			people = []bingo.Person{}
		}
		writeJSON(w, http.StatusOK, SearchResponse{Results: people})
	}
}
