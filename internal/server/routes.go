package server

import (
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/swaggest/swgui/v5emb"
)

func addRoutes(r chi.Router, logger *slog.Logger, opts Options) {
	broker := NewBroker()

	r.Get("/openapi.json", handleOpenAPI())
	r.Mount("/docs", v5emb.New("NecroBingo API", "/openapi.json", "/docs"))
	r.Get("/healthz", handleHealth(logger, opts.DB, opts.Redis))
	r.Get("/ws/search", handleWSSearch(logger, opts.Resolver, opts.SearchDebounce, opts.SearchLimit))

	r.Route("/api", func(r chi.Router) {
		r.Get("/search", handleSearch(logger, opts.Resolver, opts.SearchLimit))

		r.Post("/grids", handleCreateGrid(opts.Store))
		r.Route("/grids/{gridID}", func(r chi.Router) {
			r.Get("/", handleGetGrid(opts.Store))
			r.Post("/cells/{cellID}", handleAssignCell(opts.Store, broker))
			r.Delete("/cells/{cellID}", handleClearCell(opts.Store, broker))
			r.Post("/reset", handleResetGrid(opts.Store, broker))
			r.Get("/export", handleExportGrid(opts.Store))
			r.Get("/qr", handleGridQR(opts.PublicURL))
			r.Get("/events", handleEvents(broker))
		})
	})

	if opts.SPADir != "" {
		if info, err := os.Stat(opts.SPADir); err == nil && info.IsDir() {
			logger.Info("serving SPA", "dir", opts.SPADir)
			r.NotFound(handleSPA(opts.SPADir))
		}
	}
}
