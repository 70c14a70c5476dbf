package server

import (
	"encoding/json"
	"net/http"

	openapi "github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi3"
)

// ErrorResponse is returned for all error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

func newOpenAPISpec() *openapi3.Spec {
	r := openapi3.NewReflector()
	r.Spec.Info.Title = "NecroBingo API"
	r.Spec.Info.Version = "0.1.0"
	r.Spec.Info.WithDescription("Backend API for the NecroBingo grid game.")

	// GET /healthz
	getHealthz, _ := r.NewOperationContext(http.MethodGet, "/healthz")
	getHealthz.SetSummary("Health check")
	getHealthz.SetDescription("Returns the health status of backend dependencies.")
	getHealthz.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK))
	getHealthz.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusServiceUnavailable))
	_ = r.AddOperation(getHealthz)

	// GET /api/search
	getSearch, _ := r.NewOperationContext(http.MethodGet, "/api/search")
	getSearch.SetSummary("Resolve celebrities")
	getSearch.SetDescription("Resolves a free-text query into ranked public figures with age and death status.")
	getSearch.AddReqStructure(struct {
		Q     string `query:"q"`
		Limit int    `query:"limit"`
	}{})
	getSearch.AddRespStructure(SearchResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getSearch.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadGateway))
	_ = r.AddOperation(getSearch)

	// GET /ws/search
	getWSSearch, _ := r.NewOperationContext(http.MethodGet, "/ws/search")
	getWSSearch.SetSummary("Live search session")
	getWSSearch.SetDescription("Upgrades to a WebSocket connection; each text frame is the query as typed, debounced result updates stream back as JSON.")
	getWSSearch.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusSwitchingProtocols),
		openapi.WithContentType("text/plain"))
	_ = r.AddOperation(getWSSearch)

	// POST /api/grids
	postGrids, _ := r.NewOperationContext(http.MethodPost, "/api/grids")
	postGrids.SetSummary("Create grid")
	postGrids.SetDescription("Creates a fresh 25-cell grid and returns its id.")
	postGrids.AddRespStructure(GridResponse{}, openapi.WithHTTPStatus(http.StatusCreated))
	_ = r.AddOperation(postGrids)

	// GET /api/grids/{gridID}
	getGrid, _ := r.NewOperationContext(http.MethodGet, "/api/grids/{gridID}")
	getGrid.SetSummary("Get grid")
	getGrid.SetDescription("Returns the grid with per-cell risk tiers. Unknown ids yield a fresh empty grid.")
	getGrid.AddRespStructure(GridResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(getGrid)

	// POST /api/grids/{gridID}/cells/{cellID}
	postCell, _ := r.NewOperationContext(http.MethodPost, "/api/grids/{gridID}/cells/{cellID}")
	postCell.SetSummary("Assign cell")
	postCell.SetDescription("Places a resolved person into an empty cell. Occupied cells are never overwritten.")
	postCell.AddRespStructure(GridResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postCell.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	postCell.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(postCell)

	// DELETE /api/grids/{gridID}/cells/{cellID}
	deleteCell, _ := r.NewOperationContext(http.MethodDelete, "/api/grids/{gridID}/cells/{cellID}")
	deleteCell.SetSummary("Clear cell")
	deleteCell.SetDescription("Empties a cell after the client-side deletion confirmation.")
	deleteCell.AddRespStructure(GridResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	deleteCell.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	_ = r.AddOperation(deleteCell)

	// POST /api/grids/{gridID}/reset
	postReset, _ := r.NewOperationContext(http.MethodPost, "/api/grids/{gridID}/reset")
	postReset.SetSummary("Reset grid")
	postReset.SetDescription("Replaces all 25 cells with fresh empty ones.")
	postReset.AddRespStructure(GridResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(postReset)

	// GET /api/grids/{gridID}/export
	getExport, _ := r.NewOperationContext(http.MethodGet, "/api/grids/{gridID}/export")
	getExport.SetSummary("Export snapshot")
	getExport.SetDescription("Returns the render snapshot with the visible anchor stamp for image export.")
	getExport.AddRespStructure(ExportResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(getExport)

	// GET /api/grids/{gridID}/qr
	getQR, _ := r.NewOperationContext(http.MethodGet, "/api/grids/{gridID}/qr")
	getQR.SetSummary("Share QR code")
	getQR.SetDescription("Renders a QR code PNG pointing at the grid's share URL.")
	getQR.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK),
		openapi.WithContentType("image/png"))
	_ = r.AddOperation(getQR)

	// GET /api/grids/{gridID}/events
	getEvents, _ := r.NewOperationContext(http.MethodGet, "/api/grids/{gridID}/events")
	getEvents.SetSummary("SSE event stream")
	getEvents.SetDescription("Server-Sent Events stream of grid mutations.")
	getEvents.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK),
		openapi.WithContentType("text/event-stream"))
	_ = r.AddOperation(getEvents)

	return r.Spec
}

func handleOpenAPI() http.HandlerFunc {
	spec := newOpenAPISpec()
	data, _ := json.MarshalIndent(spec, "", "  ")

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Write(data)
	}
}
