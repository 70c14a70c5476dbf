package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	qrcode "github.com/skip2/go-qrcode"
)

const qrSize = 256

// handleGridQR renders a QR code pointing at the grid's share URL, for
// printing or passing a grid between devices.
func handleGridQR(publicURL string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gridID := chi.URLParam(r, "gridID")
		shareURL := strings.TrimRight(publicURL, "/") + "/grid/" + gridID

		png, err := qrcode.Encode(shareURL, qrcode.Medium, qrSize)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "unable to generate share code")
			return
		}

		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Content-Length", strconv.Itoa(len(png)))
		w.Write(png)
	}
}
