package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"nhooyr.io/websocket"

	"github.com/necrobingo/api/internal/celebrity"
	"github.com/necrobingo/api/internal/search"
)

// handleWSSearch runs one live-search session per connection: every text
// frame is the query as currently typed, and debounced result updates
// stream back as JSON. Closing the socket tears the session down.
func handleWSSearch(logger *slog.Logger, resolver celebrity.PersonResolver, debounce time.Duration, limit int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			InsecureSkipVerify: true,
		})
		if err != nil {
			logger.Error("websocket accept failed", "error", err)
			return
		}
		defer conn.CloseNow()

		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Minute)
		defer cancel()

		var writeMu sync.Mutex
		session := search.NewSession(resolver, debounce, limit, func(u search.Update) {
			data, err := json.Marshal(u)
			if err != nil {
				return
			}
			writeMu.Lock()
			defer writeMu.Unlock()
			if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
				logger.Debug("websocket write failed", "error", err)
			}
		})
		defer session.Close()

		for {
			_, msg, err := conn.Read(ctx)
			if err != nil {
				logger.Debug("websocket read ended", "error", err)
				return
			}
			session.SetQuery(string(msg))
		}
	}
}
