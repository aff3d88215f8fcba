// Package ws bridges websocket connections into relay rooms. Each binary
// websocket message carries a chunk of the raw character stream; framing is
// the protocol codec's problem, not the transport's.
package ws

import (
	"context"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/calebdsmith/battleboats/internal/hub"
	"github.com/calebdsmith/battleboats/internal/relay"
)

// readTimeout is generous: a peer may sit on the start screen for a while.
const readTimeout = 5 * time.Minute

const writeTimeout = 3 * time.Second

func Handler(h *hub.Hub, log *zap.Logger) http.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}

	return func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("code")
		if code == "" {
			http.Error(w, "missing code", http.StatusBadRequest)
			return
		}

		reply := make(chan *relay.Room, 1)
		h.Inbox() <- hub.GetRoom{Code: code, Reply: reply}
		room := <-reply
		if room == nil {
			http.Error(w, "match not found", http.StatusNotFound)
			return
		}

		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		out := make(chan []byte, 8)
		clientID := uuid.NewString()
		log := log.With(zap.String("code", code), zap.String("client_id", clientID))

		room.Inbox() <- relay.Join{ClientID: clientID, Outbox: out}
		defer func() { room.Inbox() <- relay.Leave{ClientID: clientID} }()

		// Writer goroutine: everything the other peer sends comes out here.
		writeCtx, writeCancel := context.WithCancel(r.Context())
		defer writeCancel()
		go func() {
			for data := range out {
				ctx, cancel := context.WithTimeout(writeCtx, writeTimeout)
				err := conn.Write(ctx, websocket.MessageBinary, data)
				cancel()
				if err != nil {
					return
				}
			}
			// outbox closed: the room refused or dropped us
			conn.Close(websocket.StatusTryAgainLater, "room unavailable")
		}()

		// Reader loop: raw bytes from this peer into the room.
		for {
			ctx, cancel := context.WithTimeout(r.Context(), readTimeout)
			_, data, err := conn.Read(ctx)
			cancel()
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
					return
				}
				log.Debug("websocket read ended", zap.Error(err))
				return
			}
			if len(data) == 0 {
				continue
			}
			room.Inbox() <- relay.FromPeer{ClientID: clientID, Data: data}
		}
	}
}
