package ws

import (
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/majeanson/newjo-sub001/internal/events"
	"github.com/majeanson/newjo-sub001/internal/handlers"
)

const (
	writeTimeout = 3 * time.Second

	// outboxSize bounds how far a slow client may fall behind before
	// events are dropped for it.
	outboxSize = 16
)

// Handler opens the per-room push channel: a connected marker, then
// every room event, plus heartbeat frames on a fixed interval. The
// channel is one-way; actions go through the JSON endpoints.
func Handler(svc *handlers.Service, bus *events.Bus, log *zap.Logger, heartbeat time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := chi.URLParam(r, "code")
		playerID := r.URL.Query().Get("playerId")

		if _, err := svc.GetState(r.Context(), code); err != nil {
			http.Error(w, "room not found", http.StatusNotFound)
			return
		}

		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		connID := randID(8)
		outbox := make(chan events.Event, outboxSize)

		// The bus callback must never block an emit: buffer or drop.
		unsub := bus.Subscribe(code, func(e events.Event) {
			select {
			case outbox <- e:
			default:
				log.Warn("push channel full, dropping event",
					zap.String("room", code),
					zap.String("conn", connID),
					zap.String("event", string(e.Type)))
			}
		})
		bus.RegisterConnection(code, connID)

		ctx, cancel := context.WithCancel(r.Context())

		// Cleanup must run exactly once even when the reader, the writer
		// and the heartbeat loop all fail around the same abort.
		var once sync.Once
		cleanup := func() {
			once.Do(func() {
				unsub()
				bus.UnregisterConnection(connID)
				cancel()
			})
		}
		defer cleanup()

		write := func(e events.Event) error {
			payload, err := json.Marshal(e)
			if err != nil {
				return err
			}
			wctx, wcancel := context.WithTimeout(ctx, writeTimeout)
			defer wcancel()
			return conn.Write(wctx, websocket.MessageText, payload)
		}

		now := time.Now()
		if err := write(events.Event{
			Type:      events.TypeConnected,
			RoomID:    code,
			PlayerID:  playerID,
			Data:      events.ConnectedData{ConnectionID: connID},
			Timestamp: now,
		}); err != nil {
			return
		}

		// Writer goroutine: forwards room events and emits heartbeat
		// frames on the fixed interval. The websocket allows a single
		// writer, so the heartbeat ticker lives here too; a failed
		// write ends the loop and the deferred Stop releases the timer.
		go func() {
			defer cleanup()
			ticker := time.NewTicker(heartbeat)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case e := <-outbox:
					if err := write(e); err != nil {
						return
					}
				case t := <-ticker.C:
					if !bus.UpdateHeartbeat(connID) {
						return
					}
					if err := write(events.Event{
						Type:      events.TypeHeartbeat,
						RoomID:    code,
						Data:      events.HeartbeatData{At: t},
						Timestamp: t,
					}); err != nil {
						return
					}
				}
			}
		}()

		// Reader loop: the channel is push-only, so reads exist to
		// notice the client going away.
		for {
			if _, _, err := conn.Read(ctx); err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
					return
				}
				return
			}
		}
	}
}

func randID(length int) string {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	b := make([]byte, length)
	for i := range b {
		b[i] = charset[rand.Intn(len(charset))]
	}
	return string(b)
}
