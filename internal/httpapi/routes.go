package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/majeanson/newjo-sub001/internal/events"
	"github.com/majeanson/newjo-sub001/internal/handlers"
	"github.com/majeanson/newjo-sub001/internal/ws"
)

func SetupRoutes(svc *handlers.Service, bus *events.Bus, log *zap.Logger, heartbeat time.Duration) http.Handler {
	r := chi.NewRouter()

	r.Post("/rooms", CreateRoom(svc))
	r.Get("/healthz", Healthz)

	r.Route("/rooms/{code}", func(r chi.Router) {
		r.Get("/", GetState(svc))
		r.Get("/ws", ws.Handler(svc, bus, log, heartbeat))
		r.Post("/join", Join(svc))
		r.Post("/team", SelectTeam(svc))
		r.Post("/seat", SetSeat(svc))
		r.Post("/ready", SetReady(svc))
		r.Post("/bet", PlaceBet(svc))
		r.Post("/play", PlayCard(svc))
		r.Post("/reset", Reset(svc))
	})
	return r
}
