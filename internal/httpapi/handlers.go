package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/majeanson/newjo-sub001/internal/game"
	"github.com/majeanson/newjo-sub001/internal/handlers"
)

type actionRequest struct {
	PlayerID string     `json:"playerId"`
	Name     string     `json:"name,omitempty"`
	Team     game.Team  `json:"team,omitempty"`
	Seat     *int       `json:"seat,omitempty"`
	Ready    *bool      `json:"ready,omitempty"`
	Value    int        `json:"value,omitempty"`
	Trump    bool       `json:"trump,omitempty"`
	Card     *game.Card `json:"card,omitempty"`
}

type actionResponse struct {
	Success   bool        `json:"success"`
	GameState *game.State `json:"gameState,omitempty"`
	Error     string      `json:"error,omitempty"`
	Code      string      `json:"code,omitempty"`
}

func writeState(w http.ResponseWriter, st *game.State) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(actionResponse{Success: true, GameState: st})
}

func writeError(w http.ResponseWriter, err error) {
	kind := handlers.Classify(err)
	status := http.StatusInternalServerError
	switch kind {
	case handlers.KindValidation:
		status = http.StatusBadRequest
	case handlers.KindNotFound:
		status = http.StatusNotFound
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(actionResponse{
		Success: false,
		Error:   err.Error(),
		Code:    string(kind),
	})
}

func decode(w http.ResponseWriter, r *http.Request) (actionRequest, bool) {
	var req actionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return req, false
	}
	if req.PlayerID == "" {
		http.Error(w, "missing playerId", http.StatusBadRequest)
		return req, false
	}
	return req, true
}

func roomCode(r *http.Request) string {
	return chi.URLParam(r, "code")
}

func CreateRoom(svc *handlers.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code, err := svc.CreateRoom(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(struct {
			Code string `json:"code"`
		}{Code: code})
	}
}

func GetState(svc *handlers.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st, err := svc.GetState(r.Context(), roomCode(r))
		if err != nil {
			writeError(w, err)
			return
		}
		writeState(w, st)
	}
}

func Join(svc *handlers.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := decode(w, r)
		if !ok {
			return
		}
		st, err := svc.Join(r.Context(), roomCode(r), req.PlayerID, req.Name)
		if err != nil {
			writeError(w, err)
			return
		}
		writeState(w, st)
	}
}

func SelectTeam(svc *handlers.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := decode(w, r)
		if !ok {
			return
		}
		st, err := svc.SelectTeam(r.Context(), roomCode(r), req.PlayerID, req.Team)
		if err != nil {
			writeError(w, err)
			return
		}
		writeState(w, st)
	}
}

func SetSeat(svc *handlers.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := decode(w, r)
		if !ok {
			return
		}
		if req.Seat == nil {
			http.Error(w, "missing seat", http.StatusBadRequest)
			return
		}
		st, err := svc.SetSeat(r.Context(), roomCode(r), req.PlayerID, *req.Seat)
		if err != nil {
			writeError(w, err)
			return
		}
		writeState(w, st)
	}
}

func SetReady(svc *handlers.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := decode(w, r)
		if !ok {
			return
		}
		ready := true
		if req.Ready != nil {
			ready = *req.Ready
		}
		st, err := svc.SetReady(r.Context(), roomCode(r), req.PlayerID, ready)
		if err != nil {
			writeError(w, err)
			return
		}
		writeState(w, st)
	}
}

func PlaceBet(svc *handlers.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := decode(w, r)
		if !ok {
			return
		}
		st, err := svc.PlaceBet(r.Context(), roomCode(r), req.PlayerID, req.Value, req.Trump)
		if err != nil {
			writeError(w, err)
			return
		}
		writeState(w, st)
	}
}

func PlayCard(svc *handlers.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := decode(w, r)
		if !ok {
			return
		}
		if req.Card == nil {
			http.Error(w, "missing card", http.StatusBadRequest)
			return
		}
		st, err := svc.PlayCard(r.Context(), roomCode(r), req.PlayerID, *req.Card)
		if err != nil {
			writeError(w, err)
			return
		}
		writeState(w, st)
	}
}

func Reset(svc *handlers.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := decode(w, r)
		if !ok {
			return
		}
		st, err := svc.Reset(r.Context(), roomCode(r), req.PlayerID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeState(w, st)
	}
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
