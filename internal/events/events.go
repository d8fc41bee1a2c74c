package events

import (
	"time"

	"github.com/majeanson/newjo-sub001/internal/game"
)

type Type string

const (
	TypeConnected     Type = "connected"
	TypeHeartbeat     Type = "heartbeat"
	TypePlayerJoined  Type = "player_joined"
	TypeTeamSelected  Type = "team_selected"
	TypeSeatSelected  Type = "seat_selected"
	TypeReadyChanged  Type = "ready_changed"
	TypeBetPlaced     Type = "bet_placed"
	TypeCardsDealt    Type = "cards_dealt"
	TypeCardPlayed    Type = "card_played"
	TypeTrickResolved Type = "trick_resolved"
	TypeRoundScored   Type = "round_scored"
	TypeGameReset     Type = "game_reset"
)

// Event is one discrete room broadcast. Data holds exactly one of the
// payload structs below, matching Type. Events are transient; nothing
// replays them after a restart.
type Event struct {
	Type      Type      `json:"type"`
	RoomID    string    `json:"roomId"`
	PlayerID  string    `json:"playerId,omitempty"`
	Data      any       `json:"data,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type ConnectedData struct {
	ConnectionID string `json:"connectionId"`
}

type HeartbeatData struct {
	At time.Time `json:"at"`
}

type PlayerJoinedData struct {
	Name string `json:"name"`
}

type TeamSelectedData struct {
	Team game.Team `json:"team"`
}

type SeatSelectedData struct {
	Seat int `json:"seat"`
}

type ReadyChangedData struct {
	Ready bool `json:"ready"`
}

type BetPlacedData struct {
	Value int  `json:"value"`
	Trump bool `json:"trump"`
}

type CardsDealtData struct {
	Round   int    `json:"round"`
	Starter string `json:"starter"`
}

type CardPlayedData struct {
	Card game.Card `json:"card"`
}

type TrickResolvedData struct {
	Winner string    `json:"winner"`
	Team   game.Team `json:"team"`
}

type RoundScoredData struct {
	Round  int               `json:"round"`
	Scores map[game.Team]int `json:"scores"`
}

type GameResetData struct{}
