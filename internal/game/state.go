package game

import (
	"errors"
	"time"
)

var ErrRoomFull = errors.New("room is full")
var ErrAlreadyJoined = errors.New("player already joined")
var ErrUnknownPlayer = errors.New("unknown player")
var ErrWrongPhase = errors.New("invalid phase")
var ErrWrongTurn = errors.New("invalid turn")
var ErrInvalidTeam = errors.New("invalid team")
var ErrTeamFull = errors.New("team is full")
var ErrInvalidSeat = errors.New("invalid seat")
var ErrSeatTaken = errors.New("seat already taken")
var ErrInvalidBet = errors.New("invalid bet value")
var ErrNotInHand = errors.New("card not in hand")
var ErrMustFollowSuit = errors.New("must follow lead suit")

type Team string

const (
	TeamA Team = "A"
	TeamB Team = "B"

	// TeamUnassigned is the zero value before team selection.
	TeamUnassigned Team = ""
)

var Teams = []Team{TeamA, TeamB}

type Phase string

const (
	PhaseWaiting       Phase = "waiting_for_players"
	PhaseTeamSelection Phase = "team_selection"
	PhaseSeatSelection Phase = "seat_selection"
	PhaseBetting       Phase = "betting"
	PhaseCardPlay      Phase = "card_play"
	PhaseRoundScoring  Phase = "round_scoring"
)

const (
	MaxPlayers     = 4
	PlayersPerTeam = 2
	SeatCount      = 4

	// SeatUnassigned is the seat value before seat selection.
	SeatUnassigned = -1
)

type Player struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Team  Team   `json:"team,omitempty"`
	Seat  int    `json:"seat"`
	Ready bool   `json:"ready"`
}

type Bet struct {
	PlayerID string    `json:"playerId"`
	Value    int       `json:"value"`
	Trump    bool      `json:"trump"`
	PlacedAt time.Time `json:"placedAt"`
}

// State is the whole game snapshot for one room. Every operation takes a
// State by value and returns a fresh one; callers never observe partial
// mutation.
type State struct {
	Phase       Phase             `json:"phase"`
	Round       int               `json:"round"`
	CurrentTurn string            `json:"currentTurn,omitempty"`
	Dealer      string            `json:"dealer,omitempty"`
	Starter     string            `json:"starter,omitempty"`
	Trump       Suit              `json:"trump,omitempty"`
	HighestBet  *Bet              `json:"highestBet,omitempty"`
	Players     map[string]Player `json:"players"`
	Bets        map[string]Bet    `json:"bets"`
	PlayedCards map[string]Card   `json:"playedCards"`
	Hands       map[string][]Card `json:"hands"`
	TricksWon   map[Team]int      `json:"tricksWon"`
	Scores      map[Team]int      `json:"scores"`
	TurnOrder   []string          `json:"turnOrder"`

	// LastTrickWinner survives trick resolution so clients and
	// broadcasts can name the winner after the table is cleared.
	LastTrickWinner string `json:"lastTrickWinner,omitempty"`
}

func NewState() State {
	return State{
		Phase:       PhaseWaiting,
		Players:     map[string]Player{},
		Bets:        map[string]Bet{},
		PlayedCards: map[string]Card{},
		Hands:       map[string][]Card{},
		TricksWon:   map[Team]int{TeamA: 0, TeamB: 0},
		Scores:      map[Team]int{TeamA: 0, TeamB: 0},
		TurnOrder:   []string{},
	}
}

// Reset discards everything and starts a fresh game in the same room.
func Reset(State) State {
	return NewState()
}

func (s State) clone() State {
	ns := s
	ns.Players = make(map[string]Player, len(s.Players))
	for id, p := range s.Players {
		ns.Players[id] = p
	}
	ns.Bets = make(map[string]Bet, len(s.Bets))
	for id, b := range s.Bets {
		ns.Bets[id] = b
	}
	ns.PlayedCards = make(map[string]Card, len(s.PlayedCards))
	for id, c := range s.PlayedCards {
		ns.PlayedCards[id] = c
	}
	ns.Hands = make(map[string][]Card, len(s.Hands))
	for id, hand := range s.Hands {
		ns.Hands[id] = append([]Card(nil), hand...)
	}
	ns.TricksWon = make(map[Team]int, len(s.TricksWon))
	for t, n := range s.TricksWon {
		ns.TricksWon[t] = n
	}
	ns.Scores = make(map[Team]int, len(s.Scores))
	for t, n := range s.Scores {
		ns.Scores[t] = n
	}
	ns.TurnOrder = append([]string(nil), s.TurnOrder...)
	if s.HighestBet != nil {
		hb := *s.HighestBet
		ns.HighestBet = &hb
	}
	return ns
}

func (s State) turnIndex(playerID string) int {
	for i, id := range s.TurnOrder {
		if id == playerID {
			return i
		}
	}
	return -1
}

// nextTurn returns the member of TurnOrder seated after playerID.
func (s State) nextTurn(playerID string) string {
	i := s.turnIndex(playerID)
	if i < 0 || len(s.TurnOrder) == 0 {
		return playerID
	}
	return s.TurnOrder[(i+1)%len(s.TurnOrder)]
}

func (s State) teamCount(team Team) int {
	n := 0
	for _, p := range s.Players {
		if p.Team == team {
			n++
		}
	}
	return n
}
