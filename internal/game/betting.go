package game

import (
	"math/rand"
	"time"
)

const (
	MinBetValue = 1
	MaxBetValue = HandSize
)

// PlaceBet records playerID's bet and advances the turn. Once every seat
// has bet, it resolves the winning bid, deals the round's hands from a
// deck shuffled with rng and opens card play with the highest bidder
// leading.
func PlaceBet(s State, playerID string, value int, trump bool, placedAt time.Time, rng *rand.Rand) (State, error) {
	if s.Phase != PhaseBetting {
		return s, ErrWrongPhase
	}
	if playerID != s.CurrentTurn {
		return s, ErrWrongTurn
	}
	if value < MinBetValue || value > MaxBetValue {
		return s, ErrInvalidBet
	}

	ns := s.clone()
	ns.Bets[playerID] = Bet{PlayerID: playerID, Value: value, Trump: trump, PlacedAt: placedAt}
	ns.CurrentTurn = ns.nextTurn(playerID)

	if AreAllBetsPlaced(ns) {
		winner := HighestBet(ns.Bets, bettingOrder(ns))
		ns.HighestBet = &winner
		ns = DealCards(ns, rng)
		ns.CurrentTurn = winner.PlayerID
		ns.Starter = winner.PlayerID
		ns.Phase = PhaseCardPlay
	}
	return ns, nil
}

// AreAllBetsPlaced reports whether every member of the turn order has bet
// this round.
func AreAllBetsPlaced(s State) bool {
	if len(s.TurnOrder) == 0 {
		return false
	}
	for _, id := range s.TurnOrder {
		if _, ok := s.Bets[id]; !ok {
			return false
		}
	}
	return true
}

// HighestBet picks the winning bid. Highest value wins; on equal values a
// bet declaring trump outranks one without; still equal, the bet placed
// earliest in betting order wins. order must list player ids in the
// sequence they bet.
func HighestBet(bets map[string]Bet, order []string) Bet {
	var best Bet
	found := false
	for _, id := range order {
		b, ok := bets[id]
		if !ok {
			continue
		}
		if !found || outbids(b, best) {
			best = b
			found = true
		}
	}
	return best
}

// outbids reports whether a strictly outranks b; equal bids keep the
// incumbent, which is the earlier one.
func outbids(a, b Bet) bool {
	if a.Value != b.Value {
		return a.Value > b.Value
	}
	return a.Trump && !b.Trump
}

// bettingOrder is the turn order rotated so the player left of the dealer
// bets first.
func bettingOrder(s State) []string {
	n := len(s.TurnOrder)
	if n == 0 {
		return nil
	}
	start := (s.turnIndex(s.Dealer) + 1) % n
	order := make([]string, 0, n)
	for i := 0; i < n; i++ {
		order = append(order, s.TurnOrder[(start+i)%n])
	}
	return order
}

// DealCards shuffles a fresh deck with rng and splits it into four
// 13-card hands keyed by turn order. The partition exhausts the deck
// exactly, and a fixed rng seed reproduces the same deal.
func DealCards(s State, rng *rand.Rand) State {
	ns := s.clone()
	deck := Deck()
	Shuffle(deck, rng)

	ns.Hands = make(map[string][]Card, len(ns.TurnOrder))
	for i, id := range ns.TurnOrder {
		hand := make([]Card, HandSize)
		copy(hand, deck[i*HandSize:(i+1)*HandSize])
		ns.Hands[id] = hand
	}
	ns.PlayedCards = map[string]Card{}
	ns.TricksWon = map[Team]int{TeamA: 0, TeamB: 0}
	return ns
}
