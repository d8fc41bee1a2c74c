package game

import "math/rand"

type Suit string

const (
	SuitHearts   Suit = "hearts"
	SuitDiamonds Suit = "diamonds"
	SuitClubs    Suit = "clubs"
	SuitSpades   Suit = "spades"
)

// SuitNone marks a round played without trump.
const SuitNone Suit = ""

var Suits = []Suit{SuitHearts, SuitDiamonds, SuitClubs, SuitSpades}

// Ranks run 2..14, ace high.
const (
	MinRank = 2
	MaxRank = 14
)

type Card struct {
	Suit Suit `json:"suit"`
	Rank int  `json:"rank"`
}

const (
	DeckSize = 52
	HandSize = 13
)

// Deck returns the full 52-card deck in a fixed suit-major order.
func Deck() []Card {
	deck := make([]Card, 0, DeckSize)
	for _, suit := range Suits {
		for rank := MinRank; rank <= MaxRank; rank++ {
			deck = append(deck, Card{Suit: suit, Rank: rank})
		}
	}
	return deck
}

// Shuffle permutes deck in place using rng, so a fixed seed yields a
// reproducible deal.
func Shuffle(deck []Card, rng *rand.Rand) {
	rng.Shuffle(len(deck), func(i, j int) {
		deck[i], deck[j] = deck[j], deck[i]
	})
}

func handContains(hand []Card, c Card) bool {
	for _, h := range hand {
		if h == c {
			return true
		}
	}
	return false
}

func handHasSuit(hand []Card, suit Suit) bool {
	for _, h := range hand {
		if h.Suit == suit {
			return true
		}
	}
	return false
}

func removeCard(hand []Card, c Card) []Card {
	out := make([]Card, 0, len(hand)-1)
	removed := false
	for _, h := range hand {
		if !removed && h == c {
			removed = true
			continue
		}
		out = append(out, h)
	}
	return out
}
