package game

// PlayCard validates and applies one card from the current player's hand.
// The fourth card of a trick resolves it: the winner collects the trick,
// leads the next one, and an empty table ends the round through scoring.
func PlayCard(s State, playerID string, card Card) (State, error) {
	if s.Phase != PhaseCardPlay {
		return s, ErrWrongPhase
	}
	if playerID != s.CurrentTurn {
		return s, ErrWrongTurn
	}
	hand := s.Hands[playerID]
	if !handContains(hand, card) {
		return s, ErrNotInHand
	}
	if len(s.PlayedCards) > 0 {
		lead := s.PlayedCards[s.Starter].Suit
		if card.Suit != lead && handHasSuit(hand, lead) {
			return s, ErrMustFollowSuit
		}
	}

	ns := s.clone()
	ns.Hands[playerID] = removeCard(ns.Hands[playerID], card)
	ns.PlayedCards[playerID] = card

	if len(s.PlayedCards) == 0 && ns.Trump == SuitNone &&
		ns.HighestBet != nil && ns.HighestBet.Trump {
		// The winning bidder's opening lead fixes the trump suit for
		// the round.
		ns.Trump = card.Suit
	}

	if len(ns.PlayedCards) < len(ns.TurnOrder) {
		ns.CurrentTurn = ns.nextTurn(playerID)
		return ns, nil
	}

	winner := trickWinner(ns)
	ns.TricksWon[ns.Players[winner].Team]++
	ns.PlayedCards = map[string]Card{}
	ns.CurrentTurn = winner
	ns.Starter = winner
	ns.LastTrickWinner = winner

	if handsEmpty(ns) {
		ns.Phase = PhaseRoundScoring
		ns = ResolveRound(ns)
	}
	return ns, nil
}

// trickWinner assumes a full trick on the table. A trump card beats any
// non-trump; otherwise only cards of the lead suit compete, highest rank
// winning.
func trickWinner(s State) string {
	winner := s.Starter
	best := s.PlayedCards[s.Starter]
	for _, id := range s.TurnOrder {
		c, ok := s.PlayedCards[id]
		if !ok || id == s.Starter {
			continue
		}
		if beats(c, best, s.Trump) {
			winner = id
			best = c
		}
	}
	return winner
}

// beats reports whether c outranks best. best is always the lead suit or
// a trump, so an off-suit c can never win.
func beats(c, best Card, trump Suit) bool {
	if trump != SuitNone && c.Suit == trump && best.Suit != trump {
		return true
	}
	if trump != SuitNone && c.Suit != trump && best.Suit == trump {
		return false
	}
	if c.Suit != best.Suit {
		return false
	}
	return c.Rank > best.Rank
}

// ResolveRound applies the contract rule to the cumulative scores and
// opens the next round's betting with the dealer rotated.
func ResolveRound(s State) State {
	ns := s.clone()
	bid := *ns.HighestBet
	bidTeam := ns.Players[bid.PlayerID].Team
	defTeam := otherTeam(bidTeam)

	if ns.TricksWon[bidTeam] >= bid.Value {
		ns.Scores[bidTeam] += ns.TricksWon[bidTeam]
	} else {
		ns.Scores[bidTeam] -= bid.Value
	}
	ns.Scores[defTeam] += ns.TricksWon[defTeam]

	ns.Dealer = ns.nextTurn(ns.Dealer)
	return startRound(ns, ns.Round+1)
}

func handsEmpty(s State) bool {
	for _, hand := range s.Hands {
		if len(hand) > 0 {
			return false
		}
	}
	return true
}

func otherTeam(t Team) Team {
	if t == TeamA {
		return TeamB
	}
	return TeamA
}
