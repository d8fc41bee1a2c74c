package game

// Lobby operations: joining, team selection, seat selection and readiness.
// Phase advances are driven entirely by these transitions:
//
//	waiting_for_players -> team_selection   4th player joins
//	team_selection      -> seat_selection   teams split exactly 2v2
//	seat_selection      -> betting          4 distinct seats + everyone ready

func Join(s State, playerID, name string) (State, error) {
	if s.Phase != PhaseWaiting {
		return s, ErrWrongPhase
	}
	if _, ok := s.Players[playerID]; ok {
		return s, ErrAlreadyJoined
	}
	if len(s.Players) >= MaxPlayers {
		return s, ErrRoomFull
	}

	ns := s.clone()
	ns.Players[playerID] = Player{ID: playerID, Name: name, Seat: SeatUnassigned}
	if len(ns.Players) == MaxPlayers {
		ns.Phase = PhaseTeamSelection
	}
	return ns, nil
}

func SelectTeam(s State, playerID string, team Team) (State, error) {
	if s.Phase != PhaseTeamSelection {
		return s, ErrWrongPhase
	}
	p, ok := s.Players[playerID]
	if !ok {
		return s, ErrUnknownPlayer
	}
	if team != TeamA && team != TeamB {
		return s, ErrInvalidTeam
	}
	if p.Team != team && s.teamCount(team) >= PlayersPerTeam {
		return s, ErrTeamFull
	}

	ns := s.clone()
	p.Team = team
	ns.Players[playerID] = p

	if ns.teamCount(TeamA) == PlayersPerTeam && ns.teamCount(TeamB) == PlayersPerTeam {
		ns.Phase = PhaseSeatSelection
	}
	return ns, nil
}

func SelectSeat(s State, playerID string, seat int) (State, error) {
	if s.Phase != PhaseSeatSelection {
		return s, ErrWrongPhase
	}
	p, ok := s.Players[playerID]
	if !ok {
		return s, ErrUnknownPlayer
	}
	if seat < 0 || seat >= SeatCount {
		return s, ErrInvalidSeat
	}
	for id, other := range s.Players {
		if id != playerID && other.Seat == seat {
			return s, ErrSeatTaken
		}
	}

	ns := s.clone()
	p.Seat = seat
	ns.Players[playerID] = p

	// TurnOrder becomes fixed the moment all four seats are occupied.
	if order, ok := seatOrder(ns); ok {
		ns.TurnOrder = order
	} else {
		ns.TurnOrder = []string{}
	}
	return ns, nil
}

func SetReady(s State, playerID string, ready bool) (State, error) {
	if s.Phase != PhaseSeatSelection {
		return s, ErrWrongPhase
	}
	p, ok := s.Players[playerID]
	if !ok {
		return s, ErrUnknownPlayer
	}

	ns := s.clone()
	p.Ready = ready
	ns.Players[playerID] = p

	if len(ns.TurnOrder) == SeatCount && allReady(ns) {
		ns = startRound(ns, 1)
	}
	return ns, nil
}

// startRound opens betting. The first round deals from seat 0; afterwards
// ResolveRound rotates the dealer before calling back in here.
func startRound(s State, round int) State {
	ns := s
	ns.Round = round
	ns.Phase = PhaseBetting
	if ns.Dealer == "" {
		ns.Dealer = ns.TurnOrder[0]
	}
	ns.CurrentTurn = ns.nextTurn(ns.Dealer)
	ns.Starter = ""
	ns.Trump = SuitNone
	ns.HighestBet = nil
	ns.Bets = map[string]Bet{}
	ns.PlayedCards = map[string]Card{}
	ns.Hands = map[string][]Card{}
	ns.TricksWon = map[Team]int{TeamA: 0, TeamB: 0}
	return ns
}

func seatOrder(s State) ([]string, bool) {
	order := make([]string, SeatCount)
	filled := 0
	for id, p := range s.Players {
		if p.Seat == SeatUnassigned {
			continue
		}
		if order[p.Seat] != "" {
			return nil, false
		}
		order[p.Seat] = id
		filled++
	}
	if filled != SeatCount {
		return nil, false
	}
	return order, true
}

func allReady(s State) bool {
	for _, p := range s.Players {
		if !p.Ready {
			return false
		}
	}
	return len(s.Players) == MaxPlayers
}
