package handlers

import (
	"context"

	"github.com/majeanson/newjo-sub001/internal/events"
	"github.com/majeanson/newjo-sub001/internal/game"
)

func (s *Service) Join(ctx context.Context, roomID, playerID, name string) (*game.State, error) {
	return s.mutate(ctx, roomID,
		func(st game.State) (game.State, error) {
			return game.Join(st, playerID, name)
		},
		func(_, _ game.State) []events.Event {
			return []events.Event{{
				Type:     events.TypePlayerJoined,
				PlayerID: playerID,
				Data:     events.PlayerJoinedData{Name: name},
			}}
		})
}

func (s *Service) SelectTeam(ctx context.Context, roomID, playerID string, team game.Team) (*game.State, error) {
	return s.mutate(ctx, roomID,
		func(st game.State) (game.State, error) {
			return game.SelectTeam(st, playerID, team)
		},
		func(_, _ game.State) []events.Event {
			return []events.Event{{
				Type:     events.TypeTeamSelected,
				PlayerID: playerID,
				Data:     events.TeamSelectedData{Team: team},
			}}
		})
}

func (s *Service) SetSeat(ctx context.Context, roomID, playerID string, seat int) (*game.State, error) {
	return s.mutate(ctx, roomID,
		func(st game.State) (game.State, error) {
			return game.SelectSeat(st, playerID, seat)
		},
		func(_, _ game.State) []events.Event {
			return []events.Event{{
				Type:     events.TypeSeatSelected,
				PlayerID: playerID,
				Data:     events.SeatSelectedData{Seat: seat},
			}}
		})
}

func (s *Service) SetReady(ctx context.Context, roomID, playerID string, ready bool) (*game.State, error) {
	return s.mutate(ctx, roomID,
		func(st game.State) (game.State, error) {
			return game.SetReady(st, playerID, ready)
		},
		func(_, _ game.State) []events.Event {
			return []events.Event{{
				Type:     events.TypeReadyChanged,
				PlayerID: playerID,
				Data:     events.ReadyChangedData{Ready: ready},
			}}
		})
}

func (s *Service) PlaceBet(ctx context.Context, roomID, playerID string, value int, trump bool) (*game.State, error) {
	return s.mutate(ctx, roomID,
		func(st game.State) (game.State, error) {
			return game.PlaceBet(st, playerID, value, trump, s.now(), s.newRng())
		},
		func(prev, next game.State) []events.Event {
			out := []events.Event{{
				Type:     events.TypeBetPlaced,
				PlayerID: playerID,
				Data:     events.BetPlacedData{Value: value, Trump: trump},
			}}
			// The last bet deals the hands and opens card play.
			if prev.Phase == game.PhaseBetting && next.Phase == game.PhaseCardPlay {
				out = append(out, events.Event{
					Type: events.TypeCardsDealt,
					Data: events.CardsDealtData{Round: next.Round, Starter: next.Starter},
				})
			}
			return out
		})
}

func (s *Service) PlayCard(ctx context.Context, roomID, playerID string, card game.Card) (*game.State, error) {
	return s.mutate(ctx, roomID,
		func(st game.State) (game.State, error) {
			return game.PlayCard(st, playerID, card)
		},
		func(prev, next game.State) []events.Event {
			out := []events.Event{{
				Type:     events.TypeCardPlayed,
				PlayerID: playerID,
				Data:     events.CardPlayedData{Card: card},
			}}
			trickDone := len(prev.PlayedCards) == len(prev.TurnOrder)-1
			if trickDone {
				winner := next.LastTrickWinner
				out = append(out, events.Event{
					Type:     events.TypeTrickResolved,
					PlayerID: winner,
					Data: events.TrickResolvedData{
						Winner: winner,
						Team:   next.Players[winner].Team,
					},
				})
			}
			if next.Round > prev.Round {
				out = append(out, events.Event{
					Type: events.TypeRoundScored,
					Data: events.RoundScoredData{Round: prev.Round, Scores: next.Scores},
				})
			}
			return out
		})
}

func (s *Service) Reset(ctx context.Context, roomID, playerID string) (*game.State, error) {
	return s.mutate(ctx, roomID,
		func(st game.State) (game.State, error) {
			return game.Reset(st), nil
		},
		func(_, _ game.State) []events.Event {
			return []events.Event{{
				Type:     events.TypeGameReset,
				PlayerID: playerID,
				Data:     events.GameResetData{},
			}}
		})
}
