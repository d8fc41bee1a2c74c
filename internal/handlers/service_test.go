package handlers

import (
	"context"
	mrand "math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/majeanson/newjo-sub001/internal/events"
	"github.com/majeanson/newjo-sub001/internal/game"
	"github.com/majeanson/newjo-sub001/internal/store"
)

func newTestService() (*Service, *events.Bus) {
	bus := events.NewBus(zap.NewNop())
	svc := NewService(store.NewMemory(), bus, zap.NewNop())
	svc.newRng = func() *mrand.Rand { return mrand.New(mrand.NewSource(99)) }
	return svc, bus
}

// roomInBetting drives a fresh room through the lobby up to the betting
// phase. Seats follow join order, teams alternate.
func roomInBetting(t *testing.T, svc *Service) string {
	t.Helper()
	ctx := context.Background()

	room, err := svc.CreateRoom(ctx)
	require.NoError(t, err)

	players := []string{"p0", "p1", "p2", "p3"}
	for _, id := range players {
		_, err := svc.Join(ctx, room, id, "name-"+id)
		require.NoError(t, err)
	}
	for i, id := range players {
		team := game.TeamA
		if i%2 == 1 {
			team = game.TeamB
		}
		_, err := svc.SelectTeam(ctx, room, id, team)
		require.NoError(t, err)
	}
	for i, id := range players {
		_, err := svc.SetSeat(ctx, room, id, i)
		require.NoError(t, err)
	}
	for _, id := range players {
		_, err := svc.SetReady(ctx, room, id, true)
		require.NoError(t, err)
	}

	st, err := svc.GetState(ctx, room)
	require.NoError(t, err)
	require.Equal(t, game.PhaseBetting, st.Phase)
	return room
}

func TestCreateRoomPersistsFreshState(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	room, err := svc.CreateRoom(ctx)
	require.NoError(t, err)
	require.Len(t, room, 6)

	st, err := svc.GetState(ctx, room)
	require.NoError(t, err)
	require.Equal(t, game.PhaseWaiting, st.Phase)
}

func TestActionsAgainstUnknownRoomAreNotFound(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.Join(context.Background(), "ZZZZZZ", "p0", "alice")
	require.Error(t, err)
	require.Equal(t, KindNotFound, Classify(err))
}

func TestValidationFailureLeavesStateUntouched(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	room := roomInBetting(t, svc)

	before, err := svc.GetState(ctx, room)
	require.NoError(t, err)

	// p0 is the dealer; p1 bets first.
	_, err = svc.PlaceBet(ctx, room, "p0", 7, false)
	require.Error(t, err)
	require.Equal(t, KindValidation, Classify(err))

	after, err := svc.GetState(ctx, room)
	require.NoError(t, err)
	require.Equal(t, before, after)
}

func TestBettingThroughDealBroadcastsInPersistOrder(t *testing.T) {
	svc, bus := newTestService()
	ctx := context.Background()
	room := roomInBetting(t, svc)

	// The subscriber re-reads the store inside the callback: every event
	// must describe a state that is already retrievable.
	var seen []events.Type
	unsub := bus.Subscribe(room, func(e events.Event) {
		seen = append(seen, e.Type)
		st, err := svc.GetState(ctx, room)
		require.NoError(t, err)
		if e.Type == events.TypeCardsDealt {
			require.Equal(t, game.PhaseCardPlay, st.Phase)
		}
	})
	defer unsub()

	for _, bet := range []struct {
		player string
		value  int
		trump  bool
	}{
		{"p1", 6, false}, {"p2", 8, true}, {"p3", 6, false}, {"p0", 7, false},
	} {
		_, err := svc.PlaceBet(ctx, room, bet.player, bet.value, bet.trump)
		require.NoError(t, err)
	}

	require.Equal(t, []events.Type{
		events.TypeBetPlaced, events.TypeBetPlaced, events.TypeBetPlaced,
		events.TypeBetPlaced, events.TypeCardsDealt,
	}, seen)

	st, err := svc.GetState(ctx, room)
	require.NoError(t, err)
	require.Equal(t, "p2", st.Starter)
	for _, id := range st.TurnOrder {
		require.Len(t, st.Hands[id], game.HandSize)
	}
}

func TestFullGameRoundOverService(t *testing.T) {
	svc, bus := newTestService()
	ctx := context.Background()
	room := roomInBetting(t, svc)

	var tricks, rounds int
	unsub := bus.Subscribe(room, func(e events.Event) {
		switch e.Type {
		case events.TypeTrickResolved:
			tricks++
		case events.TypeRoundScored:
			rounds++
		}
	})
	defer unsub()

	for _, bet := range []struct {
		player string
		value  int
	}{
		{"p1", 4}, {"p2", 5}, {"p3", 4}, {"p0", 4},
	} {
		_, err := svc.PlaceBet(ctx, room, bet.player, bet.value, false)
		require.NoError(t, err)
	}

	st, err := svc.GetState(ctx, room)
	require.NoError(t, err)
	for st.Phase == game.PhaseCardPlay {
		id := st.CurrentTurn
		card := pickLegal(st, id)
		st, err = svc.PlayCard(ctx, room, id, card)
		require.NoError(t, err)
	}

	require.Equal(t, game.PhaseBetting, st.Phase)
	require.Equal(t, 2, st.Round)
	require.Equal(t, game.HandSize, tricks)
	require.Equal(t, 1, rounds)
}

func pickLegal(st *game.State, playerID string) game.Card {
	hand := st.Hands[playerID]
	if len(st.PlayedCards) > 0 {
		lead := st.PlayedCards[st.Starter].Suit
		for _, c := range hand {
			if c.Suit == lead {
				return c
			}
		}
	}
	return hand[0]
}

func TestResetReturnsRoomToWaiting(t *testing.T) {
	svc, bus := newTestService()
	ctx := context.Background()
	room := roomInBetting(t, svc)

	var got []events.Type
	defer bus.Subscribe(room, func(e events.Event) { got = append(got, e.Type) })()

	st, err := svc.Reset(ctx, room, "p0")
	require.NoError(t, err)
	require.Equal(t, game.PhaseWaiting, st.Phase)
	require.Empty(t, st.Players)
	require.Equal(t, []events.Type{events.TypeGameReset}, got)
}

func TestSubscriberCanActOnSameRoomFromCallback(t *testing.T) {
	svc, bus := newTestService()
	ctx := context.Background()

	room, err := svc.CreateRoom(ctx)
	require.NoError(t, err)

	// The broadcast happens after the room lock is released, so a
	// callback reacting to one action may issue the next one. Guard on
	// the player id to keep the chain to a single nested action.
	var nestedErr error
	unsub := bus.Subscribe(room, func(e events.Event) {
		if e.Type == events.TypePlayerJoined && e.PlayerID == "p0" {
			_, nestedErr = svc.Join(ctx, room, "p1", "bob")
		}
	})
	defer unsub()

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := svc.Join(ctx, room, "p0", "alice")
		require.NoError(t, err)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("action deadlocked against its own broadcast")
	}

	require.NoError(t, nestedErr)
	st, err := svc.GetState(ctx, room)
	require.NoError(t, err)
	require.Len(t, st.Players, 2)
}

func TestConcurrentActionsDoNotLoseUpdates(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	room, err := svc.CreateRoom(ctx)
	require.NoError(t, err)

	done := make(chan error, 4)
	for _, id := range []string{"p0", "p1", "p2", "p3"} {
		go func(id string) {
			_, err := svc.Join(ctx, room, id, "name-"+id)
			done <- err
		}(id)
	}
	for i := 0; i < 4; i++ {
		require.NoError(t, <-done)
	}

	st, err := svc.GetState(ctx, room)
	require.NoError(t, err)
	require.Len(t, st.Players, 4)
	require.Equal(t, game.PhaseTeamSelection, st.Phase)
}
