package ws_test

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/majeanson/newjo-sub001/internal/events"
	"github.com/majeanson/newjo-sub001/internal/handlers"
	"github.com/majeanson/newjo-sub001/internal/httpapi"
	"github.com/majeanson/newjo-sub001/internal/store"
)

func readEvent(t *testing.T, ctx context.Context, conn *websocket.Conn) events.Event {
	t.Helper()
	rctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	_, data, err := conn.Read(rctx)
	require.NoError(t, err)

	var e events.Event
	require.NoError(t, json.Unmarshal(data, &e))
	return e
}

func TestPushChannelDeliversMarkerThenEvents(t *testing.T) {
	log := zap.NewNop()
	bus := events.NewBus(log)
	svc := handlers.NewService(store.NewMemory(), bus, log)
	srv := httptest.NewServer(httpapi.SetupRoutes(svc, bus, log, time.Minute))
	defer srv.Close()

	ctx := context.Background()
	room, err := svc.CreateRoom(ctx)
	require.NoError(t, err)

	wsURL := strings.Replace(srv.URL, "http", "ws", 1) +
		"/rooms/" + room + "/ws?playerId=p0"
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	require.NoError(t, err)
	defer conn.Close(websocket.StatusNormalClosure, "done")

	first := readEvent(t, ctx, conn)
	require.Equal(t, events.TypeConnected, first.Type)
	require.Equal(t, room, first.RoomID)

	// The connection registers for liveness bookkeeping.
	require.Eventually(t, func() bool {
		return bus.ConnectionCount(room) == 1
	}, time.Second, 10*time.Millisecond)

	_, err = svc.Join(ctx, room, "p0", "alice")
	require.NoError(t, err)

	joined := readEvent(t, ctx, conn)
	require.Equal(t, events.TypePlayerJoined, joined.Type)
	require.Equal(t, "p0", joined.PlayerID)
}

func TestPushChannelRejectsUnknownRoom(t *testing.T) {
	log := zap.NewNop()
	bus := events.NewBus(log)
	svc := handlers.NewService(store.NewMemory(), bus, log)
	srv := httptest.NewServer(httpapi.SetupRoutes(svc, bus, log, time.Minute))
	defer srv.Close()

	wsURL := strings.Replace(srv.URL, "http", "ws", 1) + "/rooms/NOPE42/ws"
	_, _, err := websocket.Dial(context.Background(), wsURL, nil)
	require.Error(t, err)
}

func TestDisconnectCleansUpSubscriptionAndConnection(t *testing.T) {
	log := zap.NewNop()
	bus := events.NewBus(log)
	svc := handlers.NewService(store.NewMemory(), bus, log)
	srv := httptest.NewServer(httpapi.SetupRoutes(svc, bus, log, time.Minute))
	defer srv.Close()

	ctx := context.Background()
	room, err := svc.CreateRoom(ctx)
	require.NoError(t, err)

	wsURL := strings.Replace(srv.URL, "http", "ws", 1) + "/rooms/" + room + "/ws"
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	require.NoError(t, err)

	readEvent(t, ctx, conn)
	require.Eventually(t, func() bool {
		return bus.ListenerCount(room) == 1
	}, time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close(websocket.StatusNormalClosure, "done"))

	require.Eventually(t, func() bool {
		return bus.ListenerCount(room) == 0 && bus.ConnectionCount(room) == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestHeartbeatFramesArrive(t *testing.T) {
	log := zap.NewNop()
	bus := events.NewBus(log)
	svc := handlers.NewService(store.NewMemory(), bus, log)
	// Aggressive interval so the test observes a heartbeat quickly.
	srv := httptest.NewServer(httpapi.SetupRoutes(svc, bus, log, 50*time.Millisecond))
	defer srv.Close()

	ctx := context.Background()
	room, err := svc.CreateRoom(ctx)
	require.NoError(t, err)

	wsURL := strings.Replace(srv.URL, "http", "ws", 1) + "/rooms/" + room + "/ws"
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	require.NoError(t, err)
	defer conn.Close(websocket.StatusNormalClosure, "done")

	readEvent(t, ctx, conn) // connected marker
	hb := readEvent(t, ctx, conn)
	require.Equal(t, events.TypeHeartbeat, hb.Type)
}
