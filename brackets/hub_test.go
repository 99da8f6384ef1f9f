package brackets

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func startHub(t *testing.T) (*Hub, context.CancelFunc, chan struct{}) {
	t.Helper()
	hub := NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()
	return hub, cancel, stopped
}

func TestHubDeliversToTournamentRoom(t *testing.T) {
	defer goleak.VerifyNone(t)

	hub, cancel, stopped := startHub(t)

	inRoom := hub.NewClient(nil, RoomForTournament(3))
	otherRoom := hub.NewClient(nil, RoomForTournament(4))
	hub.Register <- inRoom
	hub.Register <- otherRoom
	require.Eventually(t, func() bool { return hub.RoomSize(RoomForTournament(3)) == 1 }, time.Second, 5*time.Millisecond)

	hub.Notify(3, EventRoundCreated, map[string]int{"groups": 2})

	select {
	case raw := <-inRoom.Send:
		var msg WebSocketMessage
		require.NoError(t, json.Unmarshal(raw, &msg))
		assert.Equal(t, EventRoundCreated, msg.Type)
		assert.Equal(t, "tournament_3", msg.RoomID)
	case <-time.After(time.Second):
		t.Fatal("expected a message in tournament_3")
	}
	assert.Empty(t, otherRoom.Send)

	cancel()
	<-stopped

	_, open := <-inRoom.Send
	assert.False(t, open, "stopping the hub closes client channels")
}

func TestHubUnregisterEmptiesRoom(t *testing.T) {
	defer goleak.VerifyNone(t)

	hub, cancel, stopped := startHub(t)
	defer func() {
		cancel()
		<-stopped
	}()

	c := hub.NewClient(nil, RoomForTournament(9))
	hub.Register <- c
	hub.Unregister <- c
	require.Eventually(t, func() bool { return hub.RoomSize(RoomForTournament(9)) == 0 }, time.Second, 5*time.Millisecond)

	// broadcasting into an empty room is a no-op
	hub.Notify(9, EventMatchReported, nil)
	assert.True(t, c.IsClosed)
}
