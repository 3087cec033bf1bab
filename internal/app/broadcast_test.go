package app

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkeye/Parley/internal/core"
)

func TestFanout_OneCopyPerMember(t *testing.T) {
	a := &fakeConn{}
	b := &fakeConn{}

	Fanout([]core.SignalConnection{a, b}, core.System("hello"))

	for _, conn := range []*fakeConn{a, b} {
		require.Len(t, conn.frames, 1)
		var env core.Outbound
		require.NoError(t, json.Unmarshal(conn.frames[0], &env))
		assert.Equal(t, core.KindSystem, env.Type)
		assert.Equal(t, "hello", env.Message)
	}
}

func TestFanout_SkipsClosedConnections(t *testing.T) {
	open := &fakeConn{}
	closed := &fakeConn{}
	closed.Close()

	Fanout([]core.SignalConnection{closed, open}, core.System("hello"))

	assert.Empty(t, closed.frames)
	require.Len(t, open.frames, 1)
}

func TestFanout_NoTargets(t *testing.T) {
	// Must not panic or marshal anything.
	Fanout(nil, core.System("hello"))
}

func TestSend_SingleConnection(t *testing.T) {
	c := &fakeConn{}
	Send(c, core.RoomCreated("abc123"))

	require.Len(t, c.frames, 1)
	var env core.Outbound
	require.NoError(t, json.Unmarshal(c.frames[0], &env))
	assert.Equal(t, core.KindRoomCreated, env.Type)
	assert.Equal(t, "abc123", env.RoomID)
}
