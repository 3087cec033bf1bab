package signal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkeye/Parley/internal/core"
)

func TestSweep_ProbesResponsiveConnections(t *testing.T) {
	ctl := newTestController()
	m := NewHeartbeatMonitor(ctl, time.Minute)
	c := &mockConn{alive: true}
	ctl.Hub.Register("sid", c)

	m.sweep()

	// First sweep lowers the flag and probes; nothing is reaped.
	assert.False(t, c.Alive())
	assert.Equal(t, 1, c.pings)
	assert.False(t, c.isClosed())
	assert.Len(t, ctl.Hub.Connections(), 1)
}

func TestSweep_ReapsAfterTwoSilentTicks(t *testing.T) {
	ctl := newTestController()
	m := NewHeartbeatMonitor(ctl, time.Minute)
	a, b := &mockConn{alive: true}, &mockConn{alive: true}
	ctl.Hub.Register("sidA", a)
	ctl.Hub.Register("sidB", b)
	roomID := createRoom(t, ctl, "sidA", a, "A")
	ctl.handleEnvelope("sidB", b, []byte(`{"type":"join","roomId":"`+roomID+`","username":"B"}`))
	a.drain()
	b.drain()

	m.sweep()
	// A pongs between sweeps; B stays silent.
	a.mu.Lock()
	a.alive = true
	a.mu.Unlock()

	m.sweep()

	assert.True(t, b.isClosed())
	assert.Len(t, ctl.Hub.Connections(), 1)

	// The reap runs the same cleanup as an explicit close.
	aOut := a.outbox()
	require.Len(t, aOut, 2)
	assert.Equal(t, core.KindSystem, aOut[0].Type)
	assert.Equal(t, "B left", aOut[0].Message)
	assert.Equal(t, core.KindPresence, aOut[1].Type)
	assert.Equal(t, []string{"A"}, aOut[1].Users)
}

func TestSweep_ReapOfLastMemberDeletesRoom(t *testing.T) {
	ctl := newTestController()
	m := NewHeartbeatMonitor(ctl, time.Minute)
	c := &mockConn{alive: true}
	ctl.Hub.Register("sid", c)
	createRoom(t, ctl, "sid", c, "alice")

	m.sweep()
	m.sweep()

	assert.True(t, c.isClosed())
	assert.Empty(t, ctl.Hub.Rooms())
	assert.Empty(t, ctl.Hub.Connections())
}

func TestSweep_UnjoinedConnectionsAreProbedToo(t *testing.T) {
	ctl := newTestController()
	m := NewHeartbeatMonitor(ctl, time.Minute)
	c := &mockConn{alive: true}
	ctl.Hub.Register("sid", c)

	m.sweep()
	m.sweep()

	// Never joined a room, still reaped for silence.
	assert.True(t, c.isClosed())
	assert.Empty(t, ctl.Hub.Connections())
}
