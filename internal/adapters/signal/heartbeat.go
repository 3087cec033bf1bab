package signal

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// HeartbeatMonitor walks every registered connection on a fixed period.
// A connection that has not ponged since the previous sweep is force
// closed through the same cleanup path as an explicit disconnect, so a
// dead peer is counted as present for at most two intervals.
type HeartbeatMonitor struct {
	ctl      *ChatWSController
	interval time.Duration
}

func NewHeartbeatMonitor(ctl *ChatWSController, interval time.Duration) *HeartbeatMonitor {
	return &HeartbeatMonitor{ctl: ctl, interval: interval}
}

func (m *HeartbeatMonitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	log.Info().Str("module", "signal.heartbeat").Dur("interval", m.interval).Msg("heartbeat monitor started")
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal.heartbeat").Msg("heartbeat monitor stopped")
			return
		case <-ticker.C:
			m.sweep()
		}
	}
}

// sweep reaps connections whose flag is still down, then lowers the
// flag on the rest and probes them. The pong handler raises it back.
func (m *HeartbeatMonitor) sweep() {
	for _, t := range m.ctl.Hub.Connections() {
		if !t.Conn.Alive() {
			log.Warn().Str("module", "signal.heartbeat").Str("sid", string(t.SID)).Msg("no pong since last sweep, reaping")
			m.ctl.cleanup(t.SID, t.Conn)
			continue
		}
		t.Conn.MarkDead()
		if err := t.Conn.Ping(); err != nil {
			log.Debug().Err(err).Str("module", "signal.heartbeat").Str("sid", string(t.SID)).Msg("ping failed")
		}
	}
}
