package app

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Parley/internal/core"
)

// Send marshals an envelope and fires it at one connection. Delivery is
// best-effort; a closed or backed-up connection just drops the frame.
func Send(conn core.SignalConnection, env core.Outbound) {
	b, err := json.Marshal(env)
	if err != nil {
		log.Error().Err(err).Str("module", "app.broadcast").Str("type", env.Type).Msg("marshal envelope")
		return
	}
	_ = conn.TrySend(core.Frame(b))
}

// Fanout serializes the envelope once and sends it to every target.
// Each open member gets exactly one copy; no retries, no ordering
// promises between members.
func Fanout(targets []core.SignalConnection, env core.Outbound) {
	if len(targets) == 0 {
		return
	}
	b, err := json.Marshal(env)
	if err != nil {
		log.Error().Err(err).Str("module", "app.broadcast").Str("type", env.Type).Msg("marshal envelope")
		return
	}
	sent := 0
	for _, conn := range targets {
		if err := conn.TrySend(core.Frame(b)); err != nil {
			continue
		}
		sent++
	}
	log.Debug().Str("module", "app.broadcast").Str("type", env.Type).Int("sent_to", sent).Int("dropped", len(targets)-sent).Msg("fanout")
}
