package signal

import (
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Parley/internal/app"
	"github.com/dkeye/Parley/internal/core"
	"github.com/dkeye/Parley/internal/domain"
)

func (ctl *ChatWSController) handleCreate(sid core.SessionID, c core.SignalConnection, in core.Inbound) {
	if err := domain.ValidateUsername(in.Username); err != nil {
		app.Send(c, core.ErrorMsg(err.Error()))
		return
	}
	if !ctl.Creates.Allow(sid) {
		log.Warn().Str("module", "signal").Str("sid", string(sid)).Msg("create rate limited")
		app.Send(c, core.ErrorMsg("too many rooms, slow down"))
		return
	}

	created, err := ctl.Hub.CreateRoom(sid, in.Username)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("create room")
		if errors.Is(err, app.ErrRoomIDsExhausted) {
			app.Send(c, core.ErrorMsg("could not allocate a room id"))
		}
		return
	}
	ctl.notifyDeparture(created.Departed)

	log.Info().Str("module", "signal").Str("sid", string(sid)).Str("room", string(created.RoomID)).Msg("create")
	app.Send(c, core.RoomCreated(string(created.RoomID)))
	app.Send(c, core.Presence(created.Presence))
}

func (ctl *ChatWSController) handleJoin(sid core.SessionID, c core.SignalConnection, in core.Inbound) {
	if err := domain.ValidateUsername(in.Username); err != nil {
		app.Send(c, core.ErrorMsg(err.Error()))
		return
	}

	out, err := ctl.Hub.JoinRoom(sid, domain.RoomID(in.RoomID), in.Username)
	if err != nil {
		if errors.Is(err, app.ErrRoomNotFound) {
			log.Warn().Str("module", "signal").Str("sid", string(sid)).Str("room", in.RoomID).Msg("join: room not found")
			app.Send(c, core.ErrorMsg("Room not found"))
		}
		return
	}
	if out.Status == app.StatusAlreadyMember {
		// Idempotent no-op: no mutation happened, nobody is told.
		return
	}
	ctl.notifyDeparture(out.Departed)

	log.Info().Str("module", "signal").Str("sid", string(sid)).Str("room", in.RoomID).Str("username", in.Username).Msg("join")
	app.Send(c, core.Joined(in.RoomID))
	app.Fanout(out.Members, core.System(in.Username+" joined"))
	app.Fanout(out.Members, core.Presence(out.Presence))
}

func (ctl *ChatWSController) handleMessage(sid core.SessionID, in core.Inbound) {
	roomID, username, ok := ctl.Hub.RoomOf(sid)
	if !ok {
		// Not in a room; nothing to relay.
		return
	}
	app.Fanout(ctl.Hub.Members(roomID), core.Chat(username, in.Message))
}

// handleLeave drops the room membership without dropping the socket.
func (ctl *ChatWSController) handleLeave(sid core.SessionID, c core.SignalConnection) {
	log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("leave")
	dep, _ := ctl.Hub.Leave(sid)
	app.Send(c, core.Left())
	ctl.notifyDeparture(dep)
}

// cleanup is the shared disconnect path, invoked identically by the
// read pump on socket close and by the heartbeat monitor on a reap.
func (ctl *ChatWSController) cleanup(sid core.SessionID, conn core.SignalConnection) {
	dep, _ := ctl.Hub.Disconnect(sid)
	ctl.notifyDeparture(dep)
	ctl.Creates.Forget(sid)
	conn.Close()
}

// notifyDeparture tells whoever is left in a room that someone is gone.
// A closed room has nobody to tell.
func (ctl *ChatWSController) notifyDeparture(dep *app.Departure) {
	if dep == nil || dep.RoomClosed {
		return
	}
	app.Fanout(dep.Remaining, core.System(dep.Username+" left"))
	app.Fanout(dep.Remaining, core.Presence(dep.Presence))
}
