package signal

import (
	"context"
	"errors"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Parley/internal/app"
	"github.com/dkeye/Parley/internal/core"
)

func (ctl *ChatWSController) writePump(ctx context.Context, c *wsConn) {
	for {
		select {
		case <-ctx.Done():
			log.Debug().Str("module", "signal").Msg("writePump ctx done")
			return
		case data, ok := <-c.send:
			if !ok {
				log.Debug().Str("module", "signal").Msg("writePump channel closed")
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump write error")
				return
			}
		}
	}
}

func (ctl *ChatWSController) readPump(ctx context.Context, cancel context.CancelFunc, sid core.SessionID, c *wsConn) {
	defer func() {
		log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("readPump closing")
		cancel()
		ctl.cleanup(sid, c)
	}()

	for {
		select {
		case <-ctx.Done():
			log.Debug().Str("module", "signal").Str("sid", string(sid)).Msg("readPump ctx done")
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Error().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("readPump read error")
				}
				return
			}
			ctl.handleEnvelope(sid, c, data)
		}
	}
}

func (ctl *ChatWSController) handleEnvelope(sid core.SessionID, c core.SignalConnection, data []byte) {
	in, err := core.DecodeInbound(data)
	if err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("rejected envelope")
		switch {
		case errors.Is(err, core.ErrUnknownKind):
			app.Send(c, core.ErrorMsg("unknown message type"))
		default:
			app.Send(c, core.ErrorMsg("bad payload"))
		}
		return
	}

	switch in.Type {
	case core.KindCreate:
		ctl.handleCreate(sid, c, in)
	case core.KindJoin:
		ctl.handleJoin(sid, c, in)
	case core.KindMessage:
		ctl.handleMessage(sid, in)
	case core.KindLeave:
		ctl.handleLeave(sid, c)
	}
}
