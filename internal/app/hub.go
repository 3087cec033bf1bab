package app

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/dkeye/Parley/internal/core"
	"github.com/dkeye/Parley/internal/domain"
)

type client struct {
	conn core.ProbeConnection
	meta *domain.Client // nil until the session creates or joins a room
}

type roomState struct {
	room    *domain.Room
	members map[core.SessionID]struct{}
}

// Hub is the connection registry and room store in one lock domain.
// Every multi-step mutation (create, join, disconnect) runs as a single
// critical section, so handlers and the heartbeat sweep never observe a
// half-applied transition. Fan-out happens on snapshots, outside the lock.
type Hub struct {
	mu      sync.Mutex
	clients map[core.SessionID]*client
	rooms   map[domain.RoomID]*roomState

	genID    RoomIDGenerator
	attempts int
}

// NewHub wires a hub with its id generator and the retry budget for
// collision-free room creation.
func NewHub(gen RoomIDGenerator, attempts int) *Hub {
	if attempts < 1 {
		attempts = 1
	}
	return &Hub{
		clients:  make(map[core.SessionID]*client),
		rooms:    make(map[domain.RoomID]*roomState),
		genID:    gen,
		attempts: attempts,
	}
}

// Departure reports the aftermath of a membership removal so the caller
// can broadcast to whoever is left.
type Departure struct {
	RoomID     domain.RoomID
	Username   string
	Remaining  []core.SignalConnection
	Presence   []string
	RoomClosed bool
}

// Created reports a successful room creation.
type Created struct {
	RoomID   domain.RoomID
	Presence []string
	Departed *Departure // implicit leave from the previous room, if any
}

type JoinStatus int

const (
	StatusJoined JoinStatus = iota
	StatusAlreadyMember
)

// JoinOutcome reports a join. Members and Presence are post-join
// snapshots; both are empty for StatusAlreadyMember.
type JoinOutcome struct {
	Status   JoinStatus
	Members  []core.SignalConnection
	Presence []string
	Departed *Departure
}

// Register makes a connection visible to the hub (and to the heartbeat
// sweep) before it has joined any room.
func (h *Hub) Register(sid core.SessionID, conn core.ProbeConnection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[sid] = &client{conn: conn}
	log.Info().Str("module", "app.hub").Str("sid", string(sid)).Msg("session registered")
}

// CreateRoom generates a fresh unique id, creates the room with the
// caller as sole member and writes its membership meta. A session that
// was already in a room leaves it first; the caller must broadcast the
// returned Departure.
func (h *Hub) CreateRoom(sid core.SessionID, username string) (Created, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	c, ok := h.clients[sid]
	if !ok {
		return Created{}, ErrUnknownSession
	}

	var roomID domain.RoomID
	found := false
	for i := 0; i < h.attempts; i++ {
		id := h.genID()
		if _, taken := h.rooms[id]; !taken {
			roomID, found = id, true
			break
		}
	}
	if !found {
		log.Warn().Str("module", "app.hub").Int("attempts", h.attempts).Msg("room id space exhausted")
		return Created{}, ErrRoomIDsExhausted
	}

	departed := h.leaveLocked(sid)

	h.rooms[roomID] = &roomState{
		room:    &domain.Room{ID: roomID, CreatedAt: time.Now()},
		members: map[core.SessionID]struct{}{sid: {}},
	}
	c.meta = domain.NewClient(username, roomID)

	log.Info().Str("module", "app.hub").Str("sid", string(sid)).Str("room", string(roomID)).Str("username", username).Msg("room created")
	return Created{RoomID: roomID, Presence: h.presenceLocked(roomID), Departed: departed}, nil
}

// JoinRoom adds the session to an existing room. Joining the room it is
// already in is an idempotent no-op; joining a different room is an
// implicit leave-then-join.
func (h *Hub) JoinRoom(sid core.SessionID, roomID domain.RoomID, username string) (JoinOutcome, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	c, ok := h.clients[sid]
	if !ok {
		return JoinOutcome{}, ErrUnknownSession
	}
	rs, ok := h.rooms[roomID]
	if !ok {
		return JoinOutcome{}, ErrRoomNotFound
	}
	if c.meta != nil && c.meta.RoomID == roomID {
		return JoinOutcome{Status: StatusAlreadyMember}, nil
	}

	departed := h.leaveLocked(sid)

	rs.members[sid] = struct{}{}
	c.meta = domain.NewClient(username, roomID)

	log.Info().Str("module", "app.hub").Str("sid", string(sid)).Str("room", string(roomID)).Str("username", username).Msg("joined room")
	return JoinOutcome{
		Status:   StatusJoined,
		Members:  h.membersLocked(roomID),
		Presence: h.presenceLocked(roomID),
		Departed: departed,
	}, nil
}

// Leave removes the session's membership but keeps the connection
// registered. Reports false if the session was in no room.
func (h *Hub) Leave(sid core.SessionID) (*Departure, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	dep := h.leaveLocked(sid)
	return dep, dep != nil
}

// Disconnect is the shared cleanup path for an explicit close and a
// heartbeat reap. Idempotent: a second call on the same session reports
// false and mutates nothing.
func (h *Hub) Disconnect(sid core.SessionID) (*Departure, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[sid]; !ok {
		return nil, false
	}
	dep := h.leaveLocked(sid)
	delete(h.clients, sid)
	log.Info().Str("module", "app.hub").Str("sid", string(sid)).Msg("session removed")
	return dep, dep != nil
}

// leaveLocked removes the session from its room, deleting the room if
// it empties. Returns nil if the session held no membership.
func (h *Hub) leaveLocked(sid core.SessionID) *Departure {
	c, ok := h.clients[sid]
	if !ok || c.meta == nil {
		return nil
	}
	roomID, username := c.meta.RoomID, c.meta.Username
	c.meta = nil

	rs, ok := h.rooms[roomID]
	if !ok {
		return &Departure{RoomID: roomID, Username: username, RoomClosed: true}
	}
	delete(rs.members, sid)

	if len(rs.members) == 0 {
		delete(h.rooms, roomID)
		log.Info().Str("module", "app.hub").Str("room", string(roomID)).Msg("room closed")
		return &Departure{RoomID: roomID, Username: username, RoomClosed: true}
	}
	return &Departure{
		RoomID:    roomID,
		Username:  username,
		Remaining: h.membersLocked(roomID),
		Presence:  h.presenceLocked(roomID),
	}
}

// RoomOf resolves the session's current room and username.
func (h *Hub) RoomOf(sid core.SessionID) (domain.RoomID, string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c, ok := h.clients[sid]
	if !ok || c.meta == nil {
		return "", "", false
	}
	return c.meta.RoomID, c.meta.Username, true
}

// Members snapshots the connections currently in a room.
func (h *Hub) Members(roomID domain.RoomID) []core.SignalConnection {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.membersLocked(roomID)
}

// Presence snapshots the usernames currently in a room.
func (h *Hub) Presence(roomID domain.RoomID) ([]string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.rooms[roomID]; !ok {
		return nil, false
	}
	return h.presenceLocked(roomID), true
}

func (h *Hub) membersLocked(roomID domain.RoomID) []core.SignalConnection {
	rs, ok := h.rooms[roomID]
	if !ok {
		return nil
	}
	return lo.FilterMap(lo.Keys(rs.members), func(sid core.SessionID, _ int) (core.SignalConnection, bool) {
		c, ok := h.clients[sid]
		if !ok {
			return nil, false
		}
		return c.conn, true
	})
}

// presenceLocked filters out members whose meta is momentarily missing
// rather than failing the snapshot.
func (h *Hub) presenceLocked(roomID domain.RoomID) []string {
	rs, ok := h.rooms[roomID]
	if !ok {
		return nil
	}
	return lo.FilterMap(lo.Keys(rs.members), func(sid core.SessionID, _ int) (string, bool) {
		c, ok := h.clients[sid]
		if !ok || c.meta == nil {
			return "", false
		}
		return c.meta.Username, true
	})
}

// RoomInfo is a read-only view for the REST listing.
type RoomInfo struct {
	ID          domain.RoomID `json:"room"`
	MemberCount int           `json:"client_count"`
	CreatedAt   time.Time     `json:"created_at"`
}

func (h *Hub) Rooms() []RoomInfo {
	h.mu.Lock()
	defer h.mu.Unlock()
	return lo.MapToSlice(h.rooms, func(id domain.RoomID, rs *roomState) RoomInfo {
		return RoomInfo{ID: id, MemberCount: len(rs.members), CreatedAt: rs.room.CreatedAt}
	})
}

// ProbeTarget pairs a session with its probe-capable connection for the
// heartbeat walk.
type ProbeTarget struct {
	SID  core.SessionID
	Conn core.ProbeConnection
}

// Connections snapshots every registered connection, joined or not.
func (h *Hub) Connections() []ProbeTarget {
	h.mu.Lock()
	defer h.mu.Unlock()
	return lo.MapToSlice(h.clients, func(sid core.SessionID, c *client) ProbeTarget {
		return ProbeTarget{SID: sid, Conn: c.conn}
	})
}
