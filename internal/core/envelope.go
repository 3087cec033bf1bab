package core

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Envelope kinds, the full protocol surface. Anything else coming off
// the wire is rejected at decode time.
const (
	KindCreate  = "create"
	KindJoin    = "join"
	KindMessage = "message"
	KindLeave   = "leave"

	KindRoomCreated = "room_created"
	KindJoined      = "joined"
	KindLeft        = "left"
	KindSystem      = "system"
	KindPresence    = "presence"
	KindError       = "error"
)

var (
	ErrBadPayload  = errors.New("bad payload")
	ErrUnknownKind = errors.New("unknown envelope type")
)

// Inbound is a client envelope after boundary validation. Only the
// fields relevant to Type are populated.
type Inbound struct {
	Type     string `json:"type"`
	Username string `json:"username,omitempty"`
	RoomID   string `json:"roomId,omitempty"`
	Message  string `json:"message,omitempty"`
}

// DecodeInbound parses and validates a raw client message. The union is
// closed: an unrecognized type or a missing required field is an error,
// never a silent drop.
func DecodeInbound(data []byte) (Inbound, error) {
	var in Inbound
	if err := json.Unmarshal(data, &in); err != nil {
		return Inbound{}, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	switch in.Type {
	case KindCreate:
		if in.Username == "" {
			return Inbound{}, fmt.Errorf("%w: create needs username", ErrBadPayload)
		}
	case KindJoin:
		if in.RoomID == "" || in.Username == "" {
			return Inbound{}, fmt.Errorf("%w: join needs roomId and username", ErrBadPayload)
		}
	case KindMessage:
		if in.Message == "" {
			return Inbound{}, fmt.Errorf("%w: message needs message", ErrBadPayload)
		}
	case KindLeave:
	default:
		return Inbound{}, fmt.Errorf("%w: %q", ErrUnknownKind, in.Type)
	}
	return in, nil
}

// Outbound is a server envelope. One struct covers the whole union;
// constructors below keep handlers free of ad-hoc literals.
type Outbound struct {
	Type     string   `json:"type"`
	RoomID   string   `json:"roomId,omitempty"`
	Username string   `json:"username,omitempty"`
	Message  string   `json:"message,omitempty"`
	Users    []string `json:"users,omitempty"`
}

func RoomCreated(roomID string) Outbound { return Outbound{Type: KindRoomCreated, RoomID: roomID} }
func Joined(roomID string) Outbound     { return Outbound{Type: KindJoined, RoomID: roomID} }
func Left() Outbound                    { return Outbound{Type: KindLeft} }
func System(message string) Outbound    { return Outbound{Type: KindSystem, Message: message} }
func ErrorMsg(message string) Outbound  { return Outbound{Type: KindError, Message: message} }

func Chat(username, message string) Outbound {
	return Outbound{Type: KindMessage, Username: username, Message: message}
}

// Presence snapshots are only ever sent to rooms that still have
// members, so the list is never empty on the wire.
func Presence(users []string) Outbound {
	return Outbound{Type: KindPresence, Users: users}
}
