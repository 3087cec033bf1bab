package domain

import "time"

type RoomID string

// Room carries room identity only. Membership lives in the hub,
// which owns the lifecycle (a room dies with its last member).
type Room struct {
	ID        RoomID
	CreatedAt time.Time
}
