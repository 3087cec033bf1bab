package domain

import "time"

// Client is a connection's room membership meta.
// No transport or lifecycle logic here.
type Client struct {
	Username string
	RoomID   RoomID
	JoinedAt time.Time
}

// NewClient avoids raw literals in adapters and keeps construction obvious.
func NewClient(username string, roomID RoomID) *Client {
	return &Client{Username: username, RoomID: roomID, JoinedAt: time.Now()}
}
