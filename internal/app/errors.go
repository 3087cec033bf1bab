package app

import "errors"

var (
	ErrRoomNotFound     = errors.New("room not found")
	ErrRoomIDsExhausted = errors.New("room id generation exhausted")
	ErrUnknownSession   = errors.New("unknown session")
)
