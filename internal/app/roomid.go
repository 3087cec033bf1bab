package app

import (
	"math/rand"
	"strings"

	"github.com/dkeye/Parley/internal/domain"
)

const roomIDAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// RoomIDGenerator produces short shareable room codes. Raw output may
// collide; the hub retries until it finds a free id.
type RoomIDGenerator func() domain.RoomID

// NewRoomIDGenerator returns a generator of length-n codes over [a-z0-9].
func NewRoomIDGenerator(n int) RoomIDGenerator {
	return func() domain.RoomID {
		var b strings.Builder
		b.Grow(n)
		for i := 0; i < n; i++ {
			b.WriteByte(roomIDAlphabet[rand.Intn(len(roomIDAlphabet))])
		}
		return domain.RoomID(b.String())
	}
}
