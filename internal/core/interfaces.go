package core

// Frame is a serialized envelope ready for the wire.
type Frame []byte

type SessionID string

// SignalConnection abstracts a system messaging transport.
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}

// ProbeConnection is what the heartbeat monitor needs from a transport:
// a control-level ping and the alive flag the pong handler raises.
// The monitor is the only writer of the flag between pongs.
type ProbeConnection interface {
	SignalConnection
	Ping() error
	Alive() bool
	MarkDead()
}
