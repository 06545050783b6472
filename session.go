package server

import (
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"blockworld/server/internal/world"
)

// PlayerID identifies one connected session. IDs come from a monotonic
// counter and are never reused for the lifetime of the process, which
// keeps a departing player's teardown broadcasts unambiguous.
type PlayerID uint32

// SessionState tracks where a connection is in its lifecycle. The
// pre-handshake states belong to the transport handler; the hub only
// ever holds sessions in StateActive or later.
type SessionState int

const (
	StateConnecting SessionState = iota
	StateHandshaking
	StateActive
	StateDisconnecting
	StateClosed
)

func (s SessionState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateHandshaking:
		return "handshaking"
	case StateActive:
		return "active"
	case StateDisconnecting:
		return "disconnecting"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Conn is the outbound half of a client transport. Implementations
// serialize their own writes; a write to a closing connection returns
// an error instead of blocking.
type Conn interface {
	WritePacket(frame []byte) error
	Close() error
}

// session is the registry's record of one connected client. Owned
// exclusively by the hub; handlers refer to sessions by PlayerID only.
type session struct {
	id    PlayerID
	name  string
	conn  Conn
	state SessionState

	pos mgl32.Vec2
	vel mgl32.Vec2

	slot   uint8
	health int32

	loaded  map[world.ChunkCoord]struct{}
	lastAck time.Time
}

// posChunk returns the chunk containing the session's current position.
func (s *session) posChunk(chunkSize uint32) world.ChunkCoord {
	x := s.pos.X()
	y := s.pos.Y()
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}
	return world.ChunkCoord{
		CX: int32(uint32(x) / chunkSize),
		CY: int32(uint32(y) / chunkSize),
	}
}

func (s *session) hasLoaded(coord world.ChunkCoord) bool {
	_, ok := s.loaded[coord]
	return ok
}

// selectedBlock resolves the hotbar slot to a block, defaulting to the
// first palette entry for out-of-range slots.
func (s *session) selectedBlock() world.Block {
	if int(s.slot) >= len(hotbarPalette) {
		return hotbarPalette[0]
	}
	return hotbarPalette[s.slot]
}
