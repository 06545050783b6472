package server

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"blockworld/server/internal/protocol"
	"blockworld/server/internal/world"
	"blockworld/server/logging"
)

var (
	// ErrUnknownPlayer reports an operation against a PlayerID with no
	// live session.
	ErrUnknownPlayer = errors.New("unknown player")
	// ErrChunkAlreadyLoaded reports a duplicate load request from the
	// same session.
	ErrChunkAlreadyLoaded = errors.New("chunk already loaded")
	// ErrChunkNotLoaded reports a block mutation in a chunk the acting
	// session has not loaded.
	ErrChunkNotLoaded = errors.New("chunk not loaded by player")
)

// HubConfig carries the toggles the hub consumes once at startup.
type HubConfig struct {
	HeartbeatEnabled  bool
	HeartbeatInterval time.Duration
	HeartbeatMisses   int
	WaterTickInterval time.Duration
}

// DefaultHubConfig enables heartbeat monitoring with the stock cadence.
func DefaultHubConfig() HubConfig {
	return HubConfig{
		HeartbeatEnabled:  true,
		HeartbeatInterval: defaultHeartbeatInterval,
		HeartbeatMisses:   defaultHeartbeatMisses,
		WaterTickInterval: defaultWaterTickInterval,
	}
}

func (cfg HubConfig) normalized() HubConfig {
	if cfg.HeartbeatInterval <= 0 {
		cfg.HeartbeatInterval = defaultHeartbeatInterval
	}
	if cfg.HeartbeatMisses <= 0 {
		cfg.HeartbeatMisses = defaultHeartbeatMisses
	}
	if cfg.WaterTickInterval <= 0 {
		cfg.WaterTickInterval = defaultWaterTickInterval
	}
	return cfg
}

// Hub owns every live session and is the sole mutator of the shared
// world. All cross-session effects funnel through it so a world
// mutation and the broadcast announcing it are decided under one lock:
// recipients are enumerated while the mutation is already visible, and
// frames are delivered after the lock is released so a slow or closing
// connection never stalls the registry.
type Hub struct {
	cfg       HubConfig
	world     world.Provider
	publisher logging.Publisher

	chunkSize    uint32
	widthChunks  uint32
	heightChunks uint32

	mu       sync.Mutex
	sessions map[PlayerID]*session
	nextID   atomic.Uint32
}

// NewHub wires a hub to its world provider. The publisher may be nil.
func NewHub(provider world.Provider, cfg HubConfig, publisher logging.Publisher) *Hub {
	if publisher == nil {
		publisher = logging.NopPublisher()
	}
	return &Hub{
		cfg:          cfg.normalized(),
		world:        provider,
		publisher:    publisher,
		chunkSize:    provider.ChunkSize(),
		widthChunks:  provider.Width() / provider.ChunkSize(),
		heightChunks: provider.Height() / provider.ChunkSize(),
		sessions:     make(map[PlayerID]*session),
	}
}

// outbound pairs an encoded frame with its destination. Batches are
// built under the hub lock and delivered after it is released.
type outbound struct {
	id    PlayerID
	conn  Conn
	frame []byte
}

// deliver writes a batch in order. A failed write is treated exactly
// like a transport failure: the session goes through the common
// teardown path, and remaining deliveries continue.
func (h *Hub) deliver(batch []outbound) {
	for _, out := range batch {
		if err := out.conn.WritePacket(out.frame); err != nil {
			h.publisher.Publish(logging.Event{
				Type:     logging.EventSendError,
				Severity: logging.SeverityWarn,
				Category: logging.CategoryNetwork,
				Player:   logging.PlayerRef{ID: uint32(out.id)},
				Message:  err.Error(),
			})
			h.Leave(out.id)
		}
	}
}

// encode serializes msg, reporting the (never expected) failure through
// the publisher instead of propagating it to packet handlers.
func (h *Hub) encode(msg protocol.Message) ([]byte, bool) {
	frame, err := protocol.Encode(msg)
	if err != nil {
		h.publisher.Publish(logging.Event{
			Type:     logging.EventSendError,
			Severity: logging.SeverityError,
			Category: logging.CategoryNetwork,
			Message:  err.Error(),
		})
		return nil, false
	}
	return frame, true
}

// Join completes a handshake: it assigns a fresh PlayerID, spawns the
// player, sends the world-sync parameters to the new connection, and
// announces the join to every other active session.
func (h *Hub) Join(name string, conn Conn) (PlayerID, error) {
	id := PlayerID(h.nextID.Add(1))
	spawnX, spawnY := h.world.SpawnPoint()

	sync := &protocol.ServerSync{
		PlayerID:    uint32(id),
		WorldWidth:  h.world.Width(),
		WorldHeight: h.world.Height(),
		ChunkSize:   h.chunkSize,
		SpawnX:      spawnX,
		SpawnY:      spawnY,
	}
	syncFrame, ok := h.encode(sync)
	if !ok {
		return 0, errors.New("failed to encode sync")
	}
	joinFrame, ok := h.encode(&protocol.ServerPlayerJoin{PlayerName: name, PlayerID: uint32(id)})
	if !ok {
		return 0, errors.New("failed to encode join")
	}

	s := &session{
		id:      id,
		name:    name,
		conn:    conn,
		state:   StateActive,
		slot:    0,
		health:  playerMaxHealth,
		loaded:  make(map[world.ChunkCoord]struct{}),
		lastAck: time.Now(),
	}
	s.pos[0] = spawnX
	s.pos[1] = spawnY

	h.mu.Lock()
	batch := make([]outbound, 0, len(h.sessions)+1)
	batch = append(batch, outbound{id: id, conn: conn, frame: syncFrame})
	for _, peer := range h.sessions {
		if peer.state != StateActive {
			continue
		}
		batch = append(batch, outbound{id: peer.id, conn: peer.conn, frame: joinFrame})
	}
	h.sessions[id] = s
	h.mu.Unlock()

	h.deliver(batch)
	h.publisher.Publish(logging.Event{
		Type:     logging.EventSessionJoin,
		Severity: logging.SeverityInfo,
		Category: logging.CategorySession,
		Player:   logging.PlayerRef{ID: uint32(id), Name: name},
	})
	return id, nil
}

// Leave runs the common teardown path: explicit goodbye, heartbeat
// timeout, and transport failure all end up here.
func (h *Hub) Leave(id PlayerID) {
	h.teardown(id, "", false)
}

// Kick short-circuits teardown with a reason message sent first.
func (h *Hub) Kick(id PlayerID, reason string) {
	h.teardown(id, reason, true)
}

func (h *Hub) teardown(id PlayerID, reason string, kick bool) {
	h.mu.Lock()
	s, ok := h.sessions[id]
	if !ok || s.state != StateActive {
		h.mu.Unlock()
		return
	}
	s.state = StateDisconnecting

	leaveFrame, okLeave := h.encode(&protocol.ServerPlayerLeave{PlayerName: s.name, PlayerID: uint32(id)})
	leaveLoadedFrame, okLoaded := h.encode(&protocol.ServerPlayerLeaveLoaded{PlayerName: s.name, PlayerID: uint32(id)})

	var batch []outbound
	if kick {
		if frame, ok := h.encode(&protocol.ServerKick{Message: reason}); ok {
			batch = append(batch, outbound{id: id, conn: s.conn, frame: frame})
		}
	}
	for _, peer := range h.sessions {
		if peer.id == id || peer.state != StateActive {
			continue
		}
		if okLoaded && h.visibleLocked(s, peer) {
			batch = append(batch, outbound{id: peer.id, conn: peer.conn, frame: leaveLoadedFrame})
		}
		if okLeave {
			batch = append(batch, outbound{id: peer.id, conn: peer.conn, frame: leaveFrame})
		}
	}

	// Removal and loaded-set clearing happen atomically with the
	// broadcast decision: once the lock drops, no later fan-out can
	// enumerate this session.
	delete(h.sessions, id)
	s.loaded = nil
	s.state = StateClosed
	h.mu.Unlock()

	h.deliver(batch)
	s.conn.Close()

	eventType := logging.EventSessionLeave
	if kick {
		eventType = logging.EventSessionKick
	}
	h.publisher.Publish(logging.Event{
		Type:     eventType,
		Severity: logging.SeverityInfo,
		Category: logging.CategorySession,
		Player:   logging.PlayerRef{ID: uint32(id), Name: s.name},
		Message:  reason,
	})
}

// visibleLocked reports mutual visibility: each side loads the chunk
// containing the other's current position.
func (h *Hub) visibleLocked(a, b *session) bool {
	return a.hasLoaded(b.posChunk(h.chunkSize)) && b.hasLoaded(a.posChunk(h.chunkSize))
}

// visiblePeersLocked snapshots which active peers are mutually visible
// with s right now.
func (h *Hub) visiblePeersLocked(s *session) map[PlayerID]bool {
	out := make(map[PlayerID]bool, len(h.sessions))
	for _, peer := range h.sessions {
		if peer.id == s.id || peer.state != StateActive {
			continue
		}
		out[peer.id] = h.visibleLocked(s, peer)
	}
	return out
}

// visibilityTransitionsLocked compares two visibility snapshots and
// appends the matched enter/leave events both sides expect.
func (h *Hub) visibilityTransitionsLocked(s *session, before, after map[PlayerID]bool, batch []outbound) []outbound {
	for peerID, visible := range after {
		peer, ok := h.sessions[peerID]
		if !ok || peer.state != StateActive {
			continue
		}
		was := before[peerID]
		switch {
		case visible && !was:
			toS, ok1 := h.encode(&protocol.ServerPlayerEnterLoaded{
				PlayerName: peer.name,
				PlayerID:   uint32(peer.id),
				PosX:       peer.pos.X(),
				PosY:       peer.pos.Y(),
			})
			toPeer, ok2 := h.encode(&protocol.ServerPlayerEnterLoaded{
				PlayerName: s.name,
				PlayerID:   uint32(s.id),
				PosX:       s.pos.X(),
				PosY:       s.pos.Y(),
			})
			if ok1 && ok2 {
				batch = append(batch,
					outbound{id: s.id, conn: s.conn, frame: toS},
					outbound{id: peer.id, conn: peer.conn, frame: toPeer})
			}
		case !visible && was:
			toS, ok1 := h.encode(&protocol.ServerPlayerLeaveLoaded{PlayerName: peer.name, PlayerID: uint32(peer.id)})
			toPeer, ok2 := h.encode(&protocol.ServerPlayerLeaveLoaded{PlayerName: s.name, PlayerID: uint32(s.id)})
			if ok1 && ok2 {
				batch = append(batch,
					outbound{id: s.id, conn: s.conn, frame: toS},
					outbound{id: peer.id, conn: peer.conn, frame: toPeer})
			}
		}
	}
	return batch
}

// BroadcastScoped encodes msg once and delivers it to every active
// session the predicate selects.
func (h *Hub) BroadcastScoped(pred func(PlayerID) bool, msg protocol.Message) {
	frame, ok := h.encode(msg)
	if !ok {
		return
	}
	h.mu.Lock()
	batch := make([]outbound, 0, len(h.sessions))
	for _, s := range h.sessions {
		if s.state != StateActive {
			continue
		}
		if pred != nil && !pred(s.id) {
			continue
		}
		batch = append(batch, outbound{id: s.id, conn: s.conn, frame: frame})
	}
	h.mu.Unlock()
	h.deliver(batch)
}

// Chat broadcasts a chat line from the named session to everyone,
// sender included.
func (h *Hub) Chat(id PlayerID, message string) error {
	h.mu.Lock()
	s, ok := h.sessions[id]
	if !ok || s.state != StateActive {
		h.mu.Unlock()
		return ErrUnknownPlayer
	}
	name := s.name
	h.mu.Unlock()

	h.BroadcastScoped(nil, &protocol.ServerMessage{
		PlayerName: name,
		PlayerID:   uint32(id),
		Message:    message,
	})
	return nil
}

// ChangeSlot selects the session's hotbar slot.
func (h *Hub) ChangeSlot(id PlayerID, slot uint8) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	s, ok := h.sessions[id]
	if !ok || s.state != StateActive {
		return ErrUnknownPlayer
	}
	s.slot = slot
	return nil
}

// HeartbeatAck stamps the session's liveness clock.
func (h *Hub) HeartbeatAck(id PlayerID) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	s, ok := h.sessions[id]
	if !ok || s.state != StateActive {
		return ErrUnknownPlayer
	}
	s.lastAck = time.Now()
	return nil
}

// Shutdown kicks every session with a shutdown notice and tears the
// registry down.
func (h *Hub) Shutdown(message string) {
	frame, okFrame := h.encode(&protocol.ServerKick{Message: message})

	h.mu.Lock()
	batch := make([]outbound, 0, len(h.sessions))
	conns := make([]Conn, 0, len(h.sessions))
	for id, s := range h.sessions {
		if s.state == StateActive && okFrame {
			batch = append(batch, outbound{id: id, conn: s.conn, frame: frame})
		}
		s.state = StateClosed
		s.loaded = nil
		conns = append(conns, s.conn)
		delete(h.sessions, id)
	}
	h.mu.Unlock()

	for _, out := range batch {
		// Best-effort: the process is going away either way.
		_ = out.conn.WritePacket(out.frame)
	}
	for _, conn := range conns {
		conn.Close()
	}
	h.publisher.Publish(logging.Event{
		Type:     logging.EventServerShutdown,
		Severity: logging.SeverityInfo,
		Category: logging.CategorySystem,
		Message:  message,
	})
}
