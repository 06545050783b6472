package server

import (
	"github.com/go-gl/mathgl/mgl32"

	"blockworld/server/internal/protocol"
)

// applyMovement mutates a session's authoritative position under the
// hub lock, clamps it to world bounds, and emits the position update
// plus any enter/leave-loaded transitions the move caused. The mover
// always receives its own authoritative position back.
func (h *Hub) applyMovement(id PlayerID, apply func(s *session)) error {
	h.mu.Lock()
	s, ok := h.sessions[id]
	if !ok || s.state != StateActive {
		h.mu.Unlock()
		return ErrUnknownPlayer
	}

	before := h.visiblePeersLocked(s)
	apply(s)
	h.clampPosition(s)
	after := h.visiblePeersLocked(s)

	var batch []outbound
	batch = h.visibilityTransitionsLocked(s, before, after, batch)
	if frame, ok := h.encode(&protocol.ServerPlayerUpdatePos{
		PlayerID: uint32(id),
		PosX:     s.pos.X(),
		PosY:     s.pos.Y(),
	}); ok {
		for peerID, visible := range after {
			if !visible {
				continue
			}
			peer := h.sessions[peerID]
			if peer == nil || peer.state != StateActive {
				continue
			}
			batch = append(batch, outbound{id: peerID, conn: peer.conn, frame: frame})
		}
		batch = append(batch, outbound{id: id, conn: s.conn, frame: frame})
	}
	h.mu.Unlock()

	h.deliver(batch)
	return nil
}

func (h *Hub) clampPosition(s *session) {
	maxX := float32(h.world.Width() - 1)
	maxY := float32(h.world.Height() - 1)
	if s.pos.X() < 0 {
		s.pos[0] = 0
	}
	if s.pos.X() > maxX {
		s.pos[0] = maxX
	}
	if s.pos.Y() < 0 {
		s.pos[1] = 0
	}
	if s.pos.Y() > maxY {
		s.pos[1] = maxY
	}
}

// SetXVelocity records the client's horizontal velocity and advances
// the authoritative position one step.
func (h *Hub) SetXVelocity(id PlayerID, velX float32) error {
	return h.applyMovement(id, func(s *session) {
		s.vel[0] = velX
		s.pos[0] += velX
	})
}

// Jump applies one vertical impulse.
func (h *Hub) Jump(id PlayerID) error {
	return h.applyMovement(id, func(s *session) {
		s.vel[1] = jumpImpulse
		s.pos[1] += jumpImpulse
	})
}

// Respawn returns the player to a fresh spawn point at full health.
func (h *Hub) Respawn(id PlayerID) error {
	spawnX, spawnY := h.world.SpawnPoint()
	return h.applyMovement(id, func(s *session) {
		s.pos = mgl32.Vec2{spawnX, spawnY}
		s.vel = mgl32.Vec2{}
		s.health = playerMaxHealth
	})
}

// TryAttack applies fixed damage to a mutually visible target and
// reports the new health to the target. A defeated target respawns at
// full health; the position change travels the normal movement path.
func (h *Hub) TryAttack(attacker PlayerID, target PlayerID) error {
	h.mu.Lock()
	a, ok := h.sessions[attacker]
	if !ok || a.state != StateActive {
		h.mu.Unlock()
		return ErrUnknownPlayer
	}
	t, ok := h.sessions[target]
	if !ok || t.state != StateActive || attacker == target {
		h.mu.Unlock()
		return ErrUnknownPlayer
	}
	if !h.visibleLocked(a, t) {
		h.mu.Unlock()
		return ErrChunkNotLoaded
	}

	t.health -= attackDamage
	defeated := t.health <= 0
	if defeated {
		t.health = playerMaxHealth
	}
	var batch []outbound
	if frame, ok := h.encode(&protocol.ServerUpdateHealth{Health: t.health}); ok {
		batch = append(batch, outbound{id: target, conn: t.conn, frame: frame})
	}
	h.mu.Unlock()

	h.deliver(batch)
	if defeated {
		spawnX, spawnY := h.world.SpawnPoint()
		return h.applyMovement(target, func(s *session) {
			s.pos = mgl32.Vec2{spawnX, spawnY}
			s.vel = mgl32.Vec2{}
		})
	}
	return nil
}
