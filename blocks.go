package server

import (
	"time"

	"blockworld/server/internal/protocol"
	"blockworld/server/internal/world"
	"blockworld/server/logging"
)

// PlaceBlock writes the session's selected block at (x, y) and fans the
// update out to every session loading the containing chunk. The acting
// session must itself have that chunk loaded.
func (h *Hub) PlaceBlock(id PlayerID, x, y uint32) error {
	h.mu.Lock()
	s, ok := h.sessions[id]
	if !ok || s.state != StateActive {
		h.mu.Unlock()
		return ErrUnknownPlayer
	}
	block := s.selectedBlock()
	batch, err := h.setBlockLocked(s, x, y, block)
	h.mu.Unlock()
	if err != nil {
		return err
	}
	h.deliver(batch)
	h.publishBlockUpdate(id, x, y, block)
	return nil
}

// BreakBlock clears the tile at (x, y) under the same scoping rules as
// PlaceBlock.
func (h *Hub) BreakBlock(id PlayerID, x, y uint32) error {
	h.mu.Lock()
	s, ok := h.sessions[id]
	if !ok || s.state != StateActive {
		h.mu.Unlock()
		return ErrUnknownPlayer
	}
	batch, err := h.setBlockLocked(s, x, y, world.BlockAir)
	h.mu.Unlock()
	if err != nil {
		return err
	}
	h.deliver(batch)
	h.publishBlockUpdate(id, x, y, world.BlockAir)
	return nil
}

func (h *Hub) publishBlockUpdate(id PlayerID, x, y uint32, block world.Block) {
	h.publisher.Publish(logging.Event{
		Type:     logging.EventBlockUpdate,
		Severity: logging.SeverityDebug,
		Category: logging.CategoryWorld,
		Player:   logging.PlayerRef{ID: uint32(id)},
		Extra:    map[string]any{"x": x, "y": y, "block": block.String()},
	})
}

// setBlockLocked validates, mutates the world, and enumerates the
// chunk-scoped recipients while still holding the hub lock, so no
// session can load or unload the chunk between the mutation and the
// broadcast decision.
func (h *Hub) setBlockLocked(actor *session, x, y uint32, block world.Block) ([]outbound, error) {
	coord, err := h.chunkCoordOf(x, y)
	if err != nil {
		return nil, err
	}
	if !actor.hasLoaded(coord) {
		return nil, ErrChunkNotLoaded
	}
	if err := h.world.SetBlock(x, y, block); err != nil {
		return nil, err
	}

	frame, ok := h.encode(&protocol.ServerUpdateBlock{Block: uint8(block), X: x, Y: y})
	if !ok {
		return nil, nil
	}
	var batch []outbound
	for _, peer := range h.sessions {
		if peer.state != StateActive || !peer.hasLoaded(coord) {
			continue
		}
		batch = append(batch, outbound{id: peer.id, conn: peer.conn, frame: frame})
	}
	return batch, nil
}

// RunWaterTick drains the world's pending water queue on a fixed
// cadence, spreading water through the same mutate-then-broadcast path
// as a player placement, batched into one packet per interested
// session.
func (h *Hub) RunWaterTick(stop <-chan struct{}) {
	ticker := time.NewTicker(h.cfg.WaterTickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			h.spreadWater()
		}
	}
}

// pendingDrainer is implemented by providers that queue deferred
// updates, like the in-memory store's water queue.
type pendingDrainer interface {
	DrainPending() [][2]uint32
}

func (h *Hub) spreadWater() {
	drainer, ok := h.world.(pendingDrainer)
	if !ok {
		return
	}
	positions := drainer.DrainPending()
	if len(positions) == 0 {
		return
	}

	h.mu.Lock()
	perSession := make(map[PlayerID][]protocol.BlockUpdate)
	for _, pos := range positions {
		x, y := pos[0], pos[1]
		coord, err := h.chunkCoordOf(x, y)
		if err != nil {
			continue
		}
		if err := h.world.SetBlock(x, y, world.BlockWater); err != nil {
			continue
		}
		update := protocol.BlockUpdate{Block: uint8(world.BlockWater), X: x, Y: y}
		for _, peer := range h.sessions {
			if peer.state != StateActive || !peer.hasLoaded(coord) {
				continue
			}
			perSession[peer.id] = append(perSession[peer.id], update)
		}
	}
	var batch []outbound
	for peerID, updates := range perSession {
		peer := h.sessions[peerID]
		if peer == nil {
			continue
		}
		if frame, ok := h.encode(&protocol.ServerBatchUpdateBlock{Updates: updates}); ok {
			batch = append(batch, outbound{id: peerID, conn: peer.conn, frame: frame})
		}
	}
	h.mu.Unlock()

	h.deliver(batch)
	h.publisher.Publish(logging.Event{
		Type:     logging.EventWaterTick,
		Severity: logging.SeverityDebug,
		Category: logging.CategoryWorld,
		Extra:    map[string]any{"spread": len(positions)},
	})
}
