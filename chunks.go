package server

import (
	"fmt"

	"blockworld/server/internal/protocol"
	"blockworld/server/internal/world"
)

// chunkInBounds mirrors the provider's grid limits without a provider
// round-trip per request.
func (h *Hub) chunkInBounds(coord world.ChunkCoord) bool {
	return coord.CX >= 0 && coord.CY >= 0 &&
		uint32(coord.CX) < h.widthChunks && uint32(coord.CY) < h.heightChunks
}

// chunkCoordOf maps a block position into the chunk grid.
func (h *Hub) chunkCoordOf(x, y uint32) (world.ChunkCoord, error) {
	if x >= h.world.Width() || y >= h.world.Height() {
		return world.ChunkCoord{}, fmt.Errorf("block (%d, %d): %w", x, y, world.ErrOutOfBounds)
	}
	return world.ChunkCoord{CX: int32(x / h.chunkSize), CY: int32(y / h.chunkSize)}, nil
}

// LoadChunk records coord in the session's area of interest, replies
// with the chunk contents, and emits the matched enter-loaded events
// for every peer that just became mutually visible. The reply and the
// derived events are sequenced on the requesting connection in that
// order, and only after the load is recorded in the tracker.
func (h *Hub) LoadChunk(id PlayerID, coord world.ChunkCoord) error {
	h.mu.Lock()
	s, ok := h.sessions[id]
	if !ok || s.state != StateActive {
		h.mu.Unlock()
		return ErrUnknownPlayer
	}
	if !h.chunkInBounds(coord) {
		h.mu.Unlock()
		return fmt.Errorf("chunk %s: %w", coord, world.ErrOutOfBounds)
	}
	if s.hasLoaded(coord) {
		h.mu.Unlock()
		return ErrChunkAlreadyLoaded
	}

	before := h.visiblePeersLocked(s)
	s.loaded[coord] = struct{}{}
	after := h.visiblePeersLocked(s)

	// Fetched under the hub lock so the returned tiles reflect every
	// mutation whose broadcast this session has already been counted
	// into.
	chunk, err := h.world.Chunk(coord)
	if err != nil {
		delete(s.loaded, coord)
		h.mu.Unlock()
		return err
	}

	var batch []outbound
	response := &protocol.ServerChunkResponse{Chunk: protocol.NetworkChunk{
		Size:   chunk.Size,
		ChunkX: coord.CX,
		ChunkY: coord.CY,
		Blocks: blockBytes(chunk.Blocks),
	}}
	if frame, ok := h.encode(response); ok {
		batch = append(batch, outbound{id: id, conn: s.conn, frame: frame})
	}
	batch = h.visibilityTransitionsLocked(s, before, after, batch)
	h.mu.Unlock()

	h.deliver(batch)
	return nil
}

// UnloadChunk drops coord from the session's area of interest and
// emits the matched leave-loaded events for peers that fell out of
// mutual visibility.
func (h *Hub) UnloadChunk(id PlayerID, coord world.ChunkCoord) error {
	h.mu.Lock()
	s, ok := h.sessions[id]
	if !ok || s.state != StateActive {
		h.mu.Unlock()
		return ErrUnknownPlayer
	}
	if !h.chunkInBounds(coord) {
		h.mu.Unlock()
		return fmt.Errorf("chunk %s: %w", coord, world.ErrOutOfBounds)
	}
	if !s.hasLoaded(coord) {
		h.mu.Unlock()
		return nil
	}

	before := h.visiblePeersLocked(s)
	delete(s.loaded, coord)
	after := h.visiblePeersLocked(s)
	batch := h.visibilityTransitionsLocked(s, before, after, nil)
	h.mu.Unlock()

	h.deliver(batch)
	return nil
}

func blockBytes(blocks []world.Block) []byte {
	out := make([]byte, len(blocks))
	for i, b := range blocks {
		out[i] = byte(b)
	}
	return out
}
