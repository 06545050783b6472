package server

// DiagnosticsPlayer exposes per-session liveness data for the
// diagnostics endpoint.
type DiagnosticsPlayer struct {
	ID           uint32  `json:"id"`
	Name         string  `json:"name"`
	State        string  `json:"state"`
	LastAck      int64   `json:"lastAck"`
	LoadedChunks int     `json:"loadedChunks"`
	PosX         float32 `json:"x"`
	PosY         float32 `json:"y"`
}

// DiagnosticsSnapshot copies out the registry's current view.
func (h *Hub) DiagnosticsSnapshot() []DiagnosticsPlayer {
	h.mu.Lock()
	defer h.mu.Unlock()

	players := make([]DiagnosticsPlayer, 0, len(h.sessions))
	for _, s := range h.sessions {
		players = append(players, DiagnosticsPlayer{
			ID:           uint32(s.id),
			Name:         s.name,
			State:        s.state.String(),
			LastAck:      s.lastAck.UnixMilli(),
			LoadedChunks: len(s.loaded),
			PosX:         s.pos.X(),
			PosY:         s.pos.Y(),
		})
	}
	return players
}
