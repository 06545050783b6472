package server

import (
	"time"

	"blockworld/server/internal/protocol"
	"blockworld/server/logging"
)

// RunHeartbeat probes every active session on a fixed cadence and
// evicts sessions whose last acknowledgement is older than the
// configured multiple of the probe interval. The loop is independent
// of any session's gameplay traffic: probes ride the per-connection
// write lock, never the read path. Returns immediately when heartbeat
// monitoring is disabled.
func (h *Hub) RunHeartbeat(stop <-chan struct{}) {
	if !h.cfg.HeartbeatEnabled {
		return
	}
	ticker := time.NewTicker(h.cfg.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case now := <-ticker.C:
			h.heartbeatSweep(now)
		}
	}
}

// heartbeatSweep sends one probe to every active session and collects
// the expired ones. An ack landing exactly on the deadline keeps the
// session alive; eviction needs a strictly older ack.
func (h *Hub) heartbeatSweep(now time.Time) {
	deadline := time.Duration(h.cfg.HeartbeatMisses) * h.cfg.HeartbeatInterval
	frame, okFrame := h.encode(&protocol.ServerHeartbeat{})

	h.mu.Lock()
	var batch []outbound
	var expired []PlayerID
	for _, s := range h.sessions {
		if s.state != StateActive {
			continue
		}
		if now.Sub(s.lastAck) > deadline {
			expired = append(expired, s.id)
			continue
		}
		if okFrame {
			batch = append(batch, outbound{id: s.id, conn: s.conn, frame: frame})
		}
	}
	h.mu.Unlock()

	h.deliver(batch)
	for _, id := range expired {
		h.publisher.Publish(logging.Event{
			Type:     logging.EventHeartbeatTimeout,
			Severity: logging.SeverityWarn,
			Category: logging.CategoryNetwork,
			Player:   logging.PlayerRef{ID: uint32(id)},
		})
		h.Kick(id, "connection lost")
	}
}
