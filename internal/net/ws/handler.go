package ws

import (
	"errors"
	nethttp "net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"blockworld/server"
	"blockworld/server/internal/protocol"
	"blockworld/server/internal/world"
	"blockworld/server/logging"
)

// defaultHandshakeTimeout bounds how long an anonymous connection may
// idle before identifying itself. Active sessions are covered by the
// heartbeat monitor instead, so the deadline is lifted after the hello.
const defaultHandshakeTimeout = 30 * time.Second

type HandlerConfig struct {
	Publisher        logging.Publisher
	HandshakeTimeout time.Duration
}

// Handler upgrades HTTP requests to websocket sessions and drives each
// connection's read loop. A connection is anonymous until its first
// decoded packet is a hello; only then does the hub learn about it.
type Handler struct {
	hub              *server.Hub
	publisher        logging.Publisher
	upgrader         websocket.Upgrader
	handshakeTimeout time.Duration
}

func NewHandler(hub *server.Hub, cfg HandlerConfig) *Handler {
	publisher := cfg.Publisher
	if publisher == nil {
		publisher = logging.NopPublisher()
	}
	handshakeTimeout := cfg.HandshakeTimeout
	if handshakeTimeout <= 0 {
		handshakeTimeout = defaultHandshakeTimeout
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *nethttp.Request) bool {
			return true
		},
	}

	return &Handler{
		hub:              hub,
		publisher:        publisher,
		upgrader:         upgrader,
		handshakeTimeout: handshakeTimeout,
	}
}

func (h *Handler) ServeHTTP(w nethttp.ResponseWriter, r *nethttp.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.publisher.Publish(logging.Event{
			Type:     logging.EventSessionDrop,
			Severity: logging.SeverityWarn,
			Category: logging.CategoryNetwork,
			Message:  "upgrade failed: " + err.Error(),
		})
		return
	}

	trace := uuid.NewString()
	sub := newSubscriber(conn)

	id, ok := h.handshake(trace, conn, sub)
	if !ok {
		sub.Close()
		return
	}

	h.readLoop(trace, id, conn, sub)
}

// handshake reads frames until the client identifies itself. Packets
// other than hello arriving before handshake completion are dropped
// without closing the connection; only a goodbye or a transport error
// ends the attempt.
func (h *Handler) handshake(trace string, conn *websocket.Conn, sub *subscriber) (server.PlayerID, bool) {
	for {
		conn.SetReadDeadline(time.Now().Add(h.handshakeTimeout))
		_, frame, err := conn.ReadMessage()
		if err != nil {
			h.publisher.Publish(logging.Event{
				Type:     logging.EventSessionDrop,
				Severity: logging.SeverityInfo,
				Category: logging.CategorySession,
				Player:   logging.PlayerRef{Conn: trace},
				Message:  "connection lost before handshake",
			})
			return 0, false
		}

		msg, err := h.decode(trace, frame)
		if err != nil {
			continue
		}

		switch m := msg.(type) {
		case *protocol.ClientHello:
			id, err := h.hub.Join(m.Name, sub)
			if err != nil {
				h.publisher.Publish(logging.Event{
					Type:     logging.EventSessionDrop,
					Severity: logging.SeverityError,
					Category: logging.CategorySession,
					Player:   logging.PlayerRef{Name: m.Name, Conn: trace},
					Message:  "join failed: " + err.Error(),
				})
				return 0, false
			}
			h.publisher.Publish(logging.Event{
				Type:     logging.EventSessionHandshake,
				Severity: logging.SeverityInfo,
				Category: logging.CategorySession,
				Player:   logging.PlayerRef{ID: uint32(id), Name: m.Name, Conn: trace},
			})
			return id, true
		case *protocol.ClientGoodbye:
			return 0, false
		default:
			// Gameplay traffic before hello is dropped, not punished.
		}
	}
}

func (h *Handler) readLoop(trace string, id server.PlayerID, conn *websocket.Conn, sub *subscriber) {
	conn.SetReadDeadline(time.Time{})
	for {
		_, frame, err := conn.ReadMessage()
		if err != nil {
			h.hub.Leave(id)
			return
		}

		msg, err := h.decode(trace, frame)
		if err != nil {
			continue
		}

		switch m := msg.(type) {
		case *protocol.ClientGoodbye:
			h.hub.Leave(id)
			return
		case *protocol.ClientRequestChunk:
			h.opResult(trace, id, "request_chunk",
				h.hub.LoadChunk(id, world.ChunkCoord{CX: m.ChunkX, CY: m.ChunkY}))
		case *protocol.ClientUnloadChunk:
			h.opResult(trace, id, "unload_chunk",
				h.hub.UnloadChunk(id, world.ChunkCoord{CX: m.ChunkX, CY: m.ChunkY}))
		case *protocol.ClientPlaceBlock:
			h.opResult(trace, id, "place_block", h.hub.PlaceBlock(id, m.X, m.Y))
		case *protocol.ClientBreakBlock:
			h.opResult(trace, id, "break_block", h.hub.BreakBlock(id, m.X, m.Y))
		case *protocol.ClientPlayerJump:
			h.opResult(trace, id, "jump", h.hub.Jump(id))
		case *protocol.ClientPlayerXVelocity:
			h.opResult(trace, id, "x_velocity", h.hub.SetXVelocity(id, m.VelX))
		case *protocol.ClientPlayerRespawn:
			h.opResult(trace, id, "respawn", h.hub.Respawn(id))
		case *protocol.ClientTryAttack:
			h.opResult(trace, id, "try_attack", h.hub.TryAttack(id, server.PlayerID(m.PlayerID)))
		case *protocol.ClientSendMessage:
			h.opResult(trace, id, "chat", h.hub.Chat(id, m.Message))
		case *protocol.ClientChangeSlot:
			h.opResult(trace, id, "change_slot", h.hub.ChangeSlot(id, m.Slot))
		case *protocol.ClientHeartbeat:
			h.opResult(trace, id, "heartbeat_ack", h.hub.HeartbeatAck(id))
		default:
			// Server-to-client tags arriving inbound are discarded.
		}
	}
}

// decode classifies failures but never tears the connection down:
// one bad frame costs one packet, nothing more.
func (h *Handler) decode(trace string, frame []byte) (protocol.Message, error) {
	msg, err := protocol.Decode(frame)
	if err == nil {
		return msg, nil
	}

	event := logging.Event{
		Type:     logging.EventDecodeError,
		Severity: logging.SeverityWarn,
		Category: logging.CategoryNetwork,
		Player:   logging.PlayerRef{Conn: trace},
		Message:  err.Error(),
	}
	var schemaErr *protocol.SchemaError
	switch {
	case errors.Is(err, protocol.ErrEmptyFrame):
		event.Extra = map[string]any{"kind": "empty_frame"}
	case errors.Is(err, protocol.ErrUnknownTag):
		event.Extra = map[string]any{"kind": "unknown_tag"}
	case errors.As(err, &schemaErr):
		event.Extra = map[string]any{"kind": "schema", "packet": schemaErr.PacketTag.String()}
	}
	h.publisher.Publish(event)
	return nil, err
}

// opResult reports a rejected gameplay request at debug severity.
// Rejections are routine (stale chunk requests, races with teardown)
// and never close the connection.
func (h *Handler) opResult(trace string, id server.PlayerID, op string, err error) {
	if err == nil {
		return
	}
	h.publisher.Publish(logging.Event{
		Type:     logging.EventRequestRejected,
		Severity: logging.SeverityDebug,
		Category: logging.CategoryNetwork,
		Player:   logging.PlayerRef{ID: uint32(id), Conn: trace},
		Message:  op + " rejected: " + err.Error(),
	})
}
