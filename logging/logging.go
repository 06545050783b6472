package logging

import "time"

type EventType string

// Event types emitted by the networking core.
const (
	EventSessionHandshake EventType = "session.handshake"
	EventSessionJoin      EventType = "session.join"
	EventSessionLeave     EventType = "session.leave"
	EventSessionKick      EventType = "session.kick"
	EventSessionDrop      EventType = "session.drop"
	EventDecodeError      EventType = "net.decode_error"
	EventRequestRejected  EventType = "net.request_rejected"
	EventSendError        EventType = "net.send_error"
	EventHeartbeatTimeout EventType = "net.heartbeat_timeout"
	EventBlockUpdate      EventType = "world.block_update"
	EventWaterTick        EventType = "world.water_tick"
	EventServerShutdown   EventType = "server.shutdown"
)

type Severity int

const (
	SeverityDebug Severity = iota
	SeverityInfo
	SeverityWarn
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityDebug:
		return "debug"
	case SeverityInfo:
		return "info"
	case SeverityWarn:
		return "warn"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

const (
	CategorySession = "session"
	CategoryNetwork = "network"
	CategoryWorld   = "world"
	CategorySystem  = "system"
)

// PlayerRef names the session an event is about. ID 0 means the event
// predates handshake completion; Conn carries the transport trace ID.
type PlayerRef struct {
	ID   uint32 `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
	Conn string `json:"conn,omitempty"`
}

type Event struct {
	Type     EventType      `json:"type"`
	Time     time.Time      `json:"time"`
	Severity Severity       `json:"severity"`
	Category string         `json:"category,omitempty"`
	Player   PlayerRef      `json:"player,omitempty"`
	Message  string         `json:"message,omitempty"`
	Extra    map[string]any `json:"extra,omitempty"`
}

// Publisher accepts events from the hub and connection handlers.
type Publisher interface {
	Publish(event Event)
}

type PublisherFunc func(event Event)

func (f PublisherFunc) Publish(event Event) {
	if f == nil {
		return
	}
	f(event)
}

type nopPublisher struct{}

func (nopPublisher) Publish(Event) {}

// NopPublisher drops every event. Useful as a default and in tests
// that do not assert on logs.
func NopPublisher() Publisher {
	return nopPublisher{}
}

// WithFields returns a publisher that stamps fields into Extra of every
// event before forwarding, without overwriting fields the event set
// itself.
func WithFields(p Publisher, fields map[string]any) Publisher {
	if p == nil {
		return NopPublisher()
	}
	if len(fields) == 0 {
		return p
	}
	copied := make(map[string]any, len(fields))
	for k, v := range fields {
		copied[k] = v
	}
	return PublisherFunc(func(event Event) {
		if event.Extra == nil {
			event.Extra = make(map[string]any, len(copied))
		} else {
			merged := make(map[string]any, len(event.Extra)+len(copied))
			for k, v := range event.Extra {
				merged[k] = v
			}
			event.Extra = merged
		}
		for k, v := range copied {
			if _, exists := event.Extra[k]; !exists {
				event.Extra[k] = v
			}
		}
		p.Publish(event)
	})
}
