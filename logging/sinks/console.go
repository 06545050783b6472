package sinks

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"

	"blockworld/server/logging"
)

type ConsoleSink struct {
	logger *log.Logger
}

func NewConsole(w io.Writer) *ConsoleSink {
	return &ConsoleSink{logger: log.New(w, "", log.LstdFlags)}
}

func (s *ConsoleSink) Write(event logging.Event) error {
	if s.logger == nil {
		return nil
	}
	s.logger.Printf("[%s] severity=%s%s%s%s",
		event.Type, event.Severity, formatPlayer(event.Player), formatMessage(event.Message), formatExtra(event.Extra))
	return nil
}

func (s *ConsoleSink) Close(context.Context) error { return nil }

func formatPlayer(ref logging.PlayerRef) string {
	switch {
	case ref.ID != 0 && ref.Name != "":
		return fmt.Sprintf(" player=%d(%s)", ref.ID, ref.Name)
	case ref.ID != 0:
		return fmt.Sprintf(" player=%d", ref.ID)
	case ref.Conn != "":
		return fmt.Sprintf(" conn=%s", ref.Conn)
	default:
		return ""
	}
}

func formatMessage(msg string) string {
	if msg == "" {
		return ""
	}
	return " " + msg
}

func formatExtra(extra map[string]any) string {
	if len(extra) == 0 {
		return ""
	}
	data, err := json.Marshal(extra)
	if err != nil {
		return fmt.Sprintf(" extra=%v", extra)
	}
	return fmt.Sprintf(" extra=%s", data)
}
