package sinks

import (
	"context"
	"encoding/json"
	"io"
	"sync"

	"blockworld/server/logging"
)

// JSONSink writes one JSON object per line, suitable for ingestion.
type JSONSink struct {
	mu      sync.Mutex
	encoder *json.Encoder
	closer  io.Closer
}

func NewJSON(w io.Writer) *JSONSink {
	sink := &JSONSink{encoder: json.NewEncoder(w)}
	if closer, ok := w.(io.Closer); ok {
		sink.closer = closer
	}
	return sink
}

func (s *JSONSink) Write(event logging.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.encoder.Encode(event)
}

func (s *JSONSink) Close(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}
