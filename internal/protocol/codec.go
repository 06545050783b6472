package protocol

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// Wire framing: every message-framed transport frame is exactly one
// packet, a single tag byte followed by the msgpack encoding of that
// tag's payload struct. A frame that fails to decode is discarded on
// its own; it can never desynchronize later frames.

var (
	// ErrEmptyFrame reports a frame with no tag byte.
	ErrEmptyFrame = errors.New("protocol: empty frame")
	// ErrUnknownTag reports a tag this build does not recognize. The
	// caller discards the frame without disconnecting.
	ErrUnknownTag = errors.New("protocol: unknown tag")
)

// SchemaError reports a known tag whose payload could not be parsed
// into the tag's schema.
type SchemaError struct {
	PacketTag Tag
	Err       error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("protocol: %s payload: %v", e.PacketTag, e.Err)
}

func (e *SchemaError) Unwrap() error { return e.Err }

// Encode serializes msg into a single frame. Encoding is total for the
// closed message set; the error return exists only for the msgpack
// contract and is nil for every Message defined in this package.
func Encode(msg Message) ([]byte, error) {
	payload, err := msgpack.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("protocol: encode %s: %w", msg.Tag(), err)
	}
	frame := make([]byte, 1+len(payload))
	frame[0] = byte(msg.Tag())
	copy(frame[1:], payload)
	return frame, nil
}

// Decode parses one frame into a typed message. The result is
// all-or-nothing: either a fully populated message of the frame's tag,
// or an error and no message. Unknown tags yield ErrUnknownTag;
// malformed payloads for known tags yield a *SchemaError.
func Decode(frame []byte) (Message, error) {
	if len(frame) == 0 {
		return nil, ErrEmptyFrame
	}
	tag := Tag(frame[0])
	msg := newMessage(tag)
	if msg == nil {
		return nil, fmt.Errorf("tag %d: %w", frame[0], ErrUnknownTag)
	}
	src := bytes.NewReader(frame[1:])
	dec := msgpack.NewDecoder(src)
	if err := dec.Decode(msg); err != nil {
		return nil, &SchemaError{PacketTag: tag, Err: err}
	}
	// One frame carries exactly one packet. Leftover bytes mean the
	// sender framed something this schema does not describe.
	var one [1]byte
	if n, _ := dec.Buffered().Read(one[:]); n > 0 || src.Len() > 0 {
		return nil, &SchemaError{PacketTag: tag, Err: errors.New("trailing bytes after payload")}
	}
	return msg, nil
}
