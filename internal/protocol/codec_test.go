package protocol

import (
	"errors"
	"reflect"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	messages := []Message{
		&ClientHello{Name: "alice"},
		&ServerSync{PlayerID: 7, WorldWidth: 1024, WorldHeight: 256, ChunkSize: 16, SpawnX: 512.5, SpawnY: 129},
		&ClientRequestChunk{ChunkX: 3, ChunkY: -1},
		&ServerChunkResponse{Chunk: NetworkChunk{Size: 2, ChunkX: 1, ChunkY: 0, Blocks: []byte{0, 1, 2, 3}}},
		&ClientUnloadChunk{ChunkX: 0, ChunkY: 4},
		&ServerPlayerJoin{PlayerName: "bob", PlayerID: 9},
		&ServerPlayerEnterLoaded{PlayerName: "bob", PlayerID: 9, PosX: 12.5, PosY: 130},
		&ServerPlayerLeaveLoaded{PlayerName: "bob", PlayerID: 9},
		&ServerPlayerLeave{PlayerName: "bob", PlayerID: 9},
		&ClientGoodbye{},
		&ClientPlaceBlock{X: 10, Y: 20},
		&ServerUpdateBlock{Block: 2, X: 10, Y: 20},
		&ClientPlayerJump{},
		&ServerPlayerUpdatePos{PlayerID: 7, PosX: 1.5, PosY: -0.25},
		&ServerKick{Message: "connection lost"},
		&ServerHeartbeat{},
		&ClientHeartbeat{},
		&ClientBreakBlock{X: 5, Y: 6},
		&ClientPlayerXVelocity{VelX: -2.5},
		&ClientSendMessage{Message: "hello world"},
		&ServerMessage{PlayerName: "alice", PlayerID: 7, Message: "hello world"},
		&ClientChangeSlot{Slot: 4},
		&ClientPlayerRespawn{},
		&ClientTryAttack{PlayerID: 9},
		&ServerUpdateHealth{Health: 80},
		&ServerBatchUpdateBlock{Updates: []BlockUpdate{{Block: 5, X: 1, Y: 2}, {Block: 0, X: 1, Y: 3}}},
	}

	for _, msg := range messages {
		frame, err := Encode(msg)
		if err != nil {
			t.Fatalf("encode %s: %v", msg.Tag(), err)
		}
		if len(frame) == 0 || Tag(frame[0]) != msg.Tag() {
			t.Fatalf("frame for %s does not start with its tag byte", msg.Tag())
		}

		decoded, err := Decode(frame)
		if err != nil {
			t.Fatalf("decode %s: %v", msg.Tag(), err)
		}
		if !reflect.DeepEqual(decoded, msg) {
			t.Fatalf("round trip mismatch for %s: got %+v want %+v", msg.Tag(), decoded, msg)
		}
	}
}

func TestDecodeEmptyFrame(t *testing.T) {
	if _, err := Decode(nil); !errors.Is(err, ErrEmptyFrame) {
		t.Fatalf("expected ErrEmptyFrame, got %v", err)
	}
	if _, err := Decode([]byte{}); !errors.Is(err, ErrEmptyFrame) {
		t.Fatalf("expected ErrEmptyFrame for zero-length frame, got %v", err)
	}
}

func TestDecodeUnknownTag(t *testing.T) {
	for _, tag := range []byte{0, 13, 28, 200, 255} {
		_, err := Decode([]byte{tag})
		if !errors.Is(err, ErrUnknownTag) {
			t.Fatalf("tag %d: expected ErrUnknownTag, got %v", tag, err)
		}
	}
}

func TestDecodeMalformedPayload(t *testing.T) {
	// A truncated msgpack map body for a known tag must surface as a
	// schema error, not a panic or a silent zero value.
	frame := []byte{byte(TagClientHello), 0x81, 0xa4}
	_, err := Decode(frame)
	if err == nil {
		t.Fatalf("expected error for malformed payload")
	}
	var schemaErr *SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("expected *SchemaError, got %T: %v", err, err)
	}
	if schemaErr.PacketTag != TagClientHello {
		t.Fatalf("schema error names tag %s, want %s", schemaErr.PacketTag, TagClientHello)
	}
}

func TestDecodeIgnoresTrailingGarbageScenario(t *testing.T) {
	// One frame carries exactly one packet; a valid packet followed by
	// trailing bytes is rejected rather than partially applied.
	frame, err := Encode(&ClientChangeSlot{Slot: 1})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	frame = append(frame, 0xff, 0x00)
	if _, err := Decode(frame); err == nil {
		t.Fatalf("expected error for frame with trailing bytes")
	}
}

func TestTagStringNames(t *testing.T) {
	if TagClientHello.String() != "ClientHello" {
		t.Fatalf("unexpected name for hello tag: %s", TagClientHello)
	}
	if Tag(250).String() != "Invalid" {
		t.Fatalf("unknown tags should print as Invalid, got %s", Tag(250))
	}
}
