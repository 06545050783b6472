package protocol

import "testing"

// Wire tag numbers are a compatibility contract with deployed clients;
// renumbering one breaks every peer built against the old value.
func TestTagNumbersAreStable(t *testing.T) {
	want := map[Tag]uint8{
		TagClientHello:             1,
		TagServerSync:              2,
		TagClientRequestChunk:      3,
		TagServerChunkResponse:     4,
		TagClientUnloadChunk:       5,
		TagServerPlayerJoin:        6,
		TagServerPlayerEnterLoaded: 7,
		TagServerPlayerLeaveLoaded: 8,
		TagServerPlayerLeave:       9,
		TagClientGoodbye:           10,
		TagClientPlaceBlock:        11,
		TagServerUpdateBlock:       12,
		TagClientPlayerJump:        14,
		TagServerPlayerUpdatePos:   15,
		TagServerKick:              16,
		TagServerHeartbeat:         17,
		TagClientHeartbeat:         18,
		TagClientBreakBlock:        19,
		TagClientPlayerXVelocity:   20,
		TagClientSendMessage:       21,
		TagServerMessage:           22,
		TagClientChangeSlot:        23,
		TagClientPlayerRespawn:     24,
		TagClientTryAttack:         25,
		TagServerUpdateHealth:      26,
		TagServerBatchUpdateBlock:  27,
	}
	for tag, number := range want {
		if uint8(tag) != number {
			t.Fatalf("%s = %d, want %d", tag, uint8(tag), number)
		}
	}
}

// Slot 13 once carried an absolute-X move and stays unassigned so old
// clients emitting it are rejected instead of misparsed.
func TestReservedTagIsNotDecodable(t *testing.T) {
	if msg := newMessage(Tag(13)); msg != nil {
		t.Fatalf("reserved tag 13 decodes to %T", msg)
	}
	if msg := newMessage(TagInvalid); msg != nil {
		t.Fatalf("tag 0 decodes to %T", msg)
	}
	if msg := newMessage(tagMax); msg != nil {
		t.Fatalf("tag past the closed set decodes to %T", msg)
	}
}

func TestEveryTagHasAPayloadFactory(t *testing.T) {
	for tag := TagClientHello; tag < tagMax; tag++ {
		if tag == tagReservedMoveX {
			continue
		}
		msg := newMessage(tag)
		if msg == nil {
			t.Fatalf("no payload factory for tag %d (%s)", uint8(tag), tag)
		}
		if msg.Tag() != tag {
			t.Fatalf("factory for %s built a %s payload", tag, msg.Tag())
		}
	}
}
