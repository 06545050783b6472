package protocol

// Tag identifies a packet kind on the wire. It occupies the first byte
// of every frame; the msgpack payload follows.
type Tag uint8

const (
	TagInvalid Tag = iota
	TagClientHello
	TagServerSync
	TagClientRequestChunk
	TagServerChunkResponse
	TagClientUnloadChunk
	TagServerPlayerJoin
	TagServerPlayerEnterLoaded
	TagServerPlayerLeaveLoaded
	TagServerPlayerLeave
	TagClientGoodbye
	TagClientPlaceBlock
	TagServerUpdateBlock
	tagReservedMoveX // legacy absolute-X move, superseded by TagClientPlayerXVelocity
	TagClientPlayerJump
	TagServerPlayerUpdatePos
	TagServerKick
	TagServerHeartbeat
	TagClientHeartbeat
	TagClientBreakBlock
	TagClientPlayerXVelocity
	TagClientSendMessage
	TagServerMessage
	TagClientChangeSlot
	TagClientPlayerRespawn
	TagClientTryAttack
	TagServerUpdateHealth
	TagServerBatchUpdateBlock

	tagMax
)

// Message is implemented by every packet payload in the closed set.
type Message interface {
	Tag() Tag
}

// NetworkChunk is the wire form of one chunk: row-major block IDs.
type NetworkChunk struct {
	Size   uint32 `msgpack:"size"`
	ChunkX int32  `msgpack:"chunk_x"`
	ChunkY int32  `msgpack:"chunk_y"`
	Blocks []byte `msgpack:"blocks"`
}

// BlockUpdate is one entry of a batched block broadcast.
type BlockUpdate struct {
	Block uint8  `msgpack:"block"`
	X     uint32 `msgpack:"x"`
	Y     uint32 `msgpack:"y"`
}

type ClientHello struct {
	Name string `msgpack:"name"`
}

type ServerSync struct {
	PlayerID    uint32  `msgpack:"player_id"`
	WorldWidth  uint32  `msgpack:"world_width"`
	WorldHeight uint32  `msgpack:"world_height"`
	ChunkSize   uint32  `msgpack:"chunk_size"`
	SpawnX      float32 `msgpack:"spawn_x"`
	SpawnY      float32 `msgpack:"spawn_y"`
}

type ClientRequestChunk struct {
	ChunkX int32 `msgpack:"chunk_coords_x"`
	ChunkY int32 `msgpack:"chunk_coords_y"`
}

type ServerChunkResponse struct {
	Chunk NetworkChunk `msgpack:"chunk"`
}

type ClientUnloadChunk struct {
	ChunkX int32 `msgpack:"chunk_coords_x"`
	ChunkY int32 `msgpack:"chunk_coords_y"`
}

type ServerPlayerJoin struct {
	PlayerName string `msgpack:"player_name"`
	PlayerID   uint32 `msgpack:"player_id"`
}

type ServerPlayerEnterLoaded struct {
	PlayerName string  `msgpack:"player_name"`
	PlayerID   uint32  `msgpack:"player_id"`
	PosX       float32 `msgpack:"pos_x"`
	PosY       float32 `msgpack:"pos_y"`
}

type ServerPlayerLeaveLoaded struct {
	PlayerName string `msgpack:"player_name"`
	PlayerID   uint32 `msgpack:"player_id"`
}

type ServerPlayerLeave struct {
	PlayerName string `msgpack:"player_name"`
	PlayerID   uint32 `msgpack:"player_id"`
}

type ClientGoodbye struct{}

type ClientPlaceBlock struct {
	X uint32 `msgpack:"x"`
	Y uint32 `msgpack:"y"`
}

type ServerUpdateBlock struct {
	Block uint8  `msgpack:"block"`
	X     uint32 `msgpack:"x"`
	Y     uint32 `msgpack:"y"`
}

type ClientPlayerJump struct{}

type ServerPlayerUpdatePos struct {
	PlayerID uint32  `msgpack:"player_id"`
	PosX     float32 `msgpack:"pos_x"`
	PosY     float32 `msgpack:"pos_y"`
}

type ServerKick struct {
	Message string `msgpack:"msg"`
}

type ServerHeartbeat struct{}

type ClientHeartbeat struct{}

type ClientBreakBlock struct {
	X uint32 `msgpack:"x"`
	Y uint32 `msgpack:"y"`
}

type ClientPlayerXVelocity struct {
	VelX float32 `msgpack:"vel_x"`
}

type ClientSendMessage struct {
	Message string `msgpack:"msg"`
}

type ServerMessage struct {
	PlayerName string `msgpack:"player_name"`
	PlayerID   uint32 `msgpack:"player_id"`
	Message    string `msgpack:"msg"`
}

type ClientChangeSlot struct {
	Slot uint8 `msgpack:"slot"`
}

type ClientPlayerRespawn struct{}

type ClientTryAttack struct {
	PlayerID uint32 `msgpack:"player_id"`
}

type ServerUpdateHealth struct {
	Health int32 `msgpack:"health"`
}

type ServerBatchUpdateBlock struct {
	Updates []BlockUpdate `msgpack:"updates"`
}

func (*ClientHello) Tag() Tag             { return TagClientHello }
func (*ServerSync) Tag() Tag              { return TagServerSync }
func (*ClientRequestChunk) Tag() Tag      { return TagClientRequestChunk }
func (*ServerChunkResponse) Tag() Tag     { return TagServerChunkResponse }
func (*ClientUnloadChunk) Tag() Tag       { return TagClientUnloadChunk }
func (*ServerPlayerJoin) Tag() Tag        { return TagServerPlayerJoin }
func (*ServerPlayerEnterLoaded) Tag() Tag { return TagServerPlayerEnterLoaded }
func (*ServerPlayerLeaveLoaded) Tag() Tag { return TagServerPlayerLeaveLoaded }
func (*ServerPlayerLeave) Tag() Tag       { return TagServerPlayerLeave }
func (*ClientGoodbye) Tag() Tag           { return TagClientGoodbye }
func (*ClientPlaceBlock) Tag() Tag        { return TagClientPlaceBlock }
func (*ServerUpdateBlock) Tag() Tag       { return TagServerUpdateBlock }
func (*ClientPlayerJump) Tag() Tag        { return TagClientPlayerJump }
func (*ServerPlayerUpdatePos) Tag() Tag   { return TagServerPlayerUpdatePos }
func (*ServerKick) Tag() Tag              { return TagServerKick }
func (*ServerHeartbeat) Tag() Tag         { return TagServerHeartbeat }
func (*ClientHeartbeat) Tag() Tag         { return TagClientHeartbeat }
func (*ClientBreakBlock) Tag() Tag        { return TagClientBreakBlock }
func (*ClientPlayerXVelocity) Tag() Tag   { return TagClientPlayerXVelocity }
func (*ClientSendMessage) Tag() Tag       { return TagClientSendMessage }
func (*ServerMessage) Tag() Tag           { return TagServerMessage }
func (*ClientChangeSlot) Tag() Tag        { return TagClientChangeSlot }
func (*ClientPlayerRespawn) Tag() Tag     { return TagClientPlayerRespawn }
func (*ClientTryAttack) Tag() Tag         { return TagClientTryAttack }
func (*ServerUpdateHealth) Tag() Tag      { return TagServerUpdateHealth }
func (*ServerBatchUpdateBlock) Tag() Tag  { return TagServerBatchUpdateBlock }

// newMessage returns a zero value for the payload schema of tag, or nil
// when this build does not recognize the tag.
func newMessage(tag Tag) Message {
	switch tag {
	case TagClientHello:
		return &ClientHello{}
	case TagServerSync:
		return &ServerSync{}
	case TagClientRequestChunk:
		return &ClientRequestChunk{}
	case TagServerChunkResponse:
		return &ServerChunkResponse{}
	case TagClientUnloadChunk:
		return &ClientUnloadChunk{}
	case TagServerPlayerJoin:
		return &ServerPlayerJoin{}
	case TagServerPlayerEnterLoaded:
		return &ServerPlayerEnterLoaded{}
	case TagServerPlayerLeaveLoaded:
		return &ServerPlayerLeaveLoaded{}
	case TagServerPlayerLeave:
		return &ServerPlayerLeave{}
	case TagClientGoodbye:
		return &ClientGoodbye{}
	case TagClientPlaceBlock:
		return &ClientPlaceBlock{}
	case TagServerUpdateBlock:
		return &ServerUpdateBlock{}
	case TagClientPlayerJump:
		return &ClientPlayerJump{}
	case TagServerPlayerUpdatePos:
		return &ServerPlayerUpdatePos{}
	case TagServerKick:
		return &ServerKick{}
	case TagServerHeartbeat:
		return &ServerHeartbeat{}
	case TagClientHeartbeat:
		return &ClientHeartbeat{}
	case TagClientBreakBlock:
		return &ClientBreakBlock{}
	case TagClientPlayerXVelocity:
		return &ClientPlayerXVelocity{}
	case TagClientSendMessage:
		return &ClientSendMessage{}
	case TagServerMessage:
		return &ServerMessage{}
	case TagClientChangeSlot:
		return &ClientChangeSlot{}
	case TagClientPlayerRespawn:
		return &ClientPlayerRespawn{}
	case TagClientTryAttack:
		return &ClientTryAttack{}
	case TagServerUpdateHealth:
		return &ServerUpdateHealth{}
	case TagServerBatchUpdateBlock:
		return &ServerBatchUpdateBlock{}
	default:
		return nil
	}
}

var tagNames = map[Tag]string{
	TagClientHello:             "ClientHello",
	TagServerSync:              "ServerSync",
	TagClientRequestChunk:      "ClientRequestChunk",
	TagServerChunkResponse:     "ServerChunkResponse",
	TagClientUnloadChunk:       "ClientUnloadChunk",
	TagServerPlayerJoin:        "ServerPlayerJoin",
	TagServerPlayerEnterLoaded: "ServerPlayerEnterLoaded",
	TagServerPlayerLeaveLoaded: "ServerPlayerLeaveLoaded",
	TagServerPlayerLeave:       "ServerPlayerLeave",
	TagClientGoodbye:           "ClientGoodbye",
	TagClientPlaceBlock:        "ClientPlaceBlock",
	TagServerUpdateBlock:       "ServerUpdateBlock",
	TagClientPlayerJump:        "ClientPlayerJump",
	TagServerPlayerUpdatePos:   "ServerPlayerUpdatePos",
	TagServerKick:              "ServerKick",
	TagServerHeartbeat:         "ServerHeartbeat",
	TagClientHeartbeat:         "ClientHeartbeat",
	TagClientBreakBlock:        "ClientBreakBlock",
	TagClientPlayerXVelocity:   "ClientPlayerXVelocity",
	TagClientSendMessage:       "ClientSendMessage",
	TagServerMessage:           "ServerMessage",
	TagClientChangeSlot:        "ClientChangeSlot",
	TagClientPlayerRespawn:     "ClientPlayerRespawn",
	TagClientTryAttack:         "ClientTryAttack",
	TagServerUpdateHealth:      "ServerUpdateHealth",
	TagServerBatchUpdateBlock:  "ServerBatchUpdateBlock",
}

func (t Tag) String() string {
	if name, ok := tagNames[t]; ok {
		return name
	}
	return "Invalid"
}
