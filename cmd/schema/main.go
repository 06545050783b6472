package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/invopop/jsonschema"

	"blockworld/server/internal/protocol"
)

// packetCatalog enumerates every payload the codec can carry, keyed by
// the packet's wire name. Clients in other languages generate their
// bindings from the emitted schema.
type packetCatalog struct {
	ClientHello             protocol.ClientHello             `json:"client_hello"`
	ServerSync              protocol.ServerSync              `json:"server_sync"`
	ClientRequestChunk      protocol.ClientRequestChunk      `json:"client_request_chunk"`
	ServerChunkResponse     protocol.ServerChunkResponse     `json:"server_chunk_response"`
	ClientUnloadChunk       protocol.ClientUnloadChunk       `json:"client_unload_chunk"`
	ServerPlayerJoin        protocol.ServerPlayerJoin        `json:"server_player_join"`
	ServerPlayerEnterLoaded protocol.ServerPlayerEnterLoaded `json:"server_player_enter_loaded"`
	ServerPlayerLeaveLoaded protocol.ServerPlayerLeaveLoaded `json:"server_player_leave_loaded"`
	ServerPlayerLeave       protocol.ServerPlayerLeave       `json:"server_player_leave"`
	ClientGoodbye           protocol.ClientGoodbye           `json:"client_goodbye"`
	ClientPlaceBlock        protocol.ClientPlaceBlock        `json:"client_place_block"`
	ServerUpdateBlock       protocol.ServerUpdateBlock       `json:"server_update_block"`
	ClientPlayerJump        protocol.ClientPlayerJump        `json:"client_player_jump"`
	ServerPlayerUpdatePos   protocol.ServerPlayerUpdatePos   `json:"server_player_update_pos"`
	ServerKick              protocol.ServerKick              `json:"server_kick"`
	ServerHeartbeat         protocol.ServerHeartbeat         `json:"server_heartbeat"`
	ClientHeartbeat         protocol.ClientHeartbeat         `json:"client_heartbeat"`
	ClientBreakBlock        protocol.ClientBreakBlock        `json:"client_break_block"`
	ClientPlayerXVelocity   protocol.ClientPlayerXVelocity   `json:"client_player_x_velocity"`
	ClientSendMessage       protocol.ClientSendMessage       `json:"client_send_message"`
	ServerMessage           protocol.ServerMessage           `json:"server_message"`
	ClientChangeSlot        protocol.ClientChangeSlot        `json:"client_change_slot"`
	ClientPlayerRespawn     protocol.ClientPlayerRespawn     `json:"client_player_respawn"`
	ClientTryAttack         protocol.ClientTryAttack         `json:"client_try_attack"`
	ServerUpdateHealth      protocol.ServerUpdateHealth      `json:"server_update_health"`
	ServerBatchUpdateBlock  protocol.ServerBatchUpdateBlock  `json:"server_batch_update_block"`
}

func main() {
	var outPath string
	flag.StringVar(&outPath, "out", "", "path to write the JSON schema")
	flag.Parse()

	if outPath == "" {
		fmt.Fprintln(os.Stderr, "--out is required")
		os.Exit(1)
	}

	schema := buildSchema()

	if err := writeSchema(outPath, schema); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write schema: %v\n", err)
		os.Exit(1)
	}
}

func buildSchema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: true,
	}
	schema := reflector.Reflect(new(packetCatalog))
	schema.Title = "Blockworld Packet Catalog"
	schema.Description = "Describes every packet payload carried by the tag-prefixed wire codec"
	return schema
}

func writeSchema(outPath string, schema *jsonschema.Schema) error {
	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("create schema directory: %w", err)
	}

	tmpPath := outPath + ".tmp"
	if err := os.WriteFile(tmpPath, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write temp schema: %w", err)
	}

	if err := os.Rename(tmpPath, outPath); err != nil {
		return fmt.Errorf("replace schema: %w", err)
	}

	return nil
}
