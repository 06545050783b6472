package server

import (
	"time"

	"blockworld/server/internal/world"
)

const (
	defaultHeartbeatInterval = 2 * time.Second
	defaultHeartbeatMisses   = 3
	defaultWaterTickInterval = 500 * time.Millisecond

	playerMaxHealth = 100
	attackDamage    = 10

	jumpImpulse = 1.2
)

// hotbarPalette maps a hotbar slot to the block it places. Slot 0 is
// selected at join.
var hotbarPalette = [...]world.Block{
	world.BlockGrass,
	world.BlockStone,
	world.BlockLog,
	world.BlockLeaves,
	world.BlockWater,
	world.BlockWood,
}
