package world

// Block is a single tile ID. The palette is fixed for a build; clients
// receive the raw ID and render it however they like.
type Block uint8

const (
	BlockAir Block = iota
	BlockGrass
	BlockStone
	BlockLog
	BlockLeaves
	BlockWater
	BlockWood
)

// ParseBlock maps a wire ID onto the palette, folding unknown IDs to air.
func ParseBlock(id uint8) Block {
	if id > uint8(BlockWood) {
		return BlockAir
	}
	return Block(id)
}

// Solid reports whether players and liquids collide with the block.
func (b Block) Solid() bool {
	switch b {
	case BlockAir, BlockWater:
		return false
	default:
		return true
	}
}

func (b Block) String() string {
	switch b {
	case BlockAir:
		return "air"
	case BlockGrass:
		return "grass"
	case BlockStone:
		return "stone"
	case BlockLog:
		return "log"
	case BlockLeaves:
		return "leaves"
	case BlockWater:
		return "water"
	case BlockWood:
		return "wood"
	default:
		return "air"
	}
}
