package world

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/sasha-s/go-deadlock"
)

var (
	// ErrOutOfBounds reports a block or chunk position outside the world.
	ErrOutOfBounds = errors.New("out of world bounds")
	// ErrMismatchedChunkSize reports dimensions that are not a whole
	// number of chunks.
	ErrMismatchedChunkSize = errors.New("world width and height must be multiples of the chunk size")
)

// ChunkCoord identifies one fixed-size square region of the world grid.
type ChunkCoord struct {
	CX int32
	CY int32
}

func (c ChunkCoord) String() string {
	return fmt.Sprintf("(%d, %d)", c.CX, c.CY)
}

// Chunk is a row-major copy of one region's tiles. Callers own the
// returned slice; mutating it does not touch the store.
type Chunk struct {
	Size   uint32
	Coord  ChunkCoord
	Blocks []Block
}

// BlockAt reads a tile by chunk-local coordinates.
func (c Chunk) BlockAt(localX, localY uint32) Block {
	return c.Blocks[localY*c.Size+localX]
}

// Provider supplies chunk and tile data to the hub. The hub treats
// generation as opaque; anything that can answer these calls works.
type Provider interface {
	Chunk(coord ChunkCoord) (Chunk, error)
	Block(x, y uint32) (Block, error)
	SetBlock(x, y uint32, b Block) error
	Width() uint32
	Height() uint32
	ChunkSize() uint32
	SpawnPoint() (x, y float32)
}

// Config fixes the world dimensions at construction. Immutable afterward.
type Config struct {
	Width      uint32
	Height     uint32
	ChunkSize  uint32
	SpawnX     uint32
	SpawnRange uint32
}

// Store is the in-memory tile grid. Reads and writes are serialized by
// a deadlock-checked RW lock so concurrent block placement never loses
// updates.
type Store struct {
	cfg          Config
	widthChunks  uint32
	heightChunks uint32

	mu      deadlock.RWMutex
	blocks  []Block
	pending [][2]uint32 // positions queued for the water spread tick
}

// NewStore builds an all-air world with the given dimensions.
func NewStore(cfg Config) (*Store, error) {
	if cfg.ChunkSize == 0 || cfg.Width%cfg.ChunkSize != 0 || cfg.Height%cfg.ChunkSize != 0 {
		return nil, ErrMismatchedChunkSize
	}
	if cfg.SpawnX >= cfg.Width {
		cfg.SpawnX = cfg.Width / 2
	}
	return &Store{
		cfg:          cfg,
		widthChunks:  cfg.Width / cfg.ChunkSize,
		heightChunks: cfg.Height / cfg.ChunkSize,
		blocks:       make([]Block, cfg.Width*cfg.Height),
	}, nil
}

// FillFlat lays stone up to grassLevel and a grass row on top across
// the whole width. Terrain generation proper lives outside this
// package; the flat fill is the default provider content.
func (s *Store) FillFlat(grassLevel uint32) error {
	if grassLevel >= s.cfg.Height {
		return fmt.Errorf("grass level %d: %w", grassLevel, ErrOutOfBounds)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for y := uint32(0); y < grassLevel; y++ {
		for x := uint32(0); x < s.cfg.Width; x++ {
			s.blocks[y*s.cfg.Width+x] = BlockStone
		}
	}
	for x := uint32(0); x < s.cfg.Width; x++ {
		s.blocks[grassLevel*s.cfg.Width+x] = BlockGrass
	}
	return nil
}

func (s *Store) Width() uint32     { return s.cfg.Width }
func (s *Store) Height() uint32    { return s.cfg.Height }
func (s *Store) ChunkSize() uint32 { return s.cfg.ChunkSize }

// ChunkCoordOf maps a block position to the chunk containing it.
func (s *Store) ChunkCoordOf(x, y uint32) (ChunkCoord, error) {
	if x >= s.cfg.Width || y >= s.cfg.Height {
		return ChunkCoord{}, fmt.Errorf("block (%d, %d): %w", x, y, ErrOutOfBounds)
	}
	return ChunkCoord{CX: int32(x / s.cfg.ChunkSize), CY: int32(y / s.cfg.ChunkSize)}, nil
}

// InBounds reports whether coord names a chunk inside the world.
func (s *Store) InBounds(coord ChunkCoord) bool {
	return coord.CX >= 0 && coord.CY >= 0 &&
		uint32(coord.CX) < s.widthChunks && uint32(coord.CY) < s.heightChunks
}

// Chunk copies out one region's tiles.
func (s *Store) Chunk(coord ChunkCoord) (Chunk, error) {
	if !s.InBounds(coord) {
		return Chunk{}, fmt.Errorf("chunk %s: %w", coord, ErrOutOfBounds)
	}
	size := s.cfg.ChunkSize
	out := Chunk{Size: size, Coord: coord, Blocks: make([]Block, size*size)}
	baseX := uint32(coord.CX) * size
	baseY := uint32(coord.CY) * size

	s.mu.RLock()
	defer s.mu.RUnlock()
	for row := uint32(0); row < size; row++ {
		start := (baseY+row)*s.cfg.Width + baseX
		copy(out.Blocks[row*size:(row+1)*size], s.blocks[start:start+size])
	}
	return out, nil
}

// Block reads one tile.
func (s *Store) Block(x, y uint32) (Block, error) {
	if x >= s.cfg.Width || y >= s.cfg.Height {
		return BlockAir, fmt.Errorf("block (%d, %d): %w", x, y, ErrOutOfBounds)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.blocks[y*s.cfg.Width+x], nil
}

// SetBlock writes one tile. Placing water queues its spreadable
// neighbors for the next water tick.
func (s *Store) SetBlock(x, y uint32, b Block) error {
	if x >= s.cfg.Width || y >= s.cfg.Height {
		return fmt.Errorf("block (%d, %d): %w", x, y, ErrOutOfBounds)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blocks[y*s.cfg.Width+x] = b
	if b == BlockWater {
		for _, pos := range waterNeighbors(x, y) {
			if pos[0] >= s.cfg.Width || pos[1] >= s.cfg.Height {
				continue
			}
			neighbor := s.blocks[pos[1]*s.cfg.Width+pos[0]]
			if !neighbor.Solid() && neighbor != BlockWater {
				s.pending = append(s.pending, pos)
			}
		}
	}
	return nil
}

// DrainPending returns the queued water positions that are still open
// and clears the queue. The caller applies them through its own
// mutate-and-broadcast path.
func (s *Store) DrainPending() [][2]uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.pending) == 0 {
		return nil
	}
	out := make([][2]uint32, 0, len(s.pending))
	seen := make(map[[2]uint32]struct{}, len(s.pending))
	for _, pos := range s.pending {
		if _, dup := seen[pos]; dup {
			continue
		}
		seen[pos] = struct{}{}
		current := s.blocks[pos[1]*s.cfg.Width+pos[0]]
		if !current.Solid() && current != BlockWater {
			out = append(out, pos)
		}
	}
	s.pending = s.pending[:0]
	return out
}

// waterNeighbors lists the positions water spreads into: below, left,
// right.
func waterNeighbors(x, y uint32) [][2]uint32 {
	neighbors := [][2]uint32{{x + 1, y}}
	if y > 0 {
		neighbors = append(neighbors, [2]uint32{x, y - 1})
	}
	if x > 0 {
		neighbors = append(neighbors, [2]uint32{x - 1, y})
	}
	return neighbors
}

// SurfaceY finds the y just above the highest solid block in column x.
func (s *Store) SurfaceY(x uint32) uint32 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for y := s.cfg.Height; y > 0; y-- {
		if s.blocks[(y-1)*s.cfg.Width+x].Solid() {
			return y
		}
	}
	return 0
}

// SpawnPoint picks a random column inside the configured spawn range
// and places the spawn on that column's surface.
func (s *Store) SpawnPoint() (float32, float32) {
	lo := uint32(0)
	if s.cfg.SpawnX > s.cfg.SpawnRange {
		lo = s.cfg.SpawnX - s.cfg.SpawnRange
	}
	hi := s.cfg.SpawnX + s.cfg.SpawnRange
	if hi >= s.cfg.Width {
		hi = s.cfg.Width - 1
	}
	x := lo
	if hi > lo {
		x = lo + uint32(rand.Intn(int(hi-lo+1)))
	}
	return float32(x), float32(s.SurfaceY(x))
}
