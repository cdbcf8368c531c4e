package voxel

import "fmt"

// Chunk dimensions. ChunkSize is the edge length of the cubic block grid.
const (
	ChunkSize      = 32
	BlocksPerChunk = ChunkSize * ChunkSize * ChunkSize
)

// BlockIndex maps a chunk-local position to its slot in the flat block
// array. The axis order (x major, y middle, z minor) is shared by the RLE
// codec and the mesh sweep; the three must agree or geometry and occlusion
// go inconsistent. Out-of-bounds positions are a programmer error.
func BlockIndex(x, y, z int) int {
	if uint(x) >= ChunkSize || uint(y) >= ChunkSize || uint(z) >= ChunkSize {
		panic(fmt.Sprintf("voxel: block position (%d,%d,%d) out of bounds", x, y, z))
	}
	return x*ChunkSize*ChunkSize + y*ChunkSize + z
}

// BlockGrid stores the block types of one chunk. Grids are pooled; a
// fresh grid from NewPools reads as all-empty.
type BlockGrid struct {
	blocks [BlocksPerChunk]BlockType
}

// Get returns the block at a chunk-local position.
func (g *BlockGrid) Get(x, y, z int) BlockType {
	return g.blocks[BlockIndex(x, y, z)]
}

// Set writes the block at a chunk-local position.
func (g *BlockGrid) Set(x, y, z int, t BlockType) {
	g.blocks[BlockIndex(x, y, z)] = t
}

// Clear empties the block at a chunk-local position.
func (g *BlockGrid) Clear(x, y, z int) {
	g.blocks[BlockIndex(x, y, z)] = BlockNone
}

// At is the boundary-tolerant read used by the mesher and its occlusion
// sampling: positions outside the chunk read as empty.
func (g *BlockGrid) At(x, y, z int) BlockType {
	if uint(x) >= ChunkSize || uint(y) >= ChunkSize || uint(z) >= ChunkSize {
		return BlockNone
	}
	return g.blocks[x*ChunkSize*ChunkSize+y*ChunkSize+z]
}

// Reset empties every cell.
func (g *BlockGrid) Reset() {
	clear(g.blocks[:])
}
