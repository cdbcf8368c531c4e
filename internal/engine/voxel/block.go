// Package voxel implements the chunk core: block storage, greedy surface
// extraction with per-vertex ambient occlusion, double-buffered mesh
// publication, RLE persistence and collision shape synchronization.
package voxel

// BlockType identifies the material stored in one grid cell.
type BlockType uint8

// Block materials. BlockNone marks an empty cell.
const (
	BlockNone BlockType = iota
	BlockStone
	BlockDirt
	BlockGrass
	BlockSand
	BlockWater
	BlockSnow
	BlockWood

	blockTypeCount
)

// BlockColors maps a block type to its display color (RGBA). The mesher
// stamps the face color on every vertex of a quad.
var BlockColors = [blockTypeCount][4]float32{
	BlockNone:  {0, 0, 0, 0},
	BlockStone: {0.52, 0.52, 0.55, 1},
	BlockDirt:  {0.45, 0.30, 0.18, 1},
	BlockGrass: {0.25, 0.60, 0.20, 1},
	BlockSand:  {0.86, 0.80, 0.58, 1},
	BlockWater: {0.20, 0.40, 0.80, 1},
	BlockSnow:  {0.95, 0.95, 0.97, 1},
	BlockWood:  {0.55, 0.42, 0.25, 1},
}

// String returns a short material name for logging.
func (t BlockType) String() string {
	switch t {
	case BlockNone:
		return "none"
	case BlockStone:
		return "stone"
	case BlockDirt:
		return "dirt"
	case BlockGrass:
		return "grass"
	case BlockSand:
		return "sand"
	case BlockWater:
		return "water"
	case BlockSnow:
		return "snow"
	case BlockWood:
		return "wood"
	default:
		return "unknown"
	}
}
