package world

import (
	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/Faultbox/voxigo/internal/engine/voxel"
)

// Terrain shaping constants, in blocks.
const (
	seaLevel    = 8
	baseHeight  = 10
	heightRange = 14
	noiseScale  = 1.0 / 48.0
)

// Generator produces block data for chunks the store has never seen:
// simplex-noise heightmap terrain with water filling the low ground.
type Generator struct {
	noise opensimplex.Noise
}

// NewGenerator seeds the terrain noise.
func NewGenerator(seed int64) *Generator {
	return &Generator{noise: opensimplex.New(seed)}
}

// BlockData generates and RLE-encodes the blocks of one chunk.
func (g *Generator) BlockData(pos ChunkPos) []byte {
	var grid voxel.BlockGrid

	baseX := pos.X * voxel.ChunkSize
	baseY := pos.Y * voxel.ChunkSize
	baseZ := pos.Z * voxel.ChunkSize

	for x := 0; x < voxel.ChunkSize; x++ {
		for z := 0; z < voxel.ChunkSize; z++ {
			h := g.surfaceHeight(baseX+x, baseZ+z)

			for y := 0; y < voxel.ChunkSize; y++ {
				wy := baseY + y
				switch {
				case wy < h-3:
					grid.Set(x, y, z, voxel.BlockStone)
				case wy < h:
					grid.Set(x, y, z, voxel.BlockDirt)
				case wy == h:
					grid.Set(x, y, z, g.surfaceBlock(h))
				case wy <= seaLevel:
					grid.Set(x, y, z, voxel.BlockWater)
				}
			}
		}
	}

	return voxel.EncodeRLE(&grid, nil)
}

// surfaceHeight returns the terrain height at a world column.
func (g *Generator) surfaceHeight(wx, wz int) int {
	n := g.noise.Eval2(float64(wx)*noiseScale, float64(wz)*noiseScale)
	return baseHeight + int(n*heightRange/2)
}

// surfaceBlock picks the top cover by altitude: sand at the shoreline,
// snow on the peaks, grass in between.
func (g *Generator) surfaceBlock(h int) voxel.BlockType {
	switch {
	case h <= seaLevel+1:
		return voxel.BlockSand
	case h >= baseHeight+heightRange/2-1:
		return voxel.BlockSnow
	default:
		return voxel.BlockGrass
	}
}
