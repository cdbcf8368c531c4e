package world

import (
	"bytes"
	"testing"

	"github.com/Faultbox/voxigo/internal/engine/voxel"
)

func TestGeneratorDeterministic(t *testing.T) {
	pos := ChunkPos{X: 2, Y: 0, Z: -3}

	a := NewGenerator(42).BlockData(pos)
	b := NewGenerator(42).BlockData(pos)
	if !bytes.Equal(a, b) {
		t.Error("same seed and position produced different block data")
	}

	c := NewGenerator(7).BlockData(pos)
	if bytes.Equal(a, c) {
		t.Error("different seeds produced identical block data")
	}
}

func TestGeneratorTerrainShape(t *testing.T) {
	data := NewGenerator(1).BlockData(ChunkPos{})

	var g voxel.BlockGrid
	voxel.DecodeRLE(data, &g)

	for x := 0; x < voxel.ChunkSize; x++ {
		for z := 0; z < voxel.ChunkSize; z++ {
			if b := g.Get(x, 0, z); b == voxel.BlockNone || b == voxel.BlockWater {
				t.Fatalf("column (%d,%d): bedrock level is %v, want solid ground", x, z, b)
			}
			if b := g.Get(x, voxel.ChunkSize-1, z); b != voxel.BlockNone {
				t.Fatalf("column (%d,%d): top of chunk is %v, want air", x, z, b)
			}

			// Soil never sits on air, and water never rises above sea level.
			for y := 1; y < voxel.ChunkSize; y++ {
				b := g.Get(x, y, z)
				below := g.Get(x, y-1, z)
				if b != voxel.BlockNone && b != voxel.BlockWater && below == voxel.BlockNone {
					t.Fatalf("column (%d,%d): floating %v at y=%d", x, z, b, y)
				}
				if b == voxel.BlockWater && y > seaLevel {
					t.Fatalf("column (%d,%d): water at y=%d above sea level %d", x, z, y, seaLevel)
				}
			}
		}
	}
}

func TestGeneratorSurfaceBlocks(t *testing.T) {
	tests := []struct {
		h    int
		want voxel.BlockType
	}{
		{seaLevel - 2, voxel.BlockSand},
		{seaLevel + 1, voxel.BlockSand},
		{seaLevel + 2, voxel.BlockGrass},
		{baseHeight + heightRange/2 - 2, voxel.BlockGrass},
		{baseHeight + heightRange/2 - 1, voxel.BlockSnow},
		{baseHeight + heightRange/2, voxel.BlockSnow},
	}
	g := NewGenerator(0)
	for _, tt := range tests {
		if got := g.surfaceBlock(tt.h); got != tt.want {
			t.Errorf("surfaceBlock(%d) = %v, want %v", tt.h, got, tt.want)
		}
	}
}
