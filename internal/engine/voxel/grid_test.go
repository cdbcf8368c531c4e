package voxel

import "testing"

func TestBlockIndexBijection(t *testing.T) {
	seen := make(map[int][3]int, BlocksPerChunk)
	for x := 0; x < ChunkSize; x++ {
		for y := 0; y < ChunkSize; y++ {
			for z := 0; z < ChunkSize; z++ {
				idx := BlockIndex(x, y, z)
				if idx < 0 || idx >= BlocksPerChunk {
					t.Fatalf("index %d out of range for (%d,%d,%d)", idx, x, y, z)
				}
				if prev, ok := seen[idx]; ok {
					t.Fatalf("index %d aliases (%d,%d,%d) and %v", idx, x, y, z, prev)
				}
				seen[idx] = [3]int{x, y, z}
			}
		}
	}
	if len(seen) != BlocksPerChunk {
		t.Errorf("expected %d distinct indices, got %d", BlocksPerChunk, len(seen))
	}
}

func TestGridSetGet(t *testing.T) {
	var g BlockGrid
	g.Set(1, 2, 3, BlockStone)
	if got := g.Get(1, 2, 3); got != BlockStone {
		t.Errorf("expected stone, got %v", got)
	}
	if got := g.Get(3, 2, 1); got != BlockNone {
		t.Errorf("expected empty at untouched position, got %v", got)
	}
	g.Clear(1, 2, 3)
	if got := g.Get(1, 2, 3); got != BlockNone {
		t.Errorf("expected empty after clear, got %v", got)
	}
}

func TestGridAtBoundary(t *testing.T) {
	var g BlockGrid
	g.Set(0, 0, 0, BlockDirt)

	cases := [][3]int{
		{-1, 0, 0}, {0, -1, 0}, {0, 0, -1},
		{ChunkSize, 0, 0}, {0, ChunkSize, 0}, {0, 0, ChunkSize},
	}
	for _, c := range cases {
		if got := g.At(c[0], c[1], c[2]); got != BlockNone {
			t.Errorf("At(%v) = %v, want empty", c, got)
		}
	}
	if got := g.At(0, 0, 0); got != BlockDirt {
		t.Errorf("At(0,0,0) = %v, want dirt", got)
	}
}

func TestGridOutOfBoundsPanics(t *testing.T) {
	var g BlockGrid
	defer func() {
		if recover() == nil {
			t.Error("expected panic on out-of-bounds Set")
		}
	}()
	g.Set(ChunkSize, 0, 0, BlockStone)
}

func TestGridReset(t *testing.T) {
	var g BlockGrid
	g.Set(5, 5, 5, BlockSand)
	g.Reset()
	if got := g.Get(5, 5, 5); got != BlockNone {
		t.Errorf("expected empty after reset, got %v", got)
	}
}
