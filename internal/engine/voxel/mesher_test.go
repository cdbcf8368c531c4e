package voxel

import (
	"reflect"
	"testing"
)

func meshOf(t *testing.T, g *BlockGrid) (*MeshBuffer, bool) {
	t.Helper()
	var m Mesher
	var buf MeshBuffer
	empty := m.Mesh(g, &buf)
	return &buf, empty
}

func TestMeshEmptyGrid(t *testing.T) {
	var g BlockGrid
	buf, empty := meshOf(t, &g)
	if !empty {
		t.Error("empty grid should report an empty mesh")
	}
	if buf.VertexCount() != 0 || buf.IndexCount() != 0 {
		t.Errorf("empty grid emitted %d vertices, %d indices", buf.VertexCount(), buf.IndexCount())
	}
}

func TestMeshSingleVoxel(t *testing.T) {
	var g BlockGrid
	g.Set(5, 5, 5, BlockStone)

	buf, empty := meshOf(t, &g)
	if empty {
		t.Fatal("single voxel should not be empty")
	}
	// Six faces, one quad each.
	if buf.VertexCount() != 24 {
		t.Errorf("expected 24 vertices, got %d", buf.VertexCount())
	}
	if buf.IndexCount() != 36 {
		t.Errorf("expected 36 indices, got %d", buf.IndexCount())
	}
	// Nothing occludes an isolated voxel: every AO alpha is fully open.
	for i, v := range buf.Vertices {
		if v.Position[3] != 1.0 {
			t.Errorf("vertex %d AO alpha = %v, want 1.0", i, v.Position[3])
		}
		if v.Color != BlockColors[BlockStone] {
			t.Errorf("vertex %d color = %v, want stone", i, v.Color)
		}
	}
}

func TestMeshSlabMergesFaces(t *testing.T) {
	var g BlockGrid
	for x := 0; x < ChunkSize; x++ {
		for z := 0; z < ChunkSize; z++ {
			g.Set(x, 0, z, BlockStone)
		}
	}

	buf, empty := meshOf(t, &g)
	if empty {
		t.Fatal("slab should not be empty")
	}
	// Every face of the slab is a uniform open plane, so the merge
	// collapses each of the six sides to exactly one quad.
	if buf.VertexCount() != 24 {
		t.Errorf("expected 24 vertices, got %d", buf.VertexCount())
	}
	if buf.IndexCount() != 36 {
		t.Errorf("expected 36 indices, got %d", buf.IndexCount())
	}
}

func TestMeshMaterialSeam(t *testing.T) {
	var g BlockGrid
	for x := 0; x < ChunkSize; x++ {
		mat := BlockStone
		if x >= ChunkSize/2 {
			mat = BlockDirt
		}
		for z := 0; z < ChunkSize; z++ {
			g.Set(x, 0, z, mat)
		}
	}

	buf, _ := meshOf(t, &g)
	// The material border splits top, bottom and both z sides in two;
	// the x sides stay single-material: 10 quads total.
	if buf.VertexCount() != 40 {
		t.Errorf("expected 40 vertices, got %d", buf.VertexCount())
	}
	if buf.IndexCount() != 60 {
		t.Errorf("expected 60 indices, got %d", buf.IndexCount())
	}

	// Merge soundness: each quad carries exactly one material color.
	for q := 0; q < buf.VertexCount()/4; q++ {
		c := buf.Vertices[q*4].Color
		for k := 1; k < 4; k++ {
			if buf.Vertices[q*4+k].Color != c {
				t.Fatalf("quad %d mixes colors", q)
			}
		}
	}
}

func TestMeshBuriedVoxelInvisible(t *testing.T) {
	solid := func(center BlockType) *BlockGrid {
		var g BlockGrid
		for x := 10; x <= 12; x++ {
			for y := 10; y <= 12; y++ {
				for z := 10; z <= 12; z++ {
					g.Set(x, y, z, BlockStone)
				}
			}
		}
		g.Set(11, 11, 11, center)
		return &g
	}

	withStone, _ := meshOf(t, solid(BlockStone))
	withDirt, _ := meshOf(t, solid(BlockDirt))

	// A voxel enclosed on all six faces contributes nothing, whatever
	// its material.
	if !reflect.DeepEqual(withStone.Vertices, withDirt.Vertices) {
		t.Error("buried voxel changed the vertex buffer")
	}
	if !reflect.DeepEqual(withStone.Indices, withDirt.Indices) {
		t.Error("buried voxel changed the index buffer")
	}
}

func TestMeshDeterministic(t *testing.T) {
	var g BlockGrid
	for x := 0; x < 8; x++ {
		for y := 0; y < 4; y++ {
			for z := 0; z < 8; z++ {
				if (x+y+z)%3 != 0 {
					g.Set(x, y, z, BlockGrass)
				}
			}
		}
	}

	first, _ := meshOf(t, &g)
	second, _ := meshOf(t, &g)

	if !reflect.DeepEqual(first.Vertices, second.Vertices) {
		t.Error("vertex buffers differ between runs")
	}
	if !reflect.DeepEqual(first.Indices, second.Indices) {
		t.Error("index buffers differ between runs")
	}
}

func TestVertexAO(t *testing.T) {
	cases := []struct {
		side1, side2, diag bool
		want               uint8
	}{
		{false, false, false, 3},
		{true, false, false, 2},
		{false, true, false, 2},
		{false, false, true, 2},
		{true, false, true, 1},
		{false, true, true, 1},
		{true, true, false, 0},
		// Both sides occupied occludes fully regardless of the diagonal.
		{true, true, true, 0},
	}
	for _, c := range cases {
		if got := vertexAO(c.side1, c.side2, c.diag); got != c.want {
			t.Errorf("vertexAO(%v,%v,%v) = %d, want %d", c.side1, c.side2, c.diag, got, c.want)
		}
	}
}

func TestFaceAONeighborWeights(t *testing.T) {
	var g BlockGrid
	// Exposed voxel at (5,5,5); its +y face looks into the y=6 plane.
	// For d=1 the plane axes are u=z, v=x.
	g.Set(5, 5, 5, BlockStone)
	g.Set(5, 6, 6, BlockStone) // u+1: right side
	g.Set(6, 6, 5, BlockStone) // v+1: top side

	ao := faceAO(&g, [3]int{5, 5, 5}, 2, 0, 1, +1)

	want := [4]uint8{
		2, // top left: top side occupied
		3, // bottom left: open
		2, // bottom right: right side occupied
		0, // top right: both sides occupied
	}
	if ao != want {
		t.Errorf("faceAO = %v, want %v", ao, want)
	}
	for _, w := range ao {
		if w > 3 {
			t.Errorf("AO weight %d out of range", w)
		}
	}
}

func TestMeshAOSeam(t *testing.T) {
	var g BlockGrid
	// A flat 2x1 stone pad with one occluder resting on a corner of the
	// first cell. The occluder skews that cell's top-face AO, so the two
	// pad cells must not merge into one quad on top.
	g.Set(10, 0, 10, BlockStone)
	g.Set(10, 0, 11, BlockStone)
	g.Set(10, 1, 9, BlockStone) // sits beside the top face of (10,0,10)

	buf, _ := meshOf(t, &g)

	// Count top-face quads of the pad (normal +y at height 1; the
	// occluder's own top face sits at height 2 and is excluded).
	topQuads := 0
	for q := 0; q < buf.VertexCount()/4; q++ {
		v := buf.Vertices[q*4]
		if v.Normal == [3]float32{0, 1, 0} && v.Position[1] == 1 {
			topQuads++
		}
	}
	if topQuads != 2 {
		t.Errorf("expected the occlusion seam to split the pad top into 2 quads, got %d", topQuads)
	}
}
