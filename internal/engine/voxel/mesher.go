package voxel

// Greedy surface extraction after Mikola Lysenko
// (http://0fps.net/2012/06/30/meshing-in-a-minecraft-game/), extended
// with per-vertex ambient occlusion sampled from the open layer in front
// of each face.

// maskCell records one exposed face inside the current sweep slice:
// which block shows through, and the occlusion weight of each quad
// corner. Cells live only for the duration of one slice.
type maskCell struct {
	block BlockType
	// Corner occlusion in {0..3}, 0 = fully occluded. Order: top left,
	// bottom left, bottom right, top right, with v as the upward axis
	// of the slice plane.
	ao [4]uint8
}

// aoAlpha discretizes corner occlusion into the vertex alpha channel.
var aoAlpha = [4]float32{0.4, 0.65, 0.85, 1.0}

// Mesher extracts a minimal quad mesh from a block grid. The slice mask
// is reused between runs, so a Mesher is not safe for concurrent use;
// distinct chunks may mesh on distinct goroutines with their own Mesher.
type Mesher struct {
	mask [ChunkSize * ChunkSize]maskCell
}

// Mesh rebuilds dst from the grid and reports whether the result is
// empty. The sweep covers the three axes in both face directions (back
// faces first, then front faces, six sweeps total); each slice is merged
// into maximal rectangles of equal material and equal corner occlusion.
func (m *Mesher) Mesh(g *BlockGrid, dst *MeshBuffer) bool {
	dst.ClearData()
	empty := true

	var x, q, du, dv [3]int

	for _, backFace := range [2]bool{true, false} {
		for d := 0; d < 3; d++ {
			u := (d + 1) % 3
			v := (d + 2) % 3

			x = [3]int{}
			q = [3]int{}
			q[d] = 1

			normal := faceNormal(d, backFace)

			// Walk the axis one slice ahead of the voxels compared, so
			// both chunk boundary planes are visited.
			for x[d] = -1; x[d] < ChunkSize; {
				n := 0
				for x[v] = 0; x[v] < ChunkSize; x[v]++ {
					for x[u] = 0; x[u] < ChunkSize; x[u]++ {
						var near, far BlockType
						if x[d] >= 0 {
							near = g.Get(x[0], x[1], x[2])
						}
						if x[d] < ChunkSize-1 {
							far = g.Get(x[0]+q[0], x[1]+q[1], x[2]+q[2])
						}

						// A face is exposed only against an empty cell;
						// the back sweep exposes the far voxel, the
						// front sweep the near one.
						cell := &m.mask[n]
						n++
						switch {
						case backFace && far != BlockNone && near == BlockNone:
							cell.block = far
							cell.ao = faceAO(g, [3]int{x[0] + q[0], x[1] + q[1], x[2] + q[2]}, u, v, d, -1)
						case !backFace && near != BlockNone && far == BlockNone:
							cell.block = near
							cell.ao = faceAO(g, [3]int{x[0], x[1], x[2]}, u, v, d, +1)
						default:
							cell.block = BlockNone
						}
					}
				}

				x[d]++

				// Greedy merge: grow each unconsumed cell first along u,
				// then along v, and emit one quad per rectangle.
				n = 0
				for j := 0; j < ChunkSize; j++ {
					for i := 0; i < ChunkSize; {
						if m.mask[n].block == BlockNone {
							i++
							n++
							continue
						}

						width := 1
						for i+width < ChunkSize && mergeable(&m.mask[n+width], &m.mask[n]) {
							width++
						}

						height := 1
					grow:
						for ; j+height < ChunkSize; height++ {
							for k := 0; k < width; k++ {
								if !mergeable(&m.mask[n+k+height*ChunkSize], &m.mask[n]) {
									break grow
								}
							}
						}

						x[u], x[v] = i, j
						du = [3]int{}
						du[u] = width
						dv = [3]int{}
						dv[v] = height

						empty = false
						appendQuad(dst,
							corner(x, [3]int{}, [3]int{}),
							corner(x, du, [3]int{}),
							corner(x, du, dv),
							corner(x, [3]int{}, dv),
							backFace, normal, &m.mask[n])

						for l := 0; l < height; l++ {
							for k := 0; k < width; k++ {
								m.mask[n+k+l*ChunkSize].block = BlockNone
							}
						}

						i += width
						n += width
					}
				}
			}
		}
	}

	return empty
}

// mergeable reports whether two mask cells can share one quad: same
// non-empty material and exactly matching corner occlusion. An occlusion
// mismatch forces a seam even inside a uniform material region; that is
// a fidelity/quad-count trade-off, not a bug.
func mergeable(a, b *maskCell) bool {
	return a.block == b.block && a.block != BlockNone && a.ao == b.ao
}

// faceNormal returns the outward axis-aligned unit normal for a sweep
// axis and direction.
func faceNormal(d int, backFace bool) [3]float32 {
	var n [3]float32
	if backFace {
		n[d] = -1
	} else {
		n[d] = 1
	}
	return n
}

// faceAO computes the four corner occlusion weights of an exposed face.
// pos is the exposed voxel; depth steps one cell along the sweep axis
// into the open layer the face looks into. The eight in-plane neighbors
// of that layer are sampled with v up and u right:
//
//	0 1 2
//	3 . 4
//	5 6 7
//
// Neighbors outside the grid read as unoccupied.
func faceAO(g *BlockGrid, pos [3]int, u, v, d, depth int) [4]uint8 {
	p := pos
	p[d] += depth

	occ := func(su, sv int) bool {
		c := p
		c[u] += su
		c[v] += sv
		return g.At(c[0], c[1], c[2]) != BlockNone
	}

	var s [8]bool
	s[0] = occ(-1, +1)
	s[1] = occ(0, +1)
	s[2] = occ(+1, +1)
	s[3] = occ(-1, 0)
	s[4] = occ(+1, 0)
	s[5] = occ(-1, -1)
	s[6] = occ(0, -1)
	s[7] = occ(+1, -1)

	return [4]uint8{
		vertexAO(s[3], s[1], s[0]), // top left
		vertexAO(s[3], s[6], s[5]), // bottom left
		vertexAO(s[4], s[6], s[7]), // bottom right
		vertexAO(s[1], s[4], s[2]), // top right
	}
}

// vertexAO weights one quad corner by its two edge-adjacent sides and
// the diagonal corner. Both sides occupied fully occludes the corner no
// matter the diagonal.
func vertexAO(side1, side2, diag bool) uint8 {
	if side1 && side2 {
		return 0
	}
	w := uint8(3)
	if side1 {
		w--
	}
	if side2 {
		w--
	}
	if diag {
		w--
	}
	return w
}

func corner(x, a, b [3]int) [3]float32 {
	return [3]float32{
		float32(x[0] + a[0] + b[0]),
		float32(x[1] + a[1] + b[1]),
		float32(x[2] + a[2] + b[2]),
	}
}

// appendQuad emits one merged rectangle as four vertices and six
// indices. The quad is re-seamed along whichever diagonal balances the
// corner occlusion better, which keeps the interpolated shading from
// going anisotropic; back and front sweeps wind in opposite order so
// both face outward.
func appendQuad(dst *MeshBuffer, bl, br, tr, tl [3]float32, backFace bool, normal [3]float32, cell *maskCell) {
	color := BlockColors[cell.block]
	fTL := aoAlpha[cell.ao[0]]
	fBL := aoAlpha[cell.ao[1]]
	fBR := aoAlpha[cell.ao[2]]
	fTR := aoAlpha[cell.ao[3]]

	base := uint32(len(dst.Vertices))

	if fTR+fBL > fTL+fBR {
		dst.Vertices = append(dst.Vertices,
			vertex(bl, fBL, normal, color),
			vertex(br, fBR, normal, color),
			vertex(tr, fTR, normal, color),
			vertex(tl, fTL, normal, color),
		)
	} else {
		dst.Vertices = append(dst.Vertices,
			vertex(tl, fTL, normal, color),
			vertex(bl, fBL, normal, color),
			vertex(br, fBR, normal, color),
			vertex(tr, fTR, normal, color),
		)
	}

	if backFace {
		dst.Indices = append(dst.Indices,
			base, base+3, base+2,
			base, base+2, base+1,
		)
	} else {
		dst.Indices = append(dst.Indices,
			base, base+1, base+2,
			base+2, base+3, base,
		)
	}
}

func vertex(p [3]float32, ao float32, n [3]float32, c [4]float32) VoxelVertex {
	return VoxelVertex{
		Position: [4]float32{p[0], p[1], p[2], ao},
		Normal:   n,
		Color:    c,
	}
}
