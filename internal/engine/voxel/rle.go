package voxel

// The chunk persistence format is a sequence of (type, runLength) byte
// pairs. Rows are scanned y outermost, x middle, z innermost; a run never
// crosses a z-row boundary, and a run longer than 255 blocks is split
// into consecutive pairs of the same type. The stream ends when the full
// block count has been covered.

// EncodeRLE appends the run-length encoding of the grid to out and
// returns the extended slice.
func EncodeRLE(g *BlockGrid, out []byte) []byte {
	for y := 0; y < ChunkSize; y++ {
		for x := 0; x < ChunkSize; x++ {
			base := BlockIndex(x, y, 0)
			for z := 0; z < ChunkSize; {
				t := g.blocks[base+z]
				n := 1
				for z+n < ChunkSize && n < 255 && g.blocks[base+z+n] == t {
					n++
				}
				out = append(out, byte(t), byte(n))
				z += n
			}
		}
	}
	return out
}

// DecodeRLE fills the grid from data produced by EncodeRLE. A buffer
// that does not cover exactly the full grid violates the byte-buffer
// contract and panics; there is no recoverable parse-error path.
func DecodeRLE(data []byte, g *BlockGrid) {
	i := 0
	for y := 0; y < ChunkSize; y++ {
		for x := 0; x < ChunkSize; x++ {
			base := BlockIndex(x, y, 0)
			for z := 0; z < ChunkSize; {
				if i+1 >= len(data) {
					panic("voxel: truncated RLE block data")
				}
				t := BlockType(data[i])
				n := int(data[i+1])
				i += 2
				if n == 0 || z+n > ChunkSize {
					panic("voxel: RLE run crosses row boundary")
				}
				for k := 0; k < n; k++ {
					g.blocks[base+z+k] = t
				}
				z += n
			}
		}
	}
	if i != len(data) {
		panic("voxel: trailing bytes after RLE block data")
	}
}
