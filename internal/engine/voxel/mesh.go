package voxel

// DrawMode selects how an active mesh buffer is drawn.
type DrawMode int

// Draw modes understood by the renderer.
const (
	DrawTriangles DrawMode = iota
	DrawLines
)

// VoxelVertex is the interleaved vertex layout shared by the GL upload
// and the collision shape. Position w carries the discretized ambient
// occlusion factor consumed by the shader as an alpha multiplier.
type VoxelVertex struct {
	Position [4]float32
	Normal   [3]float32
	Color    [4]float32
}

// VertexFloats is the stride of VoxelVertex in float32 components.
const VertexFloats = 11

// MeshBuffer is one side of a chunk's double buffer: vertex and index
// data plus the bookkeeping the swap protocol needs. Only the inactive
// buffer of a chunk is ever rebuilt; Activate marks a buffer published.
type MeshBuffer struct {
	Vertices []VoxelVertex
	Indices  []uint32

	// Version increments on every publication so GPU-side copies know
	// when to re-upload.
	Version uint64

	active bool
}

// ClearData drops the geometry but keeps slice capacity for the next
// rebuild.
func (m *MeshBuffer) ClearData() {
	m.Vertices = m.Vertices[:0]
	m.Indices = m.Indices[:0]
}

// Activate marks the buffer as the published side of its chunk.
func (m *MeshBuffer) Activate() {
	m.active = true
	m.Version++
}

// Deactivate marks the buffer as the rebuild target of its chunk.
func (m *MeshBuffer) Deactivate() {
	m.active = false
}

// IsActive reports whether the buffer is the published side.
func (m *MeshBuffer) IsActive() bool { return m.active }

// VertexCount returns the number of vertices in the buffer.
func (m *MeshBuffer) VertexCount() int { return len(m.Vertices) }

// IndexCount returns the number of triangle indices in the buffer.
func (m *MeshBuffer) IndexCount() int { return len(m.Indices) }

// Renderer draws a published mesh buffer. The GL implementation lives in
// voxelrender; tests substitute a recording fake.
type Renderer interface {
	DrawMesh(m *MeshBuffer, mode DrawMode)
}
