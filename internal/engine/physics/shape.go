// Package physics provides the collision world that voxel chunks publish
// their triangle meshes into: indexed triangle-mesh shapes, collision
// objects with world transforms, and ray casting against the registered
// set.
package physics

import (
	"github.com/go-gl/mathgl/mgl32"
)

// AABB is an axis-aligned bounding box in shape-local space.
type AABB struct {
	Min, Max mgl32.Vec3
}

// MotionState exposes an object's world transform to whatever simulates
// or renders it: read on one side, written on the other.
type MotionState interface {
	WorldTransform() mgl32.Mat4
	SetWorldTransform(mgl32.Mat4)
}

// TriangleMeshShape is an indexed triangle list over interleaved float32
// vertex data. VertexStride counts float32 components per vertex; the
// position occupies the first three. The slices are referenced, not
// copied, so the owner keeps them alive while the shape is registered.
type TriangleMeshShape struct {
	vertices []float32
	stride   int
	indices  []uint32
	aabb     AABB
}

// SetPremadeAABB fixes the shape's bounding volume. Chunk shapes use the
// chunk bounds so the box survives in-place mesh rebuilds.
func (s *TriangleMeshShape) SetPremadeAABB(min, max mgl32.Vec3) {
	s.aabb = AABB{Min: min, Max: max}
}

// AABB returns the shape-local bounding volume.
func (s *TriangleMeshShape) AABB() AABB { return s.aabb }

// Rebuild replaces the indexed mesh in place. Strides that cannot hold a
// position and index counts that do not form whole triangles are
// programmer errors.
func (s *TriangleMeshShape) Rebuild(vertices []float32, vertexStride int, indices []uint32) {
	if vertexStride < 3 {
		panic("physics: vertex stride smaller than a position")
	}
	if len(indices)%3 != 0 {
		panic("physics: index count not a multiple of three")
	}
	s.vertices = vertices
	s.stride = vertexStride
	s.indices = indices
}

// TriangleCount returns how many triangles the shape holds.
func (s *TriangleMeshShape) TriangleCount() int { return len(s.indices) / 3 }

// Triangle returns the corners of triangle i in shape-local space.
func (s *TriangleMeshShape) Triangle(i int) [3]mgl32.Vec3 {
	var tri [3]mgl32.Vec3
	for c := 0; c < 3; c++ {
		off := int(s.indices[i*3+c]) * s.stride
		tri[c] = mgl32.Vec3{s.vertices[off], s.vertices[off+1], s.vertices[off+2]}
	}
	return tri
}
