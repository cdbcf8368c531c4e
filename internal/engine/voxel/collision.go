package voxel

import (
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/voxigo/internal/engine/physics"
)

// collisionRecord ties a chunk to its physics-world registration: one
// shape rebuilt in place on every publish, one object carrying the world
// transform. Records are pooled alongside grids and mesh buffers.
type collisionRecord struct {
	shape  physics.TriangleMeshShape
	object physics.CollisionObject
}

func (r *collisionRecord) init() {
	r.object.SetShape(&r.shape)
	r.shape.SetPremadeAABB(mgl32.Vec3{}, mgl32.Vec3{ChunkSize, ChunkSize, ChunkSize})
}

// syncCollision reconciles the physics world with the buffer that just
// became active. The transition is decided by the emptiness pair of the
// previous and the new active buffer: nothing happens while both are
// empty, a first non-empty mesh registers the collider, a repeat rebuild
// only swaps the shape data in place, and going empty unregisters while
// keeping the bounding volume for reuse.
func (c *Chunk) syncCollision(w physics.World) {
	active := c.activeIndex()
	mesh := c.meshes[active]
	wasEmpty := c.empty[1-active]

	if !c.empty[active] && mesh.VertexCount() > 0 {
		data := unsafe.Slice((*float32)(unsafe.Pointer(&mesh.Vertices[0])), len(mesh.Vertices)*VertexFloats)
		c.coll.shape.Rebuild(data, VertexFloats, mesh.Indices)
		if wasEmpty {
			w.AddCollider(&c.coll.object)
		}
	} else if !wasEmpty {
		w.RemoveCollider(&c.coll.object)
	}
}
