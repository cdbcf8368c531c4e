package physics

import (
	"math"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

// CollisionObject couples a triangle-mesh shape with a world transform.
// The transform is guarded so a simulation thread can read it while the
// loader places chunks.
type CollisionObject struct {
	shape *TriangleMeshShape

	mu        sync.RWMutex
	transform mgl32.Mat4
}

// SetShape attaches the shape the object collides with.
func (o *CollisionObject) SetShape(s *TriangleMeshShape) { o.shape = s }

// Shape returns the attached shape.
func (o *CollisionObject) Shape() *TriangleMeshShape { return o.shape }

// WorldTransform returns the object's world transform.
func (o *CollisionObject) WorldTransform() mgl32.Mat4 {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.transform
}

// SetWorldTransform places the object in the world.
func (o *CollisionObject) SetWorldTransform(m mgl32.Mat4) {
	o.mu.Lock()
	o.transform = m
	o.mu.Unlock()
}

// World registers and unregisters colliders. The chunk swap protocol
// talks to this interface only, so tests substitute a recording fake.
type World interface {
	AddCollider(*CollisionObject)
	RemoveCollider(*CollisionObject)
}

// RayHit describes the nearest intersection found by RayCast.
type RayHit struct {
	Object   *CollisionObject
	Point    mgl32.Vec3
	Normal   mgl32.Vec3
	Distance float32
}

// SimWorld is the concrete collision world used by the client. Add and
// Remove are safe to call concurrently with RayCast.
type SimWorld struct {
	mu      sync.RWMutex
	objects map[*CollisionObject]struct{}
}

// NewSimWorld creates an empty collision world.
func NewSimWorld() *SimWorld {
	return &SimWorld{objects: make(map[*CollisionObject]struct{})}
}

// AddCollider registers an object. Registering twice is a no-op.
func (w *SimWorld) AddCollider(o *CollisionObject) {
	w.mu.Lock()
	w.objects[o] = struct{}{}
	w.mu.Unlock()
}

// RemoveCollider unregisters an object. Removing an absent object is a
// no-op.
func (w *SimWorld) RemoveCollider(o *CollisionObject) {
	w.mu.Lock()
	delete(w.objects, o)
	w.mu.Unlock()
}

// ColliderCount returns the number of registered objects.
func (w *SimWorld) ColliderCount() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.objects)
}

// RayCast finds the nearest triangle hit by the ray within maxDist.
// Objects are coarse-rejected by their bounding volume before the
// per-triangle test.
func (w *SimWorld) RayCast(origin, dir mgl32.Vec3, maxDist float32) (RayHit, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	best := RayHit{Distance: maxDist}
	found := false

	for o := range w.objects {
		shape := o.shape
		if shape == nil || shape.TriangleCount() == 0 {
			continue
		}

		// Chunk transforms are translation-only, so the ray moves into
		// local space by inverting the transform once per object.
		inv := o.WorldTransform().Inv()
		localOrigin := mgl32.TransformCoordinate(origin, inv)
		localDir := mgl32.TransformNormal(dir, inv)

		if !rayIntersectsAABB(localOrigin, localDir, shape.AABB(), best.Distance) {
			continue
		}

		for i := 0; i < shape.TriangleCount(); i++ {
			tri := shape.Triangle(i)
			t, ok := rayTriangle(localOrigin, localDir, tri)
			if !ok || t >= best.Distance {
				continue
			}
			e1 := tri[1].Sub(tri[0])
			e2 := tri[2].Sub(tri[0])
			best = RayHit{
				Object:   o,
				Point:    origin.Add(dir.Mul(t)),
				Normal:   e1.Cross(e2).Normalize(),
				Distance: t,
			}
			found = true
		}
	}

	return best, found
}

// rayTriangle is the Möller–Trumbore intersection test. It returns the
// ray parameter of the hit, rejecting back-parameter and near-parallel
// cases.
func rayTriangle(origin, dir mgl32.Vec3, tri [3]mgl32.Vec3) (float32, bool) {
	const eps = 1e-7

	e1 := tri[1].Sub(tri[0])
	e2 := tri[2].Sub(tri[0])

	p := dir.Cross(e2)
	det := e1.Dot(p)
	if det > -eps && det < eps {
		return 0, false
	}
	invDet := 1 / det

	s := origin.Sub(tri[0])
	u := s.Dot(p) * invDet
	if u < 0 || u > 1 {
		return 0, false
	}

	q := s.Cross(e1)
	v := dir.Dot(q) * invDet
	if v < 0 || u+v > 1 {
		return 0, false
	}

	t := e2.Dot(q) * invDet
	if t < eps {
		return 0, false
	}
	return t, true
}

// rayIntersectsAABB is a slab test against the shape-local bounding box.
func rayIntersectsAABB(origin, dir mgl32.Vec3, box AABB, maxDist float32) bool {
	tMin := float32(0)
	tMax := maxDist

	for axis := 0; axis < 3; axis++ {
		d := dir[axis]
		if d > -1e-9 && d < 1e-9 {
			if origin[axis] < box.Min[axis] || origin[axis] > box.Max[axis] {
				return false
			}
			continue
		}
		inv := 1 / d
		t0 := (box.Min[axis] - origin[axis]) * inv
		t1 := (box.Max[axis] - origin[axis]) * inv
		if t0 > t1 {
			t0, t1 = t1, t0
		}
		tMin = float32(math.Max(float64(tMin), float64(t0)))
		tMax = float32(math.Min(float64(tMax), float64(t1)))
		if tMin > tMax {
			return false
		}
	}
	return true
}
