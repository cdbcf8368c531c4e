package voxel

import "fmt"

// Pool hands out pointers into a preallocated slot arena. Capacity is
// fixed at construction and exhaustion is a fatal resource condition:
// there is no backing-store fallback, so running out panics instead of
// returning an error to retry.
type Pool[T any] struct {
	name  string
	slots []T
	free  []*T
}

// NewPool allocates an arena of capacity slots.
func NewPool[T any](name string, capacity int) *Pool[T] {
	p := &Pool[T]{
		name:  name,
		slots: make([]T, capacity),
		free:  make([]*T, 0, capacity),
	}
	for i := capacity - 1; i >= 0; i-- {
		p.free = append(p.free, &p.slots[i])
	}
	return p
}

// Acquire takes a free slot.
func (p *Pool[T]) Acquire() *T {
	if len(p.free) == 0 {
		panic(fmt.Sprintf("voxel: %s pool exhausted (capacity %d)", p.name, len(p.slots)))
	}
	t := p.free[len(p.free)-1]
	p.free = p.free[:len(p.free)-1]
	return t
}

// Release returns a slot to the pool. The caller must not keep using it.
func (p *Pool[T]) Release(t *T) {
	p.free = append(p.free, t)
}

// Capacity returns the arena size.
func (p *Pool[T]) Capacity() int { return len(p.slots) }

// Available returns the number of free slots.
func (p *Pool[T]) Available() int { return len(p.free) }

// Pools bundles the fixed-capacity arenas behind every chunk: one grid
// and one collision record per chunk, two mesh buffers per chunk. A
// single Pools instance is owned by the chunk manager and injected into
// its chunks; the pools are not internally synchronized, so acquire and
// release stay on the manager's goroutine.
type Pools struct {
	grids     *Pool[BlockGrid]
	meshes    *Pool[MeshBuffer]
	collision *Pool[collisionRecord]
}

// NewPools sizes the arenas for chunkCapacity simultaneous chunks.
func NewPools(chunkCapacity int) *Pools {
	return &Pools{
		grids:     NewPool[BlockGrid]("grid", chunkCapacity),
		meshes:    NewPool[MeshBuffer]("mesh", chunkCapacity*2),
		collision: NewPool[collisionRecord]("collision", chunkCapacity),
	}
}

// ChunkCapacity returns how many chunks the pools can back at once.
func (p *Pools) ChunkCapacity() int { return p.grids.Capacity() }
