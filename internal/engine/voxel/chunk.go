package voxel

import (
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/voxigo/internal/engine/physics"
)

// Chunk is the unit of voxel loading, meshing and collision. It owns one
// block grid, two mesh buffers with per-buffer emptiness flags, and one
// collision record, all acquired from the shared pools at construction.
//
// Exactly one buffer is active (rendered and collided against) at any
// time; RebuildMesh only ever writes the inactive one, and
// SwapMeshBuffer is the single point where the active index flips. That
// split makes a rebuild safe on a worker goroutine while the active
// buffer is being drawn, as long as swaps are serialized against
// rendering, e.g. at a frame boundary.
type Chunk struct {
	pools *Pools

	grid   *BlockGrid
	meshes [2]*MeshBuffer
	empty  [2]bool
	active atomic.Uint32
	coll   *collisionRecord

	mesher Mesher
	loaded bool
}

// NewChunk draws a grid, two mesh buffers and a collision record from
// the pools. Pool exhaustion panics; capacity is the manager's contract.
func NewChunk(pools *Pools) *Chunk {
	c := &Chunk{pools: pools}
	c.grid = pools.grids.Acquire()
	c.meshes[0] = pools.meshes.Acquire()
	c.meshes[1] = pools.meshes.Acquire()
	c.coll = pools.collision.Acquire()

	c.empty[0], c.empty[1] = true, true
	c.coll.init()
	return c
}

// Release returns the chunk's pooled resources. The chunk must already
// be shut down and must not be used afterwards.
func (c *Chunk) Release() {
	c.grid.Reset()
	c.pools.grids.Release(c.grid)
	c.pools.meshes.Release(c.meshes[0])
	c.pools.meshes.Release(c.meshes[1])
	c.pools.collision.Release(c.coll)
	c.grid = nil
	c.meshes[0], c.meshes[1] = nil, nil
	c.coll = nil
}

func (c *Chunk) activeIndex() int { return int(c.active.Load()) }

func (c *Chunk) mustBeLoaded() {
	if !c.loaded {
		panic("voxel: chunk not loaded")
	}
}

// IsLoaded reports whether block data is resident.
func (c *Chunk) IsLoaded() bool { return c.loaded }

// Load decodes RLE block data into the grid and places the collider at
// worldPos. Loading an already loaded chunk is a programmer error.
func (c *Chunk) Load(blockData []byte, worldPos mgl32.Vec3) {
	if c.loaded {
		panic("voxel: chunk already loaded")
	}
	c.coll.object.SetWorldTransform(mgl32.Translate3D(worldPos.X(), worldPos.Y(), worldPos.Z()))
	DecodeRLE(blockData, c.grid)
	c.loaded = true
}

// Unload serializes the grid back to RLE bytes and marks the chunk
// unloaded. Unloading an unloaded chunk is a programmer error.
func (c *Chunk) Unload() []byte {
	c.mustBeLoaded()
	c.loaded = false
	return EncodeRLE(c.grid, nil)
}

// GetBlock reads a block. Out-of-bounds positions panic.
func (c *Chunk) GetBlock(x, y, z int) BlockType {
	return c.grid.Get(x, y, z)
}

// SetBlock writes a block. The edit is not visible until the next
// RebuildMesh and SwapMeshBuffer.
func (c *Chunk) SetBlock(x, y, z int, t BlockType) {
	c.mustBeLoaded()
	c.grid.Set(x, y, z, t)
}

// DestroyBlock empties a block.
func (c *Chunk) DestroyBlock(x, y, z int) {
	c.mustBeLoaded()
	c.grid.Clear(x, y, z)
}

// RebuildMesh regenerates the inactive buffer from the current grid. It
// never touches the buffer being rendered.
func (c *Chunk) RebuildMesh() {
	c.mustBeLoaded()
	inactive := 1 - c.activeIndex()
	c.empty[inactive] = c.mesher.Mesh(c.grid, c.meshes[inactive])
}

// SwapMeshBuffer publishes the freshly meshed buffer: the old active
// buffer is cleared and becomes the next rebuild target, the index
// flips, and the collision world is reconciled with the new geometry.
// Callers serialize this against Render of the same chunk.
func (c *Chunk) SwapMeshBuffer(w physics.World) {
	old := c.activeIndex()
	c.meshes[old].ClearData()
	c.meshes[old].Deactivate()

	c.active.Store(uint32(1 - old))
	c.meshes[1-old].Activate()

	c.syncCollision(w)
}

// Render draws the active buffer.
func (c *Chunk) Render(r Renderer, mode DrawMode) {
	c.mustBeLoaded()
	r.DrawMesh(c.meshes[c.activeIndex()], mode)
}

// ShutDown detaches any registered collider and clears both buffers.
// Usable from any state and idempotent.
func (c *Chunk) ShutDown(w physics.World) {
	if !c.empty[c.activeIndex()] {
		w.RemoveCollider(&c.coll.object)
	}
	for i := range c.meshes {
		c.meshes[i].ClearData()
		c.meshes[i].Deactivate()
		c.empty[i] = true
	}
	c.active.Store(0)
}
