// Package world manages the grid of loaded chunks: pools, persistence,
// terrain generation, view-distance streaming and the rebuild/swap
// cadence that keeps rendering and collision in step with edits.
package world

import (
	"fmt"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
	lru "github.com/hashicorp/golang-lru"
	"go.uber.org/zap"

	"github.com/Faultbox/voxigo/internal/engine/physics"
	"github.com/Faultbox/voxigo/internal/engine/voxel"
	"github.com/Faultbox/voxigo/internal/logger"
)

// ChunkPos addresses a chunk in the world grid.
type ChunkPos struct {
	X, Y, Z int
}

// Origin returns the world position of the chunk's (0,0,0) corner.
func (p ChunkPos) Origin() mgl32.Vec3 {
	return mgl32.Vec3{
		float32(p.X * voxel.ChunkSize),
		float32(p.Y * voxel.ChunkSize),
		float32(p.Z * voxel.ChunkSize),
	}
}

// ChunkPosAt returns the chunk containing a world-space block position.
func ChunkPosAt(x, y, z int) ChunkPos {
	return ChunkPos{floorDiv(x), floorDiv(y), floorDiv(z)}
}

func floorDiv(v int) int {
	if v < 0 {
		return (v - voxel.ChunkSize + 1) / voxel.ChunkSize
	}
	return v / voxel.ChunkSize
}

// MeshRenderer is what Render needs from the GL layer: a per-chunk model
// transform and a mesh draw call.
type MeshRenderer interface {
	voxel.Renderer
	SetModel(model mgl32.Mat4)
}

// Config sizes the manager.
type Config struct {
	Seed          int64
	ViewDistance  int // chunks in each horizontal direction
	ChunkCapacity int
	DBPath        string
}

// Manager owns the chunk pools and decides when chunks load, unload,
// remesh and swap. Rebuild may run on one worker goroutine; everything
// else belongs to the main goroutine, with SwapPending as the frame
// boundary publication point.
type Manager struct {
	cfg   Config
	pools *voxel.Pools
	phys  physics.World
	store *Store
	gen   *Generator
	cache *lru.Cache // ChunkPos -> []byte, recently evicted block data

	mu         sync.Mutex
	chunks     map[ChunkPos]*voxel.Chunk
	dirty      []ChunkPos
	dirtySet   map[ChunkPos]struct{}
	pending    []ChunkPos
	rebuilding map[ChunkPos]struct{}

	// Serializes grid access between block edits and the rebuild
	// worker; mesh buffers need no lock thanks to the double buffer.
	gridMu sync.Mutex
}

// NewManager opens the chunk store and sizes the pools.
func NewManager(cfg Config, phys physics.World) (*Manager, error) {
	store, err := OpenStore(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("chunk store: %w", err)
	}
	cache, err := lru.New(cfg.ChunkCapacity * 4)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("chunk cache: %w", err)
	}

	logger.Info("chunk manager ready",
		zap.Int("view_distance", cfg.ViewDistance),
		zap.Int("chunk_capacity", cfg.ChunkCapacity),
		zap.Int64("seed", cfg.Seed),
	)

	return &Manager{
		cfg:        cfg,
		pools:      voxel.NewPools(cfg.ChunkCapacity),
		phys:       phys,
		store:      store,
		gen:        NewGenerator(cfg.Seed),
		cache:      cache,
		chunks:     make(map[ChunkPos]*voxel.Chunk),
		dirtySet:   make(map[ChunkPos]struct{}),
		rebuilding: make(map[ChunkPos]struct{}),
	}, nil
}

// Ensure loads every chunk within the view distance of center and
// unloads the rest. Chunks with an in-flight rebuild stay resident until
// the next call.
func (m *Manager) Ensure(center mgl32.Vec3) {
	cp := ChunkPosAt(int(center.X()), 0, int(center.Z()))

	wanted := make(map[ChunkPos]struct{})
	for dx := -m.cfg.ViewDistance; dx <= m.cfg.ViewDistance; dx++ {
		for dz := -m.cfg.ViewDistance; dz <= m.cfg.ViewDistance; dz++ {
			wanted[ChunkPos{cp.X + dx, 0, cp.Z + dz}] = struct{}{}
		}
	}

	m.mu.Lock()
	var evict []ChunkPos
	for pos := range m.chunks {
		if _, keep := wanted[pos]; keep {
			continue
		}
		if m.busy(pos) {
			continue
		}
		evict = append(evict, pos)
	}
	m.mu.Unlock()

	for _, pos := range evict {
		m.unloadChunk(pos)
	}
	for pos := range wanted {
		m.mu.Lock()
		_, loaded := m.chunks[pos]
		full := len(m.chunks) >= m.cfg.ChunkCapacity
		m.mu.Unlock()
		if loaded {
			continue
		}
		if full {
			// Evicted chunks may still be mid-rebuild; retry next call.
			logger.Warn("chunk capacity reached, deferring load", zap.Any("pos", pos))
			continue
		}
		m.loadChunk(pos)
	}
}

// busy reports whether a chunk is queued or mid-rebuild. Callers hold mu.
func (m *Manager) busy(pos ChunkPos) bool {
	if _, ok := m.dirtySet[pos]; ok {
		return true
	}
	if _, ok := m.rebuilding[pos]; ok {
		return true
	}
	for _, p := range m.pending {
		if p == pos {
			return true
		}
	}
	return false
}

func (m *Manager) loadChunk(pos ChunkPos) {
	data := m.blockData(pos)

	c := voxel.NewChunk(m.pools)
	c.Load(data, pos.Origin())

	m.mu.Lock()
	m.chunks[pos] = c
	m.markDirtyLocked(pos)
	m.mu.Unlock()
}

func (m *Manager) unloadChunk(pos ChunkPos) {
	m.mu.Lock()
	c, ok := m.chunks[pos]
	if ok {
		delete(m.chunks, pos)
	}
	m.mu.Unlock()
	if !ok {
		return
	}

	c.ShutDown(m.phys)
	data := c.Unload()
	c.Release()

	m.cache.Add(pos, data)
	if err := m.store.Put(pos, data); err != nil {
		logger.Error("storing chunk", zap.Any("pos", pos), zap.Error(err))
	}
}

// blockData resolves a chunk's blocks: recently evicted cache first,
// then the store, then fresh terrain.
func (m *Manager) blockData(pos ChunkPos) []byte {
	if v, ok := m.cache.Get(pos); ok {
		return v.([]byte)
	}
	data, err := m.store.Get(pos)
	if err != nil {
		logger.Error("reading chunk", zap.Any("pos", pos), zap.Error(err))
	}
	if data != nil {
		return data
	}
	return m.gen.BlockData(pos)
}

func (m *Manager) markDirtyLocked(pos ChunkPos) {
	if _, ok := m.dirtySet[pos]; ok {
		return
	}
	m.dirtySet[pos] = struct{}{}
	m.dirty = append(m.dirty, pos)
}

// Rebuild drains the dirty queue, remeshing each chunk. Rebuilding only
// writes inactive buffers, so this may run on a worker goroutine
// concurrently with rendering; the results wait for SwapPending.
func (m *Manager) Rebuild() {
	for {
		m.mu.Lock()
		if len(m.dirty) == 0 {
			m.mu.Unlock()
			return
		}
		pos := m.dirty[0]
		m.dirty = m.dirty[1:]
		delete(m.dirtySet, pos)
		c, ok := m.chunks[pos]
		if ok {
			m.rebuilding[pos] = struct{}{}
		}
		m.mu.Unlock()
		if !ok {
			continue
		}

		m.gridMu.Lock()
		c.RebuildMesh()
		m.gridMu.Unlock()

		m.mu.Lock()
		delete(m.rebuilding, pos)
		m.markPendingLocked(pos)
		m.mu.Unlock()
	}
}

// markPendingLocked queues a chunk for publication at most once: a
// duplicate swap would flip the chunk back to its stale buffer. Callers
// hold mu.
func (m *Manager) markPendingLocked(pos ChunkPos) {
	for _, p := range m.pending {
		if p == pos {
			return
		}
	}
	m.pending = append(m.pending, pos)
}

// SwapPending publishes every rebuilt chunk and reconciles its collider.
// Must run on the consumer side, serialized against Render — in the
// client that means once per frame before drawing.
//
// A chunk re-dirtied after its rebuild finished may already be under the
// worker again when its turn comes; swapping then would publish the
// buffer the worker is writing. Holding mu across the check and the swap
// excludes the worker's rebuilding insert, so each chunk is either
// swapped before its next rebuild starts or skipped and re-queued by the
// worker when that rebuild completes.
func (m *Manager) SwapPending() {
	m.mu.Lock()
	pending := m.pending
	m.pending = nil
	m.mu.Unlock()

	for _, pos := range pending {
		m.mu.Lock()
		c, ok := m.chunks[pos]
		if _, building := m.rebuilding[pos]; ok && !building {
			c.SwapMeshBuffer(m.phys)
		}
		m.mu.Unlock()
	}
}

// Render draws every loaded chunk's active buffer.
func (m *Manager) Render(r MeshRenderer, mode voxel.DrawMode) {
	m.mu.Lock()
	chunks := make(map[ChunkPos]*voxel.Chunk, len(m.chunks))
	for pos, c := range m.chunks {
		chunks[pos] = c
	}
	m.mu.Unlock()

	for pos, c := range chunks {
		o := pos.Origin()
		r.SetModel(mgl32.Translate3D(o.X(), o.Y(), o.Z()))
		c.Render(r, mode)
	}
}

// GetBlockAt reads a block at world coordinates. The second result is
// false when the containing chunk is not loaded.
func (m *Manager) GetBlockAt(x, y, z int) (voxel.BlockType, bool) {
	pos := ChunkPosAt(x, y, z)
	m.mu.Lock()
	c, ok := m.chunks[pos]
	m.mu.Unlock()
	if !ok {
		return voxel.BlockNone, false
	}
	o := pos.Origin()
	return c.GetBlock(x-int(o.X()), y-int(o.Y()), z-int(o.Z())), true
}

// SetBlockAt writes a block at world coordinates and queues the chunk
// for remeshing. Returns false when the containing chunk is not loaded.
func (m *Manager) SetBlockAt(x, y, z int, t voxel.BlockType) bool {
	return m.editAt(x, y, z, func(c *voxel.Chunk, lx, ly, lz int) {
		c.SetBlock(lx, ly, lz, t)
	})
}

// DestroyBlockAt empties a block at world coordinates and queues the
// chunk for remeshing.
func (m *Manager) DestroyBlockAt(x, y, z int) bool {
	return m.editAt(x, y, z, func(c *voxel.Chunk, lx, ly, lz int) {
		c.DestroyBlock(lx, ly, lz)
	})
}

func (m *Manager) editAt(x, y, z int, edit func(c *voxel.Chunk, lx, ly, lz int)) bool {
	pos := ChunkPosAt(x, y, z)
	m.mu.Lock()
	c, ok := m.chunks[pos]
	m.mu.Unlock()
	if !ok {
		return false
	}

	o := pos.Origin()
	m.gridMu.Lock()
	edit(c, x-int(o.X()), y-int(o.Y()), z-int(o.Z()))
	m.gridMu.Unlock()

	m.mu.Lock()
	m.markDirtyLocked(pos)
	m.mu.Unlock()
	return true
}

// Walkable reports whether a loaded column offers a standable surface:
// a dry solid block with head room above it. Used by the pathfinder.
func (m *Manager) Walkable(x, z int) bool {
	for y := voxel.ChunkSize - 1; y >= 0; y-- {
		b, ok := m.GetBlockAt(x, y, z)
		if !ok {
			return false
		}
		if b == voxel.BlockNone {
			continue
		}
		if b == voxel.BlockWater {
			return false
		}
		head, _ := m.GetBlockAt(x, y+1, z)
		above, _ := m.GetBlockAt(x, y+2, z)
		return head == voxel.BlockNone && above == voxel.BlockNone
	}
	return false
}

// SurfacePathFinder builds an A* pathfinder over the walkable surface
// of the view area around center, matching the region Ensure keeps
// loaded for that position.
func (m *Manager) SurfacePathFinder(center mgl32.Vec3) *PathFinder {
	cp := ChunkPosAt(int(center.X()), 0, int(center.Z()))
	span := (2*m.cfg.ViewDistance + 1) * voxel.ChunkSize
	minX := (cp.X - m.cfg.ViewDistance) * voxel.ChunkSize
	minZ := (cp.Z - m.cfg.ViewDistance) * voxel.ChunkSize
	return NewPathFinder(m.Walkable, minX, minZ, span, span)
}

// ChunkCount returns how many chunks are resident.
func (m *Manager) ChunkCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.chunks)
}

// Close persists every resident chunk and closes the store.
func (m *Manager) Close() error {
	m.mu.Lock()
	var all []ChunkPos
	for pos := range m.chunks {
		all = append(all, pos)
	}
	m.mu.Unlock()

	for _, pos := range all {
		m.unloadChunk(pos)
	}
	return m.store.Close()
}
