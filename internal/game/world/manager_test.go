package world

import (
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/voxigo/internal/engine/physics"
	"github.com/Faultbox/voxigo/internal/engine/voxel"
)

type drawRecorder struct {
	models  []mgl32.Mat4
	buffers []*voxel.MeshBuffer
	draws   int
}

func (r *drawRecorder) SetModel(m mgl32.Mat4) { r.models = append(r.models, m) }

func (r *drawRecorder) DrawMesh(m *voxel.MeshBuffer, mode voxel.DrawMode) {
	r.buffers = append(r.buffers, m)
	r.draws++
}

// activeBuffer returns the mesh buffer a chunk currently renders from.
func activeBuffer(t *testing.T, m *Manager, pos ChunkPos) *voxel.MeshBuffer {
	t.Helper()
	r := &drawRecorder{}
	m.Render(r, voxel.DrawTriangles)
	o := pos.Origin()
	for i, model := range r.models {
		if model.At(0, 3) == o.X() && model.At(1, 3) == o.Y() && model.At(2, 3) == o.Z() {
			return r.buffers[i]
		}
	}
	t.Fatalf("chunk %v not rendered", pos)
	return nil
}

func newTestManager(t *testing.T, dbPath string) (*Manager, *physics.SimWorld) {
	t.Helper()
	if dbPath == "" {
		dbPath = filepath.Join(t.TempDir(), "world.db")
	}
	phys := physics.NewSimWorld()
	m, err := NewManager(Config{
		Seed:          1,
		ViewDistance:  1,
		ChunkCapacity: 16,
		DBPath:        dbPath,
	}, phys)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	t.Cleanup(func() { m.Close() })
	return m, phys
}

// settle runs a full frame's worth of chunk work synchronously.
func settle(m *Manager) {
	m.Rebuild()
	m.SwapPending()
}

func TestManagerEnsureLoadsViewDistance(t *testing.T) {
	m, phys := newTestManager(t, "")

	m.Ensure(mgl32.Vec3{0, 0, 0})
	if got := m.ChunkCount(); got != 9 {
		t.Fatalf("ChunkCount = %d, want 9 (3x3 around center)", got)
	}

	settle(m)
	if got := phys.ColliderCount(); got != 9 {
		t.Errorf("ColliderCount = %d, want 9 (terrain fills every chunk)", got)
	}
}

func TestManagerEnsureUnloadsOutOfRange(t *testing.T) {
	m, phys := newTestManager(t, "")

	m.Ensure(mgl32.Vec3{0, 0, 0})
	settle(m)

	// Move far enough that no chunk overlaps the old view.
	m.Ensure(mgl32.Vec3{10 * voxel.ChunkSize, 0, 10 * voxel.ChunkSize})
	settle(m)

	if got := m.ChunkCount(); got != 9 {
		t.Fatalf("ChunkCount after move = %d, want 9", got)
	}
	if _, ok := m.GetBlockAt(0, 0, 0); ok {
		t.Error("origin chunk still resident after moving out of range")
	}
	if got := phys.ColliderCount(); got != 9 {
		t.Errorf("ColliderCount after move = %d, want 9", got)
	}
}

func TestManagerDirtyChunksSurviveEviction(t *testing.T) {
	m, _ := newTestManager(t, "")

	m.Ensure(mgl32.Vec3{0, 0, 0})
	// No Rebuild yet: all nine chunks are dirty and must stay resident.
	m.Ensure(mgl32.Vec3{5 * voxel.ChunkSize, 0, 5 * voxel.ChunkSize})

	if got := m.ChunkCount(); got != 16 {
		t.Fatalf("ChunkCount = %d, want 16 (9 dirty + 7 new up to capacity)", got)
	}

	settle(m)
	m.Ensure(mgl32.Vec3{5 * voxel.ChunkSize, 0, 5 * voxel.ChunkSize})
	if got := m.ChunkCount(); got != 9 {
		t.Fatalf("ChunkCount after settle = %d, want 9", got)
	}
}

func TestManagerBlockEdits(t *testing.T) {
	m, _ := newTestManager(t, "")
	m.Ensure(mgl32.Vec3{0, 0, 0})
	settle(m)

	// Top of the chunk is always air for this terrain.
	top := voxel.ChunkSize - 1
	if b, ok := m.GetBlockAt(4, top, 4); !ok || b != voxel.BlockNone {
		t.Fatalf("GetBlockAt(4,%d,4) = %v, %v; want air, true", top, b, ok)
	}

	if !m.SetBlockAt(4, top, 4, voxel.BlockWood) {
		t.Fatal("SetBlockAt on a loaded chunk returned false")
	}
	if b, _ := m.GetBlockAt(4, top, 4); b != voxel.BlockWood {
		t.Errorf("GetBlockAt after set = %v, want BlockWood", b)
	}

	if !m.DestroyBlockAt(4, top, 4) {
		t.Fatal("DestroyBlockAt on a loaded chunk returned false")
	}
	if b, _ := m.GetBlockAt(4, top, 4); b != voxel.BlockNone {
		t.Errorf("GetBlockAt after destroy = %v, want air", b)
	}

	if m.SetBlockAt(1000, 0, 1000, voxel.BlockStone) {
		t.Error("SetBlockAt outside the loaded area returned true")
	}
	if _, ok := m.GetBlockAt(1000, 0, 1000); ok {
		t.Error("GetBlockAt outside the loaded area returned true")
	}
}

func TestManagerEditsPersistAcrossUnload(t *testing.T) {
	m, _ := newTestManager(t, "")
	m.Ensure(mgl32.Vec3{0, 0, 0})
	settle(m)

	top := voxel.ChunkSize - 1
	if !m.SetBlockAt(0, top, 0, voxel.BlockWood) {
		t.Fatal("SetBlockAt failed")
	}
	settle(m)

	m.Ensure(mgl32.Vec3{10 * voxel.ChunkSize, 0, 10 * voxel.ChunkSize})
	settle(m)
	m.Ensure(mgl32.Vec3{0, 0, 0})

	if b, ok := m.GetBlockAt(0, top, 0); !ok || b != voxel.BlockWood {
		t.Errorf("block after unload/reload = %v, %v; want BlockWood, true", b, ok)
	}
}

func TestManagerEditsPersistAcrossReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "world.db")
	top := voxel.ChunkSize - 1

	m, _ := newTestManager(t, dbPath)
	m.Ensure(mgl32.Vec3{0, 0, 0})
	settle(m)
	if !m.SetBlockAt(0, top, 0, voxel.BlockWood) {
		t.Fatal("SetBlockAt failed")
	}
	if err := m.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	m2, _ := newTestManager(t, dbPath)
	m2.Ensure(mgl32.Vec3{0, 0, 0})
	if b, ok := m2.GetBlockAt(0, top, 0); !ok || b != voxel.BlockWood {
		t.Errorf("block after reopen = %v, %v; want BlockWood, true", b, ok)
	}
}

func TestManagerRenderDrawsEveryChunk(t *testing.T) {
	m, _ := newTestManager(t, "")
	m.Ensure(mgl32.Vec3{0, 0, 0})
	settle(m)

	r := &drawRecorder{}
	m.Render(r, voxel.DrawTriangles)

	if r.draws != 9 {
		t.Errorf("draw calls = %d, want 9", r.draws)
	}
	if len(r.models) != 9 {
		t.Fatalf("model transforms = %d, want 9", len(r.models))
	}

	// Every chunk must be drawn at its own origin.
	seen := make(map[mgl32.Vec3]bool)
	for _, model := range r.models {
		seen[mgl32.Vec3{model.At(0, 3), model.At(1, 3), model.At(2, 3)}] = true
	}
	if len(seen) != 9 {
		t.Errorf("distinct chunk origins = %d, want 9", len(seen))
	}
}

func TestManagerSwapDefersToRebuildWorker(t *testing.T) {
	m, _ := newTestManager(t, "")
	m.Ensure(mgl32.Vec3{0, 0, 0})
	settle(m)

	pos := ChunkPos{0, 0, 0}
	before := activeBuffer(t, m, pos)

	// Simulate the worker still holding the chunk when its pending turn
	// comes around.
	m.mu.Lock()
	m.rebuilding[pos] = struct{}{}
	m.markPendingLocked(pos)
	m.markPendingLocked(pos)
	if len(m.pending) != 1 {
		m.mu.Unlock()
		t.Fatalf("pending queue holds %d entries for one chunk, want 1", len(m.pending))
	}
	m.mu.Unlock()

	m.SwapPending()
	if got := activeBuffer(t, m, pos); got != before {
		t.Fatal("swap flipped a buffer the rebuild worker still owns")
	}

	// On completion the worker re-queues the chunk; the next frame
	// publishes it.
	m.mu.Lock()
	delete(m.rebuilding, pos)
	m.markPendingLocked(pos)
	m.mu.Unlock()

	m.SwapPending()
	if got := activeBuffer(t, m, pos); got == before {
		t.Fatal("swap did not publish after the rebuild finished")
	}
}

func TestManagerSwapConcurrentWithRebuild(t *testing.T) {
	m, _ := newTestManager(t, "")
	m.Ensure(mgl32.Vec3{0, 0, 0})
	settle(m)

	// Re-dirty a chunk that is already pending, then run the worker's
	// Rebuild concurrently with the frame's SwapPending. The race
	// detector flags any swap of a buffer mid-rebuild.
	top := voxel.ChunkSize - 1
	for i := 0; i < 50; i++ {
		m.SetBlockAt(4, top, 4, voxel.BlockStone)
		m.Rebuild()
		m.SetBlockAt(4, top, 4, voxel.BlockWood)

		done := make(chan struct{})
		go func() {
			m.Rebuild()
			close(done)
		}()
		m.SwapPending()
		<-done
		m.SwapPending()

		if got, _ := m.GetBlockAt(4, top, 4); got != voxel.BlockWood {
			t.Fatalf("iteration %d: block = %v, want BlockWood", i, got)
		}
		m.DestroyBlockAt(4, top, 4)
		settle(m)
	}
}

func TestChunkPosAt(t *testing.T) {
	tests := []struct {
		x, y, z int
		want    ChunkPos
	}{
		{0, 0, 0, ChunkPos{0, 0, 0}},
		{voxel.ChunkSize - 1, 0, 0, ChunkPos{0, 0, 0}},
		{voxel.ChunkSize, 0, 0, ChunkPos{1, 0, 0}},
		{-1, 0, 0, ChunkPos{-1, 0, 0}},
		{-voxel.ChunkSize, 0, -1, ChunkPos{-1, 0, -1}},
		{-voxel.ChunkSize - 1, 0, 0, ChunkPos{-2, 0, 0}},
	}
	for _, tt := range tests {
		if got := ChunkPosAt(tt.x, tt.y, tt.z); got != tt.want {
			t.Errorf("ChunkPosAt(%d,%d,%d) = %v, want %v", tt.x, tt.y, tt.z, got, tt.want)
		}
	}
}
