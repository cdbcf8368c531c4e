package voxel

import "testing"

func TestPoolAcquireRelease(t *testing.T) {
	p := NewPool[BlockGrid]("test", 2)
	if p.Capacity() != 2 || p.Available() != 2 {
		t.Fatalf("fresh pool: capacity %d available %d", p.Capacity(), p.Available())
	}

	a := p.Acquire()
	b := p.Acquire()
	if a == b {
		t.Error("pool handed out the same slot twice")
	}
	if p.Available() != 0 {
		t.Errorf("expected 0 available, got %d", p.Available())
	}

	p.Release(a)
	if p.Available() != 1 {
		t.Errorf("expected 1 available after release, got %d", p.Available())
	}
	if c := p.Acquire(); c != a {
		t.Error("expected the released slot back")
	}
}

func TestPoolExhaustionPanics(t *testing.T) {
	p := NewPool[MeshBuffer]("test", 1)
	p.Acquire()
	defer func() {
		if recover() == nil {
			t.Error("expected panic on exhausted pool")
		}
	}()
	p.Acquire()
}

func TestPoolsChunkCapacity(t *testing.T) {
	pools := NewPools(4)
	if pools.ChunkCapacity() != 4 {
		t.Errorf("expected capacity 4, got %d", pools.ChunkCapacity())
	}
	// Two mesh buffers per chunk.
	if pools.meshes.Capacity() != 8 {
		t.Errorf("expected 8 mesh slots, got %d", pools.meshes.Capacity())
	}
}
