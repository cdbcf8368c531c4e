// Package game implements the main game loop: input, chunk streaming,
// the mesh rebuild worker and rendering.
package game

import (
	"fmt"
	gomath "math"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/voxigo/internal/config"
	"github.com/Faultbox/voxigo/internal/engine/camera"
	"github.com/Faultbox/voxigo/internal/engine/input"
	"github.com/Faultbox/voxigo/internal/engine/physics"
	"github.com/Faultbox/voxigo/internal/engine/renderer"
	"github.com/Faultbox/voxigo/internal/engine/voxel"
	"github.com/Faultbox/voxigo/internal/engine/voxelrender"
	"github.com/Faultbox/voxigo/internal/engine/window"
	"github.com/Faultbox/voxigo/internal/game/world"
	"github.com/Faultbox/voxigo/internal/logger"
)

// reachDistance is how far block interaction rays extend, in blocks.
const reachDistance = 64

// Game is the main game instance.
type Game struct {
	running   bool
	wireframe bool

	window   *window.Window
	renderer *renderer.Renderer
	chunks   *voxelrender.ChunkRenderer
	input    *input.Input
	cam      *camera.FlyCamera
	phys     *physics.SimWorld
	manager  *world.Manager

	// Wakes the rebuild worker; capacity 1 so kicks coalesce.
	rebuildCh  chan struct{}
	stopCh     chan struct{}
	workerDone chan struct{}
}

// New creates a new game instance.
func New(cfg *config.Config) (*Game, error) {
	logger.Info("initializing game",
		zap.Int("width", cfg.Graphics.Width),
		zap.Int("height", cfg.Graphics.Height),
	)

	g := &Game{
		wireframe:  cfg.Graphics.Wireframe,
		rebuildCh:  make(chan struct{}, 1),
		stopCh:     make(chan struct{}),
		workerDone: make(chan struct{}),
	}

	// Create window (this also creates OpenGL context)
	var err error
	g.window, err = window.New(window.Config{
		Title:      "Voxigo",
		Width:      cfg.Graphics.Width,
		Height:     cfg.Graphics.Height,
		Fullscreen: cfg.Graphics.Fullscreen,
		VSync:      cfg.Graphics.VSync,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	// Create renderer (AFTER window, since OpenGL context must exist)
	g.renderer, err = renderer.New(renderer.Config{
		Width:  cfg.Graphics.Width,
		Height: cfg.Graphics.Height,
		VSync:  cfg.Graphics.VSync,
	})
	if err != nil {
		g.window.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	g.chunks, err = voxelrender.New()
	if err != nil {
		g.window.Close()
		return nil, fmt.Errorf("failed to create chunk renderer: %w", err)
	}

	g.phys = physics.NewSimWorld()
	g.manager, err = world.NewManager(world.Config{
		Seed:          cfg.World.Seed,
		ViewDistance:  cfg.World.ViewDistance,
		ChunkCapacity: cfg.World.ChunkCapacity,
		DBPath:        cfg.World.DBPath,
	}, g.phys)
	if err != nil {
		g.chunks.Close()
		g.window.Close()
		return nil, fmt.Errorf("failed to create chunk manager: %w", err)
	}

	g.input = input.New()
	g.cam = camera.NewFlyCamera(mgl32.Vec3{0, float32(voxel.ChunkSize), 0})
	g.window.CaptureMouse(true)

	logger.Info("game initialized successfully")
	return g, nil
}

// Run starts the main game loop.
func (g *Game) Run() error {
	g.running = true

	go g.rebuildWorker()
	defer func() {
		close(g.stopCh)
		<-g.workerDone
	}()

	lastTime := time.Now()
	frameCount := 0
	fpsTimer := time.Now()

	logger.Info("starting game loop")

	for g.running {
		now := time.Now()
		dt := float32(now.Sub(lastTime).Seconds())
		lastTime = now

		// 1. Process input
		if g.input.Update() {
			g.running = false
			break
		}
		g.handleEvents()
		g.handleMovement(dt)

		// 2. Stream chunks around the camera and publish finished meshes
		g.manager.Ensure(g.cam.Position)
		g.kickRebuild()
		g.manager.SwapPending()

		// 3. Render
		g.render()

		// 4. Present (swap buffers)
		g.window.SwapBuffers()

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			logger.Debug("fps",
				zap.Int("count", frameCount),
				zap.Float32("dt_ms", dt*1000),
			)
			frameCount = 0
			fpsTimer = time.Now()
		}
	}

	return nil
}

// rebuildWorker remeshes dirty chunks off the render thread.
func (g *Game) rebuildWorker() {
	defer close(g.workerDone)
	for {
		select {
		case <-g.stopCh:
			return
		case <-g.rebuildCh:
			g.manager.Rebuild()
		}
	}
}

func (g *Game) kickRebuild() {
	select {
	case g.rebuildCh <- struct{}{}:
	default:
	}
}

func (g *Game) handleEvents() {
	for _, event := range g.input.Events() {
		switch event.Type {
		case input.EventWindowResize:
			g.renderer.Resize(event.Width, event.Height)
		case input.EventKeyDown:
			switch event.Key {
			case sdl.SCANCODE_ESCAPE:
				g.running = false
			case sdl.SCANCODE_F1:
				g.wireframe = !g.wireframe
			case sdl.SCANCODE_F2:
				g.logRouteToTarget()
			}
		case input.EventMouseMove:
			g.cam.HandleLook(float32(event.RelX), float32(event.RelY))
		case input.EventMouseDown:
			switch event.Button {
			case sdl.BUTTON_LEFT:
				g.destroyTargetBlock()
			case sdl.BUTTON_RIGHT:
				g.placeBlock(voxel.BlockStone)
			}
		}
	}
}

func (g *Game) handleMovement(dt float32) {
	var forward, right, up float32
	if g.input.IsKeyHeld(sdl.SCANCODE_W) {
		forward++
	}
	if g.input.IsKeyHeld(sdl.SCANCODE_S) {
		forward--
	}
	if g.input.IsKeyHeld(sdl.SCANCODE_D) {
		right++
	}
	if g.input.IsKeyHeld(sdl.SCANCODE_A) {
		right--
	}
	if g.input.IsKeyHeld(sdl.SCANCODE_SPACE) {
		up++
	}
	if g.input.IsKeyHeld(sdl.SCANCODE_LSHIFT) {
		up--
	}
	g.cam.HandleMovement(forward, right, up, dt)
}

// destroyTargetBlock removes the block the camera looks at.
func (g *Game) destroyTargetBlock() {
	hit, ok := g.phys.RayCast(g.cam.Position, g.cam.Forward(), reachDistance)
	if !ok {
		return
	}
	// Step half a block inward from the hit face to land inside the
	// block that owns it.
	p := hit.Point.Sub(hit.Normal.Mul(0.5))
	g.manager.DestroyBlockAt(floorInt(p.X()), floorInt(p.Y()), floorInt(p.Z()))
}

// placeBlock puts a block against the face the camera looks at.
func (g *Game) placeBlock(t voxel.BlockType) {
	hit, ok := g.phys.RayCast(g.cam.Position, g.cam.Forward(), reachDistance)
	if !ok {
		return
	}
	p := hit.Point.Add(hit.Normal.Mul(0.5))
	g.manager.SetBlockAt(floorInt(p.X()), floorInt(p.Y()), floorInt(p.Z()), t)
}

// logRouteToTarget runs the surface pathfinder from the camera's column
// to the block the camera looks at and reports the route.
func (g *Game) logRouteToTarget() {
	hit, ok := g.phys.RayCast(g.cam.Position, g.cam.Forward(), reachDistance)
	if !ok {
		return
	}
	p := hit.Point.Sub(hit.Normal.Mul(0.5))
	goalX, goalZ := floorInt(p.X()), floorInt(p.Z())

	pf := g.manager.SurfacePathFinder(g.cam.Position)
	path := pf.FindPath(floorInt(g.cam.Position.X()), floorInt(g.cam.Position.Z()), goalX, goalZ)
	if path == nil {
		logger.Info("no walkable route to target",
			zap.Int("goal_x", goalX),
			zap.Int("goal_z", goalZ),
		)
		return
	}
	logger.Info("route to target",
		zap.Int("steps", len(path)-1),
		zap.Int("goal_x", goalX),
		zap.Int("goal_z", goalZ),
	)
}

func floorInt(v float32) int {
	return int(gomath.Floor(float64(v)))
}

// render draws the current frame.
func (g *Game) render() {
	g.renderer.Begin()

	mode := voxel.DrawTriangles
	if g.wireframe {
		mode = voxel.DrawLines
	}
	g.chunks.Begin(g.cam.ViewProjection(g.renderer.AspectRatio()))
	g.manager.Render(g.chunks, mode)

	g.renderer.End()
}

// Close cleans up game resources.
func (g *Game) Close() {
	logger.Info("closing game")

	if g.manager != nil {
		if err := g.manager.Close(); err != nil {
			logger.Error("closing chunk manager", zap.Error(err))
		}
	}
	if g.chunks != nil {
		g.chunks.Close()
	}
	if g.renderer != nil {
		g.renderer.Close()
	}
	if g.window != nil {
		g.window.Close()
	}
}
