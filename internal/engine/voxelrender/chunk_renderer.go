// Package voxelrender uploads chunk meshes to the GPU and draws them.
// It keeps one VAO/VBO/EBO triple per mesh buffer and re-uploads only
// when a buffer's version changes, so a swap costs one upload and an
// unchanged chunk costs none.
package voxelrender

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/voxigo/internal/engine/shader"
	"github.com/Faultbox/voxigo/internal/engine/voxel"
	"github.com/Faultbox/voxigo/internal/logger"
)

const vertexStrideBytes = voxel.VertexFloats * 4

type meshGPU struct {
	vao, vbo, ebo uint32
	version       uint64
	indexCount    int32
}

// ChunkRenderer draws published chunk mesh buffers. It implements
// world.MeshRenderer. Must be created and used on the GL thread.
type ChunkRenderer struct {
	program uint32

	viewProjLoc int32
	modelLoc    int32
	lightDirLoc int32

	lightDir mgl32.Vec3

	// Keyed by buffer identity; pooled buffers keep this bounded by the
	// pool size.
	meshes map[*voxel.MeshBuffer]*meshGPU
}

// New compiles the chunk shader program.
// Must be called after the OpenGL context is created.
func New() (*ChunkRenderer, error) {
	program, err := shader.CompileProgram(vertexShaderSrc, fragmentShaderSrc)
	if err != nil {
		return nil, fmt.Errorf("chunk shader: %w", err)
	}

	r := &ChunkRenderer{
		program:     program,
		viewProjLoc: shader.MustGetUniform(program, "uViewProj"),
		modelLoc:    shader.MustGetUniform(program, "uModel"),
		lightDirLoc: shader.MustGetUniform(program, "uLightDir"),
		lightDir:    mgl32.Vec3{-0.5, -1.0, -0.3}.Normalize(),
		meshes:      make(map[*voxel.MeshBuffer]*meshGPU),
	}

	logger.Debug("chunk renderer ready", zap.Uint32("program", program))
	return r, nil
}

// SetLightDir changes the directional light. Takes effect next Begin.
func (r *ChunkRenderer) SetLightDir(dir mgl32.Vec3) {
	r.lightDir = dir.Normalize()
}

// Begin binds the program and the per-frame uniforms.
func (r *ChunkRenderer) Begin(viewProj mgl32.Mat4) {
	gl.UseProgram(r.program)
	gl.UniformMatrix4fv(r.viewProjLoc, 1, false, &viewProj[0])
	gl.Uniform3fv(r.lightDirLoc, 1, &r.lightDir[0])
}

// SetModel sets the model transform for the next DrawMesh calls.
func (r *ChunkRenderer) SetModel(model mgl32.Mat4) {
	gl.UniformMatrix4fv(r.modelLoc, 1, false, &model[0])
}

// DrawMesh draws one published mesh buffer, uploading it first if its
// version changed since the last draw.
func (r *ChunkRenderer) DrawMesh(m *voxel.MeshBuffer, mode voxel.DrawMode) {
	if m.IndexCount() == 0 {
		return
	}

	g := r.meshes[m]
	if g == nil {
		g = &meshGPU{}
		gl.GenVertexArrays(1, &g.vao)
		gl.GenBuffers(1, &g.vbo)
		gl.GenBuffers(1, &g.ebo)
		r.configureLayout(g)
		r.meshes[m] = g
	}
	if g.version != m.Version {
		r.upload(g, m)
	}

	glMode := uint32(gl.TRIANGLES)
	if mode == voxel.DrawLines {
		glMode = gl.LINES
	}

	gl.BindVertexArray(g.vao)
	gl.DrawElements(glMode, g.indexCount, gl.UNSIGNED_INT, nil)
	gl.BindVertexArray(0)
}

func (r *ChunkRenderer) configureLayout(g *meshGPU) {
	gl.BindVertexArray(g.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, g.vbo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, g.ebo)

	// Position + occlusion (location = 0)
	gl.VertexAttribPointer(0, 4, gl.FLOAT, false, vertexStrideBytes, nil)
	gl.EnableVertexAttribArray(0)

	// Normal (location = 1)
	gl.VertexAttribPointer(1, 3, gl.FLOAT, false, vertexStrideBytes, unsafe.Pointer(uintptr(4*4)))
	gl.EnableVertexAttribArray(1)

	// Color (location = 2)
	gl.VertexAttribPointer(2, 4, gl.FLOAT, false, vertexStrideBytes, unsafe.Pointer(uintptr(7*4)))
	gl.EnableVertexAttribArray(2)

	gl.BindVertexArray(0)
}

func (r *ChunkRenderer) upload(g *meshGPU, m *voxel.MeshBuffer) {
	gl.BindBuffer(gl.ARRAY_BUFFER, g.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, m.VertexCount()*vertexStrideBytes,
		unsafe.Pointer(&m.Vertices[0]), gl.DYNAMIC_DRAW)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)

	gl.BindVertexArray(g.vao)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, g.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, m.IndexCount()*4,
		unsafe.Pointer(&m.Indices[0]), gl.DYNAMIC_DRAW)
	gl.BindVertexArray(0)

	g.version = m.Version
	g.indexCount = int32(m.IndexCount())
}

// Close deletes all GPU buffers and the program.
func (r *ChunkRenderer) Close() {
	for _, g := range r.meshes {
		gl.DeleteVertexArrays(1, &g.vao)
		gl.DeleteBuffers(1, &g.vbo)
		gl.DeleteBuffers(1, &g.ebo)
	}
	r.meshes = nil
	if r.program != 0 {
		gl.DeleteProgram(r.program)
		r.program = 0
	}
}
