package game

import (
	"github.com/pthm-cable/pluribus/glyph"
	"github.com/pthm-cable/pluribus/renderer"
	"github.com/pthm-cable/pluribus/shading"
)

// GPUPoints draws the grid with the point shader into the current target.
type GPUPoints struct {
	shader *renderer.PointShader
}

// NewGPUPoints compiles the point shader. Requires an open window.
func NewGPUPoints() *GPUPoints {
	return &GPUPoints{shader: renderer.NewPointShader()}
}

// Valid reports whether the shader compiled.
func (g *GPUPoints) Valid() bool {
	return g.shader.Valid()
}

// Rebuild implements engine.PointRenderer.
func (g *GPUPoints) Rebuild(grid *shading.Grid, mask *glyph.Mask, u *shading.Uniforms) {
	g.shader.SetGrid(grid)
	g.shader.SetMask(mask)
	g.shader.SetUniforms(u)
}

// Draw implements engine.PointRenderer. Fragment survival happens on the GPU and
// is not counted.
func (g *GPUPoints) Draw(u *shading.Uniforms) (int, int) {
	g.shader.SetTime(u)
	g.shader.Draw()
	return 0, 0
}

// Unload implements engine.PointRenderer.
func (g *GPUPoints) Unload() {
	g.shader.Unload()
}
