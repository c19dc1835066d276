package renderer

import (
	_ "embed"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/pluribus/glyph"
	"github.com/pthm-cable/pluribus/shading"
)

//go:embed shaders/points.vs
var pointsVS string

//go:embed shaders/points.fs
var pointsFS string

// quadCorners are the two triangles that make up one point sprite.
var quadCorners = [shading.VerticesPerPoint][2]float32{
	{-1, -1}, {1, -1}, {1, 1},
	{-1, -1}, {1, 1}, {-1, 1},
}

// PointShader draws the vector engine: one static mesh of point sprites
// displaced and shaded entirely on the GPU. Per frame only the time
// uniforms change; the mesh and mask texture change on rebuild.
type PointShader struct {
	material rl.Material
	mesh     rl.Mesh
	hasMesh  bool
	maskTex  rl.Texture2D
	hasMask  bool

	// Vertex data stays referenced by the mesh
	positions []float32
	texcoords []float32
	corners   []float32

	timeLoc       int32
	cycleLoc      int32
	resolutionLoc int32
	anchorLoc     int32
	firstBoxLoc   int32
	scalarLocs    map[string]int32
}

// NewPointShader compiles the embedded shaders. Requires an open window.
func NewPointShader() *PointShader {
	shader := rl.LoadShaderFromMemory(pointsVS, pointsFS)
	mat := rl.LoadMaterialDefault()
	mat.Shader = shader

	return &PointShader{
		material:      mat,
		timeLoc:       rl.GetShaderLocation(shader, "uTime"),
		cycleLoc:      rl.GetShaderLocation(shader, "uCycle"),
		resolutionLoc: rl.GetShaderLocation(shader, "uResolution"),
		anchorLoc:     rl.GetShaderLocation(shader, "uAnchor"),
		firstBoxLoc:   rl.GetShaderLocation(shader, "uFirstBox"),
		scalarLocs:    make(map[string]int32),
	}
}

// Valid reports whether the shader program compiled and linked.
func (p *PointShader) Valid() bool {
	return rl.IsShaderValid(p.material.Shader)
}

// SetGrid uploads a new static point mesh, replacing the previous one.
func (p *PointShader) SetGrid(grid *shading.Grid) {
	n := grid.Len()
	verts := n * shading.VerticesPerPoint

	p.positions = make([]float32, 0, verts*3)
	p.texcoords = make([]float32, 0, verts*2)
	p.corners = make([]float32, 0, verts*2)
	for _, v := range grid.Vertices {
		for _, c := range quadCorners {
			p.positions = append(p.positions, v.X, v.Y, 0)
			p.texcoords = append(p.texcoords, v.U, v.V)
			p.corners = append(p.corners, c[0], c[1])
		}
	}

	if p.hasMesh {
		rl.UnloadMesh(&p.mesh)
		p.hasMesh = false
	}
	if n == 0 {
		return
	}

	p.mesh = rl.Mesh{
		VertexCount:   int32(verts),
		TriangleCount: int32(n * 2),
		Vertices:      &p.positions[0],
		Texcoords:     &p.texcoords[0],
		Texcoords2:    &p.corners[0],
	}
	rl.UploadMesh(&p.mesh, false)
	p.hasMesh = true
}

// SetMask uploads the glyph coverage as a bilinear grayscale texture.
// The new texture is bound before the old one is released, so a draw never
// sees a missing mask.
func (p *PointShader) SetMask(mask *glyph.Mask) {
	img := rl.NewImage(mask.Coverage, int32(mask.Width), int32(mask.Height), 1, rl.UncompressedGrayscale)
	tex := rl.LoadTextureFromImage(img)
	rl.SetTextureFilter(tex, rl.FilterBilinear)
	rl.SetTextureWrap(tex, rl.WrapClamp)

	old, hadOld := p.maskTex, p.hasMask
	rl.SetMaterialTexture(&p.material, rl.MapDiffuse, tex)
	p.maskTex = tex
	p.hasMask = true
	if hadOld {
		rl.UnloadTexture(old)
	}
}

func (p *PointShader) scalarLoc(name string) int32 {
	loc, ok := p.scalarLocs[name]
	if !ok {
		loc = rl.GetShaderLocation(p.material.Shader, name)
		p.scalarLocs[name] = loc
	}
	return loc
}

// SetUniforms pushes every uniform. Call after a rebuild.
func (p *PointShader) SetUniforms(u *shading.Uniforms) {
	shader := p.material.Shader
	for _, s := range u.Scalars() {
		loc := p.scalarLoc(s.Name)
		if loc < 0 {
			continue
		}
		rl.SetShaderValue(shader, loc, []float32{s.Value}, rl.ShaderUniformFloat)
	}
	rl.SetShaderValue(shader, p.resolutionLoc, u.Resolution[:], rl.ShaderUniformVec2)
	rl.SetShaderValue(shader, p.anchorLoc, u.Anchor[:], rl.ShaderUniformVec2)
	rl.SetShaderValue(shader, p.firstBoxLoc, u.FirstBox[:], rl.ShaderUniformVec4)
	p.SetTime(u)
}

// SetTime pushes the per-frame uniforms.
func (p *PointShader) SetTime(u *shading.Uniforms) {
	shader := p.material.Shader
	rl.SetShaderValue(shader, p.timeLoc, []float32{u.Time}, rl.ShaderUniformFloat)
	rl.SetShaderValue(shader, p.cycleLoc, []float32{u.Cycle}, rl.ShaderUniformFloat)
}

// Draw renders the point mesh into the current target.
func (p *PointShader) Draw() {
	if !p.hasMesh || !p.hasMask {
		return
	}
	// Quads are emitted in NDC directly, so winding depends on the y flip
	rl.DisableBackfaceCulling()
	rl.DrawMesh(p.mesh, p.material, rl.MatrixIdentity())
	rl.EnableBackfaceCulling()
}

// Unload frees the mesh, shader and mask texture.
func (p *PointShader) Unload() {
	if p.hasMesh {
		rl.UnloadMesh(&p.mesh)
		p.hasMesh = false
	}
	// Releases the shader and the bound mask texture
	rl.UnloadMaterial(p.material)
	p.hasMask = false
}
