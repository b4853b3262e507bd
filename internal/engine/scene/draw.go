// Package scene walks the active glTF scene and draws its meshes with the
// morph program.
package scene

import (
	gl "github.com/go-gl/gl/v3.1/gles2"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"go.uber.org/zap"

	"github.com/Faultbox/cartoonhead/internal/engine/gpu"
	"github.com/Faultbox/cartoonhead/internal/engine/shader"
	"github.com/Faultbox/cartoonhead/internal/logger"
	"github.com/Faultbox/cartoonhead/internal/morph"
)

// Texture units used by the program.
const (
	DiffuseUnit = 0
	MorphUnit   = 1
)

// attributeSemantics are bound in this order.
var attributeSemantics = []string{gltf.POSITION, gltf.NORMAL, gltf.TEXCOORD_0}

// Drawer issues the draw calls for one uploaded asset.
type Drawer struct {
	Program  uint32
	Loc      shader.Locations
	Buffers  *gpu.Buffers
	Textures *gpu.Textures
	MorphTex uint32

	vao uint32

	// skipped remembers primitives already reported as undrawable.
	skipped map[[2]int]bool
}

// NewDrawer creates the vertex array object used for every draw.
func NewDrawer(program uint32, loc shader.Locations, bufs *gpu.Buffers, texs *gpu.Textures, morphTex uint32) *Drawer {
	d := &Drawer{
		Program:  program,
		Loc:      loc,
		Buffers:  bufs,
		Textures: texs,
		MorphTex: morphTex,
		skipped:  make(map[[2]int]bool),
	}
	gl.GenVertexArrays(1, &d.vao)
	return d
}

// Close releases the vertex array object.
func (d *Drawer) Close() {
	if d.vao != 0 {
		gl.DeleteVertexArrays(1, &d.vao)
		d.vao = 0
	}
}

// Draw renders every mesh of the active scene with mvp.
func (d *Drawer) Draw(doc *gltf.Document, info *morph.TargetInfo, mvp mgl32.Mat4) {
	sc, ok := ActiveScene(doc)
	if !ok {
		return
	}

	gl.UseProgram(d.Program)
	gl.BindVertexArray(d.vao)
	if d.Loc.MVP >= 0 {
		gl.UniformMatrix4fv(d.Loc.MVP, 1, false, &mvp[0])
	}

	Walk(doc, sc, func(_ int, node *gltf.Node) {
		if node.Mesh == nil {
			return
		}
		mesh := int(*node.Mesh)
		if mesh >= len(doc.Meshes) {
			logger.Warn("node references missing mesh", zap.String("node", node.Name), zap.Int("mesh", mesh))
			return
		}
		d.drawMesh(doc, mesh, info)
	})

	gl.BindVertexArray(0)
}

func (d *Drawer) drawMesh(doc *gltf.Document, mesh int, info *morph.TargetInfo) {
	u := meshUniforms(info, mesh, d.Loc.MorphTexture >= 0 && d.MorphTex != 0)

	if d.Loc.Influences >= 0 {
		gl.Uniform1fv(d.Loc.Influences, int32(len(u.Influences)), &u.Influences[0])
	}
	if d.Loc.BaseInfluence >= 0 {
		gl.Uniform1f(d.Loc.BaseInfluence, u.BaseInfluence)
	}
	if d.Loc.MorphTexSize >= 0 {
		gl.Uniform2i(d.Loc.MorphTexSize, u.TextureSize[0], u.TextureSize[1])
	}
	if d.Loc.HasTargets >= 0 {
		gl.Uniform1i(d.Loc.HasTargets, u.HasTargets)
	}
	if d.Loc.MorphTexture >= 0 {
		gl.Uniform1i(d.Loc.MorphTexture, MorphUnit)
	}
	gl.ActiveTexture(gl.TEXTURE0 + MorphUnit)
	gl.BindTexture(gl.TEXTURE_2D_ARRAY, d.MorphTex)

	for p, prim := range doc.Meshes[mesh].Primitives {
		d.drawPrimitive(doc, mesh, p, prim)
	}
}

func (d *Drawer) drawPrimitive(doc *gltf.Document, mesh, p int, prim *gltf.Primitive) {
	tex, textured := d.Textures.ForPrimitive(doc, prim)
	if d.Loc.IsCurve >= 0 {
		var v int32
		if textured {
			v = 1
		}
		gl.Uniform1i(d.Loc.IsCurve, v)
	}
	if d.Loc.DiffuseTex >= 0 {
		gl.Uniform1i(d.Loc.DiffuseTex, DiffuseUnit)
	}
	gl.ActiveTexture(gl.TEXTURE0 + DiffuseUnit)
	gl.BindTexture(gl.TEXTURE_2D, tex)

	var enabled []uint32
	defer func() {
		for _, loc := range enabled {
			gl.DisableVertexAttribArray(loc)
		}
	}()

	vertexCount := -1
	for _, sem := range attributeSemantics {
		loc := d.Loc.Attribute(sem)
		acc, ok := prim.Attributes[sem]
		if loc < 0 || !ok {
			continue
		}
		binding, ok := d.Buffers.Accessor(doc, int(acc))
		if !ok {
			d.skip(mesh, p, "attribute buffer not uploaded", zap.String("attribute", sem))
			continue
		}
		layout, ok := Layout(doc, doc.Accessors[acc])
		if !ok {
			d.skip(mesh, p, "unsupported attribute encoding", zap.String("attribute", sem))
			continue
		}
		gl.BindBuffer(gl.ARRAY_BUFFER, binding.Buffer)
		gl.VertexAttribPointer(uint32(loc), layout.Size, layout.Type, layout.Normalized, layout.Stride,
			gl.PtrOffset(binding.Offset))
		gl.EnableVertexAttribArray(uint32(loc))
		enabled = append(enabled, uint32(loc))
		if sem == gltf.POSITION {
			vertexCount = int(doc.Accessors[acc].Count)
		}
	}
	if vertexCount < 0 {
		d.skip(mesh, p, "primitive has no drawable positions")
		return
	}

	mode := DrawMode(prim.Mode)
	if prim.Indices == nil {
		gl.DrawArrays(mode, 0, int32(vertexCount))
		return
	}

	idx := int(*prim.Indices)
	binding, ok := d.Buffers.Accessor(doc, idx)
	if !ok {
		d.skip(mesh, p, "index buffer not uploaded")
		return
	}
	indexType, ok := ComponentType(doc.Accessors[idx].ComponentType)
	if !ok || indexType == gl.FLOAT {
		d.skip(mesh, p, "unsupported index type")
		return
	}
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, binding.Buffer)
	gl.DrawElements(mode, int32(doc.Accessors[idx].Count), indexType, gl.PtrOffset(binding.Offset))
}

// skip logs once per primitive.
func (d *Drawer) skip(mesh, p int, msg string, fields ...zap.Field) {
	key := [2]int{mesh, p}
	if d.skipped[key] {
		return
	}
	d.skipped[key] = true
	logger.Warn(msg, append([]zap.Field{zap.Int("mesh", mesh), zap.Int("primitive", p)}, fields...)...)
}
