package gpu

import (
	gl "github.com/go-gl/gl/v3.1/gles2"
	"github.com/qmuntal/gltf"
	"go.uber.org/zap"

	"github.com/Faultbox/cartoonhead/internal/assets"
	"github.com/Faultbox/cartoonhead/internal/engine/texture"
	"github.com/Faultbox/cartoonhead/internal/logger"
)

// Textures holds one GL texture per glTF texture used as base colour.
type Textures struct {
	ids map[int]uint32
}

// DiffuseTexture returns the glTF texture index used as base colour by prim.
func DiffuseTexture(doc *gltf.Document, prim *gltf.Primitive) (int, bool) {
	if prim.Material == nil || int(*prim.Material) >= len(doc.Materials) {
		return 0, false
	}
	pbr := doc.Materials[*prim.Material].PBRMetallicRoughness
	if pbr == nil || pbr.BaseColorTexture == nil {
		return 0, false
	}
	tex := int(pbr.BaseColorTexture.Index)
	if tex >= len(doc.Textures) || doc.Textures[tex].Source == nil {
		return 0, false
	}
	return tex, true
}

// ForPrimitive returns the diffuse texture bound for prim.
func (t *Textures) ForPrimitive(doc *gltf.Document, prim *gltf.Primitive) (uint32, bool) {
	tex, ok := DiffuseTexture(doc, prim)
	if !ok {
		return 0, false
	}
	id, ok := t.ids[tex]
	return id, ok
}

// Delete releases every GL texture.
func (t *Textures) Delete() {
	for _, id := range t.ids {
		gl.DeleteTextures(1, &id)
	}
	t.ids = nil
}

// UploadTextures decodes and uploads the base colour texture of every
// primitive, mipmapped. Textures shared by several primitives are uploaded
// once; ones that fail to decode are skipped and the primitive falls back to
// normal shading.
func UploadTextures(a *assets.Asset, maxSize int) *Textures {
	doc := a.Doc
	t := &Textures{ids: make(map[int]uint32)}
	failed := make(map[int]bool)

	for _, mesh := range doc.Meshes {
		for _, prim := range mesh.Primitives {
			tex, ok := DiffuseTexture(doc, prim)
			if !ok || failed[tex] {
				continue
			}
			if _, done := t.ids[tex]; done {
				continue
			}

			img := int(*doc.Textures[tex].Source)
			data, err := a.ImageData(img)
			if err != nil {
				logger.Warn("skipping texture", zap.Int("texture", tex), zap.Error(err))
				failed[tex] = true
				continue
			}
			rgba, format, err := texture.Decode(data, ImageHint(doc.Images[img]), maxSize)
			if err != nil {
				logger.Warn("skipping texture", zap.Int("texture", tex), zap.Error(err))
				failed[tex] = true
				continue
			}

			params := DefaultSampler
			if s := doc.Textures[tex].Sampler; s != nil && int(*s) < len(doc.Samplers) {
				params = SamplerParams(doc.Samplers[*s])
			}

			var id uint32
			gl.GenTextures(1, &id)
			gl.BindTexture(gl.TEXTURE_2D, id)
			gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA,
				int32(rgba.Bounds().Dx()), int32(rgba.Bounds().Dy()), 0,
				gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(rgba.Pix))
			gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, params.MinFilter)
			gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, params.MagFilter)
			gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, params.WrapS)
			gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, params.WrapT)
			gl.GenerateMipmap(gl.TEXTURE_2D)
			gl.BindTexture(gl.TEXTURE_2D, 0)

			t.ids[tex] = id
			logger.Debug("texture uploaded",
				zap.Int("texture", tex),
				zap.String("format", format),
				zap.Int("width", rgba.Bounds().Dx()),
				zap.Int("height", rgba.Bounds().Dy()),
			)
		}
	}
	return t
}

// ImageHint returns the MIME type of img, or its URI when no type is given.
func ImageHint(img *gltf.Image) string {
	if img.MimeType != "" {
		return img.MimeType
	}
	return img.URI
}

// Sampler holds GL texture parameters.
type Sampler struct {
	MinFilter, MagFilter int32
	WrapS, WrapT         int32
}

// DefaultSampler is used for textures without a glTF sampler.
var DefaultSampler = Sampler{
	MinFilter: gl.LINEAR_MIPMAP_LINEAR,
	MagFilter: gl.LINEAR,
	WrapS:     gl.REPEAT,
	WrapT:     gl.REPEAT,
}

// SamplerParams maps a glTF sampler onto GL parameters. Unset filters fall
// back to DefaultSampler.
func SamplerParams(s *gltf.Sampler) Sampler {
	p := DefaultSampler
	switch s.MagFilter {
	case gltf.MagNearest:
		p.MagFilter = gl.NEAREST
	case gltf.MagLinear:
		p.MagFilter = gl.LINEAR
	}
	switch s.MinFilter {
	case gltf.MinNearest:
		p.MinFilter = gl.NEAREST
	case gltf.MinLinear:
		p.MinFilter = gl.LINEAR
	case gltf.MinNearestMipMapNearest:
		p.MinFilter = gl.NEAREST_MIPMAP_NEAREST
	case gltf.MinLinearMipMapNearest:
		p.MinFilter = gl.LINEAR_MIPMAP_NEAREST
	case gltf.MinNearestMipMapLinear:
		p.MinFilter = gl.NEAREST_MIPMAP_LINEAR
	case gltf.MinLinearMipMapLinear:
		p.MinFilter = gl.LINEAR_MIPMAP_LINEAR
	}
	p.WrapS = wrapMode(s.WrapS)
	p.WrapT = wrapMode(s.WrapT)
	return p
}

func wrapMode(m gltf.WrappingMode) int32 {
	switch m {
	case gltf.WrapClampToEdge:
		return gl.CLAMP_TO_EDGE
	case gltf.WrapMirroredRepeat:
		return gl.MIRRORED_REPEAT
	}
	return gl.REPEAT
}
