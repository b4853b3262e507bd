package morph

import (
	"fmt"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"go.uber.org/zap"

	"github.com/Faultbox/cartoonhead/internal/logger"
)

// channelAttributes lists the packed target attributes in group order.
var channelAttributes = []string{gltf.POSITION, gltf.NORMAL, gltf.COLOR_0}

func attributeGroup(attr string) (int, bool) {
	switch attr {
	case gltf.POSITION:
		return GroupPosition, true
	case gltf.NORMAL:
		return GroupNormal, true
	case gltf.COLOR_0:
		return GroupColor, true
	}
	return 0, false
}

// Layer holds the packed deltas of one morph target, ready for upload as one
// RGBA32F array layer of Width x Height texels.
type Layer struct {
	Data   []float32
	stride int // floats per vertex
}

// Group returns the four floats of group g for vertex v.
func (l Layer) Group(v, g int) [4]float32 {
	off := v*l.stride + g*groupFloats
	return [4]float32{l.Data[off], l.Data[off+1], l.Data[off+2], l.Data[off+3]}
}

// Pack builds one layer per target of the morph primitive. Attributes that
// are not float VEC3/VEC4 are skipped with a warning and stay zero; they
// never spill into neighbouring groups.
func Pack(doc *gltf.Document, info *TargetInfo) ([]Layer, error) {
	if info.Empty() {
		return nil, nil
	}
	if info.MeshID >= len(doc.Meshes) || info.PrimitiveIdx >= len(doc.Meshes[info.MeshID].Primitives) {
		return nil, fmt.Errorf("morph primitive %d/%d not in asset", info.MeshID, info.PrimitiveIdx)
	}
	prim := doc.Meshes[info.MeshID].Primitives[info.PrimitiveIdx]
	stride := info.VertexDataCount * groupFloats

	layers := make([]Layer, len(prim.Targets))
	for t, target := range prim.Targets {
		layer := Layer{Data: make([]float32, info.LayerFloats()), stride: stride}

		for _, attr := range channelAttributes {
			acc, ok := target[attr]
			if !ok {
				continue
			}
			group, _ := attributeGroup(attr)
			if group >= info.VertexDataCount {
				// Channel absent from the first target; no room reserved.
				logger.Warn("morph target has channel missing from first target",
					zap.Int("target", t), zap.String("attribute", attr))
				continue
			}
			if err := packAttribute(doc, int(acc), layer, group, info.VertexCount, attr == gltf.COLOR_0); err != nil {
				logger.Warn("skipping morph target attribute",
					zap.Int("target", t),
					zap.String("attribute", attr),
					zap.Error(err),
				)
			}
		}
		layers[t] = layer
	}
	return layers, nil
}

// packAttribute writes accessor acc into group of every vertex of layer.
func packAttribute(doc *gltf.Document, acc int, layer Layer, group, vertexCount int, color bool) error {
	if acc >= len(doc.Accessors) {
		return fmt.Errorf("accessor %d out of range", acc)
	}
	accessor := doc.Accessors[acc]
	if accessor.ComponentType != gltf.ComponentFloat {
		return fmt.Errorf("%w: component type %v", ErrUnsupportedEncoding, accessor.ComponentType)
	}
	if accessor.Type != gltf.AccessorVec3 && accessor.Type != gltf.AccessorVec4 {
		return fmt.Errorf("%w: accessor type %v", ErrUnsupportedEncoding, accessor.Type)
	}

	raw, err := modeler.ReadAccessor(doc, accessor, nil)
	if err != nil {
		return fmt.Errorf("reading accessor %d: %w", acc, err)
	}

	n := int(accessor.Count)
	if n > vertexCount {
		logger.Warn("morph attribute longer than vertex count, truncating",
			zap.Int("accessor", acc), zap.Int("count", n), zap.Int("vertices", vertexCount))
		n = vertexCount
	}

	switch src := raw.(type) {
	case [][3]float32:
		for j := 0; j < n; j++ {
			off := j*layer.stride + group*groupFloats
			layer.Data[off] = src[j][0]
			layer.Data[off+1] = src[j][1]
			layer.Data[off+2] = src[j][2]
			if color {
				layer.Data[off+3] = 1
			}
		}
	case [][4]float32:
		for j := 0; j < n; j++ {
			off := j*layer.stride + group*groupFloats
			layer.Data[off] = src[j][0]
			layer.Data[off+1] = src[j][1]
			layer.Data[off+2] = src[j][2]
			if color {
				layer.Data[off+3] = src[j][3]
			}
		}
	default:
		return fmt.Errorf("%w: decoded as %T", ErrUnsupportedEncoding, raw)
	}
	return nil
}
