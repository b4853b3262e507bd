package morph

import (
	"errors"
	"fmt"

	"github.com/qmuntal/gltf"
)

// Floats per vertex group; every group is one RGBA32F texel.
const groupFloats = 4

// Vertex groups inside a packed vertex.
const (
	GroupPosition = 0
	GroupNormal   = 1
	GroupColor    = 2
)

var (
	// ErrNoTargets is returned when no mesh declares morph targets.
	ErrNoTargets = errors.New("no morph targets")
	// ErrNoMatchingPrimitive is returned when no primitive of the morph mesh
	// has as many targets as its metadata names.
	ErrNoMatchingPrimitive = errors.New("no primitive matches the morph target count")
	// ErrTextureTooLarge is returned when the packed data does not fit into
	// maxDim x maxDim texels even after row wrapping.
	ErrTextureTooLarge = errors.New("morph texture exceeds maximum texture size")
	// ErrUnsupportedEncoding is returned for non-float target attributes.
	ErrUnsupportedEncoding = errors.New("unsupported morph attribute encoding")
)

// TargetInfo is the resolved configuration of the single morph mesh.
// Influences is rewritten every frame, everything else is fixed after Build.
type TargetInfo struct {
	MeshID       int
	MeshName     string
	PrimitiveIdx int

	HasPosition bool
	HasNormal   bool
	HasColor    bool

	// VertexDataCount is the number of 4-float groups per vertex.
	VertexDataCount int
	VertexCount     int
	Width           int
	Height          int
	TargetCount     int

	Influences []float32
	Targets    TargetMap
}

// Empty reports whether the info describes no morph mesh at all.
func (ti *TargetInfo) Empty() bool {
	return ti == nil || ti.TargetCount == 0
}

// NoMorph returns the info used when the asset has no usable targets: the
// model still renders, nothing is deformed.
func NoMorph() *TargetInfo {
	return &TargetInfo{MeshID: -1, PrimitiveIdx: -1}
}

// Layout computes the texture size for vertexCount vertices of groups texels
// each. Data wider than maxDim wraps into further rows; texels past the last
// vertex are padding.
func Layout(vertexCount, groups, maxDim int) (width, height int, err error) {
	if maxDim <= 0 {
		return 0, 0, fmt.Errorf("invalid max texture dimension %d", maxDim)
	}
	required := vertexCount * groups
	if required <= 0 {
		return 0, 0, fmt.Errorf("nothing to pack: %d vertices x %d groups", vertexCount, groups)
	}
	if required <= maxDim {
		return required, 1, nil
	}
	height = (required + maxDim - 1) / maxDim
	if height > maxDim {
		return 0, 0, fmt.Errorf("%w: %d texels need %dx%d, max %d",
			ErrTextureTooLarge, required, maxDim, height, maxDim)
	}
	return maxDim, height, nil
}

// BuildTargetInfo resolves the morph mesh, its primitive and channel layout.
func BuildTargetInfo(doc *gltf.Document, set TargetSet, maxTextureSize int) (*TargetInfo, error) {
	meshID, targets, ok := set.First()
	if !ok {
		return nil, ErrNoTargets
	}
	if meshID >= len(doc.Meshes) {
		return nil, fmt.Errorf("morph mesh %d out of range", meshID)
	}
	mesh := doc.Meshes[meshID]

	info := &TargetInfo{
		MeshID:       meshID,
		MeshName:     mesh.Name,
		PrimitiveIdx: -1,
		TargetCount:  targets.Count,
		Targets:      targets,
	}

	for i, prim := range mesh.Primitives {
		if len(prim.Targets) == targets.Count {
			info.PrimitiveIdx = i
			break
		}
	}
	if info.PrimitiveIdx < 0 {
		return nil, fmt.Errorf("mesh %d (%s), %d targets: %w",
			meshID, mesh.Name, targets.Count, ErrNoMatchingPrimitive)
	}

	// Channel presence is taken from the first target and assumed uniform.
	first := mesh.Primitives[info.PrimitiveIdx].Targets[0]
	for _, attr := range channelAttributes {
		acc, ok := first[attr]
		if !ok {
			continue
		}
		if int(acc) >= len(doc.Accessors) {
			return nil, fmt.Errorf("target attribute %s: accessor %d out of range", attr, acc)
		}
		switch attr {
		case gltf.POSITION:
			info.HasPosition = true
		case gltf.NORMAL:
			info.HasNormal = true
		case gltf.COLOR_0:
			info.HasColor = true
		}
		if info.VertexCount == 0 {
			info.VertexCount = int(doc.Accessors[acc].Count)
		}
	}

	switch {
	case info.HasColor:
		info.VertexDataCount = 3
	case info.HasNormal:
		info.VertexDataCount = 2
	case info.HasPosition:
		info.VertexDataCount = 1
	default:
		return nil, fmt.Errorf("mesh %d (%s): first target has no position, normal or color", meshID, mesh.Name)
	}

	w, h, err := Layout(info.VertexCount, info.VertexDataCount, maxTextureSize)
	if err != nil {
		return nil, fmt.Errorf("mesh %d (%s): %w", meshID, mesh.Name, err)
	}
	info.Width, info.Height = w, h
	info.Influences = make([]float32, info.TargetCount)
	return info, nil
}

// LayerFloats is the float count of one packed layer.
func (ti *TargetInfo) LayerFloats() int {
	return ti.Width * ti.Height * groupFloats
}
