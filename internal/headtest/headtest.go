// Package headtest builds small in-memory glTF heads for tests.
package headtest

import (
	"fmt"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// Options describes the morph mesh to build.
type Options struct {
	Vertices int
	Targets  int
	Normal   bool
	Color    bool
	// Names is stored verbatim under extras.targetNames. Nil generates
	// "t0".."tN-1".
	Names []any
	// ExtraPrimitive adds a leading primitive without targets to the morph
	// mesh.
	ExtraPrimitive bool
}

// PositionDelta is the position delta of vertex v in target t.
func PositionDelta(t, v int) [3]float32 {
	return [3]float32{float32(t + 1), float32(v), 0.5}
}

// NormalDelta is the normal delta of vertex v in target t.
func NormalDelta(t, v int) [3]float32 {
	return [3]float32{-float32(t + 1), 0.25, float32(v)}
}

// ColorDelta is the color delta of vertex v in target t.
func ColorDelta(t, v int) [4]float32 {
	return [4]float32{0.1 * float32(t), 0.01 * float32(v), 0.75, 0.5}
}

// Names returns n generated target names.
func Names(n int) []any {
	out := make([]any, n)
	for i := range out {
		out[i] = fmt.Sprintf("t%d", i)
	}
	return out
}

// Head builds a document with two meshes: mesh 0 is the morph mesh ("head"),
// mesh 1 a plain triangle ("eyes"). The scene places "eyes" at the root
// with "head" as its child.
func Head(o Options) *gltf.Document {
	doc := &gltf.Document{Buffers: []*gltf.Buffer{{}}}

	names := o.Names
	if names == nil {
		names = Names(o.Targets)
	}

	positions := make([][3]float32, o.Vertices)
	for v := range positions {
		positions[v] = [3]float32{float32(v), 0, 0}
	}
	base := modeler.WritePosition(doc, positions)

	targets := make([]map[string]uint32, o.Targets)
	for t := range targets {
		pos := make([][3]float32, o.Vertices)
		var nrm [][3]float32
		var col [][4]float32
		for v := range pos {
			pos[v] = PositionDelta(t, v)
		}
		attrs := map[string]uint32{
			gltf.POSITION: modeler.WriteAccessor(doc, gltf.TargetArrayBuffer, pos),
		}
		if o.Normal {
			nrm = make([][3]float32, o.Vertices)
			for v := range nrm {
				nrm[v] = NormalDelta(t, v)
			}
			attrs[gltf.NORMAL] = modeler.WriteAccessor(doc, gltf.TargetArrayBuffer, nrm)
		}
		if o.Color {
			col = make([][4]float32, o.Vertices)
			for v := range col {
				col[v] = ColorDelta(t, v)
			}
			attrs[gltf.COLOR_0] = modeler.WriteAccessor(doc, gltf.TargetArrayBuffer, col)
		}
		targets[t] = attrs
	}

	morphPrim := &gltf.Primitive{
		Attributes: map[string]uint32{gltf.POSITION: base},
		Mode:       gltf.PrimitiveTriangles,
	}
	for _, t := range targets {
		morphPrim.Targets = append(morphPrim.Targets, t)
	}

	head := &gltf.Mesh{
		Name:   "head",
		Extras: map[string]any{"targetNames": names},
	}
	if o.ExtraPrimitive {
		head.Primitives = append(head.Primitives, &gltf.Primitive{
			Attributes: map[string]uint32{gltf.POSITION: base},
			Mode:       gltf.PrimitiveTriangles,
		})
	}
	head.Primitives = append(head.Primitives, morphPrim)

	tri := modeler.WritePosition(doc, [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}})
	idx := modeler.WriteIndices(doc, []uint16{0, 1, 2})
	eyes := &gltf.Mesh{
		Name: "eyes",
		Primitives: []*gltf.Primitive{{
			Attributes: map[string]uint32{gltf.POSITION: tri},
			Indices:    gltf.Index(idx),
			Mode:       gltf.PrimitiveTriangles,
		}},
	}
	doc.Meshes = []*gltf.Mesh{head, eyes}

	doc.Nodes = []*gltf.Node{
		{Name: "root", Mesh: gltf.Index(1), Children: []uint32{1}},
		{Name: "head", Mesh: gltf.Index(0)},
	}
	doc.Scenes = []*gltf.Scene{{Name: "scene", Nodes: []uint32{0}}}
	doc.Scene = gltf.Index(0)
	return doc
}
