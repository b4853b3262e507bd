// Package morph finds morph targets in a glTF asset, packs their per-vertex
// deltas into texture layers and maps blendshape weights onto them.
package morph

import (
	"sort"

	"github.com/qmuntal/gltf"
	"go.uber.org/zap"

	"github.com/Faultbox/cartoonhead/internal/logger"
)

// TargetNamesKey is the mesh extras key holding the morph target names.
const TargetNamesKey = "targetNames"

// TargetMap maps target names of one mesh to their index in the
// primitive's target list.
type TargetMap struct {
	Names map[string]int
	// Count is the length of the metadata list, skipped entries included,
	// so indices stay aligned with the primitive targets.
	Count int
}

// Index returns the target index for name.
func (m TargetMap) Index(name string) (int, bool) {
	i, ok := m.Names[name]
	return i, ok
}

// TargetSet maps mesh index to its targets. Meshes without targets are absent.
type TargetSet map[int]TargetMap

// Meshes returns the mesh indices in ascending order.
func (s TargetSet) Meshes() []int {
	ids := make([]int, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// First returns the lowest mesh index with targets. Only this mesh is
// morphed; the others render undeformed.
func (s TargetSet) First() (int, TargetMap, bool) {
	ids := s.Meshes()
	if len(ids) == 0 {
		return -1, TargetMap{}, false
	}
	return ids[0], s[ids[0]], true
}

// Discover scans mesh extras for target name lists. Malformed entries are
// skipped with a warning; absent metadata means the mesh has no targets.
func Discover(doc *gltf.Document) TargetSet {
	set := make(TargetSet)
	for i, mesh := range doc.Meshes {
		names, ok := targetNames(mesh.Extras)
		if !ok || len(names) == 0 {
			continue
		}

		m := TargetMap{Names: make(map[string]int, len(names)), Count: len(names)}
		for idx, raw := range names {
			name, ok := raw.(string)
			if !ok {
				logger.Warn("skipping non-string morph target name",
					zap.Int("mesh", i),
					zap.Int("index", idx),
					zap.Any("value", raw),
				)
				continue
			}
			if name == "" {
				continue
			}
			m.Names[name] = idx
		}
		if len(m.Names) == 0 {
			continue
		}
		set[i] = m
	}
	return set
}

// targetNames pulls the name list out of extras decoded from JSON or built
// in code.
func targetNames(extras any) ([]any, bool) {
	obj, ok := extras.(map[string]any)
	if !ok {
		return nil, false
	}
	switch v := obj[TargetNamesKey].(type) {
	case []any:
		return v, true
	case []string:
		out := make([]any, len(v))
		for i, s := range v {
			out[i] = s
		}
		return out, true
	case nil:
		return nil, false
	default:
		logger.Warn("morph target names are not a list", zap.Any("value", v))
		return nil, false
	}
}
