package scene

import (
	"github.com/qmuntal/gltf"
	"go.uber.org/zap"

	"github.com/Faultbox/cartoonhead/internal/logger"
)

// ActiveScene returns the default scene, or scene 0 when none is set.
func ActiveScene(doc *gltf.Document) (int, bool) {
	if len(doc.Scenes) == 0 {
		return 0, false
	}
	if doc.Scene != nil && int(*doc.Scene) < len(doc.Scenes) {
		return int(*doc.Scene), true
	}
	return 0, true
}

// Walk visits the nodes of scene depth-first, parents before children and
// siblings in declaration order. Every node is visited at most once, so
// malformed assets with cycles or shared children still terminate.
func Walk(doc *gltf.Document, scene int, visit func(index int, node *gltf.Node)) {
	if scene < 0 || scene >= len(doc.Scenes) {
		return
	}
	roots := doc.Scenes[scene].Nodes

	stack := make([]uint32, 0, len(roots))
	for i := len(roots) - 1; i >= 0; i-- {
		stack = append(stack, roots[i])
	}
	visited := make(map[uint32]bool)

	for len(stack) > 0 {
		idx := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if int(idx) >= len(doc.Nodes) {
			logger.Warn("skipping missing node", zap.Uint32("node", idx))
			continue
		}
		if visited[idx] {
			continue
		}
		visited[idx] = true

		node := doc.Nodes[idx]
		visit(int(idx), node)
		for i := len(node.Children) - 1; i >= 0; i-- {
			stack = append(stack, node.Children[i])
		}
	}
}
