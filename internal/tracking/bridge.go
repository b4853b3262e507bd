// Package tracking holds the latest face-tracking result handed over by the
// host: blendshape names, their weights and the head-pose matrix.
package tracking

import "sync"

// Frame is one tracking result. Matrix is column-major.
type Frame struct {
	Names   []string
	Weights []float32
	Matrix  [16]float32
	// Mesh optionally names the mesh the weights are meant for; empty means
	// whichever mesh carries the morph targets.
	Mesh string
	// Seq increases with every SetValues call.
	Seq uint64
}

// Len is the number of usable name/weight pairs.
func (f Frame) Len() int {
	return min(len(f.Names), len(f.Weights))
}

// IdentityMatrix is the pose used before the first tracking result.
var IdentityMatrix = [16]float32{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 1, 0,
	0, 0, 0, 1,
}

// Source provides the most recent frame to the render loop.
type Source interface {
	Snapshot() Frame
}

// Bridge stores the latest tracking state. Writers may run on any goroutine;
// the render loop takes a snapshot once per frame and the last write wins.
type Bridge struct {
	mu      sync.Mutex
	names   []string
	weights []float32
	matrix  [16]float32
	mesh    string
	seq     uint64
}

// NewBridge returns a bridge holding an identity pose and no blendshapes.
func NewBridge() *Bridge {
	return &Bridge{matrix: IdentityMatrix}
}

// SetNames sets the blendshape vocabulary and order.
func (b *Bridge) SetNames(names []string) {
	cp := append([]string(nil), names...)
	b.mu.Lock()
	b.names = cp
	b.mu.Unlock()
}

// SetValues stores weights (parallel to the names) and the column-major
// head pose.
func (b *Bridge) SetValues(weights []float32, matrix [16]float32) {
	cp := append([]float32(nil), weights...)
	b.mu.Lock()
	b.weights = cp
	b.matrix = matrix
	b.seq++
	b.mu.Unlock()
}

// SetMesh restricts the weights to the named mesh.
func (b *Bridge) SetMesh(mesh string) {
	b.mu.Lock()
	b.mesh = mesh
	b.mu.Unlock()
}

// Snapshot returns a copy of the current state; the caller owns its slices.
func (b *Bridge) Snapshot() Frame {
	b.mu.Lock()
	defer b.mu.Unlock()
	return Frame{
		Names:   append([]string(nil), b.names...),
		Weights: append([]float32(nil), b.weights...),
		Matrix:  b.matrix,
		Mesh:    b.mesh,
		Seq:     b.seq,
	}
}
