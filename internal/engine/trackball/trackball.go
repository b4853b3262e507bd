// Package trackball implements a virtual trackball that rotates the head
// from mouse drags.
package trackball

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Trackball accumulates drag rotations into a quaternion.
type Trackball struct {
	Rotation mgl32.Quat

	// Size is the ball radius in normalized device coordinates.
	Size float32
	// DragSensitivity scales the rotation produced by a drag.
	DragSensitivity float32
}

// New returns a trackball at rest.
func New() *Trackball {
	return &Trackball{
		Rotation:        mgl32.QuatIdent(),
		Size:            0.8,
		DragSensitivity: 1.0,
	}
}

// Reset returns the ball to the identity rotation.
func (tb *Trackball) Reset() {
	tb.Rotation = mgl32.QuatIdent()
}

// Drag rotates the ball as if the point (x0, y0) was dragged to (x1, y1).
// Coordinates are normalized to [-1, 1] with y pointing up.
func (tb *Trackball) Drag(x0, y0, x1, y1 float32) {
	q := tb.rotation(x0, y0, x1, y1)
	tb.Rotation = q.Mul(tb.Rotation).Normalize()
}

// HandleDrag converts a pixel drag inside a width x height viewport.
func (tb *Trackball) HandleDrag(px0, py0, px1, py1 float32, width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	w, h := float32(width), float32(height)
	tb.Drag(
		(2*px0-w)/w, (h-2*py0)/h,
		(2*px1-w)/w, (h-2*py1)/h,
	)
}

// Matrix returns the rotation as a 4x4 matrix.
func (tb *Trackball) Matrix() mgl32.Mat4 {
	return tb.Rotation.Mat4()
}

func (tb *Trackball) rotation(x0, y0, x1, y1 float32) mgl32.Quat {
	if x0 == x1 && y0 == y1 {
		return mgl32.QuatIdent()
	}
	p0 := mgl32.Vec3{x0, y0, project(tb.Size, x0, y0)}
	p1 := mgl32.Vec3{x1, y1, project(tb.Size, x1, y1)}

	axis := p1.Cross(p0)
	if axis.Len() == 0 {
		return mgl32.QuatIdent()
	}

	t := p0.Sub(p1).Len() / (2 * tb.Size)
	t = mgl32.Clamp(t, -1, 1)
	phi := 2 * float32(math.Asin(float64(t))) * tb.DragSensitivity
	return mgl32.QuatRotate(phi, axis)
}

// project maps (x, y) onto a sphere of radius r, or onto a hyperbolic sheet
// away from the centre.
func project(r, x, y float32) float32 {
	d := float32(math.Hypot(float64(x), float64(y)))
	if d < r*math.Sqrt2/2 {
		return float32(math.Sqrt(float64(r*r - d*d)))
	}
	t := r / math.Sqrt2
	return t * t / d
}
