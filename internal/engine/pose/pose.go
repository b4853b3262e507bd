// Package pose turns the tracker's head matrix into the model-view-projection
// matrix handed to the shader.
package pose

import "github.com/go-gl/mathgl/mgl32"

// Combine returns head × trackball with the bottom row forced to [0 0 0 1],
// so the result never carries a projective component. Unless keepTranslation
// is set the translation column is cleared too and the head stays centred.
func Combine(head, trackball mgl32.Mat4, keepTranslation bool) mgl32.Mat4 {
	m := head.Mul4(trackball)
	m.SetRow(3, mgl32.Vec4{0, 0, 0, 1})
	if !keepTranslation {
		m.SetCol(3, mgl32.Vec4{0, 0, 0, 1})
	}
	return m
}

// FromArray reads a column-major matrix as delivered by the tracker.
func FromArray(a [16]float32) mgl32.Mat4 {
	return mgl32.Mat4(a)
}
