package pose

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestCombineBottomRow(t *testing.T) {
	tests := []struct {
		name      string
		head      mgl32.Mat4
		trackball mgl32.Mat4
	}{
		{"identity", mgl32.Ident4(), mgl32.Ident4()},
		{"projective head", mgl32.Perspective(1, 1, 0.1, 10), mgl32.Ident4()},
		{"rotated", mgl32.HomogRotate3DY(0.7), mgl32.HomogRotate3DX(-0.3)},
		{"garbage", mgl32.Mat4{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16}, mgl32.Ident4()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, keep := range []bool{false, true} {
				m := Combine(tt.head, tt.trackball, keep)
				if got := m.Row(3); got != (mgl32.Vec4{0, 0, 0, 1}) {
					t.Errorf("keep=%v: bottom row = %v, want [0 0 0 1]", keep, got)
				}
			}
		})
	}
}

func TestCombineTranslation(t *testing.T) {
	head := mgl32.Translate3D(1, 2, 3)

	kept := Combine(head, mgl32.Ident4(), true)
	if got := kept.Col(3); got != (mgl32.Vec4{1, 2, 3, 1}) {
		t.Errorf("kept translation = %v, want [1 2 3 1]", got)
	}

	stripped := Combine(head, mgl32.Ident4(), false)
	if got := stripped.Col(3); got != (mgl32.Vec4{0, 0, 0, 1}) {
		t.Errorf("stripped translation = %v, want [0 0 0 1]", got)
	}
}

func TestCombineOrder(t *testing.T) {
	head := mgl32.HomogRotate3DZ(mgl32.DegToRad(90))
	ball := mgl32.Scale3D(2, 1, 1)

	m := Combine(head, ball, true)
	want := head.Mul4(ball)
	if !m.ApproxEqual(want) {
		t.Errorf("Combine = %v, want head*trackball %v", m, want)
	}
}

func TestFromArrayColumnMajor(t *testing.T) {
	a := [16]float32{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		4, 5, 6, 1,
	}
	m := FromArray(a)
	if m.At(0, 3) != 4 || m.At(1, 3) != 5 || m.At(2, 3) != 6 {
		t.Errorf("translation = %v, want [4 5 6]", m.Col(3))
	}
}
