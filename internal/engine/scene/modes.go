package scene

import (
	gl "github.com/go-gl/gl/v3.1/gles2"
	"github.com/qmuntal/gltf"
)

// DrawMode maps a glTF primitive topology to its GL draw mode.
func DrawMode(m gltf.PrimitiveMode) uint32 {
	switch m {
	case gltf.PrimitivePoints:
		return gl.POINTS
	case gltf.PrimitiveLines:
		return gl.LINES
	case gltf.PrimitiveLineLoop:
		return gl.LINE_LOOP
	case gltf.PrimitiveLineStrip:
		return gl.LINE_STRIP
	case gltf.PrimitiveTriangleStrip:
		return gl.TRIANGLE_STRIP
	case gltf.PrimitiveTriangleFan:
		return gl.TRIANGLE_FAN
	}
	return gl.TRIANGLES
}

// ComponentType maps a glTF component type to its GL type.
func ComponentType(c gltf.ComponentType) (uint32, bool) {
	switch c {
	case gltf.ComponentFloat:
		return gl.FLOAT, true
	case gltf.ComponentByte:
		return gl.BYTE, true
	case gltf.ComponentUbyte:
		return gl.UNSIGNED_BYTE, true
	case gltf.ComponentShort:
		return gl.SHORT, true
	case gltf.ComponentUshort:
		return gl.UNSIGNED_SHORT, true
	case gltf.ComponentUint:
		return gl.UNSIGNED_INT, true
	}
	return 0, false
}

// AttribLayout is the vertex attribute pointer setup for one accessor.
type AttribLayout struct {
	Size       int32
	Type       uint32
	Normalized bool
	Stride     int32
}

// Layout derives the attribute pointer setup of accessor acc.
func Layout(doc *gltf.Document, acc *gltf.Accessor) (AttribLayout, bool) {
	typ, ok := ComponentType(acc.ComponentType)
	if !ok {
		return AttribLayout{}, false
	}
	l := AttribLayout{
		Size:       int32(acc.Type.Components()),
		Type:       typ,
		Normalized: acc.Normalized,
	}
	if l.Size < 1 || l.Size > 4 {
		return AttribLayout{}, false
	}
	if acc.BufferView != nil && int(*acc.BufferView) < len(doc.BufferViews) {
		l.Stride = int32(doc.BufferViews[*acc.BufferView].ByteStride)
	}
	return l, true
}
