package scene

import (
	"testing"

	gl "github.com/go-gl/gl/v3.1/gles2"
	"github.com/qmuntal/gltf"

	"github.com/Faultbox/cartoonhead/internal/headtest"
	"github.com/Faultbox/cartoonhead/internal/morph"
)

func TestActiveScene(t *testing.T) {
	tests := []struct {
		name   string
		doc    *gltf.Document
		want   int
		wantOK bool
	}{
		{"no scenes", &gltf.Document{}, 0, false},
		{"no default", &gltf.Document{Scenes: []*gltf.Scene{{}, {}}}, 0, true},
		{"default", &gltf.Document{Scenes: []*gltf.Scene{{}, {}}, Scene: gltf.Index(1)}, 1, true},
		{"default out of range", &gltf.Document{Scenes: []*gltf.Scene{{}}, Scene: gltf.Index(3)}, 0, true},
	}
	for _, tt := range tests {
		got, ok := ActiveScene(tt.doc)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("%s: ActiveScene() = %d, %v; want %d, %v", tt.name, got, ok, tt.want, tt.wantOK)
		}
	}
}

func walkOrder(doc *gltf.Document, scene int) []int {
	var order []int
	Walk(doc, scene, func(i int, _ *gltf.Node) { order = append(order, i) })
	return order
}

func equal(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestWalkPreOrder(t *testing.T) {
	//    0       4
	//   / \
	//  1   3
	//  |
	//  2
	doc := &gltf.Document{
		Nodes: []*gltf.Node{
			{Children: []uint32{1, 3}},
			{Children: []uint32{2}},
			{},
			{},
			{},
		},
		Scenes: []*gltf.Scene{{Nodes: []uint32{0, 4}}},
	}
	if got, want := walkOrder(doc, 0), []int{0, 1, 2, 3, 4}; !equal(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
}

func TestWalkCycle(t *testing.T) {
	doc := &gltf.Document{
		Nodes: []*gltf.Node{
			{Children: []uint32{1}},
			{Children: []uint32{0, 1, 2}},
			{Children: []uint32{0}},
		},
		Scenes: []*gltf.Scene{{Nodes: []uint32{0, 2}}},
	}
	if got, want := walkOrder(doc, 0), []int{0, 1, 2}; !equal(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
}

func TestWalkMissingNodes(t *testing.T) {
	doc := &gltf.Document{
		Nodes:  []*gltf.Node{{Children: []uint32{7}}},
		Scenes: []*gltf.Scene{{Nodes: []uint32{9, 0}}},
	}
	if got, want := walkOrder(doc, 0), []int{0}; !equal(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
	if got := walkOrder(doc, 4); len(got) != 0 {
		t.Errorf("walk of missing scene visited %v", got)
	}
}

func TestWalkHead(t *testing.T) {
	doc := headtest.Head(headtest.Options{Vertices: 3, Targets: 1})
	var meshes []int
	Walk(doc, 0, func(_ int, n *gltf.Node) {
		if n.Mesh != nil {
			meshes = append(meshes, int(*n.Mesh))
		}
	})
	if !equal(meshes, []int{1, 0}) {
		t.Errorf("meshes in draw order = %v, want [1 0]", meshes)
	}
}

func TestDrawMode(t *testing.T) {
	tests := map[gltf.PrimitiveMode]uint32{
		gltf.PrimitiveTriangles:     gl.TRIANGLES,
		gltf.PrimitiveTriangleStrip: gl.TRIANGLE_STRIP,
		gltf.PrimitiveTriangleFan:   gl.TRIANGLE_FAN,
		gltf.PrimitivePoints:        gl.POINTS,
		gltf.PrimitiveLines:         gl.LINES,
		gltf.PrimitiveLineLoop:      gl.LINE_LOOP,
		gltf.PrimitiveLineStrip:     gl.LINE_STRIP,
	}
	for mode, want := range tests {
		if got := DrawMode(mode); got != want {
			t.Errorf("DrawMode(%v) = 0x%x, want 0x%x", mode, got, want)
		}
	}
}

func TestComponentType(t *testing.T) {
	tests := map[gltf.ComponentType]uint32{
		gltf.ComponentFloat:  gl.FLOAT,
		gltf.ComponentByte:   gl.BYTE,
		gltf.ComponentUbyte:  gl.UNSIGNED_BYTE,
		gltf.ComponentShort:  gl.SHORT,
		gltf.ComponentUshort: gl.UNSIGNED_SHORT,
		gltf.ComponentUint:   gl.UNSIGNED_INT,
	}
	for c, want := range tests {
		got, ok := ComponentType(c)
		if !ok || got != want {
			t.Errorf("ComponentType(%v) = 0x%x, %v; want 0x%x", c, got, ok, want)
		}
	}
}

func TestLayout(t *testing.T) {
	doc := &gltf.Document{BufferViews: []*gltf.BufferView{{ByteStride: 32}}}
	l, ok := Layout(doc, &gltf.Accessor{
		BufferView:    gltf.Index(0),
		ComponentType: gltf.ComponentUshort,
		Type:          gltf.AccessorVec2,
		Normalized:    true,
	})
	if !ok {
		t.Fatal("Layout() rejected a VEC2 ushort accessor")
	}
	want := AttribLayout{Size: 2, Type: gl.UNSIGNED_SHORT, Normalized: true, Stride: 32}
	if l != want {
		t.Errorf("Layout() = %+v, want %+v", l, want)
	}

	if _, ok := Layout(doc, &gltf.Accessor{ComponentType: gltf.ComponentFloat, Type: gltf.AccessorMat4}); ok {
		t.Error("Layout() accepted a MAT4 attribute")
	}
}

func TestMeshUniforms(t *testing.T) {
	doc := headtest.Head(headtest.Options{Vertices: 10, Targets: 3})
	info, err := morph.BuildTargetInfo(doc, morph.Discover(doc), 8)
	if err != nil {
		t.Fatal(err)
	}
	copy(info.Influences, []float32{0.5, 0, 1})

	u := meshUniforms(info, 0, true)
	if u.HasTargets != 1 || u.BaseInfluence != 1 {
		t.Errorf("morph mesh: hasTargets=%d base=%v, want 1 1", u.HasTargets, u.BaseInfluence)
	}
	if u.TextureSize != [2]int32{8, 2} {
		t.Errorf("texture size = %v, want [8 2]", u.TextureSize)
	}
	if u.Influences[0] != 0.5 || u.Influences[2] != 1 {
		t.Errorf("influences = %v", u.Influences)
	}

	other := meshUniforms(info, 1, true)
	if other.HasTargets != 0 || len(other.Influences) != 3 {
		t.Errorf("other mesh: hasTargets=%d n=%d, want 0 3", other.HasTargets, len(other.Influences))
	}
	for i, v := range other.Influences {
		if v != 0 {
			t.Errorf("other mesh influence %d = %v, want 0", i, v)
		}
	}

	if unbound := meshUniforms(info, 0, false); unbound.HasTargets != 0 {
		t.Error("hasTargets set without a morph sampler")
	}

	none := meshUniforms(morph.NoMorph(), 0, true)
	if none.HasTargets != 0 || len(none.Influences) != 1 || none.Influences[0] != 0 {
		t.Errorf("no morph = %+v, want one zero influence", none)
	}
}

func TestMeshUniformsCopies(t *testing.T) {
	doc := headtest.Head(headtest.Options{Vertices: 2, Targets: 1})
	info, err := morph.BuildTargetInfo(doc, morph.Discover(doc), 8)
	if err != nil {
		t.Fatal(err)
	}
	u := meshUniforms(info, 0, true)
	u.Influences[0] = 9
	if info.Influences[0] != 0 {
		t.Error("meshUniforms shares the influence slice")
	}
}
