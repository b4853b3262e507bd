// Package gpu uploads glTF buffers, textures and the packed morph targets
// to the GL context.
package gpu

import (
	"encoding/binary"
	"fmt"

	gl "github.com/go-gl/gl/v3.1/gles2"
	"github.com/qmuntal/gltf"
	"go.uber.org/zap"

	"github.com/Faultbox/cartoonhead/internal/logger"
)

// Binding is the GL buffer and byte offset an accessor reads from.
type Binding struct {
	Buffer uint32
	Offset int
}

// Buffers holds one GL buffer per vertex/index buffer view and one per
// sparse accessor.
type Buffers struct {
	views  map[int]uint32
	sparse map[int]uint32
}

// Accessor returns where accessor acc is bound.
func (b *Buffers) Accessor(doc *gltf.Document, acc int) (Binding, bool) {
	if acc < 0 || acc >= len(doc.Accessors) {
		return Binding{}, false
	}
	a := doc.Accessors[acc]
	if buf, ok := b.sparse[acc]; ok {
		return Binding{Buffer: buf, Offset: int(a.ByteOffset)}, true
	}
	if a.BufferView == nil {
		return Binding{}, false
	}
	buf, ok := b.views[int(*a.BufferView)]
	return Binding{Buffer: buf, Offset: int(a.ByteOffset)}, ok
}

// Delete releases every GL buffer.
func (b *Buffers) Delete() {
	for _, id := range b.views {
		gl.DeleteBuffers(1, &id)
	}
	for _, id := range b.sparse {
		gl.DeleteBuffers(1, &id)
	}
	b.views, b.sparse = nil, nil
}

// ViewTargets returns the GL bind target of every buffer view used for
// vertex or index data. Views without a declared target get one from how the
// mesh primitives use them.
func ViewTargets(doc *gltf.Document) map[int]uint32 {
	used := make(map[int]uint32)
	mark := func(acc uint32, target uint32) {
		if int(acc) >= len(doc.Accessors) {
			return
		}
		if v := doc.Accessors[acc].BufferView; v != nil {
			if _, ok := used[int(*v)]; !ok {
				used[int(*v)] = target
			}
		}
	}
	for _, mesh := range doc.Meshes {
		for _, prim := range mesh.Primitives {
			if prim.Indices != nil {
				mark(*prim.Indices, gl.ELEMENT_ARRAY_BUFFER)
			}
			for _, acc := range prim.Attributes {
				mark(acc, gl.ARRAY_BUFFER)
			}
		}
	}

	targets := make(map[int]uint32, len(used))
	for i, view := range doc.BufferViews {
		switch view.Target {
		case gltf.TargetArrayBuffer:
			targets[i] = gl.ARRAY_BUFFER
		case gltf.TargetElementArrayBuffer:
			targets[i] = gl.ELEMENT_ARRAY_BUFFER
		default:
			if t, ok := used[i]; ok {
				targets[i] = t
			}
		}
	}
	return targets
}

// UploadBuffers uploads the vertex and index views of doc and a patched copy
// for every sparse accessor a primitive reads.
func UploadBuffers(doc *gltf.Document) (*Buffers, error) {
	b := &Buffers{views: make(map[int]uint32), sparse: make(map[int]uint32)}

	for view, target := range ViewTargets(doc) {
		data, err := viewData(doc, view)
		if err != nil {
			logger.Warn("skipping buffer view", zap.Int("view", view), zap.Error(err))
			continue
		}
		b.views[view] = upload(target, data)
	}

	for _, acc := range sparseAccessors(doc) {
		data, err := PatchedView(doc, acc)
		if err != nil {
			logger.Warn("skipping sparse accessor", zap.Int("accessor", acc), zap.Error(err))
			continue
		}
		b.sparse[acc] = upload(gl.ARRAY_BUFFER, data)
	}

	logger.Debug("buffers uploaded",
		zap.Int("views", len(b.views)),
		zap.Int("sparse", len(b.sparse)),
	)
	return b, nil
}

func upload(target uint32, data []byte) uint32 {
	var id uint32
	gl.GenBuffers(1, &id)
	gl.BindBuffer(target, id)
	if len(data) > 0 {
		gl.BufferData(target, len(data), gl.Ptr(data), gl.STATIC_DRAW)
	}
	gl.BindBuffer(target, 0)
	return id
}

// sparseAccessors lists the sparse accessors used as primitive attributes.
func sparseAccessors(doc *gltf.Document) []int {
	seen := make(map[int]bool)
	var out []int
	for _, mesh := range doc.Meshes {
		for _, prim := range mesh.Primitives {
			for _, acc := range prim.Attributes {
				i := int(acc)
				if i < len(doc.Accessors) && doc.Accessors[i].Sparse != nil && !seen[i] {
					seen[i] = true
					out = append(out, i)
				}
			}
		}
	}
	return out
}

func viewData(doc *gltf.Document, v int) ([]byte, error) {
	if v < 0 || v >= len(doc.BufferViews) {
		return nil, fmt.Errorf("buffer view %d out of range", v)
	}
	view := doc.BufferViews[v]
	if int(view.Buffer) >= len(doc.Buffers) {
		return nil, fmt.Errorf("buffer %d out of range", view.Buffer)
	}
	data := doc.Buffers[view.Buffer].Data
	start, end := int(view.ByteOffset), int(view.ByteOffset)+int(view.ByteLength)
	if end > len(data) {
		return nil, fmt.Errorf("buffer view %d exceeds buffer (%d > %d)", v, end, len(data))
	}
	return data[start:end], nil
}

func elementSize(acc *gltf.Accessor) int {
	return int(acc.ComponentType.ByteSize() * acc.Type.Components())
}

// PatchedView returns a copy of the buffer view behind accessor acc with its
// sparse substitutions applied. Element i of the accessor lives at
// ByteOffset + i*stride in the returned bytes, as in the source view. An
// accessor without a base view starts from zeros.
func PatchedView(doc *gltf.Document, acc int) ([]byte, error) {
	if acc < 0 || acc >= len(doc.Accessors) {
		return nil, fmt.Errorf("accessor %d out of range", acc)
	}
	a := doc.Accessors[acc]
	elem := elementSize(a)
	if elem == 0 {
		return nil, fmt.Errorf("accessor %d has no element size", acc)
	}

	stride := elem
	var out []byte
	if a.BufferView != nil {
		base, err := viewData(doc, int(*a.BufferView))
		if err != nil {
			return nil, err
		}
		if s := doc.BufferViews[*a.BufferView].ByteStride; s != 0 {
			stride = int(s)
		}
		out = append([]byte(nil), base...)
	} else {
		out = make([]byte, int(a.ByteOffset)+int(a.Count)*stride)
	}

	if a.Sparse == nil || a.Sparse.Count == 0 {
		return out, nil
	}
	sp := a.Sparse

	idxData, err := viewData(doc, int(sp.Indices.BufferView))
	if err != nil {
		return nil, fmt.Errorf("sparse indices: %w", err)
	}
	valData, err := viewData(doc, int(sp.Values.BufferView))
	if err != nil {
		return nil, fmt.Errorf("sparse values: %w", err)
	}
	idxData = idxData[min(int(sp.Indices.ByteOffset), len(idxData)):]
	valData = valData[min(int(sp.Values.ByteOffset), len(valData)):]

	idxSize := int(sp.Indices.ComponentType.ByteSize())
	count := int(sp.Count)
	if len(idxData) < count*idxSize || len(valData) < count*elem {
		return nil, fmt.Errorf("sparse data shorter than %d entries", count)
	}

	for k := range count {
		var index int
		switch sp.Indices.ComponentType {
		case gltf.ComponentUbyte:
			index = int(idxData[k])
		case gltf.ComponentUshort:
			index = int(binary.LittleEndian.Uint16(idxData[k*2:]))
		case gltf.ComponentUint:
			index = int(binary.LittleEndian.Uint32(idxData[k*4:]))
		default:
			return nil, fmt.Errorf("sparse index component type %v not allowed", sp.Indices.ComponentType)
		}
		if index >= int(a.Count) {
			return nil, fmt.Errorf("sparse index %d beyond accessor count %d", index, a.Count)
		}
		dst := int(a.ByteOffset) + index*stride
		if dst+elem > len(out) {
			return nil, fmt.Errorf("sparse index %d outside buffer view", index)
		}
		copy(out[dst:dst+elem], valData[k*elem:(k+1)*elem])
	}
	return out, nil
}
