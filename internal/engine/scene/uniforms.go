package scene

import "github.com/Faultbox/cartoonhead/internal/morph"

// MeshUniforms are the per-mesh morph uniform values.
type MeshUniforms struct {
	Influences    []float32
	BaseInfluence float32
	HasTargets    int32
	TextureSize   [2]int32
}

// meshUniforms computes the morph uniforms for mesh. Only the morph mesh
// gets its influences, other meshes get zeros. hasTargets additionally
// requires the program to sample the morph texture.
func meshUniforms(info *morph.TargetInfo, mesh int, samplerBound bool) MeshUniforms {
	n := 1
	if !info.Empty() {
		n = max(len(info.Influences), 1)
	}
	u := MeshUniforms{
		Influences:    make([]float32, n),
		BaseInfluence: 1,
	}
	if info.Empty() || mesh != info.MeshID {
		return u
	}
	copy(u.Influences, info.Influences)
	u.TextureSize = [2]int32{int32(info.Width), int32(info.Height)}
	if samplerBound {
		u.HasTargets = 1
	}
	return u
}
