package morph

import "github.com/Faultbox/cartoonhead/internal/tracking"

// Apply rewrites Influences from a tracking frame. Every influence is reset
// first, so targets not named in the frame fall back to zero. Weights
// addressed to another mesh leave everything at zero; unknown names are
// ignored.
func (ti *TargetInfo) Apply(frame tracking.Frame) {
	if ti.Empty() {
		return
	}
	clear(ti.Influences)
	if frame.Mesh != "" && frame.Mesh != ti.MeshName {
		return
	}
	for i := range frame.Len() {
		idx, ok := ti.Targets.Index(frame.Names[i])
		if !ok || idx >= len(ti.Influences) {
			continue
		}
		ti.Influences[idx] = frame.Weights[i]
	}
}
