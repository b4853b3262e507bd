package gpu

import (
	"fmt"

	gl "github.com/go-gl/gl/v3.1/gles2"
	"go.uber.org/zap"

	"github.com/Faultbox/cartoonhead/internal/engine/glcheck"
	"github.com/Faultbox/cartoonhead/internal/logger"
	"github.com/Faultbox/cartoonhead/internal/morph"
)

// Limits are the GL size limits relevant to the upload.
type Limits struct {
	MaxTextureSize int
	MaxArrayLayers int
}

// QueryLimits reads the limits from the current context.
func QueryLimits() Limits {
	var size, layers int32
	gl.GetIntegerv(gl.MAX_TEXTURE_SIZE, &size)
	gl.GetIntegerv(gl.MAX_ARRAY_TEXTURE_LAYERS, &layers)
	return Limits{MaxTextureSize: int(size), MaxArrayLayers: int(layers)}
}

// CheckMorphTexture validates the packed layers against info and limits.
func CheckMorphTexture(info *morph.TargetInfo, layers []morph.Layer, lim Limits) error {
	if len(layers) != info.TargetCount {
		return fmt.Errorf("%d packed layers for %d targets", len(layers), info.TargetCount)
	}
	if lim.MaxArrayLayers > 0 && len(layers) > lim.MaxArrayLayers {
		return fmt.Errorf("%d morph targets exceed %d array layers", len(layers), lim.MaxArrayLayers)
	}
	for i, l := range layers {
		if len(l.Data) != info.LayerFloats() {
			return fmt.Errorf("layer %d holds %d floats, want %d", i, len(l.Data), info.LayerFloats())
		}
	}
	return nil
}

// UploadMorphTexture allocates an RGBA32F texture array of
// Width x Height x TargetCount and fills one layer per target.
func UploadMorphTexture(info *morph.TargetInfo, layers []morph.Layer, lim Limits) (uint32, error) {
	if info.Empty() {
		return 0, nil
	}
	if err := CheckMorphTexture(info, layers, lim); err != nil {
		return 0, err
	}

	var id uint32
	err := glcheck.Run("upload morph texture", func() {
		gl.GenTextures(1, &id)
		gl.BindTexture(gl.TEXTURE_2D_ARRAY, id)
		gl.TexParameteri(gl.TEXTURE_2D_ARRAY, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
		gl.TexParameteri(gl.TEXTURE_2D_ARRAY, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
		gl.TexParameteri(gl.TEXTURE_2D_ARRAY, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
		gl.TexParameteri(gl.TEXTURE_2D_ARRAY, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
		gl.TexStorage3D(gl.TEXTURE_2D_ARRAY, 1, gl.RGBA32F,
			int32(info.Width), int32(info.Height), int32(len(layers)))
		for i, l := range layers {
			gl.TexSubImage3D(gl.TEXTURE_2D_ARRAY, 0, 0, 0, int32(i),
				int32(info.Width), int32(info.Height), 1,
				gl.RGBA, gl.FLOAT, gl.Ptr(l.Data))
		}
		gl.BindTexture(gl.TEXTURE_2D_ARRAY, 0)
	})
	if err != nil {
		gl.DeleteTextures(1, &id)
		return 0, err
	}

	logger.Info("morph texture uploaded",
		zap.String("mesh", info.MeshName),
		zap.Int("width", info.Width),
		zap.Int("height", info.Height),
		zap.Int("layers", len(layers)),
	)
	return id, nil
}
