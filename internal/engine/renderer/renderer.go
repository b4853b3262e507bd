// Package renderer drives the head through the surface lifecycle: context
// creation, resize and one call per displayed frame.
package renderer

import (
	"errors"
	"fmt"

	gl "github.com/go-gl/gl/v3.1/gles2"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"go.uber.org/zap"

	"github.com/Faultbox/cartoonhead/internal/assets"
	"github.com/Faultbox/cartoonhead/internal/engine/glcheck"
	"github.com/Faultbox/cartoonhead/internal/engine/gpu"
	"github.com/Faultbox/cartoonhead/internal/engine/pose"
	"github.com/Faultbox/cartoonhead/internal/engine/scene"
	"github.com/Faultbox/cartoonhead/internal/engine/shader"
	"github.com/Faultbox/cartoonhead/internal/engine/shaders"
	"github.com/Faultbox/cartoonhead/internal/logger"
	"github.com/Faultbox/cartoonhead/internal/morph"
	"github.com/Faultbox/cartoonhead/internal/tracking"
)

// Config holds renderer configuration.
type Config struct {
	ClearColor [4]float32
	// MaxTextureSize caps the morph and diffuse textures below the GL limit;
	// zero uses the GL limit.
	MaxTextureSize  int
	KeepTranslation bool
	SquareViewport  bool
}

// Rotator supplies the interactive rotation applied after the head pose.
type Rotator interface {
	Matrix() mgl32.Mat4
}

// Context renders one asset. All methods must be called on the thread that
// owns the GL context.
type Context struct {
	config Config
	asset  *assets.Asset
	source tracking.Source
	rot    Rotator

	width, height int

	inited   bool
	program  uint32
	info     *morph.TargetInfo
	buffers  *gpu.Buffers
	textures *gpu.Textures
	morphTex uint32
	drawer   *scene.Drawer

	// run executes a group of GL calls and reports the errors they raised.
	run func(step string, fn func()) error
}

// New creates a renderer for asset. GL resources are created lazily on the
// first frame.
func New(cfg Config, asset *assets.Asset, source tracking.Source, rot Rotator) *Context {
	return &Context{config: cfg, asset: asset, source: source, rot: rot, run: glcheck.Run}
}

// SurfaceCreated loads the GL entry points of a freshly created context.
// Resources of a previous context are gone, so initialisation runs again on
// the next frame.
func (c *Context) SurfaceCreated() error {
	if err := gl.Init(); err != nil {
		return fmt.Errorf("failed to initialize OpenGL ES: %w", err)
	}
	logger.Info("OpenGL ES initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
		zap.String("glsl", gl.GoStr(gl.GetString(gl.SHADING_LANGUAGE_VERSION))),
	)
	c.inited = false
	return nil
}

// SurfaceChanged handles window resize.
func (c *Context) SurfaceChanged(width, height int) {
	c.width, c.height = width, height
	x, y, w, h := Viewport(width, height, c.config.SquareViewport)
	gl.Viewport(x, y, w, h)
	logger.Debug("surface changed",
		zap.Int("width", width),
		zap.Int("height", height),
		zap.Int32("viewport_w", w),
		zap.Int32("viewport_h", h),
	)
}

// Size returns the current surface size.
func (c *Context) Size() (int, int) {
	return c.width, c.height
}

// Viewport returns the viewport for a width x height surface. A square
// viewport covers the longer side and is centred, so the head keeps its
// aspect ratio.
func Viewport(width, height int, square bool) (x, y, w, h int32) {
	if !square {
		return 0, 0, int32(width), int32(height)
	}
	side := max(width, height)
	return int32((width - side) / 2), int32((height - side) / 2), int32(side), int32(side)
}

// Info returns the resolved morph configuration, nil before the first frame.
func (c *Context) Info() *morph.TargetInfo {
	return c.info
}

// Frame renders one frame: initialises on first use, applies the latest
// tracking state and draws the scene. GL errors raised while drawing are
// returned; the pipeline has no degraded mode, so callers treat them as
// fatal.
func (c *Context) Frame() error {
	if !c.inited {
		if err := c.init(); err != nil {
			return err
		}
		c.inited = true
	}

	frame := c.source.Snapshot()
	c.info.Apply(frame)

	rot := mgl32.Ident4()
	if c.rot != nil {
		rot = c.rot.Matrix()
	}
	mvp := pose.Combine(pose.FromArray(frame.Matrix), rot, c.config.KeepTranslation)

	return c.run("draw", func() {
		cc := c.config.ClearColor
		gl.ClearColor(cc[0], cc[1], cc[2], cc[3])
		gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
		gl.Enable(gl.DEPTH_TEST)
		c.drawer.Draw(c.asset.Doc, c.info, mvp)
		gl.Flush()
	})
}

func (c *Context) init() error {
	doc := c.asset.Doc
	lim := gpu.QueryLimits()
	maxSize := lim.MaxTextureSize
	if c.config.MaxTextureSize > 0 && (maxSize <= 0 || c.config.MaxTextureSize < maxSize) {
		maxSize = c.config.MaxTextureSize
	}

	info, err := ResolveMorph(doc, maxSize)
	if err != nil {
		return err
	}
	c.info = info

	src := shader.VertexSource(shaders.MorphVertexShader, info.TargetCount, info.VertexDataCount)
	program, err := shader.CompileProgram(src, shaders.MorphFragmentShader)
	if err != nil {
		return fmt.Errorf("morph shader: %w", err)
	}
	c.program = program

	loc, err := shader.Resolve(program)
	if err != nil {
		return err
	}

	if c.buffers, err = gpu.UploadBuffers(doc); err != nil {
		return err
	}
	c.textures = gpu.UploadTextures(c.asset, maxSize)

	if !info.Empty() {
		layers, err := morph.Pack(doc, info)
		if err != nil {
			return err
		}
		if c.morphTex, err = gpu.UploadMorphTexture(info, layers, lim); err != nil {
			return err
		}
	}

	c.drawer = scene.NewDrawer(program, loc, c.buffers, c.textures, c.morphTex)
	if err := c.run("use program", func() { gl.UseProgram(program) }); err != nil {
		return err
	}

	logger.Info("renderer initialized",
		zap.String("asset", c.asset.Name),
		zap.Int("meshes", len(doc.Meshes)),
		zap.String("morph_mesh", info.MeshName),
		zap.Int("targets", info.TargetCount),
		zap.Int("max_texture_size", maxSize),
	)
	return nil
}

// ResolveMorph discovers the morph mesh of doc. Assets without targets, or
// whose targets do not match any primitive, render without morphing; data
// that cannot fit a texture is an error.
func ResolveMorph(doc *gltf.Document, maxSize int) (*morph.TargetInfo, error) {
	info, err := morph.BuildTargetInfo(doc, morph.Discover(doc), maxSize)
	switch {
	case err == nil:
		return info, nil
	case errors.Is(err, morph.ErrNoTargets):
		logger.Info("asset has no morph targets")
		return morph.NoMorph(), nil
	case errors.Is(err, morph.ErrTextureTooLarge):
		return nil, err
	default:
		logger.Warn("morph targets unusable, rendering without morphing", zap.Error(err))
		return morph.NoMorph(), nil
	}
}

// Close releases all GL resources.
func (c *Context) Close() {
	logger.Info("closing renderer")
	if c.drawer != nil {
		c.drawer.Close()
	}
	if c.buffers != nil {
		c.buffers.Delete()
	}
	if c.textures != nil {
		c.textures.Delete()
	}
	if c.morphTex != 0 {
		gl.DeleteTextures(1, &c.morphTex)
	}
	if c.program != 0 {
		gl.DeleteProgram(c.program)
	}
	c.inited = false
}
