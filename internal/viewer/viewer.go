// Package viewer implements the interactive head viewer: window, input,
// tracking sources and the render loop.
package viewer

import (
	"context"
	"fmt"
	"time"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/cartoonhead/internal/assets"
	"github.com/Faultbox/cartoonhead/internal/config"
	"github.com/Faultbox/cartoonhead/internal/engine/debug"
	"github.com/Faultbox/cartoonhead/internal/engine/input"
	"github.com/Faultbox/cartoonhead/internal/engine/renderer"
	"github.com/Faultbox/cartoonhead/internal/engine/trackball"
	"github.com/Faultbox/cartoonhead/internal/engine/window"
	"github.com/Faultbox/cartoonhead/internal/logger"
	"github.com/Faultbox/cartoonhead/internal/tracking"
	"github.com/Faultbox/cartoonhead/internal/tracking/clip"
	"github.com/Faultbox/cartoonhead/internal/tracking/wsfeed"
)

// Viewer is the main viewer instance.
type Viewer struct {
	config *config.Config

	assets     *assets.Manager
	window     *window.Window
	renderer   *renderer.Context
	input      *input.Input
	trackball  *trackball.Trackball
	bridge     *tracking.Bridge
	screenshot *debug.ScreenshotCapture

	// window size in screen pixels, used to map drags
	width, height int
}

// New loads the asset and creates the window and renderer.
func New(cfg *config.Config) (*Viewer, error) {
	logger.Info("initializing viewer",
		zap.String("asset", cfg.Asset.Path),
		zap.Int("width", cfg.Window.Width),
		zap.Int("height", cfg.Window.Height),
	)

	v := &Viewer{
		config:     cfg,
		assets:     assets.NewManager(),
		input:      input.New(),
		trackball:  trackball.New(),
		bridge:     tracking.NewBridge(),
		screenshot: debug.NewScreenshotCapture(cfg.Screenshot.Dir, cfg.Screenshot.Prefix),
		width:      cfg.Window.Width,
		height:     cfg.Window.Height,
	}

	asset, err := v.assets.Load(cfg.Asset.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to load asset: %w", err)
	}

	// Window first: the renderer needs a current GL context
	v.window, err = window.New(window.Config{
		Title:      cfg.Window.Title,
		Width:      cfg.Window.Width,
		Height:     cfg.Window.Height,
		Fullscreen: cfg.Window.Fullscreen,
		VSync:      cfg.Window.VSync,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	v.renderer = renderer.New(RendererConfig(cfg.Render), asset, v.bridge, v.trackball)
	if err := v.renderer.SurfaceCreated(); err != nil {
		v.window.Close()
		return nil, err
	}
	v.renderer.SurfaceChanged(v.window.DrawableSize())

	logger.Info("viewer initialized successfully")
	return v, nil
}

// RendererConfig maps the render section of the config file.
func RendererConfig(rc config.RenderConfig) renderer.Config {
	return renderer.Config{
		ClearColor:      rc.ClearColor,
		MaxTextureSize:  rc.MaxTextureSize,
		KeepTranslation: rc.KeepTranslation,
		SquareViewport:  rc.SquareViewport,
	}
}

// StartTracking starts the configured tracking sources feeding b. They stop
// when ctx is cancelled.
func StartTracking(ctx context.Context, tc config.TrackingConfig, b *tracking.Bridge) error {
	if tc.Clip != "" {
		c, err := clip.Load(tc.Clip)
		if err != nil {
			return err
		}
		go clip.NewPlayer(c, tc.ClipLoop).Run(ctx, b)
	}
	if tc.Listen != "" {
		srv := wsfeed.New(b, tc.WriteTimeout)
		go func() {
			if err := srv.ListenAndServe(ctx, tc.Listen); err != nil {
				logger.Error("tracking feed stopped", zap.Error(err))
			}
		}()
	}
	if tc.Clip == "" && tc.Listen == "" {
		logger.Info("no tracking source configured, showing rest pose")
	}
	return nil
}

// Action is what a key press asks the viewer to do.
type Action int

const (
	ActionNone Action = iota
	ActionQuit
	ActionResetRotation
	ActionScreenshot
)

// KeyAction maps a key press to its action.
func KeyAction(key sdl.Scancode) Action {
	switch key {
	case sdl.SCANCODE_ESCAPE, sdl.SCANCODE_Q:
		return ActionQuit
	case sdl.SCANCODE_R:
		return ActionResetRotation
	case sdl.SCANCODE_F12, sdl.SCANCODE_P:
		return ActionScreenshot
	}
	return ActionNone
}

// Run runs the render loop until the window is closed or ctx is cancelled.
func (v *Viewer) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := StartTracking(ctx, v.config.Tracking, v.bridge); err != nil {
		return fmt.Errorf("failed to start tracking: %w", err)
	}

	frameCount := 0
	fpsTimer := time.Now()
	lastSeq := v.bridge.Snapshot().Seq

	logger.Info("starting render loop")

	for ctx.Err() == nil {
		if v.input.Update() {
			break
		}
		if v.handleEvents() {
			break
		}

		if err := v.renderer.Frame(); err != nil {
			return fmt.Errorf("render error: %w", err)
		}
		v.window.SwapBuffers()

		frameCount++
		if since := time.Since(fpsTimer); since >= time.Second {
			seq := v.bridge.Snapshot().Seq
			logger.Debug("fps",
				zap.Int("frames", frameCount),
				zap.Uint64("tracking_updates", seq-lastSeq),
			)
			frameCount, lastSeq = 0, seq
			fpsTimer = time.Now()
		}
	}

	logger.Info("render loop stopped")
	return nil
}

// handleEvents applies the events of the last input update and reports
// whether the viewer should quit.
func (v *Viewer) handleEvents() bool {
	for _, event := range v.input.Events() {
		switch event.Type {
		case input.EventWindowResize:
			v.width, v.height = event.Width, event.Height
			v.renderer.SurfaceChanged(v.window.DrawableSize())
		case input.EventKeyDown:
			switch KeyAction(event.Key) {
			case ActionQuit:
				return true
			case ActionResetRotation:
				v.trackball.Reset()
			case ActionScreenshot:
				v.capture()
			}
		}
	}
	for _, s := range v.input.Drags() {
		v.trackball.HandleDrag(float32(s.X0), float32(s.Y0), float32(s.X1), float32(s.Y1), v.width, v.height)
	}
	return false
}

func (v *Viewer) capture() {
	w, h := v.renderer.Size()
	path, err := v.screenshot.CaptureFramebuffer(w, h)
	if err != nil {
		logger.Warn("screenshot failed", zap.Error(err))
		return
	}
	logger.Info("screenshot saved", zap.String("path", path))
}

// Close releases GL resources, the window and the loaded assets.
func (v *Viewer) Close() {
	logger.Info("closing viewer")

	if v.renderer != nil {
		v.renderer.Close()
	}
	if v.window != nil {
		v.window.Close()
	}
	v.assets.Close()
}
