// Package config handles viewer configuration loading and management.
package config

import (
	"fmt"
	"time"

	"github.com/Faultbox/cartoonhead/internal/logger"
)

// Config holds all viewer settings.
type Config struct {
	Asset      AssetConfig      `yaml:"asset"`
	Window     WindowConfig     `yaml:"window"`
	Render     RenderConfig     `yaml:"render"`
	Tracking   TrackingConfig   `yaml:"tracking"`
	Screenshot ScreenshotConfig `yaml:"screenshot"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// AssetConfig holds the head model location.
type AssetConfig struct {
	Path string `yaml:"path"` // .glb or .gltf file
}

// WindowConfig holds surface settings.
type WindowConfig struct {
	Title      string `yaml:"title"`
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Fullscreen bool   `yaml:"fullscreen"`
	VSync      bool   `yaml:"vsync"`
}

// RenderConfig holds pipeline settings.
type RenderConfig struct {
	ClearColor [4]float32 `yaml:"clear_color"`
	// MaxTextureSize overrides GL_MAX_TEXTURE_SIZE when > 0.
	MaxTextureSize int `yaml:"max_texture_size"`
	// KeepTranslation keeps the tracker's translation column in the pose.
	KeepTranslation bool `yaml:"keep_translation"`
	// SquareViewport centers a square viewport covering the longer surface side.
	SquareViewport bool `yaml:"square_viewport"`
}

// TrackingConfig holds blendshape input settings.
type TrackingConfig struct {
	Listen       string        `yaml:"listen"`        // websocket feed address, empty = disabled
	Clip         string        `yaml:"clip"`          // YAML clip replayed when set
	ClipLoop     bool          `yaml:"clip_loop"`     // restart the clip at the end
	WriteTimeout time.Duration `yaml:"write_timeout"` // websocket control frame deadline
}

// ScreenshotConfig holds capture settings.
type ScreenshotConfig struct {
	Dir    string `yaml:"dir"`
	Prefix string `yaml:"prefix"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Asset: AssetConfig{
			Path: "raccoon_head.glb",
		},
		Window: WindowConfig{
			Title:  "cartoonhead",
			Width:  768,
			Height: 768,
			VSync:  true,
		},
		Render: RenderConfig{
			ClearColor:     [4]float32{0.1, 0.2, 0.3, 0.5},
			SquareViewport: true,
		},
		Tracking: TrackingConfig{
			ClipLoop:     true,
			WriteTimeout: time.Second,
		},
		Screenshot: ScreenshotConfig{
			Dir:    "screenshots",
			Prefix: "head",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Validate checks values that would otherwise fail deep inside the renderer.
func (c *Config) Validate() error {
	if c.Asset.Path == "" {
		return fmt.Errorf("asset.path is empty")
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("window size %dx%d is not positive", c.Window.Width, c.Window.Height)
	}
	if c.Render.MaxTextureSize < 0 {
		return fmt.Errorf("render.max_texture_size %d is negative", c.Render.MaxTextureSize)
	}
	if !logger.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("unknown logging.level %q", c.Logging.Level)
	}
	return nil
}
