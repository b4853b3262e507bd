// Package clip plays recorded blendshape clips into a tracking bridge when
// no live tracker is connected.
package clip

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/cartoonhead/internal/logger"
	"github.com/Faultbox/cartoonhead/internal/tracking"
)

// Frame is one recorded sample.
type Frame struct {
	Weights []float32 `yaml:"weights"`
	// Matrix is column-major; absent means identity.
	Matrix []float32 `yaml:"matrix,omitempty"`
}

// Clip is a recorded sequence of tracking results at a fixed rate.
type Clip struct {
	FPS    float64  `yaml:"fps"`
	Names  []string `yaml:"names"`
	Mesh   string   `yaml:"mesh,omitempty"`
	Frames []Frame  `yaml:"frames"`
}

// Load reads a clip from a YAML file.
func Load(path string) (*Clip, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading clip: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML clip.
func Parse(data []byte) (*Clip, error) {
	var c Clip
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing clip: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks the clip can be played.
func (c *Clip) Validate() error {
	if c.FPS <= 0 {
		return fmt.Errorf("clip fps must be positive, got %v", c.FPS)
	}
	if len(c.Frames) == 0 {
		return errors.New("clip has no frames")
	}
	for i, f := range c.Frames {
		if f.Matrix != nil && len(f.Matrix) != 16 {
			return fmt.Errorf("frame %d: matrix has %d values, want 16", i, len(f.Matrix))
		}
	}
	return nil
}

// Duration is the playing time of one pass.
func (c *Clip) Duration() time.Duration {
	return time.Duration(float64(len(c.Frames)) * float64(time.Second) / c.FPS)
}

// Player maps elapsed time onto clip frames.
type Player struct {
	clip *Clip
	loop bool
}

// NewPlayer creates a player. A looping player wraps around, otherwise the
// last frame holds.
func NewPlayer(c *Clip, loop bool) *Player {
	return &Player{clip: c, loop: loop}
}

// Index returns the frame index shown after elapsed.
func (p *Player) Index(elapsed time.Duration) int {
	if elapsed < 0 {
		return 0
	}
	n := len(p.clip.Frames)
	i := int(elapsed.Seconds() * p.clip.FPS)
	if p.loop {
		return i % n
	}
	return min(i, n-1)
}

// Frame returns the tracking frame shown after elapsed.
func (p *Player) Frame(elapsed time.Duration) tracking.Frame {
	f := p.clip.Frames[p.Index(elapsed)]
	m := tracking.IdentityMatrix
	if f.Matrix != nil {
		copy(m[:], f.Matrix)
	}
	return tracking.Frame{
		Names:   p.clip.Names,
		Weights: f.Weights,
		Matrix:  m,
		Mesh:    p.clip.Mesh,
	}
}

// Run feeds the bridge at the clip rate until ctx is cancelled.
func (p *Player) Run(ctx context.Context, b *tracking.Bridge) {
	b.SetNames(p.clip.Names)
	b.SetMesh(p.clip.Mesh)

	interval := time.Duration(float64(time.Second) / p.clip.FPS)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger.Info("playing clip",
		zap.Int("frames", len(p.clip.Frames)),
		zap.Float64("fps", p.clip.FPS),
		zap.Bool("loop", p.loop),
	)

	start := time.Now()
	last := -1
	for {
		if i := p.Index(time.Since(start)); i != last {
			f := p.Frame(time.Since(start))
			b.SetValues(f.Weights, f.Matrix)
			last = i
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
