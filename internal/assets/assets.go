// Package assets loads glTF head models into memory and caches them.
package assets

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/qmuntal/gltf"
	"go.uber.org/zap"

	"github.com/Faultbox/cartoonhead/internal/logger"
)

// Asset is a fully loaded glTF document plus loader diagnostics.
type Asset struct {
	Name     string
	Doc      *gltf.Document
	Warnings []string

	// dir resolves relative image URIs; empty for in-memory assets.
	dir string
}

// Load reads a .glb or .gltf file (and its external buffers) into memory.
func Load(path string) (*Asset, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening asset %s: %w", path, err)
	}
	a := &Asset{Name: filepath.Base(path), Doc: doc, dir: filepath.Dir(path)}
	a.inspect()
	return a, nil
}

// Decode parses a binary asset held in memory, as handed over by a host
// application. External buffer or image URIs cannot be resolved.
func Decode(data []byte, name string) (*Asset, error) {
	doc := new(gltf.Document)
	if err := gltf.NewDecoder(bytes.NewReader(data)).Decode(doc); err != nil {
		return nil, fmt.Errorf("decoding asset %s: %w", name, err)
	}
	a := &Asset{Name: name, Doc: doc}
	a.inspect()
	return a, nil
}

// FromDocument wraps an already built document.
func FromDocument(doc *gltf.Document, name string) *Asset {
	a := &Asset{Name: name, Doc: doc}
	a.inspect()
	return a
}

// inspect collects warnings for content the renderer will have to skip.
func (a *Asset) inspect() {
	doc := a.Doc
	if len(doc.Scenes) == 0 {
		a.warn("asset has no scenes")
	}
	if doc.Scene != nil && int(*doc.Scene) >= len(doc.Scenes) {
		a.warn(fmt.Sprintf("default scene %d out of range", *doc.Scene))
	}
	for i, mesh := range doc.Meshes {
		if len(mesh.Primitives) == 0 {
			a.warn(fmt.Sprintf("mesh %d (%s) has no primitives", i, mesh.Name))
		}
	}
	for i, img := range doc.Images {
		if img.BufferView == nil && img.URI == "" {
			a.warn(fmt.Sprintf("image %d has no data", i))
		}
	}
	for i, buf := range doc.Buffers {
		if len(buf.Data) == 0 && buf.ByteLength > 0 {
			a.warn(fmt.Sprintf("buffer %d was not loaded", i))
		}
	}
}

func (a *Asset) warn(msg string) {
	a.Warnings = append(a.Warnings, msg)
	logger.Warn("asset warning", zap.String("asset", a.Name), zap.String("detail", msg))
}

// ImageData returns the encoded bytes of image i from its buffer view, a
// data URI or a file next to the asset.
func (a *Asset) ImageData(i int) ([]byte, error) {
	if i < 0 || i >= len(a.Doc.Images) {
		return nil, fmt.Errorf("image %d out of range", i)
	}
	img := a.Doc.Images[i]

	if img.BufferView != nil {
		view, err := a.viewBytes(int(*img.BufferView))
		if err != nil {
			return nil, fmt.Errorf("image %d: %w", i, err)
		}
		return view, nil
	}
	if img.IsEmbeddedResource() {
		return img.MarshalData()
	}
	if img.URI != "" && a.dir != "" {
		return os.ReadFile(filepath.Join(a.dir, filepath.FromSlash(img.URI)))
	}
	return nil, fmt.Errorf("image %d has no resolvable data", i)
}

func (a *Asset) viewBytes(v int) ([]byte, error) {
	if v >= len(a.Doc.BufferViews) {
		return nil, fmt.Errorf("buffer view %d out of range", v)
	}
	view := a.Doc.BufferViews[v]
	if int(view.Buffer) >= len(a.Doc.Buffers) {
		return nil, fmt.Errorf("buffer %d out of range", view.Buffer)
	}
	data := a.Doc.Buffers[view.Buffer].Data
	start, end := int(view.ByteOffset), int(view.ByteOffset)+int(view.ByteLength)
	if end > len(data) {
		return nil, fmt.Errorf("buffer view %d exceeds buffer (%d > %d)", v, end, len(data))
	}
	return data[start:end], nil
}

// Manager loads assets by path and keeps them for reuse across surface
// recreation.
type Manager struct {
	cache *Cache
}

// NewManager creates a new asset manager.
func NewManager() *Manager {
	return &Manager{cache: NewCache()}
}

// Load returns the cached asset for path or loads it.
func (m *Manager) Load(path string) (*Asset, error) {
	if a, ok := m.cache.Get(path); ok {
		return a, nil
	}
	a, err := Load(path)
	if err != nil {
		return nil, err
	}
	m.cache.Set(path, a)
	logger.Info("asset loaded",
		zap.String("path", path),
		zap.Int("meshes", len(a.Doc.Meshes)),
		zap.Int("nodes", len(a.Doc.Nodes)),
		zap.Int("warnings", len(a.Warnings)),
	)
	return a, nil
}

// Stats returns the cache hits and misses since the last Close.
func (m *Manager) Stats() (hits, misses int) {
	return m.cache.Stats()
}

// Close drops all cached assets.
func (m *Manager) Close() {
	hits, misses := m.cache.Stats()
	logger.Debug("asset cache closed", zap.Int("hits", hits), zap.Int("misses", misses))
	m.cache.Clear()
}

// Cache is a simple in-memory cache for loaded assets.
type Cache struct {
	data map[string]*Asset
	mu   sync.Mutex

	hits   int
	misses int
}

// NewCache creates a new cache.
func NewCache() *Cache {
	return &Cache{
		data: make(map[string]*Asset),
	}
}

// Get retrieves an item from cache.
func (c *Cache) Get(key string) (*Asset, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	a, ok := c.data[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return a, ok
}

// Set stores an item in cache.
func (c *Cache) Set(key string, a *Asset) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = a
}

// Clear clears the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[string]*Asset)
	c.hits = 0
	c.misses = 0
}

// Stats returns cache statistics.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
