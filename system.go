package fontfusion

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/gogpu/fontfusion/atlas"
	"github.com/gogpu/fontfusion/font"
	"github.com/gogpu/fontfusion/gpu"
	"github.com/gogpu/fontfusion/internal/cpmap"
)

// Handle identifies a registered font. Handles are issued from 0 upward
// and never reused.
type Handle int

// FontSystem is a registry of fonts sharing one device. All methods are
// safe for concurrent use; they are serialized by one lock.
type FontSystem struct {
	mu     sync.Mutex
	dev    gpu.Device
	config Config
	log    *slog.Logger

	packs  map[Handle]*pack
	next   Handle
	closed bool
}

// New creates a font system on dev.
func New(dev gpu.Device, opts ...Option) (*FontSystem, error) {
	if dev == nil {
		return nil, ErrNilDevice
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.config.Validate(); err != nil {
		return nil, err
	}
	s := &FontSystem{
		dev:    dev,
		config: o.config,
		log:    o.logger,
		packs:  make(map[Handle]*pack),
	}
	propagateLogger(dev, s.logger())
	return s, nil
}

func (s *FontSystem) logger() *slog.Logger {
	if s.log != nil {
		return s.log
	}
	return Logger()
}

// Device returns the device the system draws with.
func (s *FontSystem) Device() gpu.Device { return s.dev }

// Register adds face with the system configuration adjusted by opts. The
// atlas is created and, with Config.Preload, the codepoints below 255 are
// generated before a handle is issued. On failure nothing is left behind.
func (s *FontSystem) Register(face font.Face, opts ...FontOption) (Handle, error) {
	if face == nil {
		return 0, ErrNilFace
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, ErrClosed
	}

	cfg := s.config
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.Validate(); err != nil {
		return 0, err
	}
	maxTex := int(s.dev.MaxTextureSize())
	if cfg.MaxTextureSize == 0 || cfg.MaxTextureSize > maxTex {
		cfg.MaxTextureSize = maxTex
	}
	if cfg.AtlasWidth > cfg.MaxTextureSize || cfg.AtlasHeight > cfg.MaxTextureSize {
		return 0, &ConfigError{Field: "AtlasWidth", Reason: fmt.Sprintf("atlas exceeds device limit %d", cfg.MaxTextureSize)}
	}

	p, err := newPack(s.dev, face, cfg)
	if err != nil {
		return 0, err
	}
	if cfg.Preload {
		initial := make([]rune, cpmap.FastPathLimit)
		for i := range initial {
			initial[i] = rune(i)
		}
		if _, err := p.request(s.dev, s.logger(), initial); err != nil {
			p.release(s.dev)
			return 0, fmt.Errorf("fontfusion: register %q: %w", face.Name(), err)
		}
	}

	h := s.next
	s.next++
	s.packs[h] = p
	s.logger().Info("fontfusion: font registered",
		"handle", int(h), "name", face.Name(), "glyphs", p.state.Glyphs,
		"atlas_height", p.state.Height)
	return h, nil
}

// RegisterBytes parses a TrueType or OpenType font and registers it.
func (s *FontSystem) RegisterBytes(data []byte, opts ...FontOption) (Handle, error) {
	f, err := font.Parse(data)
	if err != nil {
		return 0, err
	}
	return s.Register(f, opts...)
}

// RegisterFile reads, parses and registers the font at path.
func (s *FontSystem) RegisterFile(path string, opts ...FontOption) (Handle, error) {
	f, err := font.Open(path)
	if err != nil {
		return 0, err
	}
	return s.Register(f, opts...)
}

// Get returns a view of a registered font.
func (s *FontSystem) Get(h Handle) (*Font, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.packs[h]
	if !ok {
		return nil, false
	}
	return &Font{sys: s, p: p}, true
}

// Unload releases the resources of h. Unknown or already unloaded handles
// are ignored.
func (s *FontSystem) Unload(h Handle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unload(h)
}

func (s *FontSystem) unload(h Handle) {
	p, ok := s.packs[h]
	if !ok {
		return
	}
	p.release(s.dev)
	delete(s.packs, h)
	s.logger().Info("fontfusion: font unloaded", "handle", int(h))
}

// Destroy unloads every font and closes the system. Later calls return
// ErrClosed.
func (s *FontSystem) Destroy() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	for h := Handle(0); h < s.next; h++ {
		s.unload(h)
	}
	s.closed = true
	return nil
}

// pack returns the live pack of h. The caller holds s.mu.
func (s *FontSystem) pack(h Handle) (*pack, error) {
	if s.closed {
		return nil, ErrClosed
	}
	p, ok := s.packs[h]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownHandle, h)
	}
	return p, nil
}

// Glyph is the index record of one generated codepoint.
type Glyph struct {
	// Index is the slot in the font's index buffer.
	Index int

	// Advance is the horizontal and vertical advance in font units.
	Advance [2]float64
}

// Font is a read-only view of a registered font. After the font is
// unloaded its methods return zero values.
type Font struct {
	sys *FontSystem
	p   *pack
}

func (f *Font) live() bool {
	return !f.p.released
}

// Lookup returns the record of r if it has been generated.
func (f *Font) Lookup(r rune) (Glyph, bool) {
	f.sys.mu.Lock()
	defer f.sys.mu.Unlock()
	if !f.live() {
		return Glyph{}, false
	}
	e, ok := f.p.glyphs.Get(uint32(r))
	if !ok {
		return Glyph{}, false
	}
	return Glyph(*e), true
}

// Range calls fn for every generated codepoint until fn returns false.
func (f *Font) Range(fn func(r rune, g Glyph) bool) {
	f.sys.mu.Lock()
	defer f.sys.mu.Unlock()
	if !f.live() {
		return
	}
	f.p.glyphs.Range(func(cp uint32, e *cpmap.Entry) bool {
		return fn(rune(cp), Glyph(*e))
	})
}

// GlyphCount returns the number of glyphs in the atlas.
func (f *Font) GlyphCount() int {
	f.sys.mu.Lock()
	defer f.sys.mu.Unlock()
	return f.p.state.Glyphs
}

// Allocated returns the capacity of the index buffer in entries.
func (f *Font) Allocated() int {
	f.sys.mu.Lock()
	defer f.sys.mu.Unlock()
	return f.p.state.Allocated
}

// AtlasSize returns the atlas texture size.
func (f *Font) AtlasSize() (w, h int) {
	f.sys.mu.Lock()
	defer f.sys.mu.Unlock()
	return f.p.state.Width(), f.p.state.Height
}

// Entries returns a copy of the index entries.
func (f *Font) Entries() []atlas.Entry {
	f.sys.mu.Lock()
	defer f.sys.mu.Unlock()
	return append([]atlas.Entry(nil), f.p.entries...)
}

// Texture returns the atlas texture.
func (f *Font) Texture() gpu.TextureID {
	f.sys.mu.Lock()
	defer f.sys.mu.Unlock()
	return f.p.texture
}

// IndexBuffer returns the index buffer.
func (f *Font) IndexBuffer() gpu.BufferID {
	f.sys.mu.Lock()
	defer f.sys.mu.Unlock()
	return f.p.index
}

// Face returns the outline source.
func (f *Font) Face() font.Face { return f.p.face }

// Config returns the effective configuration.
func (f *Font) Config() Config { return f.p.cfg }
