package fontfusion

import (
	"errors"
	"testing"

	"golang.org/x/image/font/gofont/gomono"

	"github.com/gogpu/fontfusion/gpu/soft"
)

func TestNewNilDevice(t *testing.T) {
	if _, err := New(nil); !errors.Is(err, ErrNilDevice) {
		t.Errorf("err = %v, want ErrNilDevice", err)
	}
}

func TestNewInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Range = 0
	_, err := New(soft.New(), WithConfig(cfg))
	var ce *ConfigError
	if !errors.As(err, &ce) || ce.Field != "Range" {
		t.Errorf("err = %v, want ConfigError on Range", err)
	}
}

func TestHandlesAreMonotonic(t *testing.T) {
	fs, err := New(soft.New())
	if err != nil {
		t.Fatal(err)
	}
	defer fs.Destroy()

	var handles []Handle
	for i := 0; i < 3; i++ {
		h, err := fs.Register(newBoxFace(), WithPreload(false))
		if err != nil {
			t.Fatal(err)
		}
		handles = append(handles, h)
		fs.Unload(h)
	}
	for i, h := range handles {
		if h != Handle(i) {
			t.Errorf("handle %d = %d", i, h)
		}
	}
	if _, ok := fs.Get(handles[0]); ok {
		t.Error("Get succeeded on an unloaded handle")
	}
}

func TestUnloadReleasesOnce(t *testing.T) {
	dev := soft.New()
	fs, err := New(dev)
	if err != nil {
		t.Fatal(err)
	}
	h, err := fs.Register(newBoxFace(), WithPreload(false))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fs.RequestGlyphs(h, []rune("ab")); err != nil {
		t.Fatal(err)
	}
	f := mustFont(t, fs, h)

	fs.Unload(h)
	fs.Unload(h)
	fs.Unload(Handle(42))
	if b, tx := dev.Live(); b != 0 || tx != 0 {
		t.Errorf("live resources after unload: %d buffers, %d textures", b, tx)
	}
	if _, ok := f.Lookup('a'); ok {
		t.Error("stale Font view still answers lookups")
	}
	if _, err := fs.RequestGlyphs(h, []rune("c")); !errors.Is(err, ErrUnknownHandle) {
		t.Errorf("err = %v, want ErrUnknownHandle", err)
	}
}

func TestDestroy(t *testing.T) {
	dev := soft.New()
	fs, err := New(dev)
	if err != nil {
		t.Fatal(err)
	}
	h0, _ := fs.Register(newBoxFace(), WithPreload(false))
	h1, _ := fs.Register(newBoxFace(), WithPreload(false))
	fs.Unload(h0)

	if err := fs.Destroy(); err != nil {
		t.Fatalf("Destroy: %v", err)
	}
	if b, tx := dev.Live(); b != 0 || tx != 0 {
		t.Errorf("live resources after Destroy: %d buffers, %d textures", b, tx)
	}
	if err := fs.Destroy(); !errors.Is(err, ErrClosed) {
		t.Errorf("second Destroy = %v, want ErrClosed", err)
	}
	if _, err := fs.Register(newBoxFace()); !errors.Is(err, ErrClosed) {
		t.Errorf("Register after Destroy = %v, want ErrClosed", err)
	}
	if _, err := fs.RequestGlyphs(h1, []rune("a")); !errors.Is(err, ErrClosed) {
		t.Errorf("RequestGlyphs after Destroy = %v, want ErrClosed", err)
	}
}

func TestRegisterFailureLeavesNothing(t *testing.T) {
	dev := soft.New(soft.WithMaxTextureSize(64))
	fs, err := New(dev)
	if err != nil {
		t.Fatal(err)
	}
	defer fs.Destroy()

	// The default atlas is wider than the device allows.
	_, err = fs.Register(newBoxFace(), WithPreload(false))
	var ce *ConfigError
	if !errors.As(err, &ce) {
		t.Errorf("err = %v, want ConfigError", err)
	}

	// 255 boxes do not fit 64x64: preloading fails after resources exist.
	_, err = fs.Register(newBoxFace(), WithAtlasSize(64, 32))
	if !errors.Is(err, ErrTextureTooLarge) {
		t.Fatalf("err = %v, want ErrTextureTooLarge", err)
	}
	if b, tx := dev.Live(); b != 0 || tx != 0 {
		t.Errorf("live resources after failed register: %d buffers, %d textures", b, tx)
	}

	h, err := fs.Register(newBoxFace(), WithPreload(false), WithAtlasSize(64, 32))
	if err != nil {
		t.Fatal(err)
	}
	if h != 0 {
		t.Errorf("handle = %d, want 0: failed registrations consumed handles", h)
	}
}

func TestRegisterPreload(t *testing.T) {
	fs, err := New(soft.New())
	if err != nil {
		t.Fatal(err)
	}
	defer fs.Destroy()
	h, err := fs.RegisterBytes(gomono.TTF)
	if err != nil {
		t.Fatalf("RegisterBytes: %v", err)
	}
	f := mustFont(t, fs, h)
	if got := f.GlyphCount(); got != 255 {
		t.Errorf("GlyphCount = %d, want 255", got)
	}
	for _, r := range []rune{0, 'A', 'z', 0xFE} {
		if _, ok := f.Lookup(r); !ok {
			t.Errorf("%U not preloaded", r)
		}
	}
	if _, ok := f.Lookup(0xFF); ok {
		t.Error("U+00FF preloaded")
	}
	n := 0
	f.Range(func(rune, Glyph) bool { n++; return true })
	if n != 255 {
		t.Errorf("Range visited %d glyphs, want 255", n)
	}
}

func TestRegisterBadInput(t *testing.T) {
	fs, err := New(soft.New())
	if err != nil {
		t.Fatal(err)
	}
	defer fs.Destroy()
	if _, err := fs.Register(nil); !errors.Is(err, ErrNilFace) {
		t.Errorf("err = %v, want ErrNilFace", err)
	}
	if _, err := fs.RegisterBytes([]byte("junk")); err == nil {
		t.Error("RegisterBytes accepted junk")
	}
	if _, err := fs.RegisterFile("testdata/missing.ttf"); err == nil {
		t.Error("RegisterFile accepted a missing file")
	}
	if _, err := fs.Register(newBoxFace(), WithScale(-1)); err == nil {
		t.Error("Register accepted a negative scale")
	}
}
