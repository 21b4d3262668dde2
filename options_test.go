package fontfusion

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/gogpu/fontfusion/gpu/soft"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(*Config)
		field string
	}{
		{"default", func(*Config) {}, ""},
		{"zero scale", func(c *Config) { c.Scale = 0 }, "Scale"},
		{"negative range", func(c *Config) { c.Range = -1 }, "Range"},
		{"zero dpi", func(c *Config) { c.DPI = 0 }, "DPI"},
		{"negative padding", func(c *Config) { c.Padding = -1 }, "Padding"},
		{"narrow atlas", func(c *Config) { c.AtlasWidth = 1 }, "AtlasWidth"},
		{"flat atlas", func(c *Config) { c.AtlasHeight = 0 }, "AtlasHeight"},
		{"no index", func(c *Config) { c.IndexCapacity = 0 }, "IndexCapacity"},
		{"negative limit", func(c *Config) { c.MaxTextureSize = -1 }, "MaxTextureSize"},
		{"atlas over limit", func(c *Config) { c.MaxTextureSize = 512 }, "AtlasWidth"},
		{"zero padding", func(c *Config) { c.Padding = 0 }, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultConfig()
			tt.edit(&c)
			err := c.Validate()
			if tt.field == "" {
				if err != nil {
					t.Errorf("Validate = %v, want nil", err)
				}
				return
			}
			var ce *ConfigError
			if !errors.As(err, &ce) {
				t.Fatalf("Validate = %v, want *ConfigError", err)
			}
			if ce.Field != tt.field {
				t.Errorf("Field = %q, want %q", ce.Field, tt.field)
			}
		})
	}
}

func TestFontOptions(t *testing.T) {
	fs, err := New(soft.New(), WithConfig(Config{
		Scale: 1, Range: 2, DPI: 72, AtlasWidth: 256, AtlasHeight: 64, IndexCapacity: 16,
	}))
	if err != nil {
		t.Fatal(err)
	}
	defer fs.Destroy()

	h, err := fs.Register(newBoxFace(),
		WithScale(3), WithRange(6), WithDPI(144), WithPadding(4),
		WithAtlasSize(512, 128), WithIndexCapacity(32), WithSeed(9),
		WithMaxTextureSize(1024))
	if err != nil {
		t.Fatal(err)
	}
	f := mustFont(t, fs, h)
	want := Config{
		Scale: 3, Range: 6, DPI: 144, Padding: 4,
		AtlasWidth: 512, AtlasHeight: 128, IndexCapacity: 32, Seed: 9,
		MaxTextureSize: 1024,
	}
	if got := f.Config(); got != want {
		t.Errorf("Config = %+v, want %+v", got, want)
	}
	if w, ht := f.AtlasSize(); w != 512 || ht != 128 {
		t.Errorf("AtlasSize = %dx%d", w, ht)
	}
	if f.Allocated() != 32 {
		t.Errorf("Allocated = %d, want 32", f.Allocated())
	}
}

func TestMaxTextureSizeClampedToDevice(t *testing.T) {
	fs, err := New(soft.New(soft.WithMaxTextureSize(2048)))
	if err != nil {
		t.Fatal(err)
	}
	defer fs.Destroy()
	h, err := fs.Register(newBoxFace(), WithPreload(false), WithMaxTextureSize(1<<20))
	if err != nil {
		t.Fatal(err)
	}
	if got := mustFont(t, fs, h).Config().MaxTextureSize; got != 2048 {
		t.Errorf("MaxTextureSize = %d, want 2048", got)
	}
}

func TestWithLogger(t *testing.T) {
	l := slog.New(nopHandler{})
	fs, err := New(soft.New(), WithLogger(l))
	if err != nil {
		t.Fatal(err)
	}
	defer fs.Destroy()
	if fs.logger() != l {
		t.Error("system logger not used")
	}
}
