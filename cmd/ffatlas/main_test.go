package main

import (
	"bytes"
	"encoding/json"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/image/font/gofont/goregular"
)

func writeFont(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "goregular.ttf")
	if err := os.WriteFile(path, goregular.TTF, 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParseArgs(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "atlas.yaml")
	yml := "scale: 1\nrange: 6\nwidth: 512\nchars: xyz\n"
	if err := os.WriteFile(cfg, []byte(yml), 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		args    []string
		want    func(s settings) bool
		wantErr bool
	}{
		{
			name: "defaults",
			args: []string{"font.ttf"},
			want: func(s settings) bool { return s == defaultSettings() },
		},
		{
			name: "flags",
			args: []string{"--scale", "3", "--range", "8", "-o", "a.png", "-v", "font.ttf"},
			want: func(s settings) bool {
				return s.Scale == 3 && s.Range == 8 && s.Out == "a.png" && s.Verbose
			},
		},
		{
			name: "config file",
			args: []string{"-c", cfg, "font.ttf"},
			want: func(s settings) bool {
				return s.Scale == 1 && s.Range == 6 && s.Width == 512 && s.Chars == "xyz" && s.Padding == 2
			},
		},
		{
			name: "flags override config",
			args: []string{"--range", "8", "--config", cfg, "--chars", "q", "font.ttf"},
			want: func(s settings) bool {
				return s.Scale == 1 && s.Range == 8 && s.Chars == "q"
			},
		},
		{name: "no font", args: nil, wantErr: true},
		{name: "two fonts", args: []string{"a.ttf", "b.ttf"}, wantErr: true},
		{name: "bad flag", args: []string{"--nope", "a.ttf"}, wantErr: true},
		{name: "missing config", args: []string{"-c", filepath.Join(dir, "none.yaml"), "a.ttf"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, path, err := parseArgs(tt.args)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parseArgs(%q) succeeded, want error", tt.args)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseArgs(%q): %v", tt.args, err)
			}
			if path != "font.ttf" {
				t.Errorf("path = %q, want font.ttf", path)
			}
			if !tt.want(s) {
				t.Errorf("settings = %+v", s)
			}
		})
	}
}

func TestRun(t *testing.T) {
	font := writeFont(t)
	dir := t.TempDir()
	out := filepath.Join(dir, "atlas.png")
	meta := filepath.Join(dir, "atlas.json")
	rendered := filepath.Join(dir, "hi.png")

	var stderr bytes.Buffer
	code := run([]string{
		"-o", out, "-m", meta, "--width", "512",
		"--chars", "Ā", "--render", "Hi\nthere", "--render-out", rendered,
		font,
	}, &stderr)
	if code != 0 {
		t.Fatalf("run = %d, stderr:\n%s", code, stderr.String())
	}

	data, err := os.ReadFile(meta)
	if err != nil {
		t.Fatal(err)
	}
	var md metadata
	if err := json.Unmarshal(data, &md); err != nil {
		t.Fatalf("metadata: %v", err)
	}
	if md.Atlas.Width != 512 || md.Atlas.DistanceRange != 4 || md.Atlas.Scale != 2 {
		t.Errorf("atlas = %+v", md.Atlas)
	}
	if md.Metrics.UnitsPerEm != 2048 {
		t.Errorf("unitsPerEm = %d, want 2048", md.Metrics.UnitsPerEm)
	}
	if len(md.Glyphs) != 256 {
		t.Fatalf("%d glyphs, want 256", len(md.Glyphs))
	}
	for i, g := range md.Glyphs[:255] {
		if g.Unicode != rune(i) {
			t.Fatalf("glyph %d is U+%04X, want sorted codepoints", i, g.Unicode)
		}
	}
	last := md.Glyphs[255]
	if last.Unicode != 0x100 || last.Index != 255 {
		t.Errorf("last glyph = %+v, want U+0100 at index 255", last)
	}
	a := md.Glyphs['A']
	if a.Advance <= 0 || a.AtlasBounds.W <= 0 || a.AtlasBounds.H <= 0 || a.Size[0] <= 0 {
		t.Errorf("glyph A = %+v", a)
	}

	f, err := os.Open(out)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("atlas png: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 512 || b.Dy() != md.Atlas.Height {
		t.Errorf("atlas png is %v, want 512x%d", b, md.Atlas.Height)
	}

	rf, err := os.Open(rendered)
	if err != nil {
		t.Fatal(err)
	}
	defer rf.Close()
	rimg, err := png.Decode(rf)
	if err != nil {
		t.Fatalf("render png: %v", err)
	}
	var ink bool
	b := rimg.Bounds()
	for y := b.Min.Y; y < b.Max.Y && !ink; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if _, _, _, alpha := rimg.At(x, y).RGBA(); alpha > 0 {
				ink = true
				break
			}
		}
	}
	if !ink {
		t.Error("render is empty")
	}
}

func TestRunErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code int
		msg  string
	}{
		{"usage", nil, 2, "Usage"},
		{"missing font", []string{filepath.Join(t.TempDir(), "none.ttf")}, 1, "Error"},
		{"bad config", []string{"--range", "0", "-o", "", writeFont(t)}, 1, "Range"},
		{"help", []string{"--help"}, 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stderr bytes.Buffer
			if code := run(tt.args, &stderr); code != tt.code {
				t.Errorf("run = %d, want %d; stderr:\n%s", code, tt.code, stderr.String())
			}
			if !strings.Contains(stderr.String(), tt.msg) {
				t.Errorf("stderr %q does not mention %q", stderr.String(), tt.msg)
			}
		})
	}
}
