package atlas

import (
	"errors"
	"testing"
)

func TestPlanGrowsByDoubling(t *testing.T) {
	s := NewState(64, 16, 2, 2)
	sizes := []Size{{30, 10}, {30, 10}, {30, 10}}
	p, err := s.Plan(sizes, 1024)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	want := []Rect{{0, 0, 30, 10}, {32, 0, 30, 10}, {1, 12, 30, 10}}
	for i := range want {
		if p.Rects[i] != want[i] {
			t.Errorf("rect %d = %+v, want %+v", i, p.Rects[i], want[i])
		}
	}
	if p.Height != 32 || !p.GrowTexture(&s) {
		t.Errorf("Height = %d, want 32", p.Height)
	}
	if p.Allocated != 4 || !p.GrowIndex(&s) {
		t.Errorf("Allocated = %d, want 4", p.Allocated)
	}
	if s.Glyphs != 0 || s.Height != 16 || s.Packer.X != 0 {
		t.Fatalf("Plan modified state: %+v", s)
	}

	s.Commit(p)
	if s.Glyphs != 3 || s.Height != 32 || s.Allocated != 4 {
		t.Errorf("after commit: %+v", s)
	}
	if s.Glyphs > s.Allocated {
		t.Error("nglyphs exceeds nallocated")
	}
	if s.Packer.X != 33 || s.Packer.Y != 12 {
		t.Errorf("cursor = (%d, %d), want (33, 12)", s.Packer.X, s.Packer.Y)
	}
}

func TestPlanNoGrowth(t *testing.T) {
	s := NewState(64, 64, 0, 8)
	p, err := s.Plan([]Size{{8, 8}}, 64)
	if err != nil {
		t.Fatal(err)
	}
	if p.GrowTexture(&s) || p.GrowIndex(&s) {
		t.Error("unexpected growth")
	}
	if p.First() != 0 {
		t.Errorf("First = %d", p.First())
	}
}

func TestPlanTextureTooLarge(t *testing.T) {
	s := NewState(32, 16, 0, 4)
	before := s
	_, err := s.Plan([]Size{{30, 10}, {30, 10}, {30, 10}}, 16)
	if !errors.Is(err, ErrTextureTooLarge) {
		t.Fatalf("err = %v, want ErrTextureTooLarge", err)
	}
	var tl *TextureTooLargeError
	if !errors.As(err, &tl) || tl.Height != 32 || tl.Max != 16 {
		t.Errorf("error detail = %+v", tl)
	}
	if s != before {
		t.Error("failed plan modified state")
	}
}

func TestPlanRejectsBadSizes(t *testing.T) {
	s := NewState(32, 32, 0, 4)
	if _, err := s.Plan([]Size{{32, 4}}, 0); !errors.Is(err, ErrGlyphTooWide) {
		t.Errorf("err = %v, want ErrGlyphTooWide", err)
	}
	if _, err := s.Plan([]Size{{0, 4}}, 0); !errors.Is(err, ErrBadSize) {
		t.Errorf("err = %v, want ErrBadSize", err)
	}
}

func TestCapacityDoublesRepeatedly(t *testing.T) {
	s := NewState(1024, 1024, 0, 1)
	sizes := make([]Size, 9)
	for i := range sizes {
		sizes[i] = Size{4, 4}
	}
	p, err := s.Plan(sizes, 0)
	if err != nil {
		t.Fatal(err)
	}
	if p.Allocated != 16 {
		t.Errorf("Allocated = %d, want 16", p.Allocated)
	}
}
