package outline

import "testing"

func TestColorSetOperations(t *testing.T) {
	if got := Red.Combine(Green); got != Yellow {
		t.Errorf("Red.Combine(Green) = %v, want Yellow", got)
	}
	if got := Cyan.Complement(); got != Red {
		t.Errorf("Cyan.Complement() = %v, want Red", got)
	}
	if got := Magenta.Intersect(Cyan); got != Blue {
		t.Errorf("Magenta.Intersect(Cyan) = %v, want Blue", got)
	}
	if !White.Has(Green) || Magenta.Has(Green) {
		t.Error("Has reports wrong channel membership")
	}
	if White.Complement() != Black {
		t.Error("White.Complement() should be Black")
	}
}

func TestSwitchColorSequence(t *testing.T) {
	tests := []struct {
		name   string
		start  Color
		seed   uint64
		banned Color
		want   Color
		seedAf uint64
	}{
		{"white seed 0", White, 0, Black, Cyan, 0},
		{"white seed 1", White, 1, Black, Magenta, 0},
		{"black seed 5", Black, 5, Black, Yellow, 1},
		{"rotate by one", Cyan, 0, Black, Magenta, 0},
		{"rotate by two", Yellow, 1, Black, Magenta, 0},
		{"rotate wraps", Magenta, 0, Black, Yellow, 0},
		{"banned single channel", Yellow, 0, Cyan, Magenta, 0},
		{"banned overlap two channels", Cyan, 0, White, Magenta, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, seed := tt.start, tt.seed
			SwitchColor(&c, &seed, tt.banned)
			if c != tt.want {
				t.Errorf("color = %v, want %v", c, tt.want)
			}
			if seed != tt.seedAf {
				t.Errorf("seed = %d, want %d", seed, tt.seedAf)
			}
		})
	}
}

func TestSwitchColorDeterministic(t *testing.T) {
	run := func() []Color {
		c, seed := White, uint64(0)
		out := make([]Color, 0, 16)
		for i := 0; i < 16; i++ {
			banned := Black
			if i%5 == 4 {
				banned = out[0]
			}
			SwitchColor(&c, &seed, banned)
			out = append(out, c)
		}
		return out
	}
	first, second := run(), run()
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("sequence diverged at %d: %v vs %v", i, first[i], second[i])
		}
		if first[i] == Black || first[i] == White {
			t.Errorf("step %d produced %v", i, first[i])
		}
	}
	want := []Color{Cyan, Magenta, Yellow, Cyan}
	for i, w := range want {
		if first[i] != w {
			t.Errorf("step %d = %v, want %v", i, first[i], w)
		}
	}
}
