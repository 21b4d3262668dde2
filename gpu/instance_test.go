package gpu

import (
	"encoding/binary"
	"math"
	"testing"
)

func TestInstanceLayout(t *testing.T) {
	in := Instance{
		Position: [2]float32{1, 2},
		Offset:   [2]float32{3, 4},
		Color:    [4]float32{.25, .5, .75, 1},
		Index:    7,
		Size:     12,
		Skew:     .2,
		Strength: .1,
	}
	b := EncodeInstances([]Instance{in, in})
	if len(b) != 2*InstanceSize {
		t.Fatalf("len = %d, want %d", len(b), 2*InstanceSize)
	}
	if got := binary.LittleEndian.Uint32(b[InstanceSize+32:]); got != 7 {
		t.Errorf("index at byte 32 = %d, want 7", got)
	}
	if got := math.Float32frombits(binary.LittleEndian.Uint32(b[36:])); got != 12 {
		t.Errorf("size at byte 36 = %v, want 12", got)
	}
	if got := DecodeInstance(b[InstanceSize:]); got != in {
		t.Errorf("DecodeInstance = %+v, want %+v", got, in)
	}
}

func TestMat4Apply(t *testing.T) {
	m := Identity()
	m[12], m[13] = 5, -1
	m[0], m[5] = 2, 3
	x, y := m.Apply(1, 1)
	if x != 7 || y != 2 {
		t.Errorf("Apply = (%v, %v), want (7, 2)", x, y)
	}
}
