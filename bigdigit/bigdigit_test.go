package bigdigit

import (
	"reflect"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   []Word
		want []Word
	}{
		{"single zero stays", []Word{0}, []Word{0}},
		{"trailing zeros dropped", []Word{5, 0, 0}, []Word{5}},
		{"all zero collapses to one", []Word{0, 0, 0}, []Word{0}},
		{"no trailing zeros unchanged", []Word{1, 2, 3}, []Word{1, 2, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(append([]Word(nil), tt.in...))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Normalize(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestIsZero(t *testing.T) {
	if !IsZero([]Word{0}) {
		t.Error("IsZero([0]) = false, want true")
	}
	if !IsZero(nil) {
		t.Error("IsZero(nil) = false, want true")
	}
	if IsZero([]Word{1}) {
		t.Error("IsZero([1]) = true, want false")
	}
}

func TestMaskOffHigh(t *testing.T) {
	tests := []struct {
		name string
		in   []Word
		l    int
		want []Word
	}{
		{"fits already", []Word{5}, Shift, []Word{5}},
		{"truncate one digit", []Word{0xFF}, 4, []Word{0xF}},
		{"fits across boundary unchanged", []Word{digitMask, 0x3}, Shift + 2, []Word{digitMask, 0x3}},
		{"truncate to zero digits left", []Word{digitMask, 0x3}, 2, []Word{0x3}},
		// Regression: when the needed digit count exactly equals the
		// input's digit count, the top digit must still be masked down
		// to maskbit width, not returned as-is.
		{"same digit count still masks top digit", []Word{1, 0xFF}, Shift + 3, []Word{1, 0x7}},
		{"widen beyond current digits returns unchanged", []Word{5}, 5 * Shift, []Word{5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MaskOffHigh(append([]Word(nil), tt.in...), tt.l)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("MaskOffHigh(%v, %d) = %v, want %v", tt.in, tt.l, got, tt.want)
			}
		})
	}
}

func TestRshift(t *testing.T) {
	// v represents 5 + 3*2^Shift; floor(v/2) = (2 + (1<<(Shift-1))) + 1*2^Shift,
	// computed independently of Rshift's own carry formula.
	v := []Word{0b101, 0b011}
	got := Rshift(v, 1)
	want := Normalize([]Word{2 + (Word(1) << (Shift - 1)), 1})
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Rshift(%v, 1) = %v, want %v", v, got, want)
	}

	if got := Rshift([]Word{0xFF}, 100); !IsZero(got) {
		t.Errorf("Rshift beyond width = %v, want zero", got)
	}

	if got := Rshift([]Word{0xFF}, 0); !reflect.DeepEqual(got, []Word{0xFF}) {
		t.Errorf("Rshift by 0 = %v, want unchanged", got)
	}
}

func TestRshiftAndMaskToWord(t *testing.T) {
	// v represents 0xDEADBEEF + 1*2^Shift; (v>>4) mod 2^32 drops the 2^Shift
	// term entirely (it reduces to 0 mod 2^32 since Shift-4 >= 32) leaving
	// plain 0xDEADBEEF>>4.
	v := []Word{0xDEADBEEF, 0x1}
	got := RshiftAndMaskToWord(v, 4, 32)
	want := uint64(0xDEADBEEF) >> 4
	if got != want {
		t.Errorf("RshiftAndMaskToWord(%v, 4, 32) = %#x, want %#x", v, got, want)
	}
}

func TestLshiftAndMaskRoundTripsWithRshift(t *testing.T) {
	v := []Word{0x123456789, 0x1}
	for _, s := range []int{0, 1, 5, Shift, Shift + 3, 100} {
		l := (len(v))*Shift + s + 8
		shifted := LshiftAndMask(v, s, l)
		back := RshiftAndMask(shifted, s, l-s)
		want := MaskOffHigh(v, l-s)
		if !reflect.DeepEqual(Normalize(back), Normalize(want)) {
			t.Errorf("shift %d: round trip = %v, want %v", s, back, want)
		}
	}
}

func TestLshiftAndMaskOverflowYieldsZero(t *testing.T) {
	got := LshiftAndMask([]Word{1}, 10, 10)
	if !IsZero(got) {
		t.Errorf("LshiftAndMask with s>=l = %v, want zero", got)
	}
}

func TestGetSetBit(t *testing.T) {
	v := []Word{0}
	if GetBit(v, 5) != 0 {
		t.Error("GetBit on zero value should be 0")
	}

	v = SetBit(v, 5, 1)
	if GetBit(v, 5) != 1 {
		t.Error("bit 5 should be set")
	}
	if GetBit(v, 4) != 0 {
		t.Error("bit 4 should remain clear")
	}

	// unchanged if already equal
	same := SetBit(v, 5, 1)
	if !reflect.DeepEqual(same, v) {
		t.Error("SetBit with no change should return an equal value")
	}

	v = SetBit(v, 5, 0)
	if GetBit(v, 5) != 0 {
		t.Error("bit 5 should be cleared")
	}

	// setting beyond range with 0 returns unchanged
	before := []Word{7}
	after := SetBit(before, 1000, 0)
	if !reflect.DeepEqual(before, after) {
		t.Error("SetBit(beyond range, 0) should return v unchanged")
	}

	// setting beyond range with 1 extends the array
	extended := SetBit([]Word{7}, Shift*2+3, 1)
	if GetBit(extended, Shift*2+3) != 1 {
		t.Error("extended bit should read back as 1")
	}
}

func TestSliceSetFromWordWholeInside(t *testing.T) {
	v := []Word{0, 0}
	got := SliceSetFromWord(v, 0xF, 4, 8)
	if RshiftAndMaskToWord(got, 4, 4) != 0xF {
		t.Errorf("slice [4:8) = %#x, want 0xF", RshiftAndMaskToWord(got, 4, 4))
	}
	if RshiftAndMaskToWord(got, 0, 4) != 0 {
		t.Error("bits outside [4:8) should stay zero")
	}
}

func TestSliceSetFromWordExtends(t *testing.T) {
	got := SliceSetFromWord([]Word{0}, 0x3, Shift+2, Shift+4)
	if RshiftAndMaskToWord(got, Shift+2, 2) != 0x3 {
		t.Error("extension write did not land at the right offset")
	}
}

func TestSliceSetFromBigDelegatesToWordForSingleDigit(t *testing.T) {
	v := []Word{0, 0}
	got := SliceSetFromBig(v, []Word{0x3}, 4, 8)
	want := SliceSetFromWord(v, 0x3, 4, 8)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SliceSetFromBig single-digit = %v, want %v", got, want)
	}
}
