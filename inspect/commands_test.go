package inspect

import (
	"strings"
	"testing"

	"github.com/lookbusy1344/bitcore/regbus"
)

func TestExecuteLineNewSetFlipSlice(t *testing.T) {
	reg := regbus.NewRegistry()

	if _, err := ExecuteLine(reg, "new acc 8 0x10"); err != nil {
		t.Fatalf("new: %v", err)
	}
	out, err := ExecuteLine(reg, "set acc 0x22")
	if err != nil {
		t.Fatalf("set: %v", err)
	}
	if !strings.Contains(out, "0x22") {
		t.Errorf("set output = %q, want mention of 0x22", out)
	}

	r, err := reg.Get("acc")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if r.Current().Uint64() != 0x10 {
		t.Errorf("current before flip = %#x, want 0x10", r.Current().Uint64())
	}

	if _, err := ExecuteLine(reg, "flip acc"); err != nil {
		t.Fatalf("flip: %v", err)
	}
	if r.Current().Uint64() != 0x22 {
		t.Errorf("current after flip = %#x, want 0x22", r.Current().Uint64())
	}

	out, err = ExecuteLine(reg, "slice acc 0:4")
	if err != nil {
		t.Fatalf("slice: %v", err)
	}
	if !strings.Contains(out, "acc[0:4]") {
		t.Errorf("slice output = %q", out)
	}
}

func TestExecuteLineUnknownCommand(t *testing.T) {
	reg := regbus.NewRegistry()
	if _, err := ExecuteLine(reg, "frobnicate x"); err == nil {
		t.Error("expected error for unknown command")
	}
}

func TestExecuteLineEmptyLine(t *testing.T) {
	reg := regbus.NewRegistry()
	out, err := ExecuteLine(reg, "   ")
	if err != nil || out != "" {
		t.Errorf("empty line = (%q, %v), want (\"\", nil)", out, err)
	}
}

func TestExecuteLineSetMissingRegister(t *testing.T) {
	reg := regbus.NewRegistry()
	if _, err := ExecuteLine(reg, "set missing 0x1"); err == nil {
		t.Error("expected error for missing register")
	}
}

func TestParseRangeInvalid(t *testing.T) {
	if _, _, err := parseRange("nope"); err == nil {
		t.Error("expected error for malformed range")
	}
}

func TestParseLiteralHexAndDecimal(t *testing.T) {
	v, err := parseLiteral("0x1F")
	if err != nil || v != 31 {
		t.Errorf("parseLiteral(0x1F) = (%d, %v), want (31, nil)", v, err)
	}
	v, err = parseLiteral("31")
	if err != nil || v != 31 {
		t.Errorf("parseLiteral(31) = (%d, %v), want (31, nil)", v, err)
	}
}
