package inspect

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lookbusy1344/bitcore/bits"
	"github.com/lookbusy1344/bitcore/regbus"
)

// ExecuteLine parses and runs one command line against registry, the way
// the teacher's Debugger.ExecuteCommand dispatches a debugger command
// string. Supported forms:
//
//	new <name> <width> [init]
//	set <name> <hex>
//	flip <name>
//	slice <name> <a>:<b>
//
// It returns the text to display in the output panel.
func ExecuteLine(registry *regbus.Registry, line string) (string, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", nil
	}
	verb, args := fields[0], fields[1:]

	switch verb {
	case "new":
		return execNew(registry, args)
	case "set":
		return execSet(registry, args)
	case "flip":
		return execFlip(registry, args)
	case "slice":
		return execSlice(registry, args)
	default:
		return "", fmt.Errorf("unknown command %q", verb)
	}
}

func execNew(registry *regbus.Registry, args []string) (string, error) {
	if len(args) < 2 {
		return "", fmt.Errorf("usage: new <name> <width> [init]")
	}
	width, err := strconv.Atoi(args[1])
	if err != nil {
		return "", fmt.Errorf("invalid width %q: %w", args[1], err)
	}
	var initial bits.Source
	if len(args) >= 3 {
		v, err := parseLiteral(args[2])
		if err != nil {
			return "", err
		}
		initial = v
	}
	reg, err := registry.Create(args[0], width, initial)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s = %s", args[0], reg.Current().String()), nil
}

func execSet(registry *regbus.Registry, args []string) (string, error) {
	if len(args) != 2 {
		return "", fmt.Errorf("usage: set <name> <hex>")
	}
	reg, err := registry.Get(args[0])
	if err != nil {
		return "", err
	}
	lit, err := parseLiteral(args[1])
	if err != nil {
		return "", err
	}
	v, err := bits.New(reg.Width(), lit)
	if err != nil {
		return "", err
	}
	if err := reg.Assign(v); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s <<= %s (takes effect on next flip)", args[0], v.String()), nil
}

func execFlip(registry *regbus.Registry, args []string) (string, error) {
	if len(args) != 1 {
		return "", fmt.Errorf("usage: flip <name>")
	}
	reg, err := registry.Get(args[0])
	if err != nil {
		return "", err
	}
	if err := reg.Flip(); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s = %s", args[0], reg.Current().String()), nil
}

func execSlice(registry *regbus.Registry, args []string) (string, error) {
	if len(args) != 2 {
		return "", fmt.Errorf("usage: slice <name> <a>:<b>")
	}
	reg, err := registry.Get(args[0])
	if err != nil {
		return "", err
	}
	lo, hi, err := parseRange(args[1])
	if err != nil {
		return "", err
	}
	slice, err := reg.Current().GetSlice(lo, hi)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s[%d:%d] = %s", args[0], lo, hi, slice.String()), nil
}

func parseRange(s string) (lo, hi int, err error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid range %q, want a:b", s)
	}
	lo, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid range start %q: %w", parts[0], err)
	}
	hi, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid range stop %q: %w", parts[1], err)
	}
	return lo, hi, nil
}

// parseLiteral accepts a decimal or 0x-prefixed hex literal.
func parseLiteral(s string) (int64, error) {
	base := 10
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		s = s[2:]
		base = 16
	}
	v, err := strconv.ParseInt(s, base, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid literal: %w", err)
	}
	return v, nil
}

// SummaryLine renders one register-list-panel row.
func SummaryLine(name string, reg interface {
	Width() int
	Current() bits.Bits
	Next() (bits.Bits, bool)
}) string {
	next, hasNext := reg.Next()
	if !hasNext {
		return fmt.Sprintf("%-16s %3d bits  %s", name, reg.Width(), reg.Current().Hex())
	}
	return fmt.Sprintf("%-16s %3d bits  %s -> %s", name, reg.Width(), reg.Current().Hex(), next.Hex())
}

// DetailText renders the multi-radix detail view for a selected register.
func DetailText(name string, b bits.Bits) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "name:  %s\n", name)
	fmt.Fprintf(&sb, "width: %d\n", b.Width())
	fmt.Fprintf(&sb, "hex:   0x%s\n", b.Hex())
	fmt.Fprintf(&sb, "dec:   %s\n", b.Uint().String())
	fmt.Fprintf(&sb, "oct:   0%s\n", b.Oct())
	fmt.Fprintf(&sb, "int:   %s\n", b.Int().String())
	return sb.String()
}
