// Package bits implements Bits, an immutable fixed-width bit-vector
// value (1 to 512 bits) with strict modulo-2^n arithmetic, bitwise,
// shift, comparison, indexing and slice operations. Each value carries
// its own width and picks one of two payload representations: a single
// machine word when the width fits, or a digit array (package bigdigit)
// otherwise. Every operator re-applies the width's mask before
// returning, so a Bits value is never observably out of range.
//
// Shifts and slice mutation never go through math/big: they operate
// directly on the digit array (see bigdigit) so the constant factor
// stays close to native-integer operations. Addition, subtraction,
// multiplication and the bitwise operators delegate their big-form path
// to math/big (mirroring the original runtime's own delegation to a
// general bignum library for these, as opposed to the hand-rolled
// digit-array primitives it keeps for masking/shifting/slicing);
// math/big also appears at the boundary (Uint, Int, Hash) where a
// result must be handed to the caller as an arbitrary-precision number.
package bits

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/lookbusy1344/bitcore/bigdigit"
	"github.com/lookbusy1344/bitcore/masktable"
)

// Shift is the digit width used by the big-form payload; widths at or
// below Shift use the word-form payload instead.
const Shift = bigdigit.Shift

// MinWidth and MaxWidth bound the legal construction width.
const (
	MinWidth = 1
	MaxWidth = 512
)

// Bits is an immutable N-bit value, 1 <= N <= 512.
type Bits struct {
	nbits int
	word  uint64          // live iff nbits <= Shift
	big   []bigdigit.Word // live iff nbits > Shift
}

// Width returns the bit width of b.
func (b Bits) Width() int { return b.nbits }

// isWord reports whether b uses the word-form payload.
func (b Bits) isWord() bool { return b.nbits <= Shift }

func widthError(n int) error {
	return fmt.Errorf("1 <= nbits <= %d, not %d", MaxWidth, n)
}

func valueError(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}

func typeError(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}

// Source is anything that can seed the value of a new Bits: another
// Bits, a machine integer (signed or unsigned), or an arbitrary
// precision *big.Int.
type Source interface{}

// New constructs an N-bit value from value, reducing it modulo 2^N.
func New(n int, value Source) (Bits, error) {
	if n < MinWidth || n > MaxWidth {
		return Bits{}, widthError(n)
	}

	if n <= Shift {
		w, err := wordFromSource(n, value)
		if err != nil {
			return Bits{}, err
		}
		return Bits{nbits: n, word: w & masktable.WordMask(n)}, nil
	}

	digits, err := bigFromSource(n, value)
	if err != nil {
		return Bits{}, err
	}
	return Bits{nbits: n, big: digits}, nil
}

// MustNew is New but panics on error; useful for package-level test
// fixtures and literal construction where the width is known-good.
func MustNew(n int, value Source) Bits {
	b, err := New(n, value)
	if err != nil {
		panic(err)
	}
	return b
}

func wordFromSource(n int, value Source) (uint64, error) {
	switch v := value.(type) {
	case nil:
		return 0, nil
	case Bits:
		if v.isWord() {
			return v.word, nil
		}
		return v.big[0], nil
	case int:
		return uint64(int64(v)), nil
	case int64:
		return uint64(v), nil
	case uint:
		return uint64(v), nil
	case uint64:
		return v, nil
	case *big.Int:
		return digitsFromBigInt(v)[0], nil
	default:
		return 0, typeError("value used to construct Bits%d must be int/uint/Bits/*big.Int, not %T", n, value)
	}
}

func bigFromSource(n int, value Source) ([]bigdigit.Word, error) {
	switch v := value.(type) {
	case nil:
		return []bigdigit.Word{0}, nil
	case Bits:
		if v.isWord() {
			return bigdigit.MaskOffHigh([]bigdigit.Word{v.word}, n), nil
		}
		return bigdigit.MaskOffHigh(v.big, n), nil
	case int:
		return bigdigit.MaskOffHigh(digitsFromBigInt(big.NewInt(int64(v))), n), nil
	case int64:
		return bigdigit.MaskOffHigh(digitsFromBigInt(big.NewInt(v)), n), nil
	case uint:
		return bigdigit.MaskOffHigh(digitsFromUint64(uint64(v)), n), nil
	case uint64:
		return bigdigit.MaskOffHigh(digitsFromUint64(v), n), nil
	case *big.Int:
		return bigdigit.MaskOffHigh(digitsFromBigInt(v), n), nil
	default:
		return nil, typeError("value used to construct Bits%d must be int/uint/Bits/*big.Int, not %T", n, value)
	}
}

func digitsFromUint64(v uint64) []bigdigit.Word {
	if v == 0 {
		return []bigdigit.Word{0}
	}
	var out []bigdigit.Word
	for v != 0 {
		out = append(out, bigdigit.Word(v)&((bigdigit.Word(1)<<bigdigit.Shift)-1))
		v >>= bigdigit.Shift
	}
	return out
}

// digitsFromBigInt converts an arbitrary (possibly negative) *big.Int
// into little-endian Shift-bit digits via its two's-complement bit
// pattern, truncated at a generous bound; callers always immediately
// MaskOffHigh to the real target width.
func digitsFromBigInt(v *big.Int) []bigdigit.Word {
	if v.Sign() == 0 {
		return []bigdigit.Word{0}
	}
	abs := new(big.Int).Abs(v)
	if v.Sign() >= 0 {
		return digitsFromAbsBigInt(abs, abs.BitLen())
	}
	// Two's complement of a negative number at width w is 2^w - abs.
	// We don't know the eventual target width here, so materialise at
	// a width wide enough to be correct after the caller's MaskOffHigh:
	// MaxWidth bits is always sufficient since New never asks for more.
	w := MaxWidth
	mod := new(big.Int).Lsh(big.NewInt(1), uint(w))
	twos := new(big.Int).Sub(mod, abs)
	return digitsFromAbsBigInt(twos, w)
}

func digitsFromAbsBigInt(abs *big.Int, bitLen int) []bigdigit.Word {
	n := (bitLen + bigdigit.Shift - 1) / bigdigit.Shift
	if n == 0 {
		n = 1
	}
	out := make([]bigdigit.Word, n)
	tmp := new(big.Int).Set(abs)
	mask := new(big.Int).Lsh(big.NewInt(1), bigdigit.Shift)
	mask.Sub(mask, big.NewInt(1))
	word := new(big.Int)
	for i := 0; i < n; i++ {
		word.And(tmp, mask)
		out[i] = bigdigit.Word(word.Uint64())
		tmp.Rsh(tmp, bigdigit.Shift)
	}
	return bigdigit.Normalize(out)
}

// toBigInt converts b's digit array into an arbitrary-precision,
// non-negative *big.Int. Used only at the Uint/Int/Hash boundary.
func toBigInt(v []bigdigit.Word) *big.Int {
	result := new(big.Int)
	for i := len(v) - 1; i >= 0; i-- {
		result.Lsh(result, bigdigit.Shift)
		result.Or(result, new(big.Int).SetUint64(uint64(v[i])))
	}
	return result
}

// Clone returns a value equal to b. Bits is immutable and freely
// copyable, so Clone, Copy and DeepCopy all return b unchanged.
func (b Bits) Clone() Bits    { return b }
func (b Bits) Copy() Bits     { return b }
func (b Bits) DeepCopy() Bits { return b }

// Uint returns the unsigned integer value of b.
func (b Bits) Uint() *big.Int {
	if b.isWord() {
		return new(big.Int).SetUint64(b.word)
	}
	return toBigInt(b.big)
}

// Uint64 returns the unsigned value truncated to 64 bits; it is a
// convenience accessor for widths the caller knows fit, not a
// spec-level projection.
func (b Bits) Uint64() uint64 {
	if b.isWord() {
		return b.word
	}
	lo := uint64(b.big[0])
	if len(b.big) > 1 {
		lo |= uint64(b.big[1]) << Shift
	}
	return lo
}

// Int projects b as a signed integer: the MSB (bit N-1) is the sign
// bit. If the MSB is 0 the value is Uint(); if it is 1 the value is
// Uint() - 2^N.
func (b Bits) Int() *big.Int {
	if b.msb() == 0 {
		return b.Uint()
	}
	pow := new(big.Int).Lsh(big.NewInt(1), uint(b.nbits))
	return new(big.Int).Sub(b.Uint(), pow)
}

func (b Bits) msb() uint {
	index := b.nbits - 1
	if b.isWord() {
		return uint((b.word >> uint(index)) & 1)
	}
	return bigdigit.GetBit(b.big, index)
}

// Index, Long and Positive coincide with Uint per the projection rules.
func (b Bits) Index() *big.Int    { return b.Uint() }
func (b Bits) Long() *big.Int     { return b.Uint() }
func (b Bits) Positive() *big.Int { return b.Uint() }

// Bool reports whether b's payload is nonzero.
func (b Bits) Bool() bool {
	if b.isWord() {
		return b.word != 0
	}
	return !bigdigit.IsZero(b.big)
}

// hashModulus is 2^61-1, the Mersenne prime CPython's arbitrary
// precision integer hash reduces against; reusing it keeps Hash
// well-behaved (bounded, uniform) across the full 512-bit domain while
// still degenerating to the identity function for any payload that
// already fits under it.
var hashModulus = func() *big.Int {
	m := new(big.Int).Lsh(big.NewInt(1), 61)
	return m.Sub(m, big.NewInt(1))
}()

func hashInt(v *big.Int) uint64 {
	if v.Cmp(hashModulus) < 0 {
		return v.Uint64()
	}
	return new(big.Int).Mod(v, hashModulus).Uint64()
}

// Hash mixes (N, payload) using the fixed recipe the core must match
// bit-for-bit with a legacy two-tuple hash.
func (b Bits) Hash() uint64 {
	hN := hashInt(big.NewInt(int64(b.nbits)))
	hV := hashInt(b.Uint())

	x := uint64(0x345678)
	x = (x ^ hN) * 1000003
	x = (x ^ hV) * 1082525
	x += 97531
	return x
}

// Hex returns the unsigned value in lower-case hex, zero-padded to
// ceil(N/4) digits, without a leading "0x".
func (b Bits) Hex() string {
	width := (b.nbits + 3) / 4
	var s string
	if b.isWord() {
		s = strconv.FormatUint(b.word, 16)
	} else {
		s = bigHex(b.big)
	}
	if len(s) < width {
		s = strings.Repeat("0", width-len(s)) + s
	}
	return s
}

// Oct returns the unsigned value in octal, no padding, no "0o" prefix.
func (b Bits) Oct() string {
	if b.isWord() {
		return strconv.FormatUint(b.word, 8)
	}
	return bigOctal(b.big)
}

// String renders b as "0xHHH" zero-padded to ceil(N/4) hex digits.
func (b Bits) String() string {
	return "0x" + b.Hex()
}

// GoString renders b as "BitsN( 0xHHH )".
func (b Bits) GoString() string {
	return fmt.Sprintf("Bits%d( 0x%s )", b.nbits, b.Hex())
}

// bigHex and bigOctal format a digit array's value in the given base.
// Shift (63) is not a multiple of 4, so per-digit hex formatting cannot
// simply concatenate each digit's own textual form the way the digit
// array's base-2^Shift place values would suggest; both bases go through
// math/big, exactly as Uint/Int/Hash already do at this boundary.
func bigHex(v []bigdigit.Word) string {
	return toBigInt(v).Text(16)
}

func bigOctal(v []bigdigit.Word) string {
	return toBigInt(v).Text(8)
}
