// Package register implements Reg, a dual-buffered bit-vector cell that
// models a clocked hardware register: a current value, a shadow "next"
// value scheduled by a non-blocking assign, and a flip operation that
// commits the shadow into the current slot on the next clock edge.
package register

import (
	"fmt"

	"github.com/lookbusy1344/bitcore/bits"
)

// Reg is a mutable register holding a current bits.Bits value and,
// once at least one non-blocking assign has occurred, a shadow value of
// identical width. Reg is the only mutable entity in this module; a
// plain bits.Bits remains immutable and freely copyable.
type Reg struct {
	width   int
	current bits.Bits
	next    bits.Bits
	hasNext bool
}

// New creates a register carrying initial as its current value. The
// shadow slot is unset until the first non-blocking assign.
func New(initial bits.Bits) *Reg {
	return &Reg{width: initial.Width(), current: initial}
}

// Width returns the register's bit width.
func (r *Reg) Width() int { return r.width }

// Current returns the register's present value.
func (r *Reg) Current() bits.Bits { return r.current }

// Next returns the scheduled shadow value and whether one has been set.
func (r *Reg) Next() (bits.Bits, bool) { return r.next, r.hasNext }

// Assign schedules v as the register's next value, to take effect on
// the next Flip. v must share the register's width; any other width is
// a value error ("bitwidth mismatch on non-blocking assign" per the
// core's error taxonomy). This is the non-blocking assign operator
// (`<<=` in the host language): a plain value promoted this way becomes
// a register that keeps accepting further non-blocking assigns, exactly
// as a fresh Reg does.
func (r *Reg) Assign(v bits.Bits) error {
	if v.Width() != r.width {
		return fmt.Errorf("non-blocking assign: width mismatch, register is %d bits, value is %d bits", r.width, v.Width())
	}
	r.next = v
	r.hasNext = true
	return nil
}

// Flip atomically replaces the current value with the shadow value.
// The shadow slot is left as-is afterward (it is not cleared), matching
// the core's register semantics: a register that is never reassigned
// keeps flipping to the same next value every cycle. Flip on a register
// that has never been assigned a shadow value is a type error ("flip on
// a plain Bits" in the core's terms, since nothing has promoted this
// register yet).
func (r *Reg) Flip() error {
	if !r.hasNext {
		return fmt.Errorf("flip: register has no scheduled next value")
	}
	r.current = r.next
	return nil
}

// Promote returns a new Reg wrapping v with next scheduled to shadow,
// implementing the "a plain Bits<N> promoted via non-blocking assign for
// the first time returns a new BitsWithNext<N>" rule. Callers holding a
// plain bits.Bits and performing their first non-blocking assign use
// this instead of New+Assign to make the promotion explicit at the call
// site.
func Promote(current, shadow bits.Bits) (*Reg, error) {
	if current.Width() != shadow.Width() {
		return nil, fmt.Errorf("non-blocking assign: width mismatch, register is %d bits, value is %d bits", current.Width(), shadow.Width())
	}
	return &Reg{width: current.Width(), current: current, next: shadow, hasNext: true}, nil
}
