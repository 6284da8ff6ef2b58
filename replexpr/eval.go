package replexpr

import (
	"fmt"
	"math/big"

	"github.com/lookbusy1344/bitcore/bits"
)

// Env holds REPL variable bindings and the default width used for bare
// (unquoted) numeric literals.
type Env struct {
	Vars         map[string]bits.Bits
	DefaultWidth int
}

// NewEnv creates an environment with the given default literal width.
func NewEnv(defaultWidth int) *Env {
	return &Env{Vars: make(map[string]bits.Bits), DefaultWidth: defaultWidth}
}

// Run parses and executes one REPL line, returning the value to print and
// true; an assignment or slice assignment returns the newly bound value.
// The zero value and false are returned only together with an error.
func (e *Env) Run(line string) (bits.Bits, bool, error) {
	stmt, err := Parse(line)
	if err != nil {
		return bits.Bits{}, false, err
	}
	switch s := stmt.(type) {
	case ExprStmt:
		v, err := e.eval(s.Expr)
		if err != nil {
			return bits.Bits{}, false, err
		}
		e.Vars["ans"] = v
		return v, true, nil

	case AssignStmt:
		v, err := e.eval(s.Expr)
		if err != nil {
			return bits.Bits{}, false, err
		}
		e.Vars[s.Name] = v
		return v, true, nil

	case SliceAssignStmt:
		target, ok := e.Vars[s.Name]
		if !ok {
			return bits.Bits{}, false, fmt.Errorf("undefined variable %q", s.Name)
		}
		rhs, err := e.eval(s.Expr)
		if err != nil {
			return bits.Bits{}, false, err
		}
		updated, err := target.SetSlice(s.Lo, s.Hi, rhs)
		if err != nil {
			return bits.Bits{}, false, err
		}
		e.Vars[s.Name] = updated
		return updated, true, nil
	}
	return bits.Bits{}, false, fmt.Errorf("unhandled statement %T", stmt)
}

func (e *Env) eval(n Node) (bits.Bits, error) {
	switch node := n.(type) {
	case Literal:
		width := node.Width
		if width == -1 {
			width = e.DefaultWidth
		}
		value, ok := new(big.Int).SetString(node.ValueText, 0)
		if !ok {
			return bits.Bits{}, fmt.Errorf("invalid numeric literal %q", node.ValueText)
		}
		return bits.New(width, value)

	case Ident:
		v, ok := e.Vars[node.Name]
		if !ok {
			return bits.Bits{}, fmt.Errorf("undefined variable %q", node.Name)
		}
		return v, nil

	case Slice:
		target, err := e.eval(node.Target)
		if err != nil {
			return bits.Bits{}, err
		}
		return target.GetSlice(node.Lo, node.Hi)

	case Unary:
		operand, err := e.eval(node.Operand)
		if err != nil {
			return bits.Bits{}, err
		}
		if node.Op == TokenTilde {
			return operand.Not(), nil
		}
		return bits.Bits{}, fmt.Errorf("unsupported unary operator %s", node.Op)

	case Binary:
		left, err := e.eval(node.Left)
		if err != nil {
			return bits.Bits{}, err
		}
		right, err := e.eval(node.Right)
		if err != nil {
			return bits.Bits{}, err
		}
		return evalBinary(node.Op, left, right)
	}
	return bits.Bits{}, fmt.Errorf("unhandled expression %T", n)
}

func evalBinary(op TokenType, left, right bits.Bits) (bits.Bits, error) {
	switch op {
	case TokenPlus:
		return left.Add(right)
	case TokenMinus:
		return left.Sub(right)
	case TokenStar:
		return left.Mul(right)
	case TokenAmp:
		return left.And(right)
	case TokenPipe:
		return left.Or(right)
	case TokenCaret:
		return left.Xor(right)
	case TokenLShift:
		return left.Lshift(right)
	case TokenRShift:
		return left.Rshift(right)
	case TokenEqEq:
		return left.Equal(right), nil
	case TokenNotEq:
		return left.NotEqual(right), nil
	case TokenLess:
		return left.Less(right), nil
	case TokenLessEq:
		return left.LessEqual(right), nil
	case TokenGreater:
		return left.Greater(right), nil
	case TokenGreaterEq:
		return left.GreaterEqual(right), nil
	}
	return bits.Bits{}, fmt.Errorf("unsupported operator %s", op)
}
