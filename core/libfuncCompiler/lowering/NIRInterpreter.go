package lowering

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"
)

var (
	errEntryArgs      = errors.New("entry argument mismatch")
	errUndefinedValue = errors.New("use of undefined value")
	errDivisionByZero = errors.New("division by zero")
	errMissingEdge    = errors.New("terminator edge missing")
	errStepLimit      = errors.New("step limit exceeded")
)

// Lowered fragments are small and acyclic; anything longer than this is a
// malformed graph.
const interpStepLimit = 1 << 12

// nirVal is one concrete scalar during evaluation. Pairs keep the wrapped
// word in u and the flag in ovf.
type nirVal struct {
	typ NirType
	u   *uint256.Int
	ovf bool
}

// NIRInterpreter executes one lowered fragment with concrete inputs and
// reports which block control finally lands on, together with the argument
// values delivered to it. Blocks without a terminator end the run; the
// driver's declared landing blocks are exactly that.
type NIRInterpreter struct {
	fn    *Function
	vals  map[*Value]nirVal
	steps int
}

func NewNIRInterpreter(fn *Function) *NIRInterpreter {
	return &NIRInterpreter{
		fn:   fn,
		vals: make(map[*Value]nirVal),
	}
}

// Run feeds args to the entry block's parameters and walks the fragment to a
// terminator-less block. Returns that block and the values bound to its
// parameters.
func (it *NIRInterpreter) Run(args []*uint256.Int) (*NIRBasicBlock, []*uint256.Int, error) {
	bb := it.fn.Entry()
	if len(args) != len(bb.params) {
		return nil, nil, fmt.Errorf("%w: want %d values, got %d", errEntryArgs, len(bb.params), len(args))
	}
	for i, p := range bb.params {
		if p.typ.kind == IntScalar && args[i].BitLen() > int(p.typ.bits) {
			return nil, nil, fmt.Errorf("%w: argument %d exceeds %s", errEntryArgs, i, p.typ)
		}
		if p.typ.kind == FeltScalar && !args[i].Lt(feltModulusWord) {
			return nil, nil, fmt.Errorf("%w: argument %d is not a canonical felt", errEntryArgs, i)
		}
		it.vals[p] = nirVal{typ: p.typ, u: args[i]}
	}

	for {
		it.steps++
		if it.steps > interpStepLimit {
			return nil, nil, errStepLimit
		}
		for _, m := range bb.instructions {
			if err := it.exec(m); err != nil {
				return nil, nil, err
			}
			it.steps++
			if it.steps > interpStepLimit {
				return nil, nil, errStepLimit
			}
		}
		if bb.term == nil {
			out := make([]*uint256.Int, len(bb.params))
			for i, p := range bb.params {
				v, err := it.valueOf(p)
				if err != nil {
					return nil, nil, err
				}
				out[i] = v.u
			}
			return bb, out, nil
		}
		next, err := it.follow(bb.term)
		if err != nil {
			return nil, nil, err
		}
		bb = next
	}
}

// follow picks the terminator's edge, hands the edge arguments to the target
// block's parameters, and returns the target.
func (it *NIRInterpreter) follow(t *terminator) (*NIRBasicBlock, error) {
	var edge Edge
	switch t.op {
	case NirBR:
		if len(t.edges) != 1 {
			return nil, fmt.Errorf("%w: br with %d edges", errMissingEdge, len(t.edges))
		}
		edge = t.edges[0]
	case NirCONDBR:
		if len(t.edges) != 2 {
			return nil, fmt.Errorf("%w: condbr with %d edges", errMissingEdge, len(t.edges))
		}
		cond, err := it.valueOf(t.cond)
		if err != nil {
			return nil, err
		}
		if cond.u.IsZero() {
			edge = t.edges[1]
		} else {
			edge = t.edges[0]
		}
	default:
		return nil, fmt.Errorf("%w: %s is not a terminator", errMissingEdge, t.op)
	}

	target := edge.target
	for i, arg := range edge.args {
		v, err := it.valueOf(arg)
		if err != nil {
			return nil, err
		}
		it.vals[target.params[i]] = v
	}
	LowerDebugInfo("NIR edge taken", "target", target.blockNum, "args", len(edge.args))
	return target, nil
}

func (it *NIRInterpreter) valueOf(v *Value) (nirVal, error) {
	if v == nil {
		return nirVal{}, errUndefinedValue
	}
	if v.kind == Konst {
		return nirVal{typ: v.typ, u: v.u}, nil
	}
	if val, ok := it.vals[v]; ok {
		return val, nil
	}
	return nirVal{}, fmt.Errorf("%w: %s value", errUndefinedValue, v.typ)
}

func (it *NIRInterpreter) operand(m *NIR, i int) (nirVal, error) {
	if i >= len(m.operands) {
		return nirVal{}, fmt.Errorf("%s missing operands", m.op)
	}
	return it.valueOf(m.operands[i])
}

func (it *NIRInterpreter) exec(m *NIR) error {
	switch m.op {
	case NirNOP:
		return nil

	case NirCONST:
		it.vals[m.result] = nirVal{typ: m.typ, u: m.result.u}
		return nil

	case NirUADDO, NirUSUBO:
		lhs, err := it.operand(m, 0)
		if err != nil {
			return err
		}
		rhs, err := it.operand(m, 1)
		if err != nil {
			return err
		}
		bits := m.typ.bits
		max := uintMax(bits)
		wrapped := new(uint256.Int)
		var overflow bool
		if m.op == NirUADDO {
			// Operands fit the width, so the mathematical sum fits the
			// evaluator's word; overflow is sum > 2^W-1.
			wrapped.Add(lhs.u, rhs.u)
			overflow = wrapped.Gt(max)
		} else {
			overflow = lhs.u.Lt(rhs.u)
			wrapped.Sub(lhs.u, rhs.u)
		}
		wrapped.And(wrapped, max)
		it.vals[m.result] = nirVal{typ: m.typ, u: wrapped, ovf: overflow}
		return nil

	case NirEXTRACT:
		pair, err := it.operand(m, 0)
		if err != nil {
			return err
		}
		if m.index == 0 {
			it.vals[m.result] = nirVal{typ: m.typ, u: pair.u}
		} else {
			flag := uint256.NewInt(0)
			if pair.ovf {
				flag.SetOne()
			}
			it.vals[m.result] = nirVal{typ: m.typ, u: flag}
		}
		return nil

	case NirCMP:
		lhs, err := it.operand(m, 0)
		if err != nil {
			return err
		}
		rhs, err := it.operand(m, 1)
		if err != nil {
			return err
		}
		var hit bool
		switch m.pred {
		case CmpEq:
			hit = lhs.u.Eq(rhs.u)
		case CmpUlt:
			hit = lhs.u.Lt(rhs.u)
		case CmpUle:
			hit = !rhs.u.Lt(lhs.u)
		default:
			return fmt.Errorf("CMP unknown predicate %s", m.pred)
		}
		flag := uint256.NewInt(0)
		if hit {
			flag.SetOne()
		}
		it.vals[m.result] = nirVal{typ: m.typ, u: flag}
		return nil

	case NirUDIV, NirUREM:
		lhs, err := it.operand(m, 0)
		if err != nil {
			return err
		}
		rhs, err := it.operand(m, 1)
		if err != nil {
			return err
		}
		if rhs.u.IsZero() {
			// Violated caller precondition, not a branch outcome.
			return fmt.Errorf("%w: %s", errDivisionByZero, m.op)
		}
		out := new(uint256.Int)
		if m.op == NirUDIV {
			out.Div(lhs.u, rhs.u)
		} else {
			out.Mod(lhs.u, rhs.u)
		}
		it.vals[m.result] = nirVal{typ: m.typ, u: out}
		return nil

	case NirZEXT:
		v, err := it.operand(m, 0)
		if err != nil {
			return err
		}
		it.vals[m.result] = nirVal{typ: m.typ, u: new(uint256.Int).Set(v.u)}
		return nil

	case NirTRUNC:
		v, err := it.operand(m, 0)
		if err != nil {
			return err
		}
		out := new(uint256.Int).And(v.u, uintMax(m.typ.bits))
		it.vals[m.result] = nirVal{typ: m.typ, u: out}
		return nil

	default:
		return fmt.Errorf("%s not executable", m.op)
	}
}
