package lowering

import (
	"github.com/holiman/uint256"
)

// ValueKind classifies how a NIR value came to exist.
type ValueKind int

const (
	Konst    ValueKind = 0 + iota // materialized literal
	Argument                      // formal parameter of a basic block
	Variable                      // result of an instruction
	Unknown                       // illegal
)

// Value is an SSA handle to a block argument, an instruction result or a
// constant. Values are owned by the block that defines them; lowering
// routines only consume values of the current block or its parameters.
type Value struct {
	kind   ValueKind
	typ    NirType
	def    *NIR         // defining instruction (Variable only)
	use    []*NIR       // instructions consuming this value
	argIdx int          // parameter position (Argument only)
	u      *uint256.Int // pre-decoded constant value (for Konst)
}

func newValue(kind ValueKind, typ NirType, def *NIR, konst *uint256.Int) *Value {
	value := new(Value)
	value.kind = kind
	value.typ = typ
	value.def = def
	if kind == Konst {
		// Pre-decode constants so consumers never re-parse payloads.
		if konst == nil {
			konst = uint256.NewInt(0)
		}
		value.u = konst
	}
	return value
}

// Type returns the concrete scalar type of the value.
func (v *Value) Type() NirType { return v.typ }

// IsConst returns true if the value is a constant
func (v *Value) IsConst() bool {
	return v.kind == Konst
}

// ConstValue returns the constant word, or zero for non-constants.
func (v *Value) ConstValue() *uint256.Int {
	if !v.IsConst() {
		return uint256.NewInt(0)
	}
	return v.u
}

// NIR is one instruction of the block-based SSA intermediate representation.
type NIR struct {
	op       NirOperation
	operands []*Value
	typ      NirType // result type
	pred     CmpPredicate
	index    int // component index for NirEXTRACT
	idx      int // position within the owning block
	result   *Value
}

// Result returns the SSA value this instruction defines, or nil for
// instructions without one.
func (m *NIR) Result() *Value {
	if m.op == NirNOP {
		return nil
	}
	return m.result
}

func (m *NIR) Op() NirOperation { return m.op }

func newConstNIR(typ NirType, value *uint256.Int) *NIR {
	mir := new(NIR)
	mir.op = NirCONST
	mir.typ = typ
	mir.result = newValue(Konst, typ, mir, value)
	return mir
}

func newBinaryOpNIR(op NirOperation, typ NirType, opnd1 *Value, opnd2 *Value) *NIR {
	mir := new(NIR)
	mir.op = op
	mir.typ = typ
	opnd1.use = append(opnd1.use, mir)
	opnd2.use = append(opnd2.use, mir)
	mir.operands = []*Value{opnd1, opnd2}
	mir.result = newValue(Variable, typ, mir, nil)
	return mir
}

func newCmpNIR(pred CmpPredicate, opnd1 *Value, opnd2 *Value) *NIR {
	mir := newBinaryOpNIR(NirCMP, BoolType(), opnd1, opnd2)
	mir.pred = pred
	return mir
}

func newExtractNIR(pair *Value, index int) *NIR {
	mir := new(NIR)
	mir.op = NirEXTRACT
	if index == 0 {
		mir.typ = pair.typ.Elem()
	} else {
		mir.typ = BoolType()
	}
	mir.index = index
	pair.use = append(pair.use, mir)
	mir.operands = []*Value{pair}
	mir.result = newValue(Variable, mir.typ, mir, nil)
	return mir
}

func newCastNIR(op NirOperation, typ NirType, opnd *Value) *NIR {
	mir := new(NIR)
	mir.op = op
	mir.typ = typ
	opnd.use = append(opnd.use, mir)
	mir.operands = []*Value{opnd}
	mir.result = newValue(Variable, typ, mir, nil)
	return mir
}
