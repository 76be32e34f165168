package lowering

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"
)

var (
	errArgumentIndex     = errors.New("block argument index out of range")
	errOperandType       = errors.New("operand type mismatch")
	errAlreadyTerminated = errors.New("block already terminated")
)

// Edge is one outgoing control-flow edge of a terminator: a target block and
// the ordered argument values handed to that block's formal parameters.
type Edge struct {
	target *NIRBasicBlock
	args   []*Value
}

func (e Edge) Target() *NIRBasicBlock { return e.target }
func (e Edge) Args() []*Value         { return e.args }

// terminator closes a basic block. NirBR carries one edge; NirCONDBR carries
// a condition and two edges (then, else).
type terminator struct {
	op    NirOperation
	cond  *Value
	edges []Edge
}

// NIRBasicBlock is a basic block of the lowered fragment. Its formal
// parameters are the only values a lowering routine may pull out of thin
// air; everything else is defined by appended instructions.
type NIRBasicBlock struct {
	blockNum     uint
	params       []*Value
	instructions []*NIR
	term         *terminator
}

func newNIRBasicBlock(blockNum uint, paramTypes []NirType) *NIRBasicBlock {
	bb := new(NIRBasicBlock)
	bb.blockNum = blockNum
	bb.instructions = []*NIR{}
	for i, t := range paramTypes {
		p := newValue(Argument, t, nil, nil)
		p.argIdx = i
		bb.params = append(bb.params, p)
	}
	return bb
}

func (b *NIRBasicBlock) Size() uint {
	return uint(len(b.instructions))
}

// Instructions returns the NIR instructions within this basic block
func (b *NIRBasicBlock) Instructions() []*NIR {
	return b.instructions
}

func (b *NIRBasicBlock) BlockNum() uint { return b.blockNum }

// NumParams returns the number of formal parameters of the block.
func (b *NIRBasicBlock) NumParams() int { return len(b.params) }

func (b *NIRBasicBlock) paramTypes() []NirType {
	types := make([]NirType, len(b.params))
	for i, p := range b.params {
		types[i] = p.typ
	}
	return types
}

// Argument returns the i-th formal parameter of the block.
func (b *NIRBasicBlock) Argument(i int) (*Value, error) {
	if i < 0 || i >= len(b.params) {
		return nil, fmt.Errorf("%w: %d of %d", errArgumentIndex, i, len(b.params))
	}
	return b.params[i], nil
}

// Terminated reports whether the block already carries a terminator.
func (b *NIRBasicBlock) Terminated() bool { return b.term != nil }

func (b *NIRBasicBlock) appendNIR(mir *NIR) *NIR {
	mir.idx = len(b.instructions)
	b.instructions = append(b.instructions, mir)
	emittedNIRCounter.Inc(1)
	return mir
}

// AppendConst materializes a typed literal. Integer literals must fit the
// width; felt literals must already be canonical (reduced below the modulus).
func (b *NIRBasicBlock) AppendConst(typ NirType, value *uint256.Int) (*Value, error) {
	if value == nil {
		value = uint256.NewInt(0)
	}
	switch typ.kind {
	case IntScalar:
		if value.BitLen() > int(typ.bits) {
			return nil, fmt.Errorf("%w: literal %s exceeds %s", errOperandType, value, typ)
		}
	case FeltScalar:
		if !value.Lt(feltModulusWord) {
			return nil, fmt.Errorf("%w: felt literal %s is not canonical", errOperandType, value)
		}
	default:
		return nil, fmt.Errorf("%w: cannot materialize constant of %s", errOperandType, typ)
	}
	mir := b.appendNIR(newConstNIR(typ, value))
	return mir.Result(), nil
}

// AppendOverflowOp emits a fused add/sub-with-overflow-flag instruction. Both
// operands must be integer words of the identical width; the result is a
// (wrapped, flag) pair.
func (b *NIRBasicBlock) AppendOverflowOp(op NirOperation, lhs, rhs *Value) (*Value, error) {
	if op != NirUADDO && op != NirUSUBO {
		return nil, fmt.Errorf("%w: %s is not a fused overflow op", errOperandType, op)
	}
	if err := wantSameIntWidth(op, lhs, rhs); err != nil {
		return nil, err
	}
	mir := b.appendNIR(newBinaryOpNIR(op, PairType(lhs.typ), lhs, rhs))
	return mir.Result(), nil
}

// AppendExtract pulls component 0 (wrapped value) or 1 (overflow flag) out of
// a fused-arithmetic pair.
func (b *NIRBasicBlock) AppendExtract(pair *Value, index int) (*Value, error) {
	if pair.typ.kind != PairScalar {
		return nil, fmt.Errorf("%w: extract from %s", errOperandType, pair.typ)
	}
	if index != 0 && index != 1 {
		return nil, fmt.Errorf("%w: pair component %d", errOperandType, index)
	}
	mir := b.appendNIR(newExtractNIR(pair, index))
	return mir.Result(), nil
}

// AppendCmp emits a comparison yielding an i1.
func (b *NIRBasicBlock) AppendCmp(pred CmpPredicate, lhs, rhs *Value) (*Value, error) {
	if lhs.typ != rhs.typ {
		return nil, fmt.Errorf("%w: cmp.%s over %s and %s", errOperandType, pred, lhs.typ, rhs.typ)
	}
	if lhs.typ.kind != IntScalar && lhs.typ.kind != FeltScalar {
		return nil, fmt.Errorf("%w: cmp.%s over %s", errOperandType, pred, lhs.typ)
	}
	mir := b.appendNIR(newCmpNIR(pred, lhs, rhs))
	return mir.Result(), nil
}

// AppendUDiv emits unsigned integer division. Divisor-nonzero is the
// caller's proven precondition; executing a zero divisor is undefined at the
// NIR level.
func (b *NIRBasicBlock) AppendUDiv(lhs, rhs *Value) (*Value, error) {
	if err := wantSameIntWidth(NirUDIV, lhs, rhs); err != nil {
		return nil, err
	}
	mir := b.appendNIR(newBinaryOpNIR(NirUDIV, lhs.typ, lhs, rhs))
	return mir.Result(), nil
}

// AppendURem emits unsigned integer remainder, same contract as AppendUDiv.
func (b *NIRBasicBlock) AppendURem(lhs, rhs *Value) (*Value, error) {
	if err := wantSameIntWidth(NirUREM, lhs, rhs); err != nil {
		return nil, err
	}
	mir := b.appendNIR(newBinaryOpNIR(NirUREM, lhs.typ, lhs, rhs))
	return mir.Result(), nil
}

// AppendZExt zero-extends an integer word into a strictly wider scalar.
func (b *NIRBasicBlock) AppendZExt(v *Value, typ NirType) (*Value, error) {
	if v.typ.kind != IntScalar || (typ.kind != IntScalar && typ.kind != FeltScalar) {
		return nil, fmt.Errorf("%w: zext %s to %s", errOperandType, v.typ, typ)
	}
	if typ.bits <= v.typ.bits {
		return nil, fmt.Errorf("%w: zext %s to narrower %s", errOperandType, v.typ, typ)
	}
	mir := b.appendNIR(newCastNIR(NirZEXT, typ, v))
	return mir.Result(), nil
}

// AppendTrunc drops the high bits of a scalar down to a strictly narrower
// integer word. It is a pure bit-truncation: the caller must have proven the
// dropped bits zero beforehand when value preservation matters.
func (b *NIRBasicBlock) AppendTrunc(v *Value, typ NirType) (*Value, error) {
	if typ.kind != IntScalar || (v.typ.kind != IntScalar && v.typ.kind != FeltScalar) {
		return nil, fmt.Errorf("%w: trunc %s to %s", errOperandType, v.typ, typ)
	}
	if typ.bits >= v.typ.bits {
		return nil, fmt.Errorf("%w: trunc %s to wider %s", errOperandType, v.typ, typ)
	}
	mir := b.appendNIR(newCastNIR(NirTRUNC, typ, v))
	return mir.Result(), nil
}

func wantSameIntWidth(op NirOperation, lhs, rhs *Value) error {
	if lhs.typ.kind != IntScalar || rhs.typ.kind != IntScalar || lhs.typ != rhs.typ {
		return fmt.Errorf("%w: %s over %s and %s", errOperandType, op, lhs.typ, rhs.typ)
	}
	return nil
}

func (b *NIRBasicBlock) setTerminator(t *terminator) error {
	if b.term != nil {
		return fmt.Errorf("%w: block %d", errAlreadyTerminated, b.blockNum)
	}
	b.term = t
	return nil
}

// Function owns the blocks of one lowered fragment: the entry block whose
// parameters are the operation's inputs, any internal blocks a routine
// appends, and one landing block per declared outcome branch.
type Function struct {
	blocks  []*NIRBasicBlock
	nextNum uint
}

func NewFunction(entryParams []NirType) *Function {
	fn := new(Function)
	fn.AppendBlock(entryParams)
	return fn
}

// Entry returns the insertion block the lowering starts from.
func (f *Function) Entry() *NIRBasicBlock { return f.blocks[0] }

// Blocks returns all blocks in creation order.
func (f *Function) Blocks() []*NIRBasicBlock { return f.blocks }

// AppendBlock creates a fresh block with the given formal parameter types.
func (f *Function) AppendBlock(paramTypes []NirType) *NIRBasicBlock {
	bb := newNIRBasicBlock(f.nextNum, paramTypes)
	f.nextNum++
	f.blocks = append(f.blocks, bb)
	return bb
}
