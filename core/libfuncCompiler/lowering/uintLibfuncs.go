package lowering

import (
	"errors"
	"fmt"
)

var (
	// ErrNotImplemented marks the declared-but-unimplemented libfunc kinds
	// (wide_mul, square_root). Lowering one is a missing feature, reported
	// loudly instead of falling through to a wrong lowering.
	ErrNotImplemented = errors.New("libfunc lowering not implemented")

	errUnknownKind  = errors.New("unknown libfunc kind")
	errBadSignature = errors.New("malformed libfunc signature")
)

// Build selects and runs the lowering routine for the libfunc described by
// desc, emitting its fragment into entry and terminating every emitted block
// through helper. It is the single entry point the compilation driver calls
// per source instruction.
func Build(reg *TypeRegistry, entry *NIRBasicBlock, helper *LibfuncHelper, desc *Descriptor) error {
	if len(desc.Sig.Branches) != helper.NumBranches() {
		return fmt.Errorf("%w: %s declares %d branches, helper has %d",
			errBadSignature, desc.Name(), len(desc.Sig.Branches), helper.NumBranches())
	}

	var err error
	switch desc.Kind {
	case UintConst:
		err = buildConst(reg, entry, helper, desc)
	case UintOperation:
		err = buildOperation(entry, helper, desc)
	case UintSquareRoot:
		err = fmt.Errorf("%w: %s", ErrNotImplemented, desc.Name())
	case UintEqual:
		err = buildEqual(entry, helper)
	case UintToFelt:
		err = buildToFelt(reg, entry, helper, desc)
	case UintFromFelt:
		err = buildFromFelt(reg, entry, helper, desc)
	case UintIsZero:
		err = buildIsZero(entry, helper)
	case UintDivmod:
		err = buildDivmod(entry, helper)
	case UintWideMul:
		err = fmt.Errorf("%w: %s", ErrNotImplemented, desc.Name())
	default:
		err = fmt.Errorf("%w: %s", errUnknownKind, desc.Kind)
	}
	if err != nil {
		return fmt.Errorf("lowering %s: %w", desc.Name(), err)
	}
	loweredLibfuncCounter.Inc(1)
	return nil
}

// buildConst materializes the descriptor's literal as a constant of the
// declared output type and jumps to the single successor with it. No
// capability is involved.
func buildConst(reg *TypeRegistry, entry *NIRBasicBlock, helper *LibfuncHelper, desc *Descriptor) error {
	if len(desc.Sig.Branches) != 1 || len(desc.Sig.Branches[0]) != 1 {
		return fmt.Errorf("%w: const wants one branch with one result", errBadSignature)
	}
	valueTy, err := reg.Resolve(desc.Sig.Branches[0][0])
	if err != nil {
		return err
	}

	c, err := entry.AppendConst(valueTy, desc.Const)
	if err != nil {
		return err
	}
	return helper.Br(entry, 0, []*Value{c})
}

// buildOperation lowers overflowing add/sub. A single fused instruction
// yields the (wrapped, flag) pair; the flag alone decides the branch, which
// keeps the outcome consistent with the width's modular arithmetic at the
// boundary values. The wrapped result travels on both edges so the failure
// path can still report it.
func buildOperation(entry *NIRBasicBlock, helper *LibfuncHelper, desc *Descriptor) error {
	rangeCheck, err := entry.Argument(0)
	if err != nil {
		return err
	}
	lhs, err := entry.Argument(1)
	if err != nil {
		return err
	}
	rhs, err := entry.Argument(2)
	if err != nil {
		return err
	}

	var op NirOperation
	switch desc.Operator {
	case OverflowingAdd:
		op = NirUADDO
	case OverflowingSub:
		op = NirUSUBO
	default:
		return fmt.Errorf("%w: operator %s", errBadSignature, desc.Operator)
	}

	pair, err := entry.AppendOverflowOp(op, lhs, rhs)
	if err != nil {
		return err
	}
	result, err := entry.AppendExtract(pair, 0)
	if err != nil {
		return err
	}
	overflow, err := entry.AppendExtract(pair, 1)
	if err != nil {
		return err
	}

	return helper.CondBr(entry, overflow,
		[2]int{1, 0},
		[2][]*Value{
			{rangeCheck, result},
			{rangeCheck, result},
		})
}

// buildEqual lowers the equality test: one comparison, branched on directly.
// Equal operands take successor 0, unequal take successor 1; neither edge
// carries a payload and no capability is consumed, equality cannot go out of
// range.
func buildEqual(entry *NIRBasicBlock, helper *LibfuncHelper) error {
	lhs, err := entry.Argument(0)
	if err != nil {
		return err
	}
	rhs, err := entry.Argument(1)
	if err != nil {
		return err
	}

	cond, err := entry.AppendCmp(CmpEq, lhs, rhs)
	if err != nil {
		return err
	}

	return helper.CondBr(entry, cond, [2]int{0, 1}, [2][]*Value{{}, {}})
}

// buildIsZero lowers the zero test. Successor 0 is the non-zero outcome and
// carries the operand forward so callers need not re-materialize it;
// successor 1 is the zero outcome with no payload.
func buildIsZero(entry *NIRBasicBlock, helper *LibfuncHelper) error {
	value, err := entry.Argument(0)
	if err != nil {
		return err
	}

	zero, err := entry.AppendConst(value.Type(), nil)
	if err != nil {
		return err
	}
	cond, err := entry.AppendCmp(CmpEq, value, zero)
	if err != nil {
		return err
	}

	return helper.CondBr(entry, cond,
		[2]int{1, 0},
		[2][]*Value{
			{},
			{value},
		})
}

// buildDivmod lowers checked division as two independent instructions; no
// fused divmod primitive is assumed. The divisor must have been proven
// non-zero by an upstream is_zero inserted by the driver; executing the
// emitted udiv/urem with a zero divisor is undefined at the NIR level.
func buildDivmod(entry *NIRBasicBlock, helper *LibfuncHelper) error {
	rangeCheck, err := entry.Argument(0)
	if err != nil {
		return err
	}
	lhs, err := entry.Argument(1)
	if err != nil {
		return err
	}
	rhs, err := entry.Argument(2)
	if err != nil {
		return err
	}

	quotient, err := entry.AppendUDiv(lhs, rhs)
	if err != nil {
		return err
	}
	remainder, err := entry.AppendURem(lhs, rhs)
	if err != nil {
		return err
	}

	return helper.Br(entry, 0, []*Value{rangeCheck, quotient, remainder})
}

// buildToFelt lowers the widening conversion: a zero-extension into the
// field element's backing width. It always succeeds, every bounded-width
// value lies below the field modulus.
func buildToFelt(reg *TypeRegistry, entry *NIRBasicBlock, helper *LibfuncHelper, desc *Descriptor) error {
	if len(desc.Sig.Branches) != 1 || len(desc.Sig.Branches[0]) != 1 {
		return fmt.Errorf("%w: to_felt252 wants one branch with one result", errBadSignature)
	}
	feltTy, err := reg.Resolve(desc.Sig.Branches[0][0])
	if err != nil {
		return err
	}
	value, err := entry.Argument(0)
	if err != nil {
		return err
	}

	widened, err := entry.AppendZExt(value, feltTy)
	if err != nil {
		return err
	}
	return helper.Br(entry, 0, []*Value{widened})
}

// buildFromFelt lowers the range-checked narrowing conversion. The input is
// compared against the family's maximum materialized as a felt constant;
// the in-range path truncates (a pure bit-truncation, valid because the
// comparison proved the high bits zero) and exits on successor 0 with
// (capability, value), the out-of-range path exits on successor 1 with the
// capability alone.
func buildFromFelt(reg *TypeRegistry, entry *NIRBasicBlock, helper *LibfuncHelper, desc *Descriptor) error {
	if len(desc.Sig.Params) != 2 || len(desc.Sig.Branches) != 2 || len(desc.Sig.Branches[0]) != 2 {
		return fmt.Errorf("%w: from_felt252 wants (rc, felt) and two branches", errBadSignature)
	}
	rangeCheck, err := entry.Argument(0)
	if err != nil {
		return err
	}
	value, err := entry.Argument(1)
	if err != nil {
		return err
	}

	feltTy, err := reg.Resolve(desc.Sig.Params[1])
	if err != nil {
		return err
	}
	resultTy, err := reg.Resolve(desc.Sig.Branches[0][1])
	if err != nil {
		return err
	}

	constMax, err := entry.AppendConst(feltTy, desc.Traits.Max())
	if err != nil {
		return err
	}
	inRange, err := entry.AppendCmp(CmpUle, value, constMax)
	if err != nil {
		return err
	}

	blockSuccess := helper.AppendBlock(nil)
	blockFailure := helper.AppendBlock(nil)
	if err := helper.CondBrBlocks(entry, inRange, blockSuccess, blockFailure, nil, nil); err != nil {
		return err
	}

	narrowed, err := blockSuccess.AppendTrunc(value, resultTy)
	if err != nil {
		return err
	}
	if err := helper.Br(blockSuccess, 0, []*Value{rangeCheck, narrowed}); err != nil {
		return err
	}

	return helper.Br(blockFailure, 1, []*Value{rangeCheck})
}
