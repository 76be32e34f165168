package lowering

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

func TestBrValidatesEdgeArity(t *testing.T) {
	fn := NewFunction([]NirType{RangeCheckType(), IntType(32)})
	target := fn.AppendBlock([]NirType{RangeCheckType(), IntType(32)})
	helper := NewLibfuncHelper(fn, []*NIRBasicBlock{target})

	rc, err := fn.Entry().Argument(0)
	require.NoError(t, err)

	// Dropping the payload value (or the capability) is caught centrally.
	err = helper.Br(fn.Entry(), 0, []*Value{rc})
	require.ErrorIs(t, err, errEdgeMismatch)
	require.False(t, fn.Entry().Terminated())
}

func TestBrValidatesEdgeTypes(t *testing.T) {
	fn := NewFunction([]NirType{RangeCheckType(), IntType(32)})
	target := fn.AppendBlock([]NirType{RangeCheckType(), IntType(64)})
	helper := NewLibfuncHelper(fn, []*NIRBasicBlock{target})

	rc, _ := fn.Entry().Argument(0)
	word, _ := fn.Entry().Argument(1)

	// An i32 where the target expects i64 corrupts the IR silently if let
	// through; it must be an immediate defect.
	err := helper.Br(fn.Entry(), 0, []*Value{rc, word})
	require.ErrorIs(t, err, errEdgeMismatch)
}

func TestBrRejectsUnknownBranch(t *testing.T) {
	fn := NewFunction(nil)
	helper := NewLibfuncHelper(fn, []*NIRBasicBlock{fn.AppendBlock(nil)})

	err := helper.Br(fn.Entry(), 1, nil)
	require.ErrorIs(t, err, errBranchIndex)
}

func TestCondBrRejectsNonBoolCondition(t *testing.T) {
	fn := NewFunction([]NirType{IntType(32)})
	t0 := fn.AppendBlock(nil)
	t1 := fn.AppendBlock(nil)
	helper := NewLibfuncHelper(fn, []*NIRBasicBlock{t0, t1})

	word, _ := fn.Entry().Argument(0)
	err := helper.CondBr(fn.Entry(), word, [2]int{0, 1}, [2][]*Value{{}, {}})
	require.ErrorIs(t, err, errCondType)
}

func TestBlockRejectsSecondTerminator(t *testing.T) {
	fn := NewFunction(nil)
	target := fn.AppendBlock(nil)
	helper := NewLibfuncHelper(fn, []*NIRBasicBlock{target})

	require.NoError(t, helper.Br(fn.Entry(), 0, nil))
	err := helper.Br(fn.Entry(), 0, nil)
	require.ErrorIs(t, err, errAlreadyTerminated)
}

func TestAppendOpsValidateOperands(t *testing.T) {
	fn := NewFunction([]NirType{IntType(32), IntType(64)})
	entry := fn.Entry()
	a, _ := entry.Argument(0)
	b, _ := entry.Argument(1)

	_, err := entry.AppendOverflowOp(NirUADDO, a, b)
	require.ErrorIs(t, err, errOperandType)

	_, err = entry.AppendCmp(CmpEq, a, b)
	require.ErrorIs(t, err, errOperandType)

	_, err = entry.AppendZExt(b, IntType(32))
	require.ErrorIs(t, err, errOperandType)

	_, err = entry.AppendTrunc(a, IntType(64))
	require.ErrorIs(t, err, errOperandType)

	_, err = entry.AppendConst(IntType(8), uint256.NewInt(256))
	require.ErrorIs(t, err, errOperandType)

	_, err = entry.Argument(2)
	require.ErrorIs(t, err, errArgumentIndex)
}

func TestExtractRequiresPair(t *testing.T) {
	fn := NewFunction([]NirType{IntType(32)})
	entry := fn.Entry()
	a, _ := entry.Argument(0)

	_, err := entry.AppendExtract(a, 0)
	require.ErrorIs(t, err, errOperandType)

	pair, err := entry.AppendOverflowOp(NirUADDO, a, a)
	require.NoError(t, err)
	_, err = entry.AppendExtract(pair, 2)
	require.ErrorIs(t, err, errOperandType)
}
