package lowering

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

func TestRunRejectsArityMismatch(t *testing.T) {
	reg := NewTypeRegistry()
	fn, _, err := LowerFragment(reg, NewEqualDescriptor(Uint32Traits))
	require.NoError(t, err)

	_, _, err = NewNIRInterpreter(fn).Run([]*uint256.Int{u64(1)})
	require.ErrorIs(t, err, errEntryArgs)
}

func TestRunRejectsOversizedWord(t *testing.T) {
	reg := NewTypeRegistry()
	fn, _, err := LowerFragment(reg, NewEqualDescriptor(Uint8Traits))
	require.NoError(t, err)

	_, _, err = NewNIRInterpreter(fn).Run([]*uint256.Int{u64(256), u64(0)})
	require.ErrorIs(t, err, errEntryArgs)
}

func TestRunRejectsNonCanonicalFelt(t *testing.T) {
	reg := NewTypeRegistry()
	fn, _, err := LowerFragment(reg, NewFromFeltDescriptor(Uint32Traits))
	require.NoError(t, err)

	_, _, err = NewNIRInterpreter(fn).Run([]*uint256.Int{rcToken, feltModulusWord})
	require.ErrorIs(t, err, errEntryArgs)
}

// Fresh interpreter per run: value bindings must not leak across fragments.
func TestInterpreterIsSingleUse(t *testing.T) {
	reg := NewTypeRegistry()
	fn, helper, err := LowerFragment(reg, NewIsZeroDescriptor(Uint32Traits))
	require.NoError(t, err)

	bb, _, err := NewNIRInterpreter(fn).Run([]*uint256.Int{u64(0)})
	require.NoError(t, err)
	require.Equal(t, 1, helper.BranchOf(bb))

	bb, out, err := NewNIRInterpreter(fn).Run([]*uint256.Int{u64(9)})
	require.NoError(t, err)
	require.Equal(t, 0, helper.BranchOf(bb))
	require.Equal(t, u64(9), out[0])
}
