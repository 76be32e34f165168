package lowering

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveKnownTypes(t *testing.T) {
	reg := NewTypeRegistry()

	for _, traits := range allTraits {
		typ, err := reg.Resolve(traits.TypeID)
		require.NoError(t, err)
		assert.Equal(t, IntType(traits.Bits), typ)
	}

	typ, err := reg.Resolve(feltTypeID)
	require.NoError(t, err)
	assert.Equal(t, FeltType(), typ)

	typ, err = reg.Resolve(rangeCheckTypeID)
	require.NoError(t, err)
	assert.Equal(t, RangeCheckType(), typ)
}

func TestResolveUnknownType(t *testing.T) {
	reg := NewTypeRegistry()
	for _, id := range []TypeID{"", "u7", "u256", "i32", "felt", "uabc"} {
		_, err := reg.Resolve(id)
		assert.ErrorIs(t, err, errUnknownType, string(id))
	}
}

func TestResolveMemoizes(t *testing.T) {
	reg := NewTypeRegistry()
	first, err := reg.Resolve(Uint32Traits.TypeID)
	require.NoError(t, err)

	again, err := reg.Resolve(Uint32Traits.TypeID)
	require.NoError(t, err)
	assert.Equal(t, first, again)
	assert.Equal(t, 1, reg.cache.Len())
}

func TestFeltLiteralReduction(t *testing.T) {
	// The modulus itself is congruent to zero.
	assert.True(t, FeltLiteral(feltModulus).IsZero())

	// -1 wraps to modulus-1.
	minusOne := FeltLiteral(big.NewInt(-1))
	wantTop := new(big.Int).Sub(feltModulus, big.NewInt(1))
	assert.Equal(t, wantTop.String(), minusOne.Dec())

	// Small values are untouched.
	assert.Equal(t, "42", FeltLiteral(big.NewInt(42)).Dec())
}

func TestUintMax(t *testing.T) {
	assert.Equal(t, "255", uintMax(8).Dec())
	assert.Equal(t, "4294967295", uintMax(32).Dec())
	assert.Equal(t, "340282366920938463463374607431768211455", uintMax(128).Dec())
}

func TestTypeStrings(t *testing.T) {
	assert.Equal(t, "i32", IntType(32).String())
	assert.Equal(t, "i1", BoolType().String())
	assert.Equal(t, "felt", FeltType().String())
	assert.Equal(t, "rc", RangeCheckType().String())
	assert.Equal(t, "pair<i32, i1>", PairType(IntType(32)).String())
}
