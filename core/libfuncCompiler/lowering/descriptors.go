package lowering

import (
	"fmt"
	"math/big"

	"github.com/holiman/uint256"
)

// LibfuncKind tags the bounded-integer libfunc variants the engine lowers.
// The set is closed: Build matches it exhaustively, and adding a kind here
// without a lowering routine trips errUnknownKind at the first call site.
type LibfuncKind byte

const (
	UintConst LibfuncKind = iota
	UintOperation
	UintSquareRoot
	UintEqual
	UintToFelt
	UintFromFelt
	UintIsZero
	UintDivmod
	UintWideMul
)

func (k LibfuncKind) String() string {
	switch k {
	case UintConst:
		return "const"
	case UintOperation:
		return "operation"
	case UintSquareRoot:
		return "square_root"
	case UintEqual:
		return "eq"
	case UintToFelt:
		return "to_felt252"
	case UintFromFelt:
		return "from_felt252"
	case UintIsZero:
		return "is_zero"
	case UintDivmod:
		return "safe_divmod"
	case UintWideMul:
		return "wide_mul"
	default:
		return fmt.Sprintf("libfunc(0x%02x)", byte(k))
	}
}

// IntOperator selects the fused arithmetic performed by UintOperation.
type IntOperator byte

const (
	OverflowingAdd IntOperator = iota
	OverflowingSub
)

func (o IntOperator) String() string {
	switch o {
	case OverflowingAdd:
		return "overflowing_add"
	case OverflowingSub:
		return "overflowing_sub"
	default:
		return fmt.Sprintf("operator(0x%02x)", byte(o))
	}
}

// UintTraits parameterizes one width family. Every family shares the same
// lowering design; only the bit width and type id differ.
type UintTraits struct {
	Bits   uint
	TypeID TypeID
}

var (
	Uint8Traits   = UintTraits{Bits: 8, TypeID: uintTypeID(8)}
	Uint16Traits  = UintTraits{Bits: 16, TypeID: uintTypeID(16)}
	Uint32Traits  = UintTraits{Bits: 32, TypeID: uintTypeID(32)}
	Uint64Traits  = UintTraits{Bits: 64, TypeID: uintTypeID(64)}
	Uint128Traits = UintTraits{Bits: 128, TypeID: uintTypeID(128)}
)

// Max returns the largest representable value of the family, 2^Bits - 1.
func (t UintTraits) Max() *uint256.Int { return uintMax(t.Bits) }

// BranchSignature is the ordered type list one outcome branch delivers.
type BranchSignature []TypeID

// Signature is the declared type signature of a libfunc: its parameter types
// and one type list per outcome branch. The branch count equals the number of
// control-flow successors the routine emits.
type Signature struct {
	Params   []TypeID
	Branches []BranchSignature
}

// Descriptor identifies which libfunc is being lowered and carries everything
// the routine needs: the width family, the declared signature, and the
// variant payload (literal for const, operator for fused arithmetic).
// Descriptors are built once per source instruction and are immutable during
// lowering.
type Descriptor struct {
	Kind     LibfuncKind
	Traits   UintTraits
	Sig      Signature
	Operator IntOperator  // UintOperation only
	Const    *uint256.Int // UintConst only
}

func (d *Descriptor) Name() string {
	return fmt.Sprintf("%s_%s", d.Traits.TypeID, d.Kind)
}

// NewConstDescriptor describes materializing literal value as a uN constant.
func NewConstDescriptor(traits UintTraits, value *uint256.Int) *Descriptor {
	return &Descriptor{
		Kind:   UintConst,
		Traits: traits,
		Const:  value,
		Sig: Signature{
			Branches: []BranchSignature{{traits.TypeID}},
		},
	}
}

// NewOperationDescriptor describes fused overflowing add or subtract. Branch
// 0 is the in-range outcome, branch 1 the overflow outcome; both carry the
// capability and the wrapped result.
func NewOperationDescriptor(traits UintTraits, operator IntOperator) *Descriptor {
	return &Descriptor{
		Kind:     UintOperation,
		Traits:   traits,
		Operator: operator,
		Sig: Signature{
			Params: []TypeID{rangeCheckTypeID, traits.TypeID, traits.TypeID},
			Branches: []BranchSignature{
				{rangeCheckTypeID, traits.TypeID},
				{rangeCheckTypeID, traits.TypeID},
			},
		},
	}
}

// NewEqualDescriptor describes the equality test. Branch 0 is taken when the
// operands are equal, branch 1 otherwise; neither carries a payload.
func NewEqualDescriptor(traits UintTraits) *Descriptor {
	return &Descriptor{
		Kind:   UintEqual,
		Traits: traits,
		Sig: Signature{
			Params:   []TypeID{traits.TypeID, traits.TypeID},
			Branches: []BranchSignature{{}, {}},
		},
	}
}

// NewIsZeroDescriptor describes the zero test. Branch 0 is the non-zero
// outcome and carries the operand back out; branch 1 is the zero outcome
// with no payload.
func NewIsZeroDescriptor(traits UintTraits) *Descriptor {
	return &Descriptor{
		Kind:   UintIsZero,
		Traits: traits,
		Sig: Signature{
			Params:   []TypeID{traits.TypeID},
			Branches: []BranchSignature{{traits.TypeID}, {}},
		},
	}
}

// NewDivmodDescriptor describes checked division. The single branch carries
// the capability, quotient and remainder; the divisor must have been proven
// non-zero upstream.
func NewDivmodDescriptor(traits UintTraits) *Descriptor {
	return &Descriptor{
		Kind:   UintDivmod,
		Traits: traits,
		Sig: Signature{
			Params:   []TypeID{rangeCheckTypeID, traits.TypeID, traits.TypeID},
			Branches: []BranchSignature{{rangeCheckTypeID, traits.TypeID, traits.TypeID}},
		},
	}
}

// NewToFeltDescriptor describes the lossless widening conversion into the
// field element type.
func NewToFeltDescriptor(traits UintTraits) *Descriptor {
	return &Descriptor{
		Kind:   UintToFelt,
		Traits: traits,
		Sig: Signature{
			Params:   []TypeID{traits.TypeID},
			Branches: []BranchSignature{{feltTypeID}},
		},
	}
}

// NewFromFeltDescriptor describes the range-checked narrowing conversion out
// of the field element type. Branch 0 carries (capability, narrowed value);
// branch 1 carries only the capability, the unrepresentable input is
// discarded.
func NewFromFeltDescriptor(traits UintTraits) *Descriptor {
	return &Descriptor{
		Kind:   UintFromFelt,
		Traits: traits,
		Sig: Signature{
			Params: []TypeID{rangeCheckTypeID, feltTypeID},
			Branches: []BranchSignature{
				{rangeCheckTypeID, traits.TypeID},
				{rangeCheckTypeID},
			},
		},
	}
}

// NewWideMulDescriptor describes the widening multiply. Lowering it is not
// implemented; Build reports ErrNotImplemented.
func NewWideMulDescriptor(traits UintTraits) *Descriptor {
	wide := uintTypeID(traits.Bits * 2)
	return &Descriptor{
		Kind:   UintWideMul,
		Traits: traits,
		Sig: Signature{
			Params:   []TypeID{traits.TypeID, traits.TypeID},
			Branches: []BranchSignature{{wide}},
		},
	}
}

// NewSquareRootDescriptor describes the integer square root. Lowering it is
// not implemented; Build reports ErrNotImplemented.
func NewSquareRootDescriptor(traits UintTraits) *Descriptor {
	return &Descriptor{
		Kind:   UintSquareRoot,
		Traits: traits,
		Sig: Signature{
			Params:   []TypeID{rangeCheckTypeID, traits.TypeID},
			Branches: []BranchSignature{{rangeCheckTypeID, traits.TypeID}},
		},
	}
}

// FeltLiteral reduces an arbitrary-precision literal into its canonical
// field representative.
func FeltLiteral(v *big.Int) *uint256.Int { return feltReduce(v) }
