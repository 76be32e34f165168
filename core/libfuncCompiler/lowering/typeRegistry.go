package lowering

import (
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/consensys/gnark-crypto/ecc/stark-curve/fr"
	"github.com/ethereum/go-ethereum/common/lru"
	"github.com/holiman/uint256"
)

// TypeID names a source-ISA type, e.g. "u32", "felt252" or "RangeCheck".
type TypeID string

// ScalarKind classifies a NIR scalar.
type ScalarKind byte

const (
	IntScalar        ScalarKind = iota // N-bit unsigned word (i1 doubles as the boolean)
	FeltScalar                         // prime-field element, backed by a feltBits-wide word
	RangeCheckScalar                   // the linear range-check capability token
	PairScalar                         // (value, overflow flag) pair produced by fused arithmetic
)

// feltBits is the width of the field element's backing representation.
const feltBits = fr.Bits

// NirType is the concrete scalar type of a NIR value. It is a plain
// comparable struct so edge validation can use ==; for PairScalar, bits is
// the width of the wrapped component (the flag component is always i1).
type NirType struct {
	kind ScalarKind
	bits uint
}

func IntType(bits uint) NirType { return NirType{kind: IntScalar, bits: bits} }
func BoolType() NirType         { return NirType{kind: IntScalar, bits: 1} }
func FeltType() NirType         { return NirType{kind: FeltScalar, bits: feltBits} }
func RangeCheckType() NirType   { return NirType{kind: RangeCheckScalar, bits: 64} }

func PairType(elem NirType) NirType {
	return NirType{kind: PairScalar, bits: elem.bits}
}

func (t NirType) Kind() ScalarKind { return t.kind }
func (t NirType) Bits() uint       { return t.bits }

// Elem returns the wrapped component type of a pair.
func (t NirType) Elem() NirType { return NirType{kind: IntScalar, bits: t.bits} }

func (t NirType) String() string {
	switch t.kind {
	case IntScalar:
		return fmt.Sprintf("i%d", t.bits)
	case FeltScalar:
		return "felt"
	case RangeCheckScalar:
		return "rc"
	case PairScalar:
		return fmt.Sprintf("pair<i%d, i1>", t.bits)
	default:
		return fmt.Sprintf("type(0x%02x)", byte(t.kind))
	}
}

var errUnknownType = errors.New("unknown type id")

const (
	// Smaller than a code cache would be; the resolvable type universe is tiny
	// and the cache mostly spares repeated id parsing.
	typeCacheCap = 256

	rangeCheckTypeID TypeID = "RangeCheck"
	feltTypeID       TypeID = "felt252"
)

func uintTypeID(bits uint) TypeID { return TypeID("u" + strconv.FormatUint(uint64(bits), 10)) }

// TypeRegistry resolves source-ISA type ids into concrete NIR scalar types.
// Resolved types are memoized in an LRU so repeated lowerings of the same
// signature never re-parse the id. The registry is the lowering core's only
// outbound collaborator; it is read-mostly and safe to share across
// sequential lowerings of one compilation unit.
type TypeRegistry struct {
	cache *lru.Cache[TypeID, NirType]
}

func NewTypeRegistry() *TypeRegistry {
	return &TypeRegistry{
		cache: lru.NewCache[TypeID, NirType](typeCacheCap),
	}
}

// Resolve returns the NIR scalar type backing the given type id. Failure to
// resolve is an engine defect of the calling lowering, never a branch
// outcome, so the caller must abort the operation.
func (r *TypeRegistry) Resolve(id TypeID) (NirType, error) {
	if t, ok := r.cache.Get(id); ok {
		return t, nil
	}
	t, err := parseTypeID(id)
	if err != nil {
		return NirType{}, err
	}
	r.cache.Add(id, t)
	return t, nil
}

func parseTypeID(id TypeID) (NirType, error) {
	switch id {
	case rangeCheckTypeID:
		return RangeCheckType(), nil
	case feltTypeID:
		return FeltType(), nil
	}
	if s, ok := strings.CutPrefix(string(id), "u"); ok {
		bits, err := strconv.ParseUint(s, 10, 16)
		if err == nil {
			switch bits {
			case 8, 16, 32, 64, 128:
				return IntType(uint(bits)), nil
			}
		}
	}
	return NirType{}, fmt.Errorf("%w: %q", errUnknownType, id)
}

// feltModulus is the prime of the field-element type. Every bounded-width
// value fits below it, which is what makes widening unconditional.
var feltModulus = fr.Modulus()

// feltModulusWord is the modulus as an evaluator word; canonical felt values
// are strictly below it.
var feltModulusWord, _ = uint256.FromBig(feltModulus)

// feltReduce maps an arbitrary integer into its canonical field
// representative in [0, feltModulus).
func feltReduce(v *big.Int) *uint256.Int {
	var e fr.Element
	e.SetBigInt(v)
	u, _ := uint256.FromBig(e.BigInt(new(big.Int)))
	return u
}

// uintMax returns 2^bits - 1.
func uintMax(bits uint) *uint256.Int {
	max := new(uint256.Int).Lsh(uint256.NewInt(1), bits)
	return max.SubUint64(max, 1)
}
