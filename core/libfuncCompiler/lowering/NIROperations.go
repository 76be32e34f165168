package lowering

import "fmt"

// NirOperation identifies a NIR instruction. NIR is the block-structured,
// SSA-form IR the libfunc lowering emits into.
type NirOperation byte

const (
	NirNOP   NirOperation = 0x00
	NirCONST NirOperation = 0x01 // CONST   reg0          ; materialize a typed literal

	// 0x10 range - integer arithmetic.
	NirUADDO NirOperation = 0x10 // UADDO   reg0, reg1, reg2 ; fused add, yields (wrapped, flag) pair
	NirUSUBO NirOperation = 0x11 // USUBO   reg0, reg1, reg2 ; fused sub, yields (wrapped, flag) pair
	NirUDIV  NirOperation = 0x12 // UDIV    reg0, reg1, reg2
	NirUREM  NirOperation = 0x13 // UREM    reg0, reg1, reg2

	// 0x20 range - comparisons and pair access.
	NirCMP     NirOperation = 0x20 // CMP.pred reg0, reg1, reg2 ; yields i1
	NirEXTRACT NirOperation = 0x21 // EXTRACT reg0, reg1, idx   ; pulls a component out of a pair

	// 0x30 range - width conversions.
	NirZEXT  NirOperation = 0x30 // ZEXT    reg0, reg1 ; zero-extend to a wider scalar
	NirTRUNC NirOperation = 0x31 // TRUNC   reg0, reg1 ; drop high bits to a narrower scalar

	// 0xe0 range - terminators.
	NirBR     NirOperation = 0xe0 // BR      target(args...)
	NirCONDBR NirOperation = 0xe1 // CONDBR  cond, then(args...), else(args...)
)

// String returns a human-readable name for the NIR operation
func (op NirOperation) String() string {
	switch op {
	case NirNOP:
		return "nop"
	case NirCONST:
		return "const"
	case NirUADDO:
		return "uaddo"
	case NirUSUBO:
		return "usubo"
	case NirUDIV:
		return "udiv"
	case NirUREM:
		return "urem"
	case NirCMP:
		return "cmp"
	case NirEXTRACT:
		return "extract"
	case NirZEXT:
		return "zext"
	case NirTRUNC:
		return "trunc"
	case NirBR:
		return "br"
	case NirCONDBR:
		return "condbr"
	default:
		return fmt.Sprintf("nir(0x%02x)", byte(op))
	}
}

// CmpPredicate selects the comparison performed by NirCMP. Only unsigned
// predicates exist; NIR integers are unsigned words.
type CmpPredicate byte

const (
	CmpEq  CmpPredicate = iota // equal
	CmpUlt                     // unsigned less-than
	CmpUle                     // unsigned less-or-equal
)

func (p CmpPredicate) String() string {
	switch p {
	case CmpEq:
		return "eq"
	case CmpUlt:
		return "ult"
	case CmpUle:
		return "ule"
	default:
		return fmt.Sprintf("cmp(0x%02x)", byte(p))
	}
}
