package lowering

import (
	"errors"
	"fmt"
)

var (
	errEdgeMismatch = errors.New("branch argument mismatch")
	errBranchIndex  = errors.New("branch index out of range")
	errCondType     = errors.New("branch condition is not an i1")
)

// LibfuncHelper terminates lowered fragments. It knows the landing block of
// every declared outcome branch and validates each emitted edge's argument
// list against the target block's formal parameters once, centrally. A type
// or arity mismatch here would corrupt the IR silently downstream, so it is
// rejected as an engine defect immediately. The range-check capability rides
// these edges like any other value: a routine that forgets to re-emit it on
// some path fails this validation because the landing block declares the
// capability parameter.
type LibfuncHelper struct {
	fn      *Function
	targets []*NIRBasicBlock
}

// NewLibfuncHelper wires a helper to one landing block per declared branch,
// in branch-signature order.
func NewLibfuncHelper(fn *Function, targets []*NIRBasicBlock) *LibfuncHelper {
	return &LibfuncHelper{fn: fn, targets: targets}
}

// NumBranches returns the number of declared outcome branches.
func (h *LibfuncHelper) NumBranches() int { return len(h.targets) }

// Target returns the landing block of the given branch.
func (h *LibfuncHelper) Target(branch int) (*NIRBasicBlock, error) {
	if branch < 0 || branch >= len(h.targets) {
		return nil, fmt.Errorf("%w: %d of %d", errBranchIndex, branch, len(h.targets))
	}
	return h.targets[branch], nil
}

// AppendBlock creates a fresh block internal to the current fragment. Only
// the narrowing conversion needs this: its in-range/out-of-range split runs
// through two private blocks before reaching the declared branches.
func (h *LibfuncHelper) AppendBlock(paramTypes []NirType) *NIRBasicBlock {
	return h.fn.AppendBlock(paramTypes)
}

// Br terminates bb with an unconditional jump to the declared branch,
// handing over args.
func (h *LibfuncHelper) Br(bb *NIRBasicBlock, branch int, args []*Value) error {
	target, err := h.Target(branch)
	if err != nil {
		return err
	}
	edge, err := checkEdge(target, args)
	if err != nil {
		return err
	}
	return bb.setTerminator(&terminator{op: NirBR, edges: []Edge{edge}})
}

// CondBr terminates bb with a two-way conditional jump among declared
// branches: branches[0] is taken when cond is one, branches[1] otherwise.
// Each edge carries its own argument list.
func (h *LibfuncHelper) CondBr(bb *NIRBasicBlock, cond *Value, branches [2]int, args [2][]*Value) error {
	thenTarget, err := h.Target(branches[0])
	if err != nil {
		return err
	}
	elseTarget, err := h.Target(branches[1])
	if err != nil {
		return err
	}
	return condBr(bb, cond, thenTarget, elseTarget, args[0], args[1])
}

// CondBrBlocks terminates bb with a two-way conditional jump to explicit
// blocks, used for edges internal to a routine's own fragment.
func (h *LibfuncHelper) CondBrBlocks(bb *NIRBasicBlock, cond *Value, thenBlock, elseBlock *NIRBasicBlock, thenArgs, elseArgs []*Value) error {
	return condBr(bb, cond, thenBlock, elseBlock, thenArgs, elseArgs)
}

func condBr(bb *NIRBasicBlock, cond *Value, thenBlock, elseBlock *NIRBasicBlock, thenArgs, elseArgs []*Value) error {
	if cond.typ != BoolType() {
		return fmt.Errorf("%w: got %s", errCondType, cond.typ)
	}
	thenEdge, err := checkEdge(thenBlock, thenArgs)
	if err != nil {
		return err
	}
	elseEdge, err := checkEdge(elseBlock, elseArgs)
	if err != nil {
		return err
	}
	return bb.setTerminator(&terminator{
		op:    NirCONDBR,
		cond:  cond,
		edges: []Edge{thenEdge, elseEdge},
	})
}

// checkEdge validates an argument list against the target block's formal
// parameter types, in order.
func checkEdge(target *NIRBasicBlock, args []*Value) (Edge, error) {
	params := target.paramTypes()
	if len(args) != len(params) {
		return Edge{}, fmt.Errorf("%w: block %d wants %d values, got %d",
			errEdgeMismatch, target.blockNum, len(params), len(args))
	}
	for i, arg := range args {
		if arg == nil {
			return Edge{}, fmt.Errorf("%w: block %d argument %d is nil",
				errEdgeMismatch, target.blockNum, i)
		}
		if arg.typ != params[i] {
			return Edge{}, fmt.Errorf("%w: block %d argument %d is %s, want %s",
				errEdgeMismatch, target.blockNum, i, arg.typ, params[i])
		}
	}
	return Edge{target: target, args: args}, nil
}
