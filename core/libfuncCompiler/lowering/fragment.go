package lowering

// LowerFragment builds a self-contained fragment for one libfunc: a function
// whose entry block declares the libfunc's parameter types, one landing
// block per declared outcome branch, and the lowered body in between. This
// is the composition a compilation driver performs per source instruction;
// it is also what the tests execute.
func LowerFragment(reg *TypeRegistry, desc *Descriptor) (*Function, *LibfuncHelper, error) {
	entryTypes, err := resolveAll(reg, desc.Sig.Params)
	if err != nil {
		return nil, nil, err
	}
	fn := NewFunction(entryTypes)

	targets := make([]*NIRBasicBlock, len(desc.Sig.Branches))
	for i, branch := range desc.Sig.Branches {
		branchTypes, err := resolveAll(reg, branch)
		if err != nil {
			return nil, nil, err
		}
		targets[i] = fn.AppendBlock(branchTypes)
	}

	helper := NewLibfuncHelper(fn, targets)
	if err := Build(reg, fn.Entry(), helper, desc); err != nil {
		return nil, nil, err
	}
	return fn, helper, nil
}

// BranchOf maps a landing block back to its declared branch index, -1 when
// the block is not a declared target.
func (h *LibfuncHelper) BranchOf(bb *NIRBasicBlock) int {
	for i, t := range h.targets {
		if t == bb {
			return i
		}
	}
	return -1
}

func resolveAll(reg *TypeRegistry, ids []TypeID) ([]NirType, error) {
	types := make([]NirType, len(ids))
	for i, id := range ids {
		t, err := reg.Resolve(id)
		if err != nil {
			return nil, err
		}
		types[i] = t
	}
	return types, nil
}
