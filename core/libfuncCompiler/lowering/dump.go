package lowering

import (
	"fmt"
	"strings"
)

// Dump renders the fragment in a stable textual form, one block per
// paragraph. Values are numbered in block order, parameters first. Used by
// debug logging and golden tests.
func (f *Function) Dump() string {
	names := make(map[*Value]string)
	n := 0
	name := func(v *Value) string {
		if v == nil {
			return "%?"
		}
		if s, ok := names[v]; ok {
			return s
		}
		s := fmt.Sprintf("%%%d", n)
		n++
		names[v] = s
		return s
	}
	for _, bb := range f.blocks {
		for _, p := range bb.params {
			name(p)
		}
		for _, m := range bb.instructions {
			if m.Result() != nil {
				name(m.Result())
			}
		}
	}

	var sb strings.Builder
	for i, bb := range f.blocks {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(fmt.Sprintf("block%d(", bb.blockNum))
		for j, p := range bb.params {
			if j > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(fmt.Sprintf("%s: %s", name(p), p.typ))
		}
		sb.WriteString("):\n")
		for _, m := range bb.instructions {
			sb.WriteString("  ")
			sb.WriteString(dumpNIR(m, name))
			sb.WriteByte('\n')
		}
		if bb.term != nil {
			sb.WriteString("  ")
			sb.WriteString(dumpTerminator(bb.term, name))
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

func dumpNIR(m *NIR, name func(*Value) string) string {
	res := name(m.Result())
	switch m.op {
	case NirCONST:
		return fmt.Sprintf("%s = const %s : %s", res, m.result.u.Dec(), m.typ)
	case NirCMP:
		return fmt.Sprintf("%s = cmp.%s %s, %s : %s",
			res, m.pred, name(m.operands[0]), name(m.operands[1]), m.typ)
	case NirEXTRACT:
		return fmt.Sprintf("%s = extract %s[%d] : %s",
			res, name(m.operands[0]), m.index, m.typ)
	case NirZEXT, NirTRUNC:
		return fmt.Sprintf("%s = %s %s : %s", res, m.op, name(m.operands[0]), m.typ)
	default:
		ops := make([]string, len(m.operands))
		for i, o := range m.operands {
			ops[i] = name(o)
		}
		return fmt.Sprintf("%s = %s %s : %s", res, m.op, strings.Join(ops, ", "), m.typ)
	}
}

func dumpTerminator(t *terminator, name func(*Value) string) string {
	edges := make([]string, len(t.edges))
	for i, e := range t.edges {
		args := make([]string, len(e.args))
		for j, a := range e.args {
			args[j] = name(a)
		}
		edges[i] = fmt.Sprintf("block%d(%s)", e.target.blockNum, strings.Join(args, ", "))
	}
	if t.op == NirCONDBR {
		return fmt.Sprintf("condbr %s, %s", name(t.cond), strings.Join(edges, ", "))
	}
	return fmt.Sprintf("br %s", edges[0])
}
