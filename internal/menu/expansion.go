package menu

// Expansion records which top-level groups are open, keyed by the main
// item's SequenceID.
type Expansion map[int]bool

// Clone returns an independent copy.
func (e Expansion) Clone() Expansion {
	out := make(Expansion, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}

// Open reports whether the group is expanded.
func (e Expansion) Open(seq int) bool {
	return e[seq]
}

// ActiveSub finds the first sub-item, in entry then sub-item order, whose
// resolved path equals path.
func ActiveSub(entries []Entry, path string) (parentSeq, subSeq int, ok bool) {
	for _, e := range entries {
		for _, s := range e.Subs {
			if s.Path() == path {
				return e.Main.SequenceID, s.SequenceID, true
			}
		}
	}
	return 0, 0, false
}

// ComputeExpansion derives the expansion state for currentPath. When a
// sub-item matches, only its group is open; otherwise prior is kept as is.
func ComputeExpansion(entries []Entry, currentPath string, prior Expansion) Expansion {
	if len(entries) == 0 {
		return prior.Clone()
	}
	parent, _, ok := ActiveSub(entries, currentPath)
	if !ok {
		return prior.Clone()
	}
	return Expansion{parent: true}
}

// Toggle flips one group and leaves every other key untouched.
func Toggle(prior Expansion, seq int) Expansion {
	next := prior.Clone()
	next[seq] = !prior[seq]
	return next
}
