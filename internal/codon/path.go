package codon

// BasePair is an unordered pair of distinct nucleotides.
type BasePair int

const (
	AC BasePair = iota
	AG
	AT
	CG
	CT
	GT
)

var basePairNames = [...]string{"A<->C", "A<->G", "A<->T", "C<->G", "C<->T", "G<->T"}

func (p BasePair) String() string {
	if p < 0 || int(p) >= len(basePairNames) {
		return "unknown"
	}
	return basePairNames[p]
}

// IsTransition is true for A<->G and C<->T.
func (p BasePair) IsTransition() bool {
	return p == AG || p == CT
}

// PairOf classifies the substitution between two bases.
func PairOf(a, b byte) (BasePair, bool) {
	if a > b {
		a, b = b, a
	}
	switch string([]byte{a, b}) {
	case "AC":
		return AC, true
	case "AG":
		return AG, true
	case "AT":
		return AT, true
	case "CG":
		return CG, true
	case "CT":
		return CT, true
	case "GT":
		return GT, true
	}
	return 0, false
}

// Step is one single-base edit on a path between codons.
type Step struct {
	From       string
	To         string
	Position   int // 0, 1 or 2
	Synonymous bool
	Pair       BasePair
}

// Path is a chain of single-base edits between two codons.
type Path struct {
	Codons []string
	Steps  []Step
}

// Synonymous counts the synonymous steps.
func (p Path) Synonymous() int {
	n := 0
	for _, s := range p.Steps {
		if s.Synonymous {
			n++
		}
	}
	return n
}

// Nonsynonymous counts the nonsynonymous steps.
func (p Path) Nonsynonymous() int {
	return len(p.Steps) - p.Synonymous()
}

// Transitions counts the transition steps.
func (p Path) Transitions() int {
	n := 0
	for _, s := range p.Steps {
		if s.Pair.IsTransition() {
			n++
		}
	}
	return n
}

// StepAt returns the step that changes the given codon position.
func (p Path) StepAt(position int) (Step, bool) {
	for _, s := range p.Steps {
		if s.Position == position {
			return s, true
		}
	}
	return Step{}, false
}

// PathOptions controls path selection.
type PathOptions struct {
	// AllowTerminal permits stop codons as intermediate codons.
	AllowTerminal bool
}

// ClassifyChange labels the substitution of base at position in codon.
func ClassifyChange(t Table, codon string, position int, base byte) (Step, bool) {
	if position < 0 || position > 2 || !IsValid(codon) {
		return Step{}, false
	}
	alt := []byte(codon)
	alt[position] = base
	return newStep(t, codon, string(alt), position)
}

func newStep(t Table, from, to string, position int) (Step, bool) {
	if _, ok := t.Lookup(from); !ok {
		return Step{}, false
	}
	if _, ok := t.Lookup(to); !ok {
		return Step{}, false
	}
	pair, ok := PairOf(from[position], to[position])
	if !ok {
		return Step{}, false
	}
	return Step{
		From:       from,
		To:         to,
		Position:   position,
		Synonymous: t.AreSynonymous(from, to),
		Pair:       pair,
	}, true
}

// BestPath reconstructs the mutational path from one codon to another.
//
// Every ordering of the differing positions is a candidate: one for a
// single difference, two for two, six for three. Candidates that pass
// through a stop codon are dropped unless opts.AllowTerminal is set. Of the
// rest, the one with the fewest nonsynonymous steps wins, and ties go to
// the ordering that comes first lexicographically by position. Identical
// codons give an empty path. It reports false when either codon is invalid
// or unmapped, or when every candidate passes through a stop codon.
func BestPath(t Table, from, to string, opts PathOptions) (Path, bool) {
	a, ok := Lookup(from)
	if !ok {
		return Path{}, false
	}
	b, ok := Lookup(to)
	if !ok {
		return Path{}, false
	}
	if _, ok := t.Lookup(from); !ok {
		return Path{}, false
	}
	if _, ok := t.Lookup(to); !ok {
		return Path{}, false
	}

	diffs := a.Differences(b)
	if len(diffs) == 0 {
		return Path{Codons: []string{from}}, true
	}

	var best Path
	found := false
	for _, ordering := range permutations(diffs) {
		p, ok := walk(t, from, to, ordering, opts)
		if !ok {
			continue
		}
		if !found || p.Nonsynonymous() < best.Nonsynonymous() {
			best = p
			found = true
		}
	}
	return best, found
}

func walk(t Table, from, to string, ordering []int, opts PathOptions) (Path, bool) {
	p := Path{Codons: []string{from}}
	cur := []byte(from)
	for i, pos := range ordering {
		prev := string(cur)
		cur[pos] = to[pos]
		next := string(cur)
		if i < len(ordering)-1 && t.IsTerminal(next) && !opts.AllowTerminal {
			return Path{}, false
		}
		step, ok := newStep(t, prev, next, pos)
		if !ok {
			return Path{}, false
		}
		p.Codons = append(p.Codons, next)
		p.Steps = append(p.Steps, step)
	}
	return p, true
}

// permutations returns every ordering of xs in lexicographic order,
// assuming xs is sorted.
func permutations(xs []int) [][]int {
	if len(xs) <= 1 {
		return [][]int{append([]int(nil), xs...)}
	}
	var out [][]int
	for i, x := range xs {
		rest := make([]int, 0, len(xs)-1)
		rest = append(rest, xs[:i]...)
		rest = append(rest, xs[i+1:]...)
		for _, p := range permutations(rest) {
			out = append(out, append([]int{x}, p...))
		}
	}
	return out
}

// Connect links a set of distinct codons with a minimum spanning tree over
// Hamming distance and returns the best path along each tree edge. The tree
// grows from codons[0]; distance ties go to the earliest codon not yet in
// the tree, then to the earliest tree codon. It reports false if any edge
// has no valid path.
func Connect(t Table, codons []string, opts PathOptions) ([]Path, bool) {
	if len(codons) < 2 {
		return nil, true
	}
	nodes := make([]*Codon, len(codons))
	for i, s := range codons {
		c, ok := Lookup(s)
		if !ok {
			return nil, false
		}
		nodes[i] = c
	}

	inTree := make([]bool, len(nodes))
	inTree[0] = true
	paths := make([]Path, 0, len(nodes)-1)
	for added := 1; added < len(nodes); added++ {
		bestU, bestV, bestD := -1, -1, 4
		for v := range nodes {
			if inTree[v] {
				continue
			}
			for u := range nodes {
				if !inTree[u] {
					continue
				}
				d := len(nodes[u].Differences(nodes[v]))
				if d < bestD {
					bestU, bestV, bestD = u, v, d
				}
			}
		}
		p, ok := BestPath(t, codons[bestU], codons[bestV], opts)
		if !ok {
			return nil, false
		}
		inTree[bestV] = true
		paths = append(paths, p)
	}
	return paths, true
}
