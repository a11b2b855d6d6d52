package dataset

// Upsert reports what an add-or-merge operation did.
type Upsert int

const (
	// Unchanged means the entity was already present by identity.
	Unchanged Upsert = iota
	// Inserted means a new entry was appended.
	Inserted
	// Merged means the content was folded into an existing entry.
	Merged
)

func (u Upsert) String() string {
	switch u {
	case Inserted:
		return "inserted"
	case Merged:
		return "merged"
	default:
		return "unchanged"
	}
}

// GeneEntry groups the strains sequenced for one gene. Its identity is the
// common name, compared case-insensitively, and is fixed at construction
// so the dataset index cannot go stale.
type GeneEntry struct {
	Alias string
	Props Properties

	name    string
	strains []*StrainEntry
	index   map[string]int
}

// NewGeneEntry creates an empty gene.
func NewGeneEntry(name, alias string) *GeneEntry {
	return &GeneEntry{name: name, Alias: alias, index: make(map[string]int)}
}

// Name returns the common name.
func (g *GeneEntry) Name() string { return g.name }

// AddStrain appends s, or merges its regions into an existing strain with
// the same species and strain names (case-insensitive). Adding a strain
// that is already present by reference does nothing.
func (g *GeneEntry) AddStrain(s *StrainEntry) Upsert {
	if s == nil {
		return Unchanged
	}
	if g.index == nil {
		g.reindex()
	}
	k := s.key()
	i, ok := g.index[k]
	if !ok {
		g.index[k] = len(g.strains)
		g.strains = append(g.strains, s)
		return Inserted
	}
	existing := g.strains[i]
	if existing == s {
		return Unchanged
	}
	for _, r := range s.regions {
		existing.AddRegion(r)
	}
	return Merged
}

// NumStrains returns the number of strains.
func (g *GeneEntry) NumStrains() int { return len(g.strains) }

// Strain returns the i-th strain.
func (g *GeneEntry) Strain(i int) (*StrainEntry, bool) {
	if i < 0 || i >= len(g.strains) {
		return nil, false
	}
	return g.strains[i], true
}

// Strains returns the strains in insertion order.
func (g *GeneEntry) Strains() []*StrainEntry {
	out := make([]*StrainEntry, len(g.strains))
	copy(out, g.strains)
	return out
}

// FindStrain looks up a strain by species and strain name.
func (g *GeneEntry) FindStrain(species, strain string) (*StrainEntry, bool) {
	if g.index == nil {
		g.reindex()
	}
	i, ok := g.index[fold(species)+"\x00"+fold(strain)]
	if !ok {
		return nil, false
	}
	return g.strains[i], true
}

// RemoveStrain deletes the i-th strain.
func (g *GeneEntry) RemoveStrain(i int) bool {
	if i < 0 || i >= len(g.strains) {
		return false
	}
	g.strains = append(g.strains[:i], g.strains[i+1:]...)
	g.reindex()
	return true
}

// StrainsInPopulation returns the strains tagged with pop. An empty pop
// selects every strain.
func (g *GeneEntry) StrainsInPopulation(pop string) []*StrainEntry {
	var out []*StrainEntry
	for _, s := range g.strains {
		if s.InPopulation(pop) {
			out = append(out, s)
		}
	}
	return out
}

func (g *GeneEntry) key() string { return fold(g.name) }

func (g *GeneEntry) reindex() {
	g.index = make(map[string]int, len(g.strains))
	for i, s := range g.strains {
		g.index[s.key()] = i
	}
}
