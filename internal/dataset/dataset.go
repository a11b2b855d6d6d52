package dataset

import (
	"sort"
)

// Dataset is an ordered collection of genes, unique by common name.
type Dataset struct {
	genes []*GeneEntry
	index map[string]int
}

// New creates an empty dataset.
func New() *Dataset {
	return &Dataset{index: make(map[string]int)}
}

// AddGene appends g, or merges its strains into the existing gene with the
// same name (case-insensitive) using the AddStrain rule.
func (d *Dataset) AddGene(g *GeneEntry) Upsert {
	if g == nil {
		return Unchanged
	}
	if d.index == nil {
		d.reindex()
	}
	i, ok := d.index[g.key()]
	if !ok {
		d.index[g.key()] = len(d.genes)
		d.genes = append(d.genes, g)
		return Inserted
	}
	existing := d.genes[i]
	if existing == g {
		return Unchanged
	}
	for _, s := range g.strains {
		existing.AddStrain(s)
	}
	return Merged
}

// Merge folds every gene of other into d. It returns how many genes were
// inserted and how many were merged into existing entries.
func (d *Dataset) Merge(other *Dataset) (inserted, merged int) {
	if other == nil || other == d {
		return 0, 0
	}
	for _, g := range other.genes {
		switch d.AddGene(g) {
		case Inserted:
			inserted++
		case Merged:
			merged++
		}
	}
	return inserted, merged
}

// Len returns the number of genes.
func (d *Dataset) Len() int { return len(d.genes) }

// Gene returns the i-th gene.
func (d *Dataset) Gene(i int) (*GeneEntry, bool) {
	if i < 0 || i >= len(d.genes) {
		return nil, false
	}
	return d.genes[i], true
}

// Genes returns the genes in dataset order.
func (d *Dataset) Genes() []*GeneEntry {
	out := make([]*GeneEntry, len(d.genes))
	copy(out, d.genes)
	return out
}

// Lookup finds a gene by name, ignoring case.
func (d *Dataset) Lookup(name string) (*GeneEntry, bool) {
	i, ok := d.index[fold(name)]
	if !ok {
		return nil, false
	}
	return d.genes[i], true
}

// Has reports whether a gene with the given name exists.
func (d *Dataset) Has(name string) bool {
	_, ok := d.Lookup(name)
	return ok
}

// Remove deletes the i-th gene.
func (d *Dataset) Remove(i int) bool {
	if i < 0 || i >= len(d.genes) {
		return false
	}
	d.genes = append(d.genes[:i], d.genes[i+1:]...)
	d.reindex()
	return true
}

// Populations returns every population name used by any strain, without
// case-insensitive duplicates, sorted.
func (d *Dataset) Populations() []string {
	seen := make(map[string]bool)
	var out []string
	for _, g := range d.genes {
		for _, s := range g.strains {
			for _, p := range s.Populations() {
				k := fold(p)
				if seen[k] {
					continue
				}
				seen[k] = true
				out = append(out, p)
			}
		}
	}
	sort.Strings(out)
	return out
}

// RegionTypes returns the distinct region types across all genes in the
// order they are first encountered.
func (d *Dataset) RegionTypes() []RegionType {
	seen := make(map[RegionType]bool)
	var out []RegionType
	for _, g := range d.genes {
		for _, s := range g.strains {
			for _, r := range s.regions {
				if seen[r.Type] {
					continue
				}
				seen[r.Type] = true
				out = append(out, r.Type)
			}
		}
	}
	return out
}

// SortByName orders genes by folded common name.
func (d *Dataset) SortByName() {
	sort.SliceStable(d.genes, func(i, j int) bool {
		return d.genes[i].key() < d.genes[j].key()
	})
	d.reindex()
}

// SortByQuality orders genes by ascending quality level. Genes without a
// level sort first; ties fall back to the name order.
func (d *Dataset) SortByQuality() {
	sort.SliceStable(d.genes, func(i, j int) bool {
		qi, oki := d.genes[i].Props.Quality()
		qj, okj := d.genes[j].Props.Quality()
		if oki != okj {
			return !oki
		}
		if qi != qj {
			return qi < qj
		}
		return d.genes[i].key() < d.genes[j].key()
	})
	d.reindex()
}

func (d *Dataset) reindex() {
	d.index = make(map[string]int, len(d.genes))
	for i, g := range d.genes {
		d.index[g.key()] = i
	}
}
