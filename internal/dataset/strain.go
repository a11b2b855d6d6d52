package dataset

import (
	"sort"

	"github.com/aria-lang/popgen-go/internal/sequence"
)

// StrainEntry is one strain's annotated sequence for a gene. Species and
// strain names form its identity and are fixed at construction.
type StrainEntry struct {
	Chromosome string
	Props      Properties

	species     string
	strain      string
	populations map[string]string // folded name -> name as first given
	regions     []*GeneRegion
}

// NewStrainEntry creates an empty strain.
func NewStrainEntry(species, strain string) *StrainEntry {
	return &StrainEntry{species: species, strain: strain}
}

// Species returns the species name.
func (s *StrainEntry) Species() string { return s.species }

// Strain returns the strain name.
func (s *StrainEntry) Strain() string { return s.strain }

func (s *StrainEntry) key() string {
	return fold(s.species) + "\x00" + fold(s.strain)
}

// AddPopulation tags the strain with one or more population names.
func (s *StrainEntry) AddPopulation(names ...string) {
	for _, name := range names {
		if name == "" {
			continue
		}
		if s.populations == nil {
			s.populations = make(map[string]string)
		}
		k := fold(name)
		if _, ok := s.populations[k]; !ok {
			s.populations[k] = name
		}
	}
}

// InPopulation reports whether the strain carries the population tag,
// ignoring case. An empty name matches every strain.
func (s *StrainEntry) InPopulation(name string) bool {
	if name == "" {
		return true
	}
	_, ok := s.populations[fold(name)]
	return ok
}

// Populations returns the strain's population tags, sorted.
func (s *StrainEntry) Populations() []string {
	out := make([]string, 0, len(s.populations))
	for _, name := range s.populations {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// AddRegion inserts r keeping regions ordered by start. Regions with an
// equal start keep insertion order. Overlaps are not checked.
func (s *StrainEntry) AddRegion(r *GeneRegion) {
	if r == nil {
		return
	}
	i := sort.Search(len(s.regions), func(i int) bool {
		return r.Less(s.regions[i])
	})
	s.regions = append(s.regions, nil)
	copy(s.regions[i+1:], s.regions[i:])
	s.regions[i] = r
}

// Reindex restores start ordering after callers shifted region bounds.
func (s *StrainEntry) Reindex() {
	sort.SliceStable(s.regions, func(i, j int) bool {
		return s.regions[i].Less(s.regions[j])
	})
}

// NumRegions returns the number of regions.
func (s *StrainEntry) NumRegions() int { return len(s.regions) }

// Region returns the i-th region in start order.
func (s *StrainEntry) Region(i int) (*GeneRegion, bool) {
	if i < 0 || i >= len(s.regions) {
		return nil, false
	}
	return s.regions[i], true
}

// Regions returns the regions in start order.
func (s *StrainEntry) Regions() []*GeneRegion {
	out := make([]*GeneRegion, len(s.regions))
	copy(out, s.regions)
	return out
}

// RegionsOfType returns the regions with the given type, in start order.
func (s *StrainEntry) RegionsOfType(t RegionType) []*GeneRegion {
	var out []*GeneRegion
	for _, r := range s.regions {
		if r.Type == t {
			out = append(out, r)
		}
	}
	return out
}

// RemoveRegion deletes the i-th region.
func (s *StrainEntry) RemoveRegion(i int) bool {
	if i < 0 || i >= len(s.regions) {
		return false
	}
	s.regions = append(s.regions[:i], s.regions[i+1:]...)
	return true
}

// CompleteSequence concatenates every region in start order.
func (s *StrainEntry) CompleteSequence() *sequence.Buffer {
	out := sequence.NewBuffer("")
	for _, r := range s.regions {
		out.Append(r.seq)
	}
	return out
}

// CodingSequence concatenates the Exon regions in start order.
func (s *StrainEntry) CodingSequence() *sequence.Buffer {
	return s.SequenceOfType(Exon)
}

// SequenceOfType concatenates the regions of type t in start order.
func (s *StrainEntry) SequenceOfType(t RegionType) *sequence.Buffer {
	out := sequence.NewBuffer("")
	for _, r := range s.regions {
		if r.Type == t {
			out.Append(r.seq)
		}
	}
	return out
}
