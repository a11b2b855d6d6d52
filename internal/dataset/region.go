package dataset

import (
	"strings"

	"github.com/aria-lang/popgen-go/internal/sequence"
)

// RegionType tags what a GeneRegion represents.
type RegionType string

// Known region types. Any other string is allowed as a user-defined type.
const (
	CDS        RegionType = "CDS"
	Exon       RegionType = "Exon"
	Intron     RegionType = "Intron"
	UTR5       RegionType = "5'UTR"
	UTR3       RegionType = "3'UTR"
	Intergenic RegionType = "Intergenic"
	MRNA       RegionType = "mRNA"
	Unnamed    RegionType = "Unnamed"
)

var knownRegionTypes = []RegionType{CDS, Exon, Intron, UTR5, UTR3, Intergenic, MRNA, Unnamed}

// ParseRegionType maps s onto the known vocabulary case-insensitively.
// Unknown names are kept verbatim; an empty name is Unnamed.
func ParseRegionType(s string) RegionType {
	s = strings.TrimSpace(s)
	if s == "" {
		return Unnamed
	}
	for _, t := range knownRegionTypes {
		if strings.EqualFold(string(t), s) {
			return t
		}
	}
	return RegionType(s)
}

// GeneRegion is one typed, positioned piece of a strain's sequence.
//
// start and end are 1-based inclusive positions in the strain's full
// sequence; 0 means unset. Edits keep end consistent with the sequence
// length but do not move regions further downstream in the same strain.
type GeneRegion struct {
	Type  RegionType
	Props Properties

	start int
	end   int
	seq   *sequence.Buffer
}

// NewGeneRegion creates a region, normalizing the bounds and the sequence.
func NewGeneRegion(t RegionType, start, end int, raw string) *GeneRegion {
	r := &GeneRegion{Type: t, seq: sequence.NewBuffer(raw)}
	r.SetBounds(start, end)
	return r
}

// SetBounds sets start and end. A negative start becomes 0 and an end
// before start becomes 0.
func (r *GeneRegion) SetBounds(start, end int) {
	if start < 0 {
		start = 0
	}
	if end < start {
		end = 0
	}
	r.start, r.end = start, end
}

// Start returns the 1-based start position, 0 if unset.
func (r *GeneRegion) Start() int { return r.start }

// End returns the 1-based inclusive end position, 0 if unset.
func (r *GeneRegion) End() int { return r.end }

// Len returns the sequence length.
func (r *GeneRegion) Len() int { return r.seq.Len() }

// Bases returns the region's sequence as a string.
func (r *GeneRegion) Bases() string { return r.seq.String() }

// Base returns the symbol at the 0-based offset within the region.
func (r *GeneRegion) Base(offset int) (byte, bool) { return r.seq.At(offset) }

// Buffer returns a copy of the region's sequence.
func (r *GeneRegion) Buffer() *sequence.Buffer { return r.seq.Clone() }

// ReplaceBase overwrites the symbol at the 0-based offset.
func (r *GeneRegion) ReplaceBase(offset int, base byte) error {
	return r.seq.Replace(offset, base)
}

// InsertBase inserts a symbol before the 0-based offset and extends end.
func (r *GeneRegion) InsertBase(offset int, base byte) error {
	if err := r.seq.Insert(offset, base); err != nil {
		return err
	}
	if r.end > 0 {
		r.end++
	}
	return nil
}

// RemoveBase deletes the symbol at the 0-based offset.
func (r *GeneRegion) RemoveBase(offset int) error {
	return r.RemoveBases(offset, 1)
}

// RemoveBases deletes count symbols from the 0-based offset and shrinks end.
func (r *GeneRegion) RemoveBases(offset, count int) error {
	if err := r.seq.Remove(offset, count); err != nil {
		return err
	}
	if r.end > 0 {
		r.end -= count
		if r.end < r.start {
			r.end = 0
		}
	}
	return nil
}

// ToUpper upper-cases the sequence in place.
func (r *GeneRegion) ToUpper() { r.seq.ToUpper() }

// Shift moves both bounds by delta. Callers use it to re-index regions
// downstream of an insertion or deletion.
func (r *GeneRegion) Shift(delta int) {
	start, end := r.start, r.end
	if start > 0 {
		start += delta
	}
	if end > 0 {
		end += delta
	}
	r.SetBounds(start, end)
}

// Less orders regions by start position.
func (r *GeneRegion) Less(other *GeneRegion) bool {
	return r.start < other.start
}
