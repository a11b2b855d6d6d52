// Package popgen provides a high-level API for population-genetic analysis
// of aligned gene sequences.
//
// Example usage:
//
//	d, err := popgen.ReadFASTA("adh.fa.gz")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	results, err := popgen.Analyze(ctx, d, popgen.Options{
//	    Ingroup:  "africa",
//	    Outgroup: "simulans",
//	    Coding:   true,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	popgen.WriteTSV(os.Stdout, results, true)
package popgen

import (
	"context"
	"fmt"
	"io"

	"github.com/aria-lang/popgen-go/internal/analysis"
	"github.com/aria-lang/popgen-go/internal/codon"
	"github.com/aria-lang/popgen-go/internal/composition"
	"github.com/aria-lang/popgen-go/internal/dataset"
	"github.com/aria-lang/popgen-go/internal/fasta"
	"github.com/aria-lang/popgen-go/internal/stats"
)

// Re-export types for convenience
type (
	Dataset      = dataset.Dataset
	GeneEntry    = dataset.GeneEntry
	StrainEntry  = dataset.StrainEntry
	GeneRegion   = dataset.GeneRegion
	RegionType   = dataset.RegionType
	CodonTable   = codon.Table
	CodonEntry   = codon.Entry
	Path         = codon.Path
	Step         = codon.Step
	PathOptions  = codon.PathOptions
	SiteOptions  = codon.SiteOptions
	SiteCounts   = codon.SiteCounts
	Site         = composition.Site
	CodonSite    = composition.CodonSite
	CodonOptions = composition.CodonOptions
	SiteType     = composition.SiteType
	Strata       = stats.Strata
	SitesBlock   = stats.SitesBlock
	Options      = analysis.Options
	Result       = analysis.Result
)

// Region types
const (
	CDS        = dataset.CDS
	Exon       = dataset.Exon
	Intron     = dataset.Intron
	UTR5       = dataset.UTR5
	UTR3       = dataset.UTR3
	Intergenic = dataset.Intergenic
	MRNA       = dataset.MRNA
	Unnamed    = dataset.Unnamed
)

// NewDataset creates an empty dataset.
func NewDataset() *Dataset {
	return dataset.New()
}

// UniversalTable returns the standard genetic code.
func UniversalTable() CodonTable {
	return codon.Universal()
}

// LoadCodonTable reads a custom genetic code from a YAML or JSON file.
func LoadCodonTable(path string) (CodonTable, error) {
	t, err := codon.LoadTable(path)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// SaveCodonTable writes a genetic code to a YAML or JSON file.
func SaveCodonTable(path string, t CodonTable) error {
	return codon.SaveTable(path, t)
}

// CodonReport describes one codon under a table.
type CodonReport struct {
	Codon     string   `json:"codon"`
	AminoAcid string   `json:"amino_acid"`
	Abbrev    string   `json:"abbrev"`
	Letter    string   `json:"letter"`
	Terminal  bool     `json:"terminal"`
	Start     bool     `json:"start"`
	Fold      int      `json:"fold"`
	SynSites  float64  `json:"syn_sites"`
	NonSites  float64  `json:"nonsyn_sites"`
	Neighbors []string `json:"neighbors"`
}

// DescribeCodon reports what t says about a codon.
func DescribeCodon(t CodonTable, triplet string, opts SiteOptions) (*CodonReport, error) {
	node, ok := codon.Lookup(triplet)
	if !ok {
		return nil, &codon.InvalidCodonError{Codon: triplet}
	}
	e, ok := t.Lookup(triplet)
	if !ok {
		return nil, fmt.Errorf("codon %s not in table %s", triplet, t.Name())
	}
	fold, _ := t.FoldFamily(triplet)
	sites, _ := node.Sites(t, opts)

	r := &CodonReport{
		Codon:     triplet,
		AminoAcid: e.Name,
		Abbrev:    e.Abbrev,
		Letter:    e.Letter,
		Terminal:  e.Terminal,
		Start:     e.Start,
		Fold:      fold,
		SynSites:  sites.Syn,
		NonSites:  sites.Nonsyn,
	}
	for _, n := range node.Neighbors() {
		r.Neighbors = append(r.Neighbors, n.Seq())
	}
	return r, nil
}

// FindPath reconstructs and classifies the steps between two codons.
func FindPath(t CodonTable, from, to string, opts PathOptions) (Path, bool) {
	return codon.BestPath(t, from, to, opts)
}

// Translate translates a codon-aligned sequence.
func Translate(t CodonTable, nts string) string {
	return codon.Translate(t, nts)
}

// ClassifyColumns compares an ingroup column with an outgroup column.
func ClassifyColumns(pop, out string) SiteType {
	return composition.Classify(composition.NewSite(pop), composition.NewSite(out))
}

// Diversity summarizes a set of alignment columns.
type Diversity struct {
	Sites         int
	Polymorphisms int
	Singletons    int
	Transitions   int
	Pi            float64
	Theta         float64
	TajimaD       float64
	TajimaDPrime  float64
}

// ColumnDiversity computes diversity statistics over alignment columns,
// each given as the symbols of every sequence at that position.
func ColumnDiversity(columns []string, singletonCutoff float64, jukesCantor bool) Diversity {
	st := stats.NewStrata(singletonCutoff)
	for _, c := range columns {
		st.Add(composition.NewSite(c))
	}
	return Diversity{
		Sites:         st.Sites(),
		Polymorphisms: st.Polymorphisms(),
		Singletons:    st.Singletons(),
		Transitions:   st.Transitions(),
		Pi:            st.Pi(jukesCantor),
		Theta:         st.Theta(jukesCantor),
		TajimaD:       st.TajimaD(),
		TajimaDPrime:  st.TajimaDPrime(),
	}
}

// JukesCantor corrects a raw difference proportion for multiple hits.
func JukesCantor(d float64) float64 {
	return stats.JukesCantor(d)
}

// ParseFASTA builds a dataset from FASTA text.
func ParseFASTA(r io.Reader, defaultGene string) (*Dataset, error) {
	return fasta.Importer{DefaultGene: defaultGene}.Import(r)
}

// ReadFASTA reads a dataset from a FASTA file, gzip-compressed if the name
// ends in .gz.
func ReadFASTA(path string) (*Dataset, error) {
	return fasta.Importer{DefaultGene: "gene"}.ImportFile(path)
}

// WriteFASTA writes a dataset to a FASTA file.
func WriteFASTA(path string, d *Dataset) error {
	return fasta.WriteFile(path, d)
}

// Analyze runs the per-gene analysis over d.
func Analyze(ctx context.Context, d *Dataset, opts Options) ([]Result, error) {
	r, err := analysis.NewRunner(opts)
	if err != nil {
		return nil, err
	}
	return r.Run(ctx, d)
}

// WriteTSV writes analysis results as tab-separated text.
func WriteTSV(w io.Writer, results []Result, coding bool) error {
	return analysis.WriteTSV(w, results, coding)
}

// Version returns the popgen version.
func Version() string {
	return "0.3.0"
}

// Info returns information about popgen.
func Info() string {
	return fmt.Sprintf(`popgen v%s - Population Genetics Toolkit

Features:
  - Multi-strain, multi-region gene datasets with population tags
  - Universal and custom genetic codes (YAML/JSON)
  - Nei synonymous/nonsynonymous site counts
  - Mutational path reconstruction between codons
  - Nucleotide diversity, Watterson's theta, Tajima's D and D'
  - Divergence with Jukes-Cantor correction
  - McDonald-Kreitman tallies and derived allele frequencies
  - Aligned FASTA import/export, plain or gzip
`, Version())
}
