// Package fasta reads aligned FASTA into a dataset and writes a dataset
// back out. Files ending in .gz are compressed with parallel gzip.
//
// Headers follow the convention
//
//	>gene|species|strain|pop1,pop2|type|start
//
// where every field after the gene is optional. A header without '|' names
// a strain of the importer's default gene.
package fasta

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/pgzip"

	"github.com/aria-lang/popgen-go/internal/dataset"
	"github.com/aria-lang/popgen-go/internal/sequence"
)

// Record is one raw FASTA entry.
type Record struct {
	ID          string
	Description string
	Bases       string
}

// HeaderError reports a header that cannot be mapped onto a dataset entry.
type HeaderError struct {
	Line   int
	Header string
	Reason string
}

func (e *HeaderError) Error() string {
	return fmt.Sprintf("line %d: header %q: %s", e.Line, e.Header, e.Reason)
}

// Parse reads FASTA records from r.
func Parse(r io.Reader) ([]Record, error) {
	records := make([]Record, 0)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)

	var current *Record
	var bases strings.Builder

	flush := func() {
		if current != nil {
			current.Bases = bases.String()
			records = append(records, *current)
			bases.Reset()
		}
	}

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if len(line) == 0 {
			continue
		}

		if line[0] == '>' {
			flush()
			parts := strings.SplitN(line[1:], " ", 2)
			current = &Record{ID: parts[0]}
			if len(parts) > 1 {
				current.Description = parts[1]
			}
			continue
		}
		if current == nil {
			return nil, fmt.Errorf("sequence data before first header")
		}
		bases.WriteString(line)
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading fasta: %w", err)
	}
	return records, nil
}

// Header is a decoded record header.
type Header struct {
	Gene        string
	Species     string
	Strain      string
	Populations []string
	Type        dataset.RegionType
	Start       int
}

// ParseHeader decodes the pipe-separated header convention. Missing fields
// take the defaults: the strain falls back to the whole ID, the region type
// to Exon and the start to 1.
func ParseHeader(id, defaultGene string) (Header, error) {
	h := Header{Type: dataset.Exon, Start: 1}
	if !strings.Contains(id, "|") {
		h.Gene = defaultGene
		h.Strain = id
		if h.Gene == "" {
			return h, fmt.Errorf("no gene name")
		}
		return h, nil
	}

	fields := strings.Split(id, "|")
	h.Gene = fields[0]
	if h.Gene == "" {
		return h, fmt.Errorf("empty gene name")
	}
	if len(fields) > 1 {
		h.Species = fields[1]
	}
	h.Strain = id
	if len(fields) > 2 && fields[2] != "" {
		h.Strain = fields[2]
	}
	if len(fields) > 3 && fields[3] != "" {
		for _, p := range strings.Split(fields[3], ",") {
			if p = strings.TrimSpace(p); p != "" {
				h.Populations = append(h.Populations, p)
			}
		}
	}
	if len(fields) > 4 && fields[4] != "" {
		h.Type = dataset.ParseRegionType(fields[4])
	}
	if len(fields) > 5 && fields[5] != "" {
		start, err := strconv.Atoi(fields[5])
		if err != nil || start < 1 {
			return h, fmt.Errorf("bad start %q", fields[5])
		}
		h.Start = start
	}
	return h, nil
}

// FormatHeader is the inverse of ParseHeader.
func FormatHeader(gene string, s *dataset.StrainEntry, r *dataset.GeneRegion) string {
	return strings.Join([]string{
		gene,
		s.Species(),
		s.Strain(),
		strings.Join(s.Populations(), ","),
		string(r.Type),
		strconv.Itoa(r.Start()),
	}, "|")
}

// Importer turns FASTA records into a dataset.
type Importer struct {
	// DefaultGene names the gene of records whose header has no '|'.
	DefaultGene string
}

// Import parses r and builds a dataset. Records of the same gene and
// strain become regions of one strain.
func (im Importer) Import(r io.Reader) (*dataset.Dataset, error) {
	records, err := Parse(r)
	if err != nil {
		return nil, err
	}
	d := dataset.New()
	for i, rec := range records {
		h, err := ParseHeader(rec.ID, im.DefaultGene)
		if err != nil {
			return nil, &HeaderError{Line: i + 1, Header: rec.ID, Reason: err.Error()}
		}
		buf, err := sequence.Parse(rec.Bases)
		if err != nil {
			return nil, fmt.Errorf("record %s: %w", rec.ID, err)
		}

		strain := dataset.NewStrainEntry(h.Species, h.Strain)
		strain.AddPopulation(h.Populations...)
		end := h.Start + buf.Len() - 1
		strain.AddRegion(dataset.NewGeneRegion(h.Type, h.Start, end, buf.String()))

		gene := dataset.NewGeneEntry(h.Gene, "")
		gene.AddStrain(strain)
		d.AddGene(gene)
	}
	return d, nil
}

// ImportFile opens path, decompressing .gz files, and imports it.
func (im Importer) ImportFile(path string) (*dataset.Dataset, error) {
	rc, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return im.Import(rc)
}

type gzipFile struct {
	*pgzip.Reader
	file *os.File
}

func (g *gzipFile) Close() error {
	g.Reader.Close()
	return g.file.Close()
}

// Open opens path for reading, through a parallel gzip reader when the name
// ends in .gz.
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	if !strings.HasSuffix(path, ".gz") {
		return f, nil
	}
	zr, err := pgzip.NewReader(bufio.NewReader(f))
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("creating decompressor: %w", err)
	}
	return &gzipFile{Reader: zr, file: f}, nil
}

// Write emits every region of every strain as one record, 60 bases per
// line.
func Write(w io.Writer, d *dataset.Dataset) error {
	bw := bufio.NewWriter(w)
	for _, g := range d.Genes() {
		for _, s := range g.Strains() {
			for _, r := range s.Regions() {
				if _, err := fmt.Fprintf(bw, ">%s\n", FormatHeader(g.Name(), s, r)); err != nil {
					return fmt.Errorf("writing header: %w", err)
				}
				bases := r.Bases()
				for i := 0; i < len(bases); i += 60 {
					end := i + 60
					if end > len(bases) {
						end = len(bases)
					}
					if _, err := fmt.Fprintln(bw, bases[i:end]); err != nil {
						return fmt.Errorf("writing sequence: %w", err)
					}
				}
			}
		}
	}
	return bw.Flush()
}

// WriteFile writes d to path, compressing when the name ends in .gz.
func WriteFile(path string, d *dataset.Dataset) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}
	defer f.Close()

	if !strings.HasSuffix(path, ".gz") {
		if err := Write(f, d); err != nil {
			return err
		}
		return f.Close()
	}

	zw, err := pgzip.NewWriterLevel(f, pgzip.BestSpeed)
	if err != nil {
		return fmt.Errorf("creating compressor: %w", err)
	}
	if err := Write(zw, d); err != nil {
		return err
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("closing compressor: %w", err)
	}
	return f.Close()
}
