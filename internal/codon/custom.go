package codon

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format is a codon table file encoding.
type Format int

const (
	// YAML encodes the table as YAML.
	YAML Format = iota
	// JSON encodes the table as JSON.
	JSON
)

// FormatFromPath picks the encoding from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAML, nil
	case ".json":
		return JSON, nil
	}
	return 0, fmt.Errorf("%s: %w", path, ErrUnknownFormat)
}

// tableFile is the persisted shape of a table.
type tableFile struct {
	Name   string  `yaml:"name" json:"name"`
	Codons []Entry `yaml:"codons" json:"codons"`
}

// CustomTable is a user-defined genetic code. It is immutable once built.
type CustomTable struct {
	entrySet
}

// NewCustomTable validates entries and builds a table. Exactly the 64
// codons must be present, each once.
func NewCustomTable(name string, entries []Entry) (*CustomTable, error) {
	if name == "" {
		return nil, fmt.Errorf("codon table name cannot be empty")
	}
	byCodon := make(map[string]Entry, len(entries))
	for _, e := range entries {
		e.Codon = strings.ToUpper(strings.TrimSpace(e.Codon))
		if !IsValid(e.Codon) {
			return nil, &InvalidCodonError{Codon: e.Codon}
		}
		if _, dup := byCodon[e.Codon]; dup {
			return nil, &DuplicateCodonError{Codon: e.Codon}
		}
		byCodon[e.Codon] = e
	}
	if len(byCodon) != 64 {
		return nil, &TableSizeError{Got: len(byCodon)}
	}
	return &CustomTable{*newEntrySet(name, byCodon)}, nil
}

// Derive copies base under a new name, replacing the given entries.
func Derive(name string, base Table, overrides ...Entry) (*CustomTable, error) {
	entries := make(map[string]Entry, 64)
	for _, c := range Codons() {
		if e, ok := base.Lookup(c); ok {
			entries[c] = e
		}
	}
	for _, e := range overrides {
		e.Codon = strings.ToUpper(e.Codon)
		if !IsValid(e.Codon) {
			return nil, &InvalidCodonError{Codon: e.Codon}
		}
		entries[e.Codon] = e
	}
	list := make([]Entry, 0, len(entries))
	for _, c := range Codons() {
		if e, ok := entries[c]; ok {
			list = append(list, e)
		}
	}
	return NewCustomTable(name, list)
}

// Entries returns the table's records in TCAG order.
func (t *CustomTable) Entries() []Entry {
	return t.entries()
}

// ReadTable decodes a table from r.
func ReadTable(r io.Reader, f Format) (*CustomTable, error) {
	var tf tableFile
	switch f {
	case JSON:
		if err := json.NewDecoder(r).Decode(&tf); err != nil {
			return nil, fmt.Errorf("decoding codon table: %w", err)
		}
	default:
		if err := yaml.NewDecoder(r).Decode(&tf); err != nil {
			return nil, fmt.Errorf("decoding codon table: %w", err)
		}
	}
	return NewCustomTable(tf.Name, tf.Codons)
}

// LoadTable reads a table file, choosing the format by extension.
func LoadTable(path string) (*CustomTable, error) {
	f, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening codon table: %w", err)
	}
	defer file.Close()

	t, err := ReadTable(file, f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// WriteTable encodes t to w.
func WriteTable(w io.Writer, t Table, f Format) error {
	tf := tableFile{Name: t.Name()}
	for _, c := range Codons() {
		if e, ok := t.Lookup(c); ok {
			tf.Codons = append(tf.Codons, e)
		}
	}
	switch f {
	case JSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(tf)
	default:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(tf); err != nil {
			return err
		}
		return enc.Close()
	}
}

// SaveTable writes t to path, choosing the format by extension.
func SaveTable(path string, t Table) error {
	f, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating codon table: %w", err)
	}
	if err := WriteTable(file, t, f); err != nil {
		file.Close()
		return fmt.Errorf("writing codon table: %w", err)
	}
	return file.Close()
}
