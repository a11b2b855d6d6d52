package codon

import (
	"errors"
	"fmt"
)

// ErrUnknownFormat is returned when a table file's format cannot be told
// from its extension.
var ErrUnknownFormat = errors.New("unknown codon table format")

// InvalidCodonError is returned for a codon that is not [ACGT]{3}.
type InvalidCodonError struct {
	Codon string
}

func (e *InvalidCodonError) Error() string {
	return fmt.Sprintf("invalid codon %q", e.Codon)
}

// DuplicateCodonError is returned when a table defines a codon twice.
type DuplicateCodonError struct {
	Codon string
}

func (e *DuplicateCodonError) Error() string {
	return fmt.Sprintf("codon %s defined more than once", e.Codon)
}

// TableSizeError is returned when a table does not define all 64 codons.
type TableSizeError struct {
	Got int
}

func (e *TableSizeError) Error() string {
	return fmt.Sprintf("codon table must define 64 codons, got %d", e.Got)
}
