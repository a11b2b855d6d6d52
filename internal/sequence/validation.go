package sequence

import "fmt"

// SequenceError is the base error type for sequence operations.
type SequenceError interface {
	error
	IsSequenceError()
}

// InvalidBaseError is returned when an invalid symbol is encountered.
type InvalidBaseError struct {
	Position int
	Found    rune
}

func (e *InvalidBaseError) Error() string {
	return fmt.Sprintf("invalid base '%c' at position %d", e.Found, e.Position)
}

func (e *InvalidBaseError) IsSequenceError() {}

// OutOfRangeError is returned when an edit or slice falls outside the buffer.
type OutOfRangeError struct {
	Index  int
	Count  int
	Length int
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("range [%d,+%d) out of bounds for length %d", e.Index, e.Count, e.Length)
}

func (e *OutOfRangeError) IsSequenceError() {}

// symbolClass marks each byte as a base, an ambiguous/missing symbol or a gap.
var symbolClass [256]byte

const (
	classBase byte = iota + 1
	classMissing
	classGap
)

func init() {
	for _, c := range []byte("ACGT") {
		symbolClass[c] = classBase
	}
	for _, c := range []byte("NRYSWKMBDHVU?X") {
		symbolClass[c] = classMissing
	}
	symbolClass[Gap] = classGap
}

// Validate checks that every character in s is an upper-case alignment symbol.
func Validate(s string) error {
	for i := 0; i < len(s); i++ {
		if symbolClass[s[i]] == 0 {
			return &InvalidBaseError{Position: i, Found: rune(s[i])}
		}
	}
	return nil
}

// IsSymbol reports whether c is any valid alignment symbol.
func IsSymbol(c byte) bool {
	return symbolClass[c] != 0
}

// IsBase reports whether c is one of A, C, G or T.
func IsBase(c byte) bool {
	return symbolClass[c] == classBase
}

// IsGap reports whether c is the gap symbol.
func IsGap(c byte) bool {
	return symbolClass[c] == classGap
}

// IsMissing reports whether c is an ambiguous or missing-data symbol.
func IsMissing(c byte) bool {
	return symbolClass[c] == classMissing
}

// BaseIndex maps A, C, G, T to 0..3 and anything else to -1.
func BaseIndex(c byte) int {
	switch c {
	case 'A':
		return 0
	case 'C':
		return 1
	case 'G':
		return 2
	case 'T':
		return 3
	}
	return -1
}

// Bases lists the four nucleotides in BaseIndex order.
const Bases = "ACGT"
