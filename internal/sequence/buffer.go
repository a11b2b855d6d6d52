// Package sequence provides the mutable character buffer that backs one
// region of a strain's aligned DNA sequence.
//
// Buffers are always stored upper-cased with embedded line breaks removed.
// They hold alignment symbols, not only the four bases: gaps ('-') and
// missing or ambiguous symbols ('N', '?', IUPAC codes) are kept as-is so
// that column-wise analyses can tell them apart.
package sequence

import (
	"strings"
)

// Gap is the alignment gap symbol.
const Gap = '-'

// Buffer is a compact, random-access sequence of alignment symbols.
type Buffer struct {
	bases []byte
}

// NewBuffer creates a buffer from raw text, stripping line breaks and
// upper-casing the remaining symbols.
func NewBuffer(raw string) *Buffer {
	b := &Buffer{bases: make([]byte, 0, len(raw))}
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if c == '\n' || c == '\r' {
			continue
		}
		b.bases = append(b.bases, upper(c))
	}
	return b
}

// Parse creates a buffer like NewBuffer but rejects symbols that are not
// valid alignment characters.
func Parse(raw string) (*Buffer, error) {
	b := NewBuffer(raw)
	if err := Validate(b.String()); err != nil {
		return nil, err
	}
	return b, nil
}

// Len returns the number of symbols in the buffer.
func (b *Buffer) Len() int {
	if b == nil {
		return 0
	}
	return len(b.bases)
}

// At returns the symbol at index, or false if the index is out of bounds.
func (b *Buffer) At(index int) (byte, bool) {
	if b == nil || index < 0 || index >= len(b.bases) {
		return 0, false
	}
	return b.bases[index], true
}

// Slice returns a copy of the symbols in [start, end).
func (b *Buffer) Slice(start, end int) (string, error) {
	if start < 0 || end > b.Len() || start > end {
		return "", &OutOfRangeError{Index: start, Count: end - start, Length: b.Len()}
	}
	return string(b.bases[start:end]), nil
}

// Replace overwrites the symbol at index.
func (b *Buffer) Replace(index int, base byte) error {
	if index < 0 || index >= len(b.bases) {
		return &OutOfRangeError{Index: index, Count: 1, Length: len(b.bases)}
	}
	base = upper(base)
	if !IsSymbol(base) {
		return &InvalidBaseError{Position: index, Found: rune(base)}
	}
	b.bases[index] = base
	return nil
}

// Insert places base before index. Inserting at Len() appends.
func (b *Buffer) Insert(index int, base byte) error {
	if index < 0 || index > len(b.bases) {
		return &OutOfRangeError{Index: index, Count: 1, Length: len(b.bases)}
	}
	base = upper(base)
	if !IsSymbol(base) {
		return &InvalidBaseError{Position: index, Found: rune(base)}
	}
	b.bases = append(b.bases, 0)
	copy(b.bases[index+1:], b.bases[index:])
	b.bases[index] = base
	return nil
}

// Remove deletes count symbols starting at index.
func (b *Buffer) Remove(index, count int) error {
	if index < 0 || count < 0 || index+count > len(b.bases) {
		return &OutOfRangeError{Index: index, Count: count, Length: len(b.bases)}
	}
	b.bases = append(b.bases[:index], b.bases[index+count:]...)
	return nil
}

// ToUpper upper-cases the buffer in place.
func (b *Buffer) ToUpper() {
	for i, c := range b.bases {
		b.bases[i] = upper(c)
	}
}

// Append adds the contents of other to the end of b.
func (b *Buffer) Append(other *Buffer) {
	if other == nil {
		return
	}
	b.bases = append(b.bases, other.bases...)
}

// Clone returns an independent copy of the buffer.
func (b *Buffer) Clone() *Buffer {
	out := make([]byte, b.Len())
	if b != nil {
		copy(out, b.bases)
	}
	return &Buffer{bases: out}
}

// HasGap reports whether the buffer contains a gap symbol.
func (b *Buffer) HasGap() bool {
	return strings.IndexByte(b.String(), Gap) >= 0
}

// String returns the buffer contents.
func (b *Buffer) String() string {
	if b == nil {
		return ""
	}
	return string(b.bases)
}

func upper(c byte) byte {
	if c >= 'a' && c <= 'z' {
		return c - ('a' - 'A')
	}
	return c
}
