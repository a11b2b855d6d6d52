package codon

// The standard code in TCAG order, as in the NCBI genetic-code listings.
const universalLetters = "FFLLSSSSYY**CC*WLLLLPPPPHHQQRRRRIIIMTTTTNNKKSSRRVVVVAAAADDEEGGGG"

var aminoAcidNames = map[byte][2]string{
	'A': {"Alanine", "Ala"},
	'R': {"Arginine", "Arg"},
	'N': {"Asparagine", "Asn"},
	'D': {"Aspartic acid", "Asp"},
	'C': {"Cysteine", "Cys"},
	'Q': {"Glutamine", "Gln"},
	'E': {"Glutamic acid", "Glu"},
	'G': {"Glycine", "Gly"},
	'H': {"Histidine", "His"},
	'I': {"Isoleucine", "Ile"},
	'L': {"Leucine", "Leu"},
	'K': {"Lysine", "Lys"},
	'M': {"Methionine", "Met"},
	'F': {"Phenylalanine", "Phe"},
	'P': {"Proline", "Pro"},
	'S': {"Serine", "Ser"},
	'T': {"Threonine", "Thr"},
	'W': {"Tryptophan", "Trp"},
	'Y': {"Tyrosine", "Tyr"},
	'V': {"Valine", "Val"},
	'*': {"Stop", "Ter"},
}

// UniversalName is the name of the built-in standard genetic code.
const UniversalName = "Universal"

var universal = newUniversal()

func newUniversal() *entrySet {
	byCodon := make(map[string]Entry, 64)
	for i, c := range Codons() {
		letter := universalLetters[i]
		names := aminoAcidNames[letter]
		byCodon[c] = Entry{
			Codon:    c,
			Terminal: letter == '*',
			Start:    c == "ATG",
			Name:     names[0],
			Abbrev:   names[1],
			Letter:   string(letter),
		}
	}
	return newEntrySet(UniversalName, byCodon)
}

// Universal returns the built-in standard genetic code.
func Universal() Table {
	return universal
}
