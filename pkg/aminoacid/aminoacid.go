package aminoacid

import "fmt"

// Polarity classifies a residue side chain as polar or non-polar.
type Polarity string

const (
	Polar    Polarity = "Polar"
	NonPolar Polarity = "Non-Polar"
)

// Charge classifies the side chain charge at physiological pH.
type Charge string

const (
	Positive  Charge = "Positive"
	Negative  Charge = "Negative"
	Uncharged Charge = "Uncharged"
)

// Chemical classifies the dominant chemical group of the side chain.
type Chemical string

const (
	Aliphatic Chemical = "Aliphatic"
	Aromatic  Chemical = "Aromatic"
	Acidic    Chemical = "Acidic"
	Basic     Chemical = "Basic"
	Amide     Chemical = "Amide"
	Hydroxyl  Chemical = "Hydroxyl"
	Sulfur    Chemical = "Sulfur"
)

// AminoAcid describes one of the twenty standard residues together with its
// IMGT physicochemical classification.
type AminoAcid struct {
	Code        byte
	ThreeLetter string
	Polarity    Polarity
	Charge      Charge
	Chemical    Chemical
	Volume      string
	Hydropathy  string
}

// IMGT Aide-memoire classification table.
var table = []AminoAcid{
	{'A', "ALA", NonPolar, Uncharged, Aliphatic, "Very small", "Hydrophobic"},
	{'R', "ARG", Polar, Positive, Basic, "Large", "Hydrophilic"},
	{'N', "ASN", Polar, Uncharged, Amide, "Small", "Hydrophilic"},
	{'D', "ASP", Polar, Negative, Acidic, "Small", "Hydrophilic"},
	{'C', "CYS", NonPolar, Uncharged, Sulfur, "Small", "Hydrophobic"},
	{'E', "GLU", Polar, Negative, Acidic, "Medium", "Hydrophilic"},
	{'Q', "GLN", Polar, Uncharged, Amide, "Medium", "Hydrophilic"},
	{'G', "GLY", NonPolar, Uncharged, Aliphatic, "Very small", "Neutral"},
	{'H', "HIS", Polar, Positive, Basic, "Medium", "Neutral"},
	{'I', "ILE", NonPolar, Uncharged, Aliphatic, "Large", "Hydrophobic"},
	{'L', "LEU", NonPolar, Uncharged, Aliphatic, "Large", "Hydrophobic"},
	{'K', "LYS", NonPolar, Positive, Basic, "Large", "Hydrophilic"},
	{'M', "MET", NonPolar, Uncharged, Sulfur, "Large", "Hydrophobic"},
	{'F', "PHE", NonPolar, Uncharged, Aromatic, "Very large", "Hydrophobic"},
	{'P', "PRO", NonPolar, Uncharged, Aliphatic, "Small", "Neutral"},
	{'S', "SER", Polar, Uncharged, Hydroxyl, "Very small", "Neutral"},
	{'T', "THR", Polar, Uncharged, Hydroxyl, "Small", "Neutral"},
	{'W', "TRP", NonPolar, Uncharged, Aromatic, "Very large", "Hydrophobic"},
	{'Y', "TYR", NonPolar, Uncharged, Aromatic, "Very large", "Neutral"},
	{'V', "VAL", NonPolar, Uncharged, Aliphatic, "Medium", "Hydrophobic"},
}

var byCode = func() map[byte]AminoAcid {
	m := make(map[byte]AminoAcid, len(table))
	for _, aa := range table {
		m[aa.Code] = aa
	}
	return m
}()

var byThreeLetter = func() map[string]AminoAcid {
	m := make(map[string]AminoAcid, len(table))
	for _, aa := range table {
		m[aa.ThreeLetter] = aa
	}
	return m
}()

// Lookup returns the residue for a one-letter code.
func Lookup(code byte) (AminoAcid, bool) {
	aa, ok := byCode[upper(code)]
	return aa, ok
}

// FromThreeLetter returns the residue for a three-letter code, e.g. "LEU".
func FromThreeLetter(code string) (AminoAcid, bool) {
	if len(code) != 3 {
		return AminoAcid{}, false
	}
	buf := []byte(code)
	for i := range buf {
		buf[i] = upper(buf[i])
	}
	aa, ok := byThreeLetter[string(buf)]
	return aa, ok
}

// IsStandard reports whether the one-letter code names one of the twenty
// standard amino acids.
func IsStandard(code byte) bool {
	_, ok := byCode[upper(code)]
	return ok
}

// Parse validates a one-letter code and returns its residue.
func Parse(code byte) (AminoAcid, error) {
	aa, ok := Lookup(code)
	if !ok {
		return AminoAcid{}, fmt.Errorf("%q is not a valid amino acid", string(code))
	}
	return aa, nil
}

// All returns the full residue table in canonical order.
func All() []AminoAcid {
	out := make([]AminoAcid, len(table))
	copy(out, table)
	return out
}

func upper(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - 'a' + 'A'
	}
	return b
}
