// Package dataset holds the record model shared by the preprocessing
// pipeline and the execution engine: identifiers, mutation records,
// diagnostics and the tabular output schemas.
package dataset

import (
	"regexp"
	"strings"
)

// IdentifierKind tags the accepted protein input formats.
type IdentifierKind string

const (
	PdbAccession     IdentifierKind = "pdb_accession"
	UniProtAccession IdentifierKind = "uniprot_accession"
	PdbFilePath      IdentifierKind = "pdb_file"
	FastaFilePath    IdentifierKind = "fasta_file"
	RawSequence      IdentifierKind = "raw_sequence"
)

// Identifier is a tagged union over the input formats. Raw keeps the exact
// string the user supplied; Chain is set for structural inputs only.
type Identifier struct {
	Kind  IdentifierKind
	Raw   string
	Chain string
}

// UniProt accession regex per https://www.wikidata.org/wiki/Property:P352.
var uniprotRe = regexp.MustCompile(
	`^([OPQ][0-9][A-Z0-9]|[A-NR-Z][0-9][A-Z])[A-Z0-9][A-Z0-9][0-9]([A-Z][A-Z0-9][A-Z0-9][0-9])?$`)

// PDB accession codes are four alphanumerics starting with a digit is the
// common case, but legacy entries allow any word character in all four slots.
var pdbCodeRe = regexp.MustCompile(`^\w{4}$`)

// Residue alphabet accepted in bare sequences, per the NCBI BLAST FASTA notes.
var sequenceRe = regexp.MustCompile(`^[ABCDEFGHIKLMNPQRSTUVWYZX*\-]+$`)

// Classify determines the identifier kind of a raw input column. UniProt
// accessions are checked before PDB codes: the two alphabets overlap at
// length four and a UniProt match is the more specific claim. Unclassifiable
// input yields a zero Identifier and ok == false.
func Classify(raw string) (Identifier, bool) {
	switch {
	case strings.HasSuffix(strings.ToLower(raw), ".pdb"):
		return Identifier{Kind: PdbFilePath, Raw: raw}, true
	case strings.HasSuffix(strings.ToLower(raw), ".fasta"):
		return Identifier{Kind: FastaFilePath, Raw: raw}, true
	case uniprotRe.MatchString(strings.ToUpper(raw)):
		return Identifier{Kind: UniProtAccession, Raw: raw}, true
	case pdbCodeRe.MatchString(raw):
		return Identifier{Kind: PdbAccession, Raw: raw}, true
	case sequenceRe.MatchString(strings.ToUpper(raw)):
		return Identifier{Kind: RawSequence, Raw: strings.ToUpper(raw)}, true
	}
	return Identifier{}, false
}

// Structural reports whether the identifier refers to a structure (and is
// therefore expected to carry a chain).
func (id Identifier) Structural() bool {
	return id.Kind == PdbAccession || id.Kind == PdbFilePath
}

// String returns the raw identifier text.
func (id Identifier) String() string { return id.Raw }

// ExtractChain normalizes a chain column value to a single upper-case
// letter, understanding the RCSB "auth X" annotation. Returns "" when the
// value is not a chain.
func ExtractChain(s string) string {
	s = strings.TrimSpace(s)
	if m := regexp.MustCompile(`auth (\w)`).FindStringSubmatch(s); m != nil {
		s = m[1]
	}
	if len(s) == 1 && ((s[0] >= 'A' && s[0] <= 'Z') || (s[0] >= 'a' && s[0] <= 'z')) {
		return strings.ToUpper(s)
	}
	return ""
}
