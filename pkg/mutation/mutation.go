// Package mutation models a single point mutation in the one-letter
// WT_RESIDUE + POSITION + MUT_RESIDUE notation, e.g. "L45G".
package mutation

import (
	"fmt"
	"strconv"

	"github.com/loschmidt/BenchStab/pkg/aminoacid"
)

// Mutation is an immutable (wild-type, position, substitution) triple.
// Positions are 1-based. Equality is structural.
type Mutation struct {
	WildType     byte
	Position     int
	Substitution byte
}

// Parse parses a mutation string such as "L45G". The residue symbols are
// upper-cased but not checked against the standard residue table; symbol
// validation is a validator concern so that it can be reported as a
// diagnostic rather than a parse failure.
func Parse(s string) (Mutation, error) {
	if len(s) < 3 {
		return Mutation{}, fmt.Errorf("mutation %q has invalid format, expected WT_RESIDUE + POSITION + MUT_RESIDUE", s)
	}
	pos, err := strconv.Atoi(s[1 : len(s)-1])
	if err != nil {
		return Mutation{}, fmt.Errorf("mutation %q has a non-numeric position %q", s, s[1:len(s)-1])
	}
	if pos <= 0 {
		return Mutation{}, fmt.Errorf("mutation %q has a non-positive position %d", s, pos)
	}
	return Mutation{
		WildType:     upper(s[0]),
		Position:     pos,
		Substitution: upper(s[len(s)-1]),
	}, nil
}

// String renders the mutation back into its compact notation.
func (m Mutation) String() string {
	return string(m.WildType) + strconv.Itoa(m.Position) + string(m.Substitution)
}

// Shift returns a copy of the mutation with the position moved by delta.
// Shifting by zero returns an identical mutation.
func (m Mutation) Shift(delta int) Mutation {
	m.Position += delta
	return m
}

// StandardResidues reports whether both the wild-type and the substituted
// residue are standard amino acids.
func (m Mutation) StandardResidues() bool {
	return aminoacid.IsStandard(m.WildType) && aminoacid.IsStandard(m.Substitution)
}

// Matches reports whether the wild-type residue appears at the mutation's
// 1-based position in seq.
func (m Mutation) Matches(seq string) bool {
	if m.Position < 1 || m.Position > len(seq) {
		return false
	}
	return upper(seq[m.Position-1]) == m.WildType
}

func upper(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - 'a' + 'A'
	}
	return b
}
