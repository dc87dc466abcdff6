package dataset

import (
	"github.com/loschmidt/BenchStab/pkg/aminoacid"
)

// Summary aggregates a preprocessed dataset by the physicochemical class of
// the substituted residue.
type Summary struct {
	Mutations         int
	Identifiers       int
	AvgMutationsPerID float64
	ByCharge          map[aminoacid.Charge]int
	ByChemical        map[aminoacid.Chemical]int
	ByPolarity        map[aminoacid.Polarity]int
}

// Summarize computes the dataset summary over the kept records.
func Summarize(d *Dataset) Summary {
	s := Summary{
		ByCharge:   make(map[aminoacid.Charge]int),
		ByChemical: make(map[aminoacid.Chemical]int),
		ByPolarity: make(map[aminoacid.Polarity]int),
	}
	ids := make(map[string]struct{})
	for _, r := range d.Records {
		s.Mutations++
		ids[r.Identifier.Raw] = struct{}{}
		if aa, ok := aminoacid.Lookup(r.Mutation.Substitution); ok {
			s.ByCharge[aa.Charge]++
			s.ByChemical[aa.Chemical]++
			s.ByPolarity[aa.Polarity]++
		}
	}
	s.Identifiers = len(ids)
	if s.Identifiers > 0 {
		s.AvgMutationsPerID = float64(s.Mutations) / float64(s.Identifiers)
	}
	return s
}
