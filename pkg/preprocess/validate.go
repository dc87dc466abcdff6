package preprocess

import (
	"fmt"

	"github.com/loschmidt/BenchStab/pkg/dataset"
)

// ValidateStage tags diagnostics produced by record validation.
const ValidateStage = "validation"

// Validate checks a resolved record and returns its findings. Every
// mismatch is a Warning: malformed rows never reach this point, having
// already been rejected as Errors by the parser.
func Validate(rec *dataset.Record) []dataset.Diagnostic {
	var diags []dataset.Diagnostic
	warn := func(format string, args ...any) {
		diags = append(diags, dataset.Diagnostic{
			Severity: dataset.Warning,
			Stage:    ValidateStage,
			Message:  fmt.Sprintf(format, args...),
		})
	}

	if !rec.Mutation.StandardResidues() {
		warn("mutation %s uses a residue outside the twenty standard amino acids", rec.Mutation)
	}
	if rec.Identifier.Structural() && rec.Chain == "" {
		warn("structural identifier %q is missing a chain", rec.Identifier.Raw)
	}
	if rec.Sequence != "" {
		mut := rec.SequenceMutation()
		if !mut.Matches(rec.Sequence) {
			got := "out of range"
			if mut.Position >= 1 && mut.Position <= len(rec.Sequence) {
				got = fmt.Sprintf("%q", string(rec.Sequence[mut.Position-1]))
			}
			warn("wild-type residue %q at position %d does not match the resolved sequence of %q (found %s)",
				string(mut.WildType), mut.Position, rec.Identifier.Raw, got)
		}
	}
	return diags
}
