package sequence

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/loschmidt/BenchStab/pkg/dataset"
	"github.com/loschmidt/BenchStab/pkg/mutation"
)

// Stage tag carried by every diagnostic this package emits.
const Stage = "resolution"

// Resolver turns identifiers into sequences, falling back from the primary
// sequence database to the structure database for PDB accessions and
// realigning the mutation position when the two numberings diverge.
//
// Resolve never fails: a record that cannot be resolved comes back with an
// empty sequence and diagnostics, and the caller decides strictness.
type Resolver struct {
	primary   Source
	structure Source
	log       *zap.SugaredLogger
}

// NewResolver wires the two sources. A nil logger is replaced with a nop.
func NewResolver(primary, structure Source, log *zap.SugaredLogger) *Resolver {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Resolver{primary: primary, structure: structure, log: log}
}

// Resolve fetches a candidate sequence for the identifier and checks the
// mutation against it. The returned realigned mutation is expressed in the
// resolved sequence's 1-based numbering; it is nil when no sequence was
// attached, and equals the input mutation when no realignment was needed.
func (r *Resolver) Resolve(ctx context.Context, id dataset.Identifier, mut mutation.Mutation) (string, *mutation.Mutation, []dataset.Diagnostic) {
	switch id.Kind {
	case dataset.PdbAccession:
		return r.resolvePdbAccession(ctx, id, mut)
	case dataset.UniProtAccession:
		return r.resolveUniProt(ctx, id, mut)
	case dataset.PdbFilePath:
		return r.resolvePdbFile(id, mut)
	case dataset.FastaFilePath:
		return r.resolveFastaFile(id, mut)
	case dataset.RawSequence:
		aligned := mut
		return id.Raw, &aligned, nil
	}
	return "", nil, []dataset.Diagnostic{{
		Severity: dataset.Warning,
		Stage:    Stage,
		Message:  "unsupported identifier kind " + string(id.Kind),
	}}
}

// resolvePdbAccession implements the two-source cascade. The primary
// sequence database is consulted first; when its sequence rejects the
// mutation, or the fetch fails, the structure database is tried next with
// the position shifted by the length difference between the two sequences.
// On conflict the structure-source sequence is preferred.
func (r *Resolver) resolvePdbAccession(ctx context.Context, id dataset.Identifier, mut mutation.Mutation) (string, *mutation.Mutation, []dataset.Diagnostic) {
	var diags []dataset.Diagnostic
	warn := func(format string, args ...any) {
		diags = append(diags, diag(dataset.Warning, format, args...))
	}

	primarySeq, primaryErr := r.primary.Fetch(ctx, id)
	if primaryErr != nil {
		r.log.Debugw("primary source fetch failed", "identifier", id.Raw, "error", primaryErr)
		warn("primary sequence source %q failed for %q: %v", r.primary.Name(), id.Raw, primaryErr)
	} else if mut.Matches(primarySeq) {
		aligned := mut
		return primarySeq, &aligned, diags
	} else {
		warn("mutation %s does not match the %q sequence for %q", mut, r.primary.Name(), id.Raw)
	}

	structSeq, structErr := r.structure.Fetch(ctx, id)
	if structErr != nil {
		r.log.Debugw("structure source fetch failed", "identifier", id.Raw, "error", structErr)
		warn("structure source %q failed for %q: %v", r.structure.Name(), id.Raw, structErr)
		return "", nil, diags
	}

	delta := 0
	if primaryErr == nil {
		delta = len(structSeq) - len(primarySeq)
	}
	aligned := mut.Shift(delta)
	if aligned.Matches(structSeq) {
		if primaryErr == nil {
			diags = append(diags, diag(dataset.Info,
				"preferring %q sequence over %q for %q, realigned %s to %s",
				r.structure.Name(), r.primary.Name(), id.Raw, mut, aligned))
		}
		return structSeq, &aligned, diags
	}
	warn("mutation %s (realigned %s) does not match the %q sequence for %q",
		mut, aligned, r.structure.Name(), id.Raw)
	return "", nil, diags
}

// resolveUniProt fetches from the primary sequence database only. UniProt
// numbering is native to the accession, so no realignment is performed;
// any residue mismatch is left for the validator to report.
func (r *Resolver) resolveUniProt(ctx context.Context, id dataset.Identifier, mut mutation.Mutation) (string, *mutation.Mutation, []dataset.Diagnostic) {
	seq, err := r.primary.Fetch(ctx, id)
	if err != nil {
		return "", nil, []dataset.Diagnostic{diag(dataset.Warning,
			"primary sequence source %q failed for %q: %v", r.primary.Name(), id.Raw, err)}
	}
	aligned := mut
	return seq, &aligned, nil
}

// resolvePdbFile reads the SEQRES sequence of a local structure file.
// SEQRES numbering is assumed to start at position 0, so a consistent
// mutation indexes seq[position]; the attached realigned mutation shifts to
// the pipeline's 1-based convention. An inconsistent position leaves the
// sequence unattached.
func (r *Resolver) resolvePdbFile(id dataset.Identifier, mut mutation.Mutation) (string, *mutation.Mutation, []dataset.Diagnostic) {
	seq, err := ReadPDBSeqres(id.Raw, id.Chain)
	if err != nil {
		return "", nil, []dataset.Diagnostic{diag(dataset.Warning,
			"failed to extract sequence from %q: %v", id.Raw, err)}
	}
	if mut.Position >= len(seq) || upperByte(seq[mut.Position]) != mut.WildType {
		return "", nil, []dataset.Diagnostic{diag(dataset.Warning,
			"mutation %s is inconsistent with the zero-based numbering of %q", mut, id.Raw)}
	}
	aligned := mut.Shift(1)
	return seq, &aligned, nil
}

// resolveFastaFile reads the literal file content; numbering is 1-based
// from the file and no realignment applies.
func (r *Resolver) resolveFastaFile(id dataset.Identifier, mut mutation.Mutation) (string, *mutation.Mutation, []dataset.Diagnostic) {
	seq, err := ReadFastaFile(id.Raw)
	if err != nil {
		return "", nil, []dataset.Diagnostic{diag(dataset.Warning,
			"failed to read fasta file %q: %v", id.Raw, err)}
	}
	aligned := mut
	return seq, &aligned, nil
}

func diag(sev dataset.Severity, format string, args ...any) dataset.Diagnostic {
	return dataset.Diagnostic{Severity: sev, Stage: Stage, Message: fmt.Sprintf(format, args...)}
}

func upperByte(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - 'a' + 'A'
	}
	return b
}
