package preprocess

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/loschmidt/BenchStab/pkg/dataset"
	"github.com/loschmidt/BenchStab/pkg/mutation"
)

// ValidationError is the aggregate failure of a strict run: every
// Error-severity diagnostic found across the whole input, raised once at
// the end of parsing and always before any network resolution starts.
type ValidationError struct {
	Diagnostics []dataset.Diagnostic
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("preprocessing found %d error(s); address them or rerun in permissive mode",
		len(e.Diagnostics))
}

// Pipeline orchestrates row parsing, sequence resolution and validation
// into a validated dataset.
type Pipeline struct {
	resolver   Resolver
	permissive bool
	skipHeader bool
	log        *zap.SugaredLogger
}

// Resolver is the sequence-resolution collaborator of the pipeline.
type Resolver interface {
	Resolve(ctx context.Context, id dataset.Identifier, mut mutation.Mutation) (string, *mutation.Mutation, []dataset.Diagnostic)
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// Permissive drops Error-bearing rows instead of aborting the run.
func Permissive() Option { return func(p *Pipeline) { p.permissive = true } }

// SkipHeader ignores the first input line.
func SkipHeader() Option { return func(p *Pipeline) { p.skipHeader = true } }

// New builds a pipeline around a resolver. A nil logger is replaced with a
// nop.
func New(resolver Resolver, log *zap.SugaredLogger, opts ...Option) *Pipeline {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	p := &Pipeline{resolver: resolver, log: log}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process parses every row, then resolves and validates the parseable
// ones. In strict mode (the default) a single Error-severity diagnostic
// anywhere in the input aborts with a *ValidationError before any network
// call is made; in permissive mode the offending rows are dropped into the
// dataset's side report and the rest proceed. Output preserves input order.
func (p *Pipeline) Process(ctx context.Context, lines []string) (*dataset.Dataset, error) {
	ds := dataset.New()

	// Parse phase: purely local, so strict mode can fail before any
	// network resolution happens.
	var errored []*dataset.Record
	if p.skipHeader && len(lines) > 0 {
		lines = lines[1:]
	}
	for _, line := range lines {
		fields, err := splitRow(line)
		if err != nil {
			errored = append(errored, errorRecord(err))
			continue
		}
		if fields == nil {
			continue
		}
		rec, err := parseRow(line, fields)
		if err != nil {
			errored = append(errored, errorRecord(err))
			continue
		}
		ds.Records = append(ds.Records, rec)
	}

	if len(errored) > 0 {
		if !p.permissive {
			var diags []dataset.Diagnostic
			for _, rec := range errored {
				diags = append(diags, rec.Diagnostics...)
			}
			return nil, &ValidationError{Diagnostics: diags}
		}
		ds.Dropped = errored
		for _, rec := range errored {
			for _, d := range rec.Diagnostics {
				p.log.Warnw("dropping invalid row", "diagnostic", d.Message)
			}
		}
	}

	// Resolution phase: attach sequences and realigned mutations, then
	// validate. Everything from here on is at most Warning severity.
	for _, rec := range ds.Records {
		seq, realigned, diags := p.resolver.Resolve(ctx, rec.Identifier, rec.Mutation)
		rec.Sequence = seq
		rec.Realigned = realigned
		rec.Diagnostics = append(rec.Diagnostics, diags...)
		rec.Diagnostics = append(rec.Diagnostics, Validate(rec)...)

		for _, d := range rec.Diagnostics {
			if d.Severity != dataset.Info {
				p.log.Debugw("record diagnostic",
					"identifier", rec.Identifier.Raw, "mutation", rec.Mutation.String(),
					"severity", d.Severity, "message", d.Message)
			}
		}
	}

	p.log.Infow("preprocessing finished",
		"records", len(ds.Records), "dropped", len(ds.Dropped))
	return ds, nil
}

func errorRecord(err error) *dataset.Record {
	rec := &dataset.Record{}
	rec.AddDiagnostic(dataset.Error, ParseStage, "%v", err)
	return rec
}
