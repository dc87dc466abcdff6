package dataset

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/loschmidt/BenchStab/pkg/mutation"
)

// Severity levels a diagnostic. Errors abort strict runs; Warnings and
// Infos are always carried through.
type Severity string

const (
	Info    Severity = "info"
	Warning Severity = "warning"
	Error   Severity = "error"
)

// Diagnostic is one append-only finding accrued while a record moves
// through parsing, resolution and validation.
type Diagnostic struct {
	Severity Severity
	Message  string
	Stage    string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s [%s]: %s", d.Severity, d.Stage, d.Message)
}

// Default assay conditions applied when the input row omits them.
const (
	DefaultPH          = 7.0
	DefaultTemperature = 25.0
)

// Record is one row of the dataset: an identifier plus a single point
// mutation and its resolved sequence context. Sequence stays empty until
// the resolver attaches one; Realigned is set only when the resolved
// sequence uses a different numbering than the input mutation.
type Record struct {
	Identifier  Identifier
	Mutation    mutation.Mutation
	Chain       string
	PH          float64
	Temperature float64

	Sequence    string
	Realigned   *mutation.Mutation
	Diagnostics []Diagnostic
}

// AddDiagnostic appends a finding; diagnostics are never mutated afterwards.
func (r *Record) AddDiagnostic(sev Severity, stage, format string, args ...any) {
	r.Diagnostics = append(r.Diagnostics, Diagnostic{
		Severity: sev,
		Stage:    stage,
		Message:  fmt.Sprintf(format, args...),
	})
}

// HasError reports whether any Error-severity diagnostic is attached.
func (r *Record) HasError() bool {
	for _, d := range r.Diagnostics {
		if d.Severity == Error {
			return true
		}
	}
	return false
}

// SequenceMutation returns the mutation expressed in the numbering of the
// resolved sequence: the realigned mutation when present, the original
// otherwise. Sequence-based predictors use this; structure-based predictors
// keep the original.
func (r *Record) SequenceMutation() mutation.Mutation {
	if r.Realigned != nil {
		return *r.Realigned
	}
	return r.Mutation
}

// Dataset is an ordered collection of validated records, identified by a
// run ID. Dropped holds the Error-bearing rows excluded by permissive
// preprocessing, with their diagnostics preserved as a side report.
type Dataset struct {
	RunID   string
	Records []*Record
	Dropped []*Record
}

// New allocates an empty dataset with a fresh run identity.
func New() *Dataset {
	return &Dataset{RunID: uuid.New().String()}
}

// Diagnostics collects every diagnostic across kept and dropped records,
// filtered to at least the given severity (Info returns everything).
func (d *Dataset) Diagnostics(min Severity) []Diagnostic {
	rank := map[Severity]int{Info: 0, Warning: 1, Error: 2}
	var out []Diagnostic
	for _, recs := range [][]*Record{d.Records, d.Dropped} {
		for _, r := range recs {
			for _, diag := range r.Diagnostics {
				if rank[diag.Severity] >= rank[min] {
					out = append(out, diag)
				}
			}
		}
	}
	return out
}
