// Package predictor defines the capability contract every external
// stability predictor plugs into. A predictor declares its accepted input
// type and whether it is job-based; the optional Submit, Poll,
// Authenticate and Ping facets are discovered by type assertion, so the
// engine only requires the capabilities a given predictor declares.
package predictor

import (
	"context"

	"github.com/google/uuid"

	"github.com/loschmidt/BenchStab/pkg/dataset"
)

// InputType names the input a predictor accepts.
type InputType string

const (
	InputPdbID    InputType = "PdbID"
	InputPdbFile  InputType = "PdbFile"
	InputSequence InputType = "Sequence"
)

// Credentials authenticate a predictor account. They are owned by the
// adapter and forwarded once at login time; the engine never persists them.
type Credentials struct {
	Username string
	Password string
}

// Job is one (record, predictor) unit of work handed to an adapter.
type Job struct {
	RunID       string
	RecordIndex int
	Record      *dataset.Record
}

// Result is a parsed terminal response from a predictor.
type Result struct {
	DDG     float64
	URL     string
	Message string
}

// Submission is an accepted job. Instant predictors resolve in the
// submission round-trip and return Result directly; job-based predictors
// return a poll handle instead and leave Result nil.
type Submission struct {
	ID      string
	PollURL string
	Result  *Result
}

// NewSubmission allocates a handle with a fresh submission identity.
func NewSubmission(pollURL string) *Submission {
	return &Submission{ID: uuid.New().String(), PollURL: pollURL}
}

// Immediate wraps an instant predictor's result as a resolved submission.
func Immediate(res *Result) *Submission {
	return &Submission{ID: uuid.New().String(), Result: res}
}

// Predictor is the core facet shared by every adapter.
type Predictor interface {
	Name() string
	InputType() InputType
	// JobBased reports whether submissions return a pending job handle
	// that must be polled until resolution.
	JobBased() bool
}

// Submitter sends one record to the external service.
type Submitter interface {
	Submit(ctx context.Context, job *Job) (*Submission, error)
}

// Poller checks a pending submission. While the job is still running the
// poll returns ErrStillRunning (or ErrProcessing once the predictor is
// actively working on it); any other outcome is terminal.
type Poller interface {
	Poll(ctx context.Context, sub *Submission) (*Result, error)
}

// Authenticator logs into the predictor's account system. Authentication
// happens once per predictor per run, before any submission.
type Authenticator interface {
	Authenticate(ctx context.Context, creds Credentials) error
}

// Pinger probes the predictor's endpoint. An offline predictor is skipped
// without any submission.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Accepts reports whether a record can be sent to a predictor of the given
// input type: sequence predictors need a resolved sequence, structural
// predictors need a structural identifier, and file-based predictors also
// accept accession codes (the structure can be downloaded on their behalf).
func Accepts(t InputType, rec *dataset.Record) bool {
	switch t {
	case InputSequence:
		return rec.Sequence != ""
	case InputPdbID:
		return rec.Identifier.Kind == dataset.PdbAccession
	case InputPdbFile:
		return rec.Identifier.Kind == dataset.PdbFilePath || rec.Identifier.Kind == dataset.PdbAccession
	}
	return false
}
