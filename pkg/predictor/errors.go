package predictor

import (
	"errors"
	"fmt"
)

// ErrStillRunning is returned by Poll while the job has not resolved yet;
// the record stays in its blocking status and the retry counter advances.
var ErrStillRunning = errors.New("job still running")

// ErrProcessing is the variant of ErrStillRunning for predictors that
// distinguish a queued job from one being actively worked on; the record
// moves to the Processing status. It unwraps to ErrStillRunning so
// callers that only care about "not resolved yet" match both.
var ErrProcessing = fmt.Errorf("%w: request is being processed", ErrStillRunning)

// TransportError reports that the transport layer could not reach the
// server. It maps to the ConnectionFailed status and is not retried.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("connection failed during %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ResponseParseError reports that a response arrived but could not be
// parsed into the expected shape. It maps to the ParseFailed status.
type ResponseParseError struct {
	Op  string
	Err error
}

func (e *ResponseParseError) Error() string {
	return fmt.Sprintf("parsing failed during %s: %v", e.Op, e.Err)
}

func (e *ResponseParseError) Unwrap() error { return e.Err }

// JobError is a parseable "job failed" signal from the predictor itself,
// e.g. an invalid protein/chain/mutation combination. It maps to the
// Failed status.
type JobError struct {
	Message string
}

func (e *JobError) Error() string { return e.Message }
