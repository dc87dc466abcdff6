// Package status implements the per-(record, predictor) job lifecycle.
// Every cell of the result table advances through this state machine
// exactly once; terminal states never transition further.
package status

// Status names one state of the job lifecycle.
type Status string

const (
	// Pending is the initial state: the record has not been handed to the
	// adapter yet.
	Pending Status = "pending"
	// Submitting means the scheduler handed the record to the adapter and
	// the submission round-trip is in progress.
	Submitting Status = "submitting"
	// Waiting means a job-based predictor accepted the job and queued it.
	Waiting Status = "waiting"
	// Processing means the predictor is actively working on the payload.
	Processing Status = "processing"

	// Finished means a parseable, successful result was received.
	Finished Status = "finished"
	// Failed means the predictor reported a parseable job failure, e.g. an
	// invalid protein/chain/mutation combination.
	Failed Status = "failed"
	// TimedOut means the retry counter reached its maximum before the job
	// resolved.
	TimedOut Status = "timed out"
	// ConnectionFailed means the transport layer could not reach the server.
	ConnectionFailed Status = "connection failed"
	// ParseFailed means a response arrived but could not be parsed into the
	// expected shape.
	ParseFailed Status = "parsing failed"
	// AuthFailed means the predictor rejected the supplied credentials.
	AuthFailed Status = "authentication failed"
	// NotAvailable means the predictor's endpoint did not answer the
	// availability probe; nothing was submitted.
	NotAvailable Status = "predictor not available"
	// OtherFailure covers any error not captured by a more specific state.
	OtherFailure Status = "other failure"
)

// Blocking reports whether the job is still in progress and eligible for
// another poll attempt. Waiting and Processing are the only blocking states.
func (s Status) Blocking() bool {
	return s == Waiting || s == Processing
}

// Terminal reports whether the state admits no further transitions.
func (s Status) Terminal() bool {
	switch s {
	case Finished, Failed, TimedOut, ConnectionFailed, ParseFailed,
		AuthFailed, NotAvailable, OtherFailure:
		return true
	}
	return false
}

// DefaultMessage returns the human-readable description reported alongside
// a status when the adapter supplied no more specific message.
func (s Status) DefaultMessage() string {
	switch s {
	case Pending:
		return "The job has not started yet."
	case Submitting:
		return "The job is being submitted."
	case Waiting:
		return "The job is waiting in the predictor's queue."
	case Processing:
		return "The job request is being processed."
	case Finished:
		return "The job has finished successfully."
	case Failed:
		return "The job has failed."
	case TimedOut:
		return "The job has timed out."
	case ConnectionFailed:
		return "The job has failed during connection."
	case ParseFailed:
		return "The job has failed during data parsing."
	case AuthFailed:
		return "The job has failed during authentication."
	case NotAvailable:
		return "The predictor is not available."
	case OtherFailure:
		return "The job has failed for unknown reasons."
	}
	return string(s)
}

// canAdvance encodes the forward-only transition relation. Self-transitions
// between blocking states model polls that returned "still running".
func (s Status) canAdvance(to Status) bool {
	if s.Terminal() {
		return false
	}
	switch s {
	case Pending:
		return to == Submitting || to.Terminal()
	case Submitting:
		return to == Waiting || to == Processing || to.Terminal()
	case Waiting, Processing:
		return to == Waiting || to == Processing || to.Terminal()
	}
	return false
}
