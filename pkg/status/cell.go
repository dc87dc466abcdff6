package status

import (
	"fmt"
	"sync"
	"time"
)

// Cell tracks one (record, predictor) pair for the lifetime of a run:
// its status, retry attempts, prediction outcome and elapsed time.
//
// Each cell has exactly one writer (the worker goroutine driving that
// record on that predictor); the mutex exists so snapshot readers can
// observe a consistent cell while the run is still in flight.
type Cell struct {
	mu sync.Mutex

	status   Status
	message  string
	ddg      *float64
	url      string
	attempts int

	started time.Time
	elapsed time.Duration
}

// NewCell returns a cell in the Pending state.
func NewCell() *Cell {
	return &Cell{status: Pending}
}

// Transition advances the cell to a new status. Transitions out of a
// terminal state are rejected: a late response for an already-terminal
// record is a no-op error, never a state downgrade. An empty message keeps
// the status's default description.
func (c *Cell) Transition(to Status, message string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.status.canAdvance(to) {
		return fmt.Errorf("invalid status transition from %q to %q", c.status, to)
	}
	c.status = to
	if message == "" {
		message = to.DefaultMessage()
	}
	c.message = message
	if to.Terminal() && !c.started.IsZero() {
		c.elapsed = time.Since(c.started)
	}
	return nil
}

// Begin marks the moment the scheduler hands the record to the adapter and
// starts the elapsed-time clock.
func (c *Cell) Begin() error {
	c.mu.Lock()
	c.started = time.Now()
	c.mu.Unlock()
	return c.Transition(Submitting, "")
}

// Resolve finishes the cell with a successful prediction. A late result
// arriving after a terminal state leaves the cell untouched.
func (c *Cell) Resolve(ddg float64, url, message string) error {
	c.mu.Lock()
	if c.status.Terminal() {
		c.mu.Unlock()
		return fmt.Errorf("cannot resolve cell already terminal in %q", c.status)
	}
	c.ddg = &ddg
	if url != "" {
		c.url = url
	}
	c.mu.Unlock()
	return c.Transition(Finished, message)
}

// RecordAttempt increments the poll attempt counter and returns its new value.
func (c *Cell) RecordAttempt() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.attempts++
	return c.attempts
}

// SetURL records the job's result URL without changing status.
func (c *Cell) SetURL(url string) {
	c.mu.Lock()
	c.url = url
	c.mu.Unlock()
}

// Snapshot is an immutable copy of a cell's observable state.
type Snapshot struct {
	Status   Status
	Message  string
	DDG      *float64
	URL      string
	Attempts int
	Elapsed  time.Duration
}

// Snapshot returns a consistent copy of the cell. For cells still in a
// blocking state the elapsed time reflects the clock so far.
func (c *Cell) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	elapsed := c.elapsed
	if !c.status.Terminal() && !c.started.IsZero() {
		elapsed = time.Since(c.started)
	}
	var ddg *float64
	if c.ddg != nil {
		v := *c.ddg
		ddg = &v
	}
	return Snapshot{
		Status:   c.status,
		Message:  c.message,
		DDG:      ddg,
		URL:      c.url,
		Attempts: c.attempts,
		Elapsed:  elapsed,
	}
}

// Status returns the current status.
func (c *Cell) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}
