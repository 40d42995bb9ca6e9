package reconcile

import (
	"context"
	"errors"
	"sync"
	"time"
)

var (
	// ErrCancelled is returned at a suspension point after Cancel was called.
	ErrCancelled = errors.New("run cancelled")
	// ErrNotAwaiting is returned when signalling a handoff nobody is waiting on.
	ErrNotAwaiting = errors.New("no pending request")
	// ErrInvalidDecision is returned for decisions other than Reprocess and Finish.
	ErrInvalidDecision = errors.New("invalid decision")
)

// Decision is the operator's answer at the reprocess decision point.
type Decision string

const (
	DecisionReprocess Decision = "reprocess"
	DecisionFinish    Decision = "finish"
)

// ParseDecision accepts the decision names case-sensitively.
func ParseDecision(s string) (Decision, error) {
	switch Decision(s) {
	case DecisionReprocess, DecisionFinish:
		return Decision(s), nil
	default:
		return "", ErrInvalidDecision
	}
}

// Awaiting tells the presentation layer what the worker is blocked on.
type Awaiting string

const (
	AwaitingNothing  Awaiting = ""
	AwaitingAck      Awaiting = "acknowledgement"
	AwaitingDecision Awaiting = "decision"
)

// Status is a point-in-time view of the run for presentation.
type Status struct {
	State     State     `json:"state"`
	Message   string    `json:"message"`
	Paused    bool      `json:"paused"`
	Cancelled bool      `json:"cancelled"`
	Awaiting  Awaiting  `json:"awaiting,omitempty"`
	Prompt    string    `json:"prompt,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Control carries signals between the presentation layer and the worker.
// The worker only blocks at Checkpoint, AwaitAck and AwaitDecision.
type Control struct {
	mu        sync.Mutex
	status    Status
	resume    chan struct{}
	cancelled chan struct{}
	cancel    sync.Once
	ack       chan struct{}
	decision  chan Decision
	observers []func(Status)
}

// NewControl returns a Control in the idle, running (not paused) state.
func NewControl() *Control {
	return &Control{
		status:    Status{State: StateIdle, UpdatedAt: time.Now()},
		cancelled: make(chan struct{}),
	}
}

// Subscribe registers fn to receive every status change. fn is called with the
// control's lock released but on the goroutine that caused the change.
func (c *Control) Subscribe(fn func(Status)) {
	c.mu.Lock()
	c.observers = append(c.observers, fn)
	c.mu.Unlock()
}

// Snapshot returns the current status.
func (c *Control) Snapshot() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// SetStatus publishes the worker's state and a human-readable message.
func (c *Control) SetStatus(state State, message string) {
	c.update(func(s *Status) {
		s.State = state
		s.Message = message
	})
}

// Pause asks the worker to stop at the next work item boundary.
func (c *Control) Pause() {
	c.apply(func(s *Status) bool {
		if c.resume != nil || c.isCancelled() {
			return false
		}
		c.resume = make(chan struct{})
		s.Paused = true
		return true
	})
}

// Resume releases a paused worker.
func (c *Control) Resume() {
	c.apply(func(s *Status) bool {
		if c.resume == nil {
			return false
		}
		close(c.resume)
		c.resume = nil
		s.Paused = false
		return true
	})
}

// Cancel asks the worker to unwind at the next suspension point. It also
// releases any pause, acknowledgement or decision wait.
func (c *Control) Cancel() {
	c.cancel.Do(func() {
		c.apply(func(s *Status) bool {
			close(c.cancelled)
			if c.resume != nil {
				close(c.resume)
				c.resume = nil
			}
			s.Paused = false
			s.Cancelled = true
			return true
		})
	})
}

// Cancelled returns a channel closed once Cancel has been called.
func (c *Control) Cancelled() <-chan struct{} {
	return c.cancelled
}

func (c *Control) isCancelled() bool {
	select {
	case <-c.cancelled:
		return true
	default:
		return false
	}
}

// Checkpoint is called by the worker at each work item boundary. It blocks
// while paused and returns ErrCancelled once the run is cancelled.
func (c *Control) Checkpoint(ctx context.Context) error {
	for {
		c.mu.Lock()
		resume := c.resume
		c.mu.Unlock()

		if c.isCancelled() {
			return ErrCancelled
		}
		if resume == nil {
			return nil
		}

		select {
		case <-resume:
		case <-c.cancelled:
			return ErrCancelled
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// AwaitAck blocks until the operator acknowledges prompt.
func (c *Control) AwaitAck(ctx context.Context, prompt string) error {
	ch := make(chan struct{}, 1)
	c.mu.Lock()
	c.ack = ch
	c.mu.Unlock()
	c.update(func(s *Status) {
		s.Awaiting = AwaitingAck
		s.Prompt = prompt
	})
	defer c.clearAwaiting(func() { c.ack = nil })

	select {
	case <-ch:
		return nil
	case <-c.cancelled:
		return ErrCancelled
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Acknowledge releases a pending AwaitAck.
func (c *Control) Acknowledge() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ack == nil {
		return ErrNotAwaiting
	}
	c.ack <- struct{}{}
	c.ack = nil
	return nil
}

// AwaitDecision blocks until the operator chooses to reprocess or finish.
func (c *Control) AwaitDecision(ctx context.Context, prompt string) (Decision, error) {
	ch := make(chan Decision, 1)
	c.mu.Lock()
	c.decision = ch
	c.mu.Unlock()
	c.update(func(s *Status) {
		s.Awaiting = AwaitingDecision
		s.Prompt = prompt
	})
	defer c.clearAwaiting(func() { c.decision = nil })

	select {
	case d := <-ch:
		return d, nil
	case <-c.cancelled:
		return "", ErrCancelled
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Decide hands the operator's decision to a pending AwaitDecision.
func (c *Control) Decide(d Decision) error {
	if _, err := ParseDecision(string(d)); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.decision == nil {
		return ErrNotAwaiting
	}
	c.decision <- d
	c.decision = nil
	return nil
}

func (c *Control) clearAwaiting(reset func()) {
	c.mu.Lock()
	reset()
	c.mu.Unlock()
	c.update(func(s *Status) {
		s.Awaiting = AwaitingNothing
		s.Prompt = ""
	})
}

func (c *Control) update(mutate func(*Status)) {
	c.apply(func(s *Status) bool {
		mutate(s)
		return true
	})
}

// apply runs mutate under the lock together with any channel bookkeeping it
// does, then notifies observers if it reported a change.
func (c *Control) apply(mutate func(*Status) bool) {
	c.mu.Lock()
	if !mutate(&c.status) {
		c.mu.Unlock()
		return
	}
	c.status.UpdatedAt = time.Now()
	snapshot := c.status
	observers := append([]func(Status){}, c.observers...)
	c.mu.Unlock()

	for _, fn := range observers {
		fn(snapshot)
	}
}
