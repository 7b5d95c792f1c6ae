// Package trainer drives Custom Vision model training: uploading labeled
// images, starting a training iteration, and watching the remote job until
// it reaches a terminal status.
package trainer

import (
	"context"
	"fmt"
	"time"

	"github.com/orchardai/visionlab/pkg/vision/customvision"
)

// Status is a provider-defined training job status string.
//
// The vocabulary is open-ended: the service may report values not listed
// here, and the watcher treats any status outside its terminal set as
// "still running".
type Status string

// Known status values.
const (
	StatusNew        Status = "New"
	StatusQueued     Status = "Queued"
	StatusTraining   Status = "Training"
	StatusValidating Status = "Validating"
	StatusCompleted  Status = "Completed"
	StatusFailed     Status = "Failed"
)

// DefaultInterval is the delay between consecutive status polls. Training is
// a multi-minute, human-observed batch job; precision is a non-goal.
const DefaultInterval = 5 * time.Second

// DefaultTerminal is the default terminal status set.
//
// Failed is deliberately included: a watcher whose only terminal value is
// Completed would re-poll a failed job forever.
var DefaultTerminal = []Status{StatusCompleted, StatusFailed}

// Handle identifies a submitted training job. It is a read handle only: the
// job itself is owned by the remote service and the watcher never mutates it.
type Handle struct {
	ProjectID   string
	IterationID string
}

// Poller queries the current status of a training job.
//
// A failed poll means the remote call could not complete (network, auth);
// pollers must not retry internally, and the error propagates unchanged to
// the Watch caller.
type Poller interface {
	Poll(ctx context.Context, h Handle) (Status, error)
}

// PollerFunc adapts a function to the Poller interface.
type PollerFunc func(ctx context.Context, h Handle) (Status, error)

// Poll implements Poller.
func (f PollerFunc) Poll(ctx context.Context, h Handle) (Status, error) {
	return f(ctx, h)
}

// Watcher observes a previously submitted training job until it reaches a
// terminal status, surfacing intermediate progress to the caller.
//
// The loop is a deliberately simple fixed-interval poll: no backoff, no
// jitter, no iteration bound. The only ways out are a terminal status, a
// poll error, or context cancellation.
type Watcher struct {
	// Interval is the sleep between polls. Zero means DefaultInterval.
	Interval time.Duration

	// Terminal is the full set of statuses that stop the watch, success and
	// failure alike. Empty means DefaultTerminal.
	Terminal []Status

	// Progress, when set, is called once per non-terminal poll result with
	// the observed status.
	Progress func(Status)
}

// Watch polls the job's status until a terminal value is observed and
// returns that value.
//
// Each non-terminal result is reported through Progress and followed by one
// interval of sleep. A poll error aborts the watch immediately, before any
// progress report for that cycle. Watch returns ctx.Err() if the context is
// cancelled during the sleep.
func (w *Watcher) Watch(ctx context.Context, p Poller, h Handle) (Status, error) {
	interval := w.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	terminal := w.Terminal
	if len(terminal) == 0 {
		terminal = DefaultTerminal
	}

	for {
		status, err := p.Poll(ctx, h)
		if err != nil {
			return "", err
		}
		if statusIn(status, terminal) {
			return status, nil
		}
		if w.Progress != nil {
			w.Progress(status)
		}
		if err := sleep(ctx, interval); err != nil {
			return "", err
		}
	}
}

// Succeeded reports whether a terminal status is the successful one.
func Succeeded(s Status) bool {
	return s == StatusCompleted
}

func statusIn(s Status, set []Status) bool {
	for _, t := range set {
		if s == t {
			return true
		}
	}
	return false
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// IterationPoller adapts a Custom Vision training client to the Poller
// interface.
type IterationPoller struct {
	Client *customvision.TrainingClient
}

// Poll fetches the iteration and returns its current status.
func (p *IterationPoller) Poll(ctx context.Context, h Handle) (Status, error) {
	it, err := p.Client.GetIteration(ctx, h.ProjectID, h.IterationID)
	if err != nil {
		return "", err
	}
	return Status(it.Status), nil
}

// Submit starts a new training iteration on the project and returns its
// handle along with the initial status the service reported.
func Submit(ctx context.Context, tc *customvision.TrainingClient, projectID string) (Handle, Status, error) {
	it, err := tc.TrainProject(ctx, projectID)
	if err != nil {
		return Handle{}, "", err
	}
	if it.ID == "" {
		return Handle{}, "", fmt.Errorf("trainer: service returned an iteration without an ID")
	}
	return Handle{ProjectID: projectID, IterationID: it.ID}, Status(it.Status), nil
}
