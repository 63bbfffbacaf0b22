package timer

import (
	"errors"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/cueroom/go/internal/models"
)

// ErrInvalidTransition is returned when a transition is not legal from the
// timer's current state. The timer is left untouched.
var ErrInvalidTransition = errors.New("invalid timer transition")

// State is the derived run state of a timer.
type State string

const (
	StateIdle     State = "IDLE"
	StateRunning  State = "RUNNING"
	StatePaused   State = "PAUSED"
	StateFinished State = "FINISHED"
	StateStopped  State = "STOPPED"
)

// Transition names an operation that moves a timer between states.
type Transition string

const (
	TransitionStart  Transition = "start"
	TransitionPause  Transition = "pause"
	TransitionResume Transition = "resume"
	TransitionStop   Transition = "stop"
	TransitionAdjust Transition = "adjust"
)

// Valid reports whether tr is a known transition.
func (tr Transition) Valid() bool {
	switch tr {
	case TransitionStart, TransitionPause, TransitionResume, TransitionStop, TransitionAdjust:
		return true
	}
	return false
}

// StateOf maps the four run flags onto the single state they encode.
func StateOf(t *models.Timer) State {
	switch {
	case t.IsStopped:
		return StateStopped
	case t.IsFinished:
		return StateFinished
	case t.IsActive && t.IsPaused:
		return StatePaused
	case t.IsActive:
		return StateRunning
	default:
		return StateIdle
	}
}

// Machine applies validated transitions to timers. All time reads go through
// the injected clock so elapsed computation is testable and never depends on
// caller-supplied elapsed values.
type Machine struct {
	clock clockwork.Clock
}

// NewMachine creates a timer state machine using the given clock.
func NewMachine(clock clockwork.Clock) *Machine {
	return &Machine{clock: clock}
}

// Apply runs the named transition against t. deltaSeconds is only consulted
// for TransitionAdjust.
func (m *Machine) Apply(t *models.Timer, tr Transition, deltaSeconds int) error {
	switch tr {
	case TransitionStart:
		return m.Start(t)
	case TransitionPause:
		return m.Pause(t)
	case TransitionResume:
		return m.Resume(t)
	case TransitionStop:
		return m.Stop(t)
	case TransitionAdjust:
		return m.Adjust(t, deltaSeconds)
	default:
		return fmt.Errorf("%w: unknown transition %q", ErrInvalidTransition, tr)
	}
}

// Start begins a fresh run. Valid from Idle, Stopped or Finished; a running
// or paused timer must be stopped first.
func (m *Machine) Start(t *models.Timer) error {
	switch StateOf(t) {
	case StateRunning, StatePaused:
		return fmt.Errorf("%w: start from %s", ErrInvalidTransition, StateOf(t))
	}

	now := m.clock.Now().UTC()
	t.StartedAt = &now
	t.PausedAt = nil
	t.CompletedAt = nil
	t.IsActive = true
	t.IsPaused = false
	t.IsFinished = false
	t.IsStopped = false

	if t.TimerType == models.TimerTypeCountdown && t.DurationSeconds != nil {
		t.CurrentTimeSeconds = *t.DurationSeconds
	} else {
		t.CurrentTimeSeconds = 0
	}
	return nil
}

// Pause freezes a running timer, snapshotting the elapsed time at now.
func (m *Machine) Pause(t *models.Timer) error {
	if StateOf(t) != StateRunning {
		return fmt.Errorf("%w: pause from %s", ErrInvalidTransition, StateOf(t))
	}

	now := m.clock.Now().UTC()
	t.PausedAt = &now
	t.IsPaused = true
	t.CurrentTimeSeconds = currentSeconds(t, now)
	return nil
}

// Resume continues a paused timer. The start anchor is shifted forward by
// the paused duration so elapsed time excludes the pause.
func (m *Machine) Resume(t *models.Timer) error {
	if StateOf(t) != StatePaused {
		return fmt.Errorf("%w: resume from %s", ErrInvalidTransition, StateOf(t))
	}

	now := m.clock.Now().UTC()
	if t.StartedAt != nil && t.PausedAt != nil {
		anchor := t.StartedAt.Add(now.Sub(*t.PausedAt))
		t.StartedAt = &anchor
	}
	t.PausedAt = nil
	t.IsPaused = false
	return nil
}

// Stop ends the current run, leaving current_time_seconds at its last
// computed value. Valid from any non-terminal state.
func (m *Machine) Stop(t *models.Timer) error {
	switch StateOf(t) {
	case StateStopped, StateFinished:
		return fmt.Errorf("%w: stop from %s", ErrInvalidTransition, StateOf(t))
	}

	now := m.clock.Now().UTC()
	if StateOf(t) == StateRunning {
		t.CurrentTimeSeconds = currentSeconds(t, now)
	}
	t.IsStopped = true
	t.IsActive = false
	t.IsPaused = false
	return nil
}

// Adjust shifts current_time_seconds by deltaSeconds in any state. For live
// runs the start anchor is recomputed retroactively so every client keeps
// deriving the same display time from the anchors. A countdown that reaches
// zero flips to Finished; moving a finished countdown away from zero puts it
// back to Running.
func (m *Machine) Adjust(t *models.Timer, deltaSeconds int) error {
	now := m.clock.Now().UTC()
	state := StateOf(t)

	switch state {
	case StateRunning, StatePaused:
		if t.StartedAt != nil {
			// Countdown current time grows when elapsed shrinks, so the
			// anchor moves the opposite way from countup types.
			shift := time.Duration(deltaSeconds) * time.Second
			if t.TimerType != models.TimerTypeCountdown {
				shift = -shift
			}
			anchor := t.StartedAt.Add(shift)
			// A countdown pushed above its duration legitimately anchors in
			// the future; countup types never report negative elapsed time.
			if t.TimerType != models.TimerTypeCountdown {
				ref := now
				if state == StatePaused && t.PausedAt != nil {
					ref = *t.PausedAt
				}
				if anchor.After(ref) {
					anchor = ref
				}
			}
			t.StartedAt = &anchor
		}
		t.CurrentTimeSeconds = currentSeconds(t, now)
	default:
		next := t.CurrentTimeSeconds + deltaSeconds
		if next < 0 {
			next = 0
		}
		t.CurrentTimeSeconds = next
	}

	if t.TimerType == models.TimerTypeCountdown {
		switch {
		case t.CurrentTimeSeconds <= 0 && !t.IsFinished && !t.IsStopped:
			m.finish(t, now)
		case t.CurrentTimeSeconds > 0 && t.IsFinished:
			// Moved away from zero: the run is live again.
			t.IsFinished = false
			t.CompletedAt = nil
			t.IsActive = true
			t.IsPaused = false
			if t.DurationSeconds != nil {
				anchor := now.Add(-time.Duration(*t.DurationSeconds-t.CurrentTimeSeconds) * time.Second)
				t.StartedAt = &anchor
			}
		}
	}
	return nil
}

// Refresh re-derives current_time_seconds from the anchors at now and
// applies natural completion: a countdown reaching zero, or a countup or
// stopwatch reaching its optional duration cap, transitions to Finished.
// Refresh on a non-running timer is a no-op. Returns true when the timer
// finished as a result of this call.
func (m *Machine) Refresh(t *models.Timer) bool {
	if StateOf(t) != StateRunning {
		return false
	}

	now := m.clock.Now().UTC()
	t.CurrentTimeSeconds = currentSeconds(t, now)

	switch t.TimerType {
	case models.TimerTypeCountdown:
		if t.CurrentTimeSeconds <= 0 {
			m.finish(t, now)
			return true
		}
	case models.TimerTypeCountup, models.TimerTypeStopwatch:
		if t.DurationSeconds != nil && t.CurrentTimeSeconds >= *t.DurationSeconds {
			t.CurrentTimeSeconds = *t.DurationSeconds
			m.finish(t, now)
			return true
		}
	}
	return false
}

func (m *Machine) finish(t *models.Timer, now time.Time) {
	if t.TimerType == models.TimerTypeCountdown {
		t.CurrentTimeSeconds = 0
	}
	t.IsFinished = true
	t.IsActive = false
	t.IsPaused = false
	t.CompletedAt = &now
}

// ElapsedAt computes the run's elapsed time at now purely from the stored
// anchors. Paused timers report the elapsed time frozen at paused_at. The
// result is negative when an adjusted countdown anchors in the future.
func ElapsedAt(t *models.Timer, now time.Time) time.Duration {
	if t.StartedAt == nil {
		return 0
	}
	ref := now
	if t.IsPaused && t.PausedAt != nil {
		ref = *t.PausedAt
	}
	return ref.Sub(*t.StartedAt)
}

// currentSeconds derives current_time_seconds at now for the timer's type.
func currentSeconds(t *models.Timer, now time.Time) int {
	elapsed := int(ElapsedAt(t, now) / time.Second)
	if t.TimerType == models.TimerTypeCountdown && t.DurationSeconds != nil {
		remaining := *t.DurationSeconds - elapsed
		if remaining < 0 {
			return 0
		}
		return remaining
	}
	if elapsed < 0 {
		return 0
	}
	return elapsed
}
