// Package fallback guarantees every source reaches a terminal, explicitly
// labelled outcome: automatic extraction is tried once, and on failure an
// operator may substitute content by hand. Downstream stages always
// receive either real content or an explicit absence marker.
package fallback

import (
	"context"
	"fmt"
	"log"
)

// State enumerates the per-source state machine.
type State int

const (
	Pending State = iota
	AutoSucceeded
	AutoFailed
	AwaitingManualInput
	ManualProvided
	ManualSkipped
	Resolved
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case AutoSucceeded:
		return "auto_succeeded"
	case AutoFailed:
		return "auto_failed"
	case AwaitingManualInput:
		return "awaiting_manual_input"
	case ManualProvided:
		return "manual_provided"
	case ManualSkipped:
		return "manual_skipped"
	case Resolved:
		return "resolved"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

var allowedTransitions = map[State][]State{
	Pending:             {AutoSucceeded, AutoFailed},
	AutoFailed:          {AwaitingManualInput},
	AwaitingManualInput: {ManualProvided, ManualSkipped},
	AutoSucceeded:       {Resolved},
	ManualProvided:      {Resolved},
	ManualSkipped:       {Resolved},
}

// Outcome is the terminal result for one source. Terminal reports which of
// AutoSucceeded, ManualProvided or ManualSkipped fed into Resolved.
// HasContent distinguishes "content is the empty string" from "no content
// at all"; callers must never have to guess from a bare empty value.
type Outcome struct {
	Terminal   State
	Content    string
	HasContent bool
	Reason     string
}

// AutoFunc performs the automatic extraction attempt for one source.
type AutoFunc func(ctx context.Context) (string, error)

// PromptFunc asks the operator for substitute content after automation
// failed. Empty returned text means the operator chose to skip.
type PromptFunc func(sourceName, reason string) string

// Controller drives the state machine. Sanitize, when set, is applied to
// operator-provided text before it is handed downstream.
type Controller struct {
	Prompt   PromptFunc
	Sanitize func(string) string
	Logger   *log.Logger
}

// Resolve runs one source through the machine. Automation is attempted
// exactly once; retries belong to callers. The returned outcome is always
// terminal and Resolve never returns an error.
func (c *Controller) Resolve(ctx context.Context, sourceName string, auto AutoFunc) Outcome {
	state := Pending

	content, err := auto(ctx)
	if err == nil {
		state = c.transition(state, AutoSucceeded)
		c.transition(state, Resolved)
		return Outcome{Terminal: AutoSucceeded, Content: content, HasContent: true}
	}

	reason := err.Error()
	state = c.transition(state, AutoFailed)
	state = c.transition(state, AwaitingManualInput)
	if c.Logger != nil {
		c.Logger.Printf("automatic extraction failed for %q: %s", sourceName, reason)
	}

	var manual string
	if c.Prompt != nil {
		manual = c.Prompt(sourceName, reason)
		if c.Sanitize != nil {
			manual = c.Sanitize(manual)
		}
	}
	if manual == "" {
		state = c.transition(state, ManualSkipped)
		c.transition(state, Resolved)
		return Outcome{Terminal: ManualSkipped, Reason: reason}
	}

	state = c.transition(state, ManualProvided)
	c.transition(state, Resolved)
	return Outcome{Terminal: ManualProvided, Content: manual, HasContent: true, Reason: reason}
}

func (c *Controller) transition(from, to State) State {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return to
		}
	}
	panic(fmt.Sprintf("fallback: illegal transition %s -> %s", from, to))
}
