package routing

import (
	"context"

	"github.com/looplab/fsm"
)

// Lifecycle events of a shard copy.
const (
	EventInitialize         = "initialize"
	EventStart              = "start"
	EventRelocate           = "relocate"
	EventCompleteRelocation = "complete_relocation"
	EventCancelRelocation   = "cancel_relocation"
	EventUnassign           = "unassign"
)

var lifecycle = fsm.Events{
	{Name: EventInitialize, Src: []string{StateUnassigned.String()}, Dst: StateInitializing.String()},
	{Name: EventStart, Src: []string{StateInitializing.String()}, Dst: StateStarted.String()},
	{Name: EventRelocate, Src: []string{StateStarted.String()}, Dst: StateRelocating.String()},
	{Name: EventCompleteRelocation, Src: []string{StateRelocating.String()}, Dst: StateStarted.String()},
	{Name: EventCancelRelocation, Src: []string{StateRelocating.String()}, Dst: StateStarted.String()},
	{Name: EventUnassign, Src: []string{
		StateInitializing.String(),
		StateStarted.String(),
		StateRelocating.String(),
	}, Dst: StateUnassigned.String()},
}

// newLifecycle returns a state machine positioned at s.
func newLifecycle(s State) *fsm.FSM {
	return fsm.NewFSM(s.String(), lifecycle, fsm.Callbacks{})
}

// nextState returns the state reached from s by event.
func nextState(s State, event string) (State, error) {
	f := newLifecycle(s)
	if err := f.Event(context.Background(), event); err != nil {
		return s, err
	}
	return ParseState(f.Current())
}

// Events lists the lifecycle events allowed from s.
func (s State) Events() []string {
	return newLifecycle(s).AvailableTransitions()
}
