package routing

import "fmt"

// State is the lifecycle state of a single shard copy.
type State uint8

const (
	// StateUnassigned means the copy has not been placed on any node.
	StateUnassigned State = iota
	// StateInitializing means the copy is being recovered on its node.
	StateInitializing
	// StateStarted means the copy is active and may serve requests.
	StateStarted
	// StateRelocating means a started copy is being moved to another node.
	StateRelocating
)

var stateNames = [...]string{
	StateUnassigned:   "unassigned",
	StateInitializing: "initializing",
	StateStarted:      "started",
	StateRelocating:   "relocating",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("state(%d)", uint8(s))
}

// ParseState returns the State named by s.
func ParseState(s string) (State, error) {
	for i, name := range stateNames {
		if name == s {
			return State(i), nil
		}
	}
	return 0, fmt.Errorf("routing: unknown state %q", s)
}

func (s State) MarshalText() ([]byte, error) {
	if int(s) >= len(stateNames) {
		return nil, fmt.Errorf("routing: unknown state %d", uint8(s))
	}
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(text []byte) error {
	v, err := ParseState(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}
