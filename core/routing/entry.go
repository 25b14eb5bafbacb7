package routing

import "fmt"

// Entry describes one copy (primary or replica) of a shard. Entries are
// immutable: every transition returns a new *Entry, so a pointer obtained
// from a snapshot stays valid and unchanged for the lifetime of that snapshot.
//
// Within one snapshot each copy is represented by exactly one *Entry, and
// every iterator built over that snapshot hands out that same pointer.
type Entry struct {
	shardID          ShardID
	currentNodeID    string
	relocatingNodeID string
	primary          bool
	state            State
	version          int64
}

// NewUnassignedEntry returns an entry for a copy that is not placed yet.
func NewUnassignedEntry(shardID ShardID, primary bool) *Entry {
	return &Entry{shardID: shardID, primary: primary, state: StateUnassigned}
}

// NewEntry returns an entry in an arbitrary state. It is meant for snapshot
// producers and decoders; the node ids must be consistent with state.
func NewEntry(shardID ShardID, currentNodeID, relocatingNodeID string, primary bool, state State, version int64) (*Entry, error) {
	e := &Entry{
		shardID:          shardID,
		currentNodeID:    currentNodeID,
		relocatingNodeID: relocatingNodeID,
		primary:          primary,
		state:            state,
		version:          version,
	}
	if err := e.validate(); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *Entry) validate() error {
	switch e.state {
	case StateUnassigned:
		if e.currentNodeID != "" || e.relocatingNodeID != "" {
			return fmt.Errorf("routing: %s unassigned copy must not have nodes: %w", e.shardID, ErrIllegalTransition)
		}
	case StateInitializing, StateStarted:
		if e.currentNodeID == "" || e.relocatingNodeID != "" {
			return fmt.Errorf("routing: %s %s copy needs exactly one node: %w", e.shardID, e.state, ErrIllegalTransition)
		}
	case StateRelocating:
		if e.currentNodeID == "" || e.relocatingNodeID == "" {
			return fmt.Errorf("routing: %s relocating copy needs source and target node: %w", e.shardID, ErrIllegalTransition)
		}
	default:
		return fmt.Errorf("routing: %s: %w: unknown state %d", e.shardID, ErrIllegalTransition, e.state)
	}
	return nil
}

func (e *Entry) ShardID() ShardID { return e.shardID }

// CurrentNodeID is the node holding the copy, empty while unassigned.
func (e *Entry) CurrentNodeID() string { return e.currentNodeID }

// RelocatingNodeID is the relocation target, set only while relocating.
func (e *Entry) RelocatingNodeID() string { return e.relocatingNodeID }

func (e *Entry) Primary() bool  { return e.primary }
func (e *Entry) State() State   { return e.state }
func (e *Entry) Version() int64 { return e.version }

// Active reports whether the copy is started and eligible to serve requests.
func (e *Entry) Active() bool { return e.state == StateStarted }

func (e *Entry) Unassigned() bool   { return e.state == StateUnassigned }
func (e *Entry) Initializing() bool { return e.state == StateInitializing }
func (e *Entry) Relocating() bool   { return e.state == StateRelocating }

// Assigned reports whether the copy is placed on a node.
func (e *Entry) Assigned() bool { return e.currentNodeID != "" }

func (e *Entry) String() string {
	role := "r"
	if e.primary {
		role = "p"
	}
	s := fmt.Sprintf("%s[%s] node[%s] %s", e.shardID, role, e.currentNodeID, e.state)
	if e.relocatingNodeID != "" {
		s += fmt.Sprintf(" -> node[%s]", e.relocatingNodeID)
	}
	return s
}

// === transitions ===

func (e *Entry) next(state State, current, relocating string) *Entry {
	return &Entry{
		shardID:          e.shardID,
		currentNodeID:    current,
		relocatingNodeID: relocating,
		primary:          e.primary,
		state:            state,
		version:          e.version + 1,
	}
}

// clone returns an equal entry with a new identity.
func (e *Entry) clone() *Entry {
	c := *e
	return &c
}

func (e *Entry) illegal(event string) error {
	return fmt.Errorf("routing: %s %s from %s: %w", event, e.shardID, e.state, ErrIllegalTransition)
}

func (e *Entry) transition(event, current, relocating string) (*Entry, error) {
	state, err := nextState(e.state, event)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", e.illegal(event), err)
	}
	return e.next(state, current, relocating), nil
}

// Initialize places an unassigned copy on nodeID.
func (e *Entry) Initialize(nodeID string) (*Entry, error) {
	if nodeID == "" {
		return nil, e.illegal(EventInitialize)
	}
	return e.transition(EventInitialize, nodeID, "")
}

// Start marks an initializing copy as started.
func (e *Entry) Start() (*Entry, error) {
	return e.transition(EventStart, e.currentNodeID, "")
}

// Relocate begins moving a started copy to targetNodeID.
func (e *Entry) Relocate(targetNodeID string) (*Entry, error) {
	if targetNodeID == "" || targetNodeID == e.currentNodeID {
		return nil, e.illegal(EventRelocate)
	}
	return e.transition(EventRelocate, e.currentNodeID, targetNodeID)
}

// CompleteRelocation finishes a relocation: the copy is started on the target.
func (e *Entry) CompleteRelocation() (*Entry, error) {
	return e.transition(EventCompleteRelocation, e.relocatingNodeID, "")
}

// CancelRelocation aborts a relocation and keeps the copy on its source node.
func (e *Entry) CancelRelocation() (*Entry, error) {
	return e.transition(EventCancelRelocation, e.currentNodeID, "")
}

// Unassign drops the copy from its node, e.g. after the node left.
func (e *Entry) Unassign() (*Entry, error) {
	return e.transition(EventUnassign, "", "")
}
