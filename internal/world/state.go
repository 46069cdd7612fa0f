package world

import (
	"errors"
	"fmt"
)

// ChunkState is the lifecycle stage of a chunk.
type ChunkState uint8

const (
	StateEmpty      ChunkState = iota // no voxel data
	StateGenerating                   // voxel data being produced
	StateDirty                        // voxel data present, mesh stale or missing
	StateLoaded                       // voxel data and mesh up to date
)

func (s ChunkState) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateGenerating:
		return "generating"
	case StateDirty:
		return "dirty"
	case StateLoaded:
		return "loaded"
	}
	return fmt.Sprintf("ChunkState(%d)", uint8(s))
}

// HasData reports whether a chunk in state s holds voxel data.
func (s ChunkState) HasData() bool {
	return s == StateDirty || s == StateLoaded
}

// Event drives chunk state transitions.
type Event uint8

const (
	EventDispatch Event = iota
	EventGenerated
	EventGenerationFailed
	EventMeshed
	EventModified
)

func (e Event) String() string {
	switch e {
	case EventDispatch:
		return "dispatch"
	case EventGenerated:
		return "generated"
	case EventGenerationFailed:
		return "generation_failed"
	case EventMeshed:
		return "meshed"
	case EventModified:
		return "modified"
	}
	return fmt.Sprintf("Event(%d)", uint8(e))
}

// ErrInvalidTransition matches every *TransitionError.
var ErrInvalidTransition = errors.New("invalid chunk state transition")

// TransitionError reports an event that is not legal in a state.
type TransitionError struct {
	From  ChunkState
	Event Event
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("chunk: %s not allowed in state %s", e.Event, e.From)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }

// Next returns the state reached by applying e to s.
func (s ChunkState) Next(e Event) (ChunkState, error) {
	switch {
	case s == StateEmpty && e == EventDispatch:
		return StateGenerating, nil
	case s == StateGenerating && e == EventGenerated:
		return StateDirty, nil
	case s == StateGenerating && e == EventGenerationFailed:
		return StateEmpty, nil
	case s == StateDirty && e == EventMeshed:
		return StateLoaded, nil
	case s.HasData() && e == EventModified:
		return StateDirty, nil
	}
	return s, &TransitionError{From: s, Event: e}
}
