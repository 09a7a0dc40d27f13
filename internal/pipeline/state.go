package pipeline

import (
	"errors"
	"fmt"
)

// State is the furthest step a file reached.
type State int

const (
	StatePending State = iota
	// StateLoaded is never reported on its own: Codec.Load decodes the file
	// and extracts heights in one call, so success lands on StateHeightExtracted.
	StateLoaded
	StateHeightExtracted
	StateEdgesBuilt
	StatePixelsEncoded
	StateSaved
)

var stateNames = [...]string{"pending", "loaded", "height-extracted", "edges-built", "pixels-encoded", "saved"}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateNames[s]
}

// Failure kinds. All are per file; the run continues.
var (
	ErrDecode = errors.New("decode failure")
	ErrEncode = errors.New("encode failure")
	ErrVerify = errors.New("verify failure")
)

// FileError records which file failed and in what state.
type FileError struct {
	Path  string
	State State // last state reached before the failure
	Kind  error // ErrDecode, ErrEncode, ErrVerify, or nil for other failures
	Err   error
}

func (e *FileError) Error() string {
	if e.Kind != nil {
		return fmt.Sprintf("%s: %v after %s: %v", e.Path, e.Kind, e.State, e.Err)
	}
	return fmt.Sprintf("%s: failed after %s: %v", e.Path, e.State, e.Err)
}

func (e *FileError) Unwrap() []error {
	if e.Kind != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Err}
}
