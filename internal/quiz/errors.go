package quiz

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidRange      = errors.New("invalid slide range")
	ErrInvalidTransition = errors.New("invalid quiz transition")
)

// RangeError reports a range that does not fit the deck.
type RangeError struct {
	Start, End int
	Len        int
	Reason     string
}

func (e *RangeError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s [%d, %d] for deck of %d: %s", ErrInvalidRange, e.Start, e.End, e.Len, e.Reason)
	}
	return fmt.Sprintf("%s [%d, %d] for deck of %d", ErrInvalidRange, e.Start, e.End, e.Len)
}

func (e *RangeError) Unwrap() error { return ErrInvalidRange }

// TransitionError reports a session method called outside its precondition.
type TransitionError struct {
	Op    string
	State State
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s: %s not allowed in state %s", ErrInvalidTransition, e.Op, e.State)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }
