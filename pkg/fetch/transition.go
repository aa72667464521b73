package fetch

import (
	"errors"
	"fmt"
)

// ErrIllegalTransition is matched by every *IllegalTransitionError.
var ErrIllegalTransition = errors.New("fetch: illegal transition")

// ErrUnknown is the error of a Failed state reached by a Rejected event
// that carried no error.
var ErrUnknown = errors.New("fetch: request failed without an error")

// IllegalTransitionError reports an event that is not legal from the
// current state, such as a Resolved event arriving while not Fetching.
// It signals a defect in the caller, not a user-visible failure.
type IllegalTransitionError struct {
	From  Kind
	Event string
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("fetch: illegal transition: %s from %s", e.Event, e.From)
}

// Is reports whether target is ErrIllegalTransition.
func (e *IllegalTransitionError) Is(target error) bool {
	return target == ErrIllegalTransition
}

// Transition computes the state that follows current when ev is applied.
//
//	StartFetch  any state  -> Fetching
//	Resolved    Fetching   -> Success
//	Rejected    Fetching   -> Failed (a nil error becomes ErrUnknown)
//
// Any other combination returns current unchanged together with an
// *IllegalTransitionError. A nil current state is treated as NotFetching.
// Transition never panics.
func Transition[T any](current State[T], ev Event[T]) (State[T], error) {
	if current == nil {
		current = NotFetching[T]{}
	}

	switch e := ev.(type) {
	case StartFetch[T]:
		return Fetching[T]{}, nil

	case Resolved[T]:
		if current.Kind() != KindFetching {
			return current, &IllegalTransitionError{From: current.Kind(), Event: e.eventName()}
		}
		return Success[T]{Data: e.Data}, nil

	case Rejected[T]:
		if current.Kind() != KindFetching {
			return current, &IllegalTransitionError{From: current.Kind(), Event: e.eventName()}
		}
		if e.Err == nil {
			return Failed[T]{Err: ErrUnknown}, nil
		}
		return Failed[T]{Err: e.Err}, nil

	default:
		return current, &IllegalTransitionError{From: current.Kind(), Event: EventName(ev)}
	}
}
