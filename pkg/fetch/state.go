package fetch

// Kind identifies the active variant of a State.
type Kind uint8

const (
	KindNotFetching Kind = iota // No fetch issued yet
	KindFetching                // Fetch in flight
	KindSuccess                 // Data successfully loaded
	KindFailed                  // Fetch failed
)

// String returns the variant name.
func (k Kind) String() string {
	switch k {
	case KindNotFetching:
		return "NotFetching"
	case KindFetching:
		return "Fetching"
	case KindSuccess:
		return "Success"
	case KindFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// State is the state of one asynchronous request. It is a closed set: the
// only implementations are NotFetching, Fetching, Success and Failed.
type State[T any] interface {
	Kind() Kind
	isState(*T)
}

// NotFetching is the initial state.
type NotFetching[T any] struct{}

// Fetching means a request is in flight.
type Fetching[T any] struct{}

// Success holds the data of a completed request.
type Success[T any] struct {
	Data T
}

// Failed holds the error of a failed request.
type Failed[T any] struct {
	Err error
}

func (NotFetching[T]) Kind() Kind { return KindNotFetching }
func (Fetching[T]) Kind() Kind    { return KindFetching }
func (Success[T]) Kind() Kind     { return KindSuccess }
func (Failed[T]) Kind() Kind      { return KindFailed }

func (NotFetching[T]) isState(*T) {}
func (Fetching[T]) isState(*T)    {}
func (Success[T]) isState(*T)     {}
func (Failed[T]) isState(*T)      {}

// KindOf returns the kind of s, treating nil as NotFetching.
func KindOf[T any](s State[T]) Kind {
	if s == nil {
		return KindNotFetching
	}
	return s.Kind()
}

// Data returns the payload of a Success state.
func Data[T any](s State[T]) (T, bool) {
	if ok, is := s.(Success[T]); is {
		return ok.Data, true
	}
	var zero T
	return zero, false
}

// Err returns the error of a Failed state.
func Err[T any](s State[T]) (error, bool) {
	if f, is := s.(Failed[T]); is {
		return f.Err, true
	}
	return nil, false
}

// Event drives a State transition. It is a closed set: StartFetch,
// Resolved and Rejected.
type Event[T any] interface {
	eventName() string
	isEvent(*T)
}

// StartFetch begins (or restarts) a request.
type StartFetch[T any] struct{}

// Resolved completes an in-flight request with data.
type Resolved[T any] struct {
	Data T
}

// Rejected completes an in-flight request with an error.
type Rejected[T any] struct {
	Err error
}

func (StartFetch[T]) eventName() string { return "StartFetch" }
func (Resolved[T]) eventName() string   { return "Resolved" }
func (Rejected[T]) eventName() string   { return "Rejected" }

func (StartFetch[T]) isEvent(*T) {}
func (Resolved[T]) isEvent(*T)   {}
func (Rejected[T]) isEvent(*T)   {}

// EventName returns the name of the event variant.
func EventName[T any](ev Event[T]) string {
	if ev == nil {
		return "<nil>"
	}
	return ev.eventName()
}
