package fetch

import (
	"fmt"
	"strings"
)

// Cases holds one handler per State variant. All four are required:
// leaving one out is a defect, and Match refuses to fall back to a default.
type Cases[T, R any] struct {
	NotFetching func() R
	Fetching    func() R
	Success     func(T) R
	Failed      func(error) R
}

// Validate reports which handlers are missing.
func (c Cases[T, R]) Validate() error {
	var missing []string
	if c.NotFetching == nil {
		missing = append(missing, KindNotFetching.String())
	}
	if c.Fetching == nil {
		missing = append(missing, KindFetching.String())
	}
	if c.Success == nil {
		missing = append(missing, KindSuccess.String())
	}
	if c.Failed == nil {
		missing = append(missing, KindFailed.String())
	}
	if len(missing) > 0 {
		return fmt.Errorf("fetch: missing cases: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Match renders s with the handler for its variant.
// It panics if cases is incomplete, so a missing UI state shows up in the
// first test that renders the component rather than as blank output.
func Match[T, R any](s State[T], cases Cases[T, R]) R {
	if err := cases.Validate(); err != nil {
		panic(err.Error())
	}
	if s == nil {
		return cases.NotFetching()
	}

	switch v := s.(type) {
	case NotFetching[T]:
		return cases.NotFetching()
	case Fetching[T]:
		return cases.Fetching()
	case Success[T]:
		return cases.Success(v.Data)
	case Failed[T]:
		return cases.Failed(v.Err)
	default:
		panic(fmt.Sprintf("fetch: unknown state variant %T", s))
	}
}
