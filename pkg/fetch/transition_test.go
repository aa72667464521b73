package fetch

import (
	"errors"
	"testing"
)

func allStates() []State[string] {
	return []State[string]{
		nil,
		NotFetching[string]{},
		Fetching[string]{},
		Success[string]{Data: "old"},
		Failed[string]{Err: errors.New("old")},
	}
}

func TestTransitionTable(t *testing.T) {
	boom := errors.New("boom")
	events := []Event[string]{
		StartFetch[string]{},
		Resolved[string]{Data: "new"},
		Rejected[string]{Err: boom},
	}

	for _, s := range allStates() {
		for _, ev := range events {
			name := KindOf(s).String() + "/" + EventName(ev)
			t.Run(name, func(t *testing.T) {
				next, err := Transition(s, ev)
				if next == nil {
					t.Fatal("Transition returned nil state")
				}

				fetching := KindOf(s) == KindFetching
				switch ev.(type) {
				case StartFetch[string]:
					if err != nil {
						t.Fatalf("StartFetch error = %v", err)
					}
					if next.Kind() != KindFetching {
						t.Errorf("next = %s, want Fetching", next.Kind())
					}

				case Resolved[string]:
					if !fetching {
						assertIllegal(t, s, next, err)
						return
					}
					if data, ok := Data(next); !ok || data != "new" {
						t.Errorf("next = %#v, want Success(new)", next)
					}

				case Rejected[string]:
					if !fetching {
						assertIllegal(t, s, next, err)
						return
					}
					if e, ok := Err(next); !ok || e != boom {
						t.Errorf("next = %#v, want Failed(boom)", next)
					}
				}
			})
		}
	}
}

func assertIllegal(t *testing.T, before, after State[string], err error) {
	t.Helper()
	if !errors.Is(err, ErrIllegalTransition) {
		t.Fatalf("error = %v, want ErrIllegalTransition", err)
	}
	var ite *IllegalTransitionError
	if !errors.As(err, &ite) {
		t.Fatalf("error %T is not *IllegalTransitionError", err)
	}
	if ite.From != KindOf(before) {
		t.Errorf("From = %s, want %s", ite.From, KindOf(before))
	}
	if KindOf(after) != KindOf(before) {
		t.Errorf("state changed from %s to %s on illegal event", KindOf(before), KindOf(after))
	}
}

func TestRefetchPassesThroughFetching(t *testing.T) {
	var s State[string] = Success[string]{Data: "data"}

	s, err := Transition(s, Event[string](StartFetch[string]{}))
	if err != nil || s.Kind() != KindFetching {
		t.Fatalf("StartFetch from Success = %v, %v; want Fetching", s, err)
	}
	if _, ok := Data(s); ok {
		t.Error("Fetching must not carry the previous data")
	}

	s, err = Transition(s, Event[string](Resolved[string]{Data: "newData"}))
	if err != nil {
		t.Fatalf("Resolved error = %v", err)
	}
	if d, _ := Data(s); d != "newData" {
		t.Errorf("data = %q, want newData", d)
	}
}

func TestTransitionNilEvent(t *testing.T) {
	s, err := Transition[string](Fetching[string]{}, nil)
	if !errors.Is(err, ErrIllegalTransition) {
		t.Fatalf("error = %v, want ErrIllegalTransition", err)
	}
	if s.Kind() != KindFetching {
		t.Errorf("state = %s, want Fetching", s.Kind())
	}
}

func TestRejectedWithoutError(t *testing.T) {
	s, err := Transition(State[string](Fetching[string]{}), Event[string](Rejected[string]{}))
	if err != nil {
		t.Fatalf("Rejected error = %v", err)
	}
	got, ok := Err(s)
	if !ok || !errors.Is(got, ErrUnknown) {
		t.Errorf("Err = %v, %v; want ErrUnknown", got, ok)
	}
}

func TestKindString(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindNotFetching, "NotFetching"},
		{KindFetching, "Fetching"},
		{KindSuccess, "Success"},
		{KindFailed, "Failed"},
		{Kind(99), "Unknown"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("Kind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}
