package fetch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/floaties-dev/floaties/pkg/loop"
)

// gate is an Op whose completion is released by the test.
type gate struct {
	release chan struct{}
	data    string
	err     error
}

func newGate(data string, err error) *gate {
	return &gate{release: make(chan struct{}), data: data, err: err}
}

func (g *gate) op(ctx context.Context) (string, error) {
	<-g.release
	return g.data, g.err
}

func step(t *testing.T, l *loop.Loop) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := l.Step(ctx); err != nil {
		t.Fatalf("Step() error = %v", err)
	}
}

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("counter Write() error: %v", err)
	}
	return m.GetCounter().GetValue()
}

func TestRequestSuccess(t *testing.T) {
	l := loop.New()
	req := NewRequest[string](l, WithName("post"))

	var seen []Kind
	req.OnChange(func(s State[string]) { seen = append(seen, s.Kind()) })

	if req.State().Kind() != KindNotFetching {
		t.Fatalf("initial state = %s, want NotFetching", req.State().Kind())
	}

	g := newGate("markdown", nil)
	if !req.Start(context.Background(), g.op) {
		t.Fatal("Start returned false")
	}
	if req.State().Kind() != KindFetching {
		t.Fatalf("after Start state = %s, want Fetching", req.State().Kind())
	}

	close(g.release)
	step(t, l)

	data, ok := Data(req.State())
	if !ok || data != "markdown" {
		t.Fatalf("state = %#v, want Success(markdown)", req.State())
	}
	if len(seen) != 2 || seen[0] != KindFetching || seen[1] != KindSuccess {
		t.Errorf("transitions = %v, want [Fetching Success]", seen)
	}
}

func TestRequestFailure(t *testing.T) {
	l := loop.New()
	req := NewRequest[string](l)

	netErr := errors.New("network down")
	g := newGate("", netErr)
	req.Start(context.Background(), g.op)
	close(g.release)
	step(t, l)

	err, ok := Err(req.State())
	if !ok || !errors.Is(err, netErr) {
		t.Fatalf("state = %#v, want Failed(network down)", req.State())
	}
}

func TestRequestRefetchFromSuccess(t *testing.T) {
	l := loop.New()
	req := NewRequest[string](l)

	first := newGate("data", nil)
	req.Start(context.Background(), first.op)
	close(first.release)
	step(t, l)

	second := newGate("newData", nil)
	req.Start(context.Background(), second.op)
	if req.State().Kind() != KindFetching {
		t.Fatalf("re-fetch state = %s, want Fetching", req.State().Kind())
	}

	close(second.release)
	step(t, l)
	if d, _ := Data(req.State()); d != "newData" {
		t.Errorf("data = %q, want newData", d)
	}
}

func TestRequestSupersededCompletionDiscarded(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(MetricsConfig{Registry: reg})
	l := loop.New()
	req := NewRequest[string](l, WithMetrics(m))

	slow := newGate("slow", nil)
	fast := newGate("fast", nil)
	req.Start(context.Background(), slow.op)
	req.Start(context.Background(), fast.op)

	close(fast.release)
	step(t, l)
	close(slow.release)
	step(t, l)

	if d, _ := Data(req.State()); d != "fast" {
		t.Errorf("data = %q, want fast (late slow response must be discarded)", d)
	}
	if got := counterValue(t, m.discarded.WithLabelValues(DiscardSuperseded)); got != 1 {
		t.Errorf("superseded discards = %v, want 1", got)
	}
	if got := counterValue(t, m.started); got != 2 {
		t.Errorf("started = %v, want 2", got)
	}
}

func TestRequestAbandonedCompletionDiscarded(t *testing.T) {
	l := loop.New()
	req := NewRequest[string](l)

	g := newGate("late", nil)
	req.Start(context.Background(), g.op)
	req.Abandon()
	req.Abandon()

	close(g.release)
	step(t, l)

	if req.State().Kind() != KindFetching {
		t.Errorf("abandoned state = %s, want frozen at Fetching", req.State().Kind())
	}
	if req.Start(context.Background(), g.op) {
		t.Error("Start on abandoned request should return false")
	}
	if !req.Abandoned() {
		t.Error("Abandoned() = false")
	}
}

func TestRequestGuardDiscardsStaleCompletion(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(MetricsConfig{Registry: reg})
	l := loop.New()

	current := true
	req := NewRequest[string](l, WithGuard(func() bool { return current }), WithMetrics(m))

	g := newGate("stale", nil)
	req.Start(context.Background(), g.op)
	current = false

	close(g.release)
	step(t, l)

	if req.State().Kind() != KindFetching {
		t.Errorf("state = %s, want Fetching (completion must be discarded)", req.State().Kind())
	}
	if got := counterValue(t, m.discarded.WithLabelValues(DiscardStale)); got != 1 {
		t.Errorf("stale discards = %v, want 1", got)
	}
}

func TestRequestApplyIgnoresIllegalTransition(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(MetricsConfig{Registry: reg})
	req := NewRequest[string](loop.Immediate{}, WithMetrics(m))

	changes := 0
	req.OnChange(func(State[string]) { changes++ })

	s := req.Apply(Resolved[string]{Data: "orphan"})
	if s.Kind() != KindNotFetching {
		t.Errorf("state = %s, want NotFetching", s.Kind())
	}
	if changes != 0 {
		t.Errorf("listeners notified %d times on illegal transition", changes)
	}
	if got := counterValue(t, m.illegal); got != 1 {
		t.Errorf("illegal transitions = %v, want 1", got)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.recordStarted()
	m.recordCompleted(OutcomeSuccess, 0.1)
	m.recordDiscarded(DiscardStale)
	m.recordIllegal()
}
