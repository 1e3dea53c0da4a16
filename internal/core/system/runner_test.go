package system

import (
	"errors"
	"testing"
	"time"
)

type recorder struct {
	name  string
	phase Phase
	log   *[]string
	err   error
}

func (r *recorder) Name() string { return r.name }
func (r *recorder) Phase() Phase { return r.phase }
func (r *recorder) Update(time.Duration) error {
	*r.log = append(*r.log, r.name)
	return r.err
}

func TestRunnerPhaseOrder(t *testing.T) {
	var log []string
	r := NewRunner()
	r.Register(&recorder{name: "cleanup", phase: PhaseCleanup, log: &log})
	r.Register(&recorder{name: "tick", phase: PhaseUpdate, log: &log})
	r.Register(&recorder{name: "events", phase: PhasePreUpdate, log: &log})
	r.Register(&recorder{name: "tick2", phase: PhaseUpdate, log: &log})

	if err := r.Tick(time.Millisecond); err != nil {
		t.Fatalf("Tick: %v", err)
	}
	want := []string{"events", "tick", "tick2", "cleanup"}
	if len(log) != len(want) {
		t.Fatalf("ran %v, want %v", log, want)
	}
	for i := range want {
		if log[i] != want[i] {
			t.Fatalf("ran %v, want %v", log, want)
		}
	}
}

func TestRunnerStopsAtFailure(t *testing.T) {
	var log []string
	boom := errors.New("boom")
	r := NewRunner()
	r.Register(&recorder{name: "a", phase: PhaseUpdate, log: &log, err: boom})
	r.Register(&recorder{name: "b", phase: PhaseCleanup, log: &log})

	err := r.Tick(0)
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
	if len(log) != 1 {
		t.Fatalf("ran %v after failure", log)
	}
}

func TestRunnerTickPhase(t *testing.T) {
	var log []string
	r := NewRunner()
	r.Register(&recorder{name: "a", phase: PhaseUpdate, log: &log})
	r.Register(&recorder{name: "b", phase: PhasePersist, log: &log})
	if err := r.TickPhase(PhasePersist, 0); err != nil {
		t.Fatalf("TickPhase: %v", err)
	}
	if len(log) != 1 || log[0] != "b" {
		t.Fatalf("ran %v", log)
	}
	if PhasePersist.String() != "persist" || Phase(42).String() != "unknown" {
		t.Errorf("Phase.String mismatch")
	}
}
