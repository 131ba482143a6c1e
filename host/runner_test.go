package host

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/nf/intcode/intcode"
)

func TestRunnerConsole(t *testing.T) {
	var out strings.Builder
	r := NewRunner(Options{In: strings.NewReader("42 7\n"), Out: &out})
	m := intcode.New([]int64{3, 0, 3, 1, 4, 1, 4, 0, 99}, nil)
	if code := r.Run(m); code != 0 {
		t.Errorf("exit code %d, want 0", code)
	}
	if g, w := out.String(), "7\n42\n"; g != w {
		t.Errorf("output %q, want %q", g, w)
	}
}

func TestRunnerQueuedInputFirst(t *testing.T) {
	var out strings.Builder
	r := NewRunner(Options{In: strings.NewReader("2\n"), Out: &out})
	m := intcode.New([]int64{3, 0, 3, 1, 4, 0, 4, 1, 99}, []int64{1})
	if code := r.Run(m); code != 0 {
		t.Errorf("exit code %d, want 0", code)
	}
	if g, w := out.String(), "1\n2\n"; g != w {
		t.Errorf("output %q, want %q", g, w)
	}
}

func TestRunnerFault(t *testing.T) {
	r := NewRunner(Options{In: strings.NewReader(""), Out: &strings.Builder{}})
	if code := r.Run(intcode.New([]int64{42}, nil)); code != 1 {
		t.Errorf("exit code %d, want 1", code)
	}
}

func TestRunnerInputEOF(t *testing.T) {
	r := NewRunner(Options{In: strings.NewReader(""), Out: &strings.Builder{}})
	err := r.Exec(intcode.New([]int64{3, 0, 99}, nil), nil)
	if err == nil || !strings.Contains(err.Error(), "reading input") {
		t.Errorf("Exec error %v, want input error", err)
	}
}

func TestRunnerStepLimit(t *testing.T) {
	r := NewRunner(Options{MaxSteps: 100})
	err := r.Exec(intcode.New([]int64{1105, 1, 0}, nil), nil)
	if err != ErrStepLimit {
		t.Errorf("Exec error %v, want %v", err, ErrStepLimit)
	}
	if g := r.Steps(); g != 100 {
		t.Errorf("Steps() = %d, want 100", g)
	}
}

func TestRunnerScreenFollow(t *testing.T) {
	r := NewRunner(Options{Screen: true, Follow: true})
	m := intcode.New([]int64{
		104, 5, 104, 0, 104, 4, // ball at (5, 0)
		104, 2, 104, 0, 104, 3, // paddle at (2, 0)
		3, 100,
		104, 9, 104, 9, 4, 100,
		104, -1, 104, 0, 104, 500,
		99,
	}, nil)
	if err := r.Exec(m, nil); err != nil {
		t.Fatal(err)
	}
	s := r.Screen()
	if g := s.Tile(9, 9); g != 1 {
		t.Errorf("joystick read %d, want 1", g)
	}
	if g := s.Score(); g != 500 {
		t.Errorf("Score() = %d, want 500", g)
	}
}

type state struct {
	k  StateKind
	pc int64
}

func watchState(ch chan state) StateFunc {
	return func(m *intcode.Machine, k StateKind) {
		if k == QuietState {
			return
		}
		select {
		case ch <- state{k, m.PC}:
		default:
		}
	}
}

func waitState(t *testing.T, ch chan state, k StateKind) state {
	t.Helper()
	timeout := time.After(5 * time.Second)
	for {
		select {
		case s := <-ch:
			if s.k == k {
				return s
			}
		case <-timeout:
			t.Fatalf("timed out waiting for %v", k)
		}
	}
}

func TestRunnerDebug(t *testing.T) {
	states := make(chan state, 1000)
	r := NewRunner(Options{Dev: true, State: watchState(states)})
	m := intcode.New([]int64{
		1001, 20, 1, 20, // 0: count
		1105, 1, 0, // 4: loop
	}, nil)
	done := make(chan error)
	go func() { done <- r.Exec(m, make(chan bool)) }()

	r.Debug("b", 4)
	if s := waitState(t, states, BreakState); s.pc != 4 {
		t.Errorf("break at %d, want 4", s.pc)
	}
	r.Debug("s", 0)
	if s := waitState(t, states, PauseState); s.pc != 0 {
		t.Errorf("stepped to %d, want 0", s.pc)
	}
	r.Debug("exit", 0)
	if err := <-done; err != errExit {
		t.Errorf("Exec error %v, want %v", err, errExit)
	}
}

func TestRunnerHalt(t *testing.T) {
	r := NewRunner(Options{Dev: true})
	halt := make(chan bool)
	close(halt)
	if err := r.Exec(intcode.New([]int64{1105, 1, 0}, nil), halt); err != errHalt {
		t.Errorf("Exec error %v, want %v", err, errHalt)
	}
}

func TestRunnerReset(t *testing.T) {
	states := make(chan state, 1000)
	r := NewRunner(Options{Dev: true, State: watchState(states), Out: &strings.Builder{}})
	done := make(chan int)
	go func() { done <- r.Run(intcode.New([]int64{42}, nil)) }()

	waitState(t, states, HaltState)
	r.Reset(intcode.New([]int64{1105, 1, 0}, nil))
	waitState(t, states, ClearState)
	r.Debug("exit", 0)
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after exit")
	}
}

func TestBacklog(t *testing.T) {
	var b backlog
	if g := b.Lines(); g != nil {
		t.Errorf("empty backlog has lines %q", g)
	}
	for i := 0; i < 3; i++ {
		b.LazyPrintf("line %d", i)
	}
	if g, w := strings.Join(b.Lines(), ","), "line 0,line 1,line 2"; g != w {
		t.Errorf("Lines() = %q, want %q", g, w)
	}
	for i := 3; i < 150; i++ {
		b.LazyPrintf("line %d", i)
	}
	lines := b.Lines()
	if len(lines) != maxBacklog {
		t.Fatalf("got %d lines, want %d", len(lines), maxBacklog)
	}
	if g, w := lines[0], fmt.Sprintf("line %d", 150-maxBacklog); g != w {
		t.Errorf("oldest line %q, want %q", g, w)
	}
	if g := lines[maxBacklog-1]; g != "line 149" {
		t.Errorf("newest line %q, want line 149", g)
	}
	b.Reset()
	if g := b.Lines(); g != nil {
		t.Errorf("Lines() after Reset = %q", g)
	}
}
