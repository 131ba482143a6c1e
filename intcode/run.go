package intcode

import (
	"errors"
	"fmt"
)

// Enqueue appends values to the input queue.
func (m *Machine) Enqueue(v ...int64) { m.in.push(v...) }

// Output returns a copy of the pending output without draining it.
func (m *Machine) Output() []int64 {
	return append([]int64(nil), m.out...)
}

// Drain returns the pending output, oldest first, and empties the queue.
func (m *Machine) Drain() []int64 {
	out := m.out
	m.out = nil
	return out
}

// Pending returns the number of queued input values.
func (m *Machine) Pending() int { return len(m.in) }

// Peek returns the word at addr. It never faults.
func (m *Machine) Peek(addr int64) int64 { return m.Mem.Load(addr) }

// Err returns the fatal error that stopped the machine, if any.
func (m *Machine) Err() error { return m.err }

// exec runs one instruction on behalf of a run wrapper,
// recording any error as fatal.
func (m *Machine) exec(src InputSource) error {
	if m.err != nil {
		return m.err
	}
	if err := m.Exec(src); err != nil {
		m.err = err
		return err
	}
	return nil
}

// Run executes the program until it halts and returns the accumulated
// output. The output queue is not drained.
func (m *Machine) Run() ([]int64, error) {
	for !m.Halted {
		if err := m.exec(nil); err != nil {
			return m.Output(), err
		}
	}
	return m.Output(), nil
}

// RunUntilOutput executes until an output value is available and returns it.
// It reports false if the machine halts with no output pending.
func (m *Machine) RunUntilOutput() (int64, bool, error) {
	return m.runUntilOutput(nil)
}

// RunUntilOutputWith is like RunUntilOutput, but discards any queued input
// on entry and asks src for a value whenever an input instruction finds the
// queue empty.
func (m *Machine) RunUntilOutputWith(src InputSource) (int64, bool, error) {
	m.in.clear()
	return m.runUntilOutput(src)
}

func (m *Machine) runUntilOutput(src InputSource) (int64, bool, error) {
	for !m.Halted && len(m.out) == 0 {
		if err := m.exec(src); err != nil {
			return 0, false, err
		}
	}
	v, ok := m.out.pop()
	return v, ok, nil
}

// StepResult describes the outcome of StepWith.
type StepResult int

const (
	StepRan     StepResult = iota // executed an instruction that produced no output
	StepOutput                    // executed an output instruction
	StepBlocked                   // waiting on input; nothing executed
	StepHalted                    // the machine is halted
)

func (r StepResult) String() string {
	switch r {
	case StepRan:
		return "ran"
	case StepOutput:
		return "output"
	case StepBlocked:
		return "blocked"
	case StepHalted:
		return "halted"
	}
	return fmt.Sprintf("StepResult(%d)", int(r))
}

// StepWith executes exactly one instruction. If the instruction needs input
// and the queue is empty, src supplies it; with a nil src StepWith reports
// StepBlocked and leaves the machine ready to retry the same instruction.
// The result is meaningless when the error is non-nil.
func (m *Machine) StepWith(src InputSource) (StepResult, error) {
	if m.err != nil {
		return StepRan, m.err
	}
	if m.Halted {
		return StepHalted, nil
	}
	n := len(m.out)
	if err := m.Exec(src); err != nil {
		if errors.Is(err, ErrInputUnderflow) {
			return StepBlocked, nil
		}
		m.err = err
		return StepRan, err
	}
	switch {
	case m.Halted:
		return StepHalted, nil
	case len(m.out) > n:
		return StepOutput, nil
	}
	return StepRan, nil
}
