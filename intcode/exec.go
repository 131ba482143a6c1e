// Package intcode provides an implementation of the Intcode computer,
// called Machine, that can be used to execute Intcode programs.
package intcode

import (
	"errors"
	"fmt"
)

// Machine is an Intcode computer.
type Machine struct {
	Mem     Memory
	PC      int64
	RelBase int64
	Halted  bool

	in  queue
	out queue
	err error // sticky fatal error from a run wrapper
}

// New returns a Machine loaded with a copy of program, with input queued in
// the order given.
func New(program, input []int64) *Machine {
	m := &Machine{Mem: make(Memory, len(program))}
	copy(m.Mem, program)
	m.in.push(input...)
	return m
}

// InputSource supplies a value to an input instruction when the input queue
// is empty.
type InputSource interface {
	Input() int64
}

// InputFunc adapts a function to an InputSource.
type InputFunc func() int64

func (f InputFunc) Input() int64 { return f() }

// Constant is an InputSource that always supplies the same value.
type Constant int64

func (c Constant) Input() int64 { return int64(c) }

// Exec executes the instruction at m.PC. If the instruction is an input and
// the queue is empty, src supplies the value; if src is nil Exec returns a
// Fault with code InputUnderflow. A faulting instruction leaves the machine
// unchanged. Exec does nothing once the machine has halted.
func (m *Machine) Exec(src InputSource) (err error) {
	if m.Halted {
		return nil
	}
	var (
		pc        = m.PC
		word      int64
		op        Op
		modes     Modes
		operand   = func(i int) int64 { return m.Mem.Load(pc + 1 + int64(i)) }
		read      = func(i int) int64 { return m.read(operand(i), modes.Mode(i)) }
		target    = func(i int) int64 { return m.target(operand(i), modes.Mode(i)) }
		next      int64
		dst       int64
		inputWord int64
	)
	defer func() {
		if e := recover(); e != nil {
			if code, ok := e.(FaultCode); ok {
				err = Fault{
					Code: code,
					Op:   op,
					Addr: pc,
					Word: word,
				}
			} else {
				panic(e)
			}
		}
	}()

	if pc < 0 {
		panic(BadAddress)
	}
	word = m.Mem.Load(pc)
	op, modes = Decode(word)
	if !op.Valid() {
		panic(UnknownOpcode)
	}
	next = pc + op.Len()

	switch op {
	case Add:
		dst = target(2)
		m.Mem.Store(dst, read(0)+read(1))
	case Mul:
		dst = target(2)
		m.Mem.Store(dst, read(0)*read(1))
	case In:
		dst = target(0)
		if v, ok := m.in.pop(); ok {
			inputWord = v
		} else if src != nil {
			inputWord = src.Input()
		} else {
			panic(InputUnderflow)
		}
		m.Mem.Store(dst, inputWord)
	case Out:
		m.out.push(read(0))
	case JumpTrue:
		if a, b := read(0), read(1); a != 0 {
			next = b
		}
	case JumpFalse:
		if a, b := read(0), read(1); a == 0 {
			next = b
		}
	case Less:
		dst = target(2)
		m.Mem.Store(dst, boolWord(read(0) < read(1)))
	case Equal:
		dst = target(2)
		m.Mem.Store(dst, boolWord(read(0) == read(1)))
	case AdjustBase:
		m.RelBase += read(0)
	case Halt:
		m.Halted = true
		next = pc
	default:
		panic(fmt.Errorf("internal error: %v not implemented", op))
	}

	m.PC = next
	return nil
}

func (m *Machine) read(param int64, mode Mode) int64 {
	switch mode {
	case Position:
		return m.load(param)
	case Immediate:
		return param
	case Relative:
		return m.load(m.RelBase + param)
	}
	panic(BadMode)
}

// target returns the address an instruction writes to.
func (m *Machine) target(param int64, mode Mode) int64 {
	var addr int64
	switch mode {
	case Position:
		addr = param
	case Immediate:
		panic(ImmediateWrite)
	case Relative:
		addr = m.RelBase + param
	default:
		panic(BadMode)
	}
	if addr < 0 || addr >= MaxMemory {
		panic(BadAddress)
	}
	return addr
}

func (m *Machine) load(addr int64) int64 {
	if addr < 0 {
		panic(BadAddress)
	}
	return m.Mem.Load(addr)
}

func boolWord(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

// Instr is a decoded instruction together with its raw operands.
type Instr struct {
	Addr  int64
	Word  int64
	Op    Op
	Modes Modes
	Args  []int64
}

// Instr decodes the instruction at addr without executing it.
// An invalid opcode yields an Instr with no Args.
func (m *Machine) Instr(addr int64) Instr {
	word := m.Mem.Load(addr)
	op, modes := Decode(word)
	in := Instr{Addr: addr, Word: word, Op: op, Modes: modes}
	if op.Valid() {
		for i := 0; i < op.Params(); i++ {
			in.Args = append(in.Args, m.Mem.Load(addr+1+int64(i)))
		}
	}
	return in
}

// OpAddr returns the memory address that argument i of in refers to,
// and reports whether it refers to memory at all (immediate arguments
// do not).
func (m *Machine) OpAddr(in Instr, i int) (int64, bool) {
	if i >= len(in.Args) {
		return 0, false
	}
	switch in.Modes.Mode(i) {
	case Position:
		return in.Args[i], in.Args[i] >= 0
	case Relative:
		addr := m.RelBase + in.Args[i]
		return addr, addr >= 0
	}
	return 0, false
}

// Fault is returned by Exec when an instruction cannot be executed.
type Fault struct {
	Code FaultCode
	Op   Op
	Addr int64
	Word int64
}

func (e Fault) Error() string {
	switch {
	case e.Code == UnknownOpcode:
		return fmt.Sprintf("%s %d at %d", e.Code, e.Word, e.Addr)
	case e.Code == BadAddress && e.Addr < 0:
		return fmt.Sprintf("%s: pc %d", e.Code, e.Addr)
	}
	return fmt.Sprintf("%s executing %s at %d", e.Code, e.Op, e.Addr)
}

// Unwrap returns ErrInputUnderflow or ErrMalformedProgram.
func (e Fault) Unwrap() error {
	if e.Code == InputUnderflow {
		return ErrInputUnderflow
	}
	return ErrMalformedProgram
}

var (
	ErrMalformedProgram = errors.New("malformed program")
	ErrInputUnderflow   = errors.New("input underflow")
)

// FaultCode signifies the condition that stopped an instruction.
type FaultCode byte

const (
	UnknownOpcode  FaultCode = 0x01
	ImmediateWrite FaultCode = 0x02
	BadMode        FaultCode = 0x03
	BadAddress     FaultCode = 0x04
	InputUnderflow FaultCode = 0x05
)

func (c FaultCode) String() string {
	if s, ok := map[FaultCode]string{
		UnknownOpcode:  "unknown opcode",
		ImmediateWrite: "immediate mode write",
		BadMode:        "bad addressing mode",
		BadAddress:     "bad address",
		InputUnderflow: "input underflow",
	}[c]; ok {
		return s
	}
	return fmt.Sprintf("unknown (%.2x)", byte(c))
}
