package intcode

import (
	"fmt"
	"strconv"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestPropertyMemory(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("store then load returns the value and zero fills", prop.ForAll(
		func(size, addr int, v int64) bool {
			m := make(Memory, size)
			m.Store(int64(addr), v)
			if m.Load(int64(addr)) != v {
				return false
			}
			want := size
			if addr >= size {
				want = addr + 1
			}
			if len(m) != want {
				return false
			}
			for i := range m {
				if i != addr && m[i] != 0 {
					return false
				}
			}
			return m.Load(int64(len(m))) == 0
		},
		gen.IntRange(0, 64),
		gen.IntRange(0, 512),
		gen.Int64(),
	))

	properties.TestingRun(t)
}

func TestPropertyModes(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("modes are the decimal digits above the opcode", prop.ForAll(
		func(digits []uint8, op int64) bool {
			s := ""
			for _, d := range digits {
				s = strconv.Itoa(int(d)) + s
			}
			word := op
			if s != "" {
				n, err := strconv.ParseInt(s, 10, 64)
				if err != nil {
					return false
				}
				word += n * 100
			}
			gotOp, modes := Decode(word)
			if gotOp != Op(op) {
				return false
			}
			for i := 0; i < len(digits)+3; i++ {
				want := Mode(0)
				if i < len(digits) {
					want = Mode(digits[i])
				}
				if modes.Mode(i) != want {
					return false
				}
			}
			return true
		},
		gen.SliceOfN(6, gen.UInt8Range(0, 2)),
		gen.Int64Range(0, 99),
	))

	properties.TestingRun(t)
}

// echoProgram reads n values and writes each back immediately.
func echoProgram(n int) []int64 {
	var prog []int64
	for i := 0; i < n; i++ {
		prog = append(prog, 3, 1000, 4, 1000)
	}
	return append(prog, 99)
}

func TestPropertyEchoOrder(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("inputs come back out in the order queued", prop.ForAll(
		func(in []int64) bool {
			m := New(echoProgram(len(in)), nil)
			for _, v := range in {
				m.Enqueue(v)
			}
			out, err := m.Run()
			return err == nil && fmt.Sprint(out) == fmt.Sprint(in)
		},
		gen.SliceOf(gen.Int64()),
	))

	properties.Property("single-value wrappers are FIFO", prop.ForAll(
		func(in []int64) bool {
			m := New(echoProgram(len(in)), in)
			for _, w := range in {
				v, ok, err := m.RunUntilOutput()
				if err != nil || !ok || v != w {
					return false
				}
			}
			_, ok, err := m.RunUntilOutput()
			return !ok && err == nil
		},
		gen.SliceOf(gen.Int64()),
	))

	properties.TestingRun(t)
}

func TestPropertyArithmetic(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("immediate add, mul, lt and eq", prop.ForAll(
		func(a, b int64) bool {
			prog := []int64{
				1101, a, b, 100,
				1102, a, b, 101,
				1107, a, b, 102,
				1108, a, b, 103,
				99,
			}
			m := New(prog, nil)
			if _, err := m.Run(); err != nil {
				return false
			}
			return m.Peek(100) == a+b &&
				m.Peek(101) == a*b &&
				m.Peek(102) == boolWord(a < b) &&
				m.Peek(103) == boolWord(a == b)
		},
		gen.Int64(),
		gen.Int64(),
	))

	properties.TestingRun(t)
}
