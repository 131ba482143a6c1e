package intcode

import "fmt"

// Op represents an Intcode opcode, the bottom two decimal digits of an
// instruction word.
type Op int64

const (
	Add        Op = 1
	Mul        Op = 2
	In         Op = 3
	Out        Op = 4
	JumpTrue   Op = 5
	JumpFalse  Op = 6
	Less       Op = 7
	Equal      Op = 8
	AdjustBase Op = 9
	Halt       Op = 99
)

type opInfo struct {
	name   string
	params int
	writes int // index of the destination parameter, or -1
}

var ops = map[Op]opInfo{
	Add:        {"add", 3, 2},
	Mul:        {"mul", 3, 2},
	In:         {"in", 1, 0},
	Out:        {"out", 1, -1},
	JumpTrue:   {"jt", 2, -1},
	JumpFalse:  {"jf", 2, -1},
	Less:       {"lt", 3, 2},
	Equal:      {"eq", 3, 2},
	AdjustBase: {"arb", 1, -1},
	Halt:       {"halt", 0, -1},
}

// Valid reports whether o is a known opcode.
func (o Op) Valid() bool {
	_, ok := ops[o]
	return ok
}

// Params returns the number of parameters that follow the instruction word.
func (o Op) Params() int { return ops[o].params }

// Len returns the instruction length in words, including the opcode.
// Unknown opcodes have length 1.
func (o Op) Len() int64 { return int64(ops[o].params) + 1 }

// Writes returns the index of the parameter the instruction writes to,
// or -1 if it writes nothing.
func (o Op) Writes() int {
	if !o.Valid() {
		return -1
	}
	return ops[o].writes
}

func (o Op) String() string {
	if i, ok := ops[o]; ok {
		return i.name
	}
	return fmt.Sprintf("op(%d)", int64(o))
}

// Mode is a parameter addressing mode.
type Mode byte

const (
	Position  Mode = 0
	Immediate Mode = 1
	Relative  Mode = 2
)

func (m Mode) String() string {
	switch m {
	case Position:
		return "position"
	case Immediate:
		return "immediate"
	case Relative:
		return "relative"
	}
	return fmt.Sprintf("mode(%d)", byte(m))
}

// Modes holds the addressing mode digits of an instruction word,
// least significant digit first.
type Modes int64

// Mode returns the addressing mode of parameter i (counting from 0).
// Parameters beyond the digits present are in position mode.
func (m Modes) Mode(i int) Mode {
	for ; i > 0; i-- {
		m /= 10
	}
	return Mode(m % 10)
}

// Decode splits an instruction word into its opcode and parameter modes.
// It does not check that the opcode is valid.
func Decode(word int64) (Op, Modes) {
	return Op(word % 100), Modes(word / 100)
}
