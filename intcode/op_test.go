package intcode

import (
	"fmt"
	"testing"
)

func TestDecode(t *testing.T) {
	for _, c := range []struct {
		word  int64
		op    Op
		modes []Mode
	}{
		{1, Add, []Mode{Position, Position, Position}},
		{1002, Mul, []Mode{Position, Immediate, Position}},
		{21101, Add, []Mode{Immediate, Immediate, Relative}},
		{204, Out, []Mode{Relative}},
		{109, AdjustBase, []Mode{Immediate}},
		{1105, JumpTrue, []Mode{Immediate, Immediate}},
		{99, Halt, []Mode{Position, Position, Position, Position}},
		{2203, In, []Mode{Relative, Relative, Position}},
	} {
		t.Run(fmt.Sprint(c.word), func(t *testing.T) {
			op, modes := Decode(c.word)
			if op != c.op {
				t.Errorf("op = %v, want %v", op, c.op)
			}
			for i, w := range c.modes {
				if g := modes.Mode(i); g != w {
					t.Errorf("Mode(%d) = %v, want %v", i, g, w)
				}
			}
		})
	}
}

func TestOpTable(t *testing.T) {
	for _, c := range []struct {
		op     Op
		name   string
		len    int64
		writes int
	}{
		{Add, "add", 4, 2},
		{Mul, "mul", 4, 2},
		{In, "in", 2, 0},
		{Out, "out", 2, -1},
		{JumpTrue, "jt", 3, -1},
		{JumpFalse, "jf", 3, -1},
		{Less, "lt", 4, 2},
		{Equal, "eq", 4, 2},
		{AdjustBase, "arb", 2, -1},
		{Halt, "halt", 1, -1},
	} {
		if !c.op.Valid() {
			t.Errorf("%v is not valid", c.op)
		}
		if g := c.op.String(); g != c.name {
			t.Errorf("Op(%d).String() = %q, want %q", int64(c.op), g, c.name)
		}
		if g := c.op.Len(); g != c.len {
			t.Errorf("%v.Len() = %d, want %d", c.op, g, c.len)
		}
		if g := c.op.Writes(); g != c.writes {
			t.Errorf("%v.Writes() = %d, want %d", c.op, g, c.writes)
		}
	}
}

// Every opcode outside the table must be invalid, including the gaps.
func TestOpInvalid(t *testing.T) {
	valid := 0
	for o := Op(-100); o < 100; o++ {
		if o.Valid() {
			valid++
			continue
		}
		if g := o.Len(); g != 1 {
			t.Errorf("%v.Len() = %d, want 1", o, g)
		}
		if g := o.Writes(); g != -1 {
			t.Errorf("%v.Writes() = %d, want -1", o, g)
		}
	}
	if valid != 10 {
		t.Errorf("found %d valid opcodes, want 10", valid)
	}
}

func TestParse(t *testing.T) {
	for _, c := range []struct {
		in   string
		want []int64
		err  bool
	}{
		{"1,0,0,0,99\n", []int64{1, 0, 0, 0, 99}, false},
		{" 104, -3 ,99", []int64{104, -3, 99}, false},
		{"104,1125899906842624,99", []int64{104, 1125899906842624, 99}, false},
		{"", nil, false},
		{"1,,2", nil, true},
		{"1,x", nil, true},
	} {
		got, err := ParseString(c.in)
		if (err != nil) != c.err {
			t.Errorf("ParseString(%q) error = %v, want error %v", c.in, err, c.err)
			continue
		}
		if fmt.Sprint(got) != fmt.Sprint(c.want) {
			t.Errorf("ParseString(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}
