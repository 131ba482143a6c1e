// Package asm renders Intcode memory as a readable listing without
// executing it.
//
// Instructions are listed one per line, prefixed by their address, until
// the first word that is not a valid opcode. From there on memory is dumped
// as data, eight words to a row.
//
// In the default Pseudo style operands are written as
//
//	*N      the word at address N (position mode)
//	rb[N]   the word at relative base + N (relative mode)
//	N       the literal N (immediate mode)
//
// and instructions as assignments, so 1002,4,3,4 becomes "*4 := *4 * 3".
// Common idioms are simplified: additions of 0 and multiplications by 1
// are moves, unconditional jumps are gotos, and a comparison whose result
// is tested by the jump that immediately follows it is shown as an if.
package asm

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/nf/intcode/intcode"
)

// Style selects how instructions are rendered.
type Style int

const (
	Pseudo   Style = iota // assignments and gotos
	Mnemonic              // "add *4, 3, *4"
)

// Disassemble returns the Pseudo style listing of mem.
func Disassemble(mem []int64) string {
	var b bytes.Buffer
	Write(&b, mem, Pseudo)
	return b.String()
}

// Write writes the listing of mem to w in the given style.
func Write(w io.Writer, mem []int64, s Style) error {
	bw := bufio.NewWriter(w)
	l := lister{mem: mem, style: s, w: bw}
	l.code()
	l.data()
	return bw.Flush()
}

type lister struct {
	mem    intcode.Memory
	cursor int64
	style  Style
	w      *bufio.Writer
}

func (l *lister) code() {
	for l.cursor < int64(len(l.mem)) {
		op, _ := intcode.Decode(l.mem[l.cursor])
		if !op.Valid() {
			return
		}
		l.instr(op)
	}
}

// Instr renders the instruction at addr, in the same form as a listing
// line without the trailing newline, and returns the address that follows
// it. A word that is not a valid opcode is rendered as data.
func Instr(mem []int64, addr int64, s Style) (string, int64) {
	var b bytes.Buffer
	l := lister{mem: mem, cursor: addr, style: s, w: bufio.NewWriter(&b)}
	if op, _ := intcode.Decode(l.mem.Load(addr)); op.Valid() {
		l.instr(op)
	} else {
		fmt.Fprintf(l.w, "%4d: %7d", addr, l.mem.Load(addr))
		l.cursor++
	}
	l.w.Flush()
	return strings.TrimSuffix(b.String(), "\n"), l.cursor
}

func (l *lister) instr(op intcode.Op) {
	fmt.Fprintf(l.w, "%4d: ", l.cursor)
	var text string
	if l.style == Mnemonic {
		text = l.mnemonic(op)
	} else {
		text = l.pseudo(op)
	}
	fmt.Fprintln(l.w, text)
	l.cursor += op.Len()
}

func (l *lister) data() {
	if l.cursor >= int64(len(l.mem)) {
		return
	}
	fmt.Fprintf(l.w, "%4d: ", l.cursor)
	for l.cursor < int64(len(l.mem)) {
		fmt.Fprintf(l.w, "%7d ", l.mem[l.cursor])
		l.cursor++
		if l.cursor%8 == 0 && l.cursor < int64(len(l.mem)) {
			fmt.Fprintf(l.w, "\n%4d: ", l.cursor)
		}
	}
	fmt.Fprintln(l.w)
}

// arg returns the raw operand i of the instruction at the cursor.
func (l *lister) arg(i int) int64 { return l.mem.Load(l.cursor + 1 + int64(i)) }

func (l *lister) mode(i int) intcode.Mode {
	_, modes := intcode.Decode(l.mem.Load(l.cursor))
	return modes.Mode(i)
}

// param formats operand i of the instruction at addr.
func (l *lister) param(addr int64, i int) string {
	_, modes := intcode.Decode(l.mem.Load(addr))
	return operand(l.mem.Load(addr+1+int64(i)), modes.Mode(i))
}

func operand(v int64, m intcode.Mode) string {
	switch m {
	case intcode.Position:
		return fmt.Sprintf("*%d", v)
	case intcode.Immediate:
		return fmt.Sprint(v)
	case intcode.Relative:
		return fmt.Sprintf("rb[%d]", v)
	}
	return fmt.Sprintf("?%d[%d]", byte(m), v)
}

func (l *lister) mnemonic(op intcode.Op) string {
	s := op.String()
	for i := 0; i < op.Params(); i++ {
		if i == 0 {
			s += " "
		} else {
			s += ", "
		}
		s += l.param(l.cursor, i)
	}
	return s
}

func (l *lister) isImm(i int, v int64) bool {
	return l.mode(i) == intcode.Immediate && l.arg(i) == v
}

func (l *lister) pseudo(op intcode.Op) string {
	p := func(i int) string { return l.param(l.cursor, i) }
	switch op {
	case intcode.Add, intcode.Mul:
		sym, unit := "+", int64(0)
		if op == intcode.Mul {
			sym, unit = "*", 1
		}
		switch {
		case l.isImm(0, unit):
			return fmt.Sprintf("%s := %s", p(2), p(1))
		case l.isImm(1, unit):
			return fmt.Sprintf("%s := %s", p(2), p(0))
		}
		return fmt.Sprintf("%s := %s %s %s", p(2), p(0), sym, p(1))
	case intcode.Less, intcode.Equal:
		sym, neg := "<", ">="
		if op == intcode.Equal {
			sym, neg = "==", "!="
		}
		if s, ok := l.fuse(sym, neg); ok {
			return s
		}
		return fmt.Sprintf("%s := %s %s %s", p(2), p(0), sym, p(1))
	case intcode.JumpTrue:
		if l.mode(0) == intcode.Immediate && l.arg(0) != 0 {
			return fmt.Sprintf("goto %s", p(1))
		}
		return fmt.Sprintf("if %s != 0 { goto %s }", p(0), p(1))
	case intcode.JumpFalse:
		if l.isImm(0, 0) {
			return fmt.Sprintf("goto %s", p(1))
		}
		return fmt.Sprintf("if %s == 0 { goto %s }", p(0), p(1))
	case intcode.In:
		return fmt.Sprintf("%s := input()", p(0))
	case intcode.Out:
		return fmt.Sprintf("output(%s)", p(0))
	case intcode.AdjustBase:
		return fmt.Sprintf("rb += %s", p(0))
	case intcode.Halt:
		return "halt"
	}
	return l.mnemonic(op)
}

// fuse renders a comparison followed by a jump that tests its result as a
// single if statement, advancing the cursor past the comparison so that
// the caller's advance skips the jump.
func (l *lister) fuse(sym, neg string) (string, bool) {
	next := l.cursor + 4
	if next >= int64(len(l.mem)) {
		return "", false
	}
	jop, jmodes := intcode.Decode(l.mem[next])
	if jop != intcode.JumpTrue && jop != intcode.JumpFalse {
		return "", false
	}
	if l.arg(2) != l.mem.Load(next+1) || l.mode(2) != jmodes.Mode(0) {
		return "", false
	}
	cmp := sym
	if jop == intcode.JumpFalse {
		cmp = neg
	}
	p := func(i int) string { return l.param(l.cursor, i) }
	s := fmt.Sprintf("%s := %s %s %s\n%4d: if %s %s %s { goto %s }",
		p(2), p(0), sym, p(1),
		next, p(0), cmp, p(1), l.param(next, 1))
	l.cursor += 3
	return s, true
}
