package intcode

import (
	"fmt"
	"strings"
)

// MaxMemory is the number of words a Machine may grow its memory to.
// A write at or beyond this address is a BadAddress fault.
var MaxMemory int64 = 1 << 24

// Memory is the growable word store of a Machine.
// Words beyond its length read as zero.
type Memory []int64

// Load returns the word at addr, or 0 if addr is outside memory.
func (m Memory) Load(addr int64) int64 {
	if addr < 0 || addr >= int64(len(m)) {
		return 0
	}
	return m[addr]
}

// Store writes v at addr, first growing memory with zeros if addr is beyond
// its end. The caller must check that addr is in [0, MaxMemory).
func (m *Memory) Store(addr, v int64) {
	if n := int(addr) + 1; n > len(*m) {
		m.grow(n)
	}
	(*m)[addr] = v
}

func (m *Memory) grow(n int) {
	if n <= cap(*m) {
		old := len(*m)
		*m = (*m)[:n]
		clear((*m)[old:])
		return
	}
	c := 2 * cap(*m)
	if c < n {
		c = n
	}
	g := make(Memory, n, c)
	copy(g, *m)
	*m = g
}

func (m Memory) String() string {
	var b strings.Builder
	b.WriteByte('[')
	for i, v := range m {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "%d", v)
	}
	b.WriteByte(']')
	return b.String()
}

// queue is a FIFO of words.
type queue []int64

func (q *queue) push(v ...int64) { *q = append(*q, v...) }

func (q *queue) pop() (int64, bool) {
	if len(*q) == 0 {
		return 0, false
	}
	v := (*q)[0]
	*q = (*q)[1:]
	return v, true
}

func (q *queue) clear() { *q = nil }
