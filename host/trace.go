package host

import (
	"fmt"
	"log"
)

// backlog holds a trace of the last maxBacklog instructions executed
// before a fault. Entries are formatted only when they are logged.
type backlog struct {
	entries []logEntry
	n       int
}

type logEntry struct {
	format string
	args   []any
}

const maxBacklog = 100

func (b *backlog) LazyPrintf(format string, args ...any) {
	if b.n < len(b.entries) {
		b.entries[b.n] = logEntry{format, args}
	} else {
		b.entries = append(b.entries, logEntry{format, args})
	}
	b.n = (b.n + 1) % maxBacklog
}

// Lines formats the retained entries, oldest first.
func (b *backlog) Lines() []string {
	if len(b.entries) == 0 {
		return nil
	}
	var lines []string
	for i := b.n; ; i++ {
		i %= len(b.entries)
		lines = append(lines, fmt.Sprintf(b.entries[i].format, b.entries[i].args...))
		if (i+1)%len(b.entries) == b.n%len(b.entries) {
			break
		}
	}
	return lines
}

func (b *backlog) Emit() {
	for _, l := range b.Lines() {
		log.Print(l)
	}
}

func (b *backlog) Reset() {
	b.entries = b.entries[:0]
	b.n = 0
}
