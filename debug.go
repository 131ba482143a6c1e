package main

import (
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/nf/intcode/asm"
	"github.com/nf/intcode/host"
	"github.com/nf/intcode/intcode"
)

type debugger struct {
	run *host.Runner

	log   *tview.TextView
	watch *tview.TextView
	code  *tview.TextView // listing from the PC onwards
	state *tview.TextView
	input *tview.InputField
	cols  *tview.Flex
	rows  *tview.Flex
	app   *tview.Application

	mu       sync.Mutex
	dbg, brk *symbol
	syms     symbols
	watches  []symbol
}

func (d *debugger) symbols() symbols {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.syms
}

func (d *debugger) setSymbols(s symbols) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.syms = s
}

func newDebugger() *debugger {
	d := &debugger{
		log: tview.NewTextView().
			SetMaxLines(1000),
		watch: tview.NewTextView().
			SetWrap(false).
			SetTextAlign(tview.AlignRight),
		code: tview.NewTextView().
			SetWrap(false),
		state: tview.NewTextView().
			SetWrap(false),
		input: tview.NewInputField().
			SetLabel("> "),
		cols: tview.NewFlex(),
		rows: tview.NewFlex().
			SetDirection(tview.FlexRow),
		app: tview.NewApplication(),
	}
	d.log.SetChangedFunc(func() { d.app.Draw() })
	d.watch.SetBackgroundColor(tcell.ColorDarkBlue)
	d.code.SetBackgroundColor(tcell.ColorBlack)
	d.code.SetTitle(" code ").SetBorder(true)
	d.state.SetBackgroundColor(tcell.ColorDarkGrey)
	d.cols.
		AddItem(d.watch, 24, 0, false).
		AddItem(d.code, 0, 1, false).
		AddItem(d.log, 0, 1, false)
	d.rows.
		AddItem(d.cols, 0, 1, false).
		AddItem(d.state, 3, 0, false).
		AddItem(d.input, 1, 0, true)
	d.app.SetRoot(d.rows, true)

	d.input.SetAutocompleteFunc(func(t string) (entries []string) {
		if cmd, arg, ok := strings.Cut(t, " "); ok {
			switch cmd {
			case "b", "break", "d", "debug", "w", "watch":
				for _, s := range d.symbols().withLabelPrefix(arg) {
					entries = append(entries, cmd+" "+s.label)
				}
			}
		}
		return
	})
	d.input.SetAutocompletedFunc(func(t string, index, src int) bool {
		if src != tview.AutocompletedNavigate {
			d.input.SetText(t)
		}
		return src == tview.AutocompletedEnter || src == tview.AutocompletedClick
	})
	d.input.SetDoneFunc(func(key tcell.Key) {
		if key != tcell.KeyEnter {
			return
		}
		cmd := d.input.GetText()
		if cmd == "" {
			return
		}
		d.input.SetText("")
		d.command(cmd)
	})
	return d
}

func (d *debugger) command(cmd string) {
	if cmd == "exit" {
		d.app.Stop()
		return
	}
	if cmd, arg, ok := strings.Cut(cmd, " "); ok {
		switch cmd {
		case "b", "break", "d", "debug":
			s, ok := d.symbols().resolve(arg)
			if !ok {
				log.Printf("invalid addr %q", arg)
				return
			}
			d.run.Debug(cmd, s.addr)
			d.mu.Lock()
			switch cmd[0] {
			case 'b':
				d.brk = &s
				log.Printf("set break %d", s.addr)
			case 'd':
				d.dbg = &s
				log.Printf("set debug %d", s.addr)
			}
			d.mu.Unlock()
			return
		case "w", "watch":
			s, ok := d.symbols().resolve(arg)
			if !ok {
				log.Printf("invalid address %q", arg)
				return
			}
			d.mu.Lock()
			d.watches = append(d.watches, s)
			d.mu.Unlock()
			log.Printf("watching %d", s.addr)
			return
		}
	}
	switch cmd {
	case "b", "break", "d", "debug", "s", "step", "c", "cont", "p", "pause":
	default:
		log.Printf("unknown command %q", cmd)
		return
	}
	d.run.Debug(cmd, 0)
	d.mu.Lock()
	switch cmd[0] {
	case 'b':
		d.brk = nil
		log.Print("cleared break")
	case 'd':
		d.dbg = nil
		log.Print("cleared debug")
	}
	d.mu.Unlock()
}

func (d *debugger) Run() error { return d.app.Run() }

func (d *debugger) StateFunc(m *intcode.Machine, k host.StateKind) {
	var (
		syms  = d.symbols()
		watch = d.watchContent(m)
		code  = codeContent(syms, m, codeLines)
		state string
	)
	if k != host.ClearState && k != host.QuietState {
		state = stateMsg(syms, m, k)
	}
	d.app.QueueUpdateDraw(func() {
		switch k {
		case host.DebugState, host.ClearState:
			d.state.SetTextColor(tcell.ColorBlack)
			d.state.SetBackgroundColor(tcell.ColorDarkGrey)
		case host.BreakState:
			d.state.SetTextColor(tcell.ColorYellow)
			d.state.SetBackgroundColor(tcell.ColorDarkBlue)
		case host.PauseState:
			d.state.SetTextColor(tcell.ColorWhite)
			d.state.SetBackgroundColor(tcell.ColorDarkBlue)
		case host.HaltState:
			d.state.SetTextColor(tcell.ColorWhite)
			d.state.SetBackgroundColor(tcell.ColorDarkRed)
		}
		d.watch.SetText(watch)
		d.code.SetText(code)
		if k != host.QuietState {
			d.state.SetText(state)
		}
	})
}

func stateMsg(syms symbols, m *intcode.Machine, k host.StateKind) string {
	var (
		in    = m.Instr(m.PC)
		pcSym string
		args  []string
	)
	if s := syms.forAddr(m.PC); len(s) > 0 {
		pcSym = s[0].String() + " -> "
	}
	for i, a := range in.Args {
		addr, ok := m.OpAddr(in, i)
		if !ok {
			args = append(args, fmt.Sprint(a))
			continue
		}
		arg := fmt.Sprintf("[%d]=%d", addr, m.Peek(addr))
		if s := syms.forAddr(addr); len(s) > 0 {
			arg = s[0].label + arg
		}
		args = append(args, arg)
	}
	kind := "       "
	switch k {
	case host.BreakState:
		kind = "[break]"
	case host.DebugState:
		kind = "[debug]"
	case host.PauseState:
		kind = "[pause]"
	case host.HaltState:
		kind = "[HALT!]"
	}
	return fmt.Sprintf("%6d %-5s %s %s%s\nrb: %d  in: %d\nmem: %d words\n",
		m.PC, in.Op, kind, pcSym, strings.Join(args, " "),
		m.RelBase, m.Pending(), len(m.Mem))
}

const codeLines = 32

// codeContent lists n instructions starting at the PC, marking the PC and
// showing labels on their own lines.
func codeContent(syms symbols, m *intcode.Machine, n int) string {
	var (
		b    strings.Builder
		addr = m.PC
	)
	for i := 0; i < n && addr < int64(len(m.Mem)); i++ {
		for _, s := range syms.forAddr(addr) {
			fmt.Fprintf(&b, "%s:\n", s.label)
		}
		text, next := asm.Instr(m.Mem, addr, asm.Pseudo)
		mark := "  "
		if addr == m.PC {
			mark = "=>"
		}
		fmt.Fprintf(&b, "%s%s\n", mark, text)
		addr = next
	}
	return b.String()
}

func (d *debugger) watchContent(m *intcode.Machine) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	var b strings.Builder
	fmt.Fprintf(&b, "pc %d rb %d\nqueued input %d\n\n", m.PC, m.RelBase, m.Pending())
	if s := d.brk; s != nil {
		fmt.Fprintf(&b, "%s [%d] brk!\n", s.label, s.addr)
	}
	if s := d.dbg; s != nil {
		fmt.Fprintf(&b, "%s [%d] dbg?\n", s.label, s.addr)
	}
	for _, w := range d.watches {
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%s [%d] %d", w.label, w.addr, m.Peek(w.addr))
	}
	return b.String()
}
