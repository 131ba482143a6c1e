// Package host connects Intcode machines to the outside world: a text
// console, a tile screen with a joystick, and a GUI window.
package host

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/nf/intcode/intcode"
)

// StateKind describes why the runner reported machine state.
type StateKind int

const (
	ClearState StateKind = iota // a new machine was started
	BreakState                  // stopped at a breakpoint
	DebugState                  // passed a debug point
	PauseState                  // paused, or stepped while paused
	HaltState                   // the machine stopped with an error
	QuietState                  // periodic update while running
)

func (k StateKind) String() string {
	switch k {
	case ClearState:
		return "clear"
	case BreakState:
		return "break"
	case DebugState:
		return "debug"
	case PauseState:
		return "pause"
	case HaltState:
		return "halt"
	case QuietState:
		return "quiet"
	}
	return fmt.Sprintf("StateKind(%d)", int(k))
}

// StateFunc is called by the runner's exec goroutine. It must not retain m.
type StateFunc func(m *intcode.Machine, k StateKind)

// Options configures a Runner.
type Options struct {
	GUI    bool // show the screen in a window (implies Screen)
	Dev    bool // keep running after faults and accept Reset and Debug
	Screen bool // route output to a tile screen instead of the console
	Follow bool // steer the joystick toward the ball
	ASCII  bool

	MaxSteps uint64 // 0 means no limit
	Scale    int    // window pixels per tile

	In    io.Reader // defaults to os.Stdin
	Out   io.Writer // defaults to os.Stdout
	State StateFunc
}

// ErrStepLimit is returned when a machine exceeds Options.MaxSteps.
var ErrStepLimit = errors.New("step limit reached")

const quietSteps = 1 << 16

// Runner executes a machine, routing its input and output.
type Runner struct {
	opt Options
	con *Console
	scr *Screen
	joy *Joystick

	reset     chan *intcode.Machine
	resetDone chan bool
	debug     chan debugCmd

	dbg   debugState // owned by whichever goroutine runs the machine
	steps uint64
	trace backlog
}

type debugCmd struct {
	cmd  string
	addr int64
}

type debugState struct {
	brk, dbg       int64
	hasBrk, hasDbg bool
	paused, step   bool
	exit           bool
}

var errExit = errors.New("exit requested")

func NewRunner(opt Options) *Runner {
	if opt.In == nil {
		opt.In = os.Stdin
	}
	if opt.Out == nil {
		opt.Out = os.Stdout
	}
	if opt.GUI {
		opt.Screen = true
	}
	r := &Runner{
		opt:       opt,
		con:       NewConsole(opt.In, opt.Out, opt.ASCII),
		reset:     make(chan *intcode.Machine),
		resetDone: make(chan bool),
		debug:     make(chan debugCmd),
	}
	if opt.Screen {
		r.scr = NewScreen()
		r.joy = &Joystick{Ball: 4, Paddle: 3}
		if opt.Follow {
			r.joy.Follow = r.scr
		}
	}
	return r
}

// Screen returns the runner's screen, or nil if output goes to the console.
func (r *Runner) Screen() *Screen { return r.scr }

// Joystick returns the runner's joystick, or nil.
func (r *Runner) Joystick() *Joystick { return r.joy }

// Steps returns the number of instructions executed by the current machine.
func (r *Runner) Steps() uint64 { return r.steps }

// Reset replaces the running machine with m.
func (r *Runner) Reset(m *intcode.Machine) {
	if !r.opt.Dev {
		panic("Reset called while not running in dev mode")
	}
	r.reset <- m
	<-r.resetDone
}

// Debug sends a debugger command to the runner. The commands are
// "b" or "break" (stop when PC reaches addr), "d" or "debug" (report state
// when PC reaches addr), "s" or "step", "c" or "cont", "p" or "pause", and
// "exit". A break or debug command with zero addr clears the point.
func (r *Runner) Debug(cmd string, addr int64) {
	if !r.opt.Dev {
		panic("Debug called while not running in dev mode")
	}
	r.debug <- debugCmd{cmd, addr}
}

// Run executes m until it halts, or in dev mode until an exit command,
// and returns the process exit code.
func (r *Runner) Run(m *intcode.Machine) (exitCode int) {
	var (
		exit = make(chan bool)
		code = 0
	)
	go func() {
		var (
			execErr = make(chan error)
			halt    chan bool
			running = true
		)
		start := func(m *intcode.Machine) {
			halt = make(chan bool)
			h := halt
			go func() { execErr <- r.Exec(m, h) }()
		}
		start(m)
		for {
			var debug chan debugCmd
			if !running {
				debug = r.debug
			}
			select {
			case newM := <-r.reset:
				if running {
					close(halt)
					<-execErr
				}
				start(newM)
				running = true
				r.resetDone <- true
			case c := <-debug:
				r.command(c)
				if r.dbg.exit {
					close(exit)
					return
				}
			case err := <-execErr:
				running = false
				switch {
				case err == errExit:
					close(exit)
					return
				case err != nil:
					log.Printf("exec: %v", err)
					code = 1
				default:
					code = 0
				}
				if !r.opt.Dev {
					close(exit)
					return
				}
			}
		}
	}()
	if r.opt.GUI {
		g := NewGUI(r.scr, r.joy)
		if r.opt.Scale > 0 {
			g.Scale = r.opt.Scale
		}
		if err := g.Run(exit); err != nil {
			log.Fatalf("gui: %v", err)
		}
	} else {
		<-exit
	}
	return code
}

// Exec runs m until it halts, faults, or halt is closed.
// Output goes to the screen if the runner has one, otherwise the console.
// Input comes from the queue, then the joystick, then the console.
func (r *Runner) Exec(m *intcode.Machine, halt <-chan bool) error {
	var src intcode.InputSource
	if r.joy != nil {
		src = r.joy
	}
	r.steps = 0
	r.trace.Reset()
	r.stateFunc(m, ClearState)
	for {
		if r.opt.Dev {
			if err := r.control(m, halt); err != nil {
				return err
			}
		}
		if limit := r.opt.MaxSteps; limit > 0 && r.steps >= limit {
			return ErrStepLimit
		}
		if r.opt.Dev {
			in := m.Instr(m.PC)
			r.trace.LazyPrintf("%6d: %v %v rb=%d", in.Addr, in.Op, in.Args, m.RelBase)
		}
		res, err := m.StepWith(src)
		if err != nil {
			if r.opt.Dev {
				r.trace.Emit()
			}
			r.stateFunc(m, HaltState)
			return err
		}
		switch res {
		case intcode.StepBlocked:
			// TODO: make console reads interruptible so Reset does not
			// wait for a line of input.
			v, err := r.con.Read()
			if err != nil {
				return fmt.Errorf("reading input: %w", err)
			}
			m.Enqueue(v)
			continue
		case intcode.StepOutput:
			for _, v := range m.Drain() {
				if r.scr != nil {
					r.scr.Write(v)
				} else if err := r.con.Write(v); err != nil {
					return fmt.Errorf("writing output: %w", err)
				}
			}
		case intcode.StepHalted:
			return nil
		}
		r.steps++
		if r.opt.Dev {
			r.checkPoints(m)
		} else if r.steps%quietSteps == 0 {
			r.stateFunc(m, QuietState)
		}
	}
}

// control applies pending debug commands, blocking while paused.
func (r *Runner) control(m *intcode.Machine, halt <-chan bool) error {
	for {
		var c debugCmd
		if r.dbg.paused && !r.dbg.step {
			select {
			case c = <-r.debug:
			case <-halt:
				return errHalt
			}
		} else {
			select {
			case c = <-r.debug:
			case <-halt:
				return errHalt
			default:
				return nil
			}
		}
		r.command(c)
		if r.dbg.exit {
			return errExit
		}
		if c.cmd == "p" || c.cmd == "pause" {
			r.stateFunc(m, PauseState)
		}
	}
}

var errHalt = errors.New("halted by reset")

func (r *Runner) command(c debugCmd) {
	d := &r.dbg
	switch c.cmd {
	case "b", "break":
		d.brk, d.hasBrk = c.addr, c.addr != 0
	case "d", "debug":
		d.dbg, d.hasDbg = c.addr, c.addr != 0
	case "s", "step":
		d.paused, d.step = true, true
	case "c", "cont":
		d.paused, d.step = false, false
	case "p", "pause":
		d.paused = true
	case "exit":
		d.exit = true
	default:
		log.Printf("unknown debug command %q", c.cmd)
	}
}

func (r *Runner) checkPoints(m *intcode.Machine) {
	d := &r.dbg
	switch {
	case d.step:
		d.step = false
		r.stateFunc(m, PauseState)
	case d.hasBrk && m.PC == d.brk:
		d.paused = true
		r.stateFunc(m, BreakState)
	case d.hasDbg && m.PC == d.dbg:
		r.stateFunc(m, DebugState)
	case r.steps%quietSteps == 0:
		r.stateFunc(m, QuietState)
	}
}

func (r *Runner) stateFunc(m *intcode.Machine, k StateKind) {
	if f := r.opt.State; f != nil {
		f(m, k)
	}
}
