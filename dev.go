package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/howeyc/fsnotify"

	"github.com/nf/intcode/host"
	"github.com/nf/intcode/intcode"
)

// devMode runs the program in file, restarting it whenever the file
// changes. With debug set it runs the debugger in the terminal, and the
// program's console input is limited to the configured input values.
func devMode(cfg *config, opt host.Options, debug bool, file string) error {
	file = filepath.Clean(file)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()
	if err := watcher.Watch(filepath.Dir(file)); err != nil {
		return err
	}

	opt.Dev = true
	var d *debugger
	if debug {
		d = newDebugger()
		d.setSymbols(newSymbols(cfg.Labels))
		opt.State = d.StateFunc
		opt.In = strings.NewReader("")
		opt.Out = d.log
	}
	runner := host.NewRunner(opt)
	if d != nil {
		d.run = runner
		log.SetPrefix("")
		log.SetOutput(d.log)
		go func() {
			if err := d.Run(); err != nil {
				log.Fatalf("debug: %v", err)
			}
			log.SetOutput(os.Stderr)
			log.SetPrefix("intcode: ")
			runner.Debug("exit", 0)
		}()
	}

	mCh := make(chan *intcode.Machine)
	go watchProgram(runner, cfg, file, watcher, mCh, nil)
	code := runner.Run(<-mCh)
	return fmt.Errorf("dev: exit code: %d", code)
}

// watchProgram loads file and sends the first machine on start. After
// that each change to file resets runner with a freshly loaded machine,
// until stop is closed.
func watchProgram(runner *host.Runner, cfg *config, file string, watcher *fsnotify.Watcher, start chan<- *intcode.Machine, stop <-chan bool) {
	started := false
	run := time.After(1 * time.Millisecond)
	for {
		select {
		case <-run:
			log.Printf("dev: load %s", filepath.Base(file))
			m, err := devLoad(cfg, file)
			if err != nil {
				log.Printf("dev: %v", err)
				break
			}
			if !started {
				log.Printf("dev: start")
				select {
				case start <- m:
				case <-stop:
					return
				}
				started = true
			} else {
				log.Printf("dev: reset")
				runner.Reset(m)
			}
		case ev := <-watcher.Event:
			if ev.Name == file && !ev.IsAttrib() {
				run = time.After(100 * time.Millisecond)
			}
		case err := <-watcher.Error:
			log.Printf("dev: watcher: %v", err)
		case <-stop:
			return
		}
	}
}

func devLoad(cfg *config, file string) (*intcode.Machine, error) {
	prog, err := readProgram(file)
	if err != nil {
		return nil, err
	}
	return cfg.machine(prog)
}
