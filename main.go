// Command intcode executes Intcode programs.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"runtime/pprof"

	"github.com/nf/intcode/asm"
	"github.com/nf/intcode/host"
	"github.com/nf/intcode/intcode"
)

func main() {
	log.SetPrefix("intcode: ")
	log.SetFlags(0)

	var (
		inFlag       = flag.String("in", "", "comma separated input `values`, read before the console")
		asciiFlag    = flag.Bool("ascii", false, "exchange text with the program as character codes")
		screenFlag   = flag.Bool("screen", false, "draw output as tiles and print the screen when the program halts")
		guiFlag      = flag.Bool("gui", false, "show the tile screen in a window (implies -screen)")
		followFlag   = flag.Bool("follow", false, "steer the joystick toward the ball")
		patchFlag    = flag.String("patch", "", "set memory before running, as `addr=value,...`")
		stepsFlag    = flag.Uint64("steps", 0, "stop after `n` instructions (0 means no limit)")
		disasmFlag   = flag.Bool("disasm", false, "print a listing of the program and exit")
		mnemonicFlag = flag.Bool("mnemonic", false, "list instructions as mnemonics (with -disasm)")
		netFlag      = flag.Int("net", 0, "run the program on a network of `n` nodes")
		captureFlag  = flag.String("capture", "", "record network packets to `file` (with -net)")
		replayFlag   = flag.String("replay", "", "print the packets recorded in capture `file` and exit")
		configFlag   = flag.String("config", "", "read settings from TOML `file`")
		devFlag      = flag.Bool("dev", false, "enable developer mode (reload and restart the program when it changes)")
		debugFlag    = flag.Bool("debug", false, "enable debugger (implies -dev)")

		cpuProfileFlag = flag.String("cpu_profile", "", "write CPU profile to `file`")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <program.ic>\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "       %s [flags] -config <intcode.toml>\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "       %s -replay <capture file>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(2)
	}
	flag.Parse()

	if f := *replayFlag; f != "" {
		if err := replay(os.Stdout, f); err != nil {
			log.Fatal(err)
		}
		return
	}

	cfg := defaultConfig()
	if f := *configFlag; f != "" {
		var err error
		if cfg, err = loadConfig(f); err != nil {
			log.Fatal(err)
		}
	}
	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if set["in"] {
		in, err := intcode.ParseString(*inFlag)
		if err != nil {
			log.Fatalf("-in: %v", err)
		}
		cfg.Input = in
	}
	if set["ascii"] {
		cfg.ASCII = *asciiFlag
	}
	if set["screen"] {
		cfg.Screen = *screenFlag
	}
	if set["gui"] {
		cfg.GUI = *guiFlag
	}
	if set["follow"] {
		cfg.Follow = *followFlag
	}
	if set["steps"] {
		cfg.Steps = *stepsFlag
	}
	if set["net"] {
		cfg.Net = *netFlag > 0
		cfg.Network.Nodes = *netFlag
	}
	if err := cfg.parsePatches(*patchFlag); err != nil {
		log.Fatalf("-patch: %v", err)
	}
	if flag.NArg() == 1 {
		cfg.Program = flag.Arg(0)
	}
	if flag.NArg() > 1 || cfg.Program == "" {
		flag.Usage()
	}

	opt := host.Options{
		GUI:      cfg.GUI,
		Screen:   cfg.Screen,
		Follow:   cfg.Follow,
		ASCII:    cfg.ASCII,
		MaxSteps: cfg.Steps,
		Scale:    cfg.Scale,
	}

	if *devFlag || *debugFlag {
		if err := devMode(cfg, opt, *debugFlag, cfg.Program); err != nil {
			log.Fatal(err)
		}
		return
	}

	prog, err := readProgram(cfg.Program)
	if err != nil {
		log.Fatal(err)
	}

	if *disasmFlag {
		style := asm.Pseudo
		if *mnemonicFlag {
			style = asm.Mnemonic
		}
		if err := asm.Write(os.Stdout, prog, style); err != nil {
			log.Fatal(err)
		}
		return
	}

	var cpuProfile io.Closer
	if prof := *cpuProfileFlag; prof != "" {
		f, err := os.Create(prof)
		if err != nil {
			log.Fatalf("creating CPU profile file: %v", err)
		}
		pprof.StartCPUProfile(f)
		cpuProfile = f
	}

	var code int
	if cfg.Net {
		if prog, err = cfg.netProgram(prog); err == nil {
			err = runNetwork(os.Stdout, prog, cfg.Network, *captureFlag)
		}
	} else {
		code, err = run(cfg, opt, prog)
	}

	if f := cpuProfile; f != nil {
		pprof.StopCPUProfile()
		f.Close()
	}

	if err != nil {
		log.Fatal(err)
	}
	os.Exit(code)
}

func run(cfg *config, opt host.Options, prog []int64) (int, error) {
	m, err := cfg.machine(prog)
	if err != nil {
		return 0, err
	}
	r := host.NewRunner(opt)
	code := r.Run(m)
	if s := r.Screen(); s != nil {
		report(os.Stdout, s, opt.GUI)
	}
	return code, nil
}

// report prints the final score, preceded by the screen itself unless it
// was shown in a window.
func report(w io.Writer, s *host.Screen, gui bool) {
	if !gui {
		fmt.Fprint(w, s)
	}
	fmt.Fprintf(w, "score: %d\n", s.Score())
}
