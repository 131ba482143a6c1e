package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/nf/intcode/intcode"
	"github.com/nf/intcode/network"
)

// config is the contents of an intcode.toml file. Command line flags
// override its values.
type config struct {
	Program string  `toml:"program"`
	Input   []int64 `toml:"input"`
	ASCII   bool    `toml:"ascii"`
	GUI     bool    `toml:"gui"`
	Screen  bool    `toml:"screen"`
	Follow  bool    `toml:"follow"`
	Steps   uint64  `toml:"steps"`
	Scale   int     `toml:"scale"`
	Net     bool    `toml:"net"` // run on a network described by Network

	// Patch sets memory words before the program starts, keyed by address.
	Patch map[string]int64 `toml:"patch"`

	// Labels names addresses for the debugger.
	Labels map[string]int64 `toml:"labels"`

	Network network.Config `toml:"network"`
}

func defaultConfig() *config {
	return &config{Network: network.DefaultConfig()}
}

// loadConfig reads the named TOML file. A relative program path is
// taken relative to the file's directory.
func loadConfig(file string) (*config, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("cannot read config: %w", err)
	}
	c := defaultConfig()
	md, err := toml.Decode(string(data), c)
	if err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", file, err)
	}
	if keys := md.Undecoded(); len(keys) > 0 {
		var s []string
		for _, k := range keys {
			s = append(s, k.String())
		}
		return nil, fmt.Errorf("%s: unknown keys: %s", file, strings.Join(s, ", "))
	}
	if c.Program != "" && !filepath.IsAbs(c.Program) {
		c.Program = filepath.Join(filepath.Dir(file), c.Program)
	}
	if _, err := c.patches(); err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}
	return c, nil
}

type patch struct {
	addr, val int64
}

// patches returns the memory patches in address order.
func (c *config) patches() ([]patch, error) {
	var ps []patch
	for k, v := range c.Patch {
		addr, err := strconv.ParseInt(k, 10, 64)
		if err != nil || addr < 0 || addr >= intcode.MaxMemory {
			return nil, fmt.Errorf("bad patch address %q", k)
		}
		ps = append(ps, patch{addr, v})
	}
	sort.Slice(ps, func(i, j int) bool { return ps[i].addr < ps[j].addr })
	return ps, nil
}

// parsePatches parses a flag value of the form "addr=value,addr=value"
// into c.Patch.
func (c *config) parsePatches(s string) error {
	if s == "" {
		return nil
	}
	if c.Patch == nil {
		c.Patch = make(map[string]int64)
	}
	for _, f := range strings.Split(s, ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(f), "=")
		if !ok {
			return fmt.Errorf("bad patch %q", f)
		}
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("bad patch %q: %v", f, err)
		}
		c.Patch[k] = n
	}
	_, err := c.patches()
	return err
}

// machine returns a machine loaded with program, c.Input and c.Patch.
func (c *config) machine(program []int64) (*intcode.Machine, error) {
	ps, err := c.patches()
	if err != nil {
		return nil, err
	}
	m := intcode.New(program, c.Input)
	for _, p := range ps {
		m.Mem.Store(p.addr, p.val)
	}
	return m, nil
}

// netProgram returns program with c.Patch applied, for loading into every
// node of a network. Network nodes take their address as their only
// initial input, so c.Input is rejected.
func (c *config) netProgram(program []int64) ([]int64, error) {
	if len(c.Input) > 0 {
		return nil, fmt.Errorf("input values cannot be used with a network")
	}
	ps, err := c.patches()
	if err != nil {
		return nil, err
	}
	mem := intcode.Memory(append([]int64(nil), program...))
	for _, p := range ps {
		mem.Store(p.addr, p.val)
	}
	return mem, nil
}

func readProgram(file string) ([]int64, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	prog, err := intcode.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}
	return prog, nil
}
