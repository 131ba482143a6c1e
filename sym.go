package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

type symbols []symbol

func newSymbols(labels map[string]int64) symbols {
	var ss symbols
	for l, a := range labels {
		ss = append(ss, symbol{addr: a, label: l})
	}
	sort.Slice(ss, func(i, j int) bool {
		if ss[i].addr != ss[j].addr {
			return ss[i].addr < ss[j].addr
		}
		return ss[i].label < ss[j].label
	})
	return ss
}

func (s symbols) forAddr(addr int64) (ss []symbol) {
	i := sort.Search(len(s), func(i int) bool { return s[i].addr >= addr })
	for ; i < len(s); i++ {
		if s[i].addr != addr {
			break
		}
		ss = append(ss, s[i])
	}
	return ss
}

func (s symbols) withLabelPrefix(p string) (ss []symbol) {
	for _, sym := range s {
		if strings.HasPrefix(sym.label, p) {
			ss = append(ss, sym)
		}
	}
	sort.Slice(ss, func(i, j int) bool { return ss[i].label < ss[j].label })
	return ss
}

// resolve finds the symbol with the given label, or interprets arg as a
// decimal address.
func (s symbols) resolve(arg string) (symbol, bool) {
	for _, sym := range s {
		if sym.label == arg {
			return sym, true
		}
	}
	addr, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || addr < 0 {
		return symbol{}, false
	}
	return symbol{addr: addr, label: arg}, true
}

type symbol struct {
	addr  int64
	label string
}

func (s symbol) String() string { return fmt.Sprintf("%s (%d)", s.label, s.addr) }
