package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/nf/intcode/network"
)

// runNetwork runs program on a network until the NAT delivers the same Y
// value to node 0 twice in a row, reporting the first packet the NAT
// receives and every wake-up.
func runNetwork(w io.Writer, program []int64, cfg network.Config, captureFile string) error {
	n := network.New(program, cfg)
	if captureFile != "" {
		f, err := os.Create(captureFile)
		if err != nil {
			return err
		}
		defer f.Close()
		n.Capture = network.NewCapture(f)
	}

	var (
		first    = true
		woke     bool
		lastWake int64
	)
	err := n.Run(func(ev network.Event) bool {
		switch ev.Kind {
		case network.NATEvent:
			if first {
				fmt.Fprintf(w, "first NAT packet: %v\n", ev.Packet)
				first = false
			}
		case network.WakeEvent:
			fmt.Fprintf(w, "wake: %v\n", ev.Packet)
			if woke && ev.Packet.Y == lastWake {
				fmt.Fprintf(w, "repeated Y: %d\n", ev.Packet.Y)
				return true
			}
			woke, lastWake = true, ev.Packet.Y
		case network.DropEvent:
			log.Printf("net: dropped %v", ev.Packet)
		}
		return false
	})
	if err != nil {
		return fmt.Errorf("net: after %d ticks: %w", n.Ticks(), err)
	}
	return nil
}

// replay prints the packets in a capture file.
func replay(w io.Writer, file string) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()
	ps, err := network.ReadCapture(f)
	for _, p := range ps {
		fmt.Fprintf(w, "%6d: %v\n", p.Tick, p)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", file, err)
	}
	return nil
}
