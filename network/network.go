// Package network runs a set of Intcode machines in lock step and routes
// the packets they send to each other.
//
// Each node is started with its own address as its first input. A node
// sends a packet by writing three values: destination address, X and Y.
// A node reading from an empty queue receives Config.Empty and is marked
// idle until a packet is delivered to it. Packets addressed to Config.NAT
// are held by the NAT, which re-sends the last one it received to node 0
// whenever the whole network is idle.
package network

import (
	"errors"
	"fmt"

	"github.com/nf/intcode/intcode"
)

// Config describes a network.
type Config struct {
	Nodes    int    `toml:"nodes"`
	Empty    int64  `toml:"empty"`     // value read from an empty queue
	NAT      int64  `toml:"nat"`       // address of the NAT
	MaxTicks uint64 `toml:"max_ticks"` // 0 means no limit
}

// DefaultConfig returns the configuration of a 50 node network with
// its NAT at 255.
func DefaultConfig() Config {
	return Config{Nodes: 50, Empty: -1, NAT: 255}
}

// Packet is a message between nodes.
type Packet struct {
	_    struct{} `cbor:",toarray"`
	Tick uint64
	Src  int64
	Dst  int64
	X    int64
	Y    int64
}

func (p Packet) String() string {
	return fmt.Sprintf("%d -> %d (%d, %d)", p.Src, p.Dst, p.X, p.Y)
}

var (
	ErrDeadlock  = errors.New("network: all nodes idle and nothing to send")
	ErrTickLimit = errors.New("network: tick limit reached")
)

type node struct {
	m    *intcode.Machine
	buf  []int64 // partial packet
	idle bool
}

// Network is a set of machines and the packets in flight between them.
type Network struct {
	cfg   Config
	nodes []*node
	nat   *Packet
	tick  uint64

	// Capture, if non-nil, records every packet routed.
	Capture *Capture
}

// New returns a network of cfg.Nodes machines each running program.
func New(program []int64, cfg Config) *Network {
	n := &Network{cfg: cfg}
	for addr := 0; addr < cfg.Nodes; addr++ {
		n.nodes = append(n.nodes, &node{
			m: intcode.New(program, []int64{int64(addr)}),
		})
	}
	return n
}

// Machine returns the machine at addr.
func (n *Network) Machine(addr int) *intcode.Machine { return n.nodes[addr].m }

// Ticks returns the number of ticks run so far.
func (n *Network) Ticks() uint64 { return n.tick }

// NAT returns the last packet received by the NAT.
func (n *Network) NAT() (Packet, bool) {
	if n.nat == nil {
		return Packet{}, false
	}
	return *n.nat, true
}

// Idle reports whether every node is waiting for input with an empty queue.
func (n *Network) Idle() bool {
	for _, nd := range n.nodes {
		if !nd.idle {
			return false
		}
	}
	return true
}

// Send delivers p to its destination and reports whether the destination
// exists. Packets to the NAT are stored by it.
func (n *Network) Send(p Packet) bool {
	if p.Dst == n.cfg.NAT {
		n.nat = &p
		return true
	}
	if p.Dst < 0 || p.Dst >= int64(len(n.nodes)) {
		return false
	}
	nd := n.nodes[p.Dst]
	nd.m.Enqueue(p.X, p.Y)
	nd.idle = false
	return true
}

// Tick advances every node by one instruction, in address order, and then
// delivers the packets completed during the tick. It returns those packets.
func (n *Network) Tick() ([]Packet, error) {
	n.tick++
	var sent []Packet
	for addr, nd := range n.nodes {
		polled := false
		src := intcode.InputFunc(func() int64 {
			polled = true
			return n.cfg.Empty
		})
		r, err := nd.m.StepWith(src)
		if err != nil {
			return nil, fmt.Errorf("node %d: %w", addr, err)
		}
		switch r {
		case intcode.StepHalted:
			nd.idle = true
		case intcode.StepOutput:
			nd.buf = append(nd.buf, nd.m.Drain()...)
			if len(nd.buf) >= 3 {
				sent = append(sent, Packet{
					Tick: n.tick,
					Src:  int64(addr),
					Dst:  nd.buf[0],
					X:    nd.buf[1],
					Y:    nd.buf[2],
				})
				nd.buf = nd.buf[3:]
			}
		}
		if polled {
			nd.idle = true
		}
	}
	return sent, nil
}

// EventKind identifies an Event.
type EventKind int

const (
	PacketEvent EventKind = iota // a packet was delivered to a node
	NATEvent                     // the NAT received a packet
	WakeEvent                    // the network was idle; the NAT re-sent its packet
	DropEvent                    // a packet was addressed to nobody
)

func (k EventKind) String() string {
	switch k {
	case PacketEvent:
		return "packet"
	case NATEvent:
		return "nat"
	case WakeEvent:
		return "wake"
	case DropEvent:
		return "drop"
	}
	return fmt.Sprintf("EventKind(%d)", int(k))
}

// Event reports something that happened on the network.
type Event struct {
	Kind   EventKind
	Packet Packet
}

// Run ticks the network, reporting events to fn, until fn returns true.
// It returns ErrDeadlock if the network goes idle while the NAT holds no
// packet, and ErrTickLimit if the configured tick limit is reached.
func (n *Network) Run(fn func(Event) bool) error {
	for {
		if limit := n.cfg.MaxTicks; limit > 0 && n.tick >= limit {
			return ErrTickLimit
		}
		sent, err := n.Tick()
		if err != nil {
			return err
		}
		for _, p := range sent {
			ev := Event{Kind: PacketEvent, Packet: p}
			if p.Dst == n.cfg.NAT {
				ev.Kind = NATEvent
			}
			if !n.Send(p) {
				ev.Kind = DropEvent
			}
			if err := n.record(p); err != nil {
				return err
			}
			if fn(ev) {
				return nil
			}
		}
		if !n.Idle() {
			continue
		}
		p, ok := n.NAT()
		if !ok {
			return ErrDeadlock
		}
		p.Tick, p.Src, p.Dst = n.tick, n.cfg.NAT, 0
		n.Send(p)
		if err := n.record(p); err != nil {
			return err
		}
		if fn(Event{Kind: WakeEvent, Packet: p}) {
			return nil
		}
	}
}

func (n *Network) record(p Packet) error {
	if n.Capture == nil {
		return nil
	}
	if err := n.Capture.Record(p); err != nil {
		return fmt.Errorf("network: capture: %w", err)
	}
	return nil
}
