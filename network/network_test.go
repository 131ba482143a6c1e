package network

import (
	"bytes"
	"errors"
	"testing"

	"github.com/nf/intcode/intcode"
)

// relay returns a node program for a network of n nodes. Node a forwards
// each packet (x, y) it receives to node a+1 as (x, y+1); the last node
// forwards to 255.
func relay(n int64) []int64 {
	return []int64{
		3, 100, // addr
		1001, 100, 1, 101, // dst := addr + 1
		3, 102, // x
		1008, 102, -1, 103,
		1005, 103, 6, // no packet: poll again
		3, 104, // y
		1007, 101, n, 103,
		1005, 103, 28,
		1101, 0, 255, 101, // last node: dst := 255
		4, 101,
		4, 102,
		1001, 104, 1, 104,
		4, 104,
		1105, 1, 6,
	}
}

func testConfig(nodes int) Config {
	cfg := DefaultConfig()
	cfg.Nodes = nodes
	cfg.MaxTicks = 10000
	return cfg
}

func TestRelay(t *testing.T) {
	n := New(relay(3), testConfig(3))
	n.Send(Packet{Dst: 0, X: 7, Y: 0})

	var (
		got  []Event
		nats int
	)
	err := n.Run(func(ev Event) bool {
		got = append(got, ev)
		if ev.Kind == NATEvent {
			nats++
		}
		return nats == 2
	})
	if err != nil {
		t.Fatal(err)
	}

	want := []struct {
		kind     EventKind
		src, dst int64
		y        int64
	}{
		{PacketEvent, 0, 1, 1},
		{PacketEvent, 1, 2, 2},
		{NATEvent, 2, 255, 3},
		{WakeEvent, 255, 0, 3},
		{PacketEvent, 0, 1, 4},
		{PacketEvent, 1, 2, 5},
		{NATEvent, 2, 255, 6},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d events %v, want %d", len(got), got, len(want))
	}
	for i, w := range want {
		g := got[i]
		if g.Kind != w.kind || g.Packet.Src != w.src || g.Packet.Dst != w.dst ||
			g.Packet.X != 7 || g.Packet.Y != w.y {
			t.Errorf("event %d is %v %v, want %v %d -> %d (7, %d)",
				i, g.Kind, g.Packet, w.kind, w.src, w.dst, w.y)
		}
	}
	if p, ok := n.NAT(); !ok || p.Y != 6 {
		t.Errorf("NAT() = %v, %v; want Y 6", p, ok)
	}
}

func TestDeadlock(t *testing.T) {
	n := New(relay(3), testConfig(3))
	err := n.Run(func(Event) bool { return false })
	if err != ErrDeadlock {
		t.Fatalf("Run error %v, want %v", err, ErrDeadlock)
	}
	if !n.Idle() {
		t.Error("network not idle after deadlock")
	}
	if g := n.Ticks(); g != 3 {
		t.Errorf("deadlocked after %d ticks, want 3", g)
	}
}

func TestDrop(t *testing.T) {
	cfg := testConfig(2)
	cfg.NAT = 1000
	n := New(relay(2), cfg)
	n.Send(Packet{Dst: 0, X: 1, Y: 1})
	var last Event
	err := n.Run(func(ev Event) bool {
		last = ev
		return ev.Kind == DropEvent
	})
	if err != nil {
		t.Fatal(err)
	}
	if last.Kind != DropEvent || last.Packet.Dst != 255 {
		t.Errorf("last event %v %v, want drop to 255", last.Kind, last.Packet)
	}
}

func TestTickLimit(t *testing.T) {
	cfg := testConfig(3)
	cfg.MaxTicks = 5
	n := New(relay(3), cfg)
	n.Send(Packet{Dst: 0, X: 1, Y: 1})
	if err := n.Run(func(Event) bool { return false }); err != ErrTickLimit {
		t.Fatalf("Run error %v, want %v", err, ErrTickLimit)
	}
	if g := n.Ticks(); g != 5 {
		t.Errorf("ran %d ticks, want 5", g)
	}
}

func TestNodeFault(t *testing.T) {
	n := New([]int64{42}, testConfig(2))
	_, err := n.Tick()
	if !errors.Is(err, intcode.ErrMalformedProgram) {
		t.Fatalf("Tick error %v, want malformed program", err)
	}
	if g, w := err.Error(), "node 0: unknown opcode 42 at 0"; g != w {
		t.Errorf("error %q, want %q", g, w)
	}
}

func TestNodeAddress(t *testing.T) {
	n := New([]int64{3, 10, 4, 10, 99}, testConfig(4))
	for addr := 0; addr < 4; addr++ {
		v, ok, err := n.Machine(addr).RunUntilOutput()
		if err != nil || !ok || v != int64(addr) {
			t.Errorf("node %d read address %d, %v, %v", addr, v, ok, err)
		}
	}
}

func TestCapture(t *testing.T) {
	var buf bytes.Buffer
	n := New(relay(3), testConfig(3))
	n.Capture = NewCapture(&buf)
	n.Send(Packet{Dst: 0, X: 7, Y: 0})

	var want []Packet
	err := n.Run(func(ev Event) bool {
		want = append(want, ev.Packet)
		return ev.Kind == WakeEvent
	})
	if err != nil {
		t.Fatal(err)
	}
	if g, w := n.Capture.Len(), len(want); g != w {
		t.Errorf("Capture.Len() = %d, want %d", g, w)
	}

	got, err := ReadCapture(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != len(want) {
		t.Fatalf("read %d packets, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("packet %d is %+v, want %+v", i, got[i], want[i])
		}
		if got[i].Tick == 0 {
			t.Errorf("packet %d has no tick", i)
		}
	}
}

func TestReadCaptureTruncated(t *testing.T) {
	var buf bytes.Buffer
	c := NewCapture(&buf)
	if err := c.Record(Packet{Tick: 1, Src: 2, Dst: 3, X: 4, Y: 5}); err != nil {
		t.Fatal(err)
	}
	b := buf.Bytes()
	ps, err := ReadCapture(bytes.NewReader(b[:len(b)-1]))
	if err == nil {
		t.Fatalf("ReadCapture of truncated stream returned %v, nil", ps)
	}
}
