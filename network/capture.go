package network

import (
	"errors"
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"
)

var captureEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("network: failed to create CBOR enc mode: %v", err))
	}
	captureEncMode = em
}

// Capture writes packets to a stream as a sequence of CBOR arrays.
type Capture struct {
	enc *cbor.Encoder
	n   int
}

// NewCapture returns a Capture that writes to w.
func NewCapture(w io.Writer) *Capture {
	return &Capture{enc: captureEncMode.NewEncoder(w)}
}

// Record appends p to the stream.
func (c *Capture) Record(p Packet) error {
	if err := c.enc.Encode(p); err != nil {
		return err
	}
	c.n++
	return nil
}

// Len returns the number of packets recorded.
func (c *Capture) Len() int { return c.n }

// ReadCapture decodes all packets from a stream written by Capture.
func ReadCapture(r io.Reader) ([]Packet, error) {
	var (
		dec = cbor.NewDecoder(r)
		ps  []Packet
	)
	for {
		var p Packet
		if err := dec.Decode(&p); err != nil {
			if errors.Is(err, io.EOF) {
				return ps, nil
			}
			return ps, fmt.Errorf("network: reading capture packet %d: %w", len(ps), err)
		}
		ps = append(ps, p)
	}
}
