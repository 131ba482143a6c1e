package host

import "sync"

// Joystick is an input source reporting a tilt of -1, 0 or 1.
//
// A joystick with a non-nil Follow screen steers on its own, tilting from
// the Paddle tile toward the Ball tile. Otherwise it reports the tilt last
// set, typically from GUI key events.
type Joystick struct {
	Follow *Screen
	Ball   int64
	Paddle int64

	mu   sync.Mutex
	tilt int64
}

// Set sets the manual tilt.
func (j *Joystick) Set(tilt int64) {
	j.mu.Lock()
	j.tilt = tilt
	j.mu.Unlock()
}

// Input implements intcode.InputSource.
func (j *Joystick) Input() int64 {
	if s := j.Follow; s != nil {
		ball, ok1 := s.Last(j.Ball)
		paddle, ok2 := s.Last(j.Paddle)
		if !ok1 || !ok2 {
			return 0
		}
		switch {
		case paddle.X < ball.X:
			return 1
		case paddle.X > ball.X:
			return -1
		}
		return 0
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.tilt
}
