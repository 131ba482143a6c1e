package host

import (
	"fmt"
	"image"
	"log"
	"time"

	"golang.org/x/exp/shiny/driver"
	"golang.org/x/exp/shiny/screen"
	"golang.org/x/image/draw"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"
)

// GUI shows a Screen in a window and drives a Joystick from the arrow keys.
type GUI struct {
	Title string
	Scale int // window pixels per tile

	scr *Screen
	joy *Joystick

	size  image.Point
	buf   screen.Buffer
	tex   screen.Texture
	ops   int // updated to match scr.Ops after copying into buf
	dirty bool
}

func NewGUI(scr *Screen, joy *Joystick) *GUI {
	return &GUI{Title: "intcode", Scale: 16, scr: scr, joy: joy, ops: -1}
}

// Run opens the window and handles its events until exit is closed or the
// window is closed. It must be called from the main goroutine.
func (g *GUI) Run(exit <-chan bool) error {
	driver.Main(func(s screen.Screen) {
		w, err := s.NewWindow(&screen.NewWindowOptions{
			Title:  g.Title,
			Width:  40 * g.Scale,
			Height: 25 * g.Scale,
		})
		if err != nil {
			log.Fatal(err)
		}
		defer w.Release()

		type update struct{}
		go func() {
			t := time.NewTicker(time.Second / 60)
			defer t.Stop()
			for {
				select {
				case <-t.C:
					w.Send(update{})
				case <-exit:
					return
				}
			}
		}()

		defer g.release()

		var sz size.Event
		for {
			e := w.NextEvent()

			select {
			case <-exit:
				return
			default:
			}

			switch e := e.(type) {
			case size.Event:
				sz = e
				if sz.WidthPx+sz.HeightPx == 0 {
					return
				}
				g.dirty = true

			case lifecycle.Event:
				if e.To == lifecycle.StageDead {
					return
				}

			case paint.Event:
				g.dirty = true

			case key.Event:
				if e.Code == key.CodeEscape {
					return
				}
				g.key(e)

			case update:
				if err := g.update(s); err != nil {
					log.Fatalf("update: %v", err)
				}
				if g.dirty && g.tex != nil {
					g.tex.Upload(image.Point{}, g.buf, g.buf.Bounds())
					w.Scale(sz.Bounds(), g.tex, g.tex.Bounds(), draw.Src, nil)
					w.Publish()
					g.dirty = false
				}

			case error:
				log.Print(e)

			default:
				format := "got %#v\n"
				if _, ok := e.(fmt.Stringer); ok {
					format = "got %v\n"
				}
				log.Printf(format, e)
			}
		}
	})
	return nil
}

func (g *GUI) key(e key.Event) {
	if g.joy == nil || e.Direction == key.DirNone {
		return
	}
	var tilt int64
	switch e.Code {
	case key.CodeLeftArrow:
		tilt = -1
	case key.CodeRightArrow:
		tilt = 1
	default:
		return
	}
	if e.Direction == key.DirRelease {
		tilt = 0
	}
	g.joy.Set(tilt)
}

func (g *GUI) update(s screen.Screen) (err error) {
	o := g.scr.Ops()
	if o == g.ops {
		return nil
	}
	m := g.scr.Image()
	dim := m.Bounds().Size().Mul(g.Scale)
	if g.tex == nil || g.size != dim {
		g.release()
		g.size = dim
		g.buf, err = s.NewBuffer(dim)
		if err != nil {
			return
		}
		g.tex, err = s.NewTexture(dim)
		if err != nil {
			return
		}
	}
	draw.NearestNeighbor.Scale(g.buf.RGBA(), g.buf.Bounds(), m, m.Bounds(), draw.Src, nil)
	g.ops = o
	g.dirty = true
	return
}

func (g *GUI) release() {
	if g.tex != nil {
		g.tex.Release()
		g.tex = nil
	}
	if g.buf != nil {
		g.buf.Release()
		g.buf = nil
	}
}
