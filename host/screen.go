package host

import (
	"image"
	"image/color"
	"strings"
	"sync"
)

// Screen is a tile display driven by machine output.
//
// Output values are consumed in triples (x, y, tile). The triple
// (-1, 0, v) sets the score instead of drawing a tile.
type Screen struct {
	Palette []color.RGBA
	Glyphs  string // one character per tile value, for String

	mu     sync.Mutex
	tiles  map[image.Point]int64
	last   map[int64]image.Point // most recent position of each tile value
	bounds image.Rectangle
	score  int64
	buf    []int64
	ops    int // total count of draw operations
}

// DefaultPalette colors tiles 0 through 4 as empty, wall, block, paddle
// and ball.
var DefaultPalette = []color.RGBA{
	{0x10, 0x10, 0x18, 0xff},
	{0x80, 0x80, 0x90, 0xff},
	{0xd0, 0x60, 0x30, 0xff},
	{0x40, 0xa0, 0xf0, 0xff},
	{0xf0, 0xf0, 0xf0, 0xff},
}

// NewScreen returns an empty Screen using DefaultPalette.
func NewScreen() *Screen {
	return &Screen{
		Palette: DefaultPalette,
		Glyphs:  " #%=o",
		tiles:   make(map[image.Point]int64),
		last:    make(map[int64]image.Point),
	}
}

// Write consumes one output value.
func (s *Screen) Write(v int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buf = append(s.buf, v)
	if len(s.buf) < 3 {
		return
	}
	x, y, t := s.buf[0], s.buf[1], s.buf[2]
	s.buf = s.buf[:0]
	if x == -1 && y == 0 {
		s.score = t
		return
	}
	p := image.Pt(int(x), int(y))
	r := image.Rectangle{Min: p, Max: p.Add(image.Pt(1, 1))}
	if len(s.tiles) == 0 {
		s.bounds = r
	} else {
		s.bounds = s.bounds.Union(r)
	}
	s.tiles[p] = t
	s.last[t] = p
	s.ops++
}

// Tile returns the tile at (x, y).
func (s *Screen) Tile(x, y int) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tiles[image.Pt(x, y)]
}

// Count returns the number of positions showing tile t.
func (s *Screen) Count(t int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, v := range s.tiles {
		if v == t {
			n++
		}
	}
	return n
}

// Last returns where tile t was most recently drawn.
func (s *Screen) Last(t int64) (image.Point, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.last[t]
	return p, ok
}

func (s *Screen) Score() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.score
}

// Ops returns the number of tiles drawn so far.
func (s *Screen) Ops() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ops
}

func (s *Screen) Bounds() image.Rectangle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bounds
}

// Image renders the screen with one pixel per tile. Tile values outside
// the palette are drawn in the last palette color.
func (s *Screen) Image() *image.RGBA {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := s.bounds
	if r.Empty() {
		r = image.Rect(0, 0, 1, 1)
	}
	m := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	bg := s.color(0)
	for i := 0; i < len(m.Pix); i += 4 {
		m.Pix[i], m.Pix[i+1], m.Pix[i+2], m.Pix[i+3] = bg.R, bg.G, bg.B, bg.A
	}
	for p, t := range s.tiles {
		m.SetRGBA(p.X-r.Min.X, p.Y-r.Min.Y, s.color(t))
	}
	return m
}

func (s *Screen) color(t int64) color.RGBA {
	if len(s.Palette) == 0 {
		return color.RGBA{A: 0xff}
	}
	if t < 0 || t >= int64(len(s.Palette)) {
		return s.Palette[len(s.Palette)-1]
	}
	return s.Palette[t]
}

// String renders the screen as text, one character per tile.
func (s *Screen) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var b strings.Builder
	for y := s.bounds.Min.Y; y < s.bounds.Max.Y; y++ {
		for x := s.bounds.Min.X; x < s.bounds.Max.X; x++ {
			t := s.tiles[image.Pt(x, y)]
			if t >= 0 && t < int64(len(s.Glyphs)) {
				b.WriteByte(s.Glyphs[t])
			} else {
				b.WriteByte('?')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}
