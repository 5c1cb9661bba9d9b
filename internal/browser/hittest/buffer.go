// internal/browser/hittest/buffer.go
package hittest

import (
	"image"
	"image/color"
)

// None is the id of pixels no node has painted.
const None uint32 = 0

// Pack encodes a node id as a color, one byte per channel, most significant
// byte in red.
func Pack(id uint32) color.RGBA {
	return color.RGBA{R: uint8(id >> 24), G: uint8(id >> 16), B: uint8(id >> 8), A: uint8(id)}
}

// Unpack is the inverse of Pack.
func Unpack(c color.RGBA) uint32 {
	return uint32(c.R)<<24 | uint32(c.G)<<16 | uint32(c.B)<<8 | uint32(c.A)
}

// Buffer is an off-screen surface the size of the viewport in which every
// pixel holds the id of the node painted last at that position. Pixels are
// written without blending or antialiasing, so an id never mixes with a
// neighbour's.
type Buffer struct {
	img  *image.RGBA
	clip image.Rectangle
}

// New allocates a cleared buffer.
func New(width, height int) *Buffer {
	b := &Buffer{}
	b.Resize(width, height)
	return b
}

// Resize reallocates the buffer. Its contents are cleared.
func (b *Buffer) Resize(width, height int) {
	b.img = image.NewRGBA(image.Rect(0, 0, max(width, 0), max(height, 0)))
	b.clip = b.img.Rect
}

// Bounds is the buffer's rectangle, anchored at the origin.
func (b *Buffer) Bounds() image.Rectangle { return b.img.Rect }

// Image exposes the raw id surface.
func (b *Buffer) Image() *image.RGBA { return b.img }

// Clear resets every pixel to None and drops the clip.
func (b *Buffer) Clear() {
	clear(b.img.Pix)
	b.clip = b.img.Rect
}

// SetClip restricts later fills to r.
func (b *Buffer) SetClip(r image.Rectangle) {
	b.clip = r.Intersect(b.img.Rect)
}

// ResetClip removes the clip.
func (b *Buffer) ResetClip() { b.clip = b.img.Rect }

// FillRect stamps id over r.
func (b *Buffer) FillRect(r image.Rectangle, id uint32) {
	r = r.Canon().Intersect(b.clip)
	if r.Empty() {
		return
	}
	c := Pack(id)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		off := b.img.PixOffset(r.Min.X, y)
		for x := r.Min.X; x < r.Max.X; x++ {
			b.img.Pix[off], b.img.Pix[off+1], b.img.Pix[off+2], b.img.Pix[off+3] = c.R, c.G, c.B, c.A
			off += 4
		}
	}
}

// FillRoundedRect stamps id over r with the corners cut to the given radii,
// clockwise from top-left. A pixel belongs to the shape when its center does.
func (b *Buffer) FillRoundedRect(r image.Rectangle, radii [4]int, id uint32) {
	r = r.Canon()
	if radii == [4]int{} {
		b.FillRect(r, id)
		return
	}
	shape := newRoundedRect(r, radii)
	area := r.Intersect(b.clip)
	if area.Empty() {
		return
	}
	c := Pack(id)
	for y := area.Min.Y; y < area.Max.Y; y++ {
		for x := area.Min.X; x < area.Max.X; x++ {
			if shape.contains(x, y) {
				b.img.SetRGBA(x, y, c)
			}
		}
	}
}

// Query returns the id painted at (x, y). It reports false outside the
// buffer and where nothing was painted.
func (b *Buffer) Query(x, y int) (uint32, bool) {
	if !image.Pt(x, y).In(b.img.Rect) {
		return None, false
	}
	id := Unpack(b.img.RGBAAt(x, y))
	return id, id != None
}

type roundedRect struct {
	r              image.Rectangle
	tl, tr, br, bl float64
}

func newRoundedRect(r image.Rectangle, radii [4]int) roundedRect {
	limit := float64(min(r.Dx(), r.Dy())) / 2
	clamp := func(v int) float64 {
		return min(max(float64(v), 0), limit)
	}
	return roundedRect{r: r, tl: clamp(radii[0]), tr: clamp(radii[1]), br: clamp(radii[2]), bl: clamp(radii[3])}
}

func (s roundedRect) contains(x, y int) bool {
	px, py := float64(x)+0.5, float64(y)+0.5
	minX, minY := float64(s.r.Min.X), float64(s.r.Min.Y)
	maxX, maxY := float64(s.r.Max.X), float64(s.r.Max.Y)
	if px < minX || py < minY || px > maxX || py > maxY {
		return false
	}
	inCorner := func(cx, cy, radius float64) bool {
		dx, dy := px-cx, py-cy
		return dx*dx+dy*dy <= radius*radius
	}
	switch {
	case px < minX+s.tl && py < minY+s.tl:
		return inCorner(minX+s.tl, minY+s.tl, s.tl)
	case px > maxX-s.tr && py < minY+s.tr:
		return inCorner(maxX-s.tr, minY+s.tr, s.tr)
	case px > maxX-s.br && py > maxY-s.br:
		return inCorner(maxX-s.br, maxY-s.br, s.br)
	case px < minX+s.bl && py > maxY-s.bl:
		return inCorner(minX+s.bl, maxY-s.bl, s.bl)
	}
	return true
}
