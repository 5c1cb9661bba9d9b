package hittest

import (
	"image"
	"image/color"
	"testing"

	fuzz "github.com/AdaLogics/go-fuzz-headers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPackUnpack(t *testing.T) {
	assert.Equal(t, color.RGBA{R: 0x12, G: 0x34, B: 0x56, A: 0x78}, Pack(0x12345678))
	for _, id := range []uint32{0, 1, 255, 256, 65535, 1 << 24, 0xffffffff} {
		assert.Equal(t, id, Unpack(Pack(id)), "id %d", id)
	}
}

func TestQueryRoundTrip(t *testing.T) {
	b := New(100, 100)
	b.FillRect(image.Rect(10, 10, 50, 50), 7)

	id, ok := b.Query(20, 20)
	require.True(t, ok)
	assert.Equal(t, uint32(7), id)

	_, ok = b.Query(5, 5)
	assert.False(t, ok, "unpainted")
	_, ok = b.Query(50, 50)
	assert.False(t, ok, "max edge is exclusive")
	_, ok = b.Query(-1, 20)
	assert.False(t, ok, "outside the viewport")
	_, ok = b.Query(100, 20)
	assert.False(t, ok, "outside the viewport")
}

func TestLaterFillsWin(t *testing.T) {
	b := New(40, 40)
	b.FillRect(image.Rect(0, 0, 40, 40), 1)
	b.FillRect(image.Rect(10, 10, 20, 20), 256)

	id, _ := b.Query(15, 15)
	assert.Equal(t, uint32(256), id, "an id with a zero low byte still reads back")
	id, _ = b.Query(5, 5)
	assert.Equal(t, uint32(1), id)
}

func TestRoundedCornersStayUnpainted(t *testing.T) {
	b := New(100, 100)
	b.FillRoundedRect(image.Rect(0, 0, 100, 100), [4]int{20, 0, 0, 0}, 3)

	_, ok := b.Query(0, 0)
	assert.False(t, ok, "top-left corner is cut")
	id, ok := b.Query(99, 0)
	require.True(t, ok, "top-right corner is square")
	assert.Equal(t, uint32(3), id)
	_, ok = b.Query(50, 50)
	assert.True(t, ok)
	_, ok = b.Query(15, 15)
	assert.True(t, ok, "inside the arc")
}

func TestClipAndClear(t *testing.T) {
	b := New(50, 50)
	b.SetClip(image.Rect(0, 0, 10, 10))
	b.FillRect(image.Rect(0, 0, 50, 50), 9)

	_, ok := b.Query(5, 5)
	assert.True(t, ok)
	_, ok = b.Query(20, 20)
	assert.False(t, ok, "clipped")

	b.Clear()
	_, ok = b.Query(5, 5)
	assert.False(t, ok)
	b.FillRect(image.Rect(0, 0, 50, 50), 9)
	_, ok = b.Query(20, 20)
	assert.True(t, ok, "clear drops the clip")
}

func TestResize(t *testing.T) {
	b := New(10, 10)
	b.FillRect(b.Bounds(), 1)
	b.Resize(20, 5)
	assert.Equal(t, image.Rect(0, 0, 20, 5), b.Bounds())
	_, ok := b.Query(1, 1)
	assert.False(t, ok)
	_, ok = b.Query(15, 8)
	assert.False(t, ok)
}

func FuzzFillRoundedRect(f *testing.F) {
	f.Add([]byte("seed"))
	f.Fuzz(func(t *testing.T, data []byte) {
		var args struct {
			X0, Y0, X1, Y1 int16
			Radii          [4]int16
			ID             uint32
		}
		if err := fuzz.NewConsumer(data).GenerateStruct(&args); err != nil {
			return
		}
		b := New(64, 64)
		r := image.Rect(int(args.X0), int(args.Y0), int(args.X1), int(args.Y1))
		radii := [4]int{int(args.Radii[0]), int(args.Radii[1]), int(args.Radii[2]), int(args.Radii[3])}
		b.FillRoundedRect(r, radii, args.ID)

		for y := 0; y < 64; y++ {
			for x := 0; x < 64; x++ {
				id, ok := b.Query(x, y)
				if ok && (!image.Pt(x, y).In(r.Canon()) || id != args.ID) {
					t.Fatalf("pixel (%d,%d) = %d outside %v", x, y, id, r)
				}
			}
		}
	})
}
