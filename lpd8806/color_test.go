package lpd8806_test

import (
	"image/color"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"

	. "github.com/coreman2200/funtimes-lpd8806/lpd8806"
)

var TestColorEncodesToExpectedBytes = []struct {
	Color  Color
	Expect [3]byte
}{
	{Color{0, 0, 0}, [3]byte{0x80, 0x80, 0x80}},
	{Color{255, 255, 255}, [3]byte{0xFF, 0xFF, 0xFF}},
	{Color{255, 0, 0}, [3]byte{0x80, 0xFF, 0x80}},
	{Color{0, 255, 0}, [3]byte{0xFF, 0x80, 0x80}},
	{Color{0, 0, 255}, [3]byte{0x80, 0x80, 0xFF}},
	{Color{2, 4, 6}, [3]byte{0x82, 0x81, 0x83}},
	{Color{1, 1, 1}, [3]byte{0x80, 0x80, 0x80}},
	{Color{0x11, 0x22, 0x33}, [3]byte{0x91, 0x88, 0x99}},
}

func TestEncodePixel(t *testing.T) {
	for k, v := range TestColorEncodesToExpectedBytes {
		t.Run("Given RGB"+strconv.Itoa(k), func(t *testing.T) {
			assert.Equal(t, v.Expect, EncodePixel(v.Color))
		})
	}
}

func TestEncodePixelEveryChannelValue(t *testing.T) {
	for v := 0; v < 256; v++ {
		c := byte(v)
		want := 0x80 | c>>1
		for _, col := range []Color{{R: c}, {G: c}, {B: c}, {R: c, G: 255 - c, B: c ^ 0x55}} {
			got := EncodePixel(col)
			for i, b := range got {
				if b&0x80 == 0 {
					t.Fatalf("%+v byte %d = %#x: top bit clear", col, i, b)
				}
			}
			if got[0] != 0x80|col.G>>1 || got[1] != 0x80|col.R>>1 || got[2] != 0x80|col.B>>1 {
				t.Fatalf("%+v -> % x", col, got)
			}
		}
		if got := EncodePixel(Color{R: c}); got[1] != want {
			t.Fatalf("red %d -> %#x, want %#x", v, got[1], want)
		}
	}
}

func TestOffIsBlack(t *testing.T) {
	assert.Equal(t, Off, EncodePixel(Color{}))
}

var TestPackedColors = []struct {
	Packed uint32
	Expect Color
}{
	{0x000000, Color{}},
	{0xFF0000, Color{R: 0xFF}},
	{0x00FF00, Color{G: 0xFF}},
	{0x0000FF, Color{B: 0xFF}},
	{0x112233, Color{0x11, 0x22, 0x33}},
	{0xAB3B8835, Color{0x3B, 0x88, 0x35}},
}

func TestNewColor(t *testing.T) {
	for k, v := range TestPackedColors {
		t.Run("Given packed"+strconv.Itoa(k), func(t *testing.T) {
			c := NewColor(v.Packed)
			assert.Equal(t, v.Expect, c)
			assert.Equal(t, v.Packed&0xFFFFFF, c.Uint32())
		})
	}
}

func TestColorModel(t *testing.T) {
	assert.Equal(t, Color{1, 2, 3}, ColorModel.Convert(Color{1, 2, 3}))
	assert.Equal(t, Color{0x10, 0x20, 0x30}, ColorModel.Convert(color.NRGBA{R: 0x10, G: 0x20, B: 0x30, A: 0xFF}))
	assert.Equal(t, Color{0xFF, 0, 0}, ColorModel.Convert(color.RGBA{R: 0x80, A: 0x80}))
	assert.Equal(t, Color{0x7F, 0x7F, 0x7F}, ColorModel.Convert(color.Gray{Y: 0x7F}))

	r, g, b, a := Color{0xFF, 0x80, 0}.RGBA()
	assert.Equal(t, []uint32{0xFFFF, 0x8080, 0, 0xFFFF}, []uint32{r, g, b, a})
}
