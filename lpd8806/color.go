package lpd8806

import (
	"image/color"
	"sync"
)

const (
	redOffset   = 16
	greenOffset = 8
	blueOffset  = 0
)

// Color is an 8 bit per channel RGB color.
type Color struct {
	R, G, B uint8
}

// NewColor unpacks a 0xRRGGBB value. Bits above the red channel are ignored.
func NewColor(c uint32) Color {
	return Color{
		R: uint8(c >> redOffset),
		G: uint8(c >> greenOffset),
		B: uint8(c >> blueOffset),
	}
}

// Uint32 packs c as 0xRRGGBB.
func (c Color) Uint32() uint32 {
	return uint32(c.R)<<redOffset | uint32(c.G)<<greenOffset | uint32(c.B)<<blueOffset
}

// RGBA implements color.Color. Color is always opaque.
func (c Color) RGBA() (r, g, b, a uint32) {
	r = uint32(c.R)
	r |= r << 8
	g = uint32(c.G)
	g |= g << 8
	b = uint32(c.B)
	b |= b << 8
	return r, g, b, 0xffff
}

// ColorModel converts any color to Color. Alpha is dropped after the color is
// un-premultiplied.
var ColorModel = color.ModelFunc(func(c color.Color) color.Color {
	if cc, ok := c.(Color); ok {
		return cc
	}
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return Color{R: n.R, G: n.G, B: n.B}
})

// Off is the encoding of black. The pixel region is never filled with zeros
// since those would read as frame bytes.
var Off = [BytesPerLED]byte{0x80, 0x80, 0x80}

var (
	channelOnce  sync.Once
	channelTable [256]byte
)

// channels returns the per channel transform, built once and shared by every
// Encoder.
func channels() *[256]byte {
	channelOnce.Do(func() {
		for v := range channelTable {
			channelTable[v] = 0x80 | byte(v)>>1
		}
	})
	return &channelTable
}

// EncodePixel returns the three bytes sent for c, in green, red, blue order.
//
// The low bit of every channel is discarded; the chip only has 7 bits of
// intensity.
func EncodePixel(c Color) [BytesPerLED]byte {
	t := channels()
	return [BytesPerLED]byte{t[c.G], t[c.R], t[c.B]}
}

// encodeInto writes the encoding of every color in src to dst, which must be
// exactly BytesPerLED*len(src) long.
func encodeInto(dst []byte, src []Color) {
	t := channels()
	for i, c := range src {
		p := dst[BytesPerLED*i : BytesPerLED*i+BytesPerLED : BytesPerLED*i+BytesPerLED]
		p[0] = t[c.G]
		p[1] = t[c.R]
		p[2] = t[c.B]
	}
}

func fill(dst []byte, p [BytesPerLED]byte) {
	for i := 0; i+BytesPerLED <= len(dst); i += BytesPerLED {
		copy(dst[i:i+BytesPerLED], p[:])
	}
}
