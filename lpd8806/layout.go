package lpd8806

import (
	"fmt"
	"math"
)

const (
	// FrameSize is the length of both the start and the latch frame.
	FrameSize = 4
	// BytesPerLED is the length of one encoded pixel.
	BytesPerLED = 3
)

// MaxLEDs is the largest strip length whose buffer size fits in an int.
const MaxLEDs = (math.MaxInt - 2*FrameSize) / BytesPerLED

// Layout holds the byte offsets of the regions of a transmission buffer.
//
// LatchStart always equals PixelsEnd; there is nothing between the pixels and
// the latch.
type Layout struct {
	DataStart   int
	PixelsStart int
	PixelsEnd   int
	LatchStart  int
	DataEnd     int
}

// NewLayout computes the layout for numLEDs LEDs. Zero is a valid count and
// yields a buffer holding only the two frames.
func NewLayout(numLEDs int) (Layout, error) {
	if numLEDs < 0 || numLEDs > MaxLEDs {
		return Layout{}, fmt.Errorf("lpd8806: %d LEDs: %w", numLEDs, ErrInvalidCount)
	}
	l := Layout{DataStart: 0, PixelsStart: FrameSize}
	l.PixelsEnd = l.PixelsStart + BytesPerLED*numLEDs
	l.LatchStart = l.PixelsEnd
	l.DataEnd = l.LatchStart + FrameSize
	return l, nil
}

// NumLEDs returns the number of LEDs the pixel region holds.
func (l Layout) NumLEDs() int {
	return (l.PixelsEnd - l.PixelsStart) / BytesPerLED
}

// Len returns the total buffer length.
func (l Layout) Len() int {
	return l.DataEnd
}

// Offset returns the offset of the first byte of LED i.
func (l Layout) Offset(i int) int {
	return l.PixelsStart + BytesPerLED*i
}

// Start returns the start frame region of buf.
func (l Layout) Start(buf []byte) []byte {
	return buf[l.DataStart:l.PixelsStart]
}

// Pixels returns the pixel region of buf.
func (l Layout) Pixels(buf []byte) []byte {
	return buf[l.PixelsStart:l.PixelsEnd]
}

// Latch returns the latch frame region of buf.
func (l Layout) Latch(buf []byte) []byte {
	return buf[l.LatchStart:l.DataEnd]
}

// StartFrame returns the reset frame sent ahead of the pixel data.
func StartFrame() []byte {
	return make([]byte, FrameSize)
}

// LatchFrame returns the frame that commits the shifted data to the LEDs.
func LatchFrame() []byte {
	return make([]byte, FrameSize)
}

// frame writes the fixed frames and turns every LED off.
func (l Layout) frame(buf []byte) {
	copy(l.Start(buf), StartFrame())
	copy(l.Latch(buf), LatchFrame())
	fill(l.Pixels(buf), Off)
}
