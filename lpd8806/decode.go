package lpd8806

import (
	"fmt"
)

// DecodePixel returns the color an LED shows for the encoded pixel p, scaled
// back to 8 bits. The low bit lost by EncodePixel reads as zero.
func DecodePixel(p [BytesPerLED]byte) Color {
	return Color{R: (p[1] & 0x7f) << 1, G: (p[0] & 0x7f) << 1, B: (p[2] & 0x7f) << 1}
}

// ParseFrame checks that buf is a complete transmission buffer and returns the
// colors it carries.
func ParseFrame(buf []byte) ([]Color, error) {
	if len(buf) < 2*FrameSize || (len(buf)-2*FrameSize)%BytesPerLED != 0 {
		return nil, fmt.Errorf("lpd8806: %d bytes: %w", len(buf), ErrFrame)
	}
	l, err := NewLayout((len(buf) - 2*FrameSize) / BytesPerLED)
	if err != nil {
		return nil, err
	}
	for _, b := range l.Start(buf) {
		if b != 0 {
			return nil, fmt.Errorf("lpd8806: start frame % x: %w", l.Start(buf), ErrFrame)
		}
	}
	for _, b := range l.Latch(buf) {
		if b != 0 {
			return nil, fmt.Errorf("lpd8806: latch frame % x: %w", l.Latch(buf), ErrFrame)
		}
	}
	px := l.Pixels(buf)
	out := make([]Color, l.NumLEDs())
	for i := range out {
		p := [BytesPerLED]byte{px[3*i], px[3*i+1], px[3*i+2]}
		if p[0]&p[1]&p[2]&0x80 == 0 {
			return nil, fmt.Errorf("lpd8806: LED %d % x: %w", i, p[:], ErrFrame)
		}
		out[i] = DecodePixel(p)
	}
	return out, nil
}
