package spi

import (
	"fmt"
	"image"
	"image/color"
	"sync"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/display"

	"github.com/coreman2200/funtimes-lpd8806/internal/metrics"
	"github.com/coreman2200/funtimes-lpd8806/lpd8806"
)

// Flusher ships the current transmission buffer somewhere.
type Flusher interface {
	String() string
	Flush() error
}

// Transmitter writes the encoder's transmission buffer to a connection. The
// buffer is copied under the encoder guard and written after it is released.
type Transmitter struct {
	Metrics *metrics.Metrics

	c   conn.Conn
	enc *lpd8806.Encoder

	mu      sync.Mutex
	scratch []byte
}

func NewTransmitter(c conn.Conn, enc *lpd8806.Encoder) *Transmitter {
	return &Transmitter{c: c, enc: enc}
}

func (t *Transmitter) String() string {
	return t.c.String()
}

// Flush sends one full strip update. Writes are split when the connection
// advertises a maximum transaction size.
func (t *Transmitter) Flush() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.scratch = t.enc.SnapshotInto(t.scratch)
	n, err := t.write(t.scratch)
	t.Metrics.Transmitted(n, err)
	return err
}

func (t *Transmitter) write(b []byte) (int, error) {
	limit := len(b)
	if l, ok := t.c.(conn.Limits); ok {
		if m := l.MaxTxSize(); m > 0 && m < limit {
			limit = m
		}
	}
	n := 0
	for len(b) > 0 {
		chunk := b
		if len(chunk) > limit {
			chunk = chunk[:limit]
		}
		if err := t.c.Tx(chunk, nil); err != nil {
			return n, fmt.Errorf("spi: tx %d bytes at %d: %w", len(chunk), n, err)
		}
		n += len(chunk)
		b = b[len(chunk):]
	}
	return n, nil
}

// Console prints the strip through a display.Drawer, typically the periph
// console screen, when no SPI port is available.
type Console struct {
	d   display.Drawer
	enc *lpd8806.Encoder

	mu      sync.Mutex
	scratch []byte
}

func NewConsole(d display.Drawer, enc *lpd8806.Encoder) *Console {
	return &Console{d: d, enc: enc}
}

func (c *Console) String() string {
	return c.d.String()
}

// Flush draws what the strip would show for the current buffer.
func (c *Console) Flush() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.scratch = c.enc.SnapshotInto(c.scratch)
	colors, err := lpd8806.ParseFrame(c.scratch)
	if err != nil {
		return err
	}
	im := image.NewNRGBA(image.Rect(0, 0, len(colors), 1))
	for x, col := range colors {
		im.SetNRGBA(x, 0, color.NRGBA{R: col.R, G: col.G, B: col.B, A: 255})
	}
	return c.d.Draw(c.d.Bounds(), im, image.Point{})
}
