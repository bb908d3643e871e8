package lpd8806

import (
	"fmt"
	"io"
	"sync"
	"sync/atomic"
)

// Encoder turns a logical color surface into an LPD8806 transmission buffer.
//
// The surface has a single writer, the producer that renders the frame. The
// transmission buffer is shared with a consumer that ships it over the wire;
// every access to it goes through one mutex so a reader sees either the buffer
// before or after an Encode or Resize, never a mix.
type Encoder struct {
	// mu guards layout, surface and tx.
	mu      sync.Mutex
	layout  Layout
	surface []Color
	tx      []byte

	needsEncoding atomic.Bool
}

// New returns an Encoder for numLEDs LEDs with every LED off.
func New(numLEDs int) (*Encoder, error) {
	e := &Encoder{}
	if err := e.Resize(numLEDs); err != nil {
		return nil, err
	}
	return e, nil
}

// Resize reallocates the surface and the buffer for numLEDs LEDs. Prior colors
// are discarded and every LED is turned off.
//
// The new buffers are allocated before the guard is taken; on error the
// Encoder is left as it was.
func (e *Encoder) Resize(numLEDs int) error {
	l, err := NewLayout(numLEDs)
	if err != nil {
		return err
	}
	surface, tx, err := allocate(l)
	if err != nil {
		return err
	}
	l.frame(tx)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.layout = l
	e.surface = surface
	e.tx = tx
	e.needsEncoding.Store(false)
	return nil
}

// Clear sets every LED to c, in both the surface and the buffer, without a
// full encode pass.
func (e *Encoder) Clear(c Color) {
	p := EncodePixel(c)

	e.mu.Lock()
	defer e.mu.Unlock()
	fill(e.layout.Pixels(e.tx), p)
	for i := range e.surface {
		e.surface[i] = c
	}
	e.needsEncoding.Store(false)
}

// Encode rewrites the whole pixel region from the surface. Every LED slot is
// overwritten.
func (e *Encoder) Encode() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := e.layout.NumLEDs()
	if len(e.surface) != n || len(e.tx) != e.layout.Len() {
		return fmt.Errorf("lpd8806: surface has %d LEDs, buffer %d: %w", len(e.surface), n, ErrSizeMismatch)
	}
	encodeInto(e.layout.Pixels(e.tx), e.surface)
	e.needsEncoding.Store(false)
	return nil
}

// EncodeIfNeeded encodes only when the surface changed since the last Encode
// or Clear. It reports whether an encode happened.
func (e *Encoder) EncodeIfNeeded() (bool, error) {
	if !e.needsEncoding.Load() {
		return false, nil
	}
	if err := e.Encode(); err != nil {
		return false, err
	}
	return true, nil
}

// NeedsEncoding reports whether the pixel region is stale.
func (e *Encoder) NeedsEncoding() bool {
	return e.needsEncoding.Load()
}

// MarkDirty flags the surface as changed. Call it after writing to the slice
// returned by Surface.
func (e *Encoder) MarkDirty() {
	e.needsEncoding.Store(true)
}

// Surface returns the logical colors, one per LED. Reading it does not change
// NeedsEncoding; call MarkDirty after writing to it. The slice is invalidated
// by Resize and must not be written while Encode runs.
func (e *Encoder) Surface() []Color {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.surface
}

// SetPixel sets LED i to c.
func (e *Encoder) SetPixel(i int, c Color) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if i < 0 || i >= len(e.surface) {
		return fmt.Errorf("lpd8806: LED %d of %d: %w", i, len(e.surface), ErrIndex)
	}
	e.surface[i] = c
	e.needsEncoding.Store(true)
	return nil
}

// Fill sets every LED of the surface to c. Unlike Clear the buffer is only
// updated by the next Encode.
func (e *Encoder) Fill(c Color) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i := range e.surface {
		e.surface[i] = c
	}
	e.needsEncoding.Store(true)
}

// NumLEDs returns the current strip length.
func (e *Encoder) NumLEDs() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.layout.NumLEDs()
}

// Layout returns the current buffer layout.
func (e *Encoder) Layout() Layout {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.layout
}

// Snapshot returns a copy of the transmission buffer.
func (e *Encoder) Snapshot() []byte {
	return e.SnapshotInto(nil)
}

// SnapshotInto copies the transmission buffer into dst, growing it as needed,
// and returns it. Consumers running every frame reuse dst to avoid
// allocating.
func (e *Encoder) SnapshotInto(dst []byte) []byte {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append(dst[:0], e.tx...)
}

// WriteTo implements io.WriterTo. The guard is only held while copying, not
// while w is written.
func (e *Encoder) WriteTo(w io.Writer) (int64, error) {
	b := e.Snapshot()
	n, err := w.Write(b)
	return int64(n), err
}

// allocate turns the runtime panic of an out of range make into an error.
// Running out of memory for a representable size is fatal in Go and is not
// caught here; hosts bound the count before calling New or Resize.
func allocate(l Layout) (surface []Color, tx []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			surface, tx = nil, nil
			err = fmt.Errorf("lpd8806: %d LEDs: %w: %v", l.NumLEDs(), ErrAllocation, r)
		}
	}()
	surface = make([]Color, l.NumLEDs())
	tx = make([]byte, l.Len())
	return surface, tx, nil
}

var _ io.WriterTo = &Encoder{}
