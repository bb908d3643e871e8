package lpd8806_test

import (
	"bytes"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/coreman2200/funtimes-lpd8806/lpd8806"
)

var zeros = []byte{0, 0, 0, 0}

func repeat(p [3]byte, n int) []byte {
	return bytes.Repeat(p[:], n)
}

func requireFramed(t *testing.T, buf []byte, n int) {
	t.Helper()
	require.Len(t, buf, 4+3*n+4)
	assert.Equal(t, zeros, buf[:4], "start frame")
	assert.Equal(t, zeros, buf[len(buf)-4:], "latch frame")
}

func TestNewIsOff(t *testing.T) {
	for _, n := range []int{0, 1, 3, 64, 1000} {
		t.Run(strconv.Itoa(n), func(t *testing.T) {
			e, err := New(n)
			require.NoError(t, err)
			buf := e.Snapshot()
			requireFramed(t, buf, n)
			assert.Equal(t, repeat(Off, n), buf[4:4+3*n])
			assert.False(t, e.NeedsEncoding())
			assert.Equal(t, n, e.NumLEDs())
			assert.Len(t, e.Surface(), n)
		})
	}
}

func TestNewRejectsNegative(t *testing.T) {
	e, err := New(-1)
	assert.ErrorIs(t, err, ErrInvalidCount)
	assert.Nil(t, e)
}

func TestNewAllocationFailure(t *testing.T) {
	if strconv.IntSize < 64 {
		t.Skip("needs a 64 bit address space")
	}
	_, err := New(MaxLEDs)
	assert.ErrorIs(t, err, ErrAllocation)
}

func TestClearRed(t *testing.T) {
	e, err := New(3)
	require.NoError(t, err)
	e.Clear(Color{R: 255})

	buf := e.Snapshot()
	requireFramed(t, buf, 3)
	assert.Equal(t, []byte{0x80, 0xFF, 0x80, 0x80, 0xFF, 0x80, 0x80, 0xFF, 0x80}, buf[4:13])
	assert.False(t, e.NeedsEncoding())

	// The surface follows so the next encode keeps the same bytes.
	assert.Equal(t, []Color{{R: 255}, {R: 255}, {R: 255}}, e.Surface())
	require.NoError(t, e.Encode())
	assert.Equal(t, buf, e.Snapshot())
}

func TestEncodeSingleLED(t *testing.T) {
	e, err := New(1)
	require.NoError(t, err)
	require.NoError(t, e.SetPixel(0, Color{R: 2, G: 4, B: 6}))
	assert.True(t, e.NeedsEncoding())

	require.NoError(t, e.Encode())
	assert.False(t, e.NeedsEncoding())
	assert.Equal(t, []byte{0, 0, 0, 0, 0x82, 0x81, 0x83, 0, 0, 0, 0}, e.Snapshot())
}

func TestEncodeOrder(t *testing.T) {
	e, err := New(4)
	require.NoError(t, err)
	s := e.Surface()
	for i := range s {
		s[i] = Color{R: byte(i * 2), G: byte(i * 4), B: byte(i * 8)}
	}
	require.NoError(t, e.Encode())

	buf := e.Snapshot()
	l := e.Layout()
	for i, c := range s {
		p := EncodePixel(c)
		assert.Equal(t, p[:], buf[l.Offset(i):l.Offset(i)+3], "LED %d", i)
	}
}

func TestEncodeOverwritesEverySlot(t *testing.T) {
	e, err := New(5)
	require.NoError(t, err)
	e.Clear(Color{R: 255, G: 255, B: 255})

	s := e.Surface()
	for i := range s {
		s[i] = Color{}
	}
	require.NoError(t, e.Encode())
	assert.Equal(t, repeat(Off, 5), e.Snapshot()[4:19])
}

func TestEncodeIsIdempotent(t *testing.T) {
	e, err := New(8)
	require.NoError(t, err)
	s := e.Surface()
	for i := range s {
		s[i] = NewColor(uint32(0x102030 * (i + 1)))
	}
	require.NoError(t, e.Encode())
	first := e.Snapshot()
	require.NoError(t, e.Encode())
	assert.Equal(t, first, e.Snapshot())
}

func TestEncodeIfNeeded(t *testing.T) {
	e, err := New(2)
	require.NoError(t, err)

	done, err := e.EncodeIfNeeded()
	require.NoError(t, err)
	assert.False(t, done)

	e.Fill(Color{B: 0x40})
	assert.Equal(t, repeat(Off, 2), e.Snapshot()[4:10], "fill waits for encode")

	done, err = e.EncodeIfNeeded()
	require.NoError(t, err)
	assert.True(t, done)
	assert.Equal(t, repeat([3]byte{0x80, 0x80, 0xA0}, 2), e.Snapshot()[4:10])

	e.MarkDirty()
	assert.True(t, e.NeedsEncoding())
}

func TestSurfaceReadStaysClean(t *testing.T) {
	e, err := New(3)
	require.NoError(t, err)
	assert.Len(t, e.Surface(), 3)
	assert.False(t, e.NeedsEncoding())

	done, err := e.EncodeIfNeeded()
	require.NoError(t, err)
	assert.False(t, done)

	e.Surface()[1] = Color{G: 255}
	e.MarkDirty()
	done, err = e.EncodeIfNeeded()
	require.NoError(t, err)
	assert.True(t, done)
	assert.Equal(t, []byte{0xFF, 0x80, 0x80}, e.Snapshot()[7:10])
}

func TestSetPixelOutOfRange(t *testing.T) {
	e, err := New(2)
	require.NoError(t, err)
	assert.ErrorIs(t, e.SetPixel(2, Color{}), ErrIndex)
	assert.ErrorIs(t, e.SetPixel(-1, Color{}), ErrIndex)
	assert.False(t, e.NeedsEncoding())
}

func TestResizeShrink(t *testing.T) {
	e, err := New(5)
	require.NoError(t, err)
	e.Clear(Color{R: 10, G: 20, B: 30})
	require.Len(t, e.Snapshot(), 23)
	assert.Equal(t, 23, e.Layout().DataEnd)

	require.NoError(t, e.Resize(2))
	buf := e.Snapshot()
	require.Len(t, buf, 14)
	requireFramed(t, buf, 2)
	assert.Equal(t, repeat(Off, 2), buf[4:10])
	assert.Equal(t, 14, e.Layout().DataEnd)
	assert.Equal(t, []Color{{}, {}}, e.Surface())
}

func TestResizeGrow(t *testing.T) {
	e, err := New(1)
	require.NoError(t, err)
	require.NoError(t, e.SetPixel(0, Color{R: 255}))
	require.NoError(t, e.Encode())

	for _, n := range []int{7, 0, 3} {
		require.NoError(t, e.Resize(n))
		buf := e.Snapshot()
		requireFramed(t, buf, n)
		assert.Equal(t, repeat(Off, n), buf[4:4+3*n])
		assert.False(t, e.NeedsEncoding())
	}
}

func TestResizeFailureKeepsState(t *testing.T) {
	e, err := New(3)
	require.NoError(t, err)
	e.Clear(Color{G: 255})
	before := e.Snapshot()

	assert.ErrorIs(t, e.Resize(-4), ErrInvalidCount)
	if strconv.IntSize == 64 {
		assert.ErrorIs(t, e.Resize(MaxLEDs), ErrAllocation)
	}
	assert.Equal(t, before, e.Snapshot())
	assert.Equal(t, 3, e.NumLEDs())
}

func TestSnapshotIsACopy(t *testing.T) {
	e, err := New(1)
	require.NoError(t, err)
	b := e.Snapshot()
	b[4] = 0
	assert.Equal(t, byte(0x80), e.Snapshot()[4])

	scratch := make([]byte, 0, 64)
	out := e.SnapshotInto(scratch)
	assert.Equal(t, e.Snapshot(), out)
	assert.Equal(t, cap(scratch), cap(out))
}

func TestWriteTo(t *testing.T) {
	e, err := New(2)
	require.NoError(t, err)
	e.Clear(Color{R: 255, G: 255, B: 255})

	var w bytes.Buffer
	n, err := e.WriteTo(&w)
	require.NoError(t, err)
	assert.Equal(t, int64(14), n)
	assert.Equal(t, e.Snapshot(), w.Bytes())
}

// A snapshot taken while another goroutine resizes and encodes must always be
// a complete buffer for some LED count.
func TestSnapshotNeverTorn(t *testing.T) {
	e, err := New(4)
	require.NoError(t, err)

	var wg sync.WaitGroup
	stop := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		sizes := []int{4, 9, 1, 0, 17}
		for i := 0; ; i++ {
			select {
			case <-stop:
				return
			default:
			}
			n := sizes[i%len(sizes)]
			if err := e.Resize(n); err != nil {
				t.Error(err)
				return
			}
			e.Fill(Color{R: byte(i), G: 0xFF, B: byte(n)})
			if err := e.Encode(); err != nil {
				t.Error(err)
				return
			}
		}
	}()

	var scratch []byte
	for i := 0; i < 2000; i++ {
		scratch = e.SnapshotInto(scratch)
		if (len(scratch)-8)%3 != 0 || len(scratch) < 8 {
			t.Fatalf("length %d is not a frame", len(scratch))
		}
		if !bytes.Equal(scratch[:4], zeros) || !bytes.Equal(scratch[len(scratch)-4:], zeros) {
			t.Fatalf("frames damaged: % x", scratch)
		}
		px := scratch[4 : len(scratch)-4]
		for j, b := range px {
			if b&0x80 == 0 {
				t.Fatalf("pixel byte %d = %#x in % x", j, b, scratch)
			}
		}
		// Every LED in a frame carries the same color.
		for j := 3; j < len(px); j += 3 {
			if !bytes.Equal(px[j:j+3], px[:3]) {
				t.Fatalf("mixed frame: % x", scratch)
			}
		}
	}
	close(stop)
	wg.Wait()
}
