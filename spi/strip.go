package spi

import (
	"fmt"
	"image"
	"image/color"

	"periph.io/x/conn/v3/display"

	"github.com/coreman2200/funtimes-lpd8806/internal/render"
	"github.com/coreman2200/funtimes-lpd8806/lpd8806"
)

// Strip is a handle to an LPD8806 strip seen as a 1 pixel high display.
type Strip struct {
	eng *render.Engine
	out Flusher
}

func NewStrip(eng *render.Engine, out Flusher) *Strip {
	return &Strip{eng: eng, out: out}
}

func (s *Strip) String() string {
	return fmt.Sprintf("lpd8806{%s}", s.out)
}

// Halt implements conn.Resource. It turns every LED off.
func (s *Strip) Halt() error {
	s.eng.Clear(lpd8806.Color{})
	return s.out.Flush()
}

// ColorModel implements display.Drawer.
func (s *Strip) ColorModel() color.Model {
	return lpd8806.ColorModel
}

// Bounds implements display.Drawer. Min is guaranteed to be {0, 0}.
func (s *Strip) Bounds() image.Rectangle {
	return image.Rectangle{Max: image.Point{X: s.eng.Enc.NumLEDs(), Y: 1}}
}

// Draw implements display.Drawer.
//
// Only the first row of r is used. LEDs outside r keep their color. Drawing
// stops the active renderer.
func (s *Strip) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	err := s.eng.Paint(func(dst []lpd8806.Color) {
		// sp is aligned with r.Min before clipping.
		origin := r.Min
		r = r.Intersect(image.Rectangle{Max: image.Point{X: len(dst), Y: 1}})
		srcR := src.Bounds()
		for x := r.Min.X; x < r.Max.X; x++ {
			p := image.Point{X: sp.X + x - origin.X, Y: sp.Y}
			if !p.In(srcR) {
				break
			}
			dst[x] = lpd8806.ColorModel.Convert(src.At(p.X, p.Y)).(lpd8806.Color)
		}
	})
	if err != nil {
		return err
	}
	return s.out.Flush()
}

var _ display.Drawer = &Strip{}
