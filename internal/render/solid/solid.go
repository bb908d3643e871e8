package solid

import (
	"math"

	"github.com/coreman2200/funtimes-lpd8806/internal/render"
	"github.com/coreman2200/funtimes-lpd8806/lpd8806"
)

// Solid is a tiny renderer that fills the strip with a single color.
// It supports presets and an optional "PulseHz" param that modulates brightness.
type Solid struct {
	name string
	c    lpd8806.Color
}

func New(name string, c lpd8806.Color) *Solid { return &Solid{name: name, c: c} }

func (s *Solid) Name() string { return s.name }

func (s *Solid) Presets() []string { return []string{"Red", "Green", "Blue", "White", "Black"} }

func (s *Solid) ApplyPreset(name string, _ *render.Uniforms) {
	switch name {
	case "Red":
		s.c = lpd8806.Color{R: 255}
	case "Green":
		s.c = lpd8806.Color{G: 255}
	case "Blue":
		s.c = lpd8806.Color{B: 255}
	case "White":
		s.c = lpd8806.Color{R: 255, G: 255, B: 255}
	case "Black":
		s.c = lpd8806.Color{}
	}
}

// SetColor replaces the fill color.
func (s *Solid) SetColor(c lpd8806.Color) { s.c = c }

func (s *Solid) Render(dst []lpd8806.Color, t float64, u *render.Uniforms) {
	c := s.c
	if hz := render.Param(u, "PulseHz", 0); hz > 0 {
		scale := 0.5 + 0.5*math.Sin(2*math.Pi*hz*t)
		c = lpd8806.Color{
			R: uint8(float64(c.R) * scale),
			G: uint8(float64(c.G) * scale),
			B: uint8(float64(c.B) * scale),
		}
	}
	for i := range dst {
		dst[i] = c
	}
}
