package grad

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/coreman2200/funtimes-lpd8806/internal/render"
	"github.com/coreman2200/funtimes-lpd8806/lpd8806"
)

// Grad renders a hue wheel spread along the strip.
// Params:
//   - "Speed" (turns per second, default 0): rotates the wheel over time
//   - "Value" (0..1, default 1): HSV value of every LED
type Grad struct {
	name string
}

func New(name string) *Grad { return &Grad{name: name} }

func (g *Grad) Name() string { return g.name }

func (g *Grad) Presets() []string { return []string{"Static", "Rainbow", "Fast"} }

func (g *Grad) ApplyPreset(name string, u *render.Uniforms) {
	if u == nil {
		return
	}
	if u.Params == nil {
		u.Params = map[string]float64{}
	}
	switch name {
	case "Static":
		u.Params["Speed"] = 0
	case "Rainbow":
		u.Params["Speed"] = 0.1
	case "Fast":
		u.Params["Speed"] = 1
	}
}

func (g *Grad) Render(dst []lpd8806.Color, t float64, u *render.Uniforms) {
	speed := render.Param(u, "Speed", 0)
	value := math.Max(0, math.Min(1, render.Param(u, "Value", 1)))
	n := float64(len(dst))
	for i := range dst {
		h := math.Mod(float64(i)/n+t*speed, 1)
		if h < 0 {
			h++
		}
		r, gg, b := colorful.Hsv(h*360, 1, value).RGB255()
		dst[i] = lpd8806.Color{R: r, G: gg, B: b}
	}
}
