package render

import (
	"fmt"
	"sort"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/coreman2200/funtimes-lpd8806/lpd8806"
)

type Uniforms struct {
	TimeScale float64
	Params    map[string]float64
}

// Renderer produces one color per LED. It is the only writer of dst.
type Renderer interface {
	Name() string
	Presets() []string
	ApplyPreset(name string, u *Uniforms)
	Render(dst []lpd8806.Color, t float64, u *Uniforms)
}

type Registry struct{ m map[string]Renderer }

func NewRegistry() *Registry { return &Registry{m: map[string]Renderer{}} }

func (r *Registry) Register(rr Renderer) {
	if rr == nil {
		return
	}
	r.m[rr.Name()] = rr
}

func (r *Registry) Get(name string) (Renderer, bool) { rr, ok := r.m[name]; return rr, ok }

// List returns the registered names, sorted.
func (r *Registry) List() []string {
	out := make([]string, 0, len(r.m))
	for k := range r.m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// ParseColor parses a hex color such as "#ff8000".
func ParseColor(s string) (lpd8806.Color, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return lpd8806.Color{}, fmt.Errorf("color %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return lpd8806.Color{R: r, G: g, B: b}, nil
}

// Param returns u.Params[name] or def.
func Param(u *Uniforms, name string, def float64) float64 {
	if u == nil || u.Params == nil {
		return def
	}
	if v, ok := u.Params[name]; ok {
		return v
	}
	return def
}
