package render

import (
	"errors"
	"sync"
	"time"

	"github.com/coreman2200/funtimes-lpd8806/internal/metrics"
	"github.com/coreman2200/funtimes-lpd8806/lpd8806"
)

// Engine renders frames with the active Renderer straight into the encoder
// surface and encodes them in the same step.
type Engine struct {
	Enc     *lpd8806.Encoder
	Metrics *metrics.Metrics

	// mu serializes rendering, resizing and renderer changes so the surface
	// is never written while it is encoded.
	mu       sync.Mutex
	active   Renderer
	uniforms *Uniforms

	t0 time.Time

	// last durations in ms
	Last struct {
		RenderMS float64
		EncodeMS float64
		TotalMS  float64
	}
}

// NewEngine returns an Engine drawing r into enc.
func NewEngine(enc *lpd8806.Encoder, r Renderer, u *Uniforms) (*Engine, error) {
	if enc == nil {
		return nil, errors.New("encoder is nil")
	}
	if u == nil {
		u = &Uniforms{TimeScale: 1}
	}
	if u.Params == nil {
		u.Params = map[string]float64{}
	}
	return &Engine{
		Enc:      enc,
		active:   r,
		uniforms: u,
		t0:       time.Now(),
	}, nil
}

// Now returns seconds since engine start, scaled by TimeScale.
func (e *Engine) Now() float64 {
	scale := 1.0
	if e.uniforms.TimeScale != 0 {
		scale = e.uniforms.TimeScale
	}
	return time.Since(e.t0).Seconds() * scale
}

// RenderOnce renders a single frame at absolute time t (seconds) and encodes
// it. If t < 0, it uses Engine.Now().
func (e *Engine) RenderOnce(t float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if t < 0 {
		t = e.Now()
	}
	start := time.Now()

	if e.active != nil {
		e.active.Render(e.Enc.Surface(), t, e.uniforms)
		e.Enc.MarkDirty()
	}
	encStart := time.Now()
	e.Last.RenderMS = float64(encStart.Sub(start).Microseconds()) / 1000.0

	done, err := e.Enc.EncodeIfNeeded()
	e.Last.EncodeMS = float64(time.Since(encStart).Microseconds()) / 1000.0
	e.Last.TotalMS = float64(time.Since(start).Microseconds()) / 1000.0
	if done || err != nil {
		e.Metrics.Encoded(time.Since(start), err)
	}
	return err
}

// Clear stops the active renderer and turns every LED to c.
func (e *Engine) Clear(c lpd8806.Color) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.active = nil
	e.Enc.Clear(c)
}

// Resize changes the strip length. The next RenderOnce draws at the new size.
func (e *Engine) Resize(numLEDs int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.Enc.Resize(numLEDs); err != nil {
		return err
	}
	e.Metrics.Resized(numLEDs)
	return nil
}

// SetRenderer becomes the active renderer immediately.
// If preset != "", ApplyPreset is called on the renderer.
func (e *Engine) SetRenderer(name string, preset string, reg *Registry) error {
	if reg == nil {
		return errors.New("registry is nil")
	}
	rr, ok := reg.Get(name)
	if !ok {
		return errors.New("renderer not found: " + name)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.active = rr
	if preset != "" {
		rr.ApplyPreset(preset, e.uniforms)
	}
	return nil
}

// Renderer returns the name of the active renderer, "" when cleared.
func (e *Engine) Renderer() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.active == nil {
		return ""
	}
	return e.active.Name()
}

// SetParam updates the uniforms.
func (e *Engine) SetParam(name string, v float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.uniforms.Params[name] = v
}

// Paint stops the active renderer and lets fn write the surface directly,
// then encodes the result.
func (e *Engine) Paint(fn func(dst []lpd8806.Color)) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.active = nil
	fn(e.Enc.Surface())
	err := e.Enc.Encode()
	e.Metrics.Encoded(0, err)
	return err
}
