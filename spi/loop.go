package spi

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/coreman2200/funtimes-lpd8806/internal/render"
)

const DFLT_FPS = 30

// Looper renders, encodes and flushes one frame per tick.
type Looper struct {
	Engine *render.Engine
	Out    []Flusher
	FPS    int
}

func (l *Looper) Step() {
	if err := l.Engine.RenderOnce(-1); err != nil {
		log.Error().Err(err).Msg("encode failed")
		return
	}
	for _, f := range l.Out {
		if err := f.Flush(); err != nil {
			log.Warn().Err(err).Msg("flush failed")
		}
	}
}

// Run steps at FPS until ctx is done.
func (l *Looper) Run(ctx context.Context) error {
	fps := l.FPS
	if fps <= 0 {
		fps = DFLT_FPS
	}
	interval := time.Second / time.Duration(fps)
	if interval <= 0 {
		interval = 1
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.Step()
		case <-ctx.Done():
			return nil
		}
	}
}
