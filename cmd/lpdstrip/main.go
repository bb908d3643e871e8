package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/extra/devices/screen"
	"periph.io/x/host/v3"

	"github.com/coreman2200/funtimes-lpd8806/internal/config"
	"github.com/coreman2200/funtimes-lpd8806/internal/metrics"
	"github.com/coreman2200/funtimes-lpd8806/internal/preview"
	"github.com/coreman2200/funtimes-lpd8806/internal/render"
	"github.com/coreman2200/funtimes-lpd8806/internal/render/grad"
	"github.com/coreman2200/funtimes-lpd8806/internal/render/solid"
	"github.com/coreman2200/funtimes-lpd8806/lpd8806"
	"github.com/coreman2200/funtimes-lpd8806/spi"
)

func main() {
	// ---- Flags (remain usable; config.yaml can override most) ----
	var (
		configPath = flag.String("config", "config.yaml", "path to config.yaml")
		leds       = flag.Int("leds", 0, "number of LEDs on the strip")
		fps        = flag.Int("fps", 0, "target frames per second")
		port       = flag.String("port", "", "SPI port name, empty for the first one")
		speedHz    = flag.Int("speed-hz", 0, "SPI clock in Hz")
		renderer   = flag.String("renderer", "", "renderer: solid | grad")
		preset     = flag.String("preset", "", "renderer preset")
		addr       = flag.String("addr", "", "preview HTTP listen address")
		simOnly    = flag.Bool("sim-only", false, "force console output (no hardware)")
		verbose    = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	// ---- Logging ----
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen})

	// ---- Effective params: defaults, then flags, then config.yaml ----
	cfg := config.Default()
	applyFlags(cfg, *leds, *fps, *port, *speedHz, *renderer, *preset, *addr)
	if err := config.LoadInto(*configPath, cfg); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Fatal().Err(err).Str("path", *configPath).Msg("config load failed")
		}
		log.Warn().Str("path", *configPath).Msg("no config file; proceeding with flags")
	}
	cfg.SimOnly = cfg.SimOnly || *simOnly
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	if *verbose {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	if err := run(cfg); err != nil {
		log.Fatal().Err(err).Msg("lpdstrip stopped")
	}
}

func applyFlags(cfg *config.Config, leds, fps int, port string, speedHz int, renderer, preset, addr string) {
	if leds > 0 {
		cfg.NumLEDs = leds
	}
	if fps > 0 {
		cfg.FPS = fps
	}
	if port != "" {
		cfg.SPI.Port = port
	}
	if speedHz > 0 {
		cfg.SPI.SpeedHz = speedHz
	}
	if renderer != "" {
		cfg.Render.Name = renderer
		cfg.Render.Preset = preset
	}
	if addr != "" {
		cfg.Preview.Addr = addr
	}
}

func run(cfg *config.Config) error {
	enc, err := lpd8806.New(cfg.NumLEDs)
	if err != nil {
		return err
	}

	promReg := prometheus.NewRegistry()
	promReg.MustRegister(collectors.NewGoCollector())
	m := metrics.New(promReg)
	m.Resized(cfg.NumLEDs)

	reg := render.NewRegistry()
	base := lpd8806.Color{R: 255}
	if cfg.Render.Color != "" {
		if base, err = render.ParseColor(cfg.Render.Color); err != nil {
			return err
		}
	}
	reg.Register(solid.New("solid", base))
	reg.Register(grad.New("grad"))

	eng, err := render.NewEngine(enc, nil, &render.Uniforms{
		TimeScale: 1,
		Params:    map[string]float64{"Speed": cfg.Render.Speed},
	})
	if err != nil {
		return err
	}
	eng.Metrics = m
	if err := eng.SetRenderer(cfg.Render.Name, cfg.Render.Preset, reg); err != nil {
		return err
	}

	// ---- Output selection: SPI unless sim-only or no port is found ----
	out, closer := openOutput(cfg, enc, m)
	if closer != nil {
		defer closer.Close()
	}
	strip := spi.NewStrip(eng, out)
	defer func() {
		if err := strip.Halt(); err != nil {
			log.Warn().Err(err).Msg("halt failed")
		}
	}()

	looper := &spi.Looper{Engine: eng, Out: []spi.Flusher{out}, FPS: cfg.FPS}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	if cfg.Preview.Addr != "" {
		ps := preview.NewServer(eng, reg, promReg)
		ps.MaxLEDs = cfg.MaxLEDs
		looper.Out = append(looper.Out, ps)
		srv := &http.Server{
			Addr:         cfg.Preview.Addr,
			Handler:      ps.Handler(),
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		}
		g.Go(func() error {
			log.Info().Str("addr", cfg.Preview.Addr).Msg("preview server starting")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			return srv.Close()
		})
	}

	g.Go(func() error {
		log.Info().
			Int("leds", cfg.NumLEDs).
			Int("fps", cfg.FPS).
			Str("output", strip.String()).
			Str("renderer", cfg.Render.Name).
			Msg("strip running")
		return looper.Run(ctx)
	})

	err = g.Wait()
	log.Info().Msg("shutting down")
	return err
}

func openOutput(cfg *config.Config, enc *lpd8806.Encoder, m *metrics.Metrics) (spi.Flusher, io.Closer) {
	if !cfg.SimOnly {
		if _, err := host.Init(); err != nil {
			log.Warn().Err(err).Msg("host init failed; printing at the console")
		} else {
			p, c, err := spi.Open(cfg.SPI.Port, physic.Frequency(cfg.SPI.SpeedHz)*physic.Hertz)
			if err == nil {
				tx := spi.NewTransmitter(c, enc)
				tx.Metrics = m
				log.Info().Str("port", p.String()).Int("speed_hz", cfg.SPI.SpeedHz).Msg("SPI port open")
				return tx, p
			}
			log.Warn().Err(err).Str("port", cfg.SPI.Port).Msg("failed to find a SPI port, printing at the console")
		}
	}
	return spi.NewConsole(screen.New(100), enc), nil
}
