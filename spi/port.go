package spi

import (
	"fmt"

	"periph.io/x/conn/v3/physic"
	pspi "periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
)

// DefaultSpeed is a clock most LPD8806 strips handle over a few meters of
// cable.
const DefaultSpeed = 2 * physic.MegaHertz

// Open opens the SPI port by name, "" for the first one registered, and
// connects to it. host.Init must have been called.
func Open(name string, speed physic.Frequency) (pspi.PortCloser, pspi.Conn, error) {
	p, err := spireg.Open(name)
	if err != nil {
		return nil, nil, fmt.Errorf("spi: open %q: %w", name, err)
	}
	c, err := Connect(p, speed)
	if err != nil {
		_ = p.Close()
		return nil, nil, err
	}
	return p, c, nil
}

// Connect configures p for the strip: mode 0, 8 bits per word. The chip
// latches data on the rising clock edge.
func Connect(p pspi.Port, speed physic.Frequency) (pspi.Conn, error) {
	if speed <= 0 {
		speed = DefaultSpeed
	}
	c, err := p.Connect(speed, pspi.Mode0, 8)
	if err != nil {
		return nil, fmt.Errorf("spi: connect %s at %s: %w", p, speed, err)
	}
	return c, nil
}
