package preview

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/funtimes-lpd8806/internal/config"
	"github.com/coreman2200/funtimes-lpd8806/internal/render"
)

// Server streams the transmission buffer to websocket clients and accepts
// control messages. It is a consumer like the SPI transmitter: Flush takes a
// snapshot and broadcasts it as one binary message.
type Server struct {
	eng      *render.Engine
	reg      *render.Registry
	gatherer prometheus.Gatherer

	// MaxLEDs bounds the strip length a control message may ask for.
	MaxLEDs int

	mu        sync.RWMutex
	clients   map[*websocket.Conn]*client
	frameID   uint64
	startTime time.Time
	throttle  time.Duration
	lastEmit  time.Time

	upgrader websocket.Upgrader
}

// NewServer returns a Server for eng. g may be nil, in which case /metrics
// is not served.
func NewServer(eng *render.Engine, reg *render.Registry, g prometheus.Gatherer) *Server {
	return &Server{
		eng:       eng,
		reg:       reg,
		gatherer:  g,
		MaxLEDs:   config.DefaultMaxLEDs,
		clients:   map[*websocket.Conn]*client{},
		startTime: time.Now(),
		throttle:  50 * time.Millisecond, // ~20 FPS to clients
		upgrader:  websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.HandleFramesWS)
	mux.HandleFunc("/control", s.HandleControlWS)
	mux.HandleFunc("/health", s.HandleHealth)
	if s.gatherer != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	return mux
}

func (s *Server) String() string { return "preview" }

// Flush broadcasts the current transmission buffer, at most once per
// throttle period. It never waits on a client: each one has its own writer
// holding at most one pending frame, and a busy client misses frames.
func (s *Server) Flush() error {
	s.mu.Lock()
	now := time.Now()
	if s.lastEmit.Add(s.throttle).After(now) {
		s.mu.Unlock()
		return nil
	}
	s.lastEmit = now
	s.frameID++
	clients := make([]*client, 0, len(s.clients))
	for _, c := range s.clients {
		clients = append(clients, c)
	}
	s.mu.Unlock()
	if len(clients) == 0 {
		return nil
	}

	frame := s.eng.Enc.Snapshot()
	for _, c := range clients {
		select {
		case c.send <- frame:
		default:
		}
	}
	return nil
}

// client is a /ws connection and the frames queued for it.
type client struct {
	conn *websocket.Conn
	send chan []byte
}

func (c *client) writeLoop(done <-chan struct{}) {
	for {
		select {
		case frame := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(200 * time.Millisecond))
			if err := c.conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
				log.Debug().Err(err).Msg("write frame")
			}
		case <-done:
			return
		}
	}
}

func (s *Server) HandleFramesWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	c := &client{conn: conn, send: make(chan []byte, 1)}
	s.mu.Lock()
	s.clients[conn] = c
	s.mu.Unlock()

	done := make(chan struct{})
	go c.writeLoop(done)
	go func() {
		defer func() {
			s.mu.Lock()
			delete(s.clients, conn)
			s.mu.Unlock()
			close(done)
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// Control is a message accepted on /control. Every field is optional.
type Control struct {
	LEDs     *int               `json:"leds,omitempty"`
	Renderer string             `json:"renderer,omitempty"`
	Preset   string             `json:"preset,omitempty"`
	Clear    string             `json:"clear,omitempty"`
	Params   map[string]float64 `json:"params,omitempty"`
}

// Status is the reply to every control message and the body of /health.
type Status struct {
	FrameID  uint64  `json:"frame_id"`
	UptimeS  float64 `json:"uptime_s"`
	LEDs     int     `json:"leds"`
	Renderer string  `json:"renderer"`
	Clients  int     `json:"clients"`
	Error    string  `json:"error,omitempty"`
}

func (s *Server) HandleControlWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var msg Control
		errMsg := ""
		if err := json.Unmarshal(data, &msg); err != nil {
			errMsg = err.Error()
		} else if err := s.Apply(msg); err != nil {
			errMsg = err.Error()
		}
		b, _ := json.Marshal(s.status(errMsg))
		if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
			return
		}
	}
}

func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.status(""))
}

// Apply executes a control message. Resizing comes first so a renderer
// change in the same message draws at the new size.
func (s *Server) Apply(msg Control) error {
	if msg.LEDs != nil {
		if *msg.LEDs > s.MaxLEDs {
			return fmt.Errorf("leds %d exceeds the limit of %d", *msg.LEDs, s.MaxLEDs)
		}
		if err := s.eng.Resize(*msg.LEDs); err != nil {
			return err
		}
		log.Info().Int("leds", *msg.LEDs).Msg("strip resized")
	}
	for k, v := range msg.Params {
		s.eng.SetParam(k, v)
	}
	if msg.Clear != "" {
		c, err := render.ParseColor(msg.Clear)
		if err != nil {
			return err
		}
		s.eng.Clear(c)
	}
	if msg.Renderer != "" {
		if err := s.eng.SetRenderer(msg.Renderer, msg.Preset, s.reg); err != nil {
			return err
		}
		log.Info().Str("renderer", msg.Renderer).Str("preset", msg.Preset).Msg("renderer changed")
	}
	return nil
}

func (s *Server) status(errMsg string) Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Status{
		FrameID:  s.frameID,
		UptimeS:  time.Since(s.startTime).Seconds(),
		LEDs:     s.eng.Enc.NumLEDs(),
		Renderer: s.eng.Renderer(),
		Clients:  len(s.clients),
		Error:    errMsg,
	}
}
