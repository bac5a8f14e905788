// Package preview streams frames to browsers over websockets and takes
// pointer and key-like control messages back.
//
// Endpoints:
//
//	/ws       frame broadcast, JSON {t, frame_id, w, h, rgb}
//	/diag     diagnostics broadcast
//	/control  JSON messages {"pointer":{"x":..,"y":..}}, {"quit":true}, {"dump":true}
//	/health   JSON status
package preview

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	diag "github.com/coreman2200/funtimes-metaballs/internal/diagnostics"
	"github.com/coreman2200/funtimes-metaballs/internal/pixel"
	"github.com/coreman2200/funtimes-metaballs/internal/surface"
	"github.com/coreman2200/funtimes-metaballs/internal/vmath"
)

const (
	DefaultAddr     = "127.0.0.1:8090"
	DefaultThrottle = 50 * time.Millisecond // ~20 FPS to the browser
	writeWait       = 200 * time.Millisecond
)

var _ surface.Gate = (*Surface)(nil)

type Options struct {
	Addr     string
	Throttle time.Duration
}

type Surface struct {
	*surface.Signals

	mu          sync.RWMutex
	opt         Options
	width       int
	height      int
	frameID     uint64
	lastEmit    time.Time
	startTime   time.Time
	clients     map[*websocket.Conn]*client
	diagClients map[*websocket.Conn]*client
	ptr         vmath.Vec2
	hasPtr      bool

	// sending is set while a frame broadcast is in flight.
	sending  bool
	inflight sync.WaitGroup

	up  websocket.Upgrader
	ln  net.Listener
	srv *http.Server
}

// New builds a preview surface without listening. Use Handler with your own
// server, or Listen.
func New(opt Options) *Surface {
	if opt.Addr == "" {
		opt.Addr = DefaultAddr
	}
	if opt.Throttle < 0 {
		opt.Throttle = 0
	}
	return &Surface{
		Signals:     surface.NewSignals(),
		opt:         opt,
		startTime:   time.Now(),
		clients:     map[*websocket.Conn]*client{},
		diagClients: map[*websocket.Conn]*client{},
		up:          websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
	}
}

// Listen starts serving on opt.Addr in the background.
func Listen(opt Options) (*Surface, error) {
	s := New(opt)
	ln, err := net.Listen("tcp", s.opt.Addr)
	if err != nil {
		return nil, fmt.Errorf("preview: listen: %w", err)
	}
	s.ln = ln
	s.srv = &http.Server{Handler: s.Handler(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("preview server stopped")
		}
	}()
	log.Info().Str("addr", ln.Addr().String()).Msg("preview listening")
	return s, nil
}

// Addr is the bound address once listening.
func (s *Surface) Addr() string {
	if s.ln == nil {
		return s.opt.Addr
	}
	return s.ln.Addr().String()
}

func (s *Surface) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.HandleFramesWS)
	mux.HandleFunc("/diag", s.HandleDiagWS)
	mux.HandleFunc("/control", s.HandleControlWS)
	mux.HandleFunc("/health", s.HandleHealth)
	return mux
}

// Present queues fb for the connected browsers and returns without waiting
// for them. Frames inside the throttle window, or while the previous
// broadcast is still being written, are dropped.
func (s *Surface) Present(fb *pixel.Framebuffer) error {
	s.mu.Lock()
	s.width, s.height = fb.Width, fb.Height
	s.frameID++
	now := time.Now()
	if s.sending || s.lastEmit.Add(s.opt.Throttle).After(now) || len(s.clients) == 0 {
		s.mu.Unlock()
		return nil
	}
	s.lastEmit = now
	s.sending = true
	s.inflight.Add(1)
	id := s.frameID
	s.mu.Unlock()

	w, h := fb.Width, fb.Height
	rgb := fb.RGB24(make([]byte, 0, w*h*3))
	go func() {
		defer s.inflight.Done()
		s.broadcastFrame(id, w, h, rgb)
		s.mu.Lock()
		s.sending = false
		s.mu.Unlock()
	}()
	return nil
}

// Ready is false while a frame broadcast is still being written.
func (s *Surface) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.sending
}

func (s *Surface) Pointer() (vmath.Vec2, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ptr, s.hasPtr
}

func (s *Surface) Close() error {
	var err error
	if s.srv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		err = s.srv.Shutdown(ctx)
		cancel()
	}
	s.mu.Lock()
	for c := range s.clients {
		c.Close()
	}
	for c := range s.diagClients {
		c.Close()
	}
	s.clients = map[*websocket.Conn]*client{}
	s.diagClients = map[*websocket.Conn]*client{}
	s.mu.Unlock()
	s.inflight.Wait()
	return err
}

func (s *Surface) HandleFramesWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.up.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	cl := &client{conn: conn}
	s.mu.Lock()
	s.clients[conn] = cl
	s.mu.Unlock()
	s.sendTopology(cl)
	go s.drain(conn, false)
}

func (s *Surface) HandleDiagWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.up.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	s.mu.Lock()
	s.diagClients[conn] = &client{conn: conn}
	s.mu.Unlock()
	go s.drain(conn, true)
}

// drain discards reads until the peer goes away, then forgets it.
func (s *Surface) drain(conn *websocket.Conn, isDiag bool) {
	defer func() {
		s.mu.Lock()
		if isDiag {
			delete(s.diagClients, conn)
		} else {
			delete(s.clients, conn)
		}
		s.mu.Unlock()
		conn.Close()
	}()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

type pointerMsg struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
}

type controlMsg struct {
	Pointer *pointerMsg `json:"pointer,omitempty"`
	Quit    bool        `json:"quit,omitempty"`
	Dump    bool        `json:"dump,omitempty"`
}

func (s *Surface) HandleControlWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.up.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()
	cl := &client{conn: conn}
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var msg controlMsg
		if err := json.Unmarshal(data, &msg); err != nil {
			s.pushDiag(diag.New(diag.Warn, diag.CodeControlBadJSON, "Control message is not JSON").With("error", err.Error()))
			continue
		}
		s.applyControl(msg)
		s.sendTopology(cl)
	}
}

func (s *Surface) HandleHealth(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	resp := map[string]any{
		"frame_id": s.frameID,
		"uptime_s": time.Since(s.startTime).Seconds(),
		"width":    s.width,
		"height":   s.height,
		"clients":  len(s.clients),
	}
	s.mu.RUnlock()
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func (s *Surface) applyControl(msg controlMsg) {
	if msg.Pointer == nil && !msg.Quit && !msg.Dump {
		s.pushDiag(diag.New(diag.Info, diag.CodeControlUnknown, "Control message has no known field"))
		return
	}
	if msg.Pointer != nil {
		s.mu.Lock()
		s.ptr = vmath.V2(msg.Pointer.X, msg.Pointer.Y)
		s.hasPtr = true
		w, h := s.width, s.height
		s.mu.Unlock()
		if w > 0 && (msg.Pointer.X < 0 || msg.Pointer.Y < 0 || msg.Pointer.X >= float32(w) || msg.Pointer.Y >= float32(h)) {
			s.pushDiag(diag.New(diag.Info, diag.CodePointerOutside, "Pointer outside frame").
				With("x", msg.Pointer.X).With("y", msg.Pointer.Y))
		}
	}
	if msg.Dump {
		s.RequestDump()
	}
	if msg.Quit {
		s.RequestQuit()
	}
}

func (s *Surface) sendTopology(cl *client) {
	s.mu.RLock()
	top := map[string]any{
		"width":    s.width,
		"height":   s.height,
		"frame_id": s.frameID,
	}
	s.mu.RUnlock()
	b, _ := json.Marshal(top)
	cl.write(b)
}

type frame struct {
	T       int64  `json:"t"`
	FrameID uint64 `json:"frame_id"`
	W       int    `json:"w"`
	H       int    `json:"h"`
	RGB     []byte `json:"rgb"`
}

func (s *Surface) broadcastFrame(id uint64, w, h int, rgb []byte) {
	b, _ := json.Marshal(frame{T: time.Now().UnixNano(), FrameID: id, W: w, H: h, RGB: rgb})
	s.fanOut(s.snapshot(false), b)
}

func (s *Surface) pushDiag(d diag.Diagnostic) {
	d.Log()
	b, _ := json.Marshal(d)
	s.fanOut(s.snapshot(true), b)
}

func (s *Surface) snapshot(isDiag bool) []*client {
	s.mu.RLock()
	defer s.mu.RUnlock()
	set := s.clients
	if isDiag {
		set = s.diagClients
	}
	out := make([]*client, 0, len(set))
	for _, c := range set {
		out = append(out, c)
	}
	return out
}

// fanOut writes b to every client concurrently, so one slow peer only
// delays itself.
func (s *Surface) fanOut(clients []*client, b []byte) {
	var g errgroup.Group
	for _, c := range clients {
		g.Go(func() error {
			c.write(b)
			return nil
		})
	}
	_ = g.Wait()
}

// client is one websocket peer. A conn allows one writer at a time.
type client struct {
	conn *websocket.Conn
	wmu  sync.Mutex
}

func (c *client) write(b []byte) {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		log.Debug().Err(err).Msg("preview write deadline")
		return
	}
	if err := c.conn.WriteMessage(websocket.TextMessage, b); err != nil {
		log.Debug().Err(err).Msg("preview write")
	}
}
