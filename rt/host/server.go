// Package host implements the engine's network-facing half of the host
// boundary (spec §4.H/§6.3): a single websocket carrying the JSON request
// protocol, grounded on the teacher pack's niceyeti-tabular websocket
// server (ping/pong keepalive, write deadlines, one socket per client).
package host

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/sandforge/sandcore"
)

const (
	writeWait      = 1 * time.Second
	maxMessageSize = 1 << 20
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	closeGrace     = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// pendingTimeout returns the host-side wait budget for request kinds that
// resolve asynchronously from the caller's perspective (spec §7): a
// PIPETTE read or SNAPSHOT dump that never answers within this window is
// treated as failed rather than blocking the connection indefinitely.
func pendingTimeout(t sandcore.MsgType) time.Duration {
	switch t {
	case sandcore.MsgPipette:
		return 1 * time.Second
	case sandcore.MsgSnapshot:
		return 5 * time.Second
	default:
		return 0
	}
}

// wireRequest/wireResponse are the JSON encodings of sandcore.Request and
// sandcore.Response; the engine's internal structs aren't tagged for JSON
// directly since Request/Response also carry Go-only fields (function
// pointers never appear there, but buffers/enums need explicit encoding).
type wireRequest struct {
	Type       sandcore.MsgType `json:"type"`
	ID         string           `json:"id,omitempty"`
	W          int              `json:"w,omitempty"`
	H          int              `json:"h,omitempty"`
	ViewportW  int              `json:"viewportW,omitempty"`
	ViewportH  int              `json:"viewportH,omitempty"`
	Zoom       float32          `json:"zoom,omitempty"`
	PanX       float32          `json:"panX,omitempty"`
	PanY       float32          `json:"panY,omitempty"`
	Gravity    *[2]float32      `json:"gravity,omitempty"`
	AmbientTemperature *float32 `json:"ambientTemperature,omitempty"`
	Speed      *float32         `json:"speed,omitempty"`
	RenderMode *sandcore.RenderMode `json:"renderMode,omitempty"`
	X          int              `json:"x,omitempty"`
	Y          int              `json:"y,omitempty"`
	Radius     int              `json:"radius,omitempty"`
	ElementID  uint8            `json:"elementId,omitempty"`
	Erase      bool             `json:"erase,omitempty"`
	BrushShape sandcore.BrushShape `json:"brushShape,omitempty"`
	Size       int              `json:"size,omitempty"`
	Shape      sandcore.BrushShape `json:"shape,omitempty"`
	Buffer     []byte           `json:"buffer,omitempty"`
	Bundle     []byte           `json:"bundle,omitempty"`
}

func (wr wireRequest) toEngineRequest() sandcore.Request {
	return sandcore.Request{
		Type: wr.Type, ID: wr.ID,
		W: wr.W, H: wr.H, ViewportW: wr.ViewportW, ViewportH: wr.ViewportH,
		Zoom: wr.Zoom, PanX: wr.PanX, PanY: wr.PanY,
		Gravity: wr.Gravity, AmbientTemperature: wr.AmbientTemperature, Speed: wr.Speed,
		RenderMode: wr.RenderMode,
		X:          wr.X, Y: wr.Y, Radius: wr.Radius, ElementID: wr.ElementID, Erase: wr.Erase,
		BrushShape: wr.BrushShape,
		Size:       wr.Size, Shape: wr.Shape,
		Buffer: wr.Buffer, JSON: wr.Bundle,
	}
}

type wireResponse struct {
	Type                sandcore.MsgType     `json:"type"`
	ID                  string               `json:"id,omitempty"`
	ProtocolVersion     int                  `json:"protocolVersion,omitempty"`
	W                   int                  `json:"w,omitempty"`
	H                   int                  `json:"h,omitempty"`
	Capabilities        *sandcore.Capabilities `json:"capabilities,omitempty"`
	Stats               *sandcore.FrameStats `json:"stats,omitempty"`
	ErrorMessage        string               `json:"error,omitempty"`
	CrashMessage        string               `json:"crash,omitempty"`
	CanRecover          bool                 `json:"canRecover,omitempty"`
	PipetteElementID    *uint8               `json:"pipetteElementId,omitempty"`
	SnapshotBuffer      []byte               `json:"snapshotBuffer,omitempty"`
	ContentManifestJSON json.RawMessage      `json:"contentManifest,omitempty"`
	BundlePhase         string               `json:"bundlePhase,omitempty"`
	BundleStatus        string               `json:"bundleStatus,omitempty"`
	BundleMessage       string               `json:"bundleMessage,omitempty"`
}

func fromEngineResponse(r sandcore.Response) wireResponse {
	wr := wireResponse{
		Type: r.Type, ID: r.ID, ProtocolVersion: r.ProtocolVersion, W: r.W, H: r.H,
		Stats: r.Stats, ErrorMessage: r.ErrorMessage, CrashMessage: r.CrashMessage,
		CanRecover: r.CanRecover, PipetteElementID: r.PipetteElementID,
		SnapshotBuffer: r.SnapshotBuffer, ContentManifestJSON: r.ContentManifestJSON,
		BundlePhase: r.BundlePhase, BundleStatus: r.BundleStatus, BundleMessage: r.BundleMessage,
	}
	if r.Type == sandcore.MsgReady {
		wr.Capabilities = &r.Capabilities
	}
	return wr
}

// Server exposes a single Engine over one websocket connection at a time,
// the scale the teacher's prototype server targets (one page, one
// socket, no multi-client fan-out).
type Server struct {
	Addr   string
	Engine *sandcore.Engine
	Logger sandcore.Logger

	commands chan command
}

type command struct {
	req  sandcore.Request
	resp chan sandcore.Response
}

// NewServer wraps engine behind a single-threaded command queue: every
// request from the websocket is posted onto commands and processed by one
// goroutine that owns the Engine value, so rt/host never touches engine
// internals concurrently with a running simulation tick (Design Note 9).
func NewServer(addr string, engine *sandcore.Engine, logger sandcore.Logger) *Server {
	if logger == nil {
		logger = sandcore.NewNopLogger()
	}
	s := &Server{Addr: addr, Engine: engine, Logger: logger, commands: make(chan command, 16)}
	go s.runCommandLoop()
	return s
}

func (s *Server) runCommandLoop() {
	for cmd := range s.commands {
		cmd.resp <- s.Engine.Handle(cmd.req)
	}
}

// dispatch posts req onto the engine's command queue and waits for its
// response. PIPETTE/SNAPSHOT carry a bounded wait (spec §7): if the
// engine hasn't answered within that window the caller gets back a
// "null result" response rather than blocking the connection forever.
func (s *Server) dispatch(req sandcore.Request) sandcore.Response {
	resp := make(chan sandcore.Response, 1)
	s.commands <- command{req: req, resp: resp}

	if timeout := pendingTimeout(req.Type); timeout > 0 {
		select {
		case r := <-resp:
			return r
		case <-time.After(timeout):
			s.Logger.Warnf("request %s (id=%s) timed out after %s", req.Type, req.ID, timeout)
			return sandcore.Response{Type: req.Type, ID: req.ID}
		}
	}
	return <-resp
}

// Router builds the mux.Router serving "/" (a minimal status page) and
// "/ws" (the protocol websocket).
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/", s.serveIndex).Methods(http.MethodGet)
	r.HandleFunc("/ws", s.serveWebsocket)
	return r
}

// Serve runs the server until the listener fails or the process exits.
func (s *Server) Serve() error {
	if err := http.ListenAndServe(s.Addr, s.Router()); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

func (s *Server) serveIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprintf(w, "sandcore host: %s (state=%s)\n", s.Addr, s.Engine.State())
}

func (s *Server) serveWebsocket(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.Logger.Errorf("websocket upgrade: %v", err)
		return
	}
	defer s.closeWebsocket(ws)

	ws.SetReadLimit(maxMessageSize)
	_ = ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	done := make(chan struct{})
	go s.readLoop(ws, done)

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (s *Server) readLoop(ws *websocket.Conn, done chan<- struct{}) {
	defer close(done)
	for {
		var wr wireRequest
		if err := ws.ReadJSON(&wr); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.Logger.Warnf("websocket read: %v", err)
			}
			return
		}

		resp := s.dispatch(wr.toEngineRequest())

		_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
		if err := ws.WriteJSON(fromEngineResponse(resp)); err != nil {
			s.Logger.Errorf("websocket write: %v", err)
			return
		}
	}
}

func (s *Server) closeWebsocket(ws *websocket.Conn) {
	_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
	_ = ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	time.Sleep(closeGrace)
	_ = ws.Close()
}
