// Package dashboard serves a single read-only page, to a single client,
// over a single websocket: a periodic JSON snapshot of per-cell channel
// occupancy and the running blocking-probability and average-reward gauges.
// It never touches simulation state and a slow or absent client can never
// stall the simulation loop.
package dashboard

import (
	"context"
	"encoding/json"
	"html/template"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	channerics "github.com/niceyeti/channerics/channels"
	"github.com/rs/zerolog/log"

	"dcasim/internal/gridfuncs"
	"dcasim/internal/stats"
)

const (
	writeWait      = 1 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	pubResolution  = 250 * time.Millisecond
	closeGraceWait = 5 * time.Second
)

var upgrader = websocket.Upgrader{}

// Snapshot is the JSON payload pushed to the client on every tick.
type Snapshot struct {
	OccupiedPerCell [gridfuncs.Rows][gridfuncs.Cols]int `json:"occupied_per_cell"`
	ArrivalsNew     int64                                `json:"arrivals_new"`
	ArrivalsHoff    int64                                `json:"arrivals_hoff"`
	BlockProbNew    float64                              `json:"block_prob_new"`
	BlockProbHoff   float64                              `json:"block_prob_hoff"`
	BlockProbTotal  float64                               `json:"block_prob_total"`
	AvgReward       float64                              `json:"avg_reward"`
}

// GridReader is the read-only view of the live grid the dashboard samples.
// The simulation loop's *gridfuncs.Grid satisfies this directly.
type GridReader interface {
	Clone() *gridfuncs.Grid
}

// Server serves the dashboard's single page and websocket endpoint.
type Server struct {
	addr  string
	grid  GridReader
	stats *stats.Stats
}

// New returns a Server that samples grid and st. Call Serve to block and
// listen.
func New(addr string, grid GridReader, st *stats.Stats) *Server {
	return &Server{addr: addr, grid: grid, stats: st}
}

func (s *Server) snapshot() Snapshot {
	// best-effort, racy-by-design: reads the live grid concurrently with the
	// simulation loop's writes, unsynchronized. Acceptable for a disabled-by-
	// default monitoring view; not safe to rely on for anything else.
	g := s.grid.Clone()
	var snap Snapshot
	for r := 0; r < gridfuncs.Rows; r++ {
		for c := 0; c < gridfuncs.Cols; c++ {
			n := 0
			for ch := 0; ch < gridfuncs.Channels; ch++ {
				if g[r][c][ch] {
					n++
				}
			}
			snap.OccupiedPerCell[r][c] = n
		}
	}
	snap.ArrivalsNew = s.stats.ArrivalsNew()
	snap.ArrivalsHoff = s.stats.ArrivalsHoff()
	snap.BlockProbNew = s.stats.CumulativeBlockProbNew()
	snap.BlockProbHoff = s.stats.CumulativeBlockProbHoff()
	snap.BlockProbTotal = s.stats.CumulativeBlockProbTotal()
	snap.AvgReward = s.stats.AvgReward()
	return snap
}

// Serve blocks, serving the index page and websocket endpoint until ctx is
// cancelled or the server fails to bind.
func (s *Server) Serve(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.serveIndex)
	mux.HandleFunc("/ws", s.serveWebsocket)

	srv := &http.Server{Addr: s.addr, Handler: mux}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), closeGraceWait)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) serveIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html")
	_ = indexTemplate.Execute(w, nil)
}

func (s *Server) serveWebsocket(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("dashboard: websocket upgrade failed")
		return
	}
	defer s.closeWebsocket(ws)
	s.publishSnapshots(r.Context(), ws)
}

// publishSnapshots pushes a Snapshot every pubResolution and maintains the
// ping/pong keepalive dance: reads are pumped purely to drive the pong
// handler, and a stalled pong closes the connection rather than blocking
// forever.
func (s *Server) publishSnapshots(ctx context.Context, ws *websocket.Conn) {
	pubCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	pong := make(chan struct{}, 1)
	lastPong := time.Now()
	ws.SetPongHandler(func(string) error {
		select {
		case pong <- struct{}{}:
		default:
		}
		return nil
	})

	go func() {
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				cancel()
				return
			}
		}
	}()

	ticker := channerics.NewTicker(pubCtx.Done(), pubResolution)
	pinger := channerics.NewTicker(pubCtx.Done(), pingPeriod)

	for {
		select {
		case <-pubCtx.Done():
			return
		case <-pinger:
			if time.Since(lastPong) > pingPeriod*2 {
				return
			}
			if err := ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		case <-pong:
			lastPong = time.Now()
		case <-ticker:
			if err := ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			snap := s.snapshot()
			if err := ws.WriteJSON(snap); err != nil {
				return
			}
		}
	}
}

func (s *Server) closeWebsocket(ws *websocket.Conn) {
	_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
	_ = ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	ws.Close()
}

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head><title>dcasim</title></head>
<body>
<h1>Dynamic Channel Assignment</h1>
<pre id="snapshot">waiting for data...</pre>
<script>
  var ws = new WebSocket("ws://" + location.host + "/ws");
  ws.onmessage = function(ev) {
    document.getElementById("snapshot").textContent = JSON.stringify(JSON.parse(ev.data), null, 2);
  };
</script>
</body>
</html>
`))

// marshalIndented is used by tests to validate Snapshot's JSON shape without
// standing up a websocket.
func marshalIndented(snap Snapshot) ([]byte, error) {
	return json.MarshalIndent(snap, "", "  ")
}
