package server

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gocomms/phylab/internal/modem"
	"github.com/gocomms/phylab/internal/sim"
)

// Handlers holds the HTTP API handlers.
type Handlers struct {
	plan  *modem.Plan
	mod   modem.Modulation
	sweep sim.SweepConfig
	wsHub *WSHub

	mu      sync.Mutex
	running bool
}

// NewHandlers creates new API handlers.
func NewHandlers(plan *modem.Plan, mod modem.Modulation, sweep sim.SweepConfig) *Handlers {
	return &Handlers{
		plan:  plan,
		mod:   mod,
		sweep: sweep,
		wsHub: NewWSHub(),
	}
}

// HandleWebSocket handles WebSocket upgrade requests.
func (h *Handlers) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	h.wsHub.AddClient(conn)

	// Read messages (for potential commands from client)
	go func() {
		defer h.wsHub.RemoveClient(conn)
		for {
			_, _, err := conn.ReadMessage()
			if err != nil {
				break
			}
		}
	}()
}

// HandleParams reports the OFDM plan and default sweep settings.
func (h *Handlers) HandleParams(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"fftSize":    h.plan.FFTSize,
		"cpLen":      h.plan.CPLen,
		"pilots":     h.plan.NumPilots(),
		"dataBins":   h.plan.NumData(),
		"modulation": h.mod.String(),
		"sweep":      h.sweep,
	})
}

// HandleSweep starts a BER sweep in the background. Results stream out over
// the WebSocket as they complete; the final curve is broadcast as "sweep_done".
func (h *Handlers) HandleSweep(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	cfg := h.sweep
	if r.Body != nil {
		// Partial overrides are fine; zero fields keep their defaults.
		var req sim.SweepConfig
		if err := json.NewDecoder(r.Body).Decode(&req); err == nil {
			if req.EbN0StopDB > req.EbN0StartDB {
				cfg.EbN0StartDB = req.EbN0StartDB
				cfg.EbN0StopDB = req.EbN0StopDB
			}
			if req.EbN0StepDB > 0 {
				cfg.EbN0StepDB = req.EbN0StepDB
			}
			if req.NumBits > 0 {
				cfg.NumBits = req.NumBits
			}
			if req.Trials > 0 {
				cfg.Trials = req.Trials
			}
			if req.Seed != 0 {
				cfg.Seed = req.Seed
			}
		}
	}

	h.mu.Lock()
	if h.running {
		h.mu.Unlock()
		http.Error(w, "Sweep already running", http.StatusConflict)
		return
	}
	h.running = true
	h.mu.Unlock()

	sweepsTotal.Inc()
	h.wsHub.BroadcastStatus("sweeping", fmt.Sprintf("Eb/N0 %.1f..%.1f dB", cfg.EbN0StartDB, cfg.EbN0StopDB))

	go func() {
		start := time.Now()
		defer func() {
			h.mu.Lock()
			h.running = false
			h.mu.Unlock()
			sweepDuration.Observe(time.Since(start).Seconds())
		}()

		points, err := sim.RunSweep(cfg, func(p sim.BERPoint) {
			sweepPointsTotal.Inc()
			h.wsHub.Broadcast(WSMessage{Type: "ber_point", Payload: p})
		})
		if err != nil {
			h.wsHub.BroadcastStatus("error", fmt.Sprintf("Sweep failed: %v", err))
			return
		}
		h.wsHub.Broadcast(WSMessage{Type: "sweep_done", Payload: points})
		log.Printf("Sweep finished: %d points in %v", len(points), time.Since(start).Round(time.Millisecond))
	}()

	json.NewEncoder(w).Encode(map[string]string{"status": "started"})
}

// HandleCapture returns a one-shot OFDM spectrum and constellation capture.
func (h *Handlers) HandleCapture(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	snrDB := 20.0
	if s := r.URL.Query().Get("snr"); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			http.Error(w, fmt.Sprintf("Bad snr: %v", err), http.StatusBadRequest)
			return
		}
		snrDB = v
	}
	seed := time.Now().UnixNano()
	if s := r.URL.Query().Get("seed"); s != "" {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			http.Error(w, fmt.Sprintf("Bad seed: %v", err), http.StatusBadRequest)
			return
		}
		seed = v
	}

	snap, err := sim.CaptureOFDM(h.plan, h.mod, snrDB, seed)
	if err != nil {
		http.Error(w, fmt.Sprintf("Capture: %v", err), http.StatusInternalServerError)
		return
	}
	capturesTotal.Inc()
	json.NewEncoder(w).Encode(snap)
}

// HandleStatus reports whether a sweep is in progress.
func (h *Handlers) HandleStatus(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	running := h.running
	h.mu.Unlock()

	json.NewEncoder(w).Encode(map[string]interface{}{
		"running": running,
		"clients": h.wsHub.NumClients(),
	})
}
