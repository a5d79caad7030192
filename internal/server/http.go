package server

import (
	"fmt"
	"log"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server is the HTTP server for the web interface.
type Server struct {
	mux       *http.ServeMux
	handler   *Handlers
	addr      string
	staticDir string
}

// NewServer creates a new HTTP server.
func NewServer(addr string, handler *Handlers, staticDir string) *Server {
	s := &Server{
		mux:       http.NewServeMux(),
		handler:   handler,
		addr:      addr,
		staticDir: staticDir,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	// API routes
	s.mux.HandleFunc("/api/params", s.handler.HandleParams)
	s.mux.HandleFunc("/api/sweep", s.handler.HandleSweep)
	s.mux.HandleFunc("/api/capture", s.handler.HandleCapture)
	s.mux.HandleFunc("/api/status", s.handler.HandleStatus)

	// WebSocket
	s.mux.HandleFunc("/ws", s.handler.HandleWebSocket)

	// Prometheus metrics
	s.mux.Handle("/metrics", promhttp.Handler())

	// Static files
	s.mux.Handle("/", http.FileServer(http.Dir(s.staticDir)))
}

// Handler exposes the route mux, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	log.Printf("Starting server on %s", s.addr)
	fmt.Printf("\n  PHY Lab running at http://%s\n\n", s.addr)
	return http.ListenAndServe(s.addr, s.mux)
}
