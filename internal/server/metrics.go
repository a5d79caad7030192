package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	sweepsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "phylab_sweeps_total",
		Help: "Number of BER sweeps started",
	})

	sweepPointsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "phylab_sweep_points_total",
		Help: "Number of BER sweep points computed",
	})

	capturesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "phylab_captures_total",
		Help: "Number of OFDM captures generated",
	})

	wsClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "phylab_websocket_clients",
		Help: "Connected WebSocket clients",
	})

	sweepDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "phylab_sweep_duration_seconds",
		Help:    "Wall-clock duration of BER sweeps",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
	})
)
