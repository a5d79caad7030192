package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gocomms/phylab/internal/audio"
	"github.com/gocomms/phylab/internal/config"
	"github.com/gocomms/phylab/internal/modem"
	"github.com/gocomms/phylab/internal/server"
	"github.com/gocomms/phylab/internal/sim"
)

func main() {
	configPath := flag.String("config", "", "Config file path (optional)")
	addr := flag.String("addr", "", "Server address (overrides config)")
	staticDir := flag.String("static-dir", "./web/static", "Static files directory")
	listDevices := flag.Bool("list-devices", false, "List audio devices and exit")
	playTest := flag.Bool("play-test", false, "Play an acoustic test frame and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	plan, err := cfg.Plan()
	if err != nil {
		log.Fatalf("Invalid OFDM config: %v", err)
	}
	mod, err := cfg.Modulation()
	if err != nil {
		log.Fatalf("Invalid modulation: %v", err)
	}

	// Initialize PortAudio
	if err := audio.Init(); err != nil {
		log.Fatalf("Failed to initialize PortAudio: %v", err)
	}
	defer audio.Terminate()

	if *listDevices {
		if err := audio.PrintDevices(); err != nil {
			log.Fatalf("Failed to list devices: %v", err)
		}
		return
	}

	if *playTest {
		if err := playTestFrame(plan, mod); err != nil {
			log.Fatalf("Test frame failed: %v", err)
		}
		return
	}

	sweep := sim.SweepConfig{
		EbN0StartDB: cfg.Sweep.EbN0StartDB,
		EbN0StopDB:  cfg.Sweep.EbN0StopDB,
		EbN0StepDB:  cfg.Sweep.EbN0StepDB,
		NumBits:     cfg.Sweep.NumBits,
		Trials:      cfg.Sweep.Trials,
		Seed:        cfg.Sweep.Seed,
		Workers:     cfg.Sweep.Workers,
	}

	handlers := server.NewHandlers(plan, mod, sweep)
	srv := server.NewServer(cfg.Server.Addr, handlers, *staticDir)

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		fmt.Println("\nShutting down...")
		audio.Terminate()
		os.Exit(0)
	}()

	if err := srv.Start(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

// playTestFrame modulates a short message onto an acoustic OFDM frame and
// plays it on the default output device.
func playTestFrame(plan *modem.Plan, mod modem.Modulation) error {
	am := modem.NewAudioModem(plan, mod)
	samples := am.GenerateFrame([]byte("PHY Lab acoustic test frame"))

	io := audio.NewIO(audio.DefaultSampleRate, 1024)
	defer io.Close()

	if err := io.OpenOutput(); err != nil {
		return err
	}
	if err := io.StartOutput(); err != nil {
		return err
	}

	log.Printf("Playing %d samples (%.2f s)", len(samples), float64(len(samples))/audio.DefaultSampleRate)
	return io.WriteSamples(modem.SamplesToFloat32(samples))
}
