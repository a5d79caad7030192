package sim

import (
	"fmt"
	"math"
	"math/rand"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/gocomms/phylab/internal/channel"
	"github.com/gocomms/phylab/internal/fec"
	"github.com/gocomms/phylab/internal/modem"
)

// Coded BER simulation: information bits → convolutional encoder → BPSK →
// AWGN → hard and soft Viterbi decoding, swept over a range of Eb/N0
// points. Points are independent, so they fan out across workers; each
// trial gets its own seeded RNG and channel.

const codeRate = 0.5 // rate-1/2 convolutional code

// SweepConfig describes one BER sweep.
type SweepConfig struct {
	EbN0StartDB float64 `json:"ebn0_start_db"`
	EbN0StopDB  float64 `json:"ebn0_stop_db"`
	EbN0StepDB  float64 `json:"ebn0_step_db"`
	NumBits     int     `json:"num_bits"` // information bits per trial
	Trials      int     `json:"trials"`   // trials averaged per point
	Seed        int64   `json:"seed"`
	Workers     int     `json:"workers"`
}

// BERPoint is the measured coded BER at one Eb/N0 point.
type BERPoint struct {
	EbN0DB  float64 `json:"ebn0_db"`
	HardBER float64 `json:"hard_ber"`
	SoftBER float64 `json:"soft_ber"`
}

// RunSweep measures hard- and soft-decision BER at every point of the
// sweep. When progress is non-nil it is called with each finished point,
// in ascending Eb/N0 order.
func RunSweep(cfg SweepConfig, progress func(BERPoint)) ([]BERPoint, error) {
	if cfg.EbN0StepDB <= 0 || cfg.EbN0StopDB < cfg.EbN0StartDB {
		return nil, fmt.Errorf("invalid Eb/N0 range [%g, %g] step %g",
			cfg.EbN0StartDB, cfg.EbN0StopDB, cfg.EbN0StepDB)
	}
	if cfg.NumBits < 1 || cfg.Trials < 1 {
		return nil, fmt.Errorf("need at least 1 bit and 1 trial per point")
	}

	var ebn0s []float64
	for e := cfg.EbN0StartDB; e <= cfg.EbN0StopDB+1e-9; e += cfg.EbN0StepDB {
		ebn0s = append(ebn0s, e)
	}

	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}

	points := make([]BERPoint, len(ebn0s))
	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				points[i] = measurePoint(ebn0s[i], cfg)
			}
		}()
	}
	for i := range ebn0s {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	if progress != nil {
		for _, pt := range points {
			progress(pt)
		}
	}
	return points, nil
}

func measurePoint(ebn0DB float64, cfg SweepConfig) BERPoint {
	snrDB := channel.EbN0ToSNR(ebn0DB, 1, codeRate) // BPSK: 1 bit/symbol

	hard := make([]float64, cfg.Trials)
	soft := make([]float64, cfg.Trials)
	for trial := 0; trial < cfg.Trials; trial++ {
		// Decorrelate trials and points without sharing RNGs across
		// goroutines.
		seed := cfg.Seed + int64(trial)*7919 + int64(ebn0DB*1000)
		hard[trial], soft[trial] = runTrial(seed, snrDB, cfg.NumBits)
	}

	return BERPoint{
		EbN0DB:  ebn0DB,
		HardBER: stat.Mean(hard, nil),
		SoftBER: stat.Mean(soft, nil),
	}
}

// runTrial transmits one coded block over BPSK/AWGN and returns the hard
// and soft decoding bit error rates.
func runTrial(seed int64, snrDB float64, numBits int) (hardBER, softBER float64) {
	rng := rand.New(rand.NewSource(seed))

	bits := make([]byte, numBits)
	for i := range bits {
		bits[i] = byte(rng.Intn(2))
	}

	coded := fec.ConvEncodeTerminated(bits)

	// BPSK: bit 0 → +1, bit 1 → -1.
	tx := make([]complex128, len(coded))
	for i, b := range coded {
		if b == 0 {
			tx[i] = complex(1, 0)
		} else {
			tx[i] = complex(-1, 0)
		}
	}

	ch := channel.NewAWGN(seed + 1)
	rx, noiseVar := ch.Apply(tx, snrDB)

	hardIn := make([]byte, len(rx))
	llr := make([]float64, len(rx))
	for i, s := range rx {
		if real(s) < 0 {
			hardIn[i] = 1
		}
		llr[i] = 4 * real(s) / noiseVar // positive favors bit 0
	}

	hardOut := fec.ViterbiDecodeTerminated(hardIn, numBits)
	softOut := fec.ViterbiDecodeSoftTerminated(llr, numBits)

	return bitErrorRate(bits, hardOut), bitErrorRate(bits, softOut)
}

func bitErrorRate(want, got []byte) float64 {
	if len(got) == 0 {
		return 1
	}
	errs := 0
	for i := range want {
		if i >= len(got) || want[i] != got[i] {
			errs++
		}
	}
	return float64(errs) / float64(len(want))
}

// Capture is one received OFDM symbol prepared for visualization.
type Capture struct {
	SpectrumDB    []float64    `json:"spectrum_db"`
	Constellation [][2]float64 `json:"constellation"`
	SNRdB         float64      `json:"snr_db"`
}

// CaptureOFDM sends one OFDM symbol of random data through an AWGN channel
// and returns the received spectrum and equalized constellation.
func CaptureOFDM(plan *modem.Plan, mod modem.Modulation, snrDB float64, seed int64) (*Capture, error) {
	cst := modem.NewConstellation(mod)
	rng := rand.New(rand.NewSource(seed))

	bits := make([]byte, plan.NumData()*mod.BitsPerSymbol())
	for i := range bits {
		bits[i] = byte(rng.Intn(2))
	}

	tx := modem.NewModulator(plan).ModulateSymbol(cst.MapBits(bits))
	rx, _ := channel.NewAWGN(seed + 1).Apply(tx, snrDB)
	syms, _ := modem.NewDemodulator(plan).DemodulateSymbol(rx)

	spec := modem.FFT(rx[plan.CPLen : plan.CPLen+plan.FFTSize])
	out := &Capture{SNRdB: snrDB}
	for _, v := range spec {
		mag2 := real(v)*real(v) + imag(v)*imag(v)
		out.SpectrumDB = append(out.SpectrumDB, 10*logSafe(mag2))
	}
	for _, s := range syms {
		out.Constellation = append(out.Constellation, [2]float64{real(s), imag(s)})
	}
	return out, nil
}

func logSafe(x float64) float64 {
	if x < 1e-12 {
		x = 1e-12
	}
	return math.Log10(x)
}
