package audio

import (
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"
)

// DefaultSampleRate is the playout rate for the acoustic loopback demo.
const DefaultSampleRate = 44100

// IO wraps PortAudio streams for half-duplex transmit/receive of acoustic
// OFDM frames. Buffers are chunked at one OFDM symbol per callback.
type IO struct {
	sampleRate   float64
	framesPerBuf int

	inputStream  *portaudio.Stream
	outputStream *portaudio.Stream
	inputBuf     []float32
	outputBuf    []float32
	mu           sync.Mutex
}

// Init initializes PortAudio. Call once before any stream use.
func Init() error {
	return portaudio.Initialize()
}

// Terminate cleans up PortAudio.
func Terminate() error {
	return portaudio.Terminate()
}

// NewIO creates an audio I/O helper; framesPerBuf should be the OFDM
// symbol length so stream chunks align with symbol boundaries.
func NewIO(sampleRate float64, framesPerBuf int) *IO {
	return &IO{
		sampleRate:   sampleRate,
		framesPerBuf: framesPerBuf,
		inputBuf:     make([]float32, framesPerBuf),
		outputBuf:    make([]float32, framesPerBuf),
	}
}

// OpenOutput opens the default output stream.
func (a *IO) OpenOutput() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	stream, err := portaudio.OpenDefaultStream(0, 1, a.sampleRate, a.framesPerBuf, a.outputBuf)
	if err != nil {
		return fmt.Errorf("open output stream: %w", err)
	}
	a.outputStream = stream
	return nil
}

// OpenInput opens the default input stream.
func (a *IO) OpenInput() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	stream, err := portaudio.OpenDefaultStream(1, 0, a.sampleRate, a.framesPerBuf, a.inputBuf)
	if err != nil {
		return fmt.Errorf("open input stream: %w", err)
	}
	a.inputStream = stream
	return nil
}

// StartOutput starts the output stream.
func (a *IO) StartOutput() error {
	if a.outputStream == nil {
		return fmt.Errorf("output stream not opened")
	}
	return a.outputStream.Start()
}

// StartInput starts the input stream.
func (a *IO) StartInput() error {
	if a.inputStream == nil {
		return fmt.Errorf("input stream not opened")
	}
	return a.inputStream.Start()
}

// WriteSamples plays a sample buffer, chunked and zero-padded to whole
// callback buffers.
func (a *IO) WriteSamples(samples []float32) error {
	if a.outputStream == nil {
		return fmt.Errorf("output stream not opened")
	}
	for i := 0; i < len(samples); i += a.framesPerBuf {
		end := i + a.framesPerBuf
		if end > len(samples) {
			chunk := make([]float32, a.framesPerBuf)
			copy(chunk, samples[i:])
			copy(a.outputBuf, chunk)
		} else {
			copy(a.outputBuf, samples[i:end])
		}
		if err := a.outputStream.Write(); err != nil {
			return fmt.Errorf("write: %w", err)
		}
	}
	return nil
}

// ReadSamples captures n samples from the input stream.
func (a *IO) ReadSamples(n int) ([]float32, error) {
	if a.inputStream == nil {
		return nil, fmt.Errorf("input stream not opened")
	}
	out := make([]float32, 0, n)
	for len(out) < n {
		if err := a.inputStream.Read(); err != nil {
			return nil, fmt.Errorf("read: %w", err)
		}
		out = append(out, a.inputBuf...)
	}
	return out[:n], nil
}

// Close closes any open streams.
func (a *IO) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	var errs []error
	if a.inputStream != nil {
		if err := a.inputStream.Close(); err != nil {
			errs = append(errs, err)
		}
		a.inputStream = nil
	}
	if a.outputStream != nil {
		if err := a.outputStream.Close(); err != nil {
			errs = append(errs, err)
		}
		a.outputStream = nil
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
