package audio

import (
	"fmt"

	"github.com/gordonklaus/portaudio"
)

// DeviceInfo holds audio device information.
type DeviceInfo struct {
	Name              string
	MaxInputChannels  int
	MaxOutputChannels int
	DefaultSampleRate float64
	IsDefault         bool
}

// ListDevices returns all available audio devices.
func ListDevices() ([]DeviceInfo, error) {
	devices, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("list devices: %w", err)
	}

	var defaultIn, defaultOut string
	if d, err := portaudio.DefaultInputDevice(); err == nil {
		defaultIn = d.Name
	}
	if d, err := portaudio.DefaultOutputDevice(); err == nil {
		defaultOut = d.Name
	}

	var result []DeviceInfo
	for _, d := range devices {
		result = append(result, DeviceInfo{
			Name:              d.Name,
			MaxInputChannels:  d.MaxInputChannels,
			MaxOutputChannels: d.MaxOutputChannels,
			DefaultSampleRate: d.DefaultSampleRate,
			IsDefault:         d.Name == defaultIn || d.Name == defaultOut,
		})
	}
	return result, nil
}

// HasOutputDevice reports whether a default output device exists.
func HasOutputDevice() bool {
	_, err := portaudio.DefaultOutputDevice()
	return err == nil
}

// PrintDevices prints all available audio devices.
func PrintDevices() error {
	devices, err := ListDevices()
	if err != nil {
		return err
	}
	fmt.Println("Audio Devices:")
	if len(devices) == 0 {
		fmt.Println("  (no devices found)")
		return nil
	}
	for i, d := range devices {
		mark := ""
		if d.IsDefault {
			mark = " [DEFAULT]"
		}
		fmt.Printf("  %d: %s (in:%d out:%d rate:%.0f)%s\n",
			i, d.Name, d.MaxInputChannels, d.MaxOutputChannels, d.DefaultSampleRate, mark)
	}
	return nil
}
