package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/gocomms/phylab/internal/modem"
)

// Config is the demo server configuration, loaded from YAML with
// PHYLAB_-prefixed environment overrides.
type Config struct {
	Server ServerConfig `mapstructure:"server"`
	OFDM   OFDMConfig   `mapstructure:"ofdm"`
	Sweep  SweepConfig  `mapstructure:"sweep"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// OFDMConfig holds the subcarrier plan geometry.
type OFDMConfig struct {
	FFTSize    int    `mapstructure:"fft_size"`
	CPLen      int    `mapstructure:"cp_len"`
	Pilots     int    `mapstructure:"pilots"`
	Modulation string `mapstructure:"modulation"`
}

// SweepConfig holds the default BER sweep parameters.
type SweepConfig struct {
	EbN0StartDB float64 `mapstructure:"ebn0_start_db"`
	EbN0StopDB  float64 `mapstructure:"ebn0_stop_db"`
	EbN0StepDB  float64 `mapstructure:"ebn0_step_db"`
	NumBits     int     `mapstructure:"num_bits"`
	Trials      int     `mapstructure:"trials"`
	Seed        int64   `mapstructure:"seed"`
	Workers     int     `mapstructure:"workers"`
}

// Load reads the configuration file at path (optional; defaults apply when
// empty) and applies environment overrides.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.addr", "0.0.0.0:8080")
	v.SetDefault("ofdm.fft_size", 64)
	v.SetDefault("ofdm.cp_len", 16)
	v.SetDefault("ofdm.pilots", 4)
	v.SetDefault("ofdm.modulation", "qpsk")
	v.SetDefault("sweep.ebn0_start_db", 0.0)
	v.SetDefault("sweep.ebn0_stop_db", 8.0)
	v.SetDefault("sweep.ebn0_step_db", 1.0)
	v.SetDefault("sweep.num_bits", 2000)
	v.SetDefault("sweep.trials", 4)
	v.SetDefault("sweep.seed", 1)
	v.SetDefault("sweep.workers", 4)

	v.SetEnvPrefix("PHYLAB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if _, err := c.Plan(); err != nil {
		return err
	}
	if _, err := c.Modulation(); err != nil {
		return err
	}
	return nil
}

// Plan builds the subcarrier plan described by the OFDM section.
func (c *Config) Plan() (*modem.Plan, error) {
	return modem.NewPlan(c.OFDM.FFTSize, c.OFDM.CPLen, c.OFDM.Pilots)
}

// Modulation resolves the configured constellation name.
func (c *Config) Modulation() (modem.Modulation, error) {
	switch strings.ToLower(c.OFDM.Modulation) {
	case "bpsk":
		return modem.ModBPSK, nil
	case "qpsk", "":
		return modem.ModQPSK, nil
	case "16qam", "16-qam":
		return modem.Mod16QAM, nil
	default:
		return 0, fmt.Errorf("unknown modulation %q", c.OFDM.Modulation)
	}
}
