package sim

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// Mode selects the analysis the driver runs.
type Mode string

const (
	// TransientAnalysis runs until the horizon, sampling every interval,
	// keeping all data.
	TransientAnalysis Mode = "transient"
	// PerformanceAnalysis runs until the batch quota is met, discarding
	// the transient period.
	PerformanceAnalysis Mode = "performance"
)

// GeneralConfig groups run-control parameters.
type GeneralConfig struct {
	Mode           Mode    `yaml:"mode"`
	Stop           float64 `yaml:"t_stop"`    // simulation horizon (transient mode)
	Transient      float64 `yaml:"t_tran"`    // transient period to discard (performance mode)
	Batches        int     `yaml:"batches"`   // batch quota (performance mode)
	BatchDim       int     `yaml:"batchdim"`  // samples per batch (performance mode)
	SampleInterval float64 `yaml:"t_sample"`  // sampling interval
	Confidence     float64 `yaml:"confidence"`
	Seed           int64   `yaml:"seed"`
}

// ClassRates holds one rate per task class (tasks per second).
type ClassRates struct {
	Task1 float64 `yaml:"task_1"`
	Task2 float64 `yaml:"task_2"`
}

// CloudletConfig groups the front-tier parameters.
type CloudletConfig struct {
	NServers  int        `yaml:"n_servers"`
	Threshold int        `yaml:"threshold"`
	Service   ClassRates `yaml:"service"`
}

// CloudConfig groups the overflow-tier parameters. Class-2 setup is
// exponential with the given mean; class-1 setup is fixed at zero.
type CloudConfig struct {
	Service   ClassRates `yaml:"service"`
	SetupMean float64    `yaml:"setup_mean"`
}

// Config is the immutable, validated description of one simulation run.
// It is built once at startup; the engine never mutates it. Arrival
// distributions are exponential only; the rates here are converted to
// mean-parameterized variates at component construction.
type Config struct {
	General  GeneralConfig  `yaml:"general"`
	Arrival  ClassRates     `yaml:"arrival"`
	Cloudlet CloudletConfig `yaml:"cloudlet"`
	Cloud    CloudConfig    `yaml:"cloud"`
}

// DefaultConfig returns the baseline configuration.
func DefaultConfig() *Config {
	return &Config{
		General: GeneralConfig{
			Mode:           TransientAnalysis,
			Stop:           1000,
			Transient:      0,
			Batches:        64,
			BatchDim:       128,
			SampleInterval: 1,
			Confidence:     0.95,
			Seed:           DefaultSeed,
		},
		Arrival: ClassRates{Task1: 6.00, Task2: 6.25},
		Cloudlet: CloudletConfig{
			NServers:  20,
			Threshold: 20,
			Service:   ClassRates{Task1: 0.45, Task2: 0.27},
		},
		Cloud: CloudConfig{
			Service:   ClassRates{Task1: 0.25, Task2: 0.22},
			SetupMean: 0.8,
		},
	}
}

// LoadConfig reads a YAML file over the defaults and validates the
// result.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects invalid combinations once, at startup, instead of at
// first use.
func (c *Config) Validate() error {
	switch c.General.Mode {
	case TransientAnalysis, PerformanceAnalysis:
	default:
		return fmt.Errorf("unsupported mode %q", c.General.Mode)
	}
	if c.General.Seed <= 0 {
		return fmt.Errorf("seed must be positive, got %d", c.General.Seed)
	}
	if c.General.Mode == TransientAnalysis && (c.General.Stop <= 0 || math.IsInf(c.General.Stop, 0)) {
		return fmt.Errorf("t_stop must be positive and finite, got %g", c.General.Stop)
	}
	if c.General.Mode == PerformanceAnalysis {
		if c.General.Batches <= 0 {
			return fmt.Errorf("batches must be positive, got %d", c.General.Batches)
		}
		if c.General.BatchDim <= 0 {
			return fmt.Errorf("batchdim must be positive, got %d", c.General.BatchDim)
		}
		if c.General.Transient < 0 {
			return fmt.Errorf("t_tran must be non-negative, got %g", c.General.Transient)
		}
	}
	if c.General.SampleInterval <= 0 {
		return fmt.Errorf("t_sample must be positive, got %g", c.General.SampleInterval)
	}
	if c.General.Confidence <= 0 || c.General.Confidence >= 1 {
		return fmt.Errorf("confidence must be in (0, 1), got %g", c.General.Confidence)
	}
	if c.Arrival.Task1 <= 0 || c.Arrival.Task2 <= 0 {
		return fmt.Errorf("arrival rates must be positive, got (%g, %g)", c.Arrival.Task1, c.Arrival.Task2)
	}
	if c.Cloudlet.NServers <= 0 {
		return fmt.Errorf("n_servers must be positive, got %d", c.Cloudlet.NServers)
	}
	if c.Cloudlet.Threshold <= 0 || c.Cloudlet.Threshold > c.Cloudlet.NServers {
		return fmt.Errorf("threshold must be in [1, n_servers], got %d with n_servers=%d", c.Cloudlet.Threshold, c.Cloudlet.NServers)
	}
	if c.Cloudlet.Service.Task1 <= 0 || c.Cloudlet.Service.Task2 <= 0 {
		return fmt.Errorf("cloudlet service rates must be positive, got (%g, %g)", c.Cloudlet.Service.Task1, c.Cloudlet.Service.Task2)
	}
	if c.Cloud.Service.Task1 <= 0 || c.Cloud.Service.Task2 <= 0 {
		return fmt.Errorf("cloud service rates must be positive, got (%g, %g)", c.Cloud.Service.Task1, c.Cloud.Service.Task2)
	}
	if c.Cloud.SetupMean <= 0 {
		return fmt.Errorf("setup_mean must be positive, got %g", c.Cloud.SetupMean)
	}
	return nil
}
