package driver

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hupe1980/stepmesh/core"
	"github.com/hupe1980/stepmesh/scheduler"
)

// Config contains the operational parameters of a Driver. It can be loaded
// from YAML:
//
//	end_tick: 500
//	grace_frames: 3
//	frame_interval: 20ms
//	policy: run_this_frame
//	start_paused: false
type Config struct {
	// EndTick auto-pauses the driver once the scheduler has completed this
	// many ticks. Zero runs forever.
	EndTick uint64 `yaml:"end_tick"`

	// GraceFrames is the number of initial external frames that are counted
	// but not ticked, giving hosts time to finish setting up agents.
	GraceFrames int `yaml:"grace_frames"`

	// FrameInterval is the period of the TickerSource built from this
	// config.
	FrameInterval time.Duration `yaml:"frame_interval"`

	// Policy names the scheduler registration policy ("next_tick" or
	// "run_this_frame"). The driver does not apply it; whoever builds the
	// scheduler does.
	Policy string `yaml:"policy"`

	// StartPaused makes a new driver ignore frames until Resume is called.
	StartPaused bool `yaml:"start_paused"`
}

// DefaultConfig ticks forever at 60 frames per second with no grace period.
//
// Configuration values:
//   - EndTick: 0 (no end)
//   - GraceFrames: 0
//   - FrameInterval: 16.667ms
//   - Policy: next_tick
var DefaultConfig = Config{
	FrameInterval: 16667 * time.Microsecond,
	Policy:        scheduler.PolicyNextTick.String(),
}

// Validate checks the config for values no driver can run with.
func (c Config) Validate() error {
	if c.GraceFrames < 0 {
		return fmt.Errorf("%w: grace_frames must be >= 0, got %d", core.ErrInvalidArgument, c.GraceFrames)
	}
	if c.FrameInterval <= 0 {
		return fmt.Errorf("%w: frame_interval must be positive, got %s", core.ErrInvalidArgument, c.FrameInterval)
	}
	if _, err := scheduler.ParsePolicy(c.Policy); err != nil {
		return err
	}
	return nil
}

// SchedulerPolicy returns the parsed registration policy.
func (c Config) SchedulerPolicy() (scheduler.Policy, error) {
	return scheduler.ParsePolicy(c.Policy)
}

// ParseConfig decodes YAML on top of DefaultConfig and validates the result.
// Unknown keys are rejected.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("parse driver config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// LoadConfig reads and parses a YAML config file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("load driver config: %w", err)
	}
	return ParseConfig(data)
}

// Dump encodes the config as YAML, the inverse of ParseConfig.
func (c Config) Dump() ([]byte, error) {
	return yaml.Marshal(c)
}
