package driver

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/stepmesh/core"
	"github.com/hupe1980/stepmesh/scheduler"
)

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig([]byte(`
end_tick: 500
grace_frames: 3
frame_interval: 20ms
policy: run_this_frame
start_paused: true
`))
	require.NoError(t, err)

	assert.Equal(t, Config{
		EndTick:       500,
		GraceFrames:   3,
		FrameInterval: 20 * time.Millisecond,
		Policy:        "run_this_frame",
		StartPaused:   true,
	}, cfg)

	policy, err := cfg.SchedulerPolicy()
	require.NoError(t, err)
	assert.Equal(t, scheduler.PolicyRunThisFrame, policy)
}

func TestParseConfig_KeepsDefaults(t *testing.T) {
	cfg, err := ParseConfig([]byte("end_tick: 10\n"))
	require.NoError(t, err)
	assert.Equal(t, uint64(10), cfg.EndTick)
	assert.Equal(t, DefaultConfig.FrameInterval, cfg.FrameInterval)
	assert.Equal(t, "next_tick", cfg.Policy)

	cfg, err = ParseConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig, cfg)
}

func TestParseConfig_Errors(t *testing.T) {
	tests := []struct {
		name     string
		yaml     string
		sentinel error
	}{
		{"unknown key", "tick_rate: 5\n", nil},
		{"malformed", "end_tick: [1, 2\n", nil},
		{"bad duration", "frame_interval: soon\n", nil},
		{"negative grace", "grace_frames: -1\n", core.ErrInvalidArgument},
		{"zero interval", "frame_interval: 0s\n", core.ErrInvalidArgument},
		{"unknown policy", "policy: whenever\n", core.ErrInvalidArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfig([]byte(tt.yaml))
			require.Error(t, err)
			if tt.sentinel != nil {
				assert.ErrorIs(t, err, tt.sentinel)
			}
		})
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "driver.yaml")
	require.NoError(t, os.WriteFile(path, []byte("end_tick: 42\nframe_interval: 1s\n"), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), cfg.EndTick)
	assert.Equal(t, time.Second, cfg.FrameInterval)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestConfig_DumpParses(t *testing.T) {
	cfg := DefaultConfig
	cfg.EndTick = 7
	cfg.GraceFrames = 1

	data, err := cfg.Dump()
	require.NoError(t, err)
	assert.Contains(t, string(data), "frame_interval: 16.667ms")

	back, err := ParseConfig(data)
	require.NoError(t, err)
	assert.Equal(t, cfg, back)
}
