package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/ironsheep/hog-detector-mcp/internal/hog"
	"github.com/ironsheep/hog-detector-mcp/internal/imaging"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{EnvBins, EnvCellSize, EnvBlockSize, EnvLogLevel, EnvWorkers, EnvResizer} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, hog.DefaultConfig(), cfg.HOG)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.GreaterOrEqual(t, cfg.Workers, 1)
	assert.Equal(t, ResizerLinear, cfg.Resizer)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv(EnvBins, "12")
	t.Setenv(EnvCellSize, "6")
	t.Setenv(EnvBlockSize, "3")
	t.Setenv(EnvLogLevel, "DEBUG")
	t.Setenv(EnvWorkers, "2")
	t.Setenv(EnvResizer, "Bilinear")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, hog.Config{Bins: 12, CellSize: 6, BlockSize: 3}, cfg.HOG)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 2, cfg.Workers)
	assert.Equal(t, ResizerBilinear, cfg.Resizer)
}

func TestLoad_ReportsEveryBadValue(t *testing.T) {
	t.Setenv(EnvBins, "nine")
	t.Setenv(EnvCellSize, "0")
	t.Setenv(EnvBlockSize, "")
	t.Setenv(EnvLogLevel, "loud")
	t.Setenv(EnvWorkers, "0")
	t.Setenv(EnvResizer, "lanczos")

	_, err := Load()
	require.Error(t, err)

	msg := err.Error()
	assert.Contains(t, msg, EnvBins)
	assert.Contains(t, msg, EnvLogLevel)
	assert.Contains(t, msg, EnvWorkers)
	assert.Contains(t, msg, EnvResizer)
	assert.GreaterOrEqual(t, len(multierr.Errors(err)), 5)
	assert.ErrorIs(t, err, hog.ErrConfig)
}

func TestNewLogger(t *testing.T) {
	cfg := Default()
	cfg.LogLevel = "warn"

	logger, err := cfg.NewLogger()
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(-1), "debug enabled at warn level")

	cfg.LogLevel = "verbose"
	_, err = cfg.NewLogger()
	assert.Error(t, err)
}

func TestNewResizer(t *testing.T) {
	cfg := Default()

	r, err := cfg.NewResizer()
	require.NoError(t, err)
	assert.IsType(t, imaging.ImagingResizer{}, r)

	cfg.Resizer = ResizerBilinear
	r, err = cfg.NewResizer()
	require.NoError(t, err)
	assert.IsType(t, imaging.NfntResizer{}, r)

	cfg.Resizer = "cubic"
	_, err = cfg.NewResizer()
	assert.ErrorContains(t, err, EnvResizer)
	assert.Error(t, cfg.Validate())
}
