// Package config reads the server's settings from the environment.
//
// Every setting has a default, so an empty environment yields a working
// configuration. Malformed values are all reported together.
package config

import (
	"os"
	"runtime"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cast"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ironsheep/hog-detector-mcp/internal/hog"
	"github.com/ironsheep/hog-detector-mcp/internal/imaging"
)

// Environment variables read by Load.
const (
	EnvBins      = "HOG_MCP_BINS"
	EnvCellSize  = "HOG_MCP_CELL_SIZE"
	EnvBlockSize = "HOG_MCP_BLOCK_SIZE"
	EnvLogLevel  = "HOG_MCP_LOG_LEVEL"
	EnvWorkers   = "HOG_MCP_WORKERS"
	EnvResizer   = "HOG_MCP_RESIZER"
)

// Pyramid resampling backends selectable with HOG_MCP_RESIZER.
const (
	ResizerLinear   = "linear"   // disintegration/imaging, linear filter
	ResizerBilinear = "bilinear" // nfnt/resize, bilinear interpolation
)

// Config holds the runtime settings.
type Config struct {
	HOG      hog.Config
	LogLevel string
	// Workers caps how many pyramid levels are scanned at once.
	Workers int
	// Resizer names the backend that builds the scale pyramid.
	Resizer string
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		HOG:      hog.DefaultConfig(),
		LogLevel: "info",
		Workers:  runtime.GOMAXPROCS(0),
		Resizer:  ResizerLinear,
	}
}

// Load builds a Config from the environment on top of Default.
func Load() (Config, error) {
	cfg := Default()
	var errs error

	readInt := func(key string, dst *int) {
		raw := getEnv(key, "")
		if raw == "" {
			return
		}
		v, err := cast.ToIntE(raw)
		if err != nil {
			errs = multierr.Append(errs, errors.Wrapf(err, "%s", key))
			return
		}
		*dst = v
	}
	readInt(EnvBins, &cfg.HOG.Bins)
	readInt(EnvCellSize, &cfg.HOG.CellSize)
	readInt(EnvBlockSize, &cfg.HOG.BlockSize)
	readInt(EnvWorkers, &cfg.Workers)
	if level := getEnv(EnvLogLevel, ""); level != "" {
		cfg.LogLevel = strings.ToLower(level)
	}
	if r := getEnv(EnvResizer, ""); r != "" {
		cfg.Resizer = strings.ToLower(r)
	}

	errs = multierr.Append(errs, cfg.Validate())
	if errs != nil {
		return Config{}, errs
	}
	return cfg, nil
}

// Validate checks the HOG parameters, the worker count and the log level.
func (c Config) Validate() error {
	var errs error
	if err := c.HOG.Validate(); err != nil {
		errs = multierr.Append(errs, err)
	}
	if c.Workers < 1 {
		errs = multierr.Append(errs, errors.Errorf("%s must be at least 1, got %d", EnvWorkers, c.Workers))
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		errs = multierr.Append(errs, errors.Wrapf(err, "%s", EnvLogLevel))
	}
	if _, err := c.NewResizer(); err != nil {
		errs = multierr.Append(errs, err)
	}
	return errs
}

// NewResizer returns the pyramid resampler named by c.Resizer.
func (c Config) NewResizer() (imaging.Resizer, error) {
	switch c.Resizer {
	case ResizerLinear:
		return imaging.NewLinearResizer(), nil
	case ResizerBilinear:
		return imaging.NewBilinearResizer(), nil
	default:
		return nil, errors.Errorf("%s must be %q or %q, got %q", EnvResizer, ResizerLinear, ResizerBilinear, c.Resizer)
	}
}

// NewLogger builds a JSON logger on stderr at the configured level. Stdout is
// reserved for the protocol.
func (c Config) NewLogger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", EnvLogLevel)
	}
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.OutputPaths = []string{"stderr"}
	zc.ErrorOutputPaths = []string{"stderr"}
	return zc.Build()
}

func getEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return defaultValue
}
