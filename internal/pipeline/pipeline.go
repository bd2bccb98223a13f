// Package pipeline wires binarization, marker scanning, corner resolution
// and rectification into a single frame-scanning unit.
package pipeline

import (
	"github.com/MeKo-Tech/qrloc/internal/scanner"
)

// Config holds configuration for the scan pipeline and its components.
type Config struct {
	Scan scanner.Config `mapstructure:"scan" yaml:"scan" json:"scan"`
	// Rectify controls whether resolved codes are also resampled into an
	// upright square bitmap.
	Rectify bool `mapstructure:"rectify" yaml:"rectify" json:"rectify"`

	Parallel ParallelConfig `mapstructure:"parallel" yaml:"parallel" json:"parallel"`
}

// DefaultConfig returns a default pipeline config with component defaults.
func DefaultConfig() Config {
	return Config{
		Scan:     scanner.DefaultConfig(),
		Rectify:  true,
		Parallel: DefaultParallelConfig(),
	}
}

// Builder constructs a Pipeline with fluent configuration.
type Builder struct {
	cfg Config
}

// NewBuilder creates a new pipeline builder with defaults.
func NewBuilder() *Builder { return &Builder{cfg: DefaultConfig()} }

// WithScanConfig replaces the marker-scan configuration.
func (b *Builder) WithScanConfig(cfg scanner.Config) *Builder {
	b.cfg.Scan = cfg
	return b
}

// WithStride sets the row sampling interval.
func (b *Builder) WithStride(stride int) *Builder {
	if stride > 0 {
		b.cfg.Scan.Stride = stride
	}
	return b
}

// WithTolerance sets the run-ratio match tolerance.
func (b *Builder) WithTolerance(tol float64) *Builder {
	if tol > 0 {
		b.cfg.Scan.Tolerance = tol
	}
	return b
}

// WithRectify toggles rectified output.
func (b *Builder) WithRectify(enabled bool) *Builder {
	b.cfg.Rectify = enabled
	return b
}

// WithParallel replaces the parallel-processing configuration.
func (b *Builder) WithParallel(cfg ParallelConfig) *Builder {
	b.cfg.Parallel = cfg
	return b
}

// Build assembles the pipeline.
func (b *Builder) Build() *Pipeline {
	return &Pipeline{
		cfg:     b.cfg,
		scanner: scanner.New(b.cfg.Scan),
	}
}

// Pipeline runs frames through the full locate-and-rectify sequence. One
// Pipeline drives one scanner and must not be shared across goroutines;
// use ScanAllParallel or one Pipeline per worker instead.
type Pipeline struct {
	cfg     Config
	scanner *scanner.Scanner
}

// New creates a pipeline from the given config.
func New(cfg Config) *Pipeline {
	return &Pipeline{cfg: cfg, scanner: scanner.New(cfg.Scan)}
}

// Config returns the pipeline's effective configuration.
func (p *Pipeline) Config() Config { return p.cfg }
