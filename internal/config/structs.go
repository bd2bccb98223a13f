package config

import (
	"fmt"
	"runtime"
)

// Config represents the complete configuration for the qrloc application.
// It includes settings for all commands (scan, serve) and supports loading
// from configuration files, environment variables, and command-line flags.
type Config struct {
	// Global settings
	LogLevel string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	Verbose  bool   `mapstructure:"verbose" yaml:"verbose" json:"verbose"`

	// Marker scan settings
	Scan ScanConfig `mapstructure:"scan" yaml:"scan" json:"scan"`

	// Pipeline settings
	Pipeline PipelineConfig `mapstructure:"pipeline" yaml:"pipeline" json:"pipeline"`

	// Output configuration
	Output OutputConfig `mapstructure:"output" yaml:"output" json:"output"`

	// Server configuration (for serve command)
	Server ServerConfig `mapstructure:"server" yaml:"server" json:"server"`

	// Stream configuration (frame throttling for live sources)
	Stream StreamConfig `mapstructure:"stream" yaml:"stream" json:"stream"`
}

// ScanConfig contains marker detection settings.
type ScanConfig struct {
	// Stride is the row sampling interval of the marker scan.
	Stride int `mapstructure:"stride" yaml:"stride" json:"stride"`
	// Tolerance is the maximum run-ratio deviation accepted as a match.
	Tolerance float64 `mapstructure:"tolerance" yaml:"tolerance" json:"tolerance"`
}

// PipelineConfig contains pipeline-level settings.
type PipelineConfig struct {
	// Rectify enables resampling of located codes into upright squares.
	Rectify bool `mapstructure:"rectify" yaml:"rectify" json:"rectify"`

	Parallel ParallelConfig `mapstructure:"parallel" yaml:"parallel" json:"parallel"`
}

// ParallelConfig contains parallel processing settings.
type ParallelConfig struct {
	MaxWorkers int `mapstructure:"max_workers" yaml:"max_workers" json:"max_workers"`
}

// OutputConfig contains output formatting settings.
type OutputConfig struct {
	Format string `mapstructure:"format" yaml:"format" json:"format"`
	File   string `mapstructure:"file" yaml:"file" json:"file"`
	// RectifiedDir receives one PNG per successfully rectified input.
	RectifiedDir string `mapstructure:"rectified_dir" yaml:"rectified_dir" json:"rectified_dir"`
	// OverlayDir receives copies of the inputs with marker boxes outlined.
	OverlayDir string `mapstructure:"overlay_dir" yaml:"overlay_dir" json:"overlay_dir"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host            string `mapstructure:"host" yaml:"host" json:"host"`
	Port            int    `mapstructure:"port" yaml:"port" json:"port"`
	CORSOrigin      string `mapstructure:"cors_origin" yaml:"cors_origin" json:"cors_origin"`
	MaxUploadMB     int    `mapstructure:"max_upload_mb" yaml:"max_upload_mb" json:"max_upload_mb"`
	TimeoutSec      int    `mapstructure:"timeout_sec" yaml:"timeout_sec" json:"timeout_sec"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" json:"shutdown_timeout"`
}

// StreamConfig contains live-stream throttling settings.
type StreamConfig struct {
	// SubmitEvery forwards only every Nth captured frame to the scanner.
	SubmitEvery int `mapstructure:"submit_every" yaml:"submit_every" json:"submit_every"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		LogLevel: "info",
		Verbose:  false,
		Scan: ScanConfig{
			Stride:    4,
			Tolerance: 0.65,
		},
		Pipeline: PipelineConfig{
			Rectify: true,
			Parallel: ParallelConfig{
				MaxWorkers: runtime.NumCPU(),
			},
		},
		Output: OutputConfig{
			Format: "json",
		},
		Server: ServerConfig{
			Host:            "localhost",
			Port:            8080,
			CORSOrigin:      "*",
			MaxUploadMB:     32,
			TimeoutSec:      30,
			ShutdownTimeout: 10,
		},
		Stream: StreamConfig{
			SubmitEvery: 2,
		},
	}
}

var validLogLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "error": true,
}

var validOutputFormats = map[string]bool{
	"json": true, "text": true,
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log_level: %q (must be debug, info, warn or error)", c.LogLevel)
	}
	if c.Scan.Stride < 1 {
		return fmt.Errorf("scan.stride must be at least 1, got %d", c.Scan.Stride)
	}
	if c.Scan.Tolerance <= 0 {
		return fmt.Errorf("scan.tolerance must be positive, got %g", c.Scan.Tolerance)
	}
	if c.Pipeline.Parallel.MaxWorkers < 0 {
		return fmt.Errorf("pipeline.parallel.max_workers must not be negative, got %d", c.Pipeline.Parallel.MaxWorkers)
	}
	if !validOutputFormats[c.Output.Format] {
		return fmt.Errorf("invalid output.format: %q (must be json or text)", c.Output.Format)
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in [1,65535], got %d", c.Server.Port)
	}
	if c.Server.MaxUploadMB < 1 {
		return fmt.Errorf("server.max_upload_mb must be at least 1, got %d", c.Server.MaxUploadMB)
	}
	if c.Server.TimeoutSec < 1 {
		return fmt.Errorf("server.timeout_sec must be at least 1, got %d", c.Server.TimeoutSec)
	}
	if c.Server.ShutdownTimeout < 0 {
		return fmt.Errorf("server.shutdown_timeout must not be negative, got %d", c.Server.ShutdownTimeout)
	}
	if c.Stream.SubmitEvery < 1 {
		return fmt.Errorf("stream.submit_every must be at least 1, got %d", c.Stream.SubmitEvery)
	}
	return nil
}
