// Package server exposes the scan pipeline over HTTP and WebSocket.
package server

import (
	"github.com/MeKo-Tech/qrloc/internal/corners"
	"github.com/MeKo-Tech/qrloc/internal/geometry"
	"github.com/MeKo-Tech/qrloc/internal/pipeline"
)

// Server holds the HTTP server state and dependencies.
type Server struct {
	plCfg       pipeline.Config
	corsOrigin  string
	maxUploadMB int64
	timeoutSec  int
}

// Config holds server configuration.
type Config struct {
	Host           string
	Port           int
	CORSOrigin     string
	MaxUploadMB    int64
	TimeoutSec     int
	PipelineConfig pipeline.Config
}

// NewServer creates a new scan server instance.
func NewServer(config Config) *Server {
	return &Server{
		plCfg:       config.PipelineConfig,
		corsOrigin:  config.CORSOrigin,
		maxUploadMB: config.MaxUploadMB,
		timeoutSec:  config.TimeoutSec,
	}
}

// HealthResponse reports server liveness.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
	Time    string `json:"time"`
}

// ScanResult is the API representation of one scanned frame.
type ScanResult struct {
	Markers      []geometry.Marker[int] `json:"markers"`
	Corners      *corners.Set           `json:"corners,omitempty"`
	Width        int                    `json:"width"`
	Height       int                    `json:"height"`
	TotalTimeMs  int64                  `json:"total_time_ms"`
	RectifiedPNG string                 `json:"rectified_png,omitempty"` // base64, on request
}

// ScanResponse wraps a scan result or an error.
type ScanResponse struct {
	Success bool        `json:"success"`
	Result  *ScanResult `json:"result,omitempty"`
	Error   string      `json:"error,omitempty"`
}
