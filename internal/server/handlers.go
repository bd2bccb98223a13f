package server

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"io"
	"net/http"
	"os"
	"time"

	_ "golang.org/x/image/bmp"

	"github.com/MeKo-Tech/qrloc/internal/geometry"
	"github.com/MeKo-Tech/qrloc/internal/pipeline"
	"github.com/MeKo-Tech/qrloc/internal/utils"
	"github.com/MeKo-Tech/qrloc/internal/version"
)

// SetupRoutes configures the HTTP routes.
func (s *Server) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", s.corsMiddleware(s.healthHandler))
	mux.HandleFunc("/scan", s.corsMiddleware(s.scanImageHandler))
	mux.HandleFunc("/ws/scan", s.scanWebSocketHandler)
}

// healthHandler returns server health status.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := HealthResponse{
		Status:  "healthy",
		Version: version.GetVersion(),
		Time:    time.Now().UTC().Format(time.RFC3339),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding health response: %v\n", err)
	}
}

// scanImageHandler locates finder markers in an uploaded image.
func (s *Server) scanImageHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadMB*1024*1024)

	if err := r.ParseMultipartForm(s.maxUploadMB * 1024 * 1024); err != nil {
		s.writeErrorResponse(w, "Failed to parse form data", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		s.writeErrorResponse(w, "No image file provided", http.StatusBadRequest)
		return
	}
	defer func() { _ = file.Close() }()

	if header.Size > s.maxUploadMB*1024*1024 {
		s.writeErrorResponse(w, "File too large", http.StatusRequestEntityTooLarge)
		return
	}

	imageData, err := io.ReadAll(file)
	if err != nil {
		s.writeErrorResponse(w, "Failed to read image data", http.StatusInternalServerError)
		return
	}

	img, _, err := image.Decode(bytes.NewReader(imageData))
	if err != nil {
		scanRequestsTotal.WithLabelValues("http", "error").Inc()
		s.writeErrorResponse(w, "Invalid image format", http.StatusBadRequest)
		return
	}

	result := s.scan(img, "http")
	defer result.Release()

	response := ScanResponse{
		Success: true,
		Result:  s.toAPIResult(result, r.FormValue("rectified") == "true"),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding scan response: %v\n", err)
	}
}

// scan runs one frame through a fresh pipeline. Pipelines hold per-worker
// scratch state, so concurrent requests must not share one.
func (s *Server) scan(img image.Image, transport string) *pipeline.ScanResult {
	result := pipeline.New(s.plCfg).Scan(img)

	scanRequestsTotal.WithLabelValues(transport, "success").Inc()
	scanDuration.WithLabelValues(transport).Observe(result.Duration.Seconds())
	markersDetected.Observe(float64(len(result.Markers)))
	return result
}

// toAPIResult converts a pipeline result to its API shape.
func (s *Server) toAPIResult(result *pipeline.ScanResult, includeRectified bool) *ScanResult {
	api := &ScanResult{
		Markers:     result.Markers,
		Corners:     result.Corners,
		Width:       result.Width,
		Height:      result.Height,
		TotalTimeMs: result.Duration.Milliseconds(),
	}
	if api.Markers == nil {
		api.Markers = []geometry.Marker[int]{} // keep JSON as [] instead of null
	}
	if includeRectified && result.Rectified != nil {
		var buf bytes.Buffer
		if err := png.Encode(&buf, utils.BitmapToImage(result.Rectified)); err == nil {
			api.RectifiedPNG = base64.StdEncoding.EncodeToString(buf.Bytes())
		}
	}
	return api
}

func (s *Server) writeErrorResponse(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(ScanResponse{Success: false, Error: message}); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding error response: %v\n", err)
	}
}
