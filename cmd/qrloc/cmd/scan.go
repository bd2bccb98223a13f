package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/MeKo-Tech/qrloc/internal/corners"
	"github.com/MeKo-Tech/qrloc/internal/geometry"
	"github.com/MeKo-Tech/qrloc/internal/pipeline"
	"github.com/MeKo-Tech/qrloc/internal/utils"
)

const (
	outputFormatJSON = "json"
	outputFormatText = "text"
)

// fileResult is the per-input record emitted by the scan command.
type fileResult struct {
	File        string                 `json:"file"`
	Error       string                 `json:"error,omitempty"`
	Markers     []geometry.Marker[int] `json:"markers"`
	Corners     *corners.Set           `json:"corners,omitempty"`
	Width       int                    `json:"width,omitempty"`
	Height      int                    `json:"height,omitempty"`
	TotalTimeMs int64                  `json:"total_time_ms"`
	Rectified   string                 `json:"rectified,omitempty"`
	Overlay     string                 `json:"overlay,omitempty"`
}

// scanCmd represents the scan command.
var scanCmd = &cobra.Command{
	Use:   "scan [images...]",
	Short: "Locate finder patterns in image files",
	Long: `Scan one or more image files for QR finder patterns, resolve the code's
outer corners, and optionally write rectified and overlay images.

Supported formats: JPEG, PNG, BMP

Examples:
  qrloc scan frame.png
  qrloc scan *.jpg --format text
  qrloc scan frame.png --rectified-dir out/ --overlay-dir overlays/`,
	Args:         cobra.ArbitraryArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return errors.New("no input files provided")
		}

		cfg := GetConfig()
		format := cfg.Output.Format
		if format != outputFormatJSON && format != outputFormatText {
			return fmt.Errorf("invalid output format: %s", format)
		}

		for _, dir := range []string{cfg.Output.RectifiedDir, cfg.Output.OverlayDir} {
			if dir != "" {
				if err := os.MkdirAll(dir, 0o750); err != nil {
					return fmt.Errorf("failed to create output directory: %w", err)
				}
			}
		}

		pl := pipeline.NewBuilder().
			WithStride(cfg.Scan.Stride).
			WithTolerance(cfg.Scan.Tolerance).
			WithRectify(cfg.Pipeline.Rectify).
			WithParallel(pipeline.ParallelConfig{MaxWorkers: cfg.Pipeline.Parallel.MaxWorkers}).
			Build()

		results := make([]fileResult, len(args))
		loaded := utils.BatchLoadImages(args)

		// Scan the successfully loaded images as one parallel batch.
		var images []image.Image
		var indices []int
		for i, l := range loaded {
			results[i] = fileResult{File: l.Path, Markers: []geometry.Marker[int]{}}
			if l.Err != nil {
				results[i].Error = l.Err.Error()
				continue
			}
			images = append(images, l.Img)
			indices = append(indices, i)
		}

		if len(images) > 0 {
			scans, err := pl.ScanAllParallel(cmd.Context(), images, pl.Config().Parallel)
			if err != nil {
				return fmt.Errorf("scan failed: %w", err)
			}
			for k, scan := range scans {
				i := indices[k]
				fillResult(&results[i], scan, loaded[i].Img, cfg.Output.RectifiedDir, cfg.Output.OverlayDir)
				scan.Release()
			}
		}

		return writeResults(cmd.OutOrStdout(), results, format, cfg.Output.File)
	},
}

// fillResult copies one scan outcome into its record and writes any
// requested artifact files.
func fillResult(res *fileResult, scan *pipeline.ScanResult, src image.Image, rectifiedDir, overlayDir string) {
	res.Markers = scan.Markers
	if res.Markers == nil {
		res.Markers = []geometry.Marker[int]{}
	}
	res.Corners = scan.Corners
	res.Width = scan.Width
	res.Height = scan.Height
	res.TotalTimeMs = scan.Duration.Milliseconds()

	base := strings.TrimSuffix(filepath.Base(res.File), filepath.Ext(res.File))

	if rectifiedDir != "" && scan.Rectified != nil {
		path := filepath.Join(rectifiedDir, base+"_rectified.png")
		if err := utils.SaveImage(utils.BitmapToImage(scan.Rectified), path); err != nil {
			res.Error = err.Error()
		} else {
			res.Rectified = path
		}
	}

	if overlayDir != "" && len(scan.Markers) > 0 {
		path := filepath.Join(overlayDir, base+"_overlay.png")
		if err := utils.SaveImage(utils.DrawMarkers(src, scan.Markers), path); err != nil {
			res.Error = err.Error()
		} else {
			res.Overlay = path
		}
	}
}

func writeResults(stdout io.Writer, results []fileResult, format, outputFile string) error {
	var out strings.Builder

	switch format {
	case outputFormatJSON:
		data, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode results: %w", err)
		}
		out.Write(data)
		out.WriteByte('\n')
	case outputFormatText:
		for _, r := range results {
			if r.Error != "" {
				fmt.Fprintf(&out, "%s: error: %s\n", r.File, r.Error)
				continue
			}
			fmt.Fprintf(&out, "%s: %d markers", r.File, len(r.Markers))
			if r.Corners != nil {
				fmt.Fprintf(&out, ", corners (%.1f,%.1f) (%.1f,%.1f) (%.1f,%.1f)",
					r.Corners.TopLeft.X, r.Corners.TopLeft.Y,
					r.Corners.TopRight.X, r.Corners.TopRight.Y,
					r.Corners.BotLeft.X, r.Corners.BotLeft.Y)
			}
			fmt.Fprintf(&out, " (%dms)\n", r.TotalTimeMs)
		}
	}

	if outputFile != "" {
		return os.WriteFile(outputFile, []byte(out.String()), 0o600)
	}
	_, err := io.WriteString(stdout, out.String())
	return err
}

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().StringP("format", "f", "json", "output format (json, text)")
	scanCmd.Flags().StringP("output", "o", "", "write results to file instead of stdout")
	scanCmd.Flags().String("rectified-dir", "", "directory for rectified code images")
	scanCmd.Flags().String("overlay-dir", "", "directory for marker overlay images")
	scanCmd.Flags().Int("stride", 4, "row sampling interval of the marker scan")
	scanCmd.Flags().Float64("tolerance", 0.65, "run-ratio match tolerance")
	scanCmd.Flags().Bool("rectify", true, "rectify located codes")
	scanCmd.Flags().Int("workers", 0, "parallel scan workers (0 = all CPUs)")

	_ = viper.BindPFlag("output.format", scanCmd.Flags().Lookup("format"))
	_ = viper.BindPFlag("output.file", scanCmd.Flags().Lookup("output"))
	_ = viper.BindPFlag("output.rectified_dir", scanCmd.Flags().Lookup("rectified-dir"))
	_ = viper.BindPFlag("output.overlay_dir", scanCmd.Flags().Lookup("overlay-dir"))
	_ = viper.BindPFlag("scan.stride", scanCmd.Flags().Lookup("stride"))
	_ = viper.BindPFlag("scan.tolerance", scanCmd.Flags().Lookup("tolerance"))
	_ = viper.BindPFlag("pipeline.rectify", scanCmd.Flags().Lookup("rectify"))
	_ = viper.BindPFlag("pipeline.parallel.max_workers", scanCmd.Flags().Lookup("workers"))
}
