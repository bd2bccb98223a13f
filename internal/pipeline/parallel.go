package pipeline

import (
	"context"
	"errors"
	"image"
	"runtime"
	"sync"
)

// ParallelConfig holds configuration for batch scanning across workers.
type ParallelConfig struct {
	// MaxWorkers is the number of parallel workers (0 = runtime.NumCPU()).
	MaxWorkers int `mapstructure:"max_workers" yaml:"max_workers" json:"maxWorkers"`
}

// DefaultParallelConfig returns sensible defaults for parallel scanning.
func DefaultParallelConfig() ParallelConfig {
	return ParallelConfig{MaxWorkers: runtime.NumCPU()}
}

// frameJob represents a single frame to scan.
type frameJob struct {
	index int
	image image.Image
}

// frameResult represents the result of scanning a single frame.
type frameResult struct {
	index  int
	result *ScanResult
}

// ScanAllParallel scans multiple images using a worker pool and returns
// results in input order. Each worker gets its own pipeline since scanner
// scratch state must not be shared.
func (p *Pipeline) ScanAllParallel(ctx context.Context, images []image.Image, cfg ParallelConfig) ([]*ScanResult, error) {
	if len(images) == 0 {
		return nil, errors.New("no images provided")
	}
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = runtime.NumCPU()
	}

	// Sequential fallback for trivial batches.
	if len(images) == 1 || cfg.MaxWorkers == 1 {
		out := make([]*ScanResult, len(images))
		for i, img := range images {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			out[i] = p.Scan(img)
		}
		return out, nil
	}

	jobs := make(chan frameJob, len(images))
	results := make(chan frameResult, len(images))

	var wg sync.WaitGroup
	for range cfg.MaxWorkers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			worker := New(p.cfg)
			for job := range jobs {
				select {
				case <-ctx.Done():
					return
				default:
				}
				results <- frameResult{index: job.index, result: worker.Scan(job.image)}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i, img := range images {
			select {
			case jobs <- frameJob{index: i, image: img}:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	out := make([]*ScanResult, len(images))
	for r := range results {
		out[r.index] = r.result
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
