package binarize

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestThreshold_TerminatesInRange verifies the mean-split iteration
// converges for arbitrary histograms and stays within the luma range.
func TestThreshold_TerminatesInRange(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("threshold never exceeds the brightest occupied bucket", prop.ForAll(
		func(counts []int) bool {
			var histo Histogram
			for i, c := range counts {
				if c < 0 {
					c = -c
				}
				histo[i%256] += c % 100000
			}

			// Both running means are averages over occupied buckets with
			// zero-sum seeds, so neither can exceed the brightest value.
			maxV := 0
			for v, c := range histo {
				if c > 0 {
					maxV = v
				}
			}

			return int(histo.Threshold()) <= maxV
		},
		gen.SliceOf(gen.Int()),
	))

	properties.Property("well-separated spikes split between the spikes", prop.ForAll(
		func(dark, lite, weight int) bool {
			var histo Histogram
			histo[dark] = weight
			histo[lite] = weight

			thresh := int(histo.Threshold())
			return thresh > dark && thresh < lite
		},
		gen.IntRange(0, 100),
		gen.IntRange(156, 255),
		gen.IntRange(100, 5000),
	))

	properties.TestingRun(t)
}
