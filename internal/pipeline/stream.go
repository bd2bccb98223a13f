package pipeline

import "image"

// Stream is the scan-worker loop of a capture/scan/consume arrangement: it
// takes owned frames from the input channel, scans each synchronously, and
// hands the results onward. It returns when the input channel closes, and
// closes the results channel on the way out. Frame ownership transfers
// completely on send, so no locking is needed anywhere in the loop.
func (p *Pipeline) Stream(frames <-chan image.Image, results chan<- *ScanResult) {
	defer close(results)
	for img := range frames {
		results <- p.Scan(img)
	}
}

// SubmitEvery forwards every nth frame from src to dst and drops the rest.
// It is the capture-side throttle that keeps a scan worker from falling
// behind: scanning cost grows with frame size and marker count, so the
// producer submits only a fraction of what it captures. dst is closed when
// src closes.
func SubmitEvery(n int, src <-chan image.Image, dst chan<- image.Image) {
	defer close(dst)
	if n < 1 {
		n = 1
	}
	i := 0
	for img := range src {
		if i%n == 0 {
			dst <- img
		}
		i++
	}
}
