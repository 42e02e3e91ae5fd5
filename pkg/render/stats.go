package render

import "sync/atomic"

// Counters are the shared render-progress counters workers bump with
// atomic increments.
type Counters struct {
	SamplesTaken  atomic.Int64
	TilesRendered atomic.Int64

	// NumericalFailures counts dropped NaN/Inf samples; surfaced as a
	// statistic, never fatal.
	NumericalFailures atomic.Int64
}

// RenderStats is the per-render summary, including the
// numerical-failure counter and the adaptive-sampling figures.
type RenderStats struct {
	TotalPixels    int
	TotalSamples   int64
	AverageSamples float64
	MinSamples     int
	MaxSamplesUsed int

	PassesRun         int
	ConvergedPixels   int
	NumericalFailures int64
	Cancelled         bool
}

// snapshotStats folds the live counters and the film into a final stats value.
func snapshotStats(film *Film, counters *Counters, passes int, cancelled bool, threshold float64) RenderStats {
	stats := RenderStats{
		TotalPixels:       film.Width * film.Height,
		TotalSamples:      counters.SamplesTaken.Load(),
		MinSamples:        int(^uint(0) >> 1),
		PassesRun:         passes,
		NumericalFailures: counters.NumericalFailures.Load(),
		Cancelled:         cancelled,
	}
	for y := 0; y < film.Height; y++ {
		for x := 0; x < film.Width; x++ {
			p := film.Pixel(x, y)
			if p.SampleCount < stats.MinSamples {
				stats.MinSamples = p.SampleCount
			}
			if p.SampleCount > stats.MaxSamplesUsed {
				stats.MaxSamplesUsed = p.SampleCount
			}
			if p.Converged || p.Variance() <= threshold {
				stats.ConvergedPixels++
			}
		}
	}
	if stats.TotalPixels > 0 {
		stats.AverageSamples = float64(stats.TotalSamples) / float64(stats.TotalPixels)
	}
	return stats
}
