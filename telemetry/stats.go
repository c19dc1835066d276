package telemetry

import (
	"log/slog"
	"slices"
	"time"

	"gonum.org/v1/gonum/stat"
)

// FrameStats describes one simulated frame. Engines fill the fields that
// apply to them and leave the rest zero.
type FrameStats struct {
	Frame int64
	Time  float64 // seconds since the last rebuild
	Step  time.Duration

	// Scalar engine
	Background       int
	Text             int
	Waves            int
	MeanDisplacement float64

	// Vector engine
	Kept      int
	Discarded int

	// Capped is set when particle generation stopped at the configured cap
	Capped bool
}

// WindowStats holds aggregated statistics for a window of frames.
type WindowStats struct {
	WindowStart int64   `csv:"-"`
	WindowEnd   int64   `csv:"window_end"`
	Engine      string  `csv:"engine"`
	SimTimeSec  float64 `csv:"sim_time"`
	Frames      int     `csv:"frames"`

	// Step duration distribution in milliseconds
	StepMeanMS float64 `csv:"step_mean_ms"`
	StepStdMS  float64 `csv:"step_std_ms"`
	StepP50MS  float64 `csv:"step_p50_ms"`
	StepP90MS  float64 `csv:"step_p90_ms"`
	StepMaxMS  float64 `csv:"step_max_ms"`

	// Particle counts at window end
	Background int `csv:"background"`
	Text       int `csv:"text"`

	WavesMax         int     `csv:"waves_max"`
	DisplacementMean float64 `csv:"displacement_mean"`
	DisplacementMax  float64 `csv:"displacement_max"`

	// Point counts at window end
	Kept      int `csv:"kept"`
	Discarded int `csv:"discarded"`
}

// Summary is the mean, spread and tail of a sample.
type Summary struct {
	Mean, Std, P50, P90, Max float64
}

// Summarize computes mean, sample standard deviation, empirical p50/p90 and
// max. values is sorted in place. Returns the zero Summary when empty.
func Summarize(values []float64) Summary {
	if len(values) == 0 {
		return Summary{}
	}
	slices.Sort(values)
	var s Summary
	if len(values) == 1 {
		s.Mean = values[0]
	} else {
		s.Mean, s.Std = stat.MeanStdDev(values, nil)
	}
	s.P50 = stat.Quantile(0.5, stat.Empirical, values, nil)
	s.P90 = stat.Quantile(0.9, stat.Empirical, values, nil)
	s.Max = values[len(values)-1]
	return s
}

// summarizeWindow reduces a window of frames. frames must be non-empty.
func summarizeWindow(engine string, frames []FrameStats, steps, disp []float64) WindowStats {
	first, last := frames[0], frames[len(frames)-1]
	ws := WindowStats{
		WindowStart: first.Frame,
		WindowEnd:   last.Frame,
		Engine:      engine,
		SimTimeSec:  last.Time,
		Frames:      len(frames),
		Background:  last.Background,
		Text:        last.Text,
		Kept:        last.Kept,
		Discarded:   last.Discarded,
	}

	steps = steps[:0]
	disp = disp[:0]
	for _, f := range frames {
		steps = append(steps, float64(f.Step)/float64(time.Millisecond))
		disp = append(disp, f.MeanDisplacement)
		ws.WavesMax = max(ws.WavesMax, f.Waves)
	}

	st := Summarize(steps)
	ws.StepMeanMS, ws.StepStdMS = st.Mean, st.Std
	ws.StepP50MS, ws.StepP90MS, ws.StepMaxMS = st.P50, st.P90, st.Max

	d := Summarize(disp)
	ws.DisplacementMean, ws.DisplacementMax = d.Mean, d.Max
	return ws
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("window_start", s.WindowStart),
		slog.Int64("window_end", s.WindowEnd),
		slog.String("engine", s.Engine),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("frames", s.Frames),
		slog.Float64("step_mean_ms", s.StepMeanMS),
		slog.Float64("step_std_ms", s.StepStdMS),
		slog.Float64("step_p50_ms", s.StepP50MS),
		slog.Float64("step_p90_ms", s.StepP90MS),
		slog.Float64("step_max_ms", s.StepMaxMS),
		slog.Int("background", s.Background),
		slog.Int("text", s.Text),
		slog.Int("waves_max", s.WavesMax),
		slog.Float64("displacement_mean", s.DisplacementMean),
		slog.Float64("displacement_max", s.DisplacementMax),
		slog.Int("kept", s.Kept),
		slog.Int("discarded", s.Discarded),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	attrs := []any{
		"window_end", s.WindowEnd,
		"engine", s.Engine,
		"sim_time", s.SimTimeSec,
		"step_p50_ms", s.StepP50MS,
		"step_p90_ms", s.StepP90MS,
	}
	switch s.Engine {
	case "vector":
		attrs = append(attrs, "kept", s.Kept, "discarded", s.Discarded)
	default:
		attrs = append(attrs,
			"background", s.Background,
			"text", s.Text,
			"waves_max", s.WavesMax,
			"displacement", s.DisplacementMean,
		)
	}
	slog.Info("stats", attrs...)
}
