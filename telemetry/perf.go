package telemetry

import (
	"log/slog"
	"math"
	"time"
)

// Phase names for one frame.
const (
	PhaseMask      = "mask"      // text rasterization and rebuild
	PhaseUpdate    = "update"    // wave emitter and particle relaxation
	PhaseDraw      = "draw"      // canvas or GPU submission
	PhaseTelemetry = "telemetry" // aggregation and CSV output
)

// Phases lists the frame phases in execution order.
var Phases = []string{PhaseMask, PhaseUpdate, PhaseDraw, PhaseTelemetry}

// PerfSample holds timing data for a single frame. A frame that entered the
// mask phase rebuilt its scene.
type PerfSample struct {
	StepDuration time.Duration
	Phases       map[string]time.Duration
	Rebuild      bool
}

// PerfCollector tracks performance metrics over a rolling window.
type PerfCollector struct {
	windowSize    int
	samples       []PerfSample
	writeIndex    int
	sampleCount   int
	currentPhases map[string]time.Duration
	frameStart    time.Time
	phaseStart    time.Time
	lastPhase     string

	// Wall-clock presentation timing, windowed mode only
	lastPresent     time.Time
	presentInterval time.Duration
}

// NewPerfCollector creates a new performance collector averaging over
// windowSize frames.
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 60
	}
	return &PerfCollector{
		windowSize:    windowSize,
		samples:       make([]PerfSample, windowSize),
		currentPhases: make(map[string]time.Duration),
	}
}

// StartFrame begins timing a new frame.
func (p *PerfCollector) StartFrame() {
	p.frameStart = time.Now()
	p.currentPhases = make(map[string]time.Duration)
	p.lastPhase = ""
}

// StartPhase begins timing a specific phase.
func (p *PerfCollector) StartPhase(phase string) {
	now := time.Now()
	if p.lastPhase != "" {
		p.currentPhases[p.lastPhase] += now.Sub(p.phaseStart)
	}
	p.phaseStart = now
	p.lastPhase = phase
}

// EndFrame finishes timing the current frame and records the sample.
func (p *PerfCollector) EndFrame() {
	now := time.Now()
	if p.lastPhase != "" {
		p.currentPhases[p.lastPhase] += now.Sub(p.phaseStart)
	}

	_, rebuild := p.currentPhases[PhaseMask]
	sample := PerfSample{
		StepDuration: now.Sub(p.frameStart),
		Phases:       p.currentPhases,
		Rebuild:      rebuild,
	}

	p.samples[p.writeIndex] = sample
	p.writeIndex = (p.writeIndex + 1) % p.windowSize
	if p.sampleCount < p.windowSize {
		p.sampleCount++
	}
}

// RecordPresent records wall-clock time between presented frames.
func (p *PerfCollector) RecordPresent() {
	now := time.Now()
	if !p.lastPresent.IsZero() {
		p.presentInterval = now.Sub(p.lastPresent)
	}
	p.lastPresent = now
}

// PerfStats holds aggregated performance statistics.
type PerfStats struct {
	// Step timing
	AvgStepDuration time.Duration
	MinStepDuration time.Duration
	MaxStepDuration time.Duration

	// Phase breakdown (average durations)
	PhaseAvg map[string]time.Duration

	// Phase percentages of total step time
	PhasePct map[string]float64

	// Throughput
	StepsPerSecond float64

	// Rebuild cost: mask phase of rebuild frames, and the step time of the
	// frames that did not rebuild
	RebuildFrames int
	AvgRebuild    time.Duration
	MaxRebuild    time.Duration
	SteadyAvgStep time.Duration

	// Wall-clock frame timing, windowed mode only
	PresentInterval time.Duration
	FPS             float64
}

// Stats computes aggregated statistics over the current window.
func (p *PerfCollector) Stats() PerfStats {
	var fps float64
	if p.presentInterval > 0 {
		fps = float64(time.Second) / float64(p.presentInterval)
	}

	if p.sampleCount == 0 {
		return PerfStats{
			PhaseAvg:        make(map[string]time.Duration),
			PhasePct:        make(map[string]float64),
			PresentInterval: p.presentInterval,
			FPS:             fps,
		}
	}

	var totalStep time.Duration
	var minStep, maxStep time.Duration
	var rebuildSum, maxRebuild, steadySum time.Duration
	rebuilds := 0
	phaseSum := make(map[string]time.Duration)

	for i := 0; i < p.sampleCount; i++ {
		s := p.samples[i]
		totalStep += s.StepDuration

		if i == 0 || s.StepDuration < minStep {
			minStep = s.StepDuration
		}
		if s.StepDuration > maxStep {
			maxStep = s.StepDuration
		}

		for phase, dur := range s.Phases {
			phaseSum[phase] += dur
		}

		if s.Rebuild {
			mask := s.Phases[PhaseMask]
			rebuilds++
			rebuildSum += mask
			maxRebuild = max(maxRebuild, mask)
		} else {
			steadySum += s.StepDuration
		}
	}

	avgStep := totalStep / time.Duration(p.sampleCount)

	phaseAvg := make(map[string]time.Duration)
	phasePct := make(map[string]float64)
	for phase, sum := range phaseSum {
		phaseAvg[phase] = sum / time.Duration(p.sampleCount)
		if avgStep > 0 {
			phasePct[phase] = float64(phaseAvg[phase]) / float64(avgStep) * 100
		}
	}

	var stepsPerSec float64
	if avgStep > 0 {
		stepsPerSec = float64(time.Second) / float64(avgStep)
	}

	var avgRebuild, steadyAvg time.Duration
	if rebuilds > 0 {
		avgRebuild = rebuildSum / time.Duration(rebuilds)
	}
	if steady := p.sampleCount - rebuilds; steady > 0 {
		steadyAvg = steadySum / time.Duration(steady)
	}

	return PerfStats{
		AvgStepDuration: avgStep,
		MinStepDuration: minStep,
		MaxStepDuration: maxStep,
		PhaseAvg:        phaseAvg,
		PhasePct:        phasePct,
		StepsPerSecond:  stepsPerSec,
		RebuildFrames:   rebuilds,
		AvgRebuild:      avgRebuild,
		MaxRebuild:      maxRebuild,
		SteadyAvgStep:   steadyAvg,
		PresentInterval: p.presentInterval,
		FPS:             fps,
	}
}

// LogStats logs performance statistics.
func (s PerfStats) LogStats() {
	attrs := []any{
		"avg_step_us", s.AvgStepDuration.Microseconds(),
		"min_step_us", s.MinStepDuration.Microseconds(),
		"max_step_us", s.MaxStepDuration.Microseconds(),
		"steps_per_sec", int(s.StepsPerSecond),
	}

	if s.FPS > 0 {
		attrs = append(attrs, "fps", int(s.FPS))
	}
	if s.RebuildFrames > 0 {
		attrs = append(attrs,
			"rebuilds", s.RebuildFrames,
			"avg_rebuild_us", s.AvgRebuild.Microseconds(),
			"max_rebuild_us", s.MaxRebuild.Microseconds(),
			"steady_step_us", s.SteadyAvgStep.Microseconds(),
		)
	}

	for _, phase := range Phases {
		if pct, ok := s.PhasePct[phase]; ok && pct > 0.1 {
			attrs = append(attrs, phase+"_pct", math.Round(pct*10)/10)
		}
	}

	slog.Info("perf", attrs...)
}

// LogValue implements slog.LogValuer for structured logging.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int64("avg_step_us", s.AvgStepDuration.Microseconds()),
		slog.Int64("min_step_us", s.MinStepDuration.Microseconds()),
		slog.Int64("max_step_us", s.MaxStepDuration.Microseconds()),
		slog.Float64("steps_per_sec", s.StepsPerSecond),
	}

	if s.FPS > 0 {
		attrs = append(attrs, slog.Float64("fps", s.FPS))
	}
	if s.RebuildFrames > 0 {
		attrs = append(attrs,
			slog.Int("rebuilds", s.RebuildFrames),
			slog.Int64("max_rebuild_us", s.MaxRebuild.Microseconds()),
		)
	}

	for phase, pct := range s.PhasePct {
		attrs = append(attrs, slog.Float64(phase+"_pct", pct))
	}

	return slog.GroupValue(attrs...)
}

// PerfStatsCSV is a flat struct for CSV export of performance stats.
type PerfStatsCSV struct {
	WindowEnd    int64   `csv:"window_end"`
	AvgStepUS    int64   `csv:"avg_step_us"`
	MinStepUS    int64   `csv:"min_step_us"`
	MaxStepUS    int64   `csv:"max_step_us"`
	StepsPerSec  float64 `csv:"steps_per_sec"`
	FPS          float64 `csv:"fps"`
	Rebuilds     int     `csv:"rebuilds"`
	AvgRebuildUS int64   `csv:"avg_rebuild_us"`
	MaxRebuildUS int64   `csv:"max_rebuild_us"`
	SteadyStepUS int64   `csv:"steady_step_us"`
	MaskPct      float64 `csv:"mask_pct"`
	UpdatePct    float64 `csv:"update_pct"`
	DrawPct      float64 `csv:"draw_pct"`
	TelemetryPct float64 `csv:"telemetry_pct"`
}

// ToCSV converts PerfStats to a flat CSV-friendly struct.
func (s PerfStats) ToCSV(windowEnd int64) PerfStatsCSV {
	return PerfStatsCSV{
		WindowEnd:    windowEnd,
		AvgStepUS:    s.AvgStepDuration.Microseconds(),
		MinStepUS:    s.MinStepDuration.Microseconds(),
		MaxStepUS:    s.MaxStepDuration.Microseconds(),
		StepsPerSec:  s.StepsPerSecond,
		FPS:          s.FPS,
		Rebuilds:     s.RebuildFrames,
		AvgRebuildUS: s.AvgRebuild.Microseconds(),
		MaxRebuildUS: s.MaxRebuild.Microseconds(),
		SteadyStepUS: s.SteadyAvgStep.Microseconds(),
		MaskPct:      s.PhasePct[PhaseMask],
		UpdatePct:    s.PhasePct[PhaseUpdate],
		DrawPct:      s.PhasePct[PhaseDraw],
		TelemetryPct: s.PhasePct[PhaseTelemetry],
	}
}
