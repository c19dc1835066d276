// Package telemetry provides frame timing, windowed frame statistics and
// CSV output for experiment runs.
package telemetry

// Aggregator accumulates FrameStats and produces a WindowStats every
// window frames.
type Aggregator struct {
	engine string
	window int
	frames []FrameStats

	// Scratch buffers reused across windows
	steps []float64
	disp  []float64
}

// NewAggregator creates an aggregator for the named engine. A window below
// one frame is raised to one.
func NewAggregator(engine string, window int) *Aggregator {
	if window < 1 {
		window = 1
	}
	return &Aggregator{
		engine: engine,
		window: window,
		frames: make([]FrameStats, 0, window),
		steps:  make([]float64, 0, window),
		disp:   make([]float64, 0, window),
	}
}

// Add records a frame. When the window fills it returns the window's stats
// and starts a new window.
func (a *Aggregator) Add(fs FrameStats) (WindowStats, bool) {
	a.frames = append(a.frames, fs)
	if len(a.frames) < a.window {
		return WindowStats{}, false
	}
	return a.Flush()
}

// Flush summarizes whatever frames are pending, even a partial window.
// Reports false when nothing is pending.
func (a *Aggregator) Flush() (WindowStats, bool) {
	if len(a.frames) == 0 {
		return WindowStats{}, false
	}
	ws := summarizeWindow(a.engine, a.frames, a.steps, a.disp)
	a.frames = a.frames[:0]
	return ws, true
}

// Reset drops pending frames, e.g. after a rebuild restarts the frame count.
func (a *Aggregator) Reset() {
	a.frames = a.frames[:0]
}

// Pending returns the number of frames in the current window.
func (a *Aggregator) Pending() int {
	return len(a.frames)
}

// Window returns the number of frames per window.
func (a *Aggregator) Window() int {
	return a.window
}
