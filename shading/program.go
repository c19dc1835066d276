package shading

import (
	"runtime"
	"sync"
)

// parallelThreshold is the minimum grid size to fan out to workers.
const parallelThreshold = 4096

// Sample is the combined vertex and fragment result for one grid point.
type Sample struct {
	VertexOut
	Alpha float32
	Keep  bool
}

type workChunk struct {
	start, end int
}

// Program evaluates both shader stages over a grid. Workers write disjoint
// ranges of the output slice, so no locking is needed beyond the dispatch.
type Program struct {
	Uniforms Uniforms

	mask  MaskSampler
	noise NoiseSource

	grid *Grid
	out  []Sample

	numWorkers int
	workChan   chan workChunk
	doneChan   chan struct{}
	stopChan   chan struct{}
	wg         sync.WaitGroup
	running    bool
}

// NewProgram creates a program. workers <= 0 uses GOMAXPROCS.
func NewProgram(u Uniforms, mask MaskSampler, noise NoiseSource, workers int) *Program {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Program{
		Uniforms:   u,
		mask:       mask,
		noise:      noise,
		numWorkers: workers,
	}
}

// SetMask swaps the glyph mask. Must not be called during Evaluate.
func (p *Program) SetMask(mask MaskSampler) {
	p.mask = mask
}

func (p *Program) startWorkers() {
	if p.running {
		return
	}
	p.workChan = make(chan workChunk, p.numWorkers)
	p.doneChan = make(chan struct{}, p.numWorkers)
	p.stopChan = make(chan struct{})
	p.running = true

	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

func (p *Program) worker() {
	defer p.wg.Done()
	for {
		select {
		case <-p.stopChan:
			return
		case chunk, ok := <-p.workChan:
			if !ok {
				return
			}
			p.evalRange(chunk.start, chunk.end)
			p.doneChan <- struct{}{}
		}
	}
}

// Close stops the worker goroutines. The program can still evaluate
// afterwards; workers restart on demand.
func (p *Program) Close() {
	if !p.running {
		return
	}
	close(p.stopChan)
	p.wg.Wait()
	close(p.workChan)
	close(p.doneChan)
	p.running = false
}

func (p *Program) evalRange(start, end int) {
	u := &p.Uniforms
	for i := start; i < end; i++ {
		in := p.grid.Vertices[i]
		v := Vertex(in, u, p.mask, p.noise)
		alpha, keep := Fragment(FragmentIn{U: in.U, V: in.V, D: v.D, N: v.N}, u, p.mask)
		p.out[i] = Sample{VertexOut: v, Alpha: alpha, Keep: keep}
	}
}

// Evaluate runs both stages for every grid point and returns the results in
// grid order, reusing out when it is large enough.
func (p *Program) Evaluate(grid *Grid, out []Sample) []Sample {
	n := grid.Len()
	if cap(out) < n {
		out = make([]Sample, n)
	}
	out = out[:n]
	if n == 0 {
		return out
	}

	p.grid = grid
	p.out = out
	defer func() {
		p.grid = nil
		p.out = nil
	}()

	if n < parallelThreshold || p.numWorkers == 1 {
		p.evalRange(0, n)
		return out
	}

	p.startWorkers()
	chunkSize := (n + p.numWorkers - 1) / p.numWorkers
	dispatched := 0
	for w := 0; w < p.numWorkers; w++ {
		start := w * chunkSize
		end := min(start+chunkSize, n)
		if start >= end {
			continue
		}
		p.workChan <- workChunk{start: start, end: end}
		dispatched++
	}
	for i := 0; i < dispatched; i++ {
		<-p.doneChan
	}
	return out
}
