package galaxy

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-galaxy/engine/sim"
)

// DefaultCensusChunk is the number of particles one census task generates.
const DefaultCensusChunk = 65536

// CensusReport summarises a CPU generation of every particle in a parameter set.
type CensusReport struct {
	Total       uint64
	Stars       uint64
	Dust        uint64
	ByArchetype [archetypeCount]uint64
	Visible     uint64
	Elapsed     time.Duration
}

// Share returns the fraction of dust particles drawn from archetype a.
func (r *CensusReport) Share(a Archetype) float64 {
	if r.Dust == 0 || a == ArchetypeBright {
		return 0
	}
	return float64(r.ByArchetype[a]) / float64(r.Dust)
}

func (r *CensusReport) add(o *CensusReport) {
	r.Total += o.Total
	r.Stars += o.Stars
	r.Dust += o.Dust
	r.Visible += o.Visible
	for i := range r.ByArchetype {
		r.ByArchetype[i] += o.ByArchetype[i]
	}
}

// CensusOptions configures a Census run.
type CensusOptions struct {
	// Workers is the worker pool size. Zero uses GOMAXPROCS.
	Workers int
	// Chunk is the number of particles per task. Zero uses DefaultCensusChunk.
	Chunk uint32
	// View enables the visibility count when non-nil.
	View *View
	// Time is the simulated time, in years, positions are evaluated at.
	Time float64
}

// Census generates every particle of params on the CPU in parallel chunks and counts kinds,
// archetypes and, when a view is given, survivors of the reference culler.
//
// Parameters:
//   - ctx: cancels the census between chunks
//   - params: the simulation parameters
//   - opts: pool sizing and the optional view
//
// Returns:
//   - CensusReport: the aggregated counts
//   - error: ctx.Err() if the census was cancelled
func Census(ctx context.Context, params sim.Params, opts CensusOptions) (CensusReport, error) {
	start := time.Now()
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	chunk := opts.Chunk
	if chunk == 0 {
		chunk = DefaultCensusChunk
	}
	total := params.TotalParticles
	chunks := int((uint64(total) + uint64(chunk) - 1) / uint64(chunk))

	pool := worker.NewDynamicWorkerPool(workers, chunks+1, 5*time.Second)
	defer pool.Stop()

	partials := make([]CensusReport, chunks)
	var wg sync.WaitGroup
	for c := range chunks {
		first := uint32(c) * chunk
		last := min(first+chunk, total)
		wg.Add(1)
		pool.SubmitTask(worker.Task{
			ID:      c,
			Payload: first,
			Do: func() (any, error) {
				defer wg.Done()
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				censusChunk(&partials[c], first, last, &params, &opts)
				return nil, nil
			},
		})
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return CensusReport{}, err
	}
	var out CensusReport
	for i := range partials {
		out.add(&partials[i])
	}
	out.Elapsed = time.Since(start)
	return out, nil
}

func censusChunk(r *CensusReport, first, last uint32, params *sim.Params, opts *CensusOptions) {
	for i := first; i < last; i++ {
		p := Generate(i, params)
		r.Total++
		r.ByArchetype[p.Archetype]++
		if p.Kind == KindStar {
			r.Stars++
		} else {
			r.Dust++
		}
		if opts.View != nil && Visible(Position(&p, params, opts.Time), Footprint(&p, params), opts.View) {
			r.Visible++
		}
	}
}

// EstimateBytes returns the GPU memory the particle-count dependent buffers need: the particle
// buffer, the visible-index buffer, the visible counter and the indirect arguments.
func EstimateBytes(total uint32) uint64 {
	n := uint64(total)
	return n*ParticleStride + n*4 + 4 + DrawIndirectArgsSize
}
