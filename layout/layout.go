// Package layout solves processor decompositions for coupled climate
// model runs. It converts scheduler node counts into core budgets,
// enumerates near-square (nx, ny) grids for a core budget, and builds
// complete per-component core splits for the ESM1.6 and OM3 model
// configurations. Generated layouts can be narrowed with [Filter] and
// rendered as experiment-generator input.
package layout

import (
	"log/slog"
	"math"

	"github.com/ardnew/confit/config"
)

// Predefined errors (sentinel values).
var (
	ErrQueue      = config.NewError("unknown queue")
	ErrConstraint = config.NewError("invalid layout constraint")
	ErrNoLayouts  = config.NewError("no layouts to emit")
	ErrPredicate  = config.NewError("invalid layout predicate")
)

// Queue is one scheduler queue's node shape on gadi.
type Queue struct {
	Name  string
	Cores int // cores per node
	MemGB int // memory per node in GB
}

// queues maps queue names to node shapes.
var queues = map[string]Queue{
	"normalsr":  {Name: "normalsr", Cores: 104, MemGB: 512}, // Sapphire Rapids
	"expresssr": {Name: "expresssr", Cores: 104, MemGB: 512},
	"normal":    {Name: "normal", Cores: 48, MemGB: 192}, // Cascade Lake
	"express":   {Name: "express", Cores: 48, MemGB: 192},
	"normalbw":  {Name: "normalbw", Cores: 28, MemGB: 128}, // Broadwell
	"expressbw": {Name: "expressbw", Cores: 28, MemGB: 128},
	"normalsl":  {Name: "normalsl", Cores: 32, MemGB: 192}, // Skylake
}

// LookupQueue returns the node shape of a named queue.
func LookupQueue(name string) (Queue, error) {
	q, ok := queues[name]
	if !ok {
		return Queue{}, ErrQueue.With(slog.String("queue", name))
	}

	return q, nil
}

// CoresForQueue returns the number of cores on one node of a queue.
func CoresForQueue(name string) (int, error) {
	q, err := LookupQueue(name)
	if err != nil {
		return 0, err
	}

	return q.Cores, nil
}

// NodesToCores converts a node count into whole cores. Fractional node
// counts are allowed and the result truncates toward zero.
func NodesToCores(nodes float64, queue string) (int, error) {
	q, err := LookupQueue(queue)
	if err != nil {
		return 0, err
	}

	if nodes <= 0 || math.IsNaN(nodes) || math.IsInf(nodes, 0) {
		return 0, ErrConstraint.With(slog.Float64("nodes", nodes))
	}

	return int(nodes * float64(q.Cores)), nil
}

// Grid is a processor decomposition with nx columns and ny rows.
type Grid struct {
	Nx, Ny int
}

// Cores returns the number of cores the grid occupies.
func (g Grid) Cores() int { return g.Nx * g.Ny }

// Layout is one solved core split across the coupled components.
type Layout struct {
	Used int // cores in use across all components
	Atm  Grid
	Mom  Grid
	Ice  int // ice cores, always a 1-wide column
}

// FindGrids returns candidate decompositions occupying at most maxCores
// cores. The search walks nx outward from the square root of maxCores
// and pairs it with ny = maxCores/nx, so a grid may occupy fewer cores
// than maxCores when the budget has no near-square factoring. Grids
// whose dimensions differ by more than [WithMaxDiff] are dropped;
// [WithEvenNx] and [WithWideGrids] restrict the shape further.
func FindGrids(maxCores int, opts ...Option) ([]Grid, error) {
	p := apply(params{maxDiff: DefaultMaxDiff}, opts...)

	if maxCores < 1 {
		return nil, ErrConstraint.With(slog.Int("max_cores", maxCores))
	}

	if p.maxDiff < 0 {
		return nil, ErrConstraint.With(slog.Int("max_diff", p.maxDiff))
	}

	if maxCores < 2 && p.evenNx {
		return nil, nil
	}

	best := int(math.Sqrt(float64(maxCores)))

	start := max(1, best-p.maxDiff)
	if p.wideGrids {
		start = best
	}

	var grids []Grid

	for nx := start; nx <= best+p.maxDiff; nx++ {
		if p.evenNx && nx%2 != 0 {
			continue
		}

		ny := maxCores / nx
		if ny < 1 || abs(nx-ny) > p.maxDiff {
			continue
		}

		if p.wideGrids && nx < ny {
			continue
		}

		grids = append(grids, Grid{Nx: nx, Ny: ny})
	}

	return grids, nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}

	return n
}
