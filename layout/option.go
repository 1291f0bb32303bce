package layout

import "math"

// Option applies a configuration option to params.
type Option func(params) params

// apply applies multiple options to a params.
func apply(p params, opts ...Option) params {
	for _, opt := range opts {
		p = opt(p)
	}

	return p
}

// Default values for the tunable search parameters.
const (
	DefaultMaxDiff       = 4          // largest |nx-ny| a grid may have
	DefaultQueue         = "normalsr" // queue assumed for core conversions
	DefaultAtmSteps      = 100        // samples across the atm core range
	DefaultMinRatio      = 0.75       // smallest mom/atm core ratio searched
	DefaultMaxRatio      = 1.25       // largest mom/atm core ratio searched
	DefaultMaxWastedFrac = 0.01       // idle fraction of the node budget
	DefaultBlocksPerNode = 8          // allocation blocks per OM3 node
	DefaultBaselinePool  = "shared"   // pool OM3 ratios are measured against
	DefaultEpsilon       = 1e-6       // slack for ratio comparisons
)

// params collects the knobs shared by the grid search and the layout
// generators. Each entry point seeds its own defaults before applying
// caller options, so the zero value is never used directly.
type params struct {
	// grid search
	maxDiff   int
	evenNx    bool
	wideGrids bool

	// ESM1.6 generator
	queue         string
	tol           float64 // NaN when unset
	ratio         [2]float64
	atmSteps      int
	atmAtLeastMom bool
	wastedFrac    float64
	slackToIce    bool
	startBlock    int

	// OM3 generator
	blocksPerNode int
	baseline      string
	eps           float64
	minBlocks     map[string]int
	poolOrder     []string
	maxRatios     []map[string]float64
	minRatios     []map[string]float64
	nodeBlocks    []int
}

func esmDefaults() params {
	return params{
		maxDiff:    DefaultMaxDiff,
		wideGrids:  true,
		queue:      DefaultQueue,
		tol:        math.NaN(),
		ratio:      [2]float64{DefaultMinRatio, DefaultMaxRatio},
		atmSteps:   DefaultAtmSteps,
		wastedFrac: DefaultMaxWastedFrac,
		startBlock: 1,
	}
}

func om3Defaults() params {
	return params{
		blocksPerNode: DefaultBlocksPerNode,
		baseline:      DefaultBaselinePool,
		eps:           DefaultEpsilon,
	}
}

// WithMaxDiff returns a functional option that bounds the absolute
// difference between a grid's nx and ny.
func WithMaxDiff(n int) Option {
	return func(p params) params {
		p.maxDiff = n

		return p
	}
}

// WithEvenNx returns a functional option that controls whether only
// grids with an even nx are considered.
func WithEvenNx(enable bool) Option {
	return func(p params) params {
		p.evenNx = enable

		return p
	}
}

// WithWideGrids returns a functional option that controls whether only
// grids with nx >= ny are considered.
func WithWideGrids(enable bool) Option {
	return func(p params) params {
		p.wideGrids = enable

		return p
	}
}

// WithQueue returns a functional option that selects the scheduler
// queue used to convert node counts into cores.
func WithQueue(name string) Option {
	return func(p params) params {
		p.queue = name

		return p
	}
}

// WithTolerance returns a functional option that pins the mom/atm core
// ratio to within the given fraction of the released control split.
// A tolerance of zero admits only the control ratio itself. When no
// tolerance is set, the bounds from [WithRatioRange] apply instead.
func WithTolerance(tol float64) Option {
	return func(p params) params {
		p.tol = tol

		return p
	}
}

// WithRatioRange returns a functional option that bounds the ratio of
// mom cores over atm cores in generated splits. It is ignored when a
// tolerance is set with [WithTolerance].
func WithRatioRange(lo, hi float64) Option {
	return func(p params) params {
		p.ratio = [2]float64{lo, hi}

		return p
	}
}

// WithAtmSteps returns a functional option that sets how many candidate
// atm core counts are sampled between the smallest and largest.
func WithAtmSteps(n int) Option {
	return func(p params) params {
		p.atmSteps = n

		return p
	}
}

// WithAtmAtLeastMom returns a functional option that controls whether
// splits giving mom more cores than atm are rejected.
func WithAtmAtLeastMom(enable bool) Option {
	return func(p params) params {
		p.atmAtLeastMom = enable

		return p
	}
}

// WithMaxWastedFrac returns a functional option that sets the fraction
// of the node budget a split may leave idle.
func WithMaxWastedFrac(frac float64) Option {
	return func(p params) params {
		p.wastedFrac = frac

		return p
	}
}

// WithSlackToIce returns a functional option that controls whether
// cores a split leaves idle are granted to the ice component, so every
// generated layout occupies the full node budget.
func WithSlackToIce(enable bool) Option {
	return func(p params) params {
		p.slackToIce = enable

		return p
	}
}

// WithStartBlock returns a functional option that sets the sequence
// number of the first emitted perturbation block.
func WithStartBlock(n int) Option {
	return func(p params) params {
		p.startBlock = n

		return p
	}
}

// WithBlocksPerNode returns a functional option that sets how many
// equal allocation blocks one node divides into.
func WithBlocksPerNode(n int) Option {
	return func(p params) params {
		p.blocksPerNode = n

		return p
	}
}

// WithBaselinePool returns a functional option that names the pool the
// ratio constraints of the other pools are measured against.
func WithBaselinePool(name string) Option {
	return func(p params) params {
		p.baseline = name

		return p
	}
}

// WithEpsilon returns a functional option that sets the slack used
// when comparing block ratios against their constraints.
func WithEpsilon(eps float64) Option {
	return func(p params) params {
		p.eps = eps

		return p
	}
}

// WithMinBlocks returns a functional option that sets the minimum
// number of blocks each named pool must receive. Pools not named
// require one block.
func WithMinBlocks(blocks map[string]int) Option {
	return func(p params) params {
		p.minBlocks = blocks

		return p
	}
}

// WithPoolOrder returns a functional option that fixes the order pools
// are assigned processor ranges in. The order must cover every pool in
// use.
func WithPoolOrder(pools ...string) Option {
	return func(p params) params {
		p.poolOrder = pools

		return p
	}
}

// WithMaxRatios returns a functional option that caps each pool's
// block count as a multiple of the baseline pool's. A single map
// applies to every node count; otherwise one map per node count.
func WithMaxRatios(ratios ...map[string]float64) Option {
	return func(p params) params {
		p.maxRatios = ratios

		return p
	}
}

// WithMinRatios returns a functional option that sets the floor of
// each pool's block count as a multiple of the baseline pool's. A
// single map applies to every node count; otherwise one map per node
// count.
func WithMinRatios(ratios ...map[string]float64) Option {
	return func(p params) params {
		p.minRatios = ratios

		return p
	}
}

// WithNodeBlocks returns a functional option that overrides the blocks
// per node. A single value applies to every node count; otherwise one
// value per node count.
func WithNodeBlocks(blocks ...int) Option {
	return func(p params) params {
		p.nodeBlocks = blocks

		return p
	}
}
