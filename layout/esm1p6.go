package layout

import (
	"cmp"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strings"
)

// Control configuration released with the ESM1.6 preindustrial setup.
// Searches with a control tolerance are measured against this split of
// 4 normalsr nodes.
const (
	ctrlNodes = 4
	ctrlQueue = "normalsr"
	ctrlIce   = 12
)

var (
	ctrlAtm = Grid{Nx: 16, Ny: 13}
	ctrlMom = Grid{Nx: 14, Ny: 14}
)

// minSplitCores is the smallest budget a split can occupy. The
// atmosphere needs an even nx, so two cores at least, and the ocean
// and ice one core each.
const minSplitCores = 4

// splitSpec bounds one search for atmosphere and ocean decompositions
// sharing a fixed pool of cores.
type splitSpec struct {
	minAtm   int
	maxAtm   int
	atmDelta int

	poolCores int // cores shared by atmosphere and ocean
	iceCores  int
	minUsed   int // smallest total a split may occupy

	maxDiff       int
	ratio         [2]float64 // ocean cores over atmosphere cores
	wideAtm       bool
	atmAtLeastMom bool
}

func (s splitSpec) validate() error {
	if s.minAtm < 2 || s.maxAtm < 2 || s.minAtm > s.maxAtm {
		return ErrConstraint.With(
			slog.Int("min_atm", s.minAtm),
			slog.Int("max_atm", s.maxAtm),
		)
	}

	if s.atmDelta < 1 {
		return ErrConstraint.With(slog.Int("atm_delta", s.atmDelta))
	}

	if s.poolCores < 3 {
		return ErrConstraint.With(slog.Int("pool_cores", s.poolCores))
	}

	if s.iceCores < 1 {
		return ErrConstraint.With(slog.Int("ice_cores", s.iceCores))
	}

	if s.minUsed > s.poolCores+s.iceCores {
		return ErrConstraint.With(
			slog.Int("min_used", s.minUsed),
			slog.Int("budget", s.poolCores+s.iceCores),
		)
	}

	if s.ratio[0] <= 0 || s.ratio[1] <= 0 || s.ratio[0] > s.ratio[1] {
		return ErrConstraint.With(
			slog.Float64("min_ratio", s.ratio[0]),
			slog.Float64("max_ratio", s.ratio[1]),
		)
	}

	return nil
}

// splitCores enumerates every atmosphere and ocean decomposition that
// satisfies s. Candidate atmosphere core counts step from
// minAtm to maxAtm, the ocean takes whatever the pool leaves over, and
// the ratio bounds prune both sides of each split. The ratio bounds
// apply to the nominal atmosphere count, not the grid product, so a
// grid that undershoots its nominal count still anchors the range it
// was found for.
func splitCores(s splitSpec) ([]Layout, error) {
	if err := s.validate(); err != nil {
		return nil, err
	}

	var layouts []Layout

	for atmCores := s.minAtm; atmCores <= s.maxAtm; atmCores += s.atmDelta {
		atmGrids, err := FindGrids(atmCores,
			WithMaxDiff(s.maxDiff),
			WithEvenNx(true),
			WithWideGrids(s.wideAtm),
		)
		if err != nil {
			return nil, err
		}

		minMom := int(float64(atmCores) * s.ratio[0])
		maxMom := int(float64(atmCores) * s.ratio[1])

		for _, atm := range atmGrids {
			momCores := s.poolCores - atm.Cores()
			if momCores < 1 || momCores < minMom || momCores > maxMom {
				continue
			}

			momGrids, err := FindGrids(momCores, WithMaxDiff(s.maxDiff))
			if err != nil {
				return nil, err
			}

			for _, mom := range momGrids {
				if mom.Cores() < minMom || mom.Cores() > maxMom {
					continue
				}

				if s.atmAtLeastMom && mom.Cores() > atm.Cores() {
					continue
				}

				used := atm.Cores() + mom.Cores() + s.iceCores
				if used < s.minUsed {
					continue
				}

				layouts = append(layouts, Layout{
					Used: used,
					Atm:  atm,
					Mom:  mom,
					Ice:  s.iceCores,
				})
			}
		}
	}

	return layouts, nil
}

// ESM1p6Layouts proposes core layouts for the ESM1.6 coupled model at
// each of the given node counts. Results are grouped per node count in
// input order, deduplicated, and sorted by cores used descending and
// then by how square the grids are. A node count whose core budget
// cannot fit the smallest split yields an empty group.
//
// Ice receives the control configuration's share of the budget, and
// the remaining cores are split between atmosphere and ocean subject
// to the ratio bounds. With [WithTolerance] the bounds contract around
// the control ratio instead, so a zero tolerance recovers the control
// layout exactly when the budget matches.
func ESM1p6Layouts(nodes []float64, opts ...Option) ([][]Layout, error) {
	p := apply(esmDefaults(), opts...)

	if _, err := LookupQueue(p.queue); err != nil {
		return nil, err
	}

	tolSet := !math.IsNaN(p.tol)

	if tolSet && (p.tol < 0 || p.tol > 1) {
		return nil, ErrConstraint.With(slog.Float64("tolerance", p.tol))
	}

	if !tolSet && (p.ratio[0] <= 0 || p.ratio[1] <= 0 || p.ratio[0] > p.ratio[1]) {
		return nil, ErrConstraint.With(
			slog.Float64("min_ratio", p.ratio[0]),
			slog.Float64("max_ratio", p.ratio[1]),
		)
	}

	if p.atmSteps < 1 {
		return nil, ErrConstraint.With(slog.Int("atm_steps", p.atmSteps))
	}

	if p.maxDiff < 0 {
		return nil, ErrConstraint.With(slog.Int("max_diff", p.maxDiff))
	}

	if p.wastedFrac < 0 || p.wastedFrac > 1 {
		return nil, ErrConstraint.With(slog.Float64("wasted_frac", p.wastedFrac))
	}

	for _, n := range nodes {
		if n <= 0 || math.IsNaN(n) || math.IsInf(n, 0) {
			return nil, ErrConstraint.With(slog.Float64("nodes", n))
		}
	}

	ctrlCores, err := NodesToCores(ctrlNodes, ctrlQueue)
	if err != nil {
		return nil, err
	}

	ctrlRatio := float64(ctrlMom.Cores()) / float64(ctrlAtm.Cores())

	out := make([][]Layout, 0, len(nodes))

	for _, n := range nodes {
		tot, err := NodesToCores(n, p.queue)
		if err != nil {
			return nil, err
		}

		if tot < minSplitCores {
			out = append(out, nil)
			continue
		}

		// Integer arithmetic so a budget equal to the control's
		// yields the control ice count exactly.
		ice := ctrlIce * tot / ctrlCores
		if ice < 1 {
			ice = 1
		}

		pool := tot - ice
		minUsed := tot - int(float64(tot)*p.wastedFrac)

		lo, hi := p.ratio[0], p.ratio[1]

		var minAtm, maxAtm int

		if tolSet {
			lo = ctrlRatio * (1 - p.tol)
			hi = ctrlRatio * (1 + p.tol)

			// pool*ctrlAtm stays an exact integer product, so when
			// the budget scales the control split the division and
			// truncation land on the control atmosphere count.
			target := float64(pool*ctrlAtm.Cores()) / float64(ctrlAtm.Cores()+ctrlMom.Cores())
			minAtm = max(2, int(target*(1-p.tol)))
			maxAtm = max(2, int(target*(1+p.tol)))
		} else {
			// pool = atm + mom and mom = ratio*atm, so atm spans
			// pool/(1+hi) through pool/(1+lo).
			minAtm = max(2, int(float64(pool)/(1+hi)))
			maxAtm = max(2, int(float64(pool)/(1+lo)))
		}

		if p.atmAtLeastMom {
			hi = 1
		}

		delta := (maxAtm - minAtm) / p.atmSteps
		if delta < 1 {
			delta = 1
		}

		// The atmosphere grid needs an even nx, so nudge the range
		// endpoints onto even counts.
		if minAtm%2 != 0 {
			minAtm++
		}
		if maxAtm%2 != 0 {
			maxAtm--
		}

		layouts, err := splitCores(splitSpec{
			minAtm:        minAtm,
			maxAtm:        maxAtm,
			atmDelta:      delta,
			poolCores:     pool,
			iceCores:      ice,
			minUsed:       minUsed,
			maxDiff:       p.maxDiff,
			ratio:         [2]float64{lo, hi},
			wideAtm:       p.wideGrids,
			atmAtLeastMom: p.atmAtLeastMom,
		})
		if err != nil {
			return nil, err
		}

		if p.slackToIce {
			for i := range layouts {
				layouts[i].Ice += tot - layouts[i].Used
				layouts[i].Used = tot
			}
		}

		out = append(out, sortLayouts(dedupe(layouts)))
	}

	return out, nil
}

func dedupe(layouts []Layout) []Layout {
	seen := make(map[Layout]struct{}, len(layouts))
	uniq := layouts[:0]

	for _, l := range layouts {
		if _, ok := seen[l]; ok {
			continue
		}

		seen[l] = struct{}{}
		uniq = append(uniq, l)
	}

	return uniq
}

// sortLayouts orders layouts by cores used descending, then by the
// combined skew of their grids ascending, with the grid dimensions as
// final tiebreakers so equal splits keep a stable order.
func sortLayouts(layouts []Layout) []Layout {
	slices.SortFunc(layouts, func(a, b Layout) int {
		if c := cmp.Compare(b.Used, a.Used); c != 0 {
			return c
		}

		askew := abs(a.Atm.Nx-a.Atm.Ny) + abs(a.Mom.Nx-a.Mom.Ny)
		bskew := abs(b.Atm.Nx-b.Atm.Ny) + abs(b.Mom.Nx-b.Mom.Ny)
		if c := cmp.Compare(askew, bskew); c != 0 {
			return c
		}

		return cmp.Or(
			cmp.Compare(a.Atm.Nx, b.Atm.Nx),
			cmp.Compare(a.Atm.Ny, b.Atm.Ny),
			cmp.Compare(a.Mom.Nx, b.Mom.Nx),
			cmp.Compare(a.Mom.Ny, b.Mom.Ny),
			cmp.Compare(a.Ice, b.Ice),
		)
	})

	return layouts
}

// perturbBlock renders one scaling experiment entry for a payu
// perturbation configuration. Submodel core counts, the UM processor
// grid, the MOM layout and the CICE block count all follow from one
// Layout.
const perturbBlock = `
  Scaling_numnodes_%v_totncores_%d_ncores_used_%d_seqnum_%d:
    branches:
      - %s
    config.yaml:
      submodels:
        - - ncpus: # atmosphere
              - %d # ncores for atmosphere
          - ncpus: # ocean
              - %d # ncores for ocean
          - ncpus: # ice
              - %d # ncores for ice

    atmosphere/um_env.yaml:
      UM_ATM_NPROCX: %d
      UM_ATM_NPROCY: %d
      UM_NPES: %d

    ocean/input.nml:
        ocean_model_nml:
            layout:
                - %d,%d

    ice/cice_in.nml:
          domain_nml:
                - %d
    `

// ESM1p6PerturbBlock renders the given layouts as payu perturbation
// blocks for a scaling run over the given node count. Blocks are
// numbered sequentially from the start block, and the next unused
// sequence number is returned alongside the rendered text.
func ESM1p6PerturbBlock(nodes float64, layouts []Layout, prefix string, opts ...Option) (string, int, error) {
	p := apply(esmDefaults(), opts...)

	tot, err := NodesToCores(nodes, p.queue)
	if err != nil {
		return "", 0, err
	}

	if prefix == "" {
		return "", 0, ErrConstraint.With(slog.String("prefix", prefix))
	}

	if len(layouts) == 0 {
		return "", 0, ErrNoLayouts.With(slog.Float64("nodes", nodes))
	}

	if p.startBlock < 1 {
		return "", 0, ErrConstraint.With(slog.Int("start_block", p.startBlock))
	}

	var b strings.Builder

	seq := p.startBlock

	for _, l := range layouts {
		branch := fmt.Sprintf("%s_atm_%dx%d_mom_%dx%d_ice_%dx1",
			prefix, l.Atm.Nx, l.Atm.Ny, l.Mom.Nx, l.Mom.Ny, l.Ice)

		used := l.Atm.Cores() + l.Mom.Cores() + l.Ice

		fmt.Fprintf(&b, perturbBlock,
			nodes, tot, used, seq, branch,
			l.Atm.Cores(), l.Mom.Cores(), l.Ice,
			l.Atm.Nx, l.Atm.Ny, l.Atm.Cores(),
			l.Mom.Nx, l.Mom.Ny,
			l.Ice,
		)

		seq++
	}

	return b.String(), seq, nil
}
