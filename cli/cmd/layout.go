package cmd

import (
	"context"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/ardnew/confit/layout"
)

// Layout runs the processor-layout generators.
//
// With neither generator flag it prints near-square grids under the core
// budget. --esm1p6 enumerates atmosphere/ocean/ice splits per node count,
// and --om3 allocates node blocks across component pools.
type Layout struct {
	Queue    string    `default:"normalsr" help:"Scheduler queue sizing nodes"`
	MaxCores int       `help:"Grid search core budget" placeholder:"N"`
	Nodes    []float64 `help:"Node counts to enumerate" placeholder:"N,..."`
	Where    string    `help:"Filter layouts with a boolean expression over {ncores, atm, atm_nx, atm_ny, mom, mom_nx, mom_ny, ice}" placeholder:"EXPR"`

	ESM1p6 bool `help:"Enumerate ESM1.6 layouts" name:"esm1p6" xor:"generator"`
	OM3    bool `help:"Enumerate OM3 pool layouts" name:"om3"    xor:"generator"`

	YAML   bool              `help:"Emit experiment-generator YAML instead of a table"`
	Prefix string            `default:"expt" help:"Branch name prefix for YAML output"`
	Pools  map[string]string `help:"OM3 submodel to pool assignments" mapsep:","`
}

// Run executes the layout command.
func (l *Layout) Run(ctx context.Context) error {
	w := stdout(ctx)

	switch {
	case l.ESM1p6:
		return l.runESM1p6(w)

	case l.OM3:
		return l.runOM3(w)

	case l.MaxCores > 0:
		return l.runGrids(w)
	}

	return ErrBadSelection.Wrap(
		fmt.Errorf("need --max-cores, --esm1p6, or --om3"),
	)
}

func (l *Layout) runGrids(w io.Writer) error {
	grids, err := layout.FindGrids(l.MaxCores)
	if err != nil {
		return err
	}

	for _, g := range grids {
		if _, err := fmt.Fprintf(w, "%dx%d\t%d\n", g.Nx, g.Ny, g.Cores()); err != nil {
			return err
		}
	}

	return nil
}

func (l *Layout) runESM1p6(w io.Writer) error {
	if len(l.Nodes) == 0 {
		return ErrBadSelection.Wrap(fmt.Errorf("--esm1p6 needs --nodes"))
	}

	groups, err := layout.ESM1p6Layouts(l.Nodes, layout.WithQueue(l.Queue))
	if err != nil {
		return err
	}

	if l.Where != "" {
		for i, group := range groups {
			groups[i], err = layout.Filter(group, l.Where)
			if err != nil {
				return err
			}
		}
	}

	if l.YAML {
		block := 0

		for i, group := range groups {
			text, next, err := layout.ESM1p6PerturbBlock(
				l.Nodes[i], group, l.Prefix,
				layout.WithQueue(l.Queue),
				layout.WithStartBlock(block),
			)
			if err != nil {
				return err
			}

			block = next

			if _, err := io.WriteString(w, text); err != nil {
				return err
			}
		}

		return nil
	}

	for i, group := range groups {
		if _, err := fmt.Fprintf(w, "# %g nodes\n", l.Nodes[i]); err != nil {
			return err
		}

		for _, lay := range group {
			_, err := fmt.Fprintf(w, "%d\tatm %dx%d\tmom %dx%d\tice %d\n",
				lay.Used,
				lay.Atm.Nx, lay.Atm.Ny,
				lay.Mom.Nx, lay.Mom.Ny,
				lay.Ice,
			)
			if err != nil {
				return err
			}
		}
	}

	return nil
}

// defaultPools is the submodel assignment used when --pools is not given:
// the ocean, ice, and wave models get dedicated pools and everything else
// shares one.
var defaultPools = map[string]string{
	"ocn": "ocn",
	"ice": "ice",
	"wav": "wav",
	"atm": "shared",
	"rof": "shared",
	"cpl": "shared",
}

func (l *Layout) runOM3(w io.Writer) error {
	if len(l.Nodes) == 0 {
		return ErrBadSelection.Wrap(fmt.Errorf("--om3 needs --nodes"))
	}

	nodes := make([]int, len(l.Nodes))
	for i, n := range l.Nodes {
		nodes[i] = int(n)
		if float64(nodes[i]) != n {
			return ErrBadSelection.Wrap(
				fmt.Errorf("--om3 needs whole node counts, got %g", n),
			)
		}
	}

	pools := l.Pools
	if len(pools) == 0 {
		pools = defaultPools
	}

	gen, err := layout.NewOM3Generator(l.Queue)
	if err != nil {
		return err
	}

	byNode, err := gen.Generate(nodes, pools)
	if err != nil {
		return err
	}

	if l.YAML {
		text, err := gen.ExperimentYAML(byNode, pools, layout.OM3Experiment{
			BranchPrefix: l.Prefix,
			BlockName:    l.Prefix + "_scaling",
		})
		if err != nil {
			return err
		}

		_, err = io.WriteString(w, text)

		return err
	}

	for _, node := range slices.Sorted(maps.Keys(byNode)) {
		if _, err := fmt.Fprintf(w, "# %d nodes\n", node); err != nil {
			return err
		}

		for _, lay := range byNode[node] {
			parts := make([]string, 0, len(lay.Tasks))
			for _, pool := range slices.Sorted(maps.Keys(lay.Tasks)) {
				parts = append(parts,
					fmt.Sprintf("%s=%d@%d", pool, lay.Tasks[pool], lay.RootPE[pool]))
			}

			if _, err := fmt.Fprintf(w, "%d\t%s\n", lay.Ncpus, strings.Join(parts, " ")); err != nil {
				return err
			}
		}
	}

	return nil
}
