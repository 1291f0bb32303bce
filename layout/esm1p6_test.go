package layout

import (
	"errors"
	"slices"
	"strings"
	"testing"
)

func validSplitSpec() splitSpec {
	return splitSpec{
		minAtm:    96,
		maxAtm:    120,
		atmDelta:  1,
		poolCores: 202,
		iceCores:  6,
		minUsed:   201,
		maxDiff:   4,
		ratio:     [2]float64{0.75, 1.25},
		wideAtm:   true,
	}
}

func TestSplitCores_Validation(t *testing.T) {
	for _, tt := range []struct {
		name   string
		mutate func(*splitSpec)
	}{
		{"atm floor", func(s *splitSpec) { s.minAtm = 1 }},
		{"atm ceiling", func(s *splitSpec) { s.minAtm, s.maxAtm = 2, 1 }},
		{"inverted atm range", func(s *splitSpec) { s.minAtm, s.maxAtm = 120, 96 }},
		{"zero delta", func(s *splitSpec) { s.atmDelta = 0 }},
		{"pool too small", func(s *splitSpec) { s.poolCores = 2 }},
		{"no ice", func(s *splitSpec) { s.iceCores = 0 }},
		{"min used over budget", func(s *splitSpec) { s.minUsed = 209 }},
		{"zero min ratio", func(s *splitSpec) { s.ratio[0] = 0 }},
		{"negative max ratio", func(s *splitSpec) { s.ratio[1] = -1 }},
		{"inverted ratio", func(s *splitSpec) { s.ratio = [2]float64{1.5, 1.0} }},
	} {
		t.Run(tt.name, func(t *testing.T) {
			spec := validSplitSpec()
			tt.mutate(&spec)

			if _, err := splitCores(spec); !errors.Is(err, ErrConstraint) {
				t.Fatalf("got %v, want %v", err, ErrConstraint)
			}
		})
	}
}

func TestSplitCores_Search(t *testing.T) {
	spec := validSplitSpec()

	layouts, err := splitCores(spec)
	if err != nil {
		t.Fatalf("split: %v", err)
	}

	if len(layouts) == 0 {
		t.Fatal("no layouts found")
	}

	for _, l := range layouts {
		if l.Used != l.Atm.Cores()+l.Mom.Cores()+l.Ice {
			t.Errorf("layout %+v: used does not sum", l)
		}

		if l.Used < spec.minUsed {
			t.Errorf("layout %+v: used below %d", l, spec.minUsed)
		}

		if l.Ice != spec.iceCores {
			t.Errorf("layout %+v: ice changed", l)
		}

		if l.Atm.Nx%2 != 0 {
			t.Errorf("layout %+v: odd atm nx", l)
		}

		if l.Atm.Nx < l.Atm.Ny {
			t.Errorf("layout %+v: tall atm grid", l)
		}

		if l.Atm.Cores()+l.Mom.Cores() > spec.poolCores {
			t.Errorf("layout %+v: overruns the pool", l)
		}

		if d := abs(l.Mom.Nx - l.Mom.Ny); d > spec.maxDiff {
			t.Errorf("layout %+v: mom grid skew %d", l, d)
		}
	}

	best := Layout{Used: 206, Atm: Grid{10, 10}, Mom: Grid{10, 10}, Ice: 6}
	if !slices.Contains(layouts, best) {
		t.Errorf("layouts %v missing %+v", layouts, best)
	}

	// 206 cores is the most any split of this pool can occupy.
	spec.minUsed = 207
	layouts, err = splitCores(spec)
	if err != nil {
		t.Fatalf("split: %v", err)
	}

	if len(layouts) != 0 {
		t.Errorf("got %v, want none", layouts)
	}
}

func TestSplitCores_MaxDiffZero(t *testing.T) {
	layouts, err := splitCores(splitSpec{
		minAtm:    98,
		maxAtm:    102,
		atmDelta:  1,
		poolCores: 199,
		iceCores:  1,
		minUsed:   1,
		maxDiff:   0,
		ratio:     [2]float64{0.75, 1.25},
		wideAtm:   true,
	})
	if err != nil {
		t.Fatalf("split: %v", err)
	}

	// 199 - 100 = 99 cores remain for the ocean, and 99 has no square
	// factoring.
	if len(layouts) != 0 {
		t.Errorf("got %v, want none", layouts)
	}
}

func TestSplitCores_AtmAtLeastMom(t *testing.T) {
	spec := splitSpec{
		minAtm:    8,
		maxAtm:    8,
		atmDelta:  1,
		poolCores: 19,
		iceCores:  1,
		minUsed:   1,
		maxDiff:   4,
		ratio:     [2]float64{0.5, 1.5},
		wideAtm:   true,
	}

	layouts, err := splitCores(spec)
	if err != nil {
		t.Fatalf("split: %v", err)
	}

	if len(layouts) != 4 {
		t.Fatalf("got %v, want 4 layouts", layouts)
	}

	spec.atmAtLeastMom = true

	layouts, err = splitCores(spec)
	if err != nil {
		t.Fatalf("split: %v", err)
	}

	want := []Layout{{Used: 17, Atm: Grid{4, 2}, Mom: Grid{4, 2}, Ice: 1}}
	if !slices.Equal(layouts, want) {
		t.Errorf("got %v, want %v", layouts, want)
	}
}

func TestESM1p6Layouts_Control(t *testing.T) {
	groups, err := ESM1p6Layouts([]float64{4}, WithTolerance(0))
	if err != nil {
		t.Fatalf("layouts: %v", err)
	}

	if len(groups) != 1 {
		t.Fatalf("got %d groups, want 1", len(groups))
	}

	// Zero tolerance on the control budget admits only the released
	// control layout.
	want := []Layout{{Used: 416, Atm: Grid{16, 13}, Mom: Grid{14, 14}, Ice: 12}}
	if !slices.Equal(groups[0], want) {
		t.Errorf("got %v, want %v", groups[0], want)
	}
}

func TestESM1p6Layouts_Validation(t *testing.T) {
	for _, tt := range []struct {
		name  string
		nodes []float64
		opts  []Option
		want  error
	}{
		{"unknown queue", []float64{1}, []Option{WithQueue("mammoth")}, ErrQueue},
		{"negative node", []float64{-1}, nil, ErrConstraint},
		{"zero node", []float64{0}, nil, ErrConstraint},
		{"tolerance above one", []float64{1}, []Option{WithTolerance(1.5)}, ErrConstraint},
		{"negative tolerance", []float64{1}, []Option{WithTolerance(-0.1)}, ErrConstraint},
		{"zero min ratio", []float64{1}, []Option{WithRatioRange(0, 1.25)}, ErrConstraint},
		{"inverted ratio", []float64{1}, []Option{WithRatioRange(1.5, 1.0)}, ErrConstraint},
		{"zero steps", []float64{1}, []Option{WithAtmSteps(0)}, ErrConstraint},
		{"negative max diff", []float64{1}, []Option{WithMaxDiff(-1)}, ErrConstraint},
		{"wasted fraction above one", []float64{1}, []Option{WithMaxWastedFrac(1.5)}, ErrConstraint},
		{"negative wasted fraction", []float64{1}, []Option{WithMaxWastedFrac(-0.1)}, ErrConstraint},
	} {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ESM1p6Layouts(tt.nodes, tt.opts...); !errors.Is(err, tt.want) {
				t.Fatalf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestESM1p6Layouts_SmallNodeFractions(t *testing.T) {
	groups, err := ESM1p6Layouts([]float64{0.2, 0.001}, WithMaxWastedFrac(0.2))
	if err != nil {
		t.Fatalf("layouts: %v", err)
	}

	if len(groups) != 2 {
		t.Fatalf("got %d groups, want 2", len(groups))
	}

	want := []Layout{
		{Used: 19, Atm: Grid{4, 2}, Mom: Grid{2, 5}, Ice: 1},
		{Used: 19, Atm: Grid{4, 2}, Mom: Grid{5, 2}, Ice: 1},
		{Used: 18, Atm: Grid{4, 2}, Mom: Grid{3, 3}, Ice: 1},
		{Used: 17, Atm: Grid{4, 2}, Mom: Grid{4, 2}, Ice: 1},
	}
	if !slices.Equal(groups[0], want) {
		t.Errorf("got %v, want %v", groups[0], want)
	}

	// A thousandth of a node rounds to zero cores.
	if len(groups[1]) != 0 {
		t.Errorf("got %v, want none", groups[1])
	}
}

func TestESM1p6Layouts_AtmAtLeastMom(t *testing.T) {
	groups, err := ESM1p6Layouts([]float64{0.2},
		WithMaxWastedFrac(0.2),
		WithAtmAtLeastMom(true),
	)
	if err != nil {
		t.Fatalf("layouts: %v", err)
	}

	// Capping the ratio at one starves the ocean of its 11 leftover
	// cores at every candidate atmosphere count.
	if len(groups[0]) != 0 {
		t.Errorf("got %v, want none", groups[0])
	}
}

func TestESM1p6Layouts_RatioRange(t *testing.T) {
	groups, err := ESM1p6Layouts([]float64{2.5}, WithRatioRange(0.8, 1.2))
	if err != nil {
		t.Fatalf("layouts: %v", err)
	}

	layouts := groups[0]
	if len(layouts) == 0 {
		t.Fatal("no layouts found")
	}

	for _, l := range layouts {
		if l.Used < 258 {
			t.Errorf("layout %+v: wastes more than a hundredth of 260 cores", l)
		}

		if l.Ice != 7 {
			t.Errorf("layout %+v: ice share not scaled from control", l)
		}

		if l.Used != l.Atm.Cores()+l.Mom.Cores()+l.Ice {
			t.Errorf("layout %+v: used does not sum", l)
		}
	}

	known := Layout{Used: 259, Atm: Grid{12, 10}, Mom: Grid{11, 12}, Ice: 7}
	if !slices.Contains(layouts, known) {
		t.Errorf("layouts %v missing %+v", layouts, known)
	}
}

func TestESM1p6Layouts_SlackToIce(t *testing.T) {
	groups, err := ESM1p6Layouts([]float64{4}, WithSlackToIce(true))
	if err != nil {
		t.Fatalf("layouts: %v", err)
	}

	layouts := groups[0]
	if len(layouts) == 0 {
		t.Fatal("no layouts found")
	}

	for _, l := range layouts {
		if l.Used != 416 {
			t.Errorf("layout %+v: slack not granted to ice", l)
		}

		if l.Ice < 12 {
			t.Errorf("layout %+v: ice below control share", l)
		}

		if l.Used != l.Atm.Cores()+l.Mom.Cores()+l.Ice {
			t.Errorf("layout %+v: used does not sum", l)
		}
	}
}

func TestESM1p6PerturbBlock(t *testing.T) {
	layouts := []Layout{
		{Used: 416, Atm: Grid{16, 13}, Mom: Grid{14, 14}, Ice: 12},
		{Used: 415, Atm: Grid{16, 13}, Mom: Grid{13, 15}, Ice: 12},
	}

	block, next, err := ESM1p6PerturbBlock(4, layouts, "esm_scaling")
	if err != nil {
		t.Fatalf("perturb block: %v", err)
	}

	if next != 3 {
		t.Errorf("got next block %d, want 3", next)
	}

	for _, want := range []string{
		"Scaling_numnodes_4_totncores_416_ncores_used_416_seqnum_1:",
		"Scaling_numnodes_4_totncores_416_ncores_used_415_seqnum_2:",
		"- esm_scaling_atm_16x13_mom_14x14_ice_12x1",
		"- esm_scaling_atm_16x13_mom_13x15_ice_12x1",
		"- 208 # ncores for atmosphere",
		"- 196 # ncores for ocean",
		"- 12 # ncores for ice",
		"UM_ATM_NPROCX: 16",
		"UM_ATM_NPROCY: 13",
		"UM_NPES: 208",
		"- 14,14",
		"- 13,15",
	} {
		if !strings.Contains(block, want) {
			t.Errorf("block missing %q:\n%s", want, block)
		}
	}
}

func TestESM1p6PerturbBlock_FractionalNodes(t *testing.T) {
	layouts := []Layout{
		{Used: 259, Atm: Grid{12, 10}, Mom: Grid{11, 12}, Ice: 7},
	}

	block, next, err := ESM1p6PerturbBlock(2.5, layouts, "half", WithStartBlock(7))
	if err != nil {
		t.Fatalf("perturb block: %v", err)
	}

	if next != 8 {
		t.Errorf("got next block %d, want 8", next)
	}

	if want := "Scaling_numnodes_2.5_totncores_260_ncores_used_259_seqnum_7:"; !strings.Contains(block, want) {
		t.Errorf("block missing %q:\n%s", want, block)
	}
}

func TestESM1p6PerturbBlock_Errors(t *testing.T) {
	layouts := []Layout{
		{Used: 416, Atm: Grid{16, 13}, Mom: Grid{14, 14}, Ice: 12},
	}

	for _, tt := range []struct {
		name    string
		nodes   float64
		layouts []Layout
		prefix  string
		opts    []Option
		want    error
	}{
		{"negative nodes", -1, layouts, "x", nil, ErrConstraint},
		{"unknown queue", 4, layouts, "x", []Option{WithQueue("mammoth")}, ErrQueue},
		{"empty prefix", 4, layouts, "", nil, ErrConstraint},
		{"no layouts", 4, nil, "x", nil, ErrNoLayouts},
		{"zero start block", 4, layouts, "x", []Option{WithStartBlock(0)}, ErrConstraint},
	} {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ESM1p6PerturbBlock(tt.nodes, tt.layouts, tt.prefix, tt.opts...)
			if !errors.Is(err, tt.want) {
				t.Fatalf("got %v, want %v", err, tt.want)
			}
		})
	}
}
