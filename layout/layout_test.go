package layout

import (
	"errors"
	"slices"
	"testing"
)

func TestLookupQueue_Table(t *testing.T) {
	for _, tt := range []struct {
		name  string
		cores int
		memGB int
	}{
		{"normalsr", 104, 512},
		{"expresssr", 104, 512},
		{"normal", 48, 192},
		{"express", 48, 192},
		{"normalbw", 28, 128},
		{"expressbw", 28, 128},
		{"normalsl", 32, 192},
	} {
		t.Run(tt.name, func(t *testing.T) {
			q, err := LookupQueue(tt.name)
			if err != nil {
				t.Fatalf("lookup %s: %v", tt.name, err)
			}

			if q.Name != tt.name || q.Cores != tt.cores || q.MemGB != tt.memGB {
				t.Errorf("got %+v, want {%s %d %d}", q, tt.name, tt.cores, tt.memGB)
			}
		})
	}

	if _, err := LookupQueue("hugemem"); !errors.Is(err, ErrQueue) {
		t.Errorf("got %v, want %v", err, ErrQueue)
	}
}

func TestCoresForQueue(t *testing.T) {
	n, err := CoresForQueue("normal")
	if err != nil {
		t.Fatalf("cores for normal: %v", err)
	}

	if n != 48 {
		t.Errorf("got %d cores, want 48", n)
	}

	if _, err := CoresForQueue(""); !errors.Is(err, ErrQueue) {
		t.Errorf("got %v, want %v", err, ErrQueue)
	}
}

func TestNodesToCores(t *testing.T) {
	for _, tt := range []struct {
		name  string
		nodes float64
		queue string
		want  int
	}{
		{"whole nodes", 4, "normalsr", 416},
		{"fractional nodes", 2.5, "normalsr", 260},
		{"truncates down", 0.2, "normalsr", 20},
		{"cascade lake", 4, "normal", 192},
	} {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NodesToCores(tt.nodes, tt.queue)
			if err != nil {
				t.Fatalf("convert %v nodes: %v", tt.nodes, err)
			}

			if got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestNodesToCores_Errors(t *testing.T) {
	if _, err := NodesToCores(1, "gpuvolta"); !errors.Is(err, ErrQueue) {
		t.Errorf("got %v, want %v", err, ErrQueue)
	}

	for _, nodes := range []float64{0, -1, -0.5} {
		if _, err := NodesToCores(nodes, "normalsr"); !errors.Is(err, ErrConstraint) {
			t.Errorf("nodes %v: got %v, want %v", nodes, err, ErrConstraint)
		}
	}
}

func TestFindGrids(t *testing.T) {
	for _, tt := range []struct {
		name  string
		cores int
		opts  []Option
		want  []Grid
	}{
		{
			name:  "near square",
			cores: 12,
			want:  []Grid{{2, 6}, {3, 4}, {4, 3}, {5, 2}, {6, 2}},
		},
		{
			name:  "even and wide",
			cores: 208,
			opts:  []Option{WithEvenNx(true), WithWideGrids(true)},
			want:  []Grid{{14, 14}, {16, 13}},
		},
		{
			name:  "default spread",
			cores: 196,
			want:  []Grid{{12, 16}, {13, 15}, {14, 14}, {15, 13}, {16, 12}},
		},
		{
			name:  "wide only",
			cores: 20,
			opts:  []Option{WithWideGrids(true)},
			want:  []Grid{{5, 4}, {6, 3}},
		},
		{
			name:  "exact square only",
			cores: 100,
			opts:  []Option{WithMaxDiff(0)},
			want:  []Grid{{10, 10}},
		},
		{
			name:  "no square factoring",
			cores: 99,
			opts:  []Option{WithMaxDiff(0)},
			want:  nil,
		},
		{
			name:  "single core",
			cores: 1,
			want:  []Grid{{1, 1}},
		},
		{
			name:  "single core needs even nx",
			cores: 1,
			opts:  []Option{WithEvenNx(true)},
			want:  nil,
		},
	} {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FindGrids(tt.cores, tt.opts...)
			if err != nil {
				t.Fatalf("find grids for %d: %v", tt.cores, err)
			}

			if !slices.Equal(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFindGrids_Errors(t *testing.T) {
	if _, err := FindGrids(0); !errors.Is(err, ErrConstraint) {
		t.Errorf("zero cores: got %v, want %v", err, ErrConstraint)
	}

	if _, err := FindGrids(10, WithMaxDiff(-1)); !errors.Is(err, ErrConstraint) {
		t.Errorf("negative max diff: got %v, want %v", err, ErrConstraint)
	}
}

func TestFilter(t *testing.T) {
	layouts := []Layout{
		{Used: 416, Atm: Grid{16, 13}, Mom: Grid{14, 14}, Ice: 12},
		{Used: 259, Atm: Grid{12, 10}, Mom: Grid{11, 12}, Ice: 7},
		{Used: 19, Atm: Grid{4, 2}, Mom: Grid{2, 5}, Ice: 1},
	}

	for _, tt := range []struct {
		name      string
		predicate string
		want      []Layout
	}{
		{"by total", "ncores >= 200", layouts[:2]},
		{"by component cores", "atm_nx % 2 == 0 && mom == 196", layouts[:1]},
		{"by ice", "ice > 5", layouts[:2]},
		{"by grid shape", "mom_nx < mom_ny", layouts[1:]},
		{"nothing matches", "ncores > 1000", nil},
		{"everything matches", "true", layouts},
	} {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Filter(layouts, tt.predicate)
			if err != nil {
				t.Fatalf("filter %q: %v", tt.predicate, err)
			}

			if !slices.Equal(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFilter_Errors(t *testing.T) {
	layouts := []Layout{
		{Used: 416, Atm: Grid{16, 13}, Mom: Grid{14, 14}, Ice: 12},
	}

	for _, tt := range []struct {
		name      string
		predicate string
	}{
		{"syntax error", "ncores >>"},
		{"unknown variable", "walltime > 1"},
		{"not a boolean", "ncores + 1"},
	} {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Filter(layouts, tt.predicate); !errors.Is(err, ErrPredicate) {
				t.Fatalf("got %v, want %v", err, ErrPredicate)
			}
		})
	}
}
