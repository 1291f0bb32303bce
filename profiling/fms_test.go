package profiling

import (
	"errors"
	"slices"
	"testing"
)

const fmsLog = ` Starting clean up at        320.000 days.

 Tabulating mpp_clock statistics across    240 PEs...

                                          hits          tmin          tmax          tavg          tstd  tfrac
Total runtime                                1    347.168044    347.168044    347.168044      0.000000  1.000
Ocean Initialization                         2      2.584243      2.591376      2.586725      0.001358  0.007
Ocean                                      731    331.487871    331.908537    331.690387      0.078982  0.955
Ocean dynamics                            2924    117.594187    118.949366    118.273053      0.281566  0.341
(Ocean tracer advection)                  1462     19.472436     20.028323     19.740314      0.115757  0.057

 MPP_STACK high water mark=           0
`

const fmsGrainLog = `                                          hits          tmin          tmax          tavg          tstd  tfrac grain pemin pemax
Total runtime                                1    347.168044    347.168044    347.168044      0.000000  1.000     0     0   239
Ocean                                      731    331.487871    331.908537    331.690387      0.078982  0.955     1     0   239
`

func TestParseFMS(t *testing.T) {
	p, err := ParseFMS(fmsLog)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	regions := []string{
		"Total runtime", "Ocean Initialization", "Ocean",
		"Ocean dynamics", "(Ocean tracer advection)",
	}
	if !slices.Equal(p.Regions, regions) {
		t.Errorf("regions = %q, want %q", p.Regions, regions)
	}

	want := map[string][]float64{
		"hits":  {1, 2, 731, 2924, 1462},
		"tmin":  {347.168044, 2.584243, 331.487871, 117.594187, 19.472436},
		"tmax":  {347.168044, 2.591376, 331.908537, 118.949366, 20.028323},
		"tavg":  {347.168044, 2.586725, 331.690387, 118.273053, 19.740314},
		"tstd":  {0.000000, 0.001358, 0.078982, 0.281566, 0.115757},
		"tfrac": {1.000, 0.007, 0.955, 0.341, 0.057},
	}

	for metric, column := range want {
		if got := p.Column(metric); !slices.Equal(got, column) {
			t.Errorf("%s = %v, want %v", metric, got, column)
		}
	}
}

func TestParseFMS_GrainColumns(t *testing.T) {
	p, err := ParseFMS(fmsGrainLog)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	if p.Len() != 2 {
		t.Fatalf("found %d regions, want 2", p.Len())
	}

	if got := p.Column("grain"); !slices.Equal(got, []float64{0, 1}) {
		t.Errorf("grain = %v, want [0 1]", got)
	}

	if got := p.Column("pemax"); !slices.Equal(got, []float64{239, 239}) {
		t.Errorf("pemax = %v, want [239 239]", got)
	}
}

func TestParseFMS_Errors(t *testing.T) {
	header := "                   hits          tmin          tmax          tavg          tstd  tfrac\n"

	for _, tt := range []struct {
		name string
		text string
		want error
	}{
		{"no header", "no clock table in this log\n", ErrNoTable},
		{"header without rows", header + "\n", ErrNoTable},
		{"non-numeric column", header + "Ocean broke 1 2 3 4 5\n", ErrBadTable},
	} {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseFMS(tt.text); !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}
}
