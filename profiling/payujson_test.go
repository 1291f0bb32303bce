package profiling

import (
	"errors"
	"slices"
	"testing"
)

const payuJSONLog = `{
    "scheduler_job_id": "149764665.gadi-pbs",
    "timings": {
        "payu_start_time": "2025-09-16T08:52:50.748807",
        "payu_setup_duration_seconds": 47.73822930175811,
        "payu_model_run_duration_seconds": 6776.044810215011,
        "payu_run_duration_seconds": 6779.385873348918,
        "payu_archive_duration_seconds": 8.063649574294686,
        "payu_finish_time": "2025-09-16T10:46:48.974451",
        "payu_total_duration_seconds": 6838.225644
    },
    "payu_run_id": "5c9027104cc39a5d39814624537c21440b68beb7",
    "payu_model_run_status": 0,
    "model_finish_time": "1844-01-01T00:00:00",
    "model_start_time": "1843-01-01T00:00:00",
    "model_calendar": "proleptic_gregorian",
    "payu_run_status": 0
}
`

func TestParsePayuJSON(t *testing.T) {
	p, err := ParsePayuJSON(payuJSONLog)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	regions := []string{
		"payu_setup_duration_seconds",
		"payu_model_run_duration_seconds",
		"payu_run_duration_seconds",
		"payu_archive_duration_seconds",
		"payu_total_duration_seconds",
	}
	if !slices.Equal(p.Regions, regions) {
		t.Errorf("regions = %q, want %q", p.Regions, regions)
	}

	walltime := []float64{
		47.73822930175811,
		6776.044810215011,
		6779.385873348918,
		8.063649574294686,
		6838.225644,
	}
	if got := p.Column("walltime"); !slices.Equal(got, walltime) {
		t.Errorf("walltime = %v, want %v", got, walltime)
	}
}

func TestParsePayuJSON_Errors(t *testing.T) {
	for _, tt := range []struct {
		name string
		text string
		want error
	}{
		{"no timings", `{"scheduler_job_id": "1.gadi-pbs"}`, ErrNoTable},
		{"timings not a mapping", `{"timings": "fast"}`, ErrBadTable},
	} {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParsePayuJSON(tt.text); !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}
}
