package profiling

import (
	"log/slog"
	"strings"

	"github.com/goccy/go-yaml"
)

// payuRun is the slice of a payu job summary relevant to timing. MapSlice
// keeps the timings entries in file order.
type payuRun struct {
	Timings yaml.MapSlice `yaml:"timings"`
}

// ParsePayuJSON extracts walltimes from a payu run summary (JSON, which the
// YAML decoder accepts as-is). Every timings entry named *_duration_seconds
// becomes a region under the single metric "walltime"; other entries, such
// as the start and finish timestamps, are skipped.
func ParsePayuJSON(text string) (*Profile, error) {
	var run payuRun
	if err := yaml.Unmarshal([]byte(text), &run); err != nil {
		return nil, ErrBadTable.Wrap(err)
	}

	if run.Timings == nil {
		return nil, ErrNoTable
	}

	p := &Profile{Metrics: make(map[string][]float64, 1)}

	for _, item := range run.Timings {
		key, ok := item.Key.(string)
		if !ok || !strings.HasSuffix(key, "_duration_seconds") {
			continue
		}

		v, ok := toFloat(item.Value)
		if !ok {
			return nil, ErrBadTable.With(slog.String("key", key))
		}

		p.Regions = append(p.Regions, key)
		p.Metrics["walltime"] = append(p.Metrics["walltime"], v)
	}

	return p, nil
}

func toFloat(v any) (float64, bool) {
	switch v := v.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint64:
		return float64(v), true
	default:
		return 0, false
	}
}
