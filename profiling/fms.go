package profiling

import (
	"log/slog"
	"slices"
	"strconv"
	"strings"
)

// fmsClocks are the columns every FMS mpp_clock summary carries. Builds may
// add more, such as grain or the PE range; the header decides.
var fmsClocks = []string{"hits", "tmin", "tmax", "tavg", "tstd", "tfrac"}

// ParseFMS extracts the mpp_clock statistics table from FMS model output.
// The header line names the metric columns; region names fill the unlabeled
// column on the left and may contain spaces, so rows split into a numeric
// tail of one field per metric and a name taking everything before it.
func ParseFMS(text string) (*Profile, error) {
	lines := strings.Split(text, "\n")

	labels, start := fmsHeader(lines)
	if labels == nil {
		return nil, ErrNoTable
	}

	p := &Profile{Metrics: make(map[string][]float64, len(labels))}

	for _, line := range lines[start:] {
		fields := splitFields(line)
		if len(fields) <= len(labels) {
			break
		}

		tail := fields[len(fields)-len(labels):]

		for i, f := range tail {
			v, err := strconv.ParseFloat(f.text, 64)
			if err != nil {
				return nil, ErrBadTable.Wrap(err).
					With(slog.String("line", strings.TrimSpace(line)))
			}

			p.Metrics[labels[i]] = append(p.Metrics[labels[i]], v)
		}

		p.Regions = append(p.Regions, strings.TrimSpace(line[:tail[0].start]))
	}

	if p.Len() == 0 {
		return nil, ErrNoTable
	}

	return p, nil
}

// fmsHeader finds the clock table's column header and returns its labels and
// the index of the first row.
func fmsHeader(lines []string) (labels []string, start int) {
	for i, line := range lines {
		f := strings.Fields(line)
		if len(f) < len(fmsClocks) || f[0] != "hits" {
			continue
		}

		if slices.ContainsFunc(fmsClocks, func(c string) bool { return !slices.Contains(f, c) }) {
			continue
		}

		return f, i + 1
	}

	return nil, 0
}
