// Package profiling extracts timing tables from model run logs. Each parser
// handles one log dialect and produces a [Profile]: region names in file
// order plus one numeric column per metric, so a caller can compare a single
// metric across every region at once.
package profiling

import "github.com/ardnew/confit/config"

// Predefined errors (sentinel values).
var (
	ErrNoTable  = config.NewError("no timing table found")
	ErrBadTable = config.NewError("malformed timing table")
	ErrVersion  = config.NewError("cannot determine model version")
)

// Profile holds one log's timing table. Every metric column has exactly one
// value per region, in region order.
type Profile struct {
	Regions []string
	Metrics map[string][]float64
}

// Len returns the number of regions.
func (p *Profile) Len() int { return len(p.Regions) }

// Column returns one metric's values, one per region, or nil when the
// profile's dialect does not carry that metric.
func (p *Profile) Column(metric string) []float64 { return p.Metrics[metric] }

// field is one whitespace-delimited word of a table line and its byte
// offset, for parsers that split columns by position.
type field struct {
	text  string
	start int
}

// splitFields is strings.Fields with byte offsets.
func splitFields(line string) []field {
	var fs []field

	i := 0
	for i < len(line) {
		if line[i] == ' ' || line[i] == '\t' {
			i++

			continue
		}

		j := i
		for j < len(line) && line[j] != ' ' && line[j] != '\t' {
			j++
		}

		fs = append(fs, field{text: line[i:j], start: i})
		i = j
	}

	return fs
}
