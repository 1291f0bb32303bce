package profiling

import (
	"log/slog"
	"regexp"
	"strconv"
	"strings"
)

// UMMetrics lists the standardized timer columns in table order. The raw
// table's index and "% of mean" columns are dropped; MAX/(PE)/MIN/(PE)
// become tmax/pemax/tmin/pemin.
var UMMetrics = []string{"tavg", "tmed", "tstd", "tmax", "pemax", "tmin", "pemin"}

var (
	umRelease   = regexp.MustCompile(`Based upon UM release vn([0-9.]+)`)
	umVersionNo = regexp.MustCompile(`UM Version No\s*([0-9.]+)`)

	umFooter = regexp.MustCompile(`CPU TIMES \(sorted by wallclock times\)`)

	// One inclusive-timer row: index, region, then the numeric columns.
	// The region ends at the whitespace run leading a well-formed numeric
	// tail, so names may contain spaces, digits, and parentheses.
	umRow = regexp.MustCompile(`(?m)^\s*\d+\s+(\S.*?)` +
		`\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)` + // mean, median, sd
		`\s+\S+` + // % of mean, ignored
		`\s+([0-9.]+)\s+\(\s*([0-9]+)\s*\)` + // max (pe)
		`\s+([0-9.]+)\s+\(\s*([0-9]+)\s*\)\s*$`) // min (pe)
)

// umMajors orders the known header layouts for version guessing. UM 13 adds
// an N column left of ROUTINE that UM 7 does not have.
var umMajors = []string{"7", "13"}

var umHeaders = map[string]*regexp.Regexp{
	"7":  regexp.MustCompile(umHeaderPattern(``)),
	"13": regexp.MustCompile(umHeaderPattern(`N\s*`)),
}

func umHeaderPattern(n string) string {
	return `MPP : Inclusive timer summary\s+WALLCLOCK  TIMES\s*` + n +
		`ROUTINE\s*MEAN\s*MEDIAN\s*SD\s*% of mean\s*MAX\s*\(PE\)\s*MIN\s*\(PE\)\s*`
}

// UMVersion extracts the Unified Model version from run output: "13.1" from
// a release banner, or "7.3" from a dump header line like "UM Version No
// 703", where the three digits encode major.minor.
func UMVersion(text string) (string, bool) {
	if m := umRelease.FindStringSubmatch(text); m != nil {
		return m[1], true
	}

	if m := umVersionNo.FindStringSubmatch(text); m != nil {
		v := m[1]
		if len(v) == 3 && !strings.Contains(v, ".") {
			v = v[:1] + "." + v[2:]
		}

		return v, true
	}

	return "", false
}

// ParseUM extracts the wallclock table of the inclusive timer summary from
// UM run output. UM 7 and UM 13 lay the table out differently; the version,
// taken from the log or guessed from the header shape, picks the layout.
// Rows of the CPU times table that follows are not parsed.
func ParseUM(text string) (*Profile, error) {
	version, ok := UMVersion(text)
	if !ok {
		for _, major := range umMajors {
			if umHeaders[major].MatchString(text) {
				version, ok = major, true

				break
			}
		}
	}

	if !ok {
		return nil, ErrVersion
	}

	major, _, _ := strings.Cut(version, ".")

	header, known := umHeaders[major]
	if !known {
		return nil, ErrVersion.With(slog.String("version", version))
	}

	loc := header.FindStringIndex(text)
	if loc == nil {
		return nil, ErrNoTable.With(slog.String("version", version))
	}

	rest := text[loc[1]:]

	end := umFooter.FindStringIndex(rest)
	if end == nil {
		return nil, ErrNoTable.With(slog.String("missing", "cpu times footer"))
	}

	section := rest[:end[0]]

	rows := umRow.FindAllStringSubmatch(section, -1)

	// Every line between header and footer must be a timer row.
	if want := len(strings.Split(strings.TrimSpace(section), "\n")); len(rows) != want {
		return nil, ErrBadTable.With(
			slog.Int("rows", len(rows)),
			slog.Int("lines", want),
		)
	}

	p := &Profile{Metrics: make(map[string][]float64, len(UMMetrics))}

	for _, row := range rows {
		p.Regions = append(p.Regions, row[1])

		for i, metric := range UMMetrics {
			v, err := strconv.ParseFloat(row[i+2], 64)
			if err != nil {
				return nil, ErrBadTable.Wrap(err).With(slog.String("region", row[1]))
			}

			p.Metrics[metric] = append(p.Metrics[metric], v)
		}
	}

	return p, nil
}
