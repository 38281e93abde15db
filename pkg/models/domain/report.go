package domain

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
)

const (
	DefaultStartDate = "7daysAgo"
	DefaultEndDate   = "today"

	// SessionsMetric is the column summed into the overview total.
	SessionsMetric = "sessions"
)

type ReportKind string

const (
	ReportOverview       ReportKind = "overview"
	ReportTopPages       ReportKind = "top-pages"
	ReportTrafficSources ReportKind = "traffic-sources"
	ReportConversions    ReportKind = "conversions"
)

// DateRange holds upstream date expressions, e.g. "2024-01-01" or "7daysAgo".
type DateRange struct {
	Start string
	End   string
}

type catalogueEntry struct {
	dimensions []string
	metrics    []string
}

var catalogue = map[ReportKind]catalogueEntry{
	ReportOverview: {
		dimensions: []string{"date"},
		metrics:    []string{"sessions", "activeUsers", "newUsers", "bounceRate", "averageSessionDuration"},
	},
	ReportTopPages: {
		dimensions: []string{"pagePath", "pageTitle"},
		metrics:    []string{"screenPageViews", "averageSessionDuration", "bounceRate"},
	},
	ReportTrafficSources: {
		dimensions: []string{"sessionDefaultChannelGroup", "sessionSource", "sessionMedium"},
		metrics:    []string{"sessions", "activeUsers", "conversions"},
	},
	ReportConversions: {
		dimensions: []string{"eventName", "date"},
		metrics:    []string{"eventCount", "conversions", "totalRevenue"},
	},
}

var reportOrder = []ReportKind{ReportOverview, ReportTopPages, ReportTrafficSources, ReportConversions}

// ReportKinds returns the catalogue in its canonical order.
func ReportKinds() []ReportKind {
	return slices.Clone(reportOrder)
}

// ReportSpec is an immutable description of one upstream report query.
type ReportSpec struct {
	kind       ReportKind
	dimensions []string
	metrics    []string
	dateRange  DateRange
}

// LookupReport resolves a report name to its fixed spec. Empty dates fall back
// to the default range.
func LookupReport(name, start, end string) (ReportSpec, error) {
	kind := ReportKind(name)
	entry, ok := catalogue[kind]
	if !ok {
		return ReportSpec{}, fmt.Errorf("%w: %q", ErrUnknownReport, name)
	}

	if start == "" {
		start = DefaultStartDate
	}
	if end == "" {
		end = DefaultEndDate
	}

	return ReportSpec{
		kind:       kind,
		dimensions: slices.Clone(entry.dimensions),
		metrics:    slices.Clone(entry.metrics),
		dateRange:  DateRange{Start: start, End: end},
	}, nil
}

func (s ReportSpec) Kind() ReportKind {
	return s.kind
}

func (s ReportSpec) Dimensions() []string {
	return slices.Clone(s.dimensions)
}

func (s ReportSpec) Metrics() []string {
	return slices.Clone(s.metrics)
}

func (s ReportSpec) DateRange() DateRange {
	return s.dateRange
}

// Fields returns dimensions followed by metrics.
func (s ReportSpec) Fields() []string {
	return slices.Concat(s.dimensions, s.metrics)
}

// ReportRow maps a dimension or metric name to its value for one result row.
type ReportRow map[string]string

// ReportResult is a normalized upstream report.
type ReportResult struct {
	Dimensions []string
	Metrics    []string
	Rows       []ReportRow
	RowCount   int
}

// TotalSessions sums the sessions column. Missing or unparsable values count as zero.
func TotalSessions(rows []ReportRow) int {
	total := 0
	for _, row := range rows {
		n := leadingInt(row[SessionsMetric])
		switch {
		case n > 0 && total > math.MaxInt-n:
			total = math.MaxInt
		case n < 0 && total < math.MinInt-n:
			total = math.MinInt
		default:
			total += n
		}
	}
	return total
}

// leadingInt parses the optional sign and digits at the start of s, so "12.7"
// yields 12. Anything without a leading digit yields 0; digit runs past the
// int range clamp to math.MaxInt or math.MinInt.
func leadingInt(s string) int {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	n, err := strconv.Atoi(s[:end])
	if errors.Is(err, strconv.ErrRange) {
		if s[0] == '-' {
			return math.MinInt
		}
		return math.MaxInt
	}
	if err != nil {
		return 0
	}
	return n
}

// ReportNames renders the catalogue as "a | b | c".
func ReportNames() string {
	names := make([]string, 0, len(reportOrder))
	for _, k := range reportOrder {
		names = append(names, string(k))
	}
	return strings.Join(names, " | ")
}
