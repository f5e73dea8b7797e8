package domain

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"time"
)

// ReasonFlood is the closure reason code selecting the rows this engine
// trains on. All other reasons (accidents, construction, events) are ignored.
const ReasonFlood = "FLOOD"

// Required header names of the historical closure CSV.
const (
	colStreet = "STREET"
	colStart  = "START"
	colReason = "REASON"
)

// closureLayouts are the timestamp formats observed in Road_Closures
// exports, tried in order.
var closureLayouts = []string{
	time.RFC3339,
	"2006/01/02 15:04:05-07",
	"2006/01/02 15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// LoadClosures parses the historical closure CSV into a TrainingSet:
// FLOOD rows filtered, streets normalized, records clustered into
// calendar-day incidents, occurrence counts tallied per street.
//
// Individually malformed rows (unparsable timestamp, empty street) are
// skipped with a warning. A missing required column or an empty filtered
// set is a DataError: no network can be built from no data.
func LoadClosures(r io.Reader, source string, logger *slog.Logger) (*TrainingSet, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, Dataf("read closure header from %s: %v", source, err)
	}

	cols, err := requireColumns(header, colStreet, colStart, colReason)
	if err != nil {
		return nil, err
	}

	var events []FloodEvent
	skipped := 0
	line := 1
	for {
		line++
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			logger.Warn("skipping malformed closure row", "source", source, "line", line, "error", err)
			skipped++
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read closure csv %s: %w", source, err)
		}

		reason := strings.ToUpper(strings.TrimSpace(field(rec, cols[colReason])))
		if reason != ReasonFlood {
			continue
		}

		street := NormalizeStreet(field(rec, cols[colStreet]))
		if street == "" {
			logger.Warn("skipping closure row with empty street", "source", source, "line", line)
			skipped++
			continue
		}

		start, err := parseClosureTime(field(rec, cols[colStart]))
		if err != nil {
			logger.Warn("skipping closure row with unparsable timestamp",
				"source", source, "line", line, "value", field(rec, cols[colStart]), "error", err)
			skipped++
			continue
		}

		events = append(events, FloodEvent{
			Street:     street,
			Start:      start,
			IncidentID: incidentID(start),
		})
	}

	if len(events) == 0 {
		return nil, Dataf("no usable FLOOD closure records in %s", source)
	}

	incidents := clusterByDay(events)

	occurrences := make(map[string]int)
	for _, in := range incidents {
		for _, s := range in.Streets {
			occurrences[s]++
		}
	}

	return &TrainingSet{
		Incidents:     incidents,
		Events:        events,
		Occurrences:   occurrences,
		TotalRecords:  len(events),
		UniqueStreets: len(occurrences),
		SkippedRows:   skipped,
		Source:        source,
	}, nil
}

// requireColumns maps required header names to their indices, failing with
// a DataError naming the first absent column.
func requireColumns(header []string, names ...string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.TrimSpace(h)] = i
	}
	cols := make(map[string]int, len(names))
	for _, name := range names {
		i, ok := idx[name]
		if !ok {
			return nil, Dataf("closure data missing required column %q", name)
		}
		cols[name] = i
	}
	return cols, nil
}

func field(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	return rec[i]
}

func parseClosureTime(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, errors.New("empty timestamp")
	}
	for _, layout := range closureLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", value)
}

// incidentID derives the stable identifier of the incident an event belongs
// to: the UTC calendar day.
func incidentID(start time.Time) string {
	return "inc-" + start.UTC().Format("20060102")
}

// clusterByDay groups events into incidents by UTC calendar date. A street
// appears at most once per incident no matter how many rows mention it.
// Incidents come back in chronological order with sorted street sets.
func clusterByDay(events []FloodEvent) []Incident {
	byDay := make(map[time.Time]map[string]struct{})
	for _, ev := range events {
		day := ev.Start.UTC().Truncate(24 * time.Hour)
		if byDay[day] == nil {
			byDay[day] = make(map[string]struct{})
		}
		byDay[day][ev.Street] = struct{}{}
	}

	days := make([]time.Time, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	incidents := make([]Incident, 0, len(days))
	for _, day := range days {
		streets := make([]string, 0, len(byDay[day]))
		for s := range byDay[day] {
			streets = append(streets, s)
		}
		sort.Strings(streets)
		incidents = append(incidents, Incident{
			ID:      "inc-" + day.Format("20060102"),
			Date:    day,
			Streets: streets,
		})
	}
	return incidents
}
