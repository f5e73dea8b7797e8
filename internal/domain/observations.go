package domain

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
)

// Header names of the observation CSV. The split tag is optional and
// carried through untouched.
const (
	colObsStreet = "street"
	colObsStart  = "start_time"
	colObsSplit  = "split"
)

// LoadObservations parses the live observation CSV into a
// timestamp-ordered stream. Malformed rows are skipped with a warning;
// an empty resulting stream is a DataError because no inference window
// can be formed from it.
func LoadObservations(r io.Reader, source string, logger *slog.Logger) ([]Observation, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, Dataf("read observation header from %s: %v", source, err)
	}

	cols, err := requireColumns(header, colObsStreet, colObsStart)
	if err != nil {
		return nil, err
	}
	splitIdx := -1
	for i, h := range header {
		if strings.TrimSpace(h) == colObsSplit {
			splitIdx = i
		}
	}

	var observations []Observation
	line := 1
	for {
		line++
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			logger.Warn("skipping malformed observation row", "source", source, "line", line, "error", err)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read observation csv %s: %w", source, err)
		}

		street := NormalizeStreet(field(rec, cols[colObsStreet]))
		if street == "" {
			logger.Warn("skipping observation with empty street", "source", source, "line", line)
			continue
		}

		at, err := parseClosureTime(field(rec, cols[colObsStart]))
		if err != nil {
			logger.Warn("skipping observation with unparsable timestamp",
				"source", source, "line", line, "value", field(rec, cols[colObsStart]), "error", err)
			continue
		}

		observations = append(observations, Observation{
			Street: street,
			Time:   at,
			Split:  strings.TrimSpace(field(rec, splitIdx)),
		})
	}

	if len(observations) == 0 {
		return nil, Dataf("observation stream %s is empty", source)
	}

	SortObservations(observations)
	return observations, nil
}

// SortObservations orders the stream by timestamp, ties by street, so a
// run is deterministic regardless of input row order.
func SortObservations(observations []Observation) {
	sort.SliceStable(observations, func(i, j int) bool {
		if observations[i].Time.Equal(observations[j].Time) {
			return observations[i].Street < observations[j].Street
		}
		return observations[i].Time.Before(observations[j].Time)
	})
}
