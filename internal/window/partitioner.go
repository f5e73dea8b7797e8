// Package window partitions the live observation stream into fixed-length,
// non-overlapping time windows and accumulates the cumulative evidence set
// each window exposes to inference.
package window

import (
	"fmt"
	"sort"
	"time"

	"github.com/ZhangdingLiu/Charleston-Flood-Risk-Digital-Twin/internal/domain"
	"github.com/ZhangdingLiu/Charleston-Flood-Risk-Digital-Twin/internal/network"
)

// Partition slices the observation stream into consecutive windows of
// windowMinutes starting at the earliest timestamp. A window covers the
// half-open interval [start, end): an observation falling exactly on a
// boundary belongs to the window that begins there. Every window carries
// the cumulative set of streets observed so far plus the subset retained
// in the network ("network evidence"), so Evidence(k) ⊆ Evidence(k+1) by
// construction.
//
// The stream must be timestamp-ordered (domain.SortObservations) and
// non-empty; an empty stream is a DataError since no window can be formed.
func Partition(observations []domain.Observation, windowMinutes int, net *network.Network) ([]domain.TimeWindow, error) {
	if len(observations) == 0 {
		return nil, domain.Dataf("cannot partition an empty observation stream")
	}
	if windowMinutes <= 0 {
		return nil, fmt.Errorf("window minutes must be positive, got %d", windowMinutes)
	}

	d := time.Duration(windowMinutes) * time.Minute
	t0 := observations[0].Time
	tmax := observations[len(observations)-1].Time
	if tmax.Before(t0) {
		return nil, fmt.Errorf("observation stream is not timestamp-ordered")
	}

	count := int(tmax.Sub(t0)/d) + 1

	windows := make([]domain.TimeWindow, 0, count)
	cumulative := make(map[string]struct{})
	next := 0
	for k := 0; k < count; k++ {
		start := t0.Add(time.Duration(k) * d)
		end := start.Add(d)

		for next < len(observations) && observations[next].Time.Before(end) {
			cumulative[observations[next].Street] = struct{}{}
			next++
		}

		all := sortedKeys(cumulative)
		windows = append(windows, domain.TimeWindow{
			Index:              k + 1,
			Start:              start,
			End:                end,
			Label:              start.Format("15:04") + "-" + end.Format("15:04"),
			CumulativeEvidence: all,
			NetworkEvidence:    filterNetwork(all, net),
		})
	}

	return windows, nil
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// filterNetwork keeps only streets that are nodes. Observed roads outside
// the node set are reported but can never act as inference evidence.
func filterNetwork(streets []string, net *network.Network) []string {
	out := make([]string, 0, len(streets))
	for _, s := range streets {
		if net.Contains(s) {
			out = append(out, s)
		}
	}
	return out
}
