// Command genmock generates deterministic mock fixtures for local
// development: a Road_Closures-style historical CSV and a live
// observation CSV. The same seed always produces the same files, so a
// run over mock data is reproducible end to end.
//
// Usage:
//
//	go run ./cmd/genmock -out data -seed 42 -storms 30
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"
)

// streets is a pool of peninsula street names known to flood, roughly
// ordered by how often they appear in closure records. Earlier entries
// get picked more, which gives the occurrence filter something to cut.
var streets = []string{
	"FISHBURNE_ST",
	"HAGOOD_AVE",
	"LINE_ST",
	"PRESIDENT_ST",
	"ASHLEY_AVE",
	"RUTLEDGE_AVE",
	"CALHOUN_ST",
	"BEE_ST",
	"SPRING_ST",
	"CANNON_ST",
	"KING_ST",
	"SMITH_ST",
	"COMING_ST",
	"WENTWORTH_ST",
	"MARKET_ST",
	"EAST_BAY_ST",
	"BROAD_ST",
	"LOCKWOOD_DR",
	"MORRISON_DR",
	"AMERICA_ST",
}

// otherReasons pads the historical file with non-flood closures the
// loader must filter out.
var otherReasons = []string{"ACCIDENT", "CONSTRUCTION", "EVENT"}

func main() {
	outDir := flag.String("out", "data", "output directory for mock CSVs")
	seed := flag.Int64("seed", 42, "random seed")
	storms := flag.Int("storms", 30, "number of historical storm days")
	flag.Parse()

	if err := run(*outDir, *seed, *storms); err != nil {
		fmt.Fprintf(os.Stderr, "genmock: %v\n", err)
		os.Exit(1)
	}
}

func run(outDir string, seed int64, storms int) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}

	rng := rand.New(rand.NewSource(seed))

	closuresPath := filepath.Join(outDir, "Road_Closures.csv")
	if err := writeClosures(closuresPath, rng, storms); err != nil {
		return err
	}

	observationsPath := filepath.Join(outDir, "observations.csv")
	if err := writeObservations(observationsPath, rng); err != nil {
		return err
	}

	fmt.Printf("wrote %s and %s (seed %d, %d storms)\n", closuresPath, observationsPath, seed, storms)
	return nil
}

// writeClosures emits one storm per day starting 2023-01-02, with 3-8
// flooded streets per storm drawn from the weighted pool, plus a couple
// of non-flood closures per day for the loader to filter.
func writeClosures(path string, rng *rand.Rand, storms int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"STREET", "START", "REASON"}); err != nil {
		return err
	}

	day := time.Date(2023, time.January, 2, 0, 0, 0, 0, time.UTC)
	for s := 0; s < storms; s++ {
		flooded := pickStreets(rng, 3+rng.Intn(6))
		for _, street := range flooded {
			at := day.Add(time.Duration(6+rng.Intn(12)) * time.Hour).Add(time.Duration(rng.Intn(60)) * time.Minute)
			if err := w.Write([]string{street, at.Format("2006-01-02 15:04:05"), "FLOOD"}); err != nil {
				return err
			}
		}
		for i := 0; i < 2; i++ {
			at := day.Add(time.Duration(rng.Intn(24)) * time.Hour)
			row := []string{
				streets[rng.Intn(len(streets))],
				at.Format("2006-01-02 15:04:05"),
				otherReasons[rng.Intn(len(otherReasons))],
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
		day = day.AddDate(0, 0, 1+rng.Intn(14))
	}

	return w.Error()
}

// writeObservations emits a single storm timeline: confirmed sightings a
// few minutes apart over roughly an hour, so a 10-minute window setting
// yields a handful of windows.
func writeObservations(path string, rng *rand.Rand) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"street", "start_time", "split"}); err != nil {
		return err
	}

	at := time.Date(2024, time.August, 6, 12, 19, 0, 0, time.UTC)
	for _, street := range pickStreets(rng, 8) {
		if err := w.Write([]string{street, at.Format("2006-01-02 15:04:05"), "test"}); err != nil {
			return err
		}
		at = at.Add(time.Duration(3+rng.Intn(9)) * time.Minute)
	}

	return w.Error()
}

// pickStreets samples n distinct streets, biased toward the front of the
// pool so the same core streets recur across storms.
func pickStreets(rng *rand.Rand, n int) []string {
	picked := make(map[string]struct{}, n)
	out := make([]string, 0, n)
	for len(out) < n && len(out) < len(streets) {
		// Triangular-ish bias: the min of two uniform draws skews low.
		i := rng.Intn(len(streets))
		if j := rng.Intn(len(streets)); j < i {
			i = j
		}
		s := streets[i]
		if _, ok := picked[s]; ok {
			continue
		}
		picked[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
