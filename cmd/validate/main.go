// Command validate performs integrity checks over a directory of emitted
// window documents: file ordering, cross-window evidence monotonicity,
// per-document consistency (counts, probability bounds, evidence
// pinning), static-section stability, and round-trip stability.
//
// Usage:
//
//	go run ./cmd/validate -dir output/windows
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sort"

	"github.com/ZhangdingLiu/Charleston-Flood-Risk-Digital-Twin/internal/report"
)

// phase tracks pass/fail for one validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	dir := flag.String("dir", "", "directory containing window_NNN.json documents")
	flag.Parse()

	if *dir == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*dir); code != 0 {
		os.Exit(code)
	}
}

func run(dir string) int {
	fmt.Println("=== Window Document Integrity Validation ===")
	fmt.Println()

	docs, files, err := loadDocuments(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateOrdering(files, docs),
		validateMonotonicity(docs),
		validateConsistency(docs),
		validateStaticSections(docs),
		validateRoundTrip(dir, files),
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-44s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Documents: %d\n", len(docs))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

func loadDocuments(dir string) ([]report.Document, []string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "window_*.json"))
	if err != nil {
		return nil, nil, err
	}
	if len(matches) == 0 {
		return nil, nil, fmt.Errorf("no window documents in %s", dir)
	}
	sort.Strings(matches) // zero-padded names: lexical order is window order

	docs := make([]report.Document, 0, len(matches))
	files := make([]string, 0, len(matches))
	for _, path := range matches {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, nil, err
		}
		doc, err := report.Parse(data)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", path, err)
		}
		docs = append(docs, doc)
		files = append(files, filepath.Base(path))
	}
	return docs, files, nil
}

// ── Phase 1: Ordering ──
// Window IDs must be 1..N with filenames matching the naming scheme.

func validateOrdering(files []string, docs []report.Document) *phase {
	p := &phase{name: "Phase 1: File Ordering"}

	for i, doc := range docs {
		wantID := i + 1
		if doc.CurrentWindow.WindowID != wantID {
			p.errorf("%s: window_id %d, expected %d", files[i], doc.CurrentWindow.WindowID, wantID)
		}
		if want := report.FileName(wantID); files[i] != want {
			p.errorf("file %s does not match naming scheme %s", files[i], want)
		}
	}
	return p
}

// ── Phase 2: Evidence Monotonicity ──
// Evidence(k) must be a subset of Evidence(k+1), for both evidence views.

func validateMonotonicity(docs []report.Document) *phase {
	p := &phase{name: "Phase 2: Evidence Monotonicity"}

	for i := 1; i < len(docs); i++ {
		prev, cur := docs[i-1].CurrentWindow.Evidence, docs[i].CurrentWindow.Evidence
		for _, road := range missingFrom(prev.CumulativeEvidenceRoads, cur.CumulativeEvidenceRoads) {
			p.errorf("window %d: cumulative evidence road %q disappeared in window %d",
				docs[i-1].CurrentWindow.WindowID, road, docs[i].CurrentWindow.WindowID)
		}
		for _, road := range missingFrom(prev.NetworkEvidenceRoads, cur.NetworkEvidenceRoads) {
			p.errorf("window %d: network evidence road %q disappeared in window %d",
				docs[i-1].CurrentWindow.WindowID, road, docs[i].CurrentWindow.WindowID)
		}
	}
	return p
}

func missingFrom(prev, cur []string) []string {
	set := make(map[string]struct{}, len(cur))
	for _, s := range cur {
		set[s] = struct{}{}
	}
	var missing []string
	for _, s := range prev {
		if _, ok := set[s]; !ok {
			missing = append(missing, s)
		}
	}
	return missing
}

// ── Phase 3: Document Consistency ──
// Counts match list lengths, probabilities stay in [0,1], evidence roads
// are pinned to 1.0, and the prediction set covers every node.

func validateConsistency(docs []report.Document) *phase {
	p := &phase{name: "Phase 3: Document Consistency"}

	for _, doc := range docs {
		id := doc.CurrentWindow.WindowID
		ev := doc.CurrentWindow.Evidence

		if ev.EvidenceCount != len(ev.CumulativeEvidenceRoads) {
			p.errorf("window %d: evidence_count %d but %d cumulative roads", id, ev.EvidenceCount, len(ev.CumulativeEvidenceRoads))
		}
		if ev.NetworkEvidenceCount != len(ev.NetworkEvidenceRoads) {
			p.errorf("window %d: network_evidence_count %d but %d network roads", id, ev.NetworkEvidenceCount, len(ev.NetworkEvidenceRoads))
		}
		if got, want := len(doc.CurrentWindow.Predictions), len(doc.BayesianNetwork.AllNodes); got != want {
			p.errorf("window %d: %d predictions but %d nodes", id, got, want)
		}
		if got, want := doc.CurrentWindow.SummaryStats.TotalNonEvidenceRoads,
			len(doc.CurrentWindow.Predictions)-ev.NetworkEvidenceCount; got != want {
			p.errorf("window %d: total_non_evidence_roads %d, expected %d", id, got, want)
		}
		if doc.CurrentWindow.SummaryStats.HighRiskRoadsCount > doc.CurrentWindow.SummaryStats.TotalNonEvidenceRoads {
			p.errorf("window %d: high_risk_roads_count exceeds non-evidence road count", id)
		}

		for _, pred := range doc.CurrentWindow.Predictions {
			if pred.Probability < 0 || pred.Probability > 1 {
				p.errorf("window %d: %s probability %v out of [0,1]", id, pred.Road, pred.Probability)
			}
			if pred.IsEvidence && pred.Probability != 1.0 {
				p.errorf("window %d: evidence road %s not pinned to 1.0", id, pred.Road)
			}
		}
	}
	return p
}

// ── Phase 4: Static Sections ──
// Training info, network parameters, statistics, and the node list must
// be identical in every document of a run.

func validateStaticSections(docs []report.Document) *phase {
	p := &phase{name: "Phase 4: Static Section Stability"}

	first := docs[0]
	for _, doc := range docs[1:] {
		id := doc.CurrentWindow.WindowID
		if doc.TrainingDataInfo != first.TrainingDataInfo {
			p.errorf("window %d: training_data_info differs from window %d", id, first.CurrentWindow.WindowID)
		}
		if doc.BayesianNetwork.Parameters != first.BayesianNetwork.Parameters {
			p.errorf("window %d: network parameters differ from window %d", id, first.CurrentWindow.WindowID)
		}
		if doc.BayesianNetwork.Statistics != first.BayesianNetwork.Statistics {
			p.errorf("window %d: network statistics differ from window %d", id, first.CurrentWindow.WindowID)
		}
		if !reflect.DeepEqual(doc.BayesianNetwork.AllNodes, first.BayesianNetwork.AllNodes) {
			p.errorf("window %d: all_nodes differs from window %d", id, first.CurrentWindow.WindowID)
		}
	}
	return p
}

// ── Phase 5: Round Trip ──
// Parsing then re-serializing a document must reproduce it byte for byte.

func validateRoundTrip(dir string, files []string) *phase {
	p := &phase{name: "Phase 5: Round-Trip Stability"}

	for _, name := range files {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			p.errorf("%s: %v", name, err)
			continue
		}
		doc, err := report.Parse(data)
		if err != nil {
			p.errorf("%s: %v", name, err)
			continue
		}
		remarshaled, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			p.errorf("%s: re-marshal: %v", name, err)
			continue
		}
		if string(remarshaled) != string(data) {
			p.errorf("%s: re-serialized document differs from original", name)
		}
	}
	return p
}
