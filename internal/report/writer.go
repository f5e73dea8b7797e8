package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Emitted describes one document already written, for the progress API.
type Emitted struct {
	WindowID int    `json:"window_id"`
	File     string `json:"file"`
}

// Writer persists window documents under a directory in strict window
// order (window_001.json, window_002.json, ...) so the orchestration
// collaborator can discover and process them sequentially. It remembers
// what it wrote; the run loop writes while the progress API reads, hence
// the mutex.
type Writer struct {
	dir string

	mu       sync.Mutex
	emitted  []Emitted
	payloads map[int][]byte
}

// NewWriter creates the output directory if needed.
func NewWriter(dir string) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir %s: %w", dir, err)
	}
	return &Writer{dir: dir, payloads: make(map[int][]byte)}, nil
}

// Write emits the document for the next window. Writing out of order is
// refused: a gap in the sequence would break every downstream consumer's
// completeness assumption.
func (w *Writer) Write(doc Document) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	id := doc.CurrentWindow.WindowID
	if want := len(w.emitted) + 1; id != want {
		return "", fmt.Errorf("window %d written out of order, expected %d", id, want)
	}

	payload, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal window %d: %w", id, err)
	}

	name := FileName(id)
	path := filepath.Join(w.dir, name)
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}

	w.emitted = append(w.emitted, Emitted{WindowID: id, File: name})
	w.payloads[id] = payload
	return path, nil
}

// Emitted lists written documents in window order.
func (w *Writer) Emitted() []Emitted {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]Emitted, len(w.emitted))
	copy(out, w.emitted)
	return out
}

// Payload returns the serialized bytes of an emitted window document.
func (w *Writer) Payload(windowID int) ([]byte, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	p, ok := w.payloads[windowID]
	return p, ok
}

// FileName is the stable naming scheme; zero-padding keeps lexical and
// window order identical.
func FileName(windowID int) string {
	return fmt.Sprintf("window_%03d.json", windowID)
}
