package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const maxErrorsEchoed = 10

// renderReport logs the end-of-run summary: duration, per-phase tallies
// with success percentage, and the first few recorded errors.
func (e *Engine) renderReport(r *Report) {
	mode := strings.ToUpper(strings.ReplaceAll(r.Mode, "_", " "))
	duration := r.EndTime.Sub(r.StartTime)

	e.logf("INFO", "=== %s REPORT ===", mode)
	e.logf("INFO", "Duration: %.2f seconds", duration.Seconds())

	for _, name := range phaseOrder {
		stats := r.Phases[name]
		rate := 0.0
		if stats.Attempted > 0 {
			rate = float64(stats.Successful) / float64(stats.Attempted) * 100
		}
		e.logf("INFO", "%s: %d/%d (%.1f%% success)", strings.ToUpper(name), stats.Successful, stats.Attempted, rate)
		if name == PhaseProducts && stats.Variants > 0 {
			e.logf("INFO", "  Variants: %d", stats.Variants)
		}
	}

	if len(r.Errors) > 0 {
		e.logf("INFO", "Errors: %d", len(r.Errors))
		for i, msg := range r.Errors {
			if i == maxErrorsEchoed {
				e.logf("INFO", "  ... and %d more", len(r.Errors)-maxErrorsEchoed)
				break
			}
			e.logf("INFO", "  - %s", msg)
		}
	}
	if r.Stopped {
		e.logf("WARNING", "Migration was stopped before completion")
	}
}

// saveReport writes the JSON artifact for this run and returns its path.
// The filename distinguishes dry runs from live runs.
func saveReport(dir string, r *Report) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create report dir: %w", err)
	}

	filename := fmt.Sprintf("migration_report_%s_%s.json", r.Mode, r.StartTime.Format("20060102_150405"))
	path := filepath.Join(dir, filename)

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("serialize report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}
