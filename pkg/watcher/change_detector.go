package watcher

import (
	"slices"
)

// ChangeAnalysis describes which batch files a debounced event asks to apply
type ChangeAnalysis struct {
	Apply     []string // batch files to apply, deduplicated, in name order
	Withdrawn []string // batch files that disappeared; applied changes stay applied
}

// AnalyzeChanges determines which batch files need to be applied for an event.
// A file written several times in one burst is applied once.
func AnalyzeChanges(event ChangeEvent) *ChangeAnalysis {
	analysis := &ChangeAnalysis{}

	paths := slices.Clone(event.Paths)
	slices.Sort(paths)
	paths = slices.Compact(paths)

	switch event.Type {
	case ChangeTypeBatch:
		analysis.Apply = paths

	case ChangeTypeRemoved:
		analysis.Withdrawn = paths
	}

	return analysis
}
