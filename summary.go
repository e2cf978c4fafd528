package bhavledger

import (
	"fmt"
	"strings"
)

// StageResult counts per-symbol outcomes for one pipeline stage.
type StageResult struct {
	Updated int
	Skipped int
	Failed  int
}

// Add folds another result into s.
func (s *StageResult) Add(o StageResult) {
	s.Updated += o.Updated
	s.Skipped += o.Skipped
	s.Failed += o.Failed
}

// RunSummary aggregates the end-of-run report. Per-symbol failures are
// collected here instead of aborting the batch.
type RunSummary struct {
	Stages   []string
	byStage  map[string]*StageResult
	Problems []string
}

// NewRunSummary returns an empty summary.
func NewRunSummary() *RunSummary {
	return &RunSummary{byStage: make(map[string]*StageResult)}
}

// Stage returns the (created on demand) result bucket for a stage name.
func (r *RunSummary) Stage(name string) *StageResult {
	if res, ok := r.byStage[name]; ok {
		return res
	}
	res := &StageResult{}
	r.byStage[name] = res
	r.Stages = append(r.Stages, name)
	return res
}

// Problem records a non-fatal per-symbol failure.
func (r *RunSummary) Problem(format string, args ...any) {
	r.Problems = append(r.Problems, fmt.Sprintf(format, args...))
}

// Markdown renders the summary as a markdown report.
func (r *RunSummary) Markdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Pipeline Run Summary\n\n")
	fmt.Fprintf(&b, "| Stage | Updated | Skipped | Failed |\n")
	fmt.Fprintf(&b, "|---|---:|---:|---:|\n")
	for _, name := range r.Stages {
		res := r.byStage[name]
		fmt.Fprintf(&b, "| %s | %d | %d | %d |\n", name, res.Updated, res.Skipped, res.Failed)
	}
	if len(r.Problems) > 0 {
		fmt.Fprintf(&b, "\n## Problems\n\n")
		for _, p := range r.Problems {
			fmt.Fprintf(&b, "- %s\n", p)
		}
	}
	return b.String()
}
