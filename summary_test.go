package bhavledger

import (
	"strings"
	"testing"
)

func TestRunSummaryStages(t *testing.T) {
	s := NewRunSummary()
	s.Stage("ingest").Updated = 5
	s.Stage("adjust").Failed = 1
	s.Stage("ingest").Skipped = 2 // same bucket

	if got := s.Stage("ingest"); got.Updated != 5 || got.Skipped != 2 {
		t.Errorf("ingest stage = %+v", got)
	}
	if len(s.Stages) != 2 {
		t.Errorf("Stages = %v want two entries in first-seen order", s.Stages)
	}
}

func TestRunSummaryMarkdown(t *testing.T) {
	s := NewRunSummary()
	s.Stage("ingest").Updated = 3
	s.Problem("adjust %s: %v", "RELIANCE", "boom")

	md := s.Markdown()
	for _, want := range []string{
		"| Stage | Updated | Skipped | Failed |",
		"| ingest | 3 | 0 | 0 |",
		"## Problems",
		"- adjust RELIANCE: boom",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("Markdown() missing %q:\n%s", want, md)
		}
	}
}

func TestRunSummaryMarkdownNoProblems(t *testing.T) {
	s := NewRunSummary()
	s.Stage("ingest")
	if strings.Contains(s.Markdown(), "Problems") {
		t.Error("Markdown() shows a Problems section with nothing to report")
	}
}

func TestStageResultAdd(t *testing.T) {
	a := StageResult{Updated: 1, Skipped: 2, Failed: 3}
	a.Add(StageResult{Updated: 10, Skipped: 20, Failed: 30})
	if a != (StageResult{Updated: 11, Skipped: 22, Failed: 33}) {
		t.Errorf("Add() = %+v", a)
	}
}
