package gemini

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/spigell/resume-matcher/internal/ai"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type stubGenerator struct {
	response   string
	err        error
	lastSystem string
	lastPrompt string
}

func (s *stubGenerator) GenerateContent(_ context.Context, system, prompt string) (string, error) {
	s.lastSystem = system
	s.lastPrompt = prompt
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func (s *stubGenerator) Model() string {
	return "stub-model"
}

const sampleResponse = "Candidate Name: Jane Doe; Email ID: jane@example.com; Phone Number: 555-0100; " +
	"Highest Qualification: MSc; Skills: Python, SQL, Machine Learning; Languages: English; " +
	"Companies: {'Acme': 'Data Scientist'}; Experience: {'Data Scientist': '2.5', 'Analyst': '1'};"

func TestExtractorExtract(t *testing.T) {
	t.Parallel()

	stub := &stubGenerator{response: sampleResponse}
	extractor := NewExtractor(stub, zap.NewNop(), 0)

	got, err := extractor.Extract(context.Background(), "  Jane Doe, Python developer  ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.Model != "stub-model" || got.Raw != sampleResponse {
		t.Fatalf("unexpected extraction metadata: %+v", got)
	}
	if got.Profile.Name != "Jane Doe" || got.Profile.Email != "jane@example.com" {
		t.Fatalf("unexpected profile: %+v", got.Profile)
	}
	if strings.Join(got.Profile.Skills, "|") != "Python|SQL|Machine Learning" {
		t.Fatalf("unexpected skills: %v", got.Profile.Skills)
	}
	if years, ok := got.Profile.Experience.Years("Data Scientist"); !ok || years != 2.5 {
		t.Fatalf("unexpected experience: %+v", got.Profile.Experience)
	}
	if got.Profile.TotalYears() != 3.5 {
		t.Fatalf("expected total 3.5, got %v", got.Profile.TotalYears())
	}

	if stub.lastSystem != systemPrompt || !strings.Contains(stub.lastSystem, "Candidate Name:") {
		t.Fatalf("expected embedded system prompt to be sent")
	}
	if !strings.Contains(stub.lastPrompt, "Resume Text:\nJane Doe, Python developer\n") {
		t.Fatalf("unexpected prompt: %q", stub.lastPrompt)
	}
}

func TestExtractorStripsCodeFences(t *testing.T) {
	t.Parallel()

	stub := &stubGenerator{response: "```text\nSkills: Go, SQL; Experience: {'Engineer': 3}\n```"}
	got, err := NewExtractor(stub, nil, 0).Extract(context.Background(), "resume")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Join(got.Profile.Skills, "|") != "Go|SQL" {
		t.Fatalf("unexpected skills: %v", got.Profile.Skills)
	}
	if years, _ := got.Profile.Experience.Years("Engineer"); years != 3 {
		t.Fatalf("unexpected experience: %+v", got.Profile.Experience)
	}
}

func TestExtractorEmptyResume(t *testing.T) {
	t.Parallel()

	stub := &stubGenerator{response: sampleResponse}
	if _, err := NewExtractor(stub, nil, 0).Extract(context.Background(), " \n "); !errors.Is(err, ai.ErrEmptyResume) {
		t.Fatalf("expected ErrEmptyResume, got %v", err)
	}
	if stub.lastPrompt != "" {
		t.Fatalf("expected no model call for empty resume")
	}
}

func TestExtractorGeneratorError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	_, err := NewExtractor(&stubGenerator{err: boom}, nil, 0).Extract(context.Background(), "resume")
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped generator error, got %v", err)
	}
}

func TestExtractorWarnsOnUnusableResponse(t *testing.T) {
	t.Parallel()

	core, observed := observer.New(zapcore.DebugLevel)
	stub := &stubGenerator{response: "I could not read this resume"}

	got, err := NewExtractor(stub, zap.New(core), 10).Extract(context.Background(), "resume")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.Profile.Skills) != 0 || len(got.Profile.Skipped) != 1 {
		t.Fatalf("unexpected profile: %+v", got.Profile)
	}

	warnings := observed.FilterMessage("model response has neither skills nor experience").All()
	if len(warnings) != 1 {
		t.Fatalf("expected a warning, got %d", len(warnings))
	}
	if preview := warnings[0].ContextMap()["response_preview"]; preview != "I could no..." {
		t.Fatalf("unexpected preview: %q", preview)
	}
}

func TestStripFences(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input  string
		expect string
	}{
		{input: "Skills: Go", expect: "Skills: Go"},
		{input: "```\nSkills: Go\n```", expect: "Skills: Go"},
		{input: "```Skills: Go```", expect: "Skills: Go"},
		{input: "  ```markdown\nSkills: Go;\n```  ", expect: "Skills: Go;"},
	}

	for _, tt := range tests {
		if got := stripFences(tt.input); got != tt.expect {
			t.Fatalf("stripFences(%q) = %q, want %q", tt.input, got, tt.expect)
		}
	}
}
