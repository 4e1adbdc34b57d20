package analysis

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/spigell/talentscout/internal/ai"
	"github.com/spigell/talentscout/internal/candidate"
	"github.com/spigell/talentscout/internal/interview"
)

type assistantStub struct {
	reply string
	err   error
}

func (s assistantStub) Generate(_ context.Context, _ string) (string, error) {
	return s.reply, s.err
}

func (s assistantStub) Complete(ctx context.Context, _ string, _ []ai.Message, input string) (string, error) {
	return s.Generate(ctx, input)
}

func sampleProfile() candidate.Profile {
	return candidate.Profile{
		FullName:          "Jane Doe",
		Email:             "jane@example.com",
		PhoneNumber:       "+1 555 0100",
		YearsOfExperience: 5,
		DesiredPositions:  []string{"Backend Engineer"},
		CurrentLocation:   "Berlin",
		TechStack:         candidate.NewFlat("Go, Postgres"),
	}
}

func TestBuildPrompt(t *testing.T) {
	pairs := []interview.QAPair{
		{Question: "What is a goroutine?", Answer: "A lightweight thread managed by the runtime."},
		{Question: "How do you handle migrations?", Answer: "Versioned SQL files applied on deploy."},
	}

	prompt := BuildPrompt(sampleProfile(), pairs)

	for _, want := range []string{
		"Name: Jane Doe",
		"Experience: 5 years",
		"Tech Stack: Go, Postgres",
		"Q: What is a goroutine?",
		"A: Versioned SQL files applied on deploy.",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt should contain %q", want)
		}
	}

	// Contact details beyond email stay out of the analysis framing.
	if strings.Contains(prompt, "+1 555 0100") || strings.Contains(prompt, "Berlin") {
		t.Error("phone and location must not reach the analysis prompt")
	}

	if strings.Contains(prompt, "{{CANDIDATE_INFO}}") || strings.Contains(prompt, "{{QA_PAIRS}}") {
		t.Error("placeholders must not survive substitution")
	}
}

func TestBuildPromptEmptyInputs(t *testing.T) {
	prompt := BuildPrompt(candidate.Profile{}, nil)
	if strings.Contains(prompt, "{{") {
		t.Error("placeholders must not survive substitution")
	}
}

func TestGenerate(t *testing.T) {
	text, err := Generate(context.Background(), assistantStub{reply: "  Strong fundamentals.  "}, sampleProfile(), nil, nil)
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if text != "Strong fundamentals." {
		t.Errorf("text = %q", text)
	}
}

func TestGenerateEmptyReply(t *testing.T) {
	if _, err := Generate(context.Background(), assistantStub{reply: "   "}, sampleProfile(), nil, nil); err == nil {
		t.Fatal("expected an error for an empty analysis")
	}
}

func TestGenerateCallFailure(t *testing.T) {
	stub := assistantStub{err: errors.New("unavailable")}
	if _, err := Generate(context.Background(), stub, sampleProfile(), nil, nil); err == nil {
		t.Fatal("expected the call error to propagate")
	}
}
