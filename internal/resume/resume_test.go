package resume

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/spigell/talentscout/internal/ai"
)

func TestCleanText(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "bullets become commas",
			raw:  "Skills:\n• Go • Docker\n▪ Kubernetes",
			want: "Skills:, Go, Docker, Kubernetes",
		},
		{
			name: "whitespace runs collapse",
			raw:  "Jane   Doe\n\n\tBackend   Engineer",
			want: "Jane Doe Backend Engineer",
		},
		{
			name: "no space before punctuation",
			raw:  "Experienced developer .  Ships reliable systems ,fast",
			want: "Experienced developer. Ships reliable systems,fast",
		},
		{
			name: "empty input",
			raw:  "  \n\t ",
			want: "",
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := CleanText(c.raw); got != c.want {
				t.Errorf("CleanText(%q) = %q, want %q", c.raw, got, c.want)
			}
		})
	}
}

func TestExtractTextMissingFile(t *testing.T) {
	if _, err := ExtractText("testdata/does-not-exist.pdf"); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

func TestStripCodeFence(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want string
	}{
		{"fenced json", "```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"bare fence", "```\n{\"a\": 1}\n```", `{"a": 1}`},
		{"no fence", `{"a": 1}`, `{"a": 1}`},
		{"surrounding whitespace", "  {\"a\": 1}  ", `{"a": 1}`},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := stripCodeFence(c.raw); got != c.want {
				t.Errorf("stripCodeFence(%q) = %q, want %q", c.raw, got, c.want)
			}
		})
	}
}

func TestFirstBalancedObject(t *testing.T) {
	cases := []struct {
		name string
		s    string
		want string
	}{
		{
			name: "object with commentary around it",
			s:    `Here is the data: {"name": "Jane"} hope that helps`,
			want: `{"name": "Jane"}`,
		},
		{
			name: "nested objects",
			s:    `{"tech_stack": {"languages": ["Go"]}}`,
			want: `{"tech_stack": {"languages": ["Go"]}}`,
		},
		{
			name: "braces inside string literals",
			s:    `{"note": "uses {braces} and \"quotes\""}`,
			want: `{"note": "uses {braces} and \"quotes\""}`,
		},
		{
			name: "unbalanced",
			s:    `{"name": "Jane"`,
			want: "",
		},
		{
			name: "no object",
			s:    "sorry, I cannot help with that",
			want: "",
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := firstBalancedObject(c.s); got != c.want {
				t.Errorf("firstBalancedObject(%q) = %q, want %q", c.s, got, c.want)
			}
		})
	}
}

// assistantStub serves a canned one-shot reply.
type assistantStub struct {
	reply      string
	err        error
	onGenerate func(prompt string)
}

func (s assistantStub) Generate(_ context.Context, prompt string) (string, error) {
	if s.onGenerate != nil {
		s.onGenerate(prompt)
	}
	return s.reply, s.err
}

func (s assistantStub) Complete(ctx context.Context, _ string, _ []ai.Message, input string) (string, error) {
	return s.Generate(ctx, input)
}

func TestExtractProfile(t *testing.T) {
	fake := assistantStub{reply: "Sure! ```json\n" + `{
		"full_name": "Jane Doe",
		"email": "jane@example.com",
		"years_of_experience": "7 years",
		"tech_stack": {"languages": ["Go", "Python"]}
	}` + "\n```"}

	profile, err := ExtractProfile(context.Background(), fake, "Jane Doe, jane@example.com, 7 years with Go", nil)
	if err != nil {
		t.Fatalf("ExtractProfile() error: %v", err)
	}

	if profile.FullName != "Jane Doe" {
		t.Errorf("full name = %q", profile.FullName)
	}
	if profile.YearsOfExperience != 7 {
		t.Errorf("experience = %v, want 7", profile.YearsOfExperience)
	}
	if !strings.Contains(profile.TechStack.Flatten(), "Go") {
		t.Errorf("tech stack = %q", profile.TechStack.Flatten())
	}
}

func TestExtractProfileSubstitutesResumeText(t *testing.T) {
	var seen string
	fake := assistantStub{reply: `{"full_name": "Jane"}`, onGenerate: func(prompt string) { seen = prompt }}

	if _, err := ExtractProfile(context.Background(), fake, "RESUME BODY HERE", nil); err != nil {
		t.Fatalf("ExtractProfile() error: %v", err)
	}
	if !strings.Contains(seen, "RESUME BODY HERE") {
		t.Error("resume text should be substituted into the prompt")
	}
	if strings.Contains(seen, "{{RESUME_TEXT}}") {
		t.Error("placeholder must not survive substitution")
	}
}

func TestExtractProfileNoObject(t *testing.T) {
	fake := assistantStub{reply: "I could not find any information in this document."}

	profile, err := ExtractProfile(context.Background(), fake, "text", nil)
	if !errors.Is(err, ErrNoObject) {
		t.Fatalf("error = %v, want ErrNoObject", err)
	}
	if profile.SatisfiedCount() != 0 {
		t.Errorf("profile should be empty on failure, got %d satisfied fields", profile.SatisfiedCount())
	}
}

func TestExtractProfileGenerationFailure(t *testing.T) {
	fake := assistantStub{err: errors.New("quota exceeded")}

	if _, err := ExtractProfile(context.Background(), fake, "text", nil); err == nil {
		t.Fatal("expected the generation error to propagate")
	}
}
