// Package analysis builds the post-assessment competency analysis request.
// The returned text is opaque prose; it is never parsed for structure.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"

	_ "embed"

	"github.com/spigell/talentscout/internal/ai"
	"github.com/spigell/talentscout/internal/candidate"
	"github.com/spigell/talentscout/internal/interview"
	"go.uber.org/zap"
)

//go:embed prompt.md
var promptTemplate string

// Generate runs the analysis request once, after completion is reached.
func Generate(ctx context.Context, assistant ai.Assistant, profile candidate.Profile, pairs []interview.QAPair, log *zap.Logger) (string, error) {
	if log == nil {
		log = zap.NewNop()
	}

	prompt := BuildPrompt(profile, pairs)

	log.Info("requesting candidate analysis", zap.Int("qa_pairs", len(pairs)))

	text, err := assistant.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("analysis call: %w", err)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", errors.New("analysis call returned no text")
	}

	return text, nil
}

// BuildPrompt embeds the analysis framing of the profile and the full QA list
// as literal Q:/A: lines. Phone and location are intentionally left out of
// the framing.
func BuildPrompt(profile candidate.Profile, pairs []interview.QAPair) string {
	prompt := strings.ReplaceAll(promptTemplate, "{{CANDIDATE_INFO}}", formatForAnalysis(profile))
	return strings.ReplaceAll(prompt, "{{QA_PAIRS}}", formatPairs(pairs))
}

func formatForAnalysis(profile candidate.Profile) string {
	parts := make([]string, 0, 5)

	if profile.FullName != "" {
		parts = append(parts, "Name: "+profile.FullName)
	}
	if profile.Email != "" {
		parts = append(parts, "Email: "+profile.Email)
	}
	if profile.YearsOfExperience != 0 {
		parts = append(parts, fmt.Sprintf("Experience: %s years", profile.Experience()))
	}
	if len(profile.DesiredPositions) > 0 {
		parts = append(parts, "Desired Role(s): "+profile.Positions())
	}
	if !profile.TechStack.IsZero() {
		parts = append(parts, "Tech Stack: "+profile.TechStack.Flatten())
	}

	return strings.Join(parts, "\n")
}

func formatPairs(pairs []interview.QAPair) string {
	lines := make([]string, 0, len(pairs))
	for _, pair := range pairs {
		lines = append(lines, fmt.Sprintf("Q: %s\nA: %s", pair.Question, pair.Answer))
	}
	return strings.Join(lines, "\n")
}
