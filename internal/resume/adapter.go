package resume

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	_ "embed"

	"github.com/spigell/talentscout/internal/ai"
	"github.com/spigell/talentscout/internal/candidate"
	"github.com/spigell/talentscout/internal/logger"
	"go.uber.org/zap"
)

//go:embed extraction_prompt.md
var extractionPrompt string

// ErrNoObject is returned when the model reply carries no parseable object.
// Callers treat it as recoverable and fall back to conversational collection.
var ErrNoObject = errors.New("no json object found in model response")

// ExtractProfile asks the model for the seven profile fields as a single
// structured object and decodes whatever comes back. The model is not trusted
// to emit only the object; the first balanced object substring is used and
// any decode failure yields an empty profile with an error.
func ExtractProfile(ctx context.Context, assistant ai.Assistant, resumeText string, log *zap.Logger) (candidate.Profile, error) {
	if log == nil {
		log = zap.NewNop()
	}

	prompt := strings.ReplaceAll(extractionPrompt, "{{RESUME_TEXT}}", resumeText)

	raw, err := assistant.Generate(ctx, prompt)
	if err != nil {
		return candidate.Profile{}, fmt.Errorf("extraction call: %w", err)
	}

	log.Debug("extraction response",
		zap.String("response_preview", logger.TruncateForLog(raw, 200)),
	)

	object := firstBalancedObject(stripCodeFence(raw))
	if object == "" {
		return candidate.Profile{}, ErrNoObject
	}

	var fields map[string]any
	if err := json.Unmarshal([]byte(object), &fields); err != nil {
		return candidate.Profile{}, fmt.Errorf("malformed object in model response: %w", err)
	}

	profile, err := candidate.DecodeMap(fields)
	if err != nil {
		return candidate.Profile{}, fmt.Errorf("decode extracted fields: %w", err)
	}

	log.Info("resume fields extracted", zap.Int("satisfied_fields", profile.SatisfiedCount()))

	return profile, nil
}

// stripCodeFence removes a surrounding markdown code block when the model
// wraps its output in one.
func stripCodeFence(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	return strings.TrimSpace(strings.Trim(raw, "`"))
}

// firstBalancedObject returns the first balanced {...} substring, honoring
// string literals and escapes, or "" when none exists.
func firstBalancedObject(s string) string {
	start := strings.IndexByte(s, '{')
	if start == -1 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(s); i++ {
		c := s[i]

		if escaped {
			escaped = false
			continue
		}

		switch {
		case inString && c == '\\':
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}

	return ""
}
