// Package gemini implements the assistant contract on top of the Google
// GenAI chat API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/spigell/talentscout/internal/ai"
	"github.com/spigell/talentscout/internal/logger"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

const (
	defaultModel      = "gemini-2.5-flash"
	defaultMaxRetries = 2
	defaultMaxLogLen  = 200

	// Quota errors carrying a longer suggested delay than this are not worth
	// waiting out in an interactive session.
	maxQuotaDelay = 30 * time.Second

	retryBaseDelay = 2 * time.Second
)

// wait sleeps out a retry delay but returns early when the context is
// canceled. It is a seam for tests.
var wait = func(ctx context.Context, delay time.Duration) bool {
	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

type chatSession interface {
	SendMessage(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

type chatCreator interface {
	Create(ctx context.Context, model string, config *genai.GenerateContentConfig, history []*genai.Content) (chatSession, error)
}

type genaiChats struct {
	client *genai.Client
}

func (c *genaiChats) Create(ctx context.Context, model string, config *genai.GenerateContentConfig, history []*genai.Content) (chatSession, error) {
	return c.client.Chats.Create(ctx, model, config, history)
}

// Generator talks to Gemini. Every call carries the system instruction and
// the full prior history; nothing is kept server side between turns.
type Generator struct {
	chats      chatCreator
	model      string
	maxRetries int
	maxLogLen  int
	logger     *zap.Logger
}

// NewGenerator creates a Generator configured for the Gemini API backend.
func NewGenerator(ctx context.Context, apiKey, model string, maxRetries int, log *zap.Logger) (*Generator, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	if model = strings.TrimSpace(model); model == "" {
		model = defaultModel
	}
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Generator{
		chats:      &genaiChats{client: client},
		model:      model,
		maxRetries: maxRetries,
		maxLogLen:  defaultMaxLogLen,
		logger:     logger.WithAI(log, "gemini", model),
	}, nil
}

// Model returns the configured model identifier.
func (g *Generator) Model() string {
	if g == nil {
		return ""
	}
	return g.model
}

// Complete sends the user input with the provided system instruction and
// history and returns the model's reply. Transient API errors are retried up
// to the configured budget with a short backoff.
func (g *Generator) Complete(ctx context.Context, system string, history []ai.Message, input string) (string, error) {
	if g == nil || g.chats == nil {
		return "", errors.New("gemini generator is not initialized")
	}

	input = strings.TrimSpace(input)
	if input == "" {
		return "", errors.New("input must not be empty")
	}

	config := &genai.GenerateContentConfig{}
	if system = strings.TrimSpace(system); system != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: system}},
		}
	}

	contents := toContents(history)

	g.logger.Debug("gemini request",
		zap.Int("history_messages", len(contents)),
		zap.Int("input_length", utf8.RuneCountInString(input)),
		zap.String("input_preview", logger.TruncateForLog(input, g.maxLogLen)),
	)

	var lastErr error
	for attempt := 1; attempt <= g.maxRetries; attempt++ {
		chat, err := g.chats.Create(ctx, g.model, config, contents)
		if err != nil {
			lastErr = fmt.Errorf("create chat: %w", err)
			if !g.waitBeforeRetry(ctx, err, attempt) {
				break
			}
			continue
		}

		resp, err := chat.SendMessage(ctx, genai.Part{Text: input})
		if err != nil {
			lastErr = fmt.Errorf("send message: %w", err)
			if !g.waitBeforeRetry(ctx, err, attempt) {
				break
			}
			continue
		}

		output := flattenResponse(resp)
		if output == "" {
			lastErr = errors.New("gemini api returned empty response")
			if !g.waitBeforeRetry(ctx, lastErr, attempt) {
				break
			}
			continue
		}

		g.logger.Debug("gemini response",
			zap.Int("response_length", utf8.RuneCountInString(output)),
			zap.String("response_preview", logger.TruncateForLog(output, g.maxLogLen)),
		)

		return output, nil
	}

	return "", lastErr
}

// Generate answers a single standalone prompt without history.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	return g.Complete(ctx, "", nil, prompt)
}

// waitBeforeRetry classifies the error and, when another attempt remains and
// the failure is transient, sleeps out the backoff. It returns false when the
// loop should stop.
func (g *Generator) waitBeforeRetry(ctx context.Context, err error, attempt int) bool {
	if attempt >= g.maxRetries {
		return false
	}

	delay, retryable := retryDelay(err, attempt)
	if !retryable {
		return false
	}

	g.logger.Debug("retrying gemini call",
		zap.Int("attempt", attempt),
		zap.Duration("delay", delay),
		zap.Error(err),
	)

	return wait(ctx, delay)
}

var retryAfterSeconds = regexp.MustCompile(`retry after (\d+) seconds`)

// retryDelay decides whether an error is worth retrying and how long to wait.
// Server-side errors back off exponentially; quota errors honor the suggested
// delay unless it exceeds the interactive cutoff. Empty responses get one
// quick retry.
func retryDelay(err error, attempt int) (time.Duration, bool) {
	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		if err != nil && strings.Contains(err.Error(), "empty response") {
			return retryBaseDelay, true
		}
		return 0, false
	}

	switch {
	case apiErr.Code >= http.StatusInternalServerError:
		return retryBaseDelay * time.Duration(attempt), true
	case apiErr.Code == http.StatusTooManyRequests:
		delay := retryBaseDelay * time.Duration(attempt)
		if match := retryAfterSeconds.FindStringSubmatch(strings.ToLower(apiErr.Message)); match != nil {
			seconds, convErr := strconv.Atoi(match[1])
			if convErr == nil {
				delay = time.Duration(seconds) * time.Second
			}
		}
		if delay > maxQuotaDelay {
			return 0, false
		}
		return delay, true
	default:
		return 0, false
	}
}

func toContents(history []ai.Message) []*genai.Content {
	contents := make([]*genai.Content, 0, len(history))
	for _, msg := range history {
		role := genai.RoleUser
		if msg.Role == ai.RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{{Text: msg.Content}},
		})
	}
	return contents
}

func flattenResponse(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}

	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(text)
		}
	}

	return strings.TrimSpace(builder.String())
}
