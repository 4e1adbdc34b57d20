package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/spigell/talentscout/internal/ai"
	"github.com/spigell/talentscout/internal/ai/gemini"
	"github.com/spigell/talentscout/internal/analysis"
	"github.com/spigell/talentscout/internal/candidate"
	"github.com/spigell/talentscout/internal/interview"
	"github.com/spigell/talentscout/internal/logger"
	"github.com/spigell/talentscout/internal/report"
	"github.com/spigell/talentscout/internal/resume"
	"github.com/spigell/talentscout/internal/secrets"
	"github.com/spigell/talentscout/internal/voice"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	PromptChatMode     = "Answer questions in chat"
	PromptResumeMode   = "Upload a resume (PDF)"
	PromptNewCandidate = "Screen a new candidate"
	PromptQuit         = "Quit"

	defaultVoiceDuration = 15 * time.Second
)

var errExit = errors.New("exit requested")

var modePrompt = promptui.Select{
	Label: "How would you like to proceed?",
	Items: []string{PromptChatMode, PromptResumeMode, PromptQuit},
}

var againPrompt = promptui.Select{
	Label: "Assessment finished",
	Items: []string{PromptNewCandidate, PromptQuit},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a candidate screening session",
	Run: func(_ *cobra.Command, _ []string) {
		run()
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("reports-dir", "r", "", "directory for generated assessment reports")

	viper.BindPFlag("reports-dir", runCmd.Flags().Lookup("reports-dir"))
}

// run is the main command for the cli. It owns the single-threaded turn
// loop: one user action is processed to completion before the next is read,
// so the session is never mutated concurrently.
func run() {
	ctx := context.Background()

	zlog, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		zlog.Fatal("getting a config", zap.Error(err))
	}

	if config == nil {
		zlog.Fatal("config is required")
	}

	zlog.Info("starting talentscout", zap.String("version", version))

	assistant, err := newAssistant(ctx, config, zlog)
	if err != nil {
		zlog.Fatal(
			"building the generation client",
			zap.Error(err),
			zap.String("hint", "set GEMINI_API_KEY_FILE or the 'ai.gemini.api-key-file' key in the configuration file"),
		)
	}

	transcriber := voice.NewUnavailable(zlog)
	if config.Voice != nil && config.Voice.Enabled {
		zlog.Warn("voice input is enabled but no speech backend is available; text input will be used")
	}

	machine := interview.NewMachine(assistant, zlog)

	for {
		if err := conduct(ctx, machine, assistant, config, transcriber, zlog); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			zlog.Fatal("screening failed", zap.Error(err))
		}

		_, action, err := againPrompt.Run()
		if err != nil || action == PromptQuit {
			return
		}

		machine.Reset()
	}
}

func newAssistant(ctx context.Context, config *Config, zlog *zap.Logger) (ai.Assistant, error) {
	if config.AI == nil || config.AI.Gemini == nil {
		return nil, errors.New("ai.gemini configuration is required")
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		Value: config.AI.Gemini.APIKey,
		File:  config.AI.Gemini.APIKeyFile,
	})
	if err != nil {
		return nil, err
	}

	return gemini.NewGenerator(ctx, apiKey, config.AI.Gemini.Model, config.AI.Gemini.MaxRetries, zlog)
}

// conduct runs one full screening: mode selection, collection, assessment
// and report generation.
func conduct(ctx context.Context, machine *interview.Machine, assistant ai.Assistant, config *Config, transcriber voice.Transcriber, zlog *zap.Logger) error {
	_, mode, err := modePrompt.Run()
	if err != nil {
		return errExit
	}

	switch mode {
	case PromptChatMode:
		greeting, err := machine.StartChat()
		if err != nil {
			return err
		}
		printAssistant(greeting)

	case PromptResumeMode:
		if err := startWithResume(ctx, machine, assistant, zlog); err != nil {
			return err
		}

	case PromptQuit:
		return errExit

	default:
		return fmt.Errorf("invalid mode: %s", mode)
	}

	if err := chatLoop(ctx, machine, config, transcriber, zlog); err != nil {
		return err
	}

	if !machine.Session().AssessmentComplete() {
		zlog.Info("session ended without a completed assessment; no report generated")
		return nil
	}

	return finish(ctx, machine, assistant, config, zlog)
}

func startWithResume(ctx context.Context, machine *interview.Machine, assistant ai.Assistant, zlog *zap.Logger) error {
	if err := machine.BeginResumeUpload(); err != nil {
		return err
	}

	pathPrompt := promptui.Prompt{Label: "Path to the resume PDF"}
	path, err := pathPrompt.Run()
	if err != nil {
		return errExit
	}

	extracted := candidate.Profile{}

	text, err := resume.ExtractText(path)
	if err != nil {
		zlog.Warn("could not read the resume; the assistant will collect the information in chat", zap.Error(err))
	} else {
		extracted, err = resume.ExtractProfile(ctx, assistant, text, zlog)
		if err != nil {
			zlog.Warn("could not extract information from the resume; the assistant will collect it in chat", zap.Error(err))
		}
	}

	greeting, err := machine.AttachResume(extracted)
	if err != nil {
		return err
	}
	printAssistant(greeting)

	reply, err := machine.ReviewExtracted(ctx)
	if err != nil {
		// Recoverable: the candidate can still answer in chat.
		zlog.Warn("information review failed; continue in chat", zap.Error(err))
		return nil
	}
	printAssistant(reply)

	return nil
}

// chatLoop reads user turns until the session finishes. A failed generation
// call is surfaced and the turn may be retried; the user message stays in
// the transcript either way.
func chatLoop(ctx context.Context, machine *interview.Machine, config *Config, transcriber voice.Transcriber, zlog *zap.Logger) error {
	inputPrompt := promptui.Prompt{Label: "You"}

	for !machine.Session().Finished() {
		input, err := inputPrompt.Run()
		if err != nil {
			return errExit
		}

		if input == "" {
			if text, ok := captureVoice(ctx, machine, config, transcriber); ok {
				input = text
			} else {
				continue
			}
		}

		turn, err := machine.ProcessTurn(ctx, input)
		if err != nil {
			if errors.Is(err, interview.ErrSessionClosed) {
				return nil
			}
			zlog.Warn("no reply for this turn; please try again", zap.Error(err))
			continue
		}

		printAssistant(turn.Reply)
	}

	return nil
}

// captureVoice is offered on an empty text turn during the question phase
// when voice input is enabled. No speech means the turn falls back to text.
func captureVoice(ctx context.Context, machine *interview.Machine, config *Config, transcriber voice.Transcriber) (string, bool) {
	if config.Voice == nil || !config.Voice.Enabled || !machine.Session().QuestionPhase() {
		return "", false
	}

	duration := defaultVoiceDuration
	if config.Voice.DurationSeconds > 0 {
		duration = time.Duration(config.Voice.DurationSeconds) * time.Second
	}

	return transcriber.Transcribe(ctx, duration)
}

// finish runs the one-shot analysis and writes the report pair.
func finish(ctx context.Context, machine *interview.Machine, assistant ai.Assistant, config *Config, zlog *zap.Logger) error {
	session := machine.Session()

	analysisText, err := analysis.Generate(ctx, assistant, session.Profile, session.QAPairs, zlog)
	if err != nil {
		zlog.Warn("candidate analysis could not be generated; the report will carry the Q&A record only", zap.Error(err))
		analysisText = "Analysis unavailable."
	}

	pdfPath, jsonPath, err := report.Assemble(config.ReportsDir, session.Profile, session.QAPairs, analysisText, zlog)
	if err != nil {
		return fmt.Errorf("assembling reports: %w", err)
	}

	fmt.Printf("\nAssessment complete. Reports saved to:\n  %s\n  %s\n\n", pdfPath, jsonPath)

	return nil
}

func printAssistant(message string) {
	fmt.Printf("\nTalentScout: %s\n\n", message)
}
