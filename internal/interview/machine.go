package interview

import (
	"context"
	"errors"
	"fmt"
	"strings"

	_ "embed"

	"github.com/spigell/talentscout/internal/ai"
	"github.com/spigell/talentscout/internal/candidate"
	"github.com/spigell/talentscout/internal/logger"
	"go.uber.org/zap"
)

//go:embed system_prompt.md
var systemPrompt string

//go:embed review_prompt.md
var reviewPromptTemplate string

const (
	chatGreeting = "Hello! I'm TalentScout, your AI hiring assistant. I'll help you through our initial screening process " +
		"by collecting some basic information and assessing your technical skills. Let's get started!\n\nWhat's your full name?"

	resumeGreetingFormat = "Hello! I'm TalentScout, your AI hiring assistant. I've analyzed your resume and extracted the following information:\n\n%s\n\n" +
		"Let me verify if I have everything I need, and I'll ask for any missing details."

	resumeGreetingEmpty = "Hello! I'm TalentScout, your AI hiring assistant. I couldn't extract information from your resume, " +
		"so let's collect it together in chat."

	farewell = "Thank you for your time! The session has ended. Goodbye!"
)

var (
	// ErrSessionClosed is returned for turns arriving after completion or an
	// exit keyword.
	ErrSessionClosed = errors.New("session is closed")

	// ErrWrongPhase is returned when an operation is invoked from a phase it
	// does not belong to.
	ErrWrongPhase = errors.New("operation not allowed in the current phase")
)

// Machine drives a single screening session through its phases. It is not
// safe for concurrent use: one turn is processed to completion before the
// next is accepted, which also guarantees at most one QA pair per turn.
type Machine struct {
	assistant  ai.Assistant
	baseLogger *zap.Logger
	logger     *zap.Logger
	session    *Session
}

// Turn is the outcome of one processed user turn.
type Turn struct {
	Reply      string
	Farewell   bool
	QARecorded bool
	Phase      Phase
}

// NewMachine creates a machine with a fresh session.
func NewMachine(assistant ai.Assistant, log *zap.Logger) *Machine {
	if log == nil {
		log = zap.NewNop()
	}
	m := &Machine{assistant: assistant, baseLogger: log}
	m.install(NewSession())
	return m
}

func (m *Machine) install(s *Session) {
	m.session = s
	m.logger = logger.WithSession(m.baseLogger, s.ID)
}

// Session exposes the aggregate for read access by the caller.
func (m *Machine) Session() *Session { return m.session }

// Reset discards the session entirely and starts a new one. Partial resets
// are not supported; phase and data always change together.
func (m *Machine) Reset() {
	m.install(NewSession())
	m.logger.Info("session reset")
}

// StartChat enters interactive collection and seeds the transcript with the
// fixed greeting plus the first field prompt.
func (m *Machine) StartChat() (string, error) {
	if m.session.Phase != PhaseModeSelection {
		return "", fmt.Errorf("%w: start chat from %s", ErrWrongPhase, m.session.Phase)
	}

	m.session.Phase = PhaseChatCollection
	m.session.append(RoleAssistant, chatGreeting)
	m.logger.Info("chat collection started")

	return chatGreeting, nil
}

// BeginResumeUpload enters the resume collection phase.
func (m *Machine) BeginResumeUpload() error {
	if m.session.Phase != PhaseModeSelection {
		return fmt.Errorf("%w: begin resume upload from %s", ErrWrongPhase, m.session.Phase)
	}
	m.session.Phase = PhaseResumeCollection
	return nil
}

// AttachResume seeds the session with whatever the extraction pass produced
// (possibly an empty profile) and moves to information review. The transcript
// is seeded with a natural-language rendering; raw structure never reaches
// the candidate.
func (m *Machine) AttachResume(extracted candidate.Profile) (string, error) {
	if m.session.Phase != PhaseResumeCollection {
		return "", fmt.Errorf("%w: attach resume from %s", ErrWrongPhase, m.session.Phase)
	}

	m.session.Profile = candidate.Merge(m.session.Profile, extracted)
	m.session.resumeProcessed = true
	m.session.Phase = PhaseInformationReview

	greeting := resumeGreetingEmpty
	if rendered := m.session.Profile.RenderNatural(); rendered != "" {
		greeting = fmt.Sprintf(resumeGreetingFormat, rendered)
	}
	m.session.append(RoleAssistant, greeting)

	m.logger.Info("resume attached",
		zap.Int("satisfied_fields", m.session.Profile.SatisfiedCount()),
	)

	return greeting, nil
}

// ReviewExtracted asks the model to verify the extracted information and
// either request missing fields or move on to the technical questions. The
// review query itself is not part of the candidate-visible transcript; only
// the assistant's reply is recorded.
func (m *Machine) ReviewExtracted(ctx context.Context) (string, error) {
	if m.session.Phase != PhaseInformationReview {
		return "", fmt.Errorf("%w: review from %s", ErrWrongPhase, m.session.Phase)
	}

	query := strings.ReplaceAll(reviewPromptTemplate, "{{CANDIDATE_INFO}}", m.session.Profile.RenderNatural())

	reply, err := m.assistant.Complete(ctx, systemPrompt, m.history(len(m.session.Messages)), query)
	if err != nil {
		return "", fmt.Errorf("reviewing extracted information: %w", err)
	}

	clean, signal := m.resolveSignal(reply)
	m.session.append(RoleAssistant, clean)
	m.applySignal(signal)

	return clean, nil
}

// ProcessTurn runs the per-turn algorithm: exit-keyword short circuit, append
// the user message unconditionally, QA pairing during the question phase, one
// generation call, then phase transitions from the reply. A failed generation
// call leaves the user message recorded and the phase unchanged; the caller
// may retry.
func (m *Machine) ProcessTurn(ctx context.Context, input string) (*Turn, error) {
	if m.session.Finished() {
		return nil, ErrSessionClosed
	}
	if !m.session.ModeSelected() {
		return nil, fmt.Errorf("%w: no interaction mode selected", ErrWrongPhase)
	}

	input = strings.TrimSpace(input)
	if input == "" {
		return nil, errors.New("empty input")
	}

	// Exit keywords short-circuit everything: fixed farewell, no generation
	// call, session over.
	if IsExitCommand(input) {
		m.session.append(RoleUser, input)
		m.session.append(RoleAssistant, farewell)
		m.session.Terminated = true
		m.logger.Info("session ended by exit keyword")
		return &Turn{Reply: farewell, Farewell: true, Phase: m.session.Phase}, nil
	}

	m.session.append(RoleUser, input)

	recorded := m.maybeRecordAnswer(input)

	reply, err := m.assistant.Complete(ctx, systemPrompt, m.history(len(m.session.Messages)-1), input)
	if err != nil {
		return nil, fmt.Errorf("generation call failed, the turn may be retried: %w", err)
	}

	clean, signal := m.resolveSignal(reply)
	m.session.append(RoleAssistant, clean)
	m.applySignal(signal)

	return &Turn{
		Reply:      clean,
		QARecorded: recorded,
		Phase:      m.session.Phase,
	}, nil
}

// maybeRecordAnswer pairs the new user message with the immediately preceding
// assistant message when that message reads as a question. A retried turn sits
// behind its own earlier user message, so it never re-pairs the same question.
// At most one pair is recorded per user turn, and only during the technical
// assessment.
func (m *Machine) maybeRecordAnswer(answer string) bool {
	if m.session.Phase != PhaseTechnicalAssessment {
		return false
	}

	idx := len(m.session.Messages) - 2
	if idx < 0 || m.session.Messages[idx].Role != RoleAssistant {
		return false
	}

	question := m.session.Messages[idx].Content
	if !IsQuestion(question) {
		return false
	}

	m.session.QAPairs = append(m.session.QAPairs, QAPair{Question: question, Answer: answer})
	m.logger.Debug("answer recorded",
		zap.Int("qa_pairs", len(m.session.QAPairs)),
		zap.String("question_preview", logger.TruncateForLog(question, 80)),
	)
	return true
}

// resolveSignal strips the control marker when present and falls back to the
// free-text detectors otherwise.
func (m *Machine) resolveSignal(reply string) (string, Signal) {
	clean, signal, ok := ExtractStateMarker(reply)
	if ok {
		m.logger.Debug("state marker parsed", zap.String("signal", signal.String()))
		return clean, signal
	}
	return clean, DetectSignal(m.logger, clean)
}

// applySignal performs the phase transitions a signal allows from the current
// phase. Completion only fires during the technical assessment; the
// assessment entry fires from either collection path.
func (m *Machine) applySignal(signal Signal) {
	from := m.session.Phase

	switch signal {
	case SignalAssessment:
		if from == PhaseChatCollection || from == PhaseInformationReview {
			m.session.Phase = PhaseTechnicalAssessment
		}
	case SignalComplete:
		if from == PhaseTechnicalAssessment {
			m.session.Phase = PhaseComplete
		}
	}

	if m.session.Phase != from {
		m.logger.Info("phase transition",
			zap.String("from", from.String()),
			zap.String("to", m.session.Phase.String()),
		)
	}
}

// history converts the transcript up to the given index into provider
// messages.
func (m *Machine) history(until int) []ai.Message {
	msgs := make([]ai.Message, 0, until)
	for _, msg := range m.session.Messages[:until] {
		role := ai.RoleUser
		if msg.Role == RoleAssistant {
			role = ai.RoleAssistant
		}
		msgs = append(msgs, ai.Message{Role: role, Content: msg.Content})
	}
	return msgs
}
