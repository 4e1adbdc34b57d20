// Package interview implements the screening conversation: the session
// aggregate, the phase state machine and the per-turn processing algorithm.
package interview

import (
	"github.com/google/uuid"
	"github.com/spigell/talentscout/internal/candidate"
)

// Role identifies the author of a transcript message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one transcript entry. The transcript is append-only; messages
// are never edited or truncated.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// QAPair is one technical question paired with the candidate's answer.
type QAPair struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Phase is a state of the conversation state machine.
type Phase int

const (
	PhaseModeSelection Phase = iota
	PhaseChatCollection
	PhaseResumeCollection
	PhaseInformationReview
	PhaseTechnicalAssessment
	PhaseComplete
)

func (p Phase) String() string {
	switch p {
	case PhaseModeSelection:
		return "mode_selection"
	case PhaseChatCollection:
		return "chat_collection"
	case PhaseResumeCollection:
		return "resume_collection"
	case PhaseInformationReview:
		return "information_review"
	case PhaseTechnicalAssessment:
		return "technical_assessment"
	case PhaseComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// Session is the aggregate root of one candidate screening. It is owned by
// the turn-processing loop and mutated monotonically; a reset always builds a
// brand-new Session instead of clearing fields in place.
type Session struct {
	ID       string
	Phase    Phase
	Profile  candidate.Profile
	Messages []Message
	QAPairs  []QAPair

	// Terminated is set when the candidate ends the session with an exit
	// keyword. No further turns are accepted.
	Terminated bool

	resumeProcessed bool
}

// NewSession creates an empty session in the initial phase.
func NewSession() *Session {
	return &Session{
		ID:    uuid.NewString(),
		Phase: PhaseModeSelection,
	}
}

// ModeSelected reports whether the candidate picked an interaction mode.
func (s *Session) ModeSelected() bool { return s.Phase != PhaseModeSelection }

// ResumeProcessed reports whether a resume extraction pass has run.
func (s *Session) ResumeProcessed() bool { return s.resumeProcessed }

// QuestionPhase reports whether the technical assessment is underway.
func (s *Session) QuestionPhase() bool { return s.Phase == PhaseTechnicalAssessment }

// AssessmentComplete reports whether completion was detected.
func (s *Session) AssessmentComplete() bool { return s.Phase == PhaseComplete }

// Finished reports whether the session accepts no further turns.
func (s *Session) Finished() bool { return s.Terminated || s.Phase == PhaseComplete }

func (s *Session) append(role Role, content string) {
	s.Messages = append(s.Messages, Message{Role: role, Content: content})
}
