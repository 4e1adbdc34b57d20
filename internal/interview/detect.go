package interview

import (
	"strings"

	"go.uber.org/zap"
)

// Signal is a phase-transition signal extracted from an assistant message.
type Signal int

const (
	SignalNone Signal = iota
	SignalCollecting
	SignalAssessment
	SignalComplete
)

func (s Signal) String() string {
	switch s {
	case SignalCollecting:
		return "collecting"
	case SignalAssessment:
		return "assessment"
	case SignalComplete:
		return "complete"
	default:
		return "none"
	}
}

// Detector inspects an assistant message for a phase-transition signal.
// Detectors run in order; the first match wins.
type Detector interface {
	Name() string
	Detect(message string) (Signal, bool)
}

// The free-text detectors are the compatibility path for replies that omit
// the [[STATE:...]] control token; ExtractStateMarker is authoritative when
// the token is present.
var defaultDetectors = []Detector{
	completionPhraseDetector{},
	assessmentEntryDetector{},
}

// DetectSignal runs the free-text detectors against the message and returns
// the first signal found.
func DetectSignal(logger *zap.Logger, message string) Signal {
	for _, detector := range defaultDetectors {
		signal, ok := detector.Detect(message)
		if !ok {
			continue
		}
		if logger != nil {
			logger.Debug("phase signal detected",
				zap.String("detector", detector.Name()),
				zap.String("signal", signal.String()),
			)
		}
		return signal
	}
	return SignalNone
}

const (
	markerOpen  = "[[STATE:"
	markerClose = "]]"
)

var markerSignals = map[string]Signal{
	"COLLECTING": SignalCollecting,
	"ASSESSMENT": SignalAssessment,
	"COMPLETE":   SignalComplete,
}

// ExtractStateMarker looks for a trailing [[STATE:...]] control token in the
// message. It returns the message with the token stripped, the parsed signal
// and whether a valid token was present. Unknown token values are stripped
// but report no signal.
func ExtractStateMarker(message string) (string, Signal, bool) {
	start := strings.LastIndex(message, markerOpen)
	if start == -1 {
		return message, SignalNone, false
	}

	rest := message[start+len(markerOpen):]
	end := strings.Index(rest, markerClose)
	if end == -1 {
		return message, SignalNone, false
	}

	value := strings.ToUpper(strings.TrimSpace(rest[:end]))
	clean := strings.TrimSpace(message[:start] + rest[end+len(markerClose):])

	signal, ok := markerSignals[value]
	if !ok {
		return clean, SignalNone, false
	}
	return clean, signal, true
}

// completionPhraseDetector matches the closed list of assessment-completion
// phrases by case-insensitive substring.
type completionPhraseDetector struct{}

var completionPhrases = []string{
	"that completes our technical assessment",
	"thank you for your time",
	"generating your detailed report",
	"concludes our technical assessment",
	"finished with the technical questions",
	"completed the assessment",
}

func (completionPhraseDetector) Name() string { return "completion_phrase" }

func (completionPhraseDetector) Detect(message string) (Signal, bool) {
	lower := strings.ToLower(message)
	for _, phrase := range completionPhrases {
		if strings.Contains(lower, phrase) {
			return SignalComplete, true
		}
	}
	return SignalNone, false
}

// assessmentEntryDetector infers entry into the question phase from the
// co-occurrence of the literal topic markers. This is a heuristic and may
// misfire on verbose model output; the state marker is preferred when
// present.
type assessmentEntryDetector struct{}

func (assessmentEntryDetector) Name() string { return "assessment_entry" }

func (assessmentEntryDetector) Detect(message string) (Signal, bool) {
	lower := strings.ToLower(message)
	if strings.Contains(lower, "technical") && strings.Contains(lower, "question") {
		return SignalAssessment, true
	}
	return SignalNone, false
}

var exitKeywords = map[string]bool{
	"bye":  true,
	"exit": true,
	"quit": true,
	"stop": true,
}

// IsExitCommand reports whether the input is one of the recognized
// conversation control tokens: exact match after trimming, case-insensitive.
func IsExitCommand(input string) bool {
	return exitKeywords[strings.ToLower(strings.TrimSpace(input))]
}

var questionOpeners = []string{
	"what", "how", "why", "when", "where",
	"can you", "could you", "would you",
	"explain", "describe", "tell me",
}

// IsQuestion reports whether an assistant message reads as a question: it
// contains a question mark or opens with one of the interrogative starters.
func IsQuestion(message string) bool {
	if strings.Contains(message, "?") {
		return true
	}

	lower := strings.ToLower(strings.TrimSpace(message))
	for _, opener := range questionOpeners {
		if strings.HasPrefix(lower, opener) {
			return true
		}
	}
	return false
}
