// Package voice defines the speech-capture collaborator boundary. Capture
// and transcription are external services; failures never propagate past
// this package as anything but "no speech".
package voice

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Transcriber captures speech for up to the given duration and returns the
// transcript. ok is false when no speech was detected or transcription
// failed; the caller falls back to text input for that turn.
type Transcriber interface {
	Transcribe(ctx context.Context, duration time.Duration) (text string, ok bool)
}

// Unavailable is the transcriber used when no speech backend is configured.
// It always reports no speech.
type Unavailable struct {
	logger *zap.Logger
}

// NewUnavailable creates the fallback transcriber.
func NewUnavailable(log *zap.Logger) *Unavailable {
	if log == nil {
		log = zap.NewNop()
	}
	return &Unavailable{logger: log}
}

func (u *Unavailable) Transcribe(_ context.Context, duration time.Duration) (string, bool) {
	u.logger.Debug("voice input requested but no speech backend is available",
		zap.Duration("duration", duration),
	)
	return "", false
}
