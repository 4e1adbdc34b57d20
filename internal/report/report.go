// Package report renders a completed screening into its two persisted
// artifacts: a human-readable PDF and the authoritative JSON record.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/spigell/talentscout/internal/candidate"
	"github.com/spigell/talentscout/internal/interview"
	"go.uber.org/zap"
)

const (
	reportType  = "Technical Screening Assessment"
	generatedBy = "TalentScout AI"
	footerText  = "Generated by TalentScout AI Hiring Assistant"

	fallbackName = "Unknown_Candidate"

	timestampLayout = "20060102_150405"
)

// Report is a point-in-time immutable projection of a finished session. Both
// artifacts are rendered from the same snapshot.
type Report struct {
	Profile     candidate.Profile
	QAPairs     []interview.QAPair
	Analysis    string
	GeneratedAt time.Time
}

type jsonMetadata struct {
	GeneratedAt string `json:"generated_at"`
	ReportType  string `json:"report_type"`
	GeneratedBy string `json:"generated_by"`
}

type jsonAssessment struct {
	TotalQuestions int                `json:"total_questions"`
	QAPairs        []interview.QAPair `json:"qa_pairs"`
}

type jsonReport struct {
	ReportMetadata       jsonMetadata       `json:"report_metadata"`
	CandidateInformation candidate.Profile  `json:"candidate_information"`
	TechnicalAssessment  jsonAssessment     `json:"technical_assessment"`
	AIAnalysis           string             `json:"ai_analysis"`
}

// Assemble writes both artifacts into dir and returns their paths. The pair
// shares one timestamp-qualified base name. Publishing is atomic for the
// pair: both files are written under temporary names and renamed only after
// both writes succeed, so a failure never leaves a half-written pair behind.
func Assemble(dir string, profile candidate.Profile, pairs []interview.QAPair, analysis string, log *zap.Logger) (string, string, error) {
	if log == nil {
		log = zap.NewNop()
	}

	report := &Report{
		Profile:     profile,
		QAPairs:     pairs,
		Analysis:    analysis,
		GeneratedAt: time.Now(),
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", fmt.Errorf("create reports directory: %w", err)
	}

	base := baseName(profile.FullName, report.GeneratedAt)
	pdfPath := filepath.Join(dir, base+".pdf")
	jsonPath := filepath.Join(dir, base+".json")

	pdfTmp := pdfPath + ".tmp"
	jsonTmp := jsonPath + ".tmp"

	cleanup := func() {
		os.Remove(pdfTmp)
		os.Remove(jsonTmp)
	}

	if err := writePDF(pdfTmp, report); err != nil {
		cleanup()
		return "", "", fmt.Errorf("write pdf artifact: %w", err)
	}

	if err := writeJSON(jsonTmp, report); err != nil {
		cleanup()
		return "", "", fmt.Errorf("write json artifact: %w", err)
	}

	if err := os.Rename(pdfTmp, pdfPath); err != nil {
		cleanup()
		return "", "", fmt.Errorf("publish pdf artifact: %w", err)
	}

	if err := os.Rename(jsonTmp, jsonPath); err != nil {
		os.Remove(pdfPath)
		cleanup()
		return "", "", fmt.Errorf("publish json artifact: %w", err)
	}

	log.Info("reports generated",
		zap.String("pdf", pdfPath),
		zap.String("json", jsonPath),
		zap.Int("qa_pairs", len(pairs)),
	)

	return pdfPath, jsonPath, nil
}

var unsafeChars = regexp.MustCompile(`[^\w\s-]`)

// baseName derives the shared artifact base name: the candidate name reduced
// to word characters, spaces and hyphens, spaces turned into underscores,
// suffixed with the capture timestamp.
func baseName(name string, ts time.Time) string {
	if strings.TrimSpace(name) == "" {
		name = fallbackName
	}

	safe := unsafeChars.ReplaceAllString(name, "")
	safe = strings.TrimSpace(safe)
	safe = strings.ReplaceAll(safe, " ", "_")
	if safe == "" {
		safe = fallbackName
	}

	return fmt.Sprintf("%s_%s", safe, ts.Format(timestampLayout))
}

func writeJSON(path string, r *Report) error {
	pairs := r.QAPairs
	if pairs == nil {
		pairs = []interview.QAPair{}
	}

	payload := jsonReport{
		ReportMetadata: jsonMetadata{
			GeneratedAt: r.GeneratedAt.Format(time.RFC3339),
			ReportType:  reportType,
			GeneratedBy: generatedBy,
		},
		CandidateInformation: r.Profile,
		TechnicalAssessment: jsonAssessment{
			TotalQuestions: len(pairs),
			QAPairs:        pairs,
		},
		AIAnalysis: r.Analysis,
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	return os.WriteFile(path, data, 0o644)
}
