// Package resume turns an uploaded resume document into candidate profile
// data: first raw text extraction, then a best-effort structured pass through
// the language model.
package resume

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
)

var (
	whitespaceRun    = regexp.MustCompile(`\s+`)
	spaceBeforePunct = regexp.MustCompile(`\s+([.,!?])`)

	bulletReplacer = strings.NewReplacer("•", ", ", "●", ", ", "▪", ", ")
)

// ExtractText reads every page of the PDF at path and returns a cleaned
// single-line text: collapsed whitespace, bullet markers normalized to
// commas.
func ExtractText(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open resume: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return "", fmt.Errorf("stat resume: %w", err)
	}

	reader, err := pdf.NewReader(file, info.Size())
	if err != nil {
		return "", fmt.Errorf("read pdf: %w", err)
	}

	var builder strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		builder.WriteString("\n")
		builder.WriteString(text)
	}

	cleaned := CleanText(builder.String())
	if cleaned == "" {
		return "", fmt.Errorf("resume %q contains no extractable text", path)
	}

	return cleaned, nil
}

// CleanText normalizes raw extracted text for prompting.
func CleanText(raw string) string {
	cleaned := bulletReplacer.Replace(raw)
	cleaned = whitespaceRun.ReplaceAllString(cleaned, " ")
	cleaned = spaceBeforePunct.ReplaceAllString(cleaned, "$1")
	return strings.TrimSpace(cleaned)
}
