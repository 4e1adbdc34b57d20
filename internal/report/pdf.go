package report

import (
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"
)

const (
	pdfTitle = "TalentScout Candidate Assessment Report"

	labelWidth = 55.0
	lineHeight = 5.5
	rowHeight  = 9.0
)

// writePDF renders the paginated document artifact: title block, generation
// timestamp, profile table, numbered Q&A, a forced page break, the analysis
// paragraph by paragraph and a fixed footer.
func writePDF(path string, r *Report) error {
	doc := fpdf.New("P", "mm", "A4", "")
	tr := doc.UnicodeTranslatorFromDescriptor("")
	doc.AddPage()

	pageWidth, _ := doc.GetPageSize()
	left, _, right, _ := doc.GetMargins()
	contentWidth := pageWidth - left - right

	// Title block.
	doc.SetFont("Helvetica", "B", 20)
	doc.SetTextColor(30, 136, 229)
	doc.CellFormat(contentWidth, 12, tr(pdfTitle), "", 1, "C", false, 0, "")
	doc.Ln(4)

	doc.SetFont("Helvetica", "", 10)
	doc.SetTextColor(0, 0, 0)
	stamp := r.GeneratedAt.Format("January 2, 2006 at 3:04 PM")
	doc.CellFormat(contentWidth, 6, tr("Report Generated: "+stamp), "", 1, "L", false, 0, "")
	doc.Ln(6)

	writeHeading(doc, tr, "Candidate Information")
	writeProfileTable(doc, tr, contentWidth, r)
	doc.Ln(8)

	writeHeading(doc, tr, "Technical Assessment Q&A")
	for i, pair := range r.QAPairs {
		doc.SetFont("Helvetica", "B", 10)
		doc.CellFormat(contentWidth, 6, tr(fmt.Sprintf("Question %d:", i+1)), "", 1, "L", false, 0, "")
		doc.SetFont("Helvetica", "", 10)
		doc.MultiCell(contentWidth, lineHeight, tr(pair.Question), "", "L", false)
		doc.Ln(1)

		doc.SetFont("Helvetica", "B", 10)
		doc.CellFormat(contentWidth, 6, tr("Answer:"), "", 1, "L", false, 0, "")
		doc.SetFont("Helvetica", "", 10)
		doc.MultiCell(contentWidth, lineHeight, tr(pair.Answer), "", "L", false)
		doc.Ln(4)
	}

	// Analysis always starts on its own page.
	doc.AddPage()
	writeHeading(doc, tr, "Candidate Analysis")
	doc.SetFont("Helvetica", "", 10)
	for _, paragraph := range splitParagraphs(r.Analysis) {
		doc.MultiCell(contentWidth, lineHeight, tr(paragraph), "", "L", false)
		doc.Ln(3)
	}

	doc.Ln(8)
	doc.SetFont("Helvetica", "", 8)
	doc.SetTextColor(128, 128, 128)
	doc.CellFormat(contentWidth, 5, tr(footerText), "", 1, "C", false, 0, "")

	return doc.OutputFileAndClose(path)
}

func writeHeading(doc *fpdf.Fpdf, tr func(string) string, text string) {
	doc.SetFont("Helvetica", "B", 14)
	doc.SetTextColor(30, 136, 229)
	doc.CellFormat(0, 8, tr(text), "", 1, "L", false, 0, "")
	doc.SetTextColor(0, 0, 0)
	doc.Ln(2)
}

func writeProfileTable(doc *fpdf.Fpdf, tr func(string) string, contentWidth float64, r *Report) {
	rows := profileRows(r)

	doc.SetDrawColor(128, 128, 128)
	for _, row := range rows {
		doc.SetFont("Helvetica", "B", 10)
		doc.SetFillColor(227, 242, 253)
		doc.CellFormat(labelWidth, rowHeight, tr(row[0]), "1", 0, "L", true, 0, "")
		doc.SetFont("Helvetica", "", 10)
		doc.MultiCell(contentWidth-labelWidth, rowHeight, tr(row[1]), "1", "L", false)
	}
}

// profileRows returns one row per satisfied field in the fixed order. A
// profile with nothing satisfied still yields a single explicit row so the
// table never renders empty.
func profileRows(r *Report) [][2]string {
	p := r.Profile
	rows := make([][2]string, 0, 7)

	if p.FullName != "" {
		rows = append(rows, [2]string{"Full Name:", p.FullName})
	}
	if p.Email != "" {
		rows = append(rows, [2]string{"Email:", p.Email})
	}
	if p.PhoneNumber != "" {
		rows = append(rows, [2]string{"Phone:", p.PhoneNumber})
	}
	if p.YearsOfExperience != 0 {
		rows = append(rows, [2]string{"Experience:", p.Experience() + " years"})
	}
	if len(p.DesiredPositions) > 0 {
		rows = append(rows, [2]string{"Desired Role(s):", p.Positions()})
	}
	if p.CurrentLocation != "" {
		rows = append(rows, [2]string{"Location:", p.CurrentLocation})
	}
	if !p.TechStack.IsZero() {
		rows = append(rows, [2]string{"Tech Stack:", p.TechStack.Flatten()})
	}

	if len(rows) == 0 {
		rows = append(rows, [2]string{"Info", "Not provided"})
	}

	return rows
}

// splitParagraphs segments the analysis on blank-line boundaries. Layout
// only; the text is never parsed for structure.
func splitParagraphs(text string) []string {
	blocks := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n\n")
	paragraphs := make([]string, 0, len(blocks))
	for _, block := range blocks {
		if block = strings.TrimSpace(block); block != "" {
			paragraphs = append(paragraphs, block)
		}
	}
	return paragraphs
}
