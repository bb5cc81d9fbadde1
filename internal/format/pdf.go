package format

import (
	"strconv"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/hyperifyio/termsense/internal/store"
)

var tierRGB = map[int][3]int{
	5: {22, 163, 74},
	4: {37, 99, 235},
	3: {234, 88, 12},
	2: {126, 34, 206},
	1: {220, 38, 38},
}

// WritePDF renders a stored analysis to outPath. Score lines are coloured
// by tier and policy links become clickable.
func WritePDF(rec store.AnalysisRecord, links []string, outPath string) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetFont("Helvetica", "", 11)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, "Terms analysis", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.WriteLinkString(5, tr(rec.URL), rec.URL)
	pdf.Ln(5)
	meta := rec.CreatedAt.UTC().Format(time.RFC3339)
	if rec.Model != "" {
		meta = rec.Model + " - " + meta
	}
	pdf.CellFormat(0, 5, tr(meta), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "", 11)
	for _, l := range Parse(rec.Raw) {
		s := strings.TrimSpace(l.Text)
		if s == "" {
			pdf.Ln(3)
			continue
		}
		if !l.Scored() {
			pdf.MultiCell(0, 5, tr(s), "", "L", false)
			continue
		}
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(60, 6, tr(l.Category), "", 0, "L", false, 0, "")
		c := tierRGB[l.Score]
		pdf.SetTextColor(c[0], c[1], c[2])
		pdf.CellFormat(20, 6, strconv.Itoa(l.Score)+"/5", "", 1, "L", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
		pdf.SetFont("Helvetica", "", 11)
	}

	if len(links) > 0 {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "B", 12)
		pdf.CellFormat(0, 8, "Policy links", "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		for _, u := range links {
			pdf.WriteLinkString(5, tr(u), u)
			pdf.Ln(6)
		}
	}
	return pdf.OutputFileAndClose(outPath)
}
