package report

import (
	"github.com/go-pdf/fpdf"
)

var tableWidths = []float64{12, 72, 76, 22}

// WritePDF renders the document to path, one page per section.
func WritePDF(doc *Document, path string) error {
	pdf := fpdf.New("P", "mm", "Letter", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetAutoPageBreak(true, 15)

	for i, sec := range doc.Sections {
		pdf.AddPage()

		align := "L"
		size := 16.0
		if i == 0 {
			// title page
			align = "C"
			size = 24
		}
		pdf.SetTextColor(26, 26, 26)
		pdf.SetFont("Helvetica", "B", size)
		pdf.MultiCell(0, 10, tr(sec.Heading), "", align, false)
		pdf.Ln(4)

		if sec.Table != nil {
			writeTable(pdf, tr, sec.Table)
			pdf.Ln(2)
		}

		pdf.SetTextColor(0, 0, 0)
		pdf.SetFont("Helvetica", "", 10)
		for _, line := range sec.Lines {
			pdf.MultiCell(0, 5, tr(line), "", align, false)
			pdf.Ln(2)
		}
	}

	return pdf.OutputFileAndClose(path)
}

func writeTable(pdf *fpdf.Fpdf, tr func(string) string, rows [][]string) {
	for i, row := range rows {
		if i == 0 {
			pdf.SetFont("Helvetica", "B", 9)
			pdf.SetFillColor(128, 128, 128)
			pdf.SetTextColor(245, 245, 245)
		} else {
			pdf.SetFont("Helvetica", "", 8)
			pdf.SetFillColor(245, 245, 220)
			pdf.SetTextColor(0, 0, 0)
		}
		for j, cell := range row {
			pdf.CellFormat(tableWidths[j], 7, tr(cell), "1", 0, "L", true, 0, "")
		}
		pdf.Ln(-1)
	}
}
