package Reports

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
)

const (
	margin      = 10.0
	footerSpace = 14.0
	titleHeight = 10.0
	headHeight  = 8.0
	rowHeight   = 7.0
)

func renderPDF(tables []Table, meta Meta) ([]byte, error) {
	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(false, margin)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFooterFunc(func() {
		pdf.SetY(-margin)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.SetTextColor(120, 120, 120)
		pdf.CellFormat(0, 5, fmt.Sprintf("Page %d", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()
	writeBanner(pdf, tr, meta)

	for _, t := range tables {
		if len(t.Rows) == 0 {
			continue
		}
		writeSection(pdf, tr, t)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func writeBanner(pdf *fpdf.Fpdf, tr func(string) string, meta Meta) {
	pageWidth, _ := pdf.GetPageSize()

	pdf.SetFillColor(37, 99, 235)
	pdf.Rect(0, 0, pageWidth, 28, "F")
	pdf.SetTextColor(255, 255, 255)
	pdf.SetXY(margin, 7)
	pdf.SetFont("Helvetica", "B", 20)
	pdf.CellFormat(0, 9, "SMART TRUCK MANAGER", "", 1, "L", false, 0, "")
	pdf.SetX(margin)
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 7, tr("REPORT: "+meta.RangeLabel), "", 1, "L", false, 0, "")

	pdf.SetXY(margin, 34)
	pdf.SetFillColor(243, 244, 246)
	pdf.SetDrawColor(209, 213, 219)
	pdf.Rect(margin, 34, pageWidth-2*margin, 22, "FD")
	pdf.SetTextColor(31, 41, 55)

	lines := []string{
		"Business: " + text(meta.OwnerName),
		"Generated On: " + meta.GeneratedAt.Format("02 Jan 2006, 03:04 PM"),
		"Truck Filter: " + text(meta.TruckLabel),
	}
	pdf.SetXY(margin+4, 36)
	for _, line := range lines {
		pdf.SetX(margin + 4)
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(0, 6, tr(line), "", 1, "L", false, 0, "")
	}
	pdf.SetY(64)
}

func writeSection(pdf *fpdf.Fpdf, tr func(string) string, t Table) {
	_, pageHeight := pdf.GetPageSize()
	limit := pageHeight - footerSpace
	widths := scaleWidths(pdf, t.Weights)

	// the title, header and first row stay on one page
	if pdf.GetY()+titleHeight+headHeight+rowHeight > limit {
		pdf.AddPage()
	}

	pdf.SetFont("Helvetica", "B", 13)
	pdf.SetTextColor(31, 41, 55)
	pdf.CellFormat(0, titleHeight, tr(t.Title), "", 1, "L", false, 0, "")
	writeHeader(pdf, tr, t.Headers, widths)

	pdf.SetFont("Helvetica", "", 9)
	for i, row := range t.Rows {
		if pdf.GetY()+rowHeight > limit {
			pdf.AddPage()
			writeHeader(pdf, tr, t.Headers, widths)
			pdf.SetFont("Helvetica", "", 9)
		}

		fill := i%2 == 1
		pdf.SetFillColor(240, 240, 240)
		pdf.SetTextColor(31, 41, 55)
		for j, cell := range row {
			align := "L"
			switch cell.(type) {
			case Money, float64:
				align = "R"
			}
			value := fit(pdf, tr(display(cell)), widths[j]-2)
			pdf.CellFormat(widths[j], rowHeight, value, "1", 0, align, fill, 0, "")
		}
		pdf.Ln(-1)
	}
	pdf.Ln(6)
}

func writeHeader(pdf *fpdf.Fpdf, tr func(string) string, headers []string, widths []float64) {
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(31, 41, 55)
	pdf.SetTextColor(255, 255, 255)
	for i, h := range headers {
		pdf.CellFormat(widths[i], headHeight, tr(h), "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)
}

func scaleWidths(pdf *fpdf.Fpdf, weights []float64) []float64 {
	pageWidth, _ := pdf.GetPageSize()
	usable := pageWidth - 2*margin

	total := 0.0
	for _, w := range weights {
		total += w
	}
	widths := make([]float64, len(weights))
	for i, w := range weights {
		widths[i] = usable * w / total
	}
	return widths
}

// fit shortens s with ".." until it fits in width. s is already in the
// single-byte font encoding, so it is cut by bytes.
func fit(pdf *fpdf.Fpdf, s string, width float64) string {
	if pdf.GetStringWidth(s) <= width {
		return s
	}
	for len(s) > 0 && pdf.GetStringWidth(s+"..") > width {
		s = s[:len(s)-1]
	}
	return s + ".."
}
