package output

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"
)

const (
	pageWidth    = 297.0
	marginLeft   = 10.0
	marginRight  = 10.0
	marginTop    = 12.0
	marginBottom = 15.0
	contentWidth = pageWidth - marginLeft - marginRight
)

// PDFFormatter renders the report on landscape A4 pages
type PDFFormatter struct{}

func (p PDFFormatter) Name() string { return "pdf" }

func (p PDFFormatter) Format(report *Report) ([]byte, error) {
	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(marginLeft, marginTop, marginRight)
	pdf.SetAutoPageBreak(true, marginBottom)
	pdf.SetFooterFunc(func() {
		pdf.SetY(-10)
		pdf.SetFont("Arial", "I", 8)
		pdf.SetTextColor(120, 120, 120)
		pdf.CellFormat(0, 5, fmt.Sprintf("Page %d", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	title := report.Title
	if title == "" {
		title = "Premium and Subsidy Report"
	}
	pdf.SetFont("Arial", "B", 16)
	pdf.SetTextColor(0, 51, 102)
	pdf.CellFormat(contentWidth, 10, title, "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "I", 9)
	pdf.SetTextColor(80, 80, 80)
	pdf.CellFormat(contentWidth, 6, fmt.Sprintf("Generated: %s", time.Now().Format("2 January 2006")), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	if t := report.Table; t != nil {
		drawSectionHeader(pdf, fmt.Sprintf("Rates (%d rows, %d plans)", len(t.Rows), t.PlansMatched))
		widths := []float64{45, 70, 25, 17, 15, 26, 26, 26, 27}
		drawTableHeader(pdf, summaryColumns, widths)
		for _, row := range t.Rows {
			drawTableRow(pdf, summaryValues(row), widths, 4)
		}
		pdf.Ln(6)
	}

	if m := report.Matrix; m != nil {
		drawSectionHeader(pdf, fmt.Sprintf("Rate changes (%%) for %s / %s", m.StateCode, m.RatingAreaID))
		header := matrixHeader(m)
		widths := make([]float64, len(header))
		widths[0] = 77
		for i := 1; i < len(widths); i++ {
			widths[i] = (contentWidth - widths[0]) / float64(len(widths)-1)
		}
		drawTableHeader(pdf, header, widths)
		for _, row := range m.Rows {
			drawTableRow(pdf, matrixValues(m, row), widths, 1)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func drawSectionHeader(pdf *fpdf.Fpdf, title string) {
	pdf.SetFont("Arial", "B", 12)
	pdf.SetTextColor(0, 51, 102)
	pdf.CellFormat(contentWidth, 8, title, "", 1, "L", false, 0, "")
	pdf.SetDrawColor(0, 51, 102)
	pdf.Line(marginLeft, pdf.GetY(), marginLeft+contentWidth, pdf.GetY())
	pdf.Ln(3)
}

func drawTableHeader(pdf *fpdf.Fpdf, headers []string, widths []float64) {
	pdf.SetFillColor(0, 51, 102)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Arial", "B", 8)
	for i, header := range headers {
		pdf.CellFormat(widths[i], 6, header, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)
}

func drawTableRow(pdf *fpdf.Fpdf, cells []string, widths []float64, firstNumeric int) {
	pdf.SetFillColor(250, 250, 250)
	pdf.SetTextColor(50, 50, 50)
	pdf.SetFont("Arial", "", 8)
	for i, cell := range cells {
		align := "L"
		if i >= firstNumeric {
			align = "R"
		}
		pdf.CellFormat(widths[i], 5, truncate(pdf, cell, widths[i]-2), "1", 0, align, true, 0, "")
	}
	pdf.Ln(-1)
}

// truncate shortens s with an ellipsis until it fits in width
func truncate(pdf *fpdf.Fpdf, s string, width float64) string {
	if pdf.GetStringWidth(s) <= width {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && pdf.GetStringWidth(string(runes)+"...") > width {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "..."
}
