package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

const (
	pdfPageWidth   = 277.0 // A4 landscape minus margins
	pdfHeaderRowMM = 8.0
	pdfBodyRowMM   = 6.5
)

// PDFExporter renders datasets into a landscape table with a branded header row.
type PDFExporter struct {
	// HeaderColor is the RGB fill of the column header row.
	HeaderColor [3]int
}

// NewPDFExporter constructs a PDF exporter using the brand orange.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{HeaderColor: [3]int{255, 107, 53}}
}

// ContentType is the MIME type of Render output.
func (e *PDFExporter) ContentType() string { return "application/pdf" }

// Extension is the file suffix for Render output.
func (e *PDFExporter) Extension() string { return "pdf" }

// Render lays out the dataset, repeating the header row on every page.
// Cell text that does not fit its column is truncated.
func (e *PDFExporter) Render(data Dataset) ([]byte, error) {
	pdf, err := e.layout(data)
	if err != nil {
		return nil, err
	}
	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (e *PDFExporter) layout(data Dataset) (*gofpdf.Fpdf, error) {
	if err := data.validate(); err != nil {
		return nil, err
	}

	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 12, 10)
	pdf.SetAutoPageBreak(true, 12)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	widths := columnWidths(data.Columns)

	pdf.SetFooterFunc(func() {
		pdf.SetY(-10)
		pdf.SetFont("Arial", "I", 8)
		pdf.SetTextColor(120, 120, 120)
		pdf.CellFormat(0, 5, fmt.Sprintf("Page %d", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	header := func() {
		pdf.SetFont("Arial", "B", 9)
		pdf.SetFillColor(e.HeaderColor[0], e.HeaderColor[1], e.HeaderColor[2])
		pdf.SetTextColor(255, 255, 255)
		for i, col := range data.Columns {
			pdf.CellFormat(widths[i], pdfHeaderRowMM, tr(col.Header), "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 8)
		pdf.SetTextColor(31, 41, 55)
	}

	pdf.AddPage()
	if data.Title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, tr(data.Title), "", 1, "L", false, 0, "")
		pdf.Ln(2)
	}
	header()

	_, pageHeight := pdf.GetPageSize()
	_, _, _, bottom := pdf.GetMargins()
	for n, row := range data.Rows {
		if pdf.GetY()+pdfBodyRowMM > pageHeight-bottom {
			pdf.AddPage()
			header()
		}
		fill := n%2 == 1
		pdf.SetFillColor(249, 250, 251)
		for i, value := range row {
			pdf.CellFormat(widths[i], pdfBodyRowMM, fitText(pdf, tr(value), widths[i]-2), "1", 0, "", fill, 0, "")
		}
		pdf.Ln(-1)
	}

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("layout pdf: %w", err)
	}
	return pdf, nil
}

func columnWidths(cols []Column) []float64 {
	total := 0.0
	for _, col := range cols {
		total += weight(col)
	}
	out := make([]float64, len(cols))
	for i, col := range cols {
		out[i] = pdfPageWidth * weight(col) / total
	}
	return out
}

func weight(col Column) float64 {
	if col.Width <= 0 {
		return 1
	}
	return col.Width
}

func fitText(pdf *gofpdf.Fpdf, text string, width float64) string {
	if pdf.GetStringWidth(text) <= width {
		return text
	}
	runes := []rune(text)
	for len(runes) > 0 && pdf.GetStringWidth(string(runes)+"...") > width {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "..."
}
