package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/frahmantamala/worklog/internal/workentry"
	"github.com/go-pdf/fpdf"
	"github.com/xuri/excelize/v2"
)

const (
	FormatXLSX = "xlsx"
	FormatPDF  = "pdf"
)

var exportColumns = []string{"Date", "Title", "Department", "User", "Work Type", "Status", "Hours", "Location", "Description"}

// Exporter renders entries into a downloadable document.
type Exporter interface {
	ContentType() string
	Extension() string
	Write(w io.Writer, entries []*workentry.WorkEntry) error
}

func ExporterFor(format string) (Exporter, bool) {
	switch format {
	case FormatXLSX:
		return xlsxExporter{}, true
	case FormatPDF:
		return pdfExporter{}, true
	}
	return nil, false
}

func exportRow(e *workentry.WorkEntry) []string {
	row := []string{e.WorkDate.String(), e.Title, "", "", "", "", strconv.Itoa(e.HoursSpent), e.Location, e.Description}
	if e.Department != nil {
		row[2] = e.Department.Name
	}
	if e.User != nil {
		row[3] = e.User.Name
	}
	if e.WorkType != nil {
		row[4] = e.WorkType.Name
	}
	if e.Status != nil {
		row[5] = e.Status.Name
	}
	return row
}

type xlsxExporter struct{}

func (xlsxExporter) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

func (xlsxExporter) Extension() string { return FormatXLSX }

func (xlsxExporter) Write(w io.Writer, entries []*workentry.WorkEntry) error {
	const sheet = "Work Entries"

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}

	header := make([]interface{}, len(exportColumns))
	for i, c := range exportColumns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	lastHeader, _ := excelize.CoordinatesToCellName(len(exportColumns), 1)
	if err := f.SetCellStyle(sheet, "A1", lastHeader, bold); err != nil {
		return err
	}

	for i, e := range entries {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := exportRow(e)
		row := make([]interface{}, len(values))
		for j, v := range values {
			row[j] = v
		}
		row[6] = e.HoursSpent
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}

	if err := f.SetColWidth(sheet, "A", "A", 12); err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "B", "F", 22); err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "I", "I", 60); err != nil {
		return err
	}

	return f.Write(w)
}

type pdfExporter struct{}

func (pdfExporter) ContentType() string { return "application/pdf" }

func (pdfExporter) Extension() string { return FormatPDF }

// column widths in mm for A4 landscape
var pdfWidths = []float64{22, 45, 30, 30, 26, 22, 14, 28, 60}

func (pdfExporter) Write(w io.Writer, entries []*workentry.WorkEntry) error {
	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetTitle("Work Entries", true)
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 10, "Work Entries", "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(229, 231, 235)
	for i, c := range exportColumns {
		pdf.CellFormat(pdfWidths[i], 7, c, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 8)
	for _, e := range entries {
		for i, v := range exportRow(e) {
			pdf.CellFormat(pdfWidths[i], 6, fit(pdf, tr(v), pdfWidths[i]-2), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "I", 8)
	pdf.CellFormat(0, 6, fmt.Sprintf("%d entries", len(entries)), "", 1, "L", false, 0, "")

	if err := pdf.Error(); err != nil {
		return err
	}
	return pdf.Output(w)
}

// fit truncates s with an ellipsis so that it renders within width.
func fit(pdf *fpdf.Fpdf, s string, width float64) string {
	if pdf.GetStringWidth(s) <= width {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && pdf.GetStringWidth(string(r)+"...") > width {
		r = r[:len(r)-1]
	}
	return string(r) + "..."
}
