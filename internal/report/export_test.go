package report_test

import (
	"bytes"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/xuri/excelize/v2"

	"github.com/frahmantamala/worklog/internal/report"
	"github.com/frahmantamala/worklog/internal/workentry"
)

var _ = Describe("Exporters", func() {
	entries := func() []*workentry.WorkEntry {
		return []*workentry.WorkEntry{
			{
				WorkDate:    day("2024-06-03"),
				Title:       "API work",
				Description: "Built the reporting endpoints",
				HoursSpent:  6,
				Location:    "Office",
				Department:  &workentry.DepartmentRef{Name: "IT Department"},
				User:        &workentry.UserRef{Name: "IT Manager"},
				WorkType:    &workentry.WorkTypeRef{Name: "Development"},
				Status:      &workentry.StatusRef{Name: "Completed"},
			},
			{
				WorkDate:    day("2024-06-04"),
				Title:       strings.Repeat("Very long title ", 20),
				Description: "Unicode café notes",
				HoursSpent:  2,
			},
		}
	}

	It("only knows xlsx and pdf", func() {
		_, ok := report.ExporterFor("csv")
		Expect(ok).To(BeFalse())

		x, ok := report.ExporterFor(report.FormatXLSX)
		Expect(ok).To(BeTrue())
		Expect(x.Extension()).To(Equal("xlsx"))

		p, ok := report.ExporterFor(report.FormatPDF)
		Expect(ok).To(BeTrue())
		Expect(p.ContentType()).To(Equal("application/pdf"))
	})

	It("writes a readable spreadsheet with a header row", func() {
		x, _ := report.ExporterFor(report.FormatXLSX)
		var buf bytes.Buffer
		Expect(x.Write(&buf, entries())).To(Succeed())

		f, err := excelize.OpenReader(&buf)
		Expect(err).NotTo(HaveOccurred())
		defer f.Close()

		rows, err := f.GetRows("Work Entries")
		Expect(err).NotTo(HaveOccurred())
		Expect(rows).To(HaveLen(3))
		Expect(rows[0][0]).To(Equal("Date"))
		Expect(rows[0][6]).To(Equal("Hours"))
		Expect(rows[1][:7]).To(Equal([]string{"2024-06-03", "API work", "IT Department", "IT Manager", "Development", "Completed", "6"}))
		Expect(rows[2][0]).To(Equal("2024-06-04"))
	})

	It("writes a pdf document", func() {
		p, _ := report.ExporterFor(report.FormatPDF)
		var buf bytes.Buffer
		Expect(p.Write(&buf, entries())).To(Succeed())
		Expect(buf.String()).To(HavePrefix("%PDF-"))
	})

	It("writes an empty spreadsheet for no entries", func() {
		x, _ := report.ExporterFor(report.FormatXLSX)
		var buf bytes.Buffer
		Expect(x.Write(&buf, nil)).To(Succeed())

		f, err := excelize.OpenReader(&buf)
		Expect(err).NotTo(HaveOccurred())
		defer f.Close()
		rows, err := f.GetRows("Work Entries")
		Expect(err).NotTo(HaveOccurred())
		Expect(rows).To(HaveLen(1))
	})
})
