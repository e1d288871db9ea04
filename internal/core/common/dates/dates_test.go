package dates_test

import (
	"encoding/json"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/worklog/internal/core/common/dates"
)

var _ = Describe("Dates", func() {
	It("re-anchors a local instant on its own calendar day", func() {
		loc := time.FixedZone("UTC+7", 7*60*60)
		late := time.Date(2025, 3, 9, 23, 30, 0, 0, loc)

		day := dates.Day(late)
		Expect(day).To(Equal(time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC)))
	})

	It("parses months into their bounds", func() {
		start, end, err := dates.ParseMonth("2024-02")
		Expect(err).NotTo(HaveOccurred())
		Expect(dates.Format(start)).To(Equal("2024-02-01"))
		Expect(dates.Format(end)).To(Equal("2024-02-29"))

		_, _, err = dates.ParseMonth("2024-13")
		Expect(err).To(HaveOccurred())
	})

	It("rejects malformed dates", func() {
		_, err := dates.Parse("03/09/2025")
		Expect(err).To(MatchError(ContainSubstring("expected YYYY-MM-DD")))
	})

	DescribeTable("WeekStart",
		func(day string, first time.Weekday, want string) {
			d, err := dates.Parse(day)
			Expect(err).NotTo(HaveOccurred())
			Expect(dates.Format(dates.WeekStart(d, first))).To(Equal(want))
		},
		// 2025-03-12 is a Wednesday
		Entry("monday weeks", "2025-03-12", time.Monday, "2025-03-10"),
		Entry("sunday weeks", "2025-03-12", time.Sunday, "2025-03-09"),
		Entry("already on the first day", "2025-03-10", time.Monday, "2025-03-10"),
		Entry("sunday under monday weeks", "2025-03-16", time.Monday, "2025-03-10"),
	)

	Describe("Date JSON", func() {
		It("encodes as a bare calendar day", func() {
			d := dates.NewDate(time.Date(2025, 1, 5, 17, 4, 0, 0, time.UTC))
			b, err := json.Marshal(struct {
				WorkDate dates.Date `json:"work_date"`
			}{d})
			Expect(err).NotTo(HaveOccurred())
			Expect(string(b)).To(Equal(`{"work_date":"2025-01-05"}`))
		})

		It("encodes the zero value as null and decodes it back", func() {
			b, err := json.Marshal(dates.Date{})
			Expect(err).NotTo(HaveOccurred())
			Expect(string(b)).To(Equal("null"))

			var d dates.Date
			Expect(json.Unmarshal([]byte(`"2025-01-05"`), &d)).To(Succeed())
			Expect(d.String()).To(Equal("2025-01-05"))
			Expect(json.Unmarshal([]byte(`12`), &d)).NotTo(Succeed())
		})
	})
})
