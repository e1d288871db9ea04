package pagination_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/worklog/internal/core/common/pagination"
)

var _ = Describe("Pagination", func() {
	DescribeTable("Normalize",
		func(page, perPage, wantPage, wantPerPage int) {
			p, pp := pagination.Normalize(page, perPage)
			Expect(p).To(Equal(wantPage))
			Expect(pp).To(Equal(wantPerPage))
		},
		Entry("defaults", 0, 0, 1, pagination.DefaultPerPage),
		Entry("negative page", -3, 10, 1, 10),
		Entry("caps per page", 2, 500, 2, pagination.MaxPerPage),
	)

	It("computes the last page and never drops below one", func() {
		page := pagination.New([]int{1, 2}, 45, 3, 20)
		Expect(page.LastPage).To(Equal(3))
		Expect(pagination.Offset(3, 20)).To(Equal(40))

		empty := pagination.New[int](nil, 0, 1, 20)
		Expect(empty.Data).To(BeEmpty())
		Expect(empty.Data).NotTo(BeNil())
		Expect(empty.LastPage).To(Equal(1))
	})
})
