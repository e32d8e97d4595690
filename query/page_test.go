package query_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"inkwell/query"
)

var _ = Describe("Pagination", func() {
	Describe("NewPageRequest", func() {
		It("uses the defaults when nothing is provided", func() {
			req := query.NewPageRequest("", "")

			Expect(req.Page).To(Equal(1))
			Expect(req.Limit).To(Equal(6))
			Expect(req.Offset).To(Equal(0))
		})

		DescribeTable("clamps the page to at least 1",
			func(raw string) {
				Expect(query.NewPageRequest(raw, "").Page).To(Equal(1))
			},
			Entry("zero", "0"),
			Entry("negative", "-5"),
			Entry("non-numeric", "abc"),
			Entry("fractional", "2.5"),
			Entry("huge negative", "-99999999999999999999999"),
		)

		DescribeTable("keeps the limit within [1, 100]",
			func(raw string, expected int) {
				Expect(query.NewPageRequest("", raw).Limit).To(Equal(expected))
			},
			Entry("missing", "", 6),
			Entry("non-numeric", "lots", 6),
			Entry("zero", "0", 1),
			Entry("negative", "-3", 1),
			Entry("in range", "25", 25),
			Entry("above max", "1000", 100),
			Entry("overflowing", "99999999999999999999999", 100),
		)

		It("derives the offset from page and limit", func() {
			req := query.NewPageRequest("3", "10")

			Expect(req.Offset).To(Equal(20))
		})
	})

	Describe("Result", func() {
		It("links both neighbours in the middle of the result set", func() {
			p, offset := query.ComputePage("2", "6", 13)

			Expect(offset).To(Equal(6))
			Expect(p.TotalItems).To(Equal(int64(13)))
			Expect(p.TotalPages).To(Equal(int64(3)))
			Expect(p.CurrentPage).To(Equal(2))
			Expect(p.Limit).To(Equal(6))
			Expect(p.NextPage).To(HaveValue(Equal(3)))
			Expect(p.PreviousPage).To(HaveValue(Equal(1)))
		})

		It("has no previous page on the first page", func() {
			p, _ := query.ComputePage("1", "6", 13)

			Expect(p.PreviousPage).To(BeNil())
			Expect(p.NextPage).To(HaveValue(Equal(2)))
		})

		It("has no next page on the last page", func() {
			p, _ := query.ComputePage("3", "6", 13)

			Expect(p.NextPage).To(BeNil())
			Expect(p.PreviousPage).To(HaveValue(Equal(2)))
		})

		It("has no next page when the page ends exactly at the total", func() {
			p, _ := query.ComputePage("2", "6", 12)

			Expect(p.TotalPages).To(Equal(int64(2)))
			Expect(p.NextPage).To(BeNil())
		})

		It("reports zero pages for an empty result", func() {
			p, _ := query.ComputePage("", "", 0)

			Expect(p.TotalPages).To(Equal(int64(0)))
			Expect(p.NextPage).To(BeNil())
			Expect(p.PreviousPage).To(BeNil())
		})

		It("still links back from a page past the end", func() {
			p, _ := query.ComputePage("9", "6", 13)

			Expect(p.NextPage).To(BeNil())
			Expect(p.PreviousPage).To(HaveValue(Equal(8)))
		})

		It("serves oversized and negative requests at their clamped values", func() {
			p, offset := query.ComputePage("-5", "1000", 250)

			Expect(p.CurrentPage).To(Equal(1))
			Expect(p.Limit).To(Equal(100))
			Expect(offset).To(Equal(0))
			Expect(p.TotalPages).To(Equal(int64(3)))
		})
	})
})
