package query_test

import (
	"database/sql"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"inkwell/query"
)

var _ = Describe("BuildFilters", func() {
	It("returns no clauses without terms", func() {
		f := query.BuildFilters("", "")

		Expect(f.Empty()).To(BeTrue())
		Expect(f.Clauses()).To(BeEmpty())
		Expect(f.Params()).To(BeEmpty())
		Expect(f.SQL()).To(Equal(""))
	})

	It("treats whitespace-only terms as absent", func() {
		f := query.BuildFilters("  ", "\t")

		Expect(f.Empty()).To(BeTrue())
	})

	It("keeps surrounding whitespace of a present term", func() {
		f := query.BuildFilters(" Tech", "cats ")

		Expect(f.Params()).To(Equal([]any{"% Tech%", "%cats %"}))
	})

	It("matches the category name only", func() {
		f := query.BuildFilters("Tech", "")

		Expect(f.Clauses()).To(Equal([]string{"categories.name ILIKE $1"}))
		Expect(f.Params()).To(Equal([]any{"%Tech%"}))
	})

	It("matches the keyword across title, description and content", func() {
		f := query.BuildFilters("", "cats")

		Expect(f.Clauses()).To(Equal([]string{
			"(posts.title ILIKE $1 OR posts.description ILIKE $1 OR posts.content ILIKE $1)",
		}))
		Expect(f.Params()).To(Equal([]any{"%cats%"}))
	})

	It("puts category first and keyword second when both are given", func() {
		f := query.BuildFilters("Tech", "cats")

		Expect(f.Params()).To(Equal([]any{"%Tech%", "%cats%"}))
		Expect(f.SQL()).To(Equal(
			"categories.name ILIKE $1 AND " +
				"(posts.title ILIKE $2 OR posts.description ILIKE $2 OR posts.content ILIKE $2)",
		))
	})

	It("renders named placeholders for the store with the requested operator", func() {
		f := query.BuildFilters("Tech", "cats")

		where, args := f.Named("LIKE")

		Expect(where).To(Equal(
			"categories.name LIKE @p1 AND " +
				"(posts.title LIKE @p2 OR posts.description LIKE @p2 OR posts.content LIKE @p2)",
		))
		Expect(args).To(Equal([]any{sql.Named("p1", "%Tech%"), sql.Named("p2", "%cats%")}))
	})
})
