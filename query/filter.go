// Package query builds the filter predicates and pagination windows shared by
// the post listing and its count.
package query

import (
	"database/sql"
	"fmt"
	"strings"
)

var (
	categoryColumns = []string{"categories.name"}
	keywordColumns  = []string{"posts.title", "posts.description", "posts.content"}
)

// Predicate is a case-insensitive substring match of one pattern against one
// or more columns. Multiple columns are OR-ed together.
type Predicate struct {
	Columns []string
	Pattern string
}

// Filter is an ordered list of predicates combined with AND. The position of
// a predicate is also the position of its parameter.
type Filter struct {
	Predicates []Predicate
}

// BuildFilters returns the predicates for the optional category and keyword
// terms. Category always comes first so it takes the first parameter slot.
// Whitespace-only terms are absent; other terms are matched as sent.
func BuildFilters(category, keyword string) Filter {
	var f Filter
	if strings.TrimSpace(category) != "" {
		f.Predicates = append(f.Predicates, Predicate{Columns: categoryColumns, Pattern: contains(category)})
	}
	if strings.TrimSpace(keyword) != "" {
		f.Predicates = append(f.Predicates, Predicate{Columns: keywordColumns, Pattern: contains(keyword)})
	}
	return f
}

func (f Filter) Empty() bool {
	return len(f.Predicates) == 0
}

// Clauses renders each predicate with postgres positional placeholders.
func (f Filter) Clauses() []string {
	clauses := make([]string, len(f.Predicates))
	for i, p := range f.Predicates {
		clauses[i] = p.render("ILIKE", fmt.Sprintf("$%d", i+1))
	}
	return clauses
}

// Params returns the bound values in placeholder order.
func (f Filter) Params() []any {
	params := make([]any, len(f.Predicates))
	for i, p := range f.Predicates {
		params[i] = p.Pattern
	}
	return params
}

// SQL joins Clauses with AND. Empty filters render as "".
func (f Filter) SQL() string {
	return strings.Join(f.Clauses(), " AND ")
}

// Named renders the filter with named placeholders (@p1, @p2, ...) and the
// matching sql.NamedArg values, which gorm binds for any dialect. op is the
// case-insensitive match operator of the target database.
func (f Filter) Named(op string) (string, []any) {
	clauses := make([]string, len(f.Predicates))
	args := make([]any, len(f.Predicates))
	for i, p := range f.Predicates {
		name := fmt.Sprintf("p%d", i+1)
		clauses[i] = p.render(op, "@"+name)
		args[i] = sql.Named(name, p.Pattern)
	}
	return strings.Join(clauses, " AND "), args
}

func (p Predicate) render(op, placeholder string) string {
	if len(p.Columns) == 1 {
		return fmt.Sprintf("%s %s %s", p.Columns[0], op, placeholder)
	}
	parts := make([]string, len(p.Columns))
	for i, col := range p.Columns {
		parts[i] = fmt.Sprintf("%s %s %s", col, op, placeholder)
	}
	return "(" + strings.Join(parts, " OR ") + ")"
}

func contains(term string) string {
	return "%" + term + "%"
}
