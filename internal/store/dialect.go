package store

import (
	"fmt"

	"formrules/internal/metadata"
)

// Dialect abstracts database-specific SQL generation for reply queries.
// Replies are assumed to keep their answers in a single JSON document column.
type Dialect interface {
	// Name returns "postgres" or "sqlite".
	Name() string

	// Placeholder returns the parameter placeholder for the given 1-based index.
	Placeholder(index int) string

	// NewParamBuilder creates a dialect-aware parameter builder.
	NewParamBuilder() ParamBuilder

	// ColumnType maps a storage type to the DDL type used when a field's
	// answers are projected into their own column.
	ColumnType(t metadata.StoreDataType) string

	// AnswerExpr returns an expression extracting one answer from the JSON
	// document column, cast to the storage type's SQL representation.
	// The field id is passed as a parameter.
	AnswerExpr(column, field string, t metadata.StoreDataType, pb ParamBuilder) string

	// ListContainsExpr returns a predicate that is true when the JSON array
	// stored under field contains value.
	ListContainsExpr(column, field string, pb ParamBuilder, value string) string

	// InExpr builds a SQL expression for the IN operator.
	// PostgreSQL: "expr = ANY($n)" with single array param.
	// SQLite: "expr IN (?n, ?n+1, ...)" expanding the slice.
	InExpr(expr string, pb ParamBuilder, values []any) string

	// NotInExpr builds a SQL expression for the NOT IN operator.
	NotInExpr(expr string, pb ParamBuilder, values []any) string

	// BoolParam encodes a boolean comparison value.
	// SQLite's json_extract yields 1/0 for JSON booleans.
	BoolParam(v bool) any
}

// ParamBuilder accumulates query parameters and generates dialect-specific placeholders.
type ParamBuilder interface {
	// Add appends a value and returns the placeholder string.
	Add(v any) string

	// Params returns all accumulated parameter values.
	Params() []any

	// Count returns the number of parameters added so far.
	Count() int
}

// NewDialect creates a Dialect for the given driver name ("postgres" or "sqlite").
func NewDialect(driver string) Dialect {
	switch driver {
	case "sqlite":
		return &SQLiteDialect{}
	default:
		return &PostgresDialect{}
	}
}

// --- PostgreSQL ParamBuilder ---

type pgParamBuilder struct {
	params []any
	n      int
}

func (p *pgParamBuilder) Add(v any) string {
	p.n++
	p.params = append(p.params, v)
	return fmt.Sprintf("$%d", p.n)
}

func (p *pgParamBuilder) Params() []any { return p.params }
func (p *pgParamBuilder) Count() int    { return p.n }

// --- SQLite ParamBuilder ---

type sqliteParamBuilder struct {
	params []any
	n      int
}

func (p *sqliteParamBuilder) Add(v any) string {
	p.n++
	p.params = append(p.params, v)
	return fmt.Sprintf("?%d", p.n)
}

func (p *sqliteParamBuilder) Params() []any { return p.params }
func (p *sqliteParamBuilder) Count() int    { return p.n }
