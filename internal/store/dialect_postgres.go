package store

import (
	"fmt"

	"formrules/internal/metadata"
)

// PostgresDialect implements Dialect for PostgreSQL with a JSONB answers column.
type PostgresDialect struct{}

func (d *PostgresDialect) Name() string { return "postgres" }

func (d *PostgresDialect) Placeholder(index int) string {
	return fmt.Sprintf("$%d", index)
}

func (d *PostgresDialect) NewParamBuilder() ParamBuilder {
	return &pgParamBuilder{}
}

func (d *PostgresDialect) ColumnType(t metadata.StoreDataType) string {
	switch t {
	case metadata.StoreString:
		return "TEXT"
	case metadata.StoreNumber:
		return "NUMERIC"
	case metadata.StoreBoolean:
		return "BOOLEAN"
	case metadata.StoreList:
		return "TEXT[]"
	default:
		return ""
	}
}

func (d *PostgresDialect) AnswerExpr(column, field string, t metadata.StoreDataType, pb ParamBuilder) string {
	ph := pb.Add(field)
	switch t {
	case metadata.StoreNumber:
		return fmt.Sprintf("(%s->>%s::text)::numeric", column, ph)
	case metadata.StoreBoolean:
		return fmt.Sprintf("(%s->>%s::text)::boolean", column, ph)
	case metadata.StoreList:
		return fmt.Sprintf("%s->%s::text", column, ph)
	default:
		return fmt.Sprintf("%s->>%s::text", column, ph)
	}
}

func (d *PostgresDialect) ListContainsExpr(column, field string, pb ParamBuilder, value string) string {
	fieldPh := pb.Add(field)
	valuePh := pb.Add(value)
	return fmt.Sprintf("%s->%s::text @> jsonb_build_array(%s::text)", column, fieldPh, valuePh)
}

func (d *PostgresDialect) InExpr(expr string, pb ParamBuilder, values []any) string {
	ph := pb.Add(values)
	return fmt.Sprintf("%s = ANY(%s)", expr, ph)
}

func (d *PostgresDialect) NotInExpr(expr string, pb ParamBuilder, values []any) string {
	ph := pb.Add(values)
	return fmt.Sprintf("%s != ALL(%s)", expr, ph)
}

func (d *PostgresDialect) BoolParam(v bool) any { return v }
