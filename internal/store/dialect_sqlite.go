package store

import (
	"fmt"
	"strings"

	"formrules/internal/metadata"
)

// SQLiteDialect implements Dialect for SQLite with a JSON text answers column.
type SQLiteDialect struct{}

func (d *SQLiteDialect) Name() string { return "sqlite" }

func (d *SQLiteDialect) Placeholder(index int) string {
	return fmt.Sprintf("?%d", index)
}

func (d *SQLiteDialect) NewParamBuilder() ParamBuilder {
	return &sqliteParamBuilder{}
}

func (d *SQLiteDialect) ColumnType(t metadata.StoreDataType) string {
	switch t {
	case metadata.StoreString, metadata.StoreList:
		return "TEXT"
	case metadata.StoreNumber:
		return "REAL"
	case metadata.StoreBoolean:
		return "INTEGER"
	default:
		return ""
	}
}

// jsonPath quotes the field id as a single path member.
func jsonPath(field string) string {
	return `$."` + strings.ReplaceAll(field, `"`, `\"`) + `"`
}

func (d *SQLiteDialect) AnswerExpr(column, field string, t metadata.StoreDataType, pb ParamBuilder) string {
	ph := pb.Add(jsonPath(field))
	switch t {
	case metadata.StoreNumber:
		return fmt.Sprintf("CAST(json_extract(%s, %s) AS REAL)", column, ph)
	default:
		return fmt.Sprintf("json_extract(%s, %s)", column, ph)
	}
}

func (d *SQLiteDialect) ListContainsExpr(column, field string, pb ParamBuilder, value string) string {
	fieldPh := pb.Add(jsonPath(field))
	valuePh := pb.Add(value)
	return fmt.Sprintf("EXISTS (SELECT 1 FROM json_each(%s, %s) WHERE value = %s)", column, fieldPh, valuePh)
}

func (d *SQLiteDialect) InExpr(expr string, pb ParamBuilder, values []any) string {
	if len(values) == 0 {
		return "0"
	}
	phs := make([]string, len(values))
	for i, v := range values {
		phs[i] = pb.Add(v)
	}
	return fmt.Sprintf("%s IN (%s)", expr, strings.Join(phs, ", "))
}

func (d *SQLiteDialect) NotInExpr(expr string, pb ParamBuilder, values []any) string {
	if len(values) == 0 {
		return "1"
	}
	phs := make([]string, len(values))
	for i, v := range values {
		phs[i] = pb.Add(v)
	}
	return fmt.Sprintf("%s NOT IN (%s)", expr, strings.Join(phs, ", "))
}

func (d *SQLiteDialect) BoolParam(v bool) any {
	if v {
		return 1
	}
	return 0
}
