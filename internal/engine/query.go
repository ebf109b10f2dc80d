package engine

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"formrules/internal/metadata"
	"formrules/internal/store"
)

// ReplyQuery names the reply table layout a query is generated for.
type ReplyQuery struct {
	Table      string
	DataColumn string
	FormID     string
	Limit      int
	Offset     int
}

type QueryResult struct {
	SQL    string
	Params []any
}

var allowedOps = map[metadata.StoreDataType]map[Operator]bool{
	metadata.StoreString: {
		OpEq: true, OpNeq: true, OpGt: true, OpGte: true, OpLt: true, OpLte: true,
		OpIn: true, OpNotIn: true, OpLike: true, OpContains: true,
	},
	metadata.StoreNumber: {
		OpEq: true, OpNeq: true, OpGt: true, OpGte: true, OpLt: true, OpLte: true,
		OpIn: true, OpNotIn: true,
	},
	metadata.StoreBoolean: {OpEq: true, OpNeq: true},
	metadata.StoreList:    {OpContains: true},
}

// ParseFilters parses filter[field]=val and filter[field.op]=val pairs into a
// FilterSet. Values are coerced by the field's storage type. Keys that are
// not filters are ignored. Filters are ordered by key.
func ParseFilters(form *metadata.Form, c *metadata.Classifier, params map[string]string) (*FilterSet, error) {
	keys := make([]string, 0, len(params))
	for key := range params {
		if strings.HasPrefix(key, "filter[") && strings.HasSuffix(key, "]") {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	var filters []FieldFilter
	for _, key := range keys {
		inner := key[7 : len(key)-1] // extract between [ and ]
		fieldID, op := parseFilterKey(inner)

		field := form.GetField(fieldID)
		if field == nil {
			return nil, UnknownFieldError(fieldID)
		}
		st := c.Classify(field.Type)
		if st == metadata.StoreNone {
			return nil, InvalidFilterError(fieldID, errors.New("field has no stored answers"))
		}
		// a list equals filter means membership
		if st == metadata.StoreList && op == OpEq {
			op = OpContains
		}
		if !allowedOps[st][op] {
			return nil, InvalidFilterError(fieldID, fmt.Errorf("operator %s not supported for %s", op, st))
		}

		coerced, err := coerceValue(st, params[key], op)
		if err != nil {
			return nil, InvalidFilterError(fieldID, err)
		}

		filters = append(filters, FieldFilter{
			Field:    fieldID,
			Value:    coerced,
			Type:     st,
			Operator: op,
		})
	}
	return NewFilterSet(filters), nil
}

// parseFilterKey splits "total.gte" into ("total", "gte") or "status" into ("status", "eq").
func parseFilterKey(key string) (string, Operator) {
	parts := strings.SplitN(key, ".", 2)
	if len(parts) == 2 {
		return parts[0], Operator(parts[1])
	}
	return key, OpEq
}

// coerceValue converts string filter values to Go types based on the storage type.
func coerceValue(st metadata.StoreDataType, val string, op Operator) (any, error) {
	// "in" and "not_in" take comma-separated lists
	if op == OpIn || op == OpNotIn {
		parts := strings.Split(val, ",")
		coerced := make([]any, len(parts))
		for i, p := range parts {
			v, err := coerceSingleValue(st, strings.TrimSpace(p))
			if err != nil {
				return nil, err
			}
			coerced[i] = v
		}
		return coerced, nil
	}

	return coerceSingleValue(st, val)
}

func coerceSingleValue(st metadata.StoreDataType, val string) (any, error) {
	switch st {
	case metadata.StoreNumber:
		return strconv.ParseFloat(val, 64)
	case metadata.StoreBoolean:
		return strconv.ParseBool(val)
	default:
		return val, nil
	}
}

// BuildReplyQuery builds a parameterized SELECT over stored replies of one
// form, restricted by the filter set. Each storage bucket is rendered with
// its own comparison semantics.
func BuildReplyQuery(d store.Dialect, q ReplyQuery, set *FilterSet) QueryResult {
	pb := d.NewParamBuilder()
	where := buildReplyWhere(d, q, set, pb)

	sql := fmt.Sprintf("SELECT id, %s FROM %s WHERE %s ORDER BY id", q.DataColumn, q.Table, strings.Join(where, " AND "))

	if q.Limit > 0 {
		limit := pb.Add(q.Limit)
		offset := pb.Add(q.Offset)
		sql += fmt.Sprintf(" LIMIT %s OFFSET %s", limit, offset)
	}

	return QueryResult{SQL: sql, Params: pb.Params()}
}

// BuildReplyCountQuery builds a COUNT query with the same filters as the select.
func BuildReplyCountQuery(d store.Dialect, q ReplyQuery, set *FilterSet) QueryResult {
	pb := d.NewParamBuilder()
	where := buildReplyWhere(d, q, set, pb)
	sql := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s", q.Table, strings.Join(where, " AND "))
	return QueryResult{SQL: sql, Params: pb.Params()}
}

func buildReplyWhere(d store.Dialect, q ReplyQuery, set *FilterSet, pb store.ParamBuilder) []string {
	where := []string{fmt.Sprintf("form_id = %s", pb.Add(q.FormID))}
	for _, st := range metadata.StoreDataTypes() {
		for _, f := range set.ForType(st) {
			var clause string
			switch st {
			case metadata.StoreString, metadata.StoreNumber:
				clause = buildScalarClause(d, q.DataColumn, f, pb)
			case metadata.StoreBoolean:
				clause = buildBoolClause(d, q.DataColumn, f, pb)
			case metadata.StoreList:
				clause = d.ListContainsExpr(q.DataColumn, f.Field, pb, fmt.Sprint(f.Value))
			default:
				continue
			}
			where = append(where, clause)
		}
	}
	return where
}

func buildScalarClause(d store.Dialect, column string, f FieldFilter, pb store.ParamBuilder) string {
	expr := d.AnswerExpr(column, f.Field, f.Type, pb)
	switch f.Operator {
	case OpNeq:
		return fmt.Sprintf("%s != %s", expr, pb.Add(f.Value))
	case OpGt:
		return fmt.Sprintf("%s > %s", expr, pb.Add(f.Value))
	case OpGte:
		return fmt.Sprintf("%s >= %s", expr, pb.Add(f.Value))
	case OpLt:
		return fmt.Sprintf("%s < %s", expr, pb.Add(f.Value))
	case OpLte:
		return fmt.Sprintf("%s <= %s", expr, pb.Add(f.Value))
	case OpIn:
		return d.InExpr(expr, pb, toSlice(f.Value))
	case OpNotIn:
		return d.NotInExpr(expr, pb, toSlice(f.Value))
	case OpLike:
		return fmt.Sprintf("%s LIKE %s", expr, pb.Add(f.Value))
	case OpContains:
		return fmt.Sprintf("%s LIKE '%%' || %s || '%%'", expr, pb.Add(f.Value))
	default:
		return fmt.Sprintf("%s = %s", expr, pb.Add(f.Value))
	}
}

func buildBoolClause(d store.Dialect, column string, f FieldFilter, pb store.ParamBuilder) string {
	expr := d.AnswerExpr(column, f.Field, f.Type, pb)
	b, _ := f.Value.(bool)
	if f.Operator == OpNeq {
		return fmt.Sprintf("%s != %s", expr, pb.Add(d.BoolParam(b)))
	}
	return fmt.Sprintf("%s = %s", expr, pb.Add(d.BoolParam(b)))
}

func toSlice(v any) []any {
	if s, ok := v.([]any); ok {
		return s
	}
	return []any{v}
}
