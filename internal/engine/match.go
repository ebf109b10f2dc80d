package engine

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"formrules/internal/metadata"
)

// FilterProgram is a FilterSet compiled to an expr-lang program, for matching
// replies in memory without a database. Safe for concurrent use.
type FilterProgram struct {
	program *vm.Program
	source  string
	params  map[string]any
}

// CompileFilterSet compiles all filters of the set into one boolean program.
// Every filter requires its answer to be present and of the filter's type.
// An empty set matches every reply.
func CompileFilterSet(set *FilterSet) (*FilterProgram, error) {
	params := make(map[string]any)
	var clauses []string
	for i, f := range set.All() {
		fk := fmt.Sprintf("f%d", i)
		pk := fmt.Sprintf("p%d", i)
		clause, value, err := matchClause(f, fk, pk)
		if err != nil {
			return nil, err
		}
		params[fk] = f.Field
		params[pk] = value
		clauses = append(clauses, "("+clause+")")
	}

	source := "true"
	if len(clauses) > 0 {
		source = strings.Join(clauses, " && ")
	}

	prog, err := expr.Compile(source, expr.Env(matchEnv(params, map[string]any{})), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compile filter set: %w", err)
	}
	return &FilterProgram{program: prog, source: source, params: params}, nil
}

// Source returns the generated expression, useful when debugging filters.
func (p *FilterProgram) Source() string { return p.source }

// Match reports whether the reply values satisfy every filter.
func (p *FilterProgram) Match(values map[string]any) (bool, error) {
	out, err := expr.Run(p.program, matchEnv(p.params, values))
	if err != nil {
		return false, fmt.Errorf("run filter program: %w", err)
	}
	ok, _ := out.(bool)
	return ok, nil
}

func matchClause(f FieldFilter, fk, pk string) (string, any, error) {
	switch f.Type {
	case metadata.StoreString:
		get := fmt.Sprintf("answerStr(r, %s)", fk)
		guard := fmt.Sprintf("hasAnswer(r, %s)", fk)
		switch f.Operator {
		case OpLike:
			s, _ := f.Value.(string)
			return fmt.Sprintf("%s && %s matches %s", guard, get, pk), likeToRegex(s), nil
		case OpContains:
			return fmt.Sprintf("%s && %s contains %s", guard, get, pk), f.Value, nil
		default:
			return scalarClause(guard, get, pk, f)
		}
	case metadata.StoreNumber:
		return scalarClause(
			fmt.Sprintf("isNumber(r, %s)", fk),
			fmt.Sprintf("answerNum(r, %s)", fk),
			pk, f)
	case metadata.StoreBoolean:
		return scalarClause(
			fmt.Sprintf("isBoolean(r, %s)", fk),
			fmt.Sprintf("answerBool(r, %s)", fk),
			pk, f)
	case metadata.StoreList:
		return fmt.Sprintf("listHas(r, %s, %s)", fk, pk), fmt.Sprint(f.Value), nil
	}
	return "", nil, fmt.Errorf("filter on %s: no matcher for store type %s", f.Field, f.Type)
}

func scalarClause(guard, get, pk string, f FieldFilter) (string, any, error) {
	var cmp string
	switch f.Operator {
	case OpEq:
		cmp = fmt.Sprintf("%s == %s", get, pk)
	case OpNeq:
		cmp = fmt.Sprintf("%s != %s", get, pk)
	case OpGt:
		cmp = fmt.Sprintf("%s > %s", get, pk)
	case OpGte:
		cmp = fmt.Sprintf("%s >= %s", get, pk)
	case OpLt:
		cmp = fmt.Sprintf("%s < %s", get, pk)
	case OpLte:
		cmp = fmt.Sprintf("%s <= %s", get, pk)
	case OpIn:
		return fmt.Sprintf("%s && %s in %s", guard, get, pk), toSlice(f.Value), nil
	case OpNotIn:
		return fmt.Sprintf("%s && not (%s in %s)", guard, get, pk), toSlice(f.Value), nil
	default:
		return "", nil, fmt.Errorf("filter on %s: operator %s not supported for %s", f.Field, f.Operator, f.Type)
	}
	return guard + " && " + cmp, f.Value, nil
}

func matchEnv(params map[string]any, values map[string]any) map[string]any {
	env := map[string]any{
		"r":          values,
		"hasAnswer":  hasAnswer,
		"answerStr":  stringValue,
		"isNumber":   isNumber,
		"answerNum":  answerNum,
		"isBoolean":  isBoolean,
		"answerBool": answerBool,
		"listHas":    listHas,
	}
	for k, v := range params {
		env[k] = v
	}
	return env
}

func hasAnswer(values map[string]any, field string) bool {
	v, ok := values[field]
	return ok && v != nil
}

func isNumber(values map[string]any, field string) bool {
	_, ok := numberValue(values[field])
	return ok
}

func answerNum(values map[string]any, field string) float64 {
	n, _ := numberValue(values[field])
	return n
}

func numberValue(v any) (float64, bool) {
	switch n := v.(type) {
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return toFloat64(v)
}

func isBoolean(values map[string]any, field string) bool {
	_, ok := boolValue(values[field])
	return ok
}

func answerBool(values map[string]any, field string) bool {
	b, _ := boolValue(values[field])
	return b
}

func boolValue(v any) (bool, bool) {
	switch b := v.(type) {
	case bool:
		return b, true
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(b))
		return parsed, err == nil
	}
	return false, false
}

func listHas(values map[string]any, field string, want string) bool {
	switch items := values[field].(type) {
	case []any:
		for _, it := range items {
			if fmt.Sprint(it) == want {
				return true
			}
		}
	case []string:
		for _, it := range items {
			if it == want {
				return true
			}
		}
	}
	return false
}

// likeToRegex translates a SQL LIKE pattern (% and _) into an anchored regexp.
func likeToRegex(pattern string) string {
	var b strings.Builder
	b.WriteString("(?s)^")
	for _, r := range pattern {
		switch r {
		case '%':
			b.WriteString(".*")
		case '_':
			b.WriteString(".")
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteString("$")
	return b.String()
}

// toFloat64 converts numeric types to float64.
func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	}
	return 0, false
}
