package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"formrules/internal/instrument"
	"formrules/internal/metadata"
)

// DefaultMaxDepth bounds rule nesting when no explicit limit is configured.
const DefaultMaxDepth = 64

// Evaluator evaluates FieldRule trees against reply values. The zero value
// is usable and applies DefaultMaxDepth. Safe for concurrent use.
type Evaluator struct {
	MaxDepth int

	// visit is called for every node entered; tests use it to observe
	// short-circuiting.
	visit func(*metadata.FieldRule)
}

func NewEvaluator(maxDepth int) *Evaluator {
	return &Evaluator{MaxDepth: maxDepth}
}

var defaultEvaluator = &Evaluator{}

// EvaluateRule evaluates rule with the default evaluator. A tree exceeding
// DefaultMaxDepth evaluates to false.
func EvaluateRule(rule *metadata.FieldRule, values map[string]any) bool {
	ok, err := defaultEvaluator.Evaluate(rule, values)
	if err != nil {
		return false
	}
	return ok
}

func (e *Evaluator) maxDepth() int {
	if e.MaxDepth <= 0 {
		return DefaultMaxDepth
	}
	return e.MaxDepth
}

// Evaluate returns whether the reply values satisfy the rule.
//
// The node's own leaf result is computed first (equalsValue, then
// notEqualsValue, the latter overwriting the former when both are set).
// The first false AND child makes the node false, then the first true OR
// child makes it true; otherwise the leaf result stands. A subtree shared
// by several parents is evaluated once per reference, so run ValidateRule
// on rules built in code before evaluating them in bulk.
func (e *Evaluator) Evaluate(rule *metadata.FieldRule, values map[string]any) (bool, error) {
	return e.eval(rule, values, 1)
}

func (e *Evaluator) eval(rule *metadata.FieldRule, values map[string]any, depth int) (bool, error) {
	if rule == nil {
		return false, nil
	}
	if depth > e.maxDepth() {
		return false, fmt.Errorf("%w (max %d)", ErrRuleTooDeep, e.maxDepth())
	}
	if e.visit != nil {
		e.visit(rule)
	}

	result := false
	if !isBlank(rule.Field) {
		actual := stringValue(values, rule.Field)
		if !isBlank(rule.EqualsValue) {
			result = actual == rule.EqualsValue
		}
		if !isBlank(rule.NotEqualsValue) {
			result = actual != rule.NotEqualsValue
		}
	}

	for _, child := range rule.And {
		ok, err := e.eval(child, values, depth+1)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}

	for _, child := range rule.Or {
		ok, err := e.eval(child, values, depth+1)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}

	return result, nil
}

// stringValue renders a reply value for comparison. Absent and nil values
// are the empty string.
func stringValue(values map[string]any, field string) string {
	v, ok := values[field]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// ValidateRule checks a rule tree up front: no node may be its own ancestor
// and nesting may not exceed maxDepth (DefaultMaxDepth when <= 0). Shared
// subtrees are allowed and each node is walked once.
func ValidateRule(rule *metadata.FieldRule, maxDepth int) error {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	tooDeep := fmt.Errorf("%w (max %d)", ErrRuleTooDeep, maxDepth)
	onPath := make(map[*metadata.FieldRule]bool)
	// height of every node already validated; a leaf has height 1
	height := make(map[*metadata.FieldRule]int)

	var walk func(n *metadata.FieldRule, depth int) (int, error)
	walk = func(n *metadata.FieldRule, depth int) (int, error) {
		if n == nil {
			return 0, nil
		}
		if h, ok := height[n]; ok {
			if depth+h-1 > maxDepth {
				return 0, tooDeep
			}
			return h, nil
		}
		if onPath[n] {
			return 0, ErrRuleCycle
		}
		if depth > maxDepth {
			return 0, tooDeep
		}
		onPath[n] = true
		defer delete(onPath, n)

		sub := 0
		for _, children := range [][]*metadata.FieldRule{n.And, n.Or} {
			for _, c := range children {
				h, err := walk(c, depth+1)
				if err != nil {
					return 0, err
				}
				sub = max(sub, h)
			}
		}
		height[n] = sub + 1
		return sub + 1, nil
	}
	_, err := walk(rule, 1)
	return err
}

// Visibility evaluates every field's visibleWhen rule. Fields without a rule
// are visible. A rule that cannot be evaluated hides its field and is
// reported as an ErrorDetail.
func (e *Evaluator) Visibility(ctx context.Context, form *metadata.Form, values map[string]any) (map[string]bool, []ErrorDetail) {
	inst := instrument.GetInstrumenter(ctx)
	ctx, span := inst.StartSpan(ctx, "engine", "rules", "visibility.evaluate")
	defer span.End()
	span.SetForm(form.ID, "")

	visible := make(map[string]bool, len(form.Fields))
	var errs []ErrorDetail
	hidden := 0
	for _, f := range form.Fields {
		if f.VisibleWhen == nil {
			visible[f.ID] = true
			continue
		}
		_, fieldSpan := inst.StartSpan(ctx, "engine", "rules", "visibility.field")
		fieldSpan.SetForm(form.ID, f.ID)
		ok, err := e.Evaluate(f.VisibleWhen, values)
		fieldSpan.SetMetadata("visible", ok)
		status := "ok"
		if err != nil {
			status = "error"
			msg := err.Error()
			if errors.Is(err, ErrRuleTooDeep) {
				msg = fmt.Sprintf("visibility rule for %s is nested too deeply", f.ID)
			}
			errs = append(errs, ErrorDetail{Field: f.ID, Rule: "visibility", Message: msg})
		}
		fieldSpan.SetStatus(status)
		fieldSpan.End()
		visible[f.ID] = ok
		if !ok {
			hidden++
		}
	}

	span.SetMetadata("fields", len(form.Fields))
	span.SetMetadata("hidden", hidden)
	if len(errs) > 0 {
		span.SetStatus("error")
	} else {
		span.SetStatus("ok")
	}
	return visible, errs
}
