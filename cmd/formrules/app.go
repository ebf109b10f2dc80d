package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"formrules/internal/config"
	"formrules/internal/engine"
	"formrules/internal/instrument"
	"formrules/internal/metadata"
	"formrules/internal/store"
)

// App wires configuration, classifier, evaluator and instrumentation for
// one CLI invocation.
type App struct {
	cfg        *config.Config
	out        io.Writer
	classifier *metadata.Classifier
	evaluator  *engine.Evaluator
	dialect    store.Dialect
	registry   *metadata.Registry
	buffer     *instrument.EventBuffer
	inst       instrument.Instrumenter
}

func NewApp(cfg *config.Config, out io.Writer) *App {
	app := &App{
		cfg:        cfg,
		out:        out,
		classifier: metadata.NewClassifier(instrument.LogReporter{}),
		evaluator:  engine.NewEvaluator(cfg.Rules.MaxDepth),
		dialect:    store.NewDialect(cfg.Query.Driver),
		inst:       &instrument.NoopInstrumenter{},
	}
	if cfg.Instrumentation.Enabled {
		app.buffer = instrument.NewEventBuffer(
			instrument.NewJSONLinesSink(os.Stderr),
			cfg.Instrumentation.BufferSize,
			cfg.Instrumentation.FlushIntervalMs,
		)
		app.inst = instrument.NewInstrumenter(app.buffer)
	}
	return app
}

// Close flushes pending instrumentation events.
func (a *App) Close() {
	if a.buffer != nil {
		a.buffer.Stop()
	}
}

func (a *App) context(ctx context.Context) context.Context {
	ctx = instrument.WithTraceID(ctx, instrument.NewTraceID())
	return instrument.WithInstrumenter(ctx, a.inst)
}

// resolveForm loads arg as a form file, or falls back to looking it up by
// id among the forms in the configured directory.
func (a *App) resolveForm(arg string) (*metadata.Form, error) {
	if _, err := os.Stat(arg); err == nil {
		return metadata.LoadFormFile(arg)
	}
	if a.registry == nil {
		reg := metadata.NewRegistry()
		if err := metadata.LoadDir(a.cfg.Forms.Dir, reg); err != nil {
			return nil, err
		}
		a.registry = reg
	}
	form := a.registry.GetForm(arg)
	if form == nil {
		return nil, fmt.Errorf("%w: %s", engine.ErrUnknownForm, arg)
	}
	return form, nil
}

func (a *App) ListForms() error {
	reg := metadata.NewRegistry()
	if err := metadata.LoadDir(a.cfg.Forms.Dir, reg); err != nil {
		return err
	}
	for _, f := range reg.AllForms() {
		fmt.Fprintf(a.out, "%s\tv%d\t%d fields\t%s\n", f.ID, f.Version, len(f.Fields), f.Name)
	}
	return nil
}

// Classify prints each field's storage type and the column type the
// configured dialect would use for it. With storedOnly, presentational
// fields are left out.
func (a *App) Classify(formArg string, storedOnly bool) error {
	form, err := a.resolveForm(formArg)
	if err != nil {
		return err
	}
	fields := form.Fields
	if storedOnly {
		fields = form.StoredFields(a.classifier)
	}
	types := form.StoreTypes(a.classifier)
	for _, f := range fields {
		st := types[f.ID]
		col := a.dialect.ColumnType(st)
		if col == "" {
			col = "-"
		}
		fmt.Fprintf(a.out, "%s\t%s\t%s\t%s\n", f.ID, f.Type, st, col)
	}
	return nil
}

// QueryOptions controls the shape of the generated reply query.
type QueryOptions struct {
	Count  bool
	Limit  int
	Offset int
}

func (a *App) Evaluate(ctx context.Context, formArg, replyPath string) error {
	form, err := a.resolveForm(formArg)
	if err != nil {
		return err
	}
	for _, f := range form.Fields {
		if f.VisibleWhen == nil {
			continue
		}
		if err := engine.ValidateRule(f.VisibleWhen, a.cfg.Rules.MaxDepth); err != nil {
			return fmt.Errorf("field %s: %w", f.ID, err)
		}
	}
	values, err := readReply(replyPath)
	if err != nil {
		return err
	}

	visible, details := a.evaluator.Visibility(a.context(ctx), form, values)
	for _, d := range details {
		log.Printf("WARN: %s: %s", d.Field, d.Message)
	}
	for _, f := range form.Fields {
		fmt.Fprintf(a.out, "%s\t%t\n", f.ID, visible[f.ID])
	}
	if len(details) > 0 {
		return engine.ValidationError(details)
	}
	return nil
}

func (a *App) Query(formArg string, filterArgs []string, opts QueryOptions) error {
	if opts.Limit < 0 || opts.Offset < 0 {
		return fmt.Errorf("limit and offset must not be negative")
	}
	if opts.Count && (opts.Limit > 0 || opts.Offset > 0) {
		return fmt.Errorf("--count cannot be combined with --limit or --offset")
	}
	if opts.Offset > 0 && opts.Limit == 0 {
		return fmt.Errorf("--offset requires --limit")
	}
	form, err := a.resolveForm(formArg)
	if err != nil {
		return err
	}
	set, err := a.parseFilters(form, filterArgs)
	if err != nil {
		return err
	}
	q := engine.ReplyQuery{
		Table:      a.cfg.Query.ReplyTable,
		DataColumn: a.cfg.Query.DataColumn,
		FormID:     form.ID,
		Limit:      opts.Limit,
		Offset:     opts.Offset,
	}
	var res engine.QueryResult
	if opts.Count {
		res = engine.BuildReplyCountQuery(a.dialect, q, set)
	} else {
		res = engine.BuildReplyQuery(a.dialect, q, set)
	}
	fmt.Fprintln(a.out, res.SQL)
	for i, p := range res.Params {
		fmt.Fprintf(a.out, "%s\t%#v\n", a.dialect.Placeholder(i+1), p)
	}
	return nil
}

func (a *App) Match(formArg, replyPath string, filterArgs []string) error {
	form, err := a.resolveForm(formArg)
	if err != nil {
		return err
	}
	set, err := a.parseFilters(form, filterArgs)
	if err != nil {
		return err
	}
	prog, err := engine.CompileFilterSet(set)
	if err != nil {
		return err
	}
	values, err := readReply(replyPath)
	if err != nil {
		return err
	}
	ok, err := prog.Match(values)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%t\n", ok)
	return nil
}

func (a *App) parseFilters(form *metadata.Form, args []string) (*engine.FilterSet, error) {
	params, err := parseFilterArgs(args)
	if err != nil {
		return nil, err
	}
	return engine.ParseFilters(form, a.classifier, params)
}

// parseFilterArgs turns "filter[age.gte]=18" arguments into a parameter map.
func parseFilterArgs(args []string) (map[string]string, error) {
	params := make(map[string]string, len(args))
	for _, arg := range args {
		key, val, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid filter argument %q (want filter[field.op]=value)", arg)
		}
		if _, dup := params[key]; dup {
			return nil, fmt.Errorf("duplicate filter argument %q", key)
		}
		params[key] = val
	}
	return params, nil
}

// readReply decodes a reply file holding a JSON object of field values.
// Numbers are kept as json.Number so they stringify as written.
func readReply(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read reply: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var values map[string]any
	if err := dec.Decode(&values); err != nil {
		return nil, fmt.Errorf("decode reply %s: %w", path, err)
	}
	if values == nil {
		return nil, errors.New("reply must be a JSON object")
	}
	return values, nil
}
