package driver

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/tliron/commonlog"
	"golang.org/x/sync/errgroup"

	"ferrum/internal/ast"
	"ferrum/internal/errors"
	"ferrum/internal/parser"
	"ferrum/internal/semantic"
)

var log = commonlog.GetLogger("ferrum.driver")

// Unit is one independently analyzed source file. Module may be supplied
// directly; otherwise Source is parsed.
type Unit struct {
	Path   string
	Source string
	Module *ast.Module
}

// Backend consumes a typed module that passed analysis without errors.
type Backend interface {
	Generate(ctx context.Context, tm *semantic.TypedModule) error
}

type Options struct {
	// Jobs bounds the number of units analyzed at once; 0 means GOMAXPROCS.
	Jobs int
	// MaxDiagnostics caps the diagnostics kept per unit; 0 means no cap.
	MaxDiagnostics int
	// Cache stores per-unit diagnostics of parsed units. Units served from
	// the cache have no typed module, so it is ignored when Backend is set.
	Cache   *DiskCache
	Backend Backend
}

// Result is the outcome of analyzing one unit.
type Result struct {
	Unit        string
	Typed       *semantic.TypedModule // nil when the unit was aborted or cached
	Diagnostics []errors.Diagnostic
	Cached      bool
	Duration    time.Duration

	failed bool
}

// Failed reports whether the unit produced an error diagnostic, including
// errors dropped by the diagnostic limit.
func (r *Result) Failed() bool { return r.failed }

func hasError(diags []errors.Diagnostic) bool {
	for _, d := range diags {
		if d.IsError() {
			return true
		}
	}
	return false
}

// Driver runs the analysis passes over units and collects their
// diagnostics in a shared engine.
type Driver struct {
	opts   Options
	engine *errors.Engine
}

func New(opts Options) *Driver {
	engine := errors.NewEngine()
	engine.SetLimit(opts.MaxDiagnostics)
	return &Driver{opts: opts, engine: engine}
}

func (d *Driver) Engine() *errors.Engine { return d.engine }

// AnalyzeUnit analyzes a single unit. Compile problems are reported as
// diagnostics; the error is reserved for cancellation, cache and backend
// failures.
func (d *Driver) AnalyzeUnit(ctx context.Context, u Unit) (*Result, error) {
	d.engine.AddUnit(u.Path, u.Source)
	return d.analyze(ctx, u)
}

// AnalyzeUnits analyzes units in parallel. Results and engine output follow
// the input order regardless of scheduling.
func (d *Driver) AnalyzeUnits(ctx context.Context, units []Unit) ([]*Result, error) {
	for _, u := range units {
		d.engine.AddUnit(u.Path, u.Source)
	}

	jobs := d.opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	results := make([]*Result, len(units))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, min(jobs, len(units))))
	for i, u := range units {
		g.Go(func() error {
			res, err := d.analyze(gctx, u)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

func (d *Driver) analyze(ctx context.Context, u Unit) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()
	res := &Result{Unit: u.Path}

	useCache := d.opts.Cache != nil && d.opts.Backend == nil && u.Module == nil
	var key Digest
	if useCache {
		key = unitDigest(u)
		var payload DiskPayload
		hit, err := d.opts.Cache.Get(key, &payload)
		if err != nil {
			log.Warningf("cache read for %s: %s", u.Path, err)
		}
		if hit && payload.Schema == diskCacheSchemaVersion {
			d.engine.EmitAll(u.Path, payload.Diagnostics)
			res.Diagnostics = d.engine.UnitDiagnostics(u.Path)
			res.failed = hasError(payload.Diagnostics)
			res.Cached = true
			res.Duration = time.Since(start)
			log.Debugf("%s: served from cache", u.Path)
			return res, nil
		}
	}

	typed, batches := d.passes(u)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var all []errors.Diagnostic
	for _, batch := range batches {
		// Batches are committed in pass order so output never depends on
		// which concurrent pass finished first.
		d.engine.EmitAll(u.Path, batch)
		all = append(all, batch...)
	}
	failed := hasError(all)
	res.Typed = typed
	res.Diagnostics = d.engine.UnitDiagnostics(u.Path)
	res.failed = failed

	if useCache {
		payload := &DiskPayload{Schema: diskCacheSchemaVersion, Path: u.Path, Diagnostics: all}
		if err := d.opts.Cache.Put(key, payload); err != nil {
			log.Warningf("cache write for %s: %s", u.Path, err)
		}
	}

	if d.opts.Backend != nil && typed != nil && !failed {
		if err := d.opts.Backend.Generate(ctx, typed); err != nil {
			return nil, fmt.Errorf("generate %s: %w", u.Path, err)
		}
	}

	res.Duration = time.Since(start)
	log.Debugf("%s: analyzed in %s with %d diagnostics", u.Path, res.Duration, len(all))
	return res, nil
}

// passes runs the front end and the analysis passes over u. It returns the
// typed module, or nil when analysis could not run, and the diagnostic
// batches in commit order.
func (d *Driver) passes(u Unit) (*semantic.TypedModule, [][]errors.Diagnostic) {
	m := u.Module
	if m == nil {
		if u.Source == "" {
			return nil, [][]errors.Diagnostic{{errors.UnitAborted(u.Path, "no syntax tree or source text")}}
		}
		mod, perrs := parser.ParseSource(u.Path, u.Source)
		if len(perrs) > 0 {
			syntax := make([]errors.Diagnostic, len(perrs))
			for i, pe := range perrs {
				syntax[i] = syntaxDiagnostic(pe)
			}
			return nil, [][]errors.Diagnostic{syntax}
		}
		if mod == nil {
			return nil, [][]errors.Diagnostic{{errors.UnitAborted(u.Path, "the parser produced no syntax tree")}}
		}
		m = mod
	}

	table, buildDiags := semantic.Build(m)

	var (
		typed       *semantic.TypedModule
		checkDiags  []errors.Diagnostic
		contexts    map[*ast.CallExpr]semantic.SafetyContext
		safetyDiags []errors.Diagnostic
	)
	// The table is sealed; both passes only read it and write their own
	// outputs.
	var g errgroup.Group
	g.Go(func() error {
		typed, checkDiags = semantic.Check(table)
		return nil
	})
	g.Go(func() error {
		contexts, safetyDiags = semantic.CheckSafety(table)
		return nil
	})
	_ = g.Wait()

	return semantic.Assemble(typed, contexts), [][]errors.Diagnostic{buildDiags, checkDiags, safetyDiags}
}

func syntaxDiagnostic(pe parser.ParseError) errors.Diagnostic {
	end := pe.Position
	end.Offset += pe.Length
	end.Column += pe.Length
	return errors.SyntaxError(pe.Message, ast.Span{Start: pe.Position, End: end})
}
