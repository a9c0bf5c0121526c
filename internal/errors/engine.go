package errors

import (
	"sync"
)

// Engine is the shared diagnostic sink. Units are registered in input order
// and their diagnostics are reported grouped by unit, then in emission
// order. It is safe for concurrent use.
type Engine struct {
	mu       sync.Mutex
	units    []string
	byUnit   map[string][]Diagnostic
	sources  FileSet
	limit    int
	dropped  map[string]int
	errors   int
	warnings int
}

func NewEngine() *Engine {
	return &Engine{
		byUnit:  make(map[string][]Diagnostic),
		sources: make(FileSet),
		dropped: make(map[string]int),
	}
}

// SetLimit caps the number of diagnostics kept per unit. Zero means no cap.
// Dropped diagnostics still count towards HasErrors.
func (e *Engine) SetLimit(n int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.limit = n
}

// AddUnit registers a unit and its source text. Registering the same unit
// again replaces its source and keeps its position.
func (e *Engine) AddUnit(name, source string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.byUnit[name]; !ok {
		e.units = append(e.units, name)
		e.byUnit[name] = nil
	}
	e.sources[name] = source
}

// Emit accepts a diagnostic for unit. Unknown units are registered on first
// use.
func (e *Engine) Emit(unit string, d Diagnostic) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.emitLocked(unit, d)
}

// EmitAll accepts a batch atomically, preserving its order.
func (e *Engine) EmitAll(unit string, diags []Diagnostic) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, d := range diags {
		e.emitLocked(unit, d)
	}
}

func (e *Engine) emitLocked(unit string, d Diagnostic) {
	if _, ok := e.byUnit[unit]; !ok {
		e.units = append(e.units, unit)
	}
	if d.IsError() {
		e.errors++
	} else {
		e.warnings++
	}
	if e.limit > 0 && len(e.byUnit[unit]) >= e.limit {
		e.dropped[unit]++
		return
	}
	e.byUnit[unit] = append(e.byUnit[unit], d.clone())
}

// Diagnostics returns every accepted diagnostic grouped by unit in
// registration order.
func (e *Engine) Diagnostics() []Diagnostic {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []Diagnostic
	for _, u := range e.units {
		for _, d := range e.byUnit[u] {
			out = append(out, d.clone())
		}
	}
	return out
}

// UnitDiagnostics returns the diagnostics accepted for one unit.
func (e *Engine) UnitDiagnostics(unit string) []Diagnostic {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Diagnostic, 0, len(e.byUnit[unit]))
	for _, d := range e.byUnit[unit] {
		out = append(out, d.clone())
	}
	return out
}

// Units returns the registered unit names in order.
func (e *Engine) Units() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.units...)
}

// Dropped returns how many diagnostics of unit exceeded the limit.
func (e *Engine) Dropped(unit string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dropped[unit]
}

// HasErrors reports whether any accepted diagnostic is an error. A run with
// only warnings has not failed.
func (e *Engine) HasErrors() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.errors > 0
}

func (e *Engine) Counts() (errs, warnings int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.errors, e.warnings
}

// Source implements SourceProvider for registered units.
func (e *Engine) Source(file string) (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	src, ok := e.sources[file]
	return src, ok
}

// Render renders all accepted diagnostics using the registered sources.
func (e *Engine) Render(colored bool) string {
	return NewRenderer(e).WithColor(colored).RenderAll(e.Diagnostics())
}
