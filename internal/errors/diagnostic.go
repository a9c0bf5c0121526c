package errors

import (
	"ferrum/internal/ast"
)

// ErrorLevel represents the severity of a diagnostic
type ErrorLevel string

const (
	Error   ErrorLevel = "error"
	Warning ErrorLevel = "warning"
)

// Kind classifies a diagnostic by the rule family that produced it. The
// severity of a kind is fixed.
type Kind string

const (
	DeclarationError     Kind = "DeclarationError"
	TypeError            Kind = "TypeError"
	SafetyError          Kind = "SafetyError"
	ForwardedSyntaxError Kind = "ForwardedSyntaxError"
	Lint                 Kind = "Lint"
)

// Level returns the fixed severity of diagnostics of kind k.
func (k Kind) Level() ErrorLevel {
	if k == Lint {
		return Warning
	}
	return Error
}

// Label attaches a message to a source span.
type Label struct {
	Span    ast.Span `msgpack:"span" json:"span"`
	Message string   `msgpack:"message" json:"message"`
}

// Diagnostic is a structured compiler message with one primary location and
// any number of related locations.
type Diagnostic struct {
	Level     ErrorLevel `msgpack:"level" json:"level"`
	Kind      Kind       `msgpack:"kind" json:"kind"`
	Code      string     `msgpack:"code" json:"code"`
	Message   string     `msgpack:"message" json:"message"`
	Primary   Label      `msgpack:"primary" json:"primary"`
	Secondary []Label    `msgpack:"secondary,omitempty" json:"secondary,omitempty"`
	Notes     []string   `msgpack:"notes,omitempty" json:"notes,omitempty"`
}

func (d Diagnostic) IsError() bool { return d.Level == Error }

// clone returns a deep copy so accepted diagnostics cannot be mutated
// through shared slices.
func (d Diagnostic) clone() Diagnostic {
	out := d
	if d.Secondary != nil {
		out.Secondary = append([]Label(nil), d.Secondary...)
	}
	if d.Notes != nil {
		out.Notes = append([]string(nil), d.Notes...)
	}
	return out
}

// Bag collects the diagnostics of one pass over one unit. It is not safe for
// concurrent use; each pass owns its own bag.
type Bag struct {
	items []Diagnostic
}

func NewBag() *Bag {
	return &Bag{}
}

func (b *Bag) Add(d Diagnostic) {
	b.items = append(b.items, d.clone())
}

func (b *Bag) Items() []Diagnostic {
	return b.items
}

func (b *Bag) Len() int { return len(b.items) }

func (b *Bag) HasErrors() bool {
	for _, d := range b.items {
		if d.IsError() {
			return true
		}
	}
	return false
}
