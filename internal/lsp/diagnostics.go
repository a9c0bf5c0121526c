package lsp

import (
	protocol "github.com/tliron/glsp/protocol_3_16"

	"ferrum/internal/errors"
)

const diagnosticSource = "ferrum"

// ConvertDiagnostics turns analyzer diagnostics for one document into LSP
// diagnostics. Secondary labels become related information; notes are
// appended to the message.
func ConvertDiagnostics(uri protocol.DocumentUri, source string, diags []errors.Diagnostic) []protocol.Diagnostic {
	li := newLineIndex(source)
	out := make([]protocol.Diagnostic, 0, len(diags))
	for _, d := range diags {
		message := d.Message
		if d.Primary.Message != "" {
			message += ": " + d.Primary.Message
		}
		for _, note := range d.Notes {
			message += "\n" + note
		}

		pd := protocol.Diagnostic{
			Range:    li.rangeOf(d.Primary.Span),
			Severity: ptrSeverity(severity(d.Level)),
			Code:     &protocol.IntegerOrString{Value: d.Code},
			Source:   ptrString(diagnosticSource),
			Message:  message,
		}
		if d.Code == errors.WarningUnusedVariable || d.Code == errors.WarningUnnecessaryUnsafe {
			pd.Tags = []protocol.DiagnosticTag{protocol.DiagnosticTagUnnecessary}
		}
		for _, l := range d.Secondary {
			pd.RelatedInformation = append(pd.RelatedInformation, protocol.DiagnosticRelatedInformation{
				Location: protocol.Location{URI: uri, Range: li.rangeOf(l.Span)},
				Message:  l.Message,
			})
		}
		out = append(out, pd)
	}
	return out
}

func severity(level errors.ErrorLevel) protocol.DiagnosticSeverity {
	if level == errors.Warning {
		return protocol.DiagnosticSeverityWarning
	}
	return protocol.DiagnosticSeverityError
}

func ptrSeverity(s protocol.DiagnosticSeverity) *protocol.DiagnosticSeverity {
	return &s
}

func ptrString(s string) *string {
	return &s
}
