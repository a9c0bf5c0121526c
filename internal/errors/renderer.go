package errors

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"ferrum/internal/ast"
)

const tabWidth = 4

// SourceProvider gives the renderer access to the text of a file.
type SourceProvider interface {
	Source(file string) (string, bool)
}

// FileSet is a SourceProvider backed by an in-memory map of file contents.
type FileSet map[string]string

func (fs FileSet) Source(file string) (string, bool) {
	src, ok := fs[file]
	return src, ok
}

// Renderer turns diagnostics into the annotated source excerpt format:
//
//	error: message
//	  ┌─ file.fe:4:5
//	  │
//	4 │     call()
//	  │     ^^^^ primary label
//	  │
//	  = note
//
// Rendering is a pure function of the diagnostic and the source text.
type Renderer struct {
	sources SourceProvider
	lines   map[string][]string
	color   bool
}

func NewRenderer(sources SourceProvider) *Renderer {
	return &Renderer{
		sources: sources,
		lines:   make(map[string][]string),
	}
}

// WithColor enables or disables ANSI styling regardless of the terminal.
func (r *Renderer) WithColor(enabled bool) *Renderer {
	r.color = enabled
	return r
}

// RenderAll renders diagnostics in order, separated by a blank line.
func (r *Renderer) RenderAll(diags []Diagnostic) string {
	parts := make([]string, len(diags))
	for i, d := range diags {
		parts[i] = r.Render(d)
	}
	return strings.Join(parts, "\n")
}

type renderLabel struct {
	Label
	primary bool
}

// Render formats a single diagnostic. The result ends with a newline.
func (r *Renderer) Render(d Diagnostic) string {
	var out strings.Builder

	levelStyle := r.style(color.FgRed, color.Bold)
	primaryStyle := r.style(color.FgRed)
	if d.Level == Warning {
		levelStyle = r.style(color.FgYellow, color.Bold)
		primaryStyle = r.style(color.FgYellow)
	}
	secondaryStyle := r.style(color.FgBlue)
	gutterStyle := r.style(color.FgBlue)
	bold := r.style(color.Bold)

	out.WriteString(levelStyle.Sprint(string(d.Level)))
	out.WriteString(bold.Sprint(": " + d.Message))
	out.WriteString("\n")

	labels := collectLabels(d)
	width := 0
	for _, l := range labels {
		width = max(width, len(fmt.Sprint(l.Span.Start.Line)))
	}
	pad := strings.Repeat(" ", width)
	border := pad + gutterStyle.Sprint(" │") + "\n"

	for _, group := range groupByFile(labels) {
		anchor := group[0].Span.Start
		for _, l := range group {
			if l.primary {
				anchor = l.Span.Start
			}
		}
		out.WriteString(fmt.Sprintf("%s%s %s:%d:%d\n", pad, gutterStyle.Sprint(" ┌─"),
			anchor.Filename, anchor.Line, anchor.Column))
		out.WriteString(border)

		prevLine := 0
		for _, l := range group {
			line := l.Span.Start.Line
			text := r.sourceLine(l.Span.File(), line)
			if line != prevLine {
				if prevLine != 0 && line > prevLine+1 {
					out.WriteString(pad + gutterStyle.Sprint(" ·") + "\n")
				}
				out.WriteString(gutterStyle.Sprintf("%*d │", width, line))
				if text != "" {
					out.WriteString(" " + expandTabs(text))
				}
				out.WriteString("\n")
				prevLine = line
			}

			indent, length := underline(text, l.Span)
			mark, style := "-", secondaryStyle
			if l.primary {
				mark, style = "^", primaryStyle
			}
			out.WriteString(pad + gutterStyle.Sprint(" │") + " " + strings.Repeat(" ", indent))
			out.WriteString(style.Sprint(strings.Repeat(mark, length)))
			if l.Message != "" {
				out.WriteString(" " + style.Sprint(l.Message))
			}
			out.WriteString("\n")
		}
	}

	if len(d.Notes) > 0 {
		if len(labels) > 0 {
			out.WriteString(border)
		}
		for _, note := range d.Notes {
			note = strings.ReplaceAll(note, "\n", "\n"+pad+"   ")
			out.WriteString(pad + " = " + note + "\n")
		}
	}

	return out.String()
}

func (r *Renderer) style(attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	if r.color {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c
}

// sourceLine returns the 1-based line of file, or "" when unavailable.
func (r *Renderer) sourceLine(file string, line int) string {
	lines, ok := r.lines[file]
	if !ok {
		if r.sources != nil {
			if src, found := r.sources.Source(file); found {
				lines = strings.Split(src, "\n")
				for i, l := range lines {
					lines[i] = strings.TrimSuffix(l, "\r")
				}
			}
		}
		r.lines[file] = lines
	}
	if line < 1 || line > len(lines) {
		return ""
	}
	return lines[line-1]
}

// collectLabels returns the primary label followed by the secondary labels,
// dropping labels without a source location.
func collectLabels(d Diagnostic) []renderLabel {
	var labels []renderLabel
	if !d.Primary.Span.IsZero() {
		labels = append(labels, renderLabel{Label: d.Primary, primary: true})
	}
	for _, s := range d.Secondary {
		if !s.Span.IsZero() {
			labels = append(labels, renderLabel{Label: s})
		}
	}
	return labels
}

// groupByFile groups labels per file, the first label's file first and the
// others in order of appearance, each group sorted by line.
func groupByFile(labels []renderLabel) [][]renderLabel {
	var order []string
	groups := make(map[string][]renderLabel)
	for _, l := range labels {
		f := l.Span.File()
		if _, ok := groups[f]; !ok {
			order = append(order, f)
		}
		groups[f] = append(groups[f], l)
	}

	out := make([][]renderLabel, 0, len(order))
	for _, f := range order {
		g := groups[f]
		sort.SliceStable(g, func(i, j int) bool {
			return g[i].Span.Start.Line < g[j].Span.Start.Line
		})
		out = append(out, g)
	}
	return out
}

// underline computes the display offset and width of span on its first line.
// Spans continuing past the line are underlined to its end.
func underline(text string, span ast.Span) (indent, length int) {
	runes := []rune(text)
	start := clamp(span.Start.Column-1, 0, len(runes))
	end := len(runes)
	if span.End.Line == span.Start.Line {
		end = clamp(span.End.Column-1, start, len(runes))
	}

	indent = displayWidth(string(runes[:start]))
	length = displayWidth(string(runes[start:end]))
	if length == 0 {
		length = 1
	}
	return indent, length
}

func displayWidth(s string) int {
	return runewidth.StringWidth(expandTabs(s))
}

func expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", strings.Repeat(" ", tabWidth))
}

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}
