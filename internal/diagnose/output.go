// Package diagnose runs the heuristics that turn a parsed crash report into
// a short Markdown comment for the reporter.
package diagnose

import "strings"

// Output accumulates comment lines across every report of a run.
type Output struct {
	lines []string
}

func (o *Output) Add(lines ...string) {
	o.lines = append(o.lines, lines...)
}

// Lines returns a copy of the accumulated lines.
func (o *Output) Lines() []string {
	return append([]string(nil), o.lines...)
}

func (o *Output) String() string {
	return strings.Join(o.lines, "\n")
}

// Details wraps body in a collapsible block.
func Details(summary, body string) string {
	return "<details><summary>" + summary + "</summary>" + body + "</details>"
}

// detailsList renders items as a collapsible bullet list, one line per element.
func detailsList(summary string, items []string) []string {
	lines := make([]string, 0, len(items)+2)
	lines = append(lines, "<details><summary>"+summary+"</summary>")
	for _, item := range items {
		lines = append(lines, "* "+item)
	}
	return append(lines, "</details>")
}
