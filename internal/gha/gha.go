// Package gha speaks the GitHub Actions runner protocol: action inputs, step
// outputs, log groups and workflow commands.
package gha

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
)

// Input reads an action input the way the runner exposes it, as
// INPUT_<NAME> with spaces turned into underscores.
func Input(getenv func(string) string, name string) string {
	key := "INPUT_" + strings.ToUpper(strings.ReplaceAll(name, " ", "_"))
	return strings.TrimSpace(getenv(key))
}

var dataEscaper = strings.NewReplacer("%", "%25", "\r", "%0D", "\n", "%0A")

// EscapeData escapes a workflow command message.
func EscapeData(s string) string {
	return dataEscaper.Replace(s)
}

// Command writes a workflow command such as ::warning::msg.
func Command(w io.Writer, name, message string) error {
	_, err := fmt.Fprintf(w, "::%s::%s\n", name, EscapeData(message))
	return err
}

// Group opens a collapsible log group. The returned func closes it.
func Group(w io.Writer, title string) func() {
	_ = Command(w, "group", title)
	return func() {
		_, _ = io.WriteString(w, "::endgroup::\n")
	}
}

// SetOutput appends a step output to the file named by GITHUB_OUTPUT. Values
// may span lines, so the heredoc form with a random delimiter is always used.
func SetOutput(path, name, value string) error {
	delimiter := "ghadelimiter_" + uuid.NewString()
	if strings.Contains(value, delimiter) || strings.Contains(name, delimiter) {
		return fmt.Errorf("output %s contains its delimiter", name)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open output file: %w", err)
	}

	_, err = fmt.Fprintf(f, "%s<<%s\n%s\n%s\n", name, delimiter, value, delimiter)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("write output %s: %w", name, err)
	}
	return nil
}
