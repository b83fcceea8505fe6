// Package triage runs one pass over an issue: it finds the crash reports in
// the configured form sections, diagnoses each of them and delivers the
// resulting comment.
package triage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/crashscope/core/internal/locator"
)

// ErrFormData is returned when the issue form is not a JSON object.
var ErrFormData = errors.New("unable to parse formdata input")

// FormData maps issue form headings to the answers given.
type FormData map[string]string

// ParseFormData decodes the issue form. Answers that are not strings keep
// their JSON text.
func ParseFormData(raw []byte) (FormData, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormData, err)
	}
	if fields == nil {
		return nil, fmt.Errorf("%w: not an object", ErrFormData)
	}

	form := make(FormData, len(fields))
	for k, v := range fields {
		var s *string
		if err := json.Unmarshal(v, &s); err == nil && s != nil {
			form[k] = *s
			continue
		}
		form[k] = string(bytes.TrimSpace(v))
	}
	return form, nil
}

// Sections picks the named answers in order. A heading that is not on the
// form is logged and searched as empty text.
func (f FormData) Sections(names []string, log *slog.Logger) []locator.Section {
	sections := make([]locator.Section, 0, len(names))
	for _, name := range names {
		text, ok := f[name]
		if !ok && log != nil {
			log.Warn("section missing from form data", "section", name)
		}
		sections = append(sections, locator.Section{Name: name, Text: text})
	}
	return sections
}
