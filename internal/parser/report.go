// Package parser turns crash report text into structured facts. It handles the
// fixed header, the main stack trace, the mod state table and the environment
// markers that tell client and server reports apart.
package parser

import (
	"context"
	"sync"

	"github.com/crashscope/core/internal/models"
)

// ContentFunc loads the text of a report on first use.
type ContentFunc func(ctx context.Context, id string) (string, error)

type contentState int

const (
	unfetched contentState = iota
	fetched
	failed
)

// Report is one candidate crash report, identified by the URL it was
// downloaded from or by an "inline N" label. Two reports are the same report
// when their IDs match.
type Report struct {
	id    string
	fetch ContentFunc

	mu      sync.Mutex
	state   contentState
	content string
	err     error

	facts *models.CrashFacts
}

// NewReport wraps content that is already known.
func NewReport(id, content string) *Report {
	return &Report{id: id, state: fetched, content: content}
}

// NewLazyReport defers loading the content until it is first needed.
func NewLazyReport(id string, fetch ContentFunc) *Report {
	return &Report{id: id, fetch: fetch}
}

func (r *Report) ID() string {
	return r.id
}

// Content returns the report text, loading it at most once. A failed load is
// remembered and returned on every later call.
func (r *Report) Content(ctx context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == unfetched {
		r.content, r.err = r.fetch(ctx, r.id)
		if r.err != nil {
			r.state = failed
		} else {
			r.state = fetched
		}
	}

	return r.content, r.err
}

// Facts returns the parsed view of the report, computed once.
func (r *Report) Facts(ctx context.Context) (*models.CrashFacts, error) {
	content, err := r.Content(ctx)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.facts == nil {
		r.facts = Analyze(content)
	}
	return r.facts, nil
}
