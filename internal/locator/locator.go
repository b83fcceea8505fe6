// Package locator finds crash reports in free-form issue text, either pasted
// inline or linked from a known paste or file host.
package locator

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/crashscope/core/internal/fetch"
	"github.com/crashscope/core/internal/parser"
)

var (
	linkPattern = regexp.MustCompile(`(https://\S+)|\[[^\]]+\]\((https://\S+)\)`)
	// logPattern matches the first line of an fml-client-latest.log.
	logPattern = regexp.MustCompile(`^\[\d{2}:\d{2}:\d{2}\] \[[^/]+/(INFO|DEBUG|TRACE|WARN|ERROR)\] \[.+/.+\]:`)
)

// Section is one named free-text field of an issue.
type Section struct {
	Name string
	Text string
}

// Result holds the located reports and any lines that should be shown to the
// reporter, such as download failures.
type Result struct {
	Reports  []*parser.Report
	Comments []string
}

// Locator scans issue sections for crash reports. A Locator remembers every
// link it has seen, so one instance should be used per run.
type Locator struct {
	fetcher  fetch.Fetcher
	resolver *Resolver
	log      *slog.Logger

	seenLinks map[string]bool
	seenRaw   map[string]bool
}

func New(fetcher fetch.Fetcher, resolver *Resolver, log *slog.Logger) *Locator {
	if log == nil {
		log = slog.Default()
	}
	return &Locator{
		fetcher:   fetcher,
		resolver:  resolver,
		log:       log.With("component", "locator"),
		seenLinks: map[string]bool{},
		seenRaw:   map[string]bool{},
	}
}

// Locate returns every report found in sections, inline reports of a section
// first, followed by linked ones in order of appearance.
func (l *Locator) Locate(ctx context.Context, sections []Section) Result {
	var res Result
	for _, s := range sections {
		res.Reports = append(res.Reports, scanInline(s.Text)...)
		l.scanLinks(ctx, s, &res)
	}
	return res
}

func indexFrom(s, substr string, from int) int {
	if from > len(s) {
		return -1
	}
	i := strings.Index(s[from:], substr)
	if i < 0 {
		return -1
	}
	return from + i
}

// scanInline cuts every pasted report from its marker to the end of its
// "Is Modded" line. A report without that line runs to the next marker or to
// the end of the text.
func scanInline(text string) []*parser.Report {
	var reports []*parser.Report

	start := strings.Index(text, parser.Marker)
	for start != -1 {
		next := indexFrom(text, parser.Marker, start+len(parser.Marker))
		end := len(text)
		if next != -1 {
			end = next
		}

		if modded := indexFrom(text, parser.ModdedMarker, start); modded != -1 && (next == -1 || modded < next) {
			end = len(text)
			if nl := indexFrom(text, "\n", modded); nl != -1 {
				end = nl
			}
		}

		id := fmt.Sprintf("inline %d", len(reports)+1)
		reports = append(reports, parser.NewReport(id, text[start:end]))
		start = indexFrom(text, parser.Marker, end)
	}

	return reports
}

func extractLinks(text string) []string {
	var links []string
	for _, m := range linkPattern.FindAllStringSubmatch(text, -1) {
		link := m[1]
		if link == "" {
			link = m[2]
		}
		links = append(links, link)
	}
	return links
}

func (l *Locator) scanLinks(ctx context.Context, s Section, res *Result) {
	for _, link := range extractLinks(s.Text) {
		if l.seenLinks[link] {
			l.log.Debug("Duplicate url", "url", link)
			continue
		}
		l.seenLinks[link] = true

		r := l.resolver.Resolve(link)
		switch r.Verdict {
		case Unrecognized:
			l.log.Info(r.Reason, "section", s.Name)
			continue
		case Rejected:
			l.log.Warn(r.Reason, "section", s.Name)
			if r.Comment != "" {
				res.Comments = append(res.Comments, r.Comment)
			}
			continue
		}

		if l.seenRaw[r.RawURL] {
			l.log.Debug("Duplicate download url", "url", r.RawURL, "link", link)
			continue
		}
		l.seenRaw[r.RawURL] = true

		if report := l.download(ctx, link, r.RawURL, res); report != nil {
			res.Reports = append(res.Reports, report)
		}
	}
}

func (l *Locator) download(ctx context.Context, link, rawURL string, res *Result) *parser.Report {
	resp, err := l.fetcher.Get(ctx, rawURL)
	if err == nil {
		err = resp.Err()
	}
	if err != nil {
		msg := fmt.Sprintf("Failed to download url: %s. Original file link: %s", rawURL, link)
		l.log.Warn(msg, "error", err)
		res.Comments = append(res.Comments, msg)
		return nil
	}

	content := resp.Text()
	switch {
	case strings.HasPrefix(content, parser.Marker):
		return parser.NewReport(rawURL, content)
	case logPattern.MatchString(content):
		l.log.Info(fmt.Sprintf("Found potential log in %s. Parsing not implemented for now.", link))
	default:
		l.log.Debug("Linked file is not a crash report", "url", rawURL)
	}
	return nil
}
