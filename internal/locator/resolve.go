// Package locator finds crash reports in free-form issue text, either pasted
// inline or linked from a known paste or file host.
package locator

import (
	"net/url"
	"regexp"
	"strings"
)

// Verdict is the outcome of resolving a link.
type Verdict int

const (
	// Unrecognized links point at hosts we do not read from.
	Unrecognized Verdict = iota
	// Raw links resolved to a plain-text download URL.
	Raw
	// Rejected links are on a known host but will not be fetched.
	Rejected
)

func (v Verdict) String() string {
	switch v {
	case Raw:
		return "raw"
	case Rejected:
		return "rejected"
	default:
		return "unrecognized"
	}
}

// Resolution carries the download URL for Raw links. Rejected links carry a
// Reason for the log and, for some hosts, a Comment addressed to the reporter.
type Resolution struct {
	Verdict Verdict
	RawURL  string
	Reason  string
	Comment string
}

const ubuntuPasteComment = "Please refrain from posting crash reports to paste.ubuntu.com. " +
	"They might require login to be viewed and our automated analysis tool (like this) cannot read their content."

var pasteEEPath = regexp.MustCompile(`^/p/[^/]+/.+$`)

// Resolver only accepts links whose shape is known to serve raw text.
type Resolver struct {
	githubFiles *regexp.Regexp
}

// NewResolver accepts github.com attachment links under any owner's copy of
// the modpack repository named modpackRepo.
func NewResolver(modpackRepo string) *Resolver {
	return &Resolver{
		githubFiles: regexp.MustCompile(`^/[^/]+/` + regexp.QuoteMeta(modpackRepo) + `/files/.+$`),
	}
}

func suspicious(host, link string) Resolution {
	return Resolution{
		Verdict: Rejected,
		Reason:  "Suspicious " + host + " link: " + link + ". Not processing this file",
	}
}

// singleSegment is true for paths like "/abc123".
func singleSegment(path string) bool {
	return path != "" && !strings.Contains(path[1:], "/")
}

func (r *Resolver) Resolve(link string) Resolution {
	u, err := url.Parse(link)
	if err != nil {
		return Resolution{Verdict: Unrecognized, Reason: "Unparsable url " + link}
	}

	switch host := strings.ToLower(u.Hostname()); {
	case host == "pastebin.com":
		if u.RawQuery != "" || !singleSegment(u.Path) {
			return suspicious(host, link)
		}
		return Resolution{Verdict: Raw, RawURL: u.Scheme + "://" + host + "/raw" + u.Path}

	case host == "github.com" && r.githubFiles.MatchString(u.Path):
		if u.RawQuery != "" {
			return suspicious(host, link)
		}
		return Resolution{Verdict: Raw, RawURL: link}

	case host == "gist.github.com":
		return Resolution{Verdict: Rejected, Reason: "Gist API not implemented for " + link + ". Not processing this file"}

	case host == "paste.ee":
		if u.RawQuery != "" || !pasteEEPath.MatchString(u.Path) {
			return suspicious(host, link)
		}
		return Resolution{Verdict: Raw, RawURL: u.Scheme + "://" + host + "/d" + u.Path[2:]}

	case host == "mclo.gs":
		if u.RawQuery != "" || !singleSegment(u.Path) {
			return suspicious(host, link)
		}
		return Resolution{Verdict: Raw, RawURL: "https://api.mclo.gs/1/raw" + u.Path}

	case host == "paste.ubuntu.com":
		return Resolution{Verdict: Rejected, Reason: "paste.ubuntu.com link " + link + " cannot be read", Comment: ubuntuPasteComment}
	}

	return Resolution{Verdict: Unrecognized, Reason: "Unknown url " + link + ". Probably not a crash report"}
}
