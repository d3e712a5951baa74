package search

import "strings"

// Sentinels of the textual result form consumed by the synthesis prompt.
const (
	NoResultsText = "GEEN RESULTATEN"
	FailurePrefix = "FOUT: "

	verifiedHeader = "GEVERIFIEERDE BRONNEN:"
)

// Status tags the outcome of one prompt.
type Status int

const (
	StatusFound  Status = iota // model returned text
	StatusEmpty                // no text-bearing block in the response
	StatusFailed               // terminal error after retries
)

func (s Status) String() string {
	switch s {
	case StatusFound:
		return "found"
	case StatusEmpty:
		return "empty"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result is the outcome of running one prompt. It is created once per prompt per run
// and never mutated after Executor.Run returns it.
type Result struct {
	ID       string
	Name     string
	Status   Status
	Text     string           // joined text blocks (StatusFound)
	Sources  []VerifiedSource // extraction order
	Err      string           // failure reason (StatusFailed)
	Attempts int
}

// RawOutput renders the result the way the synthesis prompt expects it: findings text
// followed by the verified-sources block, the empty sentinel, or "FOUT: <reason>".
func (r Result) RawOutput() string {
	switch r.Status {
	case StatusFailed:
		return FailurePrefix + r.Err
	case StatusEmpty:
		return NoResultsText
	}
	if len(r.Sources) == 0 {
		return r.Text
	}
	var sb strings.Builder
	sb.WriteString(r.Text)
	sb.WriteString("\n\n")
	sb.WriteString(verifiedHeader)
	sb.WriteString("\n")
	sb.WriteString(FormatSources(r.Sources))
	return sb.String()
}

// FormatSources renders one "- [title](url)" line per source.
func FormatSources(sources []VerifiedSource) string {
	lines := make([]string, 0, len(sources))
	for _, s := range sources {
		lines = append(lines, "- ["+s.Title+"]("+s.URL+")")
	}
	return strings.Join(lines, "\n")
}

// Usable keeps the results worth synthesizing: anything that is neither empty nor
// failed. Order is preserved.
func Usable(results []Result) []Result {
	usable := make([]Result, 0, len(results))
	for _, r := range results {
		if r.Status == StatusFound {
			usable = append(usable, r)
		}
	}
	return usable
}
