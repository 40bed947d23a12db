package shape

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/taigrr/nifview/pkg/blocks"
)

// Issue classifies a recoverable data problem.
type Issue uint8

const (
	// IssueMissingData: a required field, table or link is absent.
	IssueMissingData Issue = iota
	// IssueMalformedVertex: a vertex has fewer than four weights or indices.
	IssueMalformedVertex
	// IssueDanglingBone: a bound bone is not in the live skeleton.
	IssueDanglingBone
	// IssueIndexOutOfRange: a triangle or influence points past the buffers.
	IssueIndexOutOfRange
	issueCount
)

var issueNames = [issueCount]string{
	"missing_data",
	"malformed_vertex",
	"dangling_bone",
	"index_out_of_range",
}

func (i Issue) String() string {
	if i >= issueCount {
		return "unknown"
	}
	return issueNames[i]
}

// Issues lists every issue kind in order.
func Issues() []Issue {
	out := make([]Issue, issueCount)
	for i := range out {
		out[i] = Issue(i)
	}
	return out
}

// Diagnostics counts issues seen while reading or skinning a shape.
type Diagnostics struct {
	counts [issueCount]int
}

// Count returns how often issue i occurred.
func (d Diagnostics) Count(i Issue) int {
	if i >= issueCount {
		return 0
	}
	return d.counts[i]
}

// Total returns the number of issues of any kind.
func (d Diagnostics) Total() int {
	n := 0
	for _, c := range d.counts {
		n += c
	}
	return n
}

// Add returns the element-wise sum of d and o.
func (d Diagnostics) Add(o Diagnostics) Diagnostics {
	for i := range d.counts {
		d.counts[i] += o.counts[i]
	}
	return d
}

func (d Diagnostics) String() string {
	if d.Total() == 0 {
		return "ok"
	}
	var parts []string
	for i, c := range d.counts {
		if c > 0 {
			parts = append(parts, fmt.Sprintf("%s=%d", Issue(i), c))
		}
	}
	return strings.Join(parts, " ")
}

// reporter counts issues and logs them at debug level. A nil reporter
// discards everything.
type reporter struct {
	log   *slog.Logger
	diag  *Diagnostics
	block blocks.Ref
}

func (r *reporter) note(issue Issue, msg string, args ...any) {
	if r == nil {
		return
	}
	if r.diag != nil {
		r.diag.counts[issue]++
	}
	if r.log == nil || !r.log.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	attrs := append([]any{"kind", issue.String(), "block", int(r.block)}, args...)
	r.log.Debug(msg, attrs...)
}
