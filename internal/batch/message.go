// Package batch splits a large change set into commit-sized batches.
// This file builds batch-scoped commit messages.
package batch

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/ItsDalk-Lane/gitbatch/internal/constants"
)

// FormatMessage builds the commit message of batch index (1-based) out of
// total. The subject is the first line of original, tagged with
// "[batch i/N]" when there is more than one batch. The body lists the file
// count, estimated size and at most maxListed paths followed by "+K more".
func FormatMessage(original string, index, total int, b Batch, maxListed int) string {
	if maxListed <= 0 {
		maxListed = constants.DefaultMaxListedFiles
	}

	subject, _, _ := strings.Cut(strings.TrimSpace(original), "\n")
	subject = strings.TrimSpace(subject)
	if total > 1 {
		subject = fmt.Sprintf("%s [batch %d/%d]", subject, index, total)
	}

	var sb strings.Builder
	sb.WriteString(subject)
	sb.WriteString("\n\nBatch info:\n")
	fmt.Fprintf(&sb, "- files: %d\n", len(b.Files))
	fmt.Fprintf(&sb, "- estimated size: %.1fMB (%s)\n", float64(b.EstimatedSize)/1024/1024, humanize.IBytes(sizeBytes(b.EstimatedSize)))
	fmt.Fprintf(&sb, "- batch: %d/%d\n", index, total)
	sb.WriteString("\nFiles:")

	for i, f := range b.Files {
		if i == maxListed {
			fmt.Fprintf(&sb, "\n+%d more", len(b.Files)-maxListed)
			break
		}
		sb.WriteString("\n- ")
		sb.WriteString(f.Path)
	}

	return sb.String()
}

// sizeBytes converts an estimate for humanize. Estimates are never negative.
func sizeBytes(n int64) uint64 {
	if n < 0 {
		return 0
	}
	return uint64(n)
}
