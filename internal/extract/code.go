package extract

import (
	"strings"

	"github.com/wagnerlima/memory-cloud/devfeed/internal/models"
)

// NoCodeChanges is reported when a record carries no code at all.
const NoCodeChanges = "// No code changes detected"

// ResolveCode returns the record's before and after code. Missing top-level
// values are taken, independently, from the first message carrying one.
func ResolveCode(raw models.RawRecord) (before, after string) {
	before, after = raw.BeforeCode, raw.AfterCode
	for _, msg := range raw.Messages {
		if before == "" && msg.BeforeCode != "" {
			before = msg.BeforeCode
		}
		if after == "" && msg.AfterCode != "" {
			after = msg.AfterCode
		}
		if before != "" && after != "" {
			break
		}
	}
	return before, after
}

// AggregateCodeChanges joins the code-change blocks of all messages, in
// order, separated by a blank line. ok is false when no message has one.
func AggregateCodeChanges(messages []models.Message) (changes string, ok bool) {
	var blocks []string
	for _, msg := range messages {
		if msg.CodeChanges != "" {
			blocks = append(blocks, msg.CodeChanges)
		}
	}
	if len(blocks) == 0 {
		return "", false
	}
	return strings.Join(blocks, "\n\n"), true
}

// FormatCodeChanges renders before and after code as labeled sections.
func FormatCodeChanges(before, after string) string {
	if before == "" && after == "" {
		return NoCodeChanges
	}

	var b strings.Builder
	if before != "" {
		b.WriteString("// Before:\n")
		b.WriteString(before)
		b.WriteString("\n\n")
	}
	if after != "" {
		b.WriteString("// After:\n")
		b.WriteString(after)
	}
	return b.String()
}

// CodeChanges picks the code-change text for a record: aggregated message
// blocks, else the formatted before/after code.
func CodeChanges(raw models.RawRecord, before, after string) string {
	if changes, ok := AggregateCodeChanges(raw.Messages); ok {
		return changes
	}
	return FormatCodeChanges(before, after)
}
