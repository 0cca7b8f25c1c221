// Package chatlog turns a finished chat transcript into the raw record that
// the archive stores and the feed serves.
package chatlog

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/wagnerlima/memory-cloud/devfeed/internal/models"
)

// minCodeBlock is the trimmed size a fenced block needs to count as code.
const minCodeBlock = 20

var (
	codeBlockRe = regexp.MustCompile("(?s)```(?:python|py|javascript|js|typescript|ts|html|css|json|bash|sh)?\n(.*?)```")

	filePatterns = []*regexp.Regexp{
		regexp.MustCompile("(?i)`([^`]+\\.(?:html|js|py|ts|css|json|md))`"),
		regexp.MustCompile(`(?i)([a-zA-Z0-9_/]+\.(?:html|js|py|ts|css|json|md))`),
		regexp.MustCompile(`(?i)index\.html`),
		regexp.MustCompile(`(?i)app\.py`),
		regexp.MustCompile(`(?i)package\.json`),
	}
)

// changeRules map conversation keywords to a raw tag; the first hit wins.
var changeRules = []struct {
	keywords []string
	tag      string
}{
	{[]string{"translate", "翻译"}, "function modify"},
	{[]string{"add", "添加"}, "function added"},
	{[]string{"remove", "删除"}, "function modify"},
	{[]string{"fix", "修复"}, "bug fixed"},
}

// Analysis is what the logger learns from a transcript.
type Analysis struct {
	Tag            string
	Title          string
	Description    string
	Summary        string
	BeforeCode     string
	AfterCode      string
	FilesMentioned []string
	CodeBlocks     []string
}

// CodeBlocks returns the substantial fenced code blocks of text, trimmed.
func CodeBlocks(text string) []string {
	var blocks []string
	for _, m := range codeBlockRe.FindAllStringSubmatch(text, -1) {
		code := strings.TrimSpace(m[1])
		if len(code) > minCodeBlock {
			blocks = append(blocks, code)
		}
	}
	return blocks
}

// FileMentions returns file names mentioned in text, in first-seen order.
func FileMentions(text string) []string {
	var files []string
	seen := make(map[string]bool)
	for _, re := range filePatterns {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			name := m[0]
			if len(m) > 1 {
				name = m[1]
			}
			if !seen[name] {
				seen[name] = true
				files = append(files, name)
			}
		}
	}
	return files
}

// Analyze inspects every message of a transcript.
func Analyze(messages []models.Message) Analysis {
	var a Analysis
	seenFile := make(map[string]bool)
	contents := make([]string, 0, len(messages))

	for _, msg := range messages {
		contents = append(contents, msg.Content)
		for _, f := range FileMentions(msg.Content) {
			if !seenFile[f] {
				seenFile[f] = true
				a.FilesMentioned = append(a.FilesMentioned, f)
			}
		}
		a.CodeBlocks = append(a.CodeBlocks, CodeBlocks(msg.Content)...)
	}

	text := strings.ToLower(strings.Join(contents, " "))
	a.Tag = changeTag(text)

	a.Title = "Code Changes Detected"
	a.Description = "Code modifications identified in conversation"
	if strings.Contains(text, "index.html") {
		switch {
		case strings.Contains(text, "translate") || strings.Contains(text, "翻译"):
			a.Title = "HTML Interface Translation"
			a.Description = "Translated HTML interface from Chinese to English"
		case strings.Contains(text, "remove"):
			a.Title = "HTML Interface Cleanup"
			a.Description = "Removed buttons and cleaned up HTML interface"
		}
	}

	if len(a.CodeBlocks) > 0 {
		a.AfterCode = a.CodeBlocks[0]
	}
	if len(a.CodeBlocks) > 1 {
		a.BeforeCode = a.CodeBlocks[1]
	}

	a.Summary = summarize(a.Tag, a.FilesMentioned)
	return a
}

func changeTag(lowerText string) string {
	for _, rule := range changeRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lowerText, kw) {
				return rule.tag
			}
		}
	}
	return "other"
}

func summarize(tag string, files []string) string {
	shown := files
	if len(shown) > 3 {
		shown = shown[:3]
	}
	summary := fmt.Sprintf("Conversation involved %s with %d file(s) mentioned: %s",
		strings.ReplaceAll(tag, "_", " "), len(files), strings.Join(shown, ", "))
	if len(files) > 3 {
		summary += fmt.Sprintf(" and %d more", len(files)-3)
	}
	return summary
}

// Record builds the archived record for a transcript. An empty
// conversationID gets a generated one. Messages without their own
// code_changes receive the code blocks they contain.
func Record(messages []models.Message, conversationID, projectName string, now time.Time) models.RawRecord {
	a := Analyze(messages)

	if conversationID == "" {
		conversationID = fmt.Sprintf("conversation_%s_%s", now.Format("20060102_150405"), uuid.New().String()[:8])
	}

	annotated := make([]models.Message, len(messages))
	roles := make(map[string]bool)
	for i, msg := range messages {
		if msg.CodeChanges == "" {
			msg.CodeChanges = strings.Join(CodeBlocks(msg.Content), "\n\n")
		}
		annotated[i] = msg

		role := msg.Role
		if role == "" {
			role = "unknown"
		}
		roles[role] = true
	}
	participants := make([]string, 0, len(roles))
	for r := range roles {
		participants = append(participants, r)
	}
	sort.Strings(participants)

	stamp := now.UTC().Format(models.TimestampLayout)
	return models.RawRecord{
		ConversationID: conversationID,
		ProjectName:    projectName,
		Tag:            a.Tag,
		Title:          a.Title,
		Description:    a.Description,
		Summary:        a.Summary,
		BeforeCode:     a.BeforeCode,
		AfterCode:      a.AfterCode,
		MessageCount:   len(messages),
		Participants:   participants,
		CreatedAt:      stamp,
		UpdatedAt:      stamp,
		FilesMentioned: a.FilesMentioned,
		CodeBlocks:     len(a.CodeBlocks),
		Messages:       annotated,
	}
}
