package extract

import (
	"strings"
	"unicode/utf8"

	"github.com/wagnerlima/memory-cloud/devfeed/internal/models"
)

// Tags builds the tag list of a record: its categorical tag, then long
// description words, then message types. Insertion stops at limit.
func (e *Extractor) Tags(raw models.RawRecord, limit int) []string {
	tags := tagSet{limit: limit, seen: make(map[string]bool)}

	if raw.Tag != "" && raw.Tag != "other" {
		tags.add(strings.ReplaceAll(raw.Tag, " ", "-"))
	}

	description := raw.Description
	if description == "" {
		description = raw.Summary
	}
	for _, word := range strings.Fields(strings.ToLower(description)) {
		if utf8.RuneCountInString(word) > e.minTagToken {
			tags.add(word)
		}
	}

	for _, msg := range raw.Messages {
		if msg.Type != "" {
			tags.add(msg.Type)
		}
	}

	return tags.list()
}

type tagSet struct {
	limit int
	seen  map[string]bool
	items []string
}

func (t *tagSet) add(tag string) {
	if len(t.items) >= t.limit || t.seen[tag] {
		return
	}
	t.seen[tag] = true
	t.items = append(t.items, tag)
}

func (t *tagSet) list() []string {
	if t.items == nil {
		return []string{}
	}
	return t.items
}
