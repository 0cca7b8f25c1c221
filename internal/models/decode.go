package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
)

// Producers of the projects document do not agree on field types: counts
// arrive as strings, ids as numbers, lists as single strings. Records are
// decoded field by field so a mistyped field falls back to its zero value
// instead of failing the whole document.

// fields holds the members of one JSON object, undecoded.
type fields map[string]json.RawMessage

// objectFields splits data into its members. Anything that is not an
// object yields no members.
func objectFields(data []byte) fields {
	var f fields
	if err := json.Unmarshal(data, &f); err != nil {
		return nil
	}
	return f
}

// scalarString renders a JSON string, number or boolean as text. Objects,
// arrays and null give "".
func scalarString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return strconv.FormatBool(b)
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

func (f fields) str(key string) string {
	raw, ok := f[key]
	if !ok {
		return ""
	}
	return scalarString(raw)
}

// integer accepts a JSON number or a numeric string. Fractions are truncated.
func (f fields) integer(key string) int {
	raw, ok := f[key]
	if !ok {
		return 0
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return int(n)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if v, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return int(v)
		}
	}
	return 0
}

// list accepts an array of scalars or a single scalar. Empty and
// non-scalar elements are skipped.
func (f fields) list(key string) []string {
	raw, ok := f[key]
	if !ok {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err == nil {
		out := make([]string, 0, len(items))
		for _, item := range items {
			if s := scalarString(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	if s := scalarString(raw); s != "" {
		return []string{s}
	}
	return nil
}

// array returns the elements of an array member, or nil for anything else.
func (f fields) array(key string) []json.RawMessage {
	raw, ok := f[key]
	if !ok {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	return items
}

// UnmarshalJSON decodes a message leniently. It never fails.
func (m *Message) UnmarshalJSON(data []byte) error {
	f := objectFields(data)
	*m = Message{
		Role:        f.str("role"),
		Content:     f.str("content"),
		Type:        f.str("type"),
		Timestamp:   f.str("timestamp"),
		BeforeCode:  f.str("before_code"),
		AfterCode:   f.str("after_code"),
		CodeChanges: f.str("code_changes"),
	}
	return nil
}

// UnmarshalJSON decodes a record leniently. It never fails; a record that
// is not an object decodes as the empty record.
func (r *RawRecord) UnmarshalJSON(data []byte) error {
	f := objectFields(data)
	*r = RawRecord{
		ConversationID:  f.str("conversation_id"),
		ID:              f.str("id"),
		ProjectName:     f.str("project_name"),
		ProjectNameAlt:  f.str("projectName"),
		Title:           f.str("title"),
		Summary:         f.str("summary"),
		Description:     f.str("description"),
		Tag:             f.str("tag"),
		CreatedAt:       f.str("created_at"),
		UpdatedAt:       f.str("updated_at"),
		Timestamp:       f.str("timestamp"),
		AIModel:         f.str("ai_model"),
		BeforeCode:      f.str("before_code"),
		AfterCode:       f.str("after_code"),
		MessageCount:    f.integer("message_count"),
		MessageCountAlt: f.integer("messageCount"),
		Participants:    f.list("participants"),
		FilesMentioned:  f.list("files_mentioned"),
		CodeBlocks:      f.integer("code_blocks_found"),
	}
	if items := f.array("messages"); items != nil {
		r.Messages = make([]Message, len(items))
		for i, item := range items {
			r.Messages[i].UnmarshalJSON(item)
		}
	}
	return nil
}

// UnmarshalJSON decodes a roster row leniently. It never fails.
func (p *ProjectInfo) UnmarshalJSON(data []byte) error {
	f := objectFields(data)
	*p = ProjectInfo{
		Name:    f.str("name"),
		Updates: f.integer("updates"),
		Status:  f.str("status"),
	}
	return nil
}

// ErrNotDocument is returned when a projects document is not a JSON object.
var ErrNotDocument = errors.New("projects document is not a JSON object")

// UnmarshalJSON decodes a projects document. Only a document that is not an
// object fails; a mistyped projects or projectSummaries member is treated as
// absent, and every summary entry yields a record.
func (d *RawDataset) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*d = RawDataset{}
		return nil
	}
	f := objectFields(data)
	if f == nil {
		return ErrNotDocument
	}

	*d = RawDataset{}
	if items := f.array("projects"); items != nil {
		d.Projects = make([]ProjectInfo, len(items))
		for i, item := range items {
			d.Projects[i].UnmarshalJSON(item)
		}
	}
	if items := f.array("projectSummaries"); items != nil {
		d.ProjectSummaries = make([]RawRecord, len(items))
		for i, item := range items {
			d.ProjectSummaries[i].UnmarshalJSON(item)
		}
	}
	return nil
}
