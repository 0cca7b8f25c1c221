// Package normalize resolves raw conversation records into canonical
// project updates.
package normalize

import (
	"fmt"
	"time"

	"github.com/wagnerlima/memory-cloud/devfeed/internal/config"
	"github.com/wagnerlima/memory-cloud/devfeed/internal/extract"
	"github.com/wagnerlima/memory-cloud/devfeed/internal/models"
)

// Normalizer turns RawRecords into NormalizedProjects.
type Normalizer struct {
	cfg       *config.Config
	extractor *extract.Extractor
	now       func() time.Time
}

// New builds a Normalizer from cfg, compiling its extraction rules.
func New(cfg *config.Config) (*Normalizer, error) {
	ex, err := extract.New(cfg.Extraction)
	if err != nil {
		return nil, fmt.Errorf("build extractor: %w", err)
	}
	return &Normalizer{cfg: cfg, extractor: ex, now: time.Now}, nil
}

// WithClock replaces the clock used for missing timestamps.
func (n *Normalizer) WithClock(now func() time.Time) *Normalizer {
	n.now = now
	return n
}

// Normalize resolves one record found at zero-based position i of its batch.
// Every field falls back in order to an alternate field and then to a
// computed default, so no record is ever rejected.
func (n *Normalizer) Normalize(raw models.RawRecord, i int) *models.NormalizedProject {
	tag := raw.Tag
	if tag == "" {
		tag = "other"
	}

	before, after := extract.ResolveCode(raw)

	messages := raw.Messages
	if messages == nil {
		messages = []models.Message{}
	}

	participants := raw.Participants
	if len(participants) == 0 {
		participants = append([]string(nil), n.cfg.Defaults.Participants...)
	}

	return &models.NormalizedProject{
		ID:           firstNonEmpty(raw.ConversationID, raw.ID, fmt.Sprintf("project-%d", i+1)),
		ProjectName:  firstNonEmpty(raw.ProjectName, raw.ProjectNameAlt, n.cfg.Defaults.ProjectName),
		Title:        firstNonEmpty(raw.Title, fmt.Sprintf("Update %d", i+1)),
		Summary:      firstNonEmpty(raw.Summary, raw.Description),
		Type:         n.cfg.TypeFor(tag),
		Timestamp:    firstNonEmpty(raw.CreatedAt, raw.Timestamp, n.now().UTC().Format(models.TimestampLayout)),
		AIModel:      firstNonEmpty(raw.AIModel, n.cfg.Defaults.AIModel),
		Functions:    n.extractor.Features(raw.Messages, n.cfg.Display.MaxFunctions),
		BugFixes:     n.extractor.BugFixes(raw.Messages, n.cfg.Display.MaxBugFixes),
		Tags:         n.extractor.Tags(raw, n.cfg.Display.MaxTags),
		CodeChanges:  extract.CodeChanges(raw, before, after),
		BeforeCode:   nullable(before),
		AfterCode:    nullable(after),
		Impact:       n.cfg.ImpactFor(tag),
		MessageCount: firstPositive(raw.MessageCount, raw.MessageCountAlt, len(raw.Messages)),
		Participants: participants,
		Messages:     messages,
	}
}

// NormalizeBatch normalizes raws in order. A repeated id is suffixed with
// the record's position so ids stay unique within the batch.
func (n *Normalizer) NormalizeBatch(raws []models.RawRecord) []*models.NormalizedProject {
	out := make([]*models.NormalizedProject, 0, len(raws))
	seen := make(map[string]bool, len(raws))

	for i, raw := range raws {
		p := n.Normalize(raw, i)
		if seen[p.ID] {
			base := fmt.Sprintf("%s-%d", p.ID, i+1)
			id := base
			for k := 2; seen[id]; k++ {
				id = fmt.Sprintf("%s-%d", base, k)
			}
			p.ID = id
		}
		seen[p.ID] = true
		out = append(out, p)
	}
	return out
}

// Dataset normalizes a whole feed document. When the document carries no
// roster, one is derived from the normalized updates.
func (n *Normalizer) Dataset(raw *models.RawDataset) *models.Dataset {
	updates := n.NormalizeBatch(raw.ProjectSummaries)
	projects := raw.Projects
	if projects == nil {
		projects = Roster(updates)
	}
	return &models.Dataset{Projects: projects, ProjectSummaries: updates}
}

// Roster counts updates per project name, in first-seen order.
func Roster(updates []*models.NormalizedProject) []models.ProjectInfo {
	roster := []models.ProjectInfo{}
	index := make(map[string]int)
	for _, u := range updates {
		if i, ok := index[u.ProjectName]; ok {
			roster[i].Updates++
			continue
		}
		index[u.ProjectName] = len(roster)
		roster = append(roster, models.ProjectInfo{Name: u.ProjectName, Updates: 1, Status: "Active"})
	}
	return roster
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstPositive(values ...int) int {
	for _, v := range values {
		if v > 0 {
			return v
		}
	}
	return 0
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
