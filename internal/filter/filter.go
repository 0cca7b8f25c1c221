// Package filter selects the visible subset of project updates.
package filter

import (
	"strings"

	"github.com/wagnerlima/memory-cloud/devfeed/internal/models"
)

// All is the wildcard value for the project and type filters.
const All = "all"

// Criteria combines a free-text query with the two categorical filters.
// Project and Type match exactly; only All matches everything.
type Criteria struct {
	Query   string `json:"query"`
	Project string `json:"project"`
	Type    string `json:"type"`
}

func (c Criteria) match(p *models.NormalizedProject, lowerQuery string) bool {
	return matchesQuery(p, lowerQuery) &&
		matchesExact(c.Project, p.ProjectName) &&
		matchesExact(c.Type, p.Type)
}

// Apply returns the projects matching c, in source order. The input slice is
// not modified.
func Apply(projects []*models.NormalizedProject, c Criteria) []*models.NormalizedProject {
	query := strings.ToLower(c.Query)
	out := []*models.NormalizedProject{}
	for _, p := range projects {
		if c.match(p, query) {
			out = append(out, p)
		}
	}
	return out
}

func matchesQuery(p *models.NormalizedProject, query string) bool {
	if query == "" {
		return true
	}
	if containsFold(p.Title, query) || containsFold(p.Summary, query) || containsFold(p.ProjectName, query) {
		return true
	}
	for _, tag := range p.Tags {
		if containsFold(tag, query) {
			return true
		}
	}
	return false
}

func matchesExact(want, got string) bool {
	return want == All || want == got
}

// containsFold expects query already lower-cased.
func containsFold(s, query string) bool {
	return strings.Contains(strings.ToLower(s), query)
}
