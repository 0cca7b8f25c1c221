package storage

import (
	"fmt"

	"github.com/wagnerlima/memory-cloud/devfeed/internal/models"
)

// Search performs FTS5 full-text search over conversation titles, summaries
// and project names. Results are newest first; no relevance ranking is applied.
func (a *Archive) Search(query string) ([]models.ChatLog, error) {
	rows, err := a.db.Query(
		`SELECT c.id, c.conversation_id, c.project_name, c.tag, c.title, c.summary, c.message_count, c.created_at, c.updated_at
		 FROM conversations c
		 JOIN conversations_fts ON conversations_fts.rowid = c.rowid
		 WHERE conversations_fts MATCH ? AND c.deleted_at IS NULL
		 ORDER BY c.created_at DESC, c.rowid DESC`,
		query,
	)
	if err != nil {
		return nil, fmt.Errorf("search conversations fts: %w", err)
	}
	defer rows.Close()

	return scanChatLogs(rows)
}
