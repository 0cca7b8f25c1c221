package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/wagnerlima/memory-cloud/devfeed/internal/models"
)

// ErrNotFound is returned when a conversation is not in the archive.
var ErrNotFound = errors.New("conversation not found")

// Archive stores the raw conversation records written by the chat logger.
type Archive struct {
	db   *sql.DB
	path string
}

// OpenArchive opens (or creates) archive.db under dataDir and runs migrations.
func OpenArchive(dataDir string) (*Archive, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	dbPath := filepath.Join(dataDir, "archive.db")
	db, err := sql.Open("sqlite3", "file:"+dbPath+dsnPragmas)
	if err != nil {
		return nil, fmt.Errorf("open archive db: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping archive db: %w", err)
	}

	if _, err := db.Exec(ArchiveSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate archive db: %w", err)
	}
	if _, err := db.Exec(ArchiveTriggers); err != nil {
		db.Close()
		return nil, fmt.Errorf("create archive triggers: %w", err)
	}

	return &Archive{db: db, path: dbPath}, nil
}

// Close closes the database connection.
func (a *Archive) Close() error {
	return a.db.Close()
}

// Path returns the archive database file path.
func (a *Archive) Path() string {
	return a.path
}

// Save archives rec under its conversation id. Saving an id that already
// exists replaces the stored record and revives it if it was deleted.
func (a *Archive) Save(rec models.RawRecord) (*models.ChatLog, error) {
	if rec.ConversationID == "" {
		return nil, fmt.Errorf("save conversation: conversation_id is required")
	}

	payload, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("encode conversation %q: %w", rec.ConversationID, err)
	}

	tag := rec.Tag
	if tag == "" {
		tag = "other"
	}
	count := rec.MessageCount
	if count == 0 {
		count = len(rec.Messages)
	}

	_, err = a.db.Exec(
		`INSERT INTO conversations (id, conversation_id, project_name, tag, title, summary, message_count, record)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(conversation_id) DO UPDATE SET
		     project_name  = excluded.project_name,
		     tag           = excluded.tag,
		     title         = excluded.title,
		     summary       = excluded.summary,
		     message_count = excluded.message_count,
		     record        = excluded.record,
		     updated_at    = strftime('%Y-%m-%dT%H:%M:%fZ', 'now'),
		     deleted_at    = NULL`,
		uuid.New().String(), rec.ConversationID, rec.ProjectName, tag, rec.Title, rec.Summary, count, string(payload),
	)
	if err != nil {
		return nil, fmt.Errorf("insert conversation %q: %w", rec.ConversationID, err)
	}

	return a.Get(rec.ConversationID)
}

// Get returns the listing entry of one live conversation.
func (a *Archive) Get(conversationID string) (*models.ChatLog, error) {
	row := a.db.QueryRow(
		`SELECT id, conversation_id, project_name, tag, title, summary, message_count, created_at, updated_at
		 FROM conversations WHERE conversation_id = ? AND deleted_at IS NULL`,
		conversationID,
	)
	var c models.ChatLog
	err := row.Scan(&c.ID, &c.ConversationID, &c.ProjectName, &c.Tag, &c.Title, &c.Summary, &c.MessageCount, &c.CreatedAt, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("conversation %q: %w", conversationID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("scan conversation: %w", err)
	}
	return &c, nil
}

// Record returns the full raw record of one live conversation.
func (a *Archive) Record(conversationID string) (*models.RawRecord, error) {
	var payload string
	err := a.db.QueryRow(
		`SELECT record FROM conversations WHERE conversation_id = ? AND deleted_at IS NULL`,
		conversationID,
	).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("conversation %q: %w", conversationID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("lookup conversation %q: %w", conversationID, err)
	}

	var rec models.RawRecord
	if err := json.Unmarshal([]byte(payload), &rec); err != nil {
		return nil, fmt.Errorf("decode conversation %q: %w", conversationID, err)
	}
	return &rec, nil
}

// List returns live conversations, newest first. An empty project or "all"
// lists every project.
func (a *Archive) List(project string) ([]models.ChatLog, error) {
	var rows *sql.Rows
	var err error

	if project == "" || project == "all" {
		rows, err = a.db.Query(
			`SELECT id, conversation_id, project_name, tag, title, summary, message_count, created_at, updated_at
			 FROM conversations WHERE deleted_at IS NULL ORDER BY created_at DESC, rowid DESC`,
		)
	} else {
		rows, err = a.db.Query(
			`SELECT id, conversation_id, project_name, tag, title, summary, message_count, created_at, updated_at
			 FROM conversations WHERE project_name = ? AND deleted_at IS NULL ORDER BY created_at DESC, rowid DESC`,
			project,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	defer rows.Close()

	return scanChatLogs(rows)
}

// Records returns the raw records of all live conversations, newest first.
func (a *Archive) Records() ([]models.RawRecord, error) {
	rows, err := a.db.Query(
		`SELECT conversation_id, record FROM conversations WHERE deleted_at IS NULL ORDER BY created_at DESC, rowid DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var records []models.RawRecord
	for rows.Next() {
		var id, payload string
		if err := rows.Scan(&id, &payload); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		var rec models.RawRecord
		if err := json.Unmarshal([]byte(payload), &rec); err != nil {
			return nil, fmt.Errorf("decode conversation %q: %w", id, err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Delete soft-deletes conversations by id and reports how many were removed.
func (a *Archive) Delete(conversationIDs []string) (int64, error) {
	tx, err := a.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var total int64
	for _, id := range conversationIDs {
		result, err := tx.Exec(
			`UPDATE conversations SET deleted_at = strftime('%Y-%m-%dT%H:%M:%fZ', 'now')
			 WHERE conversation_id = ? AND deleted_at IS NULL`,
			id,
		)
		if err != nil {
			return 0, fmt.Errorf("soft-delete conversation %q: %w", id, err)
		}
		n, _ := result.RowsAffected()
		total += n
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return total, nil
}

func scanChatLogs(rows *sql.Rows) ([]models.ChatLog, error) {
	logs := []models.ChatLog{}
	for rows.Next() {
		var c models.ChatLog
		if err := rows.Scan(&c.ID, &c.ConversationID, &c.ProjectName, &c.Tag, &c.Title, &c.Summary, &c.MessageCount, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan conversation: %w", err)
		}
		logs = append(logs, c)
	}
	return logs, rows.Err()
}
