package storage

// ArchiveSchema is the SQL schema for the chat-log archive database.
const ArchiveSchema = `
CREATE TABLE IF NOT EXISTS conversations (
    id              TEXT PRIMARY KEY,
    conversation_id TEXT NOT NULL UNIQUE,
    project_name    TEXT NOT NULL DEFAULT '',
    tag             TEXT NOT NULL DEFAULT 'other',
    title           TEXT NOT NULL DEFAULT '',
    summary         TEXT NOT NULL DEFAULT '',
    message_count   INTEGER NOT NULL DEFAULT 0,
    record          TEXT NOT NULL,
    created_at      TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now')),
    updated_at      TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now')),
    deleted_at      TEXT NULL
);

CREATE VIRTUAL TABLE IF NOT EXISTS conversations_fts USING fts5(
    title,
    summary,
    project_name,
    content='conversations',
    content_rowid='rowid'
);

-- Partial indexes for queries on live (non-deleted) conversations
CREATE INDEX IF NOT EXISTS idx_conversations_project ON conversations(project_name) WHERE deleted_at IS NULL;
CREATE INDEX IF NOT EXISTS idx_conversations_created ON conversations(created_at) WHERE deleted_at IS NULL;
`

// ArchiveTriggers keep conversations_fts in step with conversations.
const ArchiveTriggers = `
CREATE TRIGGER IF NOT EXISTS conversations_ai AFTER INSERT ON conversations BEGIN
    INSERT INTO conversations_fts(rowid, title, summary, project_name)
    VALUES (new.rowid, new.title, new.summary, new.project_name);
END;
CREATE TRIGGER IF NOT EXISTS conversations_ad AFTER DELETE ON conversations BEGIN
    INSERT INTO conversations_fts(conversations_fts, rowid, title, summary, project_name)
    VALUES ('delete', old.rowid, old.title, old.summary, old.project_name);
END;
CREATE TRIGGER IF NOT EXISTS conversations_au AFTER UPDATE ON conversations BEGIN
    INSERT INTO conversations_fts(conversations_fts, rowid, title, summary, project_name)
    VALUES ('delete', old.rowid, old.title, old.summary, old.project_name);
    INSERT INTO conversations_fts(rowid, title, summary, project_name)
    VALUES (new.rowid, new.title, new.summary, new.project_name);
END;
`

// dsnPragmas configures SQLite through the connection string.
const dsnPragmas = "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(ON)&_pragma=cache_size(-64000)"
