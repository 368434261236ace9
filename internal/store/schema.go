package store

const schema = `
CREATE TABLE IF NOT EXISTS disabled_entries (
    location TEXT NOT NULL,
    name TEXT NOT NULL,
    file TEXT NOT NULL DEFAULT '',
    publisher TEXT,
    path TEXT,
    command TEXT,
    is_system BOOLEAN,
    stash_path TEXT,
    disabled_at TIMESTAMP NOT NULL,
    PRIMARY KEY (location, name, file)
);

CREATE TABLE IF NOT EXISTS journal (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    timestamp TIMESTAMP NOT NULL,
    action TEXT NOT NULL,
    location TEXT NOT NULL,
    name TEXT NOT NULL,
    path TEXT,
    succeeded BOOLEAN NOT NULL,
    error TEXT
);

CREATE INDEX IF NOT EXISTS idx_journal_timestamp ON journal(timestamp);
CREATE INDEX IF NOT EXISTS idx_journal_name ON journal(location, name);
`
