package db

import (
	"database/sql"
	"fmt"
)

// schema is the full database schema.
const schema = `
CREATE TABLE IF NOT EXISTS accounts (
    id            INTEGER PRIMARY KEY,
    identity      TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    role          TEXT NOT NULL DEFAULT 'member' CHECK (role IN ('admin', 'member')),
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    deleted_at    DATETIME
);

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS revoked_tokens (
    jti        TEXT PRIMARY KEY,
    expires_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS chain (
    id     INTEGER PRIMARY KEY CHECK (id = 1),
    height INTEGER NOT NULL CHECK (height >= 0)
);

INSERT OR IGNORE INTO chain (id, height) VALUES (1, 0);

CREATE TABLE IF NOT EXISTS items (
    id               INTEGER PRIMARY KEY CHECK (id >= 0),
    title            TEXT NOT NULL,
    details          TEXT NOT NULL,
    creator          TEXT NOT NULL,
    lot              TEXT NOT NULL,
    created_height   INTEGER NOT NULL,
    status           TEXT NOT NULL CHECK (status IN ('produced', 'shipping', 'delivered', 'sold', 'recalled')),
    category         TEXT NOT NULL,
    origin           TEXT NOT NULL,
    keeper           TEXT NOT NULL,
    destination      TEXT,
    arrival_height   INTEGER,
    metadata         TEXT,
    checkpoint_count INTEGER NOT NULL DEFAULT 0,
    transfer_count   INTEGER NOT NULL DEFAULT 0,
    custody_seq      INTEGER NOT NULL DEFAULT 0,
    created_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS events (
    item_id     INTEGER NOT NULL REFERENCES items(id),
    seq         INTEGER NOT NULL,
    kind        TEXT NOT NULL CHECK (kind IN ('checkpoint', 'transfer')),
    event_id    INTEGER NOT NULL,
    type        TEXT NOT NULL CHECK (type IN ('checkpoint', 'transfer-start', 'transfer-complete')),
    location    TEXT NOT NULL,
    height      INTEGER NOT NULL,
    actor       TEXT NOT NULL,
    from_keeper TEXT,
    to_keeper   TEXT,
    temperature INTEGER,
    humidity    INTEGER,
    notes       TEXT,
    hash        BLOB NOT NULL,
    status      TEXT NOT NULL CHECK (status IN ('active', 'pending', 'completed', 'rejected')),
    created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    PRIMARY KEY (item_id, seq),
    UNIQUE (item_id, kind, event_id)
);

CREATE TABLE IF NOT EXISTS inspectors (
    organization      TEXT NOT NULL,
    inspector         TEXT NOT NULL,
    name              TEXT NOT NULL,
    role              TEXT NOT NULL,
    state             TEXT NOT NULL CHECK (state IN ('active', 'revoked')),
    authorized_height INTEGER NOT NULL,
    updated_height    INTEGER NOT NULL,
    PRIMARY KEY (organization, inspector)
);

CREATE TABLE IF NOT EXISTS certifications (
    item_id        INTEGER NOT NULL REFERENCES items(id),
    standard       TEXT NOT NULL,
    authority      TEXT NOT NULL,
    issued_height  INTEGER NOT NULL,
    expires_height INTEGER NOT NULL,
    hash           BLOB NOT NULL CHECK (length(hash) = 32),
    url            TEXT,
    state          TEXT NOT NULL CHECK (state IN ('active', 'revoked')),
    PRIMARY KEY (item_id, standard)
);
`

// EnsureSchema creates all tables and indexes if they don't already exist.
func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}
