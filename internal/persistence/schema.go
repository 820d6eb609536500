package persistence

// Schema is the SQL schema for the SQLite backend. All workspaces share one
// database; rows are scoped by the workspace column and keyed by generated
// UUIDs. Observations live in their own table, ordered by position, so the
// backend can also be queried record-by-record.
const Schema = `
CREATE TABLE IF NOT EXISTS entities (
    id          TEXT PRIMARY KEY,
    workspace   TEXT NOT NULL,
    name        TEXT NOT NULL,
    entity_type TEXT NOT NULL,
    created_at  TEXT NOT NULL,
    updated_at  TEXT NOT NULL,
    created_by  TEXT NOT NULL DEFAULT '',
    metadata    TEXT NOT NULL DEFAULT '{}',
    UNIQUE(workspace, name)
);

CREATE TABLE IF NOT EXISTS observations (
    id        TEXT PRIMARY KEY,
    entity_id TEXT NOT NULL REFERENCES entities(id) ON DELETE CASCADE,
    content   TEXT NOT NULL,
    position  INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS relations (
    id            TEXT PRIMARY KEY,
    workspace     TEXT NOT NULL,
    from_entity   TEXT NOT NULL,
    to_entity     TEXT NOT NULL,
    relation_type TEXT NOT NULL,
    strength      REAL NOT NULL,
    created_at    TEXT NOT NULL,
    updated_at    TEXT NOT NULL,
    created_by    TEXT NOT NULL DEFAULT '',
    metadata      TEXT NOT NULL DEFAULT '{}',
    UNIQUE(workspace, from_entity, to_entity, relation_type)
);

CREATE INDEX IF NOT EXISTS idx_entities_workspace ON entities(workspace);
CREATE INDEX IF NOT EXISTS idx_observations_entity ON observations(entity_id, position);
CREATE INDEX IF NOT EXISTS idx_relations_workspace ON relations(workspace);
`
