package sqlite

import "strings"

// Schema DDL in dependency order. Labels and payloads are interned so a
// record row carries only surrogate keys; links keep their list position.
const (
	createLabels = `CREATE TABLE IF NOT EXISTS labels (
    label_id INTEGER PRIMARY KEY AUTOINCREMENT,
    label TEXT NOT NULL UNIQUE
);`

	createPayloads = `CREATE TABLE IF NOT EXISTS payloads (
    payload_id INTEGER PRIMARY KEY AUTOINCREMENT,
    digest INTEGER NOT NULL,
    data BLOB NOT NULL
);`

	createRecords = `CREATE TABLE IF NOT EXISTS records (
    record_id INTEGER PRIMARY KEY,
    label_id INTEGER NOT NULL,
    payload_id INTEGER NOT NULL,
    link_count INTEGER NOT NULL,
    confirmed INTEGER NOT NULL,
    FOREIGN KEY (label_id) REFERENCES labels(label_id),
    FOREIGN KEY (payload_id) REFERENCES payloads(payload_id)
);`

	createLinks = `CREATE TABLE IF NOT EXISTS links (
    link_id INTEGER PRIMARY KEY AUTOINCREMENT,
    source_id INTEGER NOT NULL,
    label_id INTEGER NOT NULL,
    target_id INTEGER,
    position INTEGER NOT NULL,
    FOREIGN KEY (source_id) REFERENCES records(record_id),
    FOREIGN KEY (label_id) REFERENCES labels(label_id),
    FOREIGN KEY (target_id) REFERENCES records(record_id)
);`

	// sequences hands out record IDs. Allocation happens inside the create
	// transaction, so a rolled-back create leaves no gap.
	createSequences = `CREATE TABLE IF NOT EXISTS sequences (
    name TEXT PRIMARY KEY,
    next_id INTEGER NOT NULL
);`

	seedRecordSequence = `INSERT OR IGNORE INTO sequences (name, next_id) VALUES ('records', 0);`
)

// Index DDL for identity lookups and both backlink directions.
const (
	idxPayloadsDigest = `CREATE INDEX IF NOT EXISTS idx_payloads_digest ON payloads(digest);`
	idxRecordsLabel   = `CREATE INDEX IF NOT EXISTS idx_records_label ON records(label_id);`
	idxRecordsKey     = `CREATE INDEX IF NOT EXISTS idx_records_key ON records(label_id, payload_id, link_count);`
	idxLinksSource    = `CREATE UNIQUE INDEX IF NOT EXISTS idx_links_source ON links(source_id, position);`
	idxLinksTarget    = `CREATE INDEX IF NOT EXISTS idx_links_target ON links(target_id) WHERE target_id IS NOT NULL;`
	idxLinksGeneral   = `CREATE INDEX IF NOT EXISTS idx_links_general ON links(label_id) WHERE target_id IS NULL;`
)

// schemaDDL lists all CREATE TABLE statements in dependency order.
var schemaDDL = []string{
	createLabels,
	createPayloads,
	createRecords,
	createLinks,
	createSequences,
	seedRecordSequence,
}

// indexDDL lists all CREATE INDEX statements.
var indexDDL = []string{
	idxPayloadsDigest,
	idxRecordsLabel,
	idxRecordsKey,
	idxLinksSource,
	idxLinksTarget,
	idxLinksGeneral,
}

// schemaScript returns the full schema as one script.
func schemaScript() string {
	return strings.Join(append(append([]string{}, schemaDDL...), indexDDL...), "\n")
}
