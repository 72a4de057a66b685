package sqlite

// Schema DDL for the key-value table.
const (
	createKV = `CREATE TABLE IF NOT EXISTS kv (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`
)

// schemaDDL lists all statements executed on Attach, in order. Every
// statement is idempotent so an existing database is reused as is.
var schemaDDL = []string{
	createKV,
}

// dsnPragmas are applied by the driver to every new connection.
const dsnPragmas = "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
