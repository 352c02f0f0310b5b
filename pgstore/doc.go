// Package pgstore persists sessions in PostgreSQL through database/sql.
//
// # Schema
//
// The store expects this table:
//
//	CREATE TABLE sessions (
//	    key        TEXT PRIMARY KEY,
//	    data       TEXT NOT NULL,
//	    expires_at TIMESTAMPTZ
//	);
//
// Keys follow the shared layout "<cookie name>_<identity>". A NULL
// expires_at means the record never expires. Expired rows are filtered on
// read and physically removed by [Store.StartCleanup].
//
// # Driver
//
// The package speaks database/sql and registers no driver. Callers import
// one themselves, typically:
//
//	import _ "github.com/lib/pq"
//
// # What this package must NOT do
//
//   - Own the *sql.DB lifetime. [Store.Close] stops the cleanup goroutine
//     only.
//   - Create or migrate the schema.
//   - Mask driver failures as misses. Only sql.ErrNoRows means no record.
package pgstore
