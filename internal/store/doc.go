// Package store provides SQLite-backed durable storage for sequencing records.
//
// The store is a plain record repository:
//   - Create appends a row; ids are assigned by SQLite and never reused
//   - List enumerates (name, description) pairs in insertion order
//   - FetchByNameAndDescription returns every exact match (0, 1 or many)
//   - DeleteByName removes every row with the given name
//
// Records are never updated in place and no uniqueness is enforced on
// name or description. The id is the only unique key; use Get to
// disambiguate when a name/description pair matches more than one row.
//
// # Schema Variants
//
// The strict variant (default) requires both alternate terms at creation
// time. The legacy variant, selected with WithLegacySchema, stores empty
// alternates. The variant is recorded in the database when it is first
// created and a reopen with the other variant is rejected.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - One open connection: SQLite allows a single writer
//
// A Store is not safe for concurrent use. Hosts that call it from several
// goroutines must serialise access themselves.
package store
