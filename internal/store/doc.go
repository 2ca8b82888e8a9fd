// Package store persists exam submissions in SQLite.
//
// One table, submissions, keyed UNIQUE(exam_id, student_id): saving the
// same (exam, student) pair again upserts, replacing the payload and
// bumping updated_at. The full submission document is stored verbatim as
// JSON alongside the columns queries filter on (exam, student, name,
// time, revision).
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON: enforce referential integrity
//   - Single-writer connection pool: SQLite allows one writer at a time
//
// Schema versioning uses PRAGMA user_version with idempotent migrations
// applied on Open.
package store
