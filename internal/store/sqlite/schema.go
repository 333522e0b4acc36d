// Package sqlite implements internal/store.Store against an embedded
// SQLite database: a relational chunks table plus two sqlite-vec vec0
// virtual tables (one for dense embeddings, one for a fixed-width
// projection of BM25F sparse vectors) and an FTS5 virtual table that
// mirrors each chunk's content (written and deleted with the chunk; no
// query reads it). Table creation runs inside
// one transaction; virtual tables are created afterward since SQLite
// rejects CREATE VIRTUAL TABLE inside a transaction, and a single
// bootstrap row seeds index_state so GetIndexState never has to
// special-case an empty table.
package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	_ "github.com/mattn/go-sqlite3"
)

// sparseWidth is the fixed dimensionality sparse BM25F vectors are
// projected into before being stored in their own vec0 table: sqlite-vec
// has no native sparse dot-product primitive, so each hashed sparse
// index is bucketed via index % sparseWidth and accumulated, the same
// adaptation a hashing-trick feature vector uses.
const sparseWidth = 512

const createChunksTable = `
CREATE TABLE IF NOT EXISTS chunks (
	chunk_id     TEXT PRIMARY KEY,
	file_path    TEXT NOT NULL,
	kind         TEXT NOT NULL,  -- 'code' or 'document'
	start_line   INTEGER NOT NULL,
	end_line     INTEGER NOT NULL,
	payload_json TEXT NOT NULL,
	created_at   TEXT NOT NULL,
	updated_at   TEXT NOT NULL
)`

const createChunksFilePathIndex = `CREATE INDEX IF NOT EXISTS idx_chunks_file_path ON chunks(file_path)`
const createChunksKindIndex = `CREATE INDEX IF NOT EXISTS idx_chunks_kind ON chunks(kind)`

const createIndexStateTable = `
CREATE TABLE IF NOT EXISTS index_state (
	id               INTEGER PRIMARY KEY CHECK (id = 1),
	last_commit_hash TEXT NOT NULL DEFAULT '',
	total_files      INTEGER NOT NULL DEFAULT 0,
	total_objects    INTEGER NOT NULL DEFAULT 0,
	languages_json   TEXT NOT NULL DEFAULT '[]',
	updated_at       TEXT NOT NULL DEFAULT ''
)`

func createSchema(db *sql.DB, dimension int) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin schema transaction: %w", err)
	}
	defer tx.Rollback()

	for _, ddl := range []string{
		createChunksTable,
		createChunksFilePathIndex,
		createChunksKindIndex,
		createIndexStateTable,
	} {
		if _, err := tx.Exec(ddl); err != nil {
			return fmt.Errorf("create schema object: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema transaction: %w", err)
	}

	// Virtual tables cannot be created inside a transaction.
	if _, err := db.Exec(fmt.Sprintf(
		`CREATE VIRTUAL TABLE IF NOT EXISTS chunks_vec USING vec0(chunk_id TEXT PRIMARY KEY, embedding float[%d])`,
		dimension,
	)); err != nil {
		return fmt.Errorf("create dense vector index: %w", err)
	}

	if _, err := db.Exec(fmt.Sprintf(
		`CREATE VIRTUAL TABLE IF NOT EXISTS chunks_sparse_vec USING vec0(chunk_id TEXT PRIMARY KEY, signature float[%d])`,
		sparseWidth,
	)); err != nil {
		return fmt.Errorf("create sparse vector index: %w", err)
	}

	if _, err := db.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS chunks_fts USING fts5(
			chunk_id UNINDEXED,
			text,
			tokenize = 'unicode61 remove_diacritics 0'
		)
	`); err != nil {
		return fmt.Errorf("create fts index: %w", err)
	}

	if _, err := db.Exec(
		`INSERT OR IGNORE INTO index_state (id, updated_at) VALUES (1, ?)`,
		time.Now().UTC().Format(time.RFC3339),
	); err != nil {
		return fmt.Errorf("bootstrap index_state: %w", err)
	}

	return nil
}

var vecExtensionInitialized bool

// initVecExtension registers sqlite-vec with the driver exactly once per
// process.
func initVecExtension() {
	if vecExtensionInitialized {
		return
	}
	sqlite_vec.Auto()
	vecExtensionInitialized = true
}

// projectSparse buckets a hashed sparse vector into a fixed-width dense
// signature: bucket := index % sparseWidth, accumulated by value. Two
// sparse vectors that share few colliding buckets still score well under
// cosine similarity, the nearest primitive sqlite-vec offers to a true
// sparse dot product.
func projectSparse(indices []uint32, values []float64) []float32 {
	signature := make([]float32, sparseWidth)
	for i, idx := range indices {
		bucket := idx % sparseWidth
		signature[bucket] += float32(values[i])
	}
	return signature
}
