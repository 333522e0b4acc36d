package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"

	"github.com/codecontext/codecontext/internal/errs"
	"github.com/codecontext/codecontext/internal/model"
	"github.com/codecontext/codecontext/internal/store"
)

// rrfK is the RRF rank-damping constant, matching the commonly used
// default of 60.
const rrfK = 60.0

// overFetchFactor widens each modality's vec0 query beyond the caller's
// limit before relational filters (file/kind) are applied, since vec0
// virtual tables do not push down WHERE clauses on joined columns.
const overFetchFactor = 10

// Store is a SQLite-backed store.Store: chunks live in a relational
// table, dense and sparse vectors each get their own vec0 virtual
// table, and an FTS5 virtual table mirrors chunk content (kept in step
// on upsert and delete, not queried).
type Store struct {
	db        *sql.DB
	dimension int
}

// Open creates or opens a SQLite database at path and ensures its schema
// exists. dimension is the configured dense embedding width.
func Open(path string, dimension int) (*Store, error) {
	initVecExtension()

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errs.Wrap(errs.Storage, "opening sqlite database", err)
	}
	db.SetMaxOpenConns(1) // a single writer; cgo sqlite3 connections aren't safely sharable under our locking

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, errs.Wrap(errs.Storage, "enabling foreign keys", err)
	}

	if err := createSchema(db, dimension); err != nil {
		db.Close()
		return nil, errs.Wrap(errs.Storage, "creating schema", err)
	}

	return &Store{db: db, dimension: dimension}, nil
}

func (s *Store) Initialize(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	return s.db.Close()
}

// chunkPayload is the JSON envelope stored in chunks.payload_json. It
// unifies CodeObject and document-search metadata under one column so
// both kinds of chunks can share the relational/vector schema.
type chunkPayload struct {
	Kind     string         `json:"kind"` // "code" or "document"
	Language string         `json:"language,omitempty"`
	Content  string         `json:"content,omitempty"`
	Object   *model.CodeObject `json:"object,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

func (s *Store) Upsert(ctx context.Context, points []store.Point) error {
	if len(points) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errs.Wrap(errs.Storage, "beginning upsert transaction", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339)

	for _, p := range points {
		payload, err := encodePayload(p.Payload)
		if err != nil {
			return errs.Wrap(errs.Storage, fmt.Sprintf("encoding payload for chunk %s", p.ID), err)
		}

		filePath, _ := p.Payload["file_path"].(string)
		kind, _ := p.Payload["kind"].(string)
		startLine, _ := p.Payload["start_line"].(int)
		endLine, _ := p.Payload["end_line"].(int)

		if _, err := sq.Delete("chunks").Where(sq.Eq{"chunk_id": p.ID}).RunWith(tx).Exec(); err != nil {
			return errs.Wrap(errs.Storage, fmt.Sprintf("clearing chunk %s", p.ID), err)
		}
		if _, err := sq.Insert("chunks").
			Columns("chunk_id", "file_path", "kind", "start_line", "end_line", "payload_json", "created_at", "updated_at").
			Values(p.ID, filePath, kind, startLine, endLine, payload, now, now).
			RunWith(tx).Exec(); err != nil {
			return errs.Wrap(errs.Storage, fmt.Sprintf("inserting chunk %s", p.ID), err)
		}

		if err := upsertDense(tx, p.ID, p.Dense); err != nil {
			return err
		}
		if err := upsertSparse(tx, p.ID, p.SparseIndices, p.SparseValues); err != nil {
			return err
		}
		if err := upsertFTS(tx, p.ID, p.Payload); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return errs.Wrap(errs.Storage, "committing upsert transaction", err)
	}
	return nil
}

func encodePayload(raw map[string]any) (string, error) {
	b, err := json.Marshal(raw)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// upsertDense applies the delete-then-insert upsert pattern vec0 virtual
// tables require (they reject INSERT OR REPLACE).
func upsertDense(tx *sql.Tx, chunkID string, dense []float32) error {
	if _, err := tx.Exec("DELETE FROM chunks_vec WHERE chunk_id = ?", chunkID); err != nil {
		return errs.Wrap(errs.Storage, "clearing dense vector", err)
	}
	if len(dense) == 0 {
		return nil
	}
	bytes, err := sqlite_vec.SerializeFloat32(dense)
	if err != nil {
		return errs.Wrap(errs.Storage, "serializing dense vector", err)
	}
	if _, err := tx.Exec("INSERT INTO chunks_vec (chunk_id, embedding) VALUES (?, ?)", chunkID, bytes); err != nil {
		return errs.Wrap(errs.Storage, "inserting dense vector", err)
	}
	return nil
}

func upsertSparse(tx *sql.Tx, chunkID string, indices []uint32, values []float64) error {
	if _, err := tx.Exec("DELETE FROM chunks_sparse_vec WHERE chunk_id = ?", chunkID); err != nil {
		return errs.Wrap(errs.Storage, "clearing sparse vector", err)
	}
	if len(indices) == 0 {
		return nil
	}
	signature := projectSparse(indices, values)
	bytes, err := sqlite_vec.SerializeFloat32(signature)
	if err != nil {
		return errs.Wrap(errs.Storage, "serializing sparse signature", err)
	}
	if _, err := tx.Exec("INSERT INTO chunks_sparse_vec (chunk_id, signature) VALUES (?, ?)", chunkID, bytes); err != nil {
		return errs.Wrap(errs.Storage, "inserting sparse signature", err)
	}
	return nil
}

func upsertFTS(tx *sql.Tx, chunkID string, payload map[string]any) error {
	if _, err := tx.Exec("DELETE FROM chunks_fts WHERE chunk_id = ?", chunkID); err != nil {
		return errs.Wrap(errs.Storage, "clearing fts entry", err)
	}
	text, _ := payload["content"].(string)
	if text == "" {
		return nil
	}
	if _, err := tx.Exec("INSERT INTO chunks_fts (chunk_id, text) VALUES (?, ?)", chunkID, text); err != nil {
		return errs.Wrap(errs.Storage, "inserting fts entry", err)
	}
	return nil
}

func (s *Store) DeleteByFile(ctx context.Context, filePath string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errs.Wrap(errs.Storage, "beginning delete transaction", err)
	}
	defer tx.Rollback()

	rows, err := tx.Query("SELECT chunk_id FROM chunks WHERE file_path = ?", filePath)
	if err != nil {
		return errs.Wrap(errs.Storage, "querying chunks for file", err)
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return errs.Wrap(errs.Storage, "scanning chunk id", err)
		}
		ids = append(ids, id)
	}
	rows.Close()

	for _, id := range ids {
		if _, err := tx.Exec("DELETE FROM chunks_vec WHERE chunk_id = ?", id); err != nil {
			return errs.Wrap(errs.Storage, "deleting dense vector", err)
		}
		if _, err := tx.Exec("DELETE FROM chunks_sparse_vec WHERE chunk_id = ?", id); err != nil {
			return errs.Wrap(errs.Storage, "deleting sparse vector", err)
		}
		if _, err := tx.Exec("DELETE FROM chunks_fts WHERE chunk_id = ?", id); err != nil {
			return errs.Wrap(errs.Storage, "deleting fts entry", err)
		}
	}
	if _, err := tx.Exec("DELETE FROM chunks WHERE file_path = ?", filePath); err != nil {
		return errs.Wrap(errs.Storage, "deleting chunks for file", err)
	}

	return tx.Commit()
}

func (s *Store) GetCodeObject(ctx context.Context, id string) (*model.CodeObject, error) {
	var payloadJSON string
	err := s.db.QueryRowContext(ctx, "SELECT payload_json FROM chunks WHERE chunk_id = ?", id).Scan(&payloadJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errs.Wrap(errs.Storage, "querying code object", err)
	}
	var payload chunkPayload
	if err := json.Unmarshal([]byte(payloadJSON), &payload); err != nil {
		return nil, errs.Wrap(errs.Storage, "decoding code object payload", err)
	}
	return payload.Object, nil
}

func (s *Store) GetIndexState(ctx context.Context) (*model.IndexState, error) {
	var (
		lastCommit     string
		totalFiles     int
		totalObjects   int
		languagesJSON  string
		updatedAtRaw   string
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT last_commit_hash, total_files, total_objects, languages_json, updated_at FROM index_state WHERE id = 1",
	).Scan(&lastCommit, &totalFiles, &totalObjects, &languagesJSON, &updatedAtRaw)
	if err == sql.ErrNoRows {
		return &model.IndexState{}, nil
	}
	if err != nil {
		return nil, errs.Wrap(errs.Storage, "querying index state", err)
	}

	var languages []string
	if languagesJSON != "" {
		if err := json.Unmarshal([]byte(languagesJSON), &languages); err != nil {
			return nil, errs.Wrap(errs.Storage, "decoding index state languages", err)
		}
	}
	updatedAt, _ := time.Parse(time.RFC3339, updatedAtRaw)

	return &model.IndexState{
		LastCommitHash: lastCommit,
		TotalFiles:     totalFiles,
		TotalObjects:   totalObjects,
		Languages:      languages,
		UpdatedAt:      updatedAt,
	}, nil
}

func (s *Store) SetIndexState(ctx context.Context, state model.IndexState) error {
	languagesJSON, err := json.Marshal(state.Languages)
	if err != nil {
		return errs.Wrap(errs.Storage, "encoding index state languages", err)
	}
	updatedAt := state.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO index_state (id, last_commit_hash, total_files, total_objects, languages_json, updated_at)
		VALUES (1, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			last_commit_hash = excluded.last_commit_hash,
			total_files = excluded.total_files,
			total_objects = excluded.total_objects,
			languages_json = excluded.languages_json,
			updated_at = excluded.updated_at
	`, state.LastCommitHash, state.TotalFiles, state.TotalObjects, string(languagesJSON), updatedAt.Format(time.RFC3339))
	if err != nil {
		return errs.Wrap(errs.Storage, "writing index state", err)
	}
	return nil
}

func (s *Store) GetStatistics(ctx context.Context) (store.Statistics, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM chunks").Scan(&count); err != nil {
		return store.Statistics{}, errs.Wrap(errs.Storage, "querying statistics", err)
	}
	return store.Statistics{ContentCount: count}, nil
}
