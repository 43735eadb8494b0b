package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"credrelay/internal/credential/models"
	dErrors "credrelay/pkg/domain-errors"
)

// SQLiteStore persists credentials and issued records in a local
// SQLite database so state survives process restarts. Documents are
// stored as JSON with the columns needed for keyed and secondary
// lookups lifted out.
type SQLiteStore struct {
	db *sql.DB
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS holder_vcs (
	id   TEXT PRIMARY KEY,
	body TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS issued_records (
	id    TEXT PRIMARY KEY,
	vc_id TEXT NOT NULL,
	body  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_issued_records_vc_id ON issued_records (vc_id);
`

// OpenSQLite opens (creating if necessary) the store at path. Use
// ":memory:" for throwaway databases in tests.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite store: %w", err)
	}
	// The claim loop is single-actor; one connection avoids table lock
	// contention between the write and the verify read.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply sqlite schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) PutVC(ctx context.Context, vc models.VerifiableCredential) error {
	if vc.ID == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "credential id required")
	}
	body, err := json.Marshal(vc)
	if err != nil {
		return fmt.Errorf("marshal credential: %w", err)
	}
	query := `
		INSERT INTO holder_vcs (id, body) VALUES (?, ?)
		ON CONFLICT (id) DO UPDATE SET body = excluded.body
	`
	if _, err := s.db.ExecContext(ctx, query, vc.ID, string(body)); err != nil {
		return fmt.Errorf("save credential: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetVCByID(ctx context.Context, vcID string) (models.VerifiableCredential, error) {
	var body string
	err := s.db.QueryRowContext(ctx, `SELECT body FROM holder_vcs WHERE id = ?`, vcID).Scan(&body)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.VerifiableCredential{}, ErrNotFound
		}
		return models.VerifiableCredential{}, fmt.Errorf("find credential by id: %w", err)
	}
	var vc models.VerifiableCredential
	if err := json.Unmarshal([]byte(body), &vc); err != nil {
		return models.VerifiableCredential{}, fmt.Errorf("unmarshal credential: %w", err)
	}
	return vc, nil
}

func (s *SQLiteStore) ListVCs(ctx context.Context) ([]models.VerifiableCredential, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT body FROM holder_vcs ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list credentials: %w", err)
	}
	defer rows.Close()

	out := make([]models.VerifiableCredential, 0)
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("scan credential: %w", err)
		}
		var vc models.VerifiableCredential
		if err := json.Unmarshal([]byte(body), &vc); err != nil {
			return nil, fmt.Errorf("unmarshal credential: %w", err)
		}
		out = append(out, vc)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) PutRecord(ctx context.Context, record models.IssuedCredentialRecord) error {
	if record.ID == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "record id required")
	}
	body, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal issued record: %w", err)
	}
	query := `
		INSERT INTO issued_records (id, vc_id, body) VALUES (?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET vc_id = excluded.vc_id, body = excluded.body
	`
	if _, err := s.db.ExecContext(ctx, query, record.ID, record.VCID, string(body)); err != nil {
		return fmt.Errorf("save issued record: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetRecord(ctx context.Context, recordID string) (models.IssuedCredentialRecord, error) {
	var body string
	err := s.db.QueryRowContext(ctx, `SELECT body FROM issued_records WHERE id = ?`, recordID).Scan(&body)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.IssuedCredentialRecord{}, ErrNotFound
		}
		return models.IssuedCredentialRecord{}, fmt.Errorf("find issued record: %w", err)
	}
	return unmarshalRecord(body)
}

func (s *SQLiteStore) FindByVCID(ctx context.Context, vcID string) ([]models.IssuedCredentialRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT body FROM issued_records WHERE vc_id = ?`, vcID)
	if err != nil {
		return nil, fmt.Errorf("find issued records by vc id: %w", err)
	}
	defer rows.Close()

	var out []models.IssuedCredentialRecord
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("scan issued record: %w", err)
		}
		record, err := unmarshalRecord(body)
		if err != nil {
			return nil, err
		}
		out = append(out, record)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) UpdateRecord(ctx context.Context, record models.IssuedCredentialRecord) error {
	body, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal issued record: %w", err)
	}
	result, err := s.db.ExecContext(ctx,
		`UPDATE issued_records SET vc_id = ?, body = ? WHERE id = ?`,
		record.VCID, string(body), record.ID,
	)
	if err != nil {
		return fmt.Errorf("update issued record: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update issued record: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) ListRecords(ctx context.Context) ([]models.IssuedCredentialRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT body FROM issued_records ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list issued records: %w", err)
	}
	defer rows.Close()

	out := make([]models.IssuedCredentialRecord, 0)
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("scan issued record: %w", err)
		}
		record, err := unmarshalRecord(body)
		if err != nil {
			return nil, err
		}
		out = append(out, record)
	}
	return out, rows.Err()
}

func unmarshalRecord(body string) (models.IssuedCredentialRecord, error) {
	var record models.IssuedCredentialRecord
	if err := json.Unmarshal([]byte(body), &record); err != nil {
		return models.IssuedCredentialRecord{}, fmt.Errorf("unmarshal issued record: %w", err)
	}
	return record, nil
}

var _ Store = (*SQLiteStore)(nil)
