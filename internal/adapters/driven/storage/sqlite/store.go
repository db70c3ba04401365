// Package sqlite provides a persistent record store so the vector index
// can be rebuilt from cached embeddings after a restart.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/mars-labs/mars-cli/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/mars-labs/mars-cli/internal/core/domain"
	"github.com/mars-labs/mars-cli/internal/core/ports/driven"
)

// Ensure RecordStore implements the interface.
var _ driven.RecordStore = (*RecordStore)(nil)

// RecordStore is a SQLite-backed implementation of driven.RecordStore.
type RecordStore struct {
	db   *sql.DB
	path string
}

// NewRecordStore creates a SQLite record store under the specified data
// directory. If dataDir is empty, defaults to ~/.mars/data/records.db.
func NewRecordStore(dataDir string) (*RecordStore, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".mars", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "records.db")

	// WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &RecordStore{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *RecordStore) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *RecordStore) Path() string {
	return s.path
}

func (s *RecordStore) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// Append adds records in position order.
func (s *RecordStore) Append(ctx context.Context, records []domain.Record) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO records (position, session_id, source, chunk_index, text, embedding)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i := range records {
		rec := &records[i]
		if _, err := stmt.ExecContext(ctx,
			rec.Position, rec.SessionID, rec.Source, rec.ChunkIndex,
			rec.Text, float32SliceToBytes(rec.Embedding),
		); err != nil {
			return fmt.Errorf("inserting record at position %d: %w", rec.Position, err)
		}
	}

	return tx.Commit()
}

// Get returns the record at the given index position.
func (s *RecordStore) Get(ctx context.Context, position int) (*domain.Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT position, session_id, source, chunk_index, text, embedding
		FROM records WHERE position = ?
	`, position)

	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning record: %w", err)
	}
	return rec, nil
}

// CountBySession returns how many records a session holds.
func (s *RecordStore) CountBySession(ctx context.Context, sessionID string) (int, error) {
	var count int
	row := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM records WHERE session_id = ?", sessionID)
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("counting session records: %w", err)
	}
	return count, nil
}

// ListBySession returns a session's records in position order.
func (s *RecordStore) ListBySession(ctx context.Context, sessionID string) ([]domain.Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT position, session_id, source, chunk_index, text, embedding
		FROM records WHERE session_id = ? ORDER BY position
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("querying session records: %w", err)
	}
	defer rows.Close()

	return collectRecords(rows)
}

// DropSession removes a session's records and reassigns the survivors'
// positions from 0, preserving their relative order. The whole operation
// runs in one transaction so a crash cannot leave positions half-moved.
func (s *RecordStore) DropSession(ctx context.Context, sessionID string) (int, []domain.Record, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, "DELETE FROM records WHERE session_id = ?", sessionID)
	if err != nil {
		return 0, nil, fmt.Errorf("deleting session records: %w", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, nil, fmt.Errorf("counting deleted records: %w", err)
	}

	rows, err := tx.QueryContext(ctx, `
		SELECT position, session_id, source, chunk_index, text, embedding
		FROM records ORDER BY position
	`)
	if err != nil {
		return 0, nil, fmt.Errorf("querying surviving records: %w", err)
	}
	survivors, err := collectRecords(rows)
	rows.Close()
	if err != nil {
		return 0, nil, err
	}

	if removed > 0 {
		if _, err := tx.ExecContext(ctx, "DELETE FROM records"); err != nil {
			return 0, nil, fmt.Errorf("clearing records for reposition: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO records (position, session_id, source, chunk_index, text, embedding)
			VALUES (?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return 0, nil, fmt.Errorf("preparing reposition insert: %w", err)
		}
		defer stmt.Close()

		for i := range survivors {
			survivors[i].Position = i
			rec := &survivors[i]
			if _, err := stmt.ExecContext(ctx,
				rec.Position, rec.SessionID, rec.Source, rec.ChunkIndex,
				rec.Text, float32SliceToBytes(rec.Embedding),
			); err != nil {
				return 0, nil, fmt.Errorf("repositioning record %d: %w", i, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, nil, fmt.Errorf("committing drop: %w", err)
	}

	return int(removed), survivors, nil
}

// All returns every record in position order.
func (s *RecordStore) All(ctx context.Context) ([]domain.Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT position, session_id, source, chunk_index, text, embedding
		FROM records ORDER BY position
	`)
	if err != nil {
		return nil, fmt.Errorf("querying records: %w", err)
	}
	defer rows.Close()

	return collectRecords(rows)
}

// Len returns the total number of records.
func (s *RecordStore) Len(ctx context.Context) (int, error) {
	var count int
	row := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM records")
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("counting records: %w", err)
	}
	return count, nil
}

// scanner abstracts *sql.Row and *sql.Rows for record scanning.
type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*domain.Record, error) {
	var rec domain.Record
	var blob []byte
	if err := row.Scan(&rec.Position, &rec.SessionID, &rec.Source,
		&rec.ChunkIndex, &rec.Text, &blob); err != nil {
		return nil, err
	}
	rec.Embedding = bytesToFloat32Slice(blob)
	return &rec, nil
}

func collectRecords(rows *sql.Rows) ([]domain.Record, error) {
	var result []domain.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		result = append(result, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating records: %w", err)
	}
	return result, nil
}

// float32SliceToBytes converts a []float32 to a little-endian byte slice
// for storage.
func float32SliceToBytes(floats []float32) []byte {
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
