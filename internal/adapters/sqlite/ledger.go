// Package sqlite persists per-asset sync records in a SQLite
// database, giving the dual-tier store a queryable consistency
// ledger.
package sqlite

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"deckvault/internal/domain"
	"deckvault/internal/ports"

	_ "modernc.org/sqlite"
)

const schemaVersion = "1"

// Ledger implements ports.SyncLedger using SQLite.
type Ledger struct {
	db     *sql.DB
	dbPath string
}

var _ ports.SyncLedger = (*Ledger)(nil)

// DefaultPath returns the ledger database path for a projects root:
// one database per root, under the XDG data directory.
func DefaultPath(projectsRoot string) string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, _ := os.UserHomeDir()
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "deckvault", hashRoot(projectsRoot)+".db")
}

// hashRoot returns a short hash of the projects root path.
func hashRoot(root string) string {
	h := sha256.Sum256([]byte(root))
	return hex.EncodeToString(h[:8])
}

// Open opens (creating when needed) the ledger database at dbPath.
func Open(dbPath string) (*Ledger, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create ledger directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger database: %w", err)
	}

	_, err = db.Exec(`
		PRAGMA synchronous = NORMAL;
		PRAGMA busy_timeout = 5000;

		CREATE TABLE IF NOT EXISTS sync_records (
			project_id TEXT NOT NULL,
			kind TEXT NOT NULL,
			key TEXT NOT NULL,
			sha256 TEXT NOT NULL DEFAULT '',
			local_present INTEGER NOT NULL,
			remote_present INTEGER NOT NULL,
			pending INTEGER NOT NULL,
			updated_at INTEGER NOT NULL,
			PRIMARY KEY (project_id, kind, key)
		);
		CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_sync_pending ON sync_records(project_id, pending);

		INSERT OR REPLACE INTO meta (key, value) VALUES ('schema_version', '` + schemaVersion + `');
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to setup ledger database: %w", err)
	}

	return &Ledger{db: db, dbPath: dbPath}, nil
}

// Close closes the database connection.
func (l *Ledger) Close() error {
	if l.db != nil {
		return l.db.Close()
	}
	return nil
}

// Get retrieves the record for one asset, or nil when none exists.
func (l *Ledger) Get(projectID string, kind domain.AssetKind, key string) (*domain.SyncRecord, error) {
	var rec domain.SyncRecord
	var kindStr string

	err := l.db.QueryRow(`
		SELECT project_id, kind, key, sha256, local_present, remote_present, pending, updated_at
		FROM sync_records WHERE project_id = ? AND kind = ? AND key = ?
	`, projectID, string(kind), key).Scan(
		&rec.ProjectID, &kindStr, &rec.Key, &rec.SHA256,
		&rec.LocalPresent, &rec.RemotePresent, &rec.Pending, &rec.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	rec.Kind = domain.AssetKind(kindStr)
	return &rec, nil
}

// Upsert inserts or replaces an asset's record.
func (l *Ledger) Upsert(rec *domain.SyncRecord) error {
	_, err := l.db.Exec(`
		INSERT OR REPLACE INTO sync_records
			(project_id, kind, key, sha256, local_present, remote_present, pending, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.ProjectID, string(rec.Kind), rec.Key, rec.SHA256,
		rec.LocalPresent, rec.RemotePresent, rec.Pending, rec.UpdatedAt)
	return err
}

// Delete removes an asset's record.
func (l *Ledger) Delete(projectID string, kind domain.AssetKind, key string) error {
	_, err := l.db.Exec(`
		DELETE FROM sync_records WHERE project_id = ? AND kind = ? AND key = ?
	`, projectID, string(kind), key)
	return err
}

// Pending returns all unconfirmed records of a project in key order.
func (l *Ledger) Pending(projectID string) ([]domain.SyncRecord, error) {
	return l.query(`
		SELECT project_id, kind, key, sha256, local_present, remote_present, pending, updated_at
		FROM sync_records WHERE project_id = ? AND pending = 1
		ORDER BY kind, key
	`, projectID)
}

// Records returns every record of a project in key order.
func (l *Ledger) Records(projectID string) ([]domain.SyncRecord, error) {
	return l.query(`
		SELECT project_id, kind, key, sha256, local_present, remote_present, pending, updated_at
		FROM sync_records WHERE project_id = ?
		ORDER BY kind, key
	`, projectID)
}

func (l *Ledger) query(q string, args ...any) ([]domain.SyncRecord, error) {
	rows, err := l.db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []domain.SyncRecord
	for rows.Next() {
		var rec domain.SyncRecord
		var kindStr string
		if err := rows.Scan(
			&rec.ProjectID, &kindStr, &rec.Key, &rec.SHA256,
			&rec.LocalPresent, &rec.RemotePresent, &rec.Pending, &rec.UpdatedAt,
		); err != nil {
			return nil, err
		}
		rec.Kind = domain.AssetKind(kindStr)
		records = append(records, rec)
	}
	return records, rows.Err()
}
