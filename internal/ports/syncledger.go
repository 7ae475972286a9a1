package ports

import "deckvault/internal/domain"

// SyncLedger is the queryable per-asset consistency record. Every
// dual-tier mutation updates the ledger so that interrupted remote
// propagation is detectable rather than silent drift.
type SyncLedger interface {
	Get(projectID string, kind domain.AssetKind, key string) (*domain.SyncRecord, error)
	Upsert(rec *domain.SyncRecord) error
	Delete(projectID string, kind domain.AssetKind, key string) error

	// Pending returns all records of a project whose remote leg is
	// unconfirmed, in stable key order.
	Pending(projectID string) ([]domain.SyncRecord, error)

	// Records returns every record of a project in stable key order.
	Records(projectID string) ([]domain.SyncRecord, error)

	Close() error
}
