package domain

// SyncRecord tracks the known local/remote consistency of one asset.
// Pending marks a mutation whose remote leg has not been confirmed; a
// crash between the local and remote halves of a write or delete
// leaves Pending set, which reconcile surfaces instead of silently
// resolving in either direction.
type SyncRecord struct {
	ProjectID     string
	Kind          AssetKind
	Key           string
	SHA256        string
	LocalPresent  bool
	RemotePresent bool
	Pending       bool
	UpdatedAt     int64
}

// Consistent reports whether the record shows local and remote in
// agreement with no unconfirmed mutation.
func (r *SyncRecord) Consistent() bool {
	return !r.Pending && r.LocalPresent == r.RemotePresent
}
