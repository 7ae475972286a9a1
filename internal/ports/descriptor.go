package ports

import "deckvault/internal/domain"

// DescriptorRepository persists project descriptors. The descriptor
// is owned by the editing subsystem; this port is how the core reads
// it for index construction and writes back manifest updates.
type DescriptorRepository interface {
	// List returns the IDs of all projects under the root.
	List() ([]string, error)

	// Ensure creates the project's directory layout and an empty
	// descriptor when missing.
	Ensure(projectID string) error

	// Load reads and canonicalizes a project descriptor. Pages
	// missing an identity are assigned one and the migration is
	// persisted before returning.
	Load(projectID string) (*domain.Project, error)

	// Save validates and atomically writes a descriptor.
	Save(p *domain.Project) error
}

// IndexSnapshots caches the reference index observed at the last
// reconcile, so the next reconcile has an old snapshot to diff
// against. Snapshots are caches of a derived value, never ground
// truth: a missing snapshot just means an empty old index.
type IndexSnapshots interface {
	LoadSnapshot(projectID string) (*domain.ReferenceIndex, error)
	SaveSnapshot(projectID string, ix *domain.ReferenceIndex) error
}
