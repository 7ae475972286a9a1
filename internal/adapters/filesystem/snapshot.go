package filesystem

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"deckvault/internal/domain"
	"deckvault/internal/ports"
)

const snapshotFile = ".refindex.json"

// snapshot is the on-disk shape of a cached reference index: asset
// key to sorted page IDs, per kind. Dangling-link diagnostics are not
// cached; they are recomputed on every build.
type snapshot struct {
	Resources   map[string][]string `json:"resources,omitempty"`
	Attachments map[string][]string `json:"attachments,omitempty"`
}

var _ ports.IndexSnapshots = (*Repository)(nil)

// LoadSnapshot returns the reference index cached by the last
// reconcile. A missing snapshot is an empty index, not an error.
func (r *Repository) LoadSnapshot(projectID string) (*domain.ReferenceIndex, error) {
	data, err := os.ReadFile(filepath.Join(r.projectDir(projectID), snapshotFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.NewReferenceIndex(), nil
		}
		return nil, fmt.Errorf("load %s snapshot: %w", projectID, err)
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		// A corrupt cache is discarded; the next reconcile diffs
		// against empty, which can only under-delete.
		return domain.NewReferenceIndex(), nil
	}

	ix := domain.NewReferenceIndex()
	for key, pages := range snap.Resources {
		for _, id := range pages {
			ix.Resources[key] = appendPage(ix.Resources[key], id)
		}
	}
	for key, pages := range snap.Attachments {
		for _, id := range pages {
			ix.Attachments[key] = appendPage(ix.Attachments[key], id)
		}
	}
	return ix, nil
}

func appendPage(set domain.PageSet, pageID string) domain.PageSet {
	if set == nil {
		set = make(domain.PageSet)
	}
	set.Add(pageID)
	return set
}

// SaveSnapshot caches a reference index for the next reconcile.
func (r *Repository) SaveSnapshot(projectID string, ix *domain.ReferenceIndex) error {
	snap := snapshot{
		Resources:   make(map[string][]string, len(ix.Resources)),
		Attachments: make(map[string][]string, len(ix.Attachments)),
	}
	for _, key := range ix.Keys(domain.KindResource) {
		snap.Resources[key] = ix.Resources[key].Pages()
	}
	for _, key := range ix.Keys(domain.KindAttachment) {
		snap.Attachments[key] = ix.Attachments[key].Pages()
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s snapshot: %w", projectID, err)
	}
	if err := os.MkdirAll(r.projectDir(projectID), 0755); err != nil {
		return fmt.Errorf("save %s snapshot: %w", projectID, err)
	}
	return writeFileAtomic(filepath.Join(r.projectDir(projectID), snapshotFile), data)
}
