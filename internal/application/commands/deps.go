package commands

import (
	"context"

	"deckvault/internal/application"
	"deckvault/internal/domain"
	"deckvault/internal/gc"
	"deckvault/internal/ports"
	"deckvault/internal/store"
)

// Deps bundles the collaborators every command needs: the descriptor
// repository, the index snapshot cache, the per-project store
// factory, and the project lock registry.
type Deps struct {
	Repo      ports.DescriptorRepository
	Snapshots ports.IndexSnapshots
	Stores    *store.Factory
	Locks     *application.Locks
}

// reconcileProject rebuilds the project's index, diffs it against the
// cached snapshot, applies resulting deletions, and caches the new
// index. Callers must hold the project lock.
func reconcileProject(ctx context.Context, deps *Deps, p *domain.Project) (*gc.Report, *domain.ReferenceIndex, error) {
	old, err := deps.Snapshots.LoadSnapshot(p.ID)
	if err != nil {
		return nil, nil, err
	}
	current := domain.BuildIndex(p)

	report, err := gc.Reconcile(ctx, old, current, deps.Stores.For(p))
	if err != nil {
		return report, current, err
	}
	if err := deps.Snapshots.SaveSnapshot(p.ID, current); err != nil {
		return report, current, err
	}
	return report, current, nil
}
