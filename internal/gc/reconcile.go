// Package gc owns the last-reference deletion policy. Deletion is a
// set difference over two whole-project index snapshots, never a
// per-link decrement, which is what makes it immune to ordering and
// position bugs.
package gc

import (
	"context"
	"fmt"

	"deckvault/internal/domain"
	"deckvault/internal/store"
)

// Deleted identifies one asset removed during a reconcile.
type Deleted struct {
	Kind domain.AssetKind
	Key  string
}

// Report summarizes a reconcile run. Warnings carry remote-tier
// degradations; the deletions they annotate still completed locally.
type Report struct {
	Deleted  []Deleted
	Dangling []domain.DanglingLink
	Warnings []string
}

// Orphan is an asset present in the store but absent from the
// reference index entirely. Orphans are surfaced for review, never
// deleted here.
type Orphan struct {
	Kind   domain.AssetKind
	Key    string
	Local  bool
	Remote bool
}

// Reconcile diffs two index snapshots and deletes exactly the assets
// whose reference set transitioned from nonempty to empty or absent.
// Assets whose set merely shrank are untouched; assets new in the
// current index require no action because reference creation never
// creates bytes.
func Reconcile(ctx context.Context, old, current *domain.ReferenceIndex, st *store.Store) (*Report, error) {
	report := &Report{Dangling: current.Dangling}

	for _, kind := range domain.Kinds {
		for _, key := range old.Keys(kind) {
			if len(old.Refs(kind, key)) == 0 {
				continue
			}
			if current.Referenced(kind, key) {
				continue
			}
			result, err := st.Delete(ctx, kind, key)
			if err != nil {
				return report, fmt.Errorf("reconcile delete %s/%s: %w", kind, key, err)
			}
			report.Deleted = append(report.Deleted, Deleted{Kind: kind, Key: key})
			if result.Warning != "" {
				report.Warnings = append(report.Warnings, result.Warning)
			}
		}
	}

	return report, nil
}

// ScanOrphans lists stored assets that appear nowhere in the current
// index. The caller decides what to do with them; repeated reconciles
// never remove an orphan because it was never in a previous snapshot
// with references.
func ScanOrphans(ctx context.Context, current *domain.ReferenceIndex, st *store.Store) ([]Orphan, []string, error) {
	var orphans []Orphan
	var warnings []string

	for _, kind := range domain.Kinds {
		listing, err := st.List(ctx, kind)
		if err != nil {
			return nil, warnings, fmt.Errorf("scan %s: %w", kind, err)
		}
		if listing.Warning != "" {
			warnings = append(warnings, listing.Warning)
		}
		for _, key := range listing.Keys {
			if current.Refs(kind, key) != nil {
				continue
			}
			orphans = append(orphans, Orphan{
				Kind:   kind,
				Key:    key,
				Local:  listing.Local[key],
				Remote: listing.Remote[key],
			})
		}
	}

	return orphans, warnings, nil
}
