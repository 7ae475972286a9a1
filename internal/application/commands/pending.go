package commands

import (
	"context"
	"fmt"

	"deckvault/internal/application"
	"deckvault/internal/domain"
)

// PendingSyncResult lists assets whose remote leg is unconfirmed.
type PendingSyncResult struct {
	Records []domain.SyncRecord
	Message string
}

// PendingSyncCommand reports assets whose ledger record is not in a
// settled state: a write or delete whose remote leg never confirmed,
// or, on a sync-enabled project, tiers that disagree on presence.
// The operator can tell degraded state from clean state without
// probing the remote.
type PendingSyncCommand struct {
	deps      *Deps
	ProjectID string
}

// NewPendingSyncCommand creates a new PendingSyncCommand
func NewPendingSyncCommand(deps *Deps, projectID string) *PendingSyncCommand {
	return &PendingSyncCommand{deps: deps, ProjectID: projectID}
}

// Validate checks the command arguments
func (c *PendingSyncCommand) Validate() error {
	if err := application.ValidateRequired("projectID", c.ProjectID); err != nil {
		return err
	}
	return application.ValidateProjectName(c.ProjectID)
}

// Execute runs the pending sync command
func (c *PendingSyncCommand) Execute(ctx context.Context) (*PendingSyncResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	project, err := c.deps.Repo.Load(c.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to load project: %w", err)
	}

	all, err := c.deps.Stores.Ledger.Records(c.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to read sync ledger: %w", err)
	}

	// A local-only record without a pending mutation is normal while
	// sync is disabled; once sync is on, disagreeing tiers mean a
	// reconcile is needed.
	var records []domain.SyncRecord
	for _, rec := range all {
		if rec.Pending || (project.SyncEnabled && !rec.Consistent()) {
			records = append(records, rec)
		}
	}

	msg := "all assets in sync"
	if len(records) > 0 {
		msg = fmt.Sprintf("%d assets out of sync", len(records))
	}
	return &PendingSyncResult{Records: records, Message: msg}, nil
}
