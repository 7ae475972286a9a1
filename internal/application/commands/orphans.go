package commands

import (
	"context"
	"fmt"

	"deckvault/internal/application"
	"deckvault/internal/domain"
	"deckvault/internal/gc"
)

// ScanOrphansResult lists stored-but-unreferenced assets for review.
type ScanOrphansResult struct {
	Orphans  []gc.Orphan
	Warnings []string
	Message  string
}

// ScanOrphansCommand finds assets present in the store that no page
// references. Orphans are reported, never deleted.
type ScanOrphansCommand struct {
	deps      *Deps
	ProjectID string
}

// NewScanOrphansCommand creates a new ScanOrphansCommand
func NewScanOrphansCommand(deps *Deps, projectID string) *ScanOrphansCommand {
	return &ScanOrphansCommand{deps: deps, ProjectID: projectID}
}

// Validate checks the command arguments
func (c *ScanOrphansCommand) Validate() error {
	if err := application.ValidateRequired("projectID", c.ProjectID); err != nil {
		return err
	}
	return application.ValidateProjectName(c.ProjectID)
}

// Execute runs the scan orphans command
func (c *ScanOrphansCommand) Execute(ctx context.Context) (*ScanOrphansResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	unlock := c.deps.Locks.Lock(c.ProjectID)
	defer unlock()

	project, err := c.deps.Repo.Load(c.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to load project: %w", err)
	}

	ix := domain.BuildIndex(project)
	orphans, warnings, err := gc.ScanOrphans(ctx, ix, c.deps.Stores.For(project))
	if err != nil {
		return nil, fmt.Errorf("failed to scan orphans: %w", err)
	}

	return &ScanOrphansResult{
		Orphans:  orphans,
		Warnings: warnings,
		Message:  fmt.Sprintf("%d orphaned assets", len(orphans)),
	}, nil
}
