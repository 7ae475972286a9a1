package commands

import (
	"context"
	"fmt"

	"deckvault/internal/application"
	"deckvault/internal/domain"
)

// RebuildIndexResult contains the freshly built reference index.
type RebuildIndexResult struct {
	Index   *domain.ReferenceIndex
	Pages   int
	Message string
}

// RebuildIndexCommand derives the reference index from current
// project content. Rebuilding never mutates anything: the index is a
// pure function of the descriptor.
type RebuildIndexCommand struct {
	deps      *Deps
	ProjectID string
}

// NewRebuildIndexCommand creates a new RebuildIndexCommand
func NewRebuildIndexCommand(deps *Deps, projectID string) *RebuildIndexCommand {
	return &RebuildIndexCommand{deps: deps, ProjectID: projectID}
}

// Validate checks the command arguments
func (c *RebuildIndexCommand) Validate() error {
	if err := application.ValidateRequired("projectID", c.ProjectID); err != nil {
		return err
	}
	return application.ValidateProjectName(c.ProjectID)
}

// Execute runs the rebuild index command
func (c *RebuildIndexCommand) Execute(ctx context.Context) (*RebuildIndexResult, error) {
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
	return &RebuildIndexResult{
		Index: ix,
		Pages: len(project.Pages),
		Message: fmt.Sprintf("indexed %d resources and %d attachments across %d pages (%d dangling links)",
			len(ix.Resources), len(ix.Attachments), len(project.Pages), len(ix.Dangling)),
	}, nil
}
