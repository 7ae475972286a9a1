package commands

import (
	"context"
	"fmt"

	"deckvault/internal/application"
	"deckvault/internal/gc"
)

// ReconcileResult contains the outcome of a reconcile run.
type ReconcileResult struct {
	Report  *gc.Report
	Message string
}

// ReconcileCommand diffs the current reference index against the
// snapshot cached at the last reconcile and deletes assets whose last
// reference went away.
type ReconcileCommand struct {
	deps      *Deps
	ProjectID string
}

// NewReconcileCommand creates a new ReconcileCommand
func NewReconcileCommand(deps *Deps, projectID string) *ReconcileCommand {
	return &ReconcileCommand{deps: deps, ProjectID: projectID}
}

// Validate checks the command arguments
func (c *ReconcileCommand) Validate() error {
	if err := application.ValidateRequired("projectID", c.ProjectID); err != nil {
		return err
	}
	return application.ValidateProjectName(c.ProjectID)
}

// Execute runs the reconcile command
func (c *ReconcileCommand) Execute(ctx context.Context) (*ReconcileResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	unlock := c.deps.Locks.Lock(c.ProjectID)
	defer unlock()

	project, err := c.deps.Repo.Load(c.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to load project: %w", err)
	}

	report, _, err := reconcileProject(ctx, c.deps, project)
	if err != nil {
		return nil, fmt.Errorf("failed to reconcile: %w", err)
	}

	msg := fmt.Sprintf("deleted %d assets", len(report.Deleted))
	if len(report.Warnings) > 0 {
		msg += fmt.Sprintf(", %d sync warnings", len(report.Warnings))
	}
	if len(report.Dangling) > 0 {
		msg += fmt.Sprintf(", %d dangling links", len(report.Dangling))
	}
	return &ReconcileResult{Report: report, Message: msg}, nil
}
