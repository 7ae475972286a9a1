package commands

import (
	"context"
	"fmt"

	"deckvault/internal/application"
	"deckvault/internal/domain"
	"deckvault/internal/gc"
)

// ListProjectsResult enumerates the projects under the root.
type ListProjectsResult struct {
	Projects []string
}

// ListProjectsCommand lists all projects.
type ListProjectsCommand struct {
	deps *Deps
}

// NewListProjectsCommand creates a new ListProjectsCommand
func NewListProjectsCommand(deps *Deps) *ListProjectsCommand {
	return &ListProjectsCommand{deps: deps}
}

// Execute runs the list projects command
func (c *ListProjectsCommand) Execute(ctx context.Context) (*ListProjectsResult, error) {
	projects, err := c.deps.Repo.List()
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return &ListProjectsResult{Projects: projects}, nil
}

// CreateProjectResult reports a created project.
type CreateProjectResult struct {
	Project *domain.Project
	Message string
}

// CreateProjectCommand creates a project's directory layout and an
// initial descriptor with one empty page.
type CreateProjectCommand struct {
	deps      *Deps
	ProjectID string
}

// NewCreateProjectCommand creates a new CreateProjectCommand
func NewCreateProjectCommand(deps *Deps, projectID string) *CreateProjectCommand {
	return &CreateProjectCommand{deps: deps, ProjectID: projectID}
}

// Validate checks the command arguments
func (c *CreateProjectCommand) Validate() error {
	if err := application.ValidateRequired("projectID", c.ProjectID); err != nil {
		return err
	}
	return application.ValidateProjectName(c.ProjectID)
}

// Execute runs the create project command
func (c *CreateProjectCommand) Execute(ctx context.Context) (*CreateProjectResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	unlock := c.deps.Locks.Lock(c.ProjectID)
	defer unlock()

	if err := c.deps.Repo.Ensure(c.ProjectID); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}
	project, err := c.deps.Repo.Load(c.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to load project: %w", err)
	}

	return &CreateProjectResult{
		Project: project,
		Message: fmt.Sprintf("created project %s with %d page(s)", project.ID, len(project.Pages)),
	}, nil
}

// AddPageResult reports a newly added page.
type AddPageResult struct {
	Page    *domain.Page
	Order   int
	Message string
}

// AddPageCommand appends a page with a fresh identity.
type AddPageCommand struct {
	deps      *Deps
	ProjectID string
	Body      string
	Script    string
	Notes     string
}

// NewAddPageCommand creates a new AddPageCommand
func NewAddPageCommand(deps *Deps, projectID, body, script, notes string) *AddPageCommand {
	return &AddPageCommand{deps: deps, ProjectID: projectID, Body: body, Script: script, Notes: notes}
}

// Validate checks the command arguments
func (c *AddPageCommand) Validate() error {
	if err := application.ValidateRequired("projectID", c.ProjectID); err != nil {
		return err
	}
	return application.ValidateProjectName(c.ProjectID)
}

// Execute runs the add page command
func (c *AddPageCommand) Execute(ctx context.Context) (*AddPageResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	unlock := c.deps.Locks.Lock(c.ProjectID)
	defer unlock()

	project, err := c.deps.Repo.Load(c.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to load project: %w", err)
	}

	page := domain.NewPage()
	page.Body = c.Body
	page.Script = c.Script
	page.Notes = c.Notes
	project.Pages = append(project.Pages, page)

	if err := c.deps.Repo.Save(project); err != nil {
		return nil, fmt.Errorf("failed to save project: %w", err)
	}
	if _, _, err := reconcileProject(ctx, c.deps, project); err != nil {
		return nil, fmt.Errorf("failed to reconcile: %w", err)
	}

	return &AddPageResult{
		Page:    page,
		Order:   len(project.Pages) - 1,
		Message: fmt.Sprintf("added page %s at position %d", page.ID, len(project.Pages)),
	}, nil
}

// UpdatePageResult reports an edited page and the reconcile outcome.
type UpdatePageResult struct {
	Page    *domain.Page
	Report  *gc.Report
	Message string
}

// UpdatePageCommand replaces a page's text fields. Nil fields are
// left untouched. The reference index is rebuilt and reconciled after
// the edit, so an asset losing its last reference here is deleted.
type UpdatePageCommand struct {
	deps      *Deps
	ProjectID string
	PageID    string
	Body      *string
	Script    *string
	Notes     *string
}

// NewUpdatePageCommand creates a new UpdatePageCommand
func NewUpdatePageCommand(deps *Deps, projectID, pageID string) *UpdatePageCommand {
	return &UpdatePageCommand{deps: deps, ProjectID: projectID, PageID: pageID}
}

// Validate checks the command arguments
func (c *UpdatePageCommand) Validate() error {
	if err := application.ValidateRequired("projectID", c.ProjectID); err != nil {
		return err
	}
	if err := application.ValidateProjectName(c.ProjectID); err != nil {
		return err
	}
	return application.ValidateRequired("pageID", c.PageID)
}

// Execute runs the update page command
func (c *UpdatePageCommand) Execute(ctx context.Context) (*UpdatePageResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	unlock := c.deps.Locks.Lock(c.ProjectID)
	defer unlock()

	project, err := c.deps.Repo.Load(c.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to load project: %w", err)
	}

	page, ok := project.Resolve(c.PageID)
	if !ok {
		return nil, fmt.Errorf("update page %s: %w", c.PageID, application.ErrPageNotFound)
	}
	if c.Body != nil {
		page.Body = *c.Body
	}
	if c.Script != nil {
		page.Script = *c.Script
	}
	if c.Notes != nil {
		page.Notes = *c.Notes
	}

	if err := c.deps.Repo.Save(project); err != nil {
		return nil, fmt.Errorf("failed to save project: %w", err)
	}
	report, _, err := reconcileProject(ctx, c.deps, project)
	if err != nil {
		return nil, fmt.Errorf("failed to reconcile: %w", err)
	}

	return &UpdatePageResult{
		Page:    page,
		Report:  report,
		Message: fmt.Sprintf("updated page %s, deleted %d unreferenced assets", page.ID, len(report.Deleted)),
	}, nil
}

// RemovePageResult reports a removed page and the reconcile outcome.
type RemovePageResult struct {
	Report  *gc.Report
	Message string
}

// RemovePageCommand deletes a page by identity and reconciles, so
// assets referenced only by that page are cleaned up in the same
// operation.
type RemovePageCommand struct {
	deps      *Deps
	ProjectID string
	PageID    string
}

// NewRemovePageCommand creates a new RemovePageCommand
func NewRemovePageCommand(deps *Deps, projectID, pageID string) *RemovePageCommand {
	return &RemovePageCommand{deps: deps, ProjectID: projectID, PageID: pageID}
}

// Validate checks the command arguments
func (c *RemovePageCommand) Validate() error {
	if err := application.ValidateRequired("projectID", c.ProjectID); err != nil {
		return err
	}
	if err := application.ValidateProjectName(c.ProjectID); err != nil {
		return err
	}
	return application.ValidateRequired("pageID", c.PageID)
}

// Execute runs the remove page command
func (c *RemovePageCommand) Execute(ctx context.Context) (*RemovePageResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	unlock := c.deps.Locks.Lock(c.ProjectID)
	defer unlock()

	project, err := c.deps.Repo.Load(c.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to load project: %w", err)
	}

	if _, ok := project.RemovePage(c.PageID); !ok {
		return nil, fmt.Errorf("remove page %s: %w", c.PageID, application.ErrPageNotFound)
	}

	if err := c.deps.Repo.Save(project); err != nil {
		return nil, fmt.Errorf("failed to save project: %w", err)
	}
	report, _, err := reconcileProject(ctx, c.deps, project)
	if err != nil {
		return nil, fmt.Errorf("failed to reconcile: %w", err)
	}

	return &RemovePageResult{
		Report:  report,
		Message: fmt.Sprintf("removed page %s, deleted %d unreferenced assets", c.PageID, len(report.Deleted)),
	}, nil
}

// ReorderPagesResult reports a completed reorder.
type ReorderPagesResult struct {
	Message string
}

// ReorderPagesCommand rearranges display order. Reordering cannot
// change the reference index: references are keyed by page identity,
// not position.
type ReorderPagesCommand struct {
	deps      *Deps
	ProjectID string
	PageIDs   []string
}

// NewReorderPagesCommand creates a new ReorderPagesCommand
func NewReorderPagesCommand(deps *Deps, projectID string, pageIDs []string) *ReorderPagesCommand {
	return &ReorderPagesCommand{deps: deps, ProjectID: projectID, PageIDs: pageIDs}
}

// Validate checks the command arguments
func (c *ReorderPagesCommand) Validate() error {
	if err := application.ValidateRequired("projectID", c.ProjectID); err != nil {
		return err
	}
	if err := application.ValidateProjectName(c.ProjectID); err != nil {
		return err
	}
	if len(c.PageIDs) == 0 {
		return &application.ValidationError{Field: "pageIDs", Message: "page order is required"}
	}
	return nil
}

// Execute runs the reorder pages command
func (c *ReorderPagesCommand) Execute(ctx context.Context) (*ReorderPagesResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	unlock := c.deps.Locks.Lock(c.ProjectID)
	defer unlock()

	project, err := c.deps.Repo.Load(c.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to load project: %w", err)
	}

	before := domain.BuildIndex(project)
	if !project.Reorder(c.PageIDs) {
		return nil, &application.ValidationError{
			Field:   "pageIDs",
			Message: "page order must be a permutation of the project's pages",
		}
	}
	after := domain.BuildIndex(project)
	if !after.Equal(before) {
		// Cannot happen while references are keyed by identity;
		// refuse to persist if it ever does.
		return nil, fmt.Errorf("reorder changed the reference index: %w", application.ErrInconsistent)
	}

	if err := c.deps.Repo.Save(project); err != nil {
		return nil, fmt.Errorf("failed to save project: %w", err)
	}
	if err := c.deps.Snapshots.SaveSnapshot(project.ID, after); err != nil {
		return nil, fmt.Errorf("failed to cache index: %w", err)
	}

	return &ReorderPagesResult{
		Message: fmt.Sprintf("reordered %d pages", len(c.PageIDs)),
	}, nil
}
