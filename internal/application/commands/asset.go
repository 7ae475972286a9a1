package commands

import (
	"context"
	"fmt"

	"deckvault/internal/application"
	"deckvault/internal/domain"
	"deckvault/internal/store"
)

// assetArgs holds the arguments shared by all single-asset commands.
type assetArgs struct {
	ProjectID string
	Kind      string
	Key       string
}

// validate normalizes the key and parses the kind.
func (a *assetArgs) validate() (domain.AssetKind, string, error) {
	if err := application.ValidateRequired("projectID", a.ProjectID); err != nil {
		return "", "", err
	}
	if err := application.ValidateProjectName(a.ProjectID); err != nil {
		return "", "", err
	}
	kind, err := application.ValidateAssetKind(a.Kind)
	if err != nil {
		return "", "", err
	}
	key, err := application.ValidateAssetKey(a.Key)
	if err != nil {
		return "", "", err
	}
	return kind, key, nil
}

// ReadAssetResult carries asset bytes read from the store.
type ReadAssetResult struct {
	Key  string
	Data []byte
}

// ReadAssetCommand reads an asset, local tier first.
type ReadAssetCommand struct {
	deps *Deps
	assetArgs
}

// NewReadAssetCommand creates a new ReadAssetCommand
func NewReadAssetCommand(deps *Deps, projectID, kind, key string) *ReadAssetCommand {
	return &ReadAssetCommand{deps: deps, assetArgs: assetArgs{ProjectID: projectID, Kind: kind, Key: key}}
}

// Validate checks the command arguments
func (c *ReadAssetCommand) Validate() error {
	_, _, err := c.validate()
	return err
}

// Execute runs the read asset command
func (c *ReadAssetCommand) Execute(ctx context.Context) (*ReadAssetResult, error) {
	kind, key, err := c.validate()
	if err != nil {
		return nil, err
	}

	project, err := c.deps.Repo.Load(c.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to load project: %w", err)
	}

	data, err := c.deps.Stores.For(project).Read(ctx, kind, key)
	if err != nil {
		return nil, err
	}
	return &ReadAssetResult{Key: key, Data: data}, nil
}

// WriteAssetResult reports a completed write. Warning is set when the
// asset was saved locally but not yet synced.
type WriteAssetResult struct {
	Result  *store.WriteResult
	Message string
}

// WriteAssetCommand stores asset bytes in both tiers.
type WriteAssetCommand struct {
	deps *Deps
	assetArgs
	Data []byte
}

// NewWriteAssetCommand creates a new WriteAssetCommand
func NewWriteAssetCommand(deps *Deps, projectID, kind, key string, data []byte) *WriteAssetCommand {
	return &WriteAssetCommand{
		deps:      deps,
		assetArgs: assetArgs{ProjectID: projectID, Kind: kind, Key: key},
		Data:      data,
	}
}

// Validate checks the command arguments
func (c *WriteAssetCommand) Validate() error {
	_, _, err := c.validate()
	return err
}

// Execute runs the write asset command
func (c *WriteAssetCommand) Execute(ctx context.Context) (*WriteAssetResult, error) {
	kind, key, err := c.validate()
	if err != nil {
		return nil, err
	}

	project, err := c.deps.Repo.Load(c.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to load project: %w", err)
	}

	result, err := c.deps.Stores.For(project).Write(ctx, kind, key, c.Data)
	if err != nil {
		return nil, err
	}

	msg := fmt.Sprintf("wrote %s/%s (%d bytes)", kind, key, len(c.Data))
	if result.Warning != "" {
		msg += " (saved locally, not yet synced)"
	}
	return &WriteAssetResult{Result: result, Message: msg}, nil
}

// DeleteAssetResult reports a completed delete.
type DeleteAssetResult struct {
	Result  *store.DeleteResult
	Message string
}

// DeleteAssetCommand removes an asset from both tiers. It refuses to
// delete an asset whose computed reference set is nonempty.
type DeleteAssetCommand struct {
	deps *Deps
	assetArgs
}

// NewDeleteAssetCommand creates a new DeleteAssetCommand
func NewDeleteAssetCommand(deps *Deps, projectID, kind, key string) *DeleteAssetCommand {
	return &DeleteAssetCommand{deps: deps, assetArgs: assetArgs{ProjectID: projectID, Kind: kind, Key: key}}
}

// Validate checks the command arguments
func (c *DeleteAssetCommand) Validate() error {
	_, _, err := c.validate()
	return err
}

// Execute runs the delete asset command
func (c *DeleteAssetCommand) Execute(ctx context.Context) (*DeleteAssetResult, error) {
	kind, key, err := c.validate()
	if err != nil {
		return nil, err
	}

	unlock := c.deps.Locks.Lock(c.ProjectID)
	defer unlock()

	project, err := c.deps.Repo.Load(c.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to load project: %w", err)
	}

	if refs := domain.BuildIndex(project).Refs(kind, key); len(refs) > 0 {
		return nil, &application.ReferenceConflictError{Kind: kind, Key: key, Pages: refs.Pages()}
	}

	result, err := c.deps.Stores.For(project).Delete(ctx, kind, key)
	if err != nil {
		return nil, err
	}

	msg := fmt.Sprintf("deleted %s/%s", kind, key)
	if result.Warning != "" {
		msg += " (removed locally, remote delete pending)"
	}
	return &DeleteAssetResult{Result: result, Message: msg}, nil
}

// ListAssetsResult carries the merged listing of one asset kind.
type ListAssetsResult struct {
	Listing *store.Listing
}

// ListAssetsCommand lists stored asset keys of a kind across both tiers.
type ListAssetsCommand struct {
	deps      *Deps
	ProjectID string
	Kind      string
}

// NewListAssetsCommand creates a new ListAssetsCommand
func NewListAssetsCommand(deps *Deps, projectID, kind string) *ListAssetsCommand {
	return &ListAssetsCommand{deps: deps, ProjectID: projectID, Kind: kind}
}

// Validate checks the command arguments
func (c *ListAssetsCommand) Validate() error {
	if err := application.ValidateRequired("projectID", c.ProjectID); err != nil {
		return err
	}
	if err := application.ValidateProjectName(c.ProjectID); err != nil {
		return err
	}
	_, err := application.ValidateAssetKind(c.Kind)
	return err
}

// Execute runs the list assets command
func (c *ListAssetsCommand) Execute(ctx context.Context) (*ListAssetsResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	kind, err := application.ValidateAssetKind(c.Kind)
	if err != nil {
		return nil, err
	}

	project, err := c.deps.Repo.Load(c.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to load project: %w", err)
	}

	listing, err := c.deps.Stores.For(project).List(ctx, kind)
	if err != nil {
		return nil, err
	}
	return &ListAssetsResult{Listing: listing}, nil
}
