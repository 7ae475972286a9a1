package commands

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"deckvault/internal/application"
	"deckvault/internal/domain"
	"deckvault/internal/gc"
)

// TransferPageResult reports a completed cross-project transfer.
type TransferPageResult struct {
	Page      *domain.Page
	Moved     []string
	SrcReport *gc.Report
	DstReport *gc.Report
	Warnings  []string
	Message   string
}

// TransferPageCommand moves a page, identity intact, from one project
// to another. Both projects stay locked for the whole transfer: asset
// bytes are copied into the destination before the source reconcile
// runs, so no asset is ever observable as deleted from the source
// without being present in the destination's reference set.
type TransferPageCommand struct {
	deps         *Deps
	SrcProjectID string
	DstProjectID string
	PageID       string
}

// NewTransferPageCommand creates a new TransferPageCommand
func NewTransferPageCommand(deps *Deps, srcProjectID, dstProjectID, pageID string) *TransferPageCommand {
	return &TransferPageCommand{
		deps:         deps,
		SrcProjectID: srcProjectID,
		DstProjectID: dstProjectID,
		PageID:       pageID,
	}
}

// Validate checks the command arguments
func (c *TransferPageCommand) Validate() error {
	if err := application.ValidateRequired("srcProjectID", c.SrcProjectID); err != nil {
		return err
	}
	if err := application.ValidateRequired("dstProjectID", c.DstProjectID); err != nil {
		return err
	}
	if err := application.ValidateRequired("pageID", c.PageID); err != nil {
		return err
	}
	if err := application.ValidateProjectName(c.SrcProjectID); err != nil {
		return err
	}
	if err := application.ValidateProjectName(c.DstProjectID); err != nil {
		return err
	}
	if c.SrcProjectID == c.DstProjectID {
		return &application.ValidationError{
			Field:   "dstProjectID",
			Message: "source and destination projects must differ",
		}
	}
	return nil
}

// Execute runs the transfer page command
func (c *TransferPageCommand) Execute(ctx context.Context) (*TransferPageResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	unlock := c.deps.Locks.LockPair(c.SrcProjectID, c.DstProjectID)
	defer unlock()

	src, err := c.deps.Repo.Load(c.SrcProjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to load source project: %w", err)
	}
	dst, err := c.deps.Repo.Load(c.DstProjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to load destination project: %w", err)
	}

	oldSrc := domain.BuildIndex(src)
	oldDst := domain.BuildIndex(dst)

	page, ok := src.RemovePage(c.PageID)
	if !ok {
		return nil, fmt.Errorf("transfer page %s: %w", c.PageID, application.ErrPageNotFound)
	}
	dst.Pages = append(dst.Pages, page)

	newSrc := domain.BuildIndex(src)
	newDst := domain.BuildIndex(dst)

	result := &TransferPageResult{Page: page}

	// Copy the page's asset bytes into the destination before either
	// descriptor is persisted. A failure here aborts the transfer
	// with both projects untouched on disk.
	srcStore := c.deps.Stores.For(src)
	dstStore := c.deps.Stores.For(dst)
	for _, kind := range domain.Kinds {
		for _, key := range newDst.Keys(kind) {
			if !newDst.Refs(kind, key).Has(page.ID) {
				continue
			}
			data, err := srcStore.Read(ctx, kind, key)
			if err != nil {
				if errors.Is(err, application.ErrNotFound) {
					// referenced but never uploaded; nothing to move
					continue
				}
				return nil, fmt.Errorf("failed to read %s/%s from source: %w", kind, key, err)
			}
			// Keys are project-scoped, so the destination may already
			// hold an unrelated asset under the same key. Never replace
			// it silently: keep the destination's copy and warn.
			existing, err := dstStore.Read(ctx, kind, key)
			if err == nil {
				if !bytes.Equal(existing, data) {
					result.Warnings = append(result.Warnings, fmt.Sprintf(
						"destination already has %s/%s with different content, kept the destination copy", kind, key))
				}
				continue
			}
			if !errors.Is(err, application.ErrNotFound) && !errors.Is(err, application.ErrSyncUnavailable) {
				return nil, fmt.Errorf("failed to check %s/%s in destination: %w", kind, key, err)
			}
			wr, err := dstStore.Write(ctx, kind, key, data)
			if err != nil {
				return nil, fmt.Errorf("failed to write %s/%s to destination: %w", kind, key, err)
			}
			if wr.Warning != "" {
				result.Warnings = append(result.Warnings, wr.Warning)
			}
			result.Moved = append(result.Moved, fmt.Sprintf("%s/%s", kind, key))
		}
	}

	// Destination first: if interrupted between the two saves, the
	// page exists in both projects and every asset is over-referenced
	// rather than unreferenced, which reconcile can never turn into a
	// wrong deletion.
	if err := c.deps.Repo.Save(dst); err != nil {
		return nil, fmt.Errorf("failed to save destination project: %w", err)
	}
	if err := c.deps.Repo.Save(src); err != nil {
		return nil, fmt.Errorf("failed to save source project: %w", err)
	}

	srcReport, err := gc.Reconcile(ctx, oldSrc, newSrc, srcStore)
	if err != nil {
		return nil, fmt.Errorf("failed to reconcile source: %w", err)
	}
	dstReport, err := gc.Reconcile(ctx, oldDst, newDst, dstStore)
	if err != nil {
		return nil, fmt.Errorf("failed to reconcile destination: %w", err)
	}
	if err := c.deps.Snapshots.SaveSnapshot(src.ID, newSrc); err != nil {
		return nil, fmt.Errorf("failed to cache source index: %w", err)
	}
	if err := c.deps.Snapshots.SaveSnapshot(dst.ID, newDst); err != nil {
		return nil, fmt.Errorf("failed to cache destination index: %w", err)
	}

	result.SrcReport = srcReport
	result.DstReport = dstReport
	result.Warnings = append(result.Warnings, srcReport.Warnings...)
	result.Warnings = append(result.Warnings, dstReport.Warnings...)
	result.Message = fmt.Sprintf("transferred page %s from %s to %s (%d assets moved, %d cleaned up)",
		page.ID, c.SrcProjectID, c.DstProjectID, len(result.Moved), len(srcReport.Deleted))
	return result, nil
}
