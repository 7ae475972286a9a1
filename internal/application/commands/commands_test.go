package commands

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"deckvault/internal/adapters/filesystem"
	"deckvault/internal/adapters/sqlite"
	"deckvault/internal/application"
	"deckvault/internal/domain"
	"deckvault/internal/store"
)

func newTestDeps(t *testing.T) *Deps {
	t.Helper()
	repo := filesystem.NewRepository(t.TempDir())
	ledger, err := sqlite.Open(filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("open ledger: %v", err)
	}
	t.Cleanup(func() { ledger.Close() })

	return &Deps{
		Repo:      repo,
		Snapshots: repo,
		Stores: &store.Factory{
			Root:   repo.Root(),
			Ledger: ledger,
		},
		Locks: application.NewLocks(),
	}
}

// setupProject creates a project with one page holding the given body
// and reconciles so the snapshot reflects it.
func setupProject(t *testing.T, deps *Deps, projectID, body string) *domain.Page {
	t.Helper()
	ctx := context.Background()
	if _, err := NewCreateProjectCommand(deps, projectID).Execute(ctx); err != nil {
		t.Fatalf("create %s: %v", projectID, err)
	}
	result, err := NewAddPageCommand(deps, projectID, body, "", "").Execute(ctx)
	if err != nil {
		t.Fatalf("add page: %v", err)
	}
	return result.Page
}

// downRemote is an ObjectStorage whose every call fails, standing in
// for an unreachable endpoint.
type downRemote struct{}

func (downRemote) Put(context.Context, string, []byte) error { return errors.New("unreachable") }
func (downRemote) Get(context.Context, string) ([]byte, error) {
	return nil, errors.New("unreachable")
}
func (downRemote) Delete(context.Context, string) error { return errors.New("unreachable") }
func (downRemote) List(context.Context, string) ([]string, error) {
	return nil, errors.New("unreachable")
}

func TestCreateProjectCommand(t *testing.T) {
	deps := newTestDeps(t)
	ctx := context.Background()

	result, err := NewCreateProjectCommand(deps, "talks").Execute(ctx)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.Project.ID != "talks" || len(result.Project.Pages) == 0 {
		t.Errorf("project = %+v", result.Project)
	}

	t.Run("appears in listing", func(t *testing.T) {
		list, err := NewListProjectsCommand(deps).Execute(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if len(list.Projects) != 1 || list.Projects[0] != "talks" {
			t.Errorf("projects = %v", list.Projects)
		}
	})

	t.Run("rejects unsafe names", func(t *testing.T) {
		if _, err := NewCreateProjectCommand(deps, "../escape").Execute(ctx); !errors.Is(err, application.ErrInvalidProjectName) {
			t.Errorf("err = %v, want ErrInvalidProjectName", err)
		}
	})
}

func TestWriteReadAsset(t *testing.T) {
	deps := newTestDeps(t)
	ctx := context.Background()
	setupProject(t, deps, "talks", "")

	if _, err := NewWriteAssetCommand(deps, "talks", "resources", "fig.png", []byte("bytes")).Execute(ctx); err != nil {
		t.Fatalf("write: %v", err)
	}

	result, err := NewReadAssetCommand(deps, "talks", "resources", "fig.png").Execute(ctx)
	if err != nil || string(result.Data) != "bytes" {
		t.Errorf("read = %q, %v", result.Data, err)
	}

	t.Run("key is normalized", func(t *testing.T) {
		r, err := NewReadAssetCommand(deps, "talks", "resources", "./fig.png").Execute(ctx)
		if err != nil || r.Key != "fig.png" {
			t.Errorf("read = %+v, %v", r, err)
		}
	})

	t.Run("invalid kind rejected", func(t *testing.T) {
		if _, err := NewWriteAssetCommand(deps, "talks", "images", "fig.png", nil).Execute(ctx); err == nil {
			t.Error("unknown kind accepted")
		}
	})
}

func TestDeleteAssetCommand(t *testing.T) {
	ctx := context.Background()

	t.Run("refuses while referenced", func(t *testing.T) {
		deps := newTestDeps(t)
		page := setupProject(t, deps, "talks", `\img{fig.png}`)
		if _, err := NewWriteAssetCommand(deps, "talks", "resources", "fig.png", []byte("b")).Execute(ctx); err != nil {
			t.Fatal(err)
		}

		_, err := NewDeleteAssetCommand(deps, "talks", "resources", "fig.png").Execute(ctx)
		if !errors.Is(err, application.ErrReferenceConflict) {
			t.Fatalf("err = %v, want ErrReferenceConflict", err)
		}
		var conflict *application.ReferenceConflictError
		if !errors.As(err, &conflict) {
			t.Fatalf("err = %T", err)
		}
		if len(conflict.Pages) != 1 || conflict.Pages[0] != page.ID {
			t.Errorf("conflict pages = %v, want [%s]", conflict.Pages, page.ID)
		}

		if _, err := NewReadAssetCommand(deps, "talks", "resources", "fig.png").Execute(ctx); err != nil {
			t.Errorf("refused delete must leave the asset intact: %v", err)
		}
	})

	t.Run("deletes unreferenced assets", func(t *testing.T) {
		deps := newTestDeps(t)
		setupProject(t, deps, "talks", "")
		if _, err := NewWriteAssetCommand(deps, "talks", "resources", "stray.png", []byte("b")).Execute(ctx); err != nil {
			t.Fatal(err)
		}

		if _, err := NewDeleteAssetCommand(deps, "talks", "resources", "stray.png").Execute(ctx); err != nil {
			t.Fatalf("delete: %v", err)
		}
		if _, err := NewReadAssetCommand(deps, "talks", "resources", "stray.png").Execute(ctx); !errors.Is(err, application.ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
	})
}

func TestUpdatePageReconciles(t *testing.T) {
	deps := newTestDeps(t)
	ctx := context.Background()
	page := setupProject(t, deps, "talks", `\img{fig.png}`)
	if _, err := NewWriteAssetCommand(deps, "talks", "resources", "fig.png", []byte("b")).Execute(ctx); err != nil {
		t.Fatal(err)
	}

	body := "no more figure"
	cmd := NewUpdatePageCommand(deps, "talks", page.ID)
	cmd.Body = &body
	result, err := cmd.Execute(ctx)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(result.Report.Deleted) != 1 || result.Report.Deleted[0].Key != "fig.png" {
		t.Errorf("deleted = %v, want fig.png", result.Report.Deleted)
	}
	if _, err := NewReadAssetCommand(deps, "talks", "resources", "fig.png").Execute(ctx); !errors.Is(err, application.ErrNotFound) {
		t.Errorf("asset survived: %v", err)
	}

	t.Run("unknown page id", func(t *testing.T) {
		cmd := NewUpdatePageCommand(deps, "talks", "no-such-page")
		if _, err := cmd.Execute(ctx); !errors.Is(err, application.ErrPageNotFound) {
			t.Errorf("err = %v, want ErrPageNotFound", err)
		}
	})
}

func TestRemovePageCleansUp(t *testing.T) {
	deps := newTestDeps(t)
	ctx := context.Background()
	setupProject(t, deps, "talks", `\img{shared.png}`)
	removeResult, err := NewAddPageCommand(deps, "talks", `\img{shared.png} and \img{solo.png}`, "", "").Execute(ctx)
	if err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"shared.png", "solo.png"} {
		if _, err := NewWriteAssetCommand(deps, "talks", "resources", key, []byte("b")).Execute(ctx); err != nil {
			t.Fatal(err)
		}
	}

	result, err := NewRemovePageCommand(deps, "talks", removeResult.Page.ID).Execute(ctx)
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if len(result.Report.Deleted) != 1 || result.Report.Deleted[0].Key != "solo.png" {
		t.Errorf("deleted = %v, want only solo.png", result.Report.Deleted)
	}

	// shared.png is still referenced by the surviving page
	if _, err := NewReadAssetCommand(deps, "talks", "resources", "shared.png").Execute(ctx); err != nil {
		t.Errorf("shared asset must survive: %v", err)
	}
}

func TestReorderPagesCommand(t *testing.T) {
	deps := newTestDeps(t)
	ctx := context.Background()
	first := setupProject(t, deps, "talks", `\img{a.png}`)
	second, err := NewAddPageCommand(deps, "talks", `\img{b.png}`, "", "").Execute(ctx)
	if err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"a.png", "b.png"} {
		if _, err := NewWriteAssetCommand(deps, "talks", "resources", key, []byte("b")).Execute(ctx); err != nil {
			t.Fatal(err)
		}
	}

	// The project always starts with one default page; collect actual order.
	project, err := deps.Repo.Load("talks")
	if err != nil {
		t.Fatal(err)
	}
	ids := make([]string, 0, len(project.Pages))
	for i := len(project.Pages) - 1; i >= 0; i-- {
		ids = append(ids, project.Pages[i].ID)
	}

	if _, err := NewReorderPagesCommand(deps, "talks", ids).Execute(ctx); err != nil {
		t.Fatalf("reorder: %v", err)
	}

	reloaded, err := deps.Repo.Load("talks")
	if err != nil {
		t.Fatal(err)
	}
	if reloaded.Pages[0].ID != ids[0] {
		t.Errorf("first page = %s, want %s", reloaded.Pages[0].ID, ids[0])
	}

	// No asset may be touched by a reorder.
	for _, key := range []string{"a.png", "b.png"} {
		if _, err := NewReadAssetCommand(deps, "talks", "resources", key).Execute(ctx); err != nil {
			t.Errorf("%s did not survive the reorder: %v", key, err)
		}
	}

	t.Run("rejects non-permutations", func(t *testing.T) {
		if _, err := NewReorderPagesCommand(deps, "talks", []string{first.ID, second.Page.ID}).Execute(ctx); err == nil {
			t.Error("partial order accepted")
		}
	})
}

func TestReconcileCommand(t *testing.T) {
	deps := newTestDeps(t)
	ctx := context.Background()
	page := setupProject(t, deps, "talks", `\img{fig.png}`)
	if _, err := NewWriteAssetCommand(deps, "talks", "resources", "fig.png", []byte("b")).Execute(ctx); err != nil {
		t.Fatal(err)
	}

	t.Run("no-op while references hold", func(t *testing.T) {
		result, err := NewReconcileCommand(deps, "talks").Execute(ctx)
		if err != nil {
			t.Fatalf("reconcile: %v", err)
		}
		if len(result.Report.Deleted) != 0 {
			t.Errorf("deleted = %v", result.Report.Deleted)
		}
	})

	t.Run("deletes after the descriptor changes underneath", func(t *testing.T) {
		// Simulate an external editor dropping the reference without
		// going through a command.
		project, err := deps.Repo.Load("talks")
		if err != nil {
			t.Fatal(err)
		}
		pg, ok := project.Resolve(page.ID)
		if !ok {
			t.Fatal("page disappeared")
		}
		pg.Body = "edited externally"
		if err := deps.Repo.Save(project); err != nil {
			t.Fatal(err)
		}

		result, err := NewReconcileCommand(deps, "talks").Execute(ctx)
		if err != nil {
			t.Fatalf("reconcile: %v", err)
		}
		if len(result.Report.Deleted) != 1 || result.Report.Deleted[0].Key != "fig.png" {
			t.Errorf("deleted = %v, want fig.png", result.Report.Deleted)
		}
	})
}

func TestScanOrphansCommand(t *testing.T) {
	deps := newTestDeps(t)
	ctx := context.Background()
	setupProject(t, deps, "talks", `\img{used.png}`)
	for _, key := range []string{"used.png", "stray.png"} {
		if _, err := NewWriteAssetCommand(deps, "talks", "resources", key, []byte("b")).Execute(ctx); err != nil {
			t.Fatal(err)
		}
	}

	result, err := NewScanOrphansCommand(deps, "talks").Execute(ctx)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(result.Orphans) != 1 || result.Orphans[0].Key != "stray.png" {
		t.Errorf("orphans = %v, want only stray.png", result.Orphans)
	}

	// Scanning and repeated reconciles never delete an orphan.
	if _, err := NewReconcileCommand(deps, "talks").Execute(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := NewReadAssetCommand(deps, "talks", "resources", "stray.png").Execute(ctx); err != nil {
		t.Errorf("orphan deleted: %v", err)
	}
}

func TestPendingSyncCommand(t *testing.T) {
	deps := newTestDeps(t)
	deps.Stores.Remote = downRemote{}
	ctx := context.Background()
	setupProject(t, deps, "talks", "")

	project, err := deps.Repo.Load("talks")
	if err != nil {
		t.Fatal(err)
	}
	project.SyncEnabled = true
	if err := deps.Repo.Save(project); err != nil {
		t.Fatal(err)
	}

	t.Run("clean ledger before any degradation", func(t *testing.T) {
		result, err := NewPendingSyncCommand(deps, "talks").Execute(ctx)
		if err != nil {
			t.Fatalf("pending: %v", err)
		}
		if len(result.Records) != 0 {
			t.Errorf("records = %v, want none", result.Records)
		}
	})

	t.Run("degraded write leaves a pending record", func(t *testing.T) {
		wr, err := NewWriteAssetCommand(deps, "talks", "resources", "fig.png", []byte("b")).Execute(ctx)
		if err != nil {
			t.Fatalf("write: %v", err)
		}
		if wr.Result.Warning == "" {
			t.Fatal("expected a degraded write")
		}

		result, err := NewPendingSyncCommand(deps, "talks").Execute(ctx)
		if err != nil {
			t.Fatalf("pending: %v", err)
		}
		if len(result.Records) != 1 || result.Records[0].Key != "fig.png" {
			t.Errorf("records = %v, want fig.png", result.Records)
		}
		if !result.Records[0].Pending || !result.Records[0].LocalPresent {
			t.Errorf("record = %+v", result.Records[0])
		}
	})

	t.Run("enabling sync surfaces local-only assets as divergent", func(t *testing.T) {
		setupProject(t, deps, "notes", "")
		if _, err := NewWriteAssetCommand(deps, "notes", "resources", "local.png", []byte("b")).Execute(ctx); err != nil {
			t.Fatal(err)
		}

		// Sync still off: a local-only record is the expected state.
		result, err := NewPendingSyncCommand(deps, "notes").Execute(ctx)
		if err != nil {
			t.Fatalf("pending: %v", err)
		}
		if len(result.Records) != 0 {
			t.Errorf("records = %v, want none while sync is disabled", result.Records)
		}

		notes, err := deps.Repo.Load("notes")
		if err != nil {
			t.Fatal(err)
		}
		notes.SyncEnabled = true
		if err := deps.Repo.Save(notes); err != nil {
			t.Fatal(err)
		}

		result, err = NewPendingSyncCommand(deps, "notes").Execute(ctx)
		if err != nil {
			t.Fatalf("pending: %v", err)
		}
		if len(result.Records) != 1 || result.Records[0].Key != "local.png" {
			t.Errorf("records = %v, want local.png", result.Records)
		}
		if result.Records[0].Pending {
			t.Error("record should be divergent, not pending")
		}
	})
}

func TestRebuildIndexCommand(t *testing.T) {
	deps := newTestDeps(t)
	ctx := context.Background()
	page := setupProject(t, deps, "talks", `\img{fig.png} [doc](#manual) [bad](page:99#x)`)

	result, err := NewRebuildIndexCommand(deps, "talks").Execute(ctx)
	if err != nil {
		t.Fatalf("rebuild: %v", err)
	}
	if !result.Index.Refs(domain.KindResource, "fig.png").Has(page.ID) {
		t.Error("fig.png not indexed")
	}
	if !result.Index.Refs(domain.KindAttachment, "manual").Has(page.ID) {
		t.Error("manual not indexed")
	}
	if len(result.Index.Dangling) != 1 {
		t.Errorf("dangling = %v", result.Index.Dangling)
	}
	if result.Index.Referenced(domain.KindAttachment, "x") {
		t.Error("dangling link counted as a reference")
	}
}

func TestTransferPageCommand(t *testing.T) {
	ctx := context.Background()

	t.Run("moves page and assets, cleans source", func(t *testing.T) {
		deps := newTestDeps(t)
		page := setupProject(t, deps, "src", `\img{solo.png}`)
		setupProject(t, deps, "dst", "")
		if _, err := NewWriteAssetCommand(deps, "src", "resources", "solo.png", []byte("b")).Execute(ctx); err != nil {
			t.Fatal(err)
		}

		result, err := NewTransferPageCommand(deps, "src", "dst", page.ID).Execute(ctx)
		if err != nil {
			t.Fatalf("transfer: %v", err)
		}
		if len(result.Moved) != 1 || result.Moved[0] != "resources/solo.png" {
			t.Errorf("moved = %v", result.Moved)
		}

		srcProject, err := deps.Repo.Load("src")
		if err != nil {
			t.Fatal(err)
		}
		if _, ok := srcProject.Resolve(page.ID); ok {
			t.Error("page still in source")
		}
		dstProject, err := deps.Repo.Load("dst")
		if err != nil {
			t.Fatal(err)
		}
		if _, ok := dstProject.Resolve(page.ID); !ok {
			t.Error("page missing from destination, identity must survive the move")
		}

		if _, err := NewReadAssetCommand(deps, "dst", "resources", "solo.png").Execute(ctx); err != nil {
			t.Errorf("asset missing from destination: %v", err)
		}
		if _, err := NewReadAssetCommand(deps, "src", "resources", "solo.png").Execute(ctx); !errors.Is(err, application.ErrNotFound) {
			t.Errorf("asset survived in source: %v", err)
		}
	})

	t.Run("shared assets stay in source", func(t *testing.T) {
		deps := newTestDeps(t)
		moved := setupProject(t, deps, "src", `\img{shared.png}`)
		if _, err := NewAddPageCommand(deps, "src", `\img{shared.png}`, "", "").Execute(ctx); err != nil {
			t.Fatal(err)
		}
		setupProject(t, deps, "dst", "")
		if _, err := NewWriteAssetCommand(deps, "src", "resources", "shared.png", []byte("b")).Execute(ctx); err != nil {
			t.Fatal(err)
		}

		if _, err := NewTransferPageCommand(deps, "src", "dst", moved.ID).Execute(ctx); err != nil {
			t.Fatalf("transfer: %v", err)
		}

		if _, err := NewReadAssetCommand(deps, "src", "resources", "shared.png").Execute(ctx); err != nil {
			t.Errorf("shared asset must survive in source: %v", err)
		}
		if _, err := NewReadAssetCommand(deps, "dst", "resources", "shared.png").Execute(ctx); err != nil {
			t.Errorf("shared asset must be copied to destination: %v", err)
		}
	})

	t.Run("colliding key keeps the destination copy and warns", func(t *testing.T) {
		deps := newTestDeps(t)
		page := setupProject(t, deps, "src", `\img{logo.png}`)
		setupProject(t, deps, "dst", "")
		if _, err := NewWriteAssetCommand(deps, "src", "resources", "logo.png", []byte("src bytes")).Execute(ctx); err != nil {
			t.Fatal(err)
		}
		if _, err := NewWriteAssetCommand(deps, "dst", "resources", "logo.png", []byte("dst bytes")).Execute(ctx); err != nil {
			t.Fatal(err)
		}

		result, err := NewTransferPageCommand(deps, "src", "dst", page.ID).Execute(ctx)
		if err != nil {
			t.Fatalf("transfer: %v", err)
		}
		if len(result.Warnings) != 1 || !strings.Contains(result.Warnings[0], "kept the destination copy") {
			t.Errorf("warnings = %v, want a collision warning", result.Warnings)
		}
		if len(result.Moved) != 0 {
			t.Errorf("moved = %v, colliding key must not be copied", result.Moved)
		}

		read, err := NewReadAssetCommand(deps, "dst", "resources", "logo.png").Execute(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if string(read.Data) != "dst bytes" {
			t.Errorf("destination content = %q, want the destination's own bytes", read.Data)
		}
	})

	t.Run("unknown page aborts with both projects untouched", func(t *testing.T) {
		deps := newTestDeps(t)
		setupProject(t, deps, "src", "# intact")
		setupProject(t, deps, "dst", "")

		if _, err := NewTransferPageCommand(deps, "src", "dst", "no-such-page").Execute(ctx); !errors.Is(err, application.ErrPageNotFound) {
			t.Fatalf("err = %v, want ErrPageNotFound", err)
		}

		srcProject, err := deps.Repo.Load("src")
		if err != nil {
			t.Fatal(err)
		}
		found := false
		for _, p := range srcProject.Pages {
			if p.Body == "# intact" {
				found = true
			}
		}
		if !found {
			t.Error("source mutated by a failed transfer")
		}
	})

	t.Run("rejects same project", func(t *testing.T) {
		deps := newTestDeps(t)
		page := setupProject(t, deps, "src", "")

		if _, err := NewTransferPageCommand(deps, "src", "src", page.ID).Execute(ctx); err == nil {
			t.Error("same-project transfer accepted")
		}
	})
}
