package filesystem

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"deckvault/internal/application"
	"deckvault/internal/domain"
)

func writeDescriptor(t *testing.T, repo *Repository, projectID, content string) {
	t.Helper()
	dir := filepath.Join(repo.Root(), projectID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "project.yaml"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestEnsure(t *testing.T) {
	repo := NewRepository(t.TempDir())

	if err := repo.Ensure("talks"); err != nil {
		t.Fatalf("Ensure: %v", err)
	}

	for _, sub := range []string{"resources", "attachments"} {
		if fi, err := os.Stat(filepath.Join(repo.Root(), "talks", sub)); err != nil || !fi.IsDir() {
			t.Errorf("missing %s directory: %v", sub, err)
		}
	}
	if _, err := os.Stat(filepath.Join(repo.Root(), "talks", "project.yaml")); err != nil {
		t.Errorf("missing descriptor: %v", err)
	}

	t.Run("rejects unsafe names", func(t *testing.T) {
		for _, name := range []string{"", "..", "a/b", ".hidden"} {
			if err := repo.Ensure(name); err == nil {
				t.Errorf("Ensure(%q) accepted an unsafe name", name)
			}
		}
	})
}

func TestList(t *testing.T) {
	repo := NewRepository(t.TempDir())

	t.Run("missing root lists nothing", func(t *testing.T) {
		empty := NewRepository(filepath.Join(t.TempDir(), "never-created"))
		ids, err := empty.List()
		if err != nil || len(ids) != 0 {
			t.Errorf("List = %v, %v", ids, err)
		}
	})

	for _, id := range []string{"zeta", "alpha"} {
		if err := repo.Ensure(id); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.MkdirAll(filepath.Join(repo.Root(), ".git"), 0755); err != nil {
		t.Fatal(err)
	}

	ids, err := repo.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(ids) != 2 || ids[0] != "alpha" || ids[1] != "zeta" {
		t.Errorf("ids = %v, want sorted [alpha zeta] without dot dirs", ids)
	}
}

func TestLoadSave(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		repo := NewRepository(t.TempDir())

		p := &domain.Project{
			ID:          "talks",
			SyncEnabled: true,
			Template:    &domain.Template{Header: `\documentclass{beamer}`},
			Pages: []*domain.Page{
				{ID: "page-a", Body: "# Intro", Script: "hello", Bib: []string{"ref1"}},
				{ID: "page-b", Body: `\img{fig.png}`, Resources: []string{"fig.png"}},
			},
		}
		if err := repo.Save(p); err != nil {
			t.Fatalf("Save: %v", err)
		}

		loaded, err := repo.Load("talks")
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if loaded.ID != "talks" || !loaded.SyncEnabled {
			t.Errorf("loaded = %+v", loaded)
		}
		if loaded.Template == nil || loaded.Template.Header != `\documentclass{beamer}` {
			t.Errorf("template = %+v", loaded.Template)
		}
		if len(loaded.Pages) != 2 {
			t.Fatalf("pages = %v", loaded.Pages)
		}
		if loaded.Pages[0].ID != "page-a" || loaded.Pages[0].Script != "hello" {
			t.Errorf("page 0 = %+v", loaded.Pages[0])
		}
		if loaded.Pages[1].Resources[0] != "fig.png" {
			t.Errorf("page 1 resources = %v", loaded.Pages[1].Resources)
		}
	})

	t.Run("missing project", func(t *testing.T) {
		repo := NewRepository(t.TempDir())
		if _, err := repo.Load("nope"); !errors.Is(err, application.ErrProjectNotFound) {
			t.Errorf("err = %v, want ErrProjectNotFound", err)
		}
	})

	t.Run("empty descriptor gets a default page", func(t *testing.T) {
		repo := NewRepository(t.TempDir())
		if err := repo.Ensure("talks"); err != nil {
			t.Fatal(err)
		}

		p, err := repo.Load("talks")
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if len(p.Pages) != 1 || p.Pages[0].ID == "" {
			t.Errorf("pages = %v, want one page with identity", p.Pages)
		}
	})
}

func TestLoadLegacyDescriptors(t *testing.T) {
	t.Run("scalar pages become bodies with fresh identity", func(t *testing.T) {
		repo := NewRepository(t.TempDir())
		writeDescriptor(t, repo, "talks", `project: talks
pages:
  - "# First slide"
  - "# Second slide"
`)

		p, err := repo.Load("talks")
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if len(p.Pages) != 2 {
			t.Fatalf("pages = %v", p.Pages)
		}
		if p.Pages[0].Body != "# First slide" || p.Pages[1].Body != "# Second slide" {
			t.Errorf("bodies = %q, %q", p.Pages[0].Body, p.Pages[1].Body)
		}
		if p.Pages[0].ID == "" || p.Pages[1].ID == "" || p.Pages[0].ID == p.Pages[1].ID {
			t.Errorf("ids = %q, %q, want distinct fresh identities", p.Pages[0].ID, p.Pages[1].ID)
		}
	})

	t.Run("migration is persisted", func(t *testing.T) {
		repo := NewRepository(t.TempDir())
		writeDescriptor(t, repo, "talks", `project: talks
pages:
  - content: "# Slide"
`)

		first, err := repo.Load("talks")
		if err != nil {
			t.Fatal(err)
		}
		second, err := repo.Load("talks")
		if err != nil {
			t.Fatal(err)
		}
		if first.Pages[0].ID != second.Pages[0].ID {
			t.Errorf("identity changed across loads: %q then %q", first.Pages[0].ID, second.Pages[0].ID)
		}

		data, err := os.ReadFile(filepath.Join(repo.Root(), "talks", "project.yaml"))
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(string(data), "pageId:") {
			t.Error("migrated descriptor must carry page IDs on disk")
		}
	})

	t.Run("pages with ids are not rewritten", func(t *testing.T) {
		repo := NewRepository(t.TempDir())
		content := `project: talks
pages:
  - pageId: page-a
    content: "# Slide"
`
		writeDescriptor(t, repo, "talks", content)

		p, err := repo.Load("talks")
		if err != nil {
			t.Fatal(err)
		}
		if p.Pages[0].ID != "page-a" {
			t.Errorf("id = %q, want page-a preserved", p.Pages[0].ID)
		}

		data, err := os.ReadFile(filepath.Join(repo.Root(), "talks", "project.yaml"))
		if err != nil {
			t.Fatal(err)
		}
		if string(data) != content {
			t.Error("descriptor without migrations must stay byte-identical")
		}
	})

	t.Run("declared resources deduped on load", func(t *testing.T) {
		repo := NewRepository(t.TempDir())
		writeDescriptor(t, repo, "talks", `project: talks
pages:
  - pageId: page-a
    content: "x"
    resources:
      - fig.png
      - ./fig.png
      - other.png
`)

		p, err := repo.Load("talks")
		if err != nil {
			t.Fatal(err)
		}
		res := p.Pages[0].Resources
		if len(res) != 2 || res[0] != "fig.png" || res[1] != "other.png" {
			t.Errorf("resources = %v", res)
		}
	})
}

func TestSnapshots(t *testing.T) {
	t.Run("missing snapshot is empty", func(t *testing.T) {
		repo := NewRepository(t.TempDir())
		ix, err := repo.LoadSnapshot("talks")
		if err != nil {
			t.Fatalf("LoadSnapshot: %v", err)
		}
		if len(ix.Keys(domain.KindResource)) != 0 {
			t.Errorf("keys = %v", ix.Keys(domain.KindResource))
		}
	})

	t.Run("round trip preserves references", func(t *testing.T) {
		repo := NewRepository(t.TempDir())
		if err := repo.Ensure("talks"); err != nil {
			t.Fatal(err)
		}

		p := &domain.Project{ID: "talks", Pages: []*domain.Page{
			{ID: "page-a", Body: `\img{fig.png} [x](#doc)`},
		}}
		ix := domain.BuildIndex(p)
		if err := repo.SaveSnapshot("talks", ix); err != nil {
			t.Fatalf("SaveSnapshot: %v", err)
		}

		loaded, err := repo.LoadSnapshot("talks")
		if err != nil {
			t.Fatalf("LoadSnapshot: %v", err)
		}
		if !loaded.Equal(ix) {
			t.Error("snapshot round trip changed the index")
		}
	})

	t.Run("corrupt snapshot is discarded", func(t *testing.T) {
		repo := NewRepository(t.TempDir())
		if err := repo.Ensure("talks"); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(repo.Root(), "talks", ".refindex.json"), []byte("{not json"), 0644); err != nil {
			t.Fatal(err)
		}

		ix, err := repo.LoadSnapshot("talks")
		if err != nil {
			t.Fatalf("corrupt snapshot must not error: %v", err)
		}
		if len(ix.Keys(domain.KindResource)) != 0 || len(ix.Keys(domain.KindAttachment)) != 0 {
			t.Error("corrupt snapshot must load as empty")
		}
	})
}
