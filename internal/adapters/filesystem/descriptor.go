// Package filesystem persists project descriptors as project.yaml
// files under a projects root, one directory per project with
// attachments/ and resources/ subdirectories alongside.
package filesystem

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"deckvault/internal/application"
	"deckvault/internal/domain"
	"deckvault/internal/ports"
)

const descriptorFile = "project.yaml"

// Repository implements ports.DescriptorRepository on the local
// filesystem.
type Repository struct {
	root string
}

var _ ports.DescriptorRepository = (*Repository)(nil)

// NewRepository creates a repository rooted at the given projects
// directory.
func NewRepository(root string) *Repository {
	if strings.HasPrefix(root, "~") {
		home, _ := os.UserHomeDir()
		root = filepath.Join(home, root[1:])
	}
	return &Repository{root: root}
}

// Root returns the projects root directory.
func (r *Repository) Root() string {
	return r.root
}

func (r *Repository) projectDir(projectID string) string {
	return filepath.Join(r.root, projectID)
}

// List returns the IDs of all projects under the root, sorted.
func (r *Repository) List() ([]string, error) {
	entries, err := os.ReadDir(r.root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read projects root: %w", err)
	}

	var ids []string
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		ids = append(ids, entry.Name())
	}
	sort.Strings(ids)
	return ids, nil
}

// Ensure creates the project's directory layout and an empty
// descriptor when missing.
func (r *Repository) Ensure(projectID string) error {
	if err := application.ValidateProjectName(projectID); err != nil {
		return err
	}
	dir := r.projectDir(projectID)
	for _, kind := range domain.Kinds {
		if err := os.MkdirAll(filepath.Join(dir, string(kind)), 0755); err != nil {
			return fmt.Errorf("ensure project %s: %w", projectID, err)
		}
	}
	descriptor := filepath.Join(dir, descriptorFile)
	if _, err := os.Stat(descriptor); errors.Is(err, fs.ErrNotExist) {
		if err := os.WriteFile(descriptor, nil, 0644); err != nil {
			return fmt.Errorf("ensure project %s: %w", projectID, err)
		}
	}
	return nil
}

// rawProject tolerates the legacy descriptor shapes: pages may be
// plain strings, and old descriptors carry no page IDs at all.
type rawProject struct {
	ID          string           `yaml:"project"`
	SyncEnabled bool             `yaml:"ossSyncEnabled"`
	Template    *domain.Template `yaml:"template"`
	Pages       []yaml.Node      `yaml:"pages"`
}

// Load reads and canonicalizes a project descriptor. Pages missing an
// identity are assigned one and the migration is written back before
// returning, so identity survives every later load.
func (r *Repository) Load(projectID string) (*domain.Project, error) {
	if err := application.ValidateProjectName(projectID); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(r.projectDir(projectID), descriptorFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", projectID, application.ErrProjectNotFound)
		}
		return nil, fmt.Errorf("load %s: %w", projectID, err)
	}

	var raw rawProject
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parse %s descriptor: %w", projectID, err)
		}
	}

	project := &domain.Project{
		ID:          projectID,
		SyncEnabled: raw.SyncEnabled,
		Template:    raw.Template,
	}

	migrated := false
	for i := range raw.Pages {
		page, pageMigrated, err := canonicalizePage(&raw.Pages[i])
		if err != nil {
			return nil, fmt.Errorf("parse %s page %d: %w", projectID, i+1, err)
		}
		migrated = migrated || pageMigrated
		project.Pages = append(project.Pages, page)
	}

	if len(project.Pages) == 0 {
		project.Pages = []*domain.Page{domain.NewPage()}
		migrated = true
	}

	if migrated {
		if err := r.Save(project); err != nil {
			return nil, fmt.Errorf("persist %s migration: %w", projectID, err)
		}
	}
	return project, nil
}

// canonicalizePage converts one raw page node into the structured
// form, assigning identity where the descriptor predates it.
func canonicalizePage(node *yaml.Node) (*domain.Page, bool, error) {
	var page domain.Page

	switch node.Kind {
	case yaml.ScalarNode:
		// legacy: a page was just its body text
		page.Body = node.Value
	default:
		if err := node.Decode(&page); err != nil {
			return nil, false, err
		}
	}

	migrated := false
	if page.ID == "" {
		page.ID = domain.NewPageID()
		migrated = true
	}
	page.Resources = dedupeResources(page.Resources)
	return &page, migrated, nil
}

// dedupeResources normalizes a declared resource list, dropping
// duplicates while preserving order.
func dedupeResources(resources []string) []string {
	if len(resources) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(resources))
	var cleaned []string
	for _, res := range resources {
		normalized := domain.NormalizeAssetPath(res)
		if normalized == "" || seen[normalized] {
			continue
		}
		seen[normalized] = true
		cleaned = append(cleaned, normalized)
	}
	return cleaned
}

// Save validates and atomically writes a descriptor. The emitted YAML
// is re-parsed before anything touches disk, so a marshalling problem
// can never corrupt the stored descriptor.
func (r *Repository) Save(p *domain.Project) error {
	if err := application.ValidateProjectName(p.ID); err != nil {
		return err
	}
	for _, page := range p.Pages {
		page.Resources = dedupeResources(page.Resources)
	}

	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode %s descriptor: %w", p.ID, err)
	}
	var check rawProject
	if err := yaml.Unmarshal(data, &check); err != nil {
		return fmt.Errorf("verify %s descriptor: %w", p.ID, err)
	}

	if err := r.Ensure(p.ID); err != nil {
		return err
	}
	return writeFileAtomic(filepath.Join(r.projectDir(p.ID), descriptorFile), data)
}

func writeFileAtomic(dst string, data []byte) error {
	dir := filepath.Dir(dst)
	tmp, err := os.CreateTemp(dir, ".descriptor-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, dst); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
