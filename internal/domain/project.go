package domain

import (
	"github.com/google/uuid"
)

// AssetKind distinguishes the two classes of content-bearing files a
// project owns. The string value doubles as the per-project directory
// name and as the kind segment of remote object keys.
type AssetKind string

const (
	KindResource   AssetKind = "resources"
	KindAttachment AssetKind = "attachments"
)

// Kinds lists all asset kinds in a stable order.
var Kinds = []AssetKind{KindResource, KindAttachment}

// ParseAssetKind maps a user-supplied string to an AssetKind.
func ParseAssetKind(s string) (AssetKind, bool) {
	switch AssetKind(s) {
	case KindResource:
		return KindResource, true
	case KindAttachment:
		return KindAttachment, true
	}
	return "", false
}

// Page is a single slide page. ID is assigned once at creation and is
// the only valid join key for asset references; a page's position in
// Project.Pages is display order and may change freely.
type Page struct {
	ID        string   `yaml:"pageId"`
	Body      string   `yaml:"content"`
	Script    string   `yaml:"script,omitempty"`
	Notes     string   `yaml:"notes,omitempty"`
	Bib       []string `yaml:"bib,omitempty"`
	Resources []string `yaml:"resources,omitempty"`
}

// Template holds the LaTeX wrapper snippets surrounding page bodies.
// Owned by the editing subsystem; carried through load/save untouched
// except for link scanning.
type Template struct {
	Header      string `yaml:"header,omitempty"`
	BeforePages string `yaml:"beforePages,omitempty"`
	Footer      string `yaml:"footer,omitempty"`
}

// Project is the in-memory form of a project descriptor.
type Project struct {
	ID          string    `yaml:"project"`
	SyncEnabled bool      `yaml:"ossSyncEnabled,omitempty"`
	Template    *Template `yaml:"template,omitempty"`
	Pages       []*Page   `yaml:"pages"`
}

// NewPageID returns a fresh opaque page identifier. IDs are never
// derived from page position and never reused.
func NewPageID() string {
	return uuid.NewString()
}

// NewPage creates an empty page with a freshly assigned identity.
func NewPage() *Page {
	return &Page{ID: NewPageID()}
}

// Resolve looks a page up by identity. Reference-tracking callers must
// use this lookup exclusively.
func (p *Project) Resolve(pageID string) (*Page, bool) {
	for _, pg := range p.Pages {
		if pg.ID == pageID {
			return pg, true
		}
	}
	return nil, false
}

// ResolveByOrder looks a page up by zero-based display position. Only
// display-layer callers should use this.
func (p *Project) ResolveByOrder(orderIndex int) (*Page, bool) {
	if orderIndex < 0 || orderIndex >= len(p.Pages) {
		return nil, false
	}
	return p.Pages[orderIndex], true
}

// OrderOf returns the current display position of a page, or -1 when
// the page is not part of the project.
func (p *Project) OrderOf(pageID string) int {
	for i, pg := range p.Pages {
		if pg.ID == pageID {
			return i
		}
	}
	return -1
}

// RemovePage detaches a page by identity and reports whether it was
// present. The page keeps its ID so it can be re-attached elsewhere.
func (p *Project) RemovePage(pageID string) (*Page, bool) {
	for i, pg := range p.Pages {
		if pg.ID == pageID {
			p.Pages = append(p.Pages[:i], p.Pages[i+1:]...)
			return pg, true
		}
	}
	return nil, false
}

// Reorder rearranges pages to match the given sequence of page IDs.
// The sequence must be a permutation of the current page set.
func (p *Project) Reorder(pageIDs []string) bool {
	if len(pageIDs) != len(p.Pages) {
		return false
	}
	reordered := make([]*Page, 0, len(p.Pages))
	seen := make(map[string]bool, len(pageIDs))
	for _, id := range pageIDs {
		if seen[id] {
			return false
		}
		seen[id] = true
		pg, ok := p.Resolve(id)
		if !ok {
			return false
		}
		reordered = append(reordered, pg)
	}
	p.Pages = reordered
	return true
}
