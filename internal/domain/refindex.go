package domain

import "sort"

// PageSet is a set of page IDs.
type PageSet map[string]struct{}

// Add inserts a page ID into the set.
func (s PageSet) Add(pageID string) {
	s[pageID] = struct{}{}
}

// Has reports whether the set contains a page ID.
func (s PageSet) Has(pageID string) bool {
	_, ok := s[pageID]
	return ok
}

// Pages returns the member page IDs in sorted order.
func (s PageSet) Pages() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Equal reports whether two sets hold the same page IDs.
func (s PageSet) Equal(other PageSet) bool {
	if len(s) != len(other) {
		return false
	}
	for id := range s {
		if !other.Has(id) {
			return false
		}
	}
	return true
}

// DanglingLink records a navigable link whose page qualifier did not
// resolve. Dangling links are review material, never errors.
type DanglingLink struct {
	PageID string // page containing the link
	Target string // raw link target text
	Reason string
}

// ReferenceIndex maps asset keys to the set of pages referencing
// them. It is derived from project content and is never authoritative:
// any mutation of the project invalidates it and a fresh one is built.
type ReferenceIndex struct {
	Resources   map[string]PageSet
	Attachments map[string]PageSet
	Dangling    []DanglingLink
}

// NewReferenceIndex returns an empty index.
func NewReferenceIndex() *ReferenceIndex {
	return &ReferenceIndex{
		Resources:   make(map[string]PageSet),
		Attachments: make(map[string]PageSet),
	}
}

// byKind returns the map for an asset kind.
func (ix *ReferenceIndex) byKind(kind AssetKind) map[string]PageSet {
	if kind == KindResource {
		return ix.Resources
	}
	return ix.Attachments
}

// Refs returns the reference set for an asset, or nil when the asset
// is not referenced at all.
func (ix *ReferenceIndex) Refs(kind AssetKind, key string) PageSet {
	return ix.byKind(kind)[key]
}

// Referenced reports whether an asset has at least one reference.
func (ix *ReferenceIndex) Referenced(kind AssetKind, key string) bool {
	return len(ix.byKind(kind)[key]) > 0
}

// Keys returns the referenced asset keys of a kind in sorted order.
func (ix *ReferenceIndex) Keys(kind AssetKind) []string {
	m := ix.byKind(kind)
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// add registers a reference from a page to an asset.
func (ix *ReferenceIndex) add(kind AssetKind, key, pageID string) {
	m := ix.byKind(kind)
	set, ok := m[key]
	if !ok {
		set = make(PageSet)
		m[key] = set
	}
	set.Add(pageID)
}

// Equal compares the reference structure of two indexes. Dangling
// link reports are diagnostics and do not participate.
func (ix *ReferenceIndex) Equal(other *ReferenceIndex) bool {
	return equalRefMap(ix.Resources, other.Resources) &&
		equalRefMap(ix.Attachments, other.Attachments)
}

func equalRefMap(a, b map[string]PageSet) bool {
	if len(a) != len(b) {
		return false
	}
	for key, set := range a {
		if !set.Equal(b[key]) {
			return false
		}
	}
	return true
}

// BuildIndex derives the reference index from current project
// content. Pure function: two projects with the same pages in any
// order produce structurally identical indexes, because every entry is
// keyed by page identity and link qualifiers resolve against the
// current page set, never against stored positions.
func BuildIndex(p *Project) *ReferenceIndex {
	ix := NewReferenceIndex()
	if p == nil {
		return ix
	}

	for _, page := range p.Pages {
		for _, key := range scanStructural(page.Body) {
			ix.add(KindResource, key, page.ID)
		}

		texts := []string{page.Body, page.Script, page.Notes}
		texts = append(texts, page.Bib...)
		for _, text := range texts {
			for _, target := range scanLinks(text) {
				ix.registerLink(p, page, target)
			}
		}
	}

	if p.Template != nil {
		// Template snippets belong to no page; their links cannot
		// anchor references but can still dangle.
		for _, text := range []string{p.Template.Header, p.Template.BeforePages, p.Template.Footer} {
			for _, target := range scanLinks(text) {
				ix.checkQualifier(p, "", target)
			}
		}
	}

	return ix
}

// registerLink resolves a navigable link found on a page. The
// fragment names an attachment referenced by the containing page. A
// link whose page qualifier dangles contributes no reference: it is
// reported and otherwise ignored.
func (ix *ReferenceIndex) registerLink(p *Project, page *Page, target LinkTarget) {
	if !ix.checkQualifier(p, page.ID, target) {
		return
	}
	if key := normalizeAttachmentName(target.Fragment); key != "" {
		ix.add(KindAttachment, key, page.ID)
	}
}

// checkQualifier records a dangling-link warning when the link's page
// qualifier does not resolve against the current page set. Returns
// false when the link dangles.
func (ix *ReferenceIndex) checkQualifier(p *Project, fromPageID string, target LinkTarget) bool {
	switch target.Kind {
	case LinkPageNumber:
		if _, ok := p.ResolveByOrder(target.PageNumber - 1); !ok {
			ix.Dangling = append(ix.Dangling, DanglingLink{
				PageID: fromPageID,
				Target: target.Raw,
				Reason: "page number out of range",
			})
			return false
		}
	case LinkPageID:
		if _, ok := p.Resolve(target.PageID); !ok {
			ix.Dangling = append(ix.Dangling, DanglingLink{
				PageID: fromPageID,
				Target: target.Raw,
				Reason: "unknown page id",
			})
			return false
		}
	}
	return true
}
