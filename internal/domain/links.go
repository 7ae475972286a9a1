package domain

import (
	"path"
	"regexp"
	"strconv"
	"strings"
)

// Structural inclusion patterns for LaTeX bodies and markdown images.
var (
	includeGraphicsPattern = regexp.MustCompile(`\\includegraphics(?:\[[^\]]*\])?\{([^}]+)\}`)
	imgMacroPattern        = regexp.MustCompile(`\\img(?:\[[^\]]*\])?\{([^}]+)\}`)
	markdownImagePattern   = regexp.MustCompile(`!\[[^\]]*\]\(([^)]+)\)`)
)

// Bracketed markdown link: [text](target)
var markdownLinkPattern = regexp.MustCompile(`\[[^\]]*\]\(([^)]+)\)`)

// Identity-qualified and page-number link target forms.
var (
	pageNumberTargetPattern = regexp.MustCompile(`^(?:page:|p)([0-9]+)(?:#(.*))?$`)
	pageIDColonPattern      = regexp.MustCompile(`^pageId:([^#]+)(?:#(.*))?$`)
	pageIDQueryPattern      = regexp.MustCompile(`^\?pageId=([^#&]+)(?:#(.*))?$`)
)

// LinkKind classifies a recognized navigable link target.
type LinkKind int

const (
	LinkAnchor LinkKind = iota
	LinkPageNumber
	LinkPageID
)

func (k LinkKind) String() string {
	switch k {
	case LinkAnchor:
		return "anchor"
	case LinkPageNumber:
		return "page-number"
	case LinkPageID:
		return "page-id"
	}
	return "unknown"
}

// LinkTarget is a parsed navigable link target. Fragment names the
// attachment the link points at; PageNumber/PageID qualify which page
// it belongs to (PageNumber is 1-based).
type LinkTarget struct {
	Kind       LinkKind
	PageNumber int
	PageID     string
	Fragment   string
	Raw        string
}

// ParseLinkTarget recognizes the navigable link grammar:
//
//	#title
//	page:N#title   pN#title
//	?pageId=<id>#title   pageId:<id>#title
//
// Anything else is not a navigable target and is treated as plain
// text by the scanner.
func ParseLinkTarget(target string) (LinkTarget, bool) {
	trimmed := strings.TrimSpace(target)
	if trimmed == "" {
		return LinkTarget{}, false
	}

	if strings.HasPrefix(trimmed, "#") {
		return LinkTarget{
			Kind:     LinkAnchor,
			Fragment: trimmed[1:],
			Raw:      trimmed,
		}, true
	}

	if m := pageNumberTargetPattern.FindStringSubmatch(trimmed); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return LinkTarget{}, false
		}
		return LinkTarget{
			Kind:       LinkPageNumber,
			PageNumber: n,
			Fragment:   m[2],
			Raw:        trimmed,
		}, true
	}

	if m := pageIDColonPattern.FindStringSubmatch(trimmed); m != nil {
		return LinkTarget{
			Kind:     LinkPageID,
			PageID:   m[1],
			Fragment: m[2],
			Raw:      trimmed,
		}, true
	}

	if m := pageIDQueryPattern.FindStringSubmatch(trimmed); m != nil {
		return LinkTarget{
			Kind:     LinkPageID,
			PageID:   m[1],
			Fragment: m[2],
			Raw:      trimmed,
		}, true
	}

	return LinkTarget{}, false
}

// NormalizeAssetPath cleans a user-supplied asset path into the
// project-relative form used as an asset key. Separators are unified,
// empty and dot segments dropped, and query/fragment suffixes
// stripped. Returns "" when nothing usable remains.
func NormalizeAssetPath(value string) string {
	cleaned := strings.TrimSpace(value)
	if i := strings.IndexByte(cleaned, '?'); i >= 0 {
		cleaned = cleaned[:i]
	}
	if i := strings.IndexByte(cleaned, '#'); i >= 0 {
		cleaned = cleaned[:i]
	}
	cleaned = strings.ReplaceAll(cleaned, "\\", "/")
	parts := make([]string, 0, 4)
	for _, segment := range strings.Split(cleaned, "/") {
		if segment == "" || segment == "." || segment == ".." {
			continue
		}
		parts = append(parts, segment)
	}
	if len(parts) == 0 {
		return ""
	}
	return path.Join(parts...)
}

// normalizeResourceTarget maps a structural inclusion target to a
// resource key. Bodies may reference either "fig.png" or
// "resources/fig.png"; both resolve to the same key.
func normalizeResourceTarget(value string) string {
	normalized := NormalizeAssetPath(value)
	if normalized == "" {
		return ""
	}
	rest, ok := strings.CutPrefix(normalized, string(KindResource)+"/")
	if ok {
		return rest
	}
	return normalized
}

// normalizeAttachmentName maps a link fragment to an attachment key.
func normalizeAttachmentName(fragment string) string {
	return NormalizeAssetPath(fragment)
}

// scanStructural extracts resource keys structurally embedded in a
// page body. LaTeX inclusion macros and markdown image syntax both
// count; duplicates collapse.
func scanStructural(body string) []string {
	var keys []string
	seen := make(map[string]bool)
	for _, pattern := range []*regexp.Regexp{includeGraphicsPattern, imgMacroPattern, markdownImagePattern} {
		for _, m := range pattern.FindAllStringSubmatch(body, -1) {
			key := normalizeResourceTarget(m[1])
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			keys = append(keys, key)
		}
	}
	return keys
}

// scanLinks extracts the navigable link targets from free-form text.
// Unrecognized targets are skipped, not reported: malformed link
// syntax is plain text.
func scanLinks(text string) []LinkTarget {
	var targets []LinkTarget
	for _, m := range markdownLinkPattern.FindAllStringSubmatch(text, -1) {
		if target, ok := ParseLinkTarget(m[1]); ok {
			targets = append(targets, target)
		}
	}
	return targets
}
