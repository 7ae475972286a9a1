package domain

import "testing"

func TestParseLinkTarget(t *testing.T) {
	tests := []struct {
		name   string
		target string
		ok     bool
		want   LinkTarget
	}{
		{
			name:   "anchor",
			target: "#appendix",
			ok:     true,
			want:   LinkTarget{Kind: LinkAnchor, Fragment: "appendix"},
		},
		{
			name:   "page number long form",
			target: "page:3#title",
			ok:     true,
			want:   LinkTarget{Kind: LinkPageNumber, PageNumber: 3, Fragment: "title"},
		},
		{
			name:   "page number short form",
			target: "p12#notes",
			ok:     true,
			want:   LinkTarget{Kind: LinkPageNumber, PageNumber: 12, Fragment: "notes"},
		},
		{
			name:   "page number without fragment",
			target: "page:2",
			ok:     true,
			want:   LinkTarget{Kind: LinkPageNumber, PageNumber: 2},
		},
		{
			name:   "page id colon form",
			target: "pageId:abc-123#figure",
			ok:     true,
			want:   LinkTarget{Kind: LinkPageID, PageID: "abc-123", Fragment: "figure"},
		},
		{
			name:   "page id query form",
			target: "?pageId=abc-123#figure",
			ok:     true,
			want:   LinkTarget{Kind: LinkPageID, PageID: "abc-123", Fragment: "figure"},
		},
		{
			name:   "surrounding whitespace trimmed",
			target: "  #title  ",
			ok:     true,
			want:   LinkTarget{Kind: LinkAnchor, Fragment: "title"},
		},
		{name: "url is plain text", target: "https://example.com", ok: false},
		{name: "bare path is plain text", target: "docs/readme.md", ok: false},
		{name: "empty target", target: "", ok: false},
		{name: "page keyword without number", target: "page:#x", ok: false},
		{name: "non-numeric page", target: "p1a#x", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseLinkTarget(tt.target)
			if ok != tt.ok {
				t.Fatalf("ParseLinkTarget(%q) ok = %v, want %v", tt.target, ok, tt.ok)
			}
			if !ok {
				return
			}
			if got.Kind != tt.want.Kind {
				t.Errorf("Kind = %v, want %v", got.Kind, tt.want.Kind)
			}
			if got.PageNumber != tt.want.PageNumber {
				t.Errorf("PageNumber = %d, want %d", got.PageNumber, tt.want.PageNumber)
			}
			if got.PageID != tt.want.PageID {
				t.Errorf("PageID = %q, want %q", got.PageID, tt.want.PageID)
			}
			if got.Fragment != tt.want.Fragment {
				t.Errorf("Fragment = %q, want %q", got.Fragment, tt.want.Fragment)
			}
		})
	}
}

func TestNormalizeAssetPath(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  string
	}{
		{"plain name", "fig.png", "fig.png"},
		{"nested path", "img/fig.png", "img/fig.png"},
		{"backslash separators", `img\fig.png`, "img/fig.png"},
		{"repeated separators", "img//fig.png", "img/fig.png"},
		{"dot segments dropped", "./img/../fig.png", "img/fig.png"},
		{"query stripped", "fig.png?v=2", "fig.png"},
		{"fragment stripped", "fig.png#top", "fig.png"},
		{"leading slash dropped", "/fig.png", "fig.png"},
		{"whitespace trimmed", "  fig.png ", "fig.png"},
		{"nothing left", "../..", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeAssetPath(tt.value); got != tt.want {
				t.Errorf("NormalizeAssetPath(%q) = %q, want %q", tt.value, got, tt.want)
			}
		})
	}
}

func TestScanStructural(t *testing.T) {
	t.Run("finds latex and markdown inclusions", func(t *testing.T) {
		body := `\includegraphics[width=0.5\textwidth]{diagram.png}
some text \img{resources/photo.jpg}
![caption](chart.svg)`

		keys := scanStructural(body)
		want := []string{"diagram.png", "photo.jpg", "chart.svg"}
		if len(keys) != len(want) {
			t.Fatalf("got %d keys %v, want %d", len(keys), keys, len(want))
		}
		for i, k := range want {
			if keys[i] != k {
				t.Errorf("keys[%d] = %q, want %q", i, keys[i], k)
			}
		}
	})

	t.Run("resources prefix and bare name are one key", func(t *testing.T) {
		body := `\img{resources/fig.png} \includegraphics{fig.png}`
		keys := scanStructural(body)
		if len(keys) != 1 || keys[0] != "fig.png" {
			t.Errorf("got %v, want [fig.png]", keys)
		}
	})

	t.Run("duplicates collapse", func(t *testing.T) {
		body := `\img{a.png} \img{a.png}`
		if keys := scanStructural(body); len(keys) != 1 {
			t.Errorf("got %v, want one key", keys)
		}
	})

	t.Run("no inclusions", func(t *testing.T) {
		if keys := scanStructural("plain prose only"); len(keys) != 0 {
			t.Errorf("got %v, want none", keys)
		}
	})
}

func TestScanLinks(t *testing.T) {
	t.Run("recognized targets only", func(t *testing.T) {
		text := `see [the appendix](#appendix), [external](https://example.com),
and [details](page:2#details)`

		targets := scanLinks(text)
		if len(targets) != 2 {
			t.Fatalf("got %d targets %v, want 2", len(targets), targets)
		}
		if targets[0].Kind != LinkAnchor || targets[0].Fragment != "appendix" {
			t.Errorf("first target = %+v", targets[0])
		}
		if targets[1].Kind != LinkPageNumber || targets[1].PageNumber != 2 {
			t.Errorf("second target = %+v", targets[1])
		}
	})

	t.Run("malformed link syntax is plain text", func(t *testing.T) {
		if targets := scanLinks("[unclosed](#x and a bare #fragment"); len(targets) != 0 {
			t.Errorf("got %v, want none", targets)
		}
	})
}
