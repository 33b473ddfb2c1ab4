package resource

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ffarham/web-server/pkg/config"
	"github.com/ffarham/web-server/pkg/response"
	"github.com/rs/zerolog"
)

func writePages(t *testing.T, pages map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range pages {
		path := filepath.Join(root, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("Failed to create directory: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
	}
	return root
}

func TestResolve(t *testing.T) {
	root := writePages(t, map[string]string{
		"index.html":        "<h1>Hi</h1>",
		"about.html":        "<html>\n<body>\r\nabout\n</body>\n</html>\n",
		"docs/guide.html":   "guide",
		"pagenotfound.html": "<p>404</p>",
	})
	resolver := NewResolver(root, "index", "pagenotfound.html", zerolog.Nop())

	testCases := []struct {
		name       string
		uri        string
		wantStatus response.Status
		wantBody   string
	}{
		{"root maps to index", "/", response.StatusOK, "<h1>Hi</h1>"},
		{"explicit index", "/index", response.StatusOK, "<h1>Hi</h1>"},
		{"line breaks removed", "/about", response.StatusOK, "<html><body>about</body></html>"},
		{"nested page", "/docs/guide", response.StatusOK, "guide"},
		{"missing page", "/missing", response.StatusRedirected, "<p>404</p>"},
		{"extension not doubled", "/index.html", response.StatusRedirected, "<p>404</p>"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			lookup, err := resolver.Resolve(tc.uri)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if lookup.Status != tc.wantStatus {
				t.Errorf("Expected status %v, got %v", tc.wantStatus, lookup.Status)
			}
			if lookup.Content != tc.wantBody {
				t.Errorf("Expected body %q, got %q", tc.wantBody, lookup.Content)
			}
		})
	}
}

func TestResolveRereadsFromDisk(t *testing.T) {
	root := writePages(t, map[string]string{
		"index.html":        "v1",
		"pagenotfound.html": "nf",
	})
	resolver := NewResolver(root, "index", "pagenotfound.html", zerolog.Nop())

	if lookup, _ := resolver.Resolve("/"); lookup == nil || lookup.Content != "v1" {
		t.Fatalf("Expected first version, got %+v", lookup)
	}
	if err := os.WriteFile(filepath.Join(root, "index.html"), []byte("v2"), 0644); err != nil {
		t.Fatalf("Failed to rewrite index: %v", err)
	}
	if lookup, _ := resolver.Resolve("/"); lookup == nil || lookup.Content != "v2" {
		t.Errorf("Expected updated content, got %+v", lookup)
	}
}

func TestResolveFallbackUnavailable(t *testing.T) {
	root := writePages(t, map[string]string{"index.html": "home"})
	resolver := NewResolver(root, "index", "pagenotfound.html", zerolog.Nop())

	lookup, err := resolver.Resolve("/missing")
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("Expected ErrUnavailable, got %v", err)
	}
	if lookup != nil {
		t.Errorf("Expected no lookup, got %+v", lookup)
	}

	// Existing pages are still served
	if _, err := resolver.Resolve("/"); err != nil {
		t.Errorf("Unexpected error for existing page: %v", err)
	}
}

func TestResolveDirectory(t *testing.T) {
	root := writePages(t, map[string]string{"pagenotfound.html": "nf"})
	if err := os.Mkdir(filepath.Join(root, "dir.html"), 0755); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}
	resolver := NewResolver(root, "index", "pagenotfound.html", zerolog.Nop())

	if _, err := resolver.Resolve("/dir"); !errors.Is(err, ErrUnavailable) {
		t.Errorf("Expected ErrUnavailable for a directory, got %v", err)
	}
}

func TestNewFromConfig(t *testing.T) {
	cfg := config.LoadDefault()
	cfg.Resources.Root = "/srv/www"

	resolver := NewFromConfig(cfg, zerolog.Nop())
	if got := resolver.Path("/about"); got != filepath.Join("/srv/www", "about.html") {
		t.Errorf("Unexpected path: %s", got)
	}
}
