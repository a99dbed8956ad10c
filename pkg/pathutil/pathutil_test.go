package pathutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWithin(t *testing.T) {
	tests := []struct {
		root, path string
		want       bool
	}{
		{"/repo", "/repo", true},
		{"/repo", "/repo/README.md", true},
		{"/repo", "/repo/docs/../README.md", true},
		{"/repo", "/repository/README.md", false},
		{"/repo", "/README.md", false},
		{"/repo/docs", "/repo/README.md", false},
	}
	for _, tt := range tests {
		if got := Within(tt.root, tt.path); got != tt.want {
			t.Errorf("Within(%q, %q) = %v, want %v", tt.root, tt.path, got, tt.want)
		}
	}
}

func TestResolveAndRelSlash(t *testing.T) {
	root := t.TempDir()
	docs := filepath.Join(root, "docs")
	if err := os.Mkdir(docs, 0755); err != nil {
		t.Fatal(err)
	}

	abs, err := Resolve(docs, "README.md")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	rel, err := RelSlash(root, abs)
	if err != nil || rel != "docs/README.md" {
		t.Errorf("RelSlash() = %q, %v; want docs/README.md", rel, err)
	}

	outside, err := Resolve(root, "../elsewhere.md")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := RelSlash(docs, outside); err == nil {
		t.Error("RelSlash() expected error for a path outside the root")
	}
}
