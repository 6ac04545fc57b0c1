package workspace

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func newTestGuard(t *testing.T) *Guard {
	t.Helper()
	guard, err := NewGuard(t.TempDir())
	if err != nil {
		t.Fatalf("NewGuard failed: %v", err)
	}
	return guard
}

func TestNewGuard(t *testing.T) {
	tests := []struct {
		name    string
		dir     string
		wantErr bool
	}{
		{name: "valid existing directory", dir: t.TempDir()},
		{name: "current directory", dir: "."},
		{name: "empty directory", dir: "", wantErr: true},
		{name: "non-existent directory", dir: filepath.Join(t.TempDir(), "missing"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			guard, err := NewGuard(tt.dir)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewGuard() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && !filepath.IsAbs(guard.Root()) {
				t.Errorf("Root() = %q, want absolute path", guard.Root())
			}
		})
	}
}

func TestGuard_Resolve(t *testing.T) {
	guard := newTestGuard(t)
	root := guard.Root()
	if err := os.MkdirAll(filepath.Join(root, "sub"), 0755); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		path    string
		want    string
		outside bool
	}{
		{name: "relative file", path: "a.txt", want: filepath.Join(root, "a.txt")},
		{name: "nested new file", path: "sub/new/b.txt", want: filepath.Join(root, "sub", "new", "b.txt")},
		{name: "dot", path: ".", want: root},
		{name: "absolute inside", path: filepath.Join(root, "sub"), want: filepath.Join(root, "sub")},
		{name: "traversal", path: "../escape.txt", outside: true},
		{name: "sneaky traversal", path: "sub/../../escape.txt", outside: true},
		{name: "absolute outside", path: "/etc/passwd", outside: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := guard.Resolve(tt.path)
			if tt.outside {
				if !errors.Is(err, ErrOutsideWorkspace) {
					t.Fatalf("Resolve(%q) error = %v, want ErrOutsideWorkspace", tt.path, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve(%q) failed: %v", tt.path, err)
			}
			if got != tt.want {
				t.Errorf("Resolve(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}

	if _, err := guard.Resolve("  "); err == nil {
		t.Error("expected error for blank path")
	}
}

func TestGuard_ResolveSymlinkEscape(t *testing.T) {
	guard := newTestGuard(t)
	outside := t.TempDir()
	link := filepath.Join(guard.Root(), "link")
	if err := os.Symlink(outside, link); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	if _, err := guard.Resolve("link/file.txt"); !errors.Is(err, ErrOutsideWorkspace) {
		t.Errorf("expected symlink escape to be rejected, got %v", err)
	}
}

func TestGuard_Allow(t *testing.T) {
	guard := newTestGuard(t)
	extra := filepath.Join(t.TempDir(), "screenshots")

	target := filepath.Join(extra, "shot.png")
	if _, err := guard.Resolve(target); err == nil {
		t.Fatal("expected path outside root to be rejected before Allow")
	}

	if err := guard.Allow(extra); err != nil {
		t.Fatalf("Allow failed: %v", err)
	}
	if err := guard.Allow(extra); err != nil {
		t.Fatalf("second Allow failed: %v", err)
	}
	if got := len(guard.Allowed()); got != 1 {
		t.Errorf("Allowed() has %d entries, want 1", got)
	}

	resolved, err := guard.Resolve(target)
	if err != nil {
		t.Fatalf("Resolve after Allow failed: %v", err)
	}
	if guard.Rel(resolved) != resolved {
		t.Errorf("Rel of allowed path should stay absolute, got %q", guard.Rel(resolved))
	}
	if guard.ShouldIgnore(resolved) {
		t.Error("allowed directory paths are never ignored")
	}

	if err := guard.Allow(""); err == nil {
		t.Error("expected error for empty directory")
	}
}

func TestGuard_RelAndShouldIgnore(t *testing.T) {
	guard := newTestGuard(t)
	root := guard.Root()
	if err := os.MkdirAll(filepath.Join(root, "node_modules", "pkg"), 0755); err != nil {
		t.Fatal(err)
	}

	if got := guard.Rel(filepath.Join(root, "src", "main.go")); got != filepath.Join("src", "main.go") {
		t.Errorf("Rel() = %q", got)
	}
	if !guard.ShouldIgnore(filepath.Join(root, "node_modules", "pkg", "index.js")) {
		t.Error("node_modules contents should be ignored")
	}
	if guard.ShouldIgnore(filepath.Join(root, "src", "main.go")) {
		t.Error("regular source should not be ignored")
	}
	if guard.ShouldIgnore(root) {
		t.Error("root itself is never ignored")
	}
}
