package git

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// initRepo creates a scratch repository with a configured identity and an
// initial commit on branch "main".
func initRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	commands := [][]string{
		{"init", "-b", "main"},
		{"config", "user.name", "Test User"},
		{"config", "user.email", "test@example.com"},
	}
	for _, args := range commands {
		runGit(t, dir, args...)
	}

	writeFile(t, dir, "README.md", "scratch repo\n")
	runGit(t, dir, "add", "-A")
	runGit(t, dir, "commit", "-m", "initial commit")
	return dir
}

func runGit(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("git %v failed: %v\n%s", args, err, out)
	}
	return strings.TrimSpace(string(out))
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create dir for %s: %v", name, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
}

func TestNew(t *testing.T) {
	ctx := context.Background()
	dir := initRepo(t)

	g, err := New(ctx, dir)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	// Temp dirs may sit behind symlinks; compare resolved paths.
	wantRoot, _ := filepath.EvalSymlinks(dir)
	gotRoot, _ := filepath.EvalSymlinks(g.RepoPath())
	if gotRoot != wantRoot {
		t.Errorf("Expected repo root %s, got %s", wantRoot, gotRoot)
	}

	t.Run("NotARepository", func(t *testing.T) {
		if _, err := New(ctx, t.TempDir()); err == nil {
			t.Error("Expected error for non-repository directory")
		}
	})
}

func TestBranchAndRefs(t *testing.T) {
	ctx := context.Background()
	dir := initRepo(t)
	g, err := New(ctx, dir)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	t.Run("CurrentBranch", func(t *testing.T) {
		branch, err := g.CurrentBranch(ctx)
		if err != nil {
			t.Fatalf("CurrentBranch failed: %v", err)
		}
		if branch != "main" {
			t.Errorf("Expected branch main, got %s", branch)
		}
	})

	t.Run("RefExists", func(t *testing.T) {
		if !g.RefExists(ctx, "main") {
			t.Error("Expected main to exist")
		}
		if g.RefExists(ctx, "no-such-branch") {
			t.Error("Expected no-such-branch to not exist")
		}
	})
}

func TestMergeBaseAndDiffs(t *testing.T) {
	ctx := context.Background()
	dir := initRepo(t)
	g, err := New(ctx, dir)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	baseHash := runGit(t, dir, "rev-parse", "HEAD")

	// Branch off and change files in two subtrees.
	runGit(t, dir, "checkout", "-b", "feature")
	writeFile(t, dir, "utils/src/lib.rs", "pub fn helper() {}\n")
	writeFile(t, dir, "domain/src/lib.rs", "pub struct Bitcoin;\n")
	runGit(t, dir, "add", "-A")
	runGit(t, dir, "commit", "-m", "add utils and domain")

	t.Run("MergeBase", func(t *testing.T) {
		mb, err := g.MergeBase(ctx, "main", "HEAD")
		if err != nil {
			t.Fatalf("MergeBase failed: %v", err)
		}
		if mb != baseHash {
			t.Errorf("Expected merge-base %s, got %s", baseHash, mb)
		}
	})

	t.Run("ChangedFilesScoped", func(t *testing.T) {
		files, err := g.ChangedFiles(ctx, baseHash, "utils")
		if err != nil {
			t.Fatalf("ChangedFiles failed: %v", err)
		}
		if len(files) != 1 || files[0] != "utils/src/lib.rs" {
			t.Errorf("Expected [utils/src/lib.rs], got %v", files)
		}
	})

	t.Run("ChangedFilesIncludesWorkingTree", func(t *testing.T) {
		writeFile(t, dir, "utils/src/extra.rs", "pub fn extra() {}\n")
		runGit(t, dir, "add", "utils/src/extra.rs")

		files, err := g.ChangedFiles(ctx, baseHash, "utils")
		if err != nil {
			t.Fatalf("ChangedFiles failed: %v", err)
		}
		if len(files) != 2 {
			t.Errorf("Expected 2 changed files, got %v", files)
		}
		runGit(t, dir, "commit", "-m", "add extra")
	})

	t.Run("ChangedFilesEmptyScope", func(t *testing.T) {
		files, err := g.ChangedFiles(ctx, baseHash, "shared")
		if err != nil {
			t.Fatalf("ChangedFiles failed: %v", err)
		}
		if len(files) != 0 {
			t.Errorf("Expected no changed files under shared, got %v", files)
		}
	})
}

func TestHistoryInspection(t *testing.T) {
	ctx := context.Background()
	dir := initRepo(t)
	g, err := New(ctx, dir)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	baseHash := runGit(t, dir, "rev-parse", "HEAD")

	runGit(t, dir, "checkout", "-b", "feature")
	writeFile(t, dir, "utils/Cargo.toml", "[package]\nname = \"utils\"\nversion = \"1.0.0\"\n")
	writeFile(t, dir, "utils/src/lib.rs", "pub fn helper() {}\n")
	runGit(t, dir, "add", "-A")
	runGit(t, dir, "commit", "-m", "add utils crate")

	writeFile(t, dir, "utils/Cargo.toml", "[package]\nname = \"utils\"\nversion = \"2.0.0\"\n")
	runGit(t, dir, "add", "-A")
	runGit(t, dir, "commit", "-m", "bump utils to 2.0.0")

	t.Run("CommitsTouching", func(t *testing.T) {
		hashes, err := g.CommitsTouching(ctx, baseHash, "HEAD", "utils/Cargo.toml")
		if err != nil {
			t.Fatalf("CommitsTouching failed: %v", err)
		}
		if len(hashes) != 2 {
			t.Fatalf("Expected 2 commits touching manifest, got %d", len(hashes))
		}
	})

	t.Run("CommitFiles", func(t *testing.T) {
		hashes, err := g.CommitsTouching(ctx, baseHash, "HEAD", "utils/Cargo.toml")
		if err != nil {
			t.Fatalf("CommitsTouching failed: %v", err)
		}

		// Most recent commit touched only the manifest.
		files, err := g.CommitFiles(ctx, hashes[0])
		if err != nil {
			t.Fatalf("CommitFiles failed: %v", err)
		}
		if len(files) != 1 || files[0] != "utils/Cargo.toml" {
			t.Errorf("Expected isolated manifest commit, got %v", files)
		}

		// The older commit touched the manifest and a source file.
		files, err = g.CommitFiles(ctx, hashes[1])
		if err != nil {
			t.Fatalf("CommitFiles failed: %v", err)
		}
		if len(files) != 2 {
			t.Errorf("Expected 2 files in crate commit, got %v", files)
		}
	})

	t.Run("CommitSubject", func(t *testing.T) {
		hashes, err := g.CommitsTouching(ctx, baseHash, "HEAD", "utils/Cargo.toml")
		if err != nil {
			t.Fatalf("CommitsTouching failed: %v", err)
		}
		subject, err := g.CommitSubject(ctx, hashes[0])
		if err != nil {
			t.Fatalf("CommitSubject failed: %v", err)
		}
		if subject != "bump utils to 2.0.0" {
			t.Errorf("Unexpected subject: %s", subject)
		}
	})

	t.Run("ShowFile", func(t *testing.T) {
		content, err := g.ShowFile(ctx, "HEAD~1", "utils/Cargo.toml")
		if err != nil {
			t.Fatalf("ShowFile failed: %v", err)
		}
		if !strings.Contains(string(content), "1.0.0") {
			t.Errorf("Expected historical version 1.0.0, got: %s", content)
		}

		if _, err := g.ShowFile(ctx, "HEAD", "no/such/file.toml"); err == nil {
			t.Error("Expected error for missing file at ref")
		}
	})
}

func TestAddAndCommit(t *testing.T) {
	ctx := context.Background()
	dir := initRepo(t)
	g, err := New(ctx, dir)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	writeFile(t, dir, "utils/Cargo.toml", "[package]\nname = \"utils\"\nversion = \"0.1.0\"\n")
	if err := g.Add(ctx, "utils/Cargo.toml"); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	hash, err := g.Commit(ctx, "chore(release): bump versions")
	if err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
	if len(hash) != 40 {
		t.Errorf("Expected 40-char commit hash, got %q", hash)
	}

	t.Run("EmptyMessageRejected", func(t *testing.T) {
		if _, err := g.Commit(ctx, ""); err == nil {
			t.Error("Expected error for empty commit message")
		}
	})

	t.Run("AddNothingIsNoop", func(t *testing.T) {
		if err := g.Add(ctx); err != nil {
			t.Errorf("Add with no paths should be a no-op, got: %v", err)
		}
	})
}
