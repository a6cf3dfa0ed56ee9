package app

import (
	"path/filepath"
	"reflect"
	"testing"

	"github.com/ludo-technologies/cukereport/internal/testutil"
)

func TestFileHelperCollectResultFiles(t *testing.T) {
	tempDir := t.TempDir()
	for _, f := range []string{"a.json", "b.json", "notes.txt", "nested/c.json", "nested/deeper/d.json"} {
		testutil.WriteFile(t, tempDir, f, "[]")
	}

	helper := NewFileHelper()

	files, err := helper.CollectResultFiles([]string{tempDir}, true, []string{"*.json"}, nil)
	if err != nil {
		t.Fatalf("CollectResultFiles failed: %v", err)
	}
	if len(files) != 4 {
		t.Errorf("Expected 4 result files, got %d: %v", len(files), files)
	}

	files, err = helper.CollectResultFiles([]string{tempDir}, false, []string{"*.json"}, nil)
	if err != nil {
		t.Fatalf("CollectResultFiles failed: %v", err)
	}
	want := []string{filepath.Join(tempDir, "a.json"), filepath.Join(tempDir, "b.json")}
	if !reflect.DeepEqual(files, want) {
		t.Errorf("Non-recursive collection: expected %v, got %v", want, files)
	}
}

func TestFileHelperExcludePatterns(t *testing.T) {
	tempDir := t.TempDir()
	for _, f := range []string{"run.json", "run.tmp.json", "archive/old.json", "nested/new.json"} {
		testutil.WriteFile(t, tempDir, f, "[]")
	}

	files, err := NewFileHelper().CollectResultFiles([]string{tempDir}, true, nil, []string{"archive/", "*.tmp.json"})
	if err != nil {
		t.Fatalf("CollectResultFiles failed: %v", err)
	}

	want := []string{filepath.Join(tempDir, "nested", "new.json"), filepath.Join(tempDir, "run.json")}
	if !reflect.DeepEqual(files, want) {
		t.Errorf("Expected %v, got %v", want, files)
	}
}

func TestFileHelperIgnoreFile(t *testing.T) {
	tempDir := t.TempDir()
	testutil.WriteFile(t, tempDir, "keep.json", "[]")
	testutil.WriteFile(t, tempDir, "flaky/retry.json", "[]")
	testutil.WriteFile(t, tempDir, ".cukereportignore", "# retries\nflaky/\n")

	files, err := NewFileHelper().CollectResultFiles([]string{tempDir}, true, []string{"*.json"}, nil)
	if err != nil {
		t.Fatalf("CollectResultFiles failed: %v", err)
	}
	if len(files) != 1 || filepath.Base(files[0]) != "keep.json" {
		t.Errorf("Expected only keep.json, got %v", files)
	}
}

func TestFileHelperExplicitFilesAreKept(t *testing.T) {
	tempDir := t.TempDir()
	path := testutil.WriteFile(t, tempDir, "results.txt", "[]")

	files, err := NewFileHelper().CollectResultFiles([]string{path}, true, []string{"*.json"}, []string{"*.txt"})
	if err != nil {
		t.Fatalf("CollectResultFiles failed: %v", err)
	}
	if len(files) != 1 || files[0] != path {
		t.Errorf("Explicit file should be kept, got %v", files)
	}
}

func TestFileHelperMissingPathIsKept(t *testing.T) {
	tempDir := t.TempDir()
	testutil.WriteFile(t, tempDir, "results/a.json", "[]")
	missing := filepath.Join(tempDir, "absent.json")

	files, err := NewFileHelper().CollectResultFiles([]string{filepath.Join(tempDir, "results"), missing}, true, nil, nil)
	if err != nil {
		t.Fatalf("CollectResultFiles failed: %v", err)
	}
	want := []string{filepath.Join(tempDir, "results", "a.json"), missing}
	if len(files) != len(want) || files[0] != want[0] || files[1] != want[1] {
		t.Errorf("Expected %v, got %v", want, files)
	}
}

func TestFileHelperFileExists(t *testing.T) {
	tempDir := t.TempDir()
	helper := NewFileHelper()

	existingFile := testutil.WriteFile(t, tempDir, "exists.json", "[]")

	exists, err := helper.FileExists(existingFile)
	if err != nil {
		t.Fatalf("FileExists failed: %v", err)
	}
	if !exists {
		t.Error("Expected file to exist")
	}

	exists, err = helper.FileExists(filepath.Join(tempDir, "nonexistent.json"))
	if err != nil {
		t.Fatalf("FileExists failed: %v", err)
	}
	if exists {
		t.Error("Expected file to not exist")
	}

	exists, err = helper.FileExists(tempDir)
	if err != nil {
		t.Fatalf("FileExists failed: %v", err)
	}
	if exists {
		t.Error("Expected directory to not be reported as file")
	}
}

func TestResolveFilePaths(t *testing.T) {
	tempDir := t.TempDir()
	a := testutil.WriteFile(t, tempDir, "a.json", "[]")
	testutil.WriteFile(t, tempDir, "sub/b.json", "[]")
	helper := NewFileHelper()

	files, err := ResolveFilePaths(helper, []string{a}, true, nil, nil)
	if err != nil {
		t.Fatalf("ResolveFilePaths failed: %v", err)
	}
	if !reflect.DeepEqual(files, []string{a}) {
		t.Errorf("Expected files to be returned as given, got %v", files)
	}

	files, err = ResolveFilePaths(helper, []string{tempDir}, true, []string{"*.json"}, nil)
	if err != nil {
		t.Fatalf("ResolveFilePaths failed: %v", err)
	}
	if len(files) != 2 {
		t.Errorf("Expected 2 files, got %v", files)
	}
}
