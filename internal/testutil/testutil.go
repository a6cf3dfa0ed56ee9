// Package testutil provides helper functions for testing cukereport components
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ludo-technologies/cukereport/domain"
)

// LoginFeatureJSON is a result document with one feature ("Login") holding
// one passing scenario and one scenario with a failing step.
const LoginFeatureJSON = `[
  {
    "uri": "features/login.feature",
    "id": "login",
    "keyword": "Feature",
    "name": "Login",
    "line": 1,
    "tags": [{"name": "@auth", "line": 1}],
    "elements": [
      {
        "id": "login;valid-credentials",
        "keyword": "Scenario",
        "name": "Valid credentials",
        "type": "scenario",
        "line": 4,
        "tags": [{"name": "@smoke", "line": 3}],
        "steps": [
          {"keyword": "Given ", "name": "a registered user", "line": 5,
           "result": {"status": "passed", "duration": 1000000},
           "match": {"location": "LoginSteps.registeredUser()"}},
          {"keyword": "Then ", "name": "the dashboard is shown", "line": 6,
           "result": {"status": "passed", "duration": 2000000},
           "match": {"location": "LoginSteps.dashboardShown()"}}
        ]
      },
      {
        "id": "login;wrong-password",
        "keyword": "Scenario",
        "name": "Wrong password",
        "type": "scenario",
        "line": 9,
        "steps": [
          {"keyword": "Given ", "name": "a registered user", "line": 10,
           "result": {"status": "passed", "duration": 3000000},
           "match": {"location": "LoginSteps.registeredUser()"}},
          {"keyword": "Then ", "name": "an error is shown", "line": 11,
           "result": {"status": "failed", "duration": 4000000, "error_message": "expected error banner"},
           "match": {"location": "LoginSteps.errorShown()"}}
        ]
      }
    ]
  }
]`

// WriteFile writes content to name inside dir and returns the full path
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("Failed to create directory for %s: %v", name, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return path
}

// Steps builds steps with the given statuses
func Steps(statuses ...domain.Status) []domain.Step {
	steps := make([]domain.Step, 0, len(statuses))
	for i, s := range statuses {
		steps = append(steps, domain.Step{
			Keyword: "Given ",
			Name:    "step",
			Line:    i + 1,
			Status:  s,
		})
	}
	return steps
}

// Scenario builds a scenario with the given tags and step statuses
func Scenario(name string, tags []string, statuses ...domain.Status) domain.Scenario {
	return domain.Scenario{
		ID:      name,
		Keyword: "Scenario",
		Name:    name,
		Type:    "scenario",
		Tags:    Tags(tags...),
		Steps:   Steps(statuses...),
	}
}

// Feature builds a feature with the given tags and scenarios
func Feature(name string, tags []string, scenarios ...domain.Scenario) *domain.Feature {
	return &domain.Feature{
		ID:        name,
		URI:       "features/" + name + ".feature",
		Keyword:   "Feature",
		Name:      name,
		Tags:      Tags(tags...),
		Scenarios: scenarios,
		Source:    "results/" + name + ".json",
	}
}

// Tags builds tags from names
func Tags(names ...string) []domain.Tag {
	if len(names) == 0 {
		return nil
	}
	tags := make([]domain.Tag, 0, len(names))
	for _, n := range names {
		tags = append(tags, domain.Tag{Name: n})
	}
	return tags
}

// AssertFileExists fails the test if path does not exist
func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err != nil {
		t.Errorf("Expected %s to exist: %v", path, err)
	}
}

// ListFiles returns every regular file under root, relative to root and slash separated
func ListFiles(t *testing.T, root string) []string {
	t.Helper()
	var files []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		t.Fatalf("Failed to list %s: %v", root, err)
	}
	return files
}
