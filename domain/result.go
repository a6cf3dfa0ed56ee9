package domain

import (
	"fmt"
	"strings"
	"time"
)

// Status represents the outcome of a step
type Status string

const (
	StatusPassed    Status = "passed"
	StatusFailed    Status = "failed"
	StatusSkipped   Status = "skipped"
	StatusPending   Status = "pending"
	StatusUndefined Status = "undefined"
	StatusMissing   Status = "missing"
)

// AllStatuses lists every status from least to most severe
var AllStatuses = []Status{
	StatusPassed,
	StatusSkipped,
	StatusMissing,
	StatusPending,
	StatusUndefined,
	StatusFailed,
}

// Severity returns the rank of s in the worst-status-wins order.
// Unknown statuses rank below passed.
func (s Status) Severity() int {
	switch s {
	case StatusFailed:
		return 5
	case StatusUndefined:
		return 4
	case StatusPending:
		return 3
	case StatusMissing:
		return 2
	case StatusSkipped:
		return 1
	case StatusPassed:
		return 0
	default:
		return -1
	}
}

// IsValid reports whether s is one of the known statuses
func (s Status) IsValid() bool {
	return s.Severity() >= 0
}

// String returns the status name
func (s Status) String() string {
	return string(s)
}

// ParseStatus converts a raw status string into a Status
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToLower(strings.TrimSpace(raw)))
	if !s.IsValid() {
		return "", fmt.Errorf("unknown step status %q", raw)
	}
	return s, nil
}

// Worst returns the more severe of a and b
func Worst(a, b Status) Status {
	if b.Severity() > a.Severity() {
		return b
	}
	return a
}

// Tag is a label attached to a feature or scenario
type Tag struct {
	Name string `json:"name" yaml:"name"`
	Line int    `json:"line,omitempty" yaml:"line,omitempty"`
}

// Step is the smallest executable unit of a scenario
type Step struct {
	Keyword      string        `json:"keyword" yaml:"keyword"`
	Name         string        `json:"name" yaml:"name"`
	Line         int           `json:"line,omitempty" yaml:"line,omitempty"`
	Status       Status        `json:"status" yaml:"status"`
	Duration     time.Duration `json:"duration" yaml:"duration"`
	ErrorMessage string        `json:"error_message,omitempty" yaml:"error_message,omitempty"`
	// Location identifies the step definition the step matched, if any
	Location string `json:"location,omitempty" yaml:"location,omitempty"`
}

// Scenario is a named test case inside a feature
type Scenario struct {
	ID      string `json:"id" yaml:"id"`
	Keyword string `json:"keyword" yaml:"keyword"`
	Name    string `json:"name" yaml:"name"`
	Type    string `json:"type" yaml:"type"`
	Line    int    `json:"line,omitempty" yaml:"line,omitempty"`
	Tags    []Tag  `json:"tags,omitempty" yaml:"tags,omitempty"`
	Steps   []Step `json:"steps" yaml:"steps"`
}

// Status returns the worst status among the scenario's steps.
// A scenario without steps is passed.
func (s *Scenario) Status() Status {
	status := StatusPassed
	for _, step := range s.Steps {
		status = Worst(status, step.Status)
	}
	return status
}

// Duration returns the summed duration of all steps
func (s *Scenario) Duration() time.Duration {
	var d time.Duration
	for _, step := range s.Steps {
		d += step.Duration
	}
	return d
}

// Feature is a named collection of scenarios originating from one source document
type Feature struct {
	ID          string     `json:"id" yaml:"id"`
	URI         string     `json:"uri" yaml:"uri"`
	Keyword     string     `json:"keyword" yaml:"keyword"`
	Name        string     `json:"name" yaml:"name"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty"`
	Line        int        `json:"line,omitempty" yaml:"line,omitempty"`
	Tags        []Tag      `json:"tags,omitempty" yaml:"tags,omitempty"`
	Scenarios   []Scenario `json:"scenarios" yaml:"scenarios"`

	// Source is the identifier of the document the feature was parsed from
	Source string `json:"source" yaml:"source"`
	// SourceName is the base name of Source, assigned once by the report builder
	SourceName string `json:"source_name,omitempty" yaml:"source_name,omitempty"`
}

// Status returns the worst status among the feature's scenarios
func (f *Feature) Status() Status {
	status := StatusPassed
	for i := range f.Scenarios {
		status = Worst(status, f.Scenarios[i].Status())
	}
	return status
}

