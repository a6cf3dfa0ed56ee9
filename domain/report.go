package domain

import "time"

// Verdict is the overall passed/failed determination
type Verdict string

const (
	VerdictPassed Verdict = "passed"
	VerdictFailed Verdict = "failed"
)

// Counts holds per-status counters
type Counts struct {
	Passed    int `json:"passed" yaml:"passed"`
	Failed    int `json:"failed" yaml:"failed"`
	Skipped   int `json:"skipped" yaml:"skipped"`
	Pending   int `json:"pending" yaml:"pending"`
	Undefined int `json:"undefined" yaml:"undefined"`
	Missing   int `json:"missing" yaml:"missing"`
}

// Add increments the counter for status by one
func (c *Counts) Add(status Status) {
	switch status {
	case StatusPassed:
		c.Passed++
	case StatusFailed:
		c.Failed++
	case StatusSkipped:
		c.Skipped++
	case StatusPending:
		c.Pending++
	case StatusUndefined:
		c.Undefined++
	case StatusMissing:
		c.Missing++
	}
}

// Merge adds every counter of other into c
func (c *Counts) Merge(other Counts) {
	c.Passed += other.Passed
	c.Failed += other.Failed
	c.Skipped += other.Skipped
	c.Pending += other.Pending
	c.Undefined += other.Undefined
	c.Missing += other.Missing
}

// Get returns the counter for status
func (c Counts) Get(status Status) int {
	switch status {
	case StatusPassed:
		return c.Passed
	case StatusFailed:
		return c.Failed
	case StatusSkipped:
		return c.Skipped
	case StatusPending:
		return c.Pending
	case StatusUndefined:
		return c.Undefined
	case StatusMissing:
		return c.Missing
	default:
		return 0
	}
}

// Total returns the sum of all counters
func (c Counts) Total() int {
	return c.Passed + c.Failed + c.Skipped + c.Pending + c.Undefined + c.Missing
}

// FailureFlags controls which non-failed step classifications break the build
type FailureFlags struct {
	SkippedFails   bool `json:"skipped_fails_build" yaml:"skipped_fails_build"`
	PendingFails   bool `json:"pending_fails_build" yaml:"pending_fails_build"`
	UndefinedFails bool `json:"undefined_fails_build" yaml:"undefined_fails_build"`
	MissingFails   bool `json:"missing_fails_build" yaml:"missing_fails_build"`
}

// Fails reports whether steps with the given counts break the build
func (f FailureFlags) Fails(steps Counts) bool {
	switch {
	case steps.Failed > 0:
		return true
	case f.SkippedFails && steps.Skipped > 0:
		return true
	case f.PendingFails && steps.Pending > 0:
		return true
	case f.UndefinedFails && steps.Undefined > 0:
		return true
	case f.MissingFails && steps.Missing > 0:
		return true
	}
	return false
}

// Verdict returns the verdict for the given step counts
func (f FailureFlags) Verdict(steps Counts) Verdict {
	if f.Fails(steps) {
		return VerdictFailed
	}
	return VerdictPassed
}

// FeatureStats is the rollup of one feature
type FeatureStats struct {
	Feature   *Feature      `json:"-" yaml:"-"`
	Name      string        `json:"name" yaml:"name"`
	Source    string        `json:"source" yaml:"source"`
	Status    Status        `json:"status" yaml:"status"`
	Scenarios Counts        `json:"scenarios" yaml:"scenarios"`
	Steps     Counts        `json:"steps" yaml:"steps"`
	Duration  time.Duration `json:"duration" yaml:"duration"`
	Verdict   Verdict       `json:"verdict" yaml:"verdict"`
}

// TagRef points at an entity that carries a tag. Scenario is nil when the
// tag is attached to the feature itself.
type TagRef struct {
	Feature  *Feature
	Scenario *Scenario
}

// TagStats is the rollup of every feature and scenario bearing one tag
type TagStats struct {
	Name      string        `json:"name" yaml:"name"`
	Refs      []TagRef      `json:"-" yaml:"-"`
	Scenarios Counts        `json:"scenarios" yaml:"scenarios"`
	Steps     Counts        `json:"steps" yaml:"steps"`
	Duration  time.Duration `json:"duration" yaml:"duration"`
	Verdict   Verdict       `json:"verdict" yaml:"verdict"`
}

// StepDefStats is the rollup of every step matched by one step definition
type StepDefStats struct {
	Location    string        `json:"location" yaml:"location"`
	Occurrences int           `json:"occurrences" yaml:"occurrences"`
	Steps       Counts        `json:"steps" yaml:"steps"`
	Duration    time.Duration `json:"duration" yaml:"duration"`
	MaxDuration time.Duration `json:"max_duration" yaml:"max_duration"`
}

// AverageDuration returns the mean duration per occurrence
func (s StepDefStats) AverageDuration() time.Duration {
	if s.Occurrences == 0 {
		return 0
	}
	return s.Duration / time.Duration(s.Occurrences)
}

// Totals holds run-wide counters
type Totals struct {
	Features  int           `json:"features" yaml:"features"`
	Scenarios Counts        `json:"scenarios" yaml:"scenarios"`
	Steps     Counts        `json:"steps" yaml:"steps"`
	Duration  time.Duration `json:"duration" yaml:"duration"`
}

// Report is the aggregated statistics-and-verdict model of one run.
// It is built once and read-only afterwards.
type Report struct {
	Features []FeatureStats `json:"features" yaml:"features"`
	Tags     []TagStats     `json:"tags" yaml:"tags"`
	StepDefs []StepDefStats `json:"step_definitions" yaml:"step_definitions"`
	Totals   Totals         `json:"totals" yaml:"totals"`
	Flags    FailureFlags   `json:"flags" yaml:"flags"`
	Verdict  Verdict        `json:"verdict" yaml:"verdict"`
}

// Passed reports whether the run verdict is passed
func (r *Report) Passed() bool {
	return r != nil && r.Verdict == VerdictPassed
}

// Tag returns the rollup for the named tag
func (r *Report) Tag(name string) (TagStats, bool) {
	for _, t := range r.Tags {
		if t.Name == name {
			return t, true
		}
	}
	return TagStats{}, false
}
