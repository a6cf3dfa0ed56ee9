// Package aggregate builds the statistics-and-verdict model of a run from
// parsed features.
package aggregate

import (
	"sort"
	"time"

	"github.com/ludo-technologies/cukereport/domain"
)

// Build walks every feature, scenario and step once and returns the
// aggregated report. It performs no I/O and does not modify its inputs.
func Build(features []*domain.Feature, flags domain.FailureFlags) *domain.Report {
	b := newBuilder(flags)
	for _, f := range features {
		b.addFeature(f)
	}
	return b.report()
}

type builder struct {
	flags    domain.FailureFlags
	features []domain.FeatureStats
	tags     map[string]*domain.TagStats
	stepDefs map[string]*domain.StepDefStats
	totals   domain.Totals
}

func newBuilder(flags domain.FailureFlags) *builder {
	return &builder{
		flags:    flags,
		tags:     make(map[string]*domain.TagStats),
		stepDefs: make(map[string]*domain.StepDefStats),
	}
}

func (b *builder) addFeature(f *domain.Feature) {
	fs := domain.FeatureStats{
		Feature: f,
		Name:    f.Name,
		Source:  f.Source,
		Status:  domain.StatusPassed,
	}

	for i := range f.Scenarios {
		sc := &f.Scenarios[i]
		steps, status, duration := b.addScenario(sc)

		fs.Scenarios.Add(status)
		fs.Steps.Merge(steps)
		fs.Duration += duration
		fs.Status = domain.Worst(fs.Status, status)

		var scenarios domain.Counts
		scenarios.Add(status)
		for _, tag := range sc.Tags {
			b.addToTag(tag.Name, domain.TagRef{Feature: f, Scenario: sc}, scenarios, steps, duration)
		}
	}
	fs.Verdict = b.flags.Verdict(fs.Steps)

	for _, tag := range f.Tags {
		b.addToTag(tag.Name, domain.TagRef{Feature: f}, fs.Scenarios, fs.Steps, fs.Duration)
	}

	b.totals.Features++
	b.totals.Scenarios.Merge(fs.Scenarios)
	b.totals.Steps.Merge(fs.Steps)
	b.totals.Duration += fs.Duration
	b.features = append(b.features, fs)
}

// addScenario returns the scenario's step counts, its worst status and its duration
func (b *builder) addScenario(sc *domain.Scenario) (domain.Counts, domain.Status, time.Duration) {
	var steps domain.Counts
	var duration time.Duration
	status := domain.StatusPassed

	for _, step := range sc.Steps {
		steps.Add(step.Status)
		status = domain.Worst(status, step.Status)
		duration += step.Duration
		b.addToStepDef(step)
	}
	return steps, status, duration
}

func (b *builder) addToStepDef(step domain.Step) {
	if step.Location == "" {
		return
	}
	sd, ok := b.stepDefs[step.Location]
	if !ok {
		sd = &domain.StepDefStats{Location: step.Location}
		b.stepDefs[step.Location] = sd
	}
	sd.Occurrences++
	sd.Steps.Add(step.Status)
	sd.Duration += step.Duration
	if step.Duration > sd.MaxDuration {
		sd.MaxDuration = step.Duration
	}
}

// addToTag adds one tagged entity's counts into the tag bucket. An entity
// with several tags lands in several buckets.
func (b *builder) addToTag(name string, ref domain.TagRef, scenarios, steps domain.Counts, duration time.Duration) {
	ts, ok := b.tags[name]
	if !ok {
		ts = &domain.TagStats{Name: name}
		b.tags[name] = ts
	}
	ts.Refs = append(ts.Refs, ref)
	ts.Scenarios.Merge(scenarios)
	ts.Steps.Merge(steps)
	ts.Duration += duration
}

func (b *builder) report() *domain.Report {
	r := &domain.Report{
		Features: b.features,
		Tags:     make([]domain.TagStats, 0, len(b.tags)),
		StepDefs: make([]domain.StepDefStats, 0, len(b.stepDefs)),
		Totals:   b.totals,
		Flags:    b.flags,
		Verdict:  b.flags.Verdict(b.totals.Steps),
	}
	if r.Features == nil {
		r.Features = []domain.FeatureStats{}
	}

	for _, ts := range b.tags {
		ts.Verdict = b.flags.Verdict(ts.Steps)
		r.Tags = append(r.Tags, *ts)
	}
	sort.Slice(r.Tags, func(i, j int) bool { return r.Tags[i].Name < r.Tags[j].Name })

	for _, sd := range b.stepDefs {
		r.StepDefs = append(r.StepDefs, *sd)
	}
	sort.Slice(r.StepDefs, func(i, j int) bool { return r.StepDefs[i].Location < r.StepDefs[j].Location })

	return r
}

// GroupBySource groups features by their source identifier, preserving the
// order in which sources and features first appear.
func GroupBySource(features []*domain.Feature) ([]string, map[string][]*domain.Feature) {
	sources := make([]string, 0)
	bySource := make(map[string][]*domain.Feature)
	for _, f := range features {
		if _, seen := bySource[f.Source]; !seen {
			sources = append(sources, f.Source)
		}
		bySource[f.Source] = append(bySource[f.Source], f)
	}
	return sources, bySource
}
