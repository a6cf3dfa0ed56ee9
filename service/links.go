package service

import (
	"path/filepath"
	"strconv"
	"strings"
	"unicode"

	"github.com/ludo-technologies/cukereport/domain"
	"github.com/ludo-technologies/cukereport/internal/constants"
)

// LinkBuilder renders hrefs between report pages
type LinkBuilder struct {
	prefix   string
	host     bool
	project  string
	build    string
	tagPages map[string]string
}

// NewLinkBuilder creates a link builder for the given run
func NewLinkBuilder(meta domain.BuildMetadata) LinkBuilder {
	prefix := meta.URLPrefix
	if prefix == "" {
		prefix = domain.DefaultURLPrefix
	}
	return LinkBuilder{
		prefix:  prefix,
		host:    meta.HostEnabled,
		project: meta.BuildProject,
		build:   meta.BuildNumber,
	}
}

// Page returns the href of a page.
// With host integration: prefix + "job/" + project + "/" + build + "/cucumber-html-reports/" + page.
func (l LinkBuilder) Page(page string) string {
	if l.host {
		return l.prefix + "job/" + l.project + "/" + l.build + "/" + constants.HostReportDir + "/" + page
	}
	return l.prefix + page
}

// FeatureOverview returns the href of the entry page
func (l LinkBuilder) FeatureOverview() string {
	return l.Page(constants.FeatureOverviewPage)
}

// TagOverview returns the href of the tag overview page
func (l LinkBuilder) TagOverview() string {
	return l.Page(constants.TagOverviewPage)
}

// StepOverview returns the href of the step overview page
func (l LinkBuilder) StepOverview() string {
	return l.Page(constants.StepOverviewPage)
}

// WithTagPages returns a copy of l that links tags to the given page names
func (l LinkBuilder) WithTagPages(names map[string]string) LinkBuilder {
	l.tagPages = names
	return l
}

// Tag returns the href of a tag page
func (l LinkBuilder) Tag(name string) string {
	if page, ok := l.tagPages[name]; ok {
		return l.Page(page)
	}
	return l.Page(TagPageName(name))
}

// TagPageName returns the file name of a tag's page
func TagPageName(tag string) string {
	base := slug(strings.TrimPrefix(tag, "@"))
	if base == "" {
		base = "tag"
	}
	return constants.TagPagePrefix + base + constants.PageExtension
}

// TagPageNames assigns every tag a unique page file name. Tags whose names
// slug to the same text, such as @Smoke and @smoke, get a numeric suffix in
// input order.
func TagPageNames(tags []domain.TagStats) map[string]string {
	names := make(map[string]string, len(tags))
	used := make(map[string]bool, len(tags))

	for _, ts := range tags {
		if _, done := names[ts.Name]; done {
			continue
		}
		name := TagPageName(ts.Name)
		base := strings.TrimSuffix(name, constants.PageExtension)
		for i := 2; used[name]; i++ {
			name = base + "-" + strconv.Itoa(i) + constants.PageExtension
		}
		used[name] = true
		names[ts.Name] = name
	}
	return names
}

// FeaturePageNames assigns every feature a unique page file name. In
// parallel mode the source file base name is part of the name, so features
// with the same name from different runs do not collide. Later collisions
// get a numeric suffix in input order.
func FeaturePageNames(features []*domain.Feature, parallel bool) map[*domain.Feature]string {
	names := make(map[*domain.Feature]string, len(features))
	used := make(map[string]bool, len(features))

	for _, f := range features {
		base := slug(f.Name)
		if base == "" {
			base = "feature"
		}
		if parallel {
			source := f.SourceName
			if source == "" {
				source = filepath.Base(f.Source)
			}
			source = strings.TrimSuffix(source, filepath.Ext(source))
			if s := slug(source); s != "" {
				base = s + "-" + base
			}
		}

		name := constants.FeaturePagePrefix + base + constants.PageExtension
		for i := 2; used[name]; i++ {
			name = constants.FeaturePagePrefix + base + "-" + strconv.Itoa(i) + constants.PageExtension
		}
		used[name] = true
		names[f] = name
	}
	return names
}

// slug lowercases s and replaces every run of characters other than letters
// and digits with a single dash
func slug(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
