// Package assets stages the static resources referenced by generated pages.
package assets

import (
	"embed"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/ludo-technologies/cukereport/domain"
	log "github.com/sirupsen/logrus"
)

//go:embed all:bundles
var bundleFS embed.FS

var logger = log.WithField("package", "assets")

// Bundle names understood by Stage. A bundle name is also its path relative
// to the output directory.
const (
	BundleTheme       = "themes/blue"
	BundleCharts      = "charts/js"
	BundleFlashCharts = "charts/flash"
)

// DefaultBundles returns the bundles every report needs, plus the flash
// chart bundle when flashCharts is set.
func DefaultBundles(flashCharts bool) []string {
	bundles := []string{BundleTheme, BundleCharts}
	if flashCharts {
		bundles = append(bundles, BundleFlashCharts)
	}
	return bundles
}

// Stager copies bundles from a read-only file system into an output directory
type Stager struct {
	source fs.FS
}

// NewStager creates a stager over the embedded bundles
func NewStager() *Stager {
	sub, err := fs.Sub(bundleFS, "bundles")
	if err != nil {
		panic(fmt.Sprintf("embedded bundles: %v", err))
	}
	return &Stager{source: sub}
}

// NewStagerFS creates a stager reading bundles from source
func NewStagerFS(source fs.FS) *Stager {
	return &Stager{source: source}
}

// Stage copies each named bundle under outputDir. Existing files are
// overwritten, so staging twice leaves the same tree.
func (s *Stager) Stage(outputDir string, bundles ...string) error {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return domain.NewOutputError("failed to create output directory", err)
	}

	for _, bundle := range bundles {
		info, err := fs.Stat(s.source, bundle)
		if err != nil {
			return domain.NewStagingError(bundle, err)
		}
		if !info.IsDir() {
			return domain.NewStagingError(bundle, fmt.Errorf("not a directory"))
		}

		count, err := s.copyTree(bundle, outputDir)
		if err != nil {
			return domain.NewStagingError(bundle, err)
		}
		logger.WithFields(log.Fields{
			"bundle": bundle,
			"files":  count,
		}).Debug("Staged asset bundle")
	}
	return nil
}

func (s *Stager) copyTree(root, outputDir string) (int, error) {
	count := 0
	err := fs.WalkDir(s.source, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		target := filepath.Join(outputDir, filepath.FromSlash(p))
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		if err := s.copyFile(p, target); err != nil {
			return fmt.Errorf("copy %s: %w", path.Base(p), err)
		}
		count++
		return nil
	})
	return count, err
}

func (s *Stager) copyFile(src, target string) error {
	in, err := s.source.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(target)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
