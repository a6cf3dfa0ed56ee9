package service

import (
	"errors"
	"os"

	"github.com/ludo-technologies/cukereport/domain"
	"github.com/ludo-technologies/cukereport/internal/constants"
)

// ErrorPage writes the page left behind by a failed build. It takes the
// place of the entry page and does not depend on staged assets.
type ErrorPage struct{}

// NewErrorPage creates an error page writer
func NewErrorPage() *ErrorPage {
	return &ErrorPage{}
}

// WriteErrorPage renders failure into outputDir/feature-overview.html
func (p *ErrorPage) WriteErrorPage(outputDir string, meta domain.BuildMetadata, failure error) error {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return domain.NewOutputError("failed to create output directory", err)
	}

	data := newPageData(domain.PageContext{Metadata: meta, OutputDir: outputDir}, "Report generation failed")
	data.Failure = describeFailure(failure)
	return renderPage(outputDir, constants.FeatureOverviewPage, "error.html.tmpl", data)
}

func describeFailure(failure error) *failureView {
	view := &failureView{Code: domain.ErrorCode(failure)}
	if failure == nil {
		view.Message = "unknown failure"
		return view
	}

	var de domain.DomainError
	if errors.As(failure, &de) {
		view.Message = de.Message
	} else {
		view.Message = failure.Error()
	}

	chain := domain.CauseChain(failure)
	if len(chain) > 1 {
		view.Causes = chain[1:]
	}

	var pe *domain.PanicError
	if errors.As(failure, &pe) {
		view.Stack = pe.StackTrace()
	}
	return view
}
