package service

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/ludo-technologies/cukereport/domain"
	"github.com/schollz/progressbar/v3"
)

// StageProgress draws one numbered bar per build stage, e.g.
// "[1] Parsing result files: login.json".
type StageProgress struct {
	out    io.Writer
	mu     sync.Mutex
	stages []*stageBar
}

// NewProgressManager returns bars on an interactive terminal when enabled,
// QuietProgress otherwise
func NewProgressManager(enabled bool) domain.ProgressManager {
	if enabled && IsInteractiveEnvironment() {
		return NewStageProgress(os.Stderr)
	}
	return QuietProgress{}
}

func NewStageProgress(out io.Writer) *StageProgress {
	return &StageProgress{out: out}
}

// StartTask opens the next stage. total is the number of sources or pages
// the stage works through.
func (p *StageProgress) StartTask(description string, total int) domain.TaskProgress {
	p.mu.Lock()
	defer p.mu.Unlock()

	label := fmt.Sprintf("[%d] %s", len(p.stages)+1, description)
	stage := &stageBar{
		label: label,
		bar: progressbar.NewOptions(total,
			progressbar.OptionSetWriter(p.out),
			progressbar.OptionSetDescription(label),
			progressbar.OptionSetWidth(24),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		),
	}
	p.stages = append(p.stages, stage)
	return stage
}

func (p *StageProgress) IsInteractive() bool { return true }

// Close finishes stages left open by a failed build
func (p *StageProgress) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, s := range p.stages {
		s.Complete()
	}
	p.stages = nil
}

type stageBar struct {
	label string
	bar   *progressbar.ProgressBar
}

func (s *stageBar) Increment(n int) { _ = s.bar.Add(n) }

// Describe shows the source or page currently being processed
func (s *stageBar) Describe(item string) {
	s.bar.Describe(s.label + ": " + item)
}

func (s *stageBar) Complete() {
	if !s.bar.IsFinished() {
		_ = s.bar.Finish()
	}
}

// QuietProgress reports nothing. Used for pipes, CI logs and --quiet.
type QuietProgress struct{}

func (QuietProgress) StartTask(string, int) domain.TaskProgress { return quietStage{} }
func (QuietProgress) IsInteractive() bool                       { return false }
func (QuietProgress) Close()                                    {}

type quietStage struct{}

func (quietStage) Increment(int)   {}
func (quietStage) Describe(string) {}
func (quietStage) Complete()       {}
