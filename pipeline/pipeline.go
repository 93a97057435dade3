// Package pipeline sequences the outline-first workflow: an outline runner
// condenses the input texts, then a writer runner expands the outline.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"polycode/content-agent/core"
	"polycode/content-agent/lib"
)

type Stage int

const (
	AwaitingOutline Stage = iota
	AwaitingContent
	Done
)

func (s Stage) String() string {
	switch s {
	case AwaitingOutline:
		return "awaiting_outline"
	case AwaitingContent:
		return "awaiting_content"
	case Done:
		return "done"
	}
	return fmt.Sprintf("stage(%d)", int(s))
}

var ErrWrongStage = errors.New("pipeline is not in the required stage")

// OutlineFirst holds the single in-memory Outline between the two stages.
// It is not safe for concurrent use.
type OutlineFirst struct {
	outliner core.AgentRunner[core.Outline]
	writer   core.AgentRunner[core.OutputText]
	logger   *slog.Logger

	stage   Stage
	outline core.Outline
	output  core.OutputText
	stats   core.Stats
}

func NewOutlineFirst(outliner core.AgentRunner[core.Outline], writer core.AgentRunner[core.OutputText], logger *slog.Logger) *OutlineFirst {
	if logger == nil {
		logger = lib.DiscardLogger()
	}
	return &OutlineFirst{
		outliner: outliner,
		writer:   writer,
		logger:   logger,
		stage:    AwaitingOutline,
	}
}

func (p *OutlineFirst) Stage() Stage {
	return p.stage
}

// Outline returns the outline produced by the first stage.
func (p *OutlineFirst) Outline() (core.Outline, bool) {
	return p.outline, p.stage != AwaitingOutline
}

func (p *OutlineFirst) Output() (core.OutputText, bool) {
	return p.output, p.stage == Done
}

// Stats sums token usage over the successful stages.
func (p *OutlineFirst) Stats() core.Stats {
	return p.stats
}

// CreateOutline runs the outline stage. On failure the pipeline stays in
// AwaitingOutline so the caller can retry with new input.
func (p *OutlineFirst) CreateOutline(ctx context.Context, inputTexts []core.InputText, outlinePrompt string) (core.Outline, error) {
	if p.stage != AwaitingOutline {
		return core.Outline{}, fmt.Errorf("create outline in stage %s: %w", p.stage, ErrWrongStage)
	}
	res, err := p.outliner.Run(ctx, core.FromInputTexts(inputTexts, outlinePrompt))
	if err != nil {
		p.logger.Warn("outline stage failed", "error", err)
		return core.Outline{}, err
	}
	p.outline = res.Output
	p.stats.Add(res.Stats)
	p.stage = AwaitingContent
	p.logger.Info("outline created", "paragraphs", len(res.Output.Paragraphs))
	return res.Output, nil
}

// WriteContent runs the writer stage on the outline of the first stage. On
// failure the pipeline stays in AwaitingContent.
func (p *OutlineFirst) WriteContent(ctx context.Context, contentPrompt string) (core.OutputText, error) {
	if p.stage != AwaitingContent {
		return core.OutputText{}, fmt.Errorf("write content in stage %s: %w", p.stage, ErrWrongStage)
	}
	res, err := p.writer.Run(ctx, core.FromOutline(p.outline, contentPrompt))
	if err != nil {
		p.logger.Warn("content stage failed", "error", err)
		return core.OutputText{}, err
	}
	p.output = res.Output
	p.stats.Add(res.Stats)
	p.stage = Done
	return res.Output, nil
}

// Run drives both stages. The writer is never invoked when the outline
// stage fails.
func (p *OutlineFirst) Run(ctx context.Context, inputTexts []core.InputText, outlinePrompt, contentPrompt string) (core.OutlineFirstResponse, error) {
	outline, err := p.CreateOutline(ctx, inputTexts, outlinePrompt)
	if err != nil {
		return core.OutlineFirstResponse{}, err
	}
	output, err := p.WriteContent(ctx, contentPrompt)
	if err != nil {
		return core.OutlineFirstResponse{}, err
	}
	return core.OutlineFirstResponse{Outline: outline, Output: output}, nil
}
