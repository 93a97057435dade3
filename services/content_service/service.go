package content_service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"polycode/content-agent/config"
	"polycode/content-agent/core"
	"polycode/content-agent/lib"
	"polycode/content-agent/pipeline"
	"polycode/content-agent/prompts"
)

// LLMFactory builds the model backend for a model identifier.
type LLMFactory func(ctx context.Context, model string) (core.LLM, error)

type Options struct {
	Config *config.Config
	NewLLM LLMFactory
	Dialer core.SessionDialer
	Logger *slog.Logger
}

// RunOptions overrides the configured model and tool servers for one call.
type RunOptions struct {
	Model       string
	ToolServers []core.ToolServer
}

// RunOptionsFrom validates per-request overrides.
func RunOptionsFrom(model string, servers []core.ToolServerConfig) (RunOptions, error) {
	opts := RunOptions{Model: strings.TrimSpace(model)}
	if len(servers) > 0 {
		s, err := core.NewToolServers(servers)
		if err != nil {
			return RunOptions{}, err
		}
		opts.ToolServers = s
	}
	return opts, nil
}

// Service runs the content workflows. Runners are built per call so every
// call may use its own model and tool servers.
type Service struct {
	cfg    *config.Config
	newLLM LLMFactory
	dialer core.SessionDialer
	logger *slog.Logger
}

func New(opts Options) (*Service, error) {
	if opts.Config == nil {
		return nil, core.NewConfigError("content service requires a configuration", nil)
	}
	if opts.NewLLM == nil {
		return nil, core.NewConfigError("content service requires a model factory", nil)
	}
	logger := opts.Logger
	if logger == nil {
		logger = lib.DiscardLogger()
	}
	return &Service{
		cfg:    opts.Config,
		newLLM: opts.NewLLM,
		dialer: opts.Dialer,
		logger: logger,
	}, nil
}

func (s *Service) Config() *config.Config {
	return s.cfg
}

func newRunner[T any](ctx context.Context, s *Service, name, systemPrompt string, servers []core.ToolServer, inbuilt []string, model string) (*core.Runner[T], error) {
	if model == "" {
		model = s.cfg.Model
	}
	llm, err := s.newLLM(ctx, model)
	if err != nil {
		return nil, err
	}
	return core.NewRunner[T](core.RunnerConfig{
		Name:          name,
		LLM:           llm,
		SystemPrompt:  systemPrompt,
		ToolServers:   servers,
		InbuiltTools:  inbuilt,
		Dialer:        s.dialer,
		MaxToolRounds: s.cfg.MaxToolRounds,
		Logger:        s.logger,
	})
}

func (s *Service) toolServers(opts RunOptions) []core.ToolServer {
	if opts.ToolServers != nil {
		return opts.ToolServers
	}
	return s.cfg.ToolServers
}

// webTools picks the tool servers for web workflows: explicit servers, then
// the hosted Firecrawl server, then the inbuilt web tools.
func (s *Service) webTools(opts RunOptions) ([]core.ToolServer, []string) {
	if servers := s.toolServers(opts); len(servers) > 0 {
		return servers, nil
	}
	if fc, ok := s.cfg.FirecrawlServer(); ok {
		return []core.ToolServer{fc}, nil
	}
	return nil, []string{core.ToolSearchWeb, core.ToolScrapePage, core.ToolCurrentDate}
}

// FromFile repurposes the input texts into a new text.
func (s *Service) FromFile(ctx context.Context, inputTexts []core.InputText, userPrompt string, opts RunOptions) (core.OutputText, error) {
	runner, err := newRunner[core.OutputText](ctx, s, "writer", prompts.FromFile(), s.toolServers(opts), nil, opts.Model)
	if err != nil {
		return core.OutputText{}, err
	}
	res, err := runner.Run(ctx, core.FromInputTexts(inputTexts, userPrompt))
	if err != nil {
		return core.OutputText{}, err
	}
	return res.Output, nil
}

// CreateOutlineOnly runs the outline stage alone.
func (s *Service) CreateOutlineOnly(ctx context.Context, inputTexts []core.InputText, userPrompt string, opts RunOptions) (core.Outline, error) {
	runner, err := newRunner[core.Outline](ctx, s, "outliner", prompts.Outline(), s.toolServers(opts), nil, opts.Model)
	if err != nil {
		return core.Outline{}, err
	}
	res, err := runner.Run(ctx, core.FromInputTexts(inputTexts, userPrompt))
	if err != nil {
		return core.Outline{}, err
	}
	return res.Output, nil
}

// NewOutlineFirst builds a fresh two-stage pipeline for interactive use.
func (s *Service) NewOutlineFirst(ctx context.Context, opts RunOptions) (*pipeline.OutlineFirst, error) {
	servers := s.toolServers(opts)
	outliner, err := newRunner[core.Outline](ctx, s, "outliner", prompts.Outline(), servers, nil, opts.Model)
	if err != nil {
		return nil, err
	}
	writer, err := newRunner[core.OutputText](ctx, s, "outline-writer", prompts.FromFileWithOutline(), servers, nil, opts.Model)
	if err != nil {
		return nil, err
	}
	return pipeline.NewOutlineFirst(outliner, writer, s.logger), nil
}

// FromFileWithOutline creates an outline and writes the text from it.
func (s *Service) FromFileWithOutline(ctx context.Context, inputTexts []core.InputText, outlinePrompt, contentPrompt string, opts RunOptions) (core.OutlineFirstResponse, error) {
	p, err := s.NewOutlineFirst(ctx, opts)
	if err != nil {
		return core.OutlineFirstResponse{}, err
	}
	return p.Run(ctx, inputTexts, outlinePrompt, contentPrompt)
}

// FromWeb searches the web for searchTerms and writes a text from the
// results.
func (s *Service) FromWeb(ctx context.Context, searchTerms, userPrompt string, opts RunOptions) (core.OutputText, error) {
	servers, inbuilt := s.webTools(opts)
	runner, err := newRunner[core.OutputText](ctx, s, "web-writer", prompts.FromWeb(), servers, inbuilt, opts.Model)
	if err != nil {
		return core.OutputText{}, err
	}
	res, err := runner.Run(ctx, core.RawPrompt(prompts.FromWebRequest(searchTerms, userPrompt)))
	if err != nil {
		return core.OutputText{}, err
	}
	return res.Output, nil
}

type ReviewResult struct {
	Title string `json:"title"`
	Dir   string `json:"dir,omitempty"`
	Count int    `json:"count"`
	Error string `json:"error,omitempty"`
}

// WebReviews collects reviews for each product title and writes them to
// <outDir>/<safe title>/review_<n>.json. Items are processed one after
// another with one runner; a failing item is logged and skipped.
func (s *Service) WebReviews(ctx context.Context, titles []string, outDir string, delay time.Duration, opts RunOptions) ([]ReviewResult, error) {
	if len(titles) == 0 {
		return nil, ErrNoTitles
	}
	servers, inbuilt := s.webTools(opts)
	runner, err := newRunner[[]core.InputText](ctx, s, "web-reviews", prompts.WebReviews(), servers, inbuilt, opts.Model)
	if err != nil {
		return nil, err
	}

	logger := s.logger.With("batch", uuid.NewString())
	logger.Info("web reviews started", "products", len(titles))

	results := make([]ReviewResult, 0, len(titles))
	for i, title := range titles {
		if i > 0 && delay > 0 {
			select {
			case <-ctx.Done():
				return results, ctx.Err()
			case <-time.After(delay):
			}
		}
		if err := ctx.Err(); err != nil {
			return results, err
		}

		result := ReviewResult{Title: title}
		res, err := runner.Run(ctx, core.RawPrompt(prompts.WebReviewsRequest(title)))
		if err == nil {
			result.Dir = filepath.Join(outDir, SafeTitle(title))
			err = writeReviews(result.Dir, res.Output)
		}
		if err != nil {
			logger.Error("product failed", "product", title, "error", err)
			result.Error = err.Error()
		} else {
			result.Count = len(res.Output)
			logger.Info("reviews saved", "product", title, "count", result.Count, "dir", result.Dir)
		}
		results = append(results, result)
	}
	return results, nil
}

func writeReviews(dir string, reviews []core.InputText) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for i, review := range reviews {
		b, err := json.MarshalIndent(review, "", "  ")
		if err != nil {
			return err
		}
		path := filepath.Join(dir, fmt.Sprintf("review_%d.json", i+1))
		if err := os.WriteFile(path, b, 0o644); err != nil {
			return err
		}
	}
	return nil
}

// SafeTitle turns a product title into a directory name.
func SafeTitle(title string) string {
	return strings.NewReplacer(" ", "_", "/", "_").Replace(strings.TrimSpace(title))
}

// ReadTitles splits a product list into titles, one per non-blank line.
func ReadTitles(data string) []string {
	var titles []string
	for _, line := range strings.Split(data, "\n") {
		if t := strings.TrimSpace(line); t != "" {
			titles = append(titles, t)
		}
	}
	return titles
}

var ErrNoTitles = errors.New("no product titles")
