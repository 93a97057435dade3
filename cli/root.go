// Package cli is the command-line surface: interactive workflow loops, the
// batch review command, the HTTP server and the stdio tool server.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"polycode/content-agent/config"
	"polycode/content-agent/core"
	"polycode/content-agent/lib"
	"polycode/content-agent/render"
	"polycode/content-agent/services/content_service"
)

// App carries the collaborators of the command tree.
type App struct {
	Config *config.Config
	NewLLM content_service.LLMFactory
	Dialer core.SessionDialer
	In     io.Reader
	Out    io.Writer
	Err    io.Writer
	Now    func() time.Time

	flags   rootFlags
	logger  *slog.Logger
	service *content_service.Service
	format  render.Format
}

type rootFlags struct {
	model           string
	toolServers     string
	toolServersFile string
	writeToFile     bool
	outputDir       string
	format          string
	logLevel        string
}

func NewRootCommand(app *App) *cobra.Command {
	if app.In == nil {
		app.In = os.Stdin
	}
	if app.Out == nil {
		app.Out = os.Stdout
	}
	if app.Err == nil {
		app.Err = os.Stderr
	}
	if app.Now == nil {
		app.Now = time.Now
	}

	root := &cobra.Command{
		Use:           "content-agent",
		Short:         "Repurpose texts with language model agents",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.setup()
		},
	}

	f := root.PersistentFlags()
	f.StringVar(&app.flags.model, "model", "", "model identifier, e.g. openai:gpt-4o-mini or google-gla:gemini-2.0-flash")
	f.StringVar(&app.flags.toolServers, "tool-servers", "", "tool server descriptor object or list as JSON")
	f.StringVar(&app.flags.toolServersFile, "tool-servers-file", "", "file with tool server descriptors (.json, .yaml, .yml)")
	f.BoolVar(&app.flags.writeToFile, "write-to-file", false, "write the result to the output directory instead of printing it")
	f.StringVar(&app.flags.outputDir, "output-dir", "", "output directory")
	f.StringVar(&app.flags.format, "format", string(render.FormatMarkdown), "output file format: md or html")
	f.StringVar(&app.flags.logLevel, "log-level", "", "log level: debug, info, warn, error")

	root.AddCommand(
		newFromFileCommand(app),
		newCreateOutlineOnlyCommand(app),
		newFromWebCommand(app),
		newWebReviewsCommand(app),
		newServeCommand(app),
		newToolServerCommand(app),
	)
	return root
}

// setup applies the persistent flags on top of the loaded configuration.
func (app *App) setup() error {
	cfg := *app.Config
	if app.flags.model != "" {
		cfg.Model = app.flags.model
	}
	if app.flags.outputDir != "" {
		cfg.OutputDir = app.flags.outputDir
	}
	if app.flags.logLevel != "" {
		cfg.LogLevel = app.flags.logLevel
	}
	if raw := strings.TrimSpace(app.flags.toolServers); raw != "" {
		servers, err := core.ParseToolServers([]byte(raw))
		if err != nil {
			return err
		}
		cfg.ToolServers = servers
	}
	if app.flags.toolServersFile != "" {
		servers, err := config.LoadToolServersFile(app.flags.toolServersFile)
		if err != nil {
			return err
		}
		cfg.ToolServers = append(cfg.ToolServers, servers...)
	}
	format, err := render.ParseFormat(app.flags.format)
	if err != nil {
		return err
	}
	app.format = format

	app.logger = lib.NewLogger(cfg.LogLevel, app.Err)
	svc, err := content_service.New(content_service.Options{
		Config: &cfg,
		NewLLM: app.NewLLM,
		Dialer: app.Dialer,
		Logger: app.logger,
	})
	if err != nil {
		return err
	}
	app.service = svc
	return nil
}

func (app *App) outputDir() string {
	return app.service.Config().OutputDir
}

// emit prints markdown or writes it to a timestamped file.
func (app *App) emit(markdown string) error {
	if !app.flags.writeToFile {
		_, err := io.WriteString(app.Out, markdown)
		return err
	}
	path, err := render.WriteFile(app.outputDir(), app.format, markdown, app.Now())
	if err != nil {
		return err
	}
	app.printf("Output written to %s\n", path)
	return nil
}

func (app *App) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(app.Out, format, args...)
}

func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
