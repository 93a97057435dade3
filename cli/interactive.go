package cli

import (
	"bufio"
	"context"
	"errors"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"polycode/content-agent/core"
	"polycode/content-agent/parser"
	"polycode/content-agent/pipeline"
	"polycode/content-agent/render"
	"polycode/content-agent/services/content_service"
)

const exitCommand = "exit"

var errExit = errors.New("exit")

// prompter reads one answer per line. "exit" and end of input both end the
// session.
type prompter struct {
	app     *App
	scanner *bufio.Scanner
}

func newPrompter(app *App) *prompter {
	return &prompter{app: app, scanner: bufio.NewScanner(app.In)}
}

func (p *prompter) ask(question string) (string, error) {
	p.app.printf("%s", question)
	if !p.scanner.Scan() {
		if err := p.scanner.Err(); err != nil {
			return "", err
		}
		return "", errExit
	}
	answer := strings.TrimSpace(p.scanner.Text())
	if answer == exitCommand {
		return "", errExit
	}
	return answer, nil
}

// askInputTexts asks for a path until it parses. A fixed source skips the
// question.
func (p *prompter) askInputTexts(source string) ([]core.InputText, error) {
	for {
		path := source
		if path == "" {
			var err error
			path, err = p.ask("Enter the path to the input file or directory: ")
			if err != nil {
				return nil, err
			}
		}
		if _, err := os.Stat(path); err != nil {
			p.app.printf("File does not exist. Please try again.\n")
			if source != "" {
				return nil, err
			}
			continue
		}
		texts, err := parser.Parse(path)
		if err != nil {
			p.app.printf("Error: %v\n", err)
			if source != "" {
				return nil, err
			}
			continue
		}
		return texts, nil
	}
}

type fromFileOptions struct {
	source       string
	outlineFirst bool
}

func newFromFileCommand(app *App) *cobra.Command {
	var opts fromFileOptions
	cmd := &cobra.Command{
		Use:   "from-file",
		Short: "Repurpose input files into a new text",
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.runFromFile(contextOf(cmd), opts)
		},
	}
	cmd.Flags().StringVar(&opts.source, "source", "", "input file or directory; asked interactively when empty")
	cmd.Flags().BoolVar(&opts.outlineFirst, "outline-first", false, "create an outline before writing the text")
	return cmd
}

func (app *App) runFromFile(ctx context.Context, opts fromFileOptions) error {
	p := newPrompter(app)
	for {
		texts, err := p.askInputTexts(opts.source)
		if err != nil {
			return ignoreExit(err)
		}
		var out core.OutputText
		if opts.outlineFirst {
			out, err = app.outlineFirst(ctx, p, texts)
		} else {
			out, err = app.fromFileOnce(ctx, p, texts)
		}
		if err != nil {
			return ignoreExit(err)
		}
		if err := app.emit(render.Markdown(out)); err != nil {
			return err
		}
	}
}

func (app *App) fromFileOnce(ctx context.Context, p *prompter, texts []core.InputText) (core.OutputText, error) {
	for {
		userPrompt, err := p.ask("What would you like me to do? ")
		if err != nil {
			return core.OutputText{}, err
		}
		out, err := app.service.FromFile(ctx, texts, userPrompt, content_service.RunOptions{})
		if err == nil {
			return out, nil
		}
		if ctx.Err() != nil {
			return core.OutputText{}, ctx.Err()
		}
		app.printf("Error: %v\n", err)
	}
}

// outlineFirst walks the pipeline stages, re-asking for the instruction of a
// stage until it succeeds.
func (app *App) outlineFirst(ctx context.Context, p *prompter, texts []core.InputText) (core.OutputText, error) {
	pl, err := app.service.NewOutlineFirst(ctx, content_service.RunOptions{})
	if err != nil {
		return core.OutputText{}, err
	}
	for pl.Stage() != pipeline.Done {
		switch pl.Stage() {
		case pipeline.AwaitingOutline:
			outlinePrompt, err := p.ask("How should the outline look? ")
			if err != nil {
				return core.OutputText{}, err
			}
			outline, err := pl.CreateOutline(ctx, texts, outlinePrompt)
			if err != nil {
				if ctx.Err() != nil {
					return core.OutputText{}, ctx.Err()
				}
				app.printf("Error: %v\n", err)
				continue
			}
			app.printf("%s", render.OutlineMarkdown(outline))
		case pipeline.AwaitingContent:
			contentPrompt, err := p.ask("What would you like me to write from this outline? ")
			if err != nil {
				return core.OutputText{}, err
			}
			if _, err := pl.WriteContent(ctx, contentPrompt); err != nil {
				if ctx.Err() != nil {
					return core.OutputText{}, ctx.Err()
				}
				app.printf("Error: %v\n", err)
			}
		}
	}
	out, _ := pl.Output()
	return out, nil
}

func newCreateOutlineOnlyCommand(app *App) *cobra.Command {
	var source string
	cmd := &cobra.Command{
		Use:   "create-outline-only",
		Short: "Create an outline from input files",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := contextOf(cmd)
			p := newPrompter(app)
			for {
				texts, err := p.askInputTexts(source)
				if err != nil {
					return ignoreExit(err)
				}
				userPrompt, err := p.ask("How should the outline look? ")
				if err != nil {
					return ignoreExit(err)
				}
				outline, err := app.service.CreateOutlineOnly(ctx, texts, userPrompt, content_service.RunOptions{})
				if err != nil {
					if ctx.Err() != nil {
						return ctx.Err()
					}
					app.printf("Error: %v\n", err)
					continue
				}
				if err := app.emit(render.OutlineMarkdown(outline)); err != nil {
					return err
				}
			}
		},
	}
	cmd.Flags().StringVar(&source, "source", "", "input file or directory; asked interactively when empty")
	return cmd
}

func newFromWebCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "from-web",
		Short: "Search the web and write a text from the results",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := contextOf(cmd)
			p := newPrompter(app)
			for {
				searchTerms, err := p.ask("What should I search for? ")
				if err != nil {
					return ignoreExit(err)
				}
				userPrompt, err := p.ask("What would you like me to do? ")
				if err != nil {
					return ignoreExit(err)
				}
				out, err := app.service.FromWeb(ctx, searchTerms, userPrompt, content_service.RunOptions{})
				if err != nil {
					if ctx.Err() != nil {
						return ctx.Err()
					}
					app.printf("Error: %v\n", err)
					continue
				}
				if err := app.emit(render.Markdown(out)); err != nil {
					return err
				}
			}
		},
	}
}

func ignoreExit(err error) error {
	if errors.Is(err, errExit) {
		return nil
	}
	return err
}
