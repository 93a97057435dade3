package cli

import (
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"polycode/content-agent/api"
	"polycode/content-agent/services/content_service"
	"polycode/content-agent/toolserver"
)

func newWebReviewsCommand(app *App) *cobra.Command {
	var (
		input string
		delay time.Duration
	)
	cmd := &cobra.Command{
		Use:   "web-reviews",
		Short: "Collect web reviews for a list of product titles",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(input)
			if err != nil {
				return err
			}
			titles := content_service.ReadTitles(string(data))
			app.printf("Loaded %d product titles.\n", len(titles))

			results, err := app.service.WebReviews(contextOf(cmd), titles, app.outputDir(), delay, content_service.RunOptions{})
			for _, r := range results {
				if r.Error != "" {
					app.printf("[ERROR] %s: %s\n", r.Title, r.Error)
					continue
				}
				app.printf("[OK] %s: %d reviews saved to %s\n", r.Title, r.Count, r.Dir)
			}
			return err
		},
	}
	cmd.Flags().StringVar(&input, "input", "product_titles.txt", "file with one product title per line")
	cmd.Flags().DurationVar(&delay, "delay", 0, "pause between products")
	return cmd
}

func newServeCommand(app *App) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the content workflows over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = app.service.Config().Port
			}
			api.UseValidator()
			srv := &http.Server{
				Addr:    addr,
				Handler: api.NewRouter(app.service, app.logger),
			}
			ctx := contextOf(cmd)
			go func() {
				<-ctx.Done()
				_ = srv.Close()
			}()
			app.logger.Info("listening", "addr", addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address; defaults to PORT")
	return cmd
}

func newToolServerCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "toolserver",
		Short: "Serve the inbuilt web tools as an MCP server over stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := toolserver.NewWebToolsServer()
			if err != nil {
				return err
			}
			app.logger.Info("tool server started on stdio")
			return toolserver.ServeStdio(s)
		},
	}
}
