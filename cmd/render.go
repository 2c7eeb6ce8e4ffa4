package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"hn-board/internal/render"
	"hn-board/worker"

	"github.com/spf13/cobra"
)

var (
	renderFormat string
	renderOutput string
	renderCount  int
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Fetch every configured section and render the board",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		if cmd.Flags().Changed("count") {
			cfg.Board.Count = renderCount
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		board := render.NewBoard()
		var p render.Presenter
		switch renderFormat {
		case "html":
			p = &render.HTMLPresenter{Board: board}
		case "text":
			p = &render.TerminalPresenter{Board: board}
		default:
			return fmt.Errorf("unknown format %q (want html or text)", renderFormat)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		agg := newAggregator(cfg)
		runErr := worker.NewManager(boardWorkers(cfg, agg, cfg.Board.Count, p)...).Start(ctx)

		var w io.Writer = cmd.OutOrStdout()
		if renderOutput != "" {
			f, err := os.Create(renderOutput)
			if err != nil {
				return err
			}
			defer f.Close()
			w = f
		}
		var err error
		if renderFormat == "html" {
			err = render.WriteHTML(w, cfg.Board.Title, board, cfg.Sections())
		} else {
			err = render.WriteText(w, board, cfg.Sections())
		}
		if err != nil {
			return err
		}
		if renderOutput != "" {
			slog.Info("board written", "path", renderOutput)
		}
		return runErr
	},
}

func init() {
	rootCmd.AddCommand(renderCmd)
	renderCmd.Flags().StringVarP(&renderFormat, "format", "f", "html", "output format: html or text")
	renderCmd.Flags().StringVarP(&renderOutput, "output", "o", "", "write to file instead of stdout")
	renderCmd.Flags().IntVarP(&renderCount, "count", "n", 0, "stories per section (overrides board.count)")
}
