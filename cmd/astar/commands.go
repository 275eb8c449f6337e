package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/zucenko/pathviz/config"
	"github.com/zucenko/pathviz/model"
	"github.com/zucenko/pathviz/search"
)

type solveOptions struct {
	layout   string
	scale    int
	tieBreak float64
	delay    time.Duration
	timeout  time.Duration
	quiet    bool
}

func newRootCmd() *cobra.Command {
	var logLevel string
	rootCmd := &cobra.Command{
		Use:           "astar",
		Short:         "Headless A* over pathviz boards",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Default()
			cfg.Log.Level = logLevel
			if err := cfg.Validate(); err != nil {
				return err
			}
			cfg.SetupLogging()
			return nil
		},
	}
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "logrus level")
	rootCmd.AddCommand(newSolveCmd())
	return rootCmd
}

func newSolveCmd() *cobra.Command {
	opts := solveOptions{}
	cmd := &cobra.Command{
		Use:   "solve",
		Short: "Find a path on a text layout and print it",
		Long: `Reads a board (S start, T target, # obstacle, . free) and prints it with
the path drawn as '*'. Without --layout an empty board of the given scale is
solved. Exits non-zero when the target is unreachable.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSolve(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), opts)
		},
	}
	defaults := config.Default()
	cmd.Flags().StringVar(&opts.layout, "layout", "", "layout file, '-' for stdin")
	cmd.Flags().IntVar(&opts.scale, "scale", defaults.Grid.Scale, "empty board scale when no layout is given")
	cmd.Flags().Float64Var(&opts.tieBreak, "tie-break", defaults.Search.TieBreak, "heuristic bias, 0 for shortest paths")
	cmd.Flags().DurationVar(&opts.delay, "delay", 0, "pause after every expansion")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 0, "give up after this long, 0 for never")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "print only the summary line")
	return cmd
}

func runSolve(ctx context.Context, stdin io.Reader, out io.Writer, opts solveOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	grid, err := loadGrid(stdin, opts)
	if err != nil {
		return err
	}
	if opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.timeout)
		defer cancel()
	}

	res, err := search.Solve(ctx, grid, search.Options{TieBreak: opts.tieBreak, StepDelay: opts.delay})
	if errors.Is(err, search.ErrUnreachable) {
		fmt.Fprintf(out, "unreachable after %d expansions\n", res.Expanded)
		return err
	}
	if err != nil {
		return err
	}
	log.Debugf("path %v", res.Path)
	if !opts.quiet {
		fmt.Fprint(out, grid.Layout(res.Path))
	}
	fmt.Fprintf(out, "path of %d steps, %d expansions\n", len(res.Path)-1, res.Expanded)
	return nil
}

func loadGrid(stdin io.Reader, opts solveOptions) (*model.Grid, error) {
	switch opts.layout {
	case "":
		return model.NewGrid(opts.scale)
	case "-":
		return model.ParseLayout(stdin)
	}
	file, err := os.Open(opts.layout)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return model.ParseLayout(file)
}
