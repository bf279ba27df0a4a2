package commands

import (
	"context"
	"fmt"
	"os"
	"valorant-scout/internal/cache"
	"valorant-scout/internal/config"
	"valorant-scout/internal/domain"
	"valorant-scout/internal/logger"
	"valorant-scout/internal/service"
	"valorant-scout/internal/vlr"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	verbose bool
	days    int
	start   string
	end     string
)

var rootCmd = &cobra.Command{
	Use:           "scout",
	Short:         "scout looks up a team's per-map performance on the stats site.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output to stderr.")
	rootCmd.PersistentFlags().IntVar(&days, "days", 0, "Look at the last N days (defaults to DEFAULT_WINDOW_DAYS).")
	rootCmd.PersistentFlags().StringVar(&start, "start", "", "Explicit window start, YYYY-MM-DD.")
	rootCmd.PersistentFlags().StringVar(&end, "end", "", "Explicit window end, YYYY-MM-DD.")
	rootCmd.MarkFlagsRequiredTogether("start", "end")
	rootCmd.MarkFlagsMutuallyExclusive("days", "start")
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type deps struct {
	client *vlr.Client
	scout  *service.Scout
}

func newDeps(ctx context.Context) (deps, error) {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	log := logger.NewWithWriter(os.Stderr, level)

	cfg, err := config.Load(log)
	if err != nil {
		return deps{}, err
	}

	client := vlr.NewClient(cfg, log)
	scout := service.NewScout(client, cache.NewMemoryStore(), cfg, log)
	if _, err := scout.SetWindow(ctx, windowFromFlags(cfg)); err != nil {
		return deps{}, err
	}

	return deps{client: client, scout: scout}, nil
}

func windowFromFlags(cfg *config.Config) domain.DateWindow {
	if start != "" || end != "" {
		return domain.Between(start, end)
	}
	// an explicit --days is passed through so Validate rejects non-positive counts
	if rootCmd.PersistentFlags().Changed("days") {
		return domain.LastDays(days)
	}
	return domain.LastDays(cfg.DefaultWindowDays)
}

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(os.Stdout)
	return t
}
