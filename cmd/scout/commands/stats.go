package commands

import (
	"fmt"
	"strings"
	"valorant-scout/internal/catalog"
	"valorant-scout/internal/domain"
	"valorant-scout/internal/service"
	"valorant-scout/internal/vlr"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	statsTeam   string
	statsMaps   []string
	statsMapIDs []int
)

func init() {
	statsCmd.Flags().StringVarP(&statsTeam, "team", "t", "", "Team id or team link on the stats site.")
	statsCmd.Flags().StringSliceVarP(&statsMaps, "map", "m", nil, "Map to look up, repeatable (defaults to the whole map pool).")
	statsCmd.Flags().IntSliceVar(&statsMapIDs, "map-id", nil, "Scheduling-site map id to look up, repeatable (0 Haven through 11 Corrode).")
	statsCmd.MarkFlagRequired("team")
	rootCmd.AddCommand(statsCmd)
}

var statsCmd = &cobra.Command{
	Use:   "stats --team <id|link> [--map <name>...] [--days N | --start D --end D]",
	Short: "Prints a team's win rates and most used compositions per map.",
	RunE: func(cmd *cobra.Command, args []string) error {
		teamID, ok := vlr.TeamIDFromURL(statsTeam)
		if !ok {
			return fmt.Errorf("could not read a team id from %q", statsTeam)
		}

		maps, err := mapsFromFlags()
		if err != nil {
			return err
		}

		d, err := newDeps(cmd.Context())
		if err != nil {
			return err
		}

		results := d.scout.TeamMapStats(cmd.Context(), teamID, maps, d.scout.Window())

		t := newTable()
		t.SetTitle(fmt.Sprintf("Team %s, window %s", teamID, d.scout.Window()))
		t.AppendHeader(table.Row{"Map", "Plays", "Win%", "Atk", "Def", "Top composition", "Status"})
		for _, r := range results {
			t.AppendRow(resultRow(r))
		}
		t.Render()

		for _, r := range results {
			if r.Status == service.StatusUnavailable {
				return fmt.Errorf("some maps could not be loaded: %w", r.Err)
			}
		}
		return nil
	},
}

// mapsFromFlags merges --map and --map-id. Names outside the pool are kept as
// typed since the lookup is a substring match.
func mapsFromFlags() ([]string, error) {
	maps := make([]string, 0, len(statsMaps)+len(statsMapIDs))
	for _, m := range statsMaps {
		if name, ok := catalog.Canonical(m); ok {
			m = name
		}
		maps = append(maps, m)
	}
	for _, id := range statsMapIDs {
		name, ok := catalog.NameForHostID(id)
		if !ok {
			return nil, fmt.Errorf("unknown map id %d", id)
		}
		maps = append(maps, name)
	}
	return maps, nil
}

func resultRow(r service.MapResult) table.Row {
	if r.Record == nil {
		return table.Row{r.MapName, "-", "-", "-", "-", "-", string(r.Status)}
	}
	rec := r.Record
	return table.Row{
		r.MapName,
		rec.PlayCount,
		rec.WinRate,
		rec.AttackWinRate,
		rec.DefenseWinRate,
		topComposition(rec),
		string(r.Status),
	}
}

func topComposition(rec *domain.MapPerformanceRecord) string {
	if len(rec.Compositions) == 0 {
		return "-"
	}
	top := rec.Compositions[0]
	agents := make([]string, 0, len(top.Members))
	for _, m := range top.Members {
		agents = append(agents, m.Identifier)
	}
	return fmt.Sprintf("%s (%s)", strings.Join(agents, ", "), top.UsageCount)
}
