package commands

import (
	"fmt"
	"valorant-scout/internal/vlr"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(urlCmd)
}

var urlCmd = &cobra.Command{
	Use:   "url <team id|link>",
	Short: "Prints the stats page URL for a team and window.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		teamID, ok := vlr.TeamIDFromURL(args[0])
		if !ok {
			return fmt.Errorf("could not read a team id from %q", args[0])
		}

		d, err := newDeps(cmd.Context())
		if err != nil {
			return err
		}

		link, err := d.client.StatsURL(teamID, d.scout.Window())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), link)
		return nil
	},
}
