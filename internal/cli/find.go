package cli

import (
	"github.com/spf13/cobra"
)

func (a *app) newFindCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "find",
		Aliases: []string{"search"},
		Short:   "Find lights on the network",
		Long: "Find listens for lights announcing themselves on the local network and " +
			"keeps listening until you confirm all of them have been found. " +
			"Whatever it finds replaces the stored light list.",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := a.session.Run(cmd.Context(), true)
			return err
		},
	}
}
