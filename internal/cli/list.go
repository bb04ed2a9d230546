package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (a *app) newListCmd() *cobra.Command {
	var refs []string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List lights",
		RunE: func(cmd *cobra.Command, args []string) error {
			ll, err := a.reg.Resolve(cmd.Context(), refs)
			if err != nil {
				return err
			}

			for i, l := range ll {
				fmt.Fprintf(cmd.OutOrStdout(), "[%d] %s (%s)\n", i+1, l.Name, l.Location)
			}
			return nil
		},
	}
	addLightFlag(cmd, &refs)

	return cmd
}
