package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"keylightctl/internal/lights"
)

func (a *app) newStatusCmd() *cobra.Command {
	var refs []string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Check the status of lights",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.forEach(cmd, refs, func(l lights.Light) error {
				st, err := a.client.Status(cmd.Context(), l.Location)
				if err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "Status for %s:\n", l.Name)
				return printJSON(cmd, st.Friendly())
			})
		},
	}
	addLightFlag(cmd, &refs)

	return cmd
}

func (a *app) newInfoCmd() *cobra.Command {
	var refs []string

	cmd := &cobra.Command{
		Use:   "info",
		Short: "Get info on lights",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.forEach(cmd, refs, func(l lights.Light) error {
				info, err := a.client.Info(cmd.Context(), l.Location)
				if err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "Info for %s:\n", l.Name)
				return printJSON(cmd, info)
			})
		},
	}
	addLightFlag(cmd, &refs)

	return cmd
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
