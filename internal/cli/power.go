package cli

import (
	"github.com/spf13/cobra"

	"keylightctl/internal/lights"
)

func (a *app) newToggleCmd() *cobra.Command {
	var refs []string

	cmd := &cobra.Command{
		Use:   "toggle",
		Short: "Toggle lights on or off",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.forEach(cmd, refs, func(l lights.Light) error {
				_, err := a.client.Toggle(cmd.Context(), l.Location)
				return err
			})
		},
	}
	addLightFlag(cmd, &refs)

	return cmd
}

func (a *app) newOnCmd() *cobra.Command {
	return a.newPowerCmd("on", "Turn lights on", true)
}

func (a *app) newOffCmd() *cobra.Command {
	return a.newPowerCmd("off", "Turn lights off", false)
}

func (a *app) newPowerCmd(use, short string, on bool) *cobra.Command {
	var refs []string

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.forEach(cmd, refs, func(l lights.Light) error {
				_, err := a.client.SetStatus(cmd.Context(), l.Location, lights.StatusChange{On: &on})
				return err
			})
		},
	}
	addLightFlag(cmd, &refs)

	return cmd
}
