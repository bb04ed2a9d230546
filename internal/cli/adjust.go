package cli

import (
	"context"

	"github.com/spf13/cobra"

	"keylightctl/internal/lights"
)

// adjustStep is how far each brighter/dimmer/warmer/cooler invocation moves
// the value, in brightness points or native temperature units.
const adjustStep = 5

func (a *app) newBrighterCmd() *cobra.Command {
	return a.newAdjustCmd("brighter", "Make lights brighter",
		func(ctx context.Context, location string) (lights.Status, error) {
			return a.client.AdjustBrightness(ctx, location, adjustStep)
		})
}

func (a *app) newDimmerCmd() *cobra.Command {
	return a.newAdjustCmd("dimmer", "Make lights dimmer",
		func(ctx context.Context, location string) (lights.Status, error) {
			return a.client.AdjustBrightness(ctx, location, -adjustStep)
		})
}

func (a *app) newWarmerCmd() *cobra.Command {
	return a.newAdjustCmd("warmer", "Adjust temperature of lights warmer",
		func(ctx context.Context, location string) (lights.Status, error) {
			return a.client.AdjustTemperature(ctx, location, adjustStep)
		})
}

func (a *app) newCoolerCmd() *cobra.Command {
	return a.newAdjustCmd("cooler", "Adjust temperature of lights cooler",
		func(ctx context.Context, location string) (lights.Status, error) {
			return a.client.AdjustTemperature(ctx, location, -adjustStep)
		})
}

func (a *app) newAdjustCmd(use, short string, adjust func(ctx context.Context, location string) (lights.Status, error)) *cobra.Command {
	var refs []string

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.forEach(cmd, refs, func(l lights.Light) error {
				_, err := adjust(cmd.Context(), l.Location)
				return err
			})
		},
	}
	addLightFlag(cmd, &refs)

	return cmd
}
