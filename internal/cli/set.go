package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"keylightctl/internal/lights"
)

func (a *app) newSetCmd() *cobra.Command {
	var (
		refs        []string
		power       onOffValue
		on, off     bool
		brightness  brightnessValue
		temperature temperatureValue
	)

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Set status for lights, including on/off, brightness, and temperature",
		RunE: func(cmd *cobra.Command, args []string) error {
			var change lights.StatusChange
			if power.set {
				change.On = &power.on
			}
			if on {
				v := true
				change.On = &v
			}
			if off {
				v := false
				change.On = &v
			}
			if brightness.set {
				change.Brightness = &brightness.val
			}
			if temperature.set {
				change.Temperature = &temperature.val
			}

			if change.Empty() {
				fmt.Fprintf(cmd.OutOrStdout(),
					"Nothing to set. Please specify on, brightness, and/or temperature. See '-h' for usage.\n\n")
				return nil
			}

			return a.forEach(cmd, refs, func(l lights.Light) error {
				_, err := a.client.SetStatus(cmd.Context(), l.Location, change)
				return err
			})
		},
	}

	addLightFlag(cmd, &refs)
	cmd.Flags().VarP(&power, "power", "o", "whether to set the light(s) on or off")
	cmd.Flags().BoolVar(&on, "on", false, "turn the light(s) on")
	cmd.Flags().BoolVar(&off, "off", false, "turn the light(s) off")
	cmd.Flags().VarP(&brightness, "brightness", "b", "brightness for light as a percentage from 3 to 100")
	cmd.Flags().VarP(&temperature, "temperature", "t", "temperature for light in Kelvin, from 2900k to 7000k in increments of 50")
	cmd.MarkFlagsMutuallyExclusive("power", "on", "off")

	return cmd
}

// The flag values below validate set's arguments as they are parsed, so a
// bad value is rejected before any light is touched.

var (
	_ pflag.Value = (*onOffValue)(nil)
	_ pflag.Value = (*brightnessValue)(nil)
	_ pflag.Value = (*temperatureValue)(nil)
)

type onOffValue struct {
	set bool
	on  bool
}

func (v *onOffValue) String() string {
	if !v.set {
		return ""
	}
	if v.on {
		return "on"
	}
	return "off"
}

func (v *onOffValue) Set(s string) error {
	on, err := lights.ParseOnOff(s)
	if err != nil {
		return err
	}
	v.on, v.set = on, true
	return nil
}

func (v *onOffValue) Type() string { return "on|off" }

type brightnessValue struct {
	set bool
	val int
}

func (v *brightnessValue) String() string {
	if !v.set {
		return ""
	}
	return strconv.Itoa(v.val)
}

func (v *brightnessValue) Set(s string) error {
	b, err := lights.ParseBrightness(s)
	if err != nil {
		return err
	}
	v.val, v.set = b, true
	return nil
}

func (v *brightnessValue) Type() string { return "3-100" }

type temperatureValue struct {
	set bool
	val int
}

func (v *temperatureValue) String() string {
	if !v.set {
		return ""
	}
	return strconv.Itoa(v.val)
}

func (v *temperatureValue) Set(s string) error {
	k, err := lights.ParseKelvin(s)
	if err != nil {
		return err
	}
	v.val, v.set = k, true
	return nil
}

func (v *temperatureValue) Type() string { return "2900-7000k" }
