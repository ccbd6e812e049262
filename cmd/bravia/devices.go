package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/muurk/bravia/internal/config"
	"github.com/muurk/bravia/internal/device"
	"github.com/muurk/bravia/internal/ui"
)

var (
	deviceModel    string
	deviceNickname string
	assumeYes      bool
)

func init() {
	devicesCmd.AddCommand(devicesListCmd)
	devicesCmd.AddCommand(devicesAddCmd)
	devicesCmd.AddCommand(devicesRemoveCmd)
	devicesCmd.AddCommand(devicesDefaultCmd)

	devicesAddCmd.Flags().StringVar(&deviceModel, "model", "", "Model name, e.g. KD-55X85J")
	devicesAddCmd.Flags().StringVar(&deviceNickname, "nickname", "", "Friendly name shown in listings")
	devicesRemoveCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Do not ask for confirmation")

	rootCmd.AddCommand(devicesCmd)
}

// devicesCmd manages the registry of known displays
var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "Manage registered displays",
	Long: `Manage the registry of known displays.

Registered displays can be addressed by name with --device. The default
display is used when --device is omitted.`,
}

var devicesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered displays",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := loadRegistry()
		if err != nil {
			return fmt.Errorf("failed to load registry: %w", err)
		}
		if outputFormat == formatJSON {
			data, err := json.MarshalIndent(reg.Devices, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal JSON: %w", err)
			}
			fmt.Println(string(data))
			return nil
		}

		names := reg.Names()
		if len(names) == 0 {
			fmt.Println("No displays registered.")
			fmt.Println("Use 'bravia scan --save' or 'bravia devices add <name> <address>'")
			return nil
		}
		var def string
		if reg.Preferences != nil {
			def = reg.Preferences.DefaultDevice
		}
		for _, name := range names {
			d := reg.GetDevice(name)
			marker := " "
			if name == def {
				marker = "*"
			}
			fmt.Printf("%s %-24s %-15s %s\n", marker, name, d.Address, describeEntry(d))
		}
		return nil
	},
}

func describeEntry(d *config.Device) string {
	s := d.Model
	if d.Nickname != "" {
		s = fmt.Sprintf("%s (%s)", d.Nickname, d.Model)
	}
	if !d.LastSeen.IsZero() {
		s += "  last seen " + d.LastSeen.Format(time.DateTime)
	}
	return s
}

var devicesAddCmd = &cobra.Command{
	Use:   "add <name> <address>",
	Short: "Register a display",
	Example: `  bravia devices add lounge 192.168.1.20 --model KD-55X85J
  bravia devices add lobby 10.0.0.7 --nickname "Lobby sign"`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, address := args[0], args[1]
		if err := device.ValidateAddress(address); err != nil {
			return err
		}
		if deviceModel != "" {
			if err := device.ValidateModel(deviceModel); err != nil {
				return err
			}
		}

		reg, err := loadRegistry()
		if err != nil {
			return fmt.Errorf("failed to load registry: %w", err)
		}
		if other, d := reg.FindByAddress(address); d != nil && other != name {
			return fmt.Errorf("%s is already registered as %q", address, other)
		}
		reg.AddDevice(name, address, deviceModel)
		if deviceNickname != "" {
			reg.SetDeviceNickname(name, deviceNickname)
		}
		if reg.Preferences != nil && reg.Preferences.DefaultDevice == "" {
			reg.Preferences.DefaultDevice = name
		}
		if err := reg.Save(); err != nil {
			return fmt.Errorf("failed to save registry: %w", err)
		}
		ui.NewPrinter(os.Stdout).PrintSuccess("Display registered",
			ui.Detail{Key: "Name", Value: name},
			ui.Detail{Key: "Address", Value: address})
		return nil
	},
}

var devicesRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a registered display",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := loadRegistry()
		if err != nil {
			return fmt.Errorf("failed to load registry: %w", err)
		}
		name := args[0]
		if reg.GetDevice(name) == nil {
			return fmt.Errorf("no display registered as %q", name)
		}
		if !assumeYes && !ui.Confirm(os.Stdin, os.Stdout, fmt.Sprintf("Remove %s?", name)) {
			return nil
		}
		reg.RemoveDevice(name)
		if err := reg.Save(); err != nil {
			return fmt.Errorf("failed to save registry: %w", err)
		}
		fmt.Printf("%s Removed %s\n", ui.SuccessMarker, name)
		return nil
	},
}

var devicesDefaultCmd = &cobra.Command{
	Use:   "default <name>",
	Short: "Set the display used when --device is omitted",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := loadRegistry()
		if err != nil {
			return fmt.Errorf("failed to load registry: %w", err)
		}
		name := args[0]
		if reg.GetDevice(name) == nil {
			return fmt.Errorf("no display registered as %q", name)
		}
		reg.Preferences.DefaultDevice = name
		if err := reg.Save(); err != nil {
			return fmt.Errorf("failed to save registry: %w", err)
		}
		fmt.Printf("%s Default display is now %s\n", ui.SuccessMarker, name)
		return nil
	},
}
