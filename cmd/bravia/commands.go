package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/muurk/bravia/internal/config"
	"github.com/muurk/bravia/internal/control"
	"github.com/muurk/bravia/internal/device"
	"github.com/muurk/bravia/internal/discovery"
	"github.com/muurk/bravia/internal/monitor"
	"github.com/muurk/bravia/internal/ui"
	"github.com/muurk/bravia/internal/urls"
)

// Command flags
var (
	scanWait  int
	scanQuick bool
	scanSave  bool
	listIRCC  bool
)

func init() {
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(monitorCmd)

	rootCmd.AddCommand(verbCommand("state", `Read power and, when the display is on, volume, mute, picture mute,
input and scene in one go. Settings the display refuses are listed
separately instead of failing the command.`,
		`  bravia state --device lounge
  bravia state --device 192.168.1.20 --format json`))

	rootCmd.AddCommand(verbCommand("power", `Without an argument, print whether the display is on. With on, off or
toggle, change the power state and print the result.

While a display is in standby it only answers power commands.`,
		`  bravia power
  bravia power on --device lounge
  bravia power toggle`))

	rootCmd.AddCommand(verbCommand("volume", `Without an argument, print the volume. A number sets it (0-100); up and
down step it, by 1 or by the optional STEP, clamped to 0-100.`,
		`  bravia volume
  bravia volume 25
  bravia volume up 5`))

	rootCmd.AddCommand(verbCommand("mute", `Read or change audio mute.`,
		`  bravia mute on
  bravia mute toggle`))

	rootCmd.AddCommand(verbCommand("picture", `Read or change picture mute. Picture mute blanks the screen while
audio keeps playing.`,
		`  bravia picture on
  bravia picture toggle`))

	rootCmd.AddCommand(verbCommand("input", `Without arguments, print the active input. With a type (hdmi, component,
mirroring) and a port, switch to it. "hdmi:2" and "hdmi2" work too.`,
		`  bravia input
  bravia input hdmi 2
  bravia input component:1`))

	rootCmd.AddCommand(verbCommand("scene", `Read or change the picture scene setting. Some inputs have no scene
setting; the display then reports it as not available.`,
		`  bravia scene
  bravia scene general`))

	ircc := verbCommand("ircc", `Send a remote control button by name or by raw code. Names ignore case,
spaces, dashes and underscores. Use --list to print the known buttons.

Code reference: `+urls.IRCCCodes,
		`  bravia ircc home
  bravia ircc volume up
  bravia ircc --list`)
	ircc.Args = func(cmd *cobra.Command, args []string) error {
		if listIRCC {
			return cobra.NoArgs(cmd, args)
		}
		return cobra.MinimumNArgs(1)(cmd, args)
	}
	ircc.Flags().BoolVar(&listIRCC, "list", false, "List the known buttons instead of sending one")
	rootCmd.AddCommand(ircc)

	rootCmd.AddCommand(verbCommand("network", `Print the MAC and broadcast address the display reports for a network
interface (eth0 unless NETIF is given).`,
		`  bravia network
  bravia network wlan0`))

	send := verbCommand("send", `Send a raw packet and print the answer. TYPE is control or enquiry (C or
E); COMMAND is four letters; PARAMETERS default to sixteen '#'.

Command reference: `+urls.SimpleIPCommands,
		`  bravia send enquiry POWR
  bravia send control VOLU 0000000000000020
  bravia send enquiry INPT --ignore-device-error`)
	send.Flags().BoolVar(&ignoreDeviceError, "ignore-device-error", false, "Print an all-F answer instead of failing")
	rootCmd.AddCommand(send)
}

// verbCommand builds the subcommand for a verb.
func verbCommand(name, long, example string) *cobra.Command {
	v := lookupVerb(name)
	if v == nil {
		panic("unknown verb " + name)
	}
	args := cobra.RangeArgs(v.minArgs, v.maxArgs)
	if v.maxArgs < 0 {
		args = cobra.MinimumNArgs(v.minArgs)
	}
	return &cobra.Command{
		Use:     v.usage,
		Short:   v.short,
		Long:    long,
		Example: example,
		Args:    args,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerb(v, args)
		},
	}
}

func runVerb(v *verb, args []string) error {
	if v.name == "ircc" && listIRCC {
		return printIRCCList()
	}
	return withSession(func(ctx context.Context, s *session) error {
		o, err := v.Run(ctx, s.ctl, args)
		if err != nil {
			return err
		}
		if o.Snapshot == nil {
			o.Title = o.Title + " · " + s.label()
		} else {
			o.Title = s.label()
		}
		return render(os.Stdout, outputFormat, o)
	})
}

func printIRCCList() error {
	table, err := control.DefaultIRCCTable()
	if err != nil {
		return err
	}
	if outputFormat == formatJSON {
		data, err := json.MarshalIndent(table.Codes(), "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}
	for _, c := range table.Codes() {
		fmt.Printf("  %-20s %d\n", c.Name, c.Code)
	}
	return nil
}

// scanCmd discovers displays on the network
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan for BRAVIA displays on the network",
	Long: `Scan for BRAVIA displays using mDNS/DNS-SD discovery.

Displays announce themselves as Google Cast receivers; the scan keeps the
entries whose model or name identifies a BRAVIA. With --save, found
displays are added to the registry.`,
	Example: `  # Scan for the configured time (3 seconds by default)
  bravia scan

  # Stop at the first display
  bravia scan --quick

  # Longer scan, remember what was found
  bravia scan --wait 10 --save`,
	Args: cobra.NoArgs,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().IntVar(&scanWait, "wait", 0, "Seconds to listen (1-10, default from preferences)")
	scanCmd.Flags().BoolVar(&scanQuick, "quick", false, "Return at the first display found")
	scanCmd.Flags().BoolVar(&scanSave, "save", false, "Add found displays to the registry")
}

func runScan(cmd *cobra.Command, args []string) error {
	reg, err := loadRegistry()
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}
	opts := scanOptions(reg, time.Duration(scanWait)*time.Second, scanQuick)
	if err := opts.Validate(); err != nil {
		return err
	}

	ctx, cancel := commandContext()
	defer cancel()

	wait := opts.Wait
	if wait == 0 {
		wait = discovery.DefaultWait
	}
	if outputFormat != formatJSON {
		fmt.Printf("Scanning for BRAVIA displays (wait: %v)...\n\n", wait)
	}

	devices, err := discovery.NewScanner(opts).Scan(ctx)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	if scanSave && len(devices) > 0 {
		names := saveDiscovered(reg, devices)
		if err := reg.Save(); err != nil {
			return fmt.Errorf("failed to save registry: %w", err)
		}
		if outputFormat != formatJSON {
			defer fmt.Printf("\nSaved %s\n", strings.Join(names, ", "))
		}
	}

	if outputFormat == formatJSON {
		data, err := json.MarshalIndent(devices, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	if len(devices) == 0 {
		ui.NewPrinter(os.Stdout).PrintWarning("No displays found")
		fmt.Println("\nTroubleshooting:")
		fmt.Println("  - Ensure the display is on and on the same network")
		fmt.Println("  - Enable Simple IP control in the display's network settings")
		fmt.Println("  - Try increasing --wait for slower networks")
		fmt.Println("  - Use --device to give the address directly if discovery fails")
		return nil
	}

	fmt.Println(ui.RenderDeviceTable(devices))
	fmt.Println()
	fmt.Println("Use 'bravia state --device <address>' to read a display")
	fmt.Println("Use 'bravia devices add <name> <address>' to register one")
	return nil
}

// saveDiscovered records devices in the registry under their existing
// names, or under names derived from model and address.
func saveDiscovered(reg *config.Registry, devices []*discovery.Device) []string {
	names := make([]string, 0, len(devices))
	for _, d := range devices {
		name, existing := reg.FindByAddress(d.Address)
		if existing == nil {
			name = config.DeviceNameFor(d.Model, d.Address)
		}
		reg.AddDevice(name, d.Address, d.Model)
		reg.UpdateDeviceLastSeen(name, d.Address)
		names = append(names, name)
	}
	return names
}

// monitorCmd launches the full screen monitor
var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Launch the full screen monitor",
	Long: `Launch a full screen view of one display that follows its notifications.

Without --device and without a default device, the monitor starts on a
discovery screen. Keys on the dashboard toggle power and mute, step the
volume and cycle HDMI inputs.`,
	Example: `  # Pick a display from discovery (monitor is also the default)
  bravia monitor
  bravia

  # Monitor a registered display
  bravia monitor --device lounge`,
	Args: cobra.NoArgs,
	RunE: runMonitor,
}

func runMonitor(cmd *cobra.Command, args []string) error {
	reg, err := loadRegistry()
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}

	scan := discovery.NewScanner(scanOptions(reg, 0, false))
	opts := monitor.Options{
		Scan:          scan.Scan,
		DeviceOptions: []device.Option{device.WithPort(devicePort)},
	}

	var target *monitor.Target
	t, err := reg.Resolve(deviceName)
	switch {
	case err == nil:
		target = &monitor.Target{Name: t.Name, Address: t.Address, Model: t.Model}
	case deviceName != "":
		return err
	}

	if err := monitor.Run(opts, target); err != nil {
		return fmt.Errorf("monitor error: %w", err)
	}
	return nil
}
