// Bravia-bridge keeps a BRAVIA display connected and exposes it to other systems.
//
// It serves a JSON HTTP API with a WebSocket event stream, publishes state
// to MQTT and accepts set commands from it, writes state changes to
// InfluxDB and exposes Prometheus metrics. The simulate command runs a
// simulated display for development without hardware.
//
// Usage:
//
//	bravia-bridge serve [flags]
//	bravia-bridge simulate [flags]
//
// See 'bravia-bridge serve --help' for available options.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/muurk/bravia/internal/bridge"
	"github.com/muurk/bravia/internal/config"
	"github.com/muurk/bravia/internal/device"
	"github.com/muurk/bravia/internal/logging"
	"github.com/muurk/bravia/internal/simulator"
	"github.com/muurk/bravia/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "bravia-bridge",
	Short: "BRAVIA HTTP, MQTT and InfluxDB bridge",
	Long: `A long running bridge between one BRAVIA display and the rest of the house.

The bridge holds the simple IP control connection open, reconnects with
backoff when the display goes away, and fans every notification out to
WebSocket clients, MQTT and InfluxDB.

Settings come from the bridge section of the bravia registry; flags
override them.`,
	Version:      version.Version,
	SilenceUsage: true,
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("bravia-bridge %s (commit: %s)\n", version.Version, version.Commit)
	},
}

// Serve command and flags
var (
	configPath string
	deviceName string
	listenAddr string
	logLevel   string
	noMetrics  bool
	devicePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the bridge",
	Long: `Connect to the display and serve the HTTP API until interrupted.

The display is --device, else bridge.device from the registry, else the
default device. MQTT and InfluxDB are enabled by their registry sections.`,
	Example: `  # Bridge the default display on :8080
  bravia-bridge serve

  # Bridge a display by address on another port with debug logging
  bravia-bridge serve --device 192.168.1.20 --listen :9090 --log-level debug

  # Bridge a local simulator
  bravia-bridge serve --device 127.0.0.1 --port 20061

  # Use an explicit registry file
  bravia-bridge serve --config /etc/bravia/config.yaml`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&configPath, "config", "", "Registry file (default is the user config directory)")
	serveCmd.Flags().StringVar(&deviceName, "device", "", "Registered device name or IPv4 address")
	serveCmd.Flags().StringVar(&listenAddr, "listen", "", "HTTP listen address (overrides bridge.listen)")
	serveCmd.Flags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); default bridge.log_level or info")
	serveCmd.Flags().BoolVar(&noMetrics, "no-metrics", false, "Do not expose /metrics")
	serveCmd.Flags().IntVar(&devicePort, "port", device.DefaultPort, "Simple IP control TCP port")
}

func loadRegistry() (*config.Registry, error) {
	if configPath != "" {
		return config.LoadFile(configPath)
	}
	return config.LoadRegistry()
}

func runServe(cmd *cobra.Command, args []string) error {
	reg, err := loadRegistry()
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}
	settings := reg.Bridge
	if settings == nil {
		settings = config.DefaultBridge()
	}

	level := logLevel
	if level == "" {
		level = settings.LogLevel
	}
	if level == "" {
		level = "info"
	}
	if err := logging.Initialize(level); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer logging.Sync()

	name := deviceName
	if name == "" {
		name = settings.Device
	}
	target, err := reg.Resolve(name)
	if err != nil {
		return err
	}

	cfg := bridge.ConfigFromRegistry(settings, target)
	if listenAddr != "" {
		cfg.Listen = listenAddr
	}
	if noMetrics {
		cfg.Metrics = false
	}
	cfg.DeviceOptions = append(cfg.DeviceOptions, device.WithPort(devicePort))

	b, err := bridge.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to create bridge: %w", err)
	}
	return b.Start()
}

// Simulate command and flags
var (
	simListen   string
	simState    string
	simLogLevel string
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run a simulated display",
	Long: `Run a simulated BRAVIA display that speaks simple IP control.

The simulator answers enquiries and control requests like a real display,
refuses everything but power while in standby, and notifies every client
of each change. Point bravia or the bridge at it with --port.`,
	Example: `  # Simulated display in standby on the standard port
  bravia-bridge simulate

  # Start powered on at volume 20 on HDMI 2
  bravia-bridge simulate --listen 127.0.0.1:20060 --state "power=on volume=20 input=hdmi:2"`,
	Args: cobra.NoArgs,
	RunE: runSimulate,
}

func init() {
	simulateCmd.Flags().StringVar(&simListen, "listen", ":20060", "TCP listen address")
	simulateCmd.Flags().StringVar(&simState, "state", "", "Initial state as key=value pairs (power, volume, mute, picture_mute, input, scene)")
	simulateCmd.Flags().StringVar(&simLogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
}

func runSimulate(cmd *cobra.Command, args []string) error {
	if err := logging.Initialize(simLogLevel); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer logging.Sync()

	st, err := simulator.ParseState(simulator.DefaultState(), simState)
	if err != nil {
		return err
	}

	sim := simulator.New(st)
	if err := sim.Listen(simListen); err != nil {
		return err
	}
	fmt.Printf("Simulated display listening on port %d (Ctrl+C to stop)\n", sim.Port())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	logging.Info("Stopping simulator", zap.Int("clients", sim.Clients()))
	return sim.Close()
}
