package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/bravia/internal/config"
	"github.com/muurk/bravia/internal/control"
	"github.com/muurk/bravia/internal/device"
	"github.com/muurk/bravia/internal/discovery"
	"github.com/muurk/bravia/internal/logging"
)

// Persistent flags shared by the device commands
var (
	deviceName     string
	configPath     string
	logLevel       string
	outputFormat   string
	commandTimeout time.Duration
	devicePort     int
)

const (
	formatDetailed = "detailed"
	formatJSON     = "json"
)

func init() {
	rootCmd.PersistentFlags().StringVar(&deviceName, "device", "", "Registered device name or IPv4 address (default device, then discovery)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Registry file (default is the user config directory)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); silent when empty")
	rootCmd.PersistentFlags().StringVar(&outputFormat, "format", formatDetailed, "Output format (detailed, json)")
	rootCmd.PersistentFlags().DurationVar(&commandTimeout, "timeout", 30*time.Second, "Overall timeout for a command")
	rootCmd.PersistentFlags().IntVar(&devicePort, "port", device.DefaultPort, "Simple IP control TCP port")
}

// loadRegistry returns the registry named by --config, or the user registry.
func loadRegistry() (*config.Registry, error) {
	if configPath != "" {
		return config.LoadFile(configPath)
	}
	return config.LoadRegistry()
}

// resolveTarget picks the display for a command: --device, then the default
// device, then a discovery scan that must find exactly one display.
func resolveTarget(ctx context.Context, reg *config.Registry) (config.Target, error) {
	target, err := reg.Resolve(deviceName)
	if err == nil {
		return target, nil
	}
	if !errors.Is(err, config.ErrNoDevice) {
		return config.Target{}, err
	}

	fmt.Fprintln(os.Stderr, "No device specified, attempting auto-discovery...")
	devices, err := discovery.NewScanner(scanOptions(reg, 0, false)).Scan(ctx)
	if err != nil {
		return config.Target{}, fmt.Errorf("discovery failed: %w", err)
	}

	switch len(devices) {
	case 0:
		return config.Target{}, fmt.Errorf("no displays found. Use --device to give an address")
	case 1:
	default:
		fmt.Fprintf(os.Stderr, "Found %d displays:\n", len(devices))
		for i, d := range devices {
			fmt.Fprintf(os.Stderr, "%d. %s\n", i+1, d)
		}
		return config.Target{}, fmt.Errorf("multiple displays found. Use --device to pick one")
	}

	d := devices[0]
	fmt.Fprintf(os.Stderr, "Found %s\n\n", d)
	name, _ := reg.FindByAddress(d.Address)
	return config.Target{Name: name, Address: d.Address, Model: d.Model}, nil
}

// scanOptions applies the registry preferences to a scan. A zero wait uses
// the preference.
func scanOptions(reg *config.Registry, wait time.Duration, quick bool) discovery.Options {
	opts := discovery.Options{Wait: wait, Quick: quick}
	if reg.Preferences == nil {
		return opts
	}
	if opts.Wait == 0 && reg.Preferences.DiscoverWait > 0 {
		opts.Wait = time.Duration(reg.Preferences.DiscoverWait) * time.Second
	}
	opts.Quick = opts.Quick || reg.Preferences.QuickDiscover
	return opts
}

// session is one open connection to a display.
type session struct {
	target config.Target
	dev    *device.Device
	ctl    *control.Controller
}

func deviceOptions(target config.Target) []device.Option {
	return []device.Option{device.WithModel(target.Model), device.WithPort(devicePort)}
}

// connect opens a connection to target.
func connect(ctx context.Context, target config.Target, opts ...control.Option) (*session, error) {
	dev, err := device.New(target.Address, deviceOptions(target)...)
	if err != nil {
		return nil, err
	}
	logging.Debug("Connecting", zap.String("address", target.Address), zap.Int("port", devicePort))
	if err := dev.Connect(ctx); err != nil {
		return nil, err
	}
	return &session{target: target, dev: dev, ctl: control.New(dev, opts...)}, nil
}

// openSession resolves the target display and connects to it. Registered
// displays get their last seen time updated.
func openSession(ctx context.Context) (*session, error) {
	reg, err := loadRegistry()
	if err != nil {
		return nil, fmt.Errorf("failed to load registry: %w", err)
	}
	if reg.Preferences != nil && reg.Preferences.VolumeStep > 0 {
		volumeStep = reg.Preferences.VolumeStep
	}
	target, err := resolveTarget(ctx, reg)
	if err != nil {
		return nil, err
	}
	s, err := connect(ctx, target)
	if err != nil {
		return nil, err
	}
	if target.Name != "" {
		reg.UpdateDeviceLastSeen(target.Name, target.Address)
		if err := reg.Save(); err != nil {
			logging.Warn("Failed to save registry", zap.Error(err))
		}
	}
	return s, nil
}

func (s *session) label() string {
	if s.target.Name != "" {
		return s.target.Name
	}
	return s.target.Address
}

// Close disconnects, waiting at most the device's disconnect timeout.
func (s *session) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), device.DefaultDisconnectTimeout)
	defer cancel()
	if err := s.dev.Disconnect(ctx); err != nil && !device.IsStateError(err) {
		logging.Warn("Disconnect failed", zap.Error(err))
	}
}

// commandContext bounds a command by --timeout.
func commandContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), commandTimeout)
}

// withSession runs fn against the resolved display.
func withSession(fn func(ctx context.Context, s *session) error) error {
	ctx, cancel := commandContext()
	defer cancel()

	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(ctx, s)
}
