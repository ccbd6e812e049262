package config

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Registry represents the entire user configuration file.
type Registry struct {
	Version     int                `yaml:"version"`
	Devices     map[string]*Device `yaml:"devices,omitempty"` // Keyed by user-chosen name
	Preferences *Preferences       `yaml:"preferences,omitempty"`
	Bridge      *Bridge            `yaml:"bridge,omitempty"`

	path string // file Save writes to; empty means DefaultPath
}

// Device is a known display.
type Device struct {
	Address  string    `yaml:"address"`             // IPv4 address
	Model    string    `yaml:"model,omitempty"`     // Model name from discovery
	Nickname string    `yaml:"nickname,omitempty"`  // User-friendly name
	LastSeen time.Time `yaml:"last_seen,omitempty"` // Last discovery/connection time
}

// Preferences represents application-wide user preferences.
type Preferences struct {
	DefaultDevice string `yaml:"default_device,omitempty"` // Registry name used when --device is absent
	DiscoverWait  int    `yaml:"discover_wait"`            // mDNS wait in seconds (1-10)
	QuickDiscover bool   `yaml:"quick_discover"`           // Stop scanning at the first display
	VolumeStep    int    `yaml:"volume_step"`              // Default step for volume up/down
}

// Bridge configures bravia-bridge.
type Bridge struct {
	Device    string     `yaml:"device,omitempty"` // Registry name or IPv4 address
	Listen    string     `yaml:"listen"`
	Metrics   bool       `yaml:"metrics"`
	LogLevel  string     `yaml:"log_level,omitempty"`
	Reconnect *Reconnect `yaml:"reconnect,omitempty"`
	MQTT      *MQTT      `yaml:"mqtt,omitempty"`
	InfluxDB  *InfluxDB  `yaml:"influxdb,omitempty"`
}

// Reconnect bounds the bridge's reconnect backoff.
type Reconnect struct {
	MinDelay time.Duration `yaml:"min_delay"`
	MaxDelay time.Duration `yaml:"max_delay"`
}

// MQTT configures state publishing to a broker. Empty Broker disables it.
type MQTT struct {
	Broker      string `yaml:"broker"`
	ClientID    string `yaml:"client_id,omitempty"`
	Username    string `yaml:"username,omitempty"`
	Password    string `yaml:"password,omitempty"`
	TopicPrefix string `yaml:"topic_prefix,omitempty"`
	QoS         byte   `yaml:"qos"`
}

// InfluxDB configures the state history writer. Empty URL disables it.
type InfluxDB struct {
	URL    string `yaml:"url"`
	Token  string `yaml:"token,omitempty"`
	Org    string `yaml:"org"`
	Bucket string `yaml:"bucket"`
}

// Defaults
const (
	DefaultDiscoverWait = 3
	DefaultVolumeStep   = 1
	DefaultListen       = ":8080"
	DefaultTopicPrefix  = "bravia"
)

func defaultPreferences() *Preferences {
	return &Preferences{
		DiscoverWait: DefaultDiscoverWait,
		VolumeStep:   DefaultVolumeStep,
	}
}

// DefaultBridge returns bridge settings with MQTT and InfluxDB disabled.
func DefaultBridge() *Bridge {
	return &Bridge{
		Listen:  DefaultListen,
		Metrics: true,
		Reconnect: &Reconnect{
			MinDelay: time.Second,
			MaxDelay: 30 * time.Second,
		},
	}
}

// NewRegistry creates a new Registry with default values.
func NewRegistry() *Registry {
	return &Registry{
		Version:     1,
		Devices:     make(map[string]*Device),
		Preferences: defaultPreferences(),
		Bridge:      DefaultBridge(),
	}
}

// normalize fills nil sections with defaults after loading.
func (r *Registry) normalize() {
	if r.Devices == nil {
		r.Devices = make(map[string]*Device)
	}
	if r.Preferences == nil {
		r.Preferences = defaultPreferences()
	}
	if r.Preferences.DiscoverWait == 0 {
		r.Preferences.DiscoverWait = DefaultDiscoverWait
	}
	if r.Preferences.VolumeStep == 0 {
		r.Preferences.VolumeStep = DefaultVolumeStep
	}
	if r.Bridge == nil {
		r.Bridge = DefaultBridge()
	}
	if r.Bridge.Listen == "" {
		r.Bridge.Listen = DefaultListen
	}
	if r.Bridge.Reconnect == nil {
		r.Bridge.Reconnect = DefaultBridge().Reconnect
	}
	if r.Bridge.MQTT != nil && r.Bridge.MQTT.TopicPrefix == "" {
		r.Bridge.MQTT.TopicPrefix = DefaultTopicPrefix
	}
}

// Validate checks values a user may have edited by hand.
func (r *Registry) Validate() error {
	if w := r.Preferences.DiscoverWait; w < 1 || w > 10 {
		return fmt.Errorf("preferences.discover_wait must be between 1 and 10, got %d", w)
	}
	if s := r.Preferences.VolumeStep; s < 1 || s > 100 {
		return fmt.Errorf("preferences.volume_step must be between 1 and 100, got %d", s)
	}
	if d := r.Preferences.DefaultDevice; d != "" && r.Devices[d] == nil {
		return fmt.Errorf("preferences.default_device %q is not a known device", d)
	}
	for name, dev := range r.Devices {
		if dev == nil || dev.Address == "" {
			return fmt.Errorf("device %q has no address", name)
		}
	}
	if rc := r.Bridge.Reconnect; rc.MinDelay <= 0 || rc.MaxDelay < rc.MinDelay {
		return fmt.Errorf("bridge.reconnect delays must satisfy 0 < min_delay <= max_delay")
	}
	if m := r.Bridge.MQTT; m != nil && m.QoS > 2 {
		return fmt.Errorf("bridge.mqtt.qos must be 0, 1 or 2, got %d", m.QoS)
	}
	return nil
}

// GetDevice retrieves a device by name.
// Returns nil if the device doesn't exist in the registry.
func (r *Registry) GetDevice(name string) *Device {
	return r.Devices[name]
}

// FindByAddress returns the name and entry of the device with the given address.
func (r *Registry) FindByAddress(address string) (string, *Device) {
	for name, d := range r.Devices {
		if d.Address == address {
			return name, d
		}
	}
	return "", nil
}

// EnsureDevice ensures a device entry exists in the registry.
// Returns the device entry (existing or newly created).
func (r *Registry) EnsureDevice(name string) *Device {
	if r.Devices == nil {
		r.Devices = make(map[string]*Device)
	}
	if device, exists := r.Devices[name]; exists {
		return device
	}
	device := &Device{}
	r.Devices[name] = device
	return device
}

// AddDevice records a display under name, replacing any previous entry.
func (r *Registry) AddDevice(name, address, model string) *Device {
	device := r.EnsureDevice(name)
	device.Address = address
	if model != "" {
		device.Model = model
	}
	return device
}

// RemoveDevice deletes a device and clears it as the default.
func (r *Registry) RemoveDevice(name string) bool {
	if _, ok := r.Devices[name]; !ok {
		return false
	}
	delete(r.Devices, name)
	if r.Preferences != nil && r.Preferences.DefaultDevice == name {
		r.Preferences.DefaultDevice = ""
	}
	return true
}

// UpdateDeviceLastSeen updates the last seen timestamp and address for a device.
func (r *Registry) UpdateDeviceLastSeen(name, address string) {
	device := r.EnsureDevice(name)
	device.LastSeen = time.Now()
	device.Address = address
}

// SetDeviceNickname sets a user-friendly nickname for a device.
func (r *Registry) SetDeviceNickname(name, nickname string) {
	device := r.EnsureDevice(name)
	device.Nickname = nickname
}

// Names returns the device names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.Devices))
	for name := range r.Devices {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DeviceNameFor derives a registry name from a model and address, e.g.
// "4k-gb-kj-43x8300d-20" for "BRAVIA 4K GB KJ-43X8300D" at 192.168.1.20.
func DeviceNameFor(model, address string) string {
	base := strings.ToLower(strings.TrimSpace(model))
	base = strings.TrimPrefix(base, "bravia")
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			return r
		case r == ' ' || r == '_' || r == '.':
			return '-'
		}
		return -1
	}, base)
	base = strings.Trim(base, "-")
	for strings.Contains(base, "--") {
		base = strings.ReplaceAll(base, "--", "-")
	}
	if base == "" {
		base = "bravia"
	}
	last := address
	if i := strings.LastIndex(address, "."); i >= 0 {
		last = address[i+1:]
	}
	return base + "-" + last
}
