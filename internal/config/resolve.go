package config

import (
	"errors"
	"fmt"
	"net/netip"
)

// ErrNoDevice is returned by Resolve when nothing was given and no default
// device is configured.
var ErrNoDevice = errors.New("no device given and no default device configured")

// Target is a display chosen by name or address.
type Target struct {
	Name    string // registry name, empty for an unregistered address
	Address string
	Model   string
}

// Resolve turns a --device value into a Target. The value may be a
// registry name or an IPv4 address; an empty value selects the default
// device.
func (r *Registry) Resolve(nameOrAddress string) (Target, error) {
	if nameOrAddress == "" {
		if r.Preferences == nil || r.Preferences.DefaultDevice == "" {
			return Target{}, ErrNoDevice
		}
		nameOrAddress = r.Preferences.DefaultDevice
	}

	if d := r.GetDevice(nameOrAddress); d != nil {
		return Target{Name: nameOrAddress, Address: d.Address, Model: d.Model}, nil
	}

	if _, err := netip.ParseAddr(nameOrAddress); err == nil {
		name, d := r.FindByAddress(nameOrAddress)
		if d != nil {
			return Target{Name: name, Address: d.Address, Model: d.Model}, nil
		}
		return Target{Address: nameOrAddress}, nil
	}

	return Target{}, fmt.Errorf("unknown device %q (not a registered name or an IP address)", nameOrAddress)
}
