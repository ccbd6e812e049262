package control

import (
	"context"
	"strings"

	"github.com/muurk/bravia/internal/device"
	"github.com/muurk/bravia/internal/protocol"
)

// DefaultInterface is the wired interface name used when none is given.
const DefaultInterface = "eth0"

func validateInterface(netif string) error {
	if netif == "" || len(netif) > protocol.ParameterSize {
		return device.NewValidationError("interface name must be 1 to %d characters, got %q", protocol.ParameterSize, netif)
	}
	for i := 0; i < len(netif); i++ {
		ch := netif[i]
		if !(ch >= 'a' && ch <= 'z' || ch >= 'A' && ch <= 'Z' || ch >= '0' && ch <= '9') {
			return device.NewValidationError("interface name %q must be alphanumeric", netif)
		}
	}
	return nil
}

// BroadcastAddress returns the IPv4 broadcast address of a network
// interface on the display, e.g. "eth0" or "wlan0".
func (c *Controller) BroadcastAddress(ctx context.Context, netif string) (string, error) {
	if netif == "" {
		netif = DefaultInterface
	}
	if err := validateInterface(netif); err != nil {
		return "", err
	}
	pkt, err := c.enquire(ctx, protocol.CommandBroadcast, padHash(netif))
	if err != nil {
		return "", err
	}
	return trimHash(pkt.Parameters), nil
}

// MACAddress returns the MAC address of a network interface on the display,
// formatted as six dash-separated hex pairs.
func (c *Controller) MACAddress(ctx context.Context, netif string) (string, error) {
	if netif == "" {
		netif = DefaultInterface
	}
	if err := validateInterface(netif); err != nil {
		return "", err
	}
	pkt, err := c.enquire(ctx, protocol.CommandMACAddress, padHash(netif))
	if err != nil {
		return "", err
	}
	return formatMAC(trimHash(pkt.Parameters)), nil
}

func formatMAC(raw string) string {
	if len(raw)%2 != 0 {
		return raw
	}
	pairs := make([]string, 0, len(raw)/2)
	for i := 0; i < len(raw); i += 2 {
		pairs = append(pairs, strings.ToUpper(raw[i:i+2]))
	}
	return strings.Join(pairs, "-")
}
