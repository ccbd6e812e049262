package discovery

import (
	"fmt"
	"time"
)

// Device represents a display found on the network
type Device struct {
	// Name is the mDNS service instance name (e.g., "BRAVIA-4K-GB-a1b2c3")
	Name string

	// Hostname is the mDNS hostname (e.g., "a1b2c3d4.local.")
	Hostname string

	// Address is the IPv4 address used for the control connection
	Address string

	// Model is the family name from the "fn" TXT record, falling back to "md"
	// (e.g., "BRAVIA 4K GB KJ-43X8300D")
	Model string

	// Metadata contains all TXT record data ("id", "md", "fn", "ve", ...)
	Metadata map[string]string

	// DiscoveredAt is when the device was discovered
	DiscoveredAt time.Time
}

// String returns a human-readable string representation of the device
func (d *Device) String() string {
	if d.Model == "" {
		return fmt.Sprintf("BRAVIA at %s", d.Address)
	}
	return fmt.Sprintf("%s at %s", d.Model, d.Address)
}

// GetMetadata retrieves a metadata value by key, or returns empty string if not found
func (d *Device) GetMetadata(key string) string {
	if d.Metadata == nil {
		return ""
	}
	return d.Metadata[key]
}
