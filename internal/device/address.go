package device

import (
	"net/netip"
	"strings"
)

// MaxModelLength is the longest model name accepted by New.
const MaxModelLength = 100

// ValidateAddress checks that address is a dotted-quad IPv4 host address.
// Octets of 0 and 255 are valid in host addresses of networks wider than /24
// and are accepted. The unspecified, limited broadcast and multicast
// addresses can never be a display and are rejected.
func ValidateAddress(address string) error {
	if address == "" {
		return NewValidationError("address is required")
	}
	if strings.Count(address, ".") != 3 {
		return NewValidationError("address %q must be an IPv4 address", address)
	}

	ip, err := netip.ParseAddr(address)
	if err != nil || !ip.Is4() {
		return NewValidationError("address %q must be an IPv4 address", address)
	}

	switch {
	case ip.IsUnspecified():
		return NewValidationError("address %q is the unspecified address", address)
	case ip == netip.AddrFrom4([4]byte{255, 255, 255, 255}):
		return NewValidationError("address %q is the broadcast address", address)
	case ip.IsMulticast():
		return NewValidationError("address %q is a multicast address", address)
	}
	return nil
}

// ValidateModel checks the optional model name.
func ValidateModel(model string) error {
	if len(model) > MaxModelLength {
		return NewValidationError("model must be at most %d characters", MaxModelLength)
	}
	return nil
}
