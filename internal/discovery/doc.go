// Package discovery finds BRAVIA displays on the local network with mDNS.
//
// Displays do not advertise the control protocol itself. Every networked
// BRAVIA announces a "_googlecast._tcp" cast receiver, so the scanner browses
// that service and keeps entries whose instance name, host name or "md"
// (model) TXT record contains "BRAVIA".
//
// # Usage Example
//
//	devices, err := discovery.NewScanner(discovery.Options{Wait: 3 * time.Second}).Scan(ctx)
//	if err != nil {
//	    return err
//	}
//	for _, d := range devices {
//	    fmt.Printf("%s (%s)\n", d.Address, d.Model)
//	}
//
// Results are deduplicated by address. Quick mode returns as soon as the
// first display answers.
//
// # Network Requirements
//
// mDNS uses multicast UDP on port 5353; the scanning host must be on the
// same layer 2 segment as the display and multicast must not be filtered.
package discovery
