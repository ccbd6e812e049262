package discovery

import (
	"context"
	"fmt"
	"net"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/grandcat/zeroconf"
	"go.uber.org/zap"

	"github.com/muurk/bravia/internal/logging"
)

const (
	// ServiceType is the mDNS service type BRAVIA displays advertise.
	// The control protocol has no service of its own; the cast receiver is
	// the one every networked BRAVIA announces.
	ServiceType = "_googlecast._tcp"

	// ServiceDomain is the mDNS domain (typically "local.")
	ServiceDomain = "local."

	// DefaultWait is how long a scan listens for answers
	DefaultWait = 3 * time.Second

	// MinWait and MaxWait bound Options.Wait
	MinWait = 1 * time.Second
	MaxWait = 10 * time.Second

	brandMarker = "BRAVIA"
)

// Options controls a scan.
type Options struct {
	// Wait is how long to listen. Zero means DefaultWait.
	Wait time.Duration
	// Quick returns as soon as the first display is found.
	Quick bool
}

// Validate checks the option ranges.
func (o Options) Validate() error {
	if o.Wait != 0 && (o.Wait < MinWait || o.Wait > MaxWait) {
		return fmt.Errorf("wait must be between %v and %v, got %v", MinWait, MaxWait, o.Wait)
	}
	return nil
}

// Browser abstracts the mDNS resolver so scans can be tested without a network.
type Browser interface {
	Browse(ctx context.Context, service, domain string, entries chan<- *zeroconf.ServiceEntry) error
}

// Scanner handles mDNS device discovery
type Scanner struct {
	Options Options

	newBrowser func() (Browser, error)
}

// NewScanner creates a new mDNS scanner
func NewScanner(opts Options) *Scanner {
	return &Scanner{
		Options: opts,
		newBrowser: func() (Browser, error) {
			return zeroconf.NewResolver(nil)
		},
	}
}

// Scan discovers displays on the local network. Results are deduplicated
// by address and sorted by address.
func (s *Scanner) Scan(ctx context.Context) ([]*Device, error) {
	if err := s.Options.Validate(); err != nil {
		return nil, err
	}
	wait := s.Options.Wait
	if wait == 0 {
		wait = DefaultWait
	}

	ctx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()

	browser, err := s.newBrowser()
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	entries := make(chan *zeroconf.ServiceEntry)
	var (
		mu      sync.Mutex
		devices = make(map[string]*Device)
	)
	collected := make(chan struct{})

	go func() {
		defer close(collected)
		for entry := range entries {
			dev := parseServiceEntry(entry)
			if dev == nil {
				continue
			}
			mu.Lock()
			if _, seen := devices[dev.Address]; !seen {
				devices[dev.Address] = dev
				logging.Debug("Discovered display",
					zap.String("address", dev.Address),
					zap.String("model", dev.Model),
				)
			}
			mu.Unlock()
			if s.Options.Quick {
				cancel()
			}
		}
	}()

	if err := browser.Browse(ctx, ServiceType, ServiceDomain, entries); err != nil {
		return nil, fmt.Errorf("failed to browse for mDNS services: %w", err)
	}

	<-ctx.Done()

	// The resolver closes entries once the browse context ends.
	select {
	case <-collected:
	case <-time.After(100 * time.Millisecond):
	}

	mu.Lock()
	defer mu.Unlock()
	list := make([]*Device, 0, len(devices))
	for _, d := range devices {
		list = append(list, d)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Address < list[j].Address })
	return list, nil
}

// isBravia applies the name/model filter.
func isBravia(entry *zeroconf.ServiceEntry, metadata map[string]string) bool {
	return strings.Contains(entry.Instance, brandMarker) ||
		strings.Contains(entry.HostName, brandMarker) ||
		strings.Contains(metadata["md"], brandMarker)
}

// parseServiceEntry converts a zeroconf service entry to a Device.
// Returns nil if the entry is not a BRAVIA display or has no IPv4 address.
func parseServiceEntry(entry *zeroconf.ServiceEntry) *Device {
	if entry == nil {
		return nil
	}

	metadata := make(map[string]string)
	for _, txt := range entry.Text {
		parts := strings.SplitN(txt, "=", 2)
		if len(parts) == 2 {
			metadata[parts[0]] = parts[1]
		} else {
			metadata[parts[0]] = ""
		}
	}

	if !isBravia(entry, metadata) {
		return nil
	}

	var address string
	for _, addr := range entry.AddrIPv4 {
		if v4 := addr.To4(); v4 != nil && !v4.Equal(net.IPv4zero) {
			address = v4.String()
			break
		}
	}
	if address == "" {
		return nil
	}

	model := metadata["fn"]
	if model == "" {
		model = metadata["md"]
	}

	return &Device{
		Name:         entry.Instance,
		Hostname:     entry.HostName,
		Address:      address,
		Model:        model,
		Metadata:     metadata,
		DiscoveredAt: time.Now(),
	}
}

// Scan is a convenience function using default options
func Scan(ctx context.Context, wait time.Duration) ([]*Device, error) {
	return NewScanner(Options{Wait: wait}).Scan(ctx)
}

// QuickScan returns as soon as the first display answers
func QuickScan(ctx context.Context) ([]*Device, error) {
	return NewScanner(Options{Quick: true}).Scan(ctx)
}

// FindDevice scans until a display with the given address answers
func FindDevice(ctx context.Context, address string, wait time.Duration) (*Device, error) {
	devices, err := Scan(ctx, wait)
	if err != nil {
		return nil, err
	}
	for _, d := range devices {
		if d.Address == address {
			return d, nil
		}
	}
	return nil, fmt.Errorf("display %s not found within %v", address, wait)
}
