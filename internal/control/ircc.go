package control

import (
	"context"
	_ "embed"
	"fmt"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/muurk/bravia/internal/device"
	"github.com/muurk/bravia/internal/protocol"
)

//go:embed ircc.yaml
var irccYAML []byte

// IRCCCode is one remote control button.
type IRCCCode struct {
	Name string `yaml:"name" json:"name"`
	Code int    `yaml:"code" json:"code"`
}

type irccFile struct {
	Version int        `yaml:"version"`
	Codes   []IRCCCode `yaml:"codes"`
}

// IRCCTable maps button names to codes. Lookups ignore case, spaces,
// dashes and underscores, so "volume up" finds VolumeUp.
type IRCCTable struct {
	codes []IRCCCode
	index map[string]int
}

var (
	defaultTableOnce sync.Once
	defaultTable     *IRCCTable
	defaultTableErr  error
)

// DefaultIRCCTable returns the embedded code table.
func DefaultIRCCTable() (*IRCCTable, error) {
	defaultTableOnce.Do(func() {
		defaultTable, defaultTableErr = ParseIRCCTable(irccYAML)
	})
	return defaultTable, defaultTableErr
}

// ParseIRCCTable decodes a YAML code table.
func ParseIRCCTable(data []byte) (*IRCCTable, error) {
	var f irccFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse IRCC table: %w", err)
	}
	if f.Version != 1 {
		return nil, fmt.Errorf("unsupported IRCC table version %d (expected 1)", f.Version)
	}

	t := &IRCCTable{index: make(map[string]int, len(f.Codes))}
	for _, c := range f.Codes {
		key := normalizeName(c.Name)
		if key == "" {
			return nil, fmt.Errorf("IRCC table entry with code %d has no name", c.Code)
		}
		if _, dup := t.index[key]; dup {
			return nil, fmt.Errorf("duplicate IRCC name %q", c.Name)
		}
		if c.Code < 0 {
			return nil, fmt.Errorf("IRCC code for %q is negative", c.Name)
		}
		t.index[key] = c.Code
		t.codes = append(t.codes, c)
	}
	sort.Slice(t.codes, func(i, j int) bool { return t.codes[i].Name < t.codes[j].Name })
	return t, nil
}

func normalizeName(s string) string {
	r := strings.NewReplacer(" ", "", "-", "", "_", "")
	return strings.ToLower(r.Replace(strings.TrimSpace(s)))
}

// Lookup returns the code for a button name.
func (t *IRCCTable) Lookup(name string) (int, bool) {
	code, ok := t.index[normalizeName(name)]
	return code, ok
}

// Codes returns all entries sorted by name.
func (t *IRCCTable) Codes() []IRCCCode {
	out := make([]IRCCCode, len(t.codes))
	copy(out, t.codes)
	return out
}

// Names returns all button names, sorted.
func (t *IRCCTable) Names() []string {
	names := make([]string, len(t.codes))
	for i, c := range t.codes {
		names[i] = c.Name
	}
	return names
}

// IRCCNames returns the button names of the embedded table.
func IRCCNames() []string {
	t, err := DefaultIRCCTable()
	if err != nil {
		return nil
	}
	return t.Names()
}

// SendIRCC emits the remote control code for the named button.
func (c *Controller) SendIRCC(ctx context.Context, name string) error {
	table, err := DefaultIRCCTable()
	if err != nil {
		return err
	}
	code, ok := table.Lookup(name)
	if !ok {
		return device.NewValidationError("unknown IRCC button %q", name)
	}
	return c.SendIRCCCode(ctx, code)
}

// SendIRCCCode emits a raw remote control code.
func (c *Controller) SendIRCCCode(ctx context.Context, code int) error {
	if code < 0 {
		return device.NewValidationError("IRCC code must not be negative, got %d", code)
	}
	return c.controlExpectSuccess(ctx, protocol.CommandIRCC, fmt.Sprintf("%016d", code))
}
