// Package directory maps hardware addresses to device identities.
//
// A Directory is built once from an address table and is read-only
// afterwards, so a single value can be shared by every capture analysis
// of a run.
package directory

import (
	"errors"
	"fmt"
	"net"
	"sort"
	"strings"

	"github.com/mdevolde/trace-analyzer/internal/config"
	"github.com/mdevolde/trace-analyzer/internal/monitoring"
)

var (
	// ErrUnreadableTable is returned when the address table cannot be opened or parsed.
	ErrUnreadableTable = errors.New("unreadable address table")
	// ErrDuplicateAddress is returned under the reject policy when two
	// devices claim the same hardware address.
	ErrDuplicateAddress = errors.New("duplicate hardware address")
	// ErrInvalidAddress is returned for strings that are not 6-byte hardware addresses.
	ErrInvalidAddress = errors.New("invalid hardware address")
)

// Entry is one row of the address table.
type Entry struct {
	Device  string
	Address string
}

// Directory is an immutable hardware address to device identity mapping.
type Directory struct {
	devices map[string]string
}

// NormalizeAddress renders a hardware address in lowercase colon-separated
// form. Colon, dash and dotted notations are accepted in any letter case.
func NormalizeAddress(addr string) (string, error) {
	hw, err := net.ParseMAC(strings.TrimSpace(addr))
	if err != nil || len(hw) != 6 {
		return "", fmt.Errorf("%w: %q", ErrInvalidAddress, addr)
	}
	return hw.String(), nil
}

// New builds a Directory from entries. Entries with unparsable addresses are
// skipped with a warning. When two entries share an address the policy
// decides: override keeps the last silently, warn keeps the last and logs,
// reject fails with ErrDuplicateAddress.
func New(entries []Entry, policy string) (*Directory, error) {
	devices := make(map[string]string, len(entries))
	for _, e := range entries {
		addr, err := NormalizeAddress(e.Address)
		if err != nil {
			monitoring.Warnf("skipping device %q: %v", e.Device, err)
			continue
		}

		if prev, ok := devices[addr]; ok && prev != e.Device {
			switch policy {
			case config.DuplicateReject:
				return nil, fmt.Errorf("%w: %s claimed by %q and %q", ErrDuplicateAddress, addr, prev, e.Device)
			case config.DuplicateWarn:
				monitoring.Warnf("address %s claimed by %q and %q, keeping %q", addr, prev, e.Device, e.Device)
			}
		}
		devices[addr] = e.Device
	}
	return &Directory{devices: devices}, nil
}

// Lookup resolves a hardware address to its device. The address is matched
// case-insensitively.
func (d *Directory) Lookup(addr string) (string, bool) {
	if d == nil {
		return "", false
	}
	if device, ok := d.devices[addr]; ok {
		return device, true
	}
	device, ok := d.devices[strings.ToLower(addr)]
	return device, ok
}

// Len returns the number of addresses in the directory.
func (d *Directory) Len() int {
	if d == nil {
		return 0
	}
	return len(d.devices)
}

// Devices returns the distinct device identities, sorted.
func (d *Directory) Devices() []string {
	if d == nil {
		return nil
	}
	seen := make(map[string]struct{}, len(d.devices))
	out := make([]string, 0, len(d.devices))
	for _, device := range d.devices {
		if _, ok := seen[device]; ok {
			continue
		}
		seen[device] = struct{}{}
		out = append(out, device)
	}
	sort.Strings(out)
	return out
}
