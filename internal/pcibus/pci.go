// internal/pcibus/pci.go

// Package pcibus is the driver's narrow view of PCI: locate a function-0
// device by identity and read or write its configuration space.
package pcibus

import "errors"

// ErrNotFound means no function-0 device matched.
var ErrNotFound = errors.New("pcibus: device not found")

// Device is configuration-space access to one PCI function. Multi-byte
// values use PCI's little-endian layout.
type Device interface {
	ReadConfigByte(off int64) (uint8, error)
	ReadConfigWord(off int64) (uint16, error)
	WriteConfigByte(off int64, v uint8) error
	WriteConfigWord(off int64, v uint16) error
}

// Bus enumerates PCI devices.
type Bus interface {
	// Present reports whether the platform exposes a PCI bus at all.
	Present() bool

	// FindFunction0 returns the first function-0 device with the given
	// vendor/device pair. Matching functions other than 0 are skipped,
	// never returned.
	FindFunction0(vendor, device uint16) (Device, error)
}
