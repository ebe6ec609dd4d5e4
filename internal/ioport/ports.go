// internal/ioport/ports.go

// Package ioport is port-mapped I/O for register-level drivers: raw byte
// access to the port space, offset-addressed windows, and reservation
// bookkeeping for port ranges.
package ioport

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// Ports is raw byte access to the I/O port space. Every access is a
// syscall, so a write completes before the next read returns — the
// non-posted convention register protocols rely on.
type Ports interface {
	ReadByte(port uint16) uint8
	WriteByte(port uint16, v uint8)
}

const defaultPortDevice = "/dev/port"

// DevPorts implements Ports over the kernel's port device.
type DevPorts struct {
	f *os.File
}

// OpenDevPorts opens the port device at path, or /dev/port when path is
// empty. Needs root.
func OpenDevPorts(path string) (*DevPorts, error) {
	if path == "" {
		path = defaultPortDevice
	}
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("ioport: %w", err)
	}
	return &DevPorts{f: f}, nil
}

// ReadByte returns 0xFF, the floating-bus value, if the read fails.
func (p *DevPorts) ReadByte(port uint16) uint8 {
	var b [1]byte
	if n, err := unix.Pread(int(p.f.Fd()), b[:], int64(port)); n != 1 || err != nil {
		return 0xFF
	}
	return b[0]
}

func (p *DevPorts) WriteByte(port uint16, v uint8) {
	b := [1]byte{v}
	_, _ = unix.Pwrite(int(p.f.Fd()), b[:], int64(port))
}

func (p *DevPorts) Close() error { return p.f.Close() }
