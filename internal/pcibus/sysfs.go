// internal/pcibus/sysfs.go
package pcibus

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const defaultSysfsRoot = "/sys/bus/pci/devices"

// SysfsBus walks the kernel's PCI device directory. The root is
// overridable so tests can point it at a synthetic tree.
type SysfsBus struct {
	Root string
}

// NewSysfsBus returns a bus over root, or over /sys/bus/pci/devices when
// root is empty.
func NewSysfsBus(root string) *SysfsBus {
	return &SysfsBus{Root: root}
}

func (b *SysfsBus) root() string {
	if b.Root == "" {
		return defaultSysfsRoot
	}
	return b.Root
}

func (b *SysfsBus) Present() bool {
	fi, err := os.Stat(b.root())
	return err == nil && fi.IsDir()
}

func (b *SysfsBus) FindFunction0(vendor, device uint16) (Device, error) {
	entries, err := os.ReadDir(b.root())
	if err != nil {
		return nil, fmt.Errorf("pcibus: %w", err)
	}

	for _, e := range entries {
		// Entries are named like 0000:00:0f.0; the suffix is the
		// function number.
		name := e.Name()
		if !strings.HasSuffix(name, ".0") {
			continue
		}
		dir := filepath.Join(b.root(), name)
		v, err := readHexFile(filepath.Join(dir, "vendor"))
		if err != nil {
			continue
		}
		d, err := readHexFile(filepath.Join(dir, "device"))
		if err != nil {
			continue
		}
		if uint16(v) == vendor && uint16(d) == device {
			return &sysfsDevice{config: filepath.Join(dir, "config")}, nil
		}
	}
	return nil, ErrNotFound
}

func readHexFile(path string) (uint, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	var v uint
	if n, err := fmt.Fscanf(f, "0x%x", &v); n != 1 {
		return 0, fmt.Errorf("pcibus: parse %s: %v", path, err)
	}
	return v, nil
}

// sysfsDevice reads and writes the per-device config file at byte offsets.
type sysfsDevice struct {
	config string
}

func (d *sysfsDevice) configRW(off int64, b []byte, write bool) error {
	flag := os.O_RDONLY
	if write {
		flag = os.O_WRONLY
	}
	f, err := os.OpenFile(d.config, flag, 0)
	if err != nil {
		return fmt.Errorf("pcibus: %w", err)
	}
	defer f.Close()
	if write {
		_, err = f.WriteAt(b, off)
	} else {
		_, err = f.ReadAt(b, off)
	}
	if err != nil {
		return fmt.Errorf("pcibus: config offset 0x%x: %w", off, err)
	}
	return nil
}

func (d *sysfsDevice) ReadConfigByte(off int64) (uint8, error) {
	var b [1]byte
	if err := d.configRW(off, b[:], false); err != nil {
		return 0, err
	}
	return b[0], nil
}

func (d *sysfsDevice) ReadConfigWord(off int64) (uint16, error) {
	var b [2]byte
	if err := d.configRW(off, b[:], false); err != nil {
		return 0, err
	}
	return uint16(b[0]) | uint16(b[1])<<8, nil
}

func (d *sysfsDevice) WriteConfigByte(off int64, v uint8) error {
	b := [1]byte{v}
	return d.configRW(off, b[:], true)
}

func (d *sysfsDevice) WriteConfigWord(off int64, v uint16) error {
	b := [2]byte{byte(v), byte(v >> 8)}
	return d.configRW(off, b[:], true)
}
