// internal/smbus/fakes_test.go
package smbus

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/hoichong/osb4/internal/pcibus"
)

// ---- fake register file ----

type regWrite struct {
	off uint8
	val uint8
}

// fakeRegs simulates the OSB4 host register block: status bits clear on
// write-back, the control start bit kicks off a cycle, and the block port
// auto-increments.
type fakeRegs struct {
	status     uint8 // live status register
	sticky     bool  // status write-back has no effect (wedged host)
	busyPolls  int   // status reads after start that still show busy
	postStatus uint8 // status once the busy bit drains (0 = clean cycle)

	started bool
	regs    [16]uint8 // last value written per offset

	reads      []uint8
	writes     []regWrite
	ctrlReads  int
	blockOut   []uint8 // bytes written to the block port
	blockServe []uint8 // bytes served from the block port
	blockIdx   int
}

func (f *fakeRegs) In(off uint8) uint8 {
	f.reads = append(f.reads, off)
	switch off {
	case regStatus:
		if f.started && f.busyPolls > 0 {
			f.busyPolls--
			return f.status | stsBusy
		}
		return f.status
	case regControl:
		f.ctrlReads++
		return f.regs[regControl]
	case regBlockData:
		if f.blockIdx < len(f.blockServe) {
			v := f.blockServe[f.blockIdx]
			f.blockIdx++
			return v
		}
		return 0
	default:
		return f.regs[off]
	}
}

func (f *fakeRegs) Out(off uint8, v uint8) {
	f.writes = append(f.writes, regWrite{off: off, val: v})
	switch off {
	case regStatus:
		if !f.sticky {
			f.status &^= v
		}
	case regControl:
		f.regs[regControl] = v
		if v&ctlStart != 0 {
			f.started = true
			f.status = f.postStatus
		}
	case regBlockData:
		f.blockOut = append(f.blockOut, v)
	default:
		f.regs[off] = v
	}
}

func (f *fakeRegs) wroteTo(off uint8) int {
	n := 0
	for _, w := range f.writes {
		if w.off == off {
			n++
		}
	}
	return n
}

func (f *fakeRegs) readFrom(off uint8) int {
	n := 0
	for _, r := range f.reads {
		if r == off {
			n++
		}
	}
	return n
}

// testController wires a controller straight to a fake register file,
// bypassing setup.
func testController(f *fakeRegs) (*Controller, *int) {
	sleeps := new(int)
	c := &Controller{
		regs:  f,
		log:   zap.NewNop(),
		sleep: func() { *sleeps++ },
		smba:  0x5000,
	}
	return c, sleeps
}

// ---- fake PCI bus ----

type cfgWrite struct {
	off  int64
	val  uint16
	word bool
}

type fakeDevice struct {
	config map[int64]uint8
	writes []cfgWrite
}

func newFakeDevice() *fakeDevice {
	return &fakeDevice{config: make(map[int64]uint8)}
}

func (d *fakeDevice) setWord(off int64, v uint16) {
	d.config[off] = uint8(v)
	d.config[off+1] = uint8(v >> 8)
}

func (d *fakeDevice) ReadConfigByte(off int64) (uint8, error) {
	return d.config[off], nil
}

func (d *fakeDevice) ReadConfigWord(off int64) (uint16, error) {
	return uint16(d.config[off]) | uint16(d.config[off+1])<<8, nil
}

func (d *fakeDevice) WriteConfigByte(off int64, v uint8) error {
	d.config[off] = v
	d.writes = append(d.writes, cfgWrite{off: off, val: uint16(v)})
	return nil
}

func (d *fakeDevice) WriteConfigWord(off int64, v uint16) error {
	d.setWord(off, v)
	d.writes = append(d.writes, cfgWrite{off: off, val: v, word: true})
	return nil
}

type fakeBus struct {
	present bool
	dev     *fakeDevice
}

func (b *fakeBus) Present() bool { return b.present }

func (b *fakeBus) FindFunction0(vendor, device uint16) (pcibus.Device, error) {
	if b.dev == nil {
		return nil, pcibus.ErrNotFound
	}
	return b.dev, nil
}

// ---- fake region reservations ----

type reservation struct {
	base, n uint16
	tag     string
}

type fakeRegions struct {
	busy       bool
	reserveErr error

	reserved []reservation
	released []reservation
}

func (r *fakeRegions) Busy(base, n uint16) bool { return r.busy }

func (r *fakeRegions) Reserve(base, n uint16, tag string) error {
	if r.reserveErr != nil {
		return r.reserveErr
	}
	r.reserved = append(r.reserved, reservation{base: base, n: n, tag: tag})
	return nil
}

func (r *fakeRegions) Release(base, n uint16) {
	r.released = append(r.released, reservation{base: base, n: n})
}

// testDeps builds Deps over the fakes with a no-op sleep.
func testDeps(bus *fakeBus, regions *fakeRegions, f *fakeRegs) Deps {
	return Deps{
		Bus:     bus,
		Regions: regions,
		Open: func(base uint16) (RegisterFile, error) {
			if f == nil {
				return nil, fmt.Errorf("no window at 0x%04x", base)
			}
			return f, nil
		},
		Log:   zap.NewNop(),
		Sleep: func() {},
	}
}
