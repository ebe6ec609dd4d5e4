// internal/smbus/controller.go
package smbus

import (
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/hoichong/osb4/internal/ioport"
	"github.com/hoichong/osb4/internal/pcibus"
)

// RegisterFile is byte access to the host register window. Offsets are
// relative to the base address. Writes reach the device before the next
// read returns.
type RegisterFile interface {
	In(off uint8) uint8
	Out(off uint8, v uint8)
}

// Config holds the two operator escape hatches. Both assume the firmware
// already performed every other part of device setup; on a platform that
// was not prepared for them they can leave the bus unusable.
type Config struct {
	// ForceEnable sets the controller enable bit if firmware left it
	// clear. DANGEROUS.
	ForceEnable bool

	// ForceAddr relocates the controller to the given I/O address,
	// masked to a 16-byte boundary. Zero means use the address the
	// firmware programmed. EXTREMELY DANGEROUS.
	ForceAddr uint16
}

// Deps are the platform collaborators Setup drives. Bus, Regions and Open
// are required; Log and Sleep have working defaults.
type Deps struct {
	Bus     pcibus.Bus
	Regions ioport.Reservations
	Open    func(base uint16) (RegisterFile, error)

	Log *zap.Logger

	// Sleep suspends for one scheduler quantum between completion polls.
	Sleep func()
}

// Stage tracks how far initialization got, so teardown unwinds only what
// was actually reached.
type Stage int

const (
	StageNone Stage = iota
	StageReserved
	StageRegistered
)

// Controller is the one OSB4 SMBus host of this process. Callers must
// serialize Access; the register set has no reentrancy protection.
type Controller struct {
	regs    RegisterFile
	regions ioport.Reservations
	log     *zap.Logger
	sleep   func()

	smba  uint16
	stage Stage

	registry *Registry
	refs     atomic.Int32
}

// Setup finds the OSB4, validates or forces its host configuration, and
// reserves the 8-byte register window. On success the returned controller
// owns the window until Close.
func Setup(cfg Config, deps Deps) (*Controller, error) {
	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}
	sleep := deps.Sleep
	if sleep == nil {
		sleep = func() { time.Sleep(time.Millisecond) }
	}

	if deps.Bus == nil || !deps.Bus.Present() {
		return nil, ErrNoBus
	}

	dev, err := deps.Bus.FindFunction0(VendorServerWorks, DeviceOSB4)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotFound, err)
	}

	forceEnable := cfg.ForceEnable
	var smba uint16
	if cfg.ForceAddr != 0 {
		smba = cfg.ForceAddr & 0xfff0
		// Relocation enables the controller by itself.
		forceEnable = false
	} else {
		w, err := dev.ReadConfigWord(cfgBaseAddr)
		if err != nil {
			return nil, fmt.Errorf("smbus: read base address: %w", err)
		}
		// The low 4 bits are not part of the address.
		smba = w & 0xfff0
	}

	if deps.Regions.Busy(smba, ioWindow) {
		return nil, fmt.Errorf("%w: 0x%04x", ErrRegionBusy, smba)
	}

	hc, err := dev.ReadConfigByte(cfgHostConfig)
	if err != nil {
		return nil, fmt.Errorf("smbus: read host config: %w", err)
	}

	switch {
	case cfg.ForceAddr != 0:
		// Disable, move, re-enable. Assumes the firmware already did
		// I/O space allocation for the new window.
		if err := dev.WriteConfigByte(cfgHostConfig, hc&^hostConfigEnable); err != nil {
			return nil, fmt.Errorf("smbus: disable controller: %w", err)
		}
		if err := dev.WriteConfigWord(cfgBaseAddr, smba); err != nil {
			return nil, fmt.Errorf("smbus: write base address: %w", err)
		}
		if err := dev.WriteConfigByte(cfgHostConfig, hc|hostConfigEnable); err != nil {
			return nil, fmt.Errorf("smbus: enable controller: %w", err)
		}
		log.Warn("WARNING: OSB4 SMBus interface set to new address",
			zap.Uint16("smba", smba))
	case hc&hostConfigEnable == 0:
		if !forceEnable {
			return nil, ErrDisabled
		}
		if err := dev.WriteConfigByte(cfgHostConfig, hc|hostConfigEnable); err != nil {
			return nil, fmt.Errorf("smbus: enable controller: %w", err)
		}
		log.Warn("WARNING: OSB4 SMBus interface has been forcefully enabled")
	}

	// The Busy probe above can race another driver; this is the
	// authoritative claim.
	if err := deps.Regions.Reserve(smba, ioWindow, regionTag); err != nil {
		return nil, fmt.Errorf("%w: 0x%04x: %v", ErrReservation, smba, err)
	}

	regs, err := deps.Open(smba)
	if err != nil {
		deps.Regions.Release(smba, ioWindow)
		return nil, fmt.Errorf("smbus: open register window: %w", err)
	}

	c := &Controller{
		regs:    regs,
		regions: deps.Regions,
		log:     log,
		sleep:   sleep,
		smba:    smba,
		stage:   StageReserved,
	}
	log.Info("OSB4 SMBus host detected", zap.Uint16("smba", smba))
	return c, nil
}

// BaseAddress returns the validated base I/O address.
func (c *Controller) BaseAddress() uint16 { return c.smba }

func (c *Controller) Name() string {
	return fmt.Sprintf("SMBus OSB4 adapter at %04x", c.smba)
}

// Stage reports how far initialization got.
func (c *Controller) Stage() Stage { return c.stage }

// Capabilities lists the supported size classes. Process-call is never
// advertised.
func (c *Controller) Capabilities() []SizeClass {
	return []SizeClass{Quick, Byte, ByteData, WordData, BlockData}
}

// Acquire and Release maintain a usage count so the controller is not torn
// down mid-use.
func (c *Controller) Acquire() { c.refs.Add(1) }

func (c *Controller) Release() { c.refs.Add(-1) }

// InUse reports whether any caller still holds an Acquire.
func (c *Controller) InUse() bool { return c.refs.Load() > 0 }

// Close unwinds whichever initialization stages were reached. It is
// idempotent and safe to call on a partially set up controller. It must not
// run concurrently with Access.
func (c *Controller) Close() {
	if c.stage >= StageRegistered && c.registry != nil {
		c.registry.Remove(c)
	}
	if c.stage >= StageReserved {
		c.regions.Release(c.smba, ioWindow)
	}
	c.stage = StageNone
}
