// internal/smbus/regs.go
package smbus

// ServerWorks OSB4 south bridge, function 0 owns the SMBus host.
const (
	VendorServerWorks uint16 = 0x1166
	DeviceOSB4        uint16 = 0x0200
)

// Host register offsets, relative to the base I/O address.
const (
	regStatus      uint8 = 0x0 // host status
	regSlaveStatus uint8 = 0x1
	regControl     uint8 = 0x2 // size class + start
	regCommand     uint8 = 0x3 // command code
	regAddress     uint8 = 0x4 // slave address + direction
	regData0       uint8 = 0x5
	regData1       uint8 = 0x6
	regBlockData   uint8 = 0x7 // shared block port, auto-incrementing
)

// Slave-side registers, present in the window but unused by the host path.
const (
	regSlaveControl uint8 = 0x8
	regShadowCmd    uint8 = 0x9
)

// PCI configuration space offsets.
const (
	cfgBaseAddr   int64 = 0x90 // SMBus base address, low 4 bits not decoded
	cfgHostConfig int64 = 0xD2
	cfgRevision   int64 = 0xD6
)

// hostConfigEnable is the controller enable bit in the host config register.
const hostConfigEnable uint8 = 0x01

// Size-class codes for the control register.
const (
	ctlQuick     uint8 = 0x00
	ctlByte      uint8 = 0x04
	ctlByteData  uint8 = 0x08
	ctlWordData  uint8 = 0x0C
	ctlBlockData uint8 = 0x14
)

// ctlStart arms the host; merged into the same control write as the
// size-class code.
const ctlStart uint8 = 0x40

// enableInt9 would route completion to interrupt 9. Completion is polled,
// so this stays zero.
const enableInt9 uint8 = 0

// Host status register bits. Writing a set bit back clears it.
const (
	stsBusy       uint8 = 0x01
	stsNoResponse uint8 = 0x04
	stsCollision  uint8 = 0x08
	stsFailed     uint8 = 0x10
)

// maxPolls bounds the completion wait: one sleep quantum per iteration.
const maxPolls = 500

// ioWindow is the size of the host register window reserved at the base
// address.
const ioWindow uint16 = 8

// regionTag identifies our reservation of the I/O window.
const regionTag = "osb4-smbus"
