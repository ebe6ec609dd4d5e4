// internal/smbus/access.go
package smbus

// Access performs one SMBus transaction: it loads the registers the size
// class needs, runs the bus cycle, and for successful reads marshals the
// result back into data. Callers must serialize; there is at most one
// transaction in flight per controller.
//
// data may be nil for Quick and for Byte writes, which carry no payload.
func (c *Controller) Access(addr uint8, rw ReadWrite, command uint8, size SizeClass, data *Data) error {
	var ctl uint8

	switch size {
	case Quick:
		c.regs.Out(regAddress, addrByte(addr, rw))
		ctl = ctlQuick
	case Byte:
		c.regs.Out(regAddress, addrByte(addr, rw))
		if rw == Write {
			c.regs.Out(regCommand, command)
		}
		ctl = ctlByte
	case ByteData:
		c.regs.Out(regAddress, addrByte(addr, rw))
		c.regs.Out(regCommand, command)
		if rw == Write {
			c.regs.Out(regData0, data.Byte)
		}
		ctl = ctlByteData
	case WordData:
		c.regs.Out(regAddress, addrByte(addr, rw))
		c.regs.Out(regCommand, command)
		if rw == Write {
			c.regs.Out(regData0, uint8(data.Word&0xff))
			c.regs.Out(regData1, uint8(data.Word>>8))
		}
		ctl = ctlWordData
	case BlockData:
		c.regs.Out(regAddress, addrByte(addr, rw))
		c.regs.Out(regCommand, command)
		if rw == Write {
			n := int(data.Block[0])
			if n > BlockMax {
				n = BlockMax
			}
			c.regs.Out(regData0, uint8(n))
			c.regs.In(regControl) // reset the block-data pointer
			for i := 1; i <= n; i++ {
				c.regs.Out(regBlockData, data.Block[i])
			}
		}
		ctl = ctlBlockData
	default:
		// Process-call and anything newer never reach the engine.
		return ErrNotSupported
	}

	if err := c.runTransaction(ctl); err != nil {
		return err
	}

	if rw == Write || size == Quick {
		return nil
	}

	switch size {
	case Byte, ByteData:
		// The chip docs do not say whether a plain byte read lands in
		// data0 or in the command register. data0 is assumed.
		data.Byte = c.regs.In(regData0)
	case WordData:
		data.Word = uint16(c.regs.In(regData0)) | uint16(c.regs.In(regData1))<<8
	case BlockData:
		n := c.regs.In(regData0)
		if n > BlockMax {
			n = BlockMax
		}
		data.Block[0] = n
		c.regs.In(regControl) // reset the block-data pointer
		for i := 1; i <= int(n); i++ {
			data.Block[i] = c.regs.In(regBlockData)
		}
	}
	return nil
}

// addrByte packs a 7-bit slave address and the direction bit the way the
// address register expects them.
func addrByte(addr uint8, rw ReadWrite) uint8 {
	return (addr&0x7f)<<1 | uint8(rw)&0x01
}
