// internal/smbus/ops.go
package smbus

// Typed wrappers over Access for the five supported size classes.

func (c *Controller) Quick(addr uint8, rw ReadWrite) error {
	return c.Access(addr, rw, 0, Quick, nil)
}

func (c *Controller) ReadByte(addr uint8) (uint8, error) {
	var d Data
	if err := c.Access(addr, Read, 0, Byte, &d); err != nil {
		return 0, err
	}
	return d.Byte, nil
}

// WriteByte sends one byte; the value travels in the command register.
func (c *Controller) WriteByte(addr, value uint8) error {
	return c.Access(addr, Write, value, Byte, nil)
}

func (c *Controller) ReadByteData(addr, command uint8) (uint8, error) {
	var d Data
	if err := c.Access(addr, Read, command, ByteData, &d); err != nil {
		return 0, err
	}
	return d.Byte, nil
}

func (c *Controller) WriteByteData(addr, command, value uint8) error {
	d := Data{Byte: value}
	return c.Access(addr, Write, command, ByteData, &d)
}

func (c *Controller) ReadWordData(addr, command uint8) (uint16, error) {
	var d Data
	if err := c.Access(addr, Read, command, WordData, &d); err != nil {
		return 0, err
	}
	return d.Word, nil
}

func (c *Controller) WriteWordData(addr, command uint8, value uint16) error {
	d := Data{Word: value}
	return c.Access(addr, Write, command, WordData, &d)
}

func (c *Controller) ReadBlockData(addr, command uint8) ([]byte, error) {
	var d Data
	if err := c.Access(addr, Read, command, BlockData, &d); err != nil {
		return nil, err
	}
	n := int(d.Block[0])
	out := make([]byte, n)
	copy(out, d.Block[1:1+n])
	return out, nil
}

// WriteBlockData sends up to BlockMax bytes; longer slices are truncated.
func (c *Controller) WriteBlockData(addr, command uint8, value []byte) error {
	n := len(value)
	if n > BlockMax {
		n = BlockMax
	}
	var d Data
	d.Block[0] = uint8(n)
	copy(d.Block[1:], value[:n])
	return c.Access(addr, Write, command, BlockData, &d)
}
