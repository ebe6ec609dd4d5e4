// internal/ioport/window.go
package ioport

// Window is an offset-addressed view of a port range starting at base.
type Window struct {
	ports Ports
	base  uint16
}

func NewWindow(ports Ports, base uint16) *Window {
	return &Window{ports: ports, base: base}
}

func (w *Window) In(off uint8) uint8 {
	return w.ports.ReadByte(w.base + uint16(off))
}

func (w *Window) Out(off uint8, v uint8) {
	w.ports.WriteByte(w.base+uint16(off), v)
}
