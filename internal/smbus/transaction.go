// internal/smbus/transaction.go
package smbus

import "go.uber.org/zap"

// runTransaction drives one bus cycle: reset-if-busy, arm, poll to
// completion, decode the status bits, clear them for the next cycle. ctl
// carries the size-class code; the start bit is merged in here, so a host
// that cannot be reset is never armed.
func (c *Controller) runTransaction(ctl uint8) error {
	// The host may hold residual status from a prior cycle, firmware
	// included. Writing a status bit back clears it; one attempt only.
	if sts := c.regs.In(regStatus); sts != 0 {
		c.log.Debug("SMBus busy, resetting", zap.Uint8("status", sts))
		c.regs.Out(regStatus, sts)
		if sts = c.regs.In(regStatus); sts != 0 {
			c.log.Debug("SMBus reset failed", zap.Uint8("status", sts))
			return TxBusyStuck.ToError()
		}
	}

	c.regs.Out(regControl, ctl|enableInt9|ctlStart)

	// The OSB4 always needs a fraction of a second, even for a quick
	// command (chip errata), so the first poll sleeps unconditionally.
	var flags TxStatus
	var sts uint8
	for polls := 0; ; {
		c.sleep()
		sts = c.regs.In(regStatus)
		polls++
		if sts&stsBusy == 0 {
			break
		}
		if polls >= maxPolls {
			// Give up on the in-progress bit, but still decode the
			// rest of the byte: a device error can accompany the
			// timeout.
			flags |= TxTimeout
			break
		}
	}

	if sts&stsFailed != 0 {
		flags |= TxFailed
	}
	if sts&stsCollision != 0 {
		flags |= TxCollision
		// Not self-healing: the clock can stop with a slave stuck
		// mid-transmission. Recovery may need a hard reset.
		c.log.Warn("SMBus collision, bus may be locked until next hard reset",
			zap.Uint16("smba", c.smba))
	}
	if sts&stsNoResponse != 0 {
		flags |= TxNoResponse
	}

	// Leave the status clean for the next cycle whatever the outcome.
	if sts = c.regs.In(regStatus); sts != 0 {
		c.regs.Out(regStatus, sts)
	}
	if sts = c.regs.In(regStatus); sts != 0 {
		c.log.Debug("failed reset at end of transaction", zap.Uint8("status", sts))
	}

	return flags.ToError()
}
