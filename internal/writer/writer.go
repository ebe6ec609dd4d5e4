// internal/writer/writer.go
package writer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hoichong/osb4/internal/poller"
)

// EndpointClient is the exact contract the writer uses.
// IMPORTANT: There must be NO other version of this interface anywhere.
type EndpointClient interface {
	WriteRegisters(unitID uint8, addr uint16, regs []uint16) error
}

// Register footprint of one read result at a destination.
const registersPerBlock = 17 // length register + 16 packed registers

type writerImpl struct {
	plan    Plan
	clients map[string]EndpointClient
}

func New(plan Plan, clients map[string]EndpointClient) Writer {
	return &writerImpl{
		plan:    plan,
		clients: clients,
	}
}

// Write delivers a poll snapshot to every configured target. A failed
// poll produces no data writes; status delivery is a separate concern.
func (w *writerImpl) Write(res poller.PollResult) error {
	if res.Err != nil {
		return nil
	}

	var errs []string

	for _, tgt := range w.plan.Targets {
		cli := w.clients[tgt.Endpoint]
		if cli == nil {
			errs = append(errs, fmt.Sprintf(
				"writer: missing client for endpoint %s",
				tgt.Endpoint,
			))
			continue
		}

		addr := tgt.Base

		for _, b := range res.Blocks {
			regs := encodeBlock(b)

			if err := cli.WriteRegisters(tgt.UnitID, addr, regs); err != nil {
				errs = append(errs, fmt.Sprintf(
					"writer: ep=%s unit=%d addr=%d err=%v",
					tgt.Endpoint, tgt.UnitID, addr, err,
				))
			}

			// The destination layout is fixed by geometry, so the
			// cursor advances even past a failed write.
			addr += uint16(len(regs))
		}
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, " | "))
	}

	return nil
}

// encodeBlock maps one read result onto destination registers.
// Single-value reads take one register; block reads take a length
// register followed by 16 registers packing up to 32 data bytes
// big-endian, two bytes per register.
func encodeBlock(b poller.BlockResult) []uint16 {
	switch b.Kind {
	case poller.KindByte, poller.KindByteData:
		return []uint16{uint16(b.Byte)}
	case poller.KindWordData:
		return []uint16{b.Word}
	case poller.KindBlockData:
		regs := make([]uint16, registersPerBlock)
		data := b.Block
		if len(data) > 32 {
			data = data[:32]
		}
		regs[0] = uint16(len(data))
		for i := 0; i < len(data); i++ {
			if i%2 == 0 {
				regs[1+i/2] |= uint16(data[i]) << 8
			} else {
				regs[1+i/2] |= uint16(data[i])
			}
		}
		return regs
	}
	return nil
}
