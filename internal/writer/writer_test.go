// internal/writer/writer_test.go
package writer

import (
	"errors"
	"testing"

	"github.com/hoichong/osb4/internal/poller"
)

// ---- fake endpoint client ----

type fakeEndpointClient struct {
	writes []writeCall
	failN  int // fail this many calls before recording

	lastRegs     []uint16
	lastRegsAddr uint16
}

type writeCall struct {
	unitID uint8
	addr   uint16
	regs   []uint16
}

func (f *fakeEndpointClient) WriteRegisters(unitID uint8, addr uint16, regs []uint16) error {
	if f.failN > 0 {
		f.failN--
		return errors.New("write refused")
	}

	cp := append([]uint16(nil), regs...)
	f.writes = append(f.writes, writeCall{unitID: unitID, addr: addr, regs: cp})
	f.lastRegs = cp
	f.lastRegsAddr = addr
	return nil
}

// ---- tests ----

func TestWriter_LayoutAndPacking(t *testing.T) {
	fake := &fakeEndpointClient{}

	w := New(
		Plan{
			DeviceID: "dev-1",
			Targets: []TargetEndpoint{
				{Endpoint: "ep1", UnitID: 2, Base: 100},
			},
		},
		map[string]EndpointClient{"ep1": fake},
	)

	res := poller.PollResult{
		DeviceID: "dev-1",
		Blocks: []poller.BlockResult{
			{Kind: poller.KindByteData, Command: 0x10, Byte: 0x41},
			{Kind: poller.KindWordData, Command: 0x11, Word: 0xBEEF},
			{Kind: poller.KindBlockData, Command: 0x12, Block: []byte{0x01, 0x02, 0x03}},
		},
	}

	if err := w.Write(res); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(fake.writes) != 3 {
		t.Fatalf("expected 3 writes, got %d", len(fake.writes))
	}

	// byte lands in one register at the base
	if fake.writes[0].addr != 100 || fake.writes[0].unitID != 2 {
		t.Fatalf("byte write at unit=%d addr=%d", fake.writes[0].unitID, fake.writes[0].addr)
	}
	if len(fake.writes[0].regs) != 1 || fake.writes[0].regs[0] != 0x41 {
		t.Fatalf("byte regs: %v", fake.writes[0].regs)
	}

	// word takes the next register
	if fake.writes[1].addr != 101 || fake.writes[1].regs[0] != 0xBEEF {
		t.Fatalf("word write addr=%d regs=%v", fake.writes[1].addr, fake.writes[1].regs)
	}

	// block: length register then big-endian byte pairs
	blk := fake.writes[2]
	if blk.addr != 102 {
		t.Fatalf("block addr: got=%d want=102", blk.addr)
	}
	if len(blk.regs) != registersPerBlock {
		t.Fatalf("block regs len: got=%d want=%d", len(blk.regs), registersPerBlock)
	}
	if blk.regs[0] != 3 {
		t.Fatalf("block length reg: got=%d want=3", blk.regs[0])
	}
	if blk.regs[1] != 0x0102 || blk.regs[2] != 0x0300 {
		t.Fatalf("block packing: %04x %04x", blk.regs[1], blk.regs[2])
	}
	for i := 3; i < registersPerBlock; i++ {
		if blk.regs[i] != 0 {
			t.Fatalf("block tail reg %d not zero: %d", i, blk.regs[i])
		}
	}
}

func TestWriter_FanOutToAllTargets(t *testing.T) {
	a := &fakeEndpointClient{}
	b := &fakeEndpointClient{}

	w := New(
		Plan{
			DeviceID: "dev-1",
			Targets: []TargetEndpoint{
				{Endpoint: "ep-a", UnitID: 1, Base: 0},
				{Endpoint: "ep-b", UnitID: 7, Base: 500},
			},
		},
		map[string]EndpointClient{"ep-a": a, "ep-b": b},
	)

	res := poller.PollResult{
		Blocks: []poller.BlockResult{
			{Kind: poller.KindWordData, Word: 12},
		},
	}

	if err := w.Write(res); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(a.writes) != 1 || a.writes[0].addr != 0 || a.writes[0].unitID != 1 {
		t.Fatalf("target a writes: %+v", a.writes)
	}
	if len(b.writes) != 1 || b.writes[0].addr != 500 || b.writes[0].unitID != 7 {
		t.Fatalf("target b writes: %+v", b.writes)
	}
}

func TestWriter_FailedPollWritesNothing(t *testing.T) {
	fake := &fakeEndpointClient{}

	w := New(
		Plan{
			DeviceID: "dev-1",
			Targets:  []TargetEndpoint{{Endpoint: "ep1", UnitID: 1, Base: 0}},
		},
		map[string]EndpointClient{"ep1": fake},
	)

	res := poller.PollResult{
		Err:    errors.New("poll failed"),
		Blocks: nil,
	}

	if err := w.Write(res); err != nil {
		t.Fatalf("failed poll should not be a writer error: %v", err)
	}
	if len(fake.writes) != 0 {
		t.Fatalf("expected no writes, got %d", len(fake.writes))
	}
}

func TestWriter_MissingClient(t *testing.T) {
	w := New(
		Plan{
			DeviceID: "dev-1",
			Targets:  []TargetEndpoint{{Endpoint: "ep1", UnitID: 1, Base: 0}},
		},
		map[string]EndpointClient{},
	)

	res := poller.PollResult{
		Blocks: []poller.BlockResult{{Kind: poller.KindByteData, Byte: 1}},
	}

	if err := w.Write(res); err == nil {
		t.Fatalf("expected error for missing client")
	}
}

func TestWriter_CursorAdvancesPastFailedWrite(t *testing.T) {
	fake := &fakeEndpointClient{failN: 1}

	w := New(
		Plan{
			DeviceID: "dev-1",
			Targets:  []TargetEndpoint{{Endpoint: "ep1", UnitID: 1, Base: 40}},
		},
		map[string]EndpointClient{"ep1": fake},
	)

	res := poller.PollResult{
		Blocks: []poller.BlockResult{
			{Kind: poller.KindByteData, Byte: 1},
			{Kind: poller.KindWordData, Word: 2},
		},
	}

	if err := w.Write(res); err == nil {
		t.Fatalf("expected accumulated error")
	}

	// the second block still lands at its fixed address
	if len(fake.writes) != 1 || fake.writes[0].addr != 41 {
		t.Fatalf("second write: %+v", fake.writes)
	}
}

func TestEncodeBlock_TruncatesLongBlocks(t *testing.T) {
	long := make([]byte, 40)
	for i := range long {
		long[i] = byte(i)
	}

	regs := encodeBlock(poller.BlockResult{Kind: poller.KindBlockData, Block: long})

	if len(regs) != registersPerBlock {
		t.Fatalf("len=%d want=%d", len(regs), registersPerBlock)
	}
	if regs[0] != 32 {
		t.Fatalf("length reg: got=%d want=32", regs[0])
	}
	if regs[16] != uint16(30)<<8|31 {
		t.Fatalf("last data reg: %04x", regs[16])
	}
}
