// internal/writer/device_status_writer_test.go
package writer

import (
	"testing"

	"github.com/hoichong/osb4/internal/status"
)

func statusPlan() Plan {
	return Plan{
		DeviceID: "dev-1",
		Status: &StatusPlan{
			Endpoint:   "status-endpoint",
			UnitID:     1,
			BaseSlot:   0,
			DeviceName: "DEV-01",
		},
	}
}

func TestDeviceNameWrittenOnFullAssertOnly(t *testing.T) {
	cli := &fakeEndpointClient{}
	plan := statusPlan()

	sw, enabled := NewDeviceStatusWriter(plan, map[string]EndpointClient{
		"status-endpoint": cli,
	})
	if !enabled {
		t.Fatalf("status writer should be enabled")
	}

	// ---- first write: FULL ASSERT ----
	first := status.Snapshot{
		Health:         status.HealthOK,
		LastErrorCode:  0,
		SecondsInError: 0,
	}

	if err := sw.WriteStatus(first); err != nil {
		t.Fatalf("initial full assert failed: %v", err)
	}

	if len(cli.lastRegs) != status.SlotsPerDevice {
		t.Fatalf(
			"expected full block write (%d regs), got %d",
			status.SlotsPerDevice,
			len(cli.lastRegs),
		)
	}

	// Verify device name encoding EXACTLY
	expectedNameRegs := encodeDeviceNameRegs(plan.Status.DeviceName)

	for i := 0; i < status.SlotDeviceNameSlots; i++ {
		slot := status.SlotDeviceNameStart + i
		if cli.lastRegs[slot] != expectedNameRegs[i] {
			t.Fatalf(
				"device name slot %d mismatch: got=%d want=%d",
				slot,
				cli.lastRegs[slot],
				expectedNameRegs[i],
			)
		}
	}

	// ---- second write: INCREMENTAL ONLY ----
	second := status.Snapshot{
		Health:         status.HealthError,
		LastErrorCode:  status.CodeNoResponse,
		SecondsInError: 1,
	}

	if err := sw.WriteStatus(second); err != nil {
		t.Fatalf("incremental write failed: %v", err)
	}

	if len(cli.lastRegs) == status.SlotsPerDevice {
		t.Fatalf("device name should not be rewritten on incremental update")
	}
}

func TestSecondsInErrorResetOnRecovery(t *testing.T) {
	cli := &fakeEndpointClient{}
	plan := statusPlan()

	sw, enabled := NewDeviceStatusWriter(plan, map[string]EndpointClient{
		"status-endpoint": cli,
	})
	if !enabled {
		t.Fatalf("status writer should be enabled")
	}

	// simulate ERROR
	errSnap := status.Snapshot{
		Health:         status.HealthError,
		LastErrorCode:  status.CodeTimeout,
		SecondsInError: 3,
	}

	if err := sw.WriteStatus(errSnap); err != nil {
		t.Fatalf("error snapshot write failed: %v", err)
	}

	// simulate recovery
	okSnap := status.Snapshot{
		Health:         status.HealthOK,
		LastErrorCode:  0,
		SecondsInError: 0,
	}

	if err := sw.WriteStatus(okSnap); err != nil {
		t.Fatalf("recovery snapshot write failed: %v", err)
	}

	expectedAddr := plan.Status.BaseSlot*status.SlotsPerDevice + status.SlotSecondsInError

	if cli.lastRegsAddr != expectedAddr {
		t.Fatalf("unexpected write addr: got=%d want=%d", cli.lastRegsAddr, expectedAddr)
	}

	if len(cli.lastRegs) != 1 {
		t.Fatalf("expected 1 register write, got %d", len(cli.lastRegs))
	}

	if cli.lastRegs[0] != 0 {
		t.Fatalf("seconds_in_error not reset: got=%d want=0", cli.lastRegs[0])
	}
}

func TestFullReassertAfterFailure(t *testing.T) {
	cli := &fakeEndpointClient{failN: 1}
	plan := statusPlan()

	sw, enabled := NewDeviceStatusWriter(plan, map[string]EndpointClient{
		"status-endpoint": cli,
	})
	if !enabled {
		t.Fatalf("status writer should be enabled")
	}

	snap := status.Snapshot{Health: status.HealthOK}

	if err := sw.WriteStatus(snap); err == nil {
		t.Fatalf("expected first write to fail")
	}

	// next write must repeat the full block, not a delta
	if err := sw.WriteStatus(snap); err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if len(cli.lastRegs) != status.SlotsPerDevice {
		t.Fatalf("expected full re-assert, got %d regs", len(cli.lastRegs))
	}
}

func TestStatusDisabledWithoutPlan(t *testing.T) {
	_, enabled := NewDeviceStatusWriter(Plan{DeviceID: "dev-1"}, nil)
	if enabled {
		t.Fatalf("status writer should be disabled without a status plan")
	}
}

func TestStatusBlockBaseAddressFollowsSlot(t *testing.T) {
	cli := &fakeEndpointClient{}
	plan := statusPlan()
	plan.Status.BaseSlot = 3

	sw, _ := NewDeviceStatusWriter(plan, map[string]EndpointClient{
		"status-endpoint": cli,
	})

	if err := sw.WriteStatus(status.Snapshot{Health: status.HealthOK}); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	want := uint16(3 * status.SlotsPerDevice)
	if cli.lastRegsAddr != want {
		t.Fatalf("base addr: got=%d want=%d", cli.lastRegsAddr, want)
	}
}
