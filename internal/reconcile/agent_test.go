package reconcile

import (
	"context"
	"errors"
	"testing"
)

type fakeTruth struct {
	status string
	err    error
	reads  int
}

func (f *fakeTruth) TruckStatus(ctx context.Context) (string, error) {
	f.reads++
	if f.err != nil {
		return "", f.err
	}
	return f.status, nil
}

type fakeWriter struct {
	writes []string
	err    error
}

func (f *fakeWriter) UpdateTruckStatus(ctx context.Context, status string) error {
	if f.err != nil {
		return f.err
	}
	f.writes = append(f.writes, status)
	return nil
}

func newTestAgent(durable string) (*Agent, *Cache, *fakeTruth, *fakeWriter) {
	cache := NewCache("7")
	truth := &fakeTruth{status: durable}
	writer := &fakeWriter{}
	return NewAgent("7", truth, writer, cache), cache, truth, writer
}

func acceptedMission(id string) Mission {
	return Mission{ID: id, DriverID: "7", SenderID: "s1", CargoType: "Water", Status: StatusAccepted}
}

func TestRecoverySynthesizesPlaceholderMission(t *testing.T) {
	agent, cache, _, _ := newTestAgent(TruckBusy)

	// Durable says BUSY but the cache is empty: the original assignment
	// was lost (new device, cleared state, missed relay event).
	agent.Reconcile(context.Background())

	active, ok := cache.Active()
	if !ok {
		t.Fatal("no active mission synthesized")
	}
	if active.ID != RecoveredMissionID {
		t.Errorf("active.ID = %q, want %q", active.ID, RecoveredMissionID)
	}
	if active.Status != StatusAccepted {
		t.Errorf("active.Status = %q, want %q", active.Status, StatusAccepted)
	}
	if cache.Status() != TruckBusy {
		t.Errorf("local status = %q, want %q", cache.Status(), TruckBusy)
	}
}

func TestRecoveryIsIdempotentAcrossTicks(t *testing.T) {
	agent, cache, _, _ := newTestAgent(TruckBusy)

	agent.Reconcile(context.Background())
	agent.Reconcile(context.Background())
	agent.Reconcile(context.Background())

	// Exactly one placeholder, replaced in place on every pass.
	active, ok := cache.Active()
	if !ok || active.ID != RecoveredMissionID {
		t.Fatalf("active = %+v, ok = %v", active, ok)
	}
	if pending := cache.Pending(); len(pending) != 0 {
		t.Errorf("recovery created %d pending missions", len(pending))
	}
}

func TestDurableWinsOverStaleLocalBusy(t *testing.T) {
	agent, cache, _, _ := newTestAgent(TruckReady)
	cache.Upsert(acceptedMission("M1"))
	cache.SetStatus(TruckBusy)

	agent.Reconcile(context.Background())

	if _, ok := cache.Active(); ok {
		t.Error("stale active mission survived reconciliation")
	}
	if m, _ := cache.Get("M1"); m.Status != StatusCompleted {
		t.Errorf("stale mission status = %q, want superseded to %q", m.Status, StatusCompleted)
	}
	if cache.Status() != TruckReady {
		t.Errorf("local status = %q, want durable %q", cache.Status(), TruckReady)
	}
}

func TestLocalStatusFollowsDurable(t *testing.T) {
	agent, cache, truth, _ := newTestAgent(TruckReady)

	agent.Reconcile(context.Background())
	if cache.Status() != TruckReady {
		t.Errorf("status = %q, want %q", cache.Status(), TruckReady)
	}

	truth.status = TruckIdle
	agent.Reconcile(context.Background())
	if cache.Status() != TruckIdle {
		t.Errorf("status = %q, want %q", cache.Status(), TruckIdle)
	}
}

func TestAgreementLeavesMissionAlone(t *testing.T) {
	agent, cache, _, _ := newTestAgent(TruckBusy)
	cache.Upsert(acceptedMission("M1"))
	cache.SetStatus(TruckBusy)

	agent.Reconcile(context.Background())

	active, ok := cache.Active()
	if !ok || active.ID != "M1" {
		t.Fatalf("active = %+v, want M1 untouched", active)
	}
	if _, recovered := cache.Get(RecoveredMissionID); recovered {
		t.Error("placeholder synthesized even though a real mission exists")
	}
}

func TestFailedReadLeavesStateUntouched(t *testing.T) {
	agent, cache, truth, _ := newTestAgent(TruckBusy)
	truth.err = errors.New("store unreachable")
	cache.SetStatus(TruckReady)

	agent.Reconcile(context.Background())

	if cache.Status() != TruckReady {
		t.Errorf("status changed to %q on failed read", cache.Status())
	}
	if _, ok := cache.Active(); ok {
		t.Error("mission synthesized on failed read")
	}

	// Next tick with the store back repairs as usual.
	truth.err = nil
	agent.Reconcile(context.Background())
	if cache.Status() != TruckBusy {
		t.Errorf("status = %q after recovery tick, want %q", cache.Status(), TruckBusy)
	}
}

func TestAcceptWritesThroughBeforeLocalChange(t *testing.T) {
	agent, cache, _, writer := newTestAgent(TruckReady)
	m := acceptedMission("M1")
	m.Status = StatusPending
	cache.Upsert(m)
	cache.SetStatus(TruckReady)

	if err := agent.AcceptMission(context.Background(), "M1"); err != nil {
		t.Fatal(err)
	}
	if len(writer.writes) != 1 || writer.writes[0] != TruckBusy {
		t.Errorf("durable writes = %v, want [BUSY]", writer.writes)
	}
	if got, _ := cache.Get("M1"); got.Status != StatusAccepted {
		t.Errorf("mission status = %q, want %q", got.Status, StatusAccepted)
	}
	if cache.Status() != TruckBusy {
		t.Errorf("local status = %q, want %q", cache.Status(), TruckBusy)
	}
}

func TestAcceptFailedWriteLeavesCacheUntouched(t *testing.T) {
	agent, cache, _, writer := newTestAgent(TruckReady)
	writer.err = errors.New("write failed")
	m := acceptedMission("M1")
	m.Status = StatusPending
	cache.Upsert(m)

	if err := agent.AcceptMission(context.Background(), "M1"); err == nil {
		t.Fatal("expected error")
	}
	if got, _ := cache.Get("M1"); got.Status != StatusPending {
		t.Errorf("mission status = %q, durable write failed so cache must not change", got.Status)
	}
	if cache.Status() != TruckIdle {
		t.Errorf("local status = %q, want untouched %q", cache.Status(), TruckIdle)
	}
}

func TestCompleteMission(t *testing.T) {
	agent, cache, _, writer := newTestAgent(TruckBusy)
	cache.Upsert(acceptedMission("M1"))
	cache.SetStatus(TruckBusy)

	if err := agent.CompleteMission(context.Background(), "M1"); err != nil {
		t.Fatal(err)
	}
	if len(writer.writes) != 1 || writer.writes[0] != TruckIdle {
		t.Errorf("durable writes = %v, want [IDLE]", writer.writes)
	}
	if got, _ := cache.Get("M1"); got.Status != StatusCompleted {
		t.Errorf("mission status = %q, want %q", got.Status, StatusCompleted)
	}
	if cache.Status() != TruckIdle {
		t.Errorf("local status = %q, want %q", cache.Status(), TruckIdle)
	}
}

func TestToggleAvailability(t *testing.T) {
	agent, cache, _, writer := newTestAgent(TruckIdle)

	next, err := agent.ToggleAvailability(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if next != TruckReady || cache.Status() != TruckReady {
		t.Errorf("toggle from IDLE gave %q", next)
	}

	next, err = agent.ToggleAvailability(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if next != TruckIdle || cache.Status() != TruckIdle {
		t.Errorf("toggle from READY gave %q", next)
	}

	if len(writer.writes) != 2 {
		t.Errorf("durable writes = %v, want two", writer.writes)
	}
}

func TestToggleAvailabilityRejectedWhileBusy(t *testing.T) {
	agent, cache, _, writer := newTestAgent(TruckBusy)
	cache.Upsert(acceptedMission("M1"))
	cache.SetStatus(TruckBusy)

	if _, err := agent.ToggleAvailability(context.Background()); err == nil {
		t.Fatal("toggle while BUSY must fail")
	}
	if len(writer.writes) != 0 {
		t.Errorf("durable writes = %v, want none: BUSY must not be clobbered", writer.writes)
	}
	if cache.Status() != TruckBusy {
		t.Errorf("local status = %q, want still %q", cache.Status(), TruckBusy)
	}
}

func TestUpsertIsIdempotent(t *testing.T) {
	cache := NewCache("7")
	cache.Upsert(acceptedMission("M1"))
	cache.Upsert(acceptedMission("M1"))

	active, ok := cache.Active()
	if !ok || active.ID != "M1" {
		t.Fatalf("active = %+v", active)
	}
	if pending := cache.Pending(); len(pending) != 0 {
		t.Errorf("duplicate upsert created %d pending entries", len(pending))
	}
}
