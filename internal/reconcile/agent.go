package reconcile

import (
	"context"
	"errors"
	"log"
	"time"
)

// DefaultInterval is the polling interval of the reconciliation pass.
const DefaultInterval = 5 * time.Second

// StatusReader reads the durable operational status for a driver. It is
// the source of truth: whatever it reports wins over the local cache.
type StatusReader interface {
	TruckStatus(ctx context.Context) (string, error)
}

// StatusWriter writes the durable operational status. User-visible
// transitions write through here before the cache is allowed to change,
// so the durable record is never behind the UI, only potentially ahead
// of a stale client.
type StatusWriter interface {
	UpdateTruckStatus(ctx context.Context, status string) error
}

// Agent periodically re-derives a driver client's operational state from
// the durable source of truth and repairs divergence. It is the
// correctness backstop for the relay's at-least-once, unordered delivery.
type Agent struct {
	driverID string
	truth    StatusReader
	writer   StatusWriter
	cache    *Cache
	interval time.Duration
}

func NewAgent(driverID string, truth StatusReader, writer StatusWriter, cache *Cache) *Agent {
	return &Agent{
		driverID: driverID,
		truth:    truth,
		writer:   writer,
		cache:    cache,
		interval: DefaultInterval,
	}
}

// Run performs one reconciliation pass immediately, then one per
// interval until ctx is cancelled. A failed pass is logged and retried
// on the next tick; it never propagates.
func (a *Agent) Run(ctx context.Context) {
	a.Reconcile(ctx)

	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.Reconcile(ctx)
		}
	}
}

// Reconcile runs one pass of the repair state machine:
//
//  1. durable BUSY, no local active mission: the original assignment was
//     lost. Synthesize a recovered placeholder so the driver has
//     something to act on, and force local BUSY.
//  2. durable not BUSY, local active mission exists: the client is
//     stale; the cached mission is superseded and local status defers
//     to durable.
//  3. otherwise local status simply follows durable.
func (a *Agent) Reconcile(ctx context.Context) {
	_, localActive := a.cache.Active()

	durable, err := a.truth.TruckStatus(ctx)
	if err != nil {
		log.Printf("reconcile: status read failed (retrying next tick): %v", err)
		return
	}

	switch {
	case durable == TruckBusy && !localActive:
		log.Printf("reconcile: durable says BUSY but no local active mission, synthesizing recovery for %s", a.driverID)
		a.cache.Upsert(recoveredMission(a.driverID))
		a.cache.SetStatus(TruckBusy)

	case durable != TruckBusy && localActive:
		active, _ := a.cache.Active()
		log.Printf("reconcile: durable says %s, superseding stale local mission %s", durable, active.ID)
		a.cache.SetMissionStatus(active.ID, StatusCompleted)
		a.cache.SetStatus(durable)

	default:
		a.cache.SetStatus(durable)
	}
}

// ToggleAvailability flips IDLE <-> READY, durable first. A BUSY driver
// cannot toggle: only completing the mission releases the BUSY status.
func (a *Agent) ToggleAvailability(ctx context.Context) (string, error) {
	current := a.cache.Status()
	if current == TruckBusy {
		return "", errors.New("cannot toggle availability while on a mission")
	}
	next := TruckReady
	if current != TruckIdle {
		next = TruckIdle
	}
	if err := a.writer.UpdateTruckStatus(ctx, next); err != nil {
		return "", err
	}
	a.cache.SetStatus(next)
	return next, nil
}

// AcceptMission marks a pending mission accepted, durable first.
func (a *Agent) AcceptMission(ctx context.Context, missionID string) error {
	if _, ok := a.cache.Get(missionID); !ok {
		return errors.New("unknown mission")
	}
	if err := a.writer.UpdateTruckStatus(ctx, TruckBusy); err != nil {
		return err
	}
	a.cache.SetMissionStatus(missionID, StatusAccepted)
	a.cache.SetStatus(TruckBusy)
	return nil
}

// CompleteMission marks the mission completed, durable first.
func (a *Agent) CompleteMission(ctx context.Context, missionID string) error {
	if _, ok := a.cache.Get(missionID); !ok {
		return errors.New("unknown mission")
	}
	if err := a.writer.UpdateTruckStatus(ctx, TruckIdle); err != nil {
		return err
	}
	a.cache.SetMissionStatus(missionID, StatusCompleted)
	a.cache.SetStatus(TruckIdle)
	return nil
}
