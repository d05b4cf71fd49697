package relay

import (
	"context"
	"encoding/json"
	"log"

	"go-fleet/internal/fabric"
)

// Bridge closes the cross-process loop: it subscribes to the fabric
// channels and re-injects received events into this process's local group
// fanout. It never publishes back onto the fabric, so an event crosses
// the fabric at most once.
type Bridge struct {
	registry *Registry
	bus      fabric.Fabric
}

func NewBridge(registry *Registry, bus fabric.Fabric) *Bridge {
	return &Bridge{registry: registry, bus: bus}
}

// Run starts one subscription goroutine per fabric channel and returns.
// Subscriptions retry internally until ctx is cancelled.
func (b *Bridge) Run(ctx context.Context) {
	go b.bus.Subscribe(ctx, fabric.ChannelLocationUpdate, b.onLocationUpdate)
	go b.bus.Subscribe(ctx, fabric.ChannelMissionAssignment, b.onMissionAssignment)
}

func (b *Bridge) onLocationUpdate(payload []byte) {
	if !json.Valid(payload) {
		log.Printf("relay: dropping invalid fabric payload on %s", fabric.ChannelLocationUpdate)
		return
	}
	b.registry.Broadcast(GroupDashboard, push(EventLocationUpdate, payload))
}

func (b *Bridge) onMissionAssignment(payload []byte) {
	if !json.Valid(payload) {
		log.Printf("relay: dropping invalid fabric payload on %s", fabric.ChannelMissionAssignment)
		return
	}
	b.registry.Broadcast(GroupDrivers, push(EventMissionAssigned, payload))
}
