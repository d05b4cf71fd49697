package fabric

import "context"

// Fabric names on which relay processes exchange events.
const (
	ChannelLocationUpdate    = "location-update"
	ChannelMissionAssignment = "mission-assignment"
)

// Handler receives the raw JSON payload of one fabric message.
type Handler func(payload []byte)

// Fabric is the shared broadcast bus between relay processes. Delivery is
// at-least-once and unordered; payloads are JSON, identical to the
// corresponding websocket push payloads.
type Fabric interface {
	// Publish sends payload to every subscriber of channel, including
	// subscribers in other processes. It never blocks on slow consumers.
	Publish(ctx context.Context, channel string, payload []byte) error

	// Subscribe registers handler for channel and keeps the subscription
	// alive until ctx is cancelled, retrying on transient failures.
	Subscribe(ctx context.Context, channel string, handler Handler)
}
