package relay

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"go-fleet/internal/fabric"
)

// LocationStore is the durable timeline the router appends GPS samples to.
type LocationStore interface {
	AppendSample(ctx context.Context, driverID string, lat, lng float64, ts time.Time) error
}

// Router is the relay core. It receives inbound events from local
// connections, fans them out to local groups, persists durable side
// effects, and republishes onto the fabric for sibling processes.
type Router struct {
	registry *Registry
	bus      fabric.Fabric
	store    LocationStore
}

func NewRouter(registry *Registry, bus fabric.Fabric, store LocationStore) *Router {
	return &Router{
		registry: registry,
		bus:      bus,
		store:    store,
	}
}

// handleMessage dispatches one inbound websocket frame. Malformed frames
// are logged and dropped; a bad client must not affect its neighbors.
func (r *Router) handleMessage(c *Client, raw []byte) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		log.Printf("relay: malformed frame from %s: %v", c.ID, err)
		return
	}

	switch env.Event {
	case EventJoinDashboard:
		r.registry.Join(c, GroupDashboard)

	case EventRegisterDriver:
		var driverID string
		if err := json.Unmarshal(env.Data, &driverID); err != nil {
			log.Printf("relay: bad register-driver from %s: %v", c.ID, err)
			return
		}
		c.DriverID = driverID
		r.registry.Join(c, GroupDrivers)
		log.Printf("relay: driver %s registered on connection %s", driverID, c.ID)

	case EventUpdateLocation:
		var loc LocationEvent
		if err := json.Unmarshal(env.Data, &loc); err != nil {
			log.Printf("relay: bad update-location from %s: %v", c.ID, err)
			return
		}
		r.SubmitLocation(context.Background(), loc)

	case EventDriverAction:
		var action DriverAction
		if err := json.Unmarshal(env.Data, &action); err != nil {
			log.Printf("relay: bad driver-action from %s: %v", c.ID, err)
			return
		}
		r.ReportAction(action, env.Data)

	case EventAssignMission:
		r.AssignMission(context.Background(), c, env.Data)

	case EventJoinMissionChat:
		var requestID string
		if err := json.Unmarshal(env.Data, &requestID); err != nil {
			log.Printf("relay: bad join-mission-chat from %s: %v", c.ID, err)
			return
		}
		r.registry.Join(c, chatGroup(requestID))

	case EventSendMessage:
		var msg ChatMessage
		if err := json.Unmarshal(env.Data, &msg); err != nil || msg.RequestID == "" {
			log.Printf("relay: bad send-message from %s", c.ID)
			return
		}
		r.SendMessage(msg.RequestID, env.Data)

	default:
		log.Printf("relay: unknown event %q from %s", env.Event, c.ID)
	}
}

// SubmitLocation routes one GPS sample: local dashboards first (lowest
// latency, independent of everything else), then the durable timeline,
// then the fabric for sibling processes. The last two are best-effort:
// losing one sample is not mission-critical and the next tick retries
// implicitly.
func (r *Router) SubmitLocation(ctx context.Context, loc LocationEvent) {
	if loc.Timestamp == 0 {
		loc.Timestamp = time.Now().UnixMilli()
	}
	payload, err := json.Marshal(loc)
	if err != nil {
		log.Printf("relay: marshal location: %v", err)
		return
	}

	r.registry.Broadcast(GroupDashboard, push(EventLocationUpdate, payload))

	if err := r.store.AppendSample(ctx, loc.DriverID, loc.Lat, loc.Lng, time.UnixMilli(loc.Timestamp)); err != nil {
		log.Printf("relay: location persist failed (ignoring): %v", err)
	}

	if err := r.bus.Publish(ctx, fabric.ChannelLocationUpdate, payload); err != nil {
		log.Printf("relay: fabric publish failed (ignoring): %v", err)
	}
}

// AssignMission relays a mission to every local driver connection and to
// sibling processes. The relay keeps no driverId->connection mapping, so
// it broadcasts to the drivers group and the client filters by driverId.
// The submitter is acked synchronously; the ack says nothing about
// delivery.
func (r *Router) AssignMission(ctx context.Context, submitter *Client, mission json.RawMessage) {
	if submitter != nil {
		receipt, _ := json.Marshal(missionAckReceipt)
		r.registry.Send(submitter, push(EventMissionAck, receipt))
	}

	log.Printf("relay: mission assignment, local driver count: %d", r.registry.GroupSize(GroupDrivers))
	r.registry.Broadcast(GroupDrivers, push(EventMissionAssigned, mission))

	if err := r.bus.Publish(ctx, fabric.ChannelMissionAssignment, mission); err != nil {
		log.Printf("relay: fabric publish failed (ignoring): %v", err)
	}
}

// ReportAction fans a milestone or completion out to local dashboards.
// These events are not published to the fabric: dashboards on other
// processes will not see them (see DESIGN.md).
func (r *Router) ReportAction(action DriverAction, raw json.RawMessage) {
	log.Printf("relay: driver action %s from %s for %s", action.Type, action.DriverID, action.RequestID)
	r.registry.Broadcast(GroupDashboard, push(EventDriverAction, raw))
}

// SendMessage fans a chat message out to the mission's local room.
func (r *Router) SendMessage(requestID string, raw json.RawMessage) {
	r.registry.Broadcast(chatGroup(requestID), push(EventReceiveMessage, raw))
}
