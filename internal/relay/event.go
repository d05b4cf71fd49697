package relay

import (
	"encoding/json"
	"fmt"
)

// Local broadcast groups. Membership is per-process; cross-process reach
// goes through the fabric only.
const (
	GroupDashboard = "dashboard"
	GroupDrivers   = "drivers"
)

// Client -> relay events.
const (
	EventJoinDashboard   = "join-dashboard"
	EventRegisterDriver  = "register-driver"
	EventUpdateLocation  = "update-location"
	EventDriverAction    = "driver-action"
	EventAssignMission   = "assign-mission"
	EventJoinMissionChat = "join-mission-chat"
	EventSendMessage     = "send-message"
)

// Relay -> client events.
const (
	EventLocationUpdate  = "location-update"
	EventMissionAssigned = "mission-assigned"
	EventMissionAck      = "mission-ack"
	EventReceiveMessage  = "receive-message"
)

// missionAckReceipt is the fixed receipt returned to a sender when the
// relay accepts an assign-mission submission. It acknowledges submission
// only, never delivery.
const missionAckReceipt = "Server received mission"

// Envelope is the websocket wire frame. Event names replace socket.io
// event routing; Data carries the event payload untouched.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// LocationEvent is a single GPS sample from a driver. Duplicates are
// harmless: consumers keep only the latest value per driver.
type LocationEvent struct {
	DriverID  string  `json:"driverId"`
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
	Timestamp int64   `json:"timestamp,omitempty"`
}

// DriverAction reports a mission milestone or completion to dashboards.
type DriverAction struct {
	Type      string          `json:"type"` // MILESTONE or COMPLETED
	DriverID  string          `json:"driverId"`
	RequestID string          `json:"requestId"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// ChatMessage flows through a per-mission chat room. The relay only
// inspects requestId for routing; everything else is passed through.
type ChatMessage struct {
	RequestID string `json:"requestId"`
}

func chatGroup(requestID string) string {
	return "chat-" + requestID
}

// push wraps a payload that is already JSON into an outbound envelope.
func push(event string, data json.RawMessage) []byte {
	frame, err := json.Marshal(Envelope{Event: event, Data: data})
	if err != nil {
		// Envelope with raw JSON data cannot fail to marshal.
		panic(fmt.Sprintf("relay: marshal envelope: %v", err))
	}
	return frame
}
