package reconcile

import "time"

// Mission status lifecycle. Missions are never deleted, only superseded
// by status transitions.
const (
	StatusPending   = "PENDING"
	StatusAccepted  = "ACCEPTED"
	StatusCompleted = "COMPLETED"
)

// Truck operational statuses as stored durably. BUSY is authoritative for
// "this driver is on a mission" regardless of what any client has cached.
const (
	TruckIdle  = "IDLE"
	TruckReady = "READY"
	TruckBusy  = "BUSY"
)

// RecoveredMissionID is the sentinel identifier of a mission synthesized
// when the durable record says BUSY but the local cache holds no active
// mission. The details are generic on purpose: the point is to never
// leave a driver silently stuck busy with nothing visible to act on.
const RecoveredMissionID = "RECOVERED-001"

// Mission is a unit of work assigning a driver to deliver cargo. The ID
// is client-generated and unique; the wire field names follow the
// dashboard payloads.
type Mission struct {
	ID          string `json:"id"`
	SenderID    string `json:"senderId"`
	DriverID    string `json:"driverId"`
	CargoType   string `json:"aidType"`
	Quantity    string `json:"quantity"`
	Destination string `json:"destination"`
	Urgency     string `json:"urgency"` // Low, Medium, High
	Status      string `json:"status"`
	CreatedAt   int64  `json:"createdAt"`
}

func recoveredMission(driverID string) Mission {
	return Mission{
		ID:          RecoveredMissionID,
		SenderID:    "system-recovery",
		DriverID:    driverID,
		CargoType:   "Active Deployment (Restored)",
		Quantity:    "N/A",
		Destination: "Designated Target",
		Urgency:     "High",
		Status:      StatusAccepted,
		CreatedAt:   time.Now().UnixMilli(),
	}
}
