package user

import "time"

// Roles and account lifecycle states.
const (
	RoleDriver = "DRIVER"
	RoleSender = "SENDER"
	RoleAdmin  = "ADMIN"

	StatusPending  = "PENDING"
	StatusApproved = "APPROVED"
	StatusRejected = "REJECTED"
)

// Truck operational statuses. The durable current_status column is the
// source of truth for "is this driver on a mission" (see reconcile package).
const (
	TruckIdle  = "IDLE"
	TruckReady = "READY"
	TruckBusy  = "BUSY"
)

type TruckDetails struct {
	DriverLicense string `json:"driverLicense"`
	LicensePlate  string `json:"licensePlate"`
	Model         string `json:"model"`
	CurrentStatus string `json:"currentStatus"`
}

type OrganizationDetails struct {
	Name         string `json:"name"`
	RegNumber    string `json:"regNumber"`
	Headquarters string `json:"headquarters"`
}

type User struct {
	ID        int                  `json:"id"`
	Name      string               `json:"name"`
	Email     string               `json:"email"`
	Password  string               `json:"-"`
	Role      string               `json:"role"`
	Status    string               `json:"status"`
	CreatedAt time.Time            `json:"created_at"`
	Truck     *TruckDetails        `json:"truckDetails,omitempty"`
	Org       *OrganizationDetails `json:"organizationDetails,omitempty"`
}

type RegisterRequest struct {
	Name     string               `json:"name"`
	Email    string               `json:"email"`
	Password string               `json:"password"`
	Role     string               `json:"role"`
	Truck    *TruckDetails        `json:"truckDetails,omitempty"`
	Org      *OrganizationDetails `json:"organizationDetails,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Role        string `json:"role"`
}
