package user

import (
	"context"
	"testing"
)

func driverReq() *RegisterRequest {
	return &RegisterRequest{
		Name:     "Abel Tesfaye",
		Email:    "abel@example.com",
		Password: "long-enough-pass",
		Role:     RoleDriver,
		Truck: &TruckDetails{
			DriverLicense: "DL-12345",
			LicensePlate:  "AA-0421",
			Model:         "Volvo FH16",
		},
	}
}

func TestValidateRegistration(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*RegisterRequest)
		wantErr bool
	}{
		{"valid driver", func(r *RegisterRequest) {}, false},
		{"valid sender", func(r *RegisterRequest) {
			r.Role = RoleSender
			r.Truck = nil
			r.Org = &OrganizationDetails{
				Name:         "Relief Works",
				RegNumber:    "RW-2024-001",
				Headquarters: "Addis Ababa",
			}
		}, false},
		{"single word name", func(r *RegisterRequest) { r.Name = "Abel" }, true},
		{"five word name", func(r *RegisterRequest) { r.Name = "A B C D E" }, true},
		{"digits in name", func(r *RegisterRequest) { r.Name = "Abel T3sfaye" }, true},
		{"doubled space in name", func(r *RegisterRequest) { r.Name = "Abel  Tesfaye" }, true},
		{"empty name", func(r *RegisterRequest) { r.Name = "" }, true},
		{"bad email", func(r *RegisterRequest) { r.Email = "not-an-email" }, true},
		{"short password", func(r *RegisterRequest) { r.Password = "short" }, true},
		{"unknown role", func(r *RegisterRequest) { r.Role = "PILOT" }, true},
		{"bad license chars", func(r *RegisterRequest) { r.Truck.DriverLicense = "DL_#!" }, true},
		{"doubled space in plate", func(r *RegisterRequest) { r.Truck.LicensePlate = "AA  0421" }, true},
		{"empty truck model", func(r *RegisterRequest) { r.Truck.Model = "" }, true},
		{"driver without truck details", func(r *RegisterRequest) { r.Truck = nil }, false},
		{"sender bad org name", func(r *RegisterRequest) {
			r.Role = RoleSender
			r.Truck = nil
			r.Org = &OrganizationDetails{Name: "Bad!Org", RegNumber: "R1", Headquarters: "HQ"}
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := driverReq()
			tt.mutate(req)
			err := validateRegistration(req)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateRegistration() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestStatusEnums(t *testing.T) {
	tests := []struct {
		status  string
		account bool
		truck   bool
	}{
		{StatusPending, true, false},
		{StatusApproved, true, false},
		{StatusRejected, true, false},
		{TruckIdle, false, true},
		{TruckReady, false, true},
		{TruckBusy, false, true},
		{"FLYING", false, false},
		{"busy", false, false},
		{"", false, false},
	}

	for _, tt := range tests {
		if got := validAccountStatus(tt.status); got != tt.account {
			t.Errorf("validAccountStatus(%q) = %v, want %v", tt.status, got, tt.account)
		}
		if got := validTruckStatus(tt.status); got != tt.truck {
			t.Errorf("validTruckStatus(%q) = %v, want %v", tt.status, got, tt.truck)
		}
	}
}

func TestServiceRejectsUnknownStatuses(t *testing.T) {
	// An invalid enum must be rejected before the repository is reached;
	// the nil-backed repository makes any write attempt blow up loudly.
	s := NewService(NewRepository(nil), "test-secret")
	ctx := context.Background()

	if err := s.UpdateStatus(ctx, 1, "FLYING"); err == nil {
		t.Error("UpdateStatus accepted an unknown account status")
	}
	if err := s.UpdateTruckStatus(ctx, 1, "PARKED"); err == nil {
		t.Error("UpdateTruckStatus accepted an unknown truck status")
	}
	if err := s.UpdateTruckStatus(ctx, 1, "idle"); err == nil {
		t.Error("UpdateTruckStatus accepted a lower-cased status")
	}
}
