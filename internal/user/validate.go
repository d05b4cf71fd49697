package user

import (
	"errors"
	"regexp"
	"strings"
)

// Registration is validated server-side regardless of what the UI enforces.
var (
	nameRegex       = regexp.MustCompile(`^[A-Za-z\s]+$`)
	emailRegex      = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	sectionRegex    = regexp.MustCompile(`^[A-Za-z0-9\s-]+$`)
	multiSpaceRegex = regexp.MustCompile(`\s{2,}`)
)

func validateRegistration(req *RegisterRequest) error {
	trimmed := strings.Join(strings.Fields(req.Name), " ")
	words := strings.Fields(trimmed)
	if trimmed == "" || !nameRegex.MatchString(trimmed) || len(words) < 2 || len(words) > 4 {
		return errors.New("invalid name format: use 2-4 words, letters only")
	}
	if req.Name != trimmed {
		return errors.New("multiple spaces detected in name")
	}

	if !emailRegex.MatchString(req.Email) {
		return errors.New("invalid email format")
	}

	if len(req.Password) < 8 {
		return errors.New("password must be at least 8 characters")
	}

	switch req.Role {
	case RoleDriver:
		if req.Truck != nil {
			if err := validateSection("driver license", req.Truck.DriverLicense); err != nil {
				return err
			}
			if err := validateSection("license plate", req.Truck.LicensePlate); err != nil {
				return err
			}
			if err := validateSection("truck model", req.Truck.Model); err != nil {
				return err
			}
		}
	case RoleSender:
		if req.Org != nil {
			if err := validateSection("organization name", req.Org.Name); err != nil {
				return err
			}
			if err := validateSection("registration number", req.Org.RegNumber); err != nil {
				return err
			}
			if err := validateSection("headquarters", req.Org.Headquarters); err != nil {
				return err
			}
		}
	case RoleAdmin:
	default:
		return errors.New("unknown role")
	}

	return nil
}

func validAccountStatus(status string) bool {
	switch status {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

func validTruckStatus(status string) bool {
	switch status {
	case TruckIdle, TruckReady, TruckBusy:
		return true
	}
	return false
}

func validateSection(field, value string) error {
	if value == "" || !sectionRegex.MatchString(value) || multiSpaceRegex.MatchString(value) {
		return errors.New("invalid " + field + " format")
	}
	return nil
}
