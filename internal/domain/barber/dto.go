package barber

import "github.com/sawgrasskings/booking-api/internal/pkg/deeplink"

// Patch is a partial profile update; nil fields are left unchanged.
type Patch struct {
	Name   *string `json:"name,omitempty" validate:"omitempty,max=80"`
	Label  *string `json:"label,omitempty" validate:"omitempty,max=80"`
	Phone  *string `json:"phone,omitempty" validate:"omitempty,max=32"`
	Active *bool   `json:"active,omitempty"`
}

// CreateRequest for adding a barber
type CreateRequest struct {
	Name  string `json:"name" validate:"required,max=80"`
	Phone string `json:"phone,omitempty" validate:"omitempty,max=32"`
}

// PINRequest for replacing a passcode
type PINRequest struct {
	PIN string `json:"pin" validate:"required"`
}

// MoveRequest for reordering
type MoveRequest struct {
	Direction string `json:"direction" validate:"required,oneof=up down"`
}

// PublicResponse is what customers see in the barber picker.
type PublicResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Label        string `json:"label,omitempty"`
	DisplayName  string `json:"displayName"`
	PhoneDisplay string `json:"phoneDisplay"`
}

// AdminResponse includes the passcode and raw phone.
type AdminResponse struct {
	Barber
	DisplayName  string `json:"displayName"`
	PhoneDisplay string `json:"phoneDisplay"`
}

func ToPublicResponse(b Barber) PublicResponse {
	return PublicResponse{
		ID:           b.ID,
		Name:         b.Name,
		Label:        b.Label,
		DisplayName:  b.DisplayName(),
		PhoneDisplay: deeplink.FormatPhoneDisplay(b.Phone),
	}
}

func ToAdminResponse(b Barber) AdminResponse {
	return AdminResponse{
		Barber:       b,
		DisplayName:  b.DisplayName(),
		PhoneDisplay: deeplink.FormatPhoneDisplay(b.Phone),
	}
}
