package deeplink

import (
	"fmt"
	"strings"
)

// BookingRequest is the content of a customer's booking text.
type BookingRequest struct {
	ShopName   string
	Name       string
	Phone      string
	Service    string
	BarberName string
	Date       string
	TimeLabel  string
	Notes      string
}

// BookingMessage renders the plain-text request sent by SMS or email.
func BookingMessage(r BookingRequest) string {
	barber := r.BarberName
	if barber == "" {
		barber = "Barber"
	}
	notes := strings.TrimSpace(r.Notes)
	if notes == "" {
		notes = "N/A"
	}
	return fmt.Sprintf(
		"Booking Request — %s\nName: %s\nPhone: %s\nService: %s\nBarber: %s\nDate/Time: %s @ %s\nNotes: %s\n\nPlease confirm if this time is available.",
		r.ShopName, r.Name, r.Phone, r.Service, barber, r.Date, r.TimeLabel, notes,
	)
}

// BookingSubject is the mailto subject line for a request.
func BookingSubject(shopName, date, timeLabel string) string {
	return fmt.Sprintf("Booking Request — %s (%s @ %s)", shopName, date, timeLabel)
}
