package validator

import "testing"

type sample struct {
	Date   string `json:"date" validate:"required,isodate"`
	Time   string `json:"time" validate:"required,hhmm"`
	PIN    string `json:"pin" validate:"omitempty,pin4"`
	Status string `json:"status" validate:"omitempty,booking_status"`
}

func TestValidateCustomTags(t *testing.T) {
	if errs := Validate(&sample{Date: "2024-01-01", Time: "14:00", PIN: "1234", Status: "pending"}); errs != nil {
		t.Fatalf("expected no errors, got %v", errs)
	}

	errs := Validate(&sample{Date: "01/01/2024", Time: "2pm", PIN: "12a4", Status: "confirmed"})
	for _, field := range []string{"date", "time", "pin", "status"} {
		if _, ok := errs[field]; !ok {
			t.Fatalf("expected error for %q, got %v", field, errs)
		}
	}
}

func TestValidateRequired(t *testing.T) {
	errs := Validate(&sample{})
	if errs["date"] != "This field is required" {
		t.Fatalf("unexpected errors: %v", errs)
	}
}
