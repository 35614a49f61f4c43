package validator

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/sawgrasskings/booking-api/internal/domain/schedule"
)

// Validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()

	// Use JSON tag names in error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	registerCustomValidations()
}

func registerCustomValidations() {
	validate.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
		_, err := schedule.ParseClock(fl.Field().String())
		return err == nil
	})

	validate.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
		_, err := schedule.ParseDate(fl.Field().String(), nil)
		return err == nil
	})

	validate.RegisterValidation("pin4", func(fl validator.FieldLevel) bool {
		pin := fl.Field().String()
		if len(pin) != 4 {
			return false
		}
		for _, c := range pin {
			if c < '0' || c > '9' {
				return false
			}
		}
		return true
	})

	validate.RegisterValidation("booking_status", func(fl validator.FieldLevel) bool {
		switch fl.Field().String() {
		case "pending", "approved", "declined":
			return true
		}
		return false
	})
}

// Validate validates a struct and returns a map of field errors
func Validate(s interface{}) map[string]string {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	errors := make(map[string]string)
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		errors["_"] = err.Error()
		return errors
	}
	for _, err := range verrs {
		field := err.Field()
		switch err.Tag() {
		case "required":
			errors[field] = "This field is required"
		case "email":
			errors[field] = "Invalid email format"
		case "min":
			errors[field] = "Value is too short (min: " + err.Param() + ")"
		case "max":
			errors[field] = "Value is too long (max: " + err.Param() + ")"
		case "oneof":
			errors[field] = "Must be one of: " + err.Param()
		case "hhmm":
			errors[field] = "Invalid time. Use HH:MM (24h)"
		case "isodate":
			errors[field] = "Invalid date. Use YYYY-MM-DD"
		case "pin4":
			errors[field] = "Passcode must be 4 digits"
		case "booking_status":
			errors[field] = "Invalid status. Must be: pending, approved, or declined"
		default:
			errors[field] = "Invalid value"
		}
	}

	return errors
}

// ValidateVar validates a single variable
func ValidateVar(field interface{}, tag string) error {
	return validate.Var(field, tag)
}
