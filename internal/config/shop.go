package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sawgrasskings/booking-api/internal/domain/schedule"
)

// Shop is the business profile: contact details, passcode and week hours.
type Shop struct {
	Name         string
	PhoneE164    string
	Email        string
	AdminPIN     string
	SlotMinutes  int
	MaxDaysAhead int
	Timezone     string
	Location     *time.Location
	Hours        schedule.WeekHours
}

type shopFile struct {
	Name         string                      `yaml:"name"`
	Phone        string                      `yaml:"phone"`
	Email        string                      `yaml:"email"`
	AdminPIN     string                      `yaml:"admin_pin"`
	SlotMinutes  int                         `yaml:"slot_minutes"`
	MaxDaysAhead int                         `yaml:"max_days_ahead"`
	Timezone     string                      `yaml:"timezone"`
	Hours        map[string]*schedule.Window `yaml:"hours"`
}

var weekdayNames = map[string]time.Weekday{
	"sun": time.Sunday, "sunday": time.Sunday,
	"mon": time.Monday, "monday": time.Monday,
	"tue": time.Tuesday, "tuesday": time.Tuesday,
	"wed": time.Wednesday, "wednesday": time.Wednesday,
	"thu": time.Thursday, "thursday": time.Thursday,
	"fri": time.Friday, "friday": time.Friday,
	"sat": time.Saturday, "saturday": time.Saturday,
}

// DefaultShop returns the profile built from environment values.
func DefaultShop() Shop {
	return Shop{
		Name:         getEnv("SHOP_NAME", "Sawgrass Kings Cuts"),
		PhoneE164:    getEnv("SHOP_PHONE_E164", "+17542452950"),
		Email:        getEnv("SHOP_EMAIL", "info@sawgrasskingscuts.com"),
		AdminPIN:     getEnv("ADMIN_PIN", "1234"),
		SlotMinutes:  parseInt(getEnv("SLOT_MINUTES", "30"), schedule.DefaultSlotMinutes),
		MaxDaysAhead: parseInt(getEnv("MAX_DAYS_AHEAD", "30"), 30),
		Timezone:     getEnv("SHOP_TIMEZONE", "America/New_York"),
		Hours:        schedule.DefaultWeekHours(),
	}
}

// LoadShop starts from DefaultShop and overlays the YAML file at path, if any.
// Values in the file may reference environment variables as ${NAME}.
func LoadShop(path string) (Shop, error) {
	shop := DefaultShop()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Shop{}, fmt.Errorf("config: read shop file: %w", err)
		}
		if err := shop.overlay([]byte(os.ExpandEnv(string(raw)))); err != nil {
			return Shop{}, err
		}
	}

	loc, err := time.LoadLocation(shop.Timezone)
	if err != nil {
		return Shop{}, fmt.Errorf("config: shop timezone %q: %w", shop.Timezone, err)
	}
	shop.Location = loc
	return shop, nil
}

func (s *Shop) overlay(raw []byte) error {
	var f shopFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return fmt.Errorf("config: parse shop file: %w", err)
	}
	if f.Name != "" {
		s.Name = f.Name
	}
	if f.Phone != "" {
		s.PhoneE164 = f.Phone
	}
	if f.Email != "" {
		s.Email = f.Email
	}
	if f.AdminPIN != "" {
		s.AdminPIN = f.AdminPIN
	}
	if f.SlotMinutes != 0 {
		s.SlotMinutes = f.SlotMinutes
	}
	if f.MaxDaysAhead != 0 {
		s.MaxDaysAhead = f.MaxDaysAhead
	}
	if f.Timezone != "" {
		s.Timezone = f.Timezone
	}
	// A listed day with no window (e.g. "tuesday: ~") is closed.
	for name, w := range f.Hours {
		day, ok := weekdayNames[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			return fmt.Errorf("config: unknown weekday %q in shop hours", name)
		}
		s.Hours[day] = w
	}
	return nil
}

// Validate checks hours and slot width.
func (s Shop) Validate() error {
	if s.SlotMinutes <= 0 {
		return fmt.Errorf("config: %w", schedule.ErrInvalidStep)
	}
	if s.MaxDaysAhead < 0 {
		return fmt.Errorf("config: MAX_DAYS_AHEAD must not be negative")
	}
	if err := s.Hours.Validate(); err != nil {
		return fmt.Errorf("config: shop hours: %w", err)
	}
	return nil
}

// Generator returns the slot generator for the shop's week.
func (s Shop) Generator() (schedule.Generator, error) {
	return schedule.NewGenerator(s.Hours, s.SlotMinutes)
}

// Now returns the current time in the shop's timezone.
func (s Shop) Now() time.Time {
	if s.Location == nil {
		return time.Now()
	}
	return time.Now().In(s.Location)
}
