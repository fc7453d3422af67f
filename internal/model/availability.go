package model

import (
	"time"
)

// Availability is an operator's self-declared open/blackout window.
// One row per operator, every write fully replaces the previous one.
type Availability struct {
	OperatorLogin    string `gorm:"primaryKey"`
	IsAvailable      bool   `gorm:"not null;default:true"`
	UnavailableUntil *time.Time
	Notes            string `gorm:"not null;default:''"`
	UpdatedAt        time.Time
}

type AvailabilityDTO struct {
	Operator         string     `json:"operator"`
	IsAvailable      bool       `json:"is_available"`
	UnavailableUntil *time.Time `json:"unavailable_until,omitempty"`
	DaysRemaining    *int       `json:"days_remaining,omitempty"`
	Notes            string     `json:"notes,omitempty"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

type AvailabilityPutDTO struct {
	IsAvailable      bool       `json:"is_available"`
	UnavailableUntil *time.Time `json:"unavailable_until,omitempty"`
	Notes            string     `json:"notes"`
}

// DaysRemaining computes the blackout days left at the given moment.
// Nil when the operator is available; a window ending now or in the
// past yields 0, never a negative number.
func (a *Availability) DaysRemaining(now time.Time) *int {
	if a == nil || a.IsAvailable {
		return nil
	}

	days := 0

	if a.UnavailableUntil != nil && a.UnavailableUntil.After(now) {
		d := a.UnavailableUntil.Sub(now)
		days = int((d + 24*time.Hour - time.Nanosecond) / (24 * time.Hour))
	}

	return &days
}

func (a *Availability) StatusAt(now time.Time) *AvailabilityDTO {
	if a == nil {
		return nil
	}

	dto := &AvailabilityDTO{
		Operator:    a.OperatorLogin,
		IsAvailable: a.IsAvailable,
		Notes:       a.Notes,
		UpdatedAt:   a.UpdatedAt,
	}

	if !a.IsAvailable {
		dto.UnavailableUntil = a.UnavailableUntil
		dto.DaysRemaining = a.DaysRemaining(now)
	}

	return dto
}
