package fitnessclass

import (
	"errors"
	"strings"
	"time"

	"gymdesk/internal/domain/record"
)

// MaxNameLength bounds the class name accepted by the form.
const MaxNameLength = 100

// Domain errors
var (
	ErrEmptyName       = errors.New("class name cannot be empty")
	ErrNameTooLong     = errors.New("class name cannot exceed 100 characters")
	ErrInvalidCapacity = errors.New("capacity must be at least 1")
	ErrInvalidTimes    = errors.New("class must end after it starts")
)

// FitnessClass is a scheduled session members can book.
type FitnessClass struct {
	ID          record.ID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Trainer     string    `json:"trainer"`
	Location    string    `json:"location"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	Capacity    int       `json:"capacity"`
	BookedCount int       `json:"booked_count"`
	IsActive    bool      `json:"is_active"`
}

// RecordID returns the backend identifier.
func (c FitnessClass) RecordID() string { return c.ID.String() }

// Validate checks form input before it is sent to the backend.
// PRE: FitnessClass populated from a form
// POST: Returns error if validation fails, nil otherwise
func (c FitnessClass) Validate() error {
	name := strings.TrimSpace(c.Name)
	if name == "" {
		return ErrEmptyName
	}
	if len(name) > MaxNameLength {
		return ErrNameTooLong
	}
	if c.Capacity < 1 {
		return ErrInvalidCapacity
	}
	if !c.EndTime.After(c.StartTime) {
		return ErrInvalidTimes
	}
	return nil
}

// SpotsLeft returns the remaining capacity, never negative.
func (c FitnessClass) SpotsLeft() int {
	if left := c.Capacity - c.BookedCount; left > 0 {
		return left
	}
	return 0
}

// IsFull reports whether no spots remain.
func (c FitnessClass) IsFull() bool {
	return c.SpotsLeft() == 0
}

// IsBookable reports whether a member can book the class at the given time.
func (c FitnessClass) IsBookable(now time.Time) bool {
	return c.IsActive && !c.IsFull() && now.Before(c.StartTime)
}

// Duration returns the class length.
func (c FitnessClass) Duration() time.Duration {
	return c.EndTime.Sub(c.StartTime)
}
