package fitnessclass

import (
	"testing"
	"time"
)

func validClass() FitnessClass {
	start := time.Date(2025, 9, 20, 18, 0, 0, 0, time.UTC)
	return FitnessClass{
		Name:      "HIIT",
		Capacity:  12,
		StartTime: start,
		EndTime:   start.Add(45 * time.Minute),
		IsActive:  true,
	}
}

// TestFitnessClass_Validate verifies form validation rules.
func TestFitnessClass_Validate(t *testing.T) {
	c := validClass()
	if err := c.Validate(); err != nil {
		t.Fatalf("valid class rejected: %v", err)
	}

	c = validClass()
	c.Name = "  "
	if err := c.Validate(); err != ErrEmptyName {
		t.Errorf("empty name: got %v", err)
	}

	c = validClass()
	c.Capacity = 0
	if err := c.Validate(); err != ErrInvalidCapacity {
		t.Errorf("capacity: got %v", err)
	}

	c = validClass()
	c.EndTime = c.StartTime
	if err := c.Validate(); err != ErrInvalidTimes {
		t.Errorf("times: got %v", err)
	}
}

// TestFitnessClass_Capacity verifies spots, fullness and bookability.
func TestFitnessClass_Capacity(t *testing.T) {
	c := validClass()
	c.BookedCount = 11
	if c.SpotsLeft() != 1 || c.IsFull() {
		t.Errorf("expected one spot, got %d", c.SpotsLeft())
	}
	before := c.StartTime.Add(-time.Hour)
	if !c.IsBookable(before) {
		t.Error("expected bookable before start")
	}
	c.BookedCount = 15
	if c.SpotsLeft() != 0 || !c.IsFull() {
		t.Error("overbooked class should report zero spots")
	}
	if c.IsBookable(before) {
		t.Error("full class should not be bookable")
	}
	if c.Duration() != 45*time.Minute {
		t.Errorf("duration: got %v", c.Duration())
	}
}
