package feedback

import (
	"errors"
	"strings"
	"time"

	"gymdesk/internal/domain/record"
)

// Status values reported by the backend.
const (
	StatusNew      = "NEW"
	StatusReviewed = "REVIEWED"
	StatusResolved = "RESOLVED"
)

// MaxCommentLength bounds the comment accepted by the form.
const MaxCommentLength = 2000

// Statuses lists every feedback status in display order.
var Statuses = []string{StatusNew, StatusReviewed, StatusResolved}

// Domain errors
var (
	ErrInvalidRating = errors.New("rating must be between 1 and 5")
	ErrEmptyComment  = errors.New("comment cannot be empty")
	ErrLongComment   = errors.New("comment cannot exceed 2000 characters")
)

// Feedback is a member's rating and comment, optionally about a class.
type Feedback struct {
	ID           record.ID   `json:"id"`
	Member       record.Ref  `json:"member"`
	FitnessClass *record.Ref `json:"fitness_class,omitempty"`
	Rating       int         `json:"rating"`
	Comment      string      `json:"comment"`
	Status       string      `json:"status"`
	CreatedAt    time.Time   `json:"created_at"`
}

// RecordID returns the backend identifier.
func (f Feedback) RecordID() string { return f.ID.String() }

// ClassName returns the class name, or "" for general feedback.
func (f Feedback) ClassName() string {
	if f.FitnessClass == nil {
		return ""
	}
	return f.FitnessClass.Name
}

// Validate checks form input before it is sent to the backend.
// PRE: Feedback populated from a form
// POST: Returns error if validation fails, nil otherwise
func (f Feedback) Validate() error {
	if f.Rating < 1 || f.Rating > 5 {
		return ErrInvalidRating
	}
	comment := strings.TrimSpace(f.Comment)
	if comment == "" {
		return ErrEmptyComment
	}
	if len(comment) > MaxCommentLength {
		return ErrLongComment
	}
	return nil
}

// IsValidStatus reports whether s is a known feedback status.
func IsValidStatus(s string) bool {
	for _, v := range Statuses {
		if v == s {
			return true
		}
	}
	return false
}
