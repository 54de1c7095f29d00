package feedback

import (
	"strings"
	"testing"

	"gymdesk/internal/domain/record"
)

// TestFeedback_Validate verifies rating bounds and comment rules.
func TestFeedback_Validate(t *testing.T) {
	tests := []struct {
		name string
		f    Feedback
		want error
	}{
		{"ok", Feedback{Rating: 5, Comment: "Great class"}, nil},
		{"rating_low", Feedback{Rating: 0, Comment: "x"}, ErrInvalidRating},
		{"rating_high", Feedback{Rating: 6, Comment: "x"}, ErrInvalidRating},
		{"blank", Feedback{Rating: 3, Comment: "   "}, ErrEmptyComment},
		{"long", Feedback{Rating: 3, Comment: strings.Repeat("a", MaxCommentLength+1)}, ErrLongComment},
	}
	for _, tt := range tests {
		if got := tt.f.Validate(); got != tt.want {
			t.Errorf("%s: got %v, want %v", tt.name, got, tt.want)
		}
	}
}

// TestFeedback_ClassName verifies general feedback has no class name.
func TestFeedback_ClassName(t *testing.T) {
	if (Feedback{}).ClassName() != "" {
		t.Error("expected empty class name")
	}
	f := Feedback{FitnessClass: &record.Ref{Name: "Yoga"}}
	if f.ClassName() != "Yoga" {
		t.Errorf("got %q", f.ClassName())
	}
}
