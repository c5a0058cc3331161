package book

import (
	"math"
	"strings"
	"testing"
)

func TestNew_Valid(t *testing.T) {
	b, err := New("The Hobbit", 4.3, "art", "a summary", Attrs{
		Author:     "J.R.R. Tolkien",
		NumRatings: 10,
		NumReviews: 2,
		Pages:      310,
		Year:       1937,
		Publisher:  "Allen & Unwin",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.Title() != "The Hobbit" {
		t.Errorf("Title() = %q", b.Title())
	}
	if b.Key() != "the hobbit" {
		t.Errorf("Key() = %q", b.Key())
	}
	if b.Rating() != 4.3 {
		t.Errorf("Rating() = %v", b.Rating())
	}
	if b.Topic() != "art" {
		t.Errorf("Topic() = %q", b.Topic())
	}
	if b.Author() != "J.R.R. Tolkien" || b.Pages() != 310 || b.Year() != 1937 {
		t.Errorf("attrs not carried: %+v", b)
	}
	if b.NumRatings() != 10 || b.NumReviews() != 2 || b.Publisher() != "Allen & Unwin" {
		t.Errorf("attrs not carried: %+v", b)
	}
	if b.Summary() != "a summary" {
		t.Errorf("Summary() = %q", b.Summary())
	}
}

func TestNew_RatingBounds(t *testing.T) {
	for _, r := range []float64{0, 2.5, 5} {
		if _, err := New("t", r, "art", "", Attrs{}); err != nil {
			t.Errorf("rating %v: unexpected error: %v", r, err)
		}
	}
	for _, r := range []float64{-0.1, 5.01, math.NaN(), math.Inf(1)} {
		if _, err := New("t", r, "art", "", Attrs{}); err == nil {
			t.Errorf("rating %v: expected error", r)
		}
	}
}

func TestNew_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		title   string
		topic   string
		attrs   Attrs
		wantErr string
	}{
		{"blank title", "  ", "art", Attrs{}, "title is required"},
		{"blank topic", "t", "", Attrs{}, "topic"},
		{"negative pages", "t", "art", Attrs{Pages: -1}, "must not be negative"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.title, 3, tt.topic, "", tt.attrs)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want substring %q", err, tt.wantErr)
			}
		})
	}
}

func TestTopicSet(t *testing.T) {
	open := NewTopicSet()
	if !open.Allows("anything") {
		t.Error("empty set must allow any topic")
	}

	set := NewTopicSet(DefaultTopics...)
	if !set.Allows("world war II") {
		t.Error("expected world war II to be allowed")
	}
	if set.Allows("cooking") {
		t.Error("cooking must not be allowed")
	}
	if len(DefaultTopics) != 12 {
		t.Errorf("len(DefaultTopics) = %d, want 12", len(DefaultTopics))
	}
}
