package usecase

import (
	"errors"
	"testing"
)

func TestValidateWeightDraft(t *testing.T) {
	weight, err := ValidateWeightDraft(WeightDraft{
		Default: 10,
		TimeWindows: []TimeWindowDraft{
			{Start: "18:00", End: "23:00", Weight: 50},
			{Start: "06:00", End: "09:00", Weight: 20},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if weight.Default != 10 || len(weight.TimeWindows) != 2 {
		t.Fatalf("unexpected normalized config: %+v", weight)
	}
	if weight.TimeWindows[0].Start != "06:00" {
		t.Fatalf("windows must be sorted by start, got %+v", weight.TimeWindows)
	}
}

func TestValidateWeightDraftAllowsOverlap(t *testing.T) {
	// Overlap is deliberate: the scheduler applies the last matching
	// window, so later windows act as exceptions.
	_, err := ValidateWeightDraft(WeightDraft{
		Default: 5,
		TimeWindows: []TimeWindowDraft{
			{Start: "08:00", End: "20:00", Weight: 30},
			{Start: "12:00", End: "13:00", Weight: 100},
		},
	})
	if err != nil {
		t.Fatalf("overlapping windows must be accepted, got %v", err)
	}
}

func TestValidateWeightDraftRejections(t *testing.T) {
	cases := []struct {
		name  string
		draft WeightDraft
	}{
		{"default below range", WeightDraft{Default: 0}},
		{"default above range", WeightDraft{Default: 1001}},
		{"start after end", WeightDraft{
			Default:     10,
			TimeWindows: []TimeWindowDraft{{Start: "22:00", End: "06:00", Weight: 10}},
		}},
		{"start equals end", WeightDraft{
			Default:     10,
			TimeWindows: []TimeWindowDraft{{Start: "10:00", End: "10:00", Weight: 10}},
		}},
		{"window weight out of range", WeightDraft{
			Default:     10,
			TimeWindows: []TimeWindowDraft{{Start: "10:00", End: "11:00", Weight: 0}},
		}},
		{"unparseable time", WeightDraft{
			Default:     10,
			TimeWindows: []TimeWindowDraft{{Start: "25:99", End: "11:00", Weight: 10}},
		}},
	}

	for _, tc := range cases {
		_, err := ValidateWeightDraft(tc.draft)
		var ferrs *FieldErrors
		if !errors.As(err, &ferrs) {
			t.Fatalf("%s: expected *FieldErrors, got %v", tc.name, err)
		}
	}
}
