package domain

import (
	"errors"
	"testing"
)

func TestParseAssignment(t *testing.T) {
	tests := []struct {
		label   string
		want    Assignment
		wantErr bool
	}{
		{"ad", Treatment, false},
		{"psa", Control, false},
		{"AD", "", true},
		{"", "", true},
		{"holdout", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			got, err := ParseAssignment(tt.label, DefaultTreatmentLabel, DefaultControlLabel)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidAssignment) {
					t.Fatalf("expected ErrInvalidAssignment, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseAssignment_CustomLabels(t *testing.T) {
	got, err := ParseAssignment("B", "B", "A")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != Treatment {
		t.Errorf("got %q, want treatment", got)
	}
}

func TestAssignment_Valid(t *testing.T) {
	if !Treatment.Valid() || !Control.Valid() {
		t.Error("known arms reported as invalid")
	}
	if Assignment("x").Valid() {
		t.Error("unknown assignment reported as valid")
	}
}
