package utils

import (
	"errors"
	"testing"
)

type reportInput struct {
	Title string `binding:"required"`
	Date  string `binding:"required"`
}

func TestValidateStructUsesBindingTags(t *testing.T) {
	err := ValidateStruct(&reportInput{Title: "Pothole"})
	if !errors.Is(err, ErrorValidation) {
		t.Fatalf("missing field: err = %v, want ErrorValidation", err)
	}

	if err := ValidateStruct(&reportInput{Title: "Pothole", Date: "2026-09-01"}); err != nil {
		t.Fatalf("valid input: %v", err)
	}
}

func TestRequireNonEmptyTreatsWhitespaceAsEmpty(t *testing.T) {
	err := RequireNonEmpty(map[string]string{"title": "   "})
	if !errors.Is(err, ErrorValidation) {
		t.Fatalf("whitespace-only: err = %v, want ErrorValidation", err)
	}
}
