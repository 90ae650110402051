package handler

import (
	"errors"
	"strings"
	"testing"

	"github.com/99minutos/project-registry/internal/core/domain"
)

func TestValidator_Messages(t *testing.T) {
	v := NewValidator()

	err := v.Validate(&projectRequest{Name: "", Description: "ok"})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if !strings.Contains(err.Error(), "name is required") {
		t.Fatalf("unexpected message: %q", err.Error())
	}

	err = v.Validate(&projectRequest{Name: strings.Repeat("n", 256)})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if !strings.Contains(err.Error(), "name must be at most 255 characters") {
		t.Fatalf("unexpected message: %q", err.Error())
	}

	if err := v.Validate(&projectRequest{Name: "ok"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
