package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestKindMatching(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", Validation("empty_message", "message is required"))
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation kind to match")
	}
	if errors.Is(err, ErrPersistence) {
		t.Fatalf("validation must not match persistence")
	}
	if !errors.Is(err, &Error{Kind: KindValidation, Code: "empty_message"}) {
		t.Fatalf("expected code-qualified match")
	}
	if errors.Is(err, &Error{Kind: KindValidation, Code: "other"}) {
		t.Fatalf("code mismatch must not match")
	}
}

func TestPersistenceUnwrapsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Persistence("insert code log", cause)
	if !errors.Is(err, cause) {
		t.Fatalf("expected cause in chain")
	}
	if !err.Retryable() {
		t.Fatalf("persistence errors are retryable")
	}
}

func TestFromClassifiesUnknownErrors(t *testing.T) {
	got := From(errors.New("boom"))
	if got.Status != http.StatusInternalServerError || got.Code != "internal_error" {
		t.Fatalf("unexpected classification: %+v", got)
	}
	got = From(fmt.Errorf("x: %w", NotFound("tutorial_not_found")))
	if got.Status != http.StatusNotFound || got.Code != "tutorial_not_found" {
		t.Fatalf("unexpected classification: %+v", got)
	}
	got = From(ErrAuthRequired)
	if got.Status != http.StatusUnauthorized {
		t.Fatalf("sentinel should get kind status, got %d", got.Status)
	}
}
