package aouerr

import (
	"errors"
	"net/http"
	"testing"
)

func TestFromHandlerErrorDefault(t *testing.T) {
	e := FromHandlerError(errors.New("boom"))
	if e.Kind != KindHandlerError {
		t.Fatalf("kind = %v", e.Kind)
	}
	if e.Status != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", e.Status)
	}
}

func TestFromHandlerErrorDiscriminator(t *testing.T) {
	e := FromHandlerError(errors.New(`aouhttp:{"status":404,"message":"not found"}`))
	if e.Status != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", e.Status)
	}
	if e.Message != "not found" {
		t.Fatalf("message = %q", e.Message)
	}
}

func TestFromHandlerErrorMalformedDiscriminatorFallsBackTo500(t *testing.T) {
	e := FromHandlerError(errors.New(`aouhttp:{not json`))
	if e.Status != http.StatusInternalServerError {
		t.Fatalf("status = %d, want fallback 500", e.Status)
	}
}
