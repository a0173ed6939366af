package apperr

import (
	"fmt"
	"net/http"
	"testing"
)

func TestGetKindFollowsWrappedErrors(t *testing.T) {
	base := Collaborator("speech-to-text", fmt.Errorf("timeout"))
	wrapped := fmt.Errorf("transcribe audio: %w", base)

	if got := GetKind(wrapped); got != KindCollaboratorFailure {
		t.Fatalf("expected collaborator failure kind, got %v", got)
	}
	if !Is(wrapped, KindCollaboratorFailure) {
		t.Fatalf("expected Is to match wrapped error")
	}
	if GetKind(fmt.Errorf("plain")) != KindUnknown {
		t.Fatalf("expected unknown kind for plain error")
	}
}

func TestHTTPStatusMapping(t *testing.T) {
	tests := []struct {
		err  *Error
		want int
	}{
		{NotFound("x"), http.StatusNotFound},
		{Validation("x"), http.StatusBadRequest},
		{Unauthorized("x"), http.StatusUnauthorized},
		{MalformedSelection("x"), http.StatusUnprocessableEntity},
		{Collaborator("catalog", nil), http.StatusBadGateway},
		{Internal("x"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := tt.err.HTTPStatus(); got != tt.want {
			t.Errorf("%s: expected %d, got %d", tt.err.Kind, tt.want, got)
		}
	}
}

func TestErrorMessageIncludesOp(t *testing.T) {
	err := NotFound("quote not found").WithOp("quotes.Get")
	if err.Error() != "quotes.Get: quote not found" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}
