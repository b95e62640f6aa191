package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestCodeToHTTPStatus(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want int
	}{
		{CodeRequestInvalid, http.StatusBadRequest},
		{CodePlanSchemaInvalid, http.StatusUnprocessableEntity},
		{CodeGenerationFailed, http.StatusBadGateway},
		{CodeGenerationTimeout, http.StatusGatewayTimeout},
		{CodeNotFound, http.StatusNotFound},
		{CodeInternalError, http.StatusInternalServerError},
		{CodeTooManyRequests, http.StatusTooManyRequests},
	}
	for _, tt := range tests {
		if got := New(tt.code, "x").HTTPStatus; got != tt.want {
			t.Errorf("code %s: got status %d, want %d", tt.code, got, tt.want)
		}
	}
}

func TestWrapUnwrap(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	appErr := Wrap(cause, CodeGenerationFailed, "ad plan generation failed")

	if !errors.Is(appErr, cause) {
		t.Error("wrapped error must unwrap to cause")
	}

	var target *AppError
	if !errors.As(appErr, &target) || target.Code != CodeGenerationFailed {
		t.Errorf("errors.As failed: %v", appErr)
	}
}

func TestWithDetail(t *testing.T) {
	appErr := New(CodeRequestInvalid, "campaign request invalid").WithDetail("business_name is required")
	if appErr.Detail != "business_name is required" {
		t.Errorf("unexpected detail: %s", appErr.Detail)
	}
}

func TestAsAppError(t *testing.T) {
	appErr := New(CodeNotFound, "missing")
	if got := AsAppError(appErr); got != appErr {
		t.Errorf("expected identity conversion, got %v", got)
	}
	if got := AsAppError(fmt.Errorf("plain")); got == nil || got.Code != CodeUnknown {
		t.Errorf("plain error must wrap as unknown, got %v", got)
	}
}
