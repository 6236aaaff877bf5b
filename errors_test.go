package oauthapp

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestErrors_Messages(t *testing.T) {
	cause := errors.New("connection refused")

	tests := []struct {
		name string
		err  error
		want []string
	}{
		{
			name: "construction",
			err:  &ConstructionError{Provider: "github", Err: cause},
			want: []string{"github", "failed to create oauth app", "connection refused"},
		},
		{
			name: "http with cause",
			err:  &HTTPError{Provider: "github", Op: OpVerifyLogin, Err: cause},
			want: []string{"verify_login", "github", "connection refused"},
		},
		{
			name: "http status only",
			err:  &HTTPError{Provider: "github", Op: OpVerifyLogin, Status: 503},
			want: []string{"unexpected http status 503"},
		},
		{
			name: "validation with status",
			err:  &ValidationError{Provider: "github", Op: OpCreateFork, Message: "check repository name or owner name", Status: 404},
			want: []string{"create_fork", "check repository name or owner name", "status 404"},
		},
		{
			name: "operation",
			err:  &OperationError{Provider: "github", Op: OpCreateFork, Err: cause},
			want: []string{"create_fork", "connection refused"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, w := range tt.want {
				if !strings.Contains(msg, w) {
					t.Errorf("Error() = %q, missing %q", msg, w)
				}
			}
		})
	}
}

func TestErrors_Unwrap(t *testing.T) {
	cause := errors.New("root cause")

	for _, err := range []error{
		&ConstructionError{Err: cause},
		&HTTPError{Err: cause},
		&OperationError{Err: cause},
	} {
		if !errors.Is(err, cause) {
			t.Errorf("%T does not unwrap to its cause", err)
		}
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: http.StatusOK},
		{name: "provider not found", err: fmt.Errorf("%w: %q", ErrProviderNotFound, "x"), want: http.StatusNotFound},
		{name: "capability", err: &OperationError{Err: ErrCapabilityNotSupported}, want: http.StatusNotImplemented},
		{name: "validation", err: &ValidationError{Status: 404}, want: http.StatusBadRequest},
		{name: "upstream 401", err: &HTTPError{Status: 401}, want: http.StatusUnauthorized},
		{name: "upstream 500", err: &HTTPError{Status: 500}, want: http.StatusBadGateway},
		{name: "transport", err: &HTTPError{Err: errors.New("eof")}, want: http.StatusBadGateway},
		{name: "construction", err: &ConstructionError{Err: errors.New("x")}, want: http.StatusInternalServerError},
		{name: "other", err: errors.New("x"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HTTPStatus(tt.err); got != tt.want {
				t.Errorf("HTTPStatus() = %d, want %d", got, tt.want)
			}
		})
	}
}
