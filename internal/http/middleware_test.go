package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/example/internship-exchange/internal/workflow"
)

func TestRequireSession(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		header     string
		cookie     *http.Cookie
		validator  sessionValidatorStub
		wantStatus int
		wantCode   string
	}{
		{
			name:       "missing credentials",
			validator:  testSessions(),
			wantStatus: http.StatusUnauthorized,
			wantCode:   "AUTH_REQUIRED",
		},
		{
			name:       "non bearer authorization header",
			header:     "Basic abc",
			validator:  testSessions(),
			wantStatus: http.StatusUnauthorized,
			wantCode:   "AUTH_REQUIRED",
		},
		{
			name:       "unknown token",
			header:     "Bearer nope",
			validator:  testSessions(),
			wantStatus: http.StatusUnauthorized,
			wantCode:   "AUTH_REQUIRED",
		},
		{
			name:       "revoked session",
			cookie:     &http.Cookie{Name: sessionCookieName, Value: "revoked"},
			validator:  sessionValidatorStub{err: workflow.ErrSessionRevoked},
			wantStatus: http.StatusUnauthorized,
			wantCode:   "AUTH_SESSION_EXPIRED",
		},
		{
			name:       "expired session",
			header:     "Bearer old",
			validator:  sessionValidatorStub{err: workflow.ErrSessionExpired},
			wantStatus: http.StatusUnauthorized,
			wantCode:   "AUTH_SESSION_EXPIRED",
		},
		{
			name:       "storage failure",
			header:     "Bearer any",
			validator:  sessionValidatorStub{err: errors.New("disk on fire")},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			handler := RequireSession(tc.validator, discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				t.Fatal("next handler must not run when authentication fails")
			}))

			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			if tc.cookie != nil {
				req.AddCookie(tc.cookie)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tc.wantStatus)
			}
			body := decodeBody[errorResponse](t, rec)
			if body.ErrorCode != tc.wantCode {
				t.Fatalf("error_code = %q, want %q", body.ErrorCode, tc.wantCode)
			}
		})
	}

	t.Run("attaches principal from cookie", func(t *testing.T) {
		t.Parallel()

		var got workflow.Principal
		handler := RequireSession(testSessions(), discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got, _ = PrincipalFromContext(r.Context())
			w.WriteHeader(http.StatusNoContent)
		}))

		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "member-token"})
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusNoContent {
			t.Fatalf("status = %d, want 204", rec.Code)
		}
		if got != memberPrincipal {
			t.Fatalf("principal = %+v, want %+v", got, memberPrincipal)
		}
	})
}

func TestRequestLogger(t *testing.T) {
	t.Parallel()

	var sawLogger bool
	handler := RequestLogger(discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawLogger = LoggerFromContext(r.Context()) != nil
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if !sawLogger {
		t.Fatal("expected request-scoped logger in context")
	}
	if rec.Code != http.StatusTeapot {
		t.Fatalf("status = %d, want 418", rec.Code)
	}
}

func TestHandleServiceError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"validation", &workflow.ValidationError{FieldErrors: map[string]string{"email": "email is required"}}, http.StatusUnprocessableEntity, "VALIDATION_FAILED"},
		{"unauthorized", workflow.ErrUnauthorized, http.StatusForbidden, "AUTH_FORBIDDEN"},
		{"not found", workflow.ErrNotFound, http.StatusNotFound, ""},
		{"state", &workflow.StateError{Resource: "membership", ID: "m1", Current: "approved", Target: "rejected"}, http.StatusConflict, "INVALID_STATE"},
		{"conflict", workflow.ErrConflict, http.StatusConflict, "CONFLICT"},
		{"credentials", workflow.ErrInvalidCredentials, http.StatusUnauthorized, "AUTH_INVALID_CREDENTIALS"},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError, ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			rec := httptest.NewRecorder()
			newResponder(discardLogger()).handleServiceError(context.Background(), rec, tc.err)

			if rec.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tc.wantStatus)
			}
			body := decodeBody[errorResponse](t, rec)
			if body.ErrorCode != tc.wantCode {
				t.Fatalf("error_code = %q, want %q", body.ErrorCode, tc.wantCode)
			}
		})
	}

	t.Run("state error message names both states", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		newResponder(discardLogger()).handleServiceError(context.Background(), rec,
			&workflow.StateError{Resource: "membership", ID: "m1", Current: "approved", Target: "rejected"})

		body := decodeBody[errorResponse](t, rec)
		if body.Message != "membership m1 is approved and cannot become rejected" {
			t.Fatalf("message = %q", body.Message)
		}
	})
}
