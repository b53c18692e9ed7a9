package http

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/example/internship-exchange/internal/workflow"
)

var handlerTestNow = time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)

func newTestRouter(cfg RouterConfig) http.Handler {
	cfg.RequireSession = RequireSession(testSessions(), discardLogger())
	return NewRouter(cfg)
}

func TestAuthHandlers(t *testing.T) {
	t.Parallel()

	t.Run("login issues session token via cookie and header", func(t *testing.T) {
		t.Parallel()

		svc := &authServiceStub{authenticate: func(email, password string) (workflow.AuthenticateResult, error) {
			if email != "member@example.com" || password != "secret-pass" {
				return workflow.AuthenticateResult{}, workflow.ErrInvalidCredentials
			}
			return workflow.AuthenticateResult{
				User:    workflow.User{ID: "user-1", Email: email},
				Session: workflow.Session{Token: "tok-1", ExpiresAt: handlerTestNow.Add(time.Hour)},
			}, nil
		}}
		router := newTestRouter(RouterConfig{Auth: NewAuthHandler(svc, discardLogger())})

		rec := doRequest(t, router, http.MethodPost, "/sessions", "", `{"email":" Member@Example.com ","password":"secret-pass"}`)
		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
		}
		if got := rec.Header().Get("X-Session-Token"); got != "tok-1" {
			t.Fatalf("X-Session-Token = %q", got)
		}
		cookies := rec.Result().Cookies()
		if len(cookies) != 1 || cookies[0].Name != sessionCookieName || cookies[0].Value != "tok-1" {
			t.Fatalf("unexpected cookies %+v", cookies)
		}
		body := decodeBody[loginResponse](t, rec)
		if body.User.ID != "user-1" || body.Token != "tok-1" {
			t.Fatalf("unexpected body %+v", body)
		}
	})

	t.Run("bad credentials map to 401", func(t *testing.T) {
		t.Parallel()

		svc := &authServiceStub{authenticate: func(string, string) (workflow.AuthenticateResult, error) {
			return workflow.AuthenticateResult{}, workflow.ErrInvalidCredentials
		}}
		router := newTestRouter(RouterConfig{Auth: NewAuthHandler(svc, discardLogger())})

		rec := doRequest(t, router, http.MethodPost, "/sessions", "", `{"email":"a@b.c","password":"x"}`)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("malformed body is a bad request", func(t *testing.T) {
		t.Parallel()

		router := newTestRouter(RouterConfig{Auth: NewAuthHandler(&authServiceStub{}, discardLogger())})
		rec := doRequest(t, router, http.MethodPost, "/sessions", "", `{"email":`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("logout revokes the current session", func(t *testing.T) {
		t.Parallel()

		svc := &authServiceStub{}
		router := newTestRouter(RouterConfig{Auth: NewAuthHandler(svc, discardLogger())})

		rec := doRequest(t, router, http.MethodDelete, "/sessions/current", "member-token", "")
		if rec.Code != http.StatusNoContent {
			t.Fatalf("status = %d, want 204", rec.Code)
		}
		if len(svc.revoked) != 1 || svc.revoked[0] != "member-token" {
			t.Fatalf("revoked = %v", svc.revoked)
		}
	})
}

func TestMembershipHandlers(t *testing.T) {
	t.Parallel()

	t.Run("submission is public", func(t *testing.T) {
		t.Parallel()

		var got workflow.MembershipInput
		svc := &membershipServiceStub{submit: func(p workflow.SubmitMembershipParams) (workflow.Membership, error) {
			got = p.Input
			return workflow.Membership{
				ID:                 "mem-9",
				FullName:           p.Input.FullName,
				RegistrationNumber: p.Input.RegistrationNumber,
				MemberType:         workflow.MemberOutStation,
				OutStation:         &workflow.OutStationDetails{UniversityName: p.Input.OutStation.UniversityName},
				Status:             workflow.MembershipPendingReview,
				CreatedAt:          handlerTestNow,
			}, nil
		}}
		router := newTestRouter(RouterConfig{Memberships: NewMembershipHandler(svc, discardLogger())})

		rec := doRequest(t, router, http.MethodPost, "/memberships", "",
			`{"full_name":"Asha Rao","registration_number":"REG-1","member_type":"out-station","out_station":{"university_name":"State U"}}`)
		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
		}
		if got.OutStation.UniversityName != "State U" || got.MemberType != "out-station" {
			t.Fatalf("input not forwarded: %+v", got)
		}
		body := decodeBody[membershipResponse](t, rec)
		if body.Membership.Status != "pending_review" || body.Membership.OutStation == nil {
			t.Fatalf("unexpected membership %+v", body.Membership)
		}
	})

	t.Run("validation errors carry field details", func(t *testing.T) {
		t.Parallel()

		svc := &membershipServiceStub{submit: func(workflow.SubmitMembershipParams) (workflow.Membership, error) {
			return workflow.Membership{}, &workflow.ValidationError{FieldErrors: map[string]string{"full_name": "full name is required"}}
		}}
		router := newTestRouter(RouterConfig{Memberships: NewMembershipHandler(svc, discardLogger())})

		rec := doRequest(t, router, http.MethodPost, "/memberships", "", `{}`)
		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("status = %d, want 422", rec.Code)
		}
		body := decodeBody[errorResponse](t, rec)
		if body.Errors["full_name"] != "full name is required" {
			t.Fatalf("errors = %v", body.Errors)
		}
	})

	t.Run("listing requires a session and forwards the query", func(t *testing.T) {
		t.Parallel()

		var got workflow.ListMembershipsParams
		svc := &membershipServiceStub{list: func(p workflow.ListMembershipsParams) ([]workflow.Membership, error) {
			got = p
			return []workflow.Membership{{ID: "mem-1", Status: workflow.MembershipApproved}}, nil
		}}
		router := newTestRouter(RouterConfig{Memberships: NewMembershipHandler(svc, discardLogger())})

		if rec := doRequest(t, router, http.MethodGet, "/memberships", "", ""); rec.Code != http.StatusUnauthorized {
			t.Fatalf("anonymous status = %d, want 401", rec.Code)
		}

		rec := doRequest(t, router, http.MethodGet, "/memberships?q=asha&status=approved&from=2025-01-01", "admin-token", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if !got.Principal.IsAdmin || got.Query.SearchText != "asha" || got.Query.Status != "approved" || got.Query.FromDate != "2025-01-01" {
			t.Fatalf("unexpected params %+v", got)
		}
		body := decodeBody[membershipListResponse](t, rec)
		if len(body.Memberships) != 1 {
			t.Fatalf("memberships = %+v", body.Memberships)
		}
	})

	t.Run("non admin listing is forbidden", func(t *testing.T) {
		t.Parallel()

		svc := &membershipServiceStub{list: func(workflow.ListMembershipsParams) ([]workflow.Membership, error) {
			return nil, workflow.ErrUnauthorized
		}}
		router := newTestRouter(RouterConfig{Memberships: NewMembershipHandler(svc, discardLogger())})

		rec := doRequest(t, router, http.MethodGet, "/memberships", "member-token", "")
		if rec.Code != http.StatusForbidden {
			t.Fatalf("status = %d, want 403", rec.Code)
		}
	})

	t.Run("approve passes path id and credentials", func(t *testing.T) {
		t.Parallel()

		var got workflow.ApproveMembershipParams
		svc := &membershipServiceStub{approve: func(p workflow.ApproveMembershipParams) (workflow.ApprovalResult, error) {
			got = p
			linked := "user-7"
			return workflow.ApprovalResult{
				Membership: workflow.Membership{ID: p.MembershipID, Status: workflow.MembershipApproved, LinkedUserID: &linked},
				User:       workflow.User{ID: linked, Email: p.LoginEmail},
			}, nil
		}}
		router := newTestRouter(RouterConfig{Memberships: NewMembershipHandler(svc, discardLogger())})

		rec := doRequest(t, router, http.MethodPost, "/memberships/mem-3/approve", "admin-token",
			`{"login_email":"asha@example.com","temp_password":"changeme1"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
		}
		if got.MembershipID != "mem-3" || got.LoginEmail != "asha@example.com" || got.TempPassword != "changeme1" {
			t.Fatalf("unexpected params %+v", got)
		}
		body := decodeBody[approvalResponse](t, rec)
		if body.User.ID != "user-7" || body.Membership.LinkedUserID == nil {
			t.Fatalf("unexpected body %+v", body)
		}
	})

	t.Run("deciding a decided membership is a conflict", func(t *testing.T) {
		t.Parallel()

		svc := &membershipServiceStub{reject: func(p workflow.RejectMembershipParams) (workflow.Membership, error) {
			return workflow.Membership{}, &workflow.StateError{Resource: "membership", ID: p.MembershipID, Current: "approved", Target: "rejected"}
		}}
		router := newTestRouter(RouterConfig{Memberships: NewMembershipHandler(svc, discardLogger())})

		rec := doRequest(t, router, http.MethodPost, "/memberships/mem-3/reject", "admin-token", "")
		if rec.Code != http.StatusConflict {
			t.Fatalf("status = %d, want 409", rec.Code)
		}
	})

	t.Run("own membership uses the session principal", func(t *testing.T) {
		t.Parallel()

		svc := &membershipServiceStub{mine: func(p workflow.Principal) (workflow.Membership, error) {
			return workflow.Membership{ID: p.MembershipID, Status: workflow.MembershipApproved}, nil
		}}
		router := newTestRouter(RouterConfig{Memberships: NewMembershipHandler(svc, discardLogger())})

		rec := doRequest(t, router, http.MethodGet, "/me/membership", "member-token", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if body := decodeBody[membershipResponse](t, rec); body.Membership.ID != "mem-1" {
			t.Fatalf("membership id = %q", body.Membership.ID)
		}
	})
}

func TestApplicationHandlers(t *testing.T) {
	t.Parallel()

	t.Run("apply binds the caller and offer", func(t *testing.T) {
		t.Parallel()

		var got workflow.ApplyParams
		svc := &applicationServiceStub{apply: func(p workflow.ApplyParams) (workflow.Application, error) {
			got = p
			return workflow.Application{
				ID:           "app-1",
				MembershipID: p.Principal.MembershipID,
				UserID:       p.Principal.UserID,
				OfferID:      p.OfferID,
				Status:       workflow.ApplicationSubmitted,
				CreatedAt:    handlerTestNow,
			}, nil
		}}
		router := newTestRouter(RouterConfig{Applications: NewApplicationHandler(svc, discardLogger())})

		rec := doRequest(t, router, http.MethodPost, "/applications", "member-token", `{"offer_id":"offer-1"}`)
		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
		}
		if got.Principal != memberPrincipal || got.OfferID != "offer-1" {
			t.Fatalf("unexpected params %+v", got)
		}
		if body := decodeBody[applicationResponse](t, rec); body.Application.Status != "submitted" {
			t.Fatalf("status = %q", body.Application.Status)
		}
	})

	t.Run("duplicate application is a conflict with a readable message", func(t *testing.T) {
		t.Parallel()

		svc := &applicationServiceStub{apply: func(p workflow.ApplyParams) (workflow.Application, error) {
			return workflow.Application{}, fmt.Errorf("already applied to offer %s: %w", p.OfferID, workflow.ErrConflict)
		}}
		router := newTestRouter(RouterConfig{Applications: NewApplicationHandler(svc, discardLogger())})

		rec := doRequest(t, router, http.MethodPost, "/applications", "member-token", `{"offer_id":"offer-1"}`)
		if rec.Code != http.StatusConflict {
			t.Fatalf("status = %d, want 409", rec.Code)
		}
		if body := decodeBody[errorResponse](t, rec); body.Message != "already applied to offer offer-1" {
			t.Fatalf("message = %q", body.Message)
		}
	})

	t.Run("status update forwards reason", func(t *testing.T) {
		t.Parallel()

		var got workflow.UpdateApplicationStatusParams
		svc := &applicationServiceStub{updateStatus: func(p workflow.UpdateApplicationStatusParams) (workflow.Application, error) {
			got = p
			return workflow.Application{ID: p.ApplicationID, Status: workflow.ApplicationRejected, RejectionReason: p.RejectionReason}, nil
		}}
		router := newTestRouter(RouterConfig{Applications: NewApplicationHandler(svc, discardLogger())})

		rec := doRequest(t, router, http.MethodPut, "/applications/app-4/status", "admin-token", `{"status":"rejected","rejection_reason":"position filled"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if got.ApplicationID != "app-4" || got.Status != "rejected" || got.RejectionReason != "position filled" {
			t.Fatalf("unexpected params %+v", got)
		}
	})

	t.Run("member detail includes stats", func(t *testing.T) {
		t.Parallel()

		svc := &applicationServiceStub{byMembership: func(p workflow.Principal, id string) (workflow.MembershipApplications, error) {
			apps := []workflow.Application{
				{ID: "a1", Status: workflow.ApplicationSubmitted},
				{ID: "a2", Status: workflow.ApplicationSelected},
			}
			return workflow.MembershipApplications{
				Membership:   workflow.Membership{ID: id},
				Applications: apps,
				Stats:        workflow.CountApplications(apps),
			}, nil
		}}
		router := newTestRouter(RouterConfig{Applications: NewApplicationHandler(svc, discardLogger())})

		rec := doRequest(t, router, http.MethodGet, "/memberships/mem-1/applications", "admin-token", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		body := decodeBody[membershipApplicationsResponse](t, rec)
		if body.Stats.TotalApplied != 2 || body.Stats.Selected != 1 || len(body.Applications) != 2 {
			t.Fatalf("unexpected body %+v", body)
		}
	})
}

func TestSavedOffersHandlers(t *testing.T) {
	t.Parallel()

	members := &membershipServiceStub{mine: func(p workflow.Principal) (workflow.Membership, error) {
		if p.MembershipID == "" {
			return workflow.Membership{}, workflow.ErrNotFound
		}
		return workflow.Membership{ID: p.MembershipID, RegistrationNumber: "REG-1"}, nil
	}}
	store := &savedOfferStoreStub{sets: map[string]workflow.OfferSet{}}
	router := newTestRouter(RouterConfig{SavedOffers: NewSavedOffersHandler(store, members, discardLogger())})

	rec := doRequest(t, router, http.MethodPost, "/me/saved-offers/offer-2", "member-token", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("toggle status = %d, want 200", rec.Code)
	}
	body := decodeBody[savedOffersResponse](t, rec)
	if body.Saved == nil || !*body.Saved {
		t.Fatalf("expected offer to be saved: %+v", body)
	}
	if _, ok := store.sets["REG-1"]; !ok {
		t.Fatal("expected set keyed by registration number")
	}

	rec = doRequest(t, router, http.MethodPost, "/me/saved-offers/offer-2", "member-token", "")
	body = decodeBody[savedOffersResponse](t, rec)
	if body.Saved == nil || *body.Saved || len(body.OfferIDs) != 0 {
		t.Fatalf("expected offer to be removed: %+v", body)
	}

	rec = doRequest(t, router, http.MethodGet, "/me/saved-offers", "admin-token", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("admin without membership status = %d, want 404", rec.Code)
	}
}

func TestRouterMethodHandling(t *testing.T) {
	t.Parallel()

	router := newTestRouter(RouterConfig{Memberships: NewMembershipHandler(&membershipServiceStub{}, discardLogger())})

	rec := doRequest(t, router, http.MethodDelete, "/memberships", "admin-token", "")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rec.Code)
	}
	rec = doRequest(t, router, http.MethodGet, "/unknown", "admin-token", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}
