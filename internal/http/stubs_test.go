package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/example/internship-exchange/internal/workflow"
)

var (
	adminPrincipal  = workflow.Principal{UserID: "admin-1", IsAdmin: true}
	memberPrincipal = workflow.Principal{UserID: "user-1", MembershipID: "mem-1"}
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type sessionValidatorStub struct {
	principals map[string]workflow.Principal
	err        error
}

func (s sessionValidatorStub) ValidateSession(_ context.Context, token string) (workflow.Principal, error) {
	if s.err != nil {
		return workflow.Principal{}, s.err
	}
	p, ok := s.principals[token]
	if !ok {
		return workflow.Principal{}, workflow.ErrUnauthorized
	}
	return p, nil
}

func testSessions() sessionValidatorStub {
	return sessionValidatorStub{principals: map[string]workflow.Principal{
		"admin-token":  adminPrincipal,
		"member-token": memberPrincipal,
	}}
}

type authServiceStub struct {
	authenticate func(email, password string) (workflow.AuthenticateResult, error)
	revoked      []string
	revokeErr    error
}

func (s *authServiceStub) Authenticate(_ context.Context, email, password string) (workflow.AuthenticateResult, error) {
	return s.authenticate(email, password)
}

func (s *authServiceStub) RevokeSession(_ context.Context, token string) error {
	if s.revokeErr != nil {
		return s.revokeErr
	}
	s.revoked = append(s.revoked, token)
	return nil
}

type membershipServiceStub struct {
	submit  func(workflow.SubmitMembershipParams) (workflow.Membership, error)
	approve func(workflow.ApproveMembershipParams) (workflow.ApprovalResult, error)
	reject  func(workflow.RejectMembershipParams) (workflow.Membership, error)
	get     func(workflow.Principal, string) (workflow.Membership, error)
	list    func(workflow.ListMembershipsParams) ([]workflow.Membership, error)
	mine    func(workflow.Principal) (workflow.Membership, error)
}

func (s *membershipServiceStub) Submit(_ context.Context, p workflow.SubmitMembershipParams) (workflow.Membership, error) {
	return s.submit(p)
}

func (s *membershipServiceStub) Approve(_ context.Context, p workflow.ApproveMembershipParams) (workflow.ApprovalResult, error) {
	return s.approve(p)
}

func (s *membershipServiceStub) Reject(_ context.Context, p workflow.RejectMembershipParams) (workflow.Membership, error) {
	return s.reject(p)
}

func (s *membershipServiceStub) Get(_ context.Context, principal workflow.Principal, id string) (workflow.Membership, error) {
	return s.get(principal, id)
}

func (s *membershipServiceStub) List(_ context.Context, p workflow.ListMembershipsParams) ([]workflow.Membership, error) {
	return s.list(p)
}

func (s *membershipServiceStub) MembershipForUser(_ context.Context, principal workflow.Principal) (workflow.Membership, error) {
	return s.mine(principal)
}

type applicationServiceStub struct {
	apply        func(workflow.ApplyParams) (workflow.Application, error)
	updateStatus func(workflow.UpdateApplicationStatusParams) (workflow.Application, error)
	byMembership func(workflow.Principal, string) (workflow.MembershipApplications, error)
	list         func(workflow.ListApplicationsParams) ([]workflow.ApplicationDetail, error)
	mine         func(workflow.Principal) ([]workflow.ApplicationDetail, error)
}

func (s *applicationServiceStub) Apply(_ context.Context, p workflow.ApplyParams) (workflow.Application, error) {
	return s.apply(p)
}

func (s *applicationServiceStub) UpdateStatus(_ context.Context, p workflow.UpdateApplicationStatusParams) (workflow.Application, error) {
	return s.updateStatus(p)
}

func (s *applicationServiceStub) ListByMembership(_ context.Context, principal workflow.Principal, id string) (workflow.MembershipApplications, error) {
	return s.byMembership(principal, id)
}

func (s *applicationServiceStub) List(_ context.Context, p workflow.ListApplicationsParams) ([]workflow.ApplicationDetail, error) {
	return s.list(p)
}

func (s *applicationServiceStub) ListMine(_ context.Context, principal workflow.Principal) ([]workflow.ApplicationDetail, error) {
	return s.mine(principal)
}

type savedOfferStoreStub struct {
	sets map[string]workflow.OfferSet
}

func (s *savedOfferStoreStub) Load(_ context.Context, key string) workflow.OfferSet {
	if set, ok := s.sets[key]; ok {
		return set
	}
	return workflow.NewOfferSet()
}

func (s *savedOfferStoreStub) Toggle(ctx context.Context, key, offerID string) (workflow.OfferSet, error) {
	set := s.Load(ctx, key)
	if set.Has(offerID) {
		delete(set, offerID)
	} else {
		set[offerID] = struct{}{}
	}
	s.sets[key] = set
	return set, nil
}

func doRequest(t *testing.T, handler http.Handler, method, target, token, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return out
}
