package workflow

import (
	"context"
	"errors"
	"sync"
	"testing"
)

func validMembershipInput() MembershipInput {
	return MembershipInput{
		FullName:           "  Asha Rao ",
		RegistrationNumber: "REG-100",
		Email:              "Asha.Rao@Example.edu",
		WhatsAppNumber:     "+919000000100",
		Course:             "B.Tech",
		BranchSection:      "CSE-A",
		Semester:           "5",
		MemberType:         "in-station",
	}
}

func TestMembershipService_Submit(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a pending membership with defaults", func(t *testing.T) {
		repo := newMembershipRepoStub()
		svc := NewMembershipService(repo, nil, sequentialIDs("m"), fixedNow)

		input := validMembershipInput()
		input.OutStation = OutStationDetails{UniversityName: "ignored"}
		got, err := svc.Submit(ctx, SubmitMembershipParams{Input: input})
		if err != nil {
			t.Fatalf("Submit returned error: %v", err)
		}
		if got.ID != "m-1" || got.Status != MembershipPendingReview {
			t.Fatalf("unexpected membership: %+v", got)
		}
		if got.FullName != "Asha Rao" || got.Email != "asha.rao@example.edu" {
			t.Fatalf("expected normalized fields, got %+v", got)
		}
		if got.MemberType != MemberInStation || got.OutStation != nil {
			t.Fatalf("in-station member must not carry out-station details: %+v", got)
		}
		if got.HasPassport != PassportUnspecified {
			t.Fatalf("expected unspecified passport, got %q", got.HasPassport)
		}
		if !got.CreatedAt.Equal(testNow) || got.LinkedUserID != nil {
			t.Fatalf("unexpected timestamps or link: %+v", got)
		}
	})

	t.Run("reports every missing field", func(t *testing.T) {
		svc := NewMembershipService(newMembershipRepoStub(), nil, sequentialIDs("m"), fixedNow)

		_, err := svc.Submit(ctx, SubmitMembershipParams{})
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected validation error, got %v", err)
		}
		for _, field := range []string{"full_name", "registration_number", "email", "whatsapp_number", "course", "branch_section", "semester", "member_type"} {
			if _, ok := vErr.FieldErrors[field]; !ok {
				t.Errorf("expected error for %s", field)
			}
		}
	})

	t.Run("rejects malformed email and passport", func(t *testing.T) {
		svc := NewMembershipService(newMembershipRepoStub(), nil, sequentialIDs("m"), fixedNow)

		input := validMembershipInput()
		input.Email = "not-an-email"
		input.HasPassport = "maybe"
		_, err := svc.Submit(ctx, SubmitMembershipParams{Input: input})
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected validation error, got %v", err)
		}
		if _, ok := vErr.FieldErrors["email"]; !ok {
			t.Fatalf("expected email error, got %v", vErr.FieldErrors)
		}
		if _, ok := vErr.FieldErrors["has_passport"]; !ok {
			t.Fatalf("expected passport error, got %v", vErr.FieldErrors)
		}
	})

	t.Run("out-station members need complete university details", func(t *testing.T) {
		svc := NewMembershipService(newMembershipRepoStub(), nil, sequentialIDs("m"), fixedNow)

		input := validMembershipInput()
		input.MemberType = "Out Station"
		input.OutStation = OutStationDetails{UniversityName: "Coastal University", City: "Kochi"}
		_, err := svc.Submit(ctx, SubmitMembershipParams{Input: input})
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected validation error, got %v", err)
		}
		for _, field := range []string{"university_state", "university_pincode", "university_address"} {
			if _, ok := vErr.FieldErrors[field]; !ok {
				t.Errorf("expected error for %s", field)
			}
		}
		if _, ok := vErr.FieldErrors["university_name"]; ok {
			t.Errorf("did not expect error for university_name")
		}

		input.OutStation = OutStationDetails{UniversityName: "Coastal University", State: "Kerala", City: "Kochi", Pincode: "682001", Address: "1 Harbour Road"}
		got, err := svc.Submit(ctx, SubmitMembershipParams{Input: input})
		if err != nil {
			t.Fatalf("Submit returned error: %v", err)
		}
		if got.MemberType != MemberOutStation || got.OutStation == nil || got.OutStation.Pincode != "682001" {
			t.Fatalf("unexpected out-station membership: %+v", got)
		}
	})

	t.Run("duplicate registration number conflicts", func(t *testing.T) {
		repo := newMembershipRepoStub()
		svc := NewMembershipService(repo, nil, sequentialIDs("m"), fixedNow)

		if _, err := svc.Submit(ctx, SubmitMembershipParams{Input: validMembershipInput()}); err != nil {
			t.Fatalf("first Submit returned error: %v", err)
		}
		_, err := svc.Submit(ctx, SubmitMembershipParams{Input: validMembershipInput()})
		if !errors.Is(err, ErrConflict) {
			t.Fatalf("expected ErrConflict, got %v", err)
		}
	})
}

func TestMembershipService_Approve(t *testing.T) {
	ctx := context.Background()
	admin := Principal{UserID: "admin-1", IsAdmin: true}
	params := func(id string) ApproveMembershipParams {
		return ApproveMembershipParams{Principal: admin, MembershipID: id, LoginEmail: "Login@Example.edu", TempPassword: "temporary1"}
	}

	t.Run("requires administrator privileges", func(t *testing.T) {
		repo := newMembershipRepoStub(pendingMembership("m-1"))
		svc := NewMembershipService(repo, &provisionerStub{}, nil, fixedNow)

		p := params("m-1")
		p.Principal = Principal{UserID: "user-9"}
		if _, err := svc.Approve(ctx, p); !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
		if repo.transitions != 0 {
			t.Fatalf("expected no transition")
		}
	})

	t.Run("validates login credentials", func(t *testing.T) {
		svc := NewMembershipService(newMembershipRepoStub(pendingMembership("m-1")), &provisionerStub{}, nil, fixedNow)

		_, err := svc.Approve(ctx, ApproveMembershipParams{Principal: admin, MembershipID: "m-1", LoginEmail: "bad", TempPassword: "short"})
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected validation error, got %v", err)
		}
		if _, ok := vErr.FieldErrors["login_email"]; !ok {
			t.Fatalf("expected login_email error")
		}
		if _, ok := vErr.FieldErrors["temp_password"]; !ok {
			t.Fatalf("expected temp_password error")
		}
	})

	t.Run("unknown membership is not found", func(t *testing.T) {
		svc := NewMembershipService(newMembershipRepoStub(), &provisionerStub{}, nil, fixedNow)
		if _, err := svc.Approve(ctx, params("missing")); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("approves and provisions exactly one identity", func(t *testing.T) {
		repo := newMembershipRepoStub(pendingMembership("m-1"))
		provisioner := &provisionerStub{}
		svc := NewMembershipService(repo, provisioner, nil, fixedNow)

		result, err := svc.Approve(ctx, params("m-1"))
		if err != nil {
			t.Fatalf("Approve returned error: %v", err)
		}
		if result.Membership.Status != MembershipApproved {
			t.Fatalf("expected approved, got %q", result.Membership.Status)
		}
		if result.Membership.LinkedUserID == nil || *result.Membership.LinkedUserID != result.User.ID {
			t.Fatalf("membership not linked to user: %+v", result)
		}
		if result.User.Email != "login@example.edu" {
			t.Fatalf("expected normalized login email, got %q", result.User.Email)
		}
		if result.Membership.DecidedAt == nil || !result.Membership.DecidedAt.Equal(testNow) {
			t.Fatalf("expected decision timestamp, got %v", result.Membership.DecidedAt)
		}
		if provisioner.calls != 1 || len(repo.users) != 1 {
			t.Fatalf("expected a single identity, calls=%d users=%d", provisioner.calls, len(repo.users))
		}
	})

	t.Run("decided memberships cannot be approved again", func(t *testing.T) {
		decided := approvedMembership("m-1", "user-1")
		provisioner := &provisionerStub{}
		svc := NewMembershipService(newMembershipRepoStub(decided), provisioner, nil, fixedNow)

		_, err := svc.Approve(ctx, params("m-1"))
		if !errors.Is(err, ErrInvalidState) {
			t.Fatalf("expected ErrInvalidState, got %v", err)
		}
		var stateErr *StateError
		if !errors.As(err, &stateErr) || stateErr.Current != string(MembershipApproved) {
			t.Fatalf("expected state explanation, got %v", err)
		}
		if provisioner.calls != 0 {
			t.Fatalf("provisioner must not run for decided memberships")
		}
	})

	t.Run("losing a race reports the winner's status", func(t *testing.T) {
		repo := &racingMembershipRepo{membershipRepoStub: newMembershipRepoStub(pendingMembership("m-1")), winner: MembershipRejected}
		svc := NewMembershipService(repo, &provisionerStub{}, nil, fixedNow)

		_, err := svc.Approve(ctx, params("m-1"))
		var stateErr *StateError
		if !errors.As(err, &stateErr) {
			t.Fatalf("expected StateError, got %v", err)
		}
		if stateErr.Current != string(MembershipRejected) || stateErr.Target != string(MembershipApproved) {
			t.Fatalf("unexpected state error: %+v", stateErr)
		}
	})

	t.Run("login email already in use conflicts", func(t *testing.T) {
		repo := newMembershipRepoStub(pendingMembership("m-1"), pendingMembership("m-2"))
		svc := NewMembershipService(repo, &provisionerStub{}, nil, fixedNow)

		if _, err := svc.Approve(ctx, params("m-1")); err != nil {
			t.Fatalf("first Approve returned error: %v", err)
		}
		_, err := svc.Approve(ctx, params("m-2"))
		if !errors.Is(err, ErrConflict) {
			t.Fatalf("expected ErrConflict, got %v", err)
		}
		if m, _ := repo.GetMembership(ctx, "m-2"); m.Status != MembershipPendingReview {
			t.Fatalf("membership must stay pending after a failed approval, got %q", m.Status)
		}
	})

	t.Run("concurrent approvals yield one winner", func(t *testing.T) {
		repo := newMembershipRepoStub(pendingMembership("m-1"))
		svc := NewMembershipService(repo, &provisionerStub{}, nil, fixedNow)

		const workers = 8
		var (
			wg        sync.WaitGroup
			mu        sync.Mutex
			successes int
			invalid   int
		)
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := svc.Approve(ctx, params("m-1"))
				mu.Lock()
				defer mu.Unlock()
				switch {
				case err == nil:
					successes++
				case errors.Is(err, ErrInvalidState):
					invalid++
				default:
					t.Errorf("unexpected error: %v", err)
				}
			}()
		}
		wg.Wait()

		if successes != 1 || invalid != workers-1 {
			t.Fatalf("expected 1 success and %d invalid, got %d and %d", workers-1, successes, invalid)
		}
		if len(repo.users) != 1 {
			t.Fatalf("expected exactly one identity, got %d", len(repo.users))
		}
	})
}

func TestMembershipService_Reject(t *testing.T) {
	ctx := context.Background()
	admin := Principal{UserID: "admin-1", IsAdmin: true}

	t.Run("rejects pending memberships without provisioning", func(t *testing.T) {
		repo := newMembershipRepoStub(pendingMembership("m-1"))
		svc := NewMembershipService(repo, nil, nil, fixedNow)

		got, err := svc.Reject(ctx, RejectMembershipParams{Principal: admin, MembershipID: "m-1"})
		if err != nil {
			t.Fatalf("Reject returned error: %v", err)
		}
		if got.Status != MembershipRejected || got.LinkedUserID != nil {
			t.Fatalf("unexpected membership: %+v", got)
		}
		if len(repo.users) != 0 {
			t.Fatalf("rejection must not create users")
		}
	})

	t.Run("rejected memberships are terminal", func(t *testing.T) {
		repo := newMembershipRepoStub(pendingMembership("m-1"))
		svc := NewMembershipService(repo, &provisionerStub{}, nil, fixedNow)

		if _, err := svc.Reject(ctx, RejectMembershipParams{Principal: admin, MembershipID: "m-1"}); err != nil {
			t.Fatalf("Reject returned error: %v", err)
		}
		if _, err := svc.Reject(ctx, RejectMembershipParams{Principal: admin, MembershipID: "m-1"}); !errors.Is(err, ErrInvalidState) {
			t.Fatalf("expected ErrInvalidState on second reject, got %v", err)
		}
		_, err := svc.Approve(ctx, ApproveMembershipParams{Principal: admin, MembershipID: "m-1", LoginEmail: "a@example.edu", TempPassword: "temporary1"})
		if !errors.Is(err, ErrInvalidState) {
			t.Fatalf("expected ErrInvalidState on approve after reject, got %v", err)
		}
	})

	t.Run("requires administrator privileges", func(t *testing.T) {
		svc := NewMembershipService(newMembershipRepoStub(pendingMembership("m-1")), nil, nil, fixedNow)
		if _, err := svc.Reject(ctx, RejectMembershipParams{MembershipID: "m-1"}); !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})
}

func TestMembershipService_Reads(t *testing.T) {
	ctx := context.Background()
	repo := newMembershipRepoStub(pendingMembership("m-1"), approvedMembership("m-2", "user-2"))
	svc := NewMembershipService(repo, nil, nil, fixedNow)

	t.Run("list filters by status", func(t *testing.T) {
		got, err := svc.List(ctx, ListMembershipsParams{Principal: Principal{UserID: "a", IsAdmin: true}, Query: Query{Status: "approved"}})
		if err != nil {
			t.Fatalf("List returned error: %v", err)
		}
		if len(got) != 1 || got[0].ID != "m-2" {
			t.Fatalf("unexpected list: %+v", got)
		}
	})

	t.Run("list requires administrator", func(t *testing.T) {
		if _, err := svc.List(ctx, ListMembershipsParams{Principal: Principal{UserID: "user-2", MembershipID: "m-2"}}); !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("members read only their own membership", func(t *testing.T) {
		member := Principal{UserID: "user-2", MembershipID: "m-2"}
		if _, err := svc.Get(ctx, member, "m-1"); !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
		got, err := svc.MembershipForUser(ctx, member)
		if err != nil || got.ID != "m-2" {
			t.Fatalf("unexpected own membership %+v err=%v", got, err)
		}
	})

	t.Run("administrators without membership get not found", func(t *testing.T) {
		if _, err := svc.MembershipForUser(ctx, Principal{UserID: "admin", IsAdmin: true}); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}
