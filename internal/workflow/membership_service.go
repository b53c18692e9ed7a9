package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"
)

const minTempPasswordLength = 8

// MembershipReader exposes membership lookups shared by several services.
type MembershipReader interface {
	GetMembership(ctx context.Context, id string) (Membership, error)
	ListMemberships(ctx context.Context) ([]Membership, error)
}

// MembershipRepository captures the persistence operations needed by MembershipService.
type MembershipRepository interface {
	MembershipReader
	CreateMembership(ctx context.Context, membership Membership) error
	// TransitionMembership moves the membership out of From only if it is
	// still in From, inserting Identity in the same transaction when set.
	TransitionMembership(ctx context.Context, transition MembershipTransition) (Membership, error)
}

// MembershipService drives the registration review lifecycle.
type MembershipService struct {
	repo        MembershipRepository
	provisioner IdentityProvisioner
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewMembershipService constructs a MembershipService.
func NewMembershipService(repo MembershipRepository, provisioner IdentityProvisioner, idGenerator func() string, now func() time.Time) *MembershipService {
	return NewMembershipServiceWithLogger(repo, provisioner, idGenerator, now, nil)
}

// NewMembershipServiceWithLogger constructs a MembershipService with a specified logger.
func NewMembershipServiceWithLogger(repo MembershipRepository, provisioner IdentityProvisioner, idGenerator func() string, now func() time.Time, logger *slog.Logger) *MembershipService {
	if now == nil {
		now = time.Now
	}
	return &MembershipService{
		repo:        repo,
		provisioner: provisioner,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *MembershipService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "MembershipService", operation, attrs...)
}

// Submit records a new registration in pending_review. No principal is required.
func (s *MembershipService) Submit(ctx context.Context, params SubmitMembershipParams) (result Membership, err error) {
	if s == nil {
		err = fmt.Errorf("MembershipService is nil")
		return
	}
	logger := s.loggerWith(ctx, "Submit", "registration_number", strings.TrimSpace(params.Input.RegistrationNumber))
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "membership submission failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("membership_id", result.ID, "member_type", result.MemberType).InfoContext(ctx, "membership submitted")
	}()

	if s.repo == nil || s.idGenerator == nil {
		err = fmt.Errorf("membership service not configured")
		return
	}

	var membership Membership
	membership, err = newMembership(params.Input)
	if err != nil {
		return
	}

	now := s.now().UTC()
	membership.ID = s.idGenerator()
	membership.Status = MembershipPendingReview
	membership.CreatedAt = now
	membership.UpdatedAt = now

	if err = s.repo.CreateMembership(ctx, membership); err != nil {
		err = mapRepoError(err)
		if errors.Is(err, ErrConflict) {
			err = fmt.Errorf("registration number %q already registered: %w", membership.RegistrationNumber, ErrConflict)
		}
		return
	}

	result = membership
	return
}

// newMembership normalizes and validates submission input.
func newMembership(input MembershipInput) (Membership, error) {
	vErr := &ValidationError{}
	m := Membership{
		FullName:           strings.TrimSpace(input.FullName),
		RegistrationNumber: strings.TrimSpace(input.RegistrationNumber),
		Email:              strings.ToLower(strings.TrimSpace(input.Email)),
		WhatsAppNumber:     strings.TrimSpace(input.WhatsAppNumber),
		Course:             strings.TrimSpace(input.Course),
		BranchSection:      strings.TrimSpace(input.BranchSection),
		Semester:           strings.TrimSpace(input.Semester),
	}

	required := []struct{ field, value string }{
		{"full_name", m.FullName},
		{"registration_number", m.RegistrationNumber},
		{"email", m.Email},
		{"whatsapp_number", m.WhatsAppNumber},
		{"course", m.Course},
		{"branch_section", m.BranchSection},
		{"semester", m.Semester},
	}
	for _, r := range required {
		if r.value == "" {
			vErr.add(r.field, r.field+" is required")
		}
	}
	if m.Email != "" && !validEmail(m.Email) {
		vErr.add("email", "email must be a valid address")
	}

	if strings.TrimSpace(input.MemberType) == "" {
		vErr.add("member_type", "member_type is required")
	} else if memberType, ok := ParseMemberType(input.MemberType); ok {
		m.MemberType = memberType
	} else {
		vErr.add("member_type", "member_type must be in_station or out_station")
	}

	if passport, ok := ParsePassportStatus(input.HasPassport); ok {
		m.HasPassport = passport
	} else {
		vErr.add("has_passport", "has_passport must be yes, no or unspecified")
	}

	if m.MemberType == MemberOutStation {
		details := OutStationDetails{
			UniversityName: strings.TrimSpace(input.OutStation.UniversityName),
			State:          strings.TrimSpace(input.OutStation.State),
			City:           strings.TrimSpace(input.OutStation.City),
			Pincode:        strings.TrimSpace(input.OutStation.Pincode),
			Address:        strings.TrimSpace(input.OutStation.Address),
		}
		outStation := []struct{ field, value string }{
			{"university_name", details.UniversityName},
			{"university_state", details.State},
			{"university_city", details.City},
			{"university_pincode", details.Pincode},
			{"university_address", details.Address},
		}
		for _, r := range outStation {
			if r.value == "" {
				vErr.add(r.field, r.field+" is required for out-station members")
			}
		}
		m.OutStation = &details
	}

	if vErr.HasErrors() {
		return Membership{}, vErr
	}
	return m, nil
}

func validEmail(value string) bool {
	addr, err := mail.ParseAddress(value)
	return err == nil && strings.EqualFold(addr.Address, value)
}

// Approve moves a pending membership to approved and provisions its login.
func (s *MembershipService) Approve(ctx context.Context, params ApproveMembershipParams) (result ApprovalResult, err error) {
	if s == nil {
		err = fmt.Errorf("MembershipService is nil")
		return
	}
	id := strings.TrimSpace(params.MembershipID)
	logger := s.loggerWith(ctx, "Approve", "principal_id", params.Principal.UserID, "membership_id", id)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "membership approval failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("user_id", result.User.ID).InfoContext(ctx, "membership approved")
	}()

	if !params.Principal.IsAdmin {
		err = ErrUnauthorized
		return
	}
	if s.repo == nil || s.provisioner == nil {
		err = fmt.Errorf("membership service not configured")
		return
	}

	loginEmail := strings.ToLower(strings.TrimSpace(params.LoginEmail))
	vErr := &ValidationError{}
	if id == "" {
		vErr.add("membership_id", "membership_id is required")
	}
	switch {
	case loginEmail == "":
		vErr.add("login_email", "login_email is required")
	case !validEmail(loginEmail):
		vErr.add("login_email", "login_email must be a valid address")
	}
	if len(params.TempPassword) < minTempPasswordLength {
		vErr.add("temp_password", fmt.Sprintf("temp_password must be at least %d characters", minTempPasswordLength))
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	var current Membership
	if current, err = s.pendingMembership(ctx, id, MembershipApproved); err != nil {
		return
	}

	var identity Identity
	identity, err = s.provisioner.PrepareIdentity(ctx, IdentityRequest{
		MembershipID: current.ID,
		LoginEmail:   loginEmail,
		TempPassword: params.TempPassword,
	})
	if err != nil {
		return
	}

	var updated Membership
	updated, err = s.transition(ctx, id, MembershipApproved, &identity)
	if err != nil {
		if errors.Is(err, ErrConflict) {
			err = fmt.Errorf("login email %q already in use: %w", loginEmail, ErrConflict)
		}
		return
	}

	result = ApprovalResult{Membership: updated, User: identity.User}
	return
}

// Reject moves a pending membership to rejected.
func (s *MembershipService) Reject(ctx context.Context, params RejectMembershipParams) (result Membership, err error) {
	if s == nil {
		err = fmt.Errorf("MembershipService is nil")
		return
	}
	id := strings.TrimSpace(params.MembershipID)
	logger := s.loggerWith(ctx, "Reject", "principal_id", params.Principal.UserID, "membership_id", id)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "membership rejection failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "membership rejected")
	}()

	if !params.Principal.IsAdmin {
		err = ErrUnauthorized
		return
	}
	if s.repo == nil {
		err = fmt.Errorf("membership repository not configured")
		return
	}
	if id == "" {
		err = newValidationError("membership_id", "membership_id is required")
		return
	}

	if _, err = s.pendingMembership(ctx, id, MembershipRejected); err != nil {
		return
	}
	result, err = s.transition(ctx, id, MembershipRejected, nil)
	return
}

func (s *MembershipService) pendingMembership(ctx context.Context, id string, target MembershipStatus) (Membership, error) {
	current, err := s.repo.GetMembership(ctx, id)
	if err != nil {
		return Membership{}, mapRepoError(err)
	}
	if current.Status != MembershipPendingReview {
		return Membership{}, &StateError{Resource: "membership", ID: id, Current: string(current.Status), Target: string(target)}
	}
	return current, nil
}

// transition performs the compare-and-set. When another caller won the race
// the refreshed status is reported in the StateError.
func (s *MembershipService) transition(ctx context.Context, id string, target MembershipStatus, identity *Identity) (Membership, error) {
	updated, err := s.repo.TransitionMembership(ctx, MembershipTransition{
		MembershipID: id,
		From:         MembershipPendingReview,
		To:           target,
		Identity:     identity,
		At:           s.now().UTC(),
	})
	if err == nil {
		return updated, nil
	}

	err = mapRepoError(err)
	if errors.Is(err, ErrInvalidState) {
		var stateErr *StateError
		if errors.As(err, &stateErr) {
			return Membership{}, err
		}
		current := "decided"
		if latest, getErr := s.repo.GetMembership(ctx, id); getErr == nil {
			current = string(latest.Status)
		}
		return Membership{}, &StateError{Resource: "membership", ID: id, Current: current, Target: string(target)}
	}
	return Membership{}, err
}

// Get returns a single membership to an administrator.
func (s *MembershipService) Get(ctx context.Context, principal Principal, id string) (result Membership, err error) {
	if s == nil {
		err = fmt.Errorf("MembershipService is nil")
		return
	}
	id = strings.TrimSpace(id)
	logger := s.loggerWith(ctx, "Get", "principal_id", principal.UserID, "membership_id", id)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "membership lookup failed", "error", err, "error_kind", ErrorKind(err))
		}
	}()

	if !principal.IsAdmin && (id == "" || principal.MembershipID != id) {
		err = ErrUnauthorized
		return
	}
	if s.repo == nil {
		err = fmt.Errorf("membership repository not configured")
		return
	}
	if id == "" {
		err = ErrNotFound
		return
	}

	result, err = s.repo.GetMembership(ctx, id)
	err = mapRepoError(err)
	return
}

// List returns memberships matching the query, newest first.
func (s *MembershipService) List(ctx context.Context, params ListMembershipsParams) (result []Membership, err error) {
	if s == nil {
		err = fmt.Errorf("MembershipService is nil")
		return
	}
	logger := s.loggerWith(ctx, "List", "principal_id", params.Principal.UserID, "status", params.Query.Status)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "membership listing failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("count", len(result)).InfoContext(ctx, "memberships listed")
	}()

	if !params.Principal.IsAdmin {
		err = ErrUnauthorized
		return
	}
	if s.repo == nil {
		err = fmt.Errorf("membership repository not configured")
		return
	}

	var all []Membership
	all, err = s.repo.ListMemberships(ctx)
	if err != nil {
		err = mapRepoError(err)
		return
	}
	result = Filter(all, params.Query)
	return
}

// MembershipForUser returns the caller's own membership.
func (s *MembershipService) MembershipForUser(ctx context.Context, principal Principal) (Membership, error) {
	if s == nil {
		return Membership{}, fmt.Errorf("MembershipService is nil")
	}
	if !principal.Authenticated() {
		return Membership{}, ErrUnauthorized
	}
	if principal.MembershipID == "" {
		return Membership{}, ErrNotFound
	}
	if s.repo == nil {
		return Membership{}, fmt.Errorf("membership repository not configured")
	}
	membership, err := s.repo.GetMembership(ctx, principal.MembershipID)
	if err != nil {
		return Membership{}, mapRepoError(err)
	}
	return membership, nil
}
