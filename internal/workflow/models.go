package workflow

import (
	"strings"
	"time"
)

// Principal represents the authenticated caller invoking a service method.
// The zero value is an anonymous caller.
type Principal struct {
	UserID       string
	IsAdmin      bool
	MembershipID string
}

// Authenticated reports whether the principal carries an identity.
func (p Principal) Authenticated() bool {
	return strings.TrimSpace(p.UserID) != ""
}

// MembershipStatus is the review state of a membership.
type MembershipStatus string

const (
	MembershipPendingReview MembershipStatus = "pending_review"
	MembershipApproved      MembershipStatus = "approved"
	MembershipRejected      MembershipStatus = "rejected"
)

// Terminal reports whether no further transitions are allowed.
func (s MembershipStatus) Terminal() bool {
	return s == MembershipApproved || s == MembershipRejected
}

// MemberType distinguishes students of the home institution from visitors.
type MemberType string

const (
	MemberInStation  MemberType = "in_station"
	MemberOutStation MemberType = "out_station"
)

// PassportStatus records whether the member holds a passport.
type PassportStatus string

const (
	PassportYes         PassportStatus = "yes"
	PassportNo          PassportStatus = "no"
	PassportUnspecified PassportStatus = "unspecified"
)

// ApplicationStatus is the outcome state of an offer application.
type ApplicationStatus string

const (
	ApplicationSubmitted   ApplicationStatus = "submitted"
	ApplicationShortlisted ApplicationStatus = "shortlisted"
	ApplicationSelected    ApplicationStatus = "selected"
	ApplicationRejected    ApplicationStatus = "rejected"
)

// ParseMemberType accepts "in-station", "In Station" and similar spellings.
func ParseMemberType(value string) (MemberType, bool) {
	switch MemberType(normalizeToken(value)) {
	case MemberInStation:
		return MemberInStation, true
	case MemberOutStation:
		return MemberOutStation, true
	}
	return "", false
}

// ParsePassportStatus maps free-form input onto a PassportStatus. Empty input
// is unspecified.
func ParsePassportStatus(value string) (PassportStatus, bool) {
	switch PassportStatus(normalizeToken(value)) {
	case PassportYes:
		return PassportYes, true
	case PassportNo:
		return PassportNo, true
	case PassportUnspecified, "":
		return PassportUnspecified, true
	}
	return "", false
}

// ParseApplicationStatus accepts the four statuses case-insensitively.
func ParseApplicationStatus(value string) (ApplicationStatus, bool) {
	switch s := ApplicationStatus(normalizeToken(value)); s {
	case ApplicationSubmitted, ApplicationShortlisted, ApplicationSelected, ApplicationRejected:
		return s, true
	}
	return "", false
}

func normalizeToken(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	return strings.NewReplacer("-", "_", " ", "_").Replace(value)
}

// OutStationDetails holds the home-university fields required of out-station members.
type OutStationDetails struct {
	UniversityName string
	State          string
	City           string
	Pincode        string
	Address        string
}

// MembershipInput captures caller provided registration fields.
type MembershipInput struct {
	FullName           string
	RegistrationNumber string
	Email              string
	WhatsAppNumber     string
	Course             string
	BranchSection      string
	Semester           string
	MemberType         string
	HasPassport        string
	OutStation         OutStationDetails
}

// Membership represents a registration application.
type Membership struct {
	ID                 string
	FullName           string
	RegistrationNumber string
	Email              string
	WhatsAppNumber     string
	Course             string
	BranchSection      string
	Semester           string
	MemberType         MemberType
	HasPassport        PassportStatus
	OutStation         *OutStationDetails
	Status             MembershipStatus
	LinkedUserID       *string
	DecidedAt          *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// SubmitMembershipParams wraps the data required to register.
type SubmitMembershipParams struct {
	Input MembershipInput
}

// ApproveMembershipParams wraps the data required to approve a membership.
type ApproveMembershipParams struct {
	Principal    Principal
	MembershipID string
	LoginEmail   string
	TempPassword string
}

// ApprovalResult is the outcome of a successful approval.
type ApprovalResult struct {
	Membership Membership
	User       User
}

// RejectMembershipParams wraps the data required to reject a membership.
type RejectMembershipParams struct {
	Principal    Principal
	MembershipID string
}

// ListMembershipsParams wraps a filtered membership listing.
type ListMembershipsParams struct {
	Principal Principal
	Query     Query
}

// MembershipTransition is a compare-and-set request handed to the repository.
type MembershipTransition struct {
	MembershipID string
	From         MembershipStatus
	To           MembershipStatus
	Identity     *Identity
	At           time.Time
}

// User represents a login identity.
type User struct {
	ID           string
	Email        string
	IsAdmin      bool
	MembershipID *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserCredentials pairs a user with its stored password hash.
type UserCredentials struct {
	User         User
	PasswordHash string
}

// IdentityRequest carries what the provisioner needs to mint a login.
type IdentityRequest struct {
	MembershipID string
	LoginEmail   string
	TempPassword string
}

// Identity is a prepared, not yet persisted, login bound to a membership.
type Identity struct {
	User         User
	PasswordHash string
}

// OfferInput captures caller provided offer fields.
type OfferInput struct {
	Company     string
	Position    string
	Country     string
	Field       string
	Description string
	Duration    string
}

// Offer represents an internship posting.
type Offer struct {
	ID          string
	Company     string
	Position    string
	Country     string
	Field       string
	Description string
	Duration    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CreateOfferParams wraps the data required to create an offer.
type CreateOfferParams struct {
	Principal Principal
	Input     OfferInput
}

// UpdateOfferParams wraps the data required to update an offer.
type UpdateOfferParams struct {
	Principal Principal
	OfferID   string
	Input     OfferInput
}

// Application represents a member's attempt at an offer.
type Application struct {
	ID              string
	MembershipID    string
	UserID          string
	OfferID         string
	Status          ApplicationStatus
	RejectionReason string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ApplicationDetail joins an application with its member and offer for list views.
type ApplicationDetail struct {
	Application Application
	Member      Membership
	Offer       Offer
}

// ApplicationStats counts a member's applications by status.
type ApplicationStats struct {
	TotalApplied int
	Submitted    int
	Shortlisted  int
	Selected     int
	Rejected     int
}

// MembershipApplications is the member-detail view of applications.
type MembershipApplications struct {
	Membership   Membership
	Applications []Application
	Stats        ApplicationStats
}

// ApplicationFilter narrows repository application listings.
type ApplicationFilter struct {
	MembershipID string
	UserID       string
}

// ApplyParams wraps the data required to apply to an offer. UserID and
// MembershipID default to the principal's own.
type ApplyParams struct {
	Principal    Principal
	UserID       string
	MembershipID string
	OfferID      string
}

// UpdateApplicationStatusParams wraps an administrator status change.
type UpdateApplicationStatusParams struct {
	Principal       Principal
	ApplicationID   string
	Status          string
	RejectionReason string
}

// ListApplicationsParams wraps a filtered application listing.
type ListApplicationsParams struct {
	Principal Principal
	Query     Query
}

// RecipientType selects how notification recipients are resolved.
type RecipientType string

const (
	RecipientBroadcast  RecipientType = "broadcast"
	RecipientIndividual RecipientType = "individual"
)

// RecipientSelection is the administrator's choice of recipients.
type RecipientSelection struct {
	Type          RecipientType
	MembershipIDs []string
}

// Notification is an immutable message. An empty RecipientIDs list is a
// broadcast to every approved member at delivery time.
type Notification struct {
	ID           string
	Title        string
	Body         string
	RecipientIDs []string
	CreatedBy    string
	CreatedAt    time.Time
}

// IsBroadcast reports whether the notification targets all approved members.
func (n Notification) IsBroadcast() bool {
	return len(n.RecipientIDs) == 0
}

// SendNotificationParams wraps the data required to send a notification.
type SendNotificationParams struct {
	Principal  Principal
	Title      string
	Body       string
	Recipients RecipientSelection
}

// Session represents an authenticated session issued to a user.
type Session struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
	RevokedAt *time.Time
}

// AuthenticateResult captures the outcome of a successful authentication attempt.
type AuthenticateResult struct {
	User    User
	Session Session
}
