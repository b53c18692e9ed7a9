package persistence

import "time"

// Membership represents a registration record for the internship exchange.
type Membership struct {
	ID                 string
	FullName           string
	RegistrationNumber string
	Email              string
	WhatsAppNumber     string
	Course             string
	BranchSection      string
	Semester           string
	MemberType         string
	HasPassport        string
	UniversityName     *string
	UniversityState    *string
	UniversityCity     *string
	UniversityPincode  *string
	UniversityAddress  *string
	Status             string
	LinkedUserID       *string
	DecidedAt          *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// User represents a login identity.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	IsAdmin      bool
	MembershipID *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
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

// Application represents a member's attempt at an offer.
type Application struct {
	ID              string
	MembershipID    string
	UserID          string
	OfferID         string
	Status          string
	RejectionReason string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Notification represents an administrator broadcast or targeted message.
type Notification struct {
	ID           string
	Title        string
	Body         string
	RecipientIDs []string
	CreatedBy    string
	CreatedAt    time.Time
}

// Session represents an authentication session persisted for a user.
type Session struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
	RevokedAt *time.Time
}
