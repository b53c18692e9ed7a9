package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/internship-exchange/internal/workflow"
)

var (
	membershipCounter uint64
	offerCounter      uint64
)

var referenceTime = time.Date(2025, time.January, 2, 15, 4, 5, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// FastArgon2idParams keeps password hashing cheap in tests.
var FastArgon2idParams = workflow.Argon2idParams{
	Memory:      1024,
	Iterations:  1,
	Parallelism: 1,
	SaltLength:  8,
	KeyLength:   16,
}

// AdminPrincipal returns an administrator principal.
func AdminPrincipal() workflow.Principal {
	return workflow.Principal{UserID: "admin-1", IsAdmin: true}
}

// MemberPrincipal returns a member principal bound to membershipID.
func MemberPrincipal(userID, membershipID string) workflow.Principal {
	return workflow.Principal{UserID: userID, MembershipID: membershipID}
}

// MembershipOption tweaks a generated membership input.
type MembershipOption func(*workflow.MembershipInput)

// NewMembershipInput returns a valid in-station registration with a unique
// registration number.
func NewMembershipInput(opts ...MembershipOption) workflow.MembershipInput {
	idx := atomic.AddUint64(&membershipCounter, 1)
	input := workflow.MembershipInput{
		FullName:           fmt.Sprintf("Member %03d", idx),
		RegistrationNumber: fmt.Sprintf("REG-%03d", idx),
		Email:              fmt.Sprintf("member%03d@example.edu", idx),
		WhatsAppNumber:     fmt.Sprintf("+91900000%04d", idx),
		Course:             "B.Tech",
		BranchSection:      "CSE-A",
		Semester:           "5",
		MemberType:         string(workflow.MemberInStation),
		HasPassport:        string(workflow.PassportYes),
	}
	for _, opt := range opts {
		opt(&input)
	}
	return input
}

// WithOutStation marks the input as out-station with complete university details.
func WithOutStation() MembershipOption {
	return func(in *workflow.MembershipInput) {
		in.MemberType = string(workflow.MemberOutStation)
		in.OutStation = workflow.OutStationDetails{
			UniversityName: "Coastal University",
			State:          "Kerala",
			City:           "Kochi",
			Pincode:        "682001",
			Address:        "1 Harbour Road",
		}
	}
}

// WithFullName overrides the member's name.
func WithFullName(name string) MembershipOption {
	return func(in *workflow.MembershipInput) { in.FullName = name }
}

// WithRegistrationNumber overrides the registration number.
func WithRegistrationNumber(reg string) MembershipOption {
	return func(in *workflow.MembershipInput) { in.RegistrationNumber = reg }
}

// WithPassport overrides the passport answer.
func WithPassport(value string) MembershipOption {
	return func(in *workflow.MembershipInput) { in.HasPassport = value }
}

// NewOfferInput returns a valid offer with a unique company name.
func NewOfferInput() workflow.OfferInput {
	idx := atomic.AddUint64(&offerCounter, 1)
	return workflow.OfferInput{
		Company:     fmt.Sprintf("Company %03d", idx),
		Position:    "Research Intern",
		Country:     "Germany",
		Field:       "Computer Science",
		Description: "Summer research placement",
		Duration:    "8 weeks",
	}
}
