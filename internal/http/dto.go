package http

import (
	"time"

	"github.com/example/internship-exchange/internal/workflow"
)

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTime(*t)
	return &s
}

type userDTO struct {
	ID           string  `json:"id"`
	Email        string  `json:"email"`
	IsAdmin      bool    `json:"is_admin"`
	MembershipID *string `json:"membership_id,omitempty"`
}

func toUserDTO(user workflow.User) userDTO {
	return userDTO{
		ID:           user.ID,
		Email:        user.Email,
		IsAdmin:      user.IsAdmin,
		MembershipID: user.MembershipID,
	}
}

type outStationDTO struct {
	UniversityName string `json:"university_name"`
	State          string `json:"state"`
	City           string `json:"city"`
	Pincode        string `json:"pincode"`
	Address        string `json:"address"`
}

type membershipRequest struct {
	FullName           string         `json:"full_name"`
	RegistrationNumber string         `json:"registration_number"`
	Email              string         `json:"email"`
	WhatsAppNumber     string         `json:"whatsapp_number"`
	Course             string         `json:"course"`
	BranchSection      string         `json:"branch_section"`
	Semester           string         `json:"semester"`
	MemberType         string         `json:"member_type"`
	HasPassport        string         `json:"has_passport"`
	OutStation         *outStationDTO `json:"out_station,omitempty"`
}

func (r membershipRequest) toInput() workflow.MembershipInput {
	input := workflow.MembershipInput{
		FullName:           r.FullName,
		RegistrationNumber: r.RegistrationNumber,
		Email:              r.Email,
		WhatsAppNumber:     r.WhatsAppNumber,
		Course:             r.Course,
		BranchSection:      r.BranchSection,
		Semester:           r.Semester,
		MemberType:         r.MemberType,
		HasPassport:        r.HasPassport,
	}
	if r.OutStation != nil {
		input.OutStation = workflow.OutStationDetails{
			UniversityName: r.OutStation.UniversityName,
			State:          r.OutStation.State,
			City:           r.OutStation.City,
			Pincode:        r.OutStation.Pincode,
			Address:        r.OutStation.Address,
		}
	}
	return input
}

type membershipDTO struct {
	ID                 string         `json:"id"`
	FullName           string         `json:"full_name"`
	RegistrationNumber string         `json:"registration_number"`
	Email              string         `json:"email"`
	WhatsAppNumber     string         `json:"whatsapp_number"`
	Course             string         `json:"course"`
	BranchSection      string         `json:"branch_section"`
	Semester           string         `json:"semester"`
	MemberType         string         `json:"member_type"`
	HasPassport        string         `json:"has_passport"`
	OutStation         *outStationDTO `json:"out_station,omitempty"`
	Status             string         `json:"status"`
	LinkedUserID       *string        `json:"linked_user_id,omitempty"`
	DecidedAt          *string        `json:"decided_at,omitempty"`
	CreatedAt          string         `json:"created_at"`
}

func toMembershipDTO(m workflow.Membership) membershipDTO {
	dto := membershipDTO{
		ID:                 m.ID,
		FullName:           m.FullName,
		RegistrationNumber: m.RegistrationNumber,
		Email:              m.Email,
		WhatsAppNumber:     m.WhatsAppNumber,
		Course:             m.Course,
		BranchSection:      m.BranchSection,
		Semester:           m.Semester,
		MemberType:         string(m.MemberType),
		HasPassport:        string(m.HasPassport),
		Status:             string(m.Status),
		LinkedUserID:       m.LinkedUserID,
		DecidedAt:          formatTimePtr(m.DecidedAt),
		CreatedAt:          formatTime(m.CreatedAt),
	}
	if m.OutStation != nil {
		dto.OutStation = &outStationDTO{
			UniversityName: m.OutStation.UniversityName,
			State:          m.OutStation.State,
			City:           m.OutStation.City,
			Pincode:        m.OutStation.Pincode,
			Address:        m.OutStation.Address,
		}
	}
	return dto
}

func toMembershipDTOs(items []workflow.Membership) []membershipDTO {
	out := make([]membershipDTO, 0, len(items))
	for _, m := range items {
		out = append(out, toMembershipDTO(m))
	}
	return out
}

type offerRequest struct {
	Company     string `json:"company"`
	Position    string `json:"position"`
	Country     string `json:"country"`
	Field       string `json:"field"`
	Description string `json:"description"`
	Duration    string `json:"duration"`
}

func (r offerRequest) toInput() workflow.OfferInput {
	return workflow.OfferInput{
		Company:     r.Company,
		Position:    r.Position,
		Country:     r.Country,
		Field:       r.Field,
		Description: r.Description,
		Duration:    r.Duration,
	}
}

type offerDTO struct {
	ID          string `json:"id"`
	Company     string `json:"company"`
	Position    string `json:"position"`
	Country     string `json:"country"`
	Field       string `json:"field,omitempty"`
	Description string `json:"description,omitempty"`
	Duration    string `json:"duration,omitempty"`
	Saved       *bool  `json:"saved,omitempty"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

func toOfferDTO(o workflow.Offer) offerDTO {
	return offerDTO{
		ID:          o.ID,
		Company:     o.Company,
		Position:    o.Position,
		Country:     o.Country,
		Field:       o.Field,
		Description: o.Description,
		Duration:    o.Duration,
		CreatedAt:   formatTime(o.CreatedAt),
		UpdatedAt:   formatTime(o.UpdatedAt),
	}
}

type applicationDTO struct {
	ID              string `json:"id"`
	MembershipID    string `json:"membership_id"`
	UserID          string `json:"user_id"`
	OfferID         string `json:"offer_id"`
	Status          string `json:"status"`
	RejectionReason string `json:"rejection_reason,omitempty"`
	CreatedAt       string `json:"created_at"`
	UpdatedAt       string `json:"updated_at"`
}

func toApplicationDTO(a workflow.Application) applicationDTO {
	return applicationDTO{
		ID:              a.ID,
		MembershipID:    a.MembershipID,
		UserID:          a.UserID,
		OfferID:         a.OfferID,
		Status:          string(a.Status),
		RejectionReason: a.RejectionReason,
		CreatedAt:       formatTime(a.CreatedAt),
		UpdatedAt:       formatTime(a.UpdatedAt),
	}
}

type applicationDetailDTO struct {
	applicationDTO
	MemberName         string `json:"member_name"`
	RegistrationNumber string `json:"registration_number"`
	Company            string `json:"company"`
	Position           string `json:"position"`
	Country            string `json:"country"`
}

func toApplicationDetailDTOs(items []workflow.ApplicationDetail) []applicationDetailDTO {
	out := make([]applicationDetailDTO, 0, len(items))
	for _, d := range items {
		out = append(out, applicationDetailDTO{
			applicationDTO:     toApplicationDTO(d.Application),
			MemberName:         d.Member.FullName,
			RegistrationNumber: d.Member.RegistrationNumber,
			Company:            d.Offer.Company,
			Position:           d.Offer.Position,
			Country:            d.Offer.Country,
		})
	}
	return out
}

type applicationStatsDTO struct {
	TotalApplied int `json:"total_applied"`
	Submitted    int `json:"submitted"`
	Shortlisted  int `json:"shortlisted"`
	Selected     int `json:"selected"`
	Rejected     int `json:"rejected"`
}

func toApplicationStatsDTO(s workflow.ApplicationStats) applicationStatsDTO {
	return applicationStatsDTO{
		TotalApplied: s.TotalApplied,
		Submitted:    s.Submitted,
		Shortlisted:  s.Shortlisted,
		Selected:     s.Selected,
		Rejected:     s.Rejected,
	}
}

type notificationDTO struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Body         string   `json:"body"`
	Broadcast    bool     `json:"broadcast"`
	RecipientIDs []string `json:"recipient_ids"`
	CreatedBy    string   `json:"created_by"`
	CreatedAt    string   `json:"created_at"`
}

func toNotificationDTO(n workflow.Notification) notificationDTO {
	recipients := n.RecipientIDs
	if recipients == nil {
		recipients = []string{}
	}
	return notificationDTO{
		ID:           n.ID,
		Title:        n.Title,
		Body:         n.Body,
		Broadcast:    n.IsBroadcast(),
		RecipientIDs: recipients,
		CreatedBy:    n.CreatedBy,
		CreatedAt:    formatTime(n.CreatedAt),
	}
}

func toNotificationDTOs(items []workflow.Notification) []notificationDTO {
	out := make([]notificationDTO, 0, len(items))
	for _, n := range items {
		out = append(out, toNotificationDTO(n))
	}
	return out
}

type summaryDTO struct {
	TotalOffers       int                 `json:"total_offers"`
	TotalApplicants   int                 `json:"total_applicants"`
	TotalMembers      int                 `json:"total_members"`
	PendingReview     int                 `json:"pending_review"`
	Approved          int                 `json:"approved"`
	Rejected          int                 `json:"rejected"`
	InStation         int                 `json:"in_station"`
	OutStation        int                 `json:"out_station"`
	PassportYes       int                 `json:"passport_yes"`
	TotalApplications int                 `json:"total_applications"`
	Applications      applicationStatsDTO `json:"applications"`
}

func toSummaryDTO(s workflow.Summary) summaryDTO {
	return summaryDTO{
		TotalOffers:       s.TotalOffers,
		TotalApplicants:   s.TotalApplicants,
		TotalMembers:      s.TotalMembers,
		PendingReview:     s.PendingReview,
		Approved:          s.Approved,
		Rejected:          s.Rejected,
		InStation:         s.InStation,
		OutStation:        s.OutStation,
		PassportYes:       s.PassportYes,
		TotalApplications: s.TotalApplications,
		Applications:      toApplicationStatsDTO(s.Applications),
	}
}
