// Package adapters bridges persistence records and workflow domain types.
package adapters

import (
	"github.com/example/internship-exchange/internal/persistence"
	"github.com/example/internship-exchange/internal/workflow"
)

func toWorkflowMembership(m persistence.Membership) workflow.Membership {
	out := workflow.Membership{
		ID:                 m.ID,
		FullName:           m.FullName,
		RegistrationNumber: m.RegistrationNumber,
		Email:              m.Email,
		WhatsAppNumber:     m.WhatsAppNumber,
		Course:             m.Course,
		BranchSection:      m.BranchSection,
		Semester:           m.Semester,
		MemberType:         workflow.MemberType(m.MemberType),
		HasPassport:        workflow.PassportStatus(m.HasPassport),
		Status:             workflow.MembershipStatus(m.Status),
		LinkedUserID:       copyString(m.LinkedUserID),
		DecidedAt:          m.DecidedAt,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
	if out.MemberType == workflow.MemberOutStation {
		out.OutStation = &workflow.OutStationDetails{
			UniversityName: deref(m.UniversityName),
			State:          deref(m.UniversityState),
			City:           deref(m.UniversityCity),
			Pincode:        deref(m.UniversityPincode),
			Address:        deref(m.UniversityAddress),
		}
	}
	return out
}

func toPersistenceMembership(m workflow.Membership) persistence.Membership {
	out := persistence.Membership{
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
		LinkedUserID:       copyString(m.LinkedUserID),
		DecidedAt:          m.DecidedAt,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
	if m.OutStation != nil {
		out.UniversityName = ptr(m.OutStation.UniversityName)
		out.UniversityState = ptr(m.OutStation.State)
		out.UniversityCity = ptr(m.OutStation.City)
		out.UniversityPincode = ptr(m.OutStation.Pincode)
		out.UniversityAddress = ptr(m.OutStation.Address)
	}
	return out
}

func toWorkflowUser(u persistence.User) workflow.User {
	return workflow.User{
		ID:           u.ID,
		Email:        u.Email,
		IsAdmin:      u.IsAdmin,
		MembershipID: copyString(u.MembershipID),
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func toPersistenceUser(u workflow.User, passwordHash string) persistence.User {
	return persistence.User{
		ID:           u.ID,
		Email:        u.Email,
		PasswordHash: passwordHash,
		IsAdmin:      u.IsAdmin,
		MembershipID: copyString(u.MembershipID),
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func toWorkflowOffer(o persistence.Offer) workflow.Offer {
	return workflow.Offer{
		ID:          o.ID,
		Company:     o.Company,
		Position:    o.Position,
		Country:     o.Country,
		Field:       o.Field,
		Description: o.Description,
		Duration:    o.Duration,
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
	}
}

func toPersistenceOffer(o workflow.Offer) persistence.Offer {
	return persistence.Offer{
		ID:          o.ID,
		Company:     o.Company,
		Position:    o.Position,
		Country:     o.Country,
		Field:       o.Field,
		Description: o.Description,
		Duration:    o.Duration,
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
	}
}

func toWorkflowApplication(a persistence.Application) workflow.Application {
	return workflow.Application{
		ID:              a.ID,
		MembershipID:    a.MembershipID,
		UserID:          a.UserID,
		OfferID:         a.OfferID,
		Status:          workflow.ApplicationStatus(a.Status),
		RejectionReason: a.RejectionReason,
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
}

func toPersistenceApplication(a workflow.Application) persistence.Application {
	return persistence.Application{
		ID:              a.ID,
		MembershipID:    a.MembershipID,
		UserID:          a.UserID,
		OfferID:         a.OfferID,
		Status:          string(a.Status),
		RejectionReason: a.RejectionReason,
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
}

func toWorkflowNotification(n persistence.Notification) workflow.Notification {
	return workflow.Notification{
		ID:           n.ID,
		Title:        n.Title,
		Body:         n.Body,
		RecipientIDs: append([]string(nil), n.RecipientIDs...),
		CreatedBy:    n.CreatedBy,
		CreatedAt:    n.CreatedAt,
	}
}

func toPersistenceNotification(n workflow.Notification) persistence.Notification {
	return persistence.Notification{
		ID:           n.ID,
		Title:        n.Title,
		Body:         n.Body,
		RecipientIDs: append([]string(nil), n.RecipientIDs...),
		CreatedBy:    n.CreatedBy,
		CreatedAt:    n.CreatedAt,
	}
}

func toWorkflowSession(s persistence.Session) workflow.Session {
	return workflow.Session{
		ID:        s.ID,
		UserID:    s.UserID,
		Token:     s.Token,
		ExpiresAt: s.ExpiresAt,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
		RevokedAt: s.RevokedAt,
	}
}

func toPersistenceSession(s workflow.Session) persistence.Session {
	return persistence.Session{
		ID:        s.ID,
		UserID:    s.UserID,
		Token:     s.Token,
		ExpiresAt: s.ExpiresAt,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
		RevokedAt: s.RevokedAt,
	}
}

func copyString(value *string) *string {
	if value == nil {
		return nil
	}
	v := *value
	return &v
}

func ptr(value string) *string {
	return &value
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
