package workflow

import (
	"context"
	"fmt"
	"log/slog"
)

// Summary is the administrator dashboard aggregate.
type Summary struct {
	TotalOffers       int
	TotalApplicants   int
	TotalMembers      int
	PendingReview     int
	Approved          int
	Rejected          int
	InStation         int
	OutStation        int
	PassportYes       int
	TotalApplications int
	Applications      ApplicationStats
}

// CountApplications tallies applications by status.
func CountApplications(applications []Application) ApplicationStats {
	stats := ApplicationStats{TotalApplied: len(applications)}
	for _, app := range applications {
		switch app.Status {
		case ApplicationSubmitted:
			stats.Submitted++
		case ApplicationShortlisted:
			stats.Shortlisted++
		case ApplicationSelected:
			stats.Selected++
		case ApplicationRejected:
			stats.Rejected++
		}
	}
	return stats
}

// Summarize derives dashboard counters from full collections. Memberships
// are counted once per distinct id. Station and passport counters cover
// approved members only.
func Summarize(memberships []Membership, applications []Application, offerCount int) Summary {
	summary := Summary{TotalOffers: offerCount}
	seen := make(map[string]struct{}, len(memberships))
	for _, m := range memberships {
		if _, dup := seen[m.ID]; dup {
			continue
		}
		seen[m.ID] = struct{}{}

		switch m.Status {
		case MembershipPendingReview:
			summary.PendingReview++
		case MembershipApproved:
			summary.Approved++
			switch m.MemberType {
			case MemberInStation:
				summary.InStation++
			case MemberOutStation:
				summary.OutStation++
			}
			if m.HasPassport == PassportYes {
				summary.PassportYes++
			}
		case MembershipRejected:
			summary.Rejected++
		}
	}
	summary.TotalApplicants = len(seen)
	summary.TotalMembers = summary.TotalApplicants
	summary.Applications = CountApplications(applications)
	summary.TotalApplications = summary.Applications.TotalApplied
	return summary
}

// OfferCounter reports how many offers exist.
type OfferCounter interface {
	CountOffers(ctx context.Context) (int, error)
}

// StatsService computes the dashboard summary on demand.
type StatsService struct {
	memberships  MembershipReader
	applications ApplicationLister
	offers       OfferCounter
	logger       *slog.Logger
}

// NewStatsService constructs a StatsService.
func NewStatsService(memberships MembershipReader, applications ApplicationLister, offers OfferCounter) *StatsService {
	return NewStatsServiceWithLogger(memberships, applications, offers, nil)
}

// NewStatsServiceWithLogger constructs a StatsService with a specified logger.
func NewStatsServiceWithLogger(memberships MembershipReader, applications ApplicationLister, offers OfferCounter, logger *slog.Logger) *StatsService {
	return &StatsService{
		memberships:  memberships,
		applications: applications,
		offers:       offers,
		logger:       defaultLogger(logger),
	}
}

// Summary reads every collection afresh and aggregates it.
func (s *StatsService) Summary(ctx context.Context, principal Principal) (result Summary, err error) {
	if s == nil {
		err = fmt.Errorf("StatsService is nil")
		return
	}
	logger := serviceLogger(ctx, s.logger, "StatsService", "Summary", "principal_id", principal.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "summary failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("total_applicants", result.TotalApplicants).InfoContext(ctx, "summary computed")
	}()

	if !principal.IsAdmin {
		err = ErrUnauthorized
		return
	}
	if s.memberships == nil || s.applications == nil || s.offers == nil {
		err = fmt.Errorf("stats repositories not configured")
		return
	}

	memberships, err := s.memberships.ListMemberships(ctx)
	if err != nil {
		err = mapRepoError(err)
		return
	}
	applications, err := s.applications.ListApplications(ctx, ApplicationFilter{})
	if err != nil {
		err = mapRepoError(err)
		return
	}
	offerCount, err := s.offers.CountOffers(ctx)
	if err != nil {
		err = mapRepoError(err)
		return
	}

	result = Summarize(memberships, applications, offerCount)
	return
}
