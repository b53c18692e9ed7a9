package workflow

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/example/internship-exchange/internal/persistence"
)

var testNow = time.Date(2025, time.March, 10, 9, 30, 0, 0, time.UTC)

func fixedNow() time.Time { return testNow }

func sequentialIDs(prefix string) func() string {
	var (
		mu sync.Mutex
		n  int
	)
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

type membershipRepoStub struct {
	mu          sync.Mutex
	memberships map[string]Membership
	order       []string
	users       map[string]Identity
	createErr   error
	listErr     error
	transitions int
}

func newMembershipRepoStub(existing ...Membership) *membershipRepoStub {
	r := &membershipRepoStub{memberships: map[string]Membership{}, users: map[string]Identity{}}
	for _, m := range existing {
		r.memberships[m.ID] = m
		r.order = append(r.order, m.ID)
	}
	return r
}

func (r *membershipRepoStub) CreateMembership(ctx context.Context, m Membership) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	for _, existing := range r.memberships {
		if existing.RegistrationNumber == m.RegistrationNumber {
			return persistence.ErrDuplicate
		}
	}
	r.memberships[m.ID] = m
	r.order = append(r.order, m.ID)
	return nil
}

func (r *membershipRepoStub) GetMembership(ctx context.Context, id string) (Membership, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.memberships[id]
	if !ok {
		return Membership{}, persistence.ErrNotFound
	}
	return m, nil
}

func (r *membershipRepoStub) ListMemberships(ctx context.Context) ([]Membership, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	out := make([]Membership, 0, len(r.order))
	for i := len(r.order) - 1; i >= 0; i-- {
		out = append(out, r.memberships[r.order[i]])
	}
	return out, nil
}

func (r *membershipRepoStub) TransitionMembership(ctx context.Context, t MembershipTransition) (Membership, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.memberships[t.MembershipID]
	if !ok {
		return Membership{}, persistence.ErrNotFound
	}
	if m.Status != t.From {
		return Membership{}, persistence.ErrStateChanged
	}
	if t.Identity != nil {
		for _, u := range r.users {
			if u.User.Email == t.Identity.User.Email {
				return Membership{}, persistence.ErrDuplicate
			}
		}
		r.users[t.Identity.User.ID] = *t.Identity
		id := t.Identity.User.ID
		m.LinkedUserID = &id
	}
	at := t.At
	m.Status = t.To
	m.DecidedAt = &at
	m.UpdatedAt = at
	r.memberships[m.ID] = m
	r.transitions++
	return m, nil
}

// racingMembershipRepo reports a pending membership but loses every
// compare-and-set, as if another administrator decided first.
type racingMembershipRepo struct {
	*membershipRepoStub
	winner MembershipStatus
}

func (r *racingMembershipRepo) TransitionMembership(ctx context.Context, t MembershipTransition) (Membership, error) {
	r.mu.Lock()
	m := r.memberships[t.MembershipID]
	m.Status = r.winner
	r.memberships[t.MembershipID] = m
	r.mu.Unlock()
	return Membership{}, persistence.ErrStateChanged
}

type provisionerStub struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (p *provisionerStub) PrepareIdentity(ctx context.Context, req IdentityRequest) (Identity, error) {
	p.mu.Lock()
	p.calls++
	p.mu.Unlock()
	if p.err != nil {
		return Identity{}, p.err
	}
	membershipID := req.MembershipID
	return Identity{
		User:         User{ID: "user-" + req.MembershipID, Email: req.LoginEmail, MembershipID: &membershipID},
		PasswordHash: "hash:" + req.TempPassword,
	}, nil
}

type offerRepoStub struct {
	mu     sync.Mutex
	offers map[string]Offer
	err    error
}

func newOfferRepoStub(offers ...Offer) *offerRepoStub {
	r := &offerRepoStub{offers: map[string]Offer{}}
	for _, o := range offers {
		r.offers[o.ID] = o
	}
	return r
}

func (r *offerRepoStub) CreateOffer(ctx context.Context, offer Offer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.offers[offer.ID] = offer
	return nil
}

func (r *offerRepoStub) UpdateOffer(ctx context.Context, offer Offer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.offers[offer.ID]; !ok {
		return persistence.ErrNotFound
	}
	r.offers[offer.ID] = offer
	return nil
}

func (r *offerRepoStub) GetOffer(ctx context.Context, id string) (Offer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.offers[id]
	if !ok {
		return Offer{}, persistence.ErrNotFound
	}
	return o, nil
}

func (r *offerRepoStub) ListOffers(ctx context.Context) ([]Offer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	out := make([]Offer, 0, len(r.offers))
	for _, o := range r.offers {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *offerRepoStub) CountOffers(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.offers), r.err
}

func (r *offerRepoStub) DeleteOffer(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.offers[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(r.offers, id)
	return nil
}

type applicationRepoStub struct {
	mu   sync.Mutex
	apps []Application
}

func (r *applicationRepoStub) CreateApplication(ctx context.Context, app Application) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.apps {
		if existing.UserID == app.UserID && existing.OfferID == app.OfferID {
			return persistence.ErrDuplicate
		}
	}
	r.apps = append(r.apps, app)
	return nil
}

func (r *applicationRepoStub) GetApplication(ctx context.Context, id string) (Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, app := range r.apps {
		if app.ID == id {
			return app, nil
		}
	}
	return Application{}, persistence.ErrNotFound
}

func (r *applicationRepoStub) UpdateApplicationStatus(ctx context.Context, id string, status ApplicationStatus, reason string, at time.Time) (Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, app := range r.apps {
		if app.ID == id {
			app.Status = status
			app.RejectionReason = reason
			app.UpdatedAt = at
			r.apps[i] = app
			return app, nil
		}
	}
	return Application{}, persistence.ErrNotFound
}

func (r *applicationRepoStub) ListApplications(ctx context.Context, filter ApplicationFilter) ([]Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Application, 0, len(r.apps))
	for _, app := range r.apps {
		if filter.MembershipID != "" && app.MembershipID != filter.MembershipID {
			continue
		}
		if filter.UserID != "" && app.UserID != filter.UserID {
			continue
		}
		out = append(out, app)
	}
	return out, nil
}

type notificationRepoStub struct {
	mu    sync.Mutex
	items []Notification
}

func (r *notificationRepoStub) CreateNotification(ctx context.Context, n Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, n)
	return nil
}

func (r *notificationRepoStub) ListNotifications(ctx context.Context) ([]Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.items...), nil
}

func approvedMembership(id, userID string) Membership {
	linked := userID
	return Membership{
		ID:                 id,
		FullName:           "Member " + id,
		RegistrationNumber: "REG-" + id,
		Email:              id + "@example.edu",
		WhatsAppNumber:     "+9100000" + id,
		MemberType:         MemberInStation,
		HasPassport:        PassportNo,
		Status:             MembershipApproved,
		LinkedUserID:       &linked,
		CreatedAt:          testNow,
		UpdatedAt:          testNow,
	}
}

func pendingMembership(id string) Membership {
	return Membership{
		ID:                 id,
		FullName:           "Applicant " + id,
		RegistrationNumber: "REG-" + id,
		Email:              id + "@example.edu",
		MemberType:         MemberInStation,
		HasPassport:        PassportUnspecified,
		Status:             MembershipPendingReview,
		CreatedAt:          testNow,
		UpdatedAt:          testNow,
	}
}
