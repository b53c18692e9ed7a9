package workflow

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// IdentityProvisioner prepares the login identity attached to an approved
// membership. The repository persists it together with the status change.
type IdentityProvisioner interface {
	PrepareIdentity(ctx context.Context, req IdentityRequest) (Identity, error)
}

// PasswordProvisioner mints identities with argon2id password hashes.
type PasswordProvisioner struct {
	params      Argon2idParams
	idGenerator func() string
	now         func() time.Time
}

// NewPasswordProvisioner constructs a PasswordProvisioner. A zero params
// value selects DefaultArgon2idParams.
func NewPasswordProvisioner(params Argon2idParams, idGenerator func() string, now func() time.Time) *PasswordProvisioner {
	if params == (Argon2idParams{}) {
		params = DefaultArgon2idParams
	}
	if now == nil {
		now = time.Now
	}
	return &PasswordProvisioner{params: params, idGenerator: idGenerator, now: now}
}

// PrepareIdentity hashes the temporary password and builds a member user.
func (p *PasswordProvisioner) PrepareIdentity(ctx context.Context, req IdentityRequest) (Identity, error) {
	if p == nil || p.idGenerator == nil {
		return Identity{}, fmt.Errorf("identity provisioner not configured")
	}
	if err := ctx.Err(); err != nil {
		return Identity{}, err
	}

	hash, err := HashPassword(req.TempPassword, p.params)
	if err != nil {
		return Identity{}, err
	}

	now := p.now().UTC()
	membershipID := req.MembershipID
	return Identity{
		User: User{
			ID:           p.idGenerator(),
			Email:        strings.ToLower(strings.TrimSpace(req.LoginEmail)),
			MembershipID: &membershipID,
			CreatedAt:    now,
			UpdatedAt:    now,
		},
		PasswordHash: hash,
	}, nil
}
