package seed

import (
	"context"
	"fmt"
	"time"

	"servicelink/pkg/auth"
	"servicelink/pkg/logger"
	"servicelink/pkg/model"
	"servicelink/pkg/sanitizer"
)

type UserUpserter interface {
	Upsert(ctx context.Context, user *model.User) error
}

type TokenIssuer interface {
	Issue(actor *auth.Actor) (string, error)
}

type MasterDemo struct {
	ID       string
	Email    string
	FullName string
}

// EnsureMasterDemo makes sure the master demo account exists with every
// role and returns a signed token for it. Running it again only refreshes
// the profile.
func EnsureMasterDemo(ctx context.Context, users UserUpserter, issuer TokenIssuer, demo MasterDemo, now time.Time, log *logger.Logger) (string, error) {
	user := &model.User{
		ID:        demo.ID,
		Email:     sanitizer.NormalizeEmail(demo.Email),
		FullName:  sanitizer.TrimAndNormalize(demo.FullName),
		Roles:     auth.RoleNames(auth.AllRoles),
		CreatedAt: now.UTC(),
	}

	if err := users.Upsert(ctx, user); err != nil {
		return "", fmt.Errorf("failed to upsert master demo user: %w", err)
	}
	log.Info("Master demo user ensured", "id", user.ID, "email", user.Email, "roles", user.Roles)

	token, err := issuer.Issue(&auth.Actor{
		ID:    user.ID,
		Email: user.Email,
		Roles: auth.AllRoles,
	})
	if err != nil {
		return "", fmt.Errorf("failed to issue master demo token: %w", err)
	}
	return token, nil
}
