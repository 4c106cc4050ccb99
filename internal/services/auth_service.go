package services

import (
	"context"
	"strings"

	"zheliyou/internal/backend"
	"zheliyou/internal/domain"
	"zheliyou/internal/domain/models"
	"zheliyou/internal/remote"
)

// AuthService wraps the backend's email/password auth. Bind a token with
// Backend.WithToken before calling SignOut or GetCurrentUser.
type AuthService struct {
	Backend backend.Client
}

// SignUp registers a user; userData is stored as the user's metadata.
// Session tokens are empty when the backend requires email confirmation.
func (s AuthService) SignUp(ctx context.Context, email, password string, userData map[string]any) remote.Result[models.Session] {
	return remote.Invoke(ctx, "auth", "sign_up", func(ctx context.Context) (models.Session, error) {
		if err := ready(s.Backend); err != nil {
			return models.Session{}, err
		}
		if err := domain.Required("email", email); err != nil {
			return models.Session{}, err
		}
		if err := domain.Required("password", password); err != nil {
			return models.Session{}, err
		}
		return s.Backend.SignUp(ctx, models.Credentials{
			Email:    strings.TrimSpace(email),
			Password: password,
			Metadata: userData,
		})
	})
}

func (s AuthService) SignIn(ctx context.Context, email, password string) remote.Result[models.Session] {
	return remote.Invoke(ctx, "auth", "sign_in", func(ctx context.Context) (models.Session, error) {
		if err := ready(s.Backend); err != nil {
			return models.Session{}, err
		}
		return s.Backend.SignIn(ctx, strings.TrimSpace(email), password)
	})
}

func (s AuthService) SignOut(ctx context.Context) remote.Result[struct{}] {
	return remote.Exec(ctx, "auth", "sign_out", func(ctx context.Context) error {
		if err := ready(s.Backend); err != nil {
			return err
		}
		return s.Backend.SignOut(ctx)
	})
}

func (s AuthService) GetCurrentUser(ctx context.Context) remote.Result[models.Principal] {
	return remote.Invoke(ctx, "auth", "get_current_user", func(ctx context.Context) (models.Principal, error) {
		if err := ready(s.Backend); err != nil {
			return models.Principal{}, err
		}
		return s.Backend.CurrentUser(ctx)
	})
}
