package supabase

import (
	"context"
	"time"

	"github.com/supabase-community/gotrue-go/types"

	"zheliyou/internal/domain/models"
	"zheliyou/internal/remote"
)

func (c *Client) SignUp(ctx context.Context, creds models.Credentials) (models.Session, error) {
	if err := c.ready(ctx); err != nil {
		return models.Session{}, err
	}
	resp, err := c.sdk.Auth.Signup(types.SignupRequest{
		Email:    creds.Email,
		Password: creds.Password,
		Data:     creds.Metadata,
	})
	if err != nil {
		return models.Session{}, translate(err)
	}
	// Without auto-confirm the response carries only the user.
	if resp.AccessToken == "" {
		return models.Session{User: principalFrom(resp.User)}, nil
	}
	return sessionFrom(resp.Session), nil
}

func (c *Client) SignIn(ctx context.Context, email, password string) (models.Session, error) {
	if err := c.ready(ctx); err != nil {
		return models.Session{}, err
	}
	resp, err := c.sdk.Auth.SignInWithEmailPassword(email, password)
	if err != nil {
		return models.Session{}, translate(err)
	}
	return sessionFrom(resp.Session), nil
}

func (c *Client) SignOut(ctx context.Context) error {
	if err := c.ready(ctx); err != nil {
		return err
	}
	if c.token == "" {
		return errSessionMissing()
	}
	return translate(c.sdk.Auth.Logout())
}

func (c *Client) CurrentUser(ctx context.Context) (models.Principal, error) {
	if err := c.ready(ctx); err != nil {
		return models.Principal{}, err
	}
	if c.token == "" {
		return models.Principal{}, errSessionMissing()
	}
	resp, err := c.sdk.Auth.GetUser()
	if err != nil {
		return models.Principal{}, translate(err)
	}
	return principalFrom(resp.User), nil
}

func errSessionMissing() error {
	return &remote.ServiceError{Status: 401, Code: "session_missing", Message: "Auth session missing!"}
}

func sessionFrom(s types.Session) models.Session {
	return models.Session{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		TokenType:    s.TokenType,
		ExpiresIn:    s.ExpiresIn,
		ExpiresAt:    s.ExpiresAt,
		User:         principalFrom(s.User),
	}
}

func principalFrom(u types.User) models.Principal {
	p := models.Principal{
		Email:    u.Email,
		Phone:    u.Phone,
		Role:     u.Role,
		Metadata: u.UserMetadata,
	}
	if id := u.ID.String(); id != "00000000-0000-0000-0000-000000000000" {
		p.ID = id
	}
	if !u.CreatedAt.IsZero() {
		created := u.CreatedAt.In(time.UTC)
		p.CreatedAt = &created
	}
	return p
}
