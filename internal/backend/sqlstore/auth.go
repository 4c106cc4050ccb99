package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"zheliyou/internal/domain/models"
	"zheliyou/internal/remote"
)

const (
	roleAuthenticated = "authenticated"
	minPasswordLength = 6
)

type accessClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

var (
	errInvalidCredentials = &remote.ServiceError{Status: 400, Code: "invalid_credentials", Message: "Invalid login credentials"}
	errSessionMissing     = &remote.ServiceError{Status: 401, Code: "session_missing", Message: "Auth session missing!"}
	errSessionRevoked     = &remote.ServiceError{Status: 403, Code: "session_not_found", Message: "Session from session_id claim in JWT does not exist"}
	errUserExists         = &remote.ServiceError{Status: 422, Code: "user_already_exists", Message: "User already registered"}
)

func (s *Store) SignUp(ctx context.Context, creds models.Credentials) (models.Session, error) {
	if err := s.ready(ctx); err != nil {
		return models.Session{}, err
	}
	email := strings.ToLower(strings.TrimSpace(creds.Email))
	if _, err := mail.ParseAddress(email); err != nil || email == "" {
		return models.Session{}, &remote.ServiceError{Status: 400, Code: "validation_failed", Message: "Unable to validate email address: invalid format"}
	}
	if len(creds.Password) < minPasswordLength {
		return models.Session{}, &remote.ServiceError{Status: 422, Code: "weak_password", Message: "Password should be at least 6 characters."}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(creds.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.Session{}, err
	}
	metadata := creds.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	metaJSON, err := json.Marshal(metadata)
	if err != nil {
		return models.Session{}, &remote.ServiceError{Status: 400, Code: "validation_failed", Message: "user metadata cannot be encoded"}
	}

	now := s.now().UTC().Truncate(time.Second)
	user := models.Principal{
		ID:        uuid.NewString(),
		Email:     email,
		Role:      roleAuthenticated,
		Metadata:  metadata,
		CreatedAt: &now,
	}
	_, err = s.db().ExecContext(ctx, `
		INSERT INTO auth_users (id, email, password_hash, role, user_metadata, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, user.ID, user.Email, string(hash), user.Role, string(metaJSON), now, now)
	if err != nil {
		if err = translate(err); remote.IsServiceError(err, "23505") {
			return models.Session{}, errUserExists
		}
		return models.Session{}, err
	}
	return s.issue(user)
}

func (s *Store) SignIn(ctx context.Context, email, password string) (models.Session, error) {
	if err := s.ready(ctx); err != nil {
		return models.Session{}, err
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return models.Session{}, &remote.ServiceError{Status: 400, Code: "validation_failed", Message: "email and password are required"}
	}

	user, hash, err := s.loadUser(ctx, "email", email)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Session{}, errInvalidCredentials
	}
	if err != nil {
		return models.Session{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return models.Session{}, errInvalidCredentials
	}
	return s.issue(user)
}

// SignOut revokes the bound token for the rest of its lifetime.
func (s *Store) SignOut(ctx context.Context) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	claims, err := s.verify(ctx)
	if err != nil {
		return err
	}
	expires := s.now().UTC().Add(s.ttl)
	if claims.ExpiresAt != nil {
		expires = claims.ExpiresAt.Time.UTC()
	}
	_, err = s.db().ExecContext(ctx,
		`INSERT IGNORE INTO revoked_tokens (jti, user_id, expires_at) VALUES (?, ?, ?)`,
		claims.ID, claims.Subject, expires)
	return translate(err)
}

func (s *Store) CurrentUser(ctx context.Context) (models.Principal, error) {
	if err := s.ready(ctx); err != nil {
		return models.Principal{}, err
	}
	claims, err := s.verify(ctx)
	if err != nil {
		return models.Principal{}, err
	}
	user, _, err := s.loadUser(ctx, "id", claims.Subject)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Principal{}, &remote.ServiceError{Status: 403, Code: "user_not_found", Message: "User from sub claim in JWT does not exist"}
	}
	return user, err
}

func (s *Store) issue(user models.Principal) (models.Session, error) {
	now := s.now().UTC()
	exp := now.Add(s.ttl)
	claims := accessClaims{
		Email: user.Email,
		Role:  user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return models.Session{}, err
	}
	return models.Session{
		AccessToken: signed,
		TokenType:   "bearer",
		ExpiresIn:   int(s.ttl / time.Second),
		ExpiresAt:   exp.Unix(),
		User:        user,
	}, nil
}

// verify parses the bound token and checks it has not been revoked.
func (s *Store) verify(ctx context.Context) (*accessClaims, error) {
	if s.token == "" {
		return nil, errSessionMissing
	}
	claims := &accessClaims{}
	_, err := jwt.ParseWithClaims(s.token, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, &remote.ServiceError{Status: 403, Code: "bad_jwt", Message: "invalid JWT: " + err.Error()}
	}

	var revoked int
	err = s.db().QueryRowContext(ctx, `SELECT COUNT(*) FROM revoked_tokens WHERE jti = ?`, claims.ID).Scan(&revoked)
	if err != nil {
		return nil, translate(err)
	}
	if revoked > 0 {
		return nil, errSessionRevoked
	}
	return claims, nil
}

func (s *Store) loadUser(ctx context.Context, column, value string) (models.Principal, string, error) {
	var (
		user      models.Principal
		phone     sql.NullString
		metadata  sql.NullString
		hash      string
		createdAt time.Time
	)
	// column is one of two fixed names, never caller input.
	err := s.db().QueryRowContext(ctx, `
		SELECT id, email, phone, password_hash, role, user_metadata, created_at
		FROM auth_users
		WHERE `+column+` = ?
		LIMIT 1
	`, value).Scan(&user.ID, &user.Email, &phone, &hash, &user.Role, &metadata, &createdAt)
	if err != nil {
		return models.Principal{}, "", err
	}
	user.Phone = phone.String
	if metadata.Valid && metadata.String != "" {
		_ = json.Unmarshal([]byte(metadata.String), &user.Metadata)
	}
	createdAt = createdAt.UTC()
	user.CreatedAt = &createdAt
	return user, hash, nil
}
