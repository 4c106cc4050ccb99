package services

import (
	"context"
	"strings"

	"zheliyou/internal/backend"
	"zheliyou/internal/domain"
	"zheliyou/internal/domain/models"
	"zheliyou/internal/remote"
	"zheliyou/internal/utils"
)

// UserService manages rows of user_profiles. A profile's id is the id of
// the auth user it belongs to.
type UserService struct {
	Backend backend.Client
}

func (s UserService) CreateUserProfile(ctx context.Context, profile models.UserProfile) remote.Result[models.UserProfile] {
	return remote.Invoke(ctx, "users", "create_profile", func(ctx context.Context) (models.UserProfile, error) {
		return insertOne[models.UserProfile](ctx, s.Backend, domain.TableUserProfiles, profile)
	})
}

func (s UserService) GetUserProfile(ctx context.Context, userID string) remote.Result[models.UserProfile] {
	return remote.Invoke(ctx, "users", "get_profile", func(ctx context.Context) (models.UserProfile, error) {
		if err := domain.Required("user_id", userID); err != nil {
			return models.UserProfile{}, err
		}
		return selectOne[models.UserProfile](ctx, s.Backend, domain.TableUserProfiles, domain.ByID(strings.TrimSpace(userID)))
	})
}

// UpdateUserProfile patches a profile. Interests may be sent as one
// comma-separated string; they are stored as a lower-cased list.
func (s UserService) UpdateUserProfile(ctx context.Context, userID string, updates map[string]any) remote.Result[models.UserProfile] {
	return remote.Invoke(ctx, "users", "update_profile", func(ctx context.Context) (models.UserProfile, error) {
		patch := make(map[string]any, len(updates))
		for k, v := range updates {
			patch[k] = v
		}
		if raw, ok := patch["interests"].(string); ok {
			patch["interests"] = utils.SplitList(raw)
		}
		return updateByID[models.UserProfile](ctx, s.Backend, domain.TableUserProfiles, userID, patch)
	})
}

// GetAllUsers lists profiles, leaving out excludeUserID when it is set.
func (s UserService) GetAllUsers(ctx context.Context, excludeUserID string) remote.Result[[]models.UserProfile] {
	return remote.Invoke(ctx, "users", "list_profiles", func(ctx context.Context) ([]models.UserProfile, error) {
		q := domain.Query{}
		if id := strings.TrimSpace(excludeUserID); id != "" {
			q = q.Where(domain.Neq("id", id))
		}
		return selectAll[models.UserProfile](ctx, s.Backend, domain.TableUserProfiles, q)
	})
}
