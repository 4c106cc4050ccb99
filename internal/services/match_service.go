package services

import (
	"context"
	"fmt"
	"strings"

	"zheliyou/internal/backend"
	"zheliyou/internal/domain"
	"zheliyou/internal/domain/models"
	"zheliyou/internal/remote"
)

type MatchService struct {
	Backend backend.Client
}

func (s MatchService) CreateMatch(ctx context.Context, match models.Match) remote.Result[models.Match] {
	return remote.Invoke(ctx, "matches", "create", func(ctx context.Context) (models.Match, error) {
		return insertOne[models.Match](ctx, s.Backend, domain.TableMatches, match)
	})
}

// GetUserMatches lists matches on either side of userID, newest first.
func (s MatchService) GetUserMatches(ctx context.Context, userID string) remote.Result[[]models.Match] {
	return remote.Invoke(ctx, "matches", "list_by_user", func(ctx context.Context) ([]models.Match, error) {
		if err := domain.Required("user_id", userID); err != nil {
			return nil, err
		}
		id := strings.TrimSpace(userID)
		q := domain.Query{AnyOf: []domain.Filter{domain.Eq("user_id", id), domain.Eq("matched_user_id", id)}}
		return selectAll[models.Match](ctx, s.Backend, domain.TableMatches, q.OrderBy("created_at", false))
	})
}

func (s MatchService) UpdateMatchStatus(ctx context.Context, matchID, status string) remote.Result[models.Match] {
	return remote.Invoke(ctx, "matches", "update_status", func(ctx context.Context) (models.Match, error) {
		status = strings.ToLower(strings.TrimSpace(status))
		if !models.ValidMatchStatus(status) {
			return models.Match{}, invalidMatchStatus(status)
		}
		return updateByID[models.Match](ctx, s.Backend, domain.TableMatches, matchID, map[string]any{"status": status})
	})
}

func invalidMatchStatus(status string) error {
	return domain.ValidationError{
		Field: "status",
		Msg:   fmt.Sprintf("must be one of %s, %s, %s; got %q", models.MatchStatusPending, models.MatchStatusAccepted, models.MatchStatusRejected, status),
	}
}
