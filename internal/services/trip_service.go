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

type TripService struct {
	Backend backend.Client
}

func (s TripService) CreateTrip(ctx context.Context, trip models.Trip) remote.Result[models.Trip] {
	return remote.Invoke(ctx, "trips", "create", func(ctx context.Context) (models.Trip, error) {
		return insertOne[models.Trip](ctx, s.Backend, domain.TableTrips, trip)
	})
}

func (s TripService) GetTripByID(ctx context.Context, tripID string) remote.Result[models.Trip] {
	return remote.Invoke(ctx, "trips", "get", func(ctx context.Context) (models.Trip, error) {
		if err := domain.Required("trip_id", tripID); err != nil {
			return models.Trip{}, err
		}
		return selectOne[models.Trip](ctx, s.Backend, domain.TableTrips, domain.ByID(strings.TrimSpace(tripID)))
	})
}

// GetUserTrips lists trips created by userID, newest first.
func (s TripService) GetUserTrips(ctx context.Context, userID string) remote.Result[[]models.Trip] {
	return remote.Invoke(ctx, "trips", "list_by_user", func(ctx context.Context) ([]models.Trip, error) {
		if err := domain.Required("user_id", userID); err != nil {
			return nil, err
		}
		q := domain.Query{}.Where(domain.Eq("creator_id", strings.TrimSpace(userID))).OrderBy("created_at", false)
		return selectAll[models.Trip](ctx, s.Backend, domain.TableTrips, q)
	})
}

func (s TripService) GetAllTrips(ctx context.Context) remote.Result[[]models.Trip] {
	return remote.Invoke(ctx, "trips", "list", func(ctx context.Context) ([]models.Trip, error) {
		return selectAll[models.Trip](ctx, s.Backend, domain.TableTrips, domain.Query{}.OrderBy("created_at", false))
	})
}

// UpdateTrip patches a trip. A budget given as a formatted amount such as
// "CNY 2,000" or "¥2000" is sent as a number; anything else goes as is.
func (s TripService) UpdateTrip(ctx context.Context, tripID string, updates map[string]any) remote.Result[models.Trip] {
	return remote.Invoke(ctx, "trips", "update", func(ctx context.Context) (models.Trip, error) {
		return updateByID[models.Trip](ctx, s.Backend, domain.TableTrips, tripID, tripPatch(updates))
	})
}

// DeleteTrip succeeds without payload, also when no row matched.
func (s TripService) DeleteTrip(ctx context.Context, tripID string) remote.Result[struct{}] {
	return remote.Exec(ctx, "trips", "delete", func(ctx context.Context) error {
		if err := ready(s.Backend); err != nil {
			return err
		}
		if err := domain.Required("trip_id", tripID); err != nil {
			return err
		}
		return s.Backend.Delete(ctx, domain.TableTrips, domain.Query{}.Where(domain.Eq("id", strings.TrimSpace(tripID))))
	})
}

func tripPatch(updates map[string]any) map[string]any {
	patch := make(map[string]any, len(updates))
	for k, v := range updates {
		patch[k] = v
	}
	if raw, ok := patch["budget"].(string); ok {
		if amount, err := utils.ParseYuan(raw); err == nil {
			patch["budget"] = amount
		}
	}
	return patch
}
