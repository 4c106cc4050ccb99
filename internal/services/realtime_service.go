package services

import (
	"context"
	"strings"

	"zheliyou/internal/backend"
	"zheliyou/internal/domain"
	"zheliyou/internal/realtime"
	"zheliyou/internal/remote"
)

// RealtimeService opens change subscriptions. The returned subscription is
// already started; cancel ctx or call Stop to end it.
type RealtimeService struct {
	Backend backend.Client
}

// SubscribeToTrips delivers every insert, update and delete on trips.
func (s RealtimeService) SubscribeToTrips(ctx context.Context, listener realtime.Listener) remote.Result[*realtime.Subscription] {
	return remote.Invoke(ctx, "realtime", "subscribe_trips", func(ctx context.Context) (*realtime.Subscription, error) {
		return s.subscribe(ctx, domain.TableTrips, nil, listener)
	})
}

// SubscribeToMatches delivers changes on matches whose user_id is userID.
func (s RealtimeService) SubscribeToMatches(ctx context.Context, userID string, listener realtime.Listener) remote.Result[*realtime.Subscription] {
	return remote.Invoke(ctx, "realtime", "subscribe_matches", func(ctx context.Context) (*realtime.Subscription, error) {
		if err := domain.Required("user_id", userID); err != nil {
			return nil, err
		}
		filters := []domain.Filter{domain.Eq("user_id", strings.TrimSpace(userID))}
		return s.subscribe(ctx, domain.TableMatches, filters, listener)
	})
}

func (s RealtimeService) subscribe(ctx context.Context, table string, filters []domain.Filter, listener realtime.Listener) (*realtime.Subscription, error) {
	if err := ready(s.Backend); err != nil {
		return nil, err
	}
	sub, err := s.Backend.Subscribe(table, filters, listener)
	if err != nil {
		return nil, err
	}
	if err := sub.Start(ctx); err != nil {
		return nil, err
	}
	return sub, nil
}
