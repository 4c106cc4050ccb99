package services

import (
	"context"
	"strings"

	"zheliyou/internal/backend"
	"zheliyou/internal/domain"
	"zheliyou/internal/domain/models"
	"zheliyou/internal/remote"
)

// AttractionService reads the attractions catalog, best rated first.
type AttractionService struct {
	Backend backend.Client
}

func (s AttractionService) GetAllAttractions(ctx context.Context) remote.Result[[]models.Attraction] {
	return remote.Invoke(ctx, "attractions", "list", func(ctx context.Context) ([]models.Attraction, error) {
		return selectAll[models.Attraction](ctx, s.Backend, domain.TableAttractions, domain.Query{}.OrderBy("rating", false))
	})
}

func (s AttractionService) GetAttractionsByCity(ctx context.Context, city string) remote.Result[[]models.Attraction] {
	return remote.Invoke(ctx, "attractions", "list_by_city", func(ctx context.Context) ([]models.Attraction, error) {
		if err := domain.Required("city", city); err != nil {
			return nil, err
		}
		q := domain.Query{}.Where(domain.Eq("city", strings.TrimSpace(city))).OrderBy("rating", false)
		return selectAll[models.Attraction](ctx, s.Backend, domain.TableAttractions, q)
	})
}
