package services

import (
	"context"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"zheliyou/internal/backend"
	"zheliyou/internal/domain"
	"zheliyou/internal/domain/models"
	"zheliyou/internal/remote"
	"zheliyou/internal/utils"
)

// SeedReport counts what LoadAttractions did.
type SeedReport struct {
	Inserted int      `json:"inserted"`
	Skipped  int      `json:"skipped"`
	Problems []string `json:"problems,omitempty"`
}

type attractionSeedFile struct {
	Attractions []models.Attraction `yaml:"attractions"`
}

// SeedService loads catalog data from YAML files.
type SeedService struct {
	Backend backend.Client
}

// LoadAttractions inserts every valid entry of an "attractions:" YAML list.
// Invalid entries are skipped and reported; the first failed insert stops the load.
func (s SeedService) LoadAttractions(ctx context.Context, r io.Reader) remote.Result[SeedReport] {
	return remote.Invoke(ctx, "seed", "load_attractions", func(ctx context.Context) (SeedReport, error) {
		var report SeedReport
		if err := ready(s.Backend); err != nil {
			return report, err
		}
		if r == nil {
			return report, domain.ValidationError{Field: "file", Msg: "is required"}
		}

		var file attractionSeedFile
		if err := yaml.NewDecoder(r).Decode(&file); err != nil && err != io.EOF {
			return report, domain.ValidationError{Field: "file", Msg: "invalid YAML", Err: err}
		}

		for i, a := range file.Attractions {
			a.Name = utils.NormalizeSpace(a.Name)
			a.City = utils.NormalizeSpace(a.City)
			if problem := checkAttraction(a); problem != "" {
				report.Skipped++
				report.Problems = append(report.Problems, fmt.Sprintf("entry %d: %s", i+1, problem))
				continue
			}
			if err := s.Backend.Insert(ctx, domain.TableAttractions, a, nil); err != nil {
				return report, fmt.Errorf("attraction %q: %w", a.Name, err)
			}
			report.Inserted++
		}
		utils.LogEventCtx(ctx, "seed", "load_attractions", fmt.Sprintf("inserted=%d skipped=%d", report.Inserted, report.Skipped))
		return report, nil
	})
}

func checkAttraction(a models.Attraction) string {
	switch {
	case strings.TrimSpace(a.Name) == "":
		return "name is required"
	case strings.TrimSpace(a.City) == "":
		return "city is required"
	case a.Rating < 0 || a.Rating > 5:
		return fmt.Sprintf("rating %.2f out of range 0-5", a.Rating)
	case a.Price < 0:
		return "price must not be negative"
	}
	return ""
}
