package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/phpdave11/gofpdf"

	"zheliyou/internal/backend"
	"zheliyou/internal/domain"
	"zheliyou/internal/domain/models"
	"zheliyou/internal/remote"
	"zheliyou/internal/utils"
)

// Document is a generated file ready to be served.
type Document struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Content     []byte `json:"-"`
}

// DocsService renders printable trip itineraries.
type DocsService struct {
	Backend backend.Client
	Now     func() time.Time
}

type itineraryData struct {
	Trip        models.Trip
	Organizer   *models.UserProfile
	Attractions []models.Attraction
}

// TripItinerary builds a PDF with the trip details and the destination's
// top attractions. A missing organizer profile is not an error.
func (s DocsService) TripItinerary(ctx context.Context, tripID string) remote.Result[Document] {
	return remote.Invoke(ctx, "docs", "trip_itinerary", func(ctx context.Context) (Document, error) {
		if err := domain.Required("trip_id", tripID); err != nil {
			return Document{}, err
		}
		data, err := s.loadItinerary(ctx, strings.TrimSpace(tripID))
		if err != nil {
			return Document{}, err
		}
		utils.LogEventCtx(ctx, "docs", "trip_itinerary", fmt.Sprintf("trip_id=%s attractions=%d", data.Trip.ID, len(data.Attractions)))
		return buildItineraryPDF(data, s.now())
	})
}

const itineraryAttractionLimit = 10

func (s DocsService) loadItinerary(ctx context.Context, tripID string) (itineraryData, error) {
	var out itineraryData
	trip, err := selectOne[models.Trip](ctx, s.Backend, domain.TableTrips, domain.ByID(tripID))
	if err != nil {
		return out, err
	}
	out.Trip = trip

	if trip.CreatorID != "" {
		if p, err := selectOne[models.UserProfile](ctx, s.Backend, domain.TableUserProfiles, domain.ByID(trip.CreatorID)); err == nil {
			out.Organizer = &p
		}
	}

	q := domain.Query{Limit: itineraryAttractionLimit}.Where(domain.Eq("city", trip.Destination)).OrderBy("rating", false)
	attractions, err := selectAll[models.Attraction](ctx, s.Backend, domain.TableAttractions, q)
	if err != nil {
		return out, err
	}
	out.Attractions = attractions
	return out, nil
}

func (s DocsService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func buildItineraryPDF(d itineraryData, generatedAt time.Time) (Document, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(tr("Itinerary "+d.Trip.Title), false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, tr(safe(d.Trip.Title, "Trip itinerary")))
	pdf.Ln(12)

	organizer := "-"
	if d.Organizer != nil {
		organizer = safe(d.Organizer.FullName, d.Organizer.Username)
	}
	budget := "-"
	if d.Trip.Budget > 0 {
		budget = utils.FormatYuan(d.Trip.Budget)
	}
	members := "-"
	if d.Trip.MaxMembers > 0 {
		members = fmt.Sprintf("%d", d.Trip.MaxMembers)
	}

	pdf.SetFont("Helvetica", "", 12)
	lines := []string{
		fmt.Sprintf("Destination : %s", safe(d.Trip.Destination, "-")),
		fmt.Sprintf("Dates       : %s - %s", safe(dateOnly(d.Trip.StartDate), "?"), safe(dateOnly(d.Trip.EndDate), "?")),
		fmt.Sprintf("Status      : %s", safe(d.Trip.Status, "-")),
		fmt.Sprintf("Budget      : %s", budget),
		fmt.Sprintf("Group size  : %s", members),
		fmt.Sprintf("Organizer   : %s", organizer),
	}
	for _, s := range lines {
		pdf.Cell(0, 7, tr(s))
		pdf.Ln(7)
	}

	if desc := strings.TrimSpace(d.Trip.Description); desc != "" {
		pdf.Ln(3)
		pdf.SetFont("Helvetica", "I", 11)
		pdf.MultiCell(0, 6, tr(desc), "", "", false)
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "B", 13)
	pdf.Cell(0, 8, tr("Top attractions in "+safe(d.Trip.Destination, "-")))
	pdf.Ln(9)

	pdf.SetFont("Helvetica", "", 11)
	if len(d.Attractions) == 0 {
		pdf.Cell(0, 6, "No attractions listed yet.")
		pdf.Ln(6)
	}
	for i, a := range d.Attractions {
		line := fmt.Sprintf("%d) %s", i+1, safe(a.Name, "-"))
		if a.Category != "" {
			line += " [" + a.Category + "]"
		}
		line += fmt.Sprintf("  rating %.1f", a.Rating)
		if a.Price > 0 {
			line += "  " + utils.FormatYuan(a.Price)
		}
		pdf.MultiCell(0, 6, tr(line), "", "", false)
	}

	pdf.Ln(8)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.Cell(0, 6, "Generated "+generatedAt.UTC().Format("2006-01-02 15:04")+" UTC")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return Document{}, err
	}

	filename := fmt.Sprintf("ITINERARY_%s_%s.pdf", safeFilenamePart(d.Trip.Destination), safeFilenamePart(dateOnly(d.Trip.StartDate)))
	return Document{Filename: filename, ContentType: "application/pdf", Content: buf.Bytes()}, nil
}

func safe(v, fallback string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return fallback
	}
	return v
}

func dateOnly(v string) string {
	v = strings.TrimSpace(v)
	if len(v) < 10 {
		return v
	}
	if d, err := utils.ParseDate(v[:10]); err == nil {
		return d.Format("2006-01-02")
	}
	return v
}

func safeFilenamePart(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "NA"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "_", "\\", "_", ":", "_", "*", "_", "?", "_", "\"", "_", "<", "_", ">", "_", "|", "_")
	s = replacer.Replace(s)
	if len(s) > 40 {
		s = s[:40]
	}
	return s
}
